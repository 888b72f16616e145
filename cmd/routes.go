package cmd

import (
	"fmt"
	"strings"

	"github.com/ayourtch/fabricsim/routing"
	"github.com/ayourtch/fabricsim/topology"
	"github.com/spf13/cobra"
)

// routesCmd prints the computed routing tables for the configured topology.
var routesCmd = &cobra.Command{
	Use:     "routes",
	Aliases: []string{"r"},
	Short:   "Print the computed routing tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fabric, err := topology.New(cfg)
		if err != nil {
			return err
		}

		if multi, _ := cmd.Flags().GetBool("multipath"); multi {
			tables := routing.ComputeMultiPathTables(fabric)
			for _, r := range fabric.Routers() {
				fmt.Printf("%s:\n", r)
				for _, dst := range fabric.Routers() {
					if hops, ok := tables[r][dst]; ok {
						strs := make([]string, len(hops))
						for i, h := range hops {
							strs[i] = string(h)
						}
						fmt.Printf("  %s via [%s]\n", dst, strings.Join(strs, ", "))
					}
				}
			}
			return nil
		}

		tables := routing.ComputeTables(fabric)
		for _, r := range fabric.Routers() {
			fmt.Printf("%s:\n", r)
			for _, dst := range fabric.Routers() {
				if nh, ok := tables[r][dst]; ok {
					fmt.Printf("  %s via %s\n", dst, nh)
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)

	routesCmd.Flags().BoolP("multipath", "m", false, "Print equal-cost multipath tables")
}
