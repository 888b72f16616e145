package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath = "fabric.yaml"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fabricsim",
	Short: "Virtual router fabric simulator",
	Long: `Fabricsim simulates packet delivery across a configurable graph of virtual
routers connected by links with cost, MTU and loss characteristics, optionally
load-balancing flows over equal-cost paths. It validates routing and failure
handling (loss, fragmentation, TTL expiry) without a physical network.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", configPath, "simulator configuration file")
}
