package cmd

import (
	"log/slog"

	"github.com/ayourtch/fabricsim/core"
	"github.com/ayourtch/fabricsim/state"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulator",
	Long:  `Loads the configuration, builds the fabric and routing tables, then replays the configured packet file and/or generates synthetic traffic until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		level := slog.LevelInfo
		if ok, _ := cmd.Flags().GetBool("verbose"); ok {
			level = slog.LevelDebug
		}

		if pf, _ := cmd.Flags().GetString("packet-file"); pf != "" {
			cfg.PacketFile = pf
		}

		return core.Start(*cfg, level)
	},
}

func loadConfig() (*state.Config, error) {
	cfg, err := state.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	state.ExpandConfig(cfg)
	err = state.ConfigValidator(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	runCmd.Flags().StringP("packet-file", "p", "", "Replay hex-encoded packets from this file (overrides config)")
}
