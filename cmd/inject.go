package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"github.com/ayourtch/fabricsim/core"
	"github.com/ayourtch/fabricsim/state"
	"github.com/encodeous/tint"
	"github.com/spf13/cobra"
)

// injectCmd submits a single hex-encoded datagram and prints its outcome.
var injectCmd = &cobra.Command{
	Use:   "inject <hexbytes>",
	Short: "Submit one packet and print the outcome",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := hex.DecodeString(args[0])
		if err != nil {
			return fmt.Errorf("invalid hex packet: %w", err)
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ingress, _ := cmd.Flags().GetString("ingress")
		if ingress == "" {
			if len(cfg.Interfaces) == 0 {
				return fmt.Errorf("no interfaces configured, pass --ingress")
			}
			ingress = cfg.Interfaces[0].Name
		}
		egress, _ := cmd.Flags().GetString("egress")
		if egress != "" && cfg.Interface(egress) == nil {
			return fmt.Errorf("unknown egress interface %q", egress)
		}

		ctx, cancel := context.WithCancelCause(context.Background())
		defer cancel(context.Canceled)
		env := &state.Env{
			Context: ctx,
			Cancel:  cancel,
			Cfg:     *cfg,
			Log:     slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn})),
		}
		sim, err := core.NewSimulator(env)
		if err != nil {
			return err
		}
		out, err := sim.Resolve(raw, ingress, egress)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(injectCmd)

	injectCmd.Flags().StringP("ingress", "i", "", "Ingress interface or router id (defaults to the first interface)")
	injectCmd.Flags().StringP("egress", "e", "", "Force the egress interface, bypassing address-prefix inference")
}
