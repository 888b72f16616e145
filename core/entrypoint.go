package core

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/ayourtch/fabricsim/state"
	"github.com/encodeous/tint"
	slogmulti "github.com/samber/slog-multi"
)

// Start runs the simulator until the packet file is fully replayed (when no
// generator is configured) or until a shutdown signal arrives.
func Start(cfg state.Config, logLevel slog.Level) error {
	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(context.Canceled)

	handlers := make([]slog.Handler, 0)
	handlers = append(handlers,
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:     logLevel,
			AddSource: false,
			ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
				if attr.Key == "time" {
					return slog.Attr{}
				}
				return attr
			},
		}))

	if cfg.LogPath != "" {
		err := os.MkdirAll(path.Dir(cfg.LogPath), 0700)
		if err != nil {
			return err
		}
		f, err := os.OpenFile(cfg.LogPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0700)
		if err != nil {
			return err
		}
		defer f.Close()
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: logLevel}))
	}

	logger := slog.New(slogmulti.Fanout(handlers...))

	env := &state.Env{
		Context: ctx,
		Cancel:  cancel,
		Cfg:     cfg,
		Log:     logger,
	}

	sim, err := NewSimulator(env)
	if err != nil {
		return err
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(c)
	go func() {
		select {
		case <-c:
			cancel(errors.New("received shutdown signal"))
		case <-ctx.Done():
		}
	}()

	go runReporter(env, sim)

	if cfg.PacketFile != "" {
		err = ReplayPacketFile(sim)
		if err != nil {
			return err
		}
	}

	if cfg.Generator != nil {
		logger.Info("traffic generator running, send SIGINT or Ctrl+C to exit")
		NewGenerator(env, sim).Run()
	}

	reportStatistics(env, sim)
	logger.Info("stopped", "reason", context.Cause(ctx))
	return nil
}

// runReporter logs a statistics snapshot at the configured interval.
func runReporter(env *state.Env, sim *Simulator) {
	ticker := time.NewTicker(env.Cfg.Simulation.ReportInterval)
	defer ticker.Stop()
	for {
		select {
		case <-env.Context.Done():
			return
		case <-ticker.C:
			reportStatistics(env, sim)
		}
	}
}

func reportStatistics(env *state.Env, sim *Simulator) {
	snap := sim.Fabric().StatsSnapshot()
	for _, id := range sim.Fabric().Routers() {
		s := snap[id]
		env.Log.Info("router statistics", "router", id,
			"received", s.Received,
			"forwarded", s.Forwarded,
			"icmp_generated", s.IcmpGenerated,
			"lost", s.Lost)
	}
}
