package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"communitypulse/internal/app/bootstrap"
	"communitypulse/internal/platform/config"

	"github.com/spf13/cobra"
)

// Worker process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring.
// 3) Tick the reminder scheduler and outbox relay until SIGINT/SIGTERM.
func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:           "communitypulse-worker",
		Short:         "Run reminder scheduling and outbox relay against postgres",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := bootstrap.BuildWorker(ctx, cfg)
			if err != nil {
				return fmt.Errorf("bootstrap worker: %w", err)
			}
			defer func() {
				if err := app.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "worker shutdown close failed: %v\n", err)
				}
			}()

			if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("worker stopped: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file (defaults to $CONFIG_FILE)")
	return cmd
}
