package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"polity/internal/app/bootstrap"
)

var debug bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "polity-worker",
		Short: "Governance worker process: outbox relays",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := setupLogger(debug)

			app, err := bootstrap.BuildWorker()
			if err != nil {
				return err
			}
			defer func() {
				if err := app.Close(); err != nil {
					logger.Error("worker shutdown close failed",
						"event", "worker_close_failed",
						"error", err.Error(),
					)
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx)
		},
	}
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		slog.Error("worker stopped with error", "error", err.Error())
		os.Exit(1)
	}
}

func setupLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
