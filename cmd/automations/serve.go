package main

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/workbasehq/workbase/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the automation scheduler in the foreground",
	Long: `Starts the cron scheduler and keeps it running until SIGINT or SIGTERM.
The date-based batch fires on the configured schedule; log pruning runs weekly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := bootstrap()
		if err != nil {
			return err
		}
		defer engine.Close()
		defer logger.Sync() // best effort

		if !engine.Config.Scheduler.Enabled {
			return errors.New("scheduler is disabled in configuration")
		}

		if err := engine.Runner.Start(); err != nil {
			return err
		}

		log := logger.WithModule("serve")
		log.Info("scheduler started", zap.String("spec", engine.Config.Scheduler.Spec))

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		log.Info("shutting down")
		<-engine.Runner.Stop().Done()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
