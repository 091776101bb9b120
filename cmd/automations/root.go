package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/workbasehq/workbase/internal/app"
	"github.com/workbasehq/workbase/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "workbase-automations",
	Short: "Workbase automation engine",
	Long: `Runs workspace automations against schema-less collection records:
date-based reminders in batch and record event triggers, with notification,
email and field-update actions.`,
	SilenceUsage: true,
}

// Execute runs the root command, exiting non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the configuration directory (default ./config)")
}

// bootstrap loads configuration, configures logging and wires the engine.
func bootstrap() (*app.Engine, error) {
	var paths []string
	if configPath != "" {
		paths = append(paths, configPath)
	}

	cfg, err := app.LoadConfig(paths...)
	if err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.App.LogLevel); err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	return app.NewEngine(cfg)
}
