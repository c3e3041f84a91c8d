// Package cli implements the mic command line.
package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"mic/config"
)

var rootCmd = &cobra.Command{
	Use:   "mic",
	Short: "A keyword-routed assistant with tools, tasks and a planner",
	Long: `mic routes each message to a tool by its leading keyword phrase,
collects missing details for multi-turn tasks, and lets a planner model answer
open questions or hand them to a computational tool.`,
	SilenceUsage: true,
}

func Execute() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer config.SyncDebugLog()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// loadConfig loads the configuration and starts debug logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := config.InitDebugLog(cfg.DataDir()); err != nil {
		return nil, err
	}
	return cfg, nil
}
