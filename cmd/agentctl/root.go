// cmd/agentctl/root.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"insurance-agent/internal/bootstrap"
	"insurance-agent/internal/common/config"
	"insurance-agent/internal/common/logger"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "agentctl",
	Short: "Operate the insurance query agent",
	Long: `agentctl runs single agent queries and maintenance tasks against the
configured knowledge corpus, CRM database and model provider.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config YAML (default: ./configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func newLogger() logger.Logger {
	return logger.NewStructured(logLevel, "console")
}

// buildApp wires the agent with a single connection attempt per backend.
func buildApp(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	app, err := bootstrap.Build(ctx, cfg, newLogger(), bootstrap.Options{
		ConnectRetries: 1,
		ConnectDelay:   time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("wire agent: %w", err)
	}
	return app, nil
}
