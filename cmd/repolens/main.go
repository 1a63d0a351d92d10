// Package main is the entry point for the repolens CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/arturoeanton/repolens/internal/app"
	"github.com/arturoeanton/repolens/internal/logging"
	"github.com/arturoeanton/repolens/pkg/config"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var envFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "repolens",
		Short:         "Question answering over indexed Git repositories",
		Long:          `RepoLens indexes repository summaries and documents into a vector store and answers questions about them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to .env file")

	cmd.AddCommand(indexCmd())
	cmd.AddCommand(askCmd())
	cmd.AddCommand(reposCmd())
	cmd.AddCommand(exportCmd())
	cmd.AddCommand(healthCmd())
	cmd.AddCommand(stdioCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from a .env file and environment variables.
func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}
	return config.Load()
}

// openApp loads configuration, sets up logging and wires the services.
func openApp() (*app.App, *slog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := logging.Setup(cfg.LogFormat, cfg.LogLevel)

	a, err := app.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return a, logger, nil
}
