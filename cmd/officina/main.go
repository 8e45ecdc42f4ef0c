// Package main is the entry point for the officina CLI: the support
// chatbot (REPL and HTTP server), the retrieval index builder and the
// analyst report generator.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/officina-ai/officina/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfgPath string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "officina",
	Short: "Workshop-network support chatbot and analyst report generator",
	Long: `officina runs two LLM workflows: a customer-support chatbot for the
aposto.it workshop network (classifier, promotion lookup, workshop
locator) and a multi-analyst research report generator with parallel
expert interviews.

Configuration comes from a YAML file plus environment variables; a
.env file in the working directory is loaded at startup.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		// A missing .env is fine; the environment may carry the keys.
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "officina.yaml", "config file path")
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
