package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/officina-ai/officina/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chatbot HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		bot, sessions, closeStore, err := newBot(cmd.Context(), logger)
		if err != nil {
			return err
		}
		defer closeStore()

		srv := server.New(bot, sessions, logger)

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-stop
			logger.Info("shutting down")
			if err := srv.Shutdown(); err != nil {
				logger.Error("shutdown failed", "error", err)
			}
		}()

		return srv.Listen(cfg.Server.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
