package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/officina-ai/officina/pkg/workflow"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive support-chatbot session in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		bot, sessions, closeStore, err := newBot(cmd.Context(), logger)
		if err != nil {
			return err
		}
		defer closeStore()

		sessionID := uuid.NewString()
		state, err := sessions.Load(sessionID)
		if err != nil {
			return err
		}

		bold := color.New(color.Bold)
		assistant := color.New(color.FgCyan)
		link := color.New(color.FgBlue, color.Underline)

		bold.Println("officina support chat — type 'exit' to quit")

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			if text == "exit" || text == "quit" {
				break
			}

			ctx := workflow.NewContext(cmd.Context(),
				workflow.WithLogger(logger),
				workflow.WithRunID(sessionID),
			)
			before := len(state.Messages)
			state, err = bot.Turn(ctx, state, text)
			if err != nil {
				logger.Error("turn failed", "error", err)
			}
			if err := sessions.Save(sessionID, state); err != nil {
				logger.Error("session save failed", "error", err)
			}

			for _, m := range state.Messages[before:] {
				switch {
				case m.Role == "user":
					// already on screen
				case m.IsLink:
					link.Println(m.Text)
				default:
					assistant.Println(m.Text)
				}
			}
		}
		return scanner.Err()
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
