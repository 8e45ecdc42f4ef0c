package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/officina-ai/officina/internal/research"
	"github.com/officina-ai/officina/pkg/workflow"
)

var reportInteractive bool

var reportCmd = &cobra.Command{
	Use:   "report <topic>",
	Short: "Generate a multi-analyst research report on a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		topic := strings.Join(args, " ")

		opts := []research.GeneratorOption{
			research.WithMaxTurns(cfg.Research.MaxTurns),
			research.WithMaxConcurrency(cfg.Research.MaxConcurrency),
		}
		if reportInteractive {
			opts = append(opts, research.WithFeedback(reviewRoster))
		}

		gen, err := research.NewGenerator(
			newLLMClient(),
			research.NewTavilySearcher(cfg.Research.SearchBaseURL, cfg.Research.SearchAPIKey),
			research.NewWikipediaSearcher(""),
			opts...,
		)
		if err != nil {
			return err
		}

		ctx := workflow.NewContext(cmd.Context(), workflow.WithLogger(logger))
		state, err := gen.Generate(ctx, topic, cfg.Research.MaxAnalysts)
		if err != nil {
			return err
		}

		mdPath, pdfPath, err := research.Finalize(state, cfg.Research.OutputDir)
		if err != nil {
			return err
		}
		logger.Info("report written", "markdown", mdPath, "pdf", pdfPath)
		return nil
	},
}

// reviewRoster shows the generated analysts and reads an approve-or-
// feedback line from the terminal.
func reviewRoster(analysts []research.Analyst) string {
	bold := color.New(color.Bold)
	for i, a := range analysts {
		bold.Printf("%d. %s — %s\n", i+1, a.Name, a.Role)
		fmt.Printf("   %s\n   %s\n", a.Affiliation, a.Description)
	}
	fmt.Print("Type 'approve' or give feedback: ")

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return "approve"
	}
	return strings.TrimSpace(scanner.Text())
}

func init() {
	reportCmd.Flags().BoolVar(&reportInteractive, "interactive", false, "review the analyst roster before interviews")
	rootCmd.AddCommand(reportCmd)
}
