package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/officina-ai/officina/internal/retrieval"
)

var indexForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the retrieval index from the configured site",
	Long: `index crawls the configured site's sitemap, embeds every page and
persists the result. An existing artifact skips the whole step unless
--force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		if retrieval.Exists(cfg.Index.Path) && !indexForce {
			logger.Info("index already built, skipping", "path", cfg.Index.Path)
			return nil
		}
		if cfg.Index.Site == "" {
			return fmt.Errorf("index.site is not configured")
		}

		crawler := retrieval.NewSitemapCrawler(cfg.Index.Exclude...)
		docs, err := crawler.Crawl(cmd.Context(), cfg.Index.Site)
		if err != nil {
			return err
		}
		logger.Info("crawl complete", "site", cfg.Index.Site, "documents", len(docs))

		index, err := retrieval.Build(cmd.Context(), newEmbedder(), docs)
		if err != nil {
			return err
		}
		if err := index.Save(cfg.Index.Path); err != nil {
			return err
		}
		logger.Info("index saved", "path", cfg.Index.Path, "documents", index.Len())
		return nil
	},
}

func init() {
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "rebuild even if the artifact exists")
	rootCmd.AddCommand(indexCmd)
}
