package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/officina-ai/officina/internal/chatbot"
	"github.com/officina-ai/officina/internal/llm"
	"github.com/officina-ai/officina/internal/retrieval"
	"github.com/officina-ai/officina/pkg/workflow/checkpoint"
)

// newLLMClient builds the completion client from configuration.
func newLLMClient() llm.Client {
	return llm.NewOpenAIClient(cfg.LLM.BaseURL, cfg.LLM.APIKey,
		llm.WithModel(cfg.LLM.Model),
		llm.WithTemperature(cfg.LLM.Temperature),
	)
}

func newEmbedder() retrieval.Embedder {
	return retrieval.NewHTTPEmbedder(cfg.Embedding.BaseURL, cfg.Embedding.APIKey,
		retrieval.WithEmbeddingModel(cfg.Embedding.Model),
	)
}

// openIndex loads the persisted retrieval index, or returns an empty
// index when the artifact has not been built yet. Queries against an
// empty index return no results, which the chatbot handles.
func openIndex(ctx context.Context, logger *slog.Logger) (*retrieval.Index, error) {
	embedder := newEmbedder()
	if !retrieval.Exists(cfg.Index.Path) {
		logger.Warn("retrieval index not built, link lookup disabled", "path", cfg.Index.Path)
		return retrieval.Build(ctx, embedder, nil)
	}

	index, err := retrieval.Open(ctx, cfg.Index.Path, embedder)
	if err != nil {
		return nil, fmt.Errorf("open retrieval index: %w", err)
	}
	logger.Info("retrieval index loaded", "path", cfg.Index.Path, "documents", index.Len())
	return index, nil
}

// newBot wires the chatbot and its session layer.
func newBot(ctx context.Context, logger *slog.Logger) (*chatbot.Bot, *chatbot.Sessions, func() error, error) {
	index, err := openIndex(ctx, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := checkpoint.NewSQLiteStore(cfg.Storage.CheckpointPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open session store: %w", err)
	}

	bot, err := chatbot.New(
		newLLMClient(),
		index,
		chatbot.NewHTTPLocator(cfg.Chatbot.LocatorBaseURL),
		chatbot.WithPromotionTopK(cfg.Chatbot.PromotionTopK),
	)
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}

	sessions := chatbot.NewSessions(store, cfg.Chatbot.SessionTTL.Std())
	return bot, sessions, store.Close, nil
}
