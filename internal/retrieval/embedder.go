package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	wferrors "github.com/officina-ai/officina/pkg/workflow/errors"
)

// Embedder converts texts into dense vectors. Implementations must be
// safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// HTTPEmbedder calls an OpenAI-compatible embeddings endpoint.
type HTTPEmbedder struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	retry      wferrors.RetryConfig
}

// EmbedderOption configures an HTTPEmbedder.
type EmbedderOption func(*HTTPEmbedder)

// WithEmbeddingModel sets the embedding model name.
func WithEmbeddingModel(model string) EmbedderOption {
	return func(e *HTTPEmbedder) { e.model = model }
}

// WithEmbedderHTTPClient replaces the HTTP client (used by tests).
func WithEmbedderHTTPClient(hc *http.Client) EmbedderOption {
	return func(e *HTTPEmbedder) { e.httpClient = hc }
}

// WithEmbedderRetry overrides the retry policy.
func WithEmbedderRetry(cfg wferrors.RetryConfig) EmbedderOption {
	return func(e *HTTPEmbedder) { e.retry = cfg }
}

// NewHTTPEmbedder creates an embedder for the given endpoint and key.
func NewHTTPEmbedder(baseURL, apiKey string, opts ...EmbedderOption) *HTTPEmbedder {
	e := &HTTPEmbedder{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      "text-embedding-3-small",
		httpClient: &http.Client{Timeout: 60 * time.Second},
		retry:      wferrors.DefaultRetry,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed implements Embedder.
func (e *HTTPEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(embedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("encode embedding request: %w", err)
	}

	result := wferrors.WithRetryContext(ctx, e.retry, func(ctx context.Context) (*embedResponse, error) {
		return e.post(ctx, payload)
	})
	if result.Err != nil {
		return nil, result.Err
	}

	parsed := result.Value
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(parsed.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

func (e *HTTPEmbedder) post(ctx context.Context, payload []byte) (*embedResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.baseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &wferrors.HTTPStatusError{Op: "embedding", Status: resp.StatusCode}
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	return &parsed, nil
}
