package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Client is the completion backend contract: a list of role-tagged
// messages in, text out. Implementations must be safe for concurrent
// use; parallel interview branches share one client.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// Structured performs a schema-constrained completion and decodes the
// JSON output into T. The request's ResponseSchema should describe T;
// backends that cannot enforce a schema still receive the instruction
// to answer with JSON only.
func Structured[T any](ctx context.Context, c Client, req CompletionRequest) (T, error) {
	var out T

	resp, err := c.Complete(ctx, req)
	if err != nil {
		return out, err
	}

	content := stripFence(resp.Content)
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return out, fmt.Errorf("decode structured output: %w", err)
	}
	return out, nil
}

// stripFence removes a Markdown code fence around a JSON payload.
// Models wrap structured output in ```json fences often enough that
// decoding must tolerate it.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
