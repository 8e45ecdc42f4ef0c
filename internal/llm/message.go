// Package llm defines the completion backend contract and an
// OpenAI-compatible HTTP client. The rest of the system treats the
// model as a black box behind the Client interface.
package llm

import (
	"encoding/json"
	"time"
)

// Role identifies the message sender.
type Role string

// Standard message roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	// Name optionally attributes the message to a participant, e.g. the
	// interview "expert".
	Name string `json:"name,omitempty"`
}

// System builds a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User builds a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Assistant builds an assistant message.
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// CompletionRequest configures one completion call.
type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`

	// ResponseSchema, when set, constrains the output to a JSON object
	// matching the given JSON schema. Used for location extraction,
	// analyst roster generation and search query writing.
	ResponseSchema json.RawMessage `json:"-"`
	// SchemaName labels the schema for backends that require one.
	SchemaName string `json:"-"`
}

// TokenUsage tracks token consumption for one call.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// CompletionResponse is the output of a completion call.
type CompletionResponse struct {
	Content  string        `json:"content"`
	Model    string        `json:"model"`
	Usage    TokenUsage    `json:"usage"`
	Duration time.Duration `json:"duration"`
}
