// Package chatbot implements the support assistant for the workshop
// network: a classifier routes each user turn through a small state
// machine of action nodes (general answer, promotion lookup, workshop
// locator) built on the workflow engine.
package chatbot

import "github.com/officina-ai/officina/internal/llm"

// LocationStatus tracks whether the user's location is known. It is
// the only side-channel state that survives across turns.
type LocationStatus string

const (
	// LocationUnknown means the user was never asked.
	LocationUnknown LocationStatus = ""
	// LocationAsked means permission was requested but not yet granted.
	LocationAsked LocationStatus = "asked"
	// LocationProvided means coordinates are available in the history.
	LocationProvided LocationStatus = "provided"
)

// Message is one conversation entry with the rendering flags the UI
// layer reads.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`

	// IsLink marks the text as a URL to render as a clickable link.
	IsLink bool `json:"is_link,omitempty"`
	// Complete marks the final message of a turn.
	Complete bool `json:"complete,omitempty"`
	// GeolocationRequest asks the UI to trigger a location prompt.
	GeolocationRequest bool `json:"geolocation_request,omitempty"`
}

// State is the conversation state threaded through the turn graph and
// persisted between turns. Messages is append-only: nodes add entries,
// never rewrite or drop them.
type State struct {
	Messages []Message `json:"messages"`

	// Classification is the raw label from the last classifier call.
	// Reset at the start of every turn.
	Classification string `json:"classification,omitempty"`

	Location  LocationStatus `json:"location,omitempty"`
	Latitude  float64        `json:"latitude,omitempty"`
	Longitude float64        `json:"longitude,omitempty"`
}

// append returns a copy of the state with msg added.
func (s State) append(msg Message) State {
	s.Messages = append(s.Messages, msg)
	return s
}

// lastUserText returns the text of the most recent user message.
func (s State) lastUserText() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == "user" {
			return s.Messages[i].Text
		}
	}
	return ""
}

// history converts the conversation into completion messages. Link and
// geolocation flags are rendering concerns and carry no extra text.
func (s State) history() []llm.Message {
	out := make([]llm.Message, 0, len(s.Messages))
	for _, m := range s.Messages {
		role := llm.RoleAssistant
		if m.Role == "user" {
			role = llm.RoleUser
		}
		out = append(out, llm.Message{Role: role, Content: m.Text})
	}
	return out
}
