package llm

import (
	"context"
	"sync"
)

// ScriptedClient is a test double that replays canned responses in
// order. Once the script is exhausted the last response repeats, which
// keeps loop-termination tests independent of exact call counts.
type ScriptedClient struct {
	mu        sync.Mutex
	responses []string
	next      int
	err       error

	// Requests records every request received, in order.
	Requests []CompletionRequest
}

// NewScripted creates a client that answers with the given responses.
func NewScripted(responses ...string) *ScriptedClient {
	return &ScriptedClient{responses: responses}
}

// FailWith makes every subsequent call return err.
func (s *ScriptedClient) FailWith(err error) *ScriptedClient {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	return s
}

// Complete implements Client.
func (s *ScriptedClient) Complete(_ context.Context, req CompletionRequest) (*CompletionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Requests = append(s.Requests, req)

	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return &CompletionResponse{Content: ""}, nil
	}

	content := s.responses[s.next]
	if s.next < len(s.responses)-1 {
		s.next++
	}
	return &CompletionResponse{Content: content}, nil
}

// Calls returns the number of completion calls received.
func (s *ScriptedClient) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}
