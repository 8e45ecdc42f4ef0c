package chatbot

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/officina-ai/officina/pkg/workflow/checkpoint"
)

// sessionNode is the checkpoint slot used for per-session state.
const sessionNode = "session"

// Sessions persists conversation state between turns, keyed by session
// id. The checkpoint store is the durable layer; a TTL cache fronts it
// for hot sessions.
type Sessions struct {
	store checkpoint.Store
	cache *gocache.Cache
}

// NewSessions creates a session layer over store. ttl bounds how long
// an idle session stays cached; the durable copy has no expiry.
func NewSessions(store checkpoint.Store, ttl time.Duration) *Sessions {
	return &Sessions{
		store: store,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Load returns the session's state, or a zero state for an unknown id.
func (s *Sessions) Load(sessionID string) (State, error) {
	if cached, ok := s.cache.Get(sessionID); ok {
		return cached.(State), nil
	}

	data, err := s.store.Load(sessionID, sessionNode)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	cp, err := checkpoint.Unmarshal(data)
	if err != nil {
		return State{}, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	var state State
	if err := json.Unmarshal(cp.State, &state); err != nil {
		return State{}, fmt.Errorf("decode session state %s: %w", sessionID, err)
	}

	s.cache.SetDefault(sessionID, state)
	return state, nil
}

// Save commits the state for the next turn. Turn N is fully durable
// before turn N+1 is served.
func (s *Sessions) Save(sessionID string, state State) error {
	encoded, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session state %s: %w", sessionID, err)
	}

	cp := checkpoint.New(sessionID, sessionNode, 0, encoded, "")
	data, err := cp.Marshal()
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sessionID, err)
	}
	if err := s.store.Save(sessionID, sessionNode, data); err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}

	s.cache.SetDefault(sessionID, state)
	return nil
}

// Delete removes a session from both layers.
func (s *Sessions) Delete(sessionID string) error {
	s.cache.Delete(sessionID)
	return s.store.DeleteRun(sessionID)
}
