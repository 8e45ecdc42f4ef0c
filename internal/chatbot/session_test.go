package chatbot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officina-ai/officina/pkg/workflow/checkpoint"
)

func TestSessions_RoundTrip(t *testing.T) {
	sessions := NewSessions(checkpoint.NewMemoryStore(), time.Minute)

	state := State{
		Messages: []Message{
			{Role: "user", Text: "hi"},
			{Role: "assistant", Text: "hello", Complete: true},
		},
		Location: LocationAsked,
	}
	require.NoError(t, sessions.Save("sess-1", state))

	loaded, err := sessions.Load("sess-1")
	require.NoError(t, err)
	assert.Equal(t, state, loaded)
}

func TestSessions_UnknownIDIsZeroState(t *testing.T) {
	sessions := NewSessions(checkpoint.NewMemoryStore(), time.Minute)

	state, err := sessions.Load("never-seen")
	require.NoError(t, err)
	assert.Empty(t, state.Messages)
	assert.Equal(t, LocationUnknown, state.Location)
}

func TestSessions_SurvivesCacheEviction(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	sessions := NewSessions(store, time.Minute)

	state := State{Messages: []Message{{Role: "user", Text: "remember me"}}}
	require.NoError(t, sessions.Save("sess-2", state))

	// A fresh session layer over the same store has a cold cache and
	// must fall back to the durable copy.
	reloaded, err := NewSessions(store, time.Minute).Load("sess-2")
	require.NoError(t, err)
	assert.Equal(t, state, reloaded)
}

func TestSessions_SaveOverwrites(t *testing.T) {
	sessions := NewSessions(checkpoint.NewMemoryStore(), time.Minute)

	require.NoError(t, sessions.Save("sess-3", State{Messages: []Message{{Role: "user", Text: "v1"}}}))
	require.NoError(t, sessions.Save("sess-3", State{Messages: []Message{
		{Role: "user", Text: "v1"},
		{Role: "assistant", Text: "v2"},
	}}))

	loaded, err := sessions.Load("sess-3")
	require.NoError(t, err)
	require.Len(t, loaded.Messages, 2)
	assert.Equal(t, "v2", loaded.Messages[1].Text)
}

func TestSessions_Delete(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	sessions := NewSessions(store, time.Minute)

	require.NoError(t, sessions.Save("sess-4", State{Messages: []Message{{Role: "user", Text: "bye"}}}))
	require.NoError(t, sessions.Delete("sess-4"))

	state, err := sessions.Load("sess-4")
	require.NoError(t, err)
	assert.Empty(t, state.Messages)
}
