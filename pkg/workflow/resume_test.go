package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officina-ai/officina/pkg/workflow/checkpoint"
)

// flakyGraph fails at node b until allowed.
func flakyGraph(allow *bool) *CompiledGraph[Counter] {
	cg, err := NewGraph[Counter]().
		AddNode("a", visit("a")).
		AddNode("b", func(_ Context, s Counter) (Counter, error) {
			if !*allow {
				return s, errors.New("not yet")
			}
			s.Path = append(s.Path, "b")
			return s, nil
		}).
		SetEntry("a").
		AddEdge("a", "b").
		AddEdge("b", END).
		Compile()
	if err != nil {
		panic(err)
	}
	return cg
}

func TestResume_ContinuesFromFailure(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	defer store.Close()

	allow := false
	cg := flakyGraph(&allow)

	_, err := cg.Run(testContext(), Counter{}, WithCheckpointing(store, "run-1"))
	require.Error(t, err)

	// The checkpoint after node a records b as the next node.
	allow = true
	state, err := cg.Resume(testContext(), store, "run-1")
	require.NoError(t, err)
	// Node a is not re-executed.
	assert.Equal(t, []string{"a", "b"}, state.Path)
}

func TestResume_FinishedRun(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	defer store.Close()

	cg := linearGraph()
	_, err := cg.Run(testContext(), Counter{}, WithCheckpointing(store, "run-1"))
	require.NoError(t, err)

	state, err := cg.Resume(testContext(), store, "run-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, state.Path)
}

func TestResume_NoCheckpoints(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	defer store.Close()

	_, err := linearGraph().Resume(testContext(), store, "missing")
	assert.ErrorIs(t, err, ErrNoCheckpoints)
}

func TestResume_NilContext(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	defer store.Close()

	_, err := linearGraph().Resume(nil, store, "run-1")
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestResume_CorruptState(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	defer store.Close()

	require.NoError(t, store.Save("run-1", "a", []byte("not json")))

	_, err := linearGraph().Resume(testContext(), store, "run-1")
	assert.ErrorIs(t, err, ErrDeserializeState)
}
