package workflow

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanOut_AllBranchesComplete(t *testing.T) {
	cg := linearGraph()

	branches := make([]Branch[Counter], 5)
	for i := range branches {
		branches[i] = Branch[Counter]{
			ID:    fmt.Sprintf("branch-%d", i),
			State: Counter{Value: i},
		}
	}

	results, err := FanOut(testContext(), cg, branches)
	require.NoError(t, err)
	require.Len(t, results, 5)

	seen := make(map[string]Counter, len(results))
	for _, r := range results {
		require.NoError(t, r.Err)
		seen[r.ID] = r.State
	}
	for i := range branches {
		state := seen[fmt.Sprintf("branch-%d", i)]
		assert.Equal(t, i, state.Value, "branch state must stay private")
		assert.Equal(t, []string{"a", "b"}, state.Path)
	}
}

func TestFanOut_NilContext(t *testing.T) {
	_, err := FanOut(nil, linearGraph(), nil)
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestFanOut_NoBranches(t *testing.T) {
	results, err := FanOut(testContext(), linearGraph(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFanOut_PartialFailure(t *testing.T) {
	boom := errors.New("boom")
	cg, err := NewGraph[Counter]().
		AddNode("a", func(_ Context, s Counter) (Counter, error) {
			if s.Value < 0 {
				return s, boom
			}
			s.Value++
			return s, nil
		}).
		SetEntry("a").
		AddEdge("a", END).
		Compile()
	require.NoError(t, err)

	results, err := FanOut(testContext(), cg, []Branch[Counter]{
		{ID: "ok", State: Counter{Value: 1}},
		{ID: "bad", State: Counter{Value: -1}},
	})

	var branchErr *BranchError
	require.ErrorAs(t, err, &branchErr)
	assert.Equal(t, "bad", branchErr.Branch)
	assert.ErrorIs(t, err, boom)

	// The healthy branch still ran to completion.
	require.Len(t, results, 2)
	for _, r := range results {
		if r.ID == "ok" {
			require.NoError(t, r.Err)
			assert.Equal(t, 2, r.State.Value)
		}
	}
}

func TestFanOut_MaxConcurrency(t *testing.T) {
	var active, peak atomic.Int32

	cg, err := NewGraph[Counter]().
		AddNode("work", func(_ Context, s Counter) (Counter, error) {
			cur := active.Add(1)
			defer active.Add(-1)
			for {
				p := peak.Load()
				if cur <= p || peak.CompareAndSwap(p, cur) {
					break
				}
			}
			return s, nil
		}).
		SetEntry("work").
		AddEdge("work", END).
		Compile()
	require.NoError(t, err)

	branches := make([]Branch[Counter], 16)
	for i := range branches {
		branches[i] = Branch[Counter]{ID: fmt.Sprintf("b%d", i)}
	}

	_, err = FanOut(testContext(), cg, branches, WithMaxConcurrency(2))
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}
