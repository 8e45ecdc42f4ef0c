package workflow

import (
	"encoding/json"
	"fmt"

	"github.com/officina-ai/officina/pkg/workflow/checkpoint"
)

// Resume continues a checkpointed run from its latest checkpoint. The
// checkpoint records which node was about to execute; Resume picks up
// there with the persisted state and keeps checkpointing to the same
// store under the same run ID.
func (cg *CompiledGraph[S]) Resume(ctx Context, store checkpoint.Store, runID string, opts ...RunOption) (S, error) {
	var zero S

	if ctx == nil {
		return zero, ErrNilContext
	}

	infos, err := store.List(runID)
	if err != nil {
		return zero, fmt.Errorf("list checkpoints: %w", err)
	}
	if len(infos) == 0 {
		return zero, fmt.Errorf("%w: %s", ErrNoCheckpoints, runID)
	}

	latest := infos[len(infos)-1]
	data, err := store.Load(runID, latest.NodeID)
	if err != nil {
		return zero, fmt.Errorf("load checkpoint: %w", err)
	}

	cp, err := checkpoint.Unmarshal(data)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrDeserializeState, err)
	}
	if cp.Version != checkpoint.Version {
		return zero, fmt.Errorf("checkpoint version mismatch: got %d, want %d", cp.Version, checkpoint.Version)
	}

	var state S
	if err := json.Unmarshal(cp.State, &state); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrDeserializeState, err)
	}

	if cp.NextNode == END {
		// The run already finished; nothing left to execute.
		return state, nil
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.checkpointStore = store
	cfg.runID = runID
	cfg.sequence = cp.Sequence

	result, _, err := cg.run(ctx, ctx, state, cp.NextNode, &cfg)
	return result, err
}
