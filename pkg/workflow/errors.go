// Package workflow provides a graph-based orchestration engine for
// LLM-driven applications: named nodes, conditional routing, per-step
// checkpointing and runtime fan-out over independent branches.
package workflow

import (
	"errors"
	"fmt"
)

// Build and compile errors.
var (
	// ErrNoEntryPoint indicates SetEntry was not called before Compile.
	ErrNoEntryPoint = errors.New("entry point not set")

	// ErrEntryNotFound indicates the entry point names a missing node.
	ErrEntryNotFound = errors.New("entry point node not found")

	// ErrNodeNotFound indicates an edge references a missing node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoPathToEnd indicates END is unreachable from the entry point.
	ErrNoPathToEnd = errors.New("no path to END from entry")
)

// Execution errors.
var (
	// ErrNilContext indicates Run was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrInvalidRouterResult indicates a router returned an empty string.
	ErrInvalidRouterResult = errors.New("router returned empty node ID")

	// ErrRouterTargetNotFound indicates a router returned an unknown node.
	ErrRouterTargetNotFound = errors.New("router target not found")

	// ErrNoCheckpoints indicates Resume found nothing to resume from.
	ErrNoCheckpoints = errors.New("no checkpoints for run")

	// ErrDeserializeState indicates checkpointed state could not be decoded.
	ErrDeserializeState = errors.New("cannot deserialize checkpointed state")
)

// NodeError wraps a failure raised while executing a node.
type NodeError struct {
	NodeID string
	Op     string
	Err    error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %s: %v", e.NodeID, e.Op, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// RouterError wraps an invalid routing decision.
type RouterError struct {
	FromNode string
	Returned string
	Err      error
}

func (e *RouterError) Error() string {
	return fmt.Sprintf("router at %s returned %q: %v", e.FromNode, e.Returned, e.Err)
}

func (e *RouterError) Unwrap() error { return e.Err }

// PanicError wraps a panic recovered inside a node function.
type PanicError struct {
	NodeID string
	Value  any
	Stack  string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("node %s panicked: %v", e.NodeID, e.Value)
}

// CancellationError indicates the run was cancelled via its context.
// The State field holds the last committed state.
type CancellationError[S any] struct {
	NodeID string
	State  S
	Cause  error
}

func (e *CancellationError[S]) Error() string {
	return fmt.Sprintf("run cancelled before node %s: %v", e.NodeID, e.Cause)
}

func (e *CancellationError[S]) Unwrap() error { return e.Cause }

// MaxIterationsError indicates the driver loop exceeded its bound, which
// usually means a routing cycle never reached END.
type MaxIterationsError struct {
	Max        int
	LastNodeID string
}

func (e *MaxIterationsError) Error() string {
	return fmt.Sprintf("exceeded %d iterations (last node %s)", e.Max, e.LastNodeID)
}

// CheckpointError wraps a checkpoint persistence failure.
type CheckpointError struct {
	NodeID string
	Op     string
	Err    error
}

func (e *CheckpointError) Error() string {
	return fmt.Sprintf("checkpoint at %s: %s: %v", e.NodeID, e.Op, e.Err)
}

func (e *CheckpointError) Unwrap() error { return e.Err }

// BranchError wraps a failure in one branch of a FanOut.
type BranchError struct {
	Branch string
	Err    error
}

func (e *BranchError) Error() string {
	return fmt.Sprintf("branch %s: %v", e.Branch, e.Err)
}

func (e *BranchError) Unwrap() error { return e.Err }
