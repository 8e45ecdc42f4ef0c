package workflow

import (
	"context"
	"encoding/json"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/officina-ai/officina/pkg/workflow/checkpoint"
	"github.com/officina-ai/officina/pkg/workflow/observability"
)

// Run executes the graph from its entry point with the given initial
// state. On success it returns the state after the last node before END;
// on failure it returns the state at the point of failure together with
// a typed error.
//
// The driver loop checks for cancellation before every node, recovers
// node panics into PanicError, and, when checkpointing is enabled,
// persists the state after every successful node.
func (cg *CompiledGraph[S]) Run(ctx Context, state S, opts ...RunOption) (result S, runErr error) {
	if ctx == nil {
		return state, ErrNilContext
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.checkpointStore == nil {
		// A store carried on the context checkpoints the run without a
		// per-call option.
		cfg.checkpointStore = ctx.Checkpointer()
	}
	if cfg.checkpointStore != nil && cfg.runID == "" {
		cfg.runID = ctx.RunID()
	}

	runID := cfg.runID
	if runID == "" {
		runID = ctx.RunID()
	}

	start := time.Now()
	observability.LogRunStart(ctx.Logger(), runID)

	var execCtx context.Context = ctx
	var runSpan trace.Span
	if cfg.tracing {
		execCtx, runSpan = cfg.spans.StartRunSpan(ctx, "workflow", runID)
		defer func() { cfg.spans.EndSpanWithError(runSpan, runErr) }()
	}

	var steps int
	result, steps, runErr = cg.run(execCtx, ctx, state, cg.entry, &cfg)

	duration := time.Since(start)
	cfg.metrics.RecordGraphRun(ctx, runErr == nil, duration)

	if runErr != nil {
		observability.LogRunError(ctx.Logger(), runID, runErr, duration, lastNodeOf(runErr))
	} else {
		observability.LogRunComplete(ctx.Logger(), runID, duration, steps)
	}
	return result, runErr
}

// lastNodeOf extracts the failing node ID from a typed execution error.
func lastNodeOf(err error) string {
	switch e := err.(type) {
	case *NodeError:
		return e.NodeID
	case *MaxIterationsError:
		return e.LastNodeID
	}
	return ""
}

// run drives execution from startNode until END. Returns the final
// state, the number of nodes executed, and any error.
func (cg *CompiledGraph[S]) run(tracingCtx context.Context, ctx Context, state S, startNode string, cfg *runConfig) (S, int, error) {
	current := startNode
	prev := ""
	steps := 0

	for current != END {
		if steps >= cfg.maxIterations {
			return state, steps, &MaxIterationsError{Max: cfg.maxIterations, LastNodeID: current}
		}

		select {
		case <-ctx.Done():
			return state, steps, &CancellationError[S]{NodeID: current, State: state, Cause: ctx.Err()}
		default:
		}

		observability.LogNodeStart(ctx.Logger(), current)

		nodeCtx := tracingCtx
		var span trace.Span
		if cfg.tracing {
			nodeCtx, span = cfg.spans.StartNodeSpan(tracingCtx, current)
		}

		nodeStart := time.Now()
		var err error
		state, err = cg.executeNode(ctx, current, state)
		nodeDuration := time.Since(nodeStart)

		cfg.metrics.RecordNodeExecution(nodeCtx, current, nodeDuration, err)
		if cfg.tracing {
			cfg.spans.EndSpanWithError(span, err)
		}
		if err != nil {
			observability.LogNodeError(ctx.Logger(), current, err)
			return state, steps, err
		}
		observability.LogNodeComplete(ctx.Logger(), current, nodeDuration)
		steps++

		next, err := cg.nextNode(ctx, state, current)
		if err != nil {
			return state, steps, err
		}

		if cfg.checkpointStore != nil {
			if err := cg.saveCheckpoint(ctx, cfg, current, prev, state, next); err != nil {
				return state, steps, err
			}
		}

		prev = current
		current = next
	}

	return state, steps, nil
}

// executeNode runs one node with panic recovery.
func (cg *CompiledGraph[S]) executeNode(ctx Context, nodeID string, state S) (result S, err error) {
	fn, ok := cg.node(nodeID)
	if !ok {
		// Unreachable after a successful Compile.
		return state, &NodeError{NodeID: nodeID, Op: "lookup", Err: ErrNodeNotFound}
	}

	nodeCtx := ctx
	if ec, ok := ctx.(*executionContext); ok {
		nodeCtx = ec.withNodeID(nodeID)
	}

	defer func() {
		if r := recover(); r != nil {
			result = state
			err = &PanicError{NodeID: nodeID, Value: r, Stack: string(debug.Stack())}
		}
	}()

	result, err = fn(nodeCtx, state)
	if err != nil {
		return result, &NodeError{NodeID: nodeID, Op: "execute", Err: err}
	}
	return result, nil
}

// nextNode resolves the outgoing edge of current. A conditional edge
// takes precedence over an unconditional one.
func (cg *CompiledGraph[S]) nextNode(ctx Context, state S, current string) (string, error) {
	if router, ok := cg.router(current); ok {
		routerCtx := ctx
		if ec, ok := ctx.(*executionContext); ok {
			routerCtx = ec.withNodeID(current)
		}

		next := router(routerCtx, state)
		if next == "" {
			return "", &RouterError{FromNode: current, Returned: next, Err: ErrInvalidRouterResult}
		}
		if next != END && !cg.HasNode(next) {
			return "", &RouterError{FromNode: current, Returned: next, Err: ErrRouterTargetNotFound}
		}
		return next, nil
	}

	if to, ok := cg.edge(current); ok {
		return to, nil
	}
	// Unreachable after a successful Compile.
	return "", &NodeError{NodeID: current, Op: "routing", Err: ErrNoPathToEnd}
}

// saveCheckpoint serializes state and persists it keyed by run and node.
func (cg *CompiledGraph[S]) saveCheckpoint(ctx Context, cfg *runConfig, nodeID, prevNode string, state S, nextNode string) error {
	stateBytes, err := json.Marshal(state)
	if err != nil {
		return cg.checkpointFailure(ctx, cfg, nodeID, "serialize", err)
	}

	cfg.sequence++
	cp := checkpoint.New(cfg.runID, nodeID, cfg.sequence, stateBytes, nextNode).WithPrevNode(prevNode)

	data, err := cp.Marshal()
	if err != nil {
		return cg.checkpointFailure(ctx, cfg, nodeID, "marshal", err)
	}

	if err := cfg.checkpointStore.Save(cfg.runID, nodeID, data); err != nil {
		return cg.checkpointFailure(ctx, cfg, nodeID, "save", err)
	}

	observability.LogCheckpoint(ctx.Logger(), nodeID, len(data))
	cfg.metrics.RecordCheckpoint(ctx, nodeID, int64(len(data)))
	return nil
}

// checkpointFailure either aborts the run or logs and continues,
// depending on configuration.
func (cg *CompiledGraph[S]) checkpointFailure(ctx Context, cfg *runConfig, nodeID, op string, err error) error {
	if cfg.checkpointFatal {
		return &CheckpointError{NodeID: nodeID, Op: op, Err: err}
	}
	observability.LogCheckpointError(ctx.Logger(), nodeID, op, err)
	return nil
}
