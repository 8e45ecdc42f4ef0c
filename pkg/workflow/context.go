package workflow

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/officina-ai/officina/pkg/workflow/checkpoint"
)

// Context is the execution context handed to every node and router. It
// extends context.Context with engine services and run metadata.
//
// External collaborators (completion clients, retrieval indexes, HTTP
// clients) are NOT carried here: nodes receive them as explicit
// dependencies when the graph is built, which keeps them independently
// testable.
type Context interface {
	context.Context

	// Logger returns the run logger, enriched with run and node fields.
	// Never nil; defaults to slog.Default.
	Logger() *slog.Logger

	// Checkpointer returns the checkpoint store, or nil when the run is
	// not checkpointed.
	Checkpointer() checkpoint.Store

	// RunID identifies this execution run. Auto-generated if unset.
	RunID() string

	// NodeID is the node currently executing; empty before the run starts.
	NodeID() string
}

type executionContext struct {
	context.Context

	logger       *slog.Logger
	checkpointer checkpoint.Store
	runID        string
	nodeID       string
}

func (c *executionContext) Logger() *slog.Logger             { return c.logger }
func (c *executionContext) Checkpointer() checkpoint.Store   { return c.checkpointer }
func (c *executionContext) RunID() string                    { return c.runID }
func (c *executionContext) NodeID() string                   { return c.nodeID }

// ContextOption configures a Context.
type ContextOption func(*executionContext)

// WithLogger sets the logger carried by the context.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *executionContext) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCheckpointer sets the checkpoint store exposed to nodes.
func WithCheckpointer(store checkpoint.Store) ContextOption {
	return func(c *executionContext) { c.checkpointer = store }
}

// WithRunID fixes the run identifier instead of auto-generating one.
func WithRunID(id string) ContextOption {
	return func(c *executionContext) { c.runID = id }
}

// NewContext wraps a standard context with engine services.
func NewContext(ctx context.Context, opts ...ContextOption) Context {
	ec := &executionContext{
		Context: ctx,
		logger:  slog.Default(),
		runID:   uuid.New().String(),
	}
	for _, opt := range opts {
		opt(ec)
	}
	return ec
}

// withNodeID derives a per-node context with an enriched logger.
func (c *executionContext) withNodeID(nodeID string) *executionContext {
	return &executionContext{
		Context:      c.Context,
		logger:       c.logger.With("run_id", c.runID, "node_id", nodeID),
		checkpointer: c.checkpointer,
		runID:        c.runID,
		nodeID:       nodeID,
	}
}

// withBranch derives a per-branch context for FanOut execution.
func (c *executionContext) withBranch(branchID string) *executionContext {
	return &executionContext{
		Context:      c.Context,
		logger:       c.logger.With("branch", branchID),
		checkpointer: c.checkpointer,
		runID:        c.runID + "/" + branchID,
	}
}
