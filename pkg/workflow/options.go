package workflow

import (
	"github.com/officina-ai/officina/pkg/workflow/checkpoint"
	"github.com/officina-ai/officina/pkg/workflow/observability"
)

// runConfig holds per-run execution settings.
type runConfig struct {
	maxIterations int

	checkpointStore checkpoint.Store
	runID           string
	sequence        int
	// checkpointFatal makes checkpoint failures abort the run instead of
	// being logged and skipped.
	checkpointFatal bool

	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	tracing bool
}

func defaultRunConfig() runConfig {
	return runConfig{
		maxIterations: 1000,
		metrics:       observability.NoopMetrics{},
		spans:         observability.NoopSpanManager{},
	}
}

// RunOption configures a single Run, Resume or FanOut call.
type RunOption func(*runConfig)

// WithMaxIterations bounds the number of node executions in one run.
// Default 1000. The bound is the safety net against routing cycles that
// never reach END.
func WithMaxIterations(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithCheckpointing persists state to store after every node, keyed by
// runID. The run ID must be non-empty.
func WithCheckpointing(store checkpoint.Store, runID string) RunOption {
	return func(c *runConfig) {
		c.checkpointStore = store
		c.runID = runID
	}
}

// WithCheckpointFailureFatal makes checkpoint persistence failures abort
// the run. By default they are logged and execution continues.
func WithCheckpointFailureFatal() RunOption {
	return func(c *runConfig) { c.checkpointFatal = true }
}

// WithMetrics records run and node metrics through the given recorder.
func WithMetrics(rec observability.MetricsRecorder) RunOption {
	return func(c *runConfig) {
		if rec != nil {
			c.metrics = rec
		}
	}
}

// WithTracing emits spans for the run and each node execution.
func WithTracing(sm observability.SpanManager) RunOption {
	return func(c *runConfig) {
		if sm != nil {
			c.spans = sm
			c.tracing = true
		}
	}
}
