package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records workflow execution metrics.
// Use NewMetricsRecorder for OTel-backed metrics or NoopMetrics when
// metrics are disabled.
type MetricsRecorder interface {
	// RecordNodeExecution records one node execution with duration and
	// error status.
	RecordNodeExecution(ctx context.Context, nodeID string, duration time.Duration, err error)

	// RecordGraphRun records a completed graph run.
	RecordGraphRun(ctx context.Context, success bool, duration time.Duration)

	// RecordCheckpoint records a checkpoint save.
	RecordCheckpoint(ctx context.Context, nodeID string, sizeBytes int64)
}

type otelMetrics struct {
	nodeExecutions metric.Int64Counter
	nodeLatency    metric.Float64Histogram
	nodeErrors     metric.Int64Counter
	graphRuns      metric.Int64Counter
	graphLatency   metric.Float64Histogram
	checkpointSize metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("officina/workflow")

	nodeExecutions, err := meter.Int64Counter("workflow.node.executions",
		metric.WithDescription("Number of node executions"))
	if err != nil {
		return nil, err
	}
	nodeLatency, err := meter.Float64Histogram("workflow.node.latency_ms",
		metric.WithDescription("Node execution latency in milliseconds"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	nodeErrors, err := meter.Int64Counter("workflow.node.errors",
		metric.WithDescription("Number of node execution errors"))
	if err != nil {
		return nil, err
	}
	graphRuns, err := meter.Int64Counter("workflow.graph.runs",
		metric.WithDescription("Number of graph runs"))
	if err != nil {
		return nil, err
	}
	graphLatency, err := meter.Float64Histogram("workflow.graph.latency_ms",
		metric.WithDescription("Graph run latency in milliseconds"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	checkpointSize, err := meter.Int64Histogram("workflow.checkpoint.size_bytes",
		metric.WithDescription("Checkpoint size in bytes"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		nodeExecutions: nodeExecutions,
		nodeLatency:    nodeLatency,
		nodeErrors:     nodeErrors,
		graphRuns:      graphRuns,
		graphLatency:   graphLatency,
		checkpointSize: checkpointSize,
	}, nil
}

// NewMetricsRecorder returns an OTel-backed MetricsRecorder using the
// global meter provider. Falls back to a no-op recorder if metric
// instruments cannot be created.
func NewMetricsRecorder() MetricsRecorder {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	if defaultMetricsErr != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", defaultMetricsErr.Error()))
		return NoopMetrics{}
	}
	return defaultMetrics
}

// RecordNodeExecution implements MetricsRecorder.
func (m *otelMetrics) RecordNodeExecution(ctx context.Context, nodeID string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("node_id", nodeID))
	m.nodeExecutions.Add(ctx, 1, attrs)
	m.nodeLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		m.nodeErrors.Add(ctx, 1, attrs)
	}
}

// RecordGraphRun implements MetricsRecorder.
func (m *otelMetrics) RecordGraphRun(ctx context.Context, success bool, duration time.Duration) {
	m.graphRuns.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
	m.graphLatency.Record(ctx, float64(duration.Milliseconds()))
}

// RecordCheckpoint implements MetricsRecorder.
func (m *otelMetrics) RecordCheckpoint(ctx context.Context, nodeID string, sizeBytes int64) {
	m.checkpointSize.Record(ctx, sizeBytes, metric.WithAttributes(attribute.String("node_id", nodeID)))
}
