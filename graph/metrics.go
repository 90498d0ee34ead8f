package graph

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics collects Prometheus metrics for graph execution,
// namespaced "flowgraph_":
//
//   - inflight_nodes (gauge): nodes currently executing. No labels.
//   - queue_depth (gauge): nodes waiting in the scheduler queue. No labels.
//   - step_latency_ms (histogram): node execution duration. Labels: run_id, node_id, status.
//   - retries_total (counter): retry attempts. Labels: run_id, node_id, reason.
//   - merge_conflicts_total (counter): concurrent state merge conflicts. Labels: run_id, conflict_type.
//   - backpressure_events_total (counter): queue saturation events. Labels: run_id, reason.
type PrometheusMetrics struct {
	inflightNodes prometheus.Gauge
	queueDepth    prometheus.Gauge

	stepLatency *prometheus.HistogramVec

	retries        *prometheus.CounterVec
	mergeConflicts *prometheus.CounterVec
	backpressure   *prometheus.CounterVec

	registry prometheus.Registerer

	mu      sync.RWMutex
	enabled bool
}

// NewPrometheusMetrics registers all graph execution metrics against
// registry (prometheus.DefaultRegisterer if nil). Histogram buckets are
// tuned for typical node execution times, 1ms to 10s.
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	pm := &PrometheusMetrics{
		registry: registry,
		enabled:  true,
	}

	pm.inflightNodes = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "flowgraph",
		Name:      "inflight_nodes",
		Help:      "Current number of nodes executing concurrently in the graph",
	})

	pm.queueDepth = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "flowgraph",
		Name:      "queue_depth",
		Help:      "Number of pending nodes waiting for execution in the scheduler queue",
	})

	pm.stepLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "flowgraph",
		Name:      "step_latency_ms",
		Help:      "Node execution duration in milliseconds (from dispatch to completion)",
		Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
	}, []string{"run_id", "node_id", "status"}) // status: success, error, timeout

	pm.retries = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flowgraph",
		Name:      "retries_total",
		Help:      "Cumulative count of node retry attempts across all executions",
	}, []string{"run_id", "node_id", "reason"}) // reason: error, timeout, transient

	pm.mergeConflicts = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flowgraph",
		Name:      "merge_conflicts_total",
		Help:      "Concurrent state merge conflicts detected during parallel execution",
	}, []string{"run_id", "conflict_type"}) // conflict_type: reducer_error, state_divergence

	pm.backpressure = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flowgraph",
		Name:      "backpressure_events_total",
		Help:      "Queue saturation events where execution was throttled due to resource limits",
	}, []string{"run_id", "reason"}) // reason: queue_full, max_concurrent, timeout

	return pm
}

// RecordStepLatency observes one node's execution duration under run_id,
// node_id, and status ("success", "error", "timeout").
func (pm *PrometheusMetrics) RecordStepLatency(runID, nodeID string, latency time.Duration, status string) {
	if !pm.enabled {
		return
	}
	pm.stepLatency.WithLabelValues(runID, nodeID, status).Observe(float64(latency.Milliseconds()))
}

// IncrementRetries bumps the retry counter for one node and reason
// ("error", "timeout", "transient").
func (pm *PrometheusMetrics) IncrementRetries(runID, nodeID, reason string) {
	if !pm.enabled {
		return
	}
	pm.retries.WithLabelValues(runID, nodeID, reason).Inc()
}

// UpdateQueueDepth sets the scheduler's current pending-node count.
func (pm *PrometheusMetrics) UpdateQueueDepth(depth int) {
	if !pm.enabled {
		return
	}
	pm.queueDepth.Set(float64(depth))
}

// UpdateInflightNodes sets the current concurrently-executing node count.
func (pm *PrometheusMetrics) UpdateInflightNodes(count int) {
	if !pm.enabled {
		return
	}
	pm.inflightNodes.Set(float64(count))
}

// IncrementMergeConflicts bumps the merge-conflict counter for one run
// and conflict type ("reducer_error", "state_divergence").
func (pm *PrometheusMetrics) IncrementMergeConflicts(runID, conflictType string) {
	if !pm.enabled {
		return
	}
	pm.mergeConflicts.WithLabelValues(runID, conflictType).Inc()
}

// IncrementBackpressure bumps the backpressure counter for one run and
// reason ("queue_full", "max_concurrent", "timeout").
func (pm *PrometheusMetrics) IncrementBackpressure(runID, reason string) {
	if !pm.enabled {
		return
	}
	pm.backpressure.WithLabelValues(runID, reason).Inc()
}

// Disable stops metric recording; already-registered series are untouched.
func (pm *PrometheusMetrics) Disable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = false
}

// Enable resumes metric recording after Disable.
func (pm *PrometheusMetrics) Enable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = true
}

// Reset zeroes the gauges. Counters and histograms are cumulative by
// Prometheus design and cannot be reset in place.
func (pm *PrometheusMetrics) Reset() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.inflightNodes.Set(0)
	pm.queueDepth.Set(0)
}
