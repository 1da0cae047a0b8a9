package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus metrics for the chat core.
//
// Tracked signals:
//   - Turn outcomes by dispatch path (stream vs. tool invocation)
//   - LLM request latency per model
//   - Tool handler executions and their latency
//   - Durable-state commits, split by whether persistence ran
//   - Detached purchase confirmations
type Metrics struct {
	// TurnCounter counts dispatched turns.
	// Labels: path (stream|invoke|empty), status (ok|error)
	TurnCounter *prometheus.CounterVec

	// LLMRequestDuration measures completion-provider call latency in seconds.
	// Labels: provider, model
	LLMRequestDuration *prometheus.HistogramVec

	// ToolExecutionCounter counts tool handler invocations.
	// Labels: tool, status (ok|invalid|error)
	ToolExecutionCounter *prometheus.CounterVec

	// ToolExecutionDuration measures tool handler execution time in seconds.
	// Labels: tool
	ToolExecutionDuration *prometheus.HistogramVec

	// CommitCounter counts durable-state commits.
	// Labels: persisted (yes|skipped|error)
	CommitCounter *prometheus.CounterVec

	// ConfirmationCounter counts detached purchase confirmations.
	// Labels: status (ok|error)
	ConfirmationCounter *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on the given registerer.
// A nil registerer falls back to the default Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		TurnCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nicolette",
			Name:      "turns_total",
			Help:      "Dispatched conversation turns by path and status.",
		}, []string{"path", "status"}),

		LLMRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nicolette",
			Name:      "llm_request_duration_seconds",
			Help:      "Completion provider call latency.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"provider", "model"}),

		ToolExecutionCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nicolette",
			Name:      "tool_executions_total",
			Help:      "Tool handler invocations by tool and status.",
		}, []string{"tool", "status"}),

		ToolExecutionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nicolette",
			Name:      "tool_execution_duration_seconds",
			Help:      "Tool handler execution time.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}, []string{"tool"}),

		CommitCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nicolette",
			Name:      "state_commits_total",
			Help:      "Durable-state commits by persistence outcome.",
		}, []string{"persisted"}),

		ConfirmationCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nicolette",
			Name:      "purchase_confirmations_total",
			Help:      "Detached purchase confirmation tasks by status.",
		}, []string{"status"}),
	}
}

// ObserveTurn records a completed turn. Nil-safe.
func (m *Metrics) ObserveTurn(path, status string) {
	if m == nil {
		return
	}
	m.TurnCounter.WithLabelValues(path, status).Inc()
}

// ObserveLLMRequest records completion latency. Nil-safe.
func (m *Metrics) ObserveLLMRequest(provider, model string, d time.Duration) {
	if m == nil {
		return
	}
	m.LLMRequestDuration.WithLabelValues(provider, model).Observe(d.Seconds())
}

// ObserveTool records a tool handler execution. Nil-safe.
func (m *Metrics) ObserveTool(tool, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.ToolExecutionCounter.WithLabelValues(tool, status).Inc()
	m.ToolExecutionDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// ObserveCommit records a durable-state commit. Nil-safe.
func (m *Metrics) ObserveCommit(persisted string) {
	if m == nil {
		return
	}
	m.CommitCounter.WithLabelValues(persisted).Inc()
}

// ObserveConfirmation records a finished confirmation task. Nil-safe.
func (m *Metrics) ObserveConfirmation(status string) {
	if m == nil {
		return
	}
	m.ConfirmationCounter.WithLabelValues(status).Inc()
}
