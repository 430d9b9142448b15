// Package metrics exposes Prometheus instruments for workflow executions.
package metrics

import (
	"github.com/launchflow/launchflow/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine instruments. A nil *Metrics records nothing.
type Metrics struct {
	executionsTotal   *prometheus.CounterVec
	executionDuration *prometheus.HistogramVec
	actionsTotal      *prometheus.CounterVec
	dispatchesTotal   *prometheus.CounterVec
	matchedWorkflows  *prometheus.HistogramVec
}

// New registers the instruments with reg. Use prometheus.DefaultRegisterer in
// binaries and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		executionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchflow_workflow_executions_total",
				Help: "Total number of workflow executions by trigger type and final status",
			},
			[]string{"trigger_type", "status"},
		),
		executionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launchflow_workflow_execution_duration_seconds",
				Help:    "Workflow execution duration distribution, delays included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"trigger_type"},
		),
		actionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchflow_workflow_actions_total",
				Help: "Total number of dispatched workflow actions by type and status",
			},
			[]string{"action_type", "status"},
		),
		dispatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchflow_trigger_dispatches_total",
				Help: "Total number of domain events dispatched to workflows",
			},
			[]string{"event_type"},
		),
		matchedWorkflows: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launchflow_trigger_matched_workflows",
				Help:    "Number of enabled workflows matched per dispatched event",
				Buckets: []float64{0, 1, 2, 5, 10, 25},
			},
			[]string{"event_type"},
		),
	}
}

// ObserveExecution records a finished execution log.
func (m *Metrics) ObserveExecution(triggerType models.WorkflowTriggerType, log *models.WorkflowExecutionLog) {
	if m == nil || log == nil {
		return
	}

	m.executionsTotal.WithLabelValues(string(triggerType), string(log.Status)).Inc()
	m.executionDuration.WithLabelValues(string(triggerType)).Observe(log.Duration().Seconds())
}

// ObserveAction records one dispatched action.
func (m *Metrics) ObserveAction(actionType models.ActionType, status models.ExecutionStatus) {
	if m == nil {
		return
	}

	m.actionsTotal.WithLabelValues(string(actionType), string(status)).Inc()
}

// ObserveDispatch records one dispatched event and how many workflows it matched.
func (m *Metrics) ObserveDispatch(eventType models.WorkflowTriggerType, matched int) {
	if m == nil {
		return
	}

	m.dispatchesTotal.WithLabelValues(string(eventType)).Inc()
	m.matchedWorkflows.WithLabelValues(string(eventType)).Observe(float64(matched))
}

// ExecutionsCounter exposes the executions counter for tests and dashboards.
func (m *Metrics) ExecutionsCounter() *prometheus.CounterVec {
	return m.executionsTotal
}

// ActionsCounter exposes the actions counter for tests and dashboards.
func (m *Metrics) ActionsCounter() *prometheus.CounterVec {
	return m.actionsTotal
}
