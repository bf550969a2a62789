package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides a centralized interface for collecting runtime metrics.
//
// The metrics system is built on Prometheus and tracks:
//   - Task throughput and terminal outcomes
//   - Running-task count against the parallelism bound
//   - Planner call performance by provider and model
//   - Action execution patterns and latencies per tool
//   - Event fan-out pressure (subscribers, dropped deliveries)
type Metrics struct {
	// TasksCreated counts submitted tasks.
	TasksCreated prometheus.Counter

	// TasksFinished counts terminal tasks.
	// Labels: status (succeeded|failed)
	TasksFinished *prometheus.CounterVec

	// RunningTasks is a gauge of tasks currently in the running state.
	RunningTasks prometheus.Gauge

	// QueuedTasks is a gauge of tasks waiting in the FIFO queue.
	QueuedTasks prometheus.Gauge

	// PlannerDuration measures planner call latency in seconds.
	// Labels: provider, model
	PlannerDuration *prometheus.HistogramVec

	// PlannerCalls counts planner invocations.
	// Labels: provider, status (success|error)
	PlannerCalls *prometheus.CounterVec

	// ActionDuration measures executor action latency in seconds.
	// Labels: tool
	ActionDuration *prometheus.HistogramVec

	// ActionCounter counts executed actions.
	// Labels: tool, result (success|error)
	ActionCounter *prometheus.CounterVec

	// StepsPerTask observes the final step count of terminal tasks.
	StepsPerTask prometheus.Histogram

	// Subscribers is a gauge of live event subscribers.
	Subscribers prometheus.Gauge

	// DroppedEvents counts events dropped because a subscriber was slow.
	DroppedEvents prometheus.Counter
}

// NewMetrics creates and registers all metrics with the given registerer.
// Passing nil uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		TasksCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "webpilot_tasks_created_total",
			Help: "Total number of tasks submitted.",
		}),
		TasksFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "webpilot_tasks_finished_total",
			Help: "Total number of tasks reaching a terminal state.",
		}, []string{"status"}),
		RunningTasks: factory.NewGauge(prometheus.GaugeOpts{
			Name: "webpilot_tasks_running",
			Help: "Number of tasks currently running.",
		}),
		QueuedTasks: factory.NewGauge(prometheus.GaugeOpts{
			Name: "webpilot_tasks_queued",
			Help: "Number of tasks waiting for capacity.",
		}),
		PlannerDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "webpilot_planner_duration_seconds",
			Help:    "Planner call latency in seconds.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"provider", "model"}),
		PlannerCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "webpilot_planner_calls_total",
			Help: "Total planner invocations.",
		}, []string{"provider", "status"}),
		ActionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "webpilot_action_duration_seconds",
			Help:    "Executor action latency in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"tool"}),
		ActionCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "webpilot_actions_total",
			Help: "Total executed actions.",
		}, []string{"tool", "result"}),
		StepsPerTask: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "webpilot_steps_per_task",
			Help:    "Step count of terminal tasks.",
			Buckets: []float64{1, 2, 4, 8, 16, 32},
		}),
		Subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "webpilot_event_subscribers",
			Help: "Number of live event subscribers.",
		}),
		DroppedEvents: factory.NewCounter(prometheus.CounterOpts{
			Name: "webpilot_events_dropped_total",
			Help: "Events dropped because a subscriber was too slow.",
		}),
	}
}
