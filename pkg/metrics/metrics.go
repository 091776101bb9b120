package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AutomationRuns records automation evaluations by outcome (success|skipped|failed).
	AutomationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workbase_automation_runs_total",
			Help: "Total number of automation evaluations",
		},
		[]string{"outcome"},
	)

	// ActionExecutions counts executed actions by kind and result (ok|error).
	ActionExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workbase_automation_actions_total",
			Help: "Total number of automation action executions",
		},
		[]string{"kind", "result"},
	)

	// NotificationsCreated counts notification rows written by the notify action.
	NotificationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workbase_notifications_created_total",
			Help: "Total number of notifications created by automations",
		},
	)

	// EmailsEnqueued counts email messages handed to the mail queue.
	EmailsEnqueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workbase_emails_enqueued_total",
			Help: "Total number of automation emails enqueued for delivery",
		},
	)

	// SchedulerDuration measures date-based batch run latency.
	SchedulerDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "workbase_scheduler_run_seconds",
			Help:    "Duration of date-based scheduler batches",
			Buckets: prometheus.DefBuckets,
		},
	)
)
