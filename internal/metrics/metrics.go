// Package metrics exposes Prometheus metrics for the recurring batch.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SchedulesFired counts schedules materialized into ledger entries.
var SchedulesFired = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "recurring",
	Subsystem: "batch",
	Name:      "schedules_fired_total",
	Help:      "Total schedules fired, by movement type.",
}, []string{"movement_type"})

// FireFailures counts schedules that could not be fired.
var FireFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "recurring",
	Subsystem: "batch",
	Name:      "fire_failures_total",
	Help:      "Total failed fire attempts, by reason.",
}, []string{"reason"})

// InvalidPeriodicity counts stored records carrying an unknown periodicity.
var InvalidPeriodicity = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "recurring",
	Subsystem: "engine",
	Name:      "invalid_periodicity_total",
	Help:      "Total schedules skipped because of an unrecognized periodicity.",
})

// PendingSchedules tracks how many schedules were due in the last batch.
var PendingSchedules = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "recurring",
	Subsystem: "batch",
	Name:      "pending_schedules",
	Help:      "Schedules found due in the most recent batch run.",
})

// BatchDuration observes how long a batch run takes.
var BatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "recurring",
	Subsystem: "batch",
	Name:      "duration_seconds",
	Help:      "Duration of due-schedule batch runs.",
	Buckets:   prometheus.DefBuckets,
})
