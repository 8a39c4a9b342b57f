// Package metrics exposes Prometheus instrumentation for the
// distribution engine, grounded on the promauto idiom used across the
// retrieved example repos: package-level collectors registered once at
// import time, updated from the service and job layers as runs happen.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts completed distribution runs by outcome
	// ("ok", "degraded") and trigger source ("http", "scheduled",
	// "cli"). Rejected runs are counted by RunExclusionRejectionsTotal.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "distengine",
		Subsystem: "distribution",
		Name:      "runs_total",
		Help:      "Total number of distribution runs, by outcome and trigger source.",
	}, []string{"outcome", "triggered_by"})

	// RunDuration observes wall-clock time spent inside
	// DistributionService.Distribute, including persistence.
	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "distengine",
		Subsystem: "distribution",
		Name:      "run_duration_seconds",
		Help:      "Duration of a distribution run in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"triggered_by"})

	// StudiesAssigned tracks how many studies a run assigned.
	StudiesAssigned = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "distengine",
		Subsystem: "distribution",
		Name:      "studies_assigned",
		Help:      "Number of studies assigned per distribution run.",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	}, []string{"triggered_by"})

	// StudiesUnassigned tracks how many studies a run left unassigned,
	// including malformed snapshot rows.
	StudiesUnassigned = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "distengine",
		Subsystem: "distribution",
		Name:      "studies_unassigned",
		Help:      "Number of studies left unassigned per distribution run.",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	}, []string{"triggered_by"})

	// TotalWeightedTardiness reports the envelope's objective value per
	// run, the quantity the ATC heuristic is minimizing.
	TotalWeightedTardiness = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "distengine",
		Subsystem: "distribution",
		Name:      "total_weighted_tardiness_hours",
		Help:      "Total weighted tardiness, in weighted hours, of the most recent distribution run.",
	})

	// DegradedRunsTotal counts runs that completed the schedule but
	// failed to persist some assignments (spec §7's degraded-run case).
	DegradedRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "distengine",
		Subsystem: "distribution",
		Name:      "degraded_runs_total",
		Help:      "Total number of distribution runs that completed in a degraded state.",
	})

	// RunExclusionRejectionsTotal counts requests rejected because a
	// run was already in progress (the process-wide mutex in
	// DistributionService).
	RunExclusionRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "distengine",
		Subsystem: "distribution",
		Name:      "run_exclusion_rejections_total",
		Help:      "Total number of distribution requests rejected because a run was already in progress.",
	})

	// SnapshotSize reports the pending-study and on-shift-doctor counts
	// seen by the most recent run, letting an operator correlate a thin
	// schedule with a thin snapshot rather than a scheduling defect.
	SnapshotSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "distengine",
		Subsystem: "distribution",
		Name:      "snapshot_size",
		Help:      "Size of the most recent distribution run's input snapshot.",
	}, []string{"resource"})
)

// ObserveRun records the standard set of metrics for a completed run.
// outcome is "ok" or "degraded"; triggeredBy is "http", "scheduled",
// or "cli".
func ObserveRun(outcome, triggeredBy string, duration time.Duration, assigned, unassigned int, totalWeightedTardiness float64, degraded bool) {
	RunsTotal.WithLabelValues(outcome, triggeredBy).Inc()
	RunDuration.WithLabelValues(triggeredBy).Observe(duration.Seconds())
	StudiesAssigned.WithLabelValues(triggeredBy).Observe(float64(assigned))
	StudiesUnassigned.WithLabelValues(triggeredBy).Observe(float64(unassigned))
	TotalWeightedTardiness.Set(totalWeightedTardiness)

	if degraded {
		DegradedRunsTotal.Inc()
	}
}

// ObserveSnapshot records the pending-study and on-shift-doctor counts
// seen by a run, before resolution/defaulting drops any malformed rows.
func ObserveSnapshot(pendingStudies, onShiftDoctors int) {
	SnapshotSize.WithLabelValues("studies").Set(float64(pendingStudies))
	SnapshotSize.WithLabelValues("doctors").Set(float64(onShiftDoctors))
}

// ObserveRunExclusionRejection records a rejected request caused by a
// run already in progress.
func ObserveRunExclusionRejection() {
	RunExclusionRejectionsTotal.Inc()
}
