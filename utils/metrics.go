package utils

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "occupancy_sweep_runs_total",
		Help: "Occupancy sweeps run, by outcome.",
	}, []string{"outcome"})

	SweepsCoalesced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "occupancy_sweeps_coalesced_total",
		Help: "Sweep requests folded into a sweep already running.",
	})

	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "occupancy_sweep_duration_seconds",
		Help:    "Duration of occupancy sweeps.",
		Buckets: prometheus.DefBuckets,
	})

	HoldsReleased = promauto.NewCounter(prometheus.CounterOpts{
		Name: "occupancy_holds_released_total",
		Help: "Occupancy holds released by the sweep.",
	})

	HoldReleaseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "occupancy_hold_release_failures_total",
		Help: "Per-spot failures while releasing expired holds.",
	})

	AvailabilityChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spot_availability_checks_total",
		Help: "Availability checks served, by result.",
	}, []string{"result"})

	ReservationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reservation_transitions_total",
		Help: "Reservation status transitions, by target status.",
	}, []string{"status"})
)

// ObserveSweep records the outcome of one sweep.
func ObserveSweep(elapsed time.Duration, released, failed int, listFailed bool) {
	outcome := "ok"
	if listFailed {
		outcome = "error"
	}
	SweepRuns.WithLabelValues(outcome).Inc()
	SweepDuration.Observe(elapsed.Seconds())
	HoldsReleased.Add(float64(released))
	HoldReleaseFailures.Add(float64(failed))
}
