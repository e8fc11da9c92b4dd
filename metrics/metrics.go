// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mqr"

var (
	allocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "strata",
			Name:      "allocations_total",
			Help:      "Count of study arm allocations by arm and exhaustion policy.",
		},
		[]string{"arm", "policy"},
	)
	allocationConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "strata",
			Name:      "allocation_conflicts_total",
			Help:      "Count of stratum transactions that conflicted and were retried or failed.",
		},
	)
	strataExhaustedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "strata",
			Name:      "exhausted_total",
			Help:      "Count of strata whose arm permutation was used up and removed.",
		},
	)
	exclusionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "strata",
			Name:      "exclusions_total",
			Help:      "Count of participants outside every stratum, by reason.",
		},
		[]string{"reason"},
	)
	contentLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "lookups_total",
			Help:      "Count of content lookups by kind (message, faq, menu) and outcome.",
		},
		[]string{"kind", "outcome"},
	)
)

var registerMetrics sync.Once

// Register all metrics with reg. Later calls are no-ops.
func Register(reg prometheus.Registerer) {
	registerMetrics.Do(func() {
		reg.MustRegister(allocationsTotal)
		reg.MustRegister(allocationConflictsTotal)
		reg.MustRegister(strataExhaustedTotal)
		reg.MustRegister(exclusionsTotal)
		reg.MustRegister(contentLookupsTotal)
	})
}

func RecordAllocation(arm, policy string) {
	allocationsTotal.WithLabelValues(arm, policy).Inc()
}

func RecordAllocationConflict() {
	allocationConflictsTotal.Inc()
}

func RecordStratumExhausted() {
	strataExhaustedTotal.Inc()
}

// RecordExclusion counts a participant left out of randomisation. Reason is
// one of "province", "weeks" or "age".
func RecordExclusion(reason string) {
	exclusionsTotal.WithLabelValues(reason).Inc()
}

// RecordContentLookup counts a content lookup. Outcome is one of "found",
// "not_found", "multiple" or "error".
func RecordContentLookup(kind, outcome string) {
	contentLookupsTotal.WithLabelValues(kind, outcome).Inc()
}
