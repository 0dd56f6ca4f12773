// Package metrics exposes Prometheus gauges and counters for the replay
// harness, grounded in the teacher's state_metrics.go (gauges sampled on
// every epoch transition) and cache/sync_committee.go (hit/miss
// counters for an LRU-backed cache).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EpochNumberGauge tracks the epoch_number of the most recently
	// committed state.
	EpochNumberGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "epochkernel_epoch_number",
		Help: "epoch_number of the most recently committed EpochState.",
	})

	// EntropyMetricGauge tracks entropy_metric_scaled of the most
	// recently committed state, in raw scaled units.
	EntropyMetricGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "epochkernel_entropy_metric_scaled",
		Help: "entropy_metric_scaled of the most recently committed EpochState.",
	})

	// EpochApplyDurationSeconds observes wall-clock time spent inside a
	// single ApplyEpoch call.
	EpochApplyDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "epochkernel_epoch_apply_duration_seconds",
		Help:    "Wall-clock duration of a single ApplyEpoch call.",
		Buckets: prometheus.DefBuckets,
	})

	// EpochApplyFailuresTotal counts ApplyEpoch calls that returned an
	// error, labeled by the sentinel error's short name.
	EpochApplyFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "epochkernel_epoch_apply_failures_total",
		Help: "Count of ApplyEpoch calls that returned an error, by error kind.",
	}, []string{"error_kind"})

	// StateCacheHit tracks replay-cache lookups that found a previously
	// committed state for a given state_root.
	StateCacheHit = promauto.NewCounter(prometheus.CounterOpts{
		Name: "epochkernel_state_cache_hit",
		Help: "Number of replay state-root lookups served from the in-memory LRU cache.",
	})

	// StateCacheMiss tracks replay-cache lookups that required
	// recomputing or re-fetching a state.
	StateCacheMiss = promauto.NewCounter(prometheus.CounterOpts{
		Name: "epochkernel_state_cache_miss",
		Help: "Number of replay state-root lookups not present in the in-memory LRU cache.",
	})
)
