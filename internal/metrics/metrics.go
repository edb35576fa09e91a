// Package metrics defines the prometheus instruments exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SnapshotLoads counts canonical data loads by result (ok, cache, error).
	SnapshotLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photomapper_snapshot_loads_total",
		Help: "Canonical data loads by result.",
	}, []string{"result"})

	// Renames counts per-file rename outcomes by endpoint status.
	Renames = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photomapper_renames_total",
		Help: "Per-file rename outcomes by status.",
	}, []string{"status"})

	// Exports counts CSV exports produced.
	Exports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photomapper_exports_total",
		Help: "CSV exports produced.",
	})
)
