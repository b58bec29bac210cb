package coordinator

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/forgelabs/scanforge/internal/model"
)

var (
	scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanforge_scans_total",
			Help: "Total number of scans resolved, by execution mode and outcome status.",
		},
		[]string{"mode", "status"},
	)

	scanDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scanforge_scan_duration_seconds",
			Help:    "Scan duration from job start to outcome resolution, in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	activeWorkers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scanforge_active_workers",
			Help: "Number of currently running isolated worker processes.",
		},
	)
)

func init() {
	prometheus.MustRegister(scansTotal)
	prometheus.MustRegister(scanDuration)
	prometheus.MustRegister(activeWorkers)

	// Pre-initialize counter label combinations so they appear in /metrics
	// with value 0 from startup, rather than only after first observation.
	for _, mode := range []string{model.ModeInline, model.ModeIsolated} {
		for _, status := range []string{model.StatusCompleted, model.StatusTimedOut, model.StatusFaulted} {
			scansTotal.WithLabelValues(mode, status)
		}
	}
}
