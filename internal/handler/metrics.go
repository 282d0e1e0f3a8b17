package handler

import (
	"fmt"
	"net/http"

	"github.com/vidrate/vidrate/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
//
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "vidrate_calculations_resolved_total %d\n", snap.CalculationsResolved)
	writeMetric(w, "vidrate_calculation_misses_total %d\n", snap.CalculationMisses)

	writeMetric(w, "vidrate_tracks_submitted_total{status=\"accepted\"} %d\n", snap.TracksAccepted)
	writeMetric(w, "vidrate_tracks_submitted_total{status=\"rejected\"} %d\n", snap.TracksRejected)
	writeMetric(w, "vidrate_tracks_submitted_total{status=\"deduplicated\"} %d\n", snap.TracksDeduplicated)

	writeMetric(w, "vidrate_usage_writes_total{status=\"success\"} %d\n", snap.UsageWritesSucceeded)
	writeMetric(w, "vidrate_usage_writes_total{status=\"degraded\"} %d\n", snap.UsageWritesDegraded)

	writeMetric(w, "vidrate_merge_duration_seconds_count %d\n", snap.MergeDurationCount)
	writeMetric(w, "vidrate_merge_duration_seconds_sum %.6f\n", float64(snap.MergeDurationTotalNs)/1e9)
	writeMetric(w, "vidrate_increment_queue_depth %d\n", snap.QueueDepth)

	writeMetric(w, "vidrate_store_fallbacks_total{source=\"cache\"} %d\n", snap.FallbacksToCache)
	writeMetric(w, "vidrate_store_fallbacks_total{source=\"backup\"} %d\n", snap.FallbacksToBackup)
	writeMetric(w, "vidrate_store_fallbacks_total{source=\"local\"} %d\n", snap.FallbacksToLocal)
}

func writeMetric(w http.ResponseWriter, format string, value any) {
	fmt.Fprintf(w, format, value)
}
