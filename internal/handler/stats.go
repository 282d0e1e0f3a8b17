package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vidrate/vidrate/internal/analytics"
	"github.com/vidrate/vidrate/internal/model"
	"github.com/vidrate/vidrate/internal/store"
)

// defaultTopLimit caps top-configuration queries when no limit is given.
const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

// UsageTracker is the aggregator surface the stats handler needs.
type UsageTracker interface {
	Track(category, codec, variant, resolution, frameRate string) bool
	TopN(ctx context.Context, n int) ([]model.ConfigurationCount, store.Source, error)
	TotalUsage(ctx context.Context) (analytics.UsageSummary, error)
	Clear(ctx context.Context) error
}

// StatsHandler exposes the usage counter store over HTTP.
type StatsHandler struct {
	tracker UsageTracker
	logger  *slog.Logger
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(tracker UsageTracker, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		tracker: tracker,
		logger:  logger.With("component", "handler.stats"),
	}
}

// TrackRequest identifies the configuration to count.
type TrackRequest struct {
	Category   string `json:"category"`
	Codec      string `json:"codec"`
	Variant    string `json:"variant"`
	Resolution string `json:"resolution"`
	FrameRate  string `json:"frameRate"`
}

// Track counts one calculation against a configuration. Tracking is
// best-effort telemetry: the response reports acceptance, and incomplete
// submissions are a quiet no-op rather than an error.
//
// POST /api/v1/track
func (h *StatsHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req TrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accepted := h.tracker.Track(req.Category, req.Codec, req.Variant, req.Resolution, req.FrameRate)
	writeJSON(w, http.StatusAccepted, map[string]bool{"accepted": accepted})
}

// TopResponse is the top-configurations payload with read provenance.
type TopResponse struct {
	Configurations []model.ConfigurationCount `json:"configurations"`
	Source         string                     `json:"source"`
}

// Top returns the most-calculated configurations.
//
// GET /api/v1/stats/top?limit=N
func (h *StatsHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit := defaultTopLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxTopLimit {
		limit = maxTopLimit
	}

	rows, source, err := h.tracker.TopN(r.Context(), limit)
	if err != nil {
		h.logger.Error("top configurations query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if rows == nil {
		rows = []model.ConfigurationCount{}
	}

	writeJSON(w, http.StatusOK, TopResponse{
		Configurations: rows,
		Source:         string(source),
	})
}

// Usage returns overall usage totals.
//
// GET /api/v1/stats/usage
func (h *StatsHandler) Usage(w http.ResponseWriter, r *http.Request) {
	summary, err := h.tracker.TotalUsage(r.Context())
	if err != nil {
		h.logger.Error("usage summary query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Clear resets all usage counters. Routed behind the admin capability
// middleware; the handler itself performs no authorization.
//
// DELETE /api/v1/stats
func (h *StatsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.tracker.Clear(r.Context()); err != nil {
		h.logger.Error("clear stats failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "clear failed")
		return
	}

	h.logger.Info("usage stats cleared",
		slog.String("remote_addr", r.RemoteAddr),
	)
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
