package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vidrate/vidrate/internal/metrics"
	"github.com/vidrate/vidrate/internal/model"
	"github.com/vidrate/vidrate/internal/resolver"
)

// CalculateHandler resolves selection keys into file-size estimates.
type CalculateHandler struct {
	catalog          *model.CodecCatalog
	defaultFrameRate string
	logger           *slog.Logger
	metrics          metrics.Recorder
}

// NewCalculateHandler creates a CalculateHandler over a read-only catalog.
func NewCalculateHandler(catalog *model.CodecCatalog, defaultFrameRate string, logger *slog.Logger, recorder metrics.Recorder) *CalculateHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &CalculateHandler{
		catalog:          catalog,
		defaultFrameRate: defaultFrameRate,
		logger:           logger.With("component", "handler.calculate"),
		metrics:          recorder,
	}
}

// CalculateRequest is the calculation input.
type CalculateRequest struct {
	Category   string         `json:"category"`
	Codec      string         `json:"codec"`
	Variant    string         `json:"variant"`
	Resolution string         `json:"resolution"`
	FrameRate  string         `json:"frameRate"`
	Duration   model.Duration `json:"duration"`
}

// CalculateResponse wraps the result. A resolution miss is a placeholder
// response, never an error status: the UI shows an empty result.
type CalculateResponse struct {
	Found  bool                     `json:"found"`
	Result *model.CalculationResult `json:"result,omitempty"`
}

// Calculate resolves a bitrate and file size for a selection.
//
// POST /api/v1/calculate
func (h *CalculateHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	key := model.SelectionKey{
		CategoryID:   req.Category,
		CodecID:      req.Codec,
		VariantName:  req.Variant,
		ResolutionID: req.Resolution,
		FrameRateID:  req.FrameRate,
	}.WithDefaultFrameRate(h.defaultFrameRate)

	result := resolver.Resolve(h.catalog, key, req.Duration.Normalize())
	if result == nil {
		h.metrics.IncCalculationMiss()
		writeJSON(w, http.StatusOK, CalculateResponse{Found: false})
		return
	}

	h.metrics.IncCalculationResolved()
	writeJSON(w, http.StatusOK, CalculateResponse{Found: true, Result: result})
}

// AvailabilityResponse lists usable options for dependent dropdowns.
type AvailabilityResponse struct {
	Resolutions []string            `json:"resolutions"`
	FrameRates  map[string][]string `json:"frame_rates"`
}

// Availability reports which resolutions and frame rates of a variant
// carry usable bitrates, for deterministic auto-selection in clients.
//
// GET /api/v1/availability?category=&codec=&variant=
func (h *CalculateHandler) Availability(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	category := h.catalog.Category(query.Get("category"))
	if category == nil {
		writeError(w, http.StatusNotFound, "unknown category")
		return
	}
	codec := category.Codec(query.Get("codec"))
	if codec == nil {
		writeError(w, http.StatusNotFound, "unknown codec")
		return
	}
	variant := codec.Variant(query.Get("variant"))
	if variant == nil {
		writeError(w, http.StatusNotFound, "unknown variant")
		return
	}

	resolutions := resolver.AvailableResolutions(variant)
	frameRates := make(map[string][]string, len(resolutions))
	for _, resolutionID := range resolutions {
		frameRates[resolutionID] = resolver.AvailableFrameRates(variant, resolutionID, knownFrameRates(variant))
	}

	writeJSON(w, http.StatusOK, AvailabilityResponse{
		Resolutions: resolutions,
		FrameRates:  frameRates,
	})
}

// knownFrameRates collects every frame rate mentioned by a variant, used
// as the full list for flat (frame-rate-indifferent) entries.
func knownFrameRates(variant *model.Variant) []string {
	seen := make(map[string]bool)
	var known []string
	for _, resolutionID := range variant.Bitrates.Resolutions() {
		entry, ok := variant.Bitrates.Entry(resolutionID)
		if !ok {
			continue
		}
		for _, frameRateID := range entry.FrameRates() {
			if !seen[frameRateID] {
				seen[frameRateID] = true
				known = append(known, frameRateID)
			}
		}
	}
	return known
}
