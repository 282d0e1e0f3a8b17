package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vidrate/vidrate/internal/catalog"
	"github.com/vidrate/vidrate/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCalculateHandler(t *testing.T) *CalculateHandler {
	t.Helper()
	return NewCalculateHandler(catalog.Default(), "30", discardLogger(), nil)
}

func TestCalculate_Found(t *testing.T) {
	t.Parallel()

	h := newCalculateHandler(t)

	body := `{
		"category": "delivery",
		"codec": "h264",
		"variant": "High Profile",
		"resolution": "1080p",
		"frameRate": "30",
		"duration": {"hours": 1}
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Calculate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp CalculateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Found || resp.Result == nil {
		t.Fatalf("response = %+v, want found result", resp)
	}
	if resp.Result.BitrateMbps != 15 {
		t.Errorf("BitrateMbps = %v, want 15", resp.Result.BitrateMbps)
	}
	if resp.Result.FileSizeMB != 6750 {
		t.Errorf("FileSizeMB = %v, want 6750", resp.Result.FileSizeMB)
	}
}

func TestCalculate_DefaultFrameRate(t *testing.T) {
	t.Parallel()

	h := newCalculateHandler(t)

	body := `{
		"category": "delivery",
		"codec": "h264",
		"variant": "High Profile",
		"resolution": "1080p",
		"duration": {"minutes": 10}
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Calculate(rec, req)

	var resp CalculateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Found {
		t.Fatal("omitted frame rate should resolve via the default")
	}
	if resp.Result.ResolvedFrameRate != "30" {
		t.Errorf("ResolvedFrameRate = %q, want 30", resp.Result.ResolvedFrameRate)
	}
}

func TestCalculate_MissIsPlaceholderNotError(t *testing.T) {
	t.Parallel()

	h := newCalculateHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{
			"unknown codec",
			`{"category":"delivery","codec":"vp9","variant":"High Profile","resolution":"1080p","frameRate":"30","duration":{"hours":1}}`,
		},
		{
			"incomplete selection",
			`{"category":"delivery","codec":"h264","duration":{"hours":1}}`,
		},
		{
			"zero duration",
			`{"category":"delivery","codec":"h264","variant":"High Profile","resolution":"1080p","frameRate":"30","duration":{}}`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/api/v1/calculate", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Calculate(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			var resp CalculateResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Found || resp.Result != nil {
				t.Errorf("response = %+v, want empty placeholder", resp)
			}
		})
	}
}

func TestCalculate_InvalidBody(t *testing.T) {
	t.Parallel()

	h := newCalculateHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculate", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Calculate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAvailability(t *testing.T) {
	t.Parallel()

	h := newCalculateHandler(t)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/availability?category=delivery&codec=h264&variant=High+Profile", nil)
	rec := httptest.NewRecorder()
	h.Availability(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp AvailabilityResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(resp.Resolutions) == 0 {
		t.Fatal("no resolutions reported")
	}
	if resp.Resolutions[0] != "720p" {
		t.Errorf("Resolutions[0] = %q, want 720p (catalog order)", resp.Resolutions[0])
	}
	rates := resp.FrameRates["1080p"]
	if len(rates) != 3 || rates[0] != "24" {
		t.Errorf("FrameRates[1080p] = %v, want [24 30 60]", rates)
	}
}

func TestAvailability_UnknownSelection(t *testing.T) {
	t.Parallel()

	h := newCalculateHandler(t)

	tests := []struct {
		name  string
		query string
	}{
		{"unknown category", "category=capture&codec=h264&variant=High+Profile"},
		{"unknown codec", "category=delivery&codec=vp9&variant=High+Profile"},
		{"unknown variant", "category=delivery&codec=h264&variant=Baseline"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/api/v1/availability?"+tt.query, nil)
			rec := httptest.NewRecorder()
			h.Availability(rec, req)

			if rec.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404", rec.Code)
			}
		})
	}
}

func TestKnownFrameRates(t *testing.T) {
	t.Parallel()

	var table model.BitrateTable
	table.Set("1080p", model.FrameRateBitrates(
		model.FrameRateBitrate{FrameRate: "24", Mbps: 10},
		model.FrameRateBitrate{FrameRate: "30", Mbps: 15},
	))
	table.Set("2160p", model.FrameRateBitrates(
		model.FrameRateBitrate{FrameRate: "30", Mbps: 56},
		model.FrameRateBitrate{FrameRate: "60", Mbps: 85},
	))
	table.Set("720p", model.FlatBitrate(4))

	got := knownFrameRates(&model.Variant{Name: "Test", Bitrates: table})
	want := []string{"24", "30", "60"}
	if len(got) != len(want) {
		t.Fatalf("knownFrameRates() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("knownFrameRates()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
