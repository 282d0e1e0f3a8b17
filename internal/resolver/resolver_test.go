package resolver

import (
	"math"
	"reflect"
	"testing"

	"github.com/vidrate/vidrate/internal/model"
)

// testCatalog builds a small catalog with one frame-rate-keyed variant and
// one legacy flat variant.
func testCatalog() *model.CodecCatalog {
	var highProfile model.BitrateTable
	highProfile.Set("1080p", model.FrameRateBitrates(
		model.FrameRateBitrate{FrameRate: "24", Mbps: 10},
		model.FrameRateBitrate{FrameRate: "30", Mbps: 15},
	))
	highProfile.Set("720p", model.FrameRateBitrates(
		model.FrameRateBitrate{FrameRate: "30", Mbps: 7.5},
	))

	var mainProfile model.BitrateTable
	mainProfile.Set("1080p", model.FlatBitrate(8))

	return &model.CodecCatalog{
		Categories: []model.Category{
			{
				ID:   "delivery",
				Name: "Delivery",
				Codecs: []model.Codec{
					{
						ID:   "h264",
						Name: "H.264 / AVC",
						Variants: []model.Variant{
							{Name: "High Profile", Bitrates: highProfile},
							{Name: "Main Profile", Bitrates: mainProfile},
						},
					},
				},
			},
		},
	}
}

func completeKey(frameRate string) model.SelectionKey {
	return model.SelectionKey{
		CategoryID:   "delivery",
		CodecID:      "h264",
		VariantName:  "High Profile",
		ResolutionID: "1080p",
		FrameRateID:  frameRate,
	}
}

func TestResolve_Scenario(t *testing.T) {
	t.Parallel()

	// 15 Mbps at 1080p30 for one hour.
	result := Resolve(testCatalog(), completeKey("30"), model.Duration{Hours: 1})
	if result == nil {
		t.Fatal("Resolve() = nil, want result")
	}

	if result.BitrateMbps != 15 {
		t.Errorf("BitrateMbps = %v, want 15", result.BitrateMbps)
	}
	if result.FileSizeMB != 6750 {
		t.Errorf("FileSizeMB = %v, want 6750", result.FileSizeMB)
	}
	if math.Abs(result.FileSizeGB-6.5918) > 0.001 {
		t.Errorf("FileSizeGB = %v, want ≈6.59", result.FileSizeGB)
	}
	if result.TotalSeconds != 3600 {
		t.Errorf("TotalSeconds = %d, want 3600", result.TotalSeconds)
	}
	if result.ResolvedCodec != "H.264 / AVC" || result.ResolvedVariant != "High Profile" {
		t.Errorf("resolved names = %q/%q", result.ResolvedCodec, result.ResolvedVariant)
	}
	if result.ResolvedFrameRate != "30" {
		t.Errorf("ResolvedFrameRate = %q, want 30", result.ResolvedFrameRate)
	}
}

func TestResolve_UnitConversions(t *testing.T) {
	t.Parallel()

	catalog := testCatalog()
	key := model.SelectionKey{
		CategoryID:   "delivery",
		CodecID:      "h264",
		VariantName:  "Main Profile",
		ResolutionID: "1080p",
		FrameRateID:  "30",
	}

	// 8 Mbps for 3600 s: 3600 MB, 3.515625 GB, ~0.003433 TB.
	result := Resolve(catalog, key, model.Duration{Hours: 1})
	if result == nil {
		t.Fatal("Resolve() = nil, want result")
	}

	if result.FileSizeMB != 3600 {
		t.Errorf("FileSizeMB = %v, want 3600", result.FileSizeMB)
	}
	if result.FileSizeGB != 3.515625 {
		t.Errorf("FileSizeGB = %v, want 3.515625", result.FileSizeGB)
	}
	if math.Abs(result.FileSizeTB-0.003433) > 0.000001 {
		t.Errorf("FileSizeTB = %v, want ≈0.003433", result.FileSizeTB)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	t.Parallel()

	catalog := testCatalog()
	key := completeKey("30")
	duration := model.Duration{Minutes: 42, Seconds: 17}

	first := Resolve(catalog, key, duration)
	second := Resolve(catalog, key, duration)

	if first == nil || second == nil {
		t.Fatal("Resolve() = nil, want result")
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated calls differ: %+v vs %+v", first, second)
	}
}

func TestResolve_FrameRateFallbackTakesFirstKey(t *testing.T) {
	t.Parallel()

	// 60 fps is not in the {"24":10, "30":15} map: the first defined
	// frame rate substitutes, so the result reports 24 fps at 10 Mbps.
	result := Resolve(testCatalog(), completeKey("60"), model.Duration{Hours: 1})
	if result == nil {
		t.Fatal("Resolve() = nil, want fallback result")
	}

	if result.BitrateMbps != 10 {
		t.Errorf("BitrateMbps = %v, want 10 (first map entry)", result.BitrateMbps)
	}
	if result.ResolvedFrameRate != "24" {
		t.Errorf("ResolvedFrameRate = %q, want 24", result.ResolvedFrameRate)
	}
}

func TestResolve_FlatEntryIgnoresFrameRate(t *testing.T) {
	t.Parallel()

	catalog := testCatalog()

	for _, frameRate := range []string{"24", "30", "60", "120"} {
		key := model.SelectionKey{
			CategoryID:   "delivery",
			CodecID:      "h264",
			VariantName:  "Main Profile",
			ResolutionID: "1080p",
			FrameRateID:  frameRate,
		}
		result := Resolve(catalog, key, model.Duration{Minutes: 1})
		if result == nil {
			t.Fatalf("Resolve(frameRate=%s) = nil, want result", frameRate)
		}
		if result.BitrateMbps != 8 {
			t.Errorf("Resolve(frameRate=%s).BitrateMbps = %v, want 8", frameRate, result.BitrateMbps)
		}
	}
}

func TestResolve_MissesReturnNil(t *testing.T) {
	t.Parallel()

	catalog := testCatalog()
	duration := model.Duration{Hours: 1}

	tests := []struct {
		name string
		key  model.SelectionKey
	}{
		{"empty key", model.SelectionKey{}},
		{"unknown category", model.SelectionKey{CategoryID: "capture", CodecID: "h264", VariantName: "High Profile", ResolutionID: "1080p", FrameRateID: "30"}},
		{"unknown codec", model.SelectionKey{CategoryID: "delivery", CodecID: "vp9", VariantName: "High Profile", ResolutionID: "1080p", FrameRateID: "30"}},
		{"unknown variant", model.SelectionKey{CategoryID: "delivery", CodecID: "h264", VariantName: "Baseline", ResolutionID: "1080p", FrameRateID: "30"}},
		{"unknown resolution", model.SelectionKey{CategoryID: "delivery", CodecID: "h264", VariantName: "High Profile", ResolutionID: "480p", FrameRateID: "30"}},
		{"incomplete key", model.SelectionKey{CategoryID: "delivery", CodecID: "h264"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Resolve(catalog, tt.key, duration); got != nil {
				t.Errorf("Resolve() = %+v, want nil", got)
			}
		})
	}
}

func TestResolve_NonPositiveDuration(t *testing.T) {
	t.Parallel()

	if got := Resolve(testCatalog(), completeKey("30"), model.Duration{}); got != nil {
		t.Errorf("zero duration should yield nil, got %+v", got)
	}
}

func TestResolve_EmptyFrameRateMap(t *testing.T) {
	t.Parallel()

	// A malformed entry with no usable values resolves to nothing rather
	// than failing the computation.
	var table model.BitrateTable
	table.Set("1080p", model.FrameRateBitrates())

	catalog := &model.CodecCatalog{
		Categories: []model.Category{{
			ID: "delivery", Name: "Delivery",
			Codecs: []model.Codec{{
				ID: "h264", Name: "H.264",
				Variants: []model.Variant{{Name: "Broken", Bitrates: table}},
			}},
		}},
	}

	key := model.SelectionKey{
		CategoryID:   "delivery",
		CodecID:      "h264",
		VariantName:  "Broken",
		ResolutionID: "1080p",
		FrameRateID:  "30",
	}
	if got := Resolve(catalog, key, model.Duration{Hours: 1}); got != nil {
		t.Errorf("empty map should yield nil, got %+v", got)
	}
}

func TestResolve_NilCatalog(t *testing.T) {
	t.Parallel()

	if got := Resolve(nil, completeKey("30"), model.Duration{Hours: 1}); got != nil {
		t.Errorf("nil catalog should yield nil, got %+v", got)
	}
}

func TestAvailableResolutions(t *testing.T) {
	t.Parallel()

	var table model.BitrateTable
	table.Set("720p", model.FlatBitrate(4))
	table.Set("1080p", model.FrameRateBitrates(
		model.FrameRateBitrate{FrameRate: "30", Mbps: 15},
	))
	table.Set("2160p", model.FrameRateBitrates(
		model.FrameRateBitrate{FrameRate: "30", Mbps: 0},
	))
	table.Set("4320p", model.FlatBitrate(0))

	variant := &model.Variant{Name: "Test", Bitrates: table}

	got := AvailableResolutions(variant)
	want := []string{"720p", "1080p"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AvailableResolutions() = %v, want %v", got, want)
	}
}

func TestAvailableResolutions_NilVariant(t *testing.T) {
	t.Parallel()

	if got := AvailableResolutions(nil); got != nil {
		t.Errorf("AvailableResolutions(nil) = %v, want nil", got)
	}
}

func TestAvailableFrameRates(t *testing.T) {
	t.Parallel()

	var table model.BitrateTable
	table.Set("1080p", model.FrameRateBitrates(
		model.FrameRateBitrate{FrameRate: "24", Mbps: 10},
		model.FrameRateBitrate{FrameRate: "30", Mbps: 0},
		model.FrameRateBitrate{FrameRate: "60", Mbps: 22},
	))
	table.Set("720p", model.FlatBitrate(4))
	table.Set("480p", model.FlatBitrate(0))

	variant := &model.Variant{Name: "Test", Bitrates: table}
	known := []string{"24", "30", "60"}

	tests := []struct {
		name       string
		resolution string
		want       []string
	}{
		{"map keeps only positive", "1080p", []string{"24", "60"}},
		{"flat positive exposes all known", "720p", []string{"24", "30", "60"}},
		{"flat zero exposes none", "480p", nil},
		{"missing resolution", "2160p", nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := AvailableFrameRates(variant, tt.resolution, known)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AvailableFrameRates(%s) = %v, want %v", tt.resolution, got, tt.want)
			}
		})
	}
}
