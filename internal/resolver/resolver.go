// Package resolver turns a catalog selection plus a duration into an
// estimated file size. Resolution is pure: no I/O, no panics, and a miss
// anywhere along the lookup chain yields a nil result rather than an error.
package resolver

import "github.com/vidrate/vidrate/internal/model"

// Mbps × seconds / 8 = megabytes; binary prefixes above that.
const (
	bitsPerByte = 8
	mbPerGB     = 1024
	gbPerTB     = 1024
)

// Resolve looks up the bitrate for the selection and computes file sizes.
//
// The lookup walks category → codec → variant → resolution. A resolution
// entry is either a flat Mbps value (legacy form, frame rate ignored) or a
// frame-rate table. When the requested frame rate is missing from a
// non-empty table, the first frame rate in the table's defined order is
// substituted instead of failing. That keeps a calculation visible for
// unsupported frame-rate/resolution combinations at the cost of reporting
// a bitrate that may not be valid for the selected frame rate; it is a
// deliberate product behavior, not defensive fallback to remove.
//
// Returns nil when the selection is incomplete, any lookup misses, no
// usable bitrate exists, or the duration is not positive.
func Resolve(catalog *model.CodecCatalog, key model.SelectionKey, duration model.Duration) *model.CalculationResult {
	if catalog == nil || !key.Complete() {
		return nil
	}

	category := catalog.Category(key.CategoryID)
	if category == nil {
		return nil
	}

	codec := category.Codec(key.CodecID)
	if codec == nil {
		return nil
	}

	variant := codec.Variant(key.VariantName)
	if variant == nil {
		return nil
	}

	entry, ok := variant.Bitrates.Entry(key.ResolutionID)
	if !ok {
		return nil
	}

	bitrate, frameRate, ok := resolveBitrate(entry, key.FrameRateID)
	if !ok || bitrate <= 0 {
		return nil
	}

	totalSeconds := duration.TotalSeconds()
	if totalSeconds <= 0 {
		return nil
	}

	sizeMB := bitrate * float64(totalSeconds) / bitsPerByte

	return &model.CalculationResult{
		BitrateMbps:  bitrate,
		FileSizeMB:   sizeMB,
		FileSizeGB:   sizeMB / mbPerGB,
		FileSizeTB:   sizeMB / mbPerGB / gbPerTB,
		TotalSeconds: totalSeconds,

		ResolvedCodec:      codec.Name,
		ResolvedVariant:    variant.Name,
		ResolvedResolution: key.ResolutionID,
		ResolvedFrameRate:  frameRate,
	}
}

// resolveBitrate extracts the Mbps value from an entry for the requested
// frame rate, applying the first-defined-frame-rate substitution when the
// requested one is absent. The returned frame rate is the one whose bitrate
// was actually used.
func resolveBitrate(entry model.BitrateEntry, frameRateID string) (float64, string, bool) {
	if mbps, ok := entry.Flat(); ok {
		return mbps, frameRateID, true
	}

	if mbps, ok := entry.Rate(frameRateID); ok && mbps > 0 {
		return mbps, frameRateID, true
	}

	if first, mbps, ok := entry.First(); ok {
		return mbps, first, true
	}

	return 0, "", false
}

// AvailableResolutions returns, in table order, the resolutions of a
// variant that carry at least one usable bitrate: a flat value above zero,
// or at least one positive frame-rate value.
func AvailableResolutions(variant *model.Variant) []string {
	if variant == nil {
		return nil
	}

	var available []string
	for _, resolutionID := range variant.Bitrates.Resolutions() {
		entry, ok := variant.Bitrates.Entry(resolutionID)
		if !ok || !entry.HasPositive() {
			continue
		}
		available = append(available, resolutionID)
	}
	return available
}

// AvailableFrameRates returns the frame rates usable for a resolution of a
// variant. For a flat entry every known frame rate is available iff the
// value is positive; for a frame-rate table only the rates present with a
// positive value are returned, in the table's defined order.
//
// knownFrameRates supplies the full frame-rate list for the flat case and
// may be nil for table entries.
func AvailableFrameRates(variant *model.Variant, resolutionID string, knownFrameRates []string) []string {
	if variant == nil {
		return nil
	}

	entry, ok := variant.Bitrates.Entry(resolutionID)
	if !ok {
		return nil
	}

	if mbps, flat := entry.Flat(); flat {
		if mbps <= 0 {
			return nil
		}
		return append([]string(nil), knownFrameRates...)
	}

	var available []string
	for _, frameRateID := range entry.FrameRates() {
		if mbps, ok := entry.Rate(frameRateID); ok && mbps > 0 {
			available = append(available, frameRateID)
		}
	}
	return available
}
