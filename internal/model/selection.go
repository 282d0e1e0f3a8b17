package model

import "strings"

// SelectionKey identifies a single cell of the codec catalog. All fields
// are plain strings; empty means "not yet chosen".
type SelectionKey struct {
	CategoryID   string `json:"category"`
	CodecID      string `json:"codec"`
	VariantName  string `json:"variant"`
	ResolutionID string `json:"resolution"`
	FrameRateID  string `json:"frameRate"`
}

// Complete reports whether category, codec, variant, and resolution are all
// chosen. The frame rate is not required; callers substitute a configured
// default when it is empty.
func (k SelectionKey) Complete() bool {
	return k.CategoryID != "" && k.CodecID != "" && k.VariantName != "" && k.ResolutionID != ""
}

// WithDefaultFrameRate returns a copy of the key with the frame rate filled
// in from the default when it is empty.
func (k SelectionKey) WithDefaultFrameRate(def string) SelectionKey {
	if k.FrameRateID == "" {
		k.FrameRateID = def
	}
	return k
}

// Signature returns the canonical configuration signature for the key.
func (k SelectionKey) Signature() string {
	return Signature(k.CategoryID, k.CodecID, k.VariantName, k.ResolutionID, k.FrameRateID)
}

// Signature joins the five configuration fields into the canonical
// `category-codec-variant-resolution-frameRate` string. Every producer of
// usage counters must go through this function: drift in the join format
// silently fragments counts.
func Signature(category, codec, variant, resolution, frameRate string) string {
	return strings.Join([]string{category, codec, variant, resolution, frameRate}, "-")
}
