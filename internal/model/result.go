package model

// CalculationResult is an immutable snapshot of one file-size calculation.
// It is created fresh on every resolve and never mutated.
type CalculationResult struct {
	BitrateMbps  float64 `json:"bitrate_mbps"`
	FileSizeMB   float64 `json:"file_size_mb"`
	FileSizeGB   float64 `json:"file_size_gb"`
	FileSizeTB   float64 `json:"file_size_tb"`
	TotalSeconds int64   `json:"total_seconds"`

	// Resolved names, for display and for usage tracking.
	ResolvedCodec      string `json:"resolved_codec"`
	ResolvedVariant    string `json:"resolved_variant"`
	ResolvedResolution string `json:"resolved_resolution"`
	ResolvedFrameRate  string `json:"resolved_frame_rate"`
}
