package catalog

import "github.com/vidrate/vidrate/internal/model"

// Default returns the built-in catalog used when no catalog file is
// configured. Values are ballpark delivery/production bitrates in Mbps;
// deployments that care about accuracy supply their own catalog file.
func Default() *model.CodecCatalog {
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
							{
								Name: "High Profile",
								Bitrates: bitrateTable(
									resolution("720p", model.FrameRateBitrates(
										model.FrameRateBitrate{FrameRate: "24", Mbps: 5},
										model.FrameRateBitrate{FrameRate: "30", Mbps: 7.5},
										model.FrameRateBitrate{FrameRate: "60", Mbps: 11},
									)),
									resolution("1080p", model.FrameRateBitrates(
										model.FrameRateBitrate{FrameRate: "24", Mbps: 10},
										model.FrameRateBitrate{FrameRate: "30", Mbps: 15},
										model.FrameRateBitrate{FrameRate: "60", Mbps: 22},
									)),
									resolution("2160p", model.FrameRateBitrates(
										model.FrameRateBitrate{FrameRate: "24", Mbps: 44},
										model.FrameRateBitrate{FrameRate: "30", Mbps: 56},
										model.FrameRateBitrate{FrameRate: "60", Mbps: 85},
									)),
								),
							},
							{
								Name: "Main Profile",
								Bitrates: bitrateTable(
									resolution("720p", model.FlatBitrate(4)),
									resolution("1080p", model.FlatBitrate(8)),
								),
							},
						},
					},
					{
						ID:   "h265",
						Name: "H.265 / HEVC",
						Variants: []model.Variant{
							{
								Name: "Main 10",
								Bitrates: bitrateTable(
									resolution("1080p", model.FrameRateBitrates(
										model.FrameRateBitrate{FrameRate: "24", Mbps: 6},
										model.FrameRateBitrate{FrameRate: "30", Mbps: 8},
										model.FrameRateBitrate{FrameRate: "60", Mbps: 12},
									)),
									resolution("2160p", model.FrameRateBitrates(
										model.FrameRateBitrate{FrameRate: "24", Mbps: 24},
										model.FrameRateBitrate{FrameRate: "30", Mbps: 30},
										model.FrameRateBitrate{FrameRate: "60", Mbps: 45},
									)),
								),
							},
						},
					},
					{
						ID:   "av1",
						Name: "AV1",
						Variants: []model.Variant{
							{
								Name: "Main",
								Bitrates: bitrateTable(
									resolution("1080p", model.FrameRateBitrates(
										model.FrameRateBitrate{FrameRate: "24", Mbps: 5},
										model.FrameRateBitrate{FrameRate: "30", Mbps: 6.5},
										model.FrameRateBitrate{FrameRate: "60", Mbps: 10},
									)),
									resolution("2160p", model.FrameRateBitrates(
										model.FrameRateBitrate{FrameRate: "24", Mbps: 20},
										model.FrameRateBitrate{FrameRate: "30", Mbps: 25},
										model.FrameRateBitrate{FrameRate: "60", Mbps: 38},
									)),
								),
							},
						},
					},
				},
			},
			{
				ID:   "production",
				Name: "Production",
				Codecs: []model.Codec{
					{
						ID:   "prores",
						Name: "Apple ProRes",
						Variants: []model.Variant{
							{
								Name: "422",
								Bitrates: bitrateTable(
									resolution("1080p", model.FrameRateBitrates(
										model.FrameRateBitrate{FrameRate: "24", Mbps: 117},
										model.FrameRateBitrate{FrameRate: "30", Mbps: 147},
										model.FrameRateBitrate{FrameRate: "60", Mbps: 293},
									)),
									resolution("2160p", model.FrameRateBitrates(
										model.FrameRateBitrate{FrameRate: "24", Mbps: 471},
										model.FrameRateBitrate{FrameRate: "30", Mbps: 589},
										model.FrameRateBitrate{FrameRate: "60", Mbps: 1178},
									)),
								),
							},
							{
								Name: "422 HQ",
								Bitrates: bitrateTable(
									resolution("1080p", model.FrameRateBitrates(
										model.FrameRateBitrate{FrameRate: "24", Mbps: 176},
										model.FrameRateBitrate{FrameRate: "30", Mbps: 220},
										model.FrameRateBitrate{FrameRate: "60", Mbps: 440},
									)),
									resolution("2160p", model.FrameRateBitrates(
										model.FrameRateBitrate{FrameRate: "24", Mbps: 707},
										model.FrameRateBitrate{FrameRate: "30", Mbps: 884},
										model.FrameRateBitrate{FrameRate: "60", Mbps: 1768},
									)),
								),
							},
						},
					},
					{
						ID:   "dnxhd",
						Name: "Avid DNxHD",
						Variants: []model.Variant{
							{
								Name: "DNxHD 145",
								Bitrates: bitrateTable(
									resolution("1080p", model.FlatBitrate(145)),
								),
							},
							{
								Name: "DNxHD 220",
								Bitrates: bitrateTable(
									resolution("1080p", model.FlatBitrate(220)),
								),
							},
						},
					},
				},
			},
		},
	}
}

type resolutionEntry struct {
	id    string
	entry model.BitrateEntry
}

func resolution(id string, entry model.BitrateEntry) resolutionEntry {
	return resolutionEntry{id: id, entry: entry}
}

func bitrateTable(entries ...resolutionEntry) model.BitrateTable {
	var table model.BitrateTable
	for _, e := range entries {
		table.Set(e.id, e.entry)
	}
	return table
}
