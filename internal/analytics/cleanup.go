package analytics

import (
	"sort"
	"time"

	"github.com/vidrate/vidrate/internal/model"
)

// Cleanup bounds the record in place after a merge: daily stats older than
// retentionDays are dropped, and when the configuration map exceeds
// maxConfigurations only the top entries by count survive. This keeps the
// record a fixed-size blob under unbounded signature cardinality.
func Cleanup(record *model.UsageRecord, now time.Time, retentionDays, maxConfigurations int) {
	if record == nil {
		return
	}

	pruneDailyStats(record, now, retentionDays)
	capConfigurations(record, maxConfigurations)
}

// pruneDailyStats drops date keys older than the retention window.
// ISO dates compare correctly as strings, so no parsing is needed.
func pruneDailyStats(record *model.UsageRecord, now time.Time, retentionDays int) {
	if retentionDays <= 0 || len(record.DailyStats) == 0 {
		return
	}

	cutoff := model.DayKey(now.AddDate(0, 0, -retentionDays))
	for day := range record.DailyStats {
		if day < cutoff {
			delete(record.DailyStats, day)
		}
	}
}

// capConfigurations discards the long tail when the counter map exceeds
// the cardinality ceiling, keeping the most-used signatures. The totals
// are left untouched: totalCalculations counts calculations, not retained
// signatures.
func capConfigurations(record *model.UsageRecord, maxConfigurations int) {
	if maxConfigurations <= 0 || len(record.Configurations) <= maxConfigurations {
		return
	}

	rows := make([]model.ConfigurationCount, 0, len(record.Configurations))
	for signature, count := range record.Configurations {
		rows = append(rows, model.ConfigurationCount{Signature: signature, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Signature < rows[j].Signature
	})

	kept := make(map[string]int64, maxConfigurations)
	for _, row := range rows[:maxConfigurations] {
		kept[row.Signature] = row.Count
	}
	record.Configurations = kept
}
