package model

import "time"

// UsageRecordVersion is the current persisted record schema version.
const UsageRecordVersion = 1

// UsageRecord is the persisted usage counter store. It is the only shared
// mutable state in the system; all mutation goes through Merge so that
// concurrent writers combine by addition instead of overwriting.
type UsageRecord struct {
	TotalCalculations int64            `json:"totalCalculations"`
	LastUsed          *int64           `json:"lastUsed"` // epoch millis
	Configurations    map[string]int64 `json:"configurations"`
	DailyStats        map[string]int64 `json:"dailyStats"` // keyed by YYYY-MM-DD (UTC)
	Metadata          RecordMetadata   `json:"metadata"`
}

// RecordMetadata tracks record lifecycle timestamps and schema version.
type RecordMetadata struct {
	Created     int64 `json:"created"`     // epoch millis
	LastUpdated int64 `json:"lastUpdated"` // epoch millis
	Version     int   `json:"version"`
}

// NewUsageRecord returns the canonical empty record.
func NewUsageRecord(now time.Time) *UsageRecord {
	millis := now.UnixMilli()
	return &UsageRecord{
		Configurations: make(map[string]int64),
		DailyStats:     make(map[string]int64),
		Metadata: RecordMetadata{
			Created:     millis,
			LastUpdated: millis,
			Version:     UsageRecordVersion,
		},
	}
}

// NewIncrement builds the delta record for a single tracked calculation:
// one count against the signature, one against today's date, and an
// updated last-used timestamp.
func NewIncrement(signature string, now time.Time) *UsageRecord {
	millis := now.UnixMilli()
	return &UsageRecord{
		TotalCalculations: 1,
		LastUsed:          &millis,
		Configurations:    map[string]int64{signature: 1},
		DailyStats:        map[string]int64{DayKey(now): 1},
		Metadata: RecordMetadata{
			Created:     millis,
			LastUpdated: millis,
			Version:     UsageRecordVersion,
		},
	}
}

// DayKey formats a timestamp as the UTC date key used in DailyStats.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Merge folds a delta into the record by summing overlapping counters and
// taking the later of the two last-used timestamps. Merge is commutative
// and associative, so concurrent writers that each re-read the latest base
// before merging cannot clobber one another's additions.
func (r *UsageRecord) Merge(delta *UsageRecord) {
	if delta == nil {
		return
	}

	r.TotalCalculations += delta.TotalCalculations

	if r.Configurations == nil {
		r.Configurations = make(map[string]int64)
	}
	for sig, n := range delta.Configurations {
		r.Configurations[sig] += n
	}

	if r.DailyStats == nil {
		r.DailyStats = make(map[string]int64)
	}
	for day, n := range delta.DailyStats {
		r.DailyStats[day] += n
	}

	if delta.LastUsed != nil && (r.LastUsed == nil || *delta.LastUsed > *r.LastUsed) {
		lastUsed := *delta.LastUsed
		r.LastUsed = &lastUsed
	}

	if delta.Metadata.LastUpdated > r.Metadata.LastUpdated {
		r.Metadata.LastUpdated = delta.Metadata.LastUpdated
	}
}

// Clone returns a deep copy of the record.
func (r *UsageRecord) Clone() *UsageRecord {
	if r == nil {
		return nil
	}

	clone := &UsageRecord{
		TotalCalculations: r.TotalCalculations,
		Configurations:    make(map[string]int64, len(r.Configurations)),
		DailyStats:        make(map[string]int64, len(r.DailyStats)),
		Metadata:          r.Metadata,
	}
	if r.LastUsed != nil {
		lastUsed := *r.LastUsed
		clone.LastUsed = &lastUsed
	}
	for sig, n := range r.Configurations {
		clone.Configurations[sig] = n
	}
	for day, n := range r.DailyStats {
		clone.DailyStats[day] = n
	}
	return clone
}

// ConfigurationCount is one row of a top-configurations query.
type ConfigurationCount struct {
	Signature string `json:"signature"`
	Count     int64  `json:"count"`
}
