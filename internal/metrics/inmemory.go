package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	CalculationsResolved uint64
	CalculationMisses    uint64

	TracksAccepted     uint64
	TracksRejected     uint64
	TracksDeduplicated uint64

	UsageWritesSucceeded uint64
	UsageWritesDegraded  uint64

	MergeDurationCount   uint64
	MergeDurationTotalNs int64
	QueueDepth           int64

	FallbacksToCache  uint64
	FallbacksToBackup uint64
	FallbacksToLocal  uint64
}

// InMemoryRecorder stores metrics in memory for tests and the /metrics
// endpoint.
type InMemoryRecorder struct {
	calculationsResolved uint64
	calculationMisses    uint64

	tracksAccepted     uint64
	tracksRejected     uint64
	tracksDeduplicated uint64

	usageWritesSucceeded uint64
	usageWritesDegraded  uint64

	mergeDurationCount   uint64
	mergeDurationTotalNs int64
	queueDepth           int64

	fallbacksToCache  uint64
	fallbacksToBackup uint64
	fallbacksToLocal  uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		CalculationsResolved: atomic.LoadUint64(&m.calculationsResolved),
		CalculationMisses:    atomic.LoadUint64(&m.calculationMisses),
		TracksAccepted:       atomic.LoadUint64(&m.tracksAccepted),
		TracksRejected:       atomic.LoadUint64(&m.tracksRejected),
		TracksDeduplicated:   atomic.LoadUint64(&m.tracksDeduplicated),
		UsageWritesSucceeded: atomic.LoadUint64(&m.usageWritesSucceeded),
		UsageWritesDegraded:  atomic.LoadUint64(&m.usageWritesDegraded),
		MergeDurationCount:   atomic.LoadUint64(&m.mergeDurationCount),
		MergeDurationTotalNs: atomic.LoadInt64(&m.mergeDurationTotalNs),
		QueueDepth:           atomic.LoadInt64(&m.queueDepth),
		FallbacksToCache:     atomic.LoadUint64(&m.fallbacksToCache),
		FallbacksToBackup:    atomic.LoadUint64(&m.fallbacksToBackup),
		FallbacksToLocal:     atomic.LoadUint64(&m.fallbacksToLocal),
	}
}

// IncCalculationResolved increments the resolved-calculation counter.
func (m *InMemoryRecorder) IncCalculationResolved() {
	atomic.AddUint64(&m.calculationsResolved, 1)
}

// IncCalculationMiss increments the resolution-miss counter.
func (m *InMemoryRecorder) IncCalculationMiss() {
	atomic.AddUint64(&m.calculationMisses, 1)
}

// IncTrackSubmitted increments the track counter for a status.
func (m *InMemoryRecorder) IncTrackSubmitted(status string) {
	switch status {
	case "accepted":
		atomic.AddUint64(&m.tracksAccepted, 1)
	case "rejected":
		atomic.AddUint64(&m.tracksRejected, 1)
	case "deduplicated":
		atomic.AddUint64(&m.tracksDeduplicated, 1)
	}
}

// IncUsageWrite increments the usage-write counter for a status.
func (m *InMemoryRecorder) IncUsageWrite(status string) {
	switch status {
	case "success":
		atomic.AddUint64(&m.usageWritesSucceeded, 1)
	case "degraded":
		atomic.AddUint64(&m.usageWritesDegraded, 1)
	}
}

// ObserveMergeDuration records a merge-write duration.
func (m *InMemoryRecorder) ObserveMergeDuration(duration time.Duration) {
	atomic.AddUint64(&m.mergeDurationCount, 1)
	atomic.AddInt64(&m.mergeDurationTotalNs, duration.Nanoseconds())
}

// SetQueueDepth records the current increment queue depth.
func (m *InMemoryRecorder) SetQueueDepth(depth int64) {
	atomic.StoreInt64(&m.queueDepth, depth)
}

// IncStoreFallback increments the fallback counter for a source.
func (m *InMemoryRecorder) IncStoreFallback(source string) {
	switch source {
	case "cache":
		atomic.AddUint64(&m.fallbacksToCache, 1)
	case "backup":
		atomic.AddUint64(&m.fallbacksToBackup, 1)
	case "local":
		atomic.AddUint64(&m.fallbacksToLocal, 1)
	}
}
