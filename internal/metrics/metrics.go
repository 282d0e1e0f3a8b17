// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Resolver metrics
	IncCalculationResolved()
	IncCalculationMiss()

	// Usage tracking pipeline metrics
	IncTrackSubmitted(status string) // status: "accepted", "rejected", "deduplicated"
	IncUsageWrite(status string)     // status: "success", "degraded"
	ObserveMergeDuration(duration time.Duration)
	SetQueueDepth(depth int64)

	// Store fallback metrics
	IncStoreFallback(source string) // source: "cache", "backup", "local"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
