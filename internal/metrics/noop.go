package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncCalculationResolved is a no-op.
func (n *NoopRecorder) IncCalculationResolved() {}

// IncCalculationMiss is a no-op.
func (n *NoopRecorder) IncCalculationMiss() {}

// IncTrackSubmitted is a no-op.
func (n *NoopRecorder) IncTrackSubmitted(status string) {}

// IncUsageWrite is a no-op.
func (n *NoopRecorder) IncUsageWrite(status string) {}

// ObserveMergeDuration is a no-op.
func (n *NoopRecorder) ObserveMergeDuration(duration time.Duration) {}

// SetQueueDepth is a no-op.
func (n *NoopRecorder) SetQueueDepth(depth int64) {}

// IncStoreFallback is a no-op.
func (n *NoopRecorder) IncStoreFallback(source string) {}
