package metrics

import (
	"testing"
	"time"
)

func TestInMemoryRecorder_Counters(t *testing.T) {
	t.Parallel()

	m := NewInMemory()

	m.IncCalculationResolved()
	m.IncCalculationResolved()
	m.IncCalculationMiss()

	m.IncTrackSubmitted("accepted")
	m.IncTrackSubmitted("rejected")
	m.IncTrackSubmitted("deduplicated")
	m.IncTrackSubmitted("unknown") // ignored

	m.IncUsageWrite("success")
	m.IncUsageWrite("degraded")

	m.ObserveMergeDuration(100 * time.Millisecond)
	m.ObserveMergeDuration(50 * time.Millisecond)
	m.SetQueueDepth(7)

	m.IncStoreFallback("cache")
	m.IncStoreFallback("backup")
	m.IncStoreFallback("local")
	m.IncStoreFallback("primary") // not a fallback, ignored

	snap := m.Snapshot()

	if snap.CalculationsResolved != 2 || snap.CalculationMisses != 1 {
		t.Errorf("calculations = %d/%d, want 2/1", snap.CalculationsResolved, snap.CalculationMisses)
	}
	if snap.TracksAccepted != 1 || snap.TracksRejected != 1 || snap.TracksDeduplicated != 1 {
		t.Errorf("tracks = %d/%d/%d, want 1/1/1", snap.TracksAccepted, snap.TracksRejected, snap.TracksDeduplicated)
	}
	if snap.UsageWritesSucceeded != 1 || snap.UsageWritesDegraded != 1 {
		t.Errorf("writes = %d/%d, want 1/1", snap.UsageWritesSucceeded, snap.UsageWritesDegraded)
	}
	if snap.MergeDurationCount != 2 {
		t.Errorf("merge count = %d, want 2", snap.MergeDurationCount)
	}
	if snap.MergeDurationTotalNs != int64(150*time.Millisecond) {
		t.Errorf("merge total = %d, want %d", snap.MergeDurationTotalNs, int64(150*time.Millisecond))
	}
	if snap.QueueDepth != 7 {
		t.Errorf("queue depth = %d, want 7", snap.QueueDepth)
	}
	if snap.FallbacksToCache != 1 || snap.FallbacksToBackup != 1 || snap.FallbacksToLocal != 1 {
		t.Errorf("fallbacks = %d/%d/%d, want 1/1/1", snap.FallbacksToCache, snap.FallbacksToBackup, snap.FallbacksToLocal)
	}
}

func TestNoopRecorder(t *testing.T) {
	t.Parallel()

	// The noop recorder must absorb every call without panicking.
	m := NewNoop()
	m.IncCalculationResolved()
	m.IncCalculationMiss()
	m.IncTrackSubmitted("accepted")
	m.IncUsageWrite("success")
	m.ObserveMergeDuration(time.Millisecond)
	m.SetQueueDepth(1)
	m.IncStoreFallback("cache")
}
