// Package analytics maintains the shared usage counter store: which
// catalog configurations get calculated, how often, and when. Increments
// are serialized through an in-process queue and folded into the persisted
// record by addition, so concurrent writers from independent processes
// combine instead of overwriting each other.
package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/vidrate/vidrate/internal/metrics"
	"github.com/vidrate/vidrate/internal/model"
	"github.com/vidrate/vidrate/internal/store"
)

const (
	// DefaultRecordKey is the blob key of the shared usage record.
	DefaultRecordKey = "vidrate:usage"

	// DefaultQueueSize is the increment queue capacity.
	DefaultQueueSize = 1024

	// DefaultOpTimeout bounds each store read/write.
	DefaultOpTimeout = 3 * time.Second

	// DefaultRetentionDays is the daily-stats retention window.
	DefaultRetentionDays = 90

	// DefaultMaxConfigurations is the signature cardinality ceiling.
	DefaultMaxConfigurations = 1000

	// DefaultDedupWindow suppresses repeat submissions per signature.
	DefaultDedupWindow = 5 * time.Second

	// DefaultFrameRate is substituted when a track call omits the frame rate.
	DefaultFrameRate = "30"
)

// ErrWriteDegraded reports that an increment reached only the in-process
// tiers: every durable write attempt failed. The count is visible locally
// and the caller may queue a later retry.
var ErrWriteDegraded = errors.New("analytics: durable write failed, increment kept locally")

// Options tune the aggregator. Zero values fall back to the defaults.
type Options struct {
	RecordKey         string
	QueueSize         int
	OpTimeout         time.Duration
	WriteAttempts     int
	RetentionDays     int
	MaxConfigurations int
	DedupWindow       time.Duration
	DefaultFrameRate  string

	// Now overrides the clock in tests.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.RecordKey == "" {
		o.RecordKey = DefaultRecordKey
	}
	if o.QueueSize <= 0 {
		o.QueueSize = DefaultQueueSize
	}
	if o.OpTimeout <= 0 {
		o.OpTimeout = DefaultOpTimeout
	}
	if o.WriteAttempts <= 0 {
		o.WriteAttempts = store.DefaultWriteAttempts
	}
	if o.RetentionDays <= 0 {
		o.RetentionDays = DefaultRetentionDays
	}
	if o.MaxConfigurations <= 0 {
		o.MaxConfigurations = DefaultMaxConfigurations
	}
	if o.DedupWindow <= 0 {
		o.DedupWindow = DefaultDedupWindow
	}
	if o.DefaultFrameRate == "" {
		o.DefaultFrameRate = DefaultFrameRate
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// increment is one queued tracking event.
type increment struct {
	id        string
	signature string
	at        time.Time
	done      chan error // nil for fire-and-forget
}

// Aggregator owns the usage record lifecycle: read through the fallback
// chain, merge increments by addition, prune, and write back with retry.
// A single worker goroutine consumes the queue, so two increments from the
// same process never race each other against the cached base.
type Aggregator struct {
	primary store.Backend
	backup  store.Backend
	cache   *store.MemoryStore
	local   *store.MemoryStore
	chain   *store.Chain

	logger  *slog.Logger
	metrics metrics.Recorder
	opts    Options
	dedup   *dedupGuard
	queue   chan increment

	started  bool
	draining bool
	cancel   context.CancelFunc
	done     chan struct{}
	mu       sync.Mutex
}

// New creates an Aggregator. primary is required for durable writes;
// backup may be nil, which removes the backup tier from the fallback chain.
func New(primary, backup store.Backend, logger *slog.Logger, recorder metrics.Recorder, opts Options) *Aggregator {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	opts = opts.withDefaults()

	cache := store.NewMemoryStore()
	local := store.NewMemoryStore()
	chain := store.NewChain(logger,
		store.Tier{Source: store.SourcePrimary, Backend: primary},
		store.Tier{Source: store.SourceCache, Backend: cache},
		store.Tier{Source: store.SourceBackup, Backend: backup},
		store.Tier{Source: store.SourceLocal, Backend: local},
	)

	return &Aggregator{
		primary: primary,
		backup:  backup,
		cache:   cache,
		local:   local,
		chain:   chain,
		logger:  logger.With("component", "analytics.aggregator"),
		metrics: recorder,
		opts:    opts,
		dedup:   newDedupGuard(opts.DedupWindow, opts.Now),
		queue:   make(chan increment, opts.QueueSize),
	}
}

// Track records one calculation against a configuration. Category, codec,
// variant, and resolution must all be non-empty; otherwise the call is a
// no-op, not an error. An empty frame rate takes the configured default.
// Repeat submissions for the same signature inside the dedup window are
// suppressed. Returns whether the event was accepted for processing.
func (a *Aggregator) Track(category, codec, variant, resolution, frameRate string) bool {
	return a.track(category, codec, variant, resolution, frameRate, nil)
}

// TrackSync is Track with delivery feedback: it blocks until the increment
// has been merged and written, and returns ErrWriteDegraded when the count
// reached only the in-process tiers. Rejected and deduplicated submissions
// return nil immediately.
func (a *Aggregator) TrackSync(ctx context.Context, category, codec, variant, resolution, frameRate string) error {
	done := make(chan error, 1)
	if !a.track(category, codec, variant, resolution, frameRate, done) {
		return nil
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Aggregator) track(category, codec, variant, resolution, frameRate string, done chan error) bool {
	if category == "" || codec == "" || variant == "" || resolution == "" {
		a.metrics.IncTrackSubmitted("rejected")
		return false
	}
	if frameRate == "" {
		frameRate = a.opts.DefaultFrameRate
	}

	signature := model.Signature(category, codec, variant, resolution, frameRate)
	now := a.opts.Now()

	if !a.dedup.Allow(signature, now) {
		a.metrics.IncTrackSubmitted("deduplicated")
		return false
	}

	inc := increment{
		id:        ulid.Make().String(),
		signature: signature,
		at:        now,
		done:      done,
	}

	select {
	case a.queue <- inc:
		a.metrics.IncTrackSubmitted("accepted")
		a.metrics.SetQueueDepth(int64(len(a.queue)))
		return true
	default:
		a.logger.Warn("increment queue full, dropping event",
			"event_id", inc.id,
			"signature", signature,
		)
		a.metrics.IncTrackSubmitted("rejected")
		return false
	}
}

// Run starts the worker loop. Blocks until context is cancelled.
func (a *Aggregator) Run(ctx context.Context) error {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return errors.New("aggregator already started")
	}
	a.started = true
	a.done = make(chan struct{})
	ctx, a.cancel = context.WithCancel(ctx)
	a.mu.Unlock()

	defer close(a.done)

	a.logger.Info("usage aggregator started")

	for {
		select {
		case <-ctx.Done():
			a.drainQueue()
			a.logger.Info("usage aggregator stopping")
			return ctx.Err()
		case inc := <-a.queue:
			a.metrics.SetQueueDepth(int64(len(a.queue)))
			err := a.process(ctx, inc)
			if inc.done != nil {
				inc.done <- err
			}
		}
	}
}

// Shutdown gracefully stops the worker, completing any in-flight merge and
// draining queued increments. Implements server.ShutdownFunc.
func (a *Aggregator) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	if !a.started {
		a.mu.Unlock()
		return nil
	}
	a.draining = true
	cancel := a.cancel
	done := a.done
	a.mu.Unlock()

	a.logger.Info("usage aggregator shutdown initiated")

	if cancel != nil {
		cancel()
	}

	if done != nil {
		select {
		case <-done:
			a.logger.Info("usage aggregator shutdown complete")
			return nil
		case <-ctx.Done():
			a.logger.Warn("usage aggregator shutdown timed out")
			return ctx.Err()
		}
	}
	return nil
}

// drainQueue processes whatever is still queued at shutdown using a fresh
// short-lived context, so accepted increments are not thrown away.
func (a *Aggregator) drainQueue() {
	drainCtx, cancel := context.WithTimeout(context.Background(), a.opts.OpTimeout)
	defer cancel()

	for {
		select {
		case inc := <-a.queue:
			err := a.process(drainCtx, inc)
			if inc.done != nil {
				inc.done <- err
			}
		default:
			return
		}
	}
}

// process merges one increment into the freshest readable base and writes
// the result back. The base is re-read on every increment so that merges
// from other processes landed since the last write are not clobbered.
func (a *Aggregator) process(ctx context.Context, inc increment) error {
	start := a.opts.Now()

	opCtx, cancel := context.WithTimeout(ctx, a.opts.OpTimeout)
	defer cancel()

	record, _ := a.readRecord(opCtx)
	delta := model.NewIncrement(inc.signature, inc.at)
	record.Merge(delta)
	record.Metadata.LastUpdated = inc.at.UnixMilli()
	Cleanup(record, inc.at, a.opts.RetentionDays, a.opts.MaxConfigurations)

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal usage record: %w", err)
	}

	// The cache tier always reflects the merged view, durable or not.
	_ = a.cache.Set(opCtx, a.opts.RecordKey, data)

	if err := store.WriteWithRetry(opCtx, a.primary, a.opts.RecordKey, data, a.opts.WriteAttempts); err != nil {
		a.keepLocal(opCtx, delta)
		a.metrics.IncUsageWrite("degraded")
		a.logger.Warn("durable usage write failed, increment kept locally",
			"event_id", inc.id,
			"signature", inc.signature,
			"error", err,
		)
		return ErrWriteDegraded
	}

	a.mirrorToBackup(data)
	a.metrics.IncUsageWrite("success")
	a.metrics.ObserveMergeDuration(a.opts.Now().Sub(start))

	a.logger.Debug("usage increment merged",
		"event_id", inc.id,
		"signature", inc.signature,
		"total_calculations", record.TotalCalculations,
	)
	return nil
}

// readRecord reads the current record through the fallback chain. A miss
// on every tier or a corrupt blob degrades to the canonical empty record.
func (a *Aggregator) readRecord(ctx context.Context) (*model.UsageRecord, store.Source) {
	data, source, err := a.chain.Read(ctx, a.opts.RecordKey)
	if err != nil {
		return model.NewUsageRecord(a.opts.Now()), store.SourceLocal
	}

	if source != store.SourcePrimary {
		a.metrics.IncStoreFallback(string(source))
	}

	var record model.UsageRecord
	if err := json.Unmarshal(data, &record); err != nil {
		a.logger.Warn("corrupt usage record, starting fresh",
			"source", string(source),
			"error", err,
		)
		return model.NewUsageRecord(a.opts.Now()), store.SourceLocal
	}
	if record.Configurations == nil {
		record.Configurations = make(map[string]int64)
	}
	if record.DailyStats == nil {
		record.DailyStats = make(map[string]int64)
	}
	return &record, source
}

// keepLocal folds a delta into the process-local tier, which accumulates
// the increments that never reached a durable store.
func (a *Aggregator) keepLocal(ctx context.Context, delta *model.UsageRecord) {
	localRecord := model.NewUsageRecord(a.opts.Now())
	if data, err := a.local.Get(ctx, a.opts.RecordKey); err == nil {
		if err := json.Unmarshal(data, localRecord); err != nil {
			localRecord = model.NewUsageRecord(a.opts.Now())
		}
	}
	localRecord.Merge(delta)

	if data, err := json.Marshal(localRecord); err == nil {
		_ = a.local.Set(ctx, a.opts.RecordKey, data)
	}
}

// mirrorToBackup copies the latest durable record to the backup tier,
// best effort. Backup staleness is acceptable; backup loss is logged.
func (a *Aggregator) mirrorToBackup(data []byte) {
	if a.backup == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.opts.OpTimeout)
	defer cancel()

	if err := a.backup.Set(ctx, a.opts.RecordKey, data); err != nil {
		a.logger.Warn("backup mirror failed", "error", err)
	}
}

// TopN returns at most n configurations ordered by count descending.
// Ties break by signature, an arbitrary but stable order. The source tag
// reports which tier served the read.
func (a *Aggregator) TopN(ctx context.Context, n int) ([]model.ConfigurationCount, store.Source, error) {
	if n <= 0 {
		return nil, store.SourceLocal, nil
	}

	opCtx, cancel := context.WithTimeout(ctx, a.opts.OpTimeout)
	defer cancel()

	record, source := a.readRecord(opCtx)

	top := topConfigurations(record.Configurations, n)
	return top, source, nil
}

// UsageSummary is the totals view of the record.
type UsageSummary struct {
	TotalCalculations    int64      `json:"total_calculations"`
	LastUsed             *time.Time `json:"last_used,omitempty"`
	UniqueConfigurations int        `json:"unique_configurations"`
	Source               string     `json:"source"`
}

// TotalUsage returns overall counters with read provenance.
func (a *Aggregator) TotalUsage(ctx context.Context) (UsageSummary, error) {
	opCtx, cancel := context.WithTimeout(ctx, a.opts.OpTimeout)
	defer cancel()

	record, source := a.readRecord(opCtx)

	summary := UsageSummary{
		TotalCalculations:    record.TotalCalculations,
		UniqueConfigurations: len(record.Configurations),
		Source:               string(source),
	}
	if record.LastUsed != nil {
		lastUsed := time.UnixMilli(*record.LastUsed).UTC()
		summary.LastUsed = &lastUsed
	}
	return summary, nil
}

// Clear resets the persisted record to the canonical empty form on every
// tier. Unlike increments this is deliberate last-writer-wins: it is a
// rare administrative action and wholesale replacement is the point.
// Authorization is the HTTP layer's responsibility.
func (a *Aggregator) Clear(ctx context.Context) error {
	opCtx, cancel := context.WithTimeout(ctx, a.opts.OpTimeout)
	defer cancel()

	record := model.NewUsageRecord(a.opts.Now())
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal empty record: %w", err)
	}

	// Local tiers first so a failed primary write cannot leave stale
	// counts resurfacing through the fallback chain.
	_ = a.cache.Set(opCtx, a.opts.RecordKey, data)
	a.local.Delete(a.opts.RecordKey)

	if err := store.WriteWithRetry(opCtx, a.primary, a.opts.RecordKey, data, a.opts.WriteAttempts); err != nil {
		return fmt.Errorf("clear usage record: %w", err)
	}
	a.mirrorToBackup(data)

	a.logger.Info("usage record cleared")
	return nil
}

// topConfigurations sorts the counter map and keeps the first n rows.
func topConfigurations(configurations map[string]int64, n int) []model.ConfigurationCount {
	rows := make([]model.ConfigurationCount, 0, len(configurations))
	for signature, count := range configurations {
		rows = append(rows, model.ConfigurationCount{Signature: signature, Count: count})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Signature < rows[j].Signature
	})

	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}
