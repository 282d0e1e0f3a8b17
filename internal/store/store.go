// Package store provides blob persistence for the usage record: a small
// get/set-by-key port with several backends and an ordered read fallback
// chain. The aggregator owns all merge semantics; backends only move bytes.
package store

import (
	"context"
	"errors"
	"log/slog"
)

// ErrNotFound indicates the key has no value in a backend.
var ErrNotFound = errors.New("store: key not found")

// Source identifies which backend served a read, so callers can surface
// staleness when the primary store was unavailable.
type Source string

// Read provenance, in fallback order.
const (
	SourcePrimary Source = "primary"
	SourceCache   Source = "cache"
	SourceBackup  Source = "backup"
	SourceLocal   Source = "local"
)

// Backend moves opaque blobs by key.
type Backend interface {
	// Get returns the stored value, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores the value, replacing any previous one.
	Set(ctx context.Context, key string, data []byte) error
}

// Tier pairs a backend with its provenance tag.
type Tier struct {
	Source  Source
	Backend Backend
}

// Chain reads through an ordered list of backends, degrading to the next
// tier when one is unavailable or empty. It never invents data: when every
// tier misses, the read reports ErrNotFound and the caller supplies the
// canonical empty record.
type Chain struct {
	tiers  []Tier
	logger *slog.Logger
}

// NewChain builds a fallback chain. Tiers with a nil backend are skipped,
// which lets optional backends (e.g. Postgres backup) drop out of the
// chain without special cases at the call site.
func NewChain(logger *slog.Logger, tiers ...Tier) *Chain {
	kept := make([]Tier, 0, len(tiers))
	for _, t := range tiers {
		if t.Backend != nil {
			kept = append(kept, t)
		}
	}
	return &Chain{
		tiers:  kept,
		logger: logger.With("component", "store.chain"),
	}
}

// Read tries each tier in order and returns the first hit with its
// provenance. Backend failures are logged and degrade to the next tier;
// only an all-tiers miss surfaces as ErrNotFound.
func (c *Chain) Read(ctx context.Context, key string) ([]byte, Source, error) {
	for i, tier := range c.tiers {
		data, err := tier.Backend.Get(ctx, key)
		if err == nil {
			if i > 0 {
				c.logger.Warn("read degraded to fallback tier",
					"key", key,
					"source", string(tier.Source),
				)
			}
			return data, tier.Source, nil
		}
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn("backend read failed",
				"key", key,
				"source", string(tier.Source),
				"error", err,
			)
		}
	}
	return nil, "", ErrNotFound
}
