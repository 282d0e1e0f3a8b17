// Package model defines domain entities for the application.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CodecCatalog is the full bitrate lookup table: an ordered sequence of
// categories, each holding codecs, variants, and per-resolution bitrates.
// The catalog is read-only input to the resolver; it is owned and edited
// by an external collaborator and never mutated here.
type CodecCatalog struct {
	Categories []Category `json:"categories"`
}

// Category groups codecs by use case (e.g. "delivery", "intermediate").
type Category struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Codecs []Codec `json:"codecs"`
}

// Codec is a single codec family (e.g. "h264") with its encoding variants.
type Codec struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Variants []Variant `json:"variants"`
}

// Variant is a named encoding preset of a codec (e.g. "High Profile")
// carrying resolution- and frame-rate-keyed bitrates.
type Variant struct {
	Name     string       `json:"name"`
	Bitrates BitrateTable `json:"bitrates"`
}

// Category returns the category with the given ID, or nil.
func (c *CodecCatalog) Category(id string) *Category {
	for i := range c.Categories {
		if c.Categories[i].ID == id {
			return &c.Categories[i]
		}
	}
	return nil
}

// Codec returns the codec with the given ID within the category, or nil.
func (c *Category) Codec(id string) *Codec {
	for i := range c.Codecs {
		if c.Codecs[i].ID == id {
			return &c.Codecs[i]
		}
	}
	return nil
}

// Variant returns the variant with the exact name, or nil.
func (c *Codec) Variant(name string) *Variant {
	for i := range c.Variants {
		if c.Variants[i].Name == name {
			return &c.Variants[i]
		}
	}
	return nil
}

// BitrateTable maps resolution IDs to bitrate entries while preserving the
// insertion order of the source document. Order matters downstream: the
// availability helpers report resolutions in table order.
type BitrateTable struct {
	entries map[string]BitrateEntry
	order   []string
}

// Set inserts or replaces the entry for a resolution. New resolutions are
// appended to the table order.
func (t *BitrateTable) Set(resolutionID string, entry BitrateEntry) {
	if t.entries == nil {
		t.entries = make(map[string]BitrateEntry)
	}
	if _, exists := t.entries[resolutionID]; !exists {
		t.order = append(t.order, resolutionID)
	}
	t.entries[resolutionID] = entry
}

// Entry returns the bitrate entry for a resolution.
func (t *BitrateTable) Entry(resolutionID string) (BitrateEntry, bool) {
	entry, ok := t.entries[resolutionID]
	return entry, ok
}

// Resolutions returns the resolution IDs in table order.
func (t *BitrateTable) Resolutions() []string {
	return append([]string(nil), t.order...)
}

// Len returns the number of resolutions in the table.
func (t *BitrateTable) Len() int {
	return len(t.order)
}

// UnmarshalJSON decodes a resolution→entry object, recording key order.
func (t *BitrateTable) UnmarshalJSON(data []byte) error {
	t.entries = make(map[string]BitrateEntry)
	t.order = nil

	return decodeOrderedObject(data, func(key string, raw json.RawMessage) error {
		var entry BitrateEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return fmt.Errorf("resolution %q: %w", key, err)
		}
		t.Set(key, entry)
		return nil
	})
}

// MarshalJSON encodes the table as an object in insertion order.
func (t BitrateTable) MarshalJSON() ([]byte, error) {
	return encodeOrderedObject(t.order, func(key string) (any, error) {
		return t.entries[key], nil
	})
}

// BitrateEntry is a tagged union: either a single flat Mbps value (the
// legacy form, frame rate irrelevant) or a frame-rate-keyed Mbps table.
type BitrateEntry struct {
	flat  *float64
	rates map[string]float64
	order []string
}

// FrameRateBitrate pairs a frame-rate ID with its Mbps value.
type FrameRateBitrate struct {
	FrameRate string
	Mbps      float64
}

// FlatBitrate builds a legacy single-value entry.
func FlatBitrate(mbps float64) BitrateEntry {
	return BitrateEntry{flat: &mbps}
}

// FrameRateBitrates builds a per-frame-rate entry. Pair order becomes the
// entry's defined order, which the resolver's fallback policy relies on.
func FrameRateBitrates(pairs ...FrameRateBitrate) BitrateEntry {
	entry := BitrateEntry{rates: make(map[string]float64, len(pairs))}
	for _, p := range pairs {
		if _, exists := entry.rates[p.FrameRate]; !exists {
			entry.order = append(entry.order, p.FrameRate)
		}
		entry.rates[p.FrameRate] = p.Mbps
	}
	return entry
}

// IsFlat reports whether the entry is the legacy single-value form.
func (e BitrateEntry) IsFlat() bool {
	return e.flat != nil
}

// Flat returns the legacy single value.
func (e BitrateEntry) Flat() (float64, bool) {
	if e.flat == nil {
		return 0, false
	}
	return *e.flat, true
}

// Rate returns the Mbps value for a frame-rate ID.
func (e BitrateEntry) Rate(frameRateID string) (float64, bool) {
	mbps, ok := e.rates[frameRateID]
	return mbps, ok
}

// FrameRates returns the frame-rate IDs in the entry's defined order.
// Empty for flat entries.
func (e BitrateEntry) FrameRates() []string {
	return append([]string(nil), e.order...)
}

// First returns the first frame rate in the entry's defined order along
// with its Mbps value. This is the substitute used when the requested
// frame rate is absent.
func (e BitrateEntry) First() (string, float64, bool) {
	if len(e.order) == 0 {
		return "", 0, false
	}
	id := e.order[0]
	return id, e.rates[id], true
}

// HasPositive reports whether the entry carries at least one usable
// (strictly positive) bitrate.
func (e BitrateEntry) HasPositive() bool {
	if e.flat != nil {
		return *e.flat > 0
	}
	for _, mbps := range e.rates {
		if mbps > 0 {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts either a bare number or a frame-rate object,
// recording key order for the object form.
func (e *BitrateEntry) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty bitrate entry")
	}

	if trimmed[0] != '{' {
		var mbps float64
		if err := json.Unmarshal(trimmed, &mbps); err != nil {
			return fmt.Errorf("bitrate value: %w", err)
		}
		e.flat = &mbps
		e.rates = nil
		e.order = nil
		return nil
	}

	e.flat = nil
	e.rates = make(map[string]float64)
	e.order = nil

	return decodeOrderedObject(trimmed, func(key string, raw json.RawMessage) error {
		var mbps float64
		if err := json.Unmarshal(raw, &mbps); err != nil {
			return fmt.Errorf("frame rate %q: %w", key, err)
		}
		if _, exists := e.rates[key]; !exists {
			e.order = append(e.order, key)
		}
		e.rates[key] = mbps
		return nil
	})
}

// MarshalJSON encodes flat entries as a bare number and frame-rate entries
// as an object in defined order.
func (e BitrateEntry) MarshalJSON() ([]byte, error) {
	if e.flat != nil {
		return json.Marshal(*e.flat)
	}
	return encodeOrderedObject(e.order, func(key string) (any, error) {
		return e.rates[key], nil
	})
}

// decodeOrderedObject walks a JSON object's keys in document order.
func decodeOrderedObject(data []byte, visit func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := visit(key, raw); err != nil {
			return err
		}
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// encodeOrderedObject writes a JSON object with keys in the given order.
func encodeOrderedObject(order []string, value func(key string) (any, error)) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')

		v, err := value(key)
		if err != nil {
			return nil, err
		}
		valJSON, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
