// Package catalog loads and validates the codec bitrate catalog.
// The catalog is external input: it is edited elsewhere and consumed
// read-only by the resolver. Validation reports the first structural
// problem found with enough context to locate it.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vidrate/vidrate/internal/model"
)

// Load reads and validates a catalog from a JSON file.
func Load(path string) (*model.CodecCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog from JSON bytes.
func Parse(data []byte) (*model.CodecCatalog, error) {
	var catalog model.CodecCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := Validate(&catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// Validate checks the structural invariants of a catalog: non-empty IDs
// and names, category IDs unique within the catalog, codec IDs unique
// within each category, and variant names unique within each codec.
// It returns a descriptive error for the first problem found.
func Validate(catalog *model.CodecCatalog) error {
	if catalog == nil {
		return fmt.Errorf("catalog is nil")
	}
	if len(catalog.Categories) == 0 {
		return fmt.Errorf("catalog has no categories")
	}

	categoryIDs := make(map[string]bool, len(catalog.Categories))
	for ci, category := range catalog.Categories {
		if category.ID == "" {
			return fmt.Errorf("category %d: missing id", ci)
		}
		if category.Name == "" {
			return fmt.Errorf("category %q: missing name", category.ID)
		}
		if categoryIDs[category.ID] {
			return fmt.Errorf("category %q: duplicate id", category.ID)
		}
		categoryIDs[category.ID] = true

		codecIDs := make(map[string]bool, len(category.Codecs))
		for _, codec := range category.Codecs {
			if codec.ID == "" {
				return fmt.Errorf("category %q: codec with missing id", category.ID)
			}
			if codec.Name == "" {
				return fmt.Errorf("codec %q: missing name", codec.ID)
			}
			if codecIDs[codec.ID] {
				return fmt.Errorf("category %q: duplicate codec id %q", category.ID, codec.ID)
			}
			codecIDs[codec.ID] = true

			variantNames := make(map[string]bool, len(codec.Variants))
			for _, variant := range codec.Variants {
				if variant.Name == "" {
					return fmt.Errorf("codec %q: variant with missing name", codec.ID)
				}
				if variantNames[variant.Name] {
					return fmt.Errorf("codec %q: duplicate variant %q", codec.ID, variant.Name)
				}
				variantNames[variant.Name] = true
			}
		}
	}

	return nil
}
