// Package catalog loads the curated factory preset tier. The catalog is a
// versioned JSON document fetched from a fixed URL; factory content is an
// enhancement, never a hard dependency, so every failure degrades to an
// empty tier.
package catalog

import (
	"log"
	"strings"
	"time"

	"github.com/lumenfield/lumenfield/internal/preset/domain"
)

// RawPreset is one catalog entry as authored. The raw shape carries
// category/default/significance fields absent from the user preset shape.
type RawPreset struct {
	Name          string         `json:"name" yaml:"name"`
	GeneratorType string         `json:"generatorType" yaml:"generatorType"`
	Parameters    map[string]any `json:"parameters" yaml:"parameters"`
	Description   string         `json:"description,omitempty" yaml:"description,omitempty"`
	Category      string         `json:"category,omitempty" yaml:"category,omitempty"`
	IsDefault     bool           `json:"isDefault,omitempty" yaml:"isDefault,omitempty"`
	Significance  string         `json:"significance,omitempty" yaml:"significance,omitempty"`
}

// Document is the versioned catalog envelope.
type Document struct {
	FormatVersion int         `json:"formatVersion" yaml:"formatVersion"`
	PublishedAt   time.Time   `json:"publishedAt,omitempty" yaml:"publishedAt,omitempty"`
	Presets       []RawPreset `json:"presets" yaml:"presets"`
}

// Normalize converts raw catalog entries into the shared preset shape.
// Content hashes are computed exactly as for user presets; ids are derived
// from the hash so they stay stable across fetches and never collide with
// store-assigned user ids. Entries that fail validation are dropped.
func Normalize(doc Document) []domain.FactoryPreset {
	presets := make([]domain.FactoryPreset, 0, len(doc.Presets))
	for _, raw := range doc.Presets {
		name := strings.TrimSpace(raw.Name)
		generatorType := strings.TrimSpace(raw.GeneratorType)
		if name == "" || generatorType == "" {
			log.Printf("catalog: dropping entry with missing name or generator type (%q/%q)", raw.Name, raw.GeneratorType)
			continue
		}
		params, err := domain.ParamsOf(raw.Parameters)
		if err != nil {
			log.Printf("catalog: dropping entry %q: %v", name, err)
			continue
		}
		hash := domain.ContentHash(generatorType, params)
		presets = append(presets, domain.FactoryPreset{
			Core: domain.Core{
				ID:            "factory-" + hash,
				Name:          name,
				GeneratorType: generatorType,
				Parameters:    params,
				Description:   strings.TrimSpace(raw.Description),
				ContentHash:   hash,
				CreatedAt:     doc.PublishedAt,
			},
			Category:     strings.TrimSpace(raw.Category),
			IsDefault:    raw.IsDefault,
			Significance: strings.TrimSpace(raw.Significance),
		})
	}
	return presets
}
