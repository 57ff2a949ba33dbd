// Package domain holds the preset model: the shared core shape, the
// user/factory variants, parameter scalars, and content hashing.
package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/lumenfield/lumenfield/internal/errors"
	"github.com/lumenfield/lumenfield/internal/platform/id"
)

// Core is the shape shared by both preset tiers. IDs are store-assigned
// and never trusted from external input.
type Core struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	GeneratorType string    `json:"generatorType"`
	Parameters    Params    `json:"parameters"`
	Description   string    `json:"description,omitempty"`
	ContentHash   string    `json:"contentHash"`
	CreatedAt     time.Time `json:"createdAt"`
}

// UserPreset is a mutable, user-owned preset.
type UserPreset struct {
	Core
	IsUserDefault bool `json:"isUserDefault,omitempty"`
}

// FactoryPreset is a curated, read-only preset re-derived from the
// external catalog on every read. It is never written to the user store.
type FactoryPreset struct {
	Core
	Category     string `json:"category,omitempty"`
	IsDefault    bool   `json:"isDefault,omitempty"`
	Significance string `json:"significance,omitempty"`
}

// List is one generator type's aggregated presets: curated factory tier
// first, then the user tier in insertion order. Cross-tier content
// duplicates are permitted.
type List struct {
	Factory []FactoryPreset `json:"factory"`
	User    []UserPreset    `json:"user"`
}

// DefaultSource names which tier supplied an effective default.
type DefaultSource string

const (
	// DefaultSourceNone means neither tier has a default; the caller
	// falls back to the generator's built-in values.
	DefaultSourceNone DefaultSource = "none"
	// DefaultSourceUser means a user-designated default won.
	DefaultSourceUser DefaultSource = "user"
	// DefaultSourceFactory means the catalog's flagged default won.
	DefaultSourceFactory DefaultSource = "factory"
)

// EffectiveDefault is the result of default-precedence resolution.
type EffectiveDefault struct {
	Source  DefaultSource  `json:"source"`
	User    *UserPreset    `json:"user,omitempty"`
	Factory *FactoryPreset `json:"factory,omitempty"`
}

// NewUserPresetInput describes the data needed to save a preset.
type NewUserPresetInput struct {
	Name          string
	GeneratorType string
	Parameters    Params
	Description   string
}

// NewUserPreset validates input and constructs a preset with a generated
// ID, a UTC creation timestamp, and a computed content hash.
func NewUserPreset(input NewUserPresetInput, now func() time.Time, idGenerator func() (string, error)) (UserPreset, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeNewUserPresetInput(input)
	if err != nil {
		return UserPreset{}, err
	}

	presetID, err := idGenerator()
	if err != nil {
		return UserPreset{}, fmt.Errorf("generate preset id: %w", err)
	}

	return UserPreset{
		Core: Core{
			ID:            presetID,
			Name:          normalized.Name,
			GeneratorType: normalized.GeneratorType,
			Parameters:    normalized.Parameters.Clone(),
			Description:   normalized.Description,
			ContentHash:   ContentHash(normalized.GeneratorType, normalized.Parameters),
			CreatedAt:     now().UTC(),
		},
	}, nil
}

// NormalizeNewUserPresetInput trims and validates preset input.
func NormalizeNewUserPresetInput(input NewUserPresetInput) (NewUserPresetInput, error) {
	name, err := NormalizePresetName(input.Name)
	if err != nil {
		return NewUserPresetInput{}, err
	}
	input.Name = name
	input.GeneratorType = strings.TrimSpace(input.GeneratorType)
	if input.GeneratorType == "" {
		return NewUserPresetInput{}, apperrors.New(apperrors.CodePresetGeneratorTypeEmpty, "generator type is required")
	}
	if input.Parameters == nil {
		return NewUserPresetInput{}, apperrors.New(apperrors.CodePresetParametersInvalid, "parameters are required")
	}
	input.Description = strings.TrimSpace(input.Description)
	return input, nil
}

// NormalizePresetName trims a preset name and rejects empty names.
func NormalizePresetName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.New(apperrors.CodePresetNameEmpty, "preset name is required")
	}
	return name, nil
}
