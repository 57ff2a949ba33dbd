package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/lumenfield/lumenfield/internal/errors"
	"github.com/lumenfield/lumenfield/internal/preset/domain"
)

// envelopeFormatVersion is written on export. Imports carry the field
// but do not branch on it.
const envelopeFormatVersion = 1

// Envelope is the versioned import/export payload.
type Envelope struct {
	FormatVersion int                 `json:"formatVersion"`
	Presets       []domain.UserPreset `json:"presets"`
	ExportedAt    time.Time           `json:"exportedAt"`
}

// ImportSummary reports the outcome of one import: ids persisted,
// human-readable skip reasons naming both sides of each content
// duplicate, and per-entry validation errors.
type ImportSummary struct {
	ImportedIDs       []string `json:"importedIds"`
	SkippedDuplicates []string `json:"skippedDuplicates"`
	Errors            []string `json:"errors"`
}

// rawImportPreset is one incoming entry before validation. Ids and
// hashes from external payloads are never trusted; parameters arrive
// untyped so a bad entry fails alone instead of failing the envelope.
type rawImportPreset struct {
	Name          string         `json:"name"`
	GeneratorType string         `json:"generatorType"`
	Parameters    map[string]any `json:"parameters"`
	Description   string         `json:"description,omitempty"`
}

type rawEnvelope struct {
	FormatVersion int               `json:"formatVersion"`
	Presets       []rawImportPreset `json:"presets"`
	ExportedAt    time.Time         `json:"exportedAt"`
}

// ExportSelection builds an envelope from the given preset ids,
// defaulting to every user preset when ids is empty. Unknown ids are
// dropped silently; insertion order is preserved.
func (s *Service) ExportSelection(ctx context.Context, ids []string) (Envelope, error) {
	presets, err := s.store.ListUserPresets(ctx, "")
	if err != nil {
		return Envelope{}, err
	}

	selected := presets
	if len(ids) > 0 {
		wanted := make(map[string]bool, len(ids))
		for _, presetID := range ids {
			wanted[presetID] = true
		}
		selected = make([]domain.UserPreset, 0, len(ids))
		for _, preset := range presets {
			if wanted[preset.ID] {
				selected = append(selected, preset)
			}
		}
	}

	return Envelope{
		FormatVersion: envelopeFormatVersion,
		Presets:       selected,
		ExportedAt:    s.now().UTC(),
	}, nil
}

// ImportEnvelope decodes an envelope and persists its presets as one
// batch. Every incoming id is regenerated and every hash recomputed
// from the parameters. Content duplicates are skipped with a reason,
// name collisions are auto-renamed, and invalid entries accumulate as
// errors without aborting the rest. A fully malformed payload fails
// atomically with no mutation. Imported presets never carry a default
// flag.
func (s *Service) ImportEnvelope(ctx context.Context, payload []byte) (ImportSummary, error) {
	var envelope rawEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return ImportSummary{}, apperrors.Wrap(apperrors.CodeImportPayloadMalformed, "import payload is not a valid envelope", err)
	}

	existing, err := s.store.ListUserPresets(ctx, "")
	if err != nil {
		return ImportSummary{}, err
	}
	sets := make(map[string]*conflictSet)
	for _, preset := range existing {
		set, ok := sets[preset.GeneratorType]
		if !ok {
			set = newConflictSet(nil)
			sets[preset.GeneratorType] = set
		}
		set.add(preset)
	}

	summary := ImportSummary{
		ImportedIDs:       []string{},
		SkippedDuplicates: []string{},
		Errors:            []string{},
	}
	var batch []domain.UserPreset
	for i, raw := range envelope.Presets {
		params, err := domain.ParamsOf(raw.Parameters)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("preset %d (%q): %v", i, raw.Name, err))
			continue
		}
		preset, err := domain.NewUserPreset(domain.NewUserPresetInput{
			Name:          raw.Name,
			GeneratorType: raw.GeneratorType,
			Parameters:    params,
			Description:   raw.Description,
		}, s.now, s.newID)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("preset %d (%q): %v", i, raw.Name, err))
			continue
		}

		set, ok := sets[preset.GeneratorType]
		if !ok {
			set = newConflictSet(nil)
			sets[preset.GeneratorType] = set
		}
		resolved, reason, accepted := resolveImport(preset, set)
		if !accepted {
			summary.SkippedDuplicates = append(summary.SkippedDuplicates, reason)
			continue
		}
		set.add(resolved)
		batch = append(batch, resolved)
	}

	if len(batch) > 0 {
		if err := s.store.CreateUserPresets(ctx, batch); err != nil {
			return ImportSummary{}, err
		}
		for _, preset := range batch {
			summary.ImportedIDs = append(summary.ImportedIDs, preset.ID)
		}
		s.broadcast()
	}
	return summary, nil
}
