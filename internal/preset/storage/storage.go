// Package storage defines the persistence contract for user-owned preset
// state. Factory presets never pass through this contract; they are
// re-derived from the catalog on every read.
package storage

import (
	"context"

	"github.com/lumenfield/lumenfield/internal/preset/domain"
)

// Store persists user presets and the two well-known scalar settings.
//
// Implementations return errors carrying internal/errors codes:
// PRESET_DUPLICATE_CONTENT (checked before name, metadata naming the
// conflicting preset), PRESET_DUPLICATE_NAME, and PRESET_NOT_FOUND.
type Store interface {
	// CreateUserPreset writes one preset, rejecting within-type content
	// and name collisions (content checked first).
	CreateUserPreset(ctx context.Context, preset domain.UserPreset) error
	// CreateUserPresets writes a batch in one transaction; any failure
	// leaves the store untouched.
	CreateUserPresets(ctx context.Context, presets []domain.UserPreset) error
	// GetUserPreset returns one preset by id.
	GetUserPreset(ctx context.Context, id string) (domain.UserPreset, error)
	// ListUserPresets returns presets in insertion order, filtered by
	// generator type; an empty type returns every preset. Legacy rows
	// missing a content hash are hashed and persisted on the way out.
	ListUserPresets(ctx context.Context, generatorType string) ([]domain.UserPreset, error)
	// RenameUserPreset renames one preset, rejecting a collision with
	// another preset of the same generator type.
	RenameUserPreset(ctx context.Context, id, newName string) (domain.UserPreset, error)
	// DeleteUserPreset removes one preset, reporting whether it existed.
	// Dependent state (last-active reference, default flag) is not
	// cascaded; consumers react to the change signal instead.
	DeleteUserPreset(ctx context.Context, id string) (bool, error)

	// SetUserDefault atomically clears the default flag on every other
	// preset of the target's generator type and sets it on the target.
	SetUserDefault(ctx context.Context, id string) (domain.UserPreset, error)
	// ClearUserDefault drops the default flag for a generator type.
	ClearUserDefault(ctx context.Context, generatorType string) error
	// GetUserDefault returns the flagged preset for a generator type;
	// found is false when no default is assigned.
	GetUserDefault(ctx context.Context, generatorType string) (preset domain.UserPreset, found bool, err error)

	// SetLastActivePresetID records the last-active preset id scalar.
	SetLastActivePresetID(ctx context.Context, id string) error
	// LastActivePresetID returns the recorded scalar, empty when unset.
	LastActivePresetID(ctx context.Context) (string, error)

	Close() error
}
