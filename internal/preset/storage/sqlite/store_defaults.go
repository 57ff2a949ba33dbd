package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lumenfield/lumenfield/internal/preset/domain"
)

// lastActivePresetKey is the well-known settings key holding the scalar
// last-active preset id.
const lastActivePresetKey = "last_active_preset_id"

// SetUserDefault clears the default flag on every other preset of the
// target's generator type and sets it on the target, as one transaction.
func (s *Store) SetUserDefault(ctx context.Context, id string) (domain.UserPreset, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserPreset{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.UserPreset{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.UserPreset{}, fmt.Errorf("preset id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return domain.UserPreset{}, fmt.Errorf("begin default swap: %w", err)
	}

	var generatorType string
	err = tx.QueryRowContext(ctx,
		`SELECT generator_type FROM user_presets WHERE id = ?`, id,
	).Scan(&generatorType)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return domain.UserPreset{}, notFound(id)
		}
		return domain.UserPreset{}, fmt.Errorf("resolve default target: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE user_presets SET is_user_default = 0 WHERE generator_type = ? AND is_user_default = 1`,
		generatorType,
	); err != nil {
		_ = tx.Rollback()
		return domain.UserPreset{}, fmt.Errorf("clear previous default: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE user_presets SET is_user_default = 1 WHERE id = ?`, id,
	); err != nil {
		_ = tx.Rollback()
		return domain.UserPreset{}, fmt.Errorf("set default flag: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.UserPreset{}, fmt.Errorf("commit default swap: %w", err)
	}

	return s.GetUserPreset(ctx, id)
}

// ClearUserDefault drops the default flag for a generator type.
func (s *Store) ClearUserDefault(ctx context.Context, generatorType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	generatorType = strings.TrimSpace(generatorType)
	if generatorType == "" {
		return fmt.Errorf("generator type is required")
	}

	if _, err := s.sqlDB.ExecContext(ctx,
		`UPDATE user_presets SET is_user_default = 0 WHERE generator_type = ? AND is_user_default = 1`,
		generatorType,
	); err != nil {
		return fmt.Errorf("clear user default: %w", err)
	}
	return nil
}

// GetUserDefault returns the flagged preset for a generator type.
func (s *Store) GetUserDefault(ctx context.Context, generatorType string) (domain.UserPreset, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserPreset{}, false, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.UserPreset{}, false, fmt.Errorf("storage is not configured")
	}
	generatorType = strings.TrimSpace(generatorType)
	if generatorType == "" {
		return domain.UserPreset{}, false, fmt.Errorf("generator type is required")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		selectUserPresetColumns+` WHERE generator_type = ? AND is_user_default = 1`,
		generatorType,
	)
	preset, needsBackfill, err := scanUserPreset(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.UserPreset{}, false, nil
		}
		return domain.UserPreset{}, false, fmt.Errorf("get user default: %w", err)
	}
	if needsBackfill {
		if err := s.backfillContentHash(ctx, preset.ID, preset.ContentHash); err != nil {
			return domain.UserPreset{}, false, err
		}
	}
	return preset, true, nil
}

// SetLastActivePresetID records the last-active preset id scalar.
func (s *Store) SetLastActivePresetID(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	if _, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		lastActivePresetKey, strings.TrimSpace(id),
	); err != nil {
		return fmt.Errorf("set last active preset: %w", err)
	}
	return nil
}

// LastActivePresetID returns the recorded scalar, empty when unset.
func (s *Store) LastActivePresetID(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s == nil || s.sqlDB == nil {
		return "", fmt.Errorf("storage is not configured")
	}

	var value string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, lastActivePresetKey,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get last active preset: %w", err)
	}
	return value, nil
}
