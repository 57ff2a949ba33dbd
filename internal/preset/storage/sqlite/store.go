// Package sqlite provides a SQLite-backed preset storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/lumenfield/lumenfield/internal/errors"
	"github.com/lumenfield/lumenfield/internal/platform/storage/sqlitemigrate"
	"github.com/lumenfield/lumenfield/internal/preset/domain"
	"github.com/lumenfield/lumenfield/internal/preset/storage"
	"github.com/lumenfield/lumenfield/internal/preset/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists user preset state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite preset store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateUserPreset inserts one preset record. Content collisions within the
// preset's generator type are rejected before name collisions, and both
// errors name the conflicting preset.
func (s *Store) CreateUserPreset(ctx context.Context, preset domain.UserPreset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return insertUserPreset(ctx, s.sqlDB, preset)
}

// CreateUserPresets inserts a batch of presets in one transaction. Any
// collision rolls the whole batch back.
func (s *Store) CreateUserPresets(ctx context.Context, presets []domain.UserPreset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if len(presets) == 0 {
		return nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch insert: %w", err)
	}
	for _, preset := range presets {
		if err := insertUserPreset(ctx, tx, preset); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch insert: %w", err)
	}
	return nil
}

func insertUserPreset(ctx context.Context, db querier, preset domain.UserPreset) error {
	if strings.TrimSpace(preset.ID) == "" {
		return fmt.Errorf("preset id is required")
	}
	if strings.TrimSpace(preset.Name) == "" {
		return apperrors.New(apperrors.CodePresetNameEmpty, "preset name is required")
	}
	if strings.TrimSpace(preset.GeneratorType) == "" {
		return apperrors.New(apperrors.CodePresetGeneratorTypeEmpty, "generator type is required")
	}
	contentHash := preset.ContentHash
	if contentHash == "" {
		contentHash = domain.ContentHash(preset.GeneratorType, preset.Parameters)
	}

	// Content collision is checked before name collision so a re-save of
	// identical parameters under a new name reports the real conflict.
	var existingID, existingName string
	err := db.QueryRowContext(ctx,
		`SELECT id, name FROM user_presets WHERE generator_type = ? AND content_hash = ?`,
		preset.GeneratorType, contentHash,
	).Scan(&existingID, &existingName)
	switch {
	case err == nil:
		return apperrors.Newf(apperrors.CodePresetDuplicateContent,
			"identical parameters already saved as %q", existingName).
			WithMetadata(map[string]string{
				"existingId":   existingID,
				"existingName": existingName,
			})
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check content collision: %w", err)
	}

	err = db.QueryRowContext(ctx,
		`SELECT id, name FROM user_presets WHERE generator_type = ? AND name = ?`,
		preset.GeneratorType, preset.Name,
	).Scan(&existingID, &existingName)
	switch {
	case err == nil:
		return apperrors.Newf(apperrors.CodePresetDuplicateName,
			"preset name %q is already in use", preset.Name).
			WithMetadata(map[string]string{
				"existingId":   existingID,
				"existingName": existingName,
			})
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check name collision: %w", err)
	}

	parameters, err := encodeParams(preset.Parameters)
	if err != nil {
		return err
	}
	createdAt := preset.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO user_presets (
		   id, name, generator_type, parameters, description,
		   content_hash, is_user_default, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		preset.ID,
		preset.Name,
		preset.GeneratorType,
		parameters,
		preset.Description,
		contentHash,
		boolToInt(preset.IsUserDefault),
		toMillis(createdAt),
	)
	if err != nil {
		// The unique indexes catch collisions racing past the checks above.
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "content_hash") {
				return apperrors.New(apperrors.CodePresetDuplicateContent,
					"identical parameters already saved for this generator")
			}
			return apperrors.Newf(apperrors.CodePresetDuplicateName,
				"preset name %q is already in use", preset.Name)
		}
		return fmt.Errorf("create user preset: %w", err)
	}
	return nil
}

// GetUserPreset returns one preset by id, backfilling a missing content
// hash before the record is returned.
func (s *Store) GetUserPreset(ctx context.Context, id string) (domain.UserPreset, error) {
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

	row := s.sqlDB.QueryRowContext(ctx, selectUserPresetColumns+` WHERE id = ?`, id)
	preset, needsBackfill, err := scanUserPreset(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.UserPreset{}, notFound(id)
		}
		return domain.UserPreset{}, fmt.Errorf("get user preset: %w", err)
	}
	if needsBackfill {
		if err := s.backfillContentHash(ctx, preset.ID, preset.ContentHash); err != nil {
			return domain.UserPreset{}, err
		}
	}
	return preset, nil
}

// ListUserPresets returns presets in insertion order. An empty generator
// type returns every preset. Legacy rows missing a content hash are hashed
// and persisted transparently.
func (s *Store) ListUserPresets(ctx context.Context, generatorType string) ([]domain.UserPreset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	query := selectUserPresetColumns + ` ORDER BY rowid ASC`
	args := []any{}
	if generatorType = strings.TrimSpace(generatorType); generatorType != "" {
		query = selectUserPresetColumns + ` WHERE generator_type = ? ORDER BY rowid ASC`
		args = append(args, generatorType)
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list user presets: %w", err)
	}
	defer rows.Close()

	presets := make([]domain.UserPreset, 0)
	backfill := make(map[string]string)
	for rows.Next() {
		preset, needsBackfill, err := scanUserPreset(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list user presets: %w", err)
		}
		if needsBackfill {
			backfill[preset.ID] = preset.ContentHash
		}
		presets = append(presets, preset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list user presets: %w", err)
	}
	// Persist backfilled hashes after iteration so the reads and writes
	// never interleave on the same connection.
	for presetID, hash := range backfill {
		if err := s.backfillContentHash(ctx, presetID, hash); err != nil {
			return nil, err
		}
	}
	return presets, nil
}

// RenameUserPreset renames one preset, rejecting a name collision with
// another preset of the same generator type.
func (s *Store) RenameUserPreset(ctx context.Context, id, newName string) (domain.UserPreset, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserPreset{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.UserPreset{}, fmt.Errorf("storage is not configured")
	}
	newName, err := domain.NormalizePresetName(newName)
	if err != nil {
		return domain.UserPreset{}, err
	}

	preset, err := s.GetUserPreset(ctx, id)
	if err != nil {
		return domain.UserPreset{}, err
	}

	var existingID string
	err = s.sqlDB.QueryRowContext(ctx,
		`SELECT id FROM user_presets WHERE generator_type = ? AND name = ? AND id <> ?`,
		preset.GeneratorType, newName, preset.ID,
	).Scan(&existingID)
	switch {
	case err == nil:
		return domain.UserPreset{}, apperrors.Newf(apperrors.CodePresetDuplicateName,
			"preset name %q is already in use", newName).
			WithMetadata(map[string]string{"existingId": existingID})
	case !errors.Is(err, sql.ErrNoRows):
		return domain.UserPreset{}, fmt.Errorf("check rename collision: %w", err)
	}

	if _, err := s.sqlDB.ExecContext(ctx,
		`UPDATE user_presets SET name = ? WHERE id = ?`, newName, preset.ID,
	); err != nil {
		if isUniqueViolation(err) {
			return domain.UserPreset{}, apperrors.Newf(apperrors.CodePresetDuplicateName,
				"preset name %q is already in use", newName)
		}
		return domain.UserPreset{}, fmt.Errorf("rename user preset: %w", err)
	}
	preset.Name = newName
	return preset, nil
}

// DeleteUserPreset removes one preset, reporting whether it existed. The
// last-active reference and default flag are not cascaded.
func (s *Store) DeleteUserPreset(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return false, fmt.Errorf("preset id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM user_presets WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete user preset: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete user preset: %w", err)
	}
	return affected > 0, nil
}

const selectUserPresetColumns = `SELECT id, name, generator_type, parameters, description, content_hash, is_user_default, created_at FROM user_presets`

func scanUserPreset(scan func(dest ...any) error) (domain.UserPreset, bool, error) {
	var preset domain.UserPreset
	var parameters string
	var contentHash sql.NullString
	var isUserDefault int
	var createdAt int64
	if err := scan(
		&preset.ID,
		&preset.Name,
		&preset.GeneratorType,
		&parameters,
		&preset.Description,
		&contentHash,
		&isUserDefault,
		&createdAt,
	); err != nil {
		return domain.UserPreset{}, false, err
	}

	params, err := decodeParams(parameters)
	if err != nil {
		return domain.UserPreset{}, false, err
	}
	preset.Parameters = params
	preset.IsUserDefault = isUserDefault != 0
	preset.CreatedAt = fromMillis(createdAt)

	needsBackfill := !contentHash.Valid || contentHash.String == ""
	if needsBackfill {
		preset.ContentHash = domain.ContentHash(preset.GeneratorType, preset.Parameters)
	} else {
		preset.ContentHash = contentHash.String
	}
	return preset, needsBackfill, nil
}

func (s *Store) backfillContentHash(ctx context.Context, id, hash string) error {
	if _, err := s.sqlDB.ExecContext(ctx,
		`UPDATE user_presets SET content_hash = ? WHERE id = ? AND (content_hash IS NULL OR content_hash = '')`,
		hash, id,
	); err != nil {
		return fmt.Errorf("backfill content hash: %w", err)
	}
	return nil
}

func encodeParams(params domain.Params) (string, error) {
	if params == nil {
		params = domain.Params{}
	}
	data, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encode parameters: %w", err)
	}
	return string(data), nil
}

func decodeParams(value string) (domain.Params, error) {
	var params domain.Params
	if err := json.Unmarshal([]byte(value), &params); err != nil {
		return nil, fmt.Errorf("decode parameters: %w", err)
	}
	if params == nil {
		params = domain.Params{}
	}
	return params, nil
}

func notFound(id string) error {
	return apperrors.Newf(apperrors.CodePresetNotFound, "preset %q not found", id).
		WithMetadata(map[string]string{"id": id})
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ storage.Store = (*Store)(nil)
