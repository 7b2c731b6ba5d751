// ABOUTME: SQLite implementation of PresetStore
// ABOUTME: Presets keep their nested configuration objects as JSON text columns

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const presetColumns = `id, name, description, tags, is_favorite, use_count, created_at, updated_at,
	model_config, sampling_config, prompt_config, image_config, resources`

// Ensure SQLiteStore implements PresetStore.
var _ PresetStore = (*SQLiteStore)(nil)

// scanPreset decodes one preset row. Embedded objects that fail to decode are
// replaced by their defaults; only scan errors are returned.
func (s *SQLiteStore) scanPreset(row rowScanner) (*Preset, error) {
	var p Preset
	var description, tags, createdAt, updatedAt sql.NullString
	var modelCfg, samplingCfg, promptCfg, imageCfg, resources sql.NullString
	var isFavorite, useCount sql.NullInt64

	if err := row.Scan(
		&p.ID,
		&p.Name,
		&description,
		&tags,
		&isFavorite,
		&useCount,
		&createdAt,
		&updatedAt,
		&modelCfg,
		&samplingCfg,
		&promptCfg,
		&imageCfg,
		&resources,
	); err != nil {
		return nil, err
	}

	p.Description = description.String
	p.IsFavorite = isFavorite.Int64 != 0
	p.UseCount = int(useCount.Int64)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)

	var err error
	if p.Tags, err = decodeStringList(tags); err != nil {
		s.logger.Debug("substituted default", "preset", p.ID, "column", "tags", "error", err)
	}
	if p.Model, err = decodeModelConfig(modelCfg); err != nil {
		s.logger.Debug("substituted default", "preset", p.ID, "column", "model_config", "error", err)
	}
	if p.Sampling, err = decodeSamplingConfig(samplingCfg); err != nil {
		s.logger.Debug("substituted default", "preset", p.ID, "column", "sampling_config", "error", err)
	}
	if p.Prompt, err = decodePromptConfig(promptCfg); err != nil {
		s.logger.Debug("substituted default", "preset", p.ID, "column", "prompt_config", "error", err)
	}
	if p.Image, err = decodeImageConfig(imageCfg); err != nil {
		s.logger.Debug("substituted default", "preset", p.ID, "column", "image_config", "error", err)
	}
	if p.Resources, err = decodeResources(resources); err != nil {
		s.logger.Debug("dropped unreadable resources", "preset", p.ID, "error", err)
	}

	return &p, nil
}

// queryPresets runs a preset SELECT. Callers must hold s.mu.
func (s *SQLiteStore) queryPresets(ctx context.Context, query string, args ...any) ([]*Preset, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying presets: %w", err)
	}
	defer rows.Close()

	presets := []*Preset{}
	for rows.Next() {
		p, err := s.scanPreset(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning preset row: %w", err)
		}
		presets = append(presets, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating preset rows: %w", err)
	}
	return presets, nil
}

// ListPresets returns every preset, most recently updated first.
func (s *SQLiteStore) ListPresets(ctx context.Context) ([]*Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.queryPresets(ctx, `
		SELECT `+presetColumns+`
		FROM presets
		ORDER BY updated_at DESC, rowid DESC
	`)
}

// GetPreset retrieves a preset by ID.
// Returns ErrNotFound if the preset doesn't exist.
func (s *SQLiteStore) GetPreset(ctx context.Context, id string) (*Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+presetColumns+` FROM presets WHERE id = ?`, id)
	p, err := s.scanPreset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying preset: %w", err)
	}
	return p, nil
}

// SearchPresets returns presets whose name, description or serialized tag
// list contains query. Matching is case-sensitive.
func (s *SQLiteStore) SearchPresets(ctx context.Context, query string) ([]*Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// instr() rather than LIKE: LIKE folds ASCII case.
	return s.queryPresets(ctx, `
		SELECT `+presetColumns+`
		FROM presets
		WHERE instr(name, ?1) > 0
		   OR instr(COALESCE(description, ''), ?1) > 0
		   OR instr(COALESCE(tags, ''), ?1) > 0
		ORDER BY updated_at DESC, rowid DESC
	`, query)
}

// CreatePreset stores a new preset and returns it with its generated ID and
// timestamps. UseCount always starts at zero.
func (s *SQLiteStore) CreatePreset(ctx context.Context, preset *Preset) (*Preset, error) {
	p := *preset
	p.normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	now, nowStr := s.timestamp()
	p.ID = uuid.New().String()
	p.UseCount = 0
	p.CreatedAt = now
	p.UpdatedAt = now

	enc, err := encodePreset(&p)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO presets (`+presetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID,
		p.Name,
		p.Description,
		enc.tags,
		boolToInt(p.IsFavorite),
		0,
		nowStr,
		nowStr,
		enc.model,
		enc.sampling,
		enc.prompt,
		enc.image,
		enc.resources,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting preset: %w", err)
	}

	s.logger.Debug("created preset", "id", p.ID, "name", p.Name)
	return &p, nil
}

// UpdatePreset overwrites every column of an existing preset except id and
// created_at, and refreshes updated_at. The caller's UseCount is written as
// given. Updating a missing id changes nothing and is not an error.
func (s *SQLiteStore) UpdatePreset(ctx context.Context, preset *Preset) (*Preset, error) {
	p := *preset
	p.normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	now, nowStr := s.timestamp()
	p.UpdatedAt = now

	enc, err := encodePreset(&p)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE presets
		SET name = ?, description = ?, tags = ?, is_favorite = ?, use_count = ?, updated_at = ?,
		    model_config = ?, sampling_config = ?, prompt_config = ?, image_config = ?, resources = ?
		WHERE id = ?
	`,
		p.Name,
		p.Description,
		enc.tags,
		boolToInt(p.IsFavorite),
		p.UseCount,
		nowStr,
		enc.model,
		enc.sampling,
		enc.prompt,
		enc.image,
		enc.resources,
		p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating preset: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		s.logger.Debug("update matched no preset", "id", p.ID)
	} else {
		s.logger.Debug("updated preset", "id", p.ID)
	}
	return &p, nil
}

// DeletePreset removes a preset. Deleting a missing id is not an error.
func (s *SQLiteStore) DeletePreset(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM presets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting preset: %w", err)
	}

	s.logger.Debug("deleted preset", "id", id)
	return nil
}

// ToggleFavorite flips is_favorite in a single statement evaluated by the
// database, so concurrent toggles never lose an update.
func (s *SQLiteStore) ToggleFavorite(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, nowStr := s.timestamp()
	_, err := s.db.ExecContext(ctx, `
		UPDATE presets SET is_favorite = NOT is_favorite, updated_at = ? WHERE id = ?
	`, nowStr, id)
	if err != nil {
		return fmt.Errorf("toggling favorite: %w", err)
	}

	s.logger.Debug("toggled favorite", "id", id)
	return nil
}

// IncrementUseCount adds one to use_count in a single statement.
func (s *SQLiteStore) IncrementUseCount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, nowStr := s.timestamp()
	_, err := s.db.ExecContext(ctx, `
		UPDATE presets SET use_count = use_count + 1, updated_at = ? WHERE id = ?
	`, nowStr, id)
	if err != nil {
		return fmt.Errorf("incrementing use count: %w", err)
	}

	s.logger.Debug("incremented use count", "id", id)
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
