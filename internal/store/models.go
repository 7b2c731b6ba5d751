// ABOUTME: SQLite implementation of ModelStore for the model catalog
// ABOUTME: Models are referenced from presets by id only; nothing here checks those references

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const modelColumns = `id, name, file_name, model_type, description, scope, path, tags, created_at, updated_at`

// Ensure SQLiteStore implements ModelStore.
var _ ModelStore = (*SQLiteStore)(nil)

func (s *SQLiteStore) scanModel(row rowScanner) (*Model, error) {
	var m Model
	var fileName, description, scope, path, tags, createdAt, updatedAt sql.NullString

	if err := row.Scan(
		&m.ID,
		&m.Name,
		&fileName,
		&m.Type,
		&description,
		&scope,
		&path,
		&tags,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	m.FileName = fileName.String
	m.Description = description.String
	m.Path = path.String
	m.CreatedAt = parseTime(createdAt)
	m.UpdatedAt = parseTime(updatedAt)

	var err error
	if m.Scope, err = decodeStringList(scope); err != nil {
		s.logger.Debug("substituted default", "model", m.ID, "column", "scope", "error", err)
	}
	if m.Tags, err = decodeStringList(tags); err != nil {
		s.logger.Debug("substituted default", "model", m.ID, "column", "tags", "error", err)
	}
	return &m, nil
}

// queryModels runs a model SELECT. Callers must hold s.mu.
func (s *SQLiteStore) queryModels(ctx context.Context, query string, args ...any) ([]*Model, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying models: %w", err)
	}
	defer rows.Close()

	models := []*Model{}
	for rows.Next() {
		m, err := s.scanModel(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning model row: %w", err)
		}
		models = append(models, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating model rows: %w", err)
	}
	return models, nil
}

// ListModels returns every model, most recently updated first.
func (s *SQLiteStore) ListModels(ctx context.Context) ([]*Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.queryModels(ctx, `
		SELECT `+modelColumns+`
		FROM models
		ORDER BY updated_at DESC, rowid DESC
	`)
}

// ListModelsByType returns models whose type equals modelType exactly.
func (s *SQLiteStore) ListModelsByType(ctx context.Context, modelType string) ([]*Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.queryModels(ctx, `
		SELECT `+modelColumns+`
		FROM models
		WHERE model_type = ?
		ORDER BY updated_at DESC, rowid DESC
	`, modelType)
}

// GetModel retrieves a model by ID.
// Returns ErrNotFound if the model doesn't exist.
func (s *SQLiteStore) GetModel(ctx context.Context, id string) (*Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+modelColumns+` FROM models WHERE id = ?`, id)
	m, err := s.scanModel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying model: %w", err)
	}
	return m, nil
}

// SearchModels returns models whose name, description, serialized scope or
// serialized tags contain query. Matching is case-sensitive.
func (s *SQLiteStore) SearchModels(ctx context.Context, query string) ([]*Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.queryModels(ctx, `
		SELECT `+modelColumns+`
		FROM models
		WHERE instr(name, ?1) > 0
		   OR instr(COALESCE(description, ''), ?1) > 0
		   OR instr(COALESCE(scope, ''), ?1) > 0
		   OR instr(COALESCE(tags, ''), ?1) > 0
		ORDER BY updated_at DESC, rowid DESC
	`, query)
}

// CreateModel stores a new model with a generated ID and timestamps.
func (s *SQLiteStore) CreateModel(ctx context.Context, model *Model) (*Model, error) {
	m := *model
	m.normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	now, nowStr := s.timestamp()
	m.ID = uuid.New().String()
	m.CreatedAt = now
	m.UpdatedAt = now

	scope, tags, err := encodeModelLists(&m)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO models (`+modelColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Name, m.FileName, m.Type, m.Description, scope, m.Path, tags, nowStr, nowStr)
	if err != nil {
		return nil, fmt.Errorf("inserting model: %w", err)
	}

	s.logger.Debug("created model", "id", m.ID, "name", m.Name, "type", m.Type)
	return &m, nil
}

// UpdateModel overwrites an existing model and refreshes updated_at.
// Updating a missing id changes nothing and is not an error.
func (s *SQLiteStore) UpdateModel(ctx context.Context, model *Model) (*Model, error) {
	m := *model
	m.normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	now, nowStr := s.timestamp()
	m.UpdatedAt = now

	scope, tags, err := encodeModelLists(&m)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE models
		SET name = ?, file_name = ?, model_type = ?, description = ?, scope = ?, path = ?, tags = ?, updated_at = ?
		WHERE id = ?
	`, m.Name, m.FileName, m.Type, m.Description, scope, m.Path, tags, nowStr, m.ID)
	if err != nil {
		return nil, fmt.Errorf("updating model: %w", err)
	}

	s.logger.Debug("updated model", "id", m.ID)
	return &m, nil
}

// DeleteModel removes a model. Presets that reference it are left untouched.
func (s *SQLiteStore) DeleteModel(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM models WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting model: %w", err)
	}

	s.logger.Debug("deleted model", "id", id)
	return nil
}

func encodeModelLists(m *Model) (scope, tags string, err error) {
	if scope, err = encodeJSON(m.Scope); err != nil {
		return "", "", fmt.Errorf("encoding scope: %w", err)
	}
	if tags, err = encodeJSON(m.Tags); err != nil {
		return "", "", fmt.Errorf("encoding tags: %w", err)
	}
	return scope, tags, nil
}
