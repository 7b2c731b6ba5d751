// ABOUTME: SQLite implementation of TagStore
// ABOUTME: Tag counts are computed at read time by exact membership in each preset's tag list

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Ensure SQLiteStore implements TagStore.
var _ TagStore = (*SQLiteStore)(nil)

// ListTags returns all tags ordered by name. Count is the number of presets
// whose tag list contains the tag's name as an element; "art" does not count
// a preset tagged "start".
func (s *SQLiteStore) ListTags(ctx context.Context) ([]*Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, color FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}
	defer rows.Close()

	tags := []*Tag{}
	for rows.Next() {
		var t Tag
		var color sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &color); err != nil {
			return nil, fmt.Errorf("scanning tag row: %w", err)
		}
		t.Color = color.String
		tags = append(tags, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tag rows: %w", err)
	}
	rows.Close()

	counts, err := s.presetTagCounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tags {
		t.Count = counts[t.Name]
	}
	return tags, nil
}

// presetTagCounts maps each tag name to the number of presets carrying it.
// A preset listing the same tag twice counts once. Callers must hold s.mu.
func (s *SQLiteStore) presetTagCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, tags FROM presets`)
	if err != nil {
		return nil, fmt.Errorf("querying preset tags: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var raw sql.NullString
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scanning preset tags: %w", err)
		}
		list, err := decodeStringList(raw)
		if err != nil {
			s.logger.Debug("substituted default", "preset", id, "column", "tags", "error", err)
		}
		seen := make(map[string]bool, len(list))
		for _, name := range list {
			if !seen[name] {
				seen[name] = true
				counts[name]++
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating preset tags: %w", err)
	}
	return counts, nil
}

// CreateTag stores a new tag. An empty color becomes DefaultTagColor.
// Returns ErrDuplicateTag if the name is already taken.
func (s *SQLiteStore) CreateTag(ctx context.Context, name, color string) (*Tag, error) {
	if color == "" {
		color = DefaultTagColor
	}
	t := &Tag{
		ID:    uuid.New().String(),
		Name:  name,
		Color: color,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO tags (id, name, color) VALUES (?, ?, ?)`, t.ID, t.Name, t.Color)
	if err != nil {
		if isConstraintViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTag, name)
		}
		return nil, fmt.Errorf("inserting tag: %w", err)
	}

	s.logger.Debug("created tag", "id", t.ID, "name", t.Name)
	return t, nil
}

// DeleteTag removes a tag. Presets keep the name in their tag lists.
func (s *SQLiteStore) DeleteTag(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting tag: %w", err)
	}

	s.logger.Debug("deleted tag", "id", id)
	return nil
}
