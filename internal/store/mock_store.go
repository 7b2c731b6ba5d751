// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStore is an in-memory Store implementation for testing.
// It mirrors SQLiteStore's ordering, duplicate-tag and zero-row semantics.
type MockStore struct {
	mu      sync.RWMutex
	presets map[string]*Preset // keyed by preset ID
	models  map[string]*Model  // keyed by model ID
	tags    map[string]*Tag    // keyed by tag ID
	seq     map[string]int64   // insertion order, breaks updated_at ties
	next    int64
	now     func() time.Time
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		presets: make(map[string]*Preset),
		models:  make(map[string]*Model),
		tags:    make(map[string]*Tag),
		seq:     make(map[string]int64),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Ensure MockStore implements Store interface
var _ Store = (*MockStore)(nil)

func (m *MockStore) track(id string) {
	m.next++
	m.seq[id] = m.next
}

// clonePreset returns a deep copy so callers never share slices with the store
func clonePreset(p *Preset) *Preset {
	c := *p
	c.Tags = append([]string{}, p.Tags...)
	c.Model.LoRAs = append([]LoRA{}, p.Model.LoRAs...)
	c.Prompt.Styles = append([]string{}, p.Prompt.Styles...)
	if p.Resources != nil {
		r := *p.Resources
		c.Resources = &r
	}
	return &c
}

func cloneModel(mod *Model) *Model {
	c := *mod
	c.Scope = append([]string{}, mod.Scope...)
	c.Tags = append([]string{}, mod.Tags...)
	return &c
}

func (m *MockStore) sortedPresets(keep func(*Preset) bool) []*Preset {
	result := []*Preset{}
	for _, p := range m.presets {
		if keep == nil || keep(p) {
			result = append(result, clonePreset(p))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].UpdatedAt.After(result[j].UpdatedAt)
		}
		return m.seq[result[i].ID] > m.seq[result[j].ID]
	})
	return result
}

func (m *MockStore) sortedModels(keep func(*Model) bool) []*Model {
	result := []*Model{}
	for _, mod := range m.models {
		if keep == nil || keep(mod) {
			result = append(result, cloneModel(mod))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].UpdatedAt.After(result[j].UpdatedAt)
		}
		return m.seq[result[i].ID] > m.seq[result[j].ID]
	})
	return result
}

// ListPresets returns all presets, most recently updated first.
func (m *MockStore) ListPresets(ctx context.Context) ([]*Preset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sortedPresets(nil), nil
}

// GetPreset retrieves a preset by ID.
func (m *MockStore) GetPreset(ctx context.Context, id string) (*Preset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.presets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePreset(p), nil
}

// SearchPresets matches query case-sensitively against name, description and
// the encoded tag list, like SQLiteStore.
func (m *MockStore) SearchPresets(ctx context.Context, query string) ([]*Preset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sortedPresets(func(p *Preset) bool {
		tags, _ := encodeJSON(p.Tags)
		return strings.Contains(p.Name, query) ||
			strings.Contains(p.Description, query) ||
			strings.Contains(tags, query)
	}), nil
}

// CreatePreset stores a new preset with a generated ID.
func (m *MockStore) CreatePreset(ctx context.Context, preset *Preset) (*Preset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := clonePreset(preset)
	p.normalize()
	now := m.now()
	p.ID = uuid.New().String()
	p.UseCount = 0
	p.CreatedAt = now
	p.UpdatedAt = now

	m.presets[p.ID] = p
	m.track(p.ID)
	return clonePreset(p), nil
}

// UpdatePreset overwrites an existing preset, keeping CreatedAt.
// A missing id is ignored.
func (m *MockStore) UpdatePreset(ctx context.Context, preset *Preset) (*Preset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := clonePreset(preset)
	p.normalize()
	p.UpdatedAt = m.now()

	if existing, ok := m.presets[p.ID]; ok {
		stored := clonePreset(p)
		stored.CreatedAt = existing.CreatedAt
		m.presets[p.ID] = stored
	}
	return p, nil
}

// DeletePreset removes a preset. A missing id is ignored.
func (m *MockStore) DeletePreset(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.presets, id)
	delete(m.seq, id)
	return nil
}

// ToggleFavorite flips IsFavorite.
func (m *MockStore) ToggleFavorite(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.presets[id]; ok {
		p.IsFavorite = !p.IsFavorite
		p.UpdatedAt = m.now()
	}
	return nil
}

// IncrementUseCount adds one to UseCount.
func (m *MockStore) IncrementUseCount(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.presets[id]; ok {
		p.UseCount++
		p.UpdatedAt = m.now()
	}
	return nil
}

// ListModels returns all models, most recently updated first.
func (m *MockStore) ListModels(ctx context.Context) ([]*Model, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sortedModels(nil), nil
}

// ListModelsByType returns models of the given type.
func (m *MockStore) ListModelsByType(ctx context.Context, modelType string) ([]*Model, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sortedModels(func(mod *Model) bool { return mod.Type == modelType }), nil
}

// GetModel retrieves a model by ID.
func (m *MockStore) GetModel(ctx context.Context, id string) (*Model, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mod, ok := m.models[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneModel(mod), nil
}

// SearchModels matches query against name, description, scope and tags.
func (m *MockStore) SearchModels(ctx context.Context, query string) ([]*Model, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sortedModels(func(mod *Model) bool {
		scope, _ := encodeJSON(mod.Scope)
		tags, _ := encodeJSON(mod.Tags)
		return strings.Contains(mod.Name, query) ||
			strings.Contains(mod.Description, query) ||
			strings.Contains(scope, query) ||
			strings.Contains(tags, query)
	}), nil
}

// CreateModel stores a new model with a generated ID.
func (m *MockStore) CreateModel(ctx context.Context, model *Model) (*Model, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mod := cloneModel(model)
	mod.normalize()
	now := m.now()
	mod.ID = uuid.New().String()
	mod.CreatedAt = now
	mod.UpdatedAt = now

	m.models[mod.ID] = mod
	m.track(mod.ID)
	return cloneModel(mod), nil
}

// UpdateModel overwrites an existing model. A missing id is ignored.
func (m *MockStore) UpdateModel(ctx context.Context, model *Model) (*Model, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mod := cloneModel(model)
	mod.normalize()
	mod.UpdatedAt = m.now()

	if existing, ok := m.models[mod.ID]; ok {
		stored := cloneModel(mod)
		stored.CreatedAt = existing.CreatedAt
		m.models[mod.ID] = stored
	}
	return mod, nil
}

// DeleteModel removes a model. A missing id is ignored.
func (m *MockStore) DeleteModel(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.models, id)
	delete(m.seq, id)
	return nil
}

// ListTags returns tags ordered by name with counts computed by exact
// membership.
func (m *MockStore) ListTags(ctx context.Context) ([]*Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tags := []*Tag{}
	for _, t := range m.tags {
		c := *t
		for _, p := range m.presets {
			if p.HasTag(c.Name) {
				c.Count++
			}
		}
		tags = append(tags, &c)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

// CreateTag stores a new tag. Returns ErrDuplicateTag for a taken name.
func (m *MockStore) CreateTag(ctx context.Context, name, color string) (*Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tags {
		if t.Name == name {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTag, name)
		}
	}
	if color == "" {
		color = DefaultTagColor
	}
	t := &Tag{ID: uuid.New().String(), Name: name, Color: color}
	m.tags[t.ID] = t
	c := *t
	return &c, nil
}

// DeleteTag removes a tag. A missing id is ignored.
func (m *MockStore) DeleteTag(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tags, id)
	return nil
}

// Close is a no-op for MockStore.
func (m *MockStore) Close() error {
	return nil
}
