// ABOUTME: In-memory filtering and sorting of presets and models
// ABOUTME: Backs the list views: search box, tag chips, favorites and base-model filter

package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/2389/fooocus-config/internal/store"
)

// Sort keys accepted by PresetFilter and ModelFilter
const (
	SortByName      = "name"
	SortByCreatedAt = "createdAt"
	SortByUpdatedAt = "updatedAt"
	SortByUseCount  = "useCount" // presets only
)

// Sort orders
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// PresetFilter selects and orders presets. Zero values disable a criterion;
// the default order is updatedAt descending.
type PresetFilter struct {
	Search     string   // case-insensitive, name/description/any tag
	Tags       []string // any-of, exact tag membership
	IsFavorite *bool
	BaseModel  string // case-insensitive substring of the base model's display name
	SortBy     string
	SortOrder  string
}

// ModelFilter selects and orders models.
type ModelFilter struct {
	Search    string   // case-insensitive, name/description/scope/tags
	Type      string   // exact
	Tags      []string // any-of, matched against tags and scope
	SortBy    string
	SortOrder string
}

// FilterPresets returns the presets matching f, sorted as f requests.
func (s *Service) FilterPresets(ctx context.Context, f PresetFilter) ([]*store.Preset, error) {
	if err := validateSort(f.SortBy, f.SortOrder, true); err != nil {
		return nil, err
	}

	presets, err := s.store.ListPresets(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing presets: %w", err)
	}

	var models map[string]*store.Model
	if f.BaseModel != "" {
		if models, err = s.modelIndex(ctx); err != nil {
			return nil, err
		}
	}

	search := strings.ToLower(f.Search)
	baseModel := strings.ToLower(f.BaseModel)

	result := []*store.Preset{}
	for _, p := range presets {
		if search != "" && !presetMatchesSearch(p, search) {
			continue
		}
		if len(f.Tags) > 0 && !hasAnyTag(p, f.Tags) {
			continue
		}
		if f.IsFavorite != nil && p.IsFavorite != *f.IsFavorite {
			continue
		}
		if baseModel != "" && !strings.Contains(strings.ToLower(baseModelName(p, models)), baseModel) {
			continue
		}
		result = append(result, p)
	}

	sortPresets(result, f.SortBy, f.SortOrder)
	return result, nil
}

// FilterModels returns the models matching f, sorted as f requests.
func (s *Service) FilterModels(ctx context.Context, f ModelFilter) ([]*store.Model, error) {
	if err := validateSort(f.SortBy, f.SortOrder, false); err != nil {
		return nil, err
	}

	models, err := s.store.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}

	search := strings.ToLower(f.Search)
	result := []*store.Model{}
	for _, m := range models {
		if search != "" && !modelMatchesSearch(m, search) {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if len(f.Tags) > 0 && !modelHasAnyTag(m, f.Tags) {
			continue
		}
		result = append(result, m)
	}

	sortModels(result, f.SortBy, f.SortOrder)
	return result, nil
}

// BaseModels returns the distinct base model display names used by presets,
// sorted. A preset whose baseModelId resolves to a catalog entry contributes
// that entry's file name (or name); otherwise its baseModel text is used.
func (s *Service) BaseModels(ctx context.Context) ([]string, error) {
	presets, err := s.store.ListPresets(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing presets: %w", err)
	}
	models, err := s.modelIndex(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	names := []string{}
	for _, p := range presets {
		name := baseModelName(p, models)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Service) modelIndex(ctx context.Context) (map[string]*store.Model, error) {
	models, err := s.store.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	index := make(map[string]*store.Model, len(models))
	for _, m := range models {
		index[m.ID] = m
	}
	return index, nil
}

func baseModelName(p *store.Preset, models map[string]*store.Model) string {
	if p.Model.BaseModelID != "" {
		if m, ok := models[p.Model.BaseModelID]; ok {
			if m.FileName != "" {
				return m.FileName
			}
			return m.Name
		}
	}
	return p.Model.BaseModel
}

func presetMatchesSearch(p *store.Preset, search string) bool {
	if strings.Contains(strings.ToLower(p.Name), search) ||
		strings.Contains(strings.ToLower(p.Description), search) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), search) {
			return true
		}
	}
	return false
}

func modelMatchesSearch(m *store.Model, search string) bool {
	if strings.Contains(strings.ToLower(m.Name), search) ||
		strings.Contains(strings.ToLower(m.Description), search) {
		return true
	}
	for _, list := range [][]string{m.Scope, m.Tags} {
		for _, v := range list {
			if strings.Contains(strings.ToLower(v), search) {
				return true
			}
		}
	}
	return false
}

func hasAnyTag(p *store.Preset, tags []string) bool {
	for _, t := range tags {
		if p.HasTag(t) {
			return true
		}
	}
	return false
}

func modelHasAnyTag(m *store.Model, tags []string) bool {
	for _, want := range tags {
		for _, list := range [][]string{m.Tags, m.Scope} {
			for _, v := range list {
				if v == want {
					return true
				}
			}
		}
	}
	return false
}

func validateSort(sortBy, order string, presets bool) error {
	switch sortBy {
	case "", SortByName, SortByCreatedAt, SortByUpdatedAt:
	case SortByUseCount:
		if !presets {
			return fmt.Errorf("unknown sort key %q", sortBy)
		}
	default:
		return fmt.Errorf("unknown sort key %q", sortBy)
	}
	switch order {
	case "", OrderAsc, OrderDesc:
		return nil
	default:
		return fmt.Errorf("unknown sort order %q", order)
	}
}

func sortPresets(presets []*store.Preset, sortBy, order string) {
	cmp := func(a, b *store.Preset) int {
		switch sortBy {
		case SortByName:
			return strings.Compare(a.Name, b.Name)
		case SortByCreatedAt:
			return a.CreatedAt.Compare(b.CreatedAt)
		case SortByUseCount:
			return a.UseCount - b.UseCount
		default:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		}
	}
	desc := order != OrderAsc
	sort.SliceStable(presets, func(i, j int) bool {
		c := cmp(presets[i], presets[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func sortModels(models []*store.Model, sortBy, order string) {
	cmp := func(a, b *store.Model) int {
		switch sortBy {
		case SortByName:
			return strings.Compare(a.Name, b.Name)
		case SortByCreatedAt:
			return a.CreatedAt.Compare(b.CreatedAt)
		default:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		}
	}
	desc := order != OrderAsc
	sort.SliceStable(models, func(i, j int) bool {
		c := cmp(models[i], models[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}
