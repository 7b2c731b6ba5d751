// ABOUTME: Query and aggregation layer over the store
// ABOUTME: Model usage cross-references and guarded model deletion

package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/2389/fooocus-config/internal/store"
)

// ErrModelInUse is returned by DeleteModel when presets still reference the
// model and the delete was not forced.
var ErrModelInUse = errors.New("model is in use")

// Service answers cross-entity queries on top of a store.Store.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

// New creates a Service backed by st.
func New(st store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  st,
		logger: logger.With("component", "catalog"),
	}
}

// PresetsReferencingModel returns the presets whose base model, refiner or
// any LoRA points at modelID. This is a full scan: there is no reverse index.
// Order follows ListPresets.
func (s *Service) PresetsReferencingModel(ctx context.Context, modelID string) ([]*store.Preset, error) {
	presets, err := s.store.ListPresets(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing presets: %w", err)
	}

	matched := []*store.Preset{}
	for _, p := range presets {
		if p.ReferencesModel(modelID) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// CheckModelUsage reports whether any preset references modelID, and which.
func (s *Service) CheckModelUsage(ctx context.Context, modelID string) (*store.ModelUsage, error) {
	presets, err := s.PresetsReferencingModel(ctx, modelID)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return &store.ModelUsage{
		IsUsed:      len(names) > 0,
		UsageCount:  len(names),
		PresetNames: names,
	}, nil
}

// DeleteModel deletes a model after checking its usage. When presets still
// reference it and force is false, nothing is deleted and the usage is
// returned with ErrModelInUse. With force the delete goes ahead and the
// referencing presets keep their dangling ids.
func (s *Service) DeleteModel(ctx context.Context, modelID string, force bool) (*store.ModelUsage, error) {
	usage, err := s.CheckModelUsage(ctx, modelID)
	if err != nil {
		return nil, err
	}
	if usage.IsUsed && !force {
		return usage, fmt.Errorf("%w: referenced by %d preset(s)", ErrModelInUse, usage.UsageCount)
	}

	if err := s.store.DeleteModel(ctx, modelID); err != nil {
		return usage, err
	}
	if usage.IsUsed {
		s.logger.Warn("deleted model still referenced by presets", "model", modelID, "presets", usage.UsageCount)
	}
	return usage, nil
}

// SearchPresets forwards to the store's case-sensitive substring search.
func (s *Service) SearchPresets(ctx context.Context, query string) ([]*store.Preset, error) {
	return s.store.SearchPresets(ctx, query)
}

// SearchModels forwards to the store's case-sensitive substring search.
func (s *Service) SearchModels(ctx context.Context, query string) ([]*store.Model, error) {
	return s.store.SearchModels(ctx, query)
}
