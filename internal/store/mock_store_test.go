// ABOUTME: Unit tests for MockStore to ensure behavior matches SQLiteStore
// ABOUTME: Runs the same scenarios against both implementations

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeImplementations(t *testing.T) map[string]Store {
	return map[string]Store{
		"sqlite": newTestStore(t),
		"mock":   NewMockStore(),
	}
}

func TestStores_PresetLifecycle(t *testing.T) {
	for name, s := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			a, err := s.CreatePreset(ctx, samplePreset("A", "portrait", "v2"))
			require.NoError(t, err)
			assert.Equal(t, 0, a.UseCount)

			for i := 0; i < 3; i++ {
				require.NoError(t, s.IncrementUseCount(ctx, a.ID))
			}
			require.NoError(t, s.ToggleFavorite(ctx, a.ID))

			got, err := s.GetPreset(ctx, a.ID)
			require.NoError(t, err)
			assert.Equal(t, 3, got.UseCount)
			assert.True(t, got.IsFavorite)

			found, err := s.SearchPresets(ctx, "portrait")
			require.NoError(t, err)
			require.Len(t, found, 1)

			require.NoError(t, s.DeletePreset(ctx, a.ID))
			_, err = s.GetPreset(ctx, a.ID)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStores_UpdateKeepsCreatedAt(t *testing.T) {
	for name, s := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			created, err := s.CreatePreset(ctx, samplePreset("orig"))
			require.NoError(t, err)

			edit := *created
			edit.Name = "renamed"
			edit.UseCount = 4
			_, err = s.UpdatePreset(ctx, &edit)
			require.NoError(t, err)

			got, err := s.GetPreset(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "renamed", got.Name)
			assert.Equal(t, 4, got.UseCount)
			assert.True(t, got.CreatedAt.Equal(created.CreatedAt))

			ghost := *created
			ghost.ID = "missing"
			_, err = s.UpdatePreset(ctx, &ghost)
			assert.NoError(t, err)

			all, err := s.ListPresets(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestStores_TagCounts(t *testing.T) {
	for name, s := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.CreateTag(ctx, "art", "")
			require.NoError(t, err)
			_, err = s.CreateTag(ctx, "art", "")
			assert.ErrorIs(t, err, ErrDuplicateTag)

			_, err = s.CreatePreset(ctx, samplePreset("p1", "start"))
			require.NoError(t, err)
			_, err = s.CreatePreset(ctx, samplePreset("p2", "art"))
			require.NoError(t, err)

			tags, err := s.ListTags(ctx)
			require.NoError(t, err)
			require.Len(t, tags, 1)
			assert.Equal(t, 1, tags[0].Count)
		})
	}
}

func TestStores_ModelSearchAndType(t *testing.T) {
	for name, s := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.CreateModel(ctx, sampleModel("base", ModelTypeCheckpoint))
			require.NoError(t, err)
			lora, err := s.CreateModel(ctx, &Model{Name: "eyes", Type: ModelTypeLoRA, Scope: []string{"Anime"}})
			require.NoError(t, err)

			loras, err := s.ListModelsByType(ctx, ModelTypeLoRA)
			require.NoError(t, err)
			require.Len(t, loras, 1)
			assert.Equal(t, lora.ID, loras[0].ID)

			found, err := s.SearchModels(ctx, "Anime")
			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, lora.ID, found[0].ID)
		})
	}
}

func TestMockStore_ReturnsCopies(t *testing.T) {
	s := NewMockStore()
	ctx := context.Background()

	created, err := s.CreatePreset(ctx, samplePreset("copy", "a"))
	require.NoError(t, err)

	created.Tags[0] = "mutated"
	created.Name = "mutated"

	got, err := s.GetPreset(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "copy", got.Name)
	assert.Equal(t, []string{"a"}, got.Tags)
}
