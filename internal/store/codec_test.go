// ABOUTME: Tests for embedded JSON column encoding and default substitution
// ABOUTME: Writes malformed and legacy-shaped rows directly and reads them back

package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedObjects_RoundTrip(t *testing.T) {
	p := samplePreset("roundtrip", "x")

	enc, err := encodePreset(p)
	require.NoError(t, err)

	model, err := decodeModelConfig(validString(enc.model))
	require.NoError(t, err)
	assert.Equal(t, p.Model, model)

	sampling, err := decodeSamplingConfig(validString(enc.sampling))
	require.NoError(t, err)
	assert.Equal(t, p.Sampling, sampling)

	prompt, err := decodePromptConfig(validString(enc.prompt))
	require.NoError(t, err)
	assert.Equal(t, p.Prompt, prompt)

	image, err := decodeImageConfig(validString(enc.image))
	require.NoError(t, err)
	assert.Equal(t, p.Image, image)

	tags, err := decodeStringList(validString(enc.tags))
	require.NoError(t, err)
	assert.Equal(t, p.Tags, tags)
}

func TestModelConfig_OptionalIDsOmitted(t *testing.T) {
	encoded, err := encodeJSON(ModelConfig{BaseModel: "a.safetensors", RefinerSwitch: 0.5, LoRAs: []LoRA{}})
	require.NoError(t, err)
	assert.NotContains(t, encoded, "baseModelId")
	assert.NotContains(t, encoded, "refinerModelId")
}

func TestDecode_InvalidJSONYieldsDefaults(t *testing.T) {
	bad := validString(`{not json`)

	model, err := decodeModelConfig(bad)
	assert.Error(t, err)
	assert.Equal(t, DefaultModelConfig(), model)

	sampling, err := decodeSamplingConfig(bad)
	assert.Error(t, err)
	assert.Equal(t, DefaultSamplingConfig(), sampling)

	prompt, err := decodePromptConfig(bad)
	assert.Error(t, err)
	assert.Equal(t, DefaultPromptConfig(), prompt)

	image, err := decodeImageConfig(bad)
	assert.Error(t, err)
	assert.Equal(t, DefaultImageConfig(), image)

	tags, err := decodeStringList(bad)
	assert.Error(t, err)
	assert.Equal(t, []string{}, tags)
}

func TestDecode_LegacyShapesYieldDefaults(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T)
	}{
		{"model config missing loras", func(t *testing.T) {
			got, err := decodeModelConfig(validString(`{"baseModel":"a","refinerModel":"b","refinerSwitch":0.7}`))
			assert.Error(t, err)
			assert.Equal(t, DefaultModelConfig(), got)
		}},
		{"lora missing weight", func(t *testing.T) {
			got, err := decodeModelConfig(validString(`{"baseModel":"a","refinerModel":"b","refinerSwitch":0.7,"loras":[{"name":"x","modelName":"y"}]}`))
			assert.Error(t, err)
			assert.Equal(t, DefaultModelConfig(), got)
		}},
		{"sampling steps as string", func(t *testing.T) {
			got, err := decodeSamplingConfig(validString(`{"cfgScale":7,"sampleSharpness":2,"sampler":"euler","scheduler":"normal","performance":"Speed","steps":"30"}`))
			assert.Error(t, err)
			assert.Equal(t, DefaultSamplingConfig(), got)
		}},
		{"prompt is an array", func(t *testing.T) {
			got, err := decodePromptConfig(validString(`["a","b"]`))
			assert.Error(t, err)
			assert.Equal(t, DefaultPromptConfig(), got)
		}},
		{"prompt with null positive", func(t *testing.T) {
			got, err := decodePromptConfig(validString(`{"positive":null,"negative":"n","styles":[]}`))
			assert.Error(t, err)
			assert.Equal(t, DefaultPromptConfig(), got)
		}},
		{"lora with null weight", func(t *testing.T) {
			got, err := decodeModelConfig(validString(`{"baseModel":"a","refinerModel":"b","refinerSwitch":0.7,"loras":[{"name":"x","modelName":"y","weight":null}]}`))
			assert.Error(t, err)
			assert.Equal(t, DefaultModelConfig(), got)
		}},
		{"image is null", func(t *testing.T) {
			got, err := decodeImageConfig(validString(`null`))
			assert.Error(t, err)
			assert.Equal(t, DefaultImageConfig(), got)
		}},
		{"column is NULL", func(t *testing.T) {
			got, err := decodeSamplingConfig(sql.NullString{})
			assert.Error(t, err)
			assert.Equal(t, DefaultSamplingConfig(), got)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.check)
	}
}

func TestDecode_UnknownKeysAccepted(t *testing.T) {
	got, err := decodeImageConfig(validString(`{"aspectRatio":"896*1152","imageCount":1,"seed":12}`))
	require.NoError(t, err)
	assert.Equal(t, ImageConfig{AspectRatio: "896*1152", ImageCount: 1}, got)
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, 0.5, DefaultModelConfig().RefinerSwitch)
	assert.Empty(t, DefaultModelConfig().BaseModel)
	assert.Equal(t, SamplingConfig{
		CFGScale:        7.0,
		SampleSharpness: 2.0,
		Sampler:         "dpmpp_2m_sde_gpu",
		Scheduler:       "karras",
		Performance:     "Speed",
		Steps:           30,
	}, DefaultSamplingConfig())
	assert.Equal(t, ImageConfig{AspectRatio: "1152*896", ImageCount: 4}, DefaultImageConfig())
	assert.Empty(t, DefaultPromptConfig().Positive)
	assert.Empty(t, DefaultPromptConfig().Styles)
}

func TestGetPreset_MalformedColumnsFallBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.db.Exec(`
		INSERT INTO presets (id, name, description, tags, is_favorite, use_count, created_at, updated_at,
			model_config, sampling_config, prompt_config, image_config, resources)
		VALUES ('legacy', 'old preset', NULL, 'portrait', 1, 5, '2024-01-01T00:00:00+00:00', '2024-01-01T00:00:00+00:00',
			'{"base_model":"x"}', '{broken', '', 'null', 'not json')
	`)
	require.NoError(t, err)

	got, err := s.GetPreset(ctx, "legacy")
	require.NoError(t, err)

	assert.Equal(t, "old preset", got.Name)
	assert.Empty(t, got.Description)
	assert.Equal(t, []string{}, got.Tags)
	assert.True(t, got.IsFavorite)
	assert.Equal(t, 5, got.UseCount)
	assert.Equal(t, DefaultModelConfig(), got.Model)
	assert.Equal(t, DefaultSamplingConfig(), got.Sampling)
	assert.Equal(t, DefaultPromptConfig(), got.Prompt)
	assert.Equal(t, DefaultImageConfig(), got.Image)
	assert.Nil(t, got.Resources)
	assert.Equal(t, 2024, got.CreatedAt.Year())

	// The same row is listed, not skipped
	presets, err := s.ListPresets(ctx)
	require.NoError(t, err)
	assert.Len(t, presets, 1)
}

func TestGetPreset_PartiallyMalformedKeepsGoodColumns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreatePreset(ctx, samplePreset("mixed"))
	require.NoError(t, err)

	_, err = s.db.Exec(`UPDATE presets SET sampling_config = '{"cfgScale":"high"}' WHERE id = ?`, created.ID)
	require.NoError(t, err)

	got, err := s.GetPreset(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, DefaultSamplingConfig(), got.Sampling)
	assert.Equal(t, created.Model, got.Model)
	assert.Equal(t, created.Prompt, got.Prompt)
}

func validString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}
