// ABOUTME: Tests for Fooocus preset import and export
// ABOUTME: Covers field mapping, fallbacks, lenient LoRA decoding and file helpers

package fooocus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/fooocus-config/internal/store"
)

func samplePreset() *store.Preset {
	return &store.Preset{
		ID:   "p1",
		Name: "Portrait",
		Model: store.ModelConfig{
			BaseModel:     "juggernautXL_v8.safetensors",
			BaseModelID:   "m1",
			RefinerModel:  "None",
			RefinerSwitch: 0.8,
			LoRAs:         []store.LoRA{{Name: "detail", ModelName: "add-detail-xl.safetensors", Weight: 0.6, ModelID: "m2"}},
		},
		Sampling: store.SamplingConfig{
			CFGScale:        4.5,
			SampleSharpness: 3,
			Sampler:         "euler_ancestral",
			Scheduler:       "normal",
			Performance:     store.PerformanceQuality,
			Steps:           60,
		},
		Prompt: store.PromptConfig{
			Positive: "a portrait",
			Negative: "blurry",
			Styles:   []string{"Fooocus V2", "Fooocus Sharp"},
		},
		Image: store.ImageConfig{AspectRatio: "896*1152", ImageCount: 2},
		Resources: &store.ResourceDownloads{
			CheckpointDownloads: json.RawMessage(`{"juggernautXL_v8.safetensors":"https://example.com/j.safetensors"}`),
		},
	}
}

func TestExport(t *testing.T) {
	fp := Export(samplePreset())

	assert.Equal(t, "juggernautXL_v8.safetensors", fp.DefaultModel)
	assert.Equal(t, "None", fp.DefaultRefinerModel)
	assert.Equal(t, 0.8, fp.DefaultRefinerSwitch)
	assert.Equal(t, LoRAList{{Name: "detail", ModelName: "add-detail-xl.safetensors", Weight: 0.6}}, fp.DefaultLoRAs)
	assert.Equal(t, 4.5, fp.DefaultCFGScale)
	assert.Equal(t, "euler_ancestral", fp.DefaultSampler)
	assert.Equal(t, store.PerformanceQuality, fp.DefaultPerformance)
	assert.Equal(t, 60, fp.DefaultSteps)
	assert.Equal(t, "a portrait", fp.DefaultPromptPositive)
	assert.Equal(t, "a portrait", fp.DefaultPositivePrompt)
	assert.Equal(t, "blurry", fp.DefaultNegativePrompt)
	assert.Equal(t, "896*1152", fp.DefaultAspectRatio)
	assert.Equal(t, float64(OverwriteUnset), fp.DefaultOverwriteStep)
	assert.Equal(t, float64(OverwriteUnset), fp.DefaultOverwriteHeight)
	assert.Equal(t, float64(DefaultCFGTSNR), fp.DefaultCFGTSNR)
	assert.JSONEq(t, `{"juggernautXL_v8.safetensors":"https://example.com/j.safetensors"}`, string(fp.CheckpointDownloads))
	assert.Nil(t, fp.LoRADownloads)
}

func TestMarshal_Layout(t *testing.T) {
	p := samplePreset()
	p.Resources = nil

	data, err := Marshal(p)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, []any{[]any{"detail", "add-detail-xl.safetensors", 0.6}}, raw["default_loras"])
	assert.Equal(t, float64(-1), raw["default_overwrite_width"])
	assert.Equal(t, float64(7), raw["default_cfg_tsnr"])
	assert.NotContains(t, raw, "checkpoint_downloads")
	assert.NotContains(t, raw, "baseModelId", "catalog ids are not exported")
	assert.Contains(t, string(data), "\n  \"default_model\"", "output is indented")
}

func TestMarshal_EmptyListsStayArrays(t *testing.T) {
	data, err := Marshal(&store.Preset{Name: "bare"})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, []any{}, raw["default_loras"])
	assert.Equal(t, []any{}, raw["default_styles"])
}

func TestImport_RoundTrip(t *testing.T) {
	orig := samplePreset()

	data, err := Marshal(orig)
	require.NoError(t, err)
	got, err := Parse(data, "Copy")
	require.NoError(t, err)

	assert.Empty(t, got.ID)
	assert.Equal(t, "Copy", got.Name)
	assert.Equal(t, "Imported from Fooocus preset - juggernautXL_v8.safetensors", got.Description)
	assert.Equal(t, []string{}, got.Tags)
	assert.Equal(t, orig.Model.BaseModel, got.Model.BaseModel)
	assert.Empty(t, got.Model.BaseModelID)
	assert.Equal(t, []store.LoRA{{Name: "detail", ModelName: "add-detail-xl.safetensors", Weight: 0.6}}, got.Model.LoRAs)
	assert.Equal(t, orig.Sampling, got.Sampling)
	assert.Equal(t, orig.Prompt, got.Prompt)
	assert.Equal(t, "896*1152", got.Image.AspectRatio)
	assert.Equal(t, 4, got.Image.ImageCount, "image count is not part of the file")
	require.NotNil(t, got.Resources)
	assert.JSONEq(t, string(orig.Resources.CheckpointDownloads), string(got.Resources.CheckpointDownloads))
}

func TestParse_Fallbacks(t *testing.T) {
	got, err := Parse([]byte(`{"default_refiner_switch": 0, "default_steps": 0}`), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultImportName, got.Name)
	assert.Equal(t, store.DefaultSamplingConfig(), got.Sampling)
	assert.Equal(t, 0.5, got.Model.RefinerSwitch)
	assert.Equal(t, []store.LoRA{}, got.Model.LoRAs)
	assert.Equal(t, store.DefaultImageConfig(), got.Image)
	assert.Equal(t, []string{}, got.Prompt.Styles)
	assert.Nil(t, got.Resources)
}

func TestParse_NameFallsBackToModel(t *testing.T) {
	got, err := Parse([]byte(`{"default_model": "sd_xl_base_1.0.safetensors"}`), "")
	require.NoError(t, err)
	assert.Equal(t, "sd_xl_base_1.0.safetensors", got.Name)
}

func TestParse_LegacyPromptKeys(t *testing.T) {
	got, err := Parse([]byte(`{
		"default_positive_prompt": "legacy positive",
		"default_negative_prompt": "legacy negative",
		"default_prompt_negative": "current negative"
	}`), "x")
	require.NoError(t, err)

	assert.Equal(t, "legacy positive", got.Prompt.Positive)
	assert.Equal(t, "current negative", got.Prompt.Negative)
}

func TestParse_LenientLoRAs(t *testing.T) {
	got, err := Parse([]byte(`{
		"default_loras": [
			["good", "good.safetensors", 0.5],
			["short", "short.safetensors"],
			[true, "None", 1.0],
			"not-an-array",
			["weight-is-text", "w.safetensors", "high"],
			["extra", "extra.safetensors", 1, "ignored"]
		]
	}`), "x")
	require.NoError(t, err)

	assert.Equal(t, []store.LoRA{
		{Name: "good", ModelName: "good.safetensors", Weight: 0.5},
		{Name: "extra", ModelName: "extra.safetensors", Weight: 1},
	}, got.Model.LoRAs)
}

func TestParse_NullLoRAs(t *testing.T) {
	got, err := Parse([]byte(`{"default_loras": null}`), "x")
	require.NoError(t, err)
	assert.Equal(t, []store.LoRA{}, got.Model.LoRAs)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`{not json`), "x")
	assert.Error(t, err)

	_, err = Parse([]byte(`{"default_loras": "nope"}`), "x")
	assert.Error(t, err)
}

func TestWriteFileReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portrait.json")

	require.NoError(t, WriteFile(path, samplePreset()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	got, err := ReadFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, "portrait", got.Name, "name falls back to the file name")

	named, err := ReadFile(path, "Explicit")
	require.NoError(t, err)
	assert.Equal(t, "Explicit", named.Name)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"), "")
	assert.Error(t, err)
}

func TestWriteFile_NilPreset(t *testing.T) {
	assert.Error(t, WriteFile(filepath.Join(t.TempDir(), "nil.json"), nil))
}

func TestImport_SavesThroughStore(t *testing.T) {
	st := store.NewMockStore()

	imported, err := Parse([]byte(`{"default_model": "base.safetensors", "default_styles": ["Fooocus V2"]}`), "Imported")
	require.NoError(t, err)

	created, err := st.CreatePreset(context.Background(), imported)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"Fooocus V2"}, created.Prompt.Styles)
}
