// ABOUTME: Conversion between stored presets and Fooocus preset JSON files
// ABOUTME: Export writes the flat default_* layout, Import maps it back with fallbacks

package fooocus

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/2389/fooocus-config/internal/store"
)

// Values Fooocus expects for settings this tool does not manage.
const (
	OverwriteUnset = -1
	DefaultCFGTSNR = 7
)

// DefaultImportName is used when neither a name nor a base model is available.
const DefaultImportName = "Imported preset"

// Preset is the on-disk layout of a Fooocus preset file.
type Preset struct {
	DefaultModel           string   `json:"default_model"`
	DefaultRefinerModel    string   `json:"default_refiner_model"`
	DefaultRefinerSwitch   float64  `json:"default_refiner_switch"`
	DefaultLoRAs           LoRAList `json:"default_loras"`
	DefaultCFGScale        float64  `json:"default_cfg_scale"`
	DefaultSampleSharpness float64  `json:"default_sample_sharpness"`
	DefaultSampler         string   `json:"default_sampler"`
	DefaultScheduler       string   `json:"default_scheduler"`
	DefaultPerformance     string   `json:"default_performance"`
	DefaultSteps           int      `json:"default_steps"`
	DefaultPromptNegative  string   `json:"default_prompt_negative"`
	DefaultPromptPositive  string   `json:"default_prompt_positive"`
	DefaultStyles          []string `json:"default_styles"`
	DefaultAspectRatio     string   `json:"default_aspect_ratio"`
	DefaultOverwriteStep   float64  `json:"default_overwrite_step"`
	DefaultOverwriteSwitch float64  `json:"default_overwrite_switch"`
	DefaultOverwriteWidth  float64  `json:"default_overwrite_width"`
	DefaultOverwriteHeight float64  `json:"default_overwrite_height"`
	DefaultCFGTSNR         float64  `json:"default_cfg_tsnr"`

	// Older Fooocus releases read the prompts from these keys.
	DefaultNegativePrompt string `json:"default_negative_prompt"`
	DefaultPositivePrompt string `json:"default_positive_prompt"`

	CheckpointDownloads json.RawMessage `json:"checkpoint_downloads,omitempty"`
	LoRADownloads       json.RawMessage `json:"lora_downloads,omitempty"`
	EmbeddingDownloads  json.RawMessage `json:"embedding_downloads,omitempty"`
}

// LoRA is one [name, modelName, weight] entry of default_loras.
type LoRA struct {
	Name      string
	ModelName string
	Weight    float64
}

// MarshalJSON writes the entry as a three-element array.
func (l LoRA) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{l.Name, l.ModelName, l.Weight})
}

// UnmarshalJSON reads a three-element array. Extra trailing elements are ignored.
func (l *LoRA) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) < 3 {
		return fmt.Errorf("lora entry has %d elements, want 3", len(parts))
	}

	var entry LoRA
	if err := json.Unmarshal(parts[0], &entry.Name); err != nil {
		return fmt.Errorf("lora name: %w", err)
	}
	if err := json.Unmarshal(parts[1], &entry.ModelName); err != nil {
		return fmt.Errorf("lora model name: %w", err)
	}
	if err := json.Unmarshal(parts[2], &entry.Weight); err != nil {
		return fmt.Errorf("lora weight: %w", err)
	}
	*l = entry
	return nil
}

// LoRAList decodes leniently: entries that are not well-formed triples are
// dropped instead of failing the whole file.
type LoRAList []LoRA

// UnmarshalJSON implements json.Unmarshaler.
func (list *LoRAList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*list = LoRAList{}
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("default_loras: %w", err)
	}

	out := make(LoRAList, 0, len(raw))
	for _, item := range raw {
		var l LoRA
		if err := json.Unmarshal(item, &l); err != nil {
			continue
		}
		out = append(out, l)
	}
	*list = out
	return nil
}

// Export converts a stored preset to the Fooocus layout. Catalog model ids
// have no place in the file and are dropped.
func Export(p *store.Preset) *Preset {
	loras := make(LoRAList, 0, len(p.Model.LoRAs))
	for _, l := range p.Model.LoRAs {
		loras = append(loras, LoRA{Name: l.Name, ModelName: l.ModelName, Weight: l.Weight})
	}

	styles := p.Prompt.Styles
	if styles == nil {
		styles = []string{}
	}

	fp := &Preset{
		DefaultModel:           p.Model.BaseModel,
		DefaultRefinerModel:    p.Model.RefinerModel,
		DefaultRefinerSwitch:   p.Model.RefinerSwitch,
		DefaultLoRAs:           loras,
		DefaultCFGScale:        p.Sampling.CFGScale,
		DefaultSampleSharpness: p.Sampling.SampleSharpness,
		DefaultSampler:         p.Sampling.Sampler,
		DefaultScheduler:       p.Sampling.Scheduler,
		DefaultPerformance:     p.Sampling.Performance,
		DefaultSteps:           p.Sampling.Steps,
		DefaultPromptNegative:  p.Prompt.Negative,
		DefaultPromptPositive:  p.Prompt.Positive,
		DefaultStyles:          styles,
		DefaultAspectRatio:     p.Image.AspectRatio,
		DefaultOverwriteStep:   OverwriteUnset,
		DefaultOverwriteSwitch: OverwriteUnset,
		DefaultOverwriteWidth:  OverwriteUnset,
		DefaultOverwriteHeight: OverwriteUnset,
		DefaultCFGTSNR:         DefaultCFGTSNR,
		DefaultNegativePrompt:  p.Prompt.Negative,
		DefaultPositivePrompt:  p.Prompt.Positive,
	}
	if p.Resources != nil {
		fp.CheckpointDownloads = p.Resources.CheckpointDownloads
		fp.LoRADownloads = p.Resources.LoRADownloads
		fp.EmbeddingDownloads = p.Resources.EmbeddingDownloads
	}
	return fp
}

// Marshal exports p and encodes it as indented JSON.
func Marshal(p *store.Preset) ([]byte, error) {
	data, err := json.MarshalIndent(Export(p), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding fooocus preset: %w", err)
	}
	return data, nil
}

// Import converts a Fooocus preset into a new, unsaved store preset. Zero
// values count as missing and fall back to the store's defaults. The result
// has no id or timestamps; CreatePreset assigns them.
func Import(fp *Preset, name string) *store.Preset {
	model := store.DefaultModelConfig()
	sampling := store.DefaultSamplingConfig()
	image := store.DefaultImageConfig()

	if name == "" {
		name = fp.DefaultModel
	}
	if name == "" {
		name = DefaultImportName
	}

	loras := make([]store.LoRA, 0, len(fp.DefaultLoRAs))
	for _, l := range fp.DefaultLoRAs {
		loras = append(loras, store.LoRA{Name: l.Name, ModelName: l.ModelName, Weight: l.Weight})
	}

	styles := fp.DefaultStyles
	if styles == nil {
		styles = []string{}
	}

	p := &store.Preset{
		Name:        name,
		Description: "Imported from Fooocus preset - " + fp.DefaultModel,
		Tags:        []string{},
		Model: store.ModelConfig{
			BaseModel:     fp.DefaultModel,
			RefinerModel:  fp.DefaultRefinerModel,
			RefinerSwitch: orFloat(fp.DefaultRefinerSwitch, model.RefinerSwitch),
			LoRAs:         loras,
		},
		Sampling: store.SamplingConfig{
			CFGScale:        orFloat(fp.DefaultCFGScale, sampling.CFGScale),
			SampleSharpness: orFloat(fp.DefaultSampleSharpness, sampling.SampleSharpness),
			Sampler:         orString(fp.DefaultSampler, sampling.Sampler),
			Scheduler:       orString(fp.DefaultScheduler, sampling.Scheduler),
			Performance:     orString(fp.DefaultPerformance, sampling.Performance),
			Steps:           orInt(fp.DefaultSteps, sampling.Steps),
		},
		Prompt: store.PromptConfig{
			Positive: orString(fp.DefaultPromptPositive, fp.DefaultPositivePrompt),
			Negative: orString(fp.DefaultPromptNegative, fp.DefaultNegativePrompt),
			Styles:   styles,
		},
		Image: store.ImageConfig{
			AspectRatio: orString(fp.DefaultAspectRatio, image.AspectRatio),
			ImageCount:  image.ImageCount,
		},
	}

	if len(fp.CheckpointDownloads) > 0 || len(fp.LoRADownloads) > 0 || len(fp.EmbeddingDownloads) > 0 {
		p.Resources = &store.ResourceDownloads{
			CheckpointDownloads: fp.CheckpointDownloads,
			LoRADownloads:       fp.LoRADownloads,
			EmbeddingDownloads:  fp.EmbeddingDownloads,
		}
	}
	return p
}

// Parse decodes a Fooocus preset file and imports it under name.
func Parse(data []byte, name string) (*store.Preset, error) {
	var fp Preset
	if err := json.Unmarshal(data, &fp); err != nil {
		return nil, fmt.Errorf("parsing fooocus preset: %w", err)
	}
	return Import(&fp, name), nil
}

// ReadFile reads and imports the preset at path. An empty name falls back to
// the file name without its extension.
func ReadFile(path, name string) (*store.Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading preset file: %w", err)
	}
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return Parse(data, name)
}

// WriteFile exports p to path, replacing any existing file.
func WriteFile(path string, p *store.Preset) error {
	if p == nil {
		return errors.New("nil preset")
	}
	data, err := Marshal(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing preset file: %w", err)
	}
	return nil
}

func orString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func orFloat(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}

func orInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
