// ABOUTME: Store interface and data types for fooocus-config persistence
// ABOUTME: Defines Preset, Model, Tag and the embedded configuration objects

package store

import (
	"context"
	"errors"
	"time"

	json "github.com/goccy/go-json"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateTag is returned when a tag with the same name already exists
var ErrDuplicateTag = errors.New("tag already exists")

// LoRA is a single LoRA adapter applied by a preset.
// ModelID is a soft reference to a Model; empty means unset.
type LoRA struct {
	Name      string  `json:"name"`
	ModelName string  `json:"modelName"`
	Weight    float64 `json:"weight"`
	ModelID   string  `json:"modelId,omitempty"`
}

// ModelConfig selects the base model, refiner and LoRAs for a preset
type ModelConfig struct {
	BaseModel      string  `json:"baseModel"`
	BaseModelID    string  `json:"baseModelId,omitempty"`
	RefinerModel   string  `json:"refinerModel"`
	RefinerModelID string  `json:"refinerModelId,omitempty"`
	RefinerSwitch  float64 `json:"refinerSwitch"`
	LoRAs          []LoRA  `json:"loras"`
}

// Performance modes understood by Fooocus
const (
	PerformanceSpeed     = "Speed"
	PerformanceQuality   = "Quality"
	PerformanceLightning = "Lightning"
)

// SamplingConfig holds sampler settings
type SamplingConfig struct {
	CFGScale        float64 `json:"cfgScale"`
	SampleSharpness float64 `json:"sampleSharpness"`
	Sampler         string  `json:"sampler"`
	Scheduler       string  `json:"scheduler"`
	Performance     string  `json:"performance"`
	Steps           int     `json:"steps"`
}

// PromptConfig holds prompt text and style names
type PromptConfig struct {
	Positive string   `json:"positive"`
	Negative string   `json:"negative"`
	Styles   []string `json:"styles"`
}

// ImageConfig holds output image settings
type ImageConfig struct {
	AspectRatio string `json:"aspectRatio"`
	ImageCount  int    `json:"imageCount"`
}

// ResourceDownloads carries download descriptors that are stored verbatim
// and never interpreted.
type ResourceDownloads struct {
	CheckpointDownloads json.RawMessage `json:"checkpointDownloads,omitempty"`
	LoRADownloads       json.RawMessage `json:"loraDownloads,omitempty"`
	EmbeddingDownloads  json.RawMessage `json:"embeddingDownloads,omitempty"`
}

// Preset is a saved, named bundle of generation settings
type Preset struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Tags        []string           `json:"tags"`
	IsFavorite  bool               `json:"isFavorite"`
	UseCount    int                `json:"useCount"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
	Model       ModelConfig        `json:"model"`
	Sampling    SamplingConfig     `json:"sampling"`
	Prompt      PromptConfig       `json:"prompt"`
	Image       ImageConfig        `json:"image"`
	Resources   *ResourceDownloads `json:"resources,omitempty"`
}

// Model types used by the catalog. The type column is free-form; these are
// the values the application writes.
const (
	ModelTypeCheckpoint = "Checkpoint"
	ModelTypeLoRA       = "LoRA"
	ModelTypeRefiner    = "Refiner"
	ModelTypeEmbedding  = "Embedding"
)

// Model is an entry in the model catalog
type Model struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	FileName    string    `json:"fileName"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Scope       []string  `json:"scope"`
	Path        string    `json:"path"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DefaultTagColor is used when a tag is created without a color
const DefaultTagColor = "#6366f1"

// Tag is a named label. Count is derived at read time and never stored.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

// ModelUsage reports which presets reference a model
type ModelUsage struct {
	IsUsed      bool     `json:"isUsed"`
	UsageCount  int      `json:"usageCount"`
	PresetNames []string `json:"presetNames"`
}

// PresetStore defines preset persistence.
// Update and delete against a missing id affect zero rows and succeed.
type PresetStore interface {
	ListPresets(ctx context.Context) ([]*Preset, error)
	GetPreset(ctx context.Context, id string) (*Preset, error)
	SearchPresets(ctx context.Context, query string) ([]*Preset, error)
	CreatePreset(ctx context.Context, preset *Preset) (*Preset, error)
	UpdatePreset(ctx context.Context, preset *Preset) (*Preset, error)
	DeletePreset(ctx context.Context, id string) error
	ToggleFavorite(ctx context.Context, id string) error
	IncrementUseCount(ctx context.Context, id string) error
}

// ModelStore defines model catalog persistence
type ModelStore interface {
	ListModels(ctx context.Context) ([]*Model, error)
	ListModelsByType(ctx context.Context, modelType string) ([]*Model, error)
	GetModel(ctx context.Context, id string) (*Model, error)
	SearchModels(ctx context.Context, query string) ([]*Model, error)
	CreateModel(ctx context.Context, model *Model) (*Model, error)
	UpdateModel(ctx context.Context, model *Model) (*Model, error)
	DeleteModel(ctx context.Context, id string) error
}

// TagStore defines tag persistence
type TagStore interface {
	ListTags(ctx context.Context) ([]*Tag, error)
	CreateTag(ctx context.Context, name, color string) (*Tag, error)
	DeleteTag(ctx context.Context, id string) error
}

// Store combines all persistence interfaces
type Store interface {
	PresetStore
	ModelStore
	TagStore

	// Close releases any resources held by the store
	Close() error
}

// normalize replaces nil slices with empty ones so encoded columns hold
// lists rather than null.
func (p *Preset) normalize() {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Model.LoRAs == nil {
		p.Model.LoRAs = []LoRA{}
	}
	if p.Prompt.Styles == nil {
		p.Prompt.Styles = []string{}
	}
}

func (m *Model) normalize() {
	if m.Scope == nil {
		m.Scope = []string{}
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
}

// HasTag reports whether name is an element of the preset's tag list
func (p *Preset) HasTag(name string) bool {
	for _, t := range p.Tags {
		if t == name {
			return true
		}
	}
	return false
}

// ReferencesModel reports whether the preset's model configuration points at
// modelID as base model, refiner, or any LoRA. An empty id never matches.
func (p *Preset) ReferencesModel(modelID string) bool {
	if modelID == "" {
		return false
	}
	if p.Model.BaseModelID == modelID || p.Model.RefinerModelID == modelID {
		return true
	}
	for _, l := range p.Model.LoRAs {
		if l.ModelID == modelID {
			return true
		}
	}
	return false
}
