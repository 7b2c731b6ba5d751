// ABOUTME: Encoding of embedded JSON columns and the defaults used when they fail to decode
// ABOUTME: Keeps preset rows readable across changes to the sub-object shapes

package store

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

var errNullColumn = errors.New("column is null")

// DefaultModelConfig returns the model configuration substituted for an
// unreadable model_config column.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		RefinerSwitch: 0.5,
		LoRAs:         []LoRA{},
	}
}

// DefaultSamplingConfig returns the sampling configuration substituted for an
// unreadable sampling_config column.
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		CFGScale:        7.0,
		SampleSharpness: 2.0,
		Sampler:         "dpmpp_2m_sde_gpu",
		Scheduler:       "karras",
		Performance:     PerformanceSpeed,
		Steps:           30,
	}
}

// DefaultPromptConfig returns an empty prompt.
func DefaultPromptConfig() PromptConfig {
	return PromptConfig{Styles: []string{}}
}

// DefaultImageConfig returns the image configuration substituted for an
// unreadable image_config column.
func DefaultImageConfig() ImageConfig {
	return ImageConfig{
		AspectRatio: "1152*896",
		ImageCount:  4,
	}
}

// Required keys per embedded object. An object missing one of these was
// written by an incompatible version and is replaced by its default.
var (
	modelConfigKeys    = []string{"baseModel", "refinerModel", "refinerSwitch", "loras"}
	samplingConfigKeys = []string{"cfgScale", "sampleSharpness", "sampler", "scheduler", "performance", "steps"}
	promptConfigKeys   = []string{"positive", "negative", "styles"}
	imageConfigKeys    = []string{"aspectRatio", "imageCount"}
	loraKeys           = []string{"name", "modelName", "weight"}
)

// encodeJSON writes column text without HTML escaping so substring search
// sees tag names such as "R&B" as typed.
func encodeJSON(v any) (string, error) {
	b, err := json.MarshalNoEscape(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeObject decodes a JSON object into v after checking that every
// required key is present and not null.
func decodeObject(data []byte, v any, required []string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("not an object")
	}
	for _, key := range required {
		value, ok := fields[key]
		if !ok {
			return fmt.Errorf("missing field %q", key)
		}
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			return fmt.Errorf("field %q is null", key)
		}
	}
	return json.Unmarshal(data, v)
}

func decodeColumn(raw sql.NullString, v any, required []string) error {
	if !raw.Valid {
		return errNullColumn
	}
	return decodeObject([]byte(raw.String), v, required)
}

func decodeModelConfig(raw sql.NullString) (ModelConfig, error) {
	var cfg ModelConfig
	if err := decodeColumn(raw, &cfg, modelConfigKeys); err != nil {
		return DefaultModelConfig(), err
	}

	// LoRA entries carry their own required keys; check them separately.
	var shape struct {
		LoRAs []json.RawMessage `json:"loras"`
	}
	if err := json.Unmarshal([]byte(raw.String), &shape); err != nil {
		return DefaultModelConfig(), err
	}
	for i, l := range shape.LoRAs {
		var lora LoRA
		if err := decodeObject(l, &lora, loraKeys); err != nil {
			return DefaultModelConfig(), fmt.Errorf("lora %d: %w", i, err)
		}
	}

	if cfg.LoRAs == nil {
		cfg.LoRAs = []LoRA{}
	}
	return cfg, nil
}

func decodeSamplingConfig(raw sql.NullString) (SamplingConfig, error) {
	var cfg SamplingConfig
	if err := decodeColumn(raw, &cfg, samplingConfigKeys); err != nil {
		return DefaultSamplingConfig(), err
	}
	return cfg, nil
}

func decodePromptConfig(raw sql.NullString) (PromptConfig, error) {
	var cfg PromptConfig
	if err := decodeColumn(raw, &cfg, promptConfigKeys); err != nil {
		return DefaultPromptConfig(), err
	}
	if cfg.Styles == nil {
		cfg.Styles = []string{}
	}
	return cfg, nil
}

func decodeImageConfig(raw sql.NullString) (ImageConfig, error) {
	var cfg ImageConfig
	if err := decodeColumn(raw, &cfg, imageConfigKeys); err != nil {
		return DefaultImageConfig(), err
	}
	return cfg, nil
}

// decodeResources returns nil for a null or unreadable resources column.
func decodeResources(raw sql.NullString) (*ResourceDownloads, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var res ResourceDownloads
	if err := decodeObject([]byte(raw.String), &res, nil); err != nil {
		return nil, err
	}
	return &res, nil
}

// decodeStringList decodes a JSON string array, falling back to an empty list.
func decodeStringList(raw sql.NullString) ([]string, error) {
	list := []string{}
	if !raw.Valid {
		return list, nil
	}
	if err := json.Unmarshal([]byte(raw.String), &list); err != nil {
		return []string{}, err
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

// encodedPreset holds the column values for a preset row
type encodedPreset struct {
	tags      string
	model     string
	sampling  string
	prompt    string
	image     string
	resources any
}

func encodePreset(p *Preset) (*encodedPreset, error) {
	var (
		enc encodedPreset
		err error
	)
	if enc.tags, err = encodeJSON(p.Tags); err != nil {
		return nil, fmt.Errorf("encoding tags: %w", err)
	}
	if enc.model, err = encodeJSON(p.Model); err != nil {
		return nil, fmt.Errorf("encoding model config: %w", err)
	}
	if enc.sampling, err = encodeJSON(p.Sampling); err != nil {
		return nil, fmt.Errorf("encoding sampling config: %w", err)
	}
	if enc.prompt, err = encodeJSON(p.Prompt); err != nil {
		return nil, fmt.Errorf("encoding prompt config: %w", err)
	}
	if enc.image, err = encodeJSON(p.Image); err != nil {
		return nil, fmt.Errorf("encoding image config: %w", err)
	}
	if p.Resources != nil {
		res, err := encodeJSON(p.Resources)
		if err != nil {
			return nil, fmt.Errorf("encoding resources: %w", err)
		}
		enc.resources = res
	}
	return &enc, nil
}
