// Model catalog loaded from YAML.
//
// Information Hiding:
// - YAML field mapping and enum validation hidden behind LoadModels/ParseModels
// - Catalog entries are immutable after a successful load
// - Rate limit policy data only; enforcement lives in the llm package

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EndpointType describes a kind of model interaction a provider
// configuration supports.
type EndpointType string

const (
	EndpointEmbedding  EndpointType = "embedding"
	EndpointChat       EndpointType = "chat"
	EndpointCompletion EndpointType = "completion"
)

// String returns the string representation of the endpoint type.
func (e EndpointType) String() string {
	return string(e)
}

// ParseEndpointType parses an endpoint type string.
// Unknown values are an error, never silently defaulted.
func ParseEndpointType(s string) (EndpointType, error) {
	switch s {
	case "embedding":
		return EndpointEmbedding, nil
	case "chat":
		return EndpointChat, nil
	case "completion":
		return EndpointCompletion, nil
	default:
		return "", fmt.Errorf("unknown endpoint type: %q (want embedding, chat or completion)", s)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler with strict validation.
func (e *EndpointType) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseEndpointType(s)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// RenewalPeriod is the unit of a rate-limit window.
type RenewalPeriod string

const (
	RenewSeconds RenewalPeriod = "seconds"
	RenewMinutes RenewalPeriod = "minutes"
	RenewHours   RenewalPeriod = "hours"
)

// String returns the string representation of the renewal period.
func (r RenewalPeriod) String() string {
	return string(r)
}

// ParseRenewalPeriod parses a renewal period string.
func ParseRenewalPeriod(s string) (RenewalPeriod, error) {
	switch s {
	case "seconds":
		return RenewSeconds, nil
	case "minutes":
		return RenewMinutes, nil
	case "hours":
		return RenewHours, nil
	default:
		return "", fmt.Errorf("unknown renewal period: %q (want seconds, minutes or hours)", s)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler with strict validation.
func (r *RenewalPeriod) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseRenewalPeriod(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Duration returns the length of one renewal window.
func (r RenewalPeriod) Duration() time.Duration {
	switch r {
	case RenewSeconds:
		return time.Second
	case RenewMinutes:
		return time.Minute
	case RenewHours:
		return time.Hour
	default:
		return 0
	}
}

// RateLimit caps calls per renewal window for one model configuration.
type RateLimit struct {
	RenewalPeriod RenewalPeriod `yaml:"renewal_period"`
	Calls         uint32        `yaml:"calls"`
}

// Window returns the duration of one renewal window.
func (l RateLimit) Window() time.Duration {
	return l.RenewalPeriod.Duration()
}

// ModelConfig describes one configured model/provider pair.
// Deserialized once at startup and immutable thereafter.
type ModelConfig struct {
	Name               string            `yaml:"name"`
	SupportedEndpoints []EndpointType    `yaml:"supported_endpoints"`
	Provider           string            `yaml:"provider"`
	Model              string            `yaml:"model"`
	Config             map[string]string `yaml:"config,omitempty"`
	Limit              *RateLimit        `yaml:"limit,omitempty"`
}

// Supports reports whether the configuration lists the endpoint kind.
func (m ModelConfig) Supports(endpoint EndpointType) bool {
	for _, e := range m.SupportedEndpoints {
		if e == endpoint {
			return true
		}
	}
	return false
}

// Option returns a provider-specific knob from the config map.
func (m ModelConfig) Option(key string) (string, bool) {
	if m.Config == nil {
		return "", false
	}
	v, ok := m.Config[key]
	return v, ok
}

// Validate checks required fields and limit sanity.
func (m ModelConfig) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("model config: name is required")
	}
	if m.Provider == "" {
		return fmt.Errorf("model config %q: provider is required", m.Name)
	}
	if m.Model == "" {
		return fmt.Errorf("model config %q: model is required", m.Name)
	}
	if len(m.SupportedEndpoints) == 0 {
		return fmt.Errorf("model config %q: supported_endpoints must not be empty", m.Name)
	}
	if m.Limit != nil {
		if m.Limit.Calls == 0 {
			return fmt.Errorf("model config %q: limit.calls must be greater than zero", m.Name)
		}
		if m.Limit.Window() == 0 {
			return fmt.Errorf("model config %q: limit.renewal_period is required", m.Name)
		}
	}
	return nil
}

// modelsFile is the YAML document shape for the model catalog.
type modelsFile struct {
	Models []ModelConfig `yaml:"models"`
}

// ParseModels parses a model catalog from YAML bytes.
// Every entry is validated; names must be unique within the document.
func ParseModels(data []byte) ([]ModelConfig, error) {
	var file modelsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse model catalog: %w", err)
	}
	if len(file.Models) == 0 {
		return nil, fmt.Errorf("model catalog contains no models")
	}

	seen := make(map[string]bool, len(file.Models))
	for _, m := range file.Models {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if seen[m.Name] {
			return nil, fmt.Errorf("duplicate model config name: %q", m.Name)
		}
		seen[m.Name] = true
	}

	return file.Models, nil
}

// LoadModels reads and parses a model catalog file.
func LoadModels(path string) ([]ModelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model catalog: %w", err)
	}
	return ParseModels(data)
}

// FindModel returns the named entry from a loaded catalog.
func FindModel(models []ModelConfig, name string) (ModelConfig, bool) {
	for _, m := range models {
		if m.Name == name {
			return m, true
		}
	}
	return ModelConfig{}, false
}
