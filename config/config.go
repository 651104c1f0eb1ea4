// Package config loads orchestrator settings from YAML files and the
// environment. It exists for the CLI and service embedders; library users
// normally configure the orchestrator directly through vizflow.Options.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "5s" parse naturally.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler, accepting Go duration strings.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"5s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// AsDuration returns the wrapped value.
func (d Duration) AsDuration() time.Duration { return time.Duration(d) }

// String implements fmt.Stringer.
func (d Duration) String() string { return time.Duration(d).String() }

// Config mirrors the tunable surface of the orchestrator plus provider
// selection for the CLI.
type Config struct {
	// Provider selects the model backend: "openai", "anthropic" or "mock".
	Provider string `yaml:"provider"`
	// Model overrides the provider's default model name.
	Model string `yaml:"model"`

	MaxIterations int    `yaml:"max_iterations"`
	Mode          string `yaml:"mode"`
	Depth         string `yaml:"depth"`
	TopK          int    `yaml:"top_k"`

	ExecBudget Duration `yaml:"exec_budget"`
	LLMTimeout Duration `yaml:"llm_timeout"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// ArtifactBucket enables the S3 artifact store when non-empty.
	ArtifactBucket string `yaml:"artifact_bucket"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Provider:      "mock",
		MaxIterations: 3,
		Mode:          "conservative",
		Depth:         "full",
		TopK:          3,
		ExecBudget:    Duration(5 * time.Second),
		LLMTimeout:    Duration(60 * time.Second),
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected so
// typos fail loudly.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks enum fields and bounds.
func (c Config) Validate() error {
	switch c.Provider {
	case "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	switch c.Mode {
	case "conservative", "creative", "adaptive":
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	switch c.Depth {
	case "full", "simple":
	default:
		return fmt.Errorf("unknown depth %q", c.Depth)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1, got %d", c.MaxIterations)
	}
	if c.TopK < 1 {
		return fmt.Errorf("top_k must be at least 1, got %d", c.TopK)
	}
	if c.ExecBudget <= 0 {
		return fmt.Errorf("exec_budget must be positive, got %s", c.ExecBudget)
	}
	return nil
}
