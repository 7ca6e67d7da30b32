package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape for leakhound. Pointer
// fields distinguish "unset" from zero values so CLI > local > global
// precedence can be resolved per field.
type FileConfig struct {
	Include         *string  `yaml:"include"`
	Exclude         *string  `yaml:"exclude"`
	MaxBytes        *int64   `yaml:"max_bytes"`
	Enable          *string  `yaml:"enable"`
	Disable         *string  `yaml:"disable"`
	Threads         *int     `yaml:"threads"`
	NoColor         *bool    `yaml:"no_color"`
	DefaultExcludes *bool    `yaml:"default_excludes"`
	FailOn          *string  `yaml:"fail_on"`
	Timeout         *string  `yaml:"timeout"`
	Rotated         []string `yaml:"rotated"`

	// False-positive review (optional, advisory-only)
	LLMFilter *LLMFilterConfig `yaml:"llm_filter"`
}

// LLMFilterConfig wires the Gemini-backed false-positive reviewer.
type LLMFilterConfig struct {
	// Enabled turns the review pass on. The API key comes from APIKey or the
	// GEMINI_API_KEY environment variable.
	Enabled *bool   `yaml:"enabled"`
	APIKey  *string `yaml:"api_key"`
	Model   *string `yaml:"model"`
	Timeout *string `yaml:"timeout"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a repo-local config file in the given root.
// It supports .leakhound.yml/.yaml and leakhound.yml/.yaml.
func LoadLocal(repoRoot string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range []string{".leakhound.yml", ".leakhound.yaml", "leakhound.yml", "leakhound.yaml"} {
		p := filepath.Join(repoRoot, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, errors.New("no config dir")
	}
	p := filepath.Join(base, "leakhound", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// GeminiAPIKey resolves the reviewer API key: explicit config first, then the
// GEMINI_API_KEY environment variable.
func (fc FileConfig) GeminiAPIKey() string {
	if fc.LLMFilter != nil && fc.LLMFilter.APIKey != nil && *fc.LLMFilter.APIKey != "" {
		return *fc.LLMFilter.APIKey
	}
	return os.Getenv("GEMINI_API_KEY")
}

// GeminiModel returns the configured reviewer model, or empty for the default.
func (fc FileConfig) GeminiModel() string {
	if fc.LLMFilter != nil && fc.LLMFilter.Model != nil {
		return *fc.LLMFilter.Model
	}
	return ""
}

// FilterEnabled reports whether the review pass is switched on in config.
func (fc FileConfig) FilterEnabled() bool {
	return fc.LLMFilter != nil && fc.LLMFilter.Enabled != nil && *fc.LLMFilter.Enabled
}
