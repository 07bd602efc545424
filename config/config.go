// Package config loads the assistant's HCL configuration: model backend,
// storage backend, output root, and optional per-topic site overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Config holds all configuration.
type Config struct {
	Model   *ModelConfig   `hcl:"model,block"`
	Storage *StorageConfig `hcl:"storage,block"`
	Output  *OutputConfig  `hcl:"output,block"`
	Sites   []SiteConfig   `hcl:"sites,block"`
}

// ModelConfig selects the language model backend.
type ModelConfig struct {
	Provider       string `hcl:"provider,optional"` // ollama, openai, anthropic, gemini
	Model          string `hcl:"model,optional"`
	BaseURL        string `hcl:"base_url,optional"`
	APIKey         string `hcl:"api_key,optional"`
	TimeoutSeconds int    `hcl:"timeout_seconds,optional"`
}

// StorageConfig selects workflow persistence.
type StorageConfig struct {
	Backend string `hcl:"backend,optional"` // memory or sqlite
	Path    string `hcl:"path,optional"`
}

// OutputConfig sets where generated files land.
type OutputConfig struct {
	Root string `hcl:"root,optional"`
}

// SiteConfig overrides the source list for one topic.
type SiteConfig struct {
	Topic string   `hcl:"topic,label"`
	URLs  []string `hcl:"urls"`
}

// Default returns the built-in configuration: local Ollama, sqlite
// storage, and an aide directory under the user's documents.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Model: &ModelConfig{
			Provider:       "ollama",
			Model:          "llama3.2",
			TimeoutSeconds: 120,
		},
		Storage: &StorageConfig{
			Backend: "sqlite",
			Path:    filepath.Join(home, ".aide", "aide.db"),
		},
		Output: &OutputConfig{
			Root: filepath.Join(home, "Documents", "aide"),
		},
	}
}

// Load reads the HCL file at path, fills unset fields from defaults and
// environment variables, and validates the result. An empty path loads
// defaults only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parse %s: %w", path, diags)
		}

		var loaded Config
		if diags := gohcl.DecodeBody(file.Body, evalContext(), &loaded); diags.HasErrors() {
			return nil, fmt.Errorf("decode %s: %w", path, diags)
		}
		merge(cfg, &loaded)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// evalContext exposes env.* so config files can reference environment
// variables without hardcoding secrets.
func evalContext() *hcl.EvalContext {
	envMap := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				envMap[kv[:i]] = cty.StringVal(kv[i+1:])
				break
			}
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(envMap),
		},
	}
}

func merge(dst, src *Config) {
	if src.Model != nil {
		m := dst.Model
		if src.Model.Provider != "" {
			m.Provider = src.Model.Provider
		}
		if src.Model.Model != "" {
			m.Model = src.Model.Model
		}
		if src.Model.BaseURL != "" {
			m.BaseURL = src.Model.BaseURL
		}
		if src.Model.APIKey != "" {
			m.APIKey = src.Model.APIKey
		}
		if src.Model.TimeoutSeconds > 0 {
			m.TimeoutSeconds = src.Model.TimeoutSeconds
		}
	}
	if src.Storage != nil {
		if src.Storage.Backend != "" {
			dst.Storage.Backend = src.Storage.Backend
		}
		if src.Storage.Path != "" {
			dst.Storage.Path = src.Storage.Path
		}
	}
	if src.Output != nil && src.Output.Root != "" {
		dst.Output.Root = src.Output.Root
	}
	dst.Sites = src.Sites
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("AIDE_PROVIDER"); v != "" {
		cfg.Model.Provider = v
	}
	if v := os.Getenv("AIDE_MODEL"); v != "" {
		cfg.Model.Model = v
	}
	if v := os.Getenv("AIDE_BASE_URL"); v != "" {
		cfg.Model.BaseURL = v
	}
	if v := os.Getenv("AIDE_API_KEY"); v != "" {
		cfg.Model.APIKey = v
	}
	if v := os.Getenv("AIDE_OUTPUT_DIR"); v != "" {
		cfg.Output.Root = v
	}
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case "", "ollama", "openai", "anthropic", "gemini":
	default:
		return fmt.Errorf("model: unknown provider '%s' (expected ollama, openai, anthropic, or gemini)", c.Model.Provider)
	}
	if c.Model.Model == "" {
		return fmt.Errorf("model: model name is required")
	}
	switch c.Model.Provider {
	case "openai", "anthropic", "gemini":
		if c.Model.APIKey == "" {
			return fmt.Errorf("model: provider '%s' requires api_key (or AIDE_API_KEY)", c.Model.Provider)
		}
	}

	switch c.Storage.Backend {
	case "", "memory", "sqlite":
	default:
		return fmt.Errorf("storage: unknown backend '%s' (expected memory or sqlite)", c.Storage.Backend)
	}

	for _, s := range c.Sites {
		if len(s.URLs) == 0 {
			return fmt.Errorf("sites '%s': urls must not be empty", s.Topic)
		}
	}
	return nil
}

// Timeout returns the model call timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.Model.TimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.Model.TimeoutSeconds) * time.Second
}

// SiteOverrides converts sites blocks into the topic table form the web
// gatherer takes.
func (c *Config) SiteOverrides() map[string][]string {
	if len(c.Sites) == 0 {
		return nil
	}
	out := make(map[string][]string, len(c.Sites))
	for _, s := range c.Sites {
		out[s.Topic] = s.URLs
	}
	return out
}
