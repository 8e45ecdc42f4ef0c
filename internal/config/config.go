// Package config loads the application configuration from YAML with
// ${ENV} expansion. Missing required keys are reported together so a
// bad deployment fails once, at startup, with the full list.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "15m" as well as plain second counts.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var secs float64
	if err := value.Decode(&secs); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(time.Duration(secs * float64(time.Second)))
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full application configuration.
type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Chatbot   ChatbotConfig   `yaml:"chatbot"`
	Research  ResearchConfig  `yaml:"research"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
}

// LLMConfig configures the completion backend.
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// EmbeddingConfig configures the embedding backend.
type EmbeddingConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// IndexConfig configures the retrieval index builder.
type IndexConfig struct {
	Path    string   `yaml:"path"`
	Site    string   `yaml:"site"`
	Exclude []string `yaml:"exclude"`
}

// ChatbotConfig configures the support chatbot.
type ChatbotConfig struct {
	LocatorBaseURL string   `yaml:"locator_base_url"`
	PromotionTopK  int      `yaml:"promotion_top_k"`
	SessionTTL     Duration `yaml:"session_ttl"`
}

// ResearchConfig configures the report generator.
type ResearchConfig struct {
	SearchBaseURL  string `yaml:"search_base_url"`
	SearchAPIKey   string `yaml:"search_api_key"`
	MaxAnalysts    int    `yaml:"max_analysts"`
	MaxTurns       int    `yaml:"max_turns"`
	MaxConcurrency int    `yaml:"max_concurrency"`
	OutputDir      string `yaml:"output_dir"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// StorageConfig configures persistence paths.
type StorageConfig struct {
	CheckpointPath string `yaml:"checkpoint_path"`
}

// Defaults returns the configuration used when keys are absent.
func Defaults() Config {
	return Config{
		LLM:       LLMConfig{Model: "gpt-4o", Temperature: 0},
		Embedding: EmbeddingConfig{Model: "text-embedding-3-small"},
		Index:     IndexConfig{Path: "officina_index.db"},
		Chatbot: ChatbotConfig{
			PromotionTopK: 4,
			SessionTTL:    Duration(30 * time.Minute),
		},
		Research: ResearchConfig{
			MaxAnalysts:    3,
			MaxTurns:       2,
			MaxConcurrency: 4,
			OutputDir:      "report",
		},
		Server:  ServerConfig{Addr: ":8080"},
		Storage: StorageConfig{CheckpointPath: "officina_sessions.db"},
	}
}

// Load reads the YAML file at path, expands ${ENV} references and
// validates required keys. A missing file is not an error; environment
// variables alone can carry the required values.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// fall through to env-only configuration
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv fills credentials from the conventional environment
// variables when the YAML left them empty.
func (c *Config) applyEnv() {
	setIfEmpty(&c.LLM.BaseURL, "OPENAI_BASE_URL")
	setIfEmpty(&c.LLM.APIKey, "OPENAI_API_KEY")
	setIfEmpty(&c.Embedding.BaseURL, "OPENAI_BASE_URL")
	setIfEmpty(&c.Embedding.APIKey, "OPENAI_API_KEY")
	setIfEmpty(&c.Research.SearchAPIKey, "TAVILY_API_KEY")
}

func setIfEmpty(dst *string, env string) {
	if *dst == "" {
		*dst = os.Getenv(env)
	}
}

// Validate reports every missing required key in one error.
func (c Config) Validate() error {
	var errs []error
	if c.LLM.BaseURL == "" {
		errs = append(errs, errors.New("llm.base_url is required (or OPENAI_BASE_URL)"))
	}
	if c.LLM.APIKey == "" {
		errs = append(errs, errors.New("llm.api_key is required (or OPENAI_API_KEY)"))
	}
	if c.Chatbot.PromotionTopK <= 0 {
		errs = append(errs, errors.New("chatbot.promotion_top_k must be positive"))
	}
	if c.Research.MaxTurns <= 0 {
		errs = append(errs, errors.New("research.max_turns must be positive"))
	}
	if c.Research.MaxAnalysts <= 0 {
		errs = append(errs, errors.New("research.max_analysts must be positive"))
	}
	return errors.Join(errs...)
}
