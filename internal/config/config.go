package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// OpenAIConfig holds connection settings for an OpenAI-compatible endpoint.
type OpenAIConfig struct {
	BaseURL     string   `yaml:"base_url"`
	APIKeyEnv   string   `yaml:"api_key_env"`
	Model       string   `yaml:"model"`
	TimeoutSecs int      `yaml:"timeout_secs"`
	MaxRetries  int      `yaml:"max_retries"`
	Temperature *float64 `yaml:"temperature,omitempty"`
}

// Timeout returns the per-call timeout.
func (c OpenAIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// LexicalConfig configures the offline feature-hashing embedder.
type LexicalConfig struct {
	Dimension int `yaml:"dimension"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type    string        `yaml:"type"`
	OpenAI  OpenAIConfig  `yaml:"openai"`
	Lexical LexicalConfig `yaml:"lexical"`
}

// CompletionConfig selects and configures the chat completion service.
type CompletionConfig struct {
	Type   string       `yaml:"type"`
	OpenAI OpenAIConfig `yaml:"openai"`
}

// SegmenterConfig configures token segmentation.
type SegmenterConfig struct {
	MaxTokens     int    `yaml:"max_tokens"`
	EncodingModel string `yaml:"encoding_model"`
}

// RetrievalConfig configures relevance selection.
type RetrievalConfig struct {
	// Threshold is nil when unset so that an explicit 0 survives loading.
	Threshold   *float64 `yaml:"threshold"`
	Concurrency int      `yaml:"concurrency"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	UploadDir   string `yaml:"upload_dir"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// SummaryConfig configures the document preview summary.
type SummaryConfig struct {
	MaxSentences int `yaml:"max_sentences"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Completion CompletionConfig `yaml:"completion"`
	Segmenter  SegmenterConfig  `yaml:"segmenter"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Server     ServerConfig     `yaml:"server"`
	Summary    SummaryConfig    `yaml:"summary"`
	Log        LogConfig        `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docqa/config.yaml.
// If neither exists, it writes defaults to ~/.config/docqa/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := DefaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultUserConfigPath returns ~/.config/docqa/config.yaml.
func DefaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docqa", "config.yaml"), nil
}

// Default returns a fully populated configuration.
func Default() *AppConfig {
	cfg := &AppConfig{
		Embedder:   EmbedderConfig{Type: "openai"},
		Completion: CompletionConfig{Type: "openai"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "openai"
	}
	applyOpenAIDefaults(&cfg.Embedder.OpenAI, "text-embedding-ada-002", 30)
	if cfg.Embedder.Lexical.Dimension <= 0 {
		cfg.Embedder.Lexical.Dimension = 512
	}

	if cfg.Completion.Type == "" {
		cfg.Completion.Type = "openai"
	}
	applyOpenAIDefaults(&cfg.Completion.OpenAI, "gpt-3.5-turbo", 60)

	if cfg.Segmenter.MaxTokens <= 0 {
		cfg.Segmenter.MaxTokens = 1000
	}
	if cfg.Segmenter.EncodingModel == "" {
		cfg.Segmenter.EncodingModel = cfg.Embedder.OpenAI.Model
	}

	if cfg.Retrieval.Threshold == nil {
		threshold := 0.2
		cfg.Retrieval.Threshold = &threshold
	}
	if cfg.Retrieval.Concurrency <= 0 {
		cfg.Retrieval.Concurrency = 4
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Server.UploadDir == "" {
		cfg.Server.UploadDir = "temp_dir"
	}
	if cfg.Server.MaxUploadMB <= 0 {
		cfg.Server.MaxUploadMB = 32
	}

	if cfg.Summary.MaxSentences <= 0 {
		cfg.Summary.MaxSentences = 3
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func applyOpenAIDefaults(c *OpenAIConfig, model string, timeoutSecs int) {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.Model == "" {
		c.Model = model
	}
	if c.TimeoutSecs <= 0 {
		c.TimeoutSecs = timeoutSecs
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
}
