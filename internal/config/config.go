package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the process-wide configuration. Per-tenant bot settings live in
// each user record; this covers storage, the admin surface, and generation.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Admin   AdminConfig   `yaml:"admin"`
	Metrics MetricsConfig `yaml:"metrics"`
	Secrets SecretsConfig `yaml:"secrets"`
	LLM     LLMConfig     `yaml:"llm"`
	News    NewsConfig    `yaml:"news"`
}

type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
}

type AdminConfig struct {
	Addr string `yaml:"addr"`
	// If empty, read from env BOT_API_KEY
	APIKey string `yaml:"apiKey"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type SecretsConfig struct {
	Dir string `yaml:"dir"`
	// Base64 key; if empty, read from env ENCRYPTION_KEY or a generated key file
	Key string `yaml:"key"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai" or "none"
	Model    string `yaml:"model"`
	// If empty, read from env OPENAI_API_KEY
	APIKey string `yaml:"apiKey"`
}

type NewsConfig struct {
	SourceURL string `yaml:"sourceURL"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Storage: StorageConfig{DBPath: "./subxbot.db"},
		Admin:   AdminConfig{Addr: ":8080"},
		Metrics: MetricsConfig{Addr: ""},
		Secrets: SecretsConfig{Dir: "./users"},
		LLM:     LLMConfig{Provider: "none", Model: "gpt-4o-mini"},
		News:    NewsConfig{SourceURL: "https://ngxgroup.com"},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if c.Admin.APIKey == "" {
		c.Admin.APIKey = os.Getenv("BOT_API_KEY")
	}
	if c.Secrets.Key == "" {
		c.Secrets.Key = os.Getenv("ENCRYPTION_KEY")
	}
	if c.LLM.APIKey == "" && c.LLM.Provider == "openai" {
		c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
