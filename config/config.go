// Package config defines the server configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/GoCodeAlone/workflowgen/ai"
	"github.com/GoCodeAlone/workflowgen/middleware"
	"github.com/GoCodeAlone/workflowgen/observability"
	"github.com/GoCodeAlone/workflowgen/observability/tracing"
	"github.com/GoCodeAlone/workflowgen/store"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" json:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" json:"shutdownTimeout"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level" json:"level"`
	// Format is text or json.
	Format string `yaml:"format" json:"format"`
}

// ProviderConfig holds credentials and model selection for one external
// generator. Empty fields fall back to the provider's environment variable
// and built-in defaults.
type ProviderConfig struct {
	APIKey  string `yaml:"apiKey" json:"-"`
	Model   string `yaml:"model" json:"model"`
	BaseURL string `yaml:"baseURL" json:"baseURL"`
}

// AIConfig selects the generator used for the life of the process.
type AIConfig struct {
	// Provider is local, anthropic, openai, openrouter or auto.
	Provider   string         `yaml:"provider" json:"provider"`
	Timeout    time.Duration  `yaml:"timeout" json:"timeout"`
	Anthropic  ProviderConfig `yaml:"anthropic" json:"anthropic"`
	OpenAI     ProviderConfig `yaml:"openai" json:"openai"`
	OpenRouter ProviderConfig `yaml:"openrouter" json:"openrouter"`
}

// Config is the complete server configuration.
type Config struct {
	Server     ServerConfig                `yaml:"server" json:"server"`
	Log        LogConfig                   `yaml:"log" json:"log"`
	AI         AIConfig                    `yaml:"ai" json:"ai"`
	Store      store.Config                `yaml:"store" json:"store"`
	Tracing    tracing.Config              `yaml:"tracing" json:"tracing"`
	Metrics    observability.MetricsConfig `yaml:"metrics" json:"metrics"`
	RateLimit  middleware.RateLimitConfig  `yaml:"rateLimit" json:"rateLimit"`
	Validation middleware.ValidationConfig `yaml:"validation" json:"validation"`
	// CatalogDir replaces the embedded templates with the YAML files in
	// this directory.
	CatalogDir string `yaml:"catalogDir" json:"catalogDir"`
}

// Default returns the configuration used when no file is given: local
// generation, in-memory storage, tracing off.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    ai.DefaultTimeout + 15*time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log:        LogConfig{Level: "info", Format: "text"},
		AI:         AIConfig{Provider: string(ai.ProviderAuto), Timeout: ai.DefaultTimeout},
		Store:      store.Config{Driver: "memory"},
		Tracing:    tracing.DefaultConfig(),
		Metrics:    observability.DefaultMetricsConfig(),
		RateLimit:  middleware.DefaultRateLimitConfig(),
		Validation: middleware.DefaultValidationConfig(),
	}
}

// LoadFromFile reads a YAML file over the defaults. Keys absent from the
// file keep their default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if _, err := ai.ParseProvider(c.AI.Provider); err != nil {
		errs = append(errs, fmt.Errorf("ai.provider: %q is not one of local, anthropic, openai, openrouter, auto", c.AI.Provider))
	}
	if c.AI.Timeout < 0 {
		errs = append(errs, errors.New("ai.timeout must not be negative"))
	}
	switch c.Store.Driver {
	case "", "memory", "sqlite", "postgres", "redis":
	default:
		errs = append(errs, fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver))
	}
	if c.Store.Driver == "postgres" && c.Store.PG.URL == "" {
		errs = append(errs, errors.New("store.postgres.url is required for the postgres driver"))
	}
	if c.Store.Driver == "redis" && c.Store.Redis.Address == "" {
		errs = append(errs, errors.New("store.redis.address is required for the redis driver"))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, errors.New("tracing.sampleRate must be between 0 and 1"))
	}
	return errors.Join(errs...)
}

// ParseLevel maps a level name to a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return lvl, fmt.Errorf("log.level: unknown level %q", s)
	}
	return lvl, nil
}

// NewLogger builds the process logger described by c.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	lvl, _ := ParseLevel(c.Level)
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
