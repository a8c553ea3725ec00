package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the storycode.yaml configuration.
type Config struct {
	Completion CompletionConfig `yaml:"completion"`
	HTTP       HTTPConfig       `yaml:"http"`
	Extractor  ExtractorConfig  `yaml:"extractor"`
	Log        LogConfig        `yaml:"log"`
}

// CompletionConfig points at the text completion backend.
type CompletionConfig struct {
	// Backend is "ollama" or "fake". The fake backend echoes canned replies
	// and is meant for demos and tests without a model server.
	Backend string        `yaml:"backend"`
	URL     string        `yaml:"url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// HTTPConfig controls the gin server started by `storycode serve`.
type HTTPConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ExtractorConfig controls structural extraction.
type ExtractorConfig struct {
	DefaultLanguage string   `yaml:"default_language"`
	Enabled         []string `yaml:"enabled"`
	MaxSourceBytes  int      `yaml:"max_source_bytes"`
}

// LogConfig selects the zap preset and level.
type LogConfig struct {
	Mode  string `yaml:"mode"`
	Level string `yaml:"level"`
}

// Environment variables that override file settings.
const (
	EnvCompletionBackend = "STORYCODE_COMPLETION_BACKEND"
	EnvCompletionURL     = "STORYCODE_COMPLETION_URL"
	EnvModel             = "STORYCODE_MODEL"
	EnvTimeout           = "STORYCODE_COMPLETION_TIMEOUT"
	EnvHTTPAddr          = "STORYCODE_HTTP_ADDR"
	EnvAllowedOrigins    = "STORYCODE_ALLOWED_ORIGINS"
	EnvLogMode           = "STORYCODE_LOG_MODE"
	EnvLogLevel          = "STORYCODE_LOG_LEVEL"
)

const (
	defaultURL      = "http://localhost:11434/api/generate"
	defaultModel    = "gpt-oss:20b"
	defaultTimeout  = 120 * time.Second
	defaultMaxBytes = 64 * 1024
)

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Completion: CompletionConfig{
			Backend: "ollama",
			URL:     defaultURL,
			Model:   defaultModel,
			Timeout: defaultTimeout,
		},
		HTTP: HTTPConfig{
			Addr:           ":8000",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Extractor: ExtractorConfig{
			DefaultLanguage: "python",
			Enabled:         []string{"python", "typescript", "tsx", "go"},
			MaxSourceBytes:  defaultMaxBytes,
		},
		Log: LogConfig{Mode: "development"},
	}
}

// Load reads a configuration file from the given path.
// Missing fields are filled with defaults. An empty path yields Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.fillDefaults()
	return cfg, nil
}

// LoadWithEnv loads path, then a .env file from the working directory if one
// exists, then applies STORYCODE_* overrides.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	_ = godotenv.Load()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from STORYCODE_* environment variables.
func (c *Config) ApplyEnv() error {
	c.Completion.Backend = firstNonEmpty(env(EnvCompletionBackend), c.Completion.Backend)
	c.Completion.URL = firstNonEmpty(env(EnvCompletionURL), c.Completion.URL)
	c.Completion.Model = firstNonEmpty(env(EnvModel), c.Completion.Model)
	c.HTTP.Addr = normalizeAddr(firstNonEmpty(env(EnvHTTPAddr), c.HTTP.Addr))
	c.Log.Mode = firstNonEmpty(env(EnvLogMode), c.Log.Mode)
	c.Log.Level = firstNonEmpty(env(EnvLogLevel), c.Log.Level)

	if raw := env(EnvTimeout); raw != "" {
		d, err := parseTimeout(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Completion.Timeout = d
	}
	if raw := env(EnvAllowedOrigins); raw != "" {
		c.HTTP.AllowedOrigins = splitList(raw)
	}
	return nil
}

// Validate reports settings the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Completion.Backend {
	case "ollama":
		if c.Completion.URL == "" {
			errs = append(errs, errors.New("completion.url is required for the ollama backend"))
		}
		if c.Completion.Model == "" {
			errs = append(errs, errors.New("completion.model is required for the ollama backend"))
		}
	case "fake":
	default:
		errs = append(errs, fmt.Errorf("completion.backend %q is not one of ollama, fake", c.Completion.Backend))
	}
	if c.Completion.Timeout < 0 {
		errs = append(errs, errors.New("completion.timeout must not be negative"))
	}
	if c.Extractor.MaxSourceBytes < 0 {
		errs = append(errs, errors.New("extractor.max_source_bytes must not be negative"))
	}
	return errors.Join(errs...)
}

// IsExtractorEnabled returns true if the named extractor is enabled.
func (c *Config) IsExtractorEnabled(name string) bool {
	return contains(c.Extractor.Enabled, name)
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.Completion.Backend == "" {
		c.Completion.Backend = d.Completion.Backend
	}
	if c.Completion.URL == "" {
		c.Completion.URL = d.Completion.URL
	}
	if c.Completion.Model == "" {
		c.Completion.Model = d.Completion.Model
	}
	if c.Completion.Timeout == 0 {
		c.Completion.Timeout = d.Completion.Timeout
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = d.HTTP.Addr
	}
	c.HTTP.Addr = normalizeAddr(c.HTTP.Addr)
	if c.Extractor.DefaultLanguage == "" {
		c.Extractor.DefaultLanguage = d.Extractor.DefaultLanguage
	}
	if len(c.Extractor.Enabled) == 0 {
		c.Extractor.Enabled = d.Extractor.Enabled
	}
	if c.Extractor.MaxSourceBytes == 0 {
		c.Extractor.MaxSourceBytes = d.Extractor.MaxSourceBytes
	}
	if c.Log.Mode == "" {
		c.Log.Mode = d.Log.Mode
	}
}

// parseTimeout accepts Go durations ("90s") and bare seconds ("90").
func parseTimeout(raw string) (time.Duration, error) {
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(raw)
}

func normalizeAddr(addr string) string {
	if addr != "" && !strings.Contains(addr, ":") {
		return ":" + addr
	}
	return addr
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
