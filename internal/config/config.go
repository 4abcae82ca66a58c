// Package config loads swatchbook configuration from defaults, a YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Cache backend names.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Remote backend names, matching the genai SDK's two backends.
const (
	RemoteBackendGemini = "gemini-api"
	RemoteBackendVertex = "vertex-ai"
)

const (
	// DefaultModel is the Gen AI model asked for smart recipes.
	DefaultModel = "gemini-2.5-flash"

	// DefaultMaxEntries is how many recipes the durable snapshot retains.
	DefaultMaxEntries = 200

	// DefaultSnapshotKey is the durable-store key holding the recipe snapshot.
	DefaultSnapshotKey = "swatchbook:recipe-cache"
)

// placeholderKeys are credential values shipped in sample configs. Any of
// these means "no credential".
var placeholderKeys = []string{
	"placeholder_api_key",
	"your-api-key",
	"your_api_key",
	"changeme",
	"xxx",
}

// Remote configures the generative model used for smart recipes.
type Remote struct {
	APIKey          string        `yaml:"api_key"`
	Backend         string        `yaml:"backend"`
	Project         string        `yaml:"project"`
	Location        string        `yaml:"location"`
	Model           string        `yaml:"model"`
	Temperature     float32       `yaml:"temperature"`
	MaxOutputTokens int32         `yaml:"max_output_tokens"`
	Timeout         time.Duration `yaml:"timeout"`
	// RequestsPerMinute caps batch calls. Zero disables limiting.
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// Enabled reports whether a usable credential is configured. A missing or
// placeholder key forces heuristic-only mode. Vertex AI authenticates with
// application default credentials, so a project is enough there.
func (r Remote) Enabled() bool {
	if r.Backend == RemoteBackendVertex {
		return strings.TrimSpace(r.Project) != ""
	}
	return !IsPlaceholderKey(r.APIKey)
}

// IsPlaceholderKey reports whether key is empty or an obvious placeholder.
func IsPlaceholderKey(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return true
	}
	if strings.HasPrefix(k, "<") && strings.HasSuffix(k, ">") {
		return true
	}
	for _, p := range placeholderKeys {
		if k == p {
			return true
		}
	}
	return false
}

// Cache configures the recipe cache and its durable tier.
type Cache struct {
	Backend     string `yaml:"backend"`
	Dir         string `yaml:"dir"`
	MaxEntries  int    `yaml:"max_entries"`
	SnapshotKey string `yaml:"snapshot_key"`
	RedisURL    string `yaml:"redis_url"`
	RedisPrefix string `yaml:"redis_prefix"`
}

// Server configures the HTTP host.
type Server struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Log configures logging.
type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Config is the complete swatchbook configuration.
type Config struct {
	Remote Remote `yaml:"remote"`
	Cache  Cache  `yaml:"cache"`
	Server Server `yaml:"server"`
	Log    Log    `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Remote: Remote{
			Backend:           RemoteBackendGemini,
			Model:             DefaultModel,
			Temperature:       0.2,
			MaxOutputTokens:   2048,
			Timeout:           30 * time.Second,
			RequestsPerMinute: 15,
			Location:          "us-central1",
		},
		Cache: Cache{
			Backend:     BackendFile,
			Dir:         DefaultCacheDir(),
			MaxEntries:  DefaultMaxEntries,
			SnapshotKey: DefaultSnapshotKey,
			RedisPrefix: "swatchbook:",
		},
		Server: Server{
			Addr:            "127.0.0.1:8787",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// DefaultCacheDir returns the default durable cache directory.
func DefaultCacheDir() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".cache", "swatchbook")
		}
		return filepath.Join(home, ".cache", "swatchbook")
	}
	return filepath.Join(cacheDir, "swatchbook")
}

// DefaultConfigPath returns the default YAML config file location.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "swatchbook", "config.yaml")
}

// Validate checks the configuration for values that cannot work.
func (c Config) Validate() error {
	var errs []error

	switch c.Cache.Backend {
	case BackendFile, BackendBadger, BackendMemory:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			errs = append(errs, fmt.Errorf("cache.redis_url is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache backend %q (want file, badger, redis or memory)", c.Cache.Backend))
	}
	if (c.Cache.Backend == BackendFile || c.Cache.Backend == BackendBadger) && c.Cache.Dir == "" {
		errs = append(errs, fmt.Errorf("cache.dir is required for the %s backend", c.Cache.Backend))
	}
	if c.Cache.MaxEntries <= 0 {
		errs = append(errs, fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries))
	}
	if c.Cache.SnapshotKey == "" {
		errs = append(errs, fmt.Errorf("cache.snapshot_key must not be empty"))
	}

	switch c.Remote.Backend {
	case RemoteBackendGemini, RemoteBackendVertex:
	default:
		errs = append(errs, fmt.Errorf("unknown remote backend %q (want gemini-api or vertex-ai)", c.Remote.Backend))
	}
	if c.Remote.Model == "" {
		errs = append(errs, fmt.Errorf("remote.model must not be empty"))
	}
	if c.Remote.Temperature < 0 || c.Remote.Temperature > 2 {
		errs = append(errs, fmt.Errorf("remote.temperature must be within [0,2], got %v", c.Remote.Temperature))
	}
	if c.Remote.MaxOutputTokens <= 0 {
		errs = append(errs, fmt.Errorf("remote.max_output_tokens must be positive, got %d", c.Remote.MaxOutputTokens))
	}
	if c.Remote.Timeout < 0 {
		errs = append(errs, fmt.Errorf("remote.timeout must not be negative"))
	}
	if c.Remote.RequestsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("remote.requests_per_minute must not be negative"))
	}

	return errors.Join(errs...)
}

// Builder assembles a Config from layered sources. Later layers win:
// defaults, then file, then environment.
type Builder struct {
	path     string
	optional bool
	useEnv   bool
	getenv   func(string) string
}

// NewBuilder creates a Builder starting from Default().
func NewBuilder() *Builder {
	return &Builder{getenv: os.Getenv}
}

// WithFile loads YAML from path. A missing file is an error.
func (b *Builder) WithFile(path string) *Builder {
	b.path = path
	b.optional = false
	return b
}

// WithOptionalFile loads YAML from path when it exists.
func (b *Builder) WithOptionalFile(path string) *Builder {
	b.path = path
	b.optional = true
	return b
}

// WithEnvConfig overlays GOOGLE_API_KEY and SWATCHBOOK_* variables.
func (b *Builder) WithEnvConfig() *Builder {
	b.useEnv = true
	return b
}

// WithGetenv replaces the environment lookup (useful for testing).
func (b *Builder) WithGetenv(fn func(string) string) *Builder {
	b.getenv = fn
	return b
}

// Build resolves and validates the configuration.
func (b *Builder) Build() (Config, error) {
	cfg := Default()

	if b.path != "" {
		if err := loadFile(b.path, &cfg); err != nil {
			if !(b.optional && errors.Is(err, os.ErrNotExist)) {
				return Config{}, err
			}
		}
	}

	if b.useEnv {
		if err := applyEnv(&cfg, b.getenv); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from --config
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	setString("GOOGLE_API_KEY", &cfg.Remote.APIKey)
	setString("SWATCHBOOK_API_KEY", &cfg.Remote.APIKey)
	setString("SWATCHBOOK_GENAI_BACKEND", &cfg.Remote.Backend)
	setString("GOOGLE_CLOUD_PROJECT", &cfg.Remote.Project)
	setString("GOOGLE_CLOUD_LOCATION", &cfg.Remote.Location)
	setString("SWATCHBOOK_MODEL", &cfg.Remote.Model)
	setString("SWATCHBOOK_CACHE_BACKEND", &cfg.Cache.Backend)
	setString("SWATCHBOOK_CACHE_DIR", &cfg.Cache.Dir)
	setString("SWATCHBOOK_REDIS_URL", &cfg.Cache.RedisURL)
	setString("SWATCHBOOK_ADDR", &cfg.Server.Addr)
	setString("SWATCHBOOK_LOG_LEVEL", &cfg.Log.Level)

	if v := getenv("SWATCHBOOK_CACHE_MAX_ENTRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SWATCHBOOK_CACHE_MAX_ENTRIES: %w", err)
		}
		cfg.Cache.MaxEntries = n
	}
	if v := getenv("SWATCHBOOK_REMOTE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SWATCHBOOK_REMOTE_TIMEOUT: %w", err)
		}
		cfg.Remote.Timeout = d
	}
	if v := getenv("SWATCHBOOK_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("SWATCHBOOK_TEMPERATURE: %w", err)
		}
		cfg.Remote.Temperature = float32(f)
	}
	return nil
}
