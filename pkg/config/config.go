// Package config loads kinreport settings.
//
// Settings come from three layers, later ones winning: [Default], a TOML or
// YAML file picked by extension, and KINREPORT_* environment variables.
// [Config.Validate] runs last.
//
// A minimal TOML file:
//
//	[upstream]
//	base_url = "https://registry.example/api/v1/genealogy"
//	token = "..."
//	timeout = "8s"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/kinreport/pkg/errors"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// History backends.
const (
	HistoryMemory = "memory"
	HistoryMongo  = "mongo"
	HistoryNone   = "none"
)

// Config is the complete settings tree.
type Config struct {
	Upstream Upstream `toml:"upstream" yaml:"upstream"`
	Server   Server   `toml:"server" yaml:"server"`
	Cache    Cache    `toml:"cache" yaml:"cache"`
	History  History  `toml:"history" yaml:"history"`
	Render   Render   `toml:"render" yaml:"render"`
	Log      Log      `toml:"log" yaml:"log"`
}

// Upstream is the civil-registry API.
type Upstream struct {
	BaseURL string   `toml:"base_url" yaml:"base_url"`
	Token   string   `toml:"token" yaml:"token"`
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

// Server is the HTTP service.
type Server struct {
	Addr            string   `toml:"addr" yaml:"addr"`
	ReadTimeout     Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Cache selects and configures the lookup and artifact cache.
type Cache struct {
	Backend     string   `toml:"backend" yaml:"backend"`
	Dir         string   `toml:"dir" yaml:"dir"`
	RedisURL    string   `toml:"redis_url" yaml:"redis_url"`
	Prefix      string   `toml:"prefix" yaml:"prefix"`
	LookupTTL   Duration `toml:"lookup_ttl" yaml:"lookup_ttl"`
	ArtifactTTL Duration `toml:"artifact_ttl" yaml:"artifact_ttl"`
}

// History selects where render records go.
type History struct {
	Backend    string   `toml:"backend" yaml:"backend"`
	Capacity   int      `toml:"capacity" yaml:"capacity"`
	MongoURI   string   `toml:"mongo_uri" yaml:"mongo_uri"`
	Database   string   `toml:"database" yaml:"database"`
	Collection string   `toml:"collection" yaml:"collection"`
	TTL        Duration `toml:"ttl" yaml:"ttl"`
}

// Render holds document defaults.
type Render struct {
	// Source is printed in report footers.
	Source string `toml:"source" yaml:"source"`
	// Scale multiplies raster output resolution.
	Scale float64 `toml:"scale" yaml:"scale"`
}

// Log configures the charm logger.
type Log struct {
	Level string `toml:"level" yaml:"level"`
}

// Default returns settings that work for a local CLI run, apart from the
// upstream URL which has no sensible default.
func Default() Config {
	return Config{
		Upstream: Upstream{Timeout: Duration(10 * time.Second)},
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     Duration(15 * time.Second),
			WriteTimeout:    Duration(60 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Cache: Cache{
			Backend:     CacheFile,
			Prefix:      "kinreport:",
			LookupTTL:   Duration(24 * time.Hour),
			ArtifactTTL: Duration(7 * 24 * time.Hour),
		},
		History: History{
			Backend:    HistoryMemory,
			Capacity:   1000,
			Database:   "kinreport",
			Collection: "renders",
		},
		Render: Render{Source: "RENIEC", Scale: 1},
		Log:    Log{Level: "info"},
	}
}

// Load reads path on top of Default, applies the environment and
// validates. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "config %s: unsupported extension %q (want .toml, .yaml or .yml)", path, ext)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	return nil
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks values that would otherwise fail deep inside a render.
func (c Config) Validate() error {
	if c.Upstream.BaseURL != "" {
		if err := errors.ValidateURL(c.Upstream.BaseURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "upstream.base_url")
		}
	}
	if c.Upstream.Timeout <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "upstream.timeout must be positive")
	}
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache.redis_url is required for the redis backend")
		}
		if c.Cache.Prefix == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache.prefix is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend %q: want file, redis or none", c.Cache.Backend)
	}
	switch c.History.Backend {
	case HistoryMemory, HistoryNone:
	case HistoryMongo:
		if c.History.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "history.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "history.backend %q: want memory, mongo or none", c.History.Backend)
	}
	if c.Render.Scale <= 0 || c.Render.Scale > 8 {
		return errors.New(errors.ErrCodeInvalidInput, "render.scale must be in (0, 8], got %g", c.Render.Scale)
	}
	if !logLevels[strings.ToLower(c.Log.Level)] {
		return errors.New(errors.ErrCodeInvalidInput, "log.level %q: want debug, info, warn or error", c.Log.Level)
	}
	return nil
}

// RequireUpstream fails when no upstream URL is configured. Commands that
// only read caches or history skip it.
func (c Config) RequireUpstream() error {
	if c.Upstream.BaseURL == "" {
		return errors.New(errors.ErrCodeInvalidInput, "upstream.base_url is not set (config file or KINREPORT_UPSTREAM_URL)")
	}
	return nil
}
