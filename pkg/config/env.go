package config

import (
	"strconv"
	"time"

	"github.com/matzehuels/kinreport/pkg/errors"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "KINREPORT_"

type envVar struct {
	name string
	set  func(c *Config, v string) error
}

func str(dst func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error { *dst(c) = v; return nil }
}

func dur(dst func(*Config) *Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst(c) = Duration(d)
		return nil
	}
}

var envVars = []envVar{
	{"UPSTREAM_URL", str(func(c *Config) *string { return &c.Upstream.BaseURL })},
	{"UPSTREAM_TOKEN", str(func(c *Config) *string { return &c.Upstream.Token })},
	{"UPSTREAM_TIMEOUT", dur(func(c *Config) *Duration { return &c.Upstream.Timeout })},
	{"SERVER_ADDR", str(func(c *Config) *string { return &c.Server.Addr })},
	{"CACHE_BACKEND", str(func(c *Config) *string { return &c.Cache.Backend })},
	{"CACHE_DIR", str(func(c *Config) *string { return &c.Cache.Dir })},
	{"REDIS_URL", str(func(c *Config) *string { return &c.Cache.RedisURL })},
	{"HISTORY_BACKEND", str(func(c *Config) *string { return &c.History.Backend })},
	{"MONGO_URI", str(func(c *Config) *string { return &c.History.MongoURI })},
	{"RENDER_SOURCE", str(func(c *Config) *string { return &c.Render.Source })},
	{"RENDER_SCALE", func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.Render.Scale = f
		return nil
	}},
	{"LOG_LEVEL", str(func(c *Config) *string { return &c.Log.Level })},
}

// ApplyEnv overrides fields from KINREPORT_* variables found by lookup
// (os.LookupEnv in production).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, e := range envVars {
		v, ok := lookup(EnvPrefix + e.name)
		if !ok || v == "" {
			continue
		}
		if err := e.set(c, v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s%s", EnvPrefix, e.name)
		}
	}
	return nil
}
