// Package cli implements the kinreport command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kinreport/pkg/buildinfo"
	"github.com/matzehuels/kinreport/pkg/cache"
	"github.com/matzehuels/kinreport/pkg/config"
	"github.com/matzehuels/kinreport/pkg/history"
	"github.com/matzehuels/kinreport/pkg/pipeline"
	"github.com/matzehuels/kinreport/pkg/registry"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "kinreport"

	// keySchema scopes cache keys; bump it when key layout changes.
	keySchema = "v1:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	// Config is loaded by the root command before any subcommand runs.
	Config     config.Config
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "kinreport renders family trees and genealogy reports",
		Long: `kinreport looks a national ID (DNI) up in the civil registry and renders
the principal's relatives as a family-tree image, a multi-page genealogy
report, a kinship certificate or a node-link diagram.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return c.loadConfig() },
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (.toml, .yaml)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config (or $KINREPORT_CONFIG) and the environment.
// The log level from config only applies when --verbose did not raise it.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		path = os.Getenv(config.EnvPrefix + "CONFIG")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Config = cfg

	if c.Logger.GetLevel() != log.DebugLevel {
		if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
			c.SetLogLevel(level)
		}
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner wires the registry client, caches and history store from
// config. Callers must Close the runner.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	if err := c.Config.RequireUpstream(); err != nil {
		return nil, err
	}
	cc, err := newCache(ctx, c.Config.Cache, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), keySchema)

	client, err := registry.New(registry.Options{
		BaseURL:  c.Config.Upstream.BaseURL,
		Token:    c.Config.Upstream.Token,
		Timeout:  c.Config.Upstream.Timeout.D(),
		Cache:    cc,
		Keyer:    keyer,
		CacheTTL: c.Config.Cache.LookupTTL.D(),
	})
	if err != nil {
		cc.Close()
		return nil, err
	}

	hs, err := newHistory(ctx, c.Config.History)
	if err != nil {
		cc.Close()
		return nil, err
	}

	runner := pipeline.NewRunner(client, cc, keyer, c.Logger)
	runner.ArtifactTTL = c.Config.Cache.ArtifactTTL.D()
	if hs != nil {
		runner.History = hs
	}
	return runner, nil
}

func newCache(ctx context.Context, cfg config.Cache, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.Prefix)
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return rc, nil
	}
	dir, err := fileCacheDir(cfg)
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newHistory returns nil when history is disabled.
func newHistory(ctx context.Context, cfg config.History) (history.Store, error) {
	switch cfg.Backend {
	case config.HistoryNone:
		return nil, nil
	case config.HistoryMongo:
		s, err := history.NewMongoStore(ctx, history.MongoOptions{
			URI:        cfg.MongoURI,
			Database:   cfg.Database,
			Collection: cfg.Collection,
			TTL:        cfg.TTL.D(),
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return history.NewMemory(cfg.Capacity), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/kinreport/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

func fileCacheDir(cfg config.Cache) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	return cacheDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// setCLIDefaults applies config defaults the flags start from.
func (c *CLI) setCLIDefaults(opts *pipeline.Options) {
	if opts.Source == "" {
		opts.Source = c.Config.Render.Source
	}
	if opts.Scale == 0 {
		opts.Scale = c.Config.Render.Scale
	}
}

// outputPath resolves -o: empty means the suggested file name, a directory
// means the suggested name inside it.
func outputPath(output, suggested string) string {
	if output == "" {
		return suggested
	}
	if strings.HasSuffix(output, string(os.PathSeparator)) {
		return filepath.Join(output, suggested)
	}
	if fi, err := os.Stat(output); err == nil && fi.IsDir() {
		return filepath.Join(output, suggested)
	}
	return output
}
