package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kinreport/pkg/cache"
	"github.com/matzehuels/kinreport/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the lookup and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached lookup and artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if c.Config.Cache.Backend == config.CacheNone {
				printInfo("Caching is disabled")
				return nil
			}
			cc, err := newCache(ctx, c.Config.Cache, false)
			if err != nil {
				return err
			}
			defer cc.Close()

			clearer, ok := cc.(cache.Clearer)
			if !ok {
				return fmt.Errorf("cache backend %q cannot be cleared", c.Config.Cache.Backend)
			}
			n, err := clearer.Clear(ctx)
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %d cached entries", n)
			printDetail("%s", cacheLocation(ctx, c.Config.Cache))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(out, cacheLocation(cmd.Context(), c.Config.Cache))
			return nil
		},
	}
}

// cacheLocation describes the configured backend: a directory for the file
// cache, the key prefix and server for redis.
func cacheLocation(_ context.Context, cfg config.Cache) string {
	switch cfg.Backend {
	case config.CacheRedis:
		return cfg.RedisURL + " (prefix " + cfg.Prefix + ")"
	case config.CacheNone:
		return "disabled"
	}
	dir, err := fileCacheDir(cfg)
	if err != nil {
		return "unavailable: " + err.Error()
	}
	return dir
}
