// Package cli implements the flowscope command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowscope/pkg/buildinfo"
	"github.com/matzehuels/flowscope/pkg/cache"
	"github.com/matzehuels/flowscope/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "flowscope"
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
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "flowscope",
		Short:        "Flowscope visualizes hierarchical dataflow graphs",
		Long:         `Flowscope is a CLI tool for visualizing dataflow graphs with nested containers, letting you collapse and expand groupings to explore large graphs at different levels of detail.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. An empty redisAddr selects
// the file cache under the XDG cache directory.
func (c *CLI) newRunner(ctx context.Context, noCache bool, redisAddr string) (*pipeline.Runner, error) {
	store, err := newCache(ctx, noCache, redisAddr)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

func newCache(ctx context.Context, noCache bool, redisAddr string) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisAddr != "" {
		return cache.NewRedisCache(ctx, cache.RedisOptions{Addr: redisAddr})
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/flowscope/).
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

// =============================================================================
// Format Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// parseCollapseList parses repeated or comma-separated container ids.
func parseCollapseList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
