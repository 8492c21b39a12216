// Package cli implements the treeline command-line interface.
//
// This package provides commands for converting tagged documents between
// text formats, validating them against the tag registry, inspecting and
// browsing their structure, rendering reference graphs, and running the
// HTTP API server. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - convert: Translate documents between YAML and JSON
//   - validate: Check that a document parses and decodes cleanly
//   - inspect: Print structural statistics for a document
//   - browse: Navigate a document tree interactively
//   - graph: Render the reference graph as DOT, SVG, or PNG
//   - serve: Run the HTTP API server
//   - cache: Manage the local conversion cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers
// are passed through context.Context to allow structured progress
// tracking.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treeline/pkg/buildinfo"
	"github.com/matzehuels/treeline/pkg/cache"
	"github.com/matzehuels/treeline/pkg/pipeline"
	"github.com/matzehuels/treeline/pkg/textio"
)

// appName is the application name used for directories and display.
const appName = "treeline"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "treeline",
		Short:        "Treeline converts and visualizes tagged document trees",
		Long:         `Treeline is a CLI tool for working with tagged document trees: converting between YAML and JSON, validating tags against a registry, and visualizing anchors and aliases as reference graphs.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.convertCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/treeline/).
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

// formatForPath maps a file extension to a pipeline format name.
// .json and .json.zst read as JSON; everything else reads as YAML.
func formatForPath(path string) string {
	if textio.FormatForPath(path) == textio.FormatJSON {
		return pipeline.FormatJSON
	}
	return pipeline.FormatYAML
}
