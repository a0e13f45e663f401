// Package cli implements the edgecraft command-line interface.
//
// This package provides commands for running the edge processing pipeline
// over diagram files, executing individual stages (layout, aggregate, plan,
// route, bundle, style), serving the pipeline over HTTP, and managing the
// local result cache. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - run: Execute the full pipeline and write the combined result
//   - layout: Position diagram nodes via Graphviz
//   - aggregate, plan, route, bundle, style: Run a single stage
//   - serve: Expose the pipeline as an HTTP API
//   - cache: Manage the local result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/viralify/edgecraft/pkg/buildinfo"
	"github.com/viralify/edgecraft/pkg/cache"
	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "edgecraft"

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
		Use:          appName,
		Short:        "Edgecraft routes, bundles, and styles diagram edges",
		Long:         `Edgecraft is a CLI tool for managing edge complexity in node-link diagrams: it positions nodes, aggregates parallel connections, routes paths around obstacles, bundles compatible edges into shared corridors, and assigns visual styles by importance.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.runCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.aggregateCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.routeCommand())
	root.AddCommand(c.bundleCommand())
	root.AddCommand(c.styleCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
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

// cacheDir returns the cache directory using XDG standard (~/.cache/edgecraft/).
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

// loadDiagram reads a diagram JSON file.
func loadDiagram(path string) (*diagram.Diagram, error) {
	return diagram.ReadFile(path)
}

// outputPath derives the output file path for a stage result. If output is
// empty, the path is the input with its extension replaced by
// ".<suffix>.json".
func outputPath(output, input, suffix string) string {
	if output != "" {
		return output
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "." + suffix + ".json"
}

// commandContext attaches the CLI logger to the command's context so that
// pipeline stages can retrieve it with log.FromContext.
func (c *CLI) commandContext(cmd *cobra.Command) context.Context {
	return log.WithContext(cmd.Context(), c.Logger)
}
