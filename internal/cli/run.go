package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/viralify/edgecraft/pkg/pipeline"
)

// runCommand creates the run command for executing the full pipeline.
func (c *CLI) runCommand() *cobra.Command {
	var (
		output     string
		configFile string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "run [diagram.json]",
		Short: "Run the full edge pipeline over a diagram",
		Long: `Run the full edge pipeline over a diagram.

The run command takes a diagram.json file with positioned nodes and executes
every enabled stage: aggregation, routing (plan or grid), bundling, and
styling. Nodes without positions can be placed first with --layout.

The combined result is written as JSON. Stage results are cached locally for
faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				fileOpts, err := loadOptionsFile(configFile)
				if err != nil {
					return err
				}
				mergeFlagOverrides(cmd, &fileOpts, opts)
				opts = fileOpts
			}
			return c.runPipeline(c.commandContext(cmd), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.result.json)")
	cmd.Flags().StringVar(&configFile, "config", "", "TOML config file with pipeline options")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	cmd.Flags().BoolVar(&opts.Layout, "layout", false, "position nodes before processing")
	cmd.Flags().BoolVar(&opts.Aggregate, "aggregate", false, "collapse parallel edges before routing")
	cmd.Flags().StringVar(&opts.Routing, "routing", "", "routing strategy: plan (default), grid")
	cmd.Flags().BoolVar(&opts.Bundle, "bundle", false, "bundle compatible edges after routing")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and recompute")

	return cmd
}

// mergeFlagOverrides applies explicitly set command-line flags on top of
// options loaded from a config file.
func mergeFlagOverrides(cmd *cobra.Command, dst *pipeline.Options, flags pipeline.Options) {
	if cmd.Flags().Changed("layout") {
		dst.Layout = flags.Layout
	}
	if cmd.Flags().Changed("aggregate") {
		dst.Aggregate = flags.Aggregate
	}
	if cmd.Flags().Changed("routing") {
		dst.Routing = flags.Routing
	}
	if cmd.Flags().Changed("bundle") {
		dst.Bundle = flags.Bundle
	}
	if cmd.Flags().Changed("refresh") {
		dst.Refresh = flags.Refresh
	}
}

// runPipeline loads the diagram, executes the pipeline, and writes output.
func (c *CLI) runPipeline(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	d, err := loadDiagram(input)
	if err != nil {
		return fmt.Errorf("load diagram %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	sp := newSpinner(ctx, "Processing edges...")
	sp.start()

	result, err := runner.Execute(ctx, d, opts)
	if err != nil {
		sp.stopWithError("Pipeline failed")
		return err
	}
	sp.stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outPath := outputPath(output, input, "result")
	if err := writeJSON(outPath, result); err != nil {
		return fmt.Errorf("write output %s: %w", outPath, err)
	}

	cached := result.CacheInfo.RouteHit && result.CacheInfo.StyleHit
	printSuccess("Pipeline complete")
	printFile(outPath)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, cached)
	if result.Styled != nil && len(result.Styled.Warnings) > 0 {
		for _, w := range result.Styled.Warnings {
			printWarning("%s", w)
		}
	}
	return nil
}

// writeJSON writes v as indented JSON to path.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
