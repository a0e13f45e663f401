package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/viralify/edgecraft/pkg/bundle"
	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/pipeline"
)

// bundleCommand creates the bundle command for edge bundling.
func (c *CLI) bundleCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		mode    string
	)
	opts := pipeline.Options{Bundle: true}

	cmd := &cobra.Command{
		Use:   "bundle [diagram.json]",
		Short: "Bundle compatible edges into shared corridors",
		Long: `Bundle compatible edges into shared corridors.

The bundle command subdivides each edge into control points and pulls
compatible edges together. Force-directed bundling attracts edges by
pairwise compatibility; hierarchical bends same-cluster edges through the
cluster center; radial bends through the diagram centroid; stub merges
edges leaving a node in the same direction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.BundleOpts.Mode = bundle.Mode(mode)
			return c.runStage(c.commandContext(cmd), args[0], output, "bundle", noCache, opts,
				func(ctx context.Context, runner *pipeline.Runner, d *diagram.Diagram, opts pipeline.Options) (any, error) {
					return runner.Bundle(ctx, d, opts)
				})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.bundle.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&mode, "mode", "m", string(bundle.ModeForceDirected), "bundling mode: force_directed, hierarchical, radial, stub")
	cmd.Flags().Float64Var(&opts.BundleOpts.Strength, "strength", 0, "bundling strength [0,1]")
	cmd.Flags().IntVar(&opts.BundleOpts.Iterations, "iterations", 0, "force simulation iterations")
	cmd.Flags().IntVar(&opts.BundleOpts.Subdivisions, "subdivisions", 0, "interior control points per edge")

	return cmd
}
