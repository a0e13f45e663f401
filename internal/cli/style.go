package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/pipeline"
	"github.com/viralify/edgecraft/pkg/style"
)

// styleCommand creates the style command for importance-based edge styling.
func (c *CLI) styleCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		metric  string
		scheme  string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "style [diagram.json]",
		Short: "Score edge importance and assign visual styles",
		Long: `Score edge importance and assign visual styles.

The style command scores each edge by weight, frequency, centrality, or
criticality, normalizes scores to [0,1], and derives stroke width, opacity,
color, glow, and z-order. The most important edges can be promoted to a
highlighted critical path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.StyleOpts.Metric = style.Metric(metric)
			opts.StyleOpts.Scheme = style.Scheme(scheme)
			return c.runStage(c.commandContext(cmd), args[0], output, "style", noCache, opts,
				func(ctx context.Context, runner *pipeline.Runner, d *diagram.Diagram, opts pipeline.Options) (any, error) {
					return runner.StyleEdges(ctx, d, opts)
				})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.style.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&metric, "metric", "m", string(style.MetricWeight), "importance metric: weight, frequency, centrality, criticality")
	cmd.Flags().StringVarP(&scheme, "scheme", "s", string(style.SchemeMonochrome), "color scheme: monochrome, gradient, categorical, heatmap, semantic")

	return cmd
}
