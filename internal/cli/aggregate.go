package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/viralify/edgecraft/pkg/aggregate"
	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/pipeline"
)

// aggregateCommand creates the aggregate command for edge aggregation.
func (c *CLI) aggregateCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		mode    string
	)
	opts := pipeline.Options{Aggregate: true}

	cmd := &cobra.Command{
		Use:   "aggregate [diagram.json]",
		Short: "Collapse parallel edges into single weighted connections",
		Long: `Collapse parallel edges into single weighted connections.

The aggregate command groups edges by cluster membership, node groups,
bidirectional pairs, or edge type, and merges each group above the
minimum bucket size into one edge with a count badge.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.AggregateOpts.Mode = aggregate.Mode(mode)
			return c.runStage(c.commandContext(cmd), args[0], output, "aggregate", noCache, opts,
				func(ctx context.Context, runner *pipeline.Runner, d *diagram.Diagram, opts pipeline.Options) (any, error) {
					return runner.Aggregate(ctx, d, opts)
				})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.aggregate.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&mode, "mode", "m", string(aggregate.ModeCluster), "grouping mode: cluster, node_group, bidirectional, edge_type")
	cmd.Flags().IntVar(&opts.AggregateOpts.MinEdges, "min-edges", 0, "bucket size at which edges merge")

	return cmd
}
