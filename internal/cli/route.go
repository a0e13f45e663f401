package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/pipeline"
)

// routeCommand creates the route command for grid-based routing.
func (c *CLI) routeCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{Routing: pipeline.RoutingGrid}

	cmd := &cobra.Command{
		Use:   "route [diagram.json]",
		Short: "Route edges orthogonally around nodes on an occupancy grid",
		Long: `Route edges orthogonally around nodes on an occupancy grid.

The route command rasterizes node bounds onto a grid and searches for
Manhattan paths with a bend penalty. Edges that cannot be routed fall back
to an L-shaped path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStage(c.commandContext(cmd), args[0], output, "route", noCache, opts,
				func(ctx context.Context, runner *pipeline.Runner, d *diagram.Diagram, opts pipeline.Options) (any, error) {
					result, _, err := runner.Route(ctx, d, opts)
					return result, err
				})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.route.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().Float64Var(&opts.RouteOpts.CellSize, "cell-size", 0, "grid resolution in world units")
	cmd.Flags().Float64Var(&opts.RouteOpts.NodePadding, "padding", 0, "clearance kept around node bounds")
	cmd.Flags().Float64Var(&opts.RouteOpts.BendPenalty, "bend-penalty", 0, "extra cost per direction change")

	return cmd
}
