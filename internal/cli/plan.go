package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/pipeline"
	"github.com/viralify/edgecraft/pkg/plan"
)

// planCommand creates the plan command for geometric path planning.
func (c *CLI) planCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		mode    string
	)
	opts := pipeline.Options{Routing: pipeline.RoutingPlan}

	cmd := &cobra.Command{
		Use:   "plan [diagram.json]",
		Short: "Compute anchor points and geometric edge paths",
		Long: `Compute anchor points and geometric edge paths.

The plan command picks boundary anchors facing each edge's peer node and
builds direct, bezier, orthogonal, curved, or bundled path geometry. It does
not avoid obstacles; use 'route' for grid routing around nodes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.PlanOpts.Mode = plan.Mode(mode)
			return c.runStage(c.commandContext(cmd), args[0], output, "plan", noCache, opts,
				func(ctx context.Context, runner *pipeline.Runner, d *diagram.Diagram, opts pipeline.Options) (any, error) {
					return runner.Plan(ctx, d, opts)
				})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.plan.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&mode, "mode", "m", string(plan.ModeBezier), "path mode: direct, bezier, orthogonal, curved, bundled")
	cmd.Flags().Float64Var(&opts.PlanOpts.CurveTension, "tension", 0, "bezier control-point tension (0,1]")
	cmd.Flags().Float64Var(&opts.PlanOpts.BundleSpacing, "spacing", 0, "gap between fanned parallel edges")

	return cmd
}
