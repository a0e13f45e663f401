package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/layout"
)

// layoutCommand creates the layout command for positioning diagram nodes.
func (c *CLI) layoutCommand() *cobra.Command {
	var output string
	opts := layout.Options{}

	cmd := &cobra.Command{
		Use:   "layout [diagram.json]",
		Short: "Position diagram nodes with Graphviz",
		Long: `Position diagram nodes with Graphviz.

The layout command assigns node positions using the dot layered layout and
fits cluster bounds around their members. The output is the same diagram
with positions filled in, ready for the routing commands.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(c.commandContext(cmd), args[0], output, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVarP(&opts.Direction, "direction", "d", "", "rank direction: TB (default), BT, LR, RL")
	cmd.Flags().Float64Var(&opts.RankSep, "rank-sep", 0, "separation between ranks in inches")
	cmd.Flags().Float64Var(&opts.NodeSep, "node-sep", 0, "separation between nodes in inches")

	return cmd
}

// runLayout positions the diagram and writes the result.
func (c *CLI) runLayout(ctx context.Context, input, output string, opts layout.Options) error {
	d, err := loadDiagram(input)
	if err != nil {
		return fmt.Errorf("load diagram %s: %w", input, err)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	sp := newSpinner(ctx, "Computing layout...")
	sp.start()

	if err := layout.Position(ctx, d, opts); err != nil {
		sp.stopWithError("Layout failed")
		return err
	}
	sp.stop()

	outPath := outputPath(output, input, "layout")
	if err := diagram.WriteFile(outPath, d); err != nil {
		return fmt.Errorf("write output %s: %w", outPath, err)
	}

	printSuccess("Layout complete")
	printFile(outPath)
	printStats(len(d.Nodes), len(d.Edges), false)
	printNewline()
	printNextStep("Route", appName+" run "+outPath)
	return nil
}
