package cli

import (
	"context"
	"fmt"

	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/pipeline"
)

// stageFunc runs a single pipeline stage and returns its serializable result.
type stageFunc func(ctx context.Context, runner *pipeline.Runner, d *diagram.Diagram, opts pipeline.Options) (any, error)

// runStage is the shared driver for single-stage commands: load the diagram,
// validate options, run the stage, write the JSON result.
func (c *CLI) runStage(ctx context.Context, input, output, suffix string, noCache bool, opts pipeline.Options, fn stageFunc) error {
	d, err := loadDiagram(input)
	if err != nil {
		return fmt.Errorf("load diagram %s: %w", input, err)
	}
	if err := d.Validate(); err != nil {
		c.Logger.Warn("diagram has dangling edges; they will be skipped", "err", err)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := fn(ctx, runner, d, opts)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	outPath := outputPath(output, input, suffix)
	if err := writeJSON(outPath, result); err != nil {
		return fmt.Errorf("write output %s: %w", outPath, err)
	}

	printSuccess("Stage %s complete", suffix)
	printFile(outPath)
	printStats(len(d.Nodes), len(d.Edges), false)
	return nil
}
