// Package layout assigns node positions to unpositioned diagrams by running
// Graphviz dot layout and reading the computed coordinates back.
//
// The engine's other stages require positioned input; this package is the
// optional front door for graphs that arrive as bare topology.
package layout

import (
	"bytes"
	"context"

	"github.com/goccy/go-graphviz"

	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/errors"
	"github.com/viralify/edgecraft/pkg/geom"
)

// Options configures the dot layout.
type Options struct {
	// Direction is the graph rank direction: TB, BT, LR, or RL.
	// Default: TB.
	Direction string `json:"direction" toml:"direction"`

	// RankSep and NodeSep are the dot separation settings in inches.
	RankSep float64 `json:"rank_sep" toml:"rank_sep"`
	NodeSep float64 `json:"node_sep" toml:"node_sep"`

	// DefaultSize is applied to nodes with a zero size before layout.
	DefaultSize geom.Size `json:"default_size" toml:"default_size"`
}

// DefaultOptions returns options with all fields at their defaults.
func DefaultOptions() Options {
	return Options{
		Direction:   "TB",
		RankSep:     0.5,
		NodeSep:     0.3,
		DefaultSize: geom.Size{Width: 120, Height: 60},
	}
}

// ValidateAndSetDefaults fills zero fields with defaults and validates the rest.
func (o *Options) ValidateAndSetDefaults() error {
	def := DefaultOptions()
	if o.Direction == "" {
		o.Direction = def.Direction
	}
	if o.RankSep == 0 {
		o.RankSep = def.RankSep
	}
	if o.NodeSep == 0 {
		o.NodeSep = def.NodeSep
	}
	if o.DefaultSize == (geom.Size{}) {
		o.DefaultSize = def.DefaultSize
	}
	return errors.ValidateEnum(errors.ErrCodeInvalidConfig, "direction", o.Direction,
		"TB", "BT", "LR", "RL")
}

// Position runs dot layout over the diagram and writes the computed node
// positions back in place. Existing positions are overwritten. Cluster
// bounds are refit around their members afterwards.
func Position(ctx context.Context, d *diagram.Diagram, opts Options) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if len(d.Nodes) == 0 {
		return errors.New(errors.ErrCodeEmptyDiagram, "diagram has no nodes to lay out")
	}

	for i := range d.Nodes {
		if d.Nodes[i].Size == (geom.Size{}) {
			d.Nodes[i].Size = opts.DefaultSize
		}
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(BuildDOT(d, opts)))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "parse generated DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "dot layout")
	}

	positions, height, err := parsePositions(buf.Bytes())
	if err != nil {
		return err
	}

	for i := range d.Nodes {
		n := &d.Nodes[i]
		center, ok := positions[n.ID]
		if !ok {
			return errors.New(errors.ErrCodeInternal, "layout output missing node %q", n.ID)
		}
		// Graphviz positions node centers with y up; flip into screen space.
		n.Position = geom.Point{
			X: center.X - n.Size.Width/2,
			Y: (height - center.Y) - n.Size.Height/2,
		}
	}

	fitClusters(d)
	return nil
}

// fitClusters resizes each cluster to the padded bounding box of its members.
func fitClusters(d *diagram.Diagram) {
	const pad = 20

	for i := range d.Clusters {
		c := &d.Clusters[i]
		var bounds geom.Rect
		found := false
		for _, nodeID := range c.Nodes {
			n, ok := d.Node(nodeID)
			if !ok {
				continue
			}
			if !found {
				bounds = n.Bounds()
				found = true
			} else {
				bounds = bounds.Union(n.Bounds())
			}
		}
		if !found {
			continue
		}
		bounds = bounds.Expand(pad)
		c.Position = bounds.Min
		c.Size = bounds.Size
	}
}
