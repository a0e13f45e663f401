package layout

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"

	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/errors"
	"github.com/viralify/edgecraft/pkg/geom"
)

// pointsPerInch converts between diagram units (treated as points) and the
// inch-based width/height attributes dot expects.
const pointsPerInch = 72

// BuildDOT converts a diagram to Graphviz DOT. Node sizes are fixed so the
// layout honors the diagram's declared dimensions, and clusters become
// subgraphs so dot keeps their members adjacent.
func BuildDOT(d *diagram.Diagram, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", opts.Direction)
	fmt.Fprintf(&buf, "  ranksep=%g;\n", opts.RankSep)
	fmt.Fprintf(&buf, "  nodesep=%g;\n", opts.NodeSep)
	buf.WriteString("  node [shape=box, fixedsize=true];\n")
	buf.WriteString("\n")

	clustered := make(map[string]bool)
	for _, c := range d.Clusters {
		fmt.Fprintf(&buf, "  subgraph %q {\n", "cluster_"+c.ID)
		if c.Label != "" {
			fmt.Fprintf(&buf, "    label=%q;\n", c.Label)
		}
		for _, nodeID := range c.Nodes {
			n, ok := d.Node(nodeID)
			if !ok {
				continue
			}
			clustered[nodeID] = true
			writeNode(&buf, "    ", n)
		}
		buf.WriteString("  }\n")
	}

	for i := range d.Nodes {
		if !clustered[d.Nodes[i].ID] {
			writeNode(&buf, "  ", &d.Nodes[i])
		}
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, indent string, n *diagram.Node) {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	fmt.Fprintf(buf, "%s%q [label=%q, width=%g, height=%g];\n",
		indent, n.ID, label,
		n.Size.Width/pointsPerInch, n.Size.Height/pointsPerInch)
}

var (
	// dot splits long attribute statements with backslash-newline.
	continuationRe = regexp.MustCompile(`\\\r?\n`)

	bbRe   = regexp.MustCompile(`bb="([0-9.]+),([0-9.]+),([0-9.]+),([0-9.]+)"`)
	stmtRe = regexp.MustCompile(`(?m)^\s*(?:"((?:[^"\\]|\\.)+)"|([A-Za-z0-9_]+))\s+\[([^\]]*)\]`)
	posRe  = regexp.MustCompile(`\bpos="(-?[0-9.]+),(-?[0-9.]+)"`)
)

// parsePositions extracts node center coordinates and the drawing height
// from dot's annotated output.
func parsePositions(xdot []byte) (map[string]geom.Point, float64, error) {
	src := continuationRe.ReplaceAll(xdot, nil)

	bb := bbRe.FindSubmatch(src)
	if bb == nil {
		return nil, 0, errors.New(errors.ErrCodeInternal, "layout output missing bounding box")
	}
	height, err := strconv.ParseFloat(string(bb[4]), 64)
	if err != nil {
		return nil, 0, errors.Wrap(errors.ErrCodeInternal, err, "parse bounding box height")
	}

	positions := make(map[string]geom.Point)
	for _, m := range stmtRe.FindAllSubmatch(src, -1) {
		id := string(m[1])
		if id == "" {
			id = string(m[2])
		}
		if id == "graph" || id == "node" || id == "edge" {
			continue
		}

		pos := posRe.FindSubmatch(m[3])
		if pos == nil {
			continue
		}
		x, errX := strconv.ParseFloat(string(pos[1]), 64)
		y, errY := strconv.ParseFloat(string(pos[2]), 64)
		if errX != nil || errY != nil {
			continue
		}
		positions[id] = geom.Point{X: x, Y: y}
	}

	return positions, height, nil
}
