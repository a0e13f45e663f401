// Package route produces collision-free orthogonal edge paths using an
// occupancy grid and A* search.
//
// The router discretizes the diagram into a uniform [Grid], blocks cells
// under padded node bounds, and searches cell-by-cell per edge. Edges are
// routed shortest first so short connections claim direct corridors before
// long ones wind around them. Routing failures (blocked off, budget
// exhausted) degrade to a deterministic L-shaped fallback rather than
// failing the batch.
//
// One routing pass owns its grid exclusively and mutates it serially across
// edges; see [Grid] for the ownership contract.
package route

import (
	"context"
	"math"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/errors"
	"github.com/viralify/edgecraft/pkg/geom"
	"github.com/viralify/edgecraft/pkg/observability"
)

// Side names the node boundary an edge exits or enters through.
type Side string

// Node sides.
const (
	SideNorth Side = "north"
	SideSouth Side = "south"
	SideEast  Side = "east"
	SideWest  Side = "west"
)

// Direction classifies a path segment's orientation.
type Direction string

// Segment orientations.
const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// Segment is one straight run of a routed path.
type Segment struct {
	Start     geom.Point `json:"start"`
	End       geom.Point `json:"end"`
	Direction Direction  `json:"direction"`
}

// RoutedEdge is an edge routed through the grid.
type RoutedEdge struct {
	Edge        diagram.Edge `json:"edge"`
	Segments    []Segment    `json:"segments"`
	SourceSide  Side         `json:"source_side"`
	TargetSide  Side         `json:"target_side"`
	TotalLength float64      `json:"total_length"`
	Bends       int          `json:"bends"`
	Fallback    bool         `json:"fallback,omitempty"` // True when A* failed and an L-route was used
}

// Waypoints returns the path as an ordered point list, starting at the
// source anchor and ending at the target anchor.
func (r *RoutedEdge) Waypoints() []geom.Point {
	if len(r.Segments) == 0 {
		return nil
	}
	points := make([]geom.Point, 0, len(r.Segments)+1)
	points = append(points, r.Segments[0].Start)
	for _, seg := range r.Segments {
		points = append(points, seg.End)
	}
	return points
}

// Result holds routed edges plus counts for skipped and fallback edges.
type Result struct {
	Edges     []RoutedEdge `json:"edges"`
	Skipped   int          `json:"skipped"`
	Fallbacks int          `json:"fallbacks"`
}

// Config holds router options.
type Config struct {
	// CellSize is the grid resolution in world units. Smaller is more
	// precise but slower. Default: 10.
	CellSize float64 `json:"cell_size" toml:"cell_size"`

	// NodePadding expands node bounds before blocking cells, keeping paths
	// clear of node borders. Default: 15.
	NodePadding float64 `json:"node_padding" toml:"node_padding"`

	// BendPenalty is added to the step cost whenever the search changes
	// direction. Higher values produce longer but straighter paths.
	// Default: 5.
	BendPenalty float64 `json:"bend_penalty" toml:"bend_penalty"`

	// MaxExpandedCells bounds the A* search per edge; exhausting it
	// triggers the L-shaped fallback. Default: 50000.
	MaxExpandedCells int `json:"max_expanded_cells" toml:"max_expanded_cells"`

	// CornerRadius is the rounded-corner radius for SVG output. Default: 6.
	CornerRadius float64 `json:"corner_radius" toml:"corner_radius"`
}

// DefaultConfig returns a config with all fields at their defaults.
func DefaultConfig() Config {
	return Config{
		CellSize:         10,
		NodePadding:      15,
		BendPenalty:      5,
		MaxExpandedCells: 50000,
		CornerRadius:     6,
	}
}

// ValidateAndSetDefaults fills zero fields with defaults and validates the rest.
func (c *Config) ValidateAndSetDefaults() error {
	if c.CellSize == 0 {
		c.CellSize = 10
	}
	if c.NodePadding == 0 {
		c.NodePadding = 15
	}
	if c.BendPenalty == 0 {
		c.BendPenalty = 5
	}
	if c.MaxExpandedCells == 0 {
		c.MaxExpandedCells = 50000
	}
	if c.CornerRadius == 0 {
		c.CornerRadius = 6
	}

	if err := errors.ValidatePositive(errors.ErrCodeInvalidConfig, "cell_size", c.CellSize); err != nil {
		return err
	}
	if c.BendPenalty < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "bend_penalty must not be negative, got %g", c.BendPenalty)
	}
	if c.MaxExpandedCells < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_expanded_cells must not be negative, got %d", c.MaxExpandedCells)
	}
	return nil
}

// Router routes edges through an occupancy grid.
type Router struct {
	cfg Config
}

// New creates a router. Returns an error for invalid config.
func New(cfg Config) (*Router, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Router{cfg: cfg}, nil
}

// Route routes all edges in the diagram, shortest first. The grid built for
// the pass is returned alongside the result so callers can inspect occupancy.
//
// The per-edge loop is serial: each routed edge records its occupied cells
// before the next search runs.
func (r *Router) Route(ctx context.Context, d *diagram.Diagram) (*Result, *Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeCanceled, err, "routing canceled")
	}
	if len(d.Nodes) == 0 {
		return nil, nil, errors.New(errors.ErrCodeEmptyDiagram, "cannot route edges without nodes")
	}

	logger := log.FromContext(ctx)
	grid := NewGrid(d, r.cfg.CellSize, r.cfg.NodePadding)
	result := &Result{Edges: make([]RoutedEdge, 0, len(d.Edges))}

	for _, edge := range prioritize(d) {
		if err := ctx.Err(); err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeCanceled, err, "routing canceled")
		}

		src, okSrc := d.Node(edge.Source)
		tgt, okTgt := d.Node(edge.Target)
		if !okSrc || !okTgt {
			result.Skipped++
			logger.Warn("skipping edge with missing endpoint", "edge", edge.Key())
			observability.Pipeline().OnEdgeSkipped(ctx, "route", edge.Key(), "missing endpoint")
			continue
		}

		routed := r.routeEdge(ctx, grid, edge, src, tgt)
		if routed.Fallback {
			result.Fallbacks++
		}
		result.Edges = append(result.Edges, routed)
		markOccupied(grid, &routed, edge.Key())
	}

	return result, grid, nil
}

// routeEdge searches one edge, falling back to an L-route on failure.
func (r *Router) routeEdge(ctx context.Context, grid *Grid, edge diagram.Edge, src, tgt *diagram.Node) RoutedEdge {
	sourceSide := bestSide(src, tgt)
	targetSide := bestSide(tgt, src)
	srcAnchor := sideAnchor(src, sourceSide)
	tgtAnchor := sideAnchor(tgt, targetSide)

	startX, startY := grid.WorldToGrid(srcAnchor)
	endX, endY := grid.WorldToGrid(tgtAnchor)
	start := gridPoint{startX, startY}
	end := gridPoint{endX, endY}

	// Anchor cells sit inside padded node bounds. Open the run of cells from
	// each anchor out to the first free cell for this search only, so the
	// path exits perpendicular to the node side, and restore afterwards.
	restoreStart := openExit(grid, start, sideStep(sourceSide))
	restoreEnd := openExit(grid, end, sideStep(targetSide))
	path, expanded, ok := findPath(grid, start, end, r.cfg.BendPenalty, r.cfg.MaxExpandedCells)
	restoreStart()
	restoreEnd()

	if !ok {
		observability.Routing().OnFallback(ctx, edge.Key(), expanded)
		return lRoute(edge, srcAnchor, tgtAnchor, sourceSide, targetSide)
	}
	observability.Routing().OnPathFound(ctx, edge.Key(), expanded, len(path))

	// Pin the true anchors; interior points are cell centers.
	points := make([]geom.Point, len(path))
	for i, p := range path {
		points[i] = grid.GridToWorld(p.X, p.Y)
	}
	points[0] = srcAnchor
	points[len(points)-1] = tgtAnchor

	segments := toSegments(points)
	return RoutedEdge{
		Edge:        edge,
		Segments:    segments,
		SourceSide:  sourceSide,
		TargetSide:  targetSide,
		TotalLength: pathLength(segments),
		Bends:       len(segments) - 1,
	}
}

// prioritize orders edges by ascending Euclidean center distance. Edges with
// missing endpoints sort last so they are skipped after all routable work.
func prioritize(d *diagram.Diagram) []diagram.Edge {
	edges := make([]diagram.Edge, len(d.Edges))
	copy(edges, d.Edges)

	distance := func(e diagram.Edge) float64 {
		src, okSrc := d.Node(e.Source)
		tgt, okTgt := d.Node(e.Target)
		if !okSrc || !okTgt {
			return math.Inf(1)
		}
		return src.Center().Distance(tgt.Center())
	}

	sort.SliceStable(edges, func(i, j int) bool {
		return distance(edges[i]) < distance(edges[j])
	})
	return edges
}

// bestSide picks the node boundary facing the peer along the dominant axis.
func bestSide(from, to *diagram.Node) Side {
	fc, tc := from.Center(), to.Center()
	dx := tc.X - fc.X
	dy := tc.Y - fc.Y
	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			return SideEast
		}
		return SideWest
	}
	if dy > 0 {
		return SideSouth
	}
	return SideNorth
}

// sideAnchor returns the midpoint of the named node side.
func sideAnchor(n *diagram.Node, side Side) geom.Point {
	cx := n.Position.X + n.Size.Width/2
	cy := n.Position.Y + n.Size.Height/2
	switch side {
	case SideNorth:
		return geom.Point{X: cx, Y: n.Position.Y}
	case SideSouth:
		return geom.Point{X: cx, Y: n.Position.Y + n.Size.Height}
	case SideEast:
		return geom.Point{X: n.Position.X + n.Size.Width, Y: cy}
	default:
		return geom.Point{X: n.Position.X, Y: cy}
	}
}

// sideStep returns the outward grid step for a node side.
func sideStep(side Side) gridPoint {
	switch side {
	case SideNorth:
		return gridPoint{0, -1}
	case SideSouth:
		return gridPoint{0, 1}
	case SideEast:
		return gridPoint{1, 0}
	default:
		return gridPoint{-1, 0}
	}
}

// openExit unblocks the cells from an anchor cell outward until the first
// free cell and returns a function restoring their previous state.
func openExit(g *Grid, from, step gridPoint) func() {
	type saved struct {
		p       gridPoint
		blocked bool
	}
	var run []saved

	p := from
	for g.Blocked(p.X, p.Y) {
		if p.X < 0 || p.X >= g.Width || p.Y < 0 || p.Y >= g.Height {
			break
		}
		run = append(run, saved{p, g.setBlocked(p.X, p.Y, false)})
		p = gridPoint{p.X + step.X, p.Y + step.Y}
	}

	return func() {
		for _, s := range run {
			g.setBlocked(s.p.X, s.p.Y, s.blocked)
		}
	}
}

// lRoute builds the deterministic 3-segment fallback, bending through the
// midpoint of the dominant axis.
func lRoute(edge diagram.Edge, src, tgt geom.Point, sourceSide, targetSide Side) RoutedEdge {
	var segments []Segment
	if math.Abs(tgt.X-src.X) > math.Abs(tgt.Y-src.Y) {
		midX := (src.X + tgt.X) / 2
		segments = []Segment{
			{Start: src, End: geom.Point{X: midX, Y: src.Y}, Direction: Horizontal},
			{Start: geom.Point{X: midX, Y: src.Y}, End: geom.Point{X: midX, Y: tgt.Y}, Direction: Vertical},
			{Start: geom.Point{X: midX, Y: tgt.Y}, End: tgt, Direction: Horizontal},
		}
	} else {
		midY := (src.Y + tgt.Y) / 2
		segments = []Segment{
			{Start: src, End: geom.Point{X: src.X, Y: midY}, Direction: Vertical},
			{Start: geom.Point{X: src.X, Y: midY}, End: geom.Point{X: tgt.X, Y: midY}, Direction: Horizontal},
			{Start: geom.Point{X: tgt.X, Y: midY}, End: tgt, Direction: Vertical},
		}
	}
	return RoutedEdge{
		Edge:        edge,
		Segments:    segments,
		SourceSide:  sourceSide,
		TargetSide:  targetSide,
		TotalLength: pathLength(segments),
		Bends:       2,
		Fallback:    true,
	}
}

// toSegments converts a point list to classified segments.
func toSegments(points []geom.Point) []Segment {
	segments := make([]Segment, 0, len(points)-1)
	for i := 0; i < len(points)-1; i++ {
		start, end := points[i], points[i+1]
		dir := Vertical
		if math.Abs(end.X-start.X) > math.Abs(end.Y-start.Y) {
			dir = Horizontal
		}
		segments = append(segments, Segment{Start: start, End: end, Direction: dir})
	}
	return segments
}

func pathLength(segments []Segment) float64 {
	total := 0.0
	for _, seg := range segments {
		total += seg.Start.Distance(seg.End)
	}
	return total
}

// markOccupied records the edge on every cell its segments cross.
func markOccupied(grid *Grid, routed *RoutedEdge, edgeKey string) {
	for _, seg := range routed.Segments {
		x0, y0 := grid.WorldToGrid(seg.Start)
		x1, y1 := grid.WorldToGrid(seg.End)
		if seg.Direction == Horizontal {
			for x := min(x0, x1); x <= max(x0, x1); x++ {
				grid.Occupy(x, y0, edgeKey)
			}
		} else {
			for y := min(y0, y1); y <= max(y0, y1); y++ {
				grid.Occupy(x0, y, edgeKey)
			}
		}
	}
}
