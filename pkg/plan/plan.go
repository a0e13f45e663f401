// Package plan computes edge anchors and path geometry for positioned diagrams.
//
// The planner is the lightweight routing component: it picks a boundary anchor
// on each endpoint node and produces a path shape per edge without consulting
// other edges' geometry or avoiding obstacles. Use [github.com/viralify/edgecraft/pkg/route]
// when true collision avoidance is required.
//
// Each routing mode is a separate strategy selected once at construction:
//
//   - [ModeDirect]: straight line, no intermediate points
//   - [ModeBezier]: cubic curve with control points along the dominant axis
//   - [ModeOrthogonal]: axis-aligned segments with a single mid waypoint
//   - [ModeCurved]: S-curve through the vertical midpoint
//   - [ModeBundled]: parallel edges fanned out perpendicular to their direction
package plan

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/errors"
	"github.com/viralify/edgecraft/pkg/geom"
	"github.com/viralify/edgecraft/pkg/observability"
)

// Mode selects the path-shape algorithm.
type Mode string

// Supported routing modes.
const (
	ModeDirect     Mode = "direct"
	ModeBezier     Mode = "bezier"
	ModeOrthogonal Mode = "orthogonal"
	ModeCurved     Mode = "curved"
	ModeBundled    Mode = "bundled"
)

// Anchor names a connection point on a node's boundary.
type Anchor string

// Named anchors. AnchorAuto picks the side facing the peer node.
const (
	AnchorNorth     Anchor = "n"
	AnchorSouth     Anchor = "s"
	AnchorEast      Anchor = "e"
	AnchorWest      Anchor = "w"
	AnchorNorthEast Anchor = "ne"
	AnchorNorthWest Anchor = "nw"
	AnchorSouthEast Anchor = "se"
	AnchorSouthWest Anchor = "sw"
	AnchorCenter    Anchor = "c"
	AnchorAuto      Anchor = "auto"
)

// RoutedEdge is an edge with computed anchors and path geometry.
//
// ControlPoints describe a curve (one point = quadratic, two = cubic);
// Waypoints describe orthogonal segments. At most one of the two is
// populated; both empty means a straight line.
type RoutedEdge struct {
	Edge          diagram.Edge `json:"edge"`
	SourceAnchor  geom.Point   `json:"source_anchor"`
	TargetAnchor  geom.Point   `json:"target_anchor"`
	ControlPoints []geom.Point `json:"control_points,omitempty"`
	Waypoints     []geom.Point `json:"waypoints,omitempty"`
}

// Result holds the planned edges plus the count of edges skipped because an
// endpoint node was missing.
type Result struct {
	Edges   []RoutedEdge `json:"edges"`
	Skipped int          `json:"skipped"`
}

// Config holds planner options. The zero value is not valid; call
// [Config.ValidateAndSetDefaults] or use [DefaultConfig].
type Config struct {
	// Mode selects the path-shape algorithm. Default: bezier.
	Mode Mode `json:"mode" toml:"mode"`

	// CurveTension scales bezier control-point offsets, in (0,1]. Default: 0.4.
	CurveTension float64 `json:"curve_tension" toml:"curve_tension"`

	// CornerRadius is the rounded-corner radius for orthogonal SVG paths.
	// Default: 8.
	CornerRadius float64 `json:"corner_radius" toml:"corner_radius"`

	// BundleSpacing is the perpendicular gap between fanned parallel edges.
	// Default: 8.
	BundleSpacing float64 `json:"bundle_spacing" toml:"bundle_spacing"`
}

// DefaultConfig returns a config with all fields at their defaults.
func DefaultConfig() Config {
	return Config{
		Mode:          ModeBezier,
		CurveTension:  0.4,
		CornerRadius:  8,
		BundleSpacing: 8,
	}
}

// ValidateAndSetDefaults fills zero fields with defaults and validates the rest.
func (c *Config) ValidateAndSetDefaults() error {
	if c.Mode == "" {
		c.Mode = ModeBezier
	}
	if c.CurveTension == 0 {
		c.CurveTension = 0.4
	}
	if c.CornerRadius == 0 {
		c.CornerRadius = 8
	}
	if c.BundleSpacing == 0 {
		c.BundleSpacing = 8
	}

	if err := errors.ValidateEnum(errors.ErrCodeInvalidMode, "routing mode", string(c.Mode),
		string(ModeDirect), string(ModeBezier), string(ModeOrthogonal), string(ModeCurved), string(ModeBundled)); err != nil {
		return err
	}
	if err := errors.ValidateRange(errors.ErrCodeInvalidConfig, "curve_tension", c.CurveTension, 0, 1); err != nil {
		return err
	}
	if err := errors.ValidatePositive(errors.ErrCodeInvalidConfig, "bundle_spacing", c.BundleSpacing); err != nil {
		return err
	}
	return nil
}

// strategy computes path geometry for one edge. Implementations fill either
// ControlPoints or Waypoints on the result.
type strategy interface {
	route(edge diagram.Edge, src, tgt *diagram.Node, start, end geom.Point, groups map[[2]string][]string) (controlPoints, waypoints []geom.Point)
}

// Planner routes edges according to its configured mode.
type Planner struct {
	cfg   Config
	strat strategy
}

// New creates a planner. Returns an error for invalid config.
func New(cfg Config) (*Planner, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	var strat strategy
	switch cfg.Mode {
	case ModeDirect:
		strat = directStrategy{}
	case ModeBezier:
		strat = bezierStrategy{tension: cfg.CurveTension}
	case ModeOrthogonal:
		strat = orthogonalStrategy{}
	case ModeCurved:
		strat = curvedStrategy{}
	case ModeBundled:
		strat = bundledStrategy{spacing: cfg.BundleSpacing, tension: cfg.CurveTension}
	}

	return &Planner{cfg: cfg, strat: strat}, nil
}

// Plan routes every edge in the diagram. Edges referencing missing nodes are
// skipped and counted, never fatal.
func (p *Planner) Plan(ctx context.Context, d *diagram.Diagram) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCanceled, err, "planning canceled")
	}

	logger := log.FromContext(ctx)
	result := &Result{Edges: make([]RoutedEdge, 0, len(d.Edges))}
	groups := groupParallel(d.Edges)

	for _, edge := range d.Edges {
		src, okSrc := d.Node(edge.Source)
		tgt, okTgt := d.Node(edge.Target)
		if !okSrc || !okTgt {
			result.Skipped++
			logger.Warn("skipping edge with missing endpoint", "edge", edge.Key())
			observability.Pipeline().OnEdgeSkipped(ctx, "plan", edge.Key(), "missing endpoint")
			continue
		}

		start := AnchorFor(src, tgt, AnchorAuto)
		end := AnchorFor(tgt, src, AnchorAuto)
		cps, wps := p.strat.route(edge, src, tgt, start, end, groups)

		result.Edges = append(result.Edges, RoutedEdge{
			Edge:          edge,
			SourceAnchor:  start,
			TargetAnchor:  end,
			ControlPoints: cps,
			Waypoints:     wps,
		})
	}

	return result, nil
}

// AnchorFor resolves an anchor position on a node's boundary. For AnchorAuto
// the side facing the peer node is chosen by comparing absolute horizontal
// against vertical center offset.
func AnchorFor(node, peer *diagram.Node, anchor Anchor) geom.Point {
	x, y := node.Position.X, node.Position.Y
	w, h := node.Size.Width, node.Size.Height
	cx, cy := x+w/2, y+h/2

	switch anchor {
	case AnchorNorth:
		return geom.Point{X: cx, Y: y}
	case AnchorSouth:
		return geom.Point{X: cx, Y: y + h}
	case AnchorEast:
		return geom.Point{X: x + w, Y: cy}
	case AnchorWest:
		return geom.Point{X: x, Y: cy}
	case AnchorNorthEast:
		return geom.Point{X: x + w, Y: y}
	case AnchorNorthWest:
		return geom.Point{X: x, Y: y}
	case AnchorSouthEast:
		return geom.Point{X: x + w, Y: y + h}
	case AnchorSouthWest:
		return geom.Point{X: x, Y: y + h}
	case AnchorCenter:
		return geom.Point{X: cx, Y: cy}
	}

	// Auto: face the peer's center along the dominant axis.
	to := peer.Center()
	dx := to.X - cx
	dy := to.Y - cy
	if absf(dx) > absf(dy) {
		if dx > 0 {
			return geom.Point{X: x + w, Y: cy}
		}
		return geom.Point{X: x, Y: cy}
	}
	if dy > 0 {
		return geom.Point{X: cx, Y: y + h}
	}
	return geom.Point{X: cx, Y: y}
}

// groupParallel indexes edge IDs by (source, target) pair so the bundled
// strategy can fan out parallel edges.
func groupParallel(edges []diagram.Edge) map[[2]string][]string {
	groups := make(map[[2]string][]string)
	for _, e := range edges {
		key := [2]string{e.Source, e.Target}
		groups[key] = append(groups[key], e.Key())
	}
	return groups
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
