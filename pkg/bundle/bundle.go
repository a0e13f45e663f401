// Package bundle implements force-directed edge bundling (FDEB) and its
// anchor-routing variants.
//
// Edges are subdivided into movable control points; the force-directed mode
// then iteratively pulls geometrically compatible edges together so similar
// paths merge into visual bundles. Endpoints never move. Alternative modes
// route through a shared anchor instead: hierarchical through a common
// cluster center, radial through the diagram centroid, and stub by averaging
// edges that leave their source in the same quantized direction.
//
// Force iterations are double-buffered: every edge's next position is
// computed from the full previous iteration, so results are independent of
// edge order and the inner loop is safe to parallelize.
package bundle

import (
	"context"
	"math"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/errors"
	"github.com/viralify/edgecraft/pkg/geom"
	"github.com/viralify/edgecraft/pkg/observability"
)

// Mode selects the bundling algorithm.
type Mode string

// Supported bundling modes.
const (
	ModeForceDirected Mode = "force_directed"
	ModeHierarchical  Mode = "hierarchical"
	ModeRadial        Mode = "radial"
	ModeStub          Mode = "stub"
)

// BundledEdge is an edge with a fixed-length control-point polyline.
// The subdivision count is fixed at creation; the first and last points are
// the node centers and never move.
type BundledEdge struct {
	Edge          diagram.Edge `json:"edge"`
	SourcePos     geom.Point   `json:"source_pos"`
	TargetPos     geom.Point   `json:"target_pos"`
	ControlPoints []geom.Point `json:"control_points"`
}

// Length returns the straight-line length between the edge's endpoints.
func (b *BundledEdge) Length() float64 {
	return b.SourcePos.Distance(b.TargetPos)
}

// Midpoint returns the midpoint between the edge's endpoints.
func (b *BundledEdge) Midpoint() geom.Point {
	return b.SourcePos.Midpoint(b.TargetPos)
}

// EdgeBundle is a set of mutually compatible bundled edges with a derived
// core path, the per-index average of the members' control points.
type EdgeBundle struct {
	ID       string        `json:"id"`
	Edges    []BundledEdge `json:"edges"`
	CorePath []geom.Point  `json:"core_path"`
	Width    float64       `json:"width"`
}

// Result holds the bundled edges plus the count of edges skipped because an
// endpoint node was missing.
type Result struct {
	Edges   []BundledEdge `json:"edges"`
	Skipped int           `json:"skipped"`
}

// Config holds bundler options.
type Config struct {
	// Mode selects the bundling algorithm. Default: force_directed.
	Mode Mode `json:"mode" toml:"mode"`

	// Strength blends bundling attraction against shape preservation,
	// in [0,1]. Default: 0.85.
	Strength float64 `json:"strength" toml:"strength"`

	// Subdivisions is the number of interior control points per edge.
	// Default: 12.
	Subdivisions int `json:"subdivisions" toml:"subdivisions"`

	// CompatibilityThreshold is the minimum pairwise compatibility for two
	// edges to attract each other, in [0,1]. Default: 0.6.
	CompatibilityThreshold float64 `json:"compatibility_threshold" toml:"compatibility_threshold"`

	// Iterations is the force simulation length. Default: 60.
	Iterations int `json:"iterations" toml:"iterations"`

	// StepSize is the initial force step, decaying linearly to zero over
	// the iterations. Default: 0.04.
	StepSize float64 `json:"step_size" toml:"step_size"`

	// SmoothCurves applies one pass of Chaikin corner cutting after
	// bundling. DefaultConfig enables it.
	SmoothCurves bool `json:"smooth_curves" toml:"smooth_curves"`
}

// DefaultConfig returns a config with all fields at their defaults.
func DefaultConfig() Config {
	return Config{
		Mode:                   ModeForceDirected,
		Strength:               0.85,
		Subdivisions:           12,
		CompatibilityThreshold: 0.6,
		Iterations:             60,
		StepSize:               0.04,
		SmoothCurves:           true,
	}
}

// ValidateAndSetDefaults fills zero fields with defaults and validates the rest.
func (c *Config) ValidateAndSetDefaults() error {
	if c.Mode == "" {
		c.Mode = ModeForceDirected
	}
	if c.Strength == 0 {
		c.Strength = 0.85
	}
	if c.Subdivisions == 0 {
		c.Subdivisions = 12
	}
	if c.CompatibilityThreshold == 0 {
		c.CompatibilityThreshold = 0.6
	}
	if c.Iterations == 0 {
		c.Iterations = 60
	}
	if c.StepSize == 0 {
		c.StepSize = 0.04
	}

	if err := errors.ValidateEnum(errors.ErrCodeInvalidMode, "bundling mode", string(c.Mode),
		string(ModeForceDirected), string(ModeHierarchical), string(ModeRadial), string(ModeStub)); err != nil {
		return err
	}
	if err := errors.ValidateRange(errors.ErrCodeInvalidConfig, "strength", c.Strength, 0, 1); err != nil {
		return err
	}
	if err := errors.ValidateRange(errors.ErrCodeInvalidConfig, "compatibility_threshold", c.CompatibilityThreshold, 0, 1); err != nil {
		return err
	}
	if c.Subdivisions < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "subdivisions must be at least 1, got %d", c.Subdivisions)
	}
	if c.Iterations < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "iterations must be at least 1, got %d", c.Iterations)
	}
	if err := errors.ValidatePositive(errors.ErrCodeInvalidConfig, "step_size", c.StepSize); err != nil {
		return err
	}
	return nil
}

// strategy bends the subdivided edges toward their bundled shape.
type strategy interface {
	apply(edges []BundledEdge, d *diagram.Diagram)
}

// Bundler bundles edges according to its configured mode.
type Bundler struct {
	cfg   Config
	strat strategy
}

// New creates a bundler. Returns an error for invalid config.
func New(cfg Config) (*Bundler, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	var strat strategy
	switch cfg.Mode {
	case ModeForceDirected:
		strat = &forceStrategy{
			strength:   cfg.Strength,
			threshold:  cfg.CompatibilityThreshold,
			iterations: cfg.Iterations,
			stepSize:   cfg.StepSize,
		}
	case ModeHierarchical:
		strat = &hierarchicalStrategy{strength: cfg.Strength}
	case ModeRadial:
		strat = &radialStrategy{strength: cfg.Strength}
	case ModeStub:
		strat = &stubStrategy{strength: cfg.Strength}
	}

	return &Bundler{cfg: cfg, strat: strat}, nil
}

// Bundle subdivides and bundles all edges in the diagram. With fewer than two
// routable edges the subdivided polylines are returned unbent.
func (b *Bundler) Bundle(ctx context.Context, d *diagram.Diagram) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCanceled, err, "bundling canceled")
	}

	logger := log.FromContext(ctx)
	result := &Result{Edges: make([]BundledEdge, 0, len(d.Edges))}

	for _, edge := range d.Edges {
		src, okSrc := d.Node(edge.Source)
		tgt, okTgt := d.Node(edge.Target)
		if !okSrc || !okTgt {
			result.Skipped++
			logger.Warn("skipping edge with missing endpoint", "edge", edge.Key())
			observability.Pipeline().OnEdgeSkipped(ctx, "bundle", edge.Key(), "missing endpoint")
			continue
		}

		result.Edges = append(result.Edges, BundledEdge{
			Edge:          edge,
			SourcePos:     src.Center(),
			TargetPos:     tgt.Center(),
			ControlPoints: subdivide(src.Center(), tgt.Center(), b.cfg.Subdivisions),
		})
	}

	if len(result.Edges) >= 2 {
		b.strat.apply(result.Edges, d)
	}

	if b.cfg.SmoothCurves {
		for i := range result.Edges {
			result.Edges[i].ControlPoints = chaikin(result.Edges[i].ControlPoints)
		}
	}

	return result, nil
}

// Bundles greedily groups edges whose pairwise compatibility meets the
// threshold. Each bundle's core path is the per-index average of its members'
// control points, and its width grows logarithmically with member count.
func (b *Bundler) Bundles(edges []BundledEdge) []EdgeBundle {
	if len(edges) == 0 {
		return nil
	}

	compat := compatibilityMatrix(edges)
	visited := make([]bool, len(edges))
	var bundles []EdgeBundle

	for i := range edges {
		if visited[i] {
			continue
		}
		members := []BundledEdge{edges[i]}
		visited[i] = true

		for j := range edges {
			if visited[j] {
				continue
			}
			if compat.at(i, j) >= b.cfg.CompatibilityThreshold {
				members = append(members, edges[j])
				visited[j] = true
			}
		}

		bundles = append(bundles, EdgeBundle{
			ID:       uuid.NewString(),
			Edges:    members,
			CorePath: corePath(members),
			Width:    1 + math.Log(float64(len(members)+1)),
		})
	}

	return bundles
}

// subdivide creates subdivisions+2 evenly spaced points from start to end.
func subdivide(start, end geom.Point, subdivisions int) []geom.Point {
	points := make([]geom.Point, subdivisions+2)
	for i := range points {
		t := float64(i) / float64(subdivisions+1)
		points[i] = start.Lerp(end, t)
	}
	return points
}

// chaikin applies one pass of Chaikin corner cutting, replacing each segment
// with points at its 1/4 and 3/4 marks while preserving the true endpoints.
func chaikin(points []geom.Point) []geom.Point {
	if len(points) < 3 {
		return points
	}

	smoothed := make([]geom.Point, 0, 2*len(points))
	smoothed = append(smoothed, points[0])
	for i := 0; i < len(points)-1; i++ {
		p0, p1 := points[i], points[i+1]
		smoothed = append(smoothed,
			p0.Lerp(p1, 0.25),
			p0.Lerp(p1, 0.75),
		)
	}
	return append(smoothed, points[len(points)-1])
}

// corePath averages member control points per index. Members are created
// with equal subdivision counts; shorter lists (never produced by Bundle)
// simply stop contributing.
func corePath(members []BundledEdge) []geom.Point {
	if len(members) == 0 {
		return nil
	}
	n := len(members[0].ControlPoints)
	core := make([]geom.Point, n)
	for p := 0; p < n; p++ {
		var sum geom.Point
		count := 0
		for i := range members {
			if p < len(members[i].ControlPoints) {
				sum = sum.Add(members[i].ControlPoints[p])
				count++
			}
		}
		if count > 0 {
			core[p] = sum.Scale(1 / float64(count))
		}
	}
	return core
}
