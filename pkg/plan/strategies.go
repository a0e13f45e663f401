package plan

import (
	"math"

	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/geom"
)

// directStrategy draws a straight line between anchors.
type directStrategy struct{}

func (directStrategy) route(_ diagram.Edge, _, _ *diagram.Node, _, _ geom.Point, _ map[[2]string][]string) ([]geom.Point, []geom.Point) {
	return nil, nil
}

// bezierStrategy produces a cubic curve whose control points extend along the
// dominant axis by tension * distance, capped at 100 units.
type bezierStrategy struct {
	tension float64
}

func (s bezierStrategy) route(_ diagram.Edge, _, _ *diagram.Node, start, end geom.Point, _ map[[2]string][]string) ([]geom.Point, []geom.Point) {
	return bezierControls(start, end, s.tension), nil
}

func bezierControls(start, end geom.Point, tension float64) []geom.Point {
	dx := end.X - start.X
	dy := end.Y - start.Y
	distance := math.Hypot(dx, dy)
	offset := math.Min(distance*tension, 100)

	if absf(dx) > absf(dy) {
		sign := 1.0
		if dx < 0 {
			sign = -1
		}
		return []geom.Point{
			{X: start.X + offset*sign, Y: start.Y},
			{X: end.X - offset*sign, Y: end.Y},
		}
	}
	sign := 1.0
	if dy < 0 {
		sign = -1
	}
	return []geom.Point{
		{X: start.X, Y: start.Y + offset*sign},
		{X: end.X, Y: end.Y - offset*sign},
	}
}

// orthogonalStrategy produces axis-aligned segments. Near-aligned edges
// (offset under 10 units on one axis) route straight. Otherwise two waypoints
// bend through the midpoint, horizontal-first when the nodes' vertical
// extents overlap.
type orthogonalStrategy struct{}

func (orthogonalStrategy) route(_ diagram.Edge, src, tgt *diagram.Node, start, end geom.Point, _ map[[2]string][]string) ([]geom.Point, []geom.Point) {
	dx := end.X - start.X
	dy := end.Y - start.Y

	if absf(dx) < 10 || absf(dy) < 10 {
		return nil, nil
	}

	if preferHorizontalFirst(src, tgt) {
		midX := (start.X + end.X) / 2
		return nil, []geom.Point{
			{X: midX, Y: start.Y},
			{X: midX, Y: end.Y},
		}
	}
	midY := (start.Y + end.Y) / 2
	return nil, []geom.Point{
		{X: start.X, Y: midY},
		{X: end.X, Y: midY},
	}
}

func preferHorizontalFirst(src, tgt *diagram.Node) bool {
	if src.Bounds().VerticalOverlap(tgt.Bounds()) {
		return true
	}
	sc, tc := src.Center(), tgt.Center()
	return absf(tc.X-sc.X) > absf(tc.Y-sc.Y)
}

// curvedStrategy produces an S-curve through the vertical midpoint.
type curvedStrategy struct{}

func (curvedStrategy) route(_ diagram.Edge, _, _ *diagram.Node, start, end geom.Point, _ map[[2]string][]string) ([]geom.Point, []geom.Point) {
	midY := (start.Y + end.Y) / 2
	return []geom.Point{
		{X: start.X, Y: midY},
		{X: end.X, Y: midY},
	}, nil
}

// bundledStrategy fans out parallel edges (same source and target) by
// offsetting each edge's midpoint perpendicular to the edge direction.
// A lone edge falls back to a bezier curve.
type bundledStrategy struct {
	spacing float64
	tension float64
}

func (s bundledStrategy) route(edge diagram.Edge, _, _ *diagram.Node, start, end geom.Point, groups map[[2]string][]string) ([]geom.Point, []geom.Point) {
	group := groups[[2]string{edge.Source, edge.Target}]
	if len(group) <= 1 {
		return bezierControls(start, end, s.tension), nil
	}

	index := 0
	for i, key := range group {
		if key == edge.Key() {
			index = i
			break
		}
	}

	totalWidth := float64(len(group)-1) * s.spacing
	offset := float64(index)*s.spacing - totalWidth/2

	dx := end.X - start.X
	dy := end.Y - start.Y
	length := math.Hypot(dx, dy)
	if length < geom.Epsilon {
		return nil, nil
	}

	// Perpendicular unit vector
	perpX := -dy / length
	perpY := dx / length

	return []geom.Point{{
		X: (start.X+end.X)/2 + perpX*offset,
		Y: (start.Y+end.Y)/2 + perpY*offset,
	}}, nil
}
