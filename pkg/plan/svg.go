package plan

import (
	"fmt"
	"math"
	"strings"

	"github.com/viralify/edgecraft/pkg/geom"
)

// SVGPath builds the SVG path "d" attribute for a routed edge. Orthogonal
// routes get rounded corners when rounded is true; curves become quadratic
// (one control point) or cubic (two) beziers; everything else is a line.
func SVGPath(r RoutedEdge, rounded bool, cornerRadius float64) string {
	start, end := r.SourceAnchor, r.TargetAnchor

	switch {
	case len(r.Waypoints) > 0:
		if rounded {
			return roundedOrthogonalPath(start, r.Waypoints, end, cornerRadius)
		}
		var b strings.Builder
		fmt.Fprintf(&b, "M %g,%g", start.X, start.Y)
		for _, wp := range r.Waypoints {
			fmt.Fprintf(&b, " L %g,%g", wp.X, wp.Y)
		}
		fmt.Fprintf(&b, " L %g,%g", end.X, end.Y)
		return b.String()

	case len(r.ControlPoints) == 2:
		return fmt.Sprintf("M %g,%g C %g,%g %g,%g %g,%g",
			start.X, start.Y,
			r.ControlPoints[0].X, r.ControlPoints[0].Y,
			r.ControlPoints[1].X, r.ControlPoints[1].Y,
			end.X, end.Y)

	case len(r.ControlPoints) == 1:
		return fmt.Sprintf("M %g,%g Q %g,%g %g,%g",
			start.X, start.Y,
			r.ControlPoints[0].X, r.ControlPoints[0].Y,
			end.X, end.Y)

	default:
		return fmt.Sprintf("M %g,%g L %g,%g", start.X, start.Y, end.X, end.Y)
	}
}

// roundedOrthogonalPath replaces each bend with a short straight run into the
// corner and a quadratic curve through the bend point. The radius is clamped
// to half of the shorter adjacent segment.
func roundedOrthogonalPath(start geom.Point, waypoints []geom.Point, end geom.Point, radius float64) string {
	if len(waypoints) == 0 {
		return fmt.Sprintf("M %g,%g L %g,%g", start.X, start.Y, end.X, end.Y)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "M %g,%g", start.X, start.Y)

	points := make([]geom.Point, 0, len(waypoints)+2)
	points = append(points, start)
	points = append(points, waypoints...)
	points = append(points, end)

	for i := 1; i < len(points)-1; i++ {
		prev, curr, next := points[i-1], points[i], points[i+1]

		d1 := curr.Sub(prev)
		d2 := next.Sub(curr)
		len1 := d1.Length()
		len2 := d2.Length()

		if len1 < geom.Epsilon || len2 < geom.Epsilon {
			fmt.Fprintf(&b, " L %g,%g", curr.X, curr.Y)
			continue
		}

		r := math.Min(radius, math.Min(len1/2, len2/2))
		arcStart := curr.Sub(d1.Scale(r / len1))
		arcEnd := curr.Add(d2.Scale(r / len2))

		fmt.Fprintf(&b, " L %g,%g", arcStart.X, arcStart.Y)
		fmt.Fprintf(&b, " Q %g,%g %g,%g", curr.X, curr.Y, arcEnd.X, arcEnd.Y)
	}

	fmt.Fprintf(&b, " L %g,%g", end.X, end.Y)
	return b.String()
}
