package route

import (
	"fmt"
	"math"
	"strings"

	"github.com/viralify/edgecraft/pkg/geom"
)

// SVGPath builds the SVG path "d" attribute for a routed edge. With rounded
// set, each bend becomes a short straight run plus a quadratic curve through
// the bend point, radius clamped to half the shorter adjacent segment.
func SVGPath(r *RoutedEdge, rounded bool, radius float64) string {
	waypoints := r.Waypoints()
	if len(waypoints) < 2 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "M %g,%g", waypoints[0].X, waypoints[0].Y)

	if !rounded || len(waypoints) == 2 {
		for _, wp := range waypoints[1:] {
			fmt.Fprintf(&b, " L %g,%g", wp.X, wp.Y)
		}
		return b.String()
	}

	for i := 1; i < len(waypoints)-1; i++ {
		prev, curr, next := waypoints[i-1], waypoints[i], waypoints[i+1]

		d1 := curr.Sub(prev)
		d2 := next.Sub(curr)
		len1 := d1.Length()
		len2 := d2.Length()
		if len1 < geom.Epsilon || len2 < geom.Epsilon {
			fmt.Fprintf(&b, " L %g,%g", curr.X, curr.Y)
			continue
		}

		rad := math.Min(radius, math.Min(len1/2, len2/2))
		arcStart := curr.Sub(d1.Scale(rad / len1))
		arcEnd := curr.Add(d2.Scale(rad / len2))

		fmt.Fprintf(&b, " L %g,%g", arcStart.X, arcStart.Y)
		fmt.Fprintf(&b, " Q %g,%g %g,%g", curr.X, curr.Y, arcEnd.X, arcEnd.Y)
	}

	last := waypoints[len(waypoints)-1]
	fmt.Fprintf(&b, " L %g,%g", last.X, last.Y)
	return b.String()
}
