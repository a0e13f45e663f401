package bundle

import (
	"fmt"
	"strings"
)

// SVGPath builds the SVG path "d" attribute for a bundled edge as a chain of
// quadratic beziers through the midpoints of consecutive control points, so
// the rendered curve stays smooth at every control point.
func SVGPath(b *BundledEdge) string {
	pts := b.ControlPoints
	if len(pts) < 2 {
		return ""
	}
	if len(pts) == 2 {
		return fmt.Sprintf("M %g,%g L %g,%g", pts[0].X, pts[0].Y, pts[1].X, pts[1].Y)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "M %g,%g", pts[0].X, pts[0].Y)
	for i := 1; i < len(pts)-1; i++ {
		mid := pts[i].Midpoint(pts[i+1])
		fmt.Fprintf(&sb, " Q %g,%g %g,%g", pts[i].X, pts[i].Y, mid.X, mid.Y)
	}
	last := pts[len(pts)-1]
	fmt.Fprintf(&sb, " L %g,%g", last.X, last.Y)
	return sb.String()
}
