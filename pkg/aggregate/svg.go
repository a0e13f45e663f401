package aggregate

import (
	"fmt"
	"math"
	"strings"
)

const badgeShadowDef = `<defs>
  <filter id="badge-shadow" x="-50%" y="-50%" width="200%" height="200%">
    <feDropShadow dx="0" dy="1" stdDeviation="2" flood-opacity="0.3"/>
  </filter>
</defs>`

// BuildSVG renders the aggregated edges as an SVG fragment: a gently curved
// path per edge, arrowheads both ways for bidirectional edges, and a count
// badge at the midpoint of every merged edge.
func (a *Aggregator) BuildSVG(result *Result) string {
	var b strings.Builder
	b.WriteString(badgeShadowDef)

	for i := range result.Edges {
		edge := &result.Edges[i]

		width := a.cfg.StrokeWidth
		if a.cfg.ScaleByCount {
			width = min(width+0.5*float64(edge.Count), a.cfg.MaxStrokeWidth)
		}

		fmt.Fprintf(&b, "\n<path d=%q stroke=%q stroke-width=\"%g\" fill=\"none\" stroke-linecap=\"round\""+
			" class=\"aggregated-edge\" data-source=%q data-target=%q data-count=\"%d\"/>",
			edgePath(edge), a.cfg.StrokeColor, width,
			edge.SourceGroup, edge.TargetGroup, edge.Count)

		if edge.Bidirectional {
			b.WriteString(a.arrowheads(edge, width))
		}

		if a.cfg.ShowCountBadge && edge.Count > 1 {
			fmt.Fprintf(&b, "\n<g class=\"count-badge\" filter=\"url(#badge-shadow)\">"+
				"<circle cx=\"%g\" cy=\"%g\" r=\"%g\" fill=%q/>"+
				"<text x=\"%g\" y=\"%g\" text-anchor=\"middle\" dominant-baseline=\"central\""+
				" fill=%q font-size=\"%d\" font-weight=\"600\">%d</text></g>",
				edge.BadgePos.X, edge.BadgePos.Y, a.cfg.BadgeRadius, a.cfg.BadgeFill,
				edge.BadgePos.X, edge.BadgePos.Y, a.cfg.BadgeTextColor, a.cfg.BadgeFontSize,
				edge.Count)
		}
	}

	return b.String()
}

// edgePath builds a shallow cubic curve between the group positions.
func edgePath(edge *AggregatedEdge) string {
	dx := edge.TargetPos.X - edge.SourcePos.X
	dy := edge.TargetPos.Y - edge.SourcePos.Y

	return fmt.Sprintf("M %g,%g C %g,%g %g,%g %g,%g",
		edge.SourcePos.X, edge.SourcePos.Y,
		edge.SourcePos.X+dx*0.25, edge.SourcePos.Y+dy*0.1,
		edge.TargetPos.X-dx*0.25, edge.TargetPos.Y-dy*0.1,
		edge.TargetPos.X, edge.TargetPos.Y)
}

// arrowheads draws a triangle at each end, pointing outward along the edge.
func (a *Aggregator) arrowheads(edge *AggregatedEdge, width float64) string {
	dx := edge.TargetPos.X - edge.SourcePos.X
	dy := edge.TargetPos.Y - edge.SourcePos.Y
	angle := math.Atan2(dy, dx)
	size := 6 + width

	forward := fmt.Sprintf("\n<polygon points=\"%g,%g %g,%g %g,%g\" fill=%q/>",
		edge.TargetPos.X, edge.TargetPos.Y,
		edge.TargetPos.X-size*math.Cos(angle-0.4), edge.TargetPos.Y-size*math.Sin(angle-0.4),
		edge.TargetPos.X-size*math.Cos(angle+0.4), edge.TargetPos.Y-size*math.Sin(angle+0.4),
		a.cfg.StrokeColor)

	backward := fmt.Sprintf("\n<polygon points=\"%g,%g %g,%g %g,%g\" fill=%q/>",
		edge.SourcePos.X, edge.SourcePos.Y,
		edge.SourcePos.X+size*math.Cos(angle-0.4), edge.SourcePos.Y+size*math.Sin(angle-0.4),
		edge.SourcePos.X+size*math.Cos(angle+0.4), edge.SourcePos.Y+size*math.Sin(angle+0.4),
		a.cfg.StrokeColor)

	return forward + backward
}
