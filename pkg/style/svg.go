package style

import (
	"fmt"
	"strings"
)

const glowFilterDef = `<defs>
  <filter id="edge-glow" x="-50%" y="-50%" width="200%" height="200%">
    <feGaussianBlur in="SourceAlpha" stdDeviation="3" result="blur"/>
    <feFlood flood-color="currentColor" flood-opacity="0.5" result="flood"/>
    <feComposite in="flood" in2="blur" operator="in" result="glow"/>
    <feMerge>
      <feMergeNode in="glow"/>
      <feMergeNode in="SourceGraphic"/>
    </feMerge>
  </filter>
</defs>`

// BuildSVGStyles renders the glow filter definition plus one CSS rule per
// styled edge, indexed by render order.
func BuildSVGStyles(result *Result) string {
	var b strings.Builder
	b.WriteString(glowFilterDef)
	b.WriteString("\n<style>")

	for i := range result.Edges {
		st := &result.Edges[i].Style
		fmt.Fprintf(&b, "\n.edge-%d { stroke: %s; stroke-width: %gpx; stroke-opacity: %g; fill: none;",
			i, st.StrokeColor, st.StrokeWidth, st.StrokeOpacity)
		if st.StrokeDashArray != "" {
			fmt.Fprintf(&b, " stroke-dasharray: %s;", st.StrokeDashArray)
		}
		if st.Glow {
			b.WriteString(" filter: url(#edge-glow);")
		}
		b.WriteString(" }")
	}

	b.WriteString("\n</style>")
	return b.String()
}
