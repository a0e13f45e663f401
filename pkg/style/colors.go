package style

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Heatmap band anchors, cold to hot.
var heatmapStops = [...]string{"#3182CE", "#38B2AC", "#38A169", "#D69E2E", "#E53E3E"}

// color resolves an edge's stroke color for the configured scheme.
func (s *Styler) color(importance float64, category string) string {
	switch s.cfg.Scheme {
	case SchemeCategorical:
		if c, ok := s.cfg.CategoryColors[category]; ok {
			return c
		}
		return s.cfg.BaseColor

	case SchemeSemantic:
		if c, ok := s.cfg.SemanticColors[category]; ok {
			return c
		}
		return s.cfg.BaseColor

	case SchemeGradient:
		return interpolate(s.cfg.LowImportanceColor, s.cfg.HighImportanceColor, importance)

	case SchemeHeatmap:
		return heatmapColor(importance)
	}

	return s.cfg.BaseColor
}

// interpolate blends two hex colors in RGB space. Unparseable colors fall
// back to the first operand.
func interpolate(from, to string, t float64) string {
	c1, err1 := colorful.Hex(from)
	c2, err2 := colorful.Hex(to)
	if err1 != nil || err2 != nil {
		return from
	}
	return c1.BlendRgb(c2, clamp01(t)).Hex()
}

// heatmapColor maps [0,1] onto four blended bands: blue, cyan, green,
// yellow, red.
func heatmapColor(value float64) string {
	value = clamp01(value)
	band := int(value / 0.25)
	if band > 3 {
		band = 3
	}
	t := (value - float64(band)*0.25) / 0.25
	return interpolate(heatmapStops[band], heatmapStops[band+1], t)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
