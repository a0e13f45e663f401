// Package style computes importance-based visual styling for edges.
//
// Each edge gets an importance score in [0,1] from the configured metric,
// which then drives stroke width, opacity, color, glow, and stacking order.
// Edges at or above the critical percentile are promoted to the highlight
// color with boosted width so the dominant paths stand out in dense diagrams.
package style

import (
	"context"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/errors"
)

// Metric selects how edge importance is scored.
type Metric string

// Supported importance metrics.
const (
	MetricWeight      Metric = "weight"
	MetricFrequency   Metric = "frequency"
	MetricCentrality  Metric = "centrality"
	MetricCriticality Metric = "criticality"
	MetricCustom      Metric = "custom"
)

// Scheme selects how importance maps to color.
type Scheme string

// Supported color schemes.
const (
	SchemeMonochrome  Scheme = "monochrome"
	SchemeGradient    Scheme = "gradient"
	SchemeCategorical Scheme = "categorical"
	SchemeHeatmap     Scheme = "heatmap"
	SchemeSemantic    Scheme = "semantic"
)

// Edge categories inferred from labels.
const (
	CategoryDataFlow    = "data_flow"
	CategoryControlFlow = "control_flow"
	CategoryDependency  = "dependency"
	CategoryEvent       = "event"
	CategoryReference   = "reference"
	CategoryDefault     = "default"
)

// Scorer computes a raw importance score for an edge.
type Scorer func(edge diagram.Edge, d *diagram.Diagram) float64

// EdgeStyle is the computed visual style for one edge.
type EdgeStyle struct {
	StrokeColor     string  `json:"stroke_color"`
	StrokeWidth     float64 `json:"stroke_width"`
	StrokeOpacity   float64 `json:"stroke_opacity"`
	StrokeDashArray string  `json:"stroke_dasharray,omitempty"`
	Glow            bool    `json:"glow"`
	GlowColor       string  `json:"glow_color,omitempty"`
	GlowIntensity   float64 `json:"glow_intensity"`
	ArrowSize       float64 `json:"arrow_size"`
	ZIndex          int     `json:"z_index"`
}

// StyledEdge pairs an edge with its computed style and score.
type StyledEdge struct {
	Edge       diagram.Edge `json:"edge"`
	Style      EdgeStyle    `json:"style"`
	Importance float64      `json:"importance"`
	Category   string       `json:"category"`
	IsCritical bool         `json:"is_critical"`
}

// Result holds styled edges sorted by z-index plus any scoring warnings.
type Result struct {
	Edges    []StyledEdge `json:"edges"`
	Warnings []string     `json:"warnings,omitempty"`
}

// Config holds styling options.
type Config struct {
	Metric Metric `json:"metric" toml:"metric"`

	// CustomScorer is required when Metric is custom.
	CustomScorer Scorer `json:"-" toml:"-"`

	Scheme              Scheme `json:"scheme" toml:"scheme"`
	BaseColor           string `json:"base_color" toml:"base_color"`
	HighlightColor      string `json:"highlight_color" toml:"highlight_color"`
	LowImportanceColor  string `json:"low_importance_color" toml:"low_importance_color"`
	HighImportanceColor string `json:"high_importance_color" toml:"high_importance_color"`

	CategoryColors map[string]string `json:"category_colors,omitempty" toml:"category_colors"`
	SemanticColors map[string]string `json:"semantic_colors,omitempty" toml:"semantic_colors"`

	MinStrokeWidth float64 `json:"min_stroke_width" toml:"min_stroke_width"`
	MaxStrokeWidth float64 `json:"max_stroke_width" toml:"max_stroke_width"`
	ScaleWidth     bool    `json:"scale_width" toml:"scale_width"`

	MinOpacity   float64 `json:"min_opacity" toml:"min_opacity"`
	MaxOpacity   float64 `json:"max_opacity" toml:"max_opacity"`
	ScaleOpacity bool    `json:"scale_opacity" toml:"scale_opacity"`

	// EnableGlow adds a glow to edges whose importance reaches
	// GlowThreshold. DefaultConfig enables it.
	EnableGlow    bool    `json:"enable_glow" toml:"enable_glow"`
	GlowThreshold float64 `json:"glow_threshold" toml:"glow_threshold"`

	// DashPatterns maps edge categories to stroke-dasharray values.
	DashPatterns map[string]string `json:"dash_patterns,omitempty" toml:"dash_patterns"`

	// HighlightCriticalPath promotes edges at or above CriticalPercentile
	// of normalized importance. DefaultConfig enables it.
	HighlightCriticalPath   bool    `json:"highlight_critical_path" toml:"highlight_critical_path"`
	CriticalPercentile      float64 `json:"critical_percentile" toml:"critical_percentile"`
	CriticalWidthMultiplier float64 `json:"critical_width_multiplier" toml:"critical_width_multiplier"`
}

// DefaultConfig returns a config with all fields at their defaults.
func DefaultConfig() Config {
	return Config{
		Metric:              MetricWeight,
		Scheme:              SchemeMonochrome,
		BaseColor:           "#718096",
		HighlightColor:      "#3182CE",
		LowImportanceColor:  "#E2E8F0",
		HighImportanceColor: "#2B6CB0",
		CategoryColors: map[string]string{
			CategoryDataFlow:    "#3182CE",
			CategoryControlFlow: "#38A169",
			CategoryDependency:  "#DD6B20",
			CategoryReference:   "#805AD5",
			CategoryEvent:       "#E53E3E",
			CategoryDefault:     "#718096",
		},
		SemanticColors: map[string]string{
			"read":   "#3182CE",
			"write":  "#E53E3E",
			"call":   "#38A169",
			"return": "#805AD5",
			"async":  "#DD6B20",
			"sync":   "#2B6CB0",
		},
		MinStrokeWidth: 0.5,
		MaxStrokeWidth: 6,
		ScaleWidth:     true,
		MinOpacity:     0.15,
		MaxOpacity:     1,
		ScaleOpacity:   true,
		EnableGlow:     true,
		GlowThreshold:  0.8,
		DashPatterns: map[string]string{
			"optional":   "4 4",
			"async":      "8 4",
			"deprecated": "2 2",
			"weak":       "1 3",
		},
		HighlightCriticalPath:   true,
		CriticalPercentile:      0.8,
		CriticalWidthMultiplier: 1.5,
	}
}

// ValidateAndSetDefaults fills zero fields with defaults and validates the rest.
func (c *Config) ValidateAndSetDefaults() error {
	def := DefaultConfig()
	if c.Metric == "" {
		c.Metric = def.Metric
	}
	if c.Scheme == "" {
		c.Scheme = def.Scheme
	}
	if c.BaseColor == "" {
		c.BaseColor = def.BaseColor
	}
	if c.HighlightColor == "" {
		c.HighlightColor = def.HighlightColor
	}
	if c.LowImportanceColor == "" {
		c.LowImportanceColor = def.LowImportanceColor
	}
	if c.HighImportanceColor == "" {
		c.HighImportanceColor = def.HighImportanceColor
	}
	if c.CategoryColors == nil {
		c.CategoryColors = def.CategoryColors
	}
	if c.SemanticColors == nil {
		c.SemanticColors = def.SemanticColors
	}
	if c.MinStrokeWidth == 0 {
		c.MinStrokeWidth = def.MinStrokeWidth
	}
	if c.MaxStrokeWidth == 0 {
		c.MaxStrokeWidth = def.MaxStrokeWidth
	}
	if c.MaxOpacity == 0 {
		c.MaxOpacity = def.MaxOpacity
	}
	if c.MinOpacity == 0 {
		c.MinOpacity = def.MinOpacity
	}
	if c.GlowThreshold == 0 {
		c.GlowThreshold = def.GlowThreshold
	}
	if c.DashPatterns == nil {
		c.DashPatterns = def.DashPatterns
	}
	if c.CriticalPercentile == 0 {
		c.CriticalPercentile = def.CriticalPercentile
	}
	if c.CriticalWidthMultiplier == 0 {
		c.CriticalWidthMultiplier = def.CriticalWidthMultiplier
	}

	if err := errors.ValidateEnum(errors.ErrCodeInvalidMetric, "importance metric", string(c.Metric),
		string(MetricWeight), string(MetricFrequency), string(MetricCentrality),
		string(MetricCriticality), string(MetricCustom)); err != nil {
		return err
	}
	if err := errors.ValidateEnum(errors.ErrCodeInvalidScheme, "color scheme", string(c.Scheme),
		string(SchemeMonochrome), string(SchemeGradient), string(SchemeCategorical),
		string(SchemeHeatmap), string(SchemeSemantic)); err != nil {
		return err
	}
	if c.Metric == MetricCustom && c.CustomScorer == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "custom metric requires a scorer")
	}
	if c.MinStrokeWidth > c.MaxStrokeWidth {
		return errors.New(errors.ErrCodeInvalidConfig,
			"min_stroke_width %g exceeds max_stroke_width %g", c.MinStrokeWidth, c.MaxStrokeWidth)
	}
	if c.MinOpacity > c.MaxOpacity {
		return errors.New(errors.ErrCodeInvalidConfig,
			"min_opacity %g exceeds max_opacity %g", c.MinOpacity, c.MaxOpacity)
	}
	if err := errors.ValidateRange(errors.ErrCodeInvalidConfig, "glow_threshold", c.GlowThreshold, 0, 1); err != nil {
		return err
	}
	if err := errors.ValidateRange(errors.ErrCodeInvalidConfig, "critical_percentile", c.CriticalPercentile, 0, 1); err != nil {
		return err
	}
	return nil
}

// Styler computes edge styles from importance scores.
type Styler struct {
	cfg Config
}

// New creates a styler. Returns an error for invalid config.
func New(cfg Config) (*Styler, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Styler{cfg: cfg}, nil
}

// Style scores every edge, normalizes to [0,1], and computes visual styles.
// The result is sorted ascending by z-index so low-importance edges render
// underneath.
func (s *Styler) Style(ctx context.Context, d *diagram.Diagram) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCanceled, err, "styling canceled")
	}
	if len(d.Edges) == 0 {
		return &Result{}, nil
	}

	result := &Result{}
	scores, warnings := s.score(d)
	result.Warnings = warnings
	for _, w := range warnings {
		log.FromContext(ctx).Warn(w)
	}

	normalized := normalize(scores)

	critical := make(map[string]bool)
	if s.cfg.HighlightCriticalPath {
		for key, score := range normalized {
			if score >= s.cfg.CriticalPercentile {
				critical[key] = true
			}
		}
	}

	result.Edges = make([]StyledEdge, 0, len(d.Edges))
	for _, edge := range d.Edges {
		importance, ok := normalized[scoreKey(edge)]
		if !ok {
			importance = 0.5
		}
		category := Categorize(edge)
		isCritical := critical[scoreKey(edge)]

		result.Edges = append(result.Edges, StyledEdge{
			Edge:       edge,
			Style:      s.computeStyle(importance, category, isCritical),
			Importance: importance,
			Category:   category,
			IsCritical: isCritical,
		})
	}

	sort.SliceStable(result.Edges, func(i, j int) bool {
		return result.Edges[i].Style.ZIndex < result.Edges[j].Style.ZIndex
	})

	return result, nil
}

// Categorize infers an edge's category from keywords in its label.
func Categorize(edge diagram.Edge) string {
	label := strings.ToLower(edge.Label)
	if label == "" {
		return CategoryDefault
	}

	switch {
	case containsAny(label, "data", "read", "write", "store"):
		return CategoryDataFlow
	case containsAny(label, "call", "invoke", "request", "api"):
		return CategoryControlFlow
	case containsAny(label, "depend", "require", "import", "use"):
		return CategoryDependency
	case containsAny(label, "event", "emit", "trigger", "notify"):
		return CategoryEvent
	case containsAny(label, "ref", "link", "point"):
		return CategoryReference
	}
	return CategoryDefault
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func (s *Styler) computeStyle(importance float64, category string, isCritical bool) EdgeStyle {
	style := EdgeStyle{
		StrokeColor:   s.color(importance, category),
		StrokeOpacity: 1,
	}

	if s.cfg.ScaleWidth {
		style.StrokeWidth = s.cfg.MinStrokeWidth + importance*(s.cfg.MaxStrokeWidth-s.cfg.MinStrokeWidth)
	} else {
		style.StrokeWidth = (s.cfg.MinStrokeWidth + s.cfg.MaxStrokeWidth) / 2
	}

	if s.cfg.ScaleOpacity {
		style.StrokeOpacity = s.cfg.MinOpacity + importance*(s.cfg.MaxOpacity-s.cfg.MinOpacity)
	}

	if pattern, ok := s.cfg.DashPatterns[category]; ok {
		style.StrokeDashArray = pattern
	}

	if s.cfg.EnableGlow && importance >= s.cfg.GlowThreshold {
		style.Glow = true
		style.GlowColor = style.StrokeColor
		if s.cfg.GlowThreshold < 1 {
			style.GlowIntensity = (importance - s.cfg.GlowThreshold) / (1 - s.cfg.GlowThreshold)
		} else {
			style.GlowIntensity = 1
		}
	}

	if isCritical {
		style.StrokeWidth *= s.cfg.CriticalWidthMultiplier
		style.StrokeColor = s.cfg.HighlightColor
		style.Glow = true
		style.GlowColor = s.cfg.HighlightColor
		style.GlowIntensity = 0.8
	}

	style.ZIndex = int(importance * 100)
	style.ArrowSize = 6 + style.StrokeWidth

	return style
}
