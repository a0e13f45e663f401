// Package aggregate collapses parallel edges between clusters or node groups
// into single representative edges with count badges.
//
// Nodes are first mapped to groups according to the configured mode, edges
// are bucketed by their endpoint group pair, and each bucket of at least
// MinEdges edges becomes one AggregatedEdge carrying the bucket's count and
// merged metadata. Buckets below the threshold pass through as count-1
// aggregated edges so the output always covers every routable input edge.
package aggregate

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/errors"
	"github.com/viralify/edgecraft/pkg/geom"
	"github.com/viralify/edgecraft/pkg/observability"
)

// Mode selects how nodes are assigned to aggregation groups.
type Mode string

// Supported aggregation modes.
const (
	// ModeCluster groups nodes by their cluster membership. Nodes outside
	// any cluster form singleton groups.
	ModeCluster Mode = "cluster"

	// ModeNodeGroup groups nodes by the config's explicit NodeGroups map.
	// Unlisted nodes form singleton groups.
	ModeNodeGroup Mode = "node_group"

	// ModeBidirectional treats every node as its own group and merges
	// opposite-direction edges between the same node pair.
	ModeBidirectional Mode = "bidirectional"

	// ModeEdgeType treats every node as its own group, collapsing parallel
	// edges per endpoint pair regardless of type.
	ModeEdgeType Mode = "edge_type"
)

const standalonePrefix = "standalone_"

// Config holds aggregation options.
type Config struct {
	Mode Mode `json:"mode" toml:"mode"`

	// MinEdges is the bucket size at which edges merge. Default: 2.
	MinEdges int `json:"min_edges" toml:"min_edges"`

	// ShowCountBadge renders a numbered badge at each merged edge's
	// midpoint. DefaultConfig enables it.
	ShowCountBadge bool `json:"show_count_badge" toml:"show_count_badge"`

	// Badge styling.
	BadgeRadius    float64 `json:"badge_radius" toml:"badge_radius"`
	BadgeFill      string  `json:"badge_fill" toml:"badge_fill"`
	BadgeTextColor string  `json:"badge_text_color" toml:"badge_text_color"`
	BadgeFontSize  int     `json:"badge_font_size" toml:"badge_font_size"`

	// Aggregate edge styling.
	StrokeWidth float64 `json:"stroke_width" toml:"stroke_width"`
	StrokeColor string  `json:"stroke_color" toml:"stroke_color"`

	// ScaleByCount widens merged edges with bucket size, capped at
	// MaxStrokeWidth. DefaultConfig enables it.
	ScaleByCount   bool    `json:"scale_by_count" toml:"scale_by_count"`
	MaxStrokeWidth float64 `json:"max_stroke_width" toml:"max_stroke_width"`

	// PreserveOriginalEdges keeps the input edges on the result for
	// drill-down. DefaultConfig enables it.
	PreserveOriginalEdges bool `json:"preserve_original_edges" toml:"preserve_original_edges"`

	// NodeGroups maps group ID to member node IDs, used by ModeNodeGroup.
	NodeGroups map[string][]string `json:"node_groups,omitempty" toml:"node_groups"`
}

// DefaultConfig returns a config with all fields at their defaults.
func DefaultConfig() Config {
	return Config{
		Mode:                  ModeCluster,
		MinEdges:              2,
		ShowCountBadge:        true,
		BadgeRadius:           12,
		BadgeFill:             "#4A5568",
		BadgeTextColor:        "#FFFFFF",
		BadgeFontSize:         11,
		StrokeWidth:           2,
		StrokeColor:           "#718096",
		ScaleByCount:          true,
		MaxStrokeWidth:        8,
		PreserveOriginalEdges: true,
	}
}

// ValidateAndSetDefaults fills zero fields with defaults and validates the rest.
func (c *Config) ValidateAndSetDefaults() error {
	if c.Mode == "" {
		c.Mode = ModeCluster
	}
	if c.MinEdges == 0 {
		c.MinEdges = 2
	}
	if c.BadgeRadius == 0 {
		c.BadgeRadius = 12
	}
	if c.BadgeFill == "" {
		c.BadgeFill = "#4A5568"
	}
	if c.BadgeTextColor == "" {
		c.BadgeTextColor = "#FFFFFF"
	}
	if c.BadgeFontSize == 0 {
		c.BadgeFontSize = 11
	}
	if c.StrokeWidth == 0 {
		c.StrokeWidth = 2
	}
	if c.StrokeColor == "" {
		c.StrokeColor = "#718096"
	}
	if c.MaxStrokeWidth == 0 {
		c.MaxStrokeWidth = 8
	}

	if err := errors.ValidateEnum(errors.ErrCodeInvalidMode, "aggregation mode", string(c.Mode),
		string(ModeCluster), string(ModeNodeGroup), string(ModeBidirectional), string(ModeEdgeType)); err != nil {
		return err
	}
	if c.MinEdges < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "min_edges must be at least 1, got %d", c.MinEdges)
	}
	if err := errors.ValidatePositive(errors.ErrCodeInvalidConfig, "max_stroke_width", c.MaxStrokeWidth); err != nil {
		return err
	}
	return nil
}

// Metadata carries the merged attributes of an aggregated edge's members.
type Metadata struct {
	EdgeTypes     map[string]struct{} `json:"edge_types,omitempty"`
	TotalWeight   float64             `json:"total_weight"`
	Labels        []string            `json:"labels,omitempty"`
	OriginalEdges []diagram.Edge      `json:"original_edges,omitempty"`
}

// AggregatedEdge represents one or more connections between two groups.
type AggregatedEdge struct {
	ID          string     `json:"id"`
	SourceGroup string     `json:"source_group"`
	TargetGroup string     `json:"target_group"`
	SourcePos   geom.Point `json:"source_pos"`
	TargetPos   geom.Point `json:"target_pos"`
	Count       int        `json:"count"`
	Metadata    Metadata   `json:"metadata"`

	// Bidirectional is true when members flow both ways between the groups.
	Bidirectional bool `json:"bidirectional"`

	// BadgePos is the count badge anchor, the edge midpoint.
	BadgePos geom.Point `json:"badge_pos"`
}

// StrokeWidth returns the count-scaled stroke width, capped at 8.
func (e *AggregatedEdge) StrokeWidth() float64 {
	return min(1+0.5*float64(e.Count), 8)
}

// Stats summarizes an aggregation pass.
type Stats struct {
	OriginalEdgeCount   int     `json:"original_edge_count"`
	AggregatedEdgeCount int     `json:"aggregated_edge_count"`
	ReductionRatio      float64 `json:"reduction_ratio"`
	GroupCount          int     `json:"group_count"`
	MaxAggregation      int     `json:"max_aggregation"`
}

// Result holds the aggregated edges, the optional original edges for
// drill-down, the node-to-group mapping, and summary stats.
type Result struct {
	Edges    []AggregatedEdge  `json:"edges"`
	Original []diagram.Edge    `json:"original,omitempty"`
	GroupMap map[string]string `json:"group_map"`
	Stats    Stats             `json:"stats"`
}

// Aggregator collapses edges according to its configured mode.
type Aggregator struct {
	cfg Config
}

// New creates an aggregator. Returns an error for invalid config.
func New(cfg Config) (*Aggregator, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Aggregator{cfg: cfg}, nil
}

// Aggregate buckets the diagram's edges by endpoint group pair and merges
// each bucket that meets the MinEdges threshold.
func (a *Aggregator) Aggregate(ctx context.Context, d *diagram.Diagram) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCanceled, err, "aggregation canceled")
	}

	groupMap := a.buildGroupMap(d)
	buckets, order := a.groupEdges(d.Edges, groupMap)
	edges := a.mergeBuckets(ctx, buckets, order, d, groupMap)

	groups := make(map[string]struct{}, len(groupMap))
	for _, g := range groupMap {
		groups[g] = struct{}{}
	}

	maxAgg := 0
	for i := range edges {
		maxAgg = max(maxAgg, edges[i].Count)
	}

	result := &Result{
		Edges:    edges,
		GroupMap: groupMap,
		Stats: Stats{
			OriginalEdgeCount:   len(d.Edges),
			AggregatedEdgeCount: len(edges),
			ReductionRatio:      1 - float64(len(edges))/float64(max(len(d.Edges), 1)),
			GroupCount:          len(groups),
			MaxAggregation:      maxAgg,
		},
	}
	if a.cfg.PreserveOriginalEdges {
		result.Original = d.Edges
	}
	return result, nil
}

// buildGroupMap maps every node ID to its group ID for the configured mode.
func (a *Aggregator) buildGroupMap(d *diagram.Diagram) map[string]string {
	groupMap := make(map[string]string, len(d.Nodes))

	switch a.cfg.Mode {
	case ModeCluster:
		for i := range d.Clusters {
			for _, nodeID := range d.Clusters[i].Nodes {
				groupMap[nodeID] = d.Clusters[i].ID
			}
		}
		for i := range d.Nodes {
			if _, ok := groupMap[d.Nodes[i].ID]; !ok {
				groupMap[d.Nodes[i].ID] = standalonePrefix + d.Nodes[i].ID
			}
		}

	case ModeNodeGroup:
		for groupID, nodeIDs := range a.cfg.NodeGroups {
			for _, nodeID := range nodeIDs {
				groupMap[nodeID] = groupID
			}
		}
		for i := range d.Nodes {
			if _, ok := groupMap[d.Nodes[i].ID]; !ok {
				groupMap[d.Nodes[i].ID] = "ungrouped_" + d.Nodes[i].ID
			}
		}

	case ModeBidirectional, ModeEdgeType:
		for i := range d.Nodes {
			groupMap[d.Nodes[i].ID] = d.Nodes[i].ID
		}
	}

	return groupMap
}

type groupKey struct {
	src, tgt string
}

// groupEdges buckets edges by endpoint group pair. Bidirectional mode uses a
// direction-independent canonical key. The returned order preserves first
// appearance so output is deterministic.
func (a *Aggregator) groupEdges(edges []diagram.Edge, groupMap map[string]string) (map[groupKey][]diagram.Edge, []groupKey) {
	buckets := make(map[groupKey][]diagram.Edge)
	var order []groupKey

	for _, edge := range edges {
		src, ok := groupMap[edge.Source]
		if !ok {
			src = edge.Source
		}
		tgt, ok := groupMap[edge.Target]
		if !ok {
			tgt = edge.Target
		}

		key := groupKey{src, tgt}
		if a.cfg.Mode == ModeBidirectional && strings.Compare(src, tgt) > 0 {
			key = groupKey{tgt, src}
		}

		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], edge)
	}

	return buckets, order
}

// mergeBuckets turns each bucket into aggregated edges. Buckets below the
// threshold pass members through individually with count 1.
func (a *Aggregator) mergeBuckets(
	ctx context.Context,
	buckets map[groupKey][]diagram.Edge,
	order []groupKey,
	d *diagram.Diagram,
	groupMap map[string]string,
) []AggregatedEdge {
	logger := log.FromContext(ctx)
	var aggregated []AggregatedEdge

	for _, key := range order {
		edges := buckets[key]

		if len(edges) < a.cfg.MinEdges {
			for _, edge := range edges {
				src, okSrc := d.Node(edge.Source)
				tgt, okTgt := d.Node(edge.Target)
				if !okSrc || !okTgt {
					logger.Warn("skipping edge with missing endpoint", "edge", edge.Key())
					observability.Pipeline().OnEdgeSkipped(ctx, "aggregate", edge.Key(), "missing endpoint")
					continue
				}
				agg := AggregatedEdge{
					ID:          uuid.NewString(),
					SourceGroup: key.src,
					TargetGroup: key.tgt,
					SourcePos:   src.Center(),
					TargetPos:   tgt.Center(),
					Count:       1,
					Metadata: Metadata{
						EdgeTypes:     typeSet(edge),
						TotalWeight:   edge.Weight,
						Labels:        labelList(edge),
						OriginalEdges: []diagram.Edge{edge},
					},
				}
				agg.BadgePos = agg.SourcePos.Midpoint(agg.TargetPos)
				aggregated = append(aggregated, agg)
			}
			continue
		}

		srcPos, okSrc := a.groupCenter(key.src, d, groupMap)
		tgtPos, okTgt := a.groupCenter(key.tgt, d, groupMap)
		if !okSrc || !okTgt {
			logger.Warn("skipping group pair with no resolvable center",
				"source", key.src, "target", key.tgt, "edges", len(edges))
			for _, edge := range edges {
				observability.Pipeline().OnEdgeSkipped(ctx, "aggregate", edge.Key(), "unresolvable group")
			}
			continue
		}

		meta := Metadata{
			EdgeTypes:     make(map[string]struct{}),
			OriginalEdges: edges,
		}
		for _, edge := range edges {
			if edge.Type != "" {
				meta.EdgeTypes[edge.Type] = struct{}{}
			}
			if edge.Label != "" {
				meta.Labels = append(meta.Labels, edge.Label)
			}
			meta.TotalWeight += edge.Weight
		}

		bidirectional := false
		if a.cfg.Mode == ModeBidirectional {
			forward := 0
			for _, edge := range edges {
				if groupMap[edge.Source] == key.src {
					forward++
				}
			}
			bidirectional = forward > 0 && forward < len(edges)
		}

		agg := AggregatedEdge{
			ID:            uuid.NewString(),
			SourceGroup:   key.src,
			TargetGroup:   key.tgt,
			SourcePos:     srcPos,
			TargetPos:     tgtPos,
			Count:         len(edges),
			Metadata:      meta,
			Bidirectional: bidirectional,
		}
		agg.BadgePos = agg.SourcePos.Midpoint(agg.TargetPos)
		aggregated = append(aggregated, agg)
	}

	return aggregated
}

// groupCenter resolves a group's representative position: a cluster's
// center, a standalone node's center, or the centroid of member nodes.
func (a *Aggregator) groupCenter(groupID string, d *diagram.Diagram, groupMap map[string]string) (geom.Point, bool) {
	for i := range d.Clusters {
		if d.Clusters[i].ID == groupID {
			return d.Clusters[i].Center(), true
		}
	}

	if nodeID, ok := strings.CutPrefix(groupID, standalonePrefix); ok {
		if n, found := d.Node(nodeID); found {
			return n.Center(), true
		}
	}

	var sum geom.Point
	count := 0
	for nodeID, gid := range groupMap {
		if gid != groupID {
			continue
		}
		if n, found := d.Node(nodeID); found {
			sum = sum.Add(n.Center())
			count++
		}
	}
	if count > 0 {
		return sum.Scale(1 / float64(count)), true
	}

	if n, found := d.Node(groupID); found {
		return n.Center(), true
	}
	return geom.Point{}, false
}

func typeSet(edge diagram.Edge) map[string]struct{} {
	if edge.Type == "" {
		return nil
	}
	return map[string]struct{}{edge.Type: {}}
}

func labelList(edge diagram.Edge) []string {
	if edge.Label == "" {
		return nil
	}
	return []string{edge.Label}
}
