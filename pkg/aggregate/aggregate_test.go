package aggregate

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/errors"
	"github.com/viralify/edgecraft/pkg/geom"
)

func mustAddNode(t *testing.T, d *diagram.Diagram, n diagram.Node) {
	t.Helper()
	if err := d.AddNode(n); err != nil {
		t.Fatalf("AddNode(%s): %v", n.ID, err)
	}
}

// clusteredDiagram has clusters X and Y with two nodes each and four edges
// from X members to Y members.
func clusteredDiagram(t *testing.T) *diagram.Diagram {
	t.Helper()
	d := diagram.New("clustered")
	mustAddNode(t, d, diagram.Node{ID: "x1", Position: geom.Point{X: 0, Y: 0}, Size: geom.Size{Width: 40, Height: 40}})
	mustAddNode(t, d, diagram.Node{ID: "x2", Position: geom.Point{X: 0, Y: 60}, Size: geom.Size{Width: 40, Height: 40}})
	mustAddNode(t, d, diagram.Node{ID: "y1", Position: geom.Point{X: 300, Y: 0}, Size: geom.Size{Width: 40, Height: 40}})
	mustAddNode(t, d, diagram.Node{ID: "y2", Position: geom.Point{X: 300, Y: 60}, Size: geom.Size{Width: 40, Height: 40}})
	d.AddCluster(diagram.Cluster{ID: "X", Nodes: []string{"x1", "x2"}, Position: geom.Point{X: -10, Y: -10}, Size: geom.Size{Width: 60, Height: 120}})
	d.AddCluster(diagram.Cluster{ID: "Y", Nodes: []string{"y1", "y2"}, Position: geom.Point{X: 290, Y: -10}, Size: geom.Size{Width: 60, Height: 120}})
	d.AddEdge(diagram.Edge{Source: "x1", Target: "y1", Type: "call", Weight: 1})
	d.AddEdge(diagram.Edge{Source: "x1", Target: "y2", Type: "call", Weight: 2})
	d.AddEdge(diagram.Edge{Source: "x2", Target: "y1", Type: "event", Label: "notify", Weight: 3})
	d.AddEdge(diagram.Edge{Source: "x2", Target: "y2", Weight: 4})
	return d
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"explicit", DefaultConfig(), false},
		{"bad mode", Config{Mode: "galaxy"}, true},
		{"negative min edges", Config{MinEdges: -1}, true},
		{"negative max stroke", Config{MaxStrokeWidth: -2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAndSetDefaults() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClusterAggregation(t *testing.T) {
	a, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	result, err := a.Aggregate(context.Background(), clusteredDiagram(t))
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Edges) != 1 {
		t.Fatalf("aggregated edges = %d, want 1", len(result.Edges))
	}
	agg := result.Edges[0]
	if agg.Count != 4 {
		t.Errorf("count = %d, want 4", agg.Count)
	}
	if agg.SourceGroup != "X" || agg.TargetGroup != "Y" {
		t.Errorf("groups = %s -> %s, want X -> Y", agg.SourceGroup, agg.TargetGroup)
	}
	if agg.ID == "" {
		t.Error("missing ID")
	}

	// Representative positions are the cluster centers.
	if want := (geom.Point{X: 20, Y: 50}); agg.SourcePos != want {
		t.Errorf("source pos = %v, want %v", agg.SourcePos, want)
	}
	if want := (geom.Point{X: 320, Y: 50}); agg.TargetPos != want {
		t.Errorf("target pos = %v, want %v", agg.TargetPos, want)
	}
	if want := agg.SourcePos.Midpoint(agg.TargetPos); agg.BadgePos != want {
		t.Errorf("badge pos = %v, want %v", agg.BadgePos, want)
	}

	// Merged metadata.
	if len(agg.Metadata.EdgeTypes) != 2 {
		t.Errorf("edge types = %v, want call and event", agg.Metadata.EdgeTypes)
	}
	if agg.Metadata.TotalWeight != 10 {
		t.Errorf("total weight = %g, want 10", agg.Metadata.TotalWeight)
	}
	if len(agg.Metadata.Labels) != 1 || agg.Metadata.Labels[0] != "notify" {
		t.Errorf("labels = %v, want [notify]", agg.Metadata.Labels)
	}
	if len(agg.Metadata.OriginalEdges) != 4 {
		t.Errorf("original edges = %d, want 4", len(agg.Metadata.OriginalEdges))
	}
}

func TestStandaloneNodesKeepOwnGroups(t *testing.T) {
	d := diagram.New("standalone")
	mustAddNode(t, d, diagram.Node{ID: "a", Position: geom.Point{X: 0, Y: 0}})
	mustAddNode(t, d, diagram.Node{ID: "b", Position: geom.Point{X: 100, Y: 0}})
	d.AddEdge(diagram.Edge{Source: "a", Target: "b"})

	a, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	result, err := a.Aggregate(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(result.Edges))
	}
	if result.Edges[0].Count != 1 {
		t.Errorf("count = %d, want 1 (below min_edges threshold)", result.Edges[0].Count)
	}
	if got := result.GroupMap["a"]; got != "standalone_a" {
		t.Errorf("group of a = %q, want standalone_a", got)
	}
}

func TestBidirectionalMerging(t *testing.T) {
	d := diagram.New("bidi")
	mustAddNode(t, d, diagram.Node{ID: "a", Position: geom.Point{X: 0, Y: 0}})
	mustAddNode(t, d, diagram.Node{ID: "b", Position: geom.Point{X: 100, Y: 0}})
	d.AddEdge(diagram.Edge{Source: "a", Target: "b"})
	d.AddEdge(diagram.Edge{Source: "a", Target: "b"})
	d.AddEdge(diagram.Edge{Source: "b", Target: "a"})

	a, err := New(Config{Mode: ModeBidirectional})
	if err != nil {
		t.Fatal(err)
	}
	result, err := a.Aggregate(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(result.Edges))
	}
	agg := result.Edges[0]
	if agg.Count != 3 {
		t.Errorf("count = %d, want 3", agg.Count)
	}
	if !agg.Bidirectional {
		t.Error("bidirectional = false, want true")
	}
	// Canonical key orders the pair lexicographically.
	if agg.SourceGroup != "a" || agg.TargetGroup != "b" {
		t.Errorf("groups = %s -> %s, want a -> b", agg.SourceGroup, agg.TargetGroup)
	}
}

func TestBidirectionalOneWayStaysDirectional(t *testing.T) {
	d := diagram.New("oneway")
	mustAddNode(t, d, diagram.Node{ID: "a", Position: geom.Point{X: 0, Y: 0}})
	mustAddNode(t, d, diagram.Node{ID: "b", Position: geom.Point{X: 100, Y: 0}})
	d.AddEdge(diagram.Edge{Source: "a", Target: "b"})
	d.AddEdge(diagram.Edge{Source: "a", Target: "b"})

	a, err := New(Config{Mode: ModeBidirectional})
	if err != nil {
		t.Fatal(err)
	}
	result, err := a.Aggregate(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Edges) != 1 || result.Edges[0].Bidirectional {
		t.Errorf("edges = %+v, want one directional edge", result.Edges)
	}
}

func TestNodeGroupMode(t *testing.T) {
	d := diagram.New("groups")
	mustAddNode(t, d, diagram.Node{ID: "a", Position: geom.Point{X: 0, Y: 0}})
	mustAddNode(t, d, diagram.Node{ID: "b", Position: geom.Point{X: 0, Y: 100}})
	mustAddNode(t, d, diagram.Node{ID: "c", Position: geom.Point{X: 200, Y: 0}})
	mustAddNode(t, d, diagram.Node{ID: "d", Position: geom.Point{X: 200, Y: 100}})
	d.AddEdge(diagram.Edge{Source: "a", Target: "c"})
	d.AddEdge(diagram.Edge{Source: "b", Target: "d"})

	a, err := New(Config{
		Mode: ModeNodeGroup,
		NodeGroups: map[string][]string{
			"left":  {"a", "b"},
			"right": {"c", "d"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	result, err := a.Aggregate(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(result.Edges))
	}
	agg := result.Edges[0]
	if agg.SourceGroup != "left" || agg.TargetGroup != "right" {
		t.Errorf("groups = %s -> %s, want left -> right", agg.SourceGroup, agg.TargetGroup)
	}
	// Group centers are member centroids.
	if want := (geom.Point{X: 0, Y: 50}); agg.SourcePos != want {
		t.Errorf("source pos = %v, want %v", agg.SourcePos, want)
	}
}

func TestEdgeTypeModeGroupsPerNodePair(t *testing.T) {
	d := diagram.New("types")
	mustAddNode(t, d, diagram.Node{ID: "a", Position: geom.Point{X: 0, Y: 0}})
	mustAddNode(t, d, diagram.Node{ID: "b", Position: geom.Point{X: 100, Y: 0}})
	d.AddEdge(diagram.Edge{Source: "a", Target: "b", Type: "call"})
	d.AddEdge(diagram.Edge{Source: "a", Target: "b", Type: "event"})

	a, err := New(Config{Mode: ModeEdgeType})
	if err != nil {
		t.Fatal(err)
	}
	result, err := a.Aggregate(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Edges) != 1 {
		t.Fatalf("edges = %d, want 1 (per endpoint pair)", len(result.Edges))
	}
	if result.Edges[0].Count != 2 {
		t.Errorf("count = %d, want 2", result.Edges[0].Count)
	}
}

func TestCountSumInvariant(t *testing.T) {
	for _, mode := range []Mode{ModeCluster, ModeBidirectional, ModeEdgeType} {
		t.Run(string(mode), func(t *testing.T) {
			d := clusteredDiagram(t)
			a, err := New(Config{Mode: mode})
			if err != nil {
				t.Fatal(err)
			}
			result, err := a.Aggregate(context.Background(), d)
			if err != nil {
				t.Fatal(err)
			}

			total := 0
			for i := range result.Edges {
				total += result.Edges[i].Count
			}
			if total != len(d.Edges) {
				t.Errorf("count sum = %d, want %d", total, len(d.Edges))
			}
		})
	}
}

func TestStats(t *testing.T) {
	a, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	result, err := a.Aggregate(context.Background(), clusteredDiagram(t))
	if err != nil {
		t.Fatal(err)
	}

	s := result.Stats
	if s.OriginalEdgeCount != 4 || s.AggregatedEdgeCount != 1 {
		t.Errorf("counts = %d/%d, want 4/1", s.OriginalEdgeCount, s.AggregatedEdgeCount)
	}
	if math.Abs(s.ReductionRatio-0.75) > 1e-9 {
		t.Errorf("reduction ratio = %g, want 0.75", s.ReductionRatio)
	}
	if s.GroupCount != 2 {
		t.Errorf("group count = %d, want 2", s.GroupCount)
	}
	if s.MaxAggregation != 4 {
		t.Errorf("max aggregation = %d, want 4", s.MaxAggregation)
	}
	if len(result.Original) != 4 {
		t.Errorf("preserved originals = %d, want 4", len(result.Original))
	}
}

func TestStrokeWidth(t *testing.T) {
	tests := []struct {
		count int
		want  float64
	}{
		{1, 1.5},
		{4, 3},
		{14, 8},
		{100, 8},
	}
	for _, tt := range tests {
		e := AggregatedEdge{Count: tt.count}
		if got := e.StrokeWidth(); got != tt.want {
			t.Errorf("StrokeWidth(count=%d) = %g, want %g", tt.count, got, tt.want)
		}
	}
}

func TestAggregateSkipsMissingEndpoints(t *testing.T) {
	d := diagram.New("broken")
	mustAddNode(t, d, diagram.Node{ID: "a", Position: geom.Point{X: 0, Y: 0}})
	d.AddEdge(diagram.Edge{Source: "a", Target: "ghost"})

	a, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	result, err := a.Aggregate(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Edges) != 0 {
		t.Errorf("edges = %d, want 0", len(result.Edges))
	}
}

func TestAggregateCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	_, err = a.Aggregate(ctx, clusteredDiagram(t))
	if errors.GetCode(err) != errors.ErrCodeCanceled {
		t.Errorf("error code = %q, want %q", errors.GetCode(err), errors.ErrCodeCanceled)
	}
}

func TestBuildSVG(t *testing.T) {
	a, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	result, err := a.Aggregate(context.Background(), clusteredDiagram(t))
	if err != nil {
		t.Fatal(err)
	}

	svg := a.BuildSVG(result)
	if !strings.Contains(svg, `data-count="4"`) {
		t.Errorf("missing count attribute in %q", svg)
	}
	if !strings.Contains(svg, "count-badge") {
		t.Error("missing count badge")
	}
	if !strings.Contains(svg, "badge-shadow") {
		t.Error("missing shadow filter")
	}
}

func TestBuildSVGBidirectionalArrows(t *testing.T) {
	d := diagram.New("bidi")
	mustAddNode(t, d, diagram.Node{ID: "a", Position: geom.Point{X: 0, Y: 0}})
	mustAddNode(t, d, diagram.Node{ID: "b", Position: geom.Point{X: 100, Y: 0}})
	d.AddEdge(diagram.Edge{Source: "a", Target: "b"})
	d.AddEdge(diagram.Edge{Source: "b", Target: "a"})

	a, err := New(Config{Mode: ModeBidirectional})
	if err != nil {
		t.Fatal(err)
	}
	result, err := a.Aggregate(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}

	svg := a.BuildSVG(result)
	if strings.Count(svg, "<polygon") != 2 {
		t.Errorf("polygons = %d, want 2 arrowheads", strings.Count(svg, "<polygon"))
	}
}
