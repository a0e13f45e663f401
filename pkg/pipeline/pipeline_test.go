package pipeline

import (
	"context"
	"testing"

	"github.com/viralify/edgecraft/pkg/cache"
	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/geom"
	"github.com/viralify/edgecraft/pkg/route"
	"github.com/viralify/edgecraft/pkg/style"
)

func testDiagram(t *testing.T) *diagram.Diagram {
	t.Helper()
	d := diagram.New("pipeline")
	nodes := []diagram.Node{
		{ID: "a", Position: geom.Point{X: 0, Y: 0}, Size: geom.Size{Width: 100, Height: 50}},
		{ID: "b", Position: geom.Point{X: 300, Y: 0}, Size: geom.Size{Width: 100, Height: 50}},
		{ID: "c", Position: geom.Point{X: 150, Y: 200}, Size: geom.Size{Width: 100, Height: 50}},
	}
	for _, n := range nodes {
		if err := d.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	d.AddEdge(diagram.Edge{Source: "a", Target: "b", Weight: 5})
	d.AddEdge(diagram.Edge{Source: "a", Target: "c", Weight: 1})
	d.AddEdge(diagram.Edge{Source: "b", Target: "c", Weight: 1})
	return d
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", Options{}, false},
		{"plan routing", Options{Routing: RoutingPlan}, false},
		{"grid routing", Options{Routing: RoutingGrid}, false},
		{"bad routing", Options{Routing: "teleport"}, true},
		{"bad nested style", Options{StyleOpts: style.Config{Metric: "vibes"}}, true},
		{"bad nested route", Options{Routing: RoutingGrid, RouteOpts: route.Config{CellSize: -1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			err := opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAndSetDefaults() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && opts.Routing == "" {
				t.Error("routing not defaulted")
			}
		})
	}
}

func TestOptionsValidationIdempotent(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	first := opts.Routing
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Routing != first {
		t.Errorf("routing changed on revalidation: %s != %s", opts.Routing, first)
	}
}

func TestExecutePlanRouting(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	result, err := runner.Execute(context.Background(), testDiagram(t), Options{})
	if err != nil {
		t.Fatal(err)
	}

	if result.Planned == nil {
		t.Fatal("planned result missing")
	}
	if result.Routed != nil || result.Bundled != nil || result.Aggregated != nil {
		t.Error("unexpected results for stages that did not run")
	}
	if result.Styled == nil || len(result.Styled.Edges) != 3 {
		t.Fatalf("styled result = %+v, want 3 edges", result.Styled)
	}
	if result.DiagramHash == "" {
		t.Error("missing diagram hash")
	}
	if result.Stats.NodeCount != 3 || result.Stats.EdgeCount != 3 {
		t.Errorf("stats = %+v, want 3 nodes / 3 edges", result.Stats)
	}
}

func TestExecuteSkipsDanglingEdges(t *testing.T) {
	d := testDiagram(t)
	d.AddEdge(diagram.Edge{Source: "a", Target: "ghost"})

	runner := NewRunner(nil, nil, nil)
	result, err := runner.Execute(context.Background(), d, Options{})
	if err != nil {
		t.Fatalf("Execute() error = %v, want dangling edge skipped", err)
	}

	if result.Planned == nil {
		t.Fatal("planned result missing")
	}
	if len(result.Planned.Edges) != 3 {
		t.Errorf("planned edges = %d, want 3", len(result.Planned.Edges))
	}
	if result.Planned.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", result.Planned.Skipped)
	}
}

func TestExecuteGridRouting(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	result, err := runner.Execute(context.Background(), testDiagram(t), Options{Routing: RoutingGrid})
	if err != nil {
		t.Fatal(err)
	}

	if result.Routed == nil || len(result.Routed.Edges) != 3 {
		t.Fatalf("routed result = %+v, want 3 edges", result.Routed)
	}
	if result.Planned != nil {
		t.Error("planned result set for grid routing")
	}
}

func TestExecuteAllStages(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	result, err := runner.Execute(context.Background(), testDiagram(t), Options{
		Aggregate: true,
		Bundle:    true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.Aggregated == nil {
		t.Error("aggregated result missing")
	}
	if result.Bundled == nil || len(result.Bundled.Edges) != 3 {
		t.Errorf("bundled result = %+v, want 3 edges", result.Bundled)
	}
	if result.Styled == nil {
		t.Error("styled result missing")
	}
}

func TestExecuteCachesStageResults(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	d := testDiagram(t)

	first, err := runner.Execute(context.Background(), d, Options{Bundle: true})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.RouteHit || first.CacheInfo.BundleHit || first.CacheInfo.StyleHit {
		t.Errorf("cache info = %+v, want all misses on first run", first.CacheInfo)
	}

	second, err := runner.Execute(context.Background(), d, Options{Bundle: true})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.RouteHit || !second.CacheInfo.BundleHit || !second.CacheInfo.StyleHit {
		t.Errorf("cache info = %+v, want all hits on second run", second.CacheInfo)
	}

	// Cached and fresh results agree.
	if len(second.Planned.Edges) != len(first.Planned.Edges) {
		t.Errorf("cached planned edges = %d, want %d", len(second.Planned.Edges), len(first.Planned.Edges))
	}
	if second.DiagramHash != first.DiagramHash {
		t.Errorf("diagram hash changed: %s != %s", second.DiagramHash, first.DiagramHash)
	}
}

func TestScopedKeyersIsolateSharedCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	tenantA := NewRunner(fc, cache.NewScopedKeyer(nil, "tenant-a:"), nil)
	tenantB := NewRunner(fc, cache.NewScopedKeyer(nil, "tenant-b:"), nil)
	d := testDiagram(t)

	if _, err := tenantA.Execute(context.Background(), d, Options{}); err != nil {
		t.Fatal(err)
	}

	// Same diagram, same options, different namespace: no cross-hits.
	res, err := tenantB.Execute(context.Background(), d, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.RouteHit || res.CacheInfo.StyleHit {
		t.Errorf("cache info = %+v, want misses across namespaces", res.CacheInfo)
	}

	// Within a namespace the cache still hits.
	res, err = tenantA.Execute(context.Background(), d, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.CacheInfo.RouteHit || !res.CacheInfo.StyleHit {
		t.Errorf("cache info = %+v, want hits within namespace", res.CacheInfo)
	}
}

func TestExecuteRefreshBypassesCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	d := testDiagram(t)

	if _, err := runner.Execute(context.Background(), d, Options{}); err != nil {
		t.Fatal(err)
	}
	refreshed, err := runner.Execute(context.Background(), d, Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.RouteHit || refreshed.CacheInfo.StyleHit {
		t.Errorf("cache info = %+v, want misses with refresh", refreshed.CacheInfo)
	}
}

func TestExecuteDifferentOptionsMissCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	d := testDiagram(t)

	if _, err := runner.Execute(context.Background(), d, Options{}); err != nil {
		t.Fatal(err)
	}

	opts := Options{}
	opts.PlanOpts.Mode = "orthogonal"
	other, err := runner.Execute(context.Background(), d, opts)
	if err != nil {
		t.Fatal(err)
	}
	if other.CacheInfo.RouteHit {
		t.Error("route cache hit despite changed plan options")
	}
}

func TestStandaloneStages(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	d := testDiagram(t)
	ctx := context.Background()
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}

	if _, err := runner.Aggregate(ctx, d, opts); err != nil {
		t.Errorf("Aggregate: %v", err)
	}
	if _, err := runner.Plan(ctx, d, opts); err != nil {
		t.Errorf("Plan: %v", err)
	}
	if _, grid, err := runner.Route(ctx, d, opts); err != nil || grid == nil {
		t.Errorf("Route: %v, grid %v", err, grid)
	}
	if _, err := runner.Bundle(ctx, d, opts); err != nil {
		t.Errorf("Bundle: %v", err)
	}
	if _, err := runner.StyleEdges(ctx, d, opts); err != nil {
		t.Errorf("StyleEdges: %v", err)
	}
}
