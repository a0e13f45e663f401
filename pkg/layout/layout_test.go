package layout

import (
	"strings"
	"testing"

	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/geom"
)

func testDiagram(t *testing.T) *diagram.Diagram {
	t.Helper()
	d := diagram.New("layout")
	nodes := []diagram.Node{
		{ID: "api", Label: "API Gateway", Size: geom.Size{Width: 144, Height: 72}},
		{ID: "auth", Size: geom.Size{Width: 144, Height: 72}},
		{ID: "db"},
	}
	for _, n := range nodes {
		if err := d.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	d.AddEdge(diagram.Edge{Source: "api", Target: "auth"})
	d.AddEdge(diagram.Edge{Source: "auth", Target: "db"})
	d.AddCluster(diagram.Cluster{ID: "backend", Label: "Backend", Nodes: []string{"auth", "db"}})
	return d
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", Options{}, false},
		{"explicit", DefaultOptions(), false},
		{"left to right", Options{Direction: "LR"}, false},
		{"bad direction", Options{Direction: "UP"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			err := opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAndSetDefaults() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && opts.Direction == "" {
				t.Error("direction not defaulted")
			}
		})
	}
}

func TestBuildDOT(t *testing.T) {
	d := testDiagram(t)
	opts := DefaultOptions()
	d.Nodes[2].Size = opts.DefaultSize

	dot := BuildDOT(d, opts)

	for _, want := range []string{
		"digraph G {",
		"rankdir=TB;",
		`subgraph "cluster_backend" {`,
		`label="Backend";`,
		`"api" [label="API Gateway", width=2, height=1];`,
		`"api" -> "auth";`,
		`"auth" -> "db";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	// Clustered nodes are declared inside the subgraph, not repeated outside.
	if strings.Count(dot, `"auth" [`) != 1 {
		t.Errorf("auth declared %d times, want 1", strings.Count(dot, `"auth" [`))
	}
}

func TestParsePositions(t *testing.T) {
	xdot := []byte(`digraph G {
	graph [bb="0,0,300,220", rankdir=TB];
	node [shape=box, fixedsize=true];
	"api" [height=1, pos="150,184", width=2];
	auth [height=1, pos="150,36", width=2];
	"api" -> auth [pos="e,150,72 150,147 150,125 150,99 150,82"];
}`)

	positions, height, err := parsePositions(xdot)
	if err != nil {
		t.Fatal(err)
	}
	if height != 220 {
		t.Errorf("height = %g, want 220", height)
	}
	if got := positions["api"]; got != (geom.Point{X: 150, Y: 184}) {
		t.Errorf("api pos = %v, want (150,184)", got)
	}
	if got := positions["auth"]; got != (geom.Point{X: 150, Y: 36}) {
		t.Errorf("auth pos = %v, want (150,36)", got)
	}
}

func TestParsePositionsHandlesContinuations(t *testing.T) {
	xdot := []byte("digraph G {\n\tgraph [bb=\"0,0,100,100\"];\n\t\"n\" [height=1, \\\n pos=\"50,50\", width=1];\n}")

	positions, _, err := parsePositions(xdot)
	if err != nil {
		t.Fatal(err)
	}
	if got := positions["n"]; got != (geom.Point{X: 50, Y: 50}) {
		t.Errorf("n pos = %v, want (50,50)", got)
	}
}

func TestParsePositionsMissingBoundingBox(t *testing.T) {
	if _, _, err := parsePositions([]byte("digraph G {}")); err == nil {
		t.Error("expected error for output without bounding box")
	}
}

func TestFitClusters(t *testing.T) {
	d := testDiagram(t)
	d.Nodes[1].Position = geom.Point{X: 0, Y: 100}   // auth
	d.Nodes[2].Position = geom.Point{X: 200, Y: 100} // db
	d.Nodes[2].Size = geom.Size{Width: 144, Height: 72}

	fitClusters(d)

	c := d.Clusters[0]
	if c.Position != (geom.Point{X: -20, Y: 80}) {
		t.Errorf("cluster position = %v, want (-20,80)", c.Position)
	}
	if c.Size != (geom.Size{Width: 384, Height: 112}) {
		t.Errorf("cluster size = %v, want 384x112", c.Size)
	}
}
