package route

import (
	"testing"

	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/geom"
)

func gridDiagram() *diagram.Diagram {
	d := diagram.New("grid")
	_ = d.AddNode(diagram.Node{ID: "a", Position: geom.Point{X: 0, Y: 0}, Size: geom.Size{Width: 100, Height: 50}})
	_ = d.AddNode(diagram.Node{ID: "b", Position: geom.Point{X: 300, Y: 0}, Size: geom.Size{Width: 100, Height: 50}})
	return d
}

func TestGridDimensions(t *testing.T) {
	g := NewGrid(gridDiagram(), 10, 15)

	// Bounds (0,0)-(400,50) expanded by the 50-unit margin.
	if g.Origin.X != -50 || g.Origin.Y != -50 {
		t.Errorf("Origin = %v, want (-50,-50)", g.Origin)
	}
	if g.Width != 51 || g.Height != 16 {
		t.Errorf("grid = %dx%d, want 51x16", g.Width, g.Height)
	}
}

func TestGridCoordinateRoundTrip(t *testing.T) {
	g := NewGrid(gridDiagram(), 10, 15)

	gx, gy := g.WorldToGrid(geom.Point{X: 100, Y: 25})
	if gx != 15 || gy != 7 {
		t.Errorf("WorldToGrid(100,25) = (%d,%d), want (15,7)", gx, gy)
	}

	// The world point of a cell maps back to the same cell.
	p := g.GridToWorld(gx, gy)
	gx2, gy2 := g.WorldToGrid(p)
	if gx2 != gx || gy2 != gy {
		t.Errorf("round trip = (%d,%d), want (%d,%d)", gx2, gy2, gx, gy)
	}
}

func TestGridWorldToGridClamps(t *testing.T) {
	g := NewGrid(gridDiagram(), 10, 15)

	gx, gy := g.WorldToGrid(geom.Point{X: -10000, Y: 10000})
	if gx != 0 || gy != g.Height-1 {
		t.Errorf("WorldToGrid out of range = (%d,%d), want clamped (0,%d)", gx, gy, g.Height-1)
	}
}

func TestGridBlocking(t *testing.T) {
	g := NewGrid(gridDiagram(), 10, 15)

	tests := []struct {
		name    string
		world   geom.Point
		blocked bool
	}{
		{name: "node a center", world: geom.Point{X: 50, Y: 25}, blocked: true},
		{name: "inside padding", world: geom.Point{X: 110, Y: 25}, blocked: true},
		{name: "gap between nodes", world: geom.Point{X: 200, Y: 25}, blocked: false},
		{name: "margin area", world: geom.Point{X: 50, Y: -40}, blocked: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gx, gy := g.WorldToGrid(tt.world)
			if got := g.Blocked(gx, gy); got != tt.blocked {
				t.Errorf("Blocked(%v) = %v, want %v", tt.world, got, tt.blocked)
			}
		})
	}
}

func TestGridOutOfBoundsBlocked(t *testing.T) {
	g := NewGrid(gridDiagram(), 10, 15)
	if !g.Blocked(-1, 0) || !g.Blocked(0, -1) || !g.Blocked(g.Width, 0) || !g.Blocked(0, g.Height) {
		t.Error("out-of-bounds cells should report blocked")
	}
}

func TestGridOccupancy(t *testing.T) {
	g := NewGrid(gridDiagram(), 10, 15)

	g.Occupy(20, 7, "a→b")
	g.Occupy(20, 7, "a→c")

	occ := g.Occupants(20, 7)
	if len(occ) != 2 {
		t.Fatalf("len(Occupants) = %d, want 2", len(occ))
	}

	// Occupied cells stay routable.
	if g.Blocked(20, 7) {
		t.Error("occupied cell should not be blocked")
	}
}

func TestGridClone(t *testing.T) {
	g := NewGrid(gridDiagram(), 10, 15)
	g.Occupy(20, 7, "a→b")

	clone := g.Clone()
	clone.setBlocked(20, 7, true)
	clone.Occupy(20, 7, "x→y")

	if g.Blocked(20, 7) {
		t.Error("mutating clone should not block original cells")
	}
	if len(g.Occupants(20, 7)) != 1 {
		t.Error("mutating clone should not change original occupancy")
	}
}

func TestGridEmptyDiagram(t *testing.T) {
	g := NewGrid(diagram.New("empty"), 10, 15)
	if g.Width != 0 || g.Height != 0 {
		t.Errorf("empty diagram grid = %dx%d, want 0x0", g.Width, g.Height)
	}
}
