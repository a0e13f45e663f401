package route

import (
	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/geom"
)

// gridMargin is the world-space border added around the diagram bounds so
// paths can route around outermost nodes.
const gridMargin = 50

// Cell is one cell of the routing grid.
type Cell struct {
	Blocked    bool
	OccupiedBy map[string]struct{} // Edge keys whose path crosses this cell
}

// Grid is a uniform occupancy grid over the diagram bounds.
//
// A Grid is owned by exactly one routing pass: [Router.Route] mutates it
// sequentially across edges (temporary unblocking during search, occupancy
// marking after), so it must not be shared between goroutines. Use [Grid.Clone]
// to compute candidate paths against a snapshot.
type Grid struct {
	Width    int
	Height   int
	CellSize float64
	Origin   geom.Point

	cells []Cell
}

// NewGrid builds a grid covering all node and cluster bounds plus margin,
// with cells under each node's padded bounds marked blocked. Cluster
// interiors stay routable.
func NewGrid(d *diagram.Diagram, cellSize, nodePadding float64) *Grid {
	if len(d.Nodes) == 0 {
		return &Grid{CellSize: cellSize}
	}

	bounds := d.Bounds().Expand(gridMargin)
	width := int(bounds.Size.Width/cellSize) + 1
	height := int(bounds.Size.Height/cellSize) + 1

	g := &Grid{
		Width:    width,
		Height:   height,
		CellSize: cellSize,
		Origin:   bounds.Min,
		cells:    make([]Cell, width*height),
	}

	for i := range d.Nodes {
		g.blockRect(d.Nodes[i].Bounds().Expand(nodePadding))
	}

	return g
}

// blockRect marks every cell under the world-space rectangle as blocked.
func (g *Grid) blockRect(r geom.Rect) {
	x0, y0 := g.WorldToGrid(r.Min)
	x1, y1 := g.WorldToGrid(r.Max())
	for gy := y0; gy <= y1; gy++ {
		for gx := x0; gx <= x1; gx++ {
			g.cells[gy*g.Width+gx].Blocked = true
		}
	}
}

// WorldToGrid converts world coordinates to grid coordinates, clamped to the
// grid extent.
func (g *Grid) WorldToGrid(p geom.Point) (int, int) {
	gx := int((p.X - g.Origin.X) / g.CellSize)
	gy := int((p.Y - g.Origin.Y) / g.CellSize)
	return clamp(gx, 0, g.Width-1), clamp(gy, 0, g.Height-1)
}

// GridToWorld converts grid coordinates to the world-space cell center.
func (g *Grid) GridToWorld(gx, gy int) geom.Point {
	return geom.Point{
		X: g.Origin.X + float64(gx)*g.CellSize + g.CellSize/2,
		Y: g.Origin.Y + float64(gy)*g.CellSize + g.CellSize/2,
	}
}

// Blocked reports whether the cell is blocked. Out-of-bounds counts as blocked.
func (g *Grid) Blocked(gx, gy int) bool {
	if gx < 0 || gx >= g.Width || gy < 0 || gy >= g.Height {
		return true
	}
	return g.cells[gy*g.Width+gx].Blocked
}

// setBlocked flips one cell's blocked flag, returning the previous value.
// Used to temporarily open anchor cells during a search.
func (g *Grid) setBlocked(gx, gy int, blocked bool) bool {
	if gx < 0 || gx >= g.Width || gy < 0 || gy >= g.Height {
		return true
	}
	c := &g.cells[gy*g.Width+gx]
	prev := c.Blocked
	c.Blocked = blocked
	return prev
}

// Occupy records that an edge's path crosses the cell. Occupied cells are
// informational: they do not block later edges, only node cells do.
func (g *Grid) Occupy(gx, gy int, edgeKey string) {
	if gx < 0 || gx >= g.Width || gy < 0 || gy >= g.Height {
		return
	}
	c := &g.cells[gy*g.Width+gx]
	if c.OccupiedBy == nil {
		c.OccupiedBy = make(map[string]struct{})
	}
	c.OccupiedBy[edgeKey] = struct{}{}
}

// Occupants returns the edge keys recorded on a cell.
func (g *Grid) Occupants(gx, gy int) []string {
	if gx < 0 || gx >= g.Width || gy < 0 || gy >= g.Height {
		return nil
	}
	c := g.cells[gy*g.Width+gx]
	keys := make([]string, 0, len(c.OccupiedBy))
	for k := range c.OccupiedBy {
		keys = append(keys, k)
	}
	return keys
}

// Clone returns an independent copy of the grid for snapshot-based routing.
func (g *Grid) Clone() *Grid {
	clone := *g
	clone.cells = make([]Cell, len(g.cells))
	for i, c := range g.cells {
		clone.cells[i] = Cell{Blocked: c.Blocked}
		if len(c.OccupiedBy) > 0 {
			clone.cells[i].OccupiedBy = make(map[string]struct{}, len(c.OccupiedBy))
			for k := range c.OccupiedBy {
				clone.cells[i].OccupiedBy[k] = struct{}{}
			}
		}
	}
	return &clone
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
