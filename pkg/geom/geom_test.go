package geom

import (
	"math"
	"testing"
)

func TestPointDistance(t *testing.T) {
	tests := []struct {
		p, q Point
		want float64
	}{
		{Point{0, 0}, Point{3, 4}, 5},
		{Point{1, 1}, Point{1, 1}, 0},
		{Point{-2, 0}, Point{2, 0}, 4},
	}

	for _, tt := range tests {
		if got := tt.p.Distance(tt.q); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Distance(%v, %v) = %v, want %v", tt.p, tt.q, got, tt.want)
		}
	}
}

func TestPointMidpointLerp(t *testing.T) {
	p, q := Point{0, 0}, Point{10, 20}

	if got := p.Midpoint(q); got != (Point{5, 10}) {
		t.Errorf("Midpoint = %v, want {5 10}", got)
	}
	if got := p.Lerp(q, 0); got != p {
		t.Errorf("Lerp(0) = %v, want %v", got, p)
	}
	if got := p.Lerp(q, 1); got != q {
		t.Errorf("Lerp(1) = %v, want %v", got, q)
	}
	if got := p.Lerp(q, 0.25); got != (Point{2.5, 5}) {
		t.Errorf("Lerp(0.25) = %v, want {2.5 5}", got)
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	// Degenerate vectors must not produce NaN.
	z := Point{0, 0}.Normalize()
	if math.IsNaN(z.X) || math.IsNaN(z.Y) {
		t.Errorf("Normalize of zero vector produced NaN: %v", z)
	}

	u := Point{3, 4}.Normalize()
	if math.Abs(u.Length()-1) > 1e-9 {
		t.Errorf("Normalize length = %v, want 1", u.Length())
	}
}

func TestPerp(t *testing.T) {
	v := Point{1, 0}.Perp()
	if v != (Point{0, 1}) {
		t.Errorf("Perp of (1,0) = %v, want (0,1)", v)
	}
	if d := v.Dot(Point{1, 0}); d != 0 {
		t.Errorf("Perp not orthogonal, dot = %v", d)
	}
}

func TestRect(t *testing.T) {
	r := RectAt(0, 0, 100, 50)

	if got := r.Center(); got != (Point{50, 25}) {
		t.Errorf("Center = %v, want {50 25}", got)
	}
	if !r.Contains(Point{100, 50}) {
		t.Error("Contains should include the boundary")
	}
	if r.Contains(Point{101, 0}) {
		t.Error("Contains should exclude points outside")
	}

	q := RectAt(50, 25, 100, 50)
	if !r.Intersects(q) {
		t.Error("Overlapping rects should intersect")
	}
	if r.Intersects(RectAt(300, 300, 10, 10)) {
		t.Error("Disjoint rects should not intersect")
	}
}

func TestRectExpand(t *testing.T) {
	r := RectAt(10, 10, 20, 20).Expand(5)
	if r.Min != (Point{5, 5}) {
		t.Errorf("Expand min = %v, want {5 5}", r.Min)
	}
	if r.Size != (Size{30, 30}) {
		t.Errorf("Expand size = %v, want {30 30}", r.Size)
	}
}

func TestVerticalOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want bool
	}{
		{"same row", RectAt(0, 0, 100, 50), RectAt(300, 0, 100, 50), true},
		{"partial", RectAt(0, 0, 100, 50), RectAt(300, 40, 100, 50), true},
		{"disjoint", RectAt(0, 0, 100, 50), RectAt(300, 200, 100, 50), false},
	}

	for _, tt := range tests {
		if got := tt.a.VerticalOverlap(tt.b); got != tt.want {
			t.Errorf("%s: VerticalOverlap = %v, want %v", tt.name, got, tt.want)
		}
	}
}
