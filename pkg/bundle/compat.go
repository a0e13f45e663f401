package bundle

import "math"

// compatMatrix is a symmetric pairwise compatibility table.
type compatMatrix struct {
	n      int
	values []float64
}

func (m compatMatrix) at(i, j int) float64 { return m.values[i*m.n+j] }

// compatibilityMatrix computes pairwise compatibility for all edges.
func compatibilityMatrix(edges []BundledEdge) compatMatrix {
	n := len(edges)
	m := compatMatrix{n: n, values: make([]float64, n*n)}
	for i := 0; i < n; i++ {
		m.values[i*n+i] = 1
		for j := i + 1; j < n; j++ {
			c := compatibility(&edges[i], &edges[j])
			m.values[i*n+j] = c
			m.values[j*n+i] = c
		}
	}
	return m
}

// compatibility scores how strongly two edges should attract, in [0,1].
// It is the geometric mean of three measures: angle (parallel edges score
// high, direction sign ignored), scale (similar lengths score high), and
// position (nearby midpoints score high).
func compatibility(a, b *BundledEdge) float64 {
	va := a.TargetPos.Sub(a.SourcePos)
	vb := b.TargetPos.Sub(b.SourcePos)
	lenA := va.Length()
	lenB := vb.Length()

	angle := math.Abs(va.Dot(vb)) / (lenA*lenB + 0.001)

	avgLen := (lenA + lenB) / 2
	scale, position := 1.0, 1.0
	if avgLen > 0 {
		minLen := math.Min(lenA, lenB)
		maxLen := math.Max(lenA, lenB)
		scale = 2 / (avgLen/(minLen+0.001) + maxLen/(avgLen+0.001))

		midDist := a.Midpoint().Distance(b.Midpoint())
		position = avgLen / (avgLen + midDist)
	}

	return math.Cbrt(angle * scale * position)
}
