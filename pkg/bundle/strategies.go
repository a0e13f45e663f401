package bundle

import (
	"math"
	"sort"
	"strconv"

	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/geom"
)

// forceStrategy runs the FDEB simulation. On each iteration every interior
// control point receives an attraction force toward the same-index points of
// compatible edges plus a spring force toward the midpoint of its neighbors,
// blended by strength. The step decays linearly to zero.
//
// Updates are double-buffered: forces for iteration n+1 are computed entirely
// from iteration n's points.
type forceStrategy struct {
	strength   float64
	threshold  float64
	iterations int
	stepSize   float64
}

func (s *forceStrategy) apply(edges []BundledEdge, _ *diagram.Diagram) {
	compat := compatibilityMatrix(edges)

	current := make([][]geom.Point, len(edges))
	next := make([][]geom.Point, len(edges))
	for i := range edges {
		current[i] = edges[i].ControlPoints
		next[i] = make([]geom.Point, len(current[i]))
		copy(next[i], current[i])
	}

	for iter := 0; iter < s.iterations; iter++ {
		step := s.stepSize * (1 - float64(iter)/float64(s.iterations))

		for i := range edges {
			pts := current[i]
			next[i][0] = pts[0]
			next[i][len(pts)-1] = pts[len(pts)-1]

			for p := 1; p < len(pts)-1; p++ {
				curr := pts[p]

				var attraction geom.Point
				for j := range edges {
					if j == i {
						continue
					}
					c := compat.at(i, j)
					if c < s.threshold || p >= len(current[j]) {
						continue
					}
					d := current[j][p].Sub(curr)
					dist := d.Length() + 0.001
					attraction = attraction.Add(d.Scale(c / dist))
				}

				spring := pts[p-1].Midpoint(pts[p+1]).Sub(curr)

				force := attraction.Scale(s.strength).Add(spring.Scale(1 - s.strength))
				next[i][p] = curr.Add(force.Scale(step))
			}
		}

		current, next = next, current
	}

	for i := range edges {
		edges[i].ControlPoints = current[i]
	}
}

// hierarchicalStrategy pulls edges whose endpoints share a cluster toward
// that cluster's center, weighted by a Gaussian peaking at the edge midpoint.
// Edges crossing cluster boundaries keep their straight subdivision.
type hierarchicalStrategy struct {
	strength float64
}

func (s *hierarchicalStrategy) apply(edges []BundledEdge, d *diagram.Diagram) {
	centers := make(map[string]geom.Point, len(d.Clusters))
	for i := range d.Clusters {
		centers[d.Clusters[i].ID] = d.Clusters[i].Center()
	}

	for i := range edges {
		srcCluster, okSrc := d.ClusterOf(edges[i].Edge.Source)
		tgtCluster, okTgt := d.ClusterOf(edges[i].Edge.Target)
		if !okSrc || !okTgt || srcCluster != tgtCluster {
			continue
		}
		bendThrough(&edges[i], centers[srcCluster], s.strength)
	}
}

// radialStrategy pulls every edge toward the centroid of all node centers.
type radialStrategy struct {
	strength float64
}

func (s *radialStrategy) apply(edges []BundledEdge, d *diagram.Diagram) {
	center := d.Centroid()
	for i := range edges {
		bendThrough(&edges[i], center, s.strength)
	}
}

// bendThrough pulls an edge's interior points toward an anchor, weighted by
// a Gaussian over the parametric position so the pull peaks mid-edge and
// fades at the endpoints.
func bendThrough(edge *BundledEdge, anchor geom.Point, strength float64) {
	pts := edge.ControlPoints
	for p := 1; p < len(pts)-1; p++ {
		t := float64(p) / float64(len(pts)-1)
		weight := math.Exp(-(t-0.5)*(t-0.5)/0.1) * strength
		pts[p] = pts[p].Lerp(anchor, weight)
	}
}

// stubStrategy merges edges that leave the same source in roughly the same
// direction. Edges are bucketed by source node and departure angle quantized
// to 45 degree sectors; within each bucket the interior points move toward
// the bucket's per-index average.
type stubStrategy struct {
	strength float64
}

func (s *stubStrategy) apply(edges []BundledEdge, _ *diagram.Diagram) {
	buckets := make(map[string][]int)
	for i := range edges {
		buckets[stubKey(&edges[i])] = append(buckets[stubKey(&edges[i])], i)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		members := buckets[k]
		if len(members) < 2 {
			continue
		}

		n := len(edges[members[0]].ControlPoints)
		for p := 1; p < n-1; p++ {
			var sum geom.Point
			for _, i := range members {
				sum = sum.Add(edges[i].ControlPoints[p])
			}
			avg := sum.Scale(1 / float64(len(members)))
			for _, i := range members {
				pts := edges[i].ControlPoints
				pts[p] = pts[p].Lerp(avg, s.strength)
			}
		}
	}
}

// stubKey buckets an edge by source node and 45 degree departure sector.
func stubKey(edge *BundledEdge) string {
	v := edge.TargetPos.Sub(edge.SourcePos)
	sector := int(math.Round(math.Atan2(v.Y, v.X)/(math.Pi/4))) * 45
	return edge.Edge.Source + "_" + strconv.Itoa(sector)
}
