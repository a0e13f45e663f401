package style

import (
	"fmt"

	"github.com/viralify/edgecraft/pkg/diagram"
)

func scoreKey(edge diagram.Edge) string {
	return edge.Source + "_" + edge.Target
}

// score computes raw importance scores for every edge under the configured
// metric. Warnings report degraded scoring, currently only cyclic graphs
// under the criticality metric.
func (s *Styler) score(d *diagram.Diagram) (map[string]float64, []string) {
	switch s.cfg.Metric {
	case MetricWeight:
		return scoreByWeight(d), nil
	case MetricFrequency:
		return scoreByFrequency(d), nil
	case MetricCentrality:
		return scoreByCentrality(d), nil
	case MetricCriticality:
		return scoreByCriticality(d)
	case MetricCustom:
		scores := make(map[string]float64, len(d.Edges))
		for _, edge := range d.Edges {
			scores[scoreKey(edge)] = s.cfg.CustomScorer(edge, d)
		}
		return scores, nil
	}
	return nil, nil
}

// scoreByWeight uses each edge's weight, defaulting to 1.
func scoreByWeight(d *diagram.Diagram) map[string]float64 {
	scores := make(map[string]float64, len(d.Edges))
	for _, edge := range d.Edges {
		w := edge.Weight
		if w == 0 {
			w = 1
		}
		scores[scoreKey(edge)] = w
	}
	return scores
}

// scoreByFrequency scores each edge by how many edges connect the same
// source-type/target-type pair.
func scoreByFrequency(d *diagram.Diagram) map[string]float64 {
	nodeTypes := make(map[string]string, len(d.Nodes))
	for i := range d.Nodes {
		t := d.Nodes[i].Type
		if t == "" {
			t = "default"
		}
		nodeTypes[d.Nodes[i].ID] = t
	}

	nodeType := func(id string) string {
		if t, ok := nodeTypes[id]; ok {
			return t
		}
		return "default"
	}

	type typePair struct{ src, tgt string }
	counts := make(map[typePair]int)
	for _, edge := range d.Edges {
		counts[typePair{nodeType(edge.Source), nodeType(edge.Target)}]++
	}

	scores := make(map[string]float64, len(d.Edges))
	for _, edge := range d.Edges {
		pair := typePair{nodeType(edge.Source), nodeType(edge.Target)}
		scores[scoreKey(edge)] = float64(counts[pair])
	}
	return scores
}

// scoreByCentrality averages the source's out-degree and the target's
// in-degree.
func scoreByCentrality(d *diagram.Diagram) map[string]float64 {
	inDegree := make(map[string]int)
	outDegree := make(map[string]int)
	for _, edge := range d.Edges {
		outDegree[edge.Source]++
		inDegree[edge.Target]++
	}

	scores := make(map[string]float64, len(d.Edges))
	for _, edge := range d.Edges {
		scores[scoreKey(edge)] = float64(outDegree[edge.Source]+inDegree[edge.Target]) / 2
	}
	return scores
}

// scoreByCriticality scores edges by the longest downstream path reachable
// through their target, so edges feeding long dependency chains score high.
// Cyclic graphs cannot rank paths; they degrade to uniform scores with a
// warning.
func scoreByCriticality(d *diagram.Diagram) (map[string]float64, []string) {
	scores := make(map[string]float64, len(d.Edges))
	for _, edge := range d.Edges {
		scores[scoreKey(edge)] = 1
	}

	adj := make(map[string][]string)
	for _, edge := range d.Edges {
		adj[edge.Source] = append(adj[edge.Source], edge.Target)
	}

	if cycle := detectCycle(adj); cycle != "" {
		return scores, []string{
			fmt.Sprintf("criticality scoring degraded to uniform: cycle through %s", cycle),
		}
	}

	memo := make(map[string]float64)
	var longest func(node string) float64
	longest = func(node string) float64 {
		if length, ok := memo[node]; ok {
			return length
		}
		best := 0.0
		for _, next := range adj[node] {
			best = max(best, 1+longest(next))
		}
		memo[node] = best
		return best
	}

	targets := make(map[string]struct{}, len(d.Edges))
	for _, edge := range d.Edges {
		targets[edge.Target] = struct{}{}
	}
	for i := range d.Nodes {
		if _, isTarget := targets[d.Nodes[i].ID]; !isTarget {
			longest(d.Nodes[i].ID)
		}
	}

	for _, edge := range d.Edges {
		if length, ok := memo[edge.Target]; ok {
			key := scoreKey(edge)
			scores[key] = max(scores[key], length)
		}
	}
	return scores, nil
}

// dfs coloring states
const (
	white = iota // unvisited
	gray         // on the current path
	black        // fully explored
)

// detectCycle runs a three-color DFS over the adjacency list and returns a
// node on some cycle, or "" when the graph is acyclic.
func detectCycle(adj map[string][]string) string {
	colors := make(map[string]int, len(adj))

	var visit func(node string) string
	visit = func(node string) string {
		colors[node] = gray
		for _, next := range adj[node] {
			switch colors[next] {
			case gray:
				return next
			case white:
				if hit := visit(next); hit != "" {
					return hit
				}
			}
		}
		colors[node] = black
		return ""
	}

	for node := range adj {
		if colors[node] == white {
			if hit := visit(node); hit != "" {
				return hit
			}
		}
	}
	return ""
}

// normalize min-max scales scores into [0,1]. Uniform inputs map to 0.5.
func normalize(scores map[string]float64) map[string]float64 {
	if len(scores) == 0 {
		return nil
	}

	lo, hi := scores[firstKey(scores)], scores[firstKey(scores)]
	for _, v := range scores {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	normalized := make(map[string]float64, len(scores))
	if hi == lo {
		for k := range scores {
			normalized[k] = 0.5
		}
		return normalized
	}
	for k, v := range scores {
		normalized[k] = (v - lo) / (hi - lo)
	}
	return normalized
}

func firstKey(m map[string]float64) string {
	for k := range m {
		return k
	}
	return ""
}
