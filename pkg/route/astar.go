package route

import (
	"container/heap"
)

// gridPoint is a cell coordinate used during search.
type gridPoint struct {
	X, Y int
}

// searchNode is a state in the A* search.
type searchNode struct {
	point     gridPoint
	gCost     float64 // Cost from start
	hCost     float64 // Heuristic cost to goal
	fCost     float64 // gCost + hCost
	parent    *searchNode
	direction gridPoint // Step that entered this node; zero for the start
	index     int       // Index in the heap
}

// nodeQueue is a priority queue over search nodes ordered by fCost.
type nodeQueue []*searchNode

func (nq nodeQueue) Len() int { return len(nq) }

func (nq nodeQueue) Less(i, j int) bool {
	if nq[i].fCost != nq[j].fCost {
		return nq[i].fCost < nq[j].fCost
	}
	// Tie-break toward the goal for determinism and fewer expansions.
	return nq[i].hCost < nq[j].hCost
}

func (nq nodeQueue) Swap(i, j int) {
	nq[i], nq[j] = nq[j], nq[i]
	nq[i].index = i
	nq[j].index = j
}

func (nq *nodeQueue) Push(x any) {
	n := len(*nq)
	node := x.(*searchNode)
	node.index = n
	*nq = append(*nq, node)
}

func (nq *nodeQueue) Pop() any {
	old := *nq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*nq = old[0 : n-1]
	return node
}

var cardinal = [4]gridPoint{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}

// findPath runs A* on the grid between two cells. Movement costs 1 per step
// plus bendPenalty whenever the direction changes versus the previous step.
// The heuristic is Manhattan distance, admissible for that cost model's
// distance component.
//
// The returned expanded count is the number of nodes popped from the open
// set; ok is false when no path exists or the maxExpanded budget ran out.
func findPath(g *Grid, start, end gridPoint, bendPenalty float64, maxExpanded int) (path []gridPoint, expanded int, ok bool) {
	if start == end {
		return []gridPoint{start}, 0, true
	}

	openSet := &nodeQueue{}
	heap.Init(openSet)
	closed := make(map[gridPoint]bool)
	nodes := make(map[gridPoint]*searchNode)

	startNode := &searchNode{
		point: start,
		hCost: manhattan(start, end),
	}
	startNode.fCost = startNode.hCost
	heap.Push(openSet, startNode)
	nodes[start] = startNode

	for openSet.Len() > 0 {
		expanded++
		if expanded > maxExpanded {
			return nil, expanded, false
		}

		current := heap.Pop(openSet).(*searchNode)
		if current.point == end {
			return reconstruct(current), expanded, true
		}
		closed[current.point] = true

		for _, d := range cardinal {
			next := gridPoint{current.point.X + d.X, current.point.Y + d.Y}
			if closed[next] || g.Blocked(next.X, next.Y) {
				continue
			}

			moveCost := 1.0
			if current.parent != nil && current.direction != d {
				moveCost += bendPenalty
			}
			tentative := current.gCost + moveCost

			existing, seen := nodes[next]
			if !seen {
				node := &searchNode{
					point:     next,
					gCost:     tentative,
					hCost:     manhattan(next, end),
					parent:    current,
					direction: d,
				}
				node.fCost = node.gCost + node.hCost
				heap.Push(openSet, node)
				nodes[next] = node
			} else if tentative < existing.gCost {
				existing.gCost = tentative
				existing.fCost = existing.gCost + existing.hCost
				existing.parent = current
				existing.direction = d
				heap.Fix(openSet, existing.index)
			}
		}
	}

	return nil, expanded, false
}

func manhattan(a, b gridPoint) float64 {
	return float64(absInt(a.X-b.X) + absInt(a.Y-b.Y))
}

// reconstruct walks parents back to the start and collapses collinear runs so
// only bend points and endpoints remain.
func reconstruct(goal *searchNode) []gridPoint {
	var path []gridPoint
	for n := goal; n != nil; n = n.parent {
		path = append(path, n.point)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return simplify(path)
}

// simplify removes intermediate points on straight runs.
func simplify(path []gridPoint) []gridPoint {
	if len(path) <= 2 {
		return path
	}
	simplified := []gridPoint{path[0]}
	for i := 1; i < len(path)-1; i++ {
		prev, curr, next := path[i-1], path[i], path[i+1]
		dir1 := gridPoint{curr.X - prev.X, curr.Y - prev.Y}
		dir2 := gridPoint{next.X - curr.X, next.Y - curr.Y}
		if dir1 != dir2 {
			simplified = append(simplified, curr)
		}
	}
	return append(simplified, path[len(path)-1])
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
