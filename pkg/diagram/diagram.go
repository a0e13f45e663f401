// Package diagram defines the positioned-graph input contract consumed by
// every edge-geometry component.
//
// A Diagram is a snapshot produced by an upstream layout engine: nodes with
// fixed positions and sizes, directed edges referencing node IDs, and optional
// cluster membership. This package treats the snapshot as read-only input;
// the planner, router, bundler, aggregator, and styler each derive their own
// output collections from it without mutating it.
//
// # Serialization
//
// Diagrams round-trip through JSON via [Read], [Write], [Marshal], and
// [Unmarshal]. The format is the canonical exchange contract with layout
// collaborators: import → process → export preserves all input fields.
package diagram

import (
	"errors"

	"github.com/viralify/edgecraft/pkg/geom"
)

var (
	// ErrInvalidNodeID is returned by [Diagram.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Diagram.AddNode] when a node with the
	// same ID already exists. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownEndpoint is returned by [Diagram.Validate] when an edge
	// references a node that does not exist in the diagram.
	ErrUnknownEndpoint = errors.New("edge references unknown node")
)

// Node is a positioned vertex. Position is the top-left corner of the node's
// bounding box, matching the coordinate convention of the layout contract.
type Node struct {
	ID       string         `json:"id"`
	Label    string         `json:"label,omitempty"`
	Type     string         `json:"type,omitempty"` // Categorization for frequency scoring
	Position geom.Point     `json:"position"`
	Size     geom.Size      `json:"size"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// Center returns the node's center point.
func (n *Node) Center() geom.Point {
	return geom.Point{X: n.Position.X + n.Size.Width/2, Y: n.Position.Y + n.Size.Height/2}
}

// Bounds returns the node's bounding rectangle.
func (n *Node) Bounds() geom.Rect {
	return geom.Rect{Min: n.Position, Size: n.Size}
}

// Edge is a directed connection between two nodes, referenced by ID.
// Weight defaults to zero; styling treats absent weights uniformly.
type Edge struct {
	ID     string         `json:"id,omitempty"`
	Source string         `json:"source"`
	Target string         `json:"target"`
	Label  string         `json:"label,omitempty"`
	Type   string         `json:"type,omitempty"`
	Weight float64        `json:"weight,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// Key returns a stable identifier for the edge: the explicit ID when set,
// otherwise "source→target". Components index per-edge results by this key.
func (e *Edge) Key() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Source + "→" + e.Target
}

// Cluster is a group of nodes with its own positioned bounding box.
// Only aggregation and hierarchical bundling consume clusters.
type Cluster struct {
	ID       string     `json:"id"`
	Label    string     `json:"label,omitempty"`
	Nodes    []string   `json:"nodes"`
	Position geom.Point `json:"position"`
	Size     geom.Size  `json:"size"`
}

// Center returns the cluster's center point.
func (c *Cluster) Center() geom.Point {
	return geom.Point{X: c.Position.X + c.Size.Width/2, Y: c.Position.Y + c.Size.Height/2}
}

// Bounds returns the cluster's bounding rectangle.
func (c *Cluster) Bounds() geom.Rect {
	return geom.Rect{Min: c.Position, Size: c.Size}
}

// Diagram is a positioned graph snapshot.
//
// The zero value is usable but empty; use [New] when building
// programmatically so the node index is initialized.
type Diagram struct {
	Title    string    `json:"title,omitempty"`
	Nodes    []Node    `json:"nodes"`
	Edges    []Edge    `json:"edges"`
	Clusters []Cluster `json:"clusters,omitempty"`

	nodeIndex map[string]int
}

// New creates an empty diagram with an initialized node index.
func New(title string) *Diagram {
	return &Diagram{Title: title, nodeIndex: make(map[string]int)}
}

// AddNode appends a node and indexes it by ID.
// Returns ErrInvalidNodeID for empty IDs or ErrDuplicateNodeID on collision.
func (d *Diagram) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.Node(n.ID); exists {
		return ErrDuplicateNodeID
	}
	d.Nodes = append(d.Nodes, n)
	if d.nodeIndex == nil {
		d.nodeIndex = make(map[string]int)
	}
	d.nodeIndex[n.ID] = len(d.Nodes) - 1
	return nil
}

// AddEdge appends an edge. Endpoint existence is not checked here so graphs
// can be assembled in any order; use Validate before processing.
func (d *Diagram) AddEdge(e Edge) {
	d.Edges = append(d.Edges, e)
}

// AddCluster appends a cluster.
func (d *Diagram) AddCluster(c Cluster) {
	d.Clusters = append(d.Clusters, c)
}

// Node returns the node with the given ID, or false if absent.
// The returned pointer refers into the diagram's node slice, so it stays
// valid across appends and sees later mutations of the slice.
func (d *Diagram) Node(id string) (*Node, bool) {
	if d.nodeIndex == nil || len(d.nodeIndex) != len(d.Nodes) {
		d.reindex()
	}
	i, ok := d.nodeIndex[id]
	if !ok {
		return nil, false
	}
	return &d.Nodes[i], true
}

// reindex rebuilds the ID lookup. Called lazily so diagrams decoded from
// JSON (which bypasses AddNode) still resolve nodes.
func (d *Diagram) reindex() {
	d.nodeIndex = make(map[string]int, len(d.Nodes))
	for i := range d.Nodes {
		d.nodeIndex[d.Nodes[i].ID] = i
	}
}

// ClusterOf returns the ID of the cluster containing the node, or false if
// the node is unclustered. When clusters overlap the first match wins.
func (d *Diagram) ClusterOf(nodeID string) (string, bool) {
	for i := range d.Clusters {
		for _, id := range d.Clusters[i].Nodes {
			if id == nodeID {
				return d.Clusters[i].ID, true
			}
		}
	}
	return "", false
}

// Bounds returns the union of all node and cluster bounding boxes.
// Returns a zero Rect for an empty diagram.
func (d *Diagram) Bounds() geom.Rect {
	var r geom.Rect
	first := true
	for i := range d.Nodes {
		if first {
			r = d.Nodes[i].Bounds()
			first = false
			continue
		}
		r = r.Union(d.Nodes[i].Bounds())
	}
	for i := range d.Clusters {
		if first {
			r = d.Clusters[i].Bounds()
			first = false
			continue
		}
		r = r.Union(d.Clusters[i].Bounds())
	}
	return r
}

// Centroid returns the average of all node centers.
// Returns the zero point for diagrams without nodes.
func (d *Diagram) Centroid() geom.Point {
	if len(d.Nodes) == 0 {
		return geom.Point{}
	}
	var sum geom.Point
	for i := range d.Nodes {
		sum = sum.Add(d.Nodes[i].Center())
	}
	return sum.Scale(1 / float64(len(d.Nodes)))
}

// Validate checks that every edge references existing nodes.
// Dangling edges are recoverable at the component level (they are skipped
// and counted), so Validate is optional — it exists for callers that want
// to reject malformed input up front.
func (d *Diagram) Validate() error {
	for i := range d.Edges {
		if _, ok := d.Node(d.Edges[i].Source); !ok {
			return ErrUnknownEndpoint
		}
		if _, ok := d.Node(d.Edges[i].Target); !ok {
			return ErrUnknownEndpoint
		}
	}
	return nil
}
