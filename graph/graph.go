// Package graph holds the routing graph data model: nodes,
// edges, and the graph itself. Edges carry stop identifiers rather than
// node references, and nodes are resolved from the graph's node map on
// demand, collapsing the node/edge cyclic reference into identifier +
// lookup.
package graph

import (
	"time"

	"github.com/sakhatransit/routeengine/dataset"
)

// Node is a routing graph vertex: a resolved view of a Stop.
type Node struct {
	ID          string
	Name        string
	HasCoords   bool
	Latitude    float64
	Longitude   float64
	CityKey     string
}

// Segment describes the route leg an edge represents.
type Segment struct {
	SegmentID       string
	RouteID         string
	TransportKind   dataset.TransportKind
	HasDistance     bool
	DistanceMeters  float64
	HasDuration     bool
	DurationMinutes float64
	HasBasePrice    bool
	BasePrice       float64
}

// Edge is a directed traversal from FromStopID to ToStopID. Weight is
// always a finite number > 0 once the edge is part of a published graph;
// Flights is the ordered list of trip instances traversing this edge.
type Edge struct {
	FromStopID string
	ToStopID   string
	Segment    Segment
	Weight     float64
	Flights    []dataset.Flight
}

// Graph is the directed weighted multigraph over stop identifiers.
// Nodes is keyed by stop id; Adjacency maps a stop id to its ordered list of
// outgoing edges, preserving insertion order (used by the Path Finder's
// tie-break rule).
type Graph struct {
	Nodes     map[string]Node
	Adjacency map[string][]Edge
}

// New returns an empty graph ready for incremental construction.
func New() *Graph {
	return &Graph{
		Nodes:     make(map[string]Node),
		Adjacency: make(map[string][]Edge),
	}
}

// AddNode inserts or replaces a node, ensuring an adjacency entry exists for
// it, so the adjacency map and node map always use identical keys.
func (g *Graph) AddNode(n Node) {
	g.Nodes[n.ID] = n
	if _, ok := g.Adjacency[n.ID]; !ok {
		g.Adjacency[n.ID] = nil
	}
}

// AddEdge appends e to the adjacency list of e.FromStopID. Callers must have
// already added both endpoints as nodes; Graph itself does not enforce that
// at insertion time so the builder can run its own ordered validation pass.
func (g *Graph) AddEdge(e Edge) {
	g.Adjacency[e.FromStopID] = append(g.Adjacency[e.FromStopID], e)
}

// HasNode reports whether id is a node in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.Nodes[id]
	return ok
}

// Edges returns the outgoing edges of a node in insertion order.
func (g *Graph) Edges(id string) []Edge {
	return g.Adjacency[id]
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// EdgeCount returns the total number of edges across all adjacency lists.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, edges := range g.Adjacency {
		total += len(edges)
	}
	return total
}

// Metadata describes a published graph snapshot.
type Metadata struct {
	NodeCount      int
	EdgeCount      int
	BuildTimestamp time.Time
	DatasetVersion string
	Active         bool
}
