// Package pathfinder implements the Path Finder: single-source shortest
// path by Dijkstra over the active graph, plus a bounded
// all-simple-paths search used for alternative itineraries.
package pathfinder

import (
	"container/heap"
	"math"

	"github.com/sakhatransit/routeengine/graph"
)

// Result is a shortest path as an ordered list of traversed edges, plus its
// total weight (the sum of the edge weights; duration and price are computed
// downstream by the Itinerary Assembler).
type Result struct {
	Edges       []graph.Edge
	TotalWeight float64
	Found       bool
}

// ShortestPath runs Dijkstra from origin to destination. If either id is
// absent from the graph, it returns a not-found Result rather than an
// error: callers treat an unmatched endpoint as an empty result.
func ShortestPath(g *graph.Graph, originID, destinationID string) Result {
	if g == nil || !g.HasNode(originID) || !g.HasNode(destinationID) {
		return Result{Found: false}
	}
	if originID == destinationID {
		return Result{Found: true, Edges: nil, TotalWeight: 0}
	}

	dist := make(map[string]float64, len(g.Nodes))
	visited := make(map[string]bool, len(g.Nodes))
	prevEdge := make(map[string]*graph.Edge)

	for id := range g.Nodes {
		dist[id] = math.Inf(1)
	}
	dist[originID] = 0

	pq := &priorityQueue{}
	heap.Init(pq)
	heap.Push(pq, &pqItem{id: originID, dist: 0})

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*pqItem)
		u := item.id

		if visited[u] {
			continue
		}
		if item.dist > dist[u] {
			continue
		}
		visited[u] = true

		if u == destinationID {
			break
		}

		for i := range g.Adjacency[u] {
			e := g.Adjacency[u][i]
			if visited[e.ToStopID] {
				continue
			}
			candidate := dist[u] + e.Weight
			if candidate < dist[e.ToStopID] {
				dist[e.ToStopID] = candidate
				edgeCopy := e
				prevEdge[e.ToStopID] = &edgeCopy
				heap.Push(pq, &pqItem{id: e.ToStopID, dist: candidate})
			}
			// Equal-distance ties keep the edge discovered first: since
			// insertion order is preserved in g.Adjacency[u] and this loop
			// only overwrites prevEdge on strict improvement, the first
			// edge seen for a given distance wins.
		}
	}

	if !visited[destinationID] {
		return Result{Found: false}
	}

	return Result{
		Edges:       reconstruct(prevEdge, originID, destinationID),
		TotalWeight: dist[destinationID],
		Found:       true,
	}
}

func reconstruct(prevEdge map[string]*graph.Edge, originID, destinationID string) []graph.Edge {
	var edges []graph.Edge
	cur := destinationID
	for cur != originID {
		e, ok := prevEdge[cur]
		if !ok {
			return nil
		}
		edges = append(edges, *e)
		cur = e.FromStopID
	}
	reverse(edges)
	return edges
}

func reverse(edges []graph.Edge) {
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}
}

type pqItem struct {
	id   string
	dist float64
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].dist < pq[j].dist
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(*pqItem))
}
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
