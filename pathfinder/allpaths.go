package pathfinder

import "github.com/sakhatransit/routeengine/graph"

// FindAllPaths performs a bounded depth-first search for all simple paths
// from originID to destinationID, sorted by ascending total weight.
// It is used for diagnostics and for materializing alternative itineraries
// alongside the Dijkstra primary path.
func FindAllPaths(g *graph.Graph, originID, destinationID string, maxDepth int) []Result {
	if g == nil || !g.HasNode(originID) || !g.HasNode(destinationID) {
		return nil
	}

	var results []Result
	visited := map[string]bool{originID: true}
	var path []graph.Edge

	var dfs func(current string, depth int, weight float64)
	dfs = func(current string, depth int, weight float64) {
		if current == destinationID && len(path) > 0 {
			pathCopy := make([]graph.Edge, len(path))
			copy(pathCopy, path)
			results = append(results, Result{Edges: pathCopy, TotalWeight: weight, Found: true})
			return
		}
		if depth >= maxDepth {
			return
		}
		for _, e := range g.Adjacency[current] {
			if visited[e.ToStopID] {
				continue
			}
			visited[e.ToStopID] = true
			path = append(path, e)

			dfs(e.ToStopID, depth+1, weight+e.Weight)

			path = path[:len(path)-1]
			visited[e.ToStopID] = false
		}
	}

	dfs(originID, 0, 0)
	sortByWeight(results)
	return results
}

func sortByWeight(results []Result) {
	for i := 1; i < len(results); i++ {
		j := i
		for j > 0 && results[j-1].TotalWeight > results[j].TotalWeight {
			results[j-1], results[j] = results[j], results[j-1]
			j--
		}
	}
}
