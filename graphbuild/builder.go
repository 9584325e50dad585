// Package graphbuild implements the Graph Builder: materializing a
// directed weighted graph from an active Dataset, enforcing the weight
// cascade and the graph invariants before the result may be published.
package graphbuild

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/sakhatransit/routeengine/city"
	"github.com/sakhatransit/routeengine/dataset"
	"github.com/sakhatransit/routeengine/graph"
	"github.com/sakhatransit/routeengine/logging"
)

// maxTripDurationMinutes discards trip durations that are clearly
// corrupted data rather than a real schedule.
const maxTripDurationMinutes = 10000

// virtualFallbackWeight is the last resort in the weight cascade.
const virtualFallbackWeight = 60.0

// Result bundles the freshly built graph with its build metadata.
type Result struct {
	Graph    *graph.Graph
	Metadata graph.Metadata
}

// Builder constructs a Graph from a Dataset.
type Builder struct {
	log *logrus.Entry
}

// New returns a Builder.
func New() *Builder {
	return &Builder{log: logging.ForModule("graphbuild")}
}

// Build runs the full build pipeline: node insertion, edge weighting,
// synchronize/validate, and the final weight audit. An invariant violation
// that survives one synchronize-and-revalidate retry is fatal (returns an
// error); the caller (the graph-build Worker) must leave the previously published
// graph active in that case.
func (b *Builder) Build(ds dataset.Dataset) (Result, error) {
	g := graph.New()

	for _, s := range ds.Stops {
		if !b.stableVirtualID(s) {
			b.log.WithField("stop_id", s.ID).Warn("dropping virtual stop with non-canonical id")
			continue
		}
		g.AddNode(graph.Node{
			ID:        s.ID,
			Name:      s.Name,
			HasCoords: s.HasCoords,
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			CityKey:   s.CityKey,
		})
	}

	for _, r := range ds.Routes {
		b.addRouteEdges(g, ds, r)
	}

	if err := b.synchronizeAndValidate(g); err != nil {
		return Result{}, err
	}

	if err := b.weightAudit(g); err != nil {
		return Result{}, err
	}

	return Result{
		Graph: g,
		Metadata: graph.Metadata{
			NodeCount:      g.NodeCount(),
			EdgeCount:      g.EdgeCount(),
			DatasetVersion: ds.Version,
		},
	}, nil
}

// stableVirtualID is the virtual-id stability check: real stops always
// pass; a virtual stop must carry the id that is the pure function of its
// own city key.
func (b *Builder) stableVirtualID(s dataset.Stop) bool {
	if !s.Virtual {
		return true
	}
	return s.ID == city.VirtualStopID(s.CityKey)
}

func (b *Builder) addRouteEdges(g *graph.Graph, ds dataset.Dataset, r dataset.Route) {
	if len(r.StopIDs) < 2 {
		return
	}
	for i := 0; i < len(r.StopIDs)-1; i++ {
		from, to := r.StopIDs[i], r.StopIDs[i+1]

		if !g.HasNode(from) || !g.HasNode(to) {
			continue
		}

		flights := ds.FlightsForEdge(from, to, r.ID)
		weight, ok := b.edgeWeight(r, flights)
		if !ok {
			b.log.WithField("route_id", r.ID).WithField("from", from).WithField("to", to).
				Error("skipping edge: no finite positive weight")
			continue
		}

		g.AddEdge(graph.Edge{
			FromStopID: from,
			ToStopID:   to,
			Segment: graph.Segment{
				SegmentID:       fmt.Sprintf("%s-%s-%s", r.ID, from, to),
				RouteID:         r.ID,
				TransportKind:   r.Kind,
				HasDistance:     r.HasDistance,
				DistanceMeters:  r.DistanceMeters,
				HasDuration:     r.HasEstimatedDuration,
				DurationMinutes: r.EstimatedDurationMinutes,
				HasBasePrice:    r.BaseFare > 0,
				BasePrice:       r.BaseFare,
			},
			Weight:  weight,
			Flights: flights,
		})
	}
}

// edgeWeight runs the weight cascade, taking the first
// rule that yields a finite positive number.
func (b *Builder) edgeWeight(r dataset.Route, flights []dataset.Flight) (float64, bool) {
	if w, ok := minTripDurationWeight(flights); ok {
		return w, true
	}
	if r.HasEstimatedDuration && r.EstimatedDurationMinutes > 0 {
		return r.EstimatedDurationMinutes, true
	}
	if r.BaseFare > 0 {
		w := math.Round(r.BaseFare / 1000 * 60)
		if w < 1 {
			w = 1
		}
		return w, true
	}
	return virtualFallbackWeight, true
}

func minTripDurationWeight(flights []dataset.Flight) (float64, bool) {
	best := math.Inf(1)
	found := false
	for _, f := range flights {
		minutes := f.Arrival.Sub(f.Departure).Minutes()
		if math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes < 0 || minutes >= maxTripDurationMinutes {
			continue
		}
		if minutes < best {
			best = minutes
		}
		found = true
	}
	if !found || best <= 0 {
		return 0, false
	}
	return best, true
}

// synchronizeAndValidate runs synchronize (drop adjacency
// entries pointing at missing nodes), then validate, which checks that
// adjacency keys and nodes match, every edge endpoint exists, and every
// weight is finite and positive. It does not check that every route pair
// produced an edge or that virtual routes have a reverse edge. On
// failure it retries once; a second failure is fatal.
func (b *Builder) synchronizeAndValidate(g *graph.Graph) error {
	synchronize(g)
	if err := validate(g); err == nil {
		return nil
	}

	synchronize(g)
	if err := validate(g); err != nil {
		return fmt.Errorf("graph invariant violation after retry: %w", err)
	}
	return nil
}

func synchronize(g *graph.Graph) {
	for id, edges := range g.Adjacency {
		kept := edges[:0:0]
		for _, e := range edges {
			if g.HasNode(e.FromStopID) && g.HasNode(e.ToStopID) {
				kept = append(kept, e)
			}
		}
		g.Adjacency[id] = kept
	}
}

// validate asserts the graph invariants: every adjacency key has a node,
// every edge endpoint resolves, and every weight is finite and positive.
func validate(g *graph.Graph) error {
	for id, edges := range g.Adjacency {
		if !g.HasNode(id) {
			return fmt.Errorf("adjacency key %q has no matching node", id)
		}
		for _, e := range edges {
			if !g.HasNode(e.FromStopID) {
				return fmt.Errorf("edge references missing from-node %q", e.FromStopID)
			}
			if !g.HasNode(e.ToStopID) {
				return fmt.Errorf("edge references missing to-node %q", e.ToStopID)
			}
			if !finitePositive(e.Weight) {
				return fmt.Errorf("edge %s->%s has non-finite-positive weight %v", e.FromStopID, e.ToStopID, e.Weight)
			}
		}
	}
	for id := range g.Nodes {
		if _, ok := g.Adjacency[id]; !ok {
			return fmt.Errorf("node %q has no adjacency entry", id)
		}
	}
	return nil
}

// weightAudit fails the build if any edge weight is
// not a finite number > 0.
func (b *Builder) weightAudit(g *graph.Graph) error {
	for _, edges := range g.Adjacency {
		for _, e := range edges {
			if !finitePositive(e.Weight) {
				return fmt.Errorf("weight audit failed: edge %s->%s has weight %v", e.FromStopID, e.ToStopID, e.Weight)
			}
		}
	}
	return nil
}

func finitePositive(w float64) bool {
	return !math.IsNaN(w) && !math.IsInf(w, 0) && w > 0
}
