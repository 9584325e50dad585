package httpapi

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/sakhatransit/routeengine/errs"
	"github.com/sakhatransit/routeengine/graph"
	"github.com/sakhatransit/routeengine/itinerary"
	"github.com/sakhatransit/routeengine/pathfinder"
	"github.com/sakhatransit/routeengine/riskfeature"
	"github.com/sakhatransit/routeengine/riskscore"
)

// maxAlternatives is the number of next-best simple paths (beyond the
// Dijkstra primary) materialized into alternative itineraries.
const maxAlternatives = 2

// alternativeSearchDepth bounds the bounded DFS feeding the alternatives,
// generous enough to find a handful of simple paths on a regional network
// without degenerating into an exhaustive search.
const alternativeSearchDepth = 6

// riskedItinerary is a routing-operation result: a timed itinerary plus its
// risk assessment.
type riskedItinerary struct {
	Itinerary itinerary.Itinerary
	Risk      riskscore.Assessment
}

type routeResponse struct {
	Origin      string              `json:"origin"`
	Destination string              `json:"destination"`
	Date        string              `json:"date"`
	Passengers  int                 `json:"passengers"`
	Itineraries []routeItineraryDTO `json:"itineraries"`
}

type routeItineraryDTO struct {
	TotalDurationMinutes float64             `json:"totalDurationMinutes"`
	TotalPrice           float64             `json:"totalPrice"`
	TransferCount        int                 `json:"transferCount"`
	TransportTypes       []string            `json:"transportTypes"`
	Departure            time.Time           `json:"departure"`
	Arrival              time.Time           `json:"arrival"`
	Segments             []segmentDTO        `json:"segments"`
	Risk                 riskscore.Assessment `json:"risk"`
}

type segmentDTO struct {
	RouteID         string    `json:"routeId"`
	TransportKind   string    `json:"transportKind"`
	FromStopID      string    `json:"fromStopId"`
	ToStopID        string    `json:"toStopId"`
	Departure       time.Time `json:"departure"`
	Arrival         time.Time `json:"arrival"`
	DurationMinutes float64   `json:"durationMinutes"`
	Price           float64   `json:"price"`
	TransferMinutes float64   `json:"transferMinutes"`
}

// handleRoute implements the routing endpoint: from, to,
// date (YYYY-MM-DD), optional passengers. It normalizes cities, resolves
// stop nodes, runs the Path Finder, assembles itineraries, and attaches a
// risk assessment to each.
func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fromRaw, toRaw := q.Get("from"), q.Get("to")
	if fromRaw == "" || toRaw == "" {
		writeError(w, http.StatusBadRequest, errs.ErrValidation)
		return
	}

	passengers := 1
	if raw := q.Get("passengers"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, errs.ErrValidation)
			return
		}
		passengers = n
	}

	now := time.Now().UTC()
	date := parseDate(q.Get("date"), now)

	originKey, originOK := s.normalizer.Accept(fromRaw)
	destKey, destOK := s.normalizer.Accept(toRaw)
	if !originOK || !destOK {
		writeJSON(w, http.StatusOK, routeResponse{
			Origin: originKey, Destination: destKey, Date: date.Format("2006-01-02"),
			Passengers: passengers, Itineraries: []routeItineraryDTO{},
		})
		return
	}

	g := s.store.Get()
	results, err := s.computeItineraries(r.Context(), g, originKey, destKey, date, passengers)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]routeItineraryDTO, 0, len(results))
	for _, ri := range results {
		dtos = append(dtos, toDTO(ri))
	}

	writeJSON(w, http.StatusOK, routeResponse{
		Origin: originKey, Destination: destKey, Date: date.Format("2006-01-02"),
		Passengers: passengers, Itineraries: dtos,
	})
}

// computeItineraries runs the routing-request data flow:
// find origin/destination nodes by city key, Dijkstra for the primary path,
// findAllPaths for up to maxAlternatives further distinct itineraries, then
// assemble and risk-score each. A city with no matching node, or a graph
// with no connecting path, yields an empty (not an error) result.
func (s *Server) computeItineraries(ctx context.Context, g *graph.Graph, originKey, destKey string, date time.Time, passengers int) ([]riskedItinerary, error) {
	if g == nil {
		return nil, nil
	}

	origins := nodesForCity(g, originKey)
	destinations := nodesForCity(g, destKey)
	if len(origins) == 0 || len(destinations) == 0 {
		return nil, nil
	}

	var paths []pathfinder.Result
	seen := map[string]bool{}

	for _, o := range origins {
		for _, d := range destinations {
			if o == d {
				continue
			}
			primary := pathfinder.ShortestPath(g, o, d)
			if primary.Found {
				addUnique(&paths, seen, primary)
			}
			for _, alt := range pathfinder.FindAllPaths(g, o, d, alternativeSearchDepth) {
				if len(paths) >= 1+maxAlternatives {
					break
				}
				addUnique(&paths, seen, alt)
			}
		}
	}

	sort.SliceStable(paths, func(i, j int) bool { return paths[i].TotalWeight < paths[j].TotalWeight })
	if len(paths) > 1+maxAlternatives {
		paths = paths[:1+maxAlternatives]
	}

	out := make([]riskedItinerary, 0, len(paths))
	for _, p := range paths {
		it, ok := s.assembler.Assemble(originKey, destKey, p.Edges, date, passengers)
		if !ok {
			continue
		}
		collected := s.collector.Collect(ctx, it)
		features := riskfeature.Build(it, collected)
		assessment := s.riskModel.Predict(features)
		out = append(out, riskedItinerary{Itinerary: it, Risk: assessment})
	}
	return out, nil
}

func addUnique(paths *[]pathfinder.Result, seen map[string]bool, r pathfinder.Result) {
	key := pathKey(r)
	if seen[key] {
		return
	}
	seen[key] = true
	*paths = append(*paths, r)
}

func pathKey(r pathfinder.Result) string {
	key := ""
	for _, e := range r.Edges {
		key += e.FromStopID + ">" + e.ToStopID + "|"
	}
	return key
}

func nodesForCity(g *graph.Graph, cityKey string) []string {
	var ids []string
	for id, n := range g.Nodes {
		if n.CityKey == cityKey {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func toDTO(ri riskedItinerary) routeItineraryDTO {
	it := ri.Itinerary
	kinds := make([]string, 0, len(it.TransportTypes))
	for k := range it.TransportTypes {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	segments := make([]segmentDTO, 0, len(it.Segments))
	for _, seg := range it.Segments {
		segments = append(segments, segmentDTO{
			RouteID:         seg.Segment.RouteID,
			TransportKind:   string(seg.Segment.TransportKind),
			FromStopID:      seg.Flight.FromStopID,
			ToStopID:        seg.Flight.ToStopID,
			Departure:       seg.Departure,
			Arrival:         seg.Arrival,
			DurationMinutes: seg.DurationMinutes,
			Price:           seg.Price,
			TransferMinutes: seg.TransferMinutes,
		})
	}

	return routeItineraryDTO{
		TotalDurationMinutes: it.TotalDurationMinutes,
		TotalPrice:           it.TotalPrice,
		TransferCount:        it.TransferCount,
		TransportTypes:       kinds,
		Departure:            it.Departure,
		Arrival:              it.Arrival,
		Segments:             segments,
		Risk:                 ri.Risk,
	}
}
