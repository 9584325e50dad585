// Package itinerary implements the Itinerary Assembler: mapping a path
// of graph edges to a timed itinerary using the available flights and
// the requested travel date.
package itinerary

import (
	"time"

	"github.com/sakhatransit/routeengine/dataset"
	"github.com/sakhatransit/routeengine/graph"
)

// SegmentDetail is one leg of an assembled itinerary.
type SegmentDetail struct {
	Segment         graph.Segment
	Flight          dataset.Flight
	Departure       time.Time
	Arrival         time.Time
	DurationMinutes float64
	Price           float64
	TransferMinutes float64
}

// Itinerary is a timed, priced sequence of segments realizing a path in the
// graph.
type Itinerary struct {
	OriginCity      string
	DestinationCity string
	Date            time.Time
	Passengers      int
	Segments        []SegmentDetail

	TotalDurationMinutes float64
	TotalPrice           float64
	TransferCount        int
	TransportTypes       map[dataset.TransportKind]struct{}

	Departure time.Time
	Arrival   time.Time
}

// HasTransportKind reports whether the itinerary includes a leg of the
// given transport kind.
func (it Itinerary) HasTransportKind(k dataset.TransportKind) bool {
	_, ok := it.TransportTypes[k]
	return ok
}
