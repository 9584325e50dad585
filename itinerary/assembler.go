package itinerary

import (
	"time"

	"github.com/sakhatransit/routeengine/dataset"
	"github.com/sakhatransit/routeengine/graph"
)

// Assembler walks a path of edges and materializes a timed Itinerary.
type Assembler struct {
	// now is substituted for time.Now in tests; nil means use the real clock.
	now func() time.Time
}

// New returns an Assembler using the real wall clock.
func New() *Assembler {
	return &Assembler{now: time.Now}
}

// Assemble builds an Itinerary from an ordered path of edges. It returns
// (Itinerary{}, false) if any segment along the path has no flights at
// all.
func (a *Assembler) Assemble(originCity, destinationCity string, edges []graph.Edge, requestedDate time.Time, passengers int) (Itinerary, bool) {
	if passengers < 1 {
		passengers = 1
	}

	cursor := startOfDayOrNow(requestedDate, a.clock())

	it := Itinerary{
		OriginCity:      originCity,
		DestinationCity: destinationCity,
		Date:            requestedDate,
		Passengers:      passengers,
		TransportTypes:  make(map[dataset.TransportKind]struct{}),
	}

	for i, e := range edges {
		if len(e.Flights) == 0 {
			return Itinerary{}, false
		}

		flight := selectFlight(e.Flights, cursor)

		transfer := 0.0
		if i > 0 {
			transfer = maxFloat(0, flight.Departure.Sub(cursor).Minutes())
		}

		duration := flight.Arrival.Sub(flight.Departure).Minutes()
		price := flight.Price * float64(passengers)

		it.Segments = append(it.Segments, SegmentDetail{
			Segment:         e.Segment,
			Flight:          flight,
			Departure:       flight.Departure,
			Arrival:         flight.Arrival,
			DurationMinutes: duration,
			Price:           price,
			TransferMinutes: transfer,
		})

		it.TotalDurationMinutes += duration + transfer
		it.TotalPrice += price
		if transfer > 0 {
			it.TransferCount++
		}
		it.TransportTypes[e.Segment.TransportKind] = struct{}{}

		cursor = flight.Arrival
	}

	if len(it.Segments) > 0 {
		it.Departure = it.Segments[0].Departure
		it.Arrival = it.Segments[len(it.Segments)-1].Arrival
	}

	return it, true
}

func (a *Assembler) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}

// startOfDayOrNow returns the start of the requested date, falling back to
// "now" if the date is missing or unparseable (zero value).
func startOfDayOrNow(requested time.Time, now time.Time) time.Time {
	if requested.IsZero() {
		return now
	}
	return time.Date(requested.Year(), requested.Month(), requested.Day(), 0, 0, 0, 0, requested.Location())
}

// selectFlight implements the flight-selection cascade:
//  1. the earliest flight whose departure >= cursor and has seats
//  2. else the earliest future flight regardless of seats
//  3. else the globally earliest flight with seats
//  4. else the globally earliest flight
//
// The goal is always a best-effort timed itinerary, never a hard failure
// solely because the requested date has no exact match.
func selectFlight(flights []dataset.Flight, cursor time.Time) dataset.Flight {
	var bestFutureWithSeats *dataset.Flight
	var bestFuture *dataset.Flight
	var bestWithSeats *dataset.Flight
	var bestOverall *dataset.Flight

	for i := range flights {
		f := &flights[i]

		if bestOverall == nil || f.Departure.Before(bestOverall.Departure) {
			bestOverall = f
		}
		if f.AvailableSeats > 0 && (bestWithSeats == nil || f.Departure.Before(bestWithSeats.Departure)) {
			bestWithSeats = f
		}
		if !f.Departure.Before(cursor) {
			if bestFuture == nil || f.Departure.Before(bestFuture.Departure) {
				bestFuture = f
			}
			if f.AvailableSeats > 0 && (bestFutureWithSeats == nil || f.Departure.Before(bestFutureWithSeats.Departure)) {
				bestFutureWithSeats = f
			}
		}
	}

	switch {
	case bestFutureWithSeats != nil:
		return *bestFutureWithSeats
	case bestFuture != nil:
		return *bestFuture
	case bestWithSeats != nil:
		return *bestWithSeats
	default:
		return *bestOverall
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
