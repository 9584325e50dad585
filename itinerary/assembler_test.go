package itinerary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakhatransit/routeengine/dataset"
	"github.com/sakhatransit/routeengine/graph"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// TestAssemble_HappyPathTwoSegments: A->B
// bus 60min ₽500, B->C train 120min ₽1500, each with a daily trip at 08:00
// and 09:30, two passengers.
func TestAssemble_HappyPathTwoSegments(t *testing.T) {
	day := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	busDeparture := day.Add(8 * time.Hour)
	busArrival := busDeparture.Add(60 * time.Minute)
	trainDeparture := day.Add(9*time.Hour + 30*time.Minute)
	trainArrival := trainDeparture.Add(120 * time.Minute)

	edges := []graph.Edge{
		{
			FromStopID: "a", ToStopID: "b",
			Segment: graph.Segment{TransportKind: dataset.TransportBus},
			Flights: []dataset.Flight{
				{ID: "bus1", Departure: busDeparture, Arrival: busArrival, Price: 500, AvailableSeats: 10},
			},
		},
		{
			FromStopID: "b", ToStopID: "c",
			Segment: graph.Segment{TransportKind: dataset.TransportTrain},
			Flights: []dataset.Flight{
				{ID: "train1", Departure: trainDeparture, Arrival: trainArrival, Price: 1500, AvailableSeats: 10},
			},
		},
	}

	asm := &Assembler{now: fixedClock(day)}
	it, ok := asm.Assemble("A", "C", edges, day, 2)

	require.True(t, ok)
	require.Len(t, it.Segments, 2)
	assert.GreaterOrEqual(t, it.TotalDurationMinutes, 180.0)
	assert.Equal(t, 4000.0, it.TotalPrice)
	assert.Equal(t, 1, it.TransferCount)
	assert.True(t, it.HasTransportKind(dataset.TransportBus))
	assert.True(t, it.HasTransportKind(dataset.TransportTrain))

	for i := 1; i < len(it.Segments); i++ {
		assert.False(t, it.Segments[i].Departure.Before(it.Segments[i-1].Arrival))
	}
}

func TestAssemble_NoFlightsOnAnySegmentReturnsNothing(t *testing.T) {
	edges := []graph.Edge{
		{FromStopID: "a", ToStopID: "b", Flights: nil},
	}
	_, ok := New().Assemble("A", "B", edges, time.Now(), 1)
	assert.False(t, ok)
}

func TestAssemble_PrefersFlightWithSeats(t *testing.T) {
	day := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	edges := []graph.Edge{
		{
			FromStopID: "a", ToStopID: "b",
			Flights: []dataset.Flight{
				{ID: "full", Departure: day.Add(8 * time.Hour), Arrival: day.Add(9 * time.Hour), Price: 100, AvailableSeats: 0},
				{ID: "available", Departure: day.Add(10 * time.Hour), Arrival: day.Add(11 * time.Hour), Price: 100, AvailableSeats: 5},
			},
		},
	}

	asm := &Assembler{now: fixedClock(day)}
	it, ok := asm.Assemble("A", "B", edges, day, 1)
	require.True(t, ok)
	assert.Equal(t, "available", it.Segments[0].Flight.ID)
}

func TestAssemble_FallsBackToFutureFlightWithoutSeats(t *testing.T) {
	day := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	edges := []graph.Edge{
		{
			FromStopID: "a", ToStopID: "b",
			Flights: []dataset.Flight{
				{ID: "full-but-future", Departure: day.Add(8 * time.Hour), Arrival: day.Add(9 * time.Hour), Price: 100, AvailableSeats: 0},
			},
		},
	}

	asm := &Assembler{now: fixedClock(day)}
	it, ok := asm.Assemble("A", "B", edges, day, 1)
	require.True(t, ok)
	assert.Equal(t, "full-but-future", it.Segments[0].Flight.ID)
}

func TestAssemble_FallsBackToGloballyEarliestWithSeatsWhenNoFutureFlight(t *testing.T) {
	day := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	past := day.Add(-48 * time.Hour)
	edges := []graph.Edge{
		{
			FromStopID: "a", ToStopID: "b",
			Flights: []dataset.Flight{
				{ID: "past-with-seats", Departure: past, Arrival: past.Add(time.Hour), Price: 100, AvailableSeats: 3},
			},
		},
	}

	asm := &Assembler{now: fixedClock(day)}
	it, ok := asm.Assemble("A", "B", edges, day, 1)
	require.True(t, ok)
	assert.Equal(t, "past-with-seats", it.Segments[0].Flight.ID)
}

func TestAssemble_TransferMinutesNeverNegative(t *testing.T) {
	day := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	edges := []graph.Edge{
		{
			FromStopID: "a", ToStopID: "b",
			Flights: []dataset.Flight{
				{ID: "f1", Departure: day.Add(8 * time.Hour), Arrival: day.Add(9 * time.Hour), Price: 100, AvailableSeats: 1},
			},
		},
		{
			// second segment's only flight departs before the first segment's
			// arrival (9:00): the clamp must keep transfer at 0, not negative.
			FromStopID: "b", ToStopID: "c",
			Flights: []dataset.Flight{
				{ID: "f2", Departure: day.Add(8*time.Hour + 30*time.Minute), Arrival: day.Add(10 * time.Hour), Price: 100, AvailableSeats: 1},
			},
		},
	}

	asm := &Assembler{now: fixedClock(day)}
	it, ok := asm.Assemble("A", "C", edges, day, 1)
	require.True(t, ok)
	assert.Equal(t, 0.0, it.Segments[1].TransferMinutes)
}

func TestAssemble_MissingDateFallsBackToNow(t *testing.T) {
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	edges := []graph.Edge{
		{
			FromStopID: "a", ToStopID: "b",
			Flights: []dataset.Flight{
				{ID: "f1", Departure: now.Add(time.Hour), Arrival: now.Add(2 * time.Hour), Price: 100, AvailableSeats: 1},
			},
		},
	}

	asm := &Assembler{now: fixedClock(now)}
	it, ok := asm.Assemble("A", "B", edges, time.Time{}, 1)
	require.True(t, ok)
	assert.Equal(t, "f1", it.Segments[0].Flight.ID)
}

func TestAssemble_TotalsMatchSumOfSegments(t *testing.T) {
	day := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	edges := []graph.Edge{
		{
			FromStopID: "a", ToStopID: "b",
			Flights: []dataset.Flight{
				{ID: "f1", Departure: day.Add(8 * time.Hour), Arrival: day.Add(9 * time.Hour), Price: 500, AvailableSeats: 1},
			},
		},
		{
			FromStopID: "b", ToStopID: "c",
			Flights: []dataset.Flight{
				{ID: "f2", Departure: day.Add(9*time.Hour + 30*time.Minute), Arrival: day.Add(11 * time.Hour + 30*time.Minute), Price: 1500, AvailableSeats: 1},
			},
		},
	}

	asm := &Assembler{now: fixedClock(day)}
	it, ok := asm.Assemble("A", "C", edges, day, 2)
	require.True(t, ok)

	var wantDuration, wantPrice float64
	wantTransfers := 0
	for _, seg := range it.Segments {
		wantDuration += seg.DurationMinutes + seg.TransferMinutes
		wantPrice += seg.Price
		if seg.TransferMinutes > 0 {
			wantTransfers++
		}
	}

	assert.Equal(t, wantDuration, it.TotalDurationMinutes)
	assert.Equal(t, wantPrice, it.TotalPrice)
	assert.Equal(t, wantTransfers, it.TransferCount)
}
