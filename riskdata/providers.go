// Package riskdata defines the external collaborators the risk engine
// reads from: historical delay/cancellation/occupancy data, schedule
// regularity, weather, and seasonality. The collection step fans these
// reads out in parallel and joins the results before feature building.
package riskdata

import (
	"context"
	"sync"
	"time"

	"github.com/sakhatransit/routeengine/itinerary"
)

// HistoricalDelay captures the 30/60/90-day rolling delay signal for one
// segment.
type HistoricalDelay struct {
	Avg30Minutes    float64
	Avg60Minutes    float64
	Avg90Minutes    float64
	Frequency       float64 // fraction of trips historically delayed
	Cancellation    float64 // cancellation rate in [0,1]
	OccupancyRate   float64 // average seat occupancy in [0,1]
	LowAvailability bool
	HighOccupancy   bool
}

// HistoricalDataProvider supplies per-segment historical delay signals.
type HistoricalDataProvider interface {
	SegmentHistory(ctx context.Context, routeID string) (HistoricalDelay, error)
}

// ScheduleRegularityProvider supplies a [0,1] regularity score for a route
// (closer to 1 means the schedule is consistently kept).
type ScheduleRegularityProvider interface {
	Regularity(ctx context.Context, routeID string) (float64, error)
}

// WeatherProvider supplies a [0,1] weather risk score for a date and
// location pair.
type WeatherProvider interface {
	Risk(ctx context.Context, cityKey string, date time.Time) (float64, error)
}

// SeasonalityProvider supplies the seasonality multiplier for a travel
// date. It is deterministic but is still fanned out alongside the
// other providers for a uniform collection step.
type SeasonalityProvider interface {
	Factor(ctx context.Context, date time.Time) (float64, error)
}

// Collected is the joined result of one fan-out read across all four
// providers, keyed by segment index for the per-segment signals.
type Collected struct {
	History      map[int]HistoricalDelay
	Regularity   map[int]float64
	WeatherRisk  float64
	SeasonFactor float64
	Degraded     bool
}

// Collector runs the parallel fan-out read across all four providers.
type Collector struct {
	History    HistoricalDataProvider
	Regularity ScheduleRegularityProvider
	Weather    WeatherProvider
	Season     SeasonalityProvider
}

// Collect fetches historical, regularity, weather, and seasonality data for
// every segment of it concurrently. If the historical-data or weather
// provider fails, Collect does not return an error: it marks the result
// Degraded so the risk scorer can fall back to a MEDIUM assessment,
// still returning the itinerary.
func (c *Collector) Collect(ctx context.Context, it itinerary.Itinerary) Collected {
	result := Collected{
		History:    make(map[int]HistoricalDelay, len(it.Segments)),
		Regularity: make(map[int]float64, len(it.Segments)),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup

	for i, seg := range it.Segments {
		i, routeID := i, seg.Segment.RouteID

		wg.Add(2)
		go func() {
			defer wg.Done()
			h, err := c.History.SegmentHistory(ctx, routeID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Degraded = true
				return
			}
			result.History[i] = h
		}()
		go func() {
			defer wg.Done()
			r, err := c.Regularity.Regularity(ctx, routeID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r = 1.0 // assume regular when unknown, least alarming default
			}
			result.Regularity[i] = r
		}()
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		risk, err := c.Weather.Risk(ctx, it.DestinationCity, it.Date)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.Degraded = true
			return
		}
		result.WeatherRisk = risk
	}()
	go func() {
		defer wg.Done()
		factor, err := c.Season.Factor(ctx, it.Date)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			factor = 1.0
		}
		result.SeasonFactor = factor
	}()

	wg.Wait()
	return result
}
