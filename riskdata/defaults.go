package riskdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sakhatransit/routeengine/errs"
)

// StaticProvider is a deterministic, no-dependency implementation of all
// four provider interfaces. It is the default that routingctl wires into
// the HTTP server's risk collector: the upstream
// provider, relational store, and weather service are external
// collaborators named by interface only, so this repo ships a
// conservative default rather than a live integration.
type StaticProvider struct{}

var _ HistoricalDataProvider = StaticProvider{}
var _ ScheduleRegularityProvider = StaticProvider{}
var _ WeatherProvider = StaticProvider{}
var _ SeasonalityProvider = StaticProvider{}

// SegmentHistory returns a benign baseline: low delay, low cancellation,
// moderate occupancy. Synthesized virtual routes have no operating history
// at all, so they report an error instead of a fabricated baseline; the
// collector marks the result degraded and the scorer falls back to its
// conservative MEDIUM default.
func (StaticProvider) SegmentHistory(ctx context.Context, routeID string) (HistoricalDelay, error) {
	if strings.HasPrefix(routeID, "virtual-route-") {
		return HistoricalDelay{}, fmt.Errorf("%w: no history for synthesized route %s", errs.ErrRiskDegraded, routeID)
	}
	return HistoricalDelay{
		Avg30Minutes:  10,
		Avg60Minutes:  10,
		Avg90Minutes:  10,
		Frequency:     0.1,
		Cancellation:  0.02,
		OccupancyRate: 0.5,
	}, nil
}

// Regularity returns a high-confidence baseline regularity score.
func (StaticProvider) Regularity(ctx context.Context, routeID string) (float64, error) {
	return 0.9, nil
}

// Risk returns a low baseline weather risk.
func (StaticProvider) Risk(ctx context.Context, cityKey string, date time.Time) (float64, error) {
	return 0.1, nil
}

// Factor computes the deterministic seasonality multiplier.
func (StaticProvider) Factor(ctx context.Context, date time.Time) (float64, error) {
	return SeasonalityFactor(date), nil
}

// SeasonalityFactor: base 1.0; winter
// months multiply by 1.2; summer months multiply by 1.1; weekends
// additionally multiply by 1.1.
func SeasonalityFactor(date time.Time) float64 {
	factor := 1.0
	switch date.Month() {
	case time.December, time.January, time.February:
		factor *= 1.2
	case time.June, time.July, time.August:
		factor *= 1.1
	}
	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		factor *= 1.1
	}
	return factor
}
