package riskscore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakhatransit/routeengine/riskfeature"
)

func TestPredict_BenignItineraryIsVeryLow(t *testing.T) {
	f := riskfeature.Features{
		ScheduleRegularity: 0.95,
		TotalDurationMinutes: 90,
	}
	a := RuleBasedModel{}.Predict(f)

	assert.LessOrEqual(t, a.Score, 2)
	assert.Equal(t, BandVeryLow, a.Band)
	assert.Empty(t, a.Recommendations)
}

func TestPredict_DegradedFallsBackToMedium(t *testing.T) {
	f := riskfeature.Features{Degraded: true}
	a := RuleBasedModel{}.Predict(f)

	assert.Equal(t, 5, a.Score)
	assert.Equal(t, BandMedium, a.Band)
	assert.True(t, a.Degraded)
	assert.NotEmpty(t, a.Recommendations)
}

func TestPredict_ScoreAlwaysInRange(t *testing.T) {
	f := riskfeature.Features{
		TransferCount:         10,
		HasFerry:              true,
		HasRiverTransport:     true,
		HasMixedTransport:     true,
		HasBus:                true,
		AvgDelay90Minutes:     500,
		DelayFrequency:        1,
		AvgCancellationRate:   0.9,
		AvgOccupancy:          0.99,
		HighOccupancySegments: 10,
		LowAvailabilitySegments: 10,
		ScheduleRegularity:    0.01,
		WeatherRisk:           1.0,
		SeasonFactor:          1.3,
		TotalDurationMinutes:  3000,
	}
	a := RuleBasedModel{}.Predict(f)

	assert.GreaterOrEqual(t, a.Score, 1)
	assert.LessOrEqual(t, a.Score, 10)
	assert.Equal(t, BandVeryHigh, a.Band)
}

func TestPredict_RecommendationsAreSubsetOfDocumentedSet(t *testing.T) {
	allowed := map[string]bool{
		"consider insurance":      true,
		"arrive early":            true,
		"weather-sensitive":       true,
		"book early":              true,
		"verify schedule":         true,
		"consider alternatives":   true,
		"data source degraded, assessment is a conservative default": true,
	}

	f := riskfeature.Features{
		TransferCount:       5,
		HasFerry:            true,
		AvgOccupancy:        0.95,
		ScheduleRegularity:  0.3,
		AvgCancellationRate: 0.5,
	}
	a := RuleBasedModel{}.Predict(f)

	for _, r := range a.Recommendations {
		assert.True(t, allowed[r], "unexpected recommendation %q", r)
	}
}

func TestTransfersComponent_MatchesTable(t *testing.T) {
	assert.Equal(t, 0.0, transfersComponent(0))
	assert.Equal(t, 0.5, transfersComponent(1))
	assert.Equal(t, 1.0, transfersComponent(2))
	assert.Equal(t, 2.0, transfersComponent(3))
	assert.Equal(t, 2.5, transfersComponent(4))
}

func TestHistoricalDelayComponent_CapsAtTwo(t *testing.T) {
	f := riskfeature.Features{AvgDelay90Minutes: 1000, DelayFrequency: 1}
	assert.Equal(t, 2.0, historicalDelayComponent(f))
}

func TestCancellationComponent_MatchesTable(t *testing.T) {
	assert.Equal(t, 0.0, cancellationComponent(0.01))
	assert.Equal(t, 0.5, cancellationComponent(0.07))
	assert.Equal(t, 1.0, cancellationComponent(0.15))
	assert.InDelta(t, 1.5+0.3*5, cancellationComponent(0.3), 1e-9)
}

func TestBandFor_MatchesTable(t *testing.T) {
	assert.Equal(t, BandVeryLow, bandFor(1))
	assert.Equal(t, BandVeryLow, bandFor(2))
	assert.Equal(t, BandLow, bandFor(3))
	assert.Equal(t, BandLow, bandFor(4))
	assert.Equal(t, BandMedium, bandFor(5))
	assert.Equal(t, BandMedium, bandFor(6))
	assert.Equal(t, BandHigh, bandFor(7))
	assert.Equal(t, BandHigh, bandFor(8))
	assert.Equal(t, BandVeryHigh, bandFor(9))
	assert.Equal(t, BandVeryHigh, bandFor(10))
}
