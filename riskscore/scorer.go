// Package riskscore implements the Risk Scorer: a deterministic,
// rule-based weighted sum over a Features record producing an integer
// score, band, and textual recommendations.
package riskscore

import "github.com/sakhatransit/routeengine/riskfeature"

// Band is the qualitative risk band a score maps to.
type Band string

const (
	BandVeryLow  Band = "VERY_LOW"
	BandLow      Band = "LOW"
	BandMedium   Band = "MEDIUM"
	BandHigh     Band = "HIGH"
	BandVeryHigh Band = "VERY_HIGH"
)

// Assessment is the full risk result attached to an itinerary.
type Assessment struct {
	Score           int
	Band            Band
	Description     string
	Recommendations []string
	Degraded        bool
}

// RiskModel scores a feature record: a concrete rule-based
// implementation today, with room for a future learned model behind the
// same signature.
type RiskModel interface {
	Predict(f riskfeature.Features) Assessment
}

// RuleBasedModel is the deterministic weighted-sum implementation of
// RiskModel.
type RuleBasedModel struct{}

var _ RiskModel = RuleBasedModel{}

// Predict scores f as a bounded additive sum. When f.Degraded is set (the
// collector could not reach the historical-data or weather provider), it
// short-circuits to a default MEDIUM assessment, still recording why.
func (RuleBasedModel) Predict(f riskfeature.Features) Assessment {
	if f.Degraded {
		return Assessment{
			Score:           5,
			Band:            BandMedium,
			Description:     describeBand(BandMedium),
			Recommendations: []string{"data source degraded, assessment is a conservative default"},
			Degraded:        true,
		}
	}

	r := 1.0
	r += transfersComponent(f.TransferCount)
	r += transportKindsComponent(f)
	r += historicalDelayComponent(f)
	r += cancellationComponent(f.AvgCancellationRate)
	r += occupancyComponent(f)
	r += regularityComponent(f.ScheduleRegularity)
	r += f.WeatherRisk * 1.5
	r += seasonalityComponent(f.SeasonFactor)
	r += durationComponent(f.TotalDurationMinutes / 60)

	score := clamp(roundHalfAwayFromZero(r), 1, 10)
	band := bandFor(score)

	return Assessment{
		Score:           score,
		Band:            band,
		Description:     describeBand(band),
		Recommendations: recommendationsFor(f, score),
	}
}

func transfersComponent(n int) float64 {
	switch {
	case n <= 0:
		return 0
	case n == 1:
		return 0.5
	case n == 2:
		return 1.0
	default:
		return 1.5 + 0.5*float64(n-2)
	}
}

func transportKindsComponent(f riskfeature.Features) float64 {
	v := 0.0
	if f.HasFerry || f.HasRiverTransport {
		v += 1.5
	}
	if f.HasMixedTransport {
		v += 0.5
	}
	if f.HasBus {
		v += 0.3
	}
	return v
}

func historicalDelayComponent(f riskfeature.Features) float64 {
	avg := f.AvgDelay90Minutes
	var v float64
	switch {
	case avg < 15:
		v = 0
	case avg < 30:
		v = 0.5
	case avg < 60:
		v = 1.0
	default:
		v = 1.5 + (avg-60)/60
	}
	v += f.DelayFrequency * 2
	return capAt(v, 2)
}

func cancellationComponent(rate float64) float64 {
	switch {
	case rate < 0.05:
		return 0
	case rate < 0.10:
		return 0.5
	case rate < 0.20:
		return 1.0
	default:
		return 1.5 + rate*5
	}
}

func occupancyComponent(f riskfeature.Features) float64 {
	v := 0.0
	switch {
	case f.AvgOccupancy > 0.9:
		v += 1.0
	case f.AvgOccupancy > 0.8:
		v += 0.5
	}
	v += 0.3*float64(f.HighOccupancySegments) + 0.5*float64(f.LowAvailabilitySegments)
	return capAt(v, 2)
}

func regularityComponent(regularity float64) float64 {
	switch {
	case regularity > 0.8:
		return 0
	case regularity > 0.6:
		return 0.3
	case regularity > 0.4:
		return 0.7
	default:
		return 1.0
	}
}

func seasonalityComponent(factor float64) float64 {
	switch {
	case factor > 1.15:
		return 0.5
	case factor > 1.1:
		return 0.3
	default:
		return 0
	}
}

func durationComponent(hours float64) float64 {
	switch {
	case hours < 2:
		return 0
	case hours < 6:
		return 0.2
	case hours < 12:
		return 0.4
	default:
		return 0.6 + (hours-12)/24
	}
}

func capAt(v, max float64) float64 {
	if v > max {
		return max
	}
	return v
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func roundHalfAwayFromZero(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return -int(-v + 0.5)
}

func bandFor(score int) Band {
	switch {
	case score <= 2:
		return BandVeryLow
	case score <= 4:
		return BandLow
	case score <= 6:
		return BandMedium
	case score <= 8:
		return BandHigh
	default:
		return BandVeryHigh
	}
}

func describeBand(b Band) string {
	switch b {
	case BandVeryLow:
		return "very low risk, routine itinerary"
	case BandLow:
		return "low risk"
	case BandMedium:
		return "medium risk, some uncertainty factors present"
	case BandHigh:
		return "high risk, multiple uncertainty factors present"
	default:
		return "very high risk, proceed with caution"
	}
}

// recommendationsFor applies the fixed recommendation rule set. The result
// is always a subset of this fixed set.
func recommendationsFor(f riskfeature.Features, score int) []string {
	var out []string
	if score >= 7 {
		out = append(out, "consider insurance")
	}
	if f.TransferCount > 2 {
		out = append(out, "arrive early")
	}
	if f.HasFerry || f.HasRiverTransport {
		out = append(out, "weather-sensitive")
	}
	if f.AvgOccupancy > 0.9 {
		out = append(out, "book early")
	}
	if f.ScheduleRegularity < 0.6 {
		out = append(out, "verify schedule")
	}
	if f.AvgCancellationRate > 0.1 {
		out = append(out, "consider alternatives")
	}
	return out
}
