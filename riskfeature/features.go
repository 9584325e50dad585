// Package riskfeature implements the Risk Feature Builder: turning an
// itinerary plus collected historical signals into a structured feature
// record the Risk Scorer can consume.
package riskfeature

import (
	"fmt"

	"github.com/sakhatransit/routeengine/dataset"
	"github.com/sakhatransit/routeengine/itinerary"
	"github.com/sakhatransit/routeengine/riskdata"
)

// Features is the structured feature record the scorer consumes.
type Features struct {
	HasFerry          bool
	HasRiverTransport bool
	HasMixedTransport bool
	HasBus            bool

	LongestSegmentMinutes  float64
	ShortestTransferMinutes float64
	TotalDurationMinutes    float64
	TransferCount           int

	AvgDelay90Minutes   float64
	DelayFrequency      float64
	AvgCancellationRate float64
	AvgOccupancy        float64
	HighOccupancySegments int
	LowAvailabilitySegments int
	ScheduleRegularity    float64

	WeatherRisk  float64
	SeasonFactor float64

	TransportKinds map[dataset.TransportKind]struct{}
	Degraded       bool
}

// Build derives a Features record from an itinerary and the joined
// collector output.
func Build(it itinerary.Itinerary, collected riskdata.Collected) Features {
	f := Features{
		TotalDurationMinutes:   it.TotalDurationMinutes,
		TransferCount:          it.TransferCount,
		TransportKinds:         it.TransportTypes,
		WeatherRisk:            collected.WeatherRisk,
		SeasonFactor:           collected.SeasonFactor,
		Degraded:               collected.Degraded,
		ShortestTransferMinutes: -1,
	}

	kindSet := map[dataset.TransportKind]struct{}{}
	for _, seg := range it.Segments {
		kindSet[seg.Segment.TransportKind] = struct{}{}

		if seg.DurationMinutes > f.LongestSegmentMinutes {
			f.LongestSegmentMinutes = seg.DurationMinutes
		}
		if seg.TransferMinutes > 0 && (f.ShortestTransferMinutes < 0 || seg.TransferMinutes < f.ShortestTransferMinutes) {
			f.ShortestTransferMinutes = seg.TransferMinutes
		}
	}
	if f.ShortestTransferMinutes < 0 {
		f.ShortestTransferMinutes = 0
	}

	f.HasFerry = hasKind(kindSet, dataset.TransportFerry)
	f.HasRiverTransport = f.HasFerry // the served region's water transport is river-based, not maritime
	f.HasBus = hasKind(kindSet, dataset.TransportBus)
	f.HasMixedTransport = len(kindSet) > 1

	n := len(collected.History)
	if n > 0 {
		var delaySum, freqSum, cancelSum, occSum float64
		for i := range it.Segments {
			h, ok := collected.History[i]
			if !ok {
				continue
			}
			delaySum += h.Avg90Minutes
			freqSum += h.Frequency
			cancelSum += h.Cancellation
			occSum += h.OccupancyRate
			if h.HighOccupancy || h.OccupancyRate > 0.9 {
				f.HighOccupancySegments++
			}
			if h.LowAvailability {
				f.LowAvailabilitySegments++
			}
		}
		f.AvgDelay90Minutes = delaySum / float64(n)
		f.DelayFrequency = freqSum / float64(n)
		f.AvgCancellationRate = cancelSum / float64(n)
		f.AvgOccupancy = occSum / float64(n)
	}

	if len(collected.Regularity) > 0 {
		var regSum float64
		for _, r := range collected.Regularity {
			regSum += r
		}
		f.ScheduleRegularity = regSum / float64(len(collected.Regularity))
	} else {
		f.ScheduleRegularity = 1.0
	}

	return f
}

func hasKind(set map[dataset.TransportKind]struct{}, k dataset.TransportKind) bool {
	_, ok := set[k]
	return ok
}

// Vector serializes the feature record to a named numeric vector, scaling
// durations to hours and one-hot encoding the transport-kind set.
func (f Features) Vector() map[string]float64 {
	v := map[string]float64{
		"longest_segment_hours":    f.LongestSegmentMinutes / 60,
		"shortest_transfer_hours":  f.ShortestTransferMinutes / 60,
		"total_duration_hours":     f.TotalDurationMinutes / 60,
		"transfer_count":           float64(f.TransferCount),
		"avg_delay_90_hours":       f.AvgDelay90Minutes / 60,
		"delay_frequency":          f.DelayFrequency,
		"avg_cancellation_rate":    f.AvgCancellationRate,
		"avg_occupancy":            f.AvgOccupancy,
		"high_occupancy_segments": float64(f.HighOccupancySegments),
		"low_availability_segments": float64(f.LowAvailabilitySegments),
		"schedule_regularity":      f.ScheduleRegularity,
		"weather_risk":             f.WeatherRisk,
		"season_factor":            f.SeasonFactor,
	}

	for _, kind := range []dataset.TransportKind{
		dataset.TransportAirplane, dataset.TransportBus, dataset.TransportTrain,
		dataset.TransportFerry, dataset.TransportTaxi, dataset.TransportUnknown,
	} {
		key := fmt.Sprintf("kind_%s", kind)
		if hasKind(f.TransportKinds, kind) {
			v[key] = 1
		} else {
			v[key] = 0
		}
	}

	return v
}
