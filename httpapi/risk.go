package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sakhatransit/routeengine/dataset"
	"github.com/sakhatransit/routeengine/errs"
	"github.com/sakhatransit/routeengine/graph"
	"github.com/sakhatransit/routeengine/itinerary"
	"github.com/sakhatransit/routeengine/riskfeature"
)

// riskRequest is the wire shape of a complete itinerary, accepted at
// face value: this endpoint scores whatever itinerary the caller already
// assembled, rather than re-deriving it from a route search.
type riskRequest struct {
	OriginCity      string           `json:"originCity"`
	DestinationCity string           `json:"destinationCity"`
	Date            string           `json:"date"`
	Passengers      int              `json:"passengers"`
	Segments        []riskSegmentDTO `json:"segments"`
}

type riskSegmentDTO struct {
	RouteID         string  `json:"routeId"`
	TransportKind   string  `json:"transportKind"`
	FromStopID      string  `json:"fromStopId"`
	ToStopID        string  `json:"toStopId"`
	Departure       time.Time `json:"departure"`
	Arrival         time.Time `json:"arrival"`
	Price           float64 `json:"price"`
	TransferMinutes float64 `json:"transferMinutes"`
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	var req riskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errs.ErrValidation)
		return
	}
	if len(req.Segments) == 0 {
		writeError(w, http.StatusBadRequest, errs.ErrValidation)
		return
	}

	it := toItinerary(req)
	collected := s.collector.Collect(r.Context(), it)
	features := riskfeature.Build(it, collected)
	assessment := s.riskModel.Predict(features)

	writeJSON(w, http.StatusOK, assessment)
}

func toItinerary(req riskRequest) itinerary.Itinerary {
	it := itinerary.Itinerary{
		OriginCity:      req.OriginCity,
		DestinationCity: req.DestinationCity,
		Passengers:      req.Passengers,
		TransportTypes:  make(map[dataset.TransportKind]struct{}),
	}
	if req.Date != "" {
		if d, err := time.Parse("2006-01-02", req.Date); err == nil {
			it.Date = d
		}
	}

	for _, seg := range req.Segments {
		duration := seg.Arrival.Sub(seg.Departure).Minutes()
		it.Segments = append(it.Segments, itinerary.SegmentDetail{
			Segment: graph.Segment{
				RouteID:       seg.RouteID,
				TransportKind: dataset.TransportKind(seg.TransportKind),
			},
			Departure:       seg.Departure,
			Arrival:         seg.Arrival,
			DurationMinutes: duration,
			Price:           seg.Price,
			TransferMinutes: seg.TransferMinutes,
		})
		it.TotalDurationMinutes += duration + seg.TransferMinutes
		it.TotalPrice += seg.Price
		if seg.TransferMinutes > 0 {
			it.TransferCount++
		}
		it.TransportTypes[dataset.TransportKind(seg.TransportKind)] = struct{}{}
	}

	if len(it.Segments) > 0 {
		it.Departure = it.Segments[0].Departure
		it.Arrival = it.Segments[len(it.Segments)-1].Arrival
	}
	return it
}
