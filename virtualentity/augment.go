// Package virtualentity implements the virtual-entity worker W2:
// synthesizing missing stops, routes, and trip instances so every
// reference city is reachable from the hub.
package virtualentity

import (
	"fmt"
	"time"

	"github.com/sakhatransit/routeengine/city"
	"github.com/sakhatransit/routeengine/dataset"
)

const (
	hubEdgeDurationMinutes    = 180
	directEdgeDurationMinutes = 120
	tripDays                  = 365
	tripPrice                 = 1000
	tripSeats                 = 50
)

var tripHours = []int{8, 16}

// Augment returns ds with virtual stops, routes, and trips added so that
// every reference city has at least one stop and the hub can reach every
// other reference city. It is idempotent: calling Augment twice on
// its own output adds nothing new, since every synthesized entity carries a
// stable, deterministically derived id.
func Augment(ds dataset.Dataset, ref *city.Reference, now time.Time) dataset.Dataset {
	stopsByCity := make(map[string]dataset.Stop, len(ds.Stops))
	for _, s := range ds.Stops {
		stopsByCity[s.CityKey] = s
	}
	_, hadHubBeforeAugmenting := stopsByCity[city.Hub]

	stops := append([]dataset.Stop(nil), ds.Stops...)
	for _, cityKey := range ref.Cities() {
		if _, ok := stopsByCity[cityKey]; ok {
			continue
		}
		coords, _ := ref.Coordinates(cityKey)
		vs := dataset.Stop{
			ID:        city.VirtualStopID(cityKey),
			Name:      cityKey,
			HasCoords: true,
			Latitude:  coords.Latitude,
			Longitude: coords.Longitude,
			CityKey:   cityKey,
			Kind:      dataset.StopKindGeneric,
			Virtual:   true,
		}
		stops = append(stops, vs)
		stopsByCity[cityKey] = vs
	}

	var virtualStops []dataset.Stop
	for _, s := range stops {
		if s.Virtual {
			virtualStops = append(virtualStops, s)
		}
	}

	hub, hasHubStop := stopsByCity[city.Hub]
	// The hub counts as absent according to its state before this pass created
	// a virtual stop for it: a hub synthesized only because it was itself a
	// missing reference city is not a usable transfer anchor.
	hasHub := hadHubBeforeAugmenting && hasHubStop

	existingRouteIDs := make(map[string]struct{}, len(ds.Routes))
	for _, r := range ds.Routes {
		existingRouteIDs[r.ID] = struct{}{}
	}
	routes := append([]dataset.Route(nil), ds.Routes...)

	existingFlightIDs := make(map[string]struct{}, len(ds.Flights))
	for _, f := range ds.Flights {
		existingFlightIDs[f.ID] = struct{}{}
	}
	flights := append([]dataset.Flight(nil), ds.Flights...)

	addRoute := func(from, to string, durationMinutes float64) {
		routeID := city.VirtualRouteID(from, to)
		if _, ok := existingRouteIDs[routeID]; !ok {
			existingRouteIDs[routeID] = struct{}{}
			routes = append(routes, dataset.Route{
				ID:                       routeID,
				StopIDs:                  []string{from, to},
				Kind:                     dataset.TransportBus,
				BaseFare:                 tripPrice,
				Virtual:                  true,
				HasEstimatedDuration:     true,
				EstimatedDurationMinutes: durationMinutes,
			})
		}
		generateTrips(routeID, from, to, durationMinutes, now, existingFlightIDs, &flights)
	}

	if hasHub {
		for _, vs := range virtualStops {
			if vs.ID == hub.ID {
				continue
			}
			addRoute(hub.ID, vs.ID, hubEdgeDurationMinutes)
			addRoute(vs.ID, hub.ID, hubEdgeDurationMinutes)
		}
	} else {
		for i := range virtualStops {
			for j := range virtualStops {
				if i == j {
					continue
				}
				addRoute(virtualStops[i].ID, virtualStops[j].ID, directEdgeDurationMinutes)
			}
		}
	}

	return dataset.New(stops, routes, flights, ds.SourceMode, ds.Hash, ds.Version, ds.CreatedAt)
}

// generateTrips appends two trips per day for tripDays days ahead, at
// 08:00 and 16:00 local time, skipping any trip id already present in
// existingIDs so repeated runs on the same calendar day add nothing new.
func generateTrips(routeID, from, to string, durationMinutes float64, now time.Time, existingIDs map[string]struct{}, flights *[]dataset.Flight) {
	for day := 0; day < tripDays; day++ {
		date := now.AddDate(0, 0, day)
		for _, hour := range tripHours {
			departure := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, date.Location())
			arrival := departure.Add(time.Duration(durationMinutes) * time.Minute)
			id := fmt.Sprintf("%s-%s-%02d00", routeID, departure.Format("20060102"), hour)
			if _, ok := existingIDs[id]; ok {
				continue
			}
			existingIDs[id] = struct{}{}
			*flights = append(*flights, dataset.Flight{
				ID:             id,
				FromStopID:     from,
				ToStopID:       to,
				RouteID:        routeID,
				Departure:      departure,
				Arrival:        arrival,
				Price:          tripPrice,
				AvailableSeats: tripSeats,
				Status:         dataset.FlightStatusScheduled,
			})
		}
	}
}
