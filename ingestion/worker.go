// Package ingestion implements the Ingestion Worker W1: fetch, hash,
// diff, parse, normalize, and persist the upstream transport snapshot
// into a new Dataset version.
package ingestion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sakhatransit/routeengine/city"
	"github.com/sakhatransit/routeengine/dataset"
	"github.com/sakhatransit/routeengine/logging"
	"github.com/sakhatransit/routeengine/objectstore"
	"github.com/sakhatransit/routeengine/repository"
	"github.com/sakhatransit/routeengine/stopvalidate"
	"github.com/sakhatransit/routeengine/upstream"
	"github.com/sakhatransit/routeengine/worker"
)

const (
	workerID = "ingestion"
	cooldown = time.Hour
)

var _ worker.Worker = (*Worker)(nil)

// Worker is the W1 pipeline stage.
type Worker struct {
	worker.Base

	provider upstream.Provider
	stops    repository.StopRepository
	routes   repository.RouteRepository
	flights  repository.FlightRepository
	datasets repository.DatasetRepository
	cache    repository.CacheRepository
	uploader objectstore.Uploader // nil means the backup upload is skipped entirely

	normalizer *city.Normalizer
	validator  *stopvalidate.Validator

	log *logrus.Entry
	now func() time.Time
}

// New builds the ingestion worker. uploader may be nil when no object store
// is configured; the raw-snapshot backup step is then a no-op, not a
// failure.
func New(
	provider upstream.Provider,
	stops repository.StopRepository,
	routes repository.RouteRepository,
	flights repository.FlightRepository,
	datasets repository.DatasetRepository,
	cache repository.CacheRepository,
	uploader objectstore.Uploader,
	ref *city.Reference,
) *Worker {
	return &Worker{
		Base:       worker.NewBase(workerID, cooldown),
		provider:   provider,
		stops:      stops,
		routes:     routes,
		flights:    flights,
		datasets:   datasets,
		cache:      cache,
		uploader:   uploader,
		normalizer: city.NewNormalizer(ref),
		validator:  stopvalidate.New(ref),
		log:        logging.ForModule(workerID),
		now:        time.Now,
	}
}

// Execute runs one full ingestion pass. A nil return covers both an
// ordinary success and the documented cooldown/no-changes skips; only a
// genuine failure returns a non-nil error.
func (w *Worker) Execute(ctx context.Context) error {
	started := w.now()

	if !w.CanRun(started) {
		w.log.WithField("cooldown", cooldown).Debug("ingestion skipped, cooldown not elapsed")
		w.Record(worker.StatusSkipped, started, 0, nil)
		return nil
	}

	done := logging.Operation(w.log, "execute", nil)

	snap, err := w.provider.FetchAll(ctx)
	if err != nil {
		w.Record(worker.StatusFailed, started, 0, err)
		done(err)
		return err
	}

	canonical, err := json.Marshal(snap)
	if err != nil {
		w.Record(worker.StatusFailed, started, 0, err)
		done(err)
		return err
	}
	sum := sha256.Sum256(canonical)
	hash := hex.EncodeToString(sum[:])

	if latest, ok, err := w.datasets.GetLatest(ctx); err == nil && ok && latest.Hash == hash {
		w.log.WithField("hash", hash).Info("no changes since last ingestion")
		w.Record(worker.StatusSuccess, started, 0, nil)
		done(nil)
		return nil
	}

	stops, routes, flights := w.parse(snap)

	if err := w.stops.SaveAll(ctx, stops); err != nil {
		w.Record(worker.StatusFailed, started, 0, err)
		done(err)
		return err
	}
	if err := w.routes.SaveAll(ctx, routes); err != nil {
		w.Record(worker.StatusFailed, started, 0, err)
		done(err)
		return err
	}
	if err := w.flights.SaveAll(ctx, flights); err != nil {
		w.Record(worker.StatusFailed, started, 0, err)
		done(err)
		return err
	}

	version := fmt.Sprintf("%s-%d", hash[:12], started.Unix())
	ds := dataset.New(stops, routes, flights, dataset.SourceReal, hash, version, started)

	if err := w.datasets.Save(ctx, ds); err != nil {
		w.Record(worker.StatusFailed, started, 0, err)
		done(err)
		return err
	}
	if err := w.datasets.SetActive(ctx, version); err != nil {
		w.Record(worker.StatusFailed, started, 0, err)
		done(err)
		return err
	}

	if w.uploader != nil {
		key := fmt.Sprintf("snapshots/%s.json", version)
		if err := w.uploader.Upload(ctx, key, canonical); err != nil {
			w.log.WithError(err).Warn("raw snapshot backup failed, continuing")
		}
	}

	if w.cache != nil {
		if err := w.cache.DeleteByPattern(ctx, "cities*"); err != nil {
			w.log.WithError(err).Warn("cities cache invalidation failed")
		}
	}

	w.log.WithFields(logrus.Fields{
		"version": version, "stops": len(stops), "routes": len(routes), "flights": len(flights), "next": "W2",
	}).Info("ingestion produced new dataset version")

	w.Record(worker.StatusSuccess, started, len(stops)+len(routes)+len(flights), nil)
	done(nil)
	return nil
}

func (w *Worker) parse(snap upstream.Snapshot) ([]dataset.Stop, []dataset.Route, []dataset.Flight) {
	stops := make([]dataset.Stop, 0, len(snap.Stops))
	for _, rs := range snap.Stops {
		cityKey, _ := w.normalizer.Accept(rs.CityKey)
		s := dataset.Stop{
			ID:        rs.ID,
			Name:      rs.Name,
			HasCoords: rs.HasCoords,
			Latitude:  rs.Lat,
			Longitude: rs.Lon,
			CityKey:   cityKey,
			Kind:      normalizeStopKind(rs.Kind),
		}
		result := w.validator.Validate(s)
		if !result.Valid {
			w.log.WithFields(logrus.Fields{"stop_id": rs.ID, "errors": result.Errors}).Warn("dropping invalid stop")
			continue
		}
		stops = append(stops, s)
	}

	routes := make([]dataset.Route, 0, len(snap.Routes))
	for _, rr := range snap.Routes {
		if len(rr.StopIDs) < 2 {
			w.log.WithField("route_id", rr.ID).Warn("dropping route with fewer than 2 stops")
			continue
		}
		routes = append(routes, dataset.Route{
			ID:       rr.ID,
			StopIDs:  rr.StopIDs,
			Kind:     normalizeTransportKind(rr.Kind),
			Number:   rr.Number,
			BaseFare: rr.BaseFare,
		})
	}

	flights := make([]dataset.Flight, 0, len(snap.Flights))
	for _, rf := range snap.Flights {
		f := dataset.Flight{
			ID:             rf.ID,
			FromStopID:     rf.FromStopID,
			ToStopID:       rf.ToStopID,
			RouteID:        rf.RouteID,
			Departure:      rf.Departure,
			Arrival:        rf.Arrival,
			Price:          rf.Price,
			AvailableSeats: rf.AvailableSeats,
			Status:         normalizeFlightStatus(rf.Status),
		}
		if !f.Valid() {
			w.log.WithField("flight_id", rf.ID).Warn("dropping flight with arrival before departure")
			continue
		}
		flights = append(flights, f)
	}

	return stops, routes, flights
}

// normalizeTransportKind maps a provider-native transport label to the
// dataset's closed TransportKind set, defaulting to BUS for anything
// unrecognized.
func normalizeTransportKind(raw string) dataset.TransportKind {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "AIRPLANE", "PLANE", "AIR", "FLIGHT", "САМОЛЕТ", "САМОЛЁТ", "АВИА":
		return dataset.TransportAirplane
	case "TRAIN", "RAIL", "RAILWAY", "ПОЕЗД", "ЖД":
		return dataset.TransportTrain
	case "FERRY", "BOAT", "SHIP", "RIVER", "ПАРОМ", "ТЕПЛОХОД":
		return dataset.TransportFerry
	case "TAXI", "CAB", "ТАКСИ":
		return dataset.TransportTaxi
	case "BUS", "COACH", "АВТОБУС":
		return dataset.TransportBus
	default:
		return dataset.TransportBus
	}
}

func normalizeStopKind(raw string) dataset.StopKind {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "AIRPORT":
		return dataset.StopKindAirport
	case "RAILWAY", "TRAIN_STATION":
		return dataset.StopKindRailway
	case "FERRY_TERMINAL", "PORT":
		return dataset.StopKindFerryTerminal
	default:
		return dataset.StopKindGeneric
	}
}

func normalizeFlightStatus(raw string) dataset.FlightStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "CANCELLED", "CANCELED":
		return dataset.FlightStatusCancelled
	case "COMPLETED", "DONE":
		return dataset.FlightStatusCompleted
	default:
		return dataset.FlightStatusScheduled
	}
}
