package virtualentity

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sakhatransit/routeengine/city"
	"github.com/sakhatransit/routeengine/logging"
	"github.com/sakhatransit/routeengine/repository"
	"github.com/sakhatransit/routeengine/timeutils"
	"github.com/sakhatransit/routeengine/worker"
)

const workerID = "virtual_entity"

var _ worker.Worker = (*Worker)(nil)

// Worker is the W2 pipeline stage: it fetches the dataset W1 just produced,
// augments it in memory via Augment, and persists the result back in
// place.
type Worker struct {
	worker.Base

	ref      *city.Reference
	stops    repository.StopRepository
	routes   repository.RouteRepository
	flights  repository.FlightRepository
	datasets repository.DatasetRepository

	// Enabled mirrors USE_ADAPTIVE_DATA_LOADING: when false, Execute
	// records a skip and leaves the dataset untouched.
	Enabled bool

	log *logrus.Entry
	now func() time.Time
}

// New builds the virtual-entity worker. It has no cooldown of its own: it
// always runs immediately after W1 within one orchestrated pipeline pass.
func New(
	ref *city.Reference,
	stops repository.StopRepository,
	routes repository.RouteRepository,
	flights repository.FlightRepository,
	datasets repository.DatasetRepository,
	enabled bool,
) *Worker {
	return &Worker{
		Base:     worker.NewBase(workerID, 0),
		ref:      ref,
		stops:    stops,
		routes:   routes,
		flights:  flights,
		datasets: datasets,
		Enabled:  enabled,
		log:      logging.ForModule(workerID),
		now:      time.Now,
	}
}

// Execute loads the latest dataset, augments it, and persists the result.
func (w *Worker) Execute(ctx context.Context) error {
	started := w.now()
	done := logging.Operation(w.log, "execute", nil)

	if !w.Enabled {
		w.log.Info("adaptive data loading disabled, skipping virtual augmentation")
		w.Record(worker.StatusSkipped, started, 0, nil)
		done(nil)
		return nil
	}

	ds, ok, err := w.datasets.GetLatest(ctx)
	if err != nil {
		w.Record(worker.StatusFailed, started, 0, err)
		done(err)
		return err
	}
	if !ok {
		w.log.Warn("no dataset to augment, skipping")
		w.Record(worker.StatusSkipped, started, 0, nil)
		done(nil)
		return nil
	}

	// Virtual trips are stamped at 08:00/16:00 "local time"; the hub
	// is Yakutsk, so augmentation works off the hub's wall clock rather than
	// whatever timezone the process happens to run in.
	augmented := Augment(ds, w.ref, started.In(timeutils.Yakutsk()))
	addedStops := len(augmented.Stops) - len(ds.Stops)
	addedRoutes := len(augmented.Routes) - len(ds.Routes)
	addedFlights := len(augmented.Flights) - len(ds.Flights)

	if err := w.stops.SaveAll(ctx, augmented.Stops); err != nil {
		w.Record(worker.StatusFailed, started, 0, err)
		done(err)
		return err
	}
	if err := w.routes.SaveAll(ctx, augmented.Routes); err != nil {
		w.Record(worker.StatusFailed, started, 0, err)
		done(err)
		return err
	}
	if err := w.flights.SaveAll(ctx, augmented.Flights); err != nil {
		w.Record(worker.StatusFailed, started, 0, err)
		done(err)
		return err
	}
	if err := w.datasets.Save(ctx, augmented); err != nil {
		w.Record(worker.StatusFailed, started, 0, err)
		done(err)
		return err
	}

	w.log.WithFields(logrus.Fields{
		"added_stops": addedStops, "added_routes": addedRoutes, "added_flights": addedFlights, "next": "W3",
	}).Info("virtual augmentation complete")

	w.Record(worker.StatusSuccess, started, addedStops+addedRoutes, nil)
	done(nil)
	return nil
}
