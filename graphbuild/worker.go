package graphbuild

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sakhatransit/routeengine/graphstore"
	"github.com/sakhatransit/routeengine/repository"
	"github.com/sakhatransit/routeengine/worker"
)

const workerID = "graph_build"

var _ worker.Worker = (*Worker)(nil)

// Worker is the W3 pipeline stage: it loads the latest (now augmented)
// dataset, builds a graph from it, and publishes the result to the Graph
// Store. A build failure leaves the previously published
// graph active.
type Worker struct {
	worker.Base

	builder  *Builder
	datasets repository.DatasetRepository
	graphs   repository.GraphRepository
	store    *graphstore.Store

	log *logrus.Entry
	now func() time.Time
}

// NewWorker builds the graph-build worker around an existing Graph Store.
func NewWorker(builder *Builder, datasets repository.DatasetRepository, graphs repository.GraphRepository, store *graphstore.Store, log *logrus.Entry) *Worker {
	return &Worker{
		Base:     worker.NewBase(workerID, 0),
		builder:  builder,
		datasets: datasets,
		graphs:   graphs,
		store:    store,
		log:      log,
		now:      time.Now,
	}
}

// Execute loads the latest dataset, builds a graph, and publishes it.
func (w *Worker) Execute(ctx context.Context) error {
	started := w.now()

	ds, ok, err := w.datasets.GetLatest(ctx)
	if err != nil {
		w.Record(worker.StatusFailed, started, 0, err)
		return err
	}
	if !ok {
		w.log.Warn("no dataset to build a graph from, skipping")
		w.Record(worker.StatusSkipped, started, 0, nil)
		return nil
	}

	result, err := w.builder.Build(ds)
	if err != nil {
		w.log.WithError(err).Error("graph build failed, previous graph remains active")
		w.Record(worker.StatusFailed, started, 0, err)
		return err
	}

	w.store.Publish(result.Graph, result.Metadata)

	if w.graphs != nil {
		if payload, err := json.Marshal(result.Graph); err == nil {
			if err := w.graphs.SaveGraph(ctx, ds.Version, payload); err != nil {
				w.log.WithError(err).Warn("failed to persist graph payload, graph store is still authoritative")
			}
		} else {
			w.log.WithError(err).Warn("failed to serialize graph payload")
		}
		meta := repository.GraphMetadata{
			Version:        ds.Version,
			NodeCount:      result.Metadata.NodeCount,
			EdgeCount:      result.Metadata.EdgeCount,
			BuildTimestamp: started,
			Active:         true,
		}
		if err := w.graphs.SetActiveGraphMetadata(ctx, meta); err != nil {
			w.log.WithError(err).Warn("failed to persist graph metadata, graph store is still authoritative")
		}
	}

	w.log.WithFields(logrus.Fields{
		"nodes": result.Metadata.NodeCount, "edges": result.Metadata.EdgeCount, "version": ds.Version,
	}).Info("graph published")

	w.Record(worker.StatusSuccess, started, result.Metadata.EdgeCount, nil)
	return nil
}
