// Package orchestrator implements the Orchestrator: the sequential
// W1->W2->W3 pipeline with idempotency, error isolation, and an
// admin-gated full reinit.
package orchestrator

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sakhatransit/routeengine/errs"
	"github.com/sakhatransit/routeengine/worker"
)

// Resetter clears all stored data ahead of a full admin-triggered re-run.
type Resetter interface {
	ClearAll(ctx context.Context) error
}

// Orchestrator registers workers by id and runs them sequentially. At most
// one pipeline executes at a time, enforced by an in-progress flag.
type Orchestrator struct {
	mu      sync.Mutex
	running bool

	workers      []worker.Worker
	isProduction func() bool
	resetter     Resetter

	log *logrus.Entry
}

// New builds an Orchestrator over workers in pipeline order (W1, W2, W3).
// isProduction gates the admin reinit flow; resetter may be nil if
// AdminReinit is never called.
func New(workers []worker.Worker, isProduction func() bool, resetter Resetter, log *logrus.Entry) *Orchestrator {
	return &Orchestrator{workers: workers, isProduction: isProduction, resetter: resetter, log: log}
}

// Run executes every registered worker in order. A worker that records a
// "skipped" status lets the pipeline continue; a failure aborts it and
// returns the worker's error.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return errs.ErrPipelineConflict
	}
	o.running = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
	}()

	runID := uuid.NewString()
	log := o.log.WithField("run_id", runID)

	for _, w := range o.workers {
		if err := w.Execute(ctx); err != nil {
			log.WithError(err).WithField("worker", w.ID()).Error("pipeline aborted")
			return err
		}
		if meta := w.Metadata(); meta.Status == worker.StatusFailed {
			log.WithField("worker", w.ID()).Error("pipeline aborted, worker reported failure without error")
			return errs.ErrInvariant
		}
	}

	log.Info("pipeline run complete")
	return nil
}

// IsRunning reports whether a pipeline invocation is currently in flight.
func (o *Orchestrator) IsRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// WorkerMetadata returns the last-run metadata for every registered worker,
// for the diagnostic/admin surface.
func (o *Orchestrator) WorkerMetadata() []worker.Metadata {
	out := make([]worker.Metadata, 0, len(o.workers))
	for _, w := range o.workers {
		out = append(out, w.Metadata())
	}
	return out
}

// AdminReinit clears all stored data and re-runs the pipeline end-to-end.
// It is only available in non-production mode.
func (o *Orchestrator) AdminReinit(ctx context.Context) error {
	if o.isProduction != nil && o.isProduction() {
		return errs.ErrValidation
	}
	if o.resetter != nil {
		if err := o.resetter.ClearAll(ctx); err != nil {
			return err
		}
	}
	return o.Run(ctx)
}
