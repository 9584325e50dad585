package httpapi

import (
	"errors"
	"net/http"

	"github.com/sakhatransit/routeengine/errs"
)

type graphStatsResponse struct {
	NodeCount      int    `json:"nodeCount"`
	EdgeCount      int    `json:"edgeCount"`
	BuildTimestamp string `json:"buildTimestamp"`
	DatasetVersion string `json:"datasetVersion"`
	Active         bool   `json:"active"`
}

// handleDiagnosticsGraph returns the Graph Store's stats().
func (s *Server) handleDiagnosticsGraph(w http.ResponseWriter, r *http.Request) {
	stats := s.store.Stats()
	writeJSON(w, http.StatusOK, graphStatsResponse{
		NodeCount:      stats.NodeCount,
		EdgeCount:      stats.EdgeCount,
		BuildTimestamp: stats.BuildTimestamp.Format("2006-01-02T15:04:05Z07:00"),
		DatasetVersion: stats.DatasetVersion,
		Active:         stats.Active,
	})
}

type datasetResponse struct {
	Version      string `json:"version"`
	Hash         string `json:"hash"`
	SourceMode   string `json:"sourceMode"`
	QualityScore int    `json:"qualityScore"`
	StopCount    int    `json:"stopCount"`
	RouteCount   int    `json:"routeCount"`
	FlightCount  int    `json:"flightCount"`
	Active       bool   `json:"active"`
}

// handleDiagnosticsDataset returns the active Dataset's quality, version,
// and hash.
func (s *Server) handleDiagnosticsDataset(w http.ResponseWriter, r *http.Request) {
	ds, ok, err := s.datasets.GetLatest(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, datasetResponse{})
		return
	}

	writeJSON(w, http.StatusOK, datasetResponse{
		Version:      ds.Version,
		Hash:         ds.Hash,
		SourceMode:   string(ds.SourceMode),
		QualityScore: ds.QualityScore,
		StopCount:    len(ds.Stops),
		RouteCount:   len(ds.Routes),
		FlightCount:  len(ds.Flights),
		Active:       ds.Active,
	})
}

type workerStatusDTO struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	LastRun  string `json:"lastRun,omitempty"`
	Duration string `json:"duration,omitempty"`
	Count    int    `json:"count"`
	Err      string `json:"error,omitempty"`
}

type pipelineResponse struct {
	Running bool              `json:"running"`
	Workers []workerStatusDTO `json:"workers"`
}

// handleDiagnosticsPipeline exposes the orchestrator's per-worker
// metadata.
func (s *Server) handleDiagnosticsPipeline(w http.ResponseWriter, r *http.Request) {
	metas := s.orchestrator.WorkerMetadata()
	workers := make([]workerStatusDTO, 0, len(metas))
	for _, m := range metas {
		dto := workerStatusDTO{
			ID:       m.ID,
			Status:   string(m.Status),
			Duration: m.Duration.String(),
			Count:    m.Count,
		}
		if !m.LastRun.IsZero() {
			dto.LastRun = m.LastRun.Format("2006-01-02T15:04:05Z07:00")
		}
		if m.Err != "" {
			dto.Err = m.Err
		}
		workers = append(workers, dto)
	}

	writeJSON(w, http.StatusOK, pipelineResponse{
		Running: s.orchestrator.IsRunning(),
		Workers: workers,
	})
}

type adminReinitResponse struct {
	Status string `json:"status"`
}

// handleAdminReinit clears all stored data and re-runs the pipeline
// end-to-end, refusing in production.
func (s *Server) handleAdminReinit(w http.ResponseWriter, r *http.Request) {
	if s.isProduction != nil && s.isProduction() {
		writeError(w, http.StatusForbidden, errs.ErrValidation)
		return
	}

	if err := s.orchestrator.AdminReinit(r.Context()); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, errs.ErrPipelineConflict) {
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}

	writeJSON(w, http.StatusAccepted, adminReinitResponse{Status: "reinitialized"})
}
