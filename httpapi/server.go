// Package httpapi exposes the routing engine over HTTP: a routing
// endpoint, a risk endpoint, graph/dataset/pipeline diagnostic
// endpoints, and an admin reinit endpoint, built as single-purpose
// handler functions over gorilla/mux rather than a full web framework.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/sakhatransit/routeengine/city"
	"github.com/sakhatransit/routeengine/graphstore"
	"github.com/sakhatransit/routeengine/itinerary"
	"github.com/sakhatransit/routeengine/orchestrator"
	"github.com/sakhatransit/routeengine/repository"
	"github.com/sakhatransit/routeengine/riskdata"
	"github.com/sakhatransit/routeengine/riskscore"
)

// Server wires the routing engine's components into an HTTP surface.
type Server struct {
	normalizer   *city.Normalizer
	store        *graphstore.Store
	assembler    *itinerary.Assembler
	collector    *riskdata.Collector
	riskModel    riskscore.RiskModel
	orchestrator *orchestrator.Orchestrator
	datasets     repository.DatasetRepository
	graphs       repository.GraphRepository
	isProduction func() bool

	log *logrus.Entry
}

// New builds a Server over the already-constructed engine components.
func New(
	normalizer *city.Normalizer,
	store *graphstore.Store,
	assembler *itinerary.Assembler,
	collector *riskdata.Collector,
	riskModel riskscore.RiskModel,
	orch *orchestrator.Orchestrator,
	datasets repository.DatasetRepository,
	graphs repository.GraphRepository,
	isProduction func() bool,
	log *logrus.Entry,
) *Server {
	return &Server{
		normalizer:   normalizer,
		store:        store,
		assembler:    assembler,
		collector:    collector,
		riskModel:    riskModel,
		orchestrator: orch,
		datasets:     datasets,
		graphs:       graphs,
		isProduction: isProduction,
		log:          log,
	}
}

// Router builds the gorilla/mux router for this server, with a middleware
// that sets the JSON content type on every response; no CORS headers are set.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(jsonMiddleware)

	r.HandleFunc("/route", s.handleRoute).Methods(http.MethodGet)
	r.HandleFunc("/risk", s.handleRisk).Methods(http.MethodPost)
	r.HandleFunc("/diagnostics/graph", s.handleDiagnosticsGraph).Methods(http.MethodGet)
	r.HandleFunc("/diagnostics/dataset", s.handleDiagnosticsDataset).Methods(http.MethodGet)
	r.HandleFunc("/diagnostics/pipeline", s.handleDiagnosticsPipeline).Methods(http.MethodGet)
	r.HandleFunc("/admin/reinit", s.handleAdminReinit).Methods(http.MethodPost)

	return r
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// parseDate parses a YYYY-MM-DD query value, falling back to today (UTC) on
// an empty or malformed value rather than rejecting the request.
func parseDate(raw string, now time.Time) time.Time {
	if raw == "" {
		return now
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return now
	}
	return t
}
