package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/pollution-map-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SitesSource loads the current site collections.
type SitesSource interface {
	LoadSites(ctx context.Context) (domain.SitesResult, error)
}

// Server exposes the sites API alongside health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	sites      SitesSource
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the API, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, sites SitesSource, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		sites:  sites,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/sites", withCORS(s.handleSites))
	mux.HandleFunc("GET /api/sites/{id}", withCORS(s.handleSite))
	mux.HandleFunc("GET /api/summary", withCORS(s.handleSummary))
	mux.HandleFunc("GET /api/legend", withCORS(handleLegend))
	mux.HandleFunc("GET /api/colors/sector", withCORS(handleColor(domain.SectorColor)))
	mux.HandleFunc("GET /api/colors/compartment", withCORS(handleColor(domain.CompartmentColor)))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	result, ok := s.load(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := domain.SiteFilter{
		Sector:      q.Get("sector"),
		Compartment: q.Get("compartment"),
		Query:       q.Get("q"),
	}
	sharedobs.WriteJSON(w, http.StatusOK, filter.Apply(result))
}

func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "site id must be an integer")
		return
	}

	result, ok := s.load(w, r)
	if !ok {
		return
	}

	site, found := result.FindByID(id)
	if !found {
		writeError(w, http.StatusNotFound, "site not found")
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, site)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	result, ok := s.load(w, r)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, domain.Summarize(result))
}

// load fetches the sites and writes the error response itself on failure.
func (s *Server) load(w http.ResponseWriter, r *http.Request) (domain.SitesResult, bool) {
	result, err := s.sites.LoadSites(r.Context())
	if err == nil {
		return result, true
	}

	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrFetchFailure) || errors.Is(err, domain.ErrParseFailure) {
		status = http.StatusBadGateway
	}
	s.logger.Error("load sites failed", "error", err, "path", r.URL.Path, "status", status)
	writeError(w, status, err.Error())
	return domain.SitesResult{}, false
}

type legendResponse struct {
	Sectors      []domain.LegendItem `json:"sectors"`
	Compartments []domain.LegendItem `json:"compartments"`
}

func handleLegend(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, legendResponse{
		Sectors:      domain.SectorLegend(),
		Compartments: domain.CompartmentLegend(),
	})
}

func handleColor(lookup func(string) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		sharedobs.WriteJSON(w, http.StatusOK, domain.LegendItem{Name: name, Color: lookup(name)})
	}
}

func withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next(w, r)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
