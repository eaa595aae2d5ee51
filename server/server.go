package server

import (
	"net/http"

	"airbnb-analytics/config"
	"airbnb-analytics/datasource"
	"airbnb-analytics/services"
	"airbnb-analytics/utils"
)

// Server exposes the cleaned table, filter-driven views and aggregates
// to the presentation layer over HTTP. Every request re-filters the
// current snapshot synchronously; there is no background computation.
type Server struct {
	cfg      *config.Config
	cache    *datasource.Cache
	filters  *services.FilterEngine
	insights *services.InsightService
	logger   *utils.Logger
	mux      *http.ServeMux
}

// New wires a Server over the given cache and services.
func New(cfg *config.Config, cache *datasource.Cache, filters *services.FilterEngine,
	insights *services.InsightService, logger *utils.Logger) *Server {

	s := &Server{
		cfg:      cfg,
		cache:    cache,
		filters:  filters,
		insights: insights,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/listings", s.handleListings)
	s.mux.HandleFunc("/api/summary", s.handleSummary)
	s.mux.HandleFunc("/api/metrics/guest", s.handleGuestMetrics)
	s.mux.HandleFunc("/api/metrics/host", s.handleHostMetrics)
	s.mux.HandleFunc("/api/stats/cities", s.handleCityStats)
	s.mux.HandleFunc("/api/stats/areas", s.handleAreaStats)
	s.mux.HandleFunc("/api/sales/periods", s.handleSalesPeriods)
	s.mux.HandleFunc("/api/sales/occupancy", s.handleOccupancy)
	s.mux.HandleFunc("/api/hierarchy", s.handleHierarchy)
	s.mux.HandleFunc("/api/top", s.handleTop)
	s.mux.HandleFunc("/api/theme", s.handleTheme)
	s.mux.HandleFunc("/api/export", s.handleExportCSV)
	s.mux.HandleFunc("/api/export.xlsx", s.handleExportXLSX)
	s.mux.HandleFunc("/healthz", s.handleHealth)
}

// Handler returns the routed handler, used directly by tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe blocks serving the API on the configured address.
func (s *Server) ListenAndServe() error {
	s.logger.Info("[server] Listening on %s", s.cfg.ListenAddr)
	return http.ListenAndServe(s.cfg.ListenAddr, s.mux)
}
