package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"airbnb-analytics/models"
	"airbnb-analytics/services"
	"airbnb-analytics/storage"
)

// parseFilterOptions maps query parameters onto a predicate set. Absent
// parameters leave their dimension unrestricted; invalid ranges are
// corrected inside the filter engine, so nothing here can fail.
func parseFilterOptions(r *http.Request) services.FilterOptions {
	q := r.URL.Query()
	return services.FilterOptions{
		Cities:              splitParam(q.Get("cities")),
		Areas:               splitParam(q.Get("areas")),
		RoomTypes:           splitParam(q.Get("room_types")),
		MinPrice:            floatParam(q.Get("price_min")),
		MaxPrice:            floatParam(q.Get("price_max")),
		MinReviews:          intParam(q.Get("min_reviews")),
		MinRating:           floatParam(q.Get("min_rating")),
		HostSinceMin:        intParam(q.Get("host_since_min")),
		HostSinceMax:        intParam(q.Get("host_since_max")),
		GuestFavouritesOnly: boolParam(q.Get("favourites")),
		CertifiedHostsOnly:  boolParam(q.Get("certified")),
	}
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}

func floatParam(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func intParam(raw string) int {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

func boolParam(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}

// filtered resolves the current snapshot and applies the request's
// predicate set. A nil snapshot means the load failed; the caller must
// stop after the error response.
func (s *Server) filtered(w http.ResponseWriter, r *http.Request) ([]*models.Listing, bool) {
	snap, err := s.cache.Snapshot()
	if err != nil {
		s.logger.Error("[server] Snapshot unavailable: %v", err)
		http.Error(w, "dataset unavailable: "+err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return s.filters.Apply(snap.Listings, parseFilterOptions(r)), true
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("[server] Response encode failed: %v", err)
	}
}

func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	listings, ok := s.filtered(w, r)
	if !ok {
		return
	}

	// Zero matching rows is a valid state; the client renders "no data".
	limit := intParam(r.URL.Query().Get("limit"))
	total := len(listings)
	if limit > 0 && total > limit {
		listings = listings[:limit]
	}

	s.writeJSON(w, map[string]any{
		"total":    total,
		"returned": len(listings),
		"listings": listings,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap, err := s.cache.Snapshot()
	if err != nil {
		s.logger.Error("[server] Snapshot unavailable: %v", err)
		http.Error(w, "dataset unavailable: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, map[string]any{
		"stats":    snap.Stats,
		"report":   snap.Report,
		"loadedAt": snap.LoadedAt,
	})
}

func (s *Server) handleGuestMetrics(w http.ResponseWriter, r *http.Request) {
	listings, ok := s.filtered(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, s.insights.GuestMetrics(listings))
}

func (s *Server) handleHostMetrics(w http.ResponseWriter, r *http.Request) {
	listings, ok := s.filtered(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, s.insights.HostMetrics(listings))
}

func (s *Server) handleCityStats(w http.ResponseWriter, r *http.Request) {
	listings, ok := s.filtered(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, s.insights.CityStats(listings))
}

func (s *Server) handleAreaStats(w http.ResponseWriter, r *http.Request) {
	listings, ok := s.filtered(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, s.insights.AreaStats(listings))
}

func (s *Server) handleSalesPeriods(w http.ResponseWriter, r *http.Request) {
	listings, ok := s.filtered(w, r)
	if !ok {
		return
	}
	buckets := intParam(r.URL.Query().Get("buckets"))
	if buckets <= 0 {
		buckets = 10
	}
	s.writeJSON(w, s.insights.SalesByPeriod(listings, buckets))
}

func (s *Server) handleOccupancy(w http.ResponseWriter, r *http.Request) {
	listings, ok := s.filtered(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, s.insights.OccupancyHistogram(listings))
}

func (s *Server) handleHierarchy(w http.ResponseWriter, r *http.Request) {
	listings, ok := s.filtered(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, s.insights.Hierarchy(listings))
}

// topMetrics are the rankable dimensions of /api/top.
var topMetrics = map[string]func(*models.Listing) float64{
	"revenue": func(l *models.Listing) float64 { return l.RevenueEstimate },
	"price":   func(l *models.Listing) float64 { return l.Price },
	"rating":  func(l *models.Listing) float64 { return l.Rating },
	"sales":   func(l *models.Listing) float64 { return float64(l.Sales) },
	"reviews": func(l *models.Listing) float64 { return float64(l.TotalReviewers) },
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	metricName := r.URL.Query().Get("metric")
	metric, ok := topMetrics[metricName]
	if !ok {
		http.Error(w, "unknown metric: "+metricName, http.StatusBadRequest)
		return
	}

	listings, ok := s.filtered(w, r)
	if !ok {
		return
	}
	n := intParam(r.URL.Query().Get("n"))
	if n <= 0 {
		n = 10
	}
	s.writeJSON(w, s.insights.TopN(listings, n, metric))
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.cfg.Theme)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	listings, ok := s.filtered(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="listings_filtered.csv"`)
	if err := storage.ExportCSV(w, listings); err != nil {
		s.logger.Error("[server] CSV export failed: %v", err)
	}
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	listings, ok := s.filtered(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="listings_report.xlsx"`)
	if err := storage.WriteReport(w, s.insights.CityStats(listings), s.insights.AreaStats(listings)); err != nil {
		s.logger.Error("[server] XLSX export failed: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
