package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"airbnb-analytics/config"
	"airbnb-analytics/datasource"
	"airbnb-analytics/models"
	"airbnb-analytics/services"
	"airbnb-analytics/utils"
)

const testCSV = `id,name,host_id,host since,host response time,host response rate,host acceptance rate,host Certification,host listings count,city,area,room_type,accommodates,bathrooms,minimum nights,bedrooms,beds,price,sales,consumer,total reviewers number,guest favourite,instant bookable
1,Canal Loft,10,400,1,95,90,1,2,Amsterdam,Europe,2,4,"1,5",2,2,3,"1,250",120,"4,85",240,1,0
2,Tiny Room,11,90,2,80,70,0,1,Berlin,Europe,1,1,1,1,1,1,80,40,"4,2",30,0,1
3,Sky Suite,12,900,1,99,95,1,5,Tokyo,Asia,4,2,2,1,1,2,300,310,"4,9",400,1,0
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := utils.NewLogger(false)

	path := filepath.Join(t.TempDir(), "listings.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		DataPath: path,
		Theme:    config.Theme{Background: "#0f172a", GuestAccent: "#06b6d4"},
	}
	cleaner := services.NewCleaner(logger)
	insights := services.NewInsightService(logger)
	cache := datasource.NewCache(path, cleaner, insights, logger)

	return New(cfg, cache, services.NewFilterEngine(logger), insights, logger)
}

func get(t *testing.T, s *Server, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleListings(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/listings")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}

	var body struct {
		Total    int               `json:"total"`
		Returned int               `json:"returned"`
		Listings []*models.Listing `json:"listings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if body.Total != 3 || body.Returned != 3 {
		t.Errorf("total/returned = %d/%d; want 3/3", body.Total, body.Returned)
	}
	if body.Listings[0].Price != 1250 || body.Listings[0].RoomType != "Entire Home/Apt" {
		t.Errorf("first listing not cleaned: %+v", body.Listings[0])
	}
}

func TestHandleListingsFiltered(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/listings?cities=Berlin")
	var body struct {
		Total    int               `json:"total"`
		Listings []*models.Listing `json:"listings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Total != 1 || body.Listings[0].City != "Berlin" {
		t.Errorf("city filter: total=%d first=%+v", body.Total, body.Listings)
	}
}

func TestHandleListingsInvertedPriceRange(t *testing.T) {
	s := newTestServer(t)

	// min above max is swapped, not rejected.
	rec := get(t, s, "/api/listings?price_min=1000&price_max=100")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	var body struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Total != 1 {
		t.Errorf("total = %d; want 1 (only the 300-price listing in [100,1000])", body.Total)
	}
}

func TestHandleListingsLimit(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/listings?limit=2")
	var body struct {
		Total    int `json:"total"`
		Returned int `json:"returned"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Total != 3 || body.Returned != 2 {
		t.Errorf("total/returned = %d/%d; want 3/2", body.Total, body.Returned)
	}
}

func TestHandleListingsEmptyResult(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/listings?cities=Atlantis")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200 for an empty result", rec.Code)
	}
	var body struct {
		Total    int               `json:"total"`
		Listings []*models.Listing `json:"listings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Total != 0 || body.Listings == nil {
		t.Errorf("empty result: total=%d listings=%v; want 0 and [] not null", body.Total, body.Listings)
	}
}

func TestHandleSummary(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/summary")
	var body struct {
		Stats  *models.DatasetStats `json:"stats"`
		Report *models.LoadReport   `json:"report"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Stats.TotalListings != 3 {
		t.Errorf("TotalListings = %d; want 3", body.Stats.TotalListings)
	}
	if body.Report.TotalRows != body.Report.CleanRows+body.Report.DroppedRows {
		t.Errorf("report accounting broken: %+v", body.Report)
	}
}

func TestHandleGuestMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/metrics/guest")
	var m models.GuestMetrics
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatal(err)
	}
	if m.TotalProperties != 3 {
		t.Errorf("TotalProperties = %d; want 3", m.TotalProperties)
	}
}

func TestHandleCityStatsRespectsFilters(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/stats/cities?areas=Europe")
	var stats []*models.CityStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if len(stats) != 2 || stats[0].City != "Amsterdam" || stats[1].City != "Berlin" {
		t.Errorf("filtered city stats = %+v; want sorted [Amsterdam Berlin]", stats)
	}
}

func TestHandleTop(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/top?metric=revenue&n=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	var top []*models.Listing
	if err := json.Unmarshal(rec.Body.Bytes(), &top); err != nil {
		t.Fatal(err)
	}
	// Revenue: 1250*120=150000, 80*40=3200, 300*310=93000.
	if len(top) != 1 || top[0].ID != 1 {
		t.Errorf("top by revenue = %+v; want listing 1", top)
	}
}

func TestHandleTopUnknownMetric(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/top?metric=sparkle")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400 for an unknown metric", rec.Code)
	}
}

func TestHandleTheme(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/theme")
	var theme config.Theme
	if err := json.Unmarshal(rec.Body.Bytes(), &theme); err != nil {
		t.Fatal(err)
	}
	if theme.Background != "#0f172a" {
		t.Errorf("Background = %q; want #0f172a", theme.Background)
	}
}

func TestHandleExportCSV(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/export?cities=Tokyo")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q; want text/csv", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q; want attachment", cd)
	}

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("export has %d lines; want header + 1 row", len(lines))
	}
	if !strings.Contains(lines[1], "Tokyo") || !strings.Contains(lines[1], "93000") {
		t.Errorf("export row = %q; want cleaned Tokyo listing with recomputed revenue", lines[1])
	}
}

func TestHandleExportXLSX(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/export.xlsx")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("Content-Type = %q; want xlsx mime type", ct)
	}
	// XLSX files are zip archives.
	if body := rec.Body.Bytes(); len(body) < 4 || body[0] != 'P' || body[1] != 'K' {
		t.Error("response is not a zip container")
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q; want 200 ok", rec.Code, rec.Body.String())
	}
}

func TestHandlerMissingDataset(t *testing.T) {
	logger := utils.NewLogger(false)
	path := filepath.Join(t.TempDir(), "absent.csv")
	cfg := &config.Config{DataPath: path}
	cache := datasource.NewCache(path, services.NewCleaner(logger), services.NewInsightService(logger), logger)
	s := New(cfg, cache, services.NewFilterEngine(logger), services.NewInsightService(logger), logger)

	rec := get(t, s, "/api/listings")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d; want 500 when the source file is gone", rec.Code)
	}
}
