package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"airbnb-analytics/models"
)

// exportHeader fixes the column order of every CSV export. Values are
// the cleaned ones, never the raw source strings.
var exportHeader = []string{
	"id", "name", "host_id", "host since", "host response time",
	"host response rate", "host acceptance rate", "host Certification",
	"host listings count", "city", "area", "room_type", "accommodates",
	"bathrooms", "minimum nights", "bedrooms", "beds", "price", "sales",
	"consumer", "total reviewers number", "guest favourite",
	"instant bookable", "revenue_estimate",
}

// ExportCSV streams listings as delimited text with a header row.
// encoding/csv applies standard quoting, so embedded commas in names
// survive the round trip.
func ExportCSV(w io.Writer, listings []*models.Listing) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, l := range listings {
		if err := cw.Write(listingRow(l)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func listingRow(l *models.Listing) []string {
	return []string{
		strconv.FormatInt(l.ID, 10),
		l.Name,
		strconv.FormatInt(l.HostID, 10),
		strconv.Itoa(l.HostSince),
		strconv.Itoa(l.HostResponseTime),
		formatFloat(l.HostResponseRate),
		formatFloat(l.HostAcceptanceRate),
		formatFlag(l.HostCertified),
		strconv.Itoa(l.HostListingsCount),
		l.City,
		l.Area,
		l.RoomType,
		strconv.Itoa(l.Accommodates),
		formatFloat(l.Bathrooms),
		strconv.Itoa(l.MinimumNights),
		strconv.Itoa(l.Bedrooms),
		strconv.Itoa(l.Beds),
		formatFloat(l.Price),
		strconv.Itoa(l.Sales),
		formatFloat(l.Rating),
		strconv.Itoa(l.TotalReviewers),
		formatFlag(l.GuestFavourite),
		formatFlag(l.InstantBookable),
		formatFloat(l.RevenueEstimate),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFlag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// CSVWriter persists cleaned listings to a CSV file on disk. It is safe
// for concurrent use.
type CSVWriter struct {
	mu   sync.Mutex
	file *os.File
}

// NewCSVWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}
	return &CSVWriter{file: f}, nil
}

// Write truncates the file and writes the header plus all listings.
func (c *CSVWriter) Write(listings []*models.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.file.Truncate(0); err != nil {
		return fmt.Errorf("csv: truncate: %w", err)
	}
	if _, err := c.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("csv: seek: %w", err)
	}
	return ExportCSV(c.file, listings)
}

// Close closes the underlying file.
func (c *CSVWriter) Close() error {
	return c.file.Close()
}
