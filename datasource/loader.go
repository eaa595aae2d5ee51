package datasource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"airbnb-analytics/models"
)

// Columns is the fixed 23-column schema of the source file. Names are
// matched case-sensitively after trimming surrounding whitespace;
// column order in the file does not matter.
var Columns = []string{
	"id",
	"name",
	"host_id",
	"host since",
	"host response time",
	"host response rate",
	"host acceptance rate",
	"host Certification",
	"host listings count",
	"city",
	"area",
	"room_type",
	"accommodates",
	"bathrooms",
	"minimum nights",
	"bedrooms",
	"beds",
	"price",
	"sales",
	"consumer",
	"total reviewers number",
	"guest favourite",
	"instant bookable",
}

// LoadCSV reads the raw dataset. The header is validated against
// Columns before any row is read; a mismatch aborts the load with a
// *models.SchemaError naming the missing and unexpected columns.
func LoadCSV(path string) ([]*models.RawListing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("datasource: open %q: %w", path, err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses raw listings from r. Split out from LoadCSV so tests
// and non-file sources can feed readers directly.
func ReadCSV(r io.Reader) ([]*models.RawListing, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("datasource: read header: %w", err)
	}

	index, err := validateHeader(header)
	if err != nil {
		return nil, err
	}

	var rows []*models.RawListing
	line := 1 // header occupied line 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("datasource: read row: %w", err)
		}
		line++

		get := func(col string) string { return record[index[col]] }
		rows = append(rows, &models.RawListing{
			Line:               line,
			ID:                 get("id"),
			Name:               get("name"),
			HostID:             get("host_id"),
			HostSince:          get("host since"),
			HostResponseTime:   get("host response time"),
			HostResponseRate:   get("host response rate"),
			HostAcceptanceRate: get("host acceptance rate"),
			HostCertification:  get("host Certification"),
			HostListingsCount:  get("host listings count"),
			City:               get("city"),
			Area:               get("area"),
			RoomType:           get("room_type"),
			Accommodates:       get("accommodates"),
			Bathrooms:          get("bathrooms"),
			MinimumNights:      get("minimum nights"),
			Bedrooms:           get("bedrooms"),
			Beds:               get("beds"),
			Price:              get("price"),
			Sales:              get("sales"),
			Consumer:           get("consumer"),
			TotalReviewers:     get("total reviewers number"),
			GuestFavourite:     get("guest favourite"),
			InstantBookable:    get("instant bookable"),
		})
	}

	return rows, nil
}

// validateHeader maps each expected column to its position in the
// file's header.
func validateHeader(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	schemErr := &models.SchemaError{}
	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			schemErr.Missing = append(schemErr.Missing, col)
		}
	}
	expected := make(map[string]struct{}, len(Columns))
	for _, col := range Columns {
		expected[col] = struct{}{}
	}
	for name := range index {
		if _, ok := expected[name]; !ok {
			schemErr.Unexpected = append(schemErr.Unexpected, name)
		}
	}
	sort.Strings(schemErr.Unexpected)

	if len(schemErr.Missing) > 0 || len(schemErr.Unexpected) > 0 {
		return nil, schemErr
	}
	return index, nil
}
