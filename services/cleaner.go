package services

import (
	"fmt"
	"strconv"
	"strings"

	"airbnb-analytics/models"
	"airbnb-analytics/utils"
)

// RoomTypeByCode decodes the integer room-type codes carried by the
// source file. The table is total: any code outside it fails the row.
var RoomTypeByCode = map[int]string{
	1: "Private Room",
	2: "Entire Home/Apt",
	3: "Shared Room",
	4: "Hotel Room",
}

// AreaByCity is the canonical city-to-region mapping. The source data
// carries wrong regions for several cities, so the cleaned area column
// is always taken from here when the city is known.
var AreaByCity = map[string]string{
	"Toronto":   "North America",
	"NewYork":   "North America",
	"Amsterdam": "Europe",
	"Berlin":    "Europe",
	"Dublin":    "Europe",
	"Munich":    "Europe",
	"Hongkong":  "Asia",
	"Singapore": "Asia",
	"Tokyo":     "Asia",
	"Sydney":    "Oceania",
}

// Cleaner transforms RawListings into clean, typed Listings.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean processes raw rows and returns the cleaned records together
// with a LoadReport. A row with any malformed cell is dropped whole and
// recorded in the report; values are never coerced to zero silently.
// Row accounting is strict: TotalRows == CleanRows + DroppedRows.
func (c *Cleaner) Clean(raw []*models.RawListing) ([]*models.Listing, *models.LoadReport) {
	report := &models.LoadReport{
		TotalRows:      len(raw),
		ErrorsByColumn: make(map[string]int),
	}

	result := make([]*models.Listing, 0, len(raw))
	for _, r := range raw {
		listing, err := c.cleanRow(r)
		if err != nil {
			report.DroppedRows++
			if mv, ok := err.(*models.MalformedValueError); ok {
				report.ErrorsByColumn[mv.Column]++
				if len(report.Samples) < models.SampleLimit {
					report.Samples = append(report.Samples, mv.Error())
				}
			}
			c.logger.Debug("[cleaner] Dropping row: %v", err)
			continue
		}
		result = append(result, listing)
	}
	report.CleanRows = len(result)

	if report.DroppedRows > 0 {
		c.logger.Warn("[cleaner] Dropped %d of %d rows (%d malformed columns affected)",
			report.DroppedRows, report.TotalRows, len(report.ErrorsByColumn))
	}
	c.logger.Info("[cleaner] Cleaned %d → %d listings", len(raw), len(result))
	return result, report
}

// cleanRow normalises one row. All numeric normalisation happens first;
// the room-type decode and the revenue estimate read normalised values.
func (c *Cleaner) cleanRow(r *models.RawListing) (*models.Listing, error) {
	l := &models.Listing{
		Name: strings.TrimSpace(r.Name),
		City: strings.TrimSpace(r.City),
	}

	var err error

	if l.ID, err = parseID(r.ID); err != nil {
		return nil, valueErr(r.Line, "id", r.ID, err)
	}
	if l.HostID, err = parseID(r.HostID); err != nil {
		return nil, valueErr(r.Line, "host_id", r.HostID, err)
	}
	if l.City == "" {
		return nil, valueErr(r.Line, "city", r.City, fmt.Errorf("empty"))
	}

	if l.Price, err = parseCurrency(r.Price); err != nil {
		return nil, valueErr(r.Line, "price", r.Price, err)
	}
	if l.Bathrooms, err = parseDecimal(r.Bathrooms, 1); err != nil {
		return nil, valueErr(r.Line, "bathrooms", r.Bathrooms, err)
	}
	if l.Bathrooms < 0 {
		return nil, valueErr(r.Line, "bathrooms", r.Bathrooms, fmt.Errorf("negative"))
	}
	if l.Rating, err = parseDecimal(r.Consumer, 0); err != nil {
		return nil, valueErr(r.Line, "consumer", r.Consumer, err)
	}
	if l.Rating < 0 || l.Rating > 10 {
		return nil, valueErr(r.Line, "consumer", r.Consumer, fmt.Errorf("rating outside 0-10"))
	}
	if l.HostResponseRate, err = parseDecimal(r.HostResponseRate, 0); err != nil {
		return nil, valueErr(r.Line, "host response rate", r.HostResponseRate, err)
	}
	if l.HostResponseRate < 0 {
		return nil, valueErr(r.Line, "host response rate", r.HostResponseRate, fmt.Errorf("negative"))
	}
	if l.HostAcceptanceRate, err = parseDecimal(r.HostAcceptanceRate, 0); err != nil {
		return nil, valueErr(r.Line, "host acceptance rate", r.HostAcceptanceRate, err)
	}
	if l.HostAcceptanceRate < 0 {
		return nil, valueErr(r.Line, "host acceptance rate", r.HostAcceptanceRate, fmt.Errorf("negative"))
	}

	if l.Sales, err = parseIntDefault(r.Sales, 0); err != nil {
		return nil, valueErr(r.Line, "sales", r.Sales, err)
	}
	if l.Sales < 0 || l.Sales > 365 {
		return nil, valueErr(r.Line, "sales", r.Sales, fmt.Errorf("booked days outside 0-365"))
	}
	if l.HostSince, err = parseIntDefault(r.HostSince, 0); err != nil {
		return nil, valueErr(r.Line, "host since", r.HostSince, err)
	}
	if l.HostResponseTime, err = parseIntDefault(r.HostResponseTime, 0); err != nil {
		return nil, valueErr(r.Line, "host response time", r.HostResponseTime, err)
	}
	if l.HostListingsCount, err = parseIntDefault(r.HostListingsCount, 0); err != nil {
		return nil, valueErr(r.Line, "host listings count", r.HostListingsCount, err)
	}
	if l.Accommodates, err = parseIntDefault(r.Accommodates, 0); err != nil {
		return nil, valueErr(r.Line, "accommodates", r.Accommodates, err)
	}
	if l.MinimumNights, err = parseIntDefault(r.MinimumNights, 0); err != nil {
		return nil, valueErr(r.Line, "minimum nights", r.MinimumNights, err)
	}
	if l.Bedrooms, err = parseIntDefault(r.Bedrooms, 0); err != nil {
		return nil, valueErr(r.Line, "bedrooms", r.Bedrooms, err)
	}
	if l.Beds, err = parseIntDefault(r.Beds, 1); err != nil {
		return nil, valueErr(r.Line, "beds", r.Beds, err)
	}
	if l.TotalReviewers, err = parseIntDefault(r.TotalReviewers, 0); err != nil {
		return nil, valueErr(r.Line, "total reviewers number", r.TotalReviewers, err)
	}

	if l.HostCertified, err = parseFlag(r.HostCertification); err != nil {
		return nil, valueErr(r.Line, "host Certification", r.HostCertification, err)
	}
	if l.GuestFavourite, err = parseFlag(r.GuestFavourite); err != nil {
		return nil, valueErr(r.Line, "guest favourite", r.GuestFavourite, err)
	}
	if l.InstantBookable, err = parseFlag(r.InstantBookable); err != nil {
		return nil, valueErr(r.Line, "instant bookable", r.InstantBookable, err)
	}

	// Decode runs after numeric normalisation.
	if l.RoomTypeCode, l.RoomType, err = decodeRoomType(r.RoomType); err != nil {
		return nil, valueErr(r.Line, "room_type", r.RoomType, err)
	}

	// The source carries wrong regions for several cities; trust the
	// canonical mapping whenever the city is known.
	if area, ok := AreaByCity[l.City]; ok {
		l.Area = area
	} else {
		l.Area = strings.TrimSpace(r.Area)
	}

	// Derived field, recomputed even if the source carries a column of
	// the same meaning.
	l.RevenueEstimate = l.Price * float64(l.Sales)

	return l, nil
}

func valueErr(line int, column, value string, reason error) error {
	return &models.MalformedValueError{
		Line:   line,
		Column: column,
		Value:  value,
		Reason: reason.Error(),
	}
}

// parseCurrency parses a price-like string. Currency symbols and spaces
// are stripped; a comma is treated as a thousands separator unless the
// final group has exactly two digits, in which case it is the decimal
// separator ("1,234" → 1234, "123,45" → 123.45). Already-clean input
// parses unchanged, so the operation is idempotent.
func parseCurrency(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty")
	}

	for _, sym := range []string{"$", "€", "£", " "} {
		s = strings.ReplaceAll(s, sym, "")
	}

	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			// "1,234.50": commas can only be grouping separators.
			s = strings.ReplaceAll(s, ",", "")
		} else {
			parts := strings.Split(s, ",")
			if len(parts[len(parts)-1]) == 2 {
				s = strings.Join(parts[:len(parts)-1], "") + "." + parts[len(parts)-1]
			} else {
				s = strings.Join(parts, "")
			}
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not numeric after currency strip")
	}
	if v < 0 {
		return 0, fmt.Errorf("negative price")
	}
	return v, nil
}

// parseDecimal parses a number that may use a comma as its decimal
// separator ("6,81" → 6.81). The comma is only substituted when it is
// the sole separator present; a value carrying both "," and "." is
// ambiguous and fails. Period-decimal input passes through untouched.
// Empty cells take the caller's default.
func parseDecimal(raw string, def float64) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}

	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			return 0, fmt.Errorf("ambiguous decimal separators")
		}
		s = strings.Replace(s, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not numeric")
	}
	return v, nil
}

// decodeRoomType maps an integer code to its display string. A code
// outside the lookup table is an error, never a silent pass-through.
func decodeRoomType(raw string) (int, string, error) {
	s := strings.TrimSpace(raw)
	code, err := strconv.Atoi(s)
	if err != nil {
		return 0, "", fmt.Errorf("not an integer code")
	}
	name, ok := RoomTypeByCode[code]
	if !ok {
		return 0, "", fmt.Errorf("unknown room type code %d", code)
	}
	return code, name, nil
}

func parseID(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer")
	}
	return v, nil
}

func parseIntDefault(raw string, def int) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	// Some exports write integer columns as "12.0".
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		return int(f), nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("not an integer")
	}
	return v, nil
}

// parseFlag reads the 0/1 indicator columns; an empty cell means false.
func parseFlag(raw string) (bool, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return false, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return false, fmt.Errorf("not a 0/1 flag")
	}
	return v != 0, nil
}
