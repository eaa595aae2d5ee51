package storage

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"airbnb-analytics/models"
)

// WriteReport renders the city and area aggregates as a two-sheet XLSX
// workbook, streamed to w for download.
func WriteReport(w io.Writer, cityStats []*models.CityStats, areaStats []*models.AreaStats) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Cities"); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	if _, err := f.NewSheet("Areas"); err != nil {
		return fmt.Errorf("xlsx: create sheet: %w", err)
	}

	cityHeader := []any{
		"City", "Area", "Listings", "Avg Price", "Avg Rating",
		"Total Reviews", "Avg Bedrooms", "Avg Bathrooms",
		"Guest Favourite %", "Total Revenue", "Avg Booked Days",
	}
	if err := writeRow(f, "Cities", 1, cityHeader); err != nil {
		return err
	}
	for i, cs := range cityStats {
		row := []any{
			cs.City, cs.Area, cs.ListingCount, cs.AvgPrice, cs.AvgRating,
			cs.TotalReviews, cs.AvgBedrooms, cs.AvgBathrooms,
			cs.PctGuestFavourite, cs.TotalRevenue, cs.AvgSales,
		}
		if err := writeRow(f, "Cities", i+2, row); err != nil {
			return err
		}
	}

	areaHeader := []any{
		"Area", "Listings", "Avg Price", "Avg Rating",
		"Total Revenue", "Total Booked Days",
	}
	if err := writeRow(f, "Areas", 1, areaHeader); err != nil {
		return err
	}
	for i, as := range areaStats {
		row := []any{
			as.Area, as.ListingCount, as.AvgPrice, as.AvgRating,
			as.TotalRevenue, as.TotalSales,
		}
		if err := writeRow(f, "Areas", i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("xlsx: cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("xlsx: set cell %s: %w", cell, err)
		}
	}
	return nil
}
