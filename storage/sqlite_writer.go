package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"airbnb-analytics/models"
	"airbnb-analytics/utils"
)

// SQLiteWriter persists cleaned listings to a local SQLite file. It is
// the zero-infrastructure alternative to PostgresWriter behind the same
// ListingWriter interface.
type SQLiteWriter struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewSQLiteWriter opens (or creates) the database file at path and
// recreates the listings table.
func NewSQLiteWriter(path string, logger *utils.Logger) (*SQLiteWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("sqlite: create output dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	if _, err := db.Exec(`DROP TABLE IF EXISTS listings`); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: drop table: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE listings (
			id               INTEGER PRIMARY KEY,
			name             TEXT NOT NULL DEFAULT '',
			host_id          INTEGER NOT NULL,
			host_since       INTEGER NOT NULL DEFAULT 0,
			host_certified   INTEGER NOT NULL DEFAULT 0,
			city             TEXT NOT NULL,
			area             TEXT NOT NULL DEFAULT '',
			room_type        TEXT NOT NULL,
			price            REAL NOT NULL DEFAULT 0,
			sales            INTEGER NOT NULL DEFAULT 0,
			rating           REAL NOT NULL DEFAULT 0,
			total_reviewers  INTEGER NOT NULL DEFAULT 0,
			guest_favourite  INTEGER NOT NULL DEFAULT 0,
			revenue_estimate REAL NOT NULL DEFAULT 0
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: create table: %w", err)
	}
	for _, idx := range []string{
		`CREATE INDEX idx_listings_city ON listings(city)`,
		`CREATE INDEX idx_listings_area ON listings(area)`,
		`CREATE INDEX idx_listings_price ON listings(price)`,
	} {
		if _, err := db.Exec(idx); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: create index: %w", err)
		}
	}

	return &SQLiteWriter{db: db, logger: logger}, nil
}

// Write inserts all cleaned listings in one transaction.
func (sw *SQLiteWriter) Write(listings []*models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	tx, err := sw.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}

	cols := []string{
		"id", "name", "host_id", "host_since", "host_certified",
		"city", "area", "room_type", "price", "sales", "rating",
		"total_reviewers", "guest_favourite", "revenue_estimate",
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",")
	stmt, err := tx.Prepare(
		`INSERT OR REPLACE INTO listings (` + strings.Join(cols, ",") + `) VALUES (` + placeholders + `)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite: prepare: %w", err)
	}
	defer stmt.Close()

	for _, l := range listings {
		if _, err := stmt.Exec(
			l.ID, l.Name, l.HostID, l.HostSince, l.HostCertified,
			l.City, l.Area, l.RoomType, l.Price, l.Sales, l.Rating,
			l.TotalReviewers, l.GuestFavourite, l.RevenueEstimate,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite: insert listing %d: %w", l.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	sw.logger.Debug("[sqlite] Stored %d listings", len(listings))
	return nil
}

// Close closes the database file.
func (sw *SQLiteWriter) Close() error {
	return sw.db.Close()
}
