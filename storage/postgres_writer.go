package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"airbnb-analytics/models"
	"airbnb-analytics/utils"
)

// PostgresWriter persists cleaned listings to PostgreSQL.
type PostgresWriter struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use PostgresWriter. The initial
// ping retries with back-off since the database may still be starting.
func NewPostgresWriter(dsn string, maxRetries int, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := utils.Retry(logger, "postgres ping", maxRetries, 2*time.Second, db.Ping); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db, logger: logger}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id               BIGINT PRIMARY KEY,
			name             TEXT          NOT NULL DEFAULT '',
			host_id          BIGINT        NOT NULL,
			host_since       INT           NOT NULL DEFAULT 0,
			host_certified   BOOLEAN       NOT NULL DEFAULT FALSE,
			city             VARCHAR(50)   NOT NULL,
			area             VARCHAR(50)   NOT NULL DEFAULT '',
			room_type        VARCHAR(30)   NOT NULL,
			price            NUMERIC(10,2) NOT NULL DEFAULT 0,
			sales            INT           NOT NULL DEFAULT 0,
			rating           NUMERIC(4,2)  NOT NULL DEFAULT 0,
			total_reviewers  INT           NOT NULL DEFAULT 0,
			guest_favourite  BOOLEAN       NOT NULL DEFAULT FALSE,
			revenue_estimate NUMERIC(14,2) NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_listings_city      ON listings(city);
		CREATE INDEX IF NOT EXISTS idx_listings_area      ON listings(area);
		CREATE INDEX IF NOT EXISTS idx_listings_room_type ON listings(room_type);
		CREATE INDEX IF NOT EXISTS idx_listings_price     ON listings(price);
	`)
	return err
}

// Clear deletes all existing listings from the table.
func (pw *PostgresWriter) Clear() error {
	_, err := pw.db.Exec("DELETE FROM listings")
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write batch-inserts ALL cleaned listings, clearing old data first.
func (pw *PostgresWriter) Write(listings []*models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	if err := pw.Clear(); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := pw.insertBatch(listings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.Listing) error {
	const cols = 14
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, l := range batch {
		base := idx * cols
		placeholders := make([]string, cols)
		for i := range placeholders {
			placeholders[i] = fmt.Sprintf("$%d", base+i+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			l.ID, l.Name, l.HostID, l.HostSince, l.HostCertified,
			l.City, l.Area, l.RoomType, l.Price, l.Sales, l.Rating,
			l.TotalReviewers, l.GuestFavourite, l.RevenueEstimate)
	}

	query := fmt.Sprintf(`
		INSERT INTO listings (id, name, host_id, host_since, host_certified,
			city, area, room_type, price, sales, rating,
			total_reviewers, guest_favourite, revenue_estimate)
		VALUES %s
		ON CONFLICT (id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

// Close closes the database connection.
func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
