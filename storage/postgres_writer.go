package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"craigslist-scraper/models"
	"craigslist-scraper/utils"
)

// PostgresWriter mirrors a scrape into a PostgreSQL table.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 5, BaseDelay: time.Second, Logger: logger}
	if err := retry.Do(ctx, "postgres ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id         SERIAL PRIMARY KEY,
			date_time  TEXT        NOT NULL DEFAULT '',
			town       TEXT        NOT NULL DEFAULT '',
			title      TEXT        NOT NULL,
			price      INTEGER     NOT NULL,
			beds       TEXT,
			sqft       INTEGER,
			url        TEXT        NOT NULL DEFAULT '',
			scraped_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_price ON listings(price);
		CREATE INDEX IF NOT EXISTS idx_listings_town  ON listings(town);
		CREATE INDEX IF NOT EXISTS idx_listings_title ON listings(title);
	`)
	return err
}

// Write replaces the table contents with listings, in order, inside one
// transaction. An empty run still clears the table.
func (pw *PostgresWriter) Write(listings []*models.Listing) error {
	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if err := replaceListings(tx, listings); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

const insertBatchSize = 50

func replaceListings(ex execer, listings []*models.Listing) error {
	if _, err := ex.Exec("DELETE FROM listings"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	for i := 0; i < len(listings); i += insertBatchSize {
		end := min(i+insertBatchSize, len(listings))
		query, args := insertBatch(listings[i:end])
		if _, err := ex.Exec(query, args...); err != nil {
			return fmt.Errorf("postgres: insert batch %d: %w", i/insertBatchSize, err)
		}
	}
	return nil
}

const columnsPerRow = 7

func insertBatch(batch []*models.Listing) (string, []any) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*columnsPerRow)

	for idx, l := range batch {
		base := idx * columnsPerRow
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		valueArgs = append(valueArgs,
			l.PostedAt, l.Neighborhood, l.Title, l.Price, nullBeds(l.Beds), nullSqft(l.Sqft), l.URL)
	}

	query := fmt.Sprintf(
		"INSERT INTO listings (date_time, town, title, price, beds, sqft, url) VALUES %s",
		strings.Join(valueStrings, ","))
	return query, valueArgs
}

func nullBeds(b *string) sql.NullString {
	if b == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *b, Valid: true}
}

func nullSqft(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all stored listings in insertion order.
func (pw *PostgresWriter) FetchAll() ([]*models.Listing, error) {
	rows, err := pw.db.Query(`
		SELECT date_time, town, title, price, beds, sqft, url
		FROM listings
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		var (
			l    models.Listing
			beds sql.NullString
			sqft sql.NullInt64
		)
		if err := rows.Scan(&l.PostedAt, &l.Neighborhood, &l.Title, &l.Price, &beds, &sqft, &l.URL); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		if beds.Valid {
			b := beds.String
			l.Beds = &b
		}
		if sqft.Valid {
			n := int(sqft.Int64)
			l.Sqft = &n
		}
		listings = append(listings, &l)
	}
	return listings, rows.Err()
}
