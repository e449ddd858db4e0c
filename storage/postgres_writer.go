package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"re-crawler/models"
)

var (
	openDB       = sql.Open
	pingAttempts = 10
	pingDelay    = 2 * time.Second
)

// PostgresWriter persists listing records to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := openDB("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < pingAttempts; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		if i < pingAttempts-1 {
			time.Sleep(pingDelay)
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

// private is TEXT because it holds "true", "false" or "NA".
func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id          SERIAL PRIMARY KEY,
			url         TEXT          NOT NULL,
			price       NUMERIC(14,2) NOT NULL,
			surface     TEXT          NOT NULL,
			rooms       TEXT          NOT NULL DEFAULT 'NA',
			floor       TEXT          NOT NULL DEFAULT 'NA',
			built       TEXT          NOT NULL DEFAULT 'NA',
			private     VARCHAR(5)    NOT NULL DEFAULT 'NA',
			sqm_price   BIGINT        NOT NULL,
			listed      DATE          NOT NULL,
			city        VARCHAR(100)  NOT NULL,
			ad_source   VARCHAR(20)   NOT NULL,
			promo_count INTEGER       NOT NULL DEFAULT 0,
			created_at  TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
			UNIQUE (url, listed)
		);

		CREATE INDEX IF NOT EXISTS idx_listings_city      ON listings(city);
		CREATE INDEX IF NOT EXISTS idx_listings_listed    ON listings(listed);
		CREATE INDEX IF NOT EXISTS idx_listings_ad_source ON listings(ad_source);
	`)
	return err
}

// Write inserts one record. A second record for the same URL on the same
// crawl date is ignored.
func (pw *PostgresWriter) Write(ctx context.Context, r models.ListingRecord) error {
	_, err := pw.db.ExecContext(ctx, `
		INSERT INTO listings (url, price, surface, rooms, floor, built, private,
		                      sqm_price, listed, city, ad_source, promo_count)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (url, listed) DO NOTHING
	`, r.URL, r.Price, r.Surface, r.Rooms, r.Floor, r.Built, r.Private.String(),
		r.SqmPrice, r.Listed, r.City, string(r.AdSource), r.PromoCount)
	if err != nil {
		return fmt.Errorf("postgres: insert %s: %w", r.URL, err)
	}
	return nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
