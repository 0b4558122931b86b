package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"realestate-bi/models"
	"realestate-bi/utils"
)

const listingsTable = "listings"

var listingColumns = []string{
	"row_index", "listing_url", "title", "location", "location_main", "property_type",
	"price_egp", "area_sqm", "down_payment_egp", "bedrooms", "bathrooms",
	"price_per_sqm", "price_bucket",
}

// dialect bundles what differs between the supported databases.
type dialect struct {
	driverName string
	flavor     sqlbuilder.Flavor
	schema     []string
}

var dialects = map[string]dialect{
	"postgres": {
		driverName: "postgres",
		flavor:     sqlbuilder.PostgreSQL,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS listings (
				id               SERIAL PRIMARY KEY,
				row_index        INTEGER          NOT NULL,
				listing_url      TEXT             NOT NULL DEFAULT '',
				title            TEXT             NOT NULL DEFAULT '',
				location         TEXT             NOT NULL DEFAULT '',
				location_main    TEXT             NOT NULL,
				property_type    TEXT             NOT NULL,
				price_egp        BIGINT,
				area_sqm         BIGINT,
				down_payment_egp BIGINT,
				bedrooms         INTEGER          NOT NULL DEFAULT 0,
				bathrooms        INTEGER          NOT NULL DEFAULT 0,
				price_per_sqm    DOUBLE PRECISION,
				price_bucket     VARCHAR(16)      NOT NULL DEFAULT '',
				created_at       TIMESTAMPTZ      NOT NULL DEFAULT NOW()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_listings_location_main ON listings(location_main)`,
			`CREATE INDEX IF NOT EXISTS idx_listings_property_type ON listings(property_type)`,
			`CREATE INDEX IF NOT EXISTS idx_listings_price_egp     ON listings(price_egp)`,
		},
	},
	"sqlite": {
		driverName: "sqlite",
		flavor:     sqlbuilder.SQLite,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS listings (
				id               INTEGER PRIMARY KEY AUTOINCREMENT,
				row_index        INTEGER NOT NULL,
				listing_url      TEXT    NOT NULL DEFAULT '',
				title            TEXT    NOT NULL DEFAULT '',
				location         TEXT    NOT NULL DEFAULT '',
				location_main    TEXT    NOT NULL,
				property_type    TEXT    NOT NULL,
				price_egp        INTEGER,
				area_sqm         INTEGER,
				down_payment_egp INTEGER,
				bedrooms         INTEGER NOT NULL DEFAULT 0,
				bathrooms        INTEGER NOT NULL DEFAULT 0,
				price_per_sqm    REAL,
				price_bucket     TEXT    NOT NULL DEFAULT '',
				created_at       TEXT    NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_listings_location_main ON listings(location_main)`,
			`CREATE INDEX IF NOT EXISTS idx_listings_property_type ON listings(property_type)`,
			`CREATE INDEX IF NOT EXISTS idx_listings_price_egp     ON listings(price_egp)`,
		},
	},
}

// listingRow is the database shape of a canonical listing.
type listingRow struct {
	RowIndex       int             `db:"row_index"`
	ListingURL     string          `db:"listing_url"`
	Title          string          `db:"title"`
	Location       string          `db:"location"`
	LocationMain   string          `db:"location_main"`
	PropertyType   string          `db:"property_type"`
	PriceEGP       sql.NullInt64   `db:"price_egp"`
	AreaSqm        sql.NullInt64   `db:"area_sqm"`
	DownPaymentEGP sql.NullInt64   `db:"down_payment_egp"`
	Bedrooms       int             `db:"bedrooms"`
	Bathrooms      int             `db:"bathrooms"`
	PricePerSqm    sql.NullFloat64 `db:"price_per_sqm"`
	PriceBucket    string          `db:"price_bucket"`
}

// SQLStore persists canonical listings to PostgreSQL or SQLite.
type SQLStore struct {
	db      *sqlx.DB
	dialect dialect
	logger  *utils.Logger
}

// OpenSQLStore connects to driver ("postgres" or "sqlite"), retrying the
// initial ping, and creates the listings table if needed.
func OpenSQLStore(ctx context.Context, driver, dsn string, retry *utils.RetryConfig, logger *utils.Logger) (*SQLStore, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}

	db, err := sqlx.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// One writer at a time; avoids SQLITE_BUSY inside the write transaction.
		db.SetMaxOpenConns(1)
	}

	if err := retry.Do(ctx, driver+"-ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: %w", err)
	}

	s := &SQLStore{db: db, dialect: d, logger: logger}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Write replaces the stored table with listings in one transaction,
// inserting in batches.
func (s *SQLStore) Write(ctx context.Context, listings []*models.Listing) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	del := s.dialect.flavor.NewDeleteBuilder()
	del.DeleteFrom(listingsTable)
	q, args := del.Build()
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("store: clear: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := min(i+batchSize, len(listings))
		if err := s.insertBatch(ctx, tx, i, listings[i:end]); err != nil {
			return fmt.Errorf("store: insert rows %d-%d: %w", i, end-1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	s.logger.Info("[store] Stored %d listings (%s)", len(listings), s.dialect.driverName)
	return nil
}

func (s *SQLStore) insertBatch(ctx context.Context, tx *sqlx.Tx, offset int, batch []*models.Listing) error {
	ib := s.dialect.flavor.NewInsertBuilder()
	ib.InsertInto(listingsTable)
	ib.Cols(listingColumns...)
	for i, l := range batch {
		ib.Values(
			offset+i, l.ListingURL, l.Title, l.Location, l.LocationMain, l.PropertyType,
			nullInt(l.PriceEGP), nullInt(l.AreaSqm), nullInt(l.DownPaymentEGP),
			l.Bedrooms, l.Bathrooms, nullFloat(l.PricePerSqm), l.PriceBucket,
		)
	}

	q, args := ib.Build()
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

// FetchAll returns every stored listing in its original order.
func (s *SQLStore) FetchAll(ctx context.Context) ([]*models.Listing, error) {
	sb := s.dialect.flavor.NewSelectBuilder()
	sb.Select(listingColumns...)
	sb.From(listingsTable)
	sb.OrderBy("row_index").Asc()

	q, args := sb.Build()
	var rows []listingRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("store: fetch all: %w", err)
	}

	out := make([]*models.Listing, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toListing())
	}
	return out, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (r listingRow) toListing() *models.Listing {
	l := &models.Listing{
		ListingURL:     r.ListingURL,
		Title:          r.Title,
		Location:       r.Location,
		LocationMain:   r.LocationMain,
		PropertyType:   r.PropertyType,
		PriceEGP:       fromNullInt(r.PriceEGP),
		AreaSqm:        fromNullInt(r.AreaSqm),
		DownPaymentEGP: fromNullInt(r.DownPaymentEGP),
		Bedrooms:       r.Bedrooms,
		Bathrooms:      r.Bathrooms,
	}
	l.Derive()
	return l
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
