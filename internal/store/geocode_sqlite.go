package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/i474232898/weather-image/internal/weather"
)

const createGeocodeCacheQuery = `
CREATE TABLE IF NOT EXISTS geocode_cache (
    query TEXT PRIMARY KEY,
    lat REAL NOT NULL,
    lon REAL NOT NULL,
    created_at INTEGER NOT NULL
);
`

// OpenSQLite opens (creating if needed) the SQLite database at path and
// ensures the cache schema exists. Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %q: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("verify sqlite connection to %q: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, createGeocodeCacheQuery); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return db, nil
}

// GeocodeCache is a SQLite backed weather.Geocoder that remembers the
// results of an upstream geocoder by normalized query text.
type GeocodeCache struct {
	db       *sql.DB
	upstream weather.Geocoder
	ttl      time.Duration
	now      func() time.Time
}

// NewGeocodeCache wraps upstream. ttl <= 0 keeps entries forever.
func NewGeocodeCache(db *sql.DB, upstream weather.Geocoder, ttl time.Duration) *GeocodeCache {
	return &GeocodeCache{
		db:       db,
		upstream: upstream,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Geocode returns the cached coordinate for query or asks the upstream
// geocoder and stores its answer. Cache failures are logged, not returned.
func (c *GeocodeCache) Geocode(ctx context.Context, query string) (weather.Coordinate, error) {
	key := weather.NormalizeQuery(query)

	coord, err := c.Get(ctx, key)
	if err == nil {
		slog.Debug("geocode cache hit", "query", key)
		return coord, nil
	}
	if !errors.Is(err, ErrNotFound) {
		slog.Warn("geocode cache read failed", "query", key, "error", err)
	}

	coord, err = c.upstream.Geocode(ctx, query)
	if err != nil {
		return weather.Coordinate{}, err
	}

	if err := c.Put(ctx, key, coord); err != nil {
		slog.Warn("geocode cache write failed", "query", key, "error", err)
	}
	return coord, nil
}

// Get returns the cached coordinate for a normalized query.
func (c *GeocodeCache) Get(ctx context.Context, key string) (weather.Coordinate, error) {
	if c.db == nil {
		return weather.Coordinate{}, errors.New("geocode cache: db is nil")
	}

	var (
		coord     weather.Coordinate
		createdAt int64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT lat, lon, created_at FROM geocode_cache WHERE query = ?;`, key,
	).Scan(&coord.Lat, &coord.Lon, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return weather.Coordinate{}, ErrNotFound
	}
	if err != nil {
		return weather.Coordinate{}, fmt.Errorf("get geocode cache: %w", err)
	}

	if c.ttl > 0 && c.now().Sub(time.Unix(createdAt, 0)) > c.ttl {
		return weather.Coordinate{}, ErrNotFound
	}
	return coord, nil
}

// Put stores the coordinate for a normalized query.
func (c *GeocodeCache) Put(ctx context.Context, key string, coord weather.Coordinate) error {
	if c.db == nil {
		return errors.New("geocode cache: db is nil")
	}
	if key == "" {
		return errors.New("geocode cache: empty query key")
	}

	_, err := c.db.ExecContext(ctx, `
	INSERT OR REPLACE INTO geocode_cache (query, lat, lon, created_at)
	VALUES (?, ?, ?, ?);
	`, key, coord.Lat, coord.Lon, c.now().Unix())
	if err != nil {
		return fmt.Errorf("insert geocode cache query=%q: %w", key, err)
	}
	return nil
}
