// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

// Package store is the DuckDB-backed document store holding the anime
// catalog, the rating events and the per-model evaluation metrics.
// It is a thin persistence adapter: all recommendation semantics live
// in the recommend packages.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // database/sql driver
	"github.com/rs/zerolog"

	"github.com/otakulab/anisuggest/internal/logging"
	"github.com/otakulab/anisuggest/internal/metrics"
)

// Config holds document store settings.
type Config struct {
	// Path is the database file. Empty opens an in-memory database.
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB's memory usage (e.g. "2GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads is DuckDB's worker thread count.
	Threads int `koanf:"threads"`
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		Path:      "data/anisuggest.db",
		MaxMemory: "2GB",
		Threads:   4,
	}
}

// DB wraps the DuckDB connection.
type DB struct {
	conn   *sql.DB
	logger zerolog.Logger
}

// Open opens the database and creates any missing tables.
func Open(cfg Config) (*DB, error) {
	if cfg.MaxMemory == "" {
		cfg.MaxMemory = "2GB"
	}
	if cfg.Threads <= 0 {
		cfg.Threads = 4
	}
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	// Disable extension auto-install to avoid network access on open.
	connStr := fmt.Sprintf(
		"%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		path, cfg.Threads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	// DuckDB is embedded; a single writer connection avoids lock
	// contention between concurrent statements.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, logger: logging.Component("store")}
	if err := db.migrate(); err != nil {
		_ = conn.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("migrate document store: %w", err)
	}
	return db, nil
}

// Close releases the connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema if it does not exist.
func (db *DB) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS anime (
			anime_id INTEGER PRIMARY KEY,
			name     VARCHAR NOT NULL,
			genre    VARCHAR,
			type     VARCHAR,
			episodes INTEGER,
			rating   DOUBLE,
			members  INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS ratings (
			user_id    INTEGER NOT NULL,
			anime_id   INTEGER NOT NULL,
			rating     INTEGER NOT NULL,
			created_at TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ratings_user ON ratings (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ratings_anime ON ratings (anime_id)`,
		`CREATE TABLE IF NOT EXISTS model_metrics (
			model_name  VARCHAR PRIMARY KEY,
			trained_at  TIMESTAMP,
			rmse        DOUBLE,
			mae         DOUBLE,
			precision_k DOUBLE,
			recall_k    DOUBLE,
			f1_k        DOUBLE,
			ndcg_k      DOUBLE,
			coverage    DOUBLE,
			diversity   DOUBLE,
			k           INTEGER,
			description VARCHAR
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:min(40, len(stmt))], err)
		}
	}
	return nil
}

// observe records query latency and outcome for one store operation.
func (db *DB) observe(operation, table string, start time.Time, err error) {
	if err != nil {
		metrics.StoreQueryErrors.WithLabelValues(operation, table).Inc()
		return
	}
	metrics.StoreQueryDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// Ping verifies the connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}
