// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/otakulab/anisuggest/internal/recommend"
)

// LoadItems returns the full catalog, ascending by item ID.
func (db *DB) LoadItems(ctx context.Context) (items []recommend.Item, err error) {
	start := time.Now()
	defer func() { db.observe("select", "anime", start, err) }()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT anime_id, name, COALESCE(genre, '[]'), COALESCE(type, ''),
		       COALESCE(episodes, 0), COALESCE(rating, 0), COALESCE(members, 0)
		FROM anime
		ORDER BY anime_id`)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // read-only cursor

	for rows.Next() {
		var it recommend.Item
		var genreJSON string
		if err = rows.Scan(&it.ID, &it.Name, &genreJSON, &it.Kind, &it.Episodes, &it.Rating, &it.Members); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if genreJSON != "" && genreJSON != "[]" {
			if err = json.Unmarshal([]byte(genreJSON), &it.Genres); err != nil {
				return nil, fmt.Errorf("decode genres for item %d: %w", it.ID, err)
			}
		}
		items = append(items, it)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	return items, nil
}

// LoadRatings returns all rating events, including WatchedUnrated
// rows; the matrix builder decides what counts as a training signal.
func (db *DB) LoadRatings(ctx context.Context) (events []recommend.RatingEvent, err error) {
	start := time.Now()
	defer func() { db.observe("select", "ratings", start, err) }()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, anime_id, rating, created_at
		FROM ratings
		ORDER BY user_id, anime_id`)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // read-only cursor

	for rows.Next() {
		var e recommend.RatingEvent
		var ts sql.NullTime
		if err = rows.Scan(&e.UserID, &e.ItemID, &e.Rating, &ts); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		if ts.Valid {
			e.Timestamp = ts.Time
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	return events, nil
}

// SaveItems inserts or replaces catalog entries.
func (db *DB) SaveItems(ctx context.Context, items []recommend.Item) (err error) {
	start := time.Now()
	defer func() { db.observe("insert", "anime", start, err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save items: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() //nolint:errcheck // already failing
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO anime (anime_id, name, genre, type, episodes, rating, members)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (anime_id) DO UPDATE SET
			name = EXCLUDED.name,
			genre = EXCLUDED.genre,
			type = EXCLUDED.type,
			episodes = EXCLUDED.episodes,
			rating = EXCLUDED.rating,
			members = EXCLUDED.members`)
	if err != nil {
		return fmt.Errorf("prepare item upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }() //nolint:errcheck // statement scoped to tx

	for _, it := range items {
		genres := it.Genres
		if genres == nil {
			genres = []string{}
		}
		genreJSON, jerr := json.Marshal(genres)
		if jerr != nil {
			err = fmt.Errorf("encode genres for item %d: %w", it.ID, jerr)
			return err
		}
		if _, err = stmt.ExecContext(ctx, it.ID, it.Name, string(genreJSON), it.Kind, it.Episodes, it.Rating, it.Members); err != nil {
			return fmt.Errorf("upsert item %d: %w", it.ID, err)
		}
	}
	return tx.Commit()
}

// SaveRatings appends rating events.
func (db *DB) SaveRatings(ctx context.Context, events []recommend.RatingEvent) (err error) {
	start := time.Now()
	defer func() { db.observe("insert", "ratings", start, err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save ratings: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() //nolint:errcheck // already failing
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ratings (user_id, anime_id, rating, created_at)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare rating insert: %w", err)
	}
	defer func() { _ = stmt.Close() }() //nolint:errcheck // statement scoped to tx

	for _, e := range events {
		var ts interface{}
		if !e.Timestamp.IsZero() {
			ts = e.Timestamp
		}
		if _, err = stmt.ExecContext(ctx, e.UserID, e.ItemID, e.Rating, ts); err != nil {
			return fmt.Errorf("insert rating (%d, %d): %w", e.UserID, e.ItemID, err)
		}
	}
	return tx.Commit()
}

// CountRatings returns the number of stored rating events.
func (db *DB) CountRatings(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { db.observe("select", "ratings", start, err) }()

	err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM ratings`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count ratings: %w", err)
	}
	return n, nil
}
