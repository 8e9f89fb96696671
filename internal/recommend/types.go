// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package recommend

import (
	"context"
	"errors"
	"time"
)

// DefaultRating is the midpoint fallback returned when no rating signal
// exists for a prediction (unknown user and item, empty model).
const DefaultRating = 5.0

// LikeThreshold is the minimum explicit rating treated as a positive
// preference when deriving liked-item sets for content recommendations.
const LikeThreshold = 7.0

// WatchedUnrated is the sentinel rating value recorded when a user
// watched an item but gave no score. It is kept through ingestion but
// never used as a training signal.
const WatchedUnrated = -1

// ErrNotFitted is returned by prediction methods called before Fit.
var ErrNotFitted = errors.New("recommend: model not fitted")

// Item is one catalog entry.
type Item struct {
	// ID is the catalog identifier.
	ID int `json:"anime_id"`

	// Name is the display title.
	Name string `json:"name"`

	// Genres are free-form tags ("Action", "Comedy", ...). May be empty.
	Genres []string `json:"genre"`

	// Kind is the media type (TV, Movie, OVA, ...).
	Kind string `json:"type"`

	// Episodes is the episode count, zero when unknown.
	Episodes int `json:"episodes"`

	// Rating is the catalog-average rating on the 1-10 scale,
	// zero when the catalog has none.
	Rating float64 `json:"rating"`

	// Members is the community size, used as the popularity signal.
	Members int `json:"members"`
}

// RatingEvent is one observed (user, item, rating) triple.
// Rating is either WatchedUnrated or an explicit score in [1, 10].
type RatingEvent struct {
	UserID    int       `json:"user_id"`
	ItemID    int       `json:"anime_id"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// Explicit reports whether the event carries a usable rating signal.
func (e RatingEvent) Explicit() bool {
	return e.Rating > 0
}

// Recommender is the capability shared by all models.
//
// Fit rebuilds the model from the full training snapshot, replacing any
// previous state. Predict returns up to n ranked item IDs the user has
// not rated; an unknown user yields an empty slice, not an error.
// PredictRating estimates the user's rating for one item on the 1-10
// scale and always produces a value once the model is fitted.
type Recommender interface {
	Name() string
	Fit(ctx context.Context, items []Item, ratings []RatingEvent) error
	Predict(ctx context.Context, userID, n int) ([]int, error)
	PredictRating(ctx context.Context, userID, itemID int) (float64, error)
}

// NormalizeRating maps an explicit rating in [1, 10] onto [0, 1].
func NormalizeRating(r float64) float64 {
	v := (r - 1) / 9
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
