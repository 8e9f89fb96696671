// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

// Package recommend implements the anime recommendation engine: a
// sparse preference matrix over rating events, TF-IDF content vectors
// over genre tags, cosine-similarity neighborhoods, and four
// recommenders (content-based, item-based CF, user-based CF, and a
// weighted hybrid) behind a single capability interface.
//
// # Models
//
// Every model implements Recommender:
//
//	Fit(ctx, items, ratings) error
//	Predict(ctx, userID, n) ([]int, error)
//	PredictRating(ctx, userID, itemID) (float64, error)
//
// Predict returns ranked item IDs the user has not rated. PredictRating
// estimates the 1-10 rating the user would give a single item; it never
// fails on unknown entities, falling back through mean ratings down to
// a fixed midpoint.
//
// # Lifecycle
//
// Fit is an exclusive operation that rebuilds all derived state from
// scratch; prediction methods are pure reads and safe for any number of
// concurrent callers. Service composes fitted models into an immutable
// snapshot swapped atomically on refit, so readers never observe a
// half-updated model.
//
// # Cold start
//
// Unknown users and items are not errors. Ranked prediction for an
// unknown user yields an empty list (Service substitutes the popularity
// fallback); rating prediction degrades to catalog means.
package recommend
