// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package recommend

import "fmt"

// Config tunes the recommendation engine.
type Config struct {
	// KNeighbors is the neighborhood size for the weighted-average
	// CF prediction. Default: 20.
	KNeighbors int

	// MaterializeThreshold is the largest entity count for which the
	// full cosine similarity matrix is precomputed.
	// Default: DefaultMaterializeThreshold.
	MaterializeThreshold int

	// PopularityWeight blends normalized popularity into ranked CF
	// scores: score' = (1-w)*score_norm + w*pop_norm*max(score).
	// Zero disables blending. Default: 0.
	PopularityWeight float64

	// SimilarPerLiked is how many similar items each liked item
	// contributes to content-based voting. Default: 20.
	SimilarPerLiked int

	// MinPopularRating is the catalog-rating floor for the popularity
	// fallback list. Default: 7.
	MinPopularRating float64

	// ContentWeight, ItemWeight and UserWeight are the hybrid blend
	// weights. They are normalized to sum to one at construction.
	// Defaults: 0.3, 0.35, 0.35.
	ContentWeight float64
	ItemWeight    float64
	UserWeight    float64
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		KNeighbors:           20,
		MaterializeThreshold: DefaultMaterializeThreshold,
		PopularityWeight:     0,
		SimilarPerLiked:      20,
		MinPopularRating:     7,
		ContentWeight:        0.3,
		ItemWeight:           0.35,
		UserWeight:           0.35,
	}
}

// withDefaults fills zero values with defaults.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.KNeighbors <= 0 {
		c.KNeighbors = d.KNeighbors
	}
	if c.MaterializeThreshold <= 0 {
		c.MaterializeThreshold = d.MaterializeThreshold
	}
	if c.SimilarPerLiked <= 0 {
		c.SimilarPerLiked = d.SimilarPerLiked
	}
	if c.MinPopularRating <= 0 {
		c.MinPopularRating = d.MinPopularRating
	}
	if c.ContentWeight <= 0 && c.ItemWeight <= 0 && c.UserWeight <= 0 {
		c.ContentWeight = d.ContentWeight
		c.ItemWeight = d.ItemWeight
		c.UserWeight = d.UserWeight
	}
	return c
}

// Validate checks configuration ranges.
func (c Config) Validate() error {
	if c.KNeighbors < 0 {
		return fmt.Errorf("k_neighbors must be non-negative, got %d", c.KNeighbors)
	}
	if c.PopularityWeight < 0 || c.PopularityWeight > 1 {
		return fmt.Errorf("popularity_weight must be in [0, 1], got %v", c.PopularityWeight)
	}
	if c.ContentWeight < 0 || c.ItemWeight < 0 || c.UserWeight < 0 {
		return fmt.Errorf("hybrid weights must be non-negative, got (%v, %v, %v)",
			c.ContentWeight, c.ItemWeight, c.UserWeight)
	}
	if c.MinPopularRating < 0 || c.MinPopularRating > 10 {
		return fmt.Errorf("min_popular_rating must be in [0, 10], got %v", c.MinPopularRating)
	}
	return nil
}
