// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

// Package config loads layered application configuration:
// struct defaults, then an optional YAML file, then environment
// variables, with ENV > file > defaults precedence.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/otakulab/anisuggest/internal/recommend"
	"github.com/otakulab/anisuggest/internal/recommend/eval"
	"github.com/otakulab/anisuggest/internal/store"
)

// Config is the full application configuration.
type Config struct {
	Database  store.Config    `koanf:"database"`
	Artifacts ArtifactsConfig `koanf:"artifacts"`
	Recommend RecommendConfig `koanf:"recommend"`
	Eval      EvalConfig      `koanf:"eval"`
	Split     SplitConfig     `koanf:"split"`
	Logging   LoggingConfig   `koanf:"logging"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// ArtifactsConfig locates the model artifact store.
type ArtifactsConfig struct {
	// Path is the Badger directory. Empty selects an in-memory store.
	Path string `koanf:"path"`
}

// RecommendConfig tunes the recommendation engine.
type RecommendConfig struct {
	KNeighbors           int     `koanf:"k_neighbors" validate:"min=0"`
	MaterializeThreshold int     `koanf:"materialize_threshold" validate:"min=0"`
	PopularityWeight     float64 `koanf:"popularity_weight" validate:"min=0,max=1"`
	SimilarPerLiked      int     `koanf:"similar_per_liked" validate:"min=0"`
	MinPopularRating     float64 `koanf:"min_popular_rating" validate:"min=0,max=10"`
	ContentWeight        float64 `koanf:"content_weight" validate:"min=0"`
	ItemWeight           float64 `koanf:"item_weight" validate:"min=0"`
	UserWeight           float64 `koanf:"user_weight" validate:"min=0"`
}

// Engine converts to the engine's own config type.
func (c RecommendConfig) Engine() recommend.Config {
	return recommend.Config{
		KNeighbors:           c.KNeighbors,
		MaterializeThreshold: c.MaterializeThreshold,
		PopularityWeight:     c.PopularityWeight,
		SimilarPerLiked:      c.SimilarPerLiked,
		MinPopularRating:     c.MinPopularRating,
		ContentWeight:        c.ContentWeight,
		ItemWeight:           c.ItemWeight,
		UserWeight:           c.UserWeight,
	}
}

// EvalConfig tunes offline evaluation.
type EvalConfig struct {
	K                  int     `koanf:"k" validate:"min=0"`
	RelevanceThreshold float64 `koanf:"relevance_threshold" validate:"min=0,max=10"`
	MaxUsers           int     `koanf:"max_users" validate:"min=0"`
	MaxRatingSamples   int     `koanf:"max_rating_samples" validate:"min=0"`
	Seed               int64   `koanf:"seed"`
}

// Evaluator converts to the eval package's evaluator.
func (c EvalConfig) Evaluator() eval.Evaluator {
	return eval.Evaluator{
		K:                  c.K,
		RelevanceThreshold: c.RelevanceThreshold,
		MaxUsers:           c.MaxUsers,
		MaxRatingSamples:   c.MaxRatingSamples,
		Seed:               c.Seed,
	}
}

// SplitConfig tunes the train/test splitter.
type SplitConfig struct {
	TestRatio  float64 `koanf:"test_ratio" validate:"min=0,max=1"`
	MinRatings int     `koanf:"min_ratings" validate:"min=0"`
	Seed       int64   `koanf:"seed"`
}

// Splitter converts to the eval package's splitter.
func (c SplitConfig) Splitter() eval.Splitter {
	return eval.Splitter{
		TestRatio:  c.TestRatio,
		MinRatings: c.MinRatings,
		Seed:       c.Seed,
	}
}

// LoggingConfig tunes log output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic disabled"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// Default returns the built-in defaults, applied before file and env
// layers.
func Default() *Config {
	ec := recommend.DefaultConfig()
	return &Config{
		Database:  store.DefaultConfig(),
		Artifacts: ArtifactsConfig{Path: "data/models"},
		Recommend: RecommendConfig{
			KNeighbors:           ec.KNeighbors,
			MaterializeThreshold: ec.MaterializeThreshold,
			PopularityWeight:     ec.PopularityWeight,
			SimilarPerLiked:      ec.SimilarPerLiked,
			MinPopularRating:     ec.MinPopularRating,
			ContentWeight:        ec.ContentWeight,
			ItemWeight:           ec.ItemWeight,
			UserWeight:           ec.UserWeight,
		},
		Eval: EvalConfig{
			K:                  10,
			RelevanceThreshold: recommend.LikeThreshold,
			MaxUsers:           1000,
			MaxRatingSamples:   5000,
			Seed:               42,
		},
		Split:   SplitConfig{TestRatio: 0.2, MinRatings: 5, Seed: 42},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Metrics: MetricsConfig{Enabled: false, Addr: ":9090"},
	}
}

// Validate checks struct tags plus cross-field engine constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if err := c.Recommend.Engine().Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}
