// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package recommend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/otakulab/anisuggest/internal/logging"
	"github.com/otakulab/anisuggest/internal/metrics"
)

// Model name identifiers used for lookup, artifacts and metric labels.
const (
	ModelContentBased = "content_based"
	ModelItemBased    = "item_based"
	ModelUserBased    = "user_based"
	ModelHybrid       = "hybrid"
	ModelPopularity   = "popularity"
)

// ErrUnknownModel is returned for a model name the service does not serve.
var ErrUnknownModel = fmt.Errorf("recommend: unknown model")

// ModelSet is one immutable generation of fitted models. A set is built
// completely before it becomes visible, and is never mutated afterward.
type ModelSet struct {
	Content    *ContentBased
	ItemCF     *ItemCF
	UserCF     *UserCF
	Hybrid     *Hybrid
	Popularity *Popularity

	Version     int64
	TrainedAt   time.Time
	UserCount   int
	ItemCount   int
	RatingCount int
}

// Model returns the named recommender from the set.
func (ms *ModelSet) Model(name string) (Recommender, bool) {
	switch name {
	case ModelContentBased:
		return ms.Content, true
	case ModelItemBased:
		return ms.ItemCF, true
	case ModelUserBased:
		return ms.UserCF, true
	case ModelHybrid:
		return ms.Hybrid, true
	case ModelPopularity:
		return ms.Popularity, true
	default:
		return nil, false
	}
}

// Service serves recommendations from the latest fitted model set.
// Refit is the exclusive writer: it fits a complete new generation off
// to the side and swaps it in atomically, so any number of concurrent
// readers always observe one consistent generation.
type Service struct {
	cfg    Config
	logger zerolog.Logger

	fitMu   sync.Mutex // serializes Refit
	active  atomic.Pointer[ModelSet]
	version atomic.Int64
}

// NewService creates a service with no fitted models yet.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	cfg = cfg.withDefaults()
	return &Service{
		cfg:    cfg,
		logger: logging.Component("recommend.service"),
	}, nil
}

// Active returns the current model set, or false before the first
// successful Refit.
func (s *Service) Active() (*ModelSet, bool) {
	ms := s.active.Load()
	return ms, ms != nil
}

// Refit fits a complete new model generation from the given snapshot
// and swaps it in. In-flight predictions keep using the previous
// generation until the swap.
func (s *Service) Refit(ctx context.Context, items []Item, ratings []RatingEvent) (*ModelSet, error) {
	s.fitMu.Lock()
	defer s.fitMu.Unlock()

	set := &ModelSet{
		Content:    NewContentBased(s.cfg),
		ItemCF:     NewItemCF(s.cfg),
		UserCF:     NewUserCF(s.cfg),
		Hybrid:     NewHybrid(s.cfg),
		Popularity: NewPopularity(s.cfg),
		TrainedAt:  time.Now().UTC(),
	}

	models := []Recommender{set.Content, set.ItemCF, set.UserCF, set.Hybrid, set.Popularity}
	for _, m := range models {
		start := time.Now()
		err := m.Fit(ctx, items, ratings)
		metrics.ObserveTraining(m.Name(), start, err)
		if err != nil {
			return nil, fmt.Errorf("fit %s: %w", m.Name(), err)
		}
		s.logger.Info().
			Str("model", m.Name()).
			Dur("elapsed", time.Since(start)).
			Msg("model fitted")
	}

	set.UserCount = set.ItemCF.pref.Users.Len()
	set.ItemCount = len(items)
	set.RatingCount = set.ItemCF.pref.Ratings.NNZ()
	set.Version = s.version.Add(1)

	for _, m := range models {
		metrics.SetModelDimensions(m.Name(), set.UserCount, set.ItemCount, set.RatingCount)
	}

	s.active.Store(set)
	s.logger.Info().
		Int64("version", set.Version).
		Int("users", set.UserCount).
		Int("items", set.ItemCount).
		Int("ratings", set.RatingCount).
		Msg("model set swapped")
	return set, nil
}

// Restore installs an externally assembled model set (e.g. loaded from
// the artifact store) as the active generation.
func (s *Service) Restore(set *ModelSet) {
	s.fitMu.Lock()
	defer s.fitMu.Unlock()
	set.Version = s.version.Add(1)
	s.active.Store(set)
}

// Recommend returns up to n ranked item IDs from the named model. A
// user the model cannot rank (cold start or an empty personalized
// result) falls back to the popularity list.
func (s *Service) Recommend(ctx context.Context, model string, userID, n int) ([]int, error) {
	set, ok := s.Active()
	if !ok {
		return nil, ErrNotFitted
	}
	m, ok := set.Model(model)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}

	start := time.Now()
	recs, err := m.Predict(ctx, userID, n)
	metrics.ObservePrediction(model, "ranked", start, err)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", model, err)
	}

	if len(recs) == 0 && model != ModelPopularity {
		metrics.ColdStartFallbacksTotal.Inc()
		s.logger.Debug().
			Str("model", model).
			Int("user_id", userID).
			Msg("cold start, serving popularity fallback")
		return set.Popularity.TopN(n), nil
	}
	return recs, nil
}

// PredictRating returns the named model's rating estimate for one
// (user, item) pair.
func (s *Service) PredictRating(ctx context.Context, model string, userID, itemID int) (float64, error) {
	set, ok := s.Active()
	if !ok {
		return 0, ErrNotFitted
	}
	m, ok := set.Model(model)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}

	start := time.Now()
	est, err := m.PredictRating(ctx, userID, itemID)
	metrics.ObservePrediction(model, "rating", start, err)
	if err != nil {
		return 0, fmt.Errorf("predict rating %s: %w", model, err)
	}
	return est, nil
}

// ModelNames returns the served model names in a stable order.
func ModelNames() []string {
	return []string{ModelContentBased, ModelItemBased, ModelUserBased, ModelHybrid, ModelPopularity}
}
