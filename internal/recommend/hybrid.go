// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package recommend

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/otakulab/anisuggest/internal/logging"
)

// Hybrid blends the content-based, item-based and user-based models
// with fixed weights. Each sub-model contributes its ranked list with a
// linearly decaying rank score; a failing sub-model is logged and
// contributes nothing rather than failing the whole prediction.
type Hybrid struct {
	baseModel

	cfg    Config
	logger zerolog.Logger

	// Blend weights, normalized to sum to one.
	wContent float64
	wItem    float64
	wUser    float64

	content *ContentBased
	itemCF  *ItemCF
	userCF  *UserCF

	// userRatings is the explicit rating history per user, used to
	// derive liked-item sets and to exclude rated items from ranked
	// output.
	userRatings map[int]map[int]float64
}

// NewHybrid creates an unfitted hybrid model owning fresh instances of
// the three sub-models. Non-negative weights from cfg are normalized to
// sum to one; an all-zero triple becomes an even split.
func NewHybrid(cfg Config) *Hybrid {
	cfg = cfg.withDefaults()
	h := &Hybrid{
		baseModel: newBaseModel("hybrid"),
		cfg:       cfg,
		logger:    logging.Component("recommend.hybrid"),
		content:   NewContentBased(cfg),
		itemCF:    NewItemCF(cfg),
		userCF:    NewUserCF(cfg),
	}

	sum := cfg.ContentWeight + cfg.ItemWeight + cfg.UserWeight
	if sum <= 0 {
		h.wContent, h.wItem, h.wUser = 1.0/3, 1.0/3, 1.0/3
	} else {
		h.wContent = cfg.ContentWeight / sum
		h.wItem = cfg.ItemWeight / sum
		h.wUser = cfg.UserWeight / sum
	}
	return h
}

// Weights returns the normalized (content, item, user) blend weights.
func (h *Hybrid) Weights() (content, item, user float64) {
	return h.wContent, h.wItem, h.wUser
}

// Fit fits all three sub-models and records the explicit rating
// history. Any sub-model fit error aborts the whole fit.
func (h *Hybrid) Fit(ctx context.Context, items []Item, ratings []RatingEvent) error {
	h.acquireFitLock()
	defer h.releaseFitLock()

	if contextCancelled(ctx) {
		return ctx.Err()
	}

	h.userRatings = make(map[int]map[int]float64)
	for _, e := range ratings {
		if !e.Explicit() {
			continue
		}
		ur := h.userRatings[e.UserID]
		if ur == nil {
			ur = make(map[int]float64)
			h.userRatings[e.UserID] = ur
		}
		ur[e.ItemID] = float64(e.Rating)
	}

	if err := h.content.Fit(ctx, items, ratings); err != nil {
		return err
	}
	if err := h.itemCF.Fit(ctx, items, ratings); err != nil {
		return err
	}
	if err := h.userCF.Fit(ctx, items, ratings); err != nil {
		return err
	}

	h.markFitted()
	return nil
}

// Predict blends the three sub-model rankings. Each sub-model is asked
// for 2n candidates; candidate i of a list of length L scores
// weight*(1 - i/L). Already-rated items are excluded and ties keep the
// order in which candidates first appeared.
func (h *Hybrid) Predict(ctx context.Context, userID, n int) ([]int, error) {
	h.acquirePredictLock()
	defer h.releasePredictLock()

	if !h.fitted {
		return nil, ErrNotFitted
	}
	if n <= 0 {
		return []int{}, nil
	}

	rated := h.userRatings[userID]
	scores := make(map[int]float64)
	order := make([]int, 0, 6*n)

	add := func(ids []int, w float64) {
		for i, id := range ids {
			if _, isRated := rated[id]; isRated {
				continue
			}
			if _, seen := scores[id]; !seen {
				order = append(order, id)
			}
			scores[id] += w * (1 - float64(i)/float64(len(ids)))
		}
	}

	if liked := h.likedItems(userID); len(liked) > 0 {
		recs, err := h.content.RecommendFromLiked(liked, 2*n)
		if err != nil {
			h.logger.Warn().Err(err).Str("model", h.content.Name()).Msg("sub-model prediction failed")
		} else {
			add(recs, h.wContent)
		}
	}

	cfSubs := []struct {
		model Recommender
		w     float64
	}{
		{h.itemCF, h.wItem},
		{h.userCF, h.wUser},
	}
	for _, s := range cfSubs {
		recs, err := s.model.Predict(ctx, userID, 2*n)
		if err != nil {
			h.logger.Warn().Err(err).Str("model", s.model.Name()).Msg("sub-model prediction failed")
			continue
		}
		add(recs, s.w)
	}

	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order, nil
}

// likedItems returns the user's items rated at or above LikeThreshold,
// ascending by item ID for deterministic voting order.
func (h *Hybrid) likedItems(userID int) []int {
	ur := h.userRatings[userID]
	liked := make([]int, 0, len(ur))
	for id, r := range ur {
		if r >= LikeThreshold {
			liked = append(liked, id)
		}
	}
	sort.Ints(liked)
	return liked
}

// PredictRating returns the weighted average of the sub-model
// estimates, renormalized over the sub-models that produced one. If
// none did, it returns the fixed midpoint.
func (h *Hybrid) PredictRating(ctx context.Context, userID, itemID int) (float64, error) {
	h.acquirePredictLock()
	defer h.releasePredictLock()

	if !h.fitted {
		return 0, ErrNotFitted
	}

	type weighted struct {
		model Recommender
		w     float64
	}
	subs := []weighted{
		{h.content, h.wContent},
		{h.itemCF, h.wItem},
		{h.userCF, h.wUser},
	}

	var num, den float64
	for _, s := range subs {
		est, err := s.model.PredictRating(ctx, userID, itemID)
		if err != nil {
			h.logger.Warn().Err(err).Str("model", s.model.Name()).Msg("sub-model rating failed")
			continue
		}
		num += s.w * est
		den += s.w
	}
	if den <= 0 {
		return DefaultRating, nil
	}
	return num / den, nil
}
