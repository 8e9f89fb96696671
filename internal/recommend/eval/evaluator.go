// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package eval

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/otakulab/anisuggest/internal/logging"
	"github.com/otakulab/anisuggest/internal/recommend"
)

// Result is one offline evaluation of one model.
type Result struct {
	ModelName  string    `json:"model_name"`
	TrainedAt  time.Time `json:"trained_at"`
	RMSE       float64   `json:"rmse"`
	MAE        float64   `json:"mae"`
	PrecisionK float64   `json:"precision_k"`
	RecallK    float64   `json:"recall_k"`
	F1K        float64   `json:"f1_k"`
	NDCGK      float64   `json:"ndcg_k"`
	Coverage   float64   `json:"coverage"`
	Diversity  float64   `json:"diversity"`
	K          int       `json:"k"`

	// UsersEvaluated and SamplesEvaluated record how much of the test
	// set actually contributed after sampling and skipped failures.
	UsersEvaluated   int `json:"users_evaluated"`
	SamplesEvaluated int `json:"samples_evaluated"`

	Description string `json:"description"`
}

// Evaluator scores a fitted model against held-out test events.
type Evaluator struct {
	// K is the ranking cutoff. Default: 10.
	K int

	// RelevanceThreshold is the minimum test rating that marks an item
	// relevant to a user. Default: LikeThreshold.
	RelevanceThreshold float64

	// MaxUsers caps the number of test users scored on ranking
	// metrics. Default: 1000.
	MaxUsers int

	// MaxRatingSamples caps the number of (user, item) pairs scored on
	// rating accuracy. Default: 5000.
	MaxRatingSamples int

	// Seed feeds the sampling RNG. Default: 42.
	Seed int64

	logger zerolog.Logger
}

// NewEvaluator returns an evaluator with defaults filled in.
func NewEvaluator() Evaluator {
	return Evaluator{
		K:                  10,
		RelevanceThreshold: recommend.LikeThreshold,
		MaxUsers:           1000,
		MaxRatingSamples:   5000,
		Seed:               42,
		logger:             logging.Component("eval"),
	}
}

func (e Evaluator) withDefaults() Evaluator {
	d := NewEvaluator()
	if e.K <= 0 {
		e.K = d.K
	}
	if e.RelevanceThreshold <= 0 {
		e.RelevanceThreshold = d.RelevanceThreshold
	}
	if e.MaxUsers <= 0 {
		e.MaxUsers = d.MaxUsers
	}
	if e.MaxRatingSamples <= 0 {
		e.MaxRatingSamples = d.MaxRatingSamples
	}
	if e.Seed == 0 {
		e.Seed = d.Seed
	}
	e.logger = d.logger
	return e
}

// Evaluate scores model against the held-out test events. Per-user and
// per-pair prediction failures are logged and skipped, never fatal; the
// only returned error is context cancellation.
func (e Evaluator) Evaluate(
	ctx context.Context,
	model recommend.Recommender,
	test []recommend.RatingEvent,
	catalog []recommend.Item,
) (*Result, error) {
	e = e.withDefaults()
	rng := rand.New(rand.NewSource(e.Seed)) //nolint:gosec // reproducible sampling, not crypto

	res := &Result{
		ModelName: model.Name(),
		TrainedAt: time.Now().UTC(),
		K:         e.K,
	}

	features := make(map[int][]string, len(catalog))
	for _, it := range catalog {
		features[it.ID] = it.Genres
	}

	// Relevant item sets from explicit test ratings at or above the
	// threshold.
	relevant := make(map[int]map[int]struct{})
	for _, ev := range test {
		if !ev.Explicit() || float64(ev.Rating) < e.RelevanceThreshold {
			continue
		}
		set := relevant[ev.UserID]
		if set == nil {
			set = make(map[int]struct{})
			relevant[ev.UserID] = set
		}
		set[ev.ItemID] = struct{}{}
	}

	users := make([]int, 0, len(relevant))
	for uid := range relevant {
		users = append(users, uid)
	}
	sort.Ints(users)
	if len(users) > e.MaxUsers {
		rng.Shuffle(len(users), func(i, j int) { users[i], users[j] = users[j], users[i] })
		users = users[:e.MaxUsers]
		sort.Ints(users)
	}

	var (
		sumP, sumR, sumF1, sumNDCG, sumDiv float64
		recLists                           [][]int
		skippedUsers                       int
		coldUsers                          int
	)
	for _, uid := range users {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := model.Predict(ctx, uid, e.K)
		if err != nil {
			skippedUsers++
			e.logger.Debug().Err(err).Int("user_id", uid).Msg("ranked prediction skipped")
			continue
		}
		// Users the model cannot rank at all would only dilute the
		// averages with zeros; count them separately instead.
		if len(recs) == 0 {
			coldUsers++
			continue
		}

		rel := relevant[uid]
		sumP += PrecisionAtK(recs, rel, e.K)
		sumR += RecallAtK(recs, rel, e.K)
		sumF1 += F1AtK(recs, rel, e.K)
		sumNDCG += NDCGAtK(recs, rel, e.K)
		sumDiv += Diversity(recs, features)
		recLists = append(recLists, recs)
		res.UsersEvaluated++
	}
	if res.UsersEvaluated > 0 {
		n := float64(res.UsersEvaluated)
		res.PrecisionK = sumP / n
		res.RecallK = sumR / n
		res.F1K = sumF1 / n
		res.NDCGK = sumNDCG / n
		res.Diversity = sumDiv / n
	}
	res.Coverage = Coverage(recLists, len(catalog))

	// Rating accuracy over sampled explicit test pairs.
	pairs := make([]recommend.RatingEvent, 0, len(test))
	for _, ev := range test {
		if ev.Explicit() {
			pairs = append(pairs, ev)
		}
	}
	if len(pairs) > e.MaxRatingSamples {
		rng.Shuffle(len(pairs), func(i, j int) { pairs[i], pairs[j] = pairs[j], pairs[i] })
		pairs = pairs[:e.MaxRatingSamples]
	}

	var actual, predicted []float64
	var skippedPairs int
	for _, ev := range pairs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		est, err := model.PredictRating(ctx, ev.UserID, ev.ItemID)
		if err != nil {
			skippedPairs++
			continue
		}
		actual = append(actual, float64(ev.Rating))
		predicted = append(predicted, est)
	}
	res.SamplesEvaluated = len(actual)
	res.RMSE = RMSE(actual, predicted)
	res.MAE = MAE(actual, predicted)

	res.Description = fmt.Sprintf("offline evaluation @%d over %d users, %d rating samples",
		e.K, res.UsersEvaluated, res.SamplesEvaluated)

	e.logger.Info().
		Str("model", res.ModelName).
		Int("users", res.UsersEvaluated).
		Int("samples", res.SamplesEvaluated).
		Int("skipped_users", skippedUsers).
		Int("cold_users", coldUsers).
		Int("skipped_pairs", skippedPairs).
		Float64("rmse", res.RMSE).
		Float64("precision_k", res.PrecisionK).
		Float64("ndcg_k", res.NDCGK).
		Msg("evaluation complete")
	return res, nil
}
