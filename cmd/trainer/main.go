// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

// Package main is the offline training pipeline for Anisuggest.
//
// The trainer runs the full train-and-evaluate cycle in one shot:
//
//  1. Configuration: layered Koanf v2 loading (env > config.yaml > defaults)
//  2. Document store: load the anime catalog and rating events from DuckDB
//  3. Split: hold out a per-user test set with a training floor
//  4. Fit: content-based, item-based CF, user-based CF, hybrid, popularity
//  5. Evaluate: RMSE/MAE plus precision, recall, F1 and NDCG at k,
//     coverage and diversity, persisted to the model_metrics table
//  6. Refit on the full data set and persist each model's artifact to
//     the Badger store
//
// Every log line of a run carries a run_id field so concurrent or
// historical runs can be separated in aggregated logs.
//
// # Usage
//
//	trainer [-skip-eval] [-sample N]
//
//	-sample N    cap the number of rating events used (0 = all)
//	-skip-eval   skip evaluation and only fit + persist artifacts
//
// Configuration comes from config.yaml or ANISUGGEST_* environment
// variables; see internal/config.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/otakulab/anisuggest/internal/config"
	"github.com/otakulab/anisuggest/internal/logging"
	"github.com/otakulab/anisuggest/internal/metrics"
	"github.com/otakulab/anisuggest/internal/recommend"
	"github.com/otakulab/anisuggest/internal/recommend/eval"
	"github.com/otakulab/anisuggest/internal/recommend/storage"
	"github.com/otakulab/anisuggest/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("training run failed")
	}
}

func run() error {
	sample := flag.Int("sample", 0, "cap the number of rating events used (0 = all)")
	skipEval := flag.Bool("skip-eval", false, "skip evaluation, only fit and persist")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	runID := uuid.New().String()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithRunID(ctx, runID)
	log := logging.Ctx(ctx)

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Addr)
	}

	db, err := store.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }() //nolint:errcheck // shutdown path

	items, err := db.LoadItems(ctx)
	if err != nil {
		return err
	}
	ratings, err := db.LoadRatings(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Int("items", len(items)).
		Int("ratings", len(ratings)).
		Msg("training snapshot loaded")

	if *sample > 0 && len(ratings) > *sample {
		rng := rand.New(rand.NewSource(cfg.Split.Seed)) //nolint:gosec // reproducible sampling
		rng.Shuffle(len(ratings), func(i, j int) { ratings[i], ratings[j] = ratings[j], ratings[i] })
		ratings = ratings[:*sample]
		log.Info().Int("sample", *sample).Msg("rating events sampled")
	}

	svc, err := recommend.NewService(cfg.Recommend.Engine())
	if err != nil {
		return err
	}

	var results []*eval.Result
	if !*skipEval {
		results, err = trainAndEvaluate(ctx, cfg, svc, db, items, ratings)
		if err != nil {
			return err
		}
	}

	// Final fit over the complete data set; this is what gets persisted.
	set, err := svc.Refit(ctx, items, ratings)
	if err != nil {
		return err
	}
	if err := persistArtifacts(ctx, cfg, set); err != nil {
		return err
	}

	logSummary(log, results)
	log.Info().Int64("version", set.Version).Msg("training run complete")
	return nil
}

// trainAndEvaluate fits all models on the training partition, scores
// them against the held-out test set and upserts the results.
func trainAndEvaluate(
	ctx context.Context,
	cfg *config.Config,
	svc *recommend.Service,
	db *store.DB,
	items []recommend.Item,
	ratings []recommend.RatingEvent,
) ([]*eval.Result, error) {
	log := logging.Ctx(ctx)

	train, test := cfg.Split.Splitter().Split(ratings)
	log.Info().
		Int("train", len(train)).
		Int("test", len(test)).
		Msg("train/test split done")

	set, err := svc.Refit(ctx, items, train)
	if err != nil {
		return nil, err
	}

	evaluator := cfg.Eval.Evaluator()
	var results []*eval.Result
	for _, name := range recommend.ModelNames() {
		model, _ := set.Model(name)
		res, err := evaluator.Evaluate(ctx, model, test, items)
		if err != nil {
			metrics.EvaluationRunsTotal.WithLabelValues(name, "error").Inc()
			return nil, fmt.Errorf("evaluate %s: %w", name, err)
		}
		res.TrainedAt = set.TrainedAt
		if err := db.UpsertEvaluation(ctx, res); err != nil {
			metrics.EvaluationRunsTotal.WithLabelValues(name, "error").Inc()
			return nil, err
		}
		metrics.EvaluationRunsTotal.WithLabelValues(name, "success").Inc()
		publishScores(res)
		results = append(results, res)
	}
	return results, nil
}

// publishScores exposes one evaluation's scores as gauges.
func publishScores(res *eval.Result) {
	scores := map[string]float64{
		"rmse":        res.RMSE,
		"mae":         res.MAE,
		"precision_k": res.PrecisionK,
		"recall_k":    res.RecallK,
		"f1_k":        res.F1K,
		"ndcg_k":      res.NDCGK,
		"coverage":    res.Coverage,
		"diversity":   res.Diversity,
	}
	for metric, v := range scores {
		metrics.EvaluationScore.WithLabelValues(res.ModelName, metric).Set(v)
	}
}

// persistArtifacts saves every fitted model's state to the artifact
// store.
func persistArtifacts(ctx context.Context, cfg *config.Config, set *recommend.ModelSet) error {
	st, err := storage.Open(cfg.Artifacts.Path)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }() //nolint:errcheck // shutdown path

	meta := func(name string) storage.Metadata {
		return storage.Metadata{
			Name:        name,
			Version:     set.Version,
			TrainedAt:   set.TrainedAt,
			UserCount:   set.UserCount,
			ItemCount:   set.ItemCount,
			RatingCount: set.RatingCount,
		}
	}

	artifacts := []struct {
		name  string
		state interface{}
	}{
		{recommend.ModelContentBased, set.Content.ExportState()},
		{recommend.ModelItemBased, set.ItemCF.ExportState()},
		{recommend.ModelUserBased, set.UserCF.ExportState()},
		{recommend.ModelHybrid, set.Hybrid.ExportState()},
		{recommend.ModelPopularity, set.Popularity.ExportState()},
	}
	for _, a := range artifacts {
		if err := st.Save(ctx, a.state, meta(a.name)); err != nil {
			return fmt.Errorf("persist %s: %w", a.name, err)
		}
	}
	return nil
}

// logSummary emits one comparison line per evaluated model.
func logSummary(log zerolog.Logger, results []*eval.Result) {
	for _, res := range results {
		log.Info().
			Str("model", res.ModelName).
			Float64("rmse", res.RMSE).
			Float64("mae", res.MAE).
			Float64("precision_k", res.PrecisionK).
			Float64("recall_k", res.RecallK).
			Float64("f1_k", res.F1K).
			Float64("ndcg_k", res.NDCGK).
			Float64("coverage", res.Coverage).
			Float64("diversity", res.Diversity).
			Msg("evaluation summary")
	}
}

// serveMetrics exposes the Prometheus endpoint until process exit.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logging.Info().Str("addr", addr).Msg("metrics endpoint listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Warn().Err(err).Msg("metrics endpoint stopped")
	}
}
