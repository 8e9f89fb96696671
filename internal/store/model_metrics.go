// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/otakulab/anisuggest/internal/recommend/eval"
)

// ErrNoMetrics is returned when a model has no stored evaluation.
var ErrNoMetrics = errors.New("store: no metrics for model")

// UpsertEvaluation stores an evaluation result keyed by model name,
// replacing any previous row for the same model.
func (db *DB) UpsertEvaluation(ctx context.Context, res *eval.Result) (err error) {
	start := time.Now()
	defer func() { db.observe("upsert", "model_metrics", start, err) }()

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO model_metrics
			(model_name, trained_at, rmse, mae, precision_k, recall_k, f1_k, ndcg_k,
			 coverage, diversity, k, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (model_name) DO UPDATE SET
			trained_at = EXCLUDED.trained_at,
			rmse = EXCLUDED.rmse,
			mae = EXCLUDED.mae,
			precision_k = EXCLUDED.precision_k,
			recall_k = EXCLUDED.recall_k,
			f1_k = EXCLUDED.f1_k,
			ndcg_k = EXCLUDED.ndcg_k,
			coverage = EXCLUDED.coverage,
			diversity = EXCLUDED.diversity,
			k = EXCLUDED.k,
			description = EXCLUDED.description`,
		res.ModelName, res.TrainedAt, res.RMSE, res.MAE, res.PrecisionK, res.RecallK,
		res.F1K, res.NDCGK, res.Coverage, res.Diversity, res.K, res.Description)
	if err != nil {
		return fmt.Errorf("upsert metrics for %q: %w", res.ModelName, err)
	}
	return nil
}

// GetEvaluation returns the stored evaluation for one model.
func (db *DB) GetEvaluation(ctx context.Context, modelName string) (res *eval.Result, err error) {
	start := time.Now()
	defer func() { db.observe("select", "model_metrics", start, err) }()

	res = &eval.Result{}
	err = db.conn.QueryRowContext(ctx, `
		SELECT model_name, trained_at, rmse, mae, precision_k, recall_k, f1_k, ndcg_k,
		       coverage, diversity, k, description
		FROM model_metrics
		WHERE model_name = ?`, modelName).
		Scan(&res.ModelName, &res.TrainedAt, &res.RMSE, &res.MAE, &res.PrecisionK,
			&res.RecallK, &res.F1K, &res.NDCGK, &res.Coverage, &res.Diversity,
			&res.K, &res.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNoMetrics, modelName)
	}
	if err != nil {
		return nil, fmt.Errorf("get metrics for %q: %w", modelName, err)
	}
	return res, nil
}

// ListEvaluations returns all stored evaluations, ascending by model
// name.
func (db *DB) ListEvaluations(ctx context.Context) (results []*eval.Result, err error) {
	start := time.Now()
	defer func() { db.observe("select", "model_metrics", start, err) }()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT model_name, trained_at, rmse, mae, precision_k, recall_k, f1_k, ndcg_k,
		       coverage, diversity, k, description
		FROM model_metrics
		ORDER BY model_name`)
	if err != nil {
		return nil, fmt.Errorf("list metrics: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // read-only cursor

	for rows.Next() {
		res := &eval.Result{}
		if err = rows.Scan(&res.ModelName, &res.TrainedAt, &res.RMSE, &res.MAE,
			&res.PrecisionK, &res.RecallK, &res.F1K, &res.NDCGK, &res.Coverage,
			&res.Diversity, &res.K, &res.Description); err != nil {
			return nil, fmt.Errorf("scan metrics: %w", err)
		}
		results = append(results, res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list metrics: %w", err)
	}
	return results, nil
}
