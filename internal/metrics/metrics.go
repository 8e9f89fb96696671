// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

// Package metrics provides Prometheus instrumentation for the
// recommendation pipeline:
//   - training runs, duration and fitted model dimensions
//   - prediction counts and latency per model
//   - evaluation runs and resulting quality scores
//   - artifact store sizes
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Training Metrics
	TrainingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_training_runs_total",
			Help: "Total number of model training runs",
		},
		[]string{"model", "status"}, // status: "success", "error"
	)

	TrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_training_duration_seconds",
			Help:    "Duration of model training in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"model"},
	)

	ModelUsers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_model_users",
			Help: "Number of users in the fitted model",
		},
		[]string{"model"},
	)

	ModelItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_model_items",
			Help: "Number of items in the fitted model",
		},
		[]string{"model"},
	)

	ModelRatings = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_model_ratings",
			Help: "Number of rating signals in the fitted model",
		},
		[]string{"model"},
	)

	// Prediction Metrics
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_predictions_total",
			Help: "Total number of prediction requests",
		},
		[]string{"model", "kind", "status"}, // kind: "ranked", "rating"
	)

	PredictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_prediction_duration_seconds",
			Help:    "Prediction latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model", "kind"},
	)

	ColdStartFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cold_start_fallbacks_total",
			Help: "Ranked predictions served from the popularity fallback",
		},
	)

	// Evaluation Metrics
	EvaluationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_evaluation_runs_total",
			Help: "Total number of offline evaluation runs",
		},
		[]string{"model", "status"},
	)

	EvaluationScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_evaluation_score",
			Help: "Latest offline evaluation score per metric",
		},
		[]string{"model", "metric"}, // metric: "rmse", "mae", "precision_k", ...
	)

	// Artifact Store Metrics
	ArtifactSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_artifact_size_bytes",
			Help: "Serialized size of the persisted model artifact",
		},
		[]string{"model"},
	)

	ArtifactOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_artifact_operations_total",
			Help: "Artifact store operations",
		},
		[]string{"operation", "status"}, // operation: "save", "load", "delete"
	)

	// Document Store Metrics
	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_query_duration_seconds",
			Help:    "Duration of document store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	StoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_query_errors_total",
			Help: "Total number of document store query errors",
		},
		[]string{"operation", "table"},
	)
)

// ObserveTraining records the outcome and duration of one model fit.
func ObserveTraining(model string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	TrainingRunsTotal.WithLabelValues(model, status).Inc()
	if err == nil {
		TrainingDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())
	}
}

// ObservePrediction records one prediction request.
func ObservePrediction(model, kind string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	PredictionsTotal.WithLabelValues(model, kind, status).Inc()
	if err == nil {
		PredictionDuration.WithLabelValues(model, kind).Observe(time.Since(start).Seconds())
	}
}

// SetModelDimensions publishes the fitted model's user/item/rating counts.
func SetModelDimensions(model string, users, items, ratings int) {
	ModelUsers.WithLabelValues(model).Set(float64(users))
	ModelItems.WithLabelValues(model).Set(float64(items))
	ModelRatings.WithLabelValues(model).Set(float64(ratings))
}
