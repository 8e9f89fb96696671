// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/anisuggest/config.yaml",
	"/etc/anisuggest/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "CONFIG_PATH"

// envPrefix namespaces all of the application's environment variables.
const envPrefix = "ANISUGGEST_"

// Load assembles the configuration from three layers with
// ENV > file > defaults precedence, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: struct defaults.
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	// Layer 2: optional YAML file.
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// Layer 3: environment variables (highest priority).
	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file path, checking
// the CONFIG_PATH override before the default search list.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envKeyMap maps environment variable names (sans prefix, lowercased)
// to koanf config paths. Snake-case section keys make a generic
// underscore-to-dot transform ambiguous, so the mapping is explicit.
var envKeyMap = map[string]string{
	"database_path":       "database.path",
	"database_max_memory": "database.max_memory",
	"database_threads":    "database.threads",

	"artifacts_path": "artifacts.path",

	"recommend_k_neighbors":           "recommend.k_neighbors",
	"recommend_materialize_threshold": "recommend.materialize_threshold",
	"recommend_popularity_weight":     "recommend.popularity_weight",
	"recommend_similar_per_liked":     "recommend.similar_per_liked",
	"recommend_min_popular_rating":    "recommend.min_popular_rating",
	"recommend_content_weight":        "recommend.content_weight",
	"recommend_item_weight":           "recommend.item_weight",
	"recommend_user_weight":           "recommend.user_weight",

	"eval_k":                   "eval.k",
	"eval_relevance_threshold": "eval.relevance_threshold",
	"eval_max_users":           "eval.max_users",
	"eval_max_rating_samples":  "eval.max_rating_samples",
	"eval_seed":                "eval.seed",

	"split_test_ratio":  "split.test_ratio",
	"split_min_ratings": "split.min_ratings",
	"split_seed":        "split.seed",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"metrics_enabled": "metrics.enabled",
	"metrics_addr":    "metrics.addr",
}

// envTransformFunc maps ANISUGGEST_* variable names to config paths.
// Unknown variables are dropped rather than guessed at.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return envKeyMap[key]
}
