// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() does not validate: %v", err)
	}

	if cfg.Recommend.KNeighbors != 20 {
		t.Errorf("default k_neighbors = %d, want 20", cfg.Recommend.KNeighbors)
	}
	if cfg.Eval.K != 10 || cfg.Eval.Seed != 42 {
		t.Errorf("default eval = %+v, want k=10 seed=42", cfg.Eval)
	}
	if cfg.Split.TestRatio != 0.2 || cfg.Split.MinRatings != 5 {
		t.Errorf("default split = %+v, want ratio=0.2 min=5", cfg.Split)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("default logging = %+v, want info/json", cfg.Logging)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative neighbors", func(c *Config) { c.Recommend.KNeighbors = -1 }},
		{"popularity weight above one", func(c *Config) { c.Recommend.PopularityWeight = 1.5 }},
		{"rating floor above scale", func(c *Config) { c.Recommend.MinPopularRating = 11 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"test ratio above one", func(c *Config) { c.Split.TestRatio = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted an invalid config")
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"ANISUGGEST_DATABASE_PATH", "database.path"},
		{"ANISUGGEST_RECOMMEND_K_NEIGHBORS", "recommend.k_neighbors"},
		{"ANISUGGEST_SPLIT_TEST_RATIO", "split.test_ratio"},
		{"ANISUGGEST_LOG_LEVEL", "logging.level"},
		{"ANISUGGEST_METRICS_ADDR", "metrics.addr"},
		{"ANISUGGEST_NOT_A_REAL_KEY", ""}, // unknown keys are dropped
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ANISUGGEST_DATABASE_PATH", "/tmp/override.db")
	t.Setenv("ANISUGGEST_RECOMMEND_K_NEIGHBORS", "7")
	t.Setenv("ANISUGGEST_LOG_LEVEL", "debug")
	t.Setenv("ANISUGGEST_METRICS_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("database.path = %q, want /tmp/override.db", cfg.Database.Path)
	}
	if cfg.Recommend.KNeighbors != 7 {
		t.Errorf("recommend.k_neighbors = %d, want 7", cfg.Recommend.KNeighbors)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q, want debug", cfg.Logging.Level)
	}
	if !cfg.Metrics.Enabled {
		t.Error("metrics.enabled = false, want true")
	}

	// Untouched keys keep their defaults.
	if cfg.Split.Seed != 42 {
		t.Errorf("split.seed = %d, want default 42", cfg.Split.Seed)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("recommend:\n  k_neighbors: 12\nlogging:\n  format: console\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Recommend.KNeighbors != 12 {
		t.Errorf("recommend.k_neighbors = %d, want 12 from file", cfg.Recommend.KNeighbors)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("logging.format = %q, want console from file", cfg.Logging.Format)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("eval:\n  k: 25\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("ANISUGGEST_EVAL_K", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Eval.K != 3 {
		t.Errorf("eval.k = %d, want env override 3", cfg.Eval.K)
	}
}

func TestLoadRejectsInvalidEnvValue(t *testing.T) {
	t.Setenv("ANISUGGEST_LOG_LEVEL", "shout")
	if _, err := Load(); err == nil {
		t.Error("Load accepted an invalid log level")
	}
}

func TestConversions(t *testing.T) {
	cfg := Default()

	ec := cfg.Recommend.Engine()
	if ec.KNeighbors != cfg.Recommend.KNeighbors || ec.ContentWeight != cfg.Recommend.ContentWeight {
		t.Errorf("Engine() = %+v, want values from %+v", ec, cfg.Recommend)
	}

	ev := cfg.Eval.Evaluator()
	if ev.K != cfg.Eval.K || ev.Seed != cfg.Eval.Seed {
		t.Errorf("Evaluator() = %+v, want values from %+v", ev, cfg.Eval)
	}

	sp := cfg.Split.Splitter()
	if sp.TestRatio != cfg.Split.TestRatio || sp.MinRatings != cfg.Split.MinRatings {
		t.Errorf("Splitter() = %+v, want values from %+v", sp, cfg.Split)
	}
}
