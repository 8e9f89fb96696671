// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package recommend

import (
	"math"
	"sort"
	"strings"
)

// ContentVectors holds TF-IDF document vectors over genre tags.
// Rows is a documents×terms CSR matrix with L2-normalized rows, so the
// cosine of two documents is the plain dot product of their rows.
// Documents with no recognized tags keep an all-zero row.
type ContentVectors struct {
	Terms []string  // vocabulary, ascending; term index = column index
	IDF   []float64 // per-term inverse document frequency
	Rows  *Matrix
}

// normalizeTag canonicalizes a genre tag for vocabulary lookup.
func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// BuildContentVectors fits a TF-IDF model over the tag lists of a
// document corpus. The vocabulary is the sorted set of distinct
// normalized tags; IDF uses the smoothed form ln((1+n)/(1+df)) + 1 so
// no term weight is ever zero or negative.
func BuildContentVectors(docs [][]string) *ContentVectors {
	n := len(docs)

	// Vocabulary and document frequencies.
	df := make(map[string]int)
	for _, tags := range docs {
		seen := make(map[string]struct{}, len(tags))
		for _, t := range tags {
			t = normalizeTag(t)
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	termIdx := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, t := range terms {
		termIdx[t] = i
		idf[i] = math.Log(float64(1+n)/float64(1+df[t])) + 1
	}

	// TF-IDF rows, L2-normalized.
	m := &Matrix{
		Rows:   n,
		Cols:   len(terms),
		RowPtr: make([]int, n+1),
	}
	for d, tags := range docs {
		counts := make(map[int]int, len(tags))
		for _, t := range tags {
			t = normalizeTag(t)
			if t == "" {
				continue
			}
			counts[termIdx[t]]++
		}

		cols := make([]int, 0, len(counts))
		for c := range counts {
			cols = append(cols, c)
		}
		sort.Ints(cols)

		var sq float64
		vals := make([]float64, len(cols))
		for i, c := range cols {
			w := float64(counts[c]) * idf[c]
			vals[i] = w
			sq += w * w
		}
		if norm := math.Sqrt(sq); norm > 0 {
			for i := range vals {
				vals[i] /= norm
			}
		}

		m.ColIdx = append(m.ColIdx, cols...)
		m.Values = append(m.Values, vals...)
		m.RowPtr[d+1] = len(m.ColIdx)
	}

	return &ContentVectors{Terms: terms, IDF: idf, Rows: m}
}
