// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package recommend

import "math"

// DefaultMaterializeThreshold is the largest entity count for which the
// full similarity matrix is held in memory. Above it, rows are computed
// on demand with identical numerics at higher per-call latency.
const DefaultMaterializeThreshold = 5000

// dotSparse returns the dot product of two sparse rows whose column
// indices are strictly ascending.
func dotSparse(aCols []int, aVals []float64, bCols []int, bVals []float64) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(aCols) && j < len(bCols) {
		switch {
		case aCols[i] == bCols[j]:
			sum += aVals[i] * bVals[j]
			i++
			j++
		case aCols[i] < bCols[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// rowNorms returns the Euclidean norm of every row.
func rowNorms(m *Matrix) []float64 {
	norms := make([]float64, m.Rows)
	for r := 0; r < m.Rows; r++ {
		lo, hi := m.RowPtr[r], m.RowPtr[r+1]
		var sq float64
		for _, v := range m.Values[lo:hi] {
			sq += v * v
		}
		norms[r] = math.Sqrt(sq)
	}
	return norms
}

// SimilarityProvider serves cosine similarities between the rows of a
// sparse matrix. Below the materialization threshold the full symmetric
// matrix is precomputed once; above it each requested row is computed
// from the sparse data on every call. The choice is purely a
// memory/latency trade-off and never changes a similarity value.
//
// Cosine of a zero-norm row against anything, including itself, is 0.
type SimilarityProvider struct {
	m     *Matrix
	norms []float64
	full  [][]float64 // nil when serving rows on demand
}

// NewSimilarityProvider prepares cosine similarities over the rows of
// m. maxMaterialize <= 0 selects DefaultMaterializeThreshold.
func NewSimilarityProvider(m *Matrix, maxMaterialize int) *SimilarityProvider {
	if maxMaterialize <= 0 {
		maxMaterialize = DefaultMaterializeThreshold
	}
	s := &SimilarityProvider{m: m, norms: rowNorms(m)}
	if m.Rows <= maxMaterialize {
		s.materialize()
	}
	return s
}

// N returns the number of entities (rows).
func (s *SimilarityProvider) N() int { return s.m.Rows }

// Materialized reports whether the full matrix is held in memory.
func (s *SimilarityProvider) Materialized() bool { return s.full != nil }

func (s *SimilarityProvider) materialize() {
	n := s.m.Rows
	s.full = make([][]float64, n)
	for i := 0; i < n; i++ {
		s.full[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		if s.norms[i] == 0 {
			continue
		}
		s.full[i][i] = 1
		iCols, iVals := s.m.Row(i)
		for j := i + 1; j < n; j++ {
			if s.norms[j] == 0 {
				continue
			}
			jCols, jVals := s.m.Row(j)
			dot := dotSparse(iCols, iVals, jCols, jVals)
			if dot == 0 {
				continue
			}
			sim := dot / (s.norms[i] * s.norms[j])
			s.full[i][j] = sim
			s.full[j][i] = sim
		}
	}
}

// Row returns the similarity of entity i against every entity. When
// materialized the shared backing row is returned and must not be
// mutated; otherwise a fresh slice is computed.
func (s *SimilarityProvider) Row(i int) []float64 {
	if s.full != nil {
		return s.full[i]
	}
	row := make([]float64, s.m.Rows)
	if s.norms[i] == 0 {
		return row
	}
	iCols, iVals := s.m.Row(i)
	for j := 0; j < s.m.Rows; j++ {
		if j == i {
			row[j] = 1
			continue
		}
		if s.norms[j] == 0 {
			continue
		}
		jCols, jVals := s.m.Row(j)
		dot := dotSparse(iCols, iVals, jCols, jVals)
		if dot != 0 {
			row[j] = dot / (s.norms[i] * s.norms[j])
		}
	}
	return row
}

// Pair returns the cosine similarity between entities i and j.
func (s *SimilarityProvider) Pair(i, j int) float64 {
	if s.full != nil {
		return s.full[i][j]
	}
	if s.norms[i] == 0 || s.norms[j] == 0 {
		return 0
	}
	if i == j {
		return 1
	}
	iCols, iVals := s.m.Row(i)
	jCols, jVals := s.m.Row(j)
	dot := dotSparse(iCols, iVals, jCols, jVals)
	if dot == 0 {
		return 0
	}
	return dot / (s.norms[i] * s.norms[j])
}
