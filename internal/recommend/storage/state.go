// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package storage

// SparseMatrixState is the serialized form of a CSR matrix.
type SparseMatrixState struct {
	Rows   int
	Cols   int
	RowPtr []int
	ColIdx []int
	Values []float64
}

// CFState is the serialized state of a neighborhood CF model: the
// preference matrix plus both ID bijections, stored in ascending-ID
// index order.
type CFState struct {
	UserIDs []int
	ItemIDs []int
	Matrix  SparseMatrixState
}

// ContentState is the serialized state of the content-based model:
// the item bijection, the TF-IDF vocabulary and row vectors, and the
// catalog-average ratings backing rating prediction.
type ContentState struct {
	ItemIDs        []int
	Terms          []string
	IDF            []float64
	Rows           SparseMatrixState
	CatalogRatings map[int]float64
}

// PopularityState is the serialized popularity ranking.
type PopularityState struct {
	SortedIDs      []int
	CatalogRatings map[int]float64
}

// HybridState bundles the normalized blend weights, the three
// sub-model states and the rating history the hybrid ranks against.
type HybridState struct {
	ContentWeight float64
	ItemWeight    float64
	UserWeight    float64

	Content ContentState
	ItemCF  CFState
	UserCF  CFState

	UserRatings map[int]map[int]float64
}
