// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

// Package storage persists fitted model state as one opaque blob per
// model name in a Badger key-value store.
//
// Models are serialized with Go's gob encoding, gzip-compressed and
// checksummed with SHA-256; Load verifies the checksum before decoding
// so a corrupted artifact fails loudly instead of producing a silently
// wrong model. The state structs in this package are the explicit,
// versionable schema of what a fitted model contains; the engine
// converts between them and its in-memory representation.
package storage
