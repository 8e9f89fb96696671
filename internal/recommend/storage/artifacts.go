// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/otakulab/anisuggest/internal/logging"
	"github.com/otakulab/anisuggest/internal/metrics"
)

// ErrNotFound is returned when no artifact exists under a model name.
var ErrNotFound = errors.New("storage: model artifact not found")

// keyPrefix namespaces model artifacts inside the shared Badger DB.
const keyPrefix = "model:"

// Metadata describes a persisted model artifact.
type Metadata struct {
	// Name is the model identifier the artifact is keyed by.
	Name string `json:"name"`

	// Version is the model-set generation the artifact came from.
	Version int64 `json:"version"`

	// TrainedAt is when the model was fitted; SavedAt when it was
	// persisted.
	TrainedAt time.Time `json:"trained_at"`
	SavedAt   time.Time `json:"saved_at"`

	// Dimensions of the training snapshot.
	UserCount   int `json:"user_count"`
	ItemCount   int `json:"item_count"`
	RatingCount int `json:"rating_count"`

	// Checksum is the SHA-256 of the uncompressed gob state.
	Checksum string `json:"checksum"`

	// SizeBytes is the stored (compressed) artifact size.
	SizeBytes int64 `json:"size_bytes"`
}

// storedArtifact is the on-disk envelope: metadata plus the
// gzip-compressed gob state.
type storedArtifact struct {
	Metadata       Metadata
	CompressedData []byte
}

// Store is a Badger-backed artifact store holding one blob per model
// name. Saving a name overwrites its previous artifact.
type Store struct {
	db     *badger.DB
	logger zerolog.Logger
}

// Open opens (creating if needed) the artifact store at path.
// An empty path opens an in-memory store, useful for tests.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // badger's own logger is too chatty; we log ourselves
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open artifact store: %w", err)
	}
	return &Store{db: db, logger: logging.Component("storage.artifacts")}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save serializes state and stores it under meta.Name, replacing any
// previous artifact. The checksum and size fields of meta are filled in
// here.
func (s *Store) Save(ctx context.Context, state interface{}, meta Metadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if meta.Name == "" {
		return errors.New("storage: empty model name")
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(state); err != nil {
		metrics.ArtifactOperations.WithLabelValues("save", "error").Inc()
		return fmt.Errorf("encode model state: %w", err)
	}

	hash := sha256.Sum256(raw.Bytes())
	meta.Checksum = hex.EncodeToString(hash[:])
	meta.SavedAt = time.Now().UTC()

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return fmt.Errorf("compress model state: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("compress model state: %w", err)
	}
	meta.SizeBytes = int64(compressed.Len())

	var blob bytes.Buffer
	if err := gob.NewEncoder(&blob).Encode(storedArtifact{
		Metadata:       meta,
		CompressedData: compressed.Bytes(),
	}); err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+meta.Name), blob.Bytes())
	})
	if err != nil {
		metrics.ArtifactOperations.WithLabelValues("save", "error").Inc()
		return fmt.Errorf("store artifact %q: %w", meta.Name, err)
	}

	metrics.ArtifactOperations.WithLabelValues("save", "success").Inc()
	metrics.ArtifactSizeBytes.WithLabelValues(meta.Name).Set(float64(meta.SizeBytes))
	s.logger.Info().
		Str("model", meta.Name).
		Int64("version", meta.Version).
		Int64("size_bytes", meta.SizeBytes).
		Msg("artifact saved")
	return nil
}

// Load reads the artifact stored under name, verifies its checksum and
// decodes the state into target (which must be a pointer).
func (s *Store) Load(ctx context.Context, name string, target interface{}) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var blob []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + name))
		if err != nil {
			return err
		}
		blob, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		metrics.ArtifactOperations.WithLabelValues("load", "error").Inc()
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		metrics.ArtifactOperations.WithLabelValues("load", "error").Inc()
		return nil, fmt.Errorf("read artifact %q: %w", name, err)
	}

	var sf storedArtifact
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&sf); err != nil {
		return nil, fmt.Errorf("decode artifact %q: %w", name, err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress artifact %q: %w", name, err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // close after full read is not actionable
	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("decompress artifact %q: %w", name, err)
	}

	hash := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, fmt.Errorf("artifact %q checksum mismatch: expected %s, got %s",
			name, sf.Metadata.Checksum, checksum)
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(target); err != nil {
		return nil, fmt.Errorf("decode model state %q: %w", name, err)
	}

	metrics.ArtifactOperations.WithLabelValues("load", "success").Inc()
	return &sf.Metadata, nil
}

// List returns the metadata of every stored artifact.
func (s *Store) List(ctx context.Context) ([]Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var metas []Metadata
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var sf storedArtifact
				if err := gob.NewDecoder(bytes.NewReader(val)).Decode(&sf); err != nil {
					return err
				}
				metas = append(metas, sf.Metadata)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	return metas, nil
}

// Delete removes the artifact stored under name. Deleting a missing
// artifact is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + name))
	})
	if err != nil {
		metrics.ArtifactOperations.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("delete artifact %q: %w", name, err)
	}
	metrics.ArtifactOperations.WithLabelValues("delete", "success").Inc()
	return nil
}
