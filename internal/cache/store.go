// Package cache keeps retrieved comparison content in a local badger
// store, keyed by the backend's object name. Object names are
// content-addressed, so a hit can never serve stale content. The cache
// is purely an optimization: every failure degrades to a fresh VCS
// query.
package cache

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

const keyPrefix = "comparee"

type Store struct {
	db     *badger.DB
	enc    *zstd.Encoder
	dec    *zstd.Decoder
	logger *zap.Logger
}

func Open(path string, logger *zap.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening cache at %s: %w", path, err)
	}
	return newStore(db, logger)
}

// OpenInMemory backs the store with badger's in-memory mode. Used by
// tests and by runs with no cache directory.
func OpenInMemory(logger *zap.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening in-memory cache: %w", err)
	}
	return newStore(db, logger)
}

func newStore(db *badger.DB, logger *zap.Logger) (*Store, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating decoder: %w", err)
	}
	return &Store{db: db, enc: enc, dec: dec, logger: logger}, nil
}

func (s *Store) Close() error {
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}

func makeKey(object string) []byte {
	return []byte(keyPrefix + ":" + object)
}

// Get returns the cached baseline for an object name, or false on any
// miss or cache error. The content comes back exactly as it was
// stored.
func (s *Store) Get(object string) (string, bool) {
	if object == "" {
		return "", false
	}

	var compressed []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(makeKey(object))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			compressed = append([]byte(nil), val...)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return "", false
	}
	if err != nil {
		s.logger.Warn("cache read failed", zap.String("object", object), zap.Error(err))
		return "", false
	}

	raw, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		s.logger.Warn("cache entry corrupt", zap.String("object", object), zap.Error(err))
		return "", false
	}
	return string(raw), true
}

// Put stores the baseline content for an object name. Errors are
// logged and dropped.
func (s *Store) Put(object, content string) {
	if object == "" {
		return
	}

	compressed := s.enc.EncodeAll([]byte(content), nil)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(makeKey(object), compressed)
	})
	if err != nil {
		s.logger.Warn("cache write failed", zap.String("object", object), zap.Error(err))
	}
}
