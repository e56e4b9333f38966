// Package store persists player snapshots in an embedded Badger database.
package store

import (
	"encoding/json"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/minibook/internal/errors"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// New opens (or creates) the database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // A snapshot is written right before suspension; it must reach disk
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "open snapshot database")
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Info("snapshot database opened", "path", path)

	return &Store{
		db:     db,
		logger: logger,
	}, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	s.logger.Info("closing snapshot database")
	return s.db.Close()
}

// get retrieves the raw value stored under key.
// Returns badger.ErrKeyNotFound when the key is absent.
func (s *Store) get(key []byte) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		data, err = item.ValueCopy(nil)
		return err
	})
	return data, err
}

// set stores a value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Storage("failed to marshal value").WithCause(err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}
