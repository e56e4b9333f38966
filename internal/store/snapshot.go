package store

import (
	"context"
	"encoding/json"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/minibook/internal/domain"
	"github.com/listenupapp/minibook/internal/errors"
)

// snapshotKey is the single entry holding the last background snapshot.
var snapshotKey = []byte("player_snapshot")

// SnapshotVersion is the record layout written by SaveSnapshot.
// Records written before versioning carry no version field and read as 1.
const SnapshotVersion = 1

type snapshotRecord struct {
	Version       int     `json:"version,omitempty"`
	BookID        string  `json:"bookId"`
	KeyPointIndex int     `json:"keyPointIndex"`
	CurrentTime   float64 `json:"currentTime"`
	PlaybackRate  float64 `json:"playbackRate"`
}

// SaveSnapshot replaces the stored snapshot.
func (s *Store) SaveSnapshot(ctx context.Context, snap domain.PlayerSnapshot) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CodeStorage, "save snapshot")
	}

	record := snapshotRecord{
		Version:       SnapshotVersion,
		BookID:        snap.BookID,
		KeyPointIndex: snap.KeyPointIndex,
		CurrentTime:   snap.CurrentTime,
		PlaybackRate:  snap.PlaybackRate,
	}

	if err := s.set(snapshotKey, record); err != nil {
		return errors.Wrap(err, errors.CodeStorage, "save snapshot")
	}

	s.logger.Debug("snapshot saved",
		"book_id", snap.BookID,
		"key_point_index", snap.KeyPointIndex,
		"current_time", snap.CurrentTime,
	)
	return nil
}

// LoadSnapshot returns the stored snapshot, or nil if none exists.
// A record that cannot be decoded or has an unknown version is treated as
// absent; only database failures return an error.
func (s *Store) LoadSnapshot(ctx context.Context) (*domain.PlayerSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "load snapshot")
	}

	data, err := s.get(snapshotKey)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "load snapshot")
	}

	var record snapshotRecord
	if err := json.Unmarshal(data, &record); err != nil {
		s.logger.Warn("ignoring unreadable snapshot", "error", err)
		return nil, nil
	}

	if record.Version == 0 {
		record.Version = 1
	}
	if record.Version != SnapshotVersion {
		s.logger.Warn("ignoring snapshot with unknown version", "version", record.Version)
		return nil, nil
	}

	return &domain.PlayerSnapshot{
		BookID:        record.BookID,
		KeyPointIndex: record.KeyPointIndex,
		CurrentTime:   record.CurrentTime,
		PlaybackRate:  record.PlaybackRate,
	}, nil
}
