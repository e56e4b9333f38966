// Package repository combines the book catalog and the snapshot store behind
// the single collaborator the app state machine talks to.
package repository

import (
	"context"
	"log/slog"

	"github.com/listenupapp/minibook/internal/domain"
)

// BookLoader loads the current book.
type BookLoader interface {
	Load(ctx context.Context) (*domain.Book, error)
}

// SnapshotStore persists the background snapshot.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context) (*domain.PlayerSnapshot, error)
	SaveSnapshot(ctx context.Context, snap domain.PlayerSnapshot) error
}

// Repository serves books and snapshots.
type Repository struct {
	books     BookLoader
	snapshots SnapshotStore
	logger    *slog.Logger
}

// New creates a repository over the given loader and store.
func New(books BookLoader, snapshots SnapshotStore, logger *slog.Logger) *Repository {
	return &Repository{
		books:     books,
		snapshots: snapshots,
		logger:    logger,
	}
}

// LoadBook loads the book. Errors keep the loader's code.
func (r *Repository) LoadBook(ctx context.Context) (*domain.Book, error) {
	return r.books.Load(ctx)
}

// LoadSnapshot returns the last persisted snapshot, or nil if there is none.
func (r *Repository) LoadSnapshot(ctx context.Context) (*domain.PlayerSnapshot, error) {
	snap, err := r.snapshots.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		r.logger.Debug("no snapshot to restore")
		return nil, nil
	}
	if snap.KeyPointIndex < 0 {
		r.logger.Warn("ignoring snapshot with negative key point index", "book_id", snap.BookID, "key_point_index", snap.KeyPointIndex)
		return nil, nil
	}
	return snap, nil
}

// SaveSnapshot persists snap.
func (r *Repository) SaveSnapshot(ctx context.Context, snap domain.PlayerSnapshot) error {
	return r.snapshots.SaveSnapshot(ctx, snap)
}
