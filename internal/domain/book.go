// Package domain contains the value types of the MiniBook player: books, their
// key points, audio sources, playback rates and persisted snapshots.
package domain

import (
	"cmp"
	"net/url"
	"slices"
)

// Book is a short audiobook made of ordered key points. Immutable once built.
type Book struct {
	ID            string
	Title         string
	Author        string
	CoverImageURL *url.URL
	KeyPoints     []KeyPoint
}

// KeyPoint is one playable section of a book.
type KeyPoint struct {
	ID          string
	Title       string
	Order       int
	AudioSource AudioSource
}

// NewBook builds a Book with its key points sorted ascending by Order.
// Key points sharing an Order keep their input order.
func NewBook(id, title, author string, cover *url.URL, keyPoints []KeyPoint) Book {
	sorted := slices.Clone(keyPoints)
	slices.SortStableFunc(sorted, func(a, b KeyPoint) int {
		return cmp.Compare(a.Order, b.Order)
	})

	return Book{
		ID:            id,
		Title:         title,
		Author:        author,
		CoverImageURL: cover,
		KeyPoints:     sorted,
	}
}

// IsEmpty reports whether the book has no key points to play.
func (b *Book) IsEmpty() bool {
	return len(b.KeyPoints) == 0
}

// HasKeyPoint reports whether index addresses a key point of the book.
func (b *Book) HasKeyPoint(index int) bool {
	return index >= 0 && index < len(b.KeyPoints)
}
