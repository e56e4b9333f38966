// Package catalog loads the book metadata document and turns it into a domain.Book.
package catalog

import (
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/listenupapp/minibook/internal/domain"
	"github.com/listenupapp/minibook/internal/errors"
	"github.com/listenupapp/minibook/internal/validation"
)

// Document is the on-disk book metadata format.
type Document struct {
	ID            string             `json:"id" validate:"required"`
	Title         string             `json:"title" validate:"required"`
	Author        string             `json:"author"`
	CoverImageURL string             `json:"coverImageURL,omitempty"`
	KeyPoints     []KeyPointDocument `json:"keyPoints" validate:"dive"`
}

// KeyPointDocument is one entry of Document.KeyPoints.
type KeyPointDocument struct {
	ID        string `json:"id" validate:"required"`
	Title     string `json:"title"`
	Order     int    `json:"order"`
	TrackName string `json:"trackName" validate:"required"`
}

// Book converts the document to a domain book. Key points become local
// sources named by TrackName; a cover that is not an absolute URL is dropped.
// Display text is NFC-normalized and trimmed.
func (d *Document) Book() domain.Book {
	keyPoints := make([]domain.KeyPoint, 0, len(d.KeyPoints))
	for _, kp := range d.KeyPoints {
		keyPoints = append(keyPoints, domain.KeyPoint{
			ID:          kp.ID,
			Title:       cleanText(kp.Title),
			Order:       kp.Order,
			AudioSource: domain.LocalSource(kp.TrackName),
		})
	}

	return domain.NewBook(d.ID, cleanText(d.Title), cleanText(d.Author), parseCover(d.CoverImageURL), keyPoints)
}

// cleanText composes accents so "e\u0301" and "\u00e9" render and compare the same.
func cleanText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

func parseCover(raw string) *url.URL {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return nil
	}
	return u
}

// Decode reads and validates a Document.
func Decode(r io.Reader, v *validation.Validator) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, errors.CodeLoad, "decode book metadata")
	}

	if err := v.Validate(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

// Loader reads a book from a metadata file on every call, so edits on disk
// are picked up by the next load.
type Loader struct {
	path      string
	validator *validation.Validator
	logger    *slog.Logger
}

// NewLoader creates a loader for the document at path.
func NewLoader(path string, v *validation.Validator, logger *slog.Logger) *Loader {
	return &Loader{
		path:      path,
		validator: v,
		logger:    logger,
	}
}

// Path returns the metadata file the loader reads.
func (l *Loader) Path() string {
	return l.path
}

// Load reads, validates and converts the metadata document.
// Failures carry CodeLoad, or CodeValidation for missing fields.
func (l *Loader) Load(ctx context.Context) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeLoad, "load book")
	}

	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Load("no book at " + l.path).WithCause(err)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeLoad, "open book metadata")
	}
	defer f.Close()

	doc, err := Decode(f, l.validator)
	if err != nil {
		return nil, err
	}

	book := doc.Book()
	if doc.CoverImageURL != "" && book.CoverImageURL == nil {
		l.logger.Debug("ignoring cover image url", "book_id", book.ID, "cover", doc.CoverImageURL)
	}

	l.logger.Info("book loaded",
		"book_id", book.ID,
		"title", book.Title,
		"key_points", len(book.KeyPoints),
	)

	return &book, nil
}
