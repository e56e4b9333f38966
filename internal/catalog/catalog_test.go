package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/minibook/internal/domain"
	"github.com/listenupapp/minibook/internal/errors"
	"github.com/listenupapp/minibook/internal/logger"
	"github.com/listenupapp/minibook/internal/validation"
)

const fablesJSON = `{
  "id": "aesops-fables",
  "title": "Aesop's Fables",
  "author": "Aesop",
  "coverImageURL": "https://example.com/fables.jpg",
  "keyPoints": [
    {"id": "kp3", "title": "The Fox and the Grapes", "order": 3, "trackName": "track_03.mp3"},
    {"id": "kp1", "title": "The Tortoise and the Hare", "order": 1, "trackName": "track_01.mp3"},
    {"id": "kp2", "title": "The Boy Who Cried Wolf", "order": 2, "trackName": "track_02.mp3"}
  ]
}`

func writeBook(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestLoader(path string) *Loader {
	return NewLoader(path, validation.New(), logger.Discard())
}

func TestLoader_Load(t *testing.T) {
	loader := newTestLoader(writeBook(t, fablesJSON))

	book, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "aesops-fables", book.ID)
	assert.Equal(t, "Aesop's Fables", book.Title)
	assert.Equal(t, "Aesop", book.Author)
	require.NotNil(t, book.CoverImageURL)
	assert.Equal(t, "example.com", book.CoverImageURL.Host)

	require.Len(t, book.KeyPoints, 3)
	assert.Equal(t, "kp1", book.KeyPoints[0].ID)
	assert.Equal(t, "kp2", book.KeyPoints[1].ID)
	assert.Equal(t, "kp3", book.KeyPoints[2].ID)
	assert.Equal(t, domain.LocalSource("track_01.mp3"), book.KeyPoints[0].AudioSource)
}

func TestLoader_MissingKeyPointsIsEmptyBook(t *testing.T) {
	loader := newTestLoader(writeBook(t, `{"id":"b","title":"Nothing Yet","author":"A"}`))

	book, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.True(t, book.IsEmpty())
	assert.Nil(t, book.CoverImageURL)
}

func TestLoader_RelativeCoverIsDropped(t *testing.T) {
	loader := newTestLoader(writeBook(t, `{"id":"b","title":"T","coverImageURL":"cover.jpg","keyPoints":[]}`))

	book, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, book.CoverImageURL)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		missing  bool
		wantCode errors.Code
		wantMsg  string
	}{
		{
			name:     "missing file",
			missing:  true,
			wantCode: errors.CodeLoad,
			wantMsg:  "no book at",
		},
		{
			name:     "malformed json",
			content:  `{"id": "b",`,
			wantCode: errors.CodeLoad,
			wantMsg:  "decode book metadata",
		},
		{
			name:     "missing title",
			content:  `{"id": "b", "keyPoints": []}`,
			wantCode: errors.CodeValidation,
			wantMsg:  "title",
		},
		{
			name:     "key point without track",
			content:  `{"id": "b", "title": "T", "keyPoints": [{"id": "kp1", "order": 1}]}`,
			wantCode: errors.CodeValidation,
			wantMsg:  "keyPoints[0].trackName",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "absent.json")
			if !tt.missing {
				path = writeBook(t, tt.content)
			}

			book, err := newTestLoader(path).Load(context.Background())
			require.Error(t, err)
			assert.Nil(t, book)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoader_CanceledContext(t *testing.T) {
	loader := newTestLoader(writeBook(t, fablesJSON))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.Load(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecode_StableOrderOnTies(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{"id":"b","title":"T","keyPoints":[
		{"id":"second","order":1,"trackName":"a"},
		{"id":"first","order":0,"trackName":"b"},
		{"id":"third","order":1,"trackName":"c"}
	]}`), validation.New())
	require.NoError(t, err)

	book := doc.Book()
	assert.Equal(t, "first", book.KeyPoints[0].ID)
	assert.Equal(t, "second", book.KeyPoints[1].ID)
	assert.Equal(t, "third", book.KeyPoints[2].ID)
}

func TestDocument_BookNormalizesText(t *testing.T) {
	doc := Document{
		ID:     "b",
		Title:  "  Café Stories ",
		Author: "Amélie",
		KeyPoints: []KeyPointDocument{
			{ID: "kp0", Title: "Résumé\n", TrackName: "track_00.mp3"},
		},
	}

	book := doc.Book()

	assert.Equal(t, "Café Stories", book.Title)
	assert.Equal(t, "Amélie", book.Author)
	assert.Equal(t, "Résumé", book.KeyPoints[0].Title)
}
