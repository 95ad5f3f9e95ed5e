// Package search provides full-text search over the catalog using Bleve.
// Authors, books and genres share one index and are told apart by type.
package search

import (
	"strings"

	"github.com/listenupapp/catalog-server/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeAuthor DocType = "author"
	DocTypeBook   DocType = "book"
	DocTypeGenre  DocType = "genre"
)

// Document is the unified document structure for the Bleve index.
type Document struct {
	ID   string  `json:"id"`
	Type DocType `json:"type"`

	// Name is the display label: full name, title or genre name.
	Name string `json:"name"`

	// Text is secondary searchable text, such as a book summary.
	Text string `json:"text,omitempty"`

	// GenreIDs lets book hits be filtered by genre.
	GenreIDs []string `json:"genre_ids,omitempty"`

	CreatedAt int64 `json:"created_at"` // Unix millis
	UpdatedAt int64 `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map whose keys match the index mapping.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"type":       string(d.Type),
		"name":       d.Name,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}
	if d.Text != "" {
		m["text"] = d.Text
	}
	if len(d.GenreIDs) > 0 {
		m["genre_ids"] = d.GenreIDs
	}
	return m
}

// AuthorDocument converts an author. The first name is searchable text so a
// search for it finds the author even though the label leads with the
// family name.
func AuthorDocument(a *domain.Author) *Document {
	return &Document{
		ID:        a.ID,
		Type:      DocTypeAuthor,
		Name:      a.Name(),
		Text:      strings.TrimSpace(a.FirstName + " " + a.FamilyName),
		CreatedAt: a.CreatedAt.UnixMilli(),
		UpdatedAt: a.UpdatedAt.UnixMilli(),
	}
}

// BookDocument converts a book.
func BookDocument(b *domain.Book) *Document {
	return &Document{
		ID:        b.ID,
		Type:      DocTypeBook,
		Name:      b.Title,
		Text:      strings.TrimSpace(b.Summary + " " + b.ISBN),
		GenreIDs:  b.GenreIDs,
		CreatedAt: b.CreatedAt.UnixMilli(),
		UpdatedAt: b.UpdatedAt.UnixMilli(),
	}
}

// GenreDocument converts a genre.
func GenreDocument(g *domain.Genre) *Document {
	return &Document{
		ID:        g.ID,
		Type:      DocTypeGenre,
		Name:      g.Name,
		CreatedAt: g.CreatedAt.UnixMilli(),
		UpdatedAt: g.UpdatedAt.UnixMilli(),
	}
}
