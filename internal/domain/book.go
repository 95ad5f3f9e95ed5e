package domain

import "slices"

// Book is a title in the catalog. It references exactly one author and any
// number of genres.
type Book struct {
	Base
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	ISBN     string   `json:"isbn"`
	AuthorID string   `json:"author"`
	GenreIDs []string `json:"genre"`
}

// URL returns the catalog path of the book.
func (b *Book) URL() string {
	return urlFor(KindBook, b.ID)
}

// HasGenre reports whether the book is classified under the genre.
func (b *Book) HasGenre(genreID string) bool {
	return slices.Contains(b.GenreIDs, genreID)
}

// Ref returns a reference to the book labelled with its title.
func (b *Book) Ref() Ref {
	return Ref{Kind: KindBook, ID: b.ID, Label: b.Title, URL: b.URL()}
}
