package domain

// Genre is a category used to classify books.
type Genre struct {
	Base
	Name string `json:"name"`
}

// URL returns the catalog path of the genre.
func (g *Genre) URL() string {
	return urlFor(KindGenre, g.ID)
}

// Ref returns a reference to the genre labelled with its name.
func (g *Genre) Ref() Ref {
	return Ref{Kind: KindGenre, ID: g.ID, Label: g.Name, URL: g.URL()}
}
