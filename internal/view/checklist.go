// Package view holds the presentation-side logic of the catalog: reconciling
// option checklists with a selection, and the comparison and sorting helpers
// used when rendering lists.
package view

import "github.com/listenupapp/catalog-server/internal/domain"

// Option is one selectable entry in a form.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ChecklistItem is an option annotated with whether it is currently selected.
type ChecklistItem struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

// Reconcile marks each option whose ID appears in selected. Option order is
// preserved and the comparison is exact string equality of identifiers.
// Every option is compared with every selected ID.
func Reconcile(options []Option, selected []string) []ChecklistItem {
	items := make([]ChecklistItem, len(options))
	for i, opt := range options {
		items[i] = ChecklistItem{ID: opt.ID, Label: opt.Label}
		for _, id := range selected {
			if opt.ID == id {
				items[i].Checked = true
			}
		}
	}
	return items
}

// Selected returns the IDs of the checked items, in checklist order.
func Selected(items []ChecklistItem) []string {
	var out []string
	for _, it := range items {
		if it.Checked {
			out = append(out, it.ID)
		}
	}
	return out
}

// GenreOptions converts genres to options labelled by name.
func GenreOptions(genres []*domain.Genre) []Option {
	out := make([]Option, 0, len(genres))
	for _, g := range genres {
		out = append(out, Option{ID: g.ID, Label: g.Name})
	}
	return out
}

// AuthorOptions converts authors to options labelled by full name.
func AuthorOptions(authors []*domain.Author) []Option {
	out := make([]Option, 0, len(authors))
	for _, a := range authors {
		out = append(out, Option{ID: a.ID, Label: a.Name()})
	}
	return out
}

// BookOptions converts books to options labelled by title.
func BookOptions(books []*domain.Book) []Option {
	out := make([]Option, 0, len(books))
	for _, b := range books {
		out = append(out, Option{ID: b.ID, Label: b.Title})
	}
	return out
}

// StatusOptions lists the copy statuses as options.
func StatusOptions() []Option {
	out := make([]Option, 0, 4)
	for _, s := range domain.Statuses() {
		out = append(out, Option{ID: string(s), Label: string(s)})
	}
	return out
}
