// Package main fills a catalog with sample authors, genres, books and copies.
//
// Every record goes through the service layer, so the same validation and
// search indexing apply as for API writes. It reads the same flags and
// environment as the server.
//
// Usage:
//
//	STORE_DRIVER=badger DATA_PATH=~/Catalog/data go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/samber/do/v2"

	"github.com/listenupapp/catalog-server/internal/config"
	"github.com/listenupapp/catalog-server/internal/di"
	"github.com/listenupapp/catalog-server/internal/service"
	"github.com/listenupapp/catalog-server/internal/validation"
)

type sampleAuthor struct {
	first, family, born, died string
}

type sampleBook struct {
	title, author, summary, isbn string
	genres                       []string
}

type sampleCopy struct {
	book, imprint, status, dueBack string
}

var (
	authors = []sampleAuthor{
		{"Patrick", "Rothfuss", "1973-06-06", ""},
		{"Ben", "Bova", "1932-11-08", ""},
		{"Isaac", "Asimov", "1920-01-02", "1992-04-06"},
		{"Ursula", "LeGuin", "1929-10-21", "2018-01-22"},
		{"Mary", "Shelley", "1797-08-30", "1851-02-01"},
	}

	genres = []string{"Fantasy", "Science Fiction", "Gothic", "Classics"}

	books = []sampleBook{
		{"The Name of the Wind", "Rothfuss", "A young man grows to be the most notorious wizard his world has ever seen.", "9781473211896", []string{"Fantasy"}},
		{"The Wise Man's Fear", "Rothfuss", "Kvothe takes his first steps on the path of the hero.", "9788401352836", []string{"Fantasy"}},
		{"Apes and Angels", "Bova", "Humankind reaches out to the stars to save a dying race.", "9780765379528", []string{"Science Fiction"}},
		{"Death Wave", "Bova", "A wave of deadly radiation is heading toward Earth.", "9780765379504", []string{"Science Fiction"}},
		{"Foundation", "Asimov", "The fall of the Galactic Empire and the plan to shorten the dark age.", "9780553293357", []string{"Science Fiction", "Classics"}},
		{"The Left Hand of Darkness", "LeGuin", "An envoy on a planet whose people have no fixed sex.", "9780441478125", []string{"Science Fiction"}},
		{"A Wizard of Earthsea", "LeGuin", "A boy with a gift for magic looses a shadow upon the world.", "9780547722023", []string{"Fantasy", "Classics"}},
		{"Frankenstein", "Shelley", "A scientist creates life and is horrified by what he has made.", "9780141439471", []string{"Gothic", "Classics"}},
	}

	copies = []sampleCopy{
		{"The Name of the Wind", "London Gollancz, 2014.", "Available", ""},
		{"The Name of the Wind", "Gollancz, 2011.", "Loaned", "2026-11-15"},
		{"The Wise Man's Fear", "Gollancz, 2011.", "Available", ""},
		{"Apes and Angels", "New York Tom Doherty Associates, 2016.", "Available", ""},
		{"Apes and Angels", "New York Tom Doherty Associates, 2016.", "Maintenance", ""},
		{"Death Wave", "New York, NY Tom Doherty Associates, LLC, 2015.", "Loaned", "2026-12-01"},
		{"Foundation", "Bantam Spectra, 1991.", "Reserved", ""},
		{"Frankenstein", "Penguin Classics, 2003.", "Available", ""},
		{"Frankenstein", "Penguin Classics, 2003.", "", ""},
	}
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	injector := di.NewContainerWithConfig(cfg)
	defer func() { _ = injector.Shutdown() }()

	authorSvc := do.MustInvoke[*service.AuthorService](injector)
	genreSvc := do.MustInvoke[*service.GenreService](injector)
	bookSvc := do.MustInvoke[*service.BookService](injector)
	copySvc := do.MustInvoke[*service.BookInstanceService](injector)

	ctx := context.Background()

	authorIDs := make(map[string]string, len(authors))
	for _, a := range authors {
		f, err := authorSvc.Create(ctx, input(
			service.FieldFirstName, a.first,
			service.FieldFamilyName, a.family,
			service.FieldDateOfBirth, a.born,
			service.FieldDateOfDeath, a.died,
		))
		check("author "+a.family, err)
		rejected("author "+a.family, f.Submission)
		authorIDs[a.family] = f.Author.ID
		fmt.Printf("author  %s  %s\n", f.Author.ID, f.Author.Name())
	}

	genreIDs := make(map[string]string, len(genres))
	for _, name := range genres {
		f, err := genreSvc.Create(ctx, input(service.FieldName, name))
		check("genre "+name, err)
		rejected("genre "+name, f.Submission)
		genreIDs[name] = f.Genre.ID
		fmt.Printf("genre   %s  %s\n", f.Genre.ID, f.Genre.Name)
	}

	bookIDs := make(map[string]string, len(books))
	for _, b := range books {
		in := input(
			service.FieldTitle, b.title,
			service.FieldAuthor, authorIDs[b.author],
			service.FieldSummary, b.summary,
			service.FieldISBN, b.isbn,
		)
		for _, g := range b.genres {
			in[service.FieldGenre] = append(in[service.FieldGenre], genreIDs[g])
		}
		f, err := bookSvc.Create(ctx, in)
		check("book "+b.title, err)
		rejected("book "+b.title, f.Submission)
		bookIDs[b.title] = f.Book.ID
		fmt.Printf("book    %s  %s\n", f.Book.ID, b.title)
	}

	for _, c := range copies {
		f, err := copySvc.Create(ctx, input(
			service.FieldBook, bookIDs[c.book],
			service.FieldImprint, c.imprint,
			service.FieldStatus, c.status,
			service.FieldDueBack, c.dueBack,
		))
		check("copy of "+c.book, err)
		rejected("copy of "+c.book, f.Submission)
		fmt.Printf("copy    %s  %s (%s)\n", f.Instance.ID, c.book, f.Instance.Status)
	}

	fmt.Println("\nSeeding complete!")
}

func input(pairs ...string) validation.Input {
	in := validation.Input{}
	for i := 0; i+1 < len(pairs); i += 2 {
		in.Set(pairs[i], pairs[i+1])
	}
	return in
}

func check(what string, err error) {
	if err != nil {
		log.Fatalf("Failed to create %s: %v", what, err)
	}
}

func rejected(what string, sub service.Submission) {
	if sub.Failed() {
		fmt.Fprintf(os.Stderr, "Rejected %s:\n", what)
		for _, fe := range sub.Errors {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", fe.Field, fe.Message)
		}
		os.Exit(1)
	}
}
