package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/id"
	"github.com/listenupapp/catalog-server/internal/parallel"
	"github.com/listenupapp/catalog-server/internal/store"
	"github.com/listenupapp/catalog-server/internal/validation"
	"github.com/listenupapp/catalog-server/internal/view"
)

// BookListItem is a book with its author's name resolved.
type BookListItem struct {
	*domain.Book
	AuthorName string `json:"author_name"`
}

// BookDetail is a book with its author, genres and copies.
type BookDetail struct {
	Book      *domain.Book           `json:"book"`
	Author    *domain.Author         `json:"author"`
	Genres    []*domain.Genre        `json:"genres"`
	Instances []*domain.BookInstance `json:"instances"`
}

// BookForm is the result of showing or submitting the book form. Genres is
// the full genre checklist with the book's selection checked.
type BookForm struct {
	Submission
	Book    *domain.Book         `json:"book"`
	Authors []view.Option        `json:"authors"`
	Genres  []view.ChecklistItem `json:"genres"`
}

// BookService orchestrates book operations.
type BookService struct {
	catalog
}

// NewBookService creates a new book service.
func NewBookService(s store.Store, index Indexer, logger *slog.Logger) *BookService {
	return &BookService{catalog: newCatalog(s, index, logger)}
}

// List returns every book ordered by title, with author names.
func (s *BookService) List(ctx context.Context) ([]BookListItem, error) {
	res, err := parallel.Run(ctx, parallel.Queries{
		"books": parallel.Typed(func(ctx context.Context) ([]*domain.Book, error) {
			return s.store.FindBooks(ctx, store.BookFilter{})
		}),
		"authors": parallel.Typed(s.store.ListAuthors),
	})
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	for _, a := range parallel.Value[[]*domain.Author](res, "authors") {
		names[a.ID] = a.Name()
	}

	books := parallel.Value[[]*domain.Book](res, "books")
	view.SortBooks(books)

	items := make([]BookListItem, 0, len(books))
	for _, b := range books {
		items = append(items, BookListItem{Book: b, AuthorName: names[b.AuthorID]})
	}
	return items, nil
}

// withInstances fetches a book and its copies concurrently.
func (s *BookService) withInstances(ctx context.Context, bookID string) (*domain.Book, []*domain.BookInstance, error) {
	res, err := parallel.Run(ctx, parallel.Queries{
		"book": optional(s.store.GetBook, bookID),
		"book_instances": parallel.Typed(func(ctx context.Context) ([]*domain.BookInstance, error) {
			return s.store.FindBookInstances(ctx, store.BookInstanceFilter{BookID: bookID})
		}),
	})
	if err != nil {
		return nil, nil, err
	}

	book := parallel.Value[*domain.Book](res, "book")
	if book == nil {
		return nil, nil, notFound(domain.KindBook, bookID)
	}
	instances := parallel.Value[[]*domain.BookInstance](res, "book_instances")
	if instances == nil {
		instances = []*domain.BookInstance{}
	}
	return book, instances, nil
}

// Detail returns a book with its author, genres and copies. The author and
// genres depend on the book's fields, so they are fetched in a second round.
func (s *BookService) Detail(ctx context.Context, bookID string) (*BookDetail, error) {
	book, instances, err := s.withInstances(ctx, bookID)
	if err != nil {
		return nil, err
	}

	res, err := parallel.Run(ctx, parallel.Queries{
		"author": optional(s.store.GetAuthor, book.AuthorID),
		"genres": parallel.Typed(func(ctx context.Context) ([]*domain.Genre, error) {
			return s.store.GetGenres(ctx, book.GenreIDs)
		}),
	})
	if err != nil {
		return nil, err
	}

	return &BookDetail{
		Book:      book,
		Author:    parallel.Value[*domain.Author](res, "author"),
		Genres:    parallel.Value[[]*domain.Genre](res, "genres"),
		Instances: instances,
	}, nil
}

// formLists fetches the authors and genres offered by the book form.
func (s *BookService) formLists(ctx context.Context) ([]*domain.Author, []*domain.Genre, error) {
	res, err := parallel.Run(ctx, parallel.Queries{
		"authors": parallel.Typed(s.store.ListAuthors),
		"genres":  parallel.Typed(s.store.ListGenres),
	})
	if err != nil {
		return nil, nil, err
	}

	authors := parallel.Value[[]*domain.Author](res, "authors")
	genres := parallel.Value[[]*domain.Genre](res, "genres")
	view.SortAuthors(authors)
	view.SortGenres(genres)
	return authors, genres, nil
}

// withLists fills the author options and genre checklist of a form from a
// fresh read, checking the genres the form's book carries.
func (s *BookService) withLists(ctx context.Context, form *BookForm) (*BookForm, error) {
	authors, genres, err := s.formLists(ctx)
	if err != nil {
		return nil, err
	}
	form.Authors = view.AuthorOptions(authors)
	form.Genres = view.Reconcile(view.GenreOptions(genres), form.Book.GenreIDs)
	return form, nil
}

// CreateForm returns an empty book form.
func (s *BookService) CreateForm(ctx context.Context) (*BookForm, error) {
	values, _ := s.validate(domain.KindBook, validation.Input{})
	return s.withLists(ctx, &BookForm{
		Submission: Submission{Values: values.Flat(), Errors: validation.FieldErrors{}},
		Book:       BuildBook(values, ""),
	})
}

// Create validates the submission and stores a new book. The genre field may
// be absent, a single value or several values. A failed form is re-rendered
// from freshly fetched authors and genres with the submitted genres checked.
func (s *BookService) Create(ctx context.Context, in validation.Input) (*BookForm, error) {
	form, err := s.submit(ctx, in, "")
	if err != nil || form.Failed() {
		return form, err
	}

	bookID, err := id.New(domain.KindBook)
	if err != nil {
		return nil, err
	}
	form.Book.ID = bookID
	form.Book.InitTimestamps()

	if err := s.store.CreateBook(ctx, form.Book); err != nil {
		return nil, writeError(err, domain.KindBook, bookID)
	}
	s.indexed(domain.KindBook, bookID, s.index.IndexBook(ctx, form.Book))

	s.logger.Info("book created", "id", bookID, "title", form.Book.Title)
	return form, nil
}

// EditForm returns the update form with the book's genres checked.
func (s *BookService) EditForm(ctx context.Context, bookID string) (*BookForm, error) {
	res, err := parallel.Run(ctx, parallel.Queries{
		"book":    optional(s.store.GetBook, bookID),
		"authors": parallel.Typed(s.store.ListAuthors),
		"genres":  parallel.Typed(s.store.ListGenres),
	})
	if err != nil {
		return nil, err
	}

	book := parallel.Value[*domain.Book](res, "book")
	if book == nil {
		return nil, notFound(domain.KindBook, bookID)
	}
	authors := parallel.Value[[]*domain.Author](res, "authors")
	genres := parallel.Value[[]*domain.Genre](res, "genres")
	view.SortAuthors(authors)
	view.SortGenres(genres)

	return &BookForm{
		Submission: Submission{Values: bookValues(book), Errors: validation.FieldErrors{}},
		Book:       book,
		Authors:    view.AuthorOptions(authors),
		Genres:     view.Reconcile(view.GenreOptions(genres), book.GenreIDs),
	}, nil
}

// Update validates the submission and replaces the stored book.
func (s *BookService) Update(ctx context.Context, bookID string, in validation.Input) (*BookForm, error) {
	existing, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, writeError(err, domain.KindBook, bookID)
	}

	form, err := s.submit(ctx, in, bookID)
	if err != nil || form.Failed() {
		return form, err
	}
	form.Book.CreatedAt = existing.CreatedAt
	form.Book.Touch()

	if err := s.store.UpdateBook(ctx, form.Book); err != nil {
		return nil, writeError(err, domain.KindBook, bookID)
	}
	s.indexed(domain.KindBook, bookID, s.index.IndexBook(ctx, form.Book))
	return form, nil
}

// submit validates a book submission and checks that the author and genres
// it names exist. A failed form comes back with its lists filled.
func (s *BookService) submit(ctx context.Context, in validation.Input, bookID string) (*BookForm, error) {
	values, errs := s.validate(domain.KindBook, in)
	book := BuildBook(values, bookID)

	if len(errs) == 0 {
		refErrs, err := s.checkReferences(ctx, book)
		if err != nil {
			return nil, err
		}
		errs = append(errs, refErrs...)
	}

	form := &BookForm{Submission: newSubmission(values, errs), Book: book}
	if !form.Failed() {
		return form, nil
	}
	s.rejected(domain.KindBook, errs)
	return s.withLists(ctx, form)
}

// checkReferences reports the author or genres of a book that do not exist.
func (s *BookService) checkReferences(ctx context.Context, book *domain.Book) (validation.FieldErrors, error) {
	res, err := parallel.Run(ctx, parallel.Queries{
		"author": optional(s.store.GetAuthor, book.AuthorID),
		"genres": parallel.Typed(func(ctx context.Context) ([]*domain.Genre, error) {
			return s.store.GetGenres(ctx, book.GenreIDs)
		}),
	})
	if err != nil {
		return nil, err
	}

	var errs validation.FieldErrors
	if parallel.Value[*domain.Author](res, "author") == nil {
		errs = append(errs, validation.FieldError{Field: FieldAuthor, Message: "Author not found.", Value: book.AuthorID})
	}

	found := make(map[string]bool)
	for _, g := range parallel.Value[[]*domain.Genre](res, "genres") {
		found[g.ID] = true
	}
	var missing []string
	for _, genreID := range book.GenreIDs {
		if !found[genreID] {
			missing = append(missing, genreID)
		}
	}
	if len(missing) > 0 {
		errs = append(errs, validation.FieldError{Field: FieldGenre, Message: "Genre not found.", Value: strings.Join(missing, ",")})
	}
	return errs, nil
}

// DeleteView returns the book with the copies that would block deleting it.
func (s *BookService) DeleteView(ctx context.Context, bookID string) (*DeleteView[*domain.Book], error) {
	book, instances, err := s.withInstances(ctx, bookID)
	if err != nil {
		return nil, err
	}
	refs := instanceRefs(instances)
	return &DeleteView[*domain.Book]{Entity: book, Allowed: len(refs) == 0, Dependents: refs}, nil
}

// Delete removes a book that has no copies.
func (s *BookService) Delete(ctx context.Context, bookID string) error {
	return s.remove(ctx, domain.KindBook, bookID, s.store.DeleteBook)
}

func bookValues(b *domain.Book) map[string]string {
	return map[string]string{
		FieldTitle:   b.Title,
		FieldAuthor:  b.AuthorID,
		FieldSummary: b.Summary,
		FieldISBN:    b.ISBN,
		FieldGenre:   strings.Join(b.GenreIDs, ","),
	}
}
