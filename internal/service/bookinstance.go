package service

import (
	"context"
	"log/slog"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/id"
	"github.com/listenupapp/catalog-server/internal/parallel"
	"github.com/listenupapp/catalog-server/internal/store"
	"github.com/listenupapp/catalog-server/internal/validation"
	"github.com/listenupapp/catalog-server/internal/view"
)

// BookInstanceListItem is a copy with the title of its book.
type BookInstanceListItem struct {
	*domain.BookInstance
	BookTitle string `json:"book_title"`
}

// BookInstanceDetail is a copy with its book.
type BookInstanceDetail struct {
	Instance *domain.BookInstance `json:"instance"`
	Book     *domain.Book         `json:"book"`
}

// BookInstanceForm is the result of showing or submitting the copy form.
// SelectedBook is the book the form points at, so a failed form keeps it.
type BookInstanceForm struct {
	Submission
	Instance     *domain.BookInstance `json:"instance"`
	Books        []view.Option        `json:"books"`
	SelectedBook string               `json:"selected_book"`
	Statuses     []view.Option        `json:"statuses"`
}

// BookInstanceService orchestrates operations on physical copies.
type BookInstanceService struct {
	catalog
}

// NewBookInstanceService creates a new copy service.
func NewBookInstanceService(s store.Store, index Indexer, logger *slog.Logger) *BookInstanceService {
	return &BookInstanceService{catalog: newCatalog(s, index, logger)}
}

// List returns every copy with its book title.
func (s *BookInstanceService) List(ctx context.Context) ([]BookInstanceListItem, error) {
	res, err := parallel.Run(ctx, parallel.Queries{
		"book_instances": parallel.Typed(func(ctx context.Context) ([]*domain.BookInstance, error) {
			return s.store.FindBookInstances(ctx, store.BookInstanceFilter{})
		}),
		"books": parallel.Typed(func(ctx context.Context) ([]*domain.Book, error) {
			return s.store.FindBooks(ctx, store.BookFilter{})
		}),
	})
	if err != nil {
		return nil, err
	}

	titles := make(map[string]string)
	for _, b := range parallel.Value[[]*domain.Book](res, "books") {
		titles[b.ID] = b.Title
	}

	instances := parallel.Value[[]*domain.BookInstance](res, "book_instances")
	items := make([]BookInstanceListItem, 0, len(instances))
	for _, bi := range instances {
		items = append(items, BookInstanceListItem{BookInstance: bi, BookTitle: titles[bi.BookID]})
	}
	view.SortByKey(items, func(it BookInstanceListItem) string { return it.BookTitle })
	return items, nil
}

// Detail returns a copy and its book.
func (s *BookInstanceService) Detail(ctx context.Context, instanceID string) (*BookInstanceDetail, error) {
	bi, err := s.store.GetBookInstance(ctx, instanceID)
	if err != nil {
		return nil, writeError(err, domain.KindBookInstance, instanceID)
	}

	book, err := s.store.GetBook(ctx, bi.BookID)
	if err != nil {
		return nil, writeError(err, domain.KindBook, bi.BookID)
	}
	return &BookInstanceDetail{Instance: bi, Book: book}, nil
}

// withBooks fills the book options of a form from a fresh read.
func (s *BookInstanceService) withBooks(ctx context.Context, form *BookInstanceForm) (*BookInstanceForm, error) {
	books, err := s.store.FindBooks(ctx, store.BookFilter{})
	if err != nil {
		return nil, err
	}
	view.SortBooks(books)
	form.Books = view.BookOptions(books)
	form.SelectedBook = form.Instance.BookID
	form.Statuses = view.StatusOptions()
	return form, nil
}

// CreateForm returns an empty copy form.
func (s *BookInstanceService) CreateForm(ctx context.Context) (*BookInstanceForm, error) {
	values, _ := s.validate(domain.KindBookInstance, validation.Input{})
	return s.withBooks(ctx, &BookInstanceForm{
		Submission: Submission{Values: values.Flat(), Errors: validation.FieldErrors{}},
		Instance:   BuildBookInstance(values, ""),
	})
}

// Create validates the submission and stores a new copy. A blank status
// becomes Maintenance.
func (s *BookInstanceService) Create(ctx context.Context, in validation.Input) (*BookInstanceForm, error) {
	form, err := s.submit(ctx, in, "")
	if err != nil || form.Failed() {
		return form, err
	}

	instanceID, err := id.New(domain.KindBookInstance)
	if err != nil {
		return nil, err
	}
	form.Instance.ID = instanceID
	form.Instance.InitTimestamps()

	if err := s.store.CreateBookInstance(ctx, form.Instance); err != nil {
		return nil, writeError(err, domain.KindBookInstance, instanceID)
	}

	s.logger.Info("book instance created", "id", instanceID, "book", form.Instance.BookID)
	return form, nil
}

// EditForm returns the update form filled from the stored copy.
func (s *BookInstanceService) EditForm(ctx context.Context, instanceID string) (*BookInstanceForm, error) {
	bi, err := s.store.GetBookInstance(ctx, instanceID)
	if err != nil {
		return nil, writeError(err, domain.KindBookInstance, instanceID)
	}
	return s.withBooks(ctx, &BookInstanceForm{
		Submission: Submission{Values: instanceValues(bi), Errors: validation.FieldErrors{}},
		Instance:   bi,
	})
}

// Update validates the submission and replaces the stored copy.
func (s *BookInstanceService) Update(ctx context.Context, instanceID string, in validation.Input) (*BookInstanceForm, error) {
	existing, err := s.store.GetBookInstance(ctx, instanceID)
	if err != nil {
		return nil, writeError(err, domain.KindBookInstance, instanceID)
	}

	form, err := s.submit(ctx, in, instanceID)
	if err != nil || form.Failed() {
		return form, err
	}
	form.Instance.CreatedAt = existing.CreatedAt
	form.Instance.Touch()

	if err := s.store.UpdateBookInstance(ctx, form.Instance); err != nil {
		return nil, writeError(err, domain.KindBookInstance, instanceID)
	}
	return form, nil
}

func (s *BookInstanceService) submit(ctx context.Context, in validation.Input, instanceID string) (*BookInstanceForm, error) {
	values, errs := s.validate(domain.KindBookInstance, in)
	bi := BuildBookInstance(values, instanceID)

	if len(errs) == 0 {
		if _, err := s.store.GetBook(ctx, bi.BookID); err != nil {
			if !isNotFound(err) {
				return nil, err
			}
			errs = append(errs, validation.FieldError{Field: FieldBook, Message: "Book not found.", Value: bi.BookID})
		}
	}

	form := &BookInstanceForm{Submission: newSubmission(values, errs), Instance: bi}
	if !form.Failed() {
		return form, nil
	}
	s.rejected(domain.KindBookInstance, errs)
	return s.withBooks(ctx, form)
}

// DeleteView returns the copy. Nothing references copies, so the delete is
// always allowed.
func (s *BookInstanceService) DeleteView(ctx context.Context, instanceID string) (*DeleteView[*domain.BookInstance], error) {
	bi, err := s.store.GetBookInstance(ctx, instanceID)
	if err != nil {
		return nil, writeError(err, domain.KindBookInstance, instanceID)
	}
	return &DeleteView[*domain.BookInstance]{Entity: bi, Allowed: true, Dependents: []domain.Ref{}}, nil
}

// Delete removes a copy.
func (s *BookInstanceService) Delete(ctx context.Context, instanceID string) error {
	if err := s.store.DeleteBookInstance(ctx, instanceID); err != nil {
		return writeError(err, domain.KindBookInstance, instanceID)
	}
	s.logger.Info("deleted", "kind", domain.KindBookInstance, "id", instanceID)
	return nil
}

func instanceValues(bi *domain.BookInstance) map[string]string {
	return map[string]string{
		FieldBook:    bi.BookID,
		FieldImprint: bi.Imprint,
		FieldStatus:  string(bi.Status),
		FieldDueBack: isoDate(bi.DueBack),
	}
}
