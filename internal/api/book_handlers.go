package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/service"
	"github.com/listenupapp/catalog-server/internal/validation"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        basePath + "/books",
		Summary:     "List books",
		Description: "Returns every book ordered by title, with the author's name",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookCreateForm",
		Method:      http.MethodGet,
		Path:        basePath + "/books/form",
		Summary:     "Get book create form",
		Description: "Returns an empty book form with the author options and the genre checklist",
		Tags:        []string{"Books"},
	}, s.handleGetBookCreateForm)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          basePath + "/books",
		Summary:       "Create book",
		Description:   "Validates and stores a new book. `genre` may be a string or an array of genre IDs.",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        basePath + "/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book with its author, genres and copies",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        basePath + "/books/{id}",
		Summary:     "Update book",
		Description: "Replaces a book's fields and genre selection",
		Tags:        []string{"Books"},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookForm",
		Method:      http.MethodGet,
		Path:        basePath + "/books/{id}/form",
		Summary:     "Get book edit form",
		Description: "Returns the book's values with its genres checked",
		Tags:        []string{"Books"},
	}, s.handleGetBookForm)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookDeleteView",
		Method:      http.MethodGet,
		Path:        basePath + "/books/{id}/delete",
		Summary:     "Get book delete view",
		Description: "Returns the book and the copies that block deleting it",
		Tags:        []string{"Books"},
	}, s.handleGetBookDeleteView)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteBook",
		Method:        http.MethodDelete,
		Path:          basePath + "/books/{id}",
		Summary:       "Delete book",
		Description:   "Deletes a book with no copies. Returns 409 listing the copies otherwise.",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteBook)
}

// === DTOs ===

type BookRequest struct {
	Title   string     `json:"title" required:"false" doc:"Book title"`
	Author  string     `json:"author" required:"false" doc:"Author ID"`
	Summary string     `json:"summary" required:"false" doc:"Short summary"`
	ISBN    string     `json:"isbn" required:"false" doc:"ISBN"`
	Genre   StringList `json:"genre,omitempty" required:"false" doc:"Genre ID or list of genre IDs"`
}

func (r BookRequest) toInput() validation.Input {
	return newFormInput().
		text(service.FieldTitle, r.Title).
		text(service.FieldAuthor, r.Author).
		text(service.FieldSummary, r.Summary).
		text(service.FieldISBN, r.ISBN).
		list(service.FieldGenre, r.Genre).
		input()
}

type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

type CreateBookInput struct {
	Body BookRequest
}

type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body BookRequest
}

type ListBooksResponse struct {
	Books []service.BookListItem `json:"books" doc:"Books ordered by title"`
}

type ListBooksOutput struct {
	Body ListBooksResponse
}

type BookDetailOutput struct {
	Body *service.BookDetail
}

type BookFormOutput struct {
	Body *service.BookForm
}

type BookDeleteViewOutput struct {
	Body *service.DeleteView[*domain.Book]
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, _ *struct{}) (*ListBooksOutput, error) {
	books, err := s.services.Book.List(ctx)
	if err != nil {
		return nil, s.fail("listBooks", err)
	}
	return &ListBooksOutput{Body: ListBooksResponse{Books: books}}, nil
}

func (s *Server) handleGetBookCreateForm(ctx context.Context, _ *struct{}) (*BookFormOutput, error) {
	f, err := s.services.Book.CreateForm(ctx)
	if err != nil {
		return nil, s.fail("getBookCreateForm", err)
	}
	return &BookFormOutput{Body: f}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookFormOutput, error) {
	f, err := s.services.Book.Create(ctx, input.Body.toInput())
	if err != nil {
		return nil, s.fail("createBook", err)
	}
	if f.Failed() {
		return nil, rejected("book", f)
	}
	return &BookFormOutput{Body: f}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookDetailOutput, error) {
	detail, err := s.services.Book.Detail(ctx, input.ID)
	if err != nil {
		return nil, s.fail("getBook", err)
	}
	return &BookDetailOutput{Body: detail}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookFormOutput, error) {
	f, err := s.services.Book.Update(ctx, input.ID, input.Body.toInput())
	if err != nil {
		return nil, s.fail("updateBook", err)
	}
	if f.Failed() {
		return nil, rejected("book", f)
	}
	return &BookFormOutput{Body: f}, nil
}

func (s *Server) handleGetBookForm(ctx context.Context, input *BookIDInput) (*BookFormOutput, error) {
	f, err := s.services.Book.EditForm(ctx, input.ID)
	if err != nil {
		return nil, s.fail("getBookForm", err)
	}
	return &BookFormOutput{Body: f}, nil
}

func (s *Server) handleGetBookDeleteView(ctx context.Context, input *BookIDInput) (*BookDeleteViewOutput, error) {
	dv, err := s.services.Book.DeleteView(ctx, input.ID)
	if err != nil {
		return nil, s.fail("getBookDeleteView", err)
	}
	return &BookDeleteViewOutput{Body: dv}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*struct{}, error) {
	if err := s.services.Book.Delete(ctx, input.ID); err != nil {
		return nil, s.fail("deleteBook", err)
	}
	return nil, nil
}
