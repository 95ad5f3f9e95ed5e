package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/service"
	"github.com/listenupapp/catalog-server/internal/validation"
)

func (s *Server) registerAuthorRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listAuthors",
		Method:      http.MethodGet,
		Path:        basePath + "/authors",
		Summary:     "List authors",
		Description: "Returns every author ordered by family name",
		Tags:        []string{"Authors"},
	}, s.handleListAuthors)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createAuthor",
		Method:        http.MethodPost,
		Path:          basePath + "/authors",
		Summary:       "Create author",
		Description:   "Validates and stores a new author. A rejected submission returns 422 with the form view.",
		Tags:          []string{"Authors"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAuthor",
		Method:      http.MethodGet,
		Path:        basePath + "/authors/{id}",
		Summary:     "Get author",
		Description: "Returns an author with their books",
		Tags:        []string{"Authors"},
	}, s.handleGetAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateAuthor",
		Method:      http.MethodPut,
		Path:        basePath + "/authors/{id}",
		Summary:     "Update author",
		Description: "Replaces an author's fields",
		Tags:        []string{"Authors"},
	}, s.handleUpdateAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAuthorForm",
		Method:      http.MethodGet,
		Path:        basePath + "/authors/{id}/form",
		Summary:     "Get author edit form",
		Description: "Returns the author's current values as a form",
		Tags:        []string{"Authors"},
	}, s.handleGetAuthorForm)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAuthorDeleteView",
		Method:      http.MethodGet,
		Path:        basePath + "/authors/{id}/delete",
		Summary:     "Get author delete view",
		Description: "Returns the author and the books that block deleting it",
		Tags:        []string{"Authors"},
	}, s.handleGetAuthorDeleteView)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteAuthor",
		Method:        http.MethodDelete,
		Path:          basePath + "/authors/{id}",
		Summary:       "Delete author",
		Description:   "Deletes an author with no books. Returns 409 listing the books otherwise.",
		Tags:          []string{"Authors"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteAuthor)
}

// === DTOs ===

type AuthorRequest struct {
	FirstName   string `json:"first_name" required:"false" doc:"Given name"`
	FamilyName  string `json:"family_name" required:"false" doc:"Family name"`
	DateOfBirth string `json:"date_of_birth" required:"false" doc:"ISO 8601 date"`
	DateOfDeath string `json:"date_of_death" required:"false" doc:"ISO 8601 date"`
}

func (r AuthorRequest) toInput() validation.Input {
	return newFormInput().
		text(service.FieldFirstName, r.FirstName).
		text(service.FieldFamilyName, r.FamilyName).
		text(service.FieldDateOfBirth, r.DateOfBirth).
		text(service.FieldDateOfDeath, r.DateOfDeath).
		input()
}

type AuthorIDInput struct {
	ID string `path:"id" doc:"Author ID"`
}

type CreateAuthorInput struct {
	Body AuthorRequest
}

type UpdateAuthorInput struct {
	ID   string `path:"id" doc:"Author ID"`
	Body AuthorRequest
}

type ListAuthorsResponse struct {
	Authors []*domain.Author `json:"authors" doc:"Authors ordered by family name"`
}

type ListAuthorsOutput struct {
	Body ListAuthorsResponse
}

type AuthorDetailOutput struct {
	Body *service.AuthorDetail
}

type AuthorFormOutput struct {
	Body *service.AuthorForm
}

type AuthorDeleteViewOutput struct {
	Body *service.DeleteView[*domain.Author]
}

// === Handlers ===

func (s *Server) handleListAuthors(ctx context.Context, _ *struct{}) (*ListAuthorsOutput, error) {
	authors, err := s.services.Author.List(ctx)
	if err != nil {
		return nil, s.fail("listAuthors", err)
	}
	return &ListAuthorsOutput{Body: ListAuthorsResponse{Authors: authors}}, nil
}

func (s *Server) handleCreateAuthor(ctx context.Context, input *CreateAuthorInput) (*AuthorFormOutput, error) {
	f, err := s.services.Author.Create(ctx, input.Body.toInput())
	if err != nil {
		return nil, s.fail("createAuthor", err)
	}
	if f.Failed() {
		return nil, rejected("author", f)
	}
	return &AuthorFormOutput{Body: f}, nil
}

func (s *Server) handleGetAuthor(ctx context.Context, input *AuthorIDInput) (*AuthorDetailOutput, error) {
	detail, err := s.services.Author.Detail(ctx, input.ID)
	if err != nil {
		return nil, s.fail("getAuthor", err)
	}
	return &AuthorDetailOutput{Body: detail}, nil
}

func (s *Server) handleUpdateAuthor(ctx context.Context, input *UpdateAuthorInput) (*AuthorFormOutput, error) {
	f, err := s.services.Author.Update(ctx, input.ID, input.Body.toInput())
	if err != nil {
		return nil, s.fail("updateAuthor", err)
	}
	if f.Failed() {
		return nil, rejected("author", f)
	}
	return &AuthorFormOutput{Body: f}, nil
}

func (s *Server) handleGetAuthorForm(ctx context.Context, input *AuthorIDInput) (*AuthorFormOutput, error) {
	f, err := s.services.Author.EditForm(ctx, input.ID)
	if err != nil {
		return nil, s.fail("getAuthorForm", err)
	}
	return &AuthorFormOutput{Body: f}, nil
}

func (s *Server) handleGetAuthorDeleteView(ctx context.Context, input *AuthorIDInput) (*AuthorDeleteViewOutput, error) {
	dv, err := s.services.Author.DeleteView(ctx, input.ID)
	if err != nil {
		return nil, s.fail("getAuthorDeleteView", err)
	}
	return &AuthorDeleteViewOutput{Body: dv}, nil
}

func (s *Server) handleDeleteAuthor(ctx context.Context, input *AuthorIDInput) (*struct{}, error) {
	if err := s.services.Author.Delete(ctx, input.ID); err != nil {
		return nil, s.fail("deleteAuthor", err)
	}
	return nil, nil
}
