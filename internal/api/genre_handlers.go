package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/service"
	"github.com/listenupapp/catalog-server/internal/validation"
)

func (s *Server) registerGenreRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        basePath + "/genres",
		Summary:     "List genres",
		Description: "Returns every genre ordered by name",
		Tags:        []string{"Genres"},
	}, s.handleListGenres)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createGenre",
		Method:        http.MethodPost,
		Path:          basePath + "/genres",
		Summary:       "Create genre",
		Description:   "Creates a genre. Naming an existing genre returns it with 200 and `existing` set.",
		Tags:          []string{"Genres"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGenre",
		Method:      http.MethodGet,
		Path:        basePath + "/genres/{id}",
		Summary:     "Get genre",
		Description: "Returns a genre with the books classified under it",
		Tags:        []string{"Genres"},
	}, s.handleGetGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateGenre",
		Method:      http.MethodPut,
		Path:        basePath + "/genres/{id}",
		Summary:     "Update genre",
		Description: "Renames a genre",
		Tags:        []string{"Genres"},
	}, s.handleUpdateGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGenreForm",
		Method:      http.MethodGet,
		Path:        basePath + "/genres/{id}/form",
		Summary:     "Get genre edit form",
		Description: "Returns the genre's current values as a form",
		Tags:        []string{"Genres"},
	}, s.handleGetGenreForm)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGenreDeleteView",
		Method:      http.MethodGet,
		Path:        basePath + "/genres/{id}/delete",
		Summary:     "Get genre delete view",
		Description: "Returns the genre and the books that block deleting it",
		Tags:        []string{"Genres"},
	}, s.handleGetGenreDeleteView)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteGenre",
		Method:        http.MethodDelete,
		Path:          basePath + "/genres/{id}",
		Summary:       "Delete genre",
		Description:   "Deletes a genre no book uses. Returns 409 listing the books otherwise.",
		Tags:          []string{"Genres"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteGenre)
}

// === DTOs ===

type GenreRequest struct {
	Name string `json:"name" required:"false" doc:"Genre name"`
}

func (r GenreRequest) toInput() validation.Input {
	return newFormInput().text(service.FieldName, r.Name).input()
}

type GenreIDInput struct {
	ID string `path:"id" doc:"Genre ID"`
}

type CreateGenreInput struct {
	Body GenreRequest
}

type UpdateGenreInput struct {
	ID   string `path:"id" doc:"Genre ID"`
	Body GenreRequest
}

type ListGenresResponse struct {
	Genres []*domain.Genre `json:"genres" doc:"Genres ordered by name"`
}

type ListGenresOutput struct {
	Body ListGenresResponse
}

type GenreDetailOutput struct {
	Body *service.GenreDetail
}

type GenreFormOutput struct {
	Status int
	Body   *service.GenreForm
}

type GenreDeleteViewOutput struct {
	Body *service.DeleteView[*domain.Genre]
}

// === Handlers ===

func (s *Server) handleListGenres(ctx context.Context, _ *struct{}) (*ListGenresOutput, error) {
	genres, err := s.services.Genre.List(ctx)
	if err != nil {
		return nil, s.fail("listGenres", err)
	}
	return &ListGenresOutput{Body: ListGenresResponse{Genres: genres}}, nil
}

func (s *Server) handleCreateGenre(ctx context.Context, input *CreateGenreInput) (*GenreFormOutput, error) {
	f, err := s.services.Genre.Create(ctx, input.Body.toInput())
	if err != nil {
		return nil, s.fail("createGenre", err)
	}
	if f.Failed() {
		return nil, rejected("genre", f)
	}

	status := http.StatusCreated
	if f.Existing {
		status = http.StatusOK
	}
	return &GenreFormOutput{Status: status, Body: f}, nil
}

func (s *Server) handleGetGenre(ctx context.Context, input *GenreIDInput) (*GenreDetailOutput, error) {
	detail, err := s.services.Genre.Detail(ctx, input.ID)
	if err != nil {
		return nil, s.fail("getGenre", err)
	}
	return &GenreDetailOutput{Body: detail}, nil
}

func (s *Server) handleUpdateGenre(ctx context.Context, input *UpdateGenreInput) (*GenreFormOutput, error) {
	f, err := s.services.Genre.Update(ctx, input.ID, input.Body.toInput())
	if err != nil {
		return nil, s.fail("updateGenre", err)
	}
	if f.Failed() {
		return nil, rejected("genre", f)
	}
	return &GenreFormOutput{Status: http.StatusOK, Body: f}, nil
}

func (s *Server) handleGetGenreForm(ctx context.Context, input *GenreIDInput) (*GenreFormOutput, error) {
	f, err := s.services.Genre.EditForm(ctx, input.ID)
	if err != nil {
		return nil, s.fail("getGenreForm", err)
	}
	return &GenreFormOutput{Status: http.StatusOK, Body: f}, nil
}

func (s *Server) handleGetGenreDeleteView(ctx context.Context, input *GenreIDInput) (*GenreDeleteViewOutput, error) {
	dv, err := s.services.Genre.DeleteView(ctx, input.ID)
	if err != nil {
		return nil, s.fail("getGenreDeleteView", err)
	}
	return &GenreDeleteViewOutput{Body: dv}, nil
}

func (s *Server) handleDeleteGenre(ctx context.Context, input *GenreIDInput) (*struct{}, error) {
	if err := s.services.Genre.Delete(ctx, input.ID); err != nil {
		return nil, s.fail("deleteGenre", err)
	}
	return nil, nil
}
