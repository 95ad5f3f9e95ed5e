package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/catalog-server/internal/domain"
	"github.com/listenupapp/catalog-server/internal/service"
	"github.com/listenupapp/catalog-server/internal/validation"
)

func (s *Server) registerBookInstanceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBookInstances",
		Method:      http.MethodGet,
		Path:        basePath + "/bookinstances",
		Summary:     "List copies",
		Description: "Returns every copy with the title of its book",
		Tags:        []string{"Copies"},
	}, s.handleListBookInstances)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookInstanceCreateForm",
		Method:      http.MethodGet,
		Path:        basePath + "/bookinstances/form",
		Summary:     "Get copy create form",
		Description: "Returns an empty copy form with the book and status options",
		Tags:        []string{"Copies"},
	}, s.handleGetBookInstanceCreateForm)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBookInstance",
		Method:        http.MethodPost,
		Path:          basePath + "/bookinstances",
		Summary:       "Create copy",
		Description:   "Validates and stores a new copy. A blank status means Maintenance.",
		Tags:          []string{"Copies"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBookInstance)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookInstance",
		Method:      http.MethodGet,
		Path:        basePath + "/bookinstances/{id}",
		Summary:     "Get copy",
		Description: "Returns a copy with its book",
		Tags:        []string{"Copies"},
	}, s.handleGetBookInstance)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBookInstance",
		Method:      http.MethodPut,
		Path:        basePath + "/bookinstances/{id}",
		Summary:     "Update copy",
		Description: "Replaces a copy's fields",
		Tags:        []string{"Copies"},
	}, s.handleUpdateBookInstance)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookInstanceForm",
		Method:      http.MethodGet,
		Path:        basePath + "/bookinstances/{id}/form",
		Summary:     "Get copy edit form",
		Description: "Returns the copy's current values as a form",
		Tags:        []string{"Copies"},
	}, s.handleGetBookInstanceForm)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookInstanceDeleteView",
		Method:      http.MethodGet,
		Path:        basePath + "/bookinstances/{id}/delete",
		Summary:     "Get copy delete view",
		Description: "Returns the copy about to be deleted",
		Tags:        []string{"Copies"},
	}, s.handleGetBookInstanceDeleteView)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteBookInstance",
		Method:        http.MethodDelete,
		Path:          basePath + "/bookinstances/{id}",
		Summary:       "Delete copy",
		Description:   "Deletes a copy",
		Tags:          []string{"Copies"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteBookInstance)
}

// === DTOs ===

type BookInstanceRequest struct {
	Book    string `json:"book" required:"false" doc:"Book ID"`
	Imprint string `json:"imprint" required:"false" doc:"Publisher and edition"`
	Status  string `json:"status" required:"false" doc:"Available, Maintenance, Loaned or Reserved"`
	DueBack string `json:"due_back" required:"false" doc:"ISO 8601 date"`
}

func (r BookInstanceRequest) toInput() validation.Input {
	return newFormInput().
		text(service.FieldBook, r.Book).
		text(service.FieldImprint, r.Imprint).
		text(service.FieldStatus, r.Status).
		text(service.FieldDueBack, r.DueBack).
		input()
}

type BookInstanceIDInput struct {
	ID string `path:"id" doc:"Copy ID"`
}

type CreateBookInstanceInput struct {
	Body BookInstanceRequest
}

type UpdateBookInstanceInput struct {
	ID   string `path:"id" doc:"Copy ID"`
	Body BookInstanceRequest
}

type ListBookInstancesResponse struct {
	Instances []service.BookInstanceListItem `json:"instances" doc:"Copies with book titles"`
}

type ListBookInstancesOutput struct {
	Body ListBookInstancesResponse
}

type BookInstanceDetailOutput struct {
	Body *service.BookInstanceDetail
}

type BookInstanceFormOutput struct {
	Body *service.BookInstanceForm
}

type BookInstanceDeleteViewOutput struct {
	Body *service.DeleteView[*domain.BookInstance]
}

// === Handlers ===

func (s *Server) handleListBookInstances(ctx context.Context, _ *struct{}) (*ListBookInstancesOutput, error) {
	instances, err := s.services.BookInstance.List(ctx)
	if err != nil {
		return nil, s.fail("listBookInstances", err)
	}
	return &ListBookInstancesOutput{Body: ListBookInstancesResponse{Instances: instances}}, nil
}

func (s *Server) handleGetBookInstanceCreateForm(ctx context.Context, _ *struct{}) (*BookInstanceFormOutput, error) {
	f, err := s.services.BookInstance.CreateForm(ctx)
	if err != nil {
		return nil, s.fail("getBookInstanceCreateForm", err)
	}
	return &BookInstanceFormOutput{Body: f}, nil
}

func (s *Server) handleCreateBookInstance(ctx context.Context, input *CreateBookInstanceInput) (*BookInstanceFormOutput, error) {
	f, err := s.services.BookInstance.Create(ctx, input.Body.toInput())
	if err != nil {
		return nil, s.fail("createBookInstance", err)
	}
	if f.Failed() {
		return nil, rejected("copy", f)
	}
	return &BookInstanceFormOutput{Body: f}, nil
}

func (s *Server) handleGetBookInstance(ctx context.Context, input *BookInstanceIDInput) (*BookInstanceDetailOutput, error) {
	detail, err := s.services.BookInstance.Detail(ctx, input.ID)
	if err != nil {
		return nil, s.fail("getBookInstance", err)
	}
	return &BookInstanceDetailOutput{Body: detail}, nil
}

func (s *Server) handleUpdateBookInstance(ctx context.Context, input *UpdateBookInstanceInput) (*BookInstanceFormOutput, error) {
	f, err := s.services.BookInstance.Update(ctx, input.ID, input.Body.toInput())
	if err != nil {
		return nil, s.fail("updateBookInstance", err)
	}
	if f.Failed() {
		return nil, rejected("copy", f)
	}
	return &BookInstanceFormOutput{Body: f}, nil
}

func (s *Server) handleGetBookInstanceForm(ctx context.Context, input *BookInstanceIDInput) (*BookInstanceFormOutput, error) {
	f, err := s.services.BookInstance.EditForm(ctx, input.ID)
	if err != nil {
		return nil, s.fail("getBookInstanceForm", err)
	}
	return &BookInstanceFormOutput{Body: f}, nil
}

func (s *Server) handleGetBookInstanceDeleteView(ctx context.Context, input *BookInstanceIDInput) (*BookInstanceDeleteViewOutput, error) {
	dv, err := s.services.BookInstance.DeleteView(ctx, input.ID)
	if err != nil {
		return nil, s.fail("getBookInstanceDeleteView", err)
	}
	return &BookInstanceDeleteViewOutput{Body: dv}, nil
}

func (s *Server) handleDeleteBookInstance(ctx context.Context, input *BookInstanceIDInput) (*struct{}, error) {
	if err := s.services.BookInstance.Delete(ctx, input.ID); err != nil {
		return nil, s.fail("deleteBookInstance", err)
	}
	return nil, nil
}
