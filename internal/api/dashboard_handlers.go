package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/catalog-server/internal/service"
)

func (s *Server) registerDashboardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getDashboard",
		Method:      http.MethodGet,
		Path:        basePath,
		Summary:     "Catalog dashboard",
		Description: "Returns the number of books, copies, available copies, authors and genres",
		Tags:        []string{"Dashboard"},
	}, s.handleGetDashboard)
}

type DashboardOutput struct {
	Body *service.Counts
}

func (s *Server) handleGetDashboard(ctx context.Context, _ *struct{}) (*DashboardOutput, error) {
	counts, err := s.services.Dashboard.Counts(ctx)
	if err != nil {
		return nil, s.fail("getDashboard", err)
	}
	return &DashboardOutput{Body: counts}, nil
}
