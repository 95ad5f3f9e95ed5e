package api

import (
	"github.com/listenupapp/catalog-server/internal/service"
)

// Services groups the catalog services used by the API server.
type Services struct {
	Author       *service.AuthorService
	Book         *service.BookService
	Genre        *service.GenreService
	BookInstance *service.BookInstanceService
	Dashboard    *service.DashboardService
}
