package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/catalog-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        basePath + "/search",
		Summary:     "Search catalog",
		Description: "Full-text search across authors, books and genres",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching the catalog.
type SearchInput struct {
	Query  string `query:"q" maxLength:"200" doc:"Search query. Empty matches everything."`
	Types  string `query:"types" maxLength:"100" doc:"Comma-separated types to search (author,book,genre). Omit for all."`
	Genre  string `query:"genre" doc:"Only books in this genre"`
	Limit  int    `query:"limit" minimum:"0" maximum:"100" doc:"Max results (default 20)"`
	Offset int    `query:"offset" minimum:"0" doc:"Pagination offset (default 0)"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body *search.Result
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if s.index == nil {
		return nil, huma.Error503ServiceUnavailable("search is disabled")
	}

	params := search.Params{
		Query:   input.Query,
		GenreID: input.Genre,
		Limit:   input.Limit,
		Offset:  input.Offset,
	}
	if input.Types != "" {
		for t := range strings.SplitSeq(input.Types, ",") {
			params.Types = append(params.Types, search.DocType(strings.TrimSpace(t)))
		}
	}

	s.logger.Debug("search request received",
		"query", input.Query,
		"types", input.Types,
		"limit", input.Limit,
	)

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, s.fail("search", err)
	}
	return &SearchOutput{Body: result}, nil
}
