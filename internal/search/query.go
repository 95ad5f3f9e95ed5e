package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/listenupapp/catalog-server/internal/validation"
)

// Params configures a search query.
type Params struct {
	// Query is the user's text. Empty matches everything.
	Query string `json:"q" validate:"max=200"`
	// Types restricts hits to these document types. Empty means all.
	Types []DocType `json:"types" validate:"dive,oneof=author book genre"`
	// GenreID keeps only books in this genre.
	GenreID string `json:"genre"`
	Limit   int    `json:"limit" validate:"gte=0,lte=100"`
	Offset  int    `json:"offset" validate:"gte=0"`
}

var paramsValidator = validation.New()

// DefaultLimit is used when Params.Limit is not positive.
const DefaultLimit = 20

// Result is one page of search hits.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit is a single matching document.
type Hit struct {
	ID    string  `json:"id"`
	Type  DocType `json:"type"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Search executes a query ordered by relevance.
// Invalid params fail with a validation error before the index is touched.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	if err := paramsValidator.Validate(params); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	req := bleve.NewSearchRequestOptions(buildQuery(params), limit, params.Offset, false)
	req.SortBy([]string{"-_score", "name"})
	req.Fields = []string{"type", "name"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if t, ok := h.Fields["type"].(string); ok {
			hit.Type = DocType(t)
		}
		if n, ok := h.Fields["name"].(string); ok {
			hit.Name = n
		}
		result.Hits = append(result.Hits, hit)
	}
	return result, nil
}

// buildQuery matches the text against names first, then secondary text,
// with a fuzzy and a prefix clause on names for typos and autocomplete.
func buildQuery(params Params) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		nameMatch := bleve.NewMatchQuery(q)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)

		textMatch := bleve.NewMatchQuery(q)
		textMatch.SetField("text")

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("name")
		fuzzy.SetBoost(0.8)

		text := []query.Query{nameMatch, textMatch, fuzzy}
		if len(q) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("name")
			prefix.SetBoost(0.5)
			text = append(text, prefix)
		}
		queries = append(queries, bleve.NewDisjunctionQuery(text...))
	}

	if len(params.Types) > 0 {
		types := make([]query.Query, len(params.Types))
		for i, t := range params.Types {
			tq := bleve.NewTermQuery(string(t))
			tq.SetField("type")
			types[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(types...))
	}

	if params.GenreID != "" {
		gq := bleve.NewTermQuery(params.GenreID)
		gq.SetField("genre_ids")
		queries = append(queries, gq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}
