package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bibliobot/bibliobot-server/internal/domain"
	domainerrors "github.com/bibliobot/bibliobot-server/internal/errors"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchWorks",
		Method:      http.MethodGet,
		Path:        "/api/v1/works",
		Summary:     "Search works",
		Description: "Searches the catalog and returns one page of works, grouped editions counted per work",
		Tags:        []string{"Catalog"},
	}, s.handleSearchWorks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getWorkEditions",
		Method:      http.MethodGet,
		Path:        "/api/v1/works/{key}/editions",
		Summary:     "List editions of a work",
		Description: "Returns one page of the editions sharing a work key, newest first",
		Tags:        []string{"Catalog"},
	}, s.handleGetEditions)

	huma.Register(s.api, huma.Operation{
		OperationID: "getWorkLocations",
		Method:      http.MethodGet,
		Path:        "/api/v1/works/{key}/locations",
		Summary:     "Storage locations of a work",
		Description: "Returns the distinct locations holding copies of a work",
		Tags:        []string{"Catalog"},
	}, s.handleGetLocations)
}

// SearchWorksInput contains parameters for a work search.
type SearchWorksInput struct {
	Query  string `query:"q" required:"true" minLength:"1" maxLength:"200" doc:"Search text"`
	Mode   string `query:"mode" enum:"any,title,author" default:"any" doc:"Which fields to match"`
	Offset int    `query:"offset" minimum:"0" default:"0" doc:"Works to skip"`
	Limit  int    `query:"limit" minimum:"1" maximum:"50" default:"10" doc:"Page size"`
}

// SearchWorksOutput wraps a page of works for Huma.
type SearchWorksOutput struct {
	Body domain.WorkPage
}

// WorkPageInput addresses a page under one work.
type WorkPageInput struct {
	Key    string `path:"key" minLength:"1" maxLength:"64" doc:"Work key"`
	Offset int    `query:"offset" minimum:"0" default:"0" doc:"Editions to skip"`
	Limit  int    `query:"limit" minimum:"1" maximum:"50" default:"10" doc:"Page size"`
}

// EditionsOutput wraps a page of editions for Huma.
type EditionsOutput struct {
	Body domain.EditionPage
}

// WorkKeyInput addresses one work.
type WorkKeyInput struct {
	Key string `path:"key" minLength:"1" maxLength:"64" doc:"Work key"`
}

// LocationsResponse lists where a work is shelved.
type LocationsResponse struct {
	WorkKey   string `json:"work_key" doc:"Work key"`
	Locations string `json:"locations" doc:"Comma separated distinct locations, empty when none"`
}

// LocationsOutput wraps the locations response for Huma.
type LocationsOutput struct {
	Body LocationsResponse
}

func (s *Server) handleSearchWorks(ctx context.Context, input *SearchWorksInput) (*SearchWorksOutput, error) {
	res := s.services.Catalog.SearchWorks(ctx, domain.SearchQuery{
		Text:   input.Query,
		Mode:   domain.ParseSearchMode(input.Mode),
		Offset: input.Offset,
		Limit:  input.Limit,
	})
	if !res.Available() {
		return nil, toAPIError(domainerrors.Unavailable("catalog search is temporarily unavailable"))
	}
	return &SearchWorksOutput{Body: res.Data}, nil
}

func (s *Server) handleGetEditions(ctx context.Context, input *WorkPageInput) (*EditionsOutput, error) {
	res := s.services.Catalog.GetEditions(ctx, input.Key, input.Offset, input.Limit)
	if !res.Available() {
		return nil, toAPIError(domainerrors.Unavailable("catalog lookup is temporarily unavailable"))
	}
	return &EditionsOutput{Body: res.Data}, nil
}

func (s *Server) handleGetLocations(ctx context.Context, input *WorkKeyInput) (*LocationsOutput, error) {
	res := s.services.Catalog.GetWorkLocationStats(ctx, input.Key)
	if !res.Available() {
		return nil, toAPIError(domainerrors.Unavailable("catalog lookup is temporarily unavailable"))
	}
	return &LocationsOutput{Body: LocationsResponse{WorkKey: input.Key, Locations: res.Data}}, nil
}
