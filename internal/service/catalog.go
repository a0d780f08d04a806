package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/bibliobot/bibliobot-server/internal/domain"
	"github.com/bibliobot/bibliobot-server/internal/normalize"
)

// CatalogStore is the read side of the catalog.
type CatalogStore interface {
	SearchWorks(ctx context.Context, q domain.SearchQuery) ([]domain.Work, error)
	GetEditions(ctx context.Context, workKey string, offset, limit int) ([]domain.Edition, int, error)
	GetWorkLocations(ctx context.Context, workKey string) ([]string, error)
}

// CatalogService answers work searches and edition lookups.
//
// Store failures never reach callers as errors: they are logged and reported
// as domain.OutcomeUnavailable so the presentation layer can choose between
// "no results" and "try again later".
type CatalogService struct {
	store  CatalogStore
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store CatalogStore, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		logger: logger,
	}
}

// SearchWorks returns one page of works matching q.
// Queries shorter than domain.MinQueryLength after normalization return an
// empty page without touching the store.
func (s *CatalogService) SearchWorks(ctx context.Context, q domain.SearchQuery) domain.Result[domain.WorkPage] {
	q.Sanitize()

	if utf8.RuneCountInString(normalize.Text(q.Text)) < domain.MinQueryLength {
		return domain.OK(domain.WorkPage{Works: []domain.Work{}})
	}

	works, err := s.store.SearchWorks(ctx, q)
	if err != nil {
		s.logger.Error("work search failed",
			"query", q.Text,
			"mode", q.Mode,
			"offset", q.Offset,
			"error", err,
		)
		return domain.Unavailable[domain.WorkPage]()
	}

	return domain.OK(domain.WorkPage{
		Works:           works,
		Total:           q.Offset + len(works),
		TotalIsEstimate: true,
		HasMore:         len(works) == q.Limit,
	})
}

// GetEditions returns one page of the editions of a work, newest first.
func (s *CatalogService) GetEditions(ctx context.Context, workKey string, offset, limit int) domain.Result[domain.EditionPage] {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = domain.DefaultPageSize
	}
	if workKey == "" {
		return domain.OK(domain.EditionPage{Editions: []domain.Edition{}})
	}

	editions, total, err := s.store.GetEditions(ctx, workKey, offset, limit)
	if err != nil {
		s.logger.Error("edition lookup failed",
			"work_key", workKey,
			"offset", offset,
			"error", err,
		)
		return domain.Unavailable[domain.EditionPage]()
	}

	return domain.OK(domain.EditionPage{Editions: editions, Total: total})
}

// GetWorkLocationStats returns the distinct storage locations of a work as a
// single comma separated line, or "" when no copy is shelved anywhere.
func (s *CatalogService) GetWorkLocationStats(ctx context.Context, workKey string) domain.Result[string] {
	if workKey == "" {
		return domain.OK("")
	}

	locations, err := s.store.GetWorkLocations(ctx, workKey)
	if err != nil {
		s.logger.Error("location lookup failed", "work_key", workKey, "error", err)
		return domain.Unavailable[string]()
	}

	return domain.OK(strings.Join(locations, ", "))
}
