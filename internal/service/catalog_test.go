package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibliobot/bibliobot-server/internal/domain"
	"github.com/bibliobot/bibliobot-server/internal/normalize"
	"github.com/bibliobot/bibliobot-server/internal/store/sqlite"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestCatalog(t *testing.T) (*CatalogService, *sqlite.Store) {
	t.Helper()

	testStore, err := sqlite.Open(filepath.Join(t.TempDir(), "catalog.db"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { testStore.Close() })

	return NewCatalogService(testStore, discardLogger()), testStore
}

func createTestEdition(t *testing.T, s *sqlite.Store, e domain.Edition, locations ...string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.CreateEdition(ctx, &e))
	for _, loc := range locations {
		require.NoError(t, s.AddInventory(ctx, e.ID, loc))
	}
}

func runBackfill(t *testing.T, s *sqlite.Store) {
	t.Helper()
	_, err := NewCatalogBackfill(s, discardLogger()).Run(context.Background(), BackfillOptions{})
	require.NoError(t, err)
}

// fakeCatalogStore counts calls and fails on demand.
type fakeCatalogStore struct {
	works     []domain.Work
	editions  []domain.Edition
	locations []string
	err       error

	searchCalls int
	lastQuery   domain.SearchQuery
}

func (f *fakeCatalogStore) SearchWorks(_ context.Context, q domain.SearchQuery) ([]domain.Work, error) {
	f.searchCalls++
	f.lastQuery = q
	return f.works, f.err
}

func (f *fakeCatalogStore) GetEditions(_ context.Context, _ string, _, _ int) ([]domain.Edition, int, error) {
	return f.editions, len(f.editions), f.err
}

func (f *fakeCatalogStore) GetWorkLocations(_ context.Context, _ string) ([]string, error) {
	return f.locations, f.err
}

func TestSearchWorks_ShortQuery(t *testing.T) {
	fake := &fakeCatalogStore{}
	svc := NewCatalogService(fake, discardLogger())

	for _, q := range []string{"", "ab", "  а ", "!!!", "изд."} {
		res := svc.SearchWorks(context.Background(), domain.SearchQuery{Text: q})
		assert.True(t, res.Available(), q)
		assert.Empty(t, res.Data.Works, q)
		assert.Equal(t, 0, res.Data.Total, q)
	}
	assert.Equal(t, 0, fake.searchCalls)
}

func TestSearchWorks_SanitizesQuery(t *testing.T) {
	fake := &fakeCatalogStore{works: []domain.Work{}}
	svc := NewCatalogService(fake, discardLogger())

	svc.SearchWorks(context.Background(), domain.SearchQuery{Text: "абай", Mode: "nope", Offset: -3})

	require.Equal(t, 1, fake.searchCalls)
	assert.Equal(t, domain.ModeAny, fake.lastQuery.Mode)
	assert.Equal(t, 0, fake.lastQuery.Offset)
	assert.Equal(t, domain.DefaultPageSize, fake.lastQuery.Limit)
}

func TestSearchWorks_PageFlags(t *testing.T) {
	works := make([]domain.Work, domain.DefaultPageSize)
	fake := &fakeCatalogStore{works: works}
	svc := NewCatalogService(fake, discardLogger())

	res := svc.SearchWorks(context.Background(), domain.SearchQuery{Text: "абай", Offset: 20})
	require.True(t, res.Available())
	assert.True(t, res.Data.HasMore)
	assert.True(t, res.Data.TotalIsEstimate)
	assert.Equal(t, 30, res.Data.Total)

	fake.works = works[:4]
	res = svc.SearchWorks(context.Background(), domain.SearchQuery{Text: "абай"})
	assert.False(t, res.Data.HasMore)
	assert.Equal(t, 4, res.Data.Total)
}

func TestCatalogService_StoreFailureIsUnavailable(t *testing.T) {
	fake := &fakeCatalogStore{err: errors.New("database is locked")}
	svc := NewCatalogService(fake, discardLogger())
	ctx := context.Background()

	search := svc.SearchWorks(ctx, domain.SearchQuery{Text: "война и мир"})
	assert.Equal(t, domain.OutcomeUnavailable, search.Outcome)
	assert.Empty(t, search.Data.Works)

	editions := svc.GetEditions(ctx, "key", 0, 10)
	assert.Equal(t, domain.OutcomeUnavailable, editions.Outcome)
	assert.Empty(t, editions.Data.Editions)

	stats := svc.GetWorkLocationStats(ctx, "key")
	assert.Equal(t, domain.OutcomeUnavailable, stats.Outcome)
	assert.Empty(t, stats.Data)
}

func TestCatalogService_EndToEnd(t *testing.T) {
	svc, st := setupTestCatalog(t)
	ctx := context.Background()

	createTestEdition(t, st, domain.Edition{ID: 1, Title: "Война и мир", Author: "Толстой Л.Н.", LanguageCode: "503"}, "Читальный зал", "Абонемент")
	createTestEdition(t, st, domain.Edition{ID: 2, Title: "Война и мир.", Author: "Толстой, Л. Н.", LanguageCode: "777"}, "Абонемент")
	createTestEdition(t, st, domain.Edition{ID: 3, Title: "Анна Каренина", Author: "Толстой Л.Н."})
	runBackfill(t, st)

	search := svc.SearchWorks(ctx, domain.SearchQuery{Text: "Война и Мир!", Mode: domain.ModeAny})
	require.True(t, search.Available())
	require.Len(t, search.Data.Works, 1)
	work := search.Data.Works[0]
	assert.Equal(t, 2, work.EditionsCount)
	assert.Equal(t, normalize.WorkKey("Толстой Л.Н.", "Война и мир"), work.Key)

	editions := svc.GetEditions(ctx, work.Key, 0, 10)
	require.True(t, editions.Available())
	assert.Equal(t, 2, editions.Data.Total)
	require.Len(t, editions.Data.Editions, 2)
	assert.Equal(t, int64(2), editions.Data.Editions[0].ID)
	assert.Equal(t, "777", editions.Data.Editions[0].Language)
	assert.Equal(t, "Русский", editions.Data.Editions[1].Language)

	stats := svc.GetWorkLocationStats(ctx, work.Key)
	require.True(t, stats.Available())
	assert.Equal(t, "Абонемент, Читальный зал", stats.Data)

	// A work with no inventory has no stats line.
	karenina := svc.SearchWorks(ctx, domain.SearchQuery{Text: "каренина", Mode: domain.ModeTitle})
	require.Len(t, karenina.Data.Works, 1)
	stats = svc.GetWorkLocationStats(ctx, karenina.Data.Works[0].Key)
	assert.True(t, stats.Available())
	assert.Equal(t, "", stats.Data)
}

func TestGetEditions_Defaults(t *testing.T) {
	fake := &fakeCatalogStore{}
	svc := NewCatalogService(fake, discardLogger())

	res := svc.GetEditions(context.Background(), "", -1, 0)
	assert.True(t, res.Available())
	assert.Empty(t, res.Data.Editions)
	assert.Equal(t, 0, res.Data.Total)
}
