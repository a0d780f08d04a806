package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibliobot/bibliobot-server/internal/conversation"
	"github.com/bibliobot/bibliobot-server/internal/domain"
	"github.com/bibliobot/bibliobot-server/internal/ratelimit"
	"github.com/bibliobot/bibliobot-server/internal/service"
	"github.com/bibliobot/bibliobot-server/internal/session"
	"github.com/bibliobot/bibliobot-server/internal/store/sqlite"
)

type testEnvelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type testServer struct {
	*Server
	api      humatest.TestAPI
	store    *sqlite.Store
	sessions *session.MemoryStore
}

func setupTestServer(t *testing.T, burst int) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "catalog.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	seed := []struct {
		edition   domain.Edition
		locations []string
	}{
		{domain.Edition{Title: "Война и мир", Author: "Толстой Л.Н.", LanguageCode: "503", Publication: "М., 1980"}, []string{"Абонемент"}},
		{domain.Edition{Title: "Война и мир.", Author: "Толстой, Л. Н.", LanguageCode: "503", Publication: "М., 2005"}, []string{"Читальный зал", "Абонемент"}},
		{domain.Edition{Title: "Абай жолы", Author: "Әуезов М.", LanguageCode: "521"}, nil},
	}
	for _, s := range seed {
		e := s.edition
		require.NoError(t, st.CreateEdition(ctx, &e))
		for _, loc := range s.locations {
			require.NoError(t, st.AddInventory(ctx, e.ID, loc))
		}
	}
	_, err = service.NewCatalogBackfill(st, logger).Run(ctx, service.BackfillOptions{})
	require.NoError(t, err)

	catalog := service.NewCatalogService(st, logger)
	sessions := session.NewMemoryStore()

	var limiter *ratelimit.KeyedRateLimiter
	if burst > 0 {
		limiter = ratelimit.New(0.001, burst, 0)
		t.Cleanup(limiter.Stop)
	}

	s := NewServer(&Services{
		Catalog:      catalog,
		Conversation: conversation.NewEngine(catalog, sessions, logger, conversation.Options{ShowUnavailable: true}),
		TurnLimiter:  limiter,
		Database:     st,
	}, Options{}, logger)

	return &testServer{
		Server:   s,
		api:      humatest.Wrap(t, s.API()),
		store:    st,
		sessions: sessions,
	}
}

func decode[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return env
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t, 0)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decode[HealthResponse](t, resp.Body.Bytes())
	assert.True(t, env.Success)
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Equal(t, "healthy", env.Data.Components["catalog"].Status)
}

func TestSearchWorks(t *testing.T) {
	ts := setupTestServer(t, 0)

	resp := ts.api.Get("/api/v1/works?q=" + url.QueryEscape("война мир"))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[domain.WorkPage](t, resp.Body.Bytes())
	require.True(t, env.Success)
	require.Len(t, env.Data.Works, 1, "both Tolstoy editions group into one work")
	assert.Equal(t, 2, env.Data.Works[0].EditionsCount)
	assert.True(t, env.Data.TotalIsEstimate)
	assert.False(t, env.Data.HasMore)
}

func TestSearchWorks_AuthorMode(t *testing.T) {
	ts := setupTestServer(t, 0)

	resp := ts.api.Get("/api/v1/works?mode=author&q=" + url.QueryEscape("ӘУЕЗОВ"))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[domain.WorkPage](t, resp.Body.Bytes())
	require.Len(t, env.Data.Works, 1)
	assert.Equal(t, "Абай жолы", env.Data.Works[0].Title)
}

func TestSearchWorks_Validation(t *testing.T) {
	ts := setupTestServer(t, 0)

	tests := []struct {
		name string
		path string
	}{
		{"missing query", "/api/v1/works"},
		{"unknown mode", "/api/v1/works?q=abc&mode=isbn"},
		{"negative offset", "/api/v1/works?q=abc&offset=-1"},
		{"limit too large", "/api/v1/works?q=abc&limit=500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get(tt.path)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

			env := decode[any](t, resp.Body.Bytes())
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, "VALIDATION", env.Error.Code)
		})
	}
}

func TestEditionsAndLocations(t *testing.T) {
	ts := setupTestServer(t, 0)

	search := decode[domain.WorkPage](t, ts.api.Get("/api/v1/works?q="+url.QueryEscape("война и мир")).Body.Bytes())
	require.Len(t, search.Data.Works, 1)
	key := search.Data.Works[0].Key

	resp := ts.api.Get("/api/v1/works/" + key + "/editions?limit=1")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	editions := decode[domain.EditionPage](t, resp.Body.Bytes())
	assert.Equal(t, 2, editions.Data.Total)
	require.Len(t, editions.Data.Editions, 1)
	assert.Equal(t, "М., 2005", editions.Data.Editions[0].Publication, "newest edition first")
	assert.Equal(t, "Русский", editions.Data.Editions[0].Language)

	resp = ts.api.Get("/api/v1/works/" + key + "/locations")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	locations := decode[LocationsResponse](t, resp.Body.Bytes())
	assert.Equal(t, "Абонемент, Читальный зал", locations.Data.Locations)

	resp = ts.api.Get("/api/v1/works/unknown/editions")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 0, decode[domain.EditionPage](t, resp.Body.Bytes()).Data.Total)
}

func TestCatalogUnavailable(t *testing.T) {
	ts := setupTestServer(t, 0)
	require.NoError(t, ts.store.Close())

	resp := ts.api.Get("/api/v1/works?q=" + url.QueryEscape("война"))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	env := decode[any](t, resp.Body.Bytes())
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAVAILABLE", env.Error.Code)

	health := decode[HealthResponse](t, ts.api.Get("/health").Body.Bytes())
	assert.Equal(t, "unhealthy", health.Data.Status)
}

func TestConversationTurns(t *testing.T) {
	ts := setupTestServer(t, 0)

	resp := ts.api.Post("/api/v1/conversations/tg:1/turns", map[string]any{"action": conversation.ModeAction(domain.ModeAny)})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	prompt := decode[conversation.Reply](t, resp.Body.Bytes())
	assert.Equal(t, domain.StateAwaitingQuery, prompt.Data.State)
	assert.NotEmpty(t, prompt.Data.MessageID)

	resp = ts.api.Post("/api/v1/conversations/tg:1/turns", map[string]any{"text": "война и мир"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	results := decode[conversation.Reply](t, resp.Body.Bytes())
	assert.Equal(t, domain.StateBrowsingResults, results.Data.State)
	assert.Contains(t, results.Data.Text, "🔎 война и мир")
	assert.Contains(t, results.Data.Text, "1. Война и мир")
	assert.Equal(t, 1, ts.sessions.Len())

	resp = ts.api.Delete("/api/v1/conversations/tg:1")
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, 0, ts.sessions.Len())
}

func TestConversationTurns_RateLimited(t *testing.T) {
	ts := setupTestServer(t, 2)

	for range 2 {
		resp := ts.api.Post("/api/v1/conversations/tg:2/turns", map[string]any{"text": "меню"})
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Post("/api/v1/conversations/tg:2/turns", map[string]any{"text": "меню"})
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	env := decode[any](t, resp.Body.Bytes())
	require.NotNil(t, env.Error)
	assert.Equal(t, "RATE_LIMITED", env.Error.Code)

	// Other users keep their own budget.
	resp = ts.api.Post("/api/v1/conversations/tg:3/turns", map[string]any{"text": "меню"})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestEnvelopeTransformer(t *testing.T) {
	out, err := EnvelopeTransformer(nil, "200", map[string]string{"id": "1"})
	require.NoError(t, err)
	assert.Equal(t, Envelope{Success: true, Data: map[string]string{"id": "1"}}, out)

	apiErr := &APIError{status: http.StatusNotFound, Code: "NOT_FOUND", Message: "missing"}
	out, err = EnvelopeTransformer(nil, "404", apiErr)
	require.NoError(t, err)
	assert.Equal(t, Envelope{Success: false, Error: apiErr}, out)

	out, err = EnvelopeTransformer(nil, "204", nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}
