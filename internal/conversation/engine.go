// Package conversation implements the chat search dialog: a per-user state
// machine over the catalog query engine, rendered into transport-neutral
// replies.
package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/bibliobot/bibliobot-server/internal/domain"
	"github.com/bibliobot/bibliobot-server/internal/id"
	"github.com/bibliobot/bibliobot-server/internal/session"
)

// Catalog is the query engine the dialog runs against.
type Catalog interface {
	SearchWorks(ctx context.Context, q domain.SearchQuery) domain.Result[domain.WorkPage]
	GetEditions(ctx context.Context, workKey string, offset, limit int) domain.Result[domain.EditionPage]
	GetWorkLocationStats(ctx context.Context, workKey string) domain.Result[string]
}

// ErrMissingUser is returned for turns without a user ID.
var ErrMissingUser = errors.New("turn has no user id")

// Turn is one inbound user event. Exactly one of Text and Action is expected;
// Action wins when both are set.
type Turn struct {
	UserID string `json:"user_id"`
	Text   string `json:"text,omitempty"`
	Action string `json:"action,omitempty"`
	// DisplayedMessage is the text of the message the action was attached to.
	DisplayedMessage string `json:"displayed_message,omitempty"`
}

// Options tunes the dialog.
type Options struct {
	PageSize int
	// ShowUnavailable renders store outages as "try again later" instead of
	// the generic "no results".
	ShowUnavailable bool
	DefaultLanguage domain.Language
	Now             func() time.Time
}

// Engine runs conversation turns.
//
// Turns of one user are assumed to arrive one at a time; turns of different
// users may run concurrently.
type Engine struct {
	catalog  Catalog
	sessions session.Store
	logger   *slog.Logger
	opts     Options
}

// NewEngine creates a conversation engine.
func NewEngine(catalog Catalog, sessions session.Store, logger *slog.Logger, opts Options) *Engine {
	if opts.PageSize <= 0 {
		opts.PageSize = domain.DefaultPageSize
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = domain.LanguageRU
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		catalog:  catalog,
		sessions: sessions,
		logger:   logger,
		opts:     opts,
	}
}

// Handle processes one turn and returns the reply to show.
//
// Session storage problems never fail a turn: a missing or unreadable session
// starts fresh, and a failed save is logged.
func (e *Engine) Handle(ctx context.Context, turn Turn) (*Reply, error) {
	if turn.UserID == "" {
		return nil, ErrMissingUser
	}

	s := e.loadSession(ctx, turn.UserID)

	var reply *Reply
	if turn.Action != "" {
		reply = e.handleAction(ctx, s, parseAction(turn.Action), turn.DisplayedMessage)
	} else {
		reply = e.handleText(ctx, s, turn.Text)
	}

	reply.MessageID = id.NewMessageID()
	reply.State = s.State
	s.LastMessageID = reply.MessageID
	s.Touch(e.opts.Now())

	if err := e.sessions.Set(ctx, s); err != nil {
		e.logger.Warn("failed to save session", "user_id", s.UserID, "error", err)
	}

	return reply, nil
}

// Reset forgets the user's session.
func (e *Engine) Reset(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUser
	}
	return e.sessions.Delete(ctx, userID)
}

func (e *Engine) loadSession(ctx context.Context, userID string) *domain.Session {
	s, err := e.sessions.Get(ctx, userID)
	if err == nil {
		return s
	}
	if !errors.Is(err, session.ErrNotFound) {
		e.logger.Warn("failed to load session, starting fresh", "user_id", userID, "error", err)
	}
	return domain.NewSession(userID, e.opts.DefaultLanguage)
}

func (e *Engine) handleAction(ctx context.Context, s *domain.Session, a action, displayed string) *Reply {
	t := TextsFor(s.Language)

	switch a.kind {
	case actionLanguageMenu:
		s.Reset()
		return languageMenu(t)

	case actionSetLanguage:
		s.Language = a.language
		s.Reset()
		return mainMenu(TextsFor(s.Language))

	case actionSelectMode:
		s.Reset()
		s.State = domain.StateAwaitingQuery
		s.Mode = a.mode
		return promptReply(t, t.prompt(a.mode))

	case actionSearchPage:
		return e.showResults(ctx, s, domain.RememberedSearch{Query: a.query, Mode: a.mode, Offset: a.offset})

	case actionViewWork:
		return e.showWork(ctx, s, a.workKey, a.offset, displayed)

	default:
		s.Reset()
		return mainMenu(t)
	}
}

func (e *Engine) handleText(ctx context.Context, s *domain.Session, text string) *Reply {
	t := TextsFor(s.Language)
	text = strings.TrimSpace(text)

	if isMenuCommand(text) {
		s.Reset()
		return mainMenu(t)
	}

	switch s.State {
	case domain.StateAwaitingQuery:
		return e.searchFromText(ctx, s, text)

	case domain.StateBrowsingResults:
		// Result numbers have at most two digits; longer numbers are queries.
		if n, err := strconv.Atoi(text); err == nil && len(text) <= 2 {
			if n >= 1 && n <= len(s.PageKeys) {
				return e.showWork(ctx, s, s.PageKeys[n-1], 0, "")
			}
			return promptReply(t, t.SelectHint)
		}
		return e.searchFromText(ctx, s, text)

	default:
		s.Reset()
		return mainMenu(t)
	}
}

// searchFromText starts a new search in the session's mode once the query is
// long enough; shorter input re-prompts without querying the catalog.
func (e *Engine) searchFromText(ctx context.Context, s *domain.Session, text string) *Reply {
	t := TextsFor(s.Language)
	if utf8.RuneCountInString(text) < domain.MinQueryLength {
		return promptReply(t, t.QueryTooShort)
	}

	mode := s.Mode
	if !mode.Valid() {
		mode = domain.ModeAny
	}
	return e.showResults(ctx, s, domain.RememberedSearch{Query: text, Mode: mode})
}

func (e *Engine) showResults(ctx context.Context, s *domain.Session, search domain.RememberedSearch) *Reply {
	t := TextsFor(s.Language)

	res := e.catalog.SearchWorks(ctx, domain.SearchQuery{
		Text:   search.Query,
		Mode:   search.Mode,
		Offset: search.Offset,
		Limit:  e.opts.PageSize,
	})

	s.State = domain.StateBrowsingResults
	s.Mode = search.Mode
	s.LastSearch = &search
	s.PageKeys = make([]string, len(res.Data.Works))
	for i, w := range res.Data.Works {
		s.PageKeys[i] = w.Key
	}

	if !res.Available() && e.opts.ShowUnavailable {
		return promptReply(t, t.Unavailable)
	}
	if len(res.Data.Works) == 0 {
		return renderNoResults(t, search)
	}
	return renderResults(t, search, res.Data.Works, e.opts.PageSize)
}

// showWork renders a page of a work's editions. The back button comes from the
// session, or from the displayed results message when the session lost it.
func (e *Engine) showWork(ctx context.Context, s *domain.Session, workKey string, offset int, displayed string) *Reply {
	t := TextsFor(s.Language)

	if s.LastSearch == nil {
		if recovered, ok := RecoverSearch(displayed); ok {
			e.logger.Debug("recovered search from displayed message",
				"user_id", s.UserID,
				"query", recovered.Query,
				"offset", recovered.Offset,
			)
			s.LastSearch = &recovered
			s.Mode = recovered.Mode
		}
	}
	s.State = domain.StateBrowsingResults

	var (
		editions domain.Result[domain.EditionPage]
		stats    domain.Result[string]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		editions = e.catalog.GetEditions(gctx, workKey, offset, e.opts.PageSize)
		return nil
	})
	g.Go(func() error {
		stats = e.catalog.GetWorkLocationStats(gctx, workKey)
		return nil
	})
	_ = g.Wait() // Outcomes travel in the results.

	if !editions.Available() && e.opts.ShowUnavailable {
		return promptReply(t, t.Unavailable)
	}

	return renderEditions(t, workKey, editions.Data, stats.Data, offset, e.opts.PageSize, s.LastSearch)
}

func isMenuCommand(text string) bool {
	switch strings.ToLower(text) {
	case "/start", "/menu", "menu", "меню", "мәзір", "0":
		return true
	}
	return false
}
