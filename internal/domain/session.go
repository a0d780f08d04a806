package domain

import "time"

// Session lifetime defaults.
const (
	SessionIdleTTL       = 2 * time.Hour
	SessionSweepInterval = time.Hour
)

// Language is the interface language of a conversation.
type Language string

// Supported languages.
const (
	LanguageRU Language = "ru"
	LanguageKZ Language = "kz"
)

// ParseLanguage converts s into a Language, falling back to Russian.
func ParseLanguage(s string) Language {
	if Language(s) == LanguageKZ {
		return LanguageKZ
	}
	return LanguageRU
}

// ConversationState is the position of a user in the search dialog.
type ConversationState string

// Conversation states.
const (
	StateIdle            ConversationState = "idle"
	StateAwaitingQuery   ConversationState = "awaiting_query"
	StateBrowsingResults ConversationState = "browsing_results"
)

// RememberedSearch is the last results list shown to a user.
type RememberedSearch struct {
	Query  string     `json:"query"`
	Mode   SearchMode `json:"mode"`
	Offset int        `json:"offset"`
}

// Session is the per-user conversation record.
type Session struct {
	UserID   string            `json:"user_id"`
	Language Language          `json:"language"`
	State    ConversationState `json:"state"`
	// Mode is meaningful in StateAwaitingQuery and StateBrowsingResults.
	Mode       SearchMode        `json:"mode,omitempty"`
	LastSearch *RememberedSearch `json:"last_search,omitempty"`
	// PageKeys are the work keys of the current results page, in display order.
	PageKeys      []string  `json:"page_keys,omitempty"`
	LastMessageID string    `json:"last_message_id,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewSession creates an idle session for userID.
func NewSession(userID string, lang Language) *Session {
	return &Session{
		UserID:    userID,
		Language:  lang,
		State:     StateIdle,
		UpdatedAt: time.Now(),
	}
}

// Reset returns the session to idle, keeping only user and language.
func (s *Session) Reset() {
	s.State = StateIdle
	s.Mode = ""
	s.LastSearch = nil
	s.PageKeys = nil
}

// Touch records activity at now.
func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now
}

// IsStale reports whether the session has been idle longer than ttl.
func (s *Session) IsStale(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.UpdatedAt) > ttl
}
