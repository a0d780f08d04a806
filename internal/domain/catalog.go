// Package domain contains the core entities of the library catalog search.
package domain

import "strings"

// DefaultPageSize is the number of works or editions shown per page.
const DefaultPageSize = 10

// MinQueryLength is the minimum normalized query length that reaches the store.
const MinQueryLength = 3

// SearchMode selects which fields a query is matched against.
type SearchMode string

// Search modes.
const (
	ModeAny    SearchMode = "any"
	ModeTitle  SearchMode = "title"
	ModeAuthor SearchMode = "author"
)

// ParseSearchMode converts s into a SearchMode, falling back to ModeAny.
func ParseSearchMode(s string) SearchMode {
	switch SearchMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeTitle:
		return ModeTitle
	case ModeAuthor:
		return ModeAuthor
	default:
		return ModeAny
	}
}

// Valid reports whether m is one of the known modes.
func (m SearchMode) Valid() bool {
	return m == ModeAny || m == ModeTitle || m == ModeAuthor
}

// SearchQuery is a request for one page of works.
type SearchQuery struct {
	Text   string     `json:"text"`
	Mode   SearchMode `json:"mode"`
	Offset int        `json:"offset"`
	Limit  int        `json:"limit"`
}

// Sanitize applies defaults: limit 10, offset clamped at 0, mode any.
func (q *SearchQuery) Sanitize() {
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if !q.Mode.Valid() {
		q.Mode = ModeAny
	}
}

// Edition is one catalog record: a physical or bibliographic edition.
type Edition struct {
	ID             int64  `json:"id"`
	Title          string `json:"title,omitempty"`
	Author         string `json:"author,omitempty"`
	Publication    string `json:"publication,omitempty"`
	LanguageCode   string `json:"language_code,omitempty"`
	Language       string `json:"language,omitempty"`
	IndexCatalogue string `json:"index_catalogue,omitempty"`
	Volume         string `json:"volume,omitempty"`
	CopyCount      string `json:"copy_count,omitempty"`
	// LevelID is the bibliographic category; editions at the excluded level
	// never appear in search results.
	LevelID   *int64   `json:"level_id,omitempty"`
	WorkKey   string   `json:"work_key,omitempty"`
	Locations []string `json:"locations,omitempty"`
}

// HasDetails reports whether the edition carries anything beyond its ID.
func (e *Edition) HasDetails() bool {
	return e.Publication != "" || e.Language != "" || e.IndexCatalogue != "" ||
		e.Volume != "" || e.CopyCount != "" || len(e.Locations) > 0
}

// Work is a group of editions sharing a work key.
type Work struct {
	Key           string  `json:"work_key"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	EditionsCount int     `json:"editions_count"`
	Rank          float64 `json:"rank"`
}

// WorkPage is one page of search results.
type WorkPage struct {
	Works []Work `json:"works"`
	// Total is a lower bound when TotalIsEstimate is set.
	Total           int  `json:"total"`
	TotalIsEstimate bool `json:"total_is_estimate"`
	HasMore         bool `json:"has_more"`
}

// EditionPage is one page of editions within a work.
type EditionPage struct {
	Editions []Edition `json:"editions"`
	Total    int       `json:"total"`
}

// PendingEdition is an edition still waiting for its derived columns.
type PendingEdition struct {
	ID     int64
	Title  string
	Author string
}

// DerivedFields are the backfilled columns of one edition.
type DerivedFields struct {
	ID         int64
	TitleNorm  string
	AuthorNorm string
	WorkKey    string
	SearchText string
}
