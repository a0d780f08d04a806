package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/bibliobot/bibliobot-server/internal/domain"
	"github.com/bibliobot/bibliobot-server/internal/normalize"
)

// SearchWorks returns one page of works matching q, ranked by the best
// matching edition and then by edition count. q must already be sanitized.
//
// ModeAny runs a full-text match over the search document with every token
// required and the last token prefix matched. ModeTitle and ModeAuthor match
// the normalized query as a substring of the normalized column and rank every
// work equally.
func (s *Store) SearchWorks(ctx context.Context, q domain.SearchQuery) ([]domain.Work, error) {
	norm := normalize.Text(q.Text)
	if norm == "" {
		return []domain.Work{}, nil
	}

	var (
		query string
		args  []any
	)

	switch q.Mode {
	case domain.ModeTitle, domain.ModeAuthor:
		column := "title_norm"
		if q.Mode == domain.ModeAuthor {
			column = "author_norm"
		}
		query = `
			SELECT work_key, MAX(title), MAX(author), COUNT(*) AS editions_count, 1.0 AS rank
			FROM editions
			WHERE instr(` + column + `, ?) > 0
			  AND work_key IS NOT NULL
			  AND (level_id IS NULL OR level_id != ?)
			GROUP BY work_key
			ORDER BY editions_count DESC, work_key ASC
			LIMIT ? OFFSET ?`
		args = []any{norm, s.excludedLevel, q.Limit, q.Offset}

	default:
		match := matchExpression(strings.Fields(norm))
		if match == "" {
			return []domain.Work{}, nil
		}
		// bm25 cannot run inside an aggregate, so hits are materialized first.
		query = `
			WITH hits AS MATERIALIZED (
				SELECT rowid AS id, -bm25(editions_fts) AS rank
				FROM editions_fts
				WHERE editions_fts MATCH ?
			)
			SELECT e.work_key, MAX(e.title), MAX(e.author), COUNT(*) AS editions_count, MAX(h.rank) AS best_rank
			FROM hits h
			JOIN editions e ON e.id = h.id
			WHERE e.work_key IS NOT NULL
			  AND (e.level_id IS NULL OR e.level_id != ?)
			GROUP BY e.work_key
			ORDER BY best_rank DESC, editions_count DESC, e.work_key ASC
			LIMIT ? OFFSET ?`
		args = []any{match, s.excludedLevel, q.Limit, q.Offset}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search works: %w", err)
	}
	defer rows.Close()

	works := []domain.Work{}
	for rows.Next() {
		var (
			w             domain.Work
			title, author sql.NullString
		)
		if err := rows.Scan(&w.Key, &title, &author, &w.EditionsCount, &w.Rank); err != nil {
			return nil, fmt.Errorf("scan work: %w", err)
		}
		w.Title = title.String
		w.Author = author.String
		works = append(works, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate works: %w", err)
	}

	return works, nil
}

// matchExpression builds an FTS5 query requiring every token, with the last
// one as a prefix. Tokens are quoted so FTS5 operators in the input stay literal.
// Tokens without a letter or digit produce no FTS5 term and are skipped; the
// result is empty when nothing is left.
func matchExpression(tokens []string) string {
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !strings.ContainsFunc(tok, isTokenRune) {
			continue
		}
		parts = append(parts, `"`+strings.ReplaceAll(tok, `"`, `""`)+`"`)
	}
	if n := len(parts); n > 0 {
		parts[n-1] += " *"
	}
	return strings.Join(parts, " AND ")
}

func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
