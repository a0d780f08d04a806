package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bibliobot/bibliobot-server/internal/domain"
	"github.com/bibliobot/bibliobot-server/internal/normalize"
)

// CountPendingEditions returns the number of editions without a work key.
func (s *Store) CountPendingEditions(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM editions WHERE work_key IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending editions: %w", err)
	}
	return n, nil
}

// ListPendingEditions returns up to limit editions without a work key whose ID
// is greater than afterID, in ID order.
func (s *Store) ListPendingEditions(ctx context.Context, afterID int64, limit int) ([]domain.PendingEdition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, author
		FROM editions
		WHERE work_key IS NULL AND id > ?
		ORDER BY id
		LIMIT ?`,
		afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending editions: %w", err)
	}
	defer rows.Close()

	var pending []domain.PendingEdition
	for rows.Next() {
		var (
			p             domain.PendingEdition
			title, author sql.NullString
		)
		if err := rows.Scan(&p.ID, &title, &author); err != nil {
			return nil, fmt.Errorf("scan pending edition: %w", err)
		}
		p.Title = title.String
		p.Author = author.String
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending editions: %w", err)
	}
	return pending, nil
}

// ApplyDerived writes the derived columns and full-text entries for a batch
// in a single transaction. Either every row is updated or none is.
func (s *Store) ApplyDerived(ctx context.Context, batch []domain.DerivedFields) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	for _, d := range batch {
		doc := normalize.FoldLetters(d.SearchText)

		// External content tables need the old document to remove its tokens.
		var previous sql.NullString
		err := tx.QueryRowContext(ctx,
			`SELECT search_tsv FROM editions WHERE id = ?`, d.ID).Scan(&previous)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("edition %d not found", d.ID)
		}
		if err != nil {
			return fmt.Errorf("read edition %d: %w", d.ID, err)
		}
		if previous.Valid {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO editions_fts (editions_fts, rowid, search_tsv) VALUES ('delete', ?, ?)`,
				d.ID, previous.String); err != nil {
				return fmt.Errorf("unindex edition %d: %w", d.ID, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE editions
			SET title_norm = ?, author_norm = ?, work_key = ?, search_tsv = ?
			WHERE id = ?`,
			d.TitleNorm, d.AuthorNorm, d.WorkKey, doc, d.ID); err != nil {
			return fmt.Errorf("update edition %d: %w", d.ID, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO editions_fts (rowid, search_tsv) VALUES (?, ?)`,
			d.ID, doc); err != nil {
			return fmt.Errorf("index edition %d: %w", d.ID, err)
		}
	}

	return tx.Commit()
}

// ResetDerived clears every derived column and the full-text index so the
// next backfill recomputes all work keys.
func (s *Store) ResetDerived(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO editions_fts (editions_fts) VALUES ('delete-all')`); err != nil {
		return fmt.Errorf("clear search index: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE editions
		SET work_key = NULL, title_norm = NULL, author_norm = NULL, search_tsv = NULL`); err != nil {
		return fmt.Errorf("clear derived columns: %w", err)
	}

	return tx.Commit()
}
