package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bibliobot/bibliobot-server/internal/domain"
	"github.com/bibliobot/bibliobot-server/internal/normalize"
)

// editionColumns is the ordered list of columns selected in edition queries.
// Must match the scan order in scanEdition.
const editionColumns = `id, title, author, data_edition, language, index_catalogue, volume, copy_count, level_id, work_key`

// scanEdition scans raw edition columns followed by any extra destinations.
// NULL columns are left empty.
func scanEdition(scanner interface{ Scan(dest ...any) error }, extra ...any) (*domain.Edition, error) {
	var (
		e                                          domain.Edition
		title, author, publication, language       sql.NullString
		indexCatalogue, volume, copyCount, workKey sql.NullString
		levelID                                    sql.NullInt64
	)

	dest := []any{
		&e.ID,
		&title,
		&author,
		&publication,
		&language,
		&indexCatalogue,
		&volume,
		&copyCount,
		&levelID,
		&workKey,
	}
	if err := scanner.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	e.Title = title.String
	e.Author = author.String
	e.Publication = publication.String
	e.LanguageCode = language.String
	e.Language = normalize.LanguageLabel(language.String)
	e.IndexCatalogue = indexCatalogue.String
	e.Volume = volume.String
	e.CopyCount = copyCount.String
	e.WorkKey = workKey.String
	if levelID.Valid {
		lvl := levelID.Int64
		e.LevelID = &lvl
	}

	return &e, nil
}

// CreateEdition inserts a raw catalog record. Derived columns stay NULL until
// the backfill processes the row. A zero ID lets SQLite assign one.
func (s *Store) CreateEdition(ctx context.Context, e *domain.Edition) error {
	var id sql.NullInt64
	if e.ID != 0 {
		id = sql.NullInt64{Int64: e.ID, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO editions (id, title, author, data_edition, language, index_catalogue, volume, copy_count, level_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		nullString(e.Title),
		nullString(e.Author),
		nullString(e.Publication),
		nullString(e.LanguageCode),
		nullString(e.IndexCatalogue),
		nullString(e.Volume),
		nullString(e.CopyCount),
		nullableInt64(e.LevelID),
	)
	if err != nil {
		return fmt.Errorf("insert edition: %w", err)
	}

	if e.ID == 0 {
		e.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("edition id: %w", err)
		}
	}
	return nil
}

// AddInventory records a copy of an edition shelved at location.
func (s *Store) AddInventory(ctx context.Context, editionID int64, location string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO inventory (edition_id, location) VALUES (?, ?)`,
		editionID, location)
	if err != nil {
		return fmt.Errorf("insert inventory: %w", err)
	}
	return nil
}

// GetEditions returns one page of the editions sharing workKey, newest ID
// first, together with the total number of editions in the work.
func (s *Store) GetEditions(ctx context.Context, workKey string, offset, limit int) ([]domain.Edition, int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+editionColumns+`, COUNT(*) OVER() AS full_count
		FROM editions
		WHERE work_key = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?`,
		workKey, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query editions: %w", err)
	}
	defer rows.Close()

	editions := []domain.Edition{}
	total := 0
	for rows.Next() {
		e, err := scanEdition(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan edition: %w", err)
		}
		editions = append(editions, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate editions: %w", err)
	}

	// The window count is only visible on returned rows.
	if len(editions) == 0 && offset > 0 {
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM editions WHERE work_key = ?`, workKey).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count editions: %w", err)
		}
	}

	if err := s.attachLocations(ctx, editions); err != nil {
		return nil, 0, err
	}

	return editions, total, nil
}

// attachLocations fills the distinct, sorted inventory locations of each edition.
func (s *Store) attachLocations(ctx context.Context, editions []domain.Edition) error {
	if len(editions) == 0 {
		return nil
	}

	args := make([]any, len(editions))
	byID := make(map[int64]*domain.Edition, len(editions))
	for i := range editions {
		args[i] = editions[i].ID
		byID[editions[i].ID] = &editions[i]
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT edition_id, location
		FROM inventory
		WHERE edition_id IN (`+inPlaceholders(len(args))+`)
		ORDER BY edition_id, location`,
		args...)
	if err != nil {
		return fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			editionID int64
			location  string
		)
		if err := rows.Scan(&editionID, &location); err != nil {
			return fmt.Errorf("scan location: %w", err)
		}
		if e, ok := byID[editionID]; ok {
			e.Locations = append(e.Locations, location)
		}
	}
	return rows.Err()
}

// GetWorkLocations returns the distinct inventory locations across every
// edition of the work, sorted.
func (s *Store) GetWorkLocations(ctx context.Context, workKey string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT i.location
		FROM inventory i
		JOIN editions e ON e.id = i.edition_id
		WHERE e.work_key = ?
		ORDER BY i.location`,
		workKey)
	if err != nil {
		return nil, fmt.Errorf("query work locations: %w", err)
	}
	defer rows.Close()

	locations := []string{}
	for rows.Next() {
		var location string
		if err := rows.Scan(&location); err != nil {
			return nil, fmt.Errorf("scan work location: %w", err)
		}
		locations = append(locations, location)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate work locations: %w", err)
	}
	return locations, nil
}
