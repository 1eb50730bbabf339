package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
)

const (
	maxRetries   = 5
	retryBackoff = 2 * time.Second
)

// ErrGrantNotFound is returned when an update targets an id missing
// from the bandi table.
var ErrGrantNotFound = errors.New("grant not found")

type Store struct {
	db *sql.DB
}

func NewStore(connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) RunMigrations(schemaPath string) error {
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

func clampLimit(limit int, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// Grant mirrors a row of the bandi table. The Italian column names are
// part of the shared schema and kept as-is in the JSON form.
type Grant struct {
	ID            string     `json:"id"`
	LinkBando     string     `json:"link_bando"`
	LinkSitoBando string     `json:"link_sito_bando"`
	Stato         string     `json:"stato"`
	Documentation string     `json:"documentazione_necessaria"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	UpdateInDB    *time.Time `json:"update_in_db,omitempty"`
}

const grantColumns = `
    id,
    COALESCE(link_bando, ''),
    COALESCE(link_sito_bando, ''),
    COALESCE(stato, ''),
    COALESCE(documentazione_necessaria, ''),
    updated_at,
    update_in_db`

func scanGrant(rows interface{ Scan(...any) error }) (Grant, error) {
	var (
		g          Grant
		updatedAt  sql.NullTime
		updateInDB sql.NullTime
	)
	if err := rows.Scan(
		&g.ID,
		&g.LinkBando,
		&g.LinkSitoBando,
		&g.Stato,
		&g.Documentation,
		&updatedAt,
		&updateInDB,
	); err != nil {
		return Grant{}, err
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		g.UpdatedAt = &t
	}
	if updateInDB.Valid {
		t := updateInDB.Time
		g.UpdateInDB = &t
	}
	return g, nil
}

// GetActiveGrants returns the grants still open for applications.
func (s *Store) GetActiveGrants(ctx context.Context) ([]Grant, error) {
	return s.queryGrants(ctx, `
SELECT `+grantColumns+`
FROM bandi
WHERE stato = 'Attivo'
ORDER BY id
`)
}

// GetAllGrants returns every grant regardless of status.
func (s *Store) GetAllGrants(ctx context.Context) ([]Grant, error) {
	return s.queryGrants(ctx, `
SELECT `+grantColumns+`
FROM bandi
ORDER BY id
`)
}

func (s *Store) queryGrants(ctx context.Context, query string, args ...any) ([]Grant, error) {
	var grants []Grant
	err := s.withRetry(ctx, func() error {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		grants = grants[:0]
		for rows.Next() {
			g, err := scanGrant(rows)
			if err != nil {
				return err
			}
			grants = append(grants, g)
		}
		return rows.Err()
	})
	return grants, err
}

// ListGrants supports the API listing with paging.
func (s *Store) ListGrants(ctx context.Context, limit, offset int) ([]Grant, error) {
	limit = clampLimit(limit, 20, 200)
	if offset < 0 {
		offset = 0
	}
	return s.queryGrants(ctx, `
SELECT `+grantColumns+`
FROM bandi
ORDER BY id
LIMIT $1 OFFSET $2
`, limit, offset)
}

func (s *Store) GetGrant(ctx context.Context, id string) (Grant, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+grantColumns+`
FROM bandi
WHERE id = $1
`, id)
	g, err := scanGrant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Grant{}, ErrGrantNotFound
	}
	return g, err
}

func (s *Store) GrantExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.withRetry(ctx, func() error {
		return s.db.QueryRowContext(ctx, `
SELECT EXISTS (SELECT 1 FROM bandi WHERE id = $1)
`, id).Scan(&exists)
	})
	return exists, err
}

// UpdateDocumentation stores a fresh summary and bumps updated_at.
func (s *Store) UpdateDocumentation(ctx context.Context, id, documentation string) error {
	return s.withRetry(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `
UPDATE bandi
SET documentazione_necessaria = $2, updated_at = NOW()
WHERE id = $1
`, id, documentation)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrGrantNotFound
		}
		return nil
	})
}

// TouchTimestamp bumps only update_in_db, leaving the summary intact.
func (s *Store) TouchTimestamp(ctx context.Context, id string) error {
	return s.withRetry(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `
UPDATE bandi
SET update_in_db = NOW()
WHERE id = $1
`, id)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrGrantNotFound
		}
		return nil
	})
}

// withRetry re-runs transient failures with exponential backoff. Missing
// rows are not transient and fail immediately.
func (s *Store) withRetry(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := retryBackoff * time.Duration(1<<(attempt-1))
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		lastErr = op()
		if lastErr == nil || errors.Is(lastErr, ErrGrantNotFound) || errors.Is(lastErr, context.Canceled) {
			return lastErr
		}
	}
	return fmt.Errorf("db operation failed after %d attempts: %w", maxRetries, lastErr)
}
