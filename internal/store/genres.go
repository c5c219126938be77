package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lyramor/internal/models"
)

// ListGenres returns all genres.
func (s *Store) ListGenres(ctx context.Context) ([]models.Genre, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name
		FROM genres
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	defer rows.Close()

	genres := make([]models.Genre, 0)
	for rows.Next() {
		var genre models.Genre
		if err := rows.Scan(&genre.ID, &genre.Name); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, genre)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genres: %w", err)
	}
	return genres, nil
}

// CreateGenre inserts a genre. Names are unique.
func (s *Store) CreateGenre(ctx context.Context, name string) (models.Genre, error) {
	genre := models.Genre{Name: name}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO genres (name)
		VALUES ($1)
		RETURNING id
	`, name).Scan(&genre.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Genre{}, ErrGenreExists
		}
		return models.Genre{}, fmt.Errorf("insert genre: %w", err)
	}
	return genre, nil
}

// FindOrCreateGenre resolves a genre by exact name, creating it if absent.
// The upsert makes concurrent resolution of a brand-new name converge on one
// row instead of racing to duplicates.
func (s *Store) FindOrCreateGenre(ctx context.Context, name string) (models.Genre, error) {
	genre := models.Genre{Name: name}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO genres (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name).Scan(&genre.ID)
	if err != nil {
		return models.Genre{}, fmt.Errorf("find or create genre: %w", err)
	}
	return genre, nil
}

// GenreExists reports whether a genre id is present.
func (s *Store) GenreExists(ctx context.Context, id int64) (bool, error) {
	var found int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM genres WHERE id = $1`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup genre: %w", err)
	}
	return true, nil
}

// DeleteGenre removes a genre.
func (s *Store) DeleteGenre(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM genres WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete genre: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrGenreNotFound
	}
	return nil
}
