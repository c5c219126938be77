package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lyramor/internal/models"
)

// SongParams carries the fields for a song insert. Artist and genre must
// already be resolved to ids.
type SongParams struct {
	Title    string
	ArtistID int64
	GenreID  int64
	TrackURL string
	Duration int
}

const songSelect = `
	SELECT s.id, s.title, ar.id, ar.name, g.id, g.name,
	       COALESCE(s.track_url, ''), COALESCE(s.duration, 0)
	FROM songs s
	JOIN artists ar ON ar.id = s.artist_id
	JOIN genres g ON g.id = s.genre_id`

func scanSong(row interface{ Scan(...any) error }) (models.Song, error) {
	var song models.Song
	err := row.Scan(&song.ID, &song.Title, &song.Artist.ID, &song.Artist.Name,
		&song.Genre.ID, &song.Genre.Name, &song.TrackURL, &song.Duration)
	return song, err
}

// ListSongs returns all songs with artist and genre expanded.
func (s *Store) ListSongs(ctx context.Context) ([]models.Song, error) {
	rows, err := s.db.QueryContext(ctx, songSelect+`
	ORDER BY s.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	defer rows.Close()

	songs := make([]models.Song, 0)
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return songs, nil
}

// SongByID returns a single song with artist and genre expanded.
func (s *Store) SongByID(ctx context.Context, id int64) (models.Song, error) {
	song, err := scanSong(s.db.QueryRowContext(ctx, songSelect+`
	WHERE s.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Song{}, ErrSongNotFound
	}
	if err != nil {
		return models.Song{}, fmt.Errorf("get song: %w", err)
	}
	return song, nil
}

// FindOrCreateArtist resolves an artist by exact name, creating one if
// absent. Artist names carry no uniqueness constraint, so two concurrent
// callers may still mint duplicates; first match by lowest id wins on read.
func (s *Store) FindOrCreateArtist(ctx context.Context, name string) (models.Artist, error) {
	artist := models.Artist{Name: name}
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM artists WHERE name = $1 ORDER BY id ASC LIMIT 1
	`, name).Scan(&artist.ID)
	if err == nil {
		return artist, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Artist{}, fmt.Errorf("lookup artist: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO artists (name)
		VALUES ($1)
		RETURNING id
	`, name).Scan(&artist.ID)
	if err != nil {
		return models.Artist{}, fmt.Errorf("insert artist: %w", err)
	}
	return artist, nil
}

// CreateSong inserts a song and returns it expanded.
func (s *Store) CreateSong(ctx context.Context, params SongParams) (models.Song, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO songs (title, artist_id, genre_id, track_url, duration)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, params.Title, params.ArtistID, params.GenreID,
		nullIfEmpty(params.TrackURL), nullIfZero(params.Duration)).Scan(&id)
	if err != nil {
		return models.Song{}, fmt.Errorf("insert song: %w", err)
	}
	return s.SongByID(ctx, id)
}

// DeleteSong removes the song row and reports the track URL that backed it,
// so the caller can clean up the audio file. Removing the row is the
// operation's success criterion; file cleanup is best effort.
func (s *Store) DeleteSong(ctx context.Context, id int64) (string, error) {
	var trackURL string
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM songs
		WHERE id = $1
		RETURNING COALESCE(track_url, '')
	`, id).Scan(&trackURL)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSongNotFound
	}
	if err != nil {
		return "", fmt.Errorf("delete song: %w", err)
	}
	return trackURL, nil
}

func nullIfZero(value int) interface{} {
	if value == 0 {
		return nil
	}
	return value
}
