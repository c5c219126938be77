package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"lyramor/internal/models"
)

// PlaylistParams carries the fields for a playlist insert.
type PlaylistParams struct {
	Name        string
	Description string
	GenreID     *int64
	SongIDs     []int64
	CreatedBy   int64
}

// PlaylistUpdate carries a partial update; nil fields are left untouched.
type PlaylistUpdate struct {
	Name        *string
	Description *string
	GenreID     *int64
	SongIDs     *[]int64
}

// ListPlaylists returns all playlists with creator, genre and songs expanded.
func (s *Store) ListPlaylists(ctx context.Context) ([]*models.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.description, g.id, g.name, u.id, u.username,
		       p.created_at, p.updated_at
		FROM playlists p
		JOIN users u ON u.id = p.created_by
		LEFT JOIN genres g ON g.id = p.genre_id
		ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	playlists := make([]*models.Playlist, 0)
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}

	for _, playlist := range playlists {
		songs, err := s.listPlaylistSongs(ctx, playlist.ID)
		if err != nil {
			return nil, err
		}
		playlist.Songs = songs
	}
	return playlists, nil
}

// GetPlaylist returns a single playlist by id, fully expanded.
func (s *Store) GetPlaylist(ctx context.Context, id int64) (*models.Playlist, error) {
	playlist, err := scanPlaylist(s.db.QueryRowContext(ctx, `
		SELECT p.id, p.name, p.description, g.id, g.name, u.id, u.username,
		       p.created_at, p.updated_at
		FROM playlists p
		JOIN users u ON u.id = p.created_by
		LEFT JOIN genres g ON g.id = p.genre_id
		WHERE p.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlaylistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get playlist: %w", err)
	}

	songs, err := s.listPlaylistSongs(ctx, id)
	if err != nil {
		return nil, err
	}
	playlist.Songs = songs
	return playlist, nil
}

// CreatePlaylist validates references and persists a new playlist. The
// creator is written once here and never updated afterwards.
func (s *Store) CreatePlaylist(ctx context.Context, params PlaylistParams) (*models.Playlist, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if params.GenreID != nil {
		if err = genreExistsTx(ctx, tx, *params.GenreID); err != nil {
			return nil, err
		}
	}
	if err = songsExistTx(ctx, tx, params.SongIDs); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var id int64
	if err = tx.QueryRowContext(ctx, `
		INSERT INTO playlists (name, description, genre_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id`,
		params.Name, nullIfEmpty(params.Description), params.GenreID, params.CreatedBy, now,
	).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert playlist: %w", err)
	}

	if err = replacePlaylistSongsTx(ctx, tx, id, params.SongIDs); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit playlist create: %w", err)
	}

	return s.GetPlaylist(ctx, id)
}

// UpdatePlaylist applies the non-nil fields of the update. The created_by
// column is deliberately absent from the statement.
func (s *Store) UpdatePlaylist(ctx context.Context, id int64, update PlaylistUpdate) (*models.Playlist, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if update.GenreID != nil {
		if err = genreExistsTx(ctx, tx, *update.GenreID); err != nil {
			return nil, err
		}
	}
	if update.SongIDs != nil {
		if err = songsExistTx(ctx, tx, *update.SongIDs); err != nil {
			return nil, err
		}
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE playlists
		SET name = COALESCE($1, name),
		    description = COALESCE($2, description),
		    genre_id = COALESCE($3, genre_id),
		    updated_at = $4
		WHERE id = $5`,
		update.Name, update.Description, update.GenreID, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("update playlist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		err = ErrPlaylistNotFound
		return nil, err
	}

	if update.SongIDs != nil {
		if err = replacePlaylistSongsTx(ctx, tx, id, *update.SongIDs); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit playlist update: %w", err)
	}

	return s.GetPlaylist(ctx, id)
}

// DeletePlaylist removes a playlist and its song references.
func (s *Store) DeletePlaylist(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}

// AddSongToPlaylist appends a song reference unless it is already present.
// The append is idempotent: a second call with the same song id leaves the
// playlist unchanged.
func (s *Store) AddSongToPlaylist(ctx context.Context, playlistID, songID int64) error {
	var exists int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM playlists WHERE id = $1`, playlistID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPlaylistNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup playlist: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT id FROM songs WHERE id = $1`, songID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSongNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup song: %w", err)
	}

	var present bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM playlist_songs WHERE playlist_id = $1 AND song_id = $2
		)`, playlistID, songID).Scan(&present)
	if err != nil {
		return fmt.Errorf("check playlist song: %w", err)
	}
	if present {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO playlist_songs (playlist_id, position, song_id)
		SELECT $1, COALESCE(MAX(position), -1) + 1, $2
		FROM playlist_songs
		WHERE playlist_id = $1`, playlistID, songID); err != nil {
		return fmt.Errorf("insert playlist song: %w", err)
	}
	return nil
}

func (s *Store) listPlaylistSongs(ctx context.Context, playlistID int64) ([]models.PlaylistSong, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.title, ar.id, ar.name
		FROM playlist_songs ps
		JOIN songs s ON s.id = ps.song_id
		JOIN artists ar ON ar.id = s.artist_id
		WHERE ps.playlist_id = $1
		ORDER BY ps.position ASC`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("list playlist songs: %w", err)
	}
	defer rows.Close()

	songs := make([]models.PlaylistSong, 0)
	for rows.Next() {
		var song models.PlaylistSong
		if err := rows.Scan(&song.ID, &song.Title, &song.Artist.ID, &song.Artist.Name); err != nil {
			return nil, fmt.Errorf("scan playlist song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist songs: %w", err)
	}
	return songs, nil
}

func scanPlaylist(row interface{ Scan(...any) error }) (*models.Playlist, error) {
	var (
		playlist    models.Playlist
		description sql.NullString
		genreID     sql.NullInt64
		genreName   sql.NullString
	)
	err := row.Scan(&playlist.ID, &playlist.Name, &description, &genreID, &genreName,
		&playlist.CreatedBy.ID, &playlist.CreatedBy.Username,
		&playlist.CreatedAt, &playlist.UpdatedAt)
	if err != nil {
		return nil, err
	}
	playlist.Description = description.String
	if genreID.Valid {
		playlist.Genre = &models.Genre{ID: genreID.Int64, Name: genreName.String}
	}
	return &playlist, nil
}

func genreExistsTx(ctx context.Context, tx *sql.Tx, id int64) error {
	var found int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM genres WHERE id = $1`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrGenreNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup genre: %w", err)
	}
	return nil
}

// songsExistTx verifies every referenced song id exists. Matching distinct
// ids against distinct rows keeps a duplicated id in one request from
// tripping the count.
func songsExistTx(ctx context.Context, tx *sql.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	distinct := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}

	var count int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT id) FROM songs WHERE id = ANY($1)
	`, pq.Array(distinct)).Scan(&count)
	if err != nil {
		return fmt.Errorf("count songs: %w", err)
	}
	if count != len(distinct) {
		return ErrSongsNotFound
	}
	return nil
}

func replacePlaylistSongsTx(ctx context.Context, tx *sql.Tx, playlistID int64, songIDs []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_songs WHERE playlist_id = $1`, playlistID); err != nil {
		return fmt.Errorf("clear playlist songs: %w", err)
	}
	if len(songIDs) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO playlist_songs (playlist_id, position, song_id)
		VALUES ($1, $2, $3)`)
	if err != nil {
		return fmt.Errorf("prepare insert playlist song: %w", err)
	}
	defer stmt.Close()

	for idx, songID := range songIDs {
		if _, err := stmt.ExecContext(ctx, playlistID, idx, songID); err != nil {
			return fmt.Errorf("insert playlist song: %w", err)
		}
	}
	return nil
}
