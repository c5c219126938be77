package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrUserExists signals the username is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials indicates a login failure. The same value is
	// returned for an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthorized indicates an invalid, expired, or missing session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUserNotFound indicates the user id does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrGenreExists signals the genre name is already taken.
	ErrGenreExists = errors.New("genre already exists")
	// ErrGenreNotFound indicates the genre id does not exist.
	ErrGenreNotFound = errors.New("genre not found")
	// ErrSongNotFound indicates the song id does not exist.
	ErrSongNotFound = errors.New("song not found")
	// ErrSongsNotFound indicates at least one referenced song id does not exist.
	ErrSongsNotFound = errors.New("one or more songs not found")
	// ErrPlaylistNotFound indicates the playlist id does not exist.
	ErrPlaylistNotFound = errors.New("playlist not found")

	dummyPasswordHash = []byte("$2a$10$CwTycUXWue0Thq9StjUM0uJ8n4VWeNseyX2fA9DE.D7su7J6iYGTC")
)

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
