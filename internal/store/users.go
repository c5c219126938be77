package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"lyramor/internal/models"
)

// SessionTTL is how long a session is valid from issuance.
const SessionTTL = 24 * time.Hour

// CreateUser registers a new non-admin account. The username is trimmed and
// lowercased before insert; a duplicate fails with ErrUserExists via the
// unique index rather than overwriting.
func (s *Store) CreateUser(ctx context.Context, username, password string) (models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return models.User{}, fmt.Errorf("username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Username: username}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, is_admin)
		VALUES ($1, $2, FALSE)
		RETURNING id
	`, username, hash).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrUserExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// Authenticate validates credentials and opens a session. Unknown usernames
// and wrong passwords fail identically with ErrInvalidCredentials; a dummy
// bcrypt compare runs on the unknown-user path to equalize timing.
func (s *Store) Authenticate(ctx context.Context, username, password string) (string, models.User, error) {
	var (
		user models.User
		hash []byte
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, is_admin, password_hash
		FROM users
		WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &user.IsAdmin, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
			return "", models.User{}, ErrInvalidCredentials
		}
		return "", models.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return "", models.User{}, ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return "", models.User{}, fmt.Errorf("create token: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, token, user.ID, time.Now().UTC().Add(SessionTTL)); err != nil {
		return "", models.User{}, fmt.Errorf("store session: %w", err)
	}

	return token, user, nil
}

// SessionUser resolves a session token to its stored actor. Expired sessions
// are treated as absent.
func (s *Store) SessionUser(ctx context.Context, token string) (models.SessionUser, error) {
	var user models.SessionUser
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.is_admin
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1 AND s.expires_at > NOW()
	`, token).Scan(&user.ID, &user.Username, &user.IsAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SessionUser{}, ErrUnauthorized
		}
		return models.SessionUser{}, fmt.Errorf("lookup session: %w", err)
	}
	return user, nil
}

// DeleteSession destroys the session record. Deleting an unknown token is
// not an error.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpiredSessions removes sessions past their expiry.
func (s *Store) PurgeExpiredSessions(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`); err != nil {
		return fmt.Errorf("purge sessions: %w", err)
	}
	return nil
}

// ListUsers returns every account's public projection.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, is_admin
		FROM users
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.IsAdmin); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// SetAdmin toggles the admin flag on a user.
func (s *Store) SetAdmin(ctx context.Context, id int64, isAdmin bool) (models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, `
		UPDATE users
		SET is_admin = $1
		WHERE id = $2
		RETURNING id, username, is_admin
	`, isAdmin, id).Scan(&user.ID, &user.Username, &user.IsAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes an account. Sessions and playlists go with it.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}
