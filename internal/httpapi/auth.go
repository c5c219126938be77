package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"lyramor/internal/models"
	"lyramor/internal/store"
)

// sessionCookie carries the server-side session token. HTTP-only so scripts
// never see it.
const sessionCookie = "lyramor_session"

type ctxKey string

const actorKey ctxKey = "actor"

func withActor(ctx context.Context, actor *models.SessionUser) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// actorFrom returns the authenticated actor attached by requireUser, or nil
// on anonymous requests.
func actorFrom(r *http.Request) *models.SessionUser {
	actor, _ := r.Context().Value(actorKey).(*models.SessionUser)
	return actor
}

func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(store.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// requireUser rejects the request with 401 unless the session cookie maps to
// a live session, then attaches the session user to the request context.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
			return
		}
		actor, err := s.users.SessionUser(r.Context(), token)
		if err != nil {
			if errors.Is(err, store.ErrUnauthorized) {
				clearSessionCookie(w)
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
				return
			}
			respondError(w, r, err)
			return
		}
		next(w, r.WithContext(withActor(r.Context(), &actor)))
	}
}

// requireAdmin implies requireUser and further rejects non-admin actors
// with 403.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return s.requireUser(func(w http.ResponseWriter, r *http.Request) {
		actor := actorFrom(r)
		if actor == nil || !actor.IsAdmin {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "Admins only"})
			return
		}
		next(w, r)
	})
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}
	if !s.validateBody(w, req) {
		return
	}

	user, err := s.users.Signup(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			writeJSON(w, http.StatusConflict, errorResponse{Error: "username already taken"})
			return
		}
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}
	if !s.validateBody(w, req) {
		return
	}

	token, user, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Logout(r.Context(), sessionToken(r)); err != nil {
		respondError(w, r, err)
		return
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleSession reports the current session user, or null when the request
// carries no live session. Never an error.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		writeJSON(w, http.StatusOK, (*models.SessionUser)(nil))
		return
	}
	actor, err := s.users.SessionUser(r.Context(), token)
	if err != nil {
		if errors.Is(err, store.ErrUnauthorized) {
			clearSessionCookie(w)
			writeJSON(w, http.StatusOK, (*models.SessionUser)(nil))
			return
		}
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, actor)
}
