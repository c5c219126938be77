// Package httpapi wires HTTP handlers to the application services.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"lyramor/internal/app/songs"
	"lyramor/internal/authz"
	"lyramor/internal/models"
	"lyramor/internal/store"
)

// UserService captures the account and session operations needed by the
// HTTP handlers.
type UserService interface {
	Signup(ctx context.Context, username, password string) (models.User, error)
	Login(ctx context.Context, username, password string) (string, models.User, error)
	SessionUser(ctx context.Context, token string) (models.SessionUser, error)
	Logout(ctx context.Context, token string) error
	List(ctx context.Context) ([]models.User, error)
	SetAdmin(ctx context.Context, id int64, isAdmin bool) (models.User, error)
	Delete(ctx context.Context, id int64) error
}

// GenreService describes genre catalogue workflows.
type GenreService interface {
	List(ctx context.Context) ([]models.Genre, error)
	Create(ctx context.Context, name string) (models.Genre, error)
	Delete(ctx context.Context, id int64) error
}

// SongService coordinates track-level operations.
type SongService interface {
	List(ctx context.Context) ([]models.Song, error)
	Get(ctx context.Context, id int64) (models.Song, error)
	Create(ctx context.Context, params store.SongParams) (models.Song, error)
	CreateFromUpload(ctx context.Context, in songs.UploadInput) (models.Song, error)
	Delete(ctx context.Context, id int64) (string, error)
}

// PlaylistService coordinates playlist-related operations.
type PlaylistService interface {
	List(ctx context.Context) ([]*models.Playlist, error)
	Get(ctx context.Context, id int64) (*models.Playlist, error)
	Create(ctx context.Context, actor *models.SessionUser, params store.PlaylistParams) (*models.Playlist, error)
	Update(ctx context.Context, actor *models.SessionUser, id int64, update store.PlaylistUpdate) (*models.Playlist, error)
	Delete(ctx context.Context, actor *models.SessionUser, id int64) error
	AddSong(ctx context.Context, playlistID, songID int64) (*models.Playlist, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users     UserService
	genres    GenreService
	songs     SongService
	playlists PlaylistService
	uploadDir string
	validate  *validator.Validate
}

// New configures a Server with the given services. uploadDir is where
// ingested track files live; it is also served under /uploads/.
func New(users UserService, genres GenreService, songs SongService, playlists PlaylistService, uploadDir string) *Server {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Server{
		users:     users,
		genres:    genres,
		songs:     songs,
		playlists: playlists,
		uploadDir: uploadDir,
		validate:  validate,
	}
}

// Routes exposes the HTTP handlers for account, catalogue and playlist
// management.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Account and session routes
	mux.HandleFunc("POST /api/users/signup", s.handleSignup)
	mux.HandleFunc("POST /api/users/register", s.handleSignup)
	mux.HandleFunc("POST /api/users/login", s.handleLogin)
	mux.HandleFunc("POST /api/users/logout", s.requireUser(s.handleLogout))
	mux.HandleFunc("GET /api/users/session", s.handleSession)

	// Admin user management
	mux.HandleFunc("GET /api/users", s.requireAdmin(s.handleListUsers))
	mux.HandleFunc("PUT /api/users/{id}", s.requireAdmin(s.handleSetAdmin))
	mux.HandleFunc("DELETE /api/users/{id}", s.requireAdmin(s.handleDeleteUser))

	// Genre routes
	mux.HandleFunc("GET /api/genres", s.handleListGenres)
	mux.HandleFunc("POST /api/genres", s.requireUser(s.handleCreateGenre))
	mux.HandleFunc("DELETE /api/genres/{id}", s.requireUser(s.handleDeleteGenre))

	// Song routes
	mux.HandleFunc("GET /api/songs", s.handleListSongs)
	mux.HandleFunc("POST /api/songs", s.requireUser(s.handleCreateSong))
	mux.HandleFunc("POST /api/songs/upload", s.requireUser(s.handleUploadSong))
	mux.HandleFunc("DELETE /api/songs/{id}", s.requireUser(s.handleDeleteSong))

	// Playlist routes
	mux.HandleFunc("GET /api/playlists", s.handleListPlaylists)
	mux.HandleFunc("GET /api/playlists/feed", s.handleFeed)
	mux.HandleFunc("POST /api/playlists", s.requireUser(s.handleCreatePlaylist))
	mux.HandleFunc("GET /api/playlists/{id}", s.handleGetPlaylist)
	mux.HandleFunc("PUT /api/playlists/{id}", s.requireUser(s.handleUpdatePlaylist))
	mux.HandleFunc("DELETE /api/playlists/{id}", s.requireUser(s.handleDeletePlaylist))
	mux.HandleFunc("POST /api/playlists/{id}/songs/{songId}", s.handleAddSongToPlaylist)

	// Uploaded audio files
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadDir))))

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps service errors onto the HTTP taxonomy. Anything
// unrecognized is logged and reported as a generic 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidCredentials), errors.Is(err, store.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, authz.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "Forbidden"})
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrGenreNotFound),
		errors.Is(err, store.ErrSongNotFound),
		errors.Is(err, store.ErrSongsNotFound),
		errors.Is(err, store.ErrPlaylistNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrUserExists), errors.Is(err, store.ErrGenreExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// fieldsError formats collected validation failures the way API consumers
// expect: one message naming every offending field.
func fieldsError(fields ...string) errorResponse {
	return errorResponse{Error: "Invalid or missing fields: " + strings.Join(fields, ", ")}
}

// validateBody runs struct validation and converts failures into the
// comma-joined field list message. Returns false after writing the response
// when validation failed.
func (s *Server) validateBody(w http.ResponseWriter, req any) bool {
	err := s.validate.Struct(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		writeJSON(w, http.StatusBadRequest, fieldsError(fields...))
		return false
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
	return false
}

// pathID parses a path parameter as an int64. Handlers treat a malformed
// identifier the same as a missing record, so the caller gets the raw text
// back for the not-found message.
func pathID(r *http.Request, name string) (int64, string, bool) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, raw, false
	}
	return id, raw, true
}
