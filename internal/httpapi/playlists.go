package httpapi

import (
	"encoding/json"
	"net/http"

	"lyramor/internal/app/feed"
	"lyramor/internal/models"
	"lyramor/internal/store"
)

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := s.playlists.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Playlists []*models.Playlist `json:"playlists"`
	}{Playlists: playlists})
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	id, raw, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: raw + " not found"})
		return
	}

	playlist, err := s.playlists.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

type createPlaylistRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	GenreID     *int64  `json:"genreId"`
	SongIDs     []int64 `json:"songIds"`
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req createPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	var fields []string
	if req.Name == "" {
		fields = append(fields, "name")
	}
	if req.GenreID != nil && *req.GenreID <= 0 {
		fields = append(fields, "genreId")
	}
	for _, id := range req.SongIDs {
		if id <= 0 {
			fields = append(fields, "songIds")
			break
		}
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldsError(fields...))
		return
	}

	playlist, err := s.playlists.Create(r.Context(), actorFrom(r), store.PlaylistParams{
		Name:        req.Name,
		Description: req.Description,
		GenreID:     req.GenreID,
		SongIDs:     req.SongIDs,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, playlist)
}

type updatePlaylistRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	GenreID     *int64   `json:"genreId"`
	SongIDs     *[]int64 `json:"songIds"`
}

// handleUpdatePlaylist applies a partial update. Only the owner or an admin
// may mutate; the ownership check runs after the record is known to exist.
func (s *Server) handleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	id, raw, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: raw + " not found"})
		return
	}

	var req updatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	var fields []string
	if req.Name != nil && *req.Name == "" {
		fields = append(fields, "name")
	}
	if req.GenreID != nil && *req.GenreID <= 0 {
		fields = append(fields, "genreId")
	}
	if req.SongIDs != nil {
		for _, songID := range *req.SongIDs {
			if songID <= 0 {
				fields = append(fields, "songIds")
				break
			}
		}
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldsError(fields...))
		return
	}

	playlist, err := s.playlists.Update(r.Context(), actorFrom(r), id, store.PlaylistUpdate{
		Name:        req.Name,
		Description: req.Description,
		GenreID:     req.GenreID,
		SongIDs:     req.SongIDs,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	id, raw, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: raw + " not found"})
		return
	}

	if err := s.playlists.Delete(r.Context(), actorFrom(r), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAddSongToPlaylist appends a song reference if it is not already
// present. Calling it again with the same song is a no-op; either way the
// response is the expanded playlist.
func (s *Server) handleAddSongToPlaylist(w http.ResponseWriter, r *http.Request) {
	playlistID, _, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid ID"})
		return
	}
	songID, _, ok := pathID(r, "songId")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid ID"})
		return
	}

	playlist, err := s.playlists.AddSong(r.Context(), playlistID, songID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

// handleFeed serves the grouped presentation of all playlists. The session
// is optional; anonymous callers simply see every canEdit flag false.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	var actor *models.SessionUser
	if token := sessionToken(r); token != "" {
		if su, err := s.users.SessionUser(r.Context(), token); err == nil {
			actor = &su
		}
	}

	playlists, err := s.playlists.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	songs, err := s.songs.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	entries := feed.Build(playlists, songs, r.URL.Query().Get("search"), actor)
	writeJSON(w, http.StatusOK, struct {
		Feed []*feed.Entry `json:"feed"`
	}{Feed: entries})
}
