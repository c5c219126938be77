package httpapi

import (
	"encoding/json"
	"net/http"

	"lyramor/internal/models"
)

func (s *Server) handleListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := s.genres.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Genres []models.Genre `json:"genres"`
	}{Genres: genres})
}

type createGenreRequest struct {
	Name string `json:"name" validate:"required"`
}

func (s *Server) handleCreateGenre(w http.ResponseWriter, r *http.Request) {
	var req createGenreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}
	if !s.validateBody(w, req) {
		return
	}

	genre, err := s.genres.Create(r.Context(), req.Name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, genre)
}

func (s *Server) handleDeleteGenre(w http.ResponseWriter, r *http.Request) {
	id, raw, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: raw + " not found"})
		return
	}

	if err := s.genres.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
