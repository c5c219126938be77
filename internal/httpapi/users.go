package httpapi

import (
	"encoding/json"
	"net/http"

	"lyramor/internal/models"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Users []models.User `json:"users"`
	}{Users: users})
}

type setAdminRequest struct {
	IsAdmin *bool `json:"isAdmin"`
}

func (s *Server) handleSetAdmin(w http.ResponseWriter, r *http.Request) {
	id, raw, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: raw + " not found"})
		return
	}

	var req setAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}
	if req.IsAdmin == nil {
		writeJSON(w, http.StatusBadRequest, fieldsError("isAdmin"))
		return
	}

	user, err := s.users.SetAdmin(r.Context(), id, *req.IsAdmin)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, raw, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: raw + " not found"})
		return
	}

	if err := s.users.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
