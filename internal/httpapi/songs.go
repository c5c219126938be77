package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	appsongs "lyramor/internal/app/songs"
	"lyramor/internal/models"
	"lyramor/internal/store"
)

const maxUploadBytes = 32 << 20

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := s.songs.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Songs []models.Song `json:"songs"`
	}{Songs: songs})
}

type createSongRequest struct {
	Title      string `json:"title"`
	ArtistID   int64  `json:"artistId"`
	ArtistName string `json:"artistName"`
	GenreID    int64  `json:"genreId"`
	GenreName  string `json:"genreName"`
	TrackURL   string `json:"trackUrl"`
	Duration   int    `json:"duration"`
}

// handleCreateSong accepts either artist/genre ids or names. Names are
// resolved by exact match and created when absent.
func (s *Server) handleCreateSong(w http.ResponseWriter, r *http.Request) {
	var req createSongRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	var fields []string
	if req.Title == "" {
		fields = append(fields, "title")
	}
	byName := req.ArtistName != "" || req.GenreName != ""
	if byName {
		if req.ArtistName == "" {
			fields = append(fields, "artistName")
		}
		if req.GenreName == "" {
			fields = append(fields, "genreName")
		}
	} else {
		if req.ArtistID <= 0 {
			fields = append(fields, "artistId")
		}
		if req.GenreID <= 0 {
			fields = append(fields, "genreId")
		}
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldsError(fields...))
		return
	}

	var (
		song models.Song
		err  error
	)
	if byName {
		song, err = s.songs.CreateFromUpload(r.Context(), appsongs.UploadInput{
			Title:      req.Title,
			ArtistName: req.ArtistName,
			GenreName:  req.GenreName,
			TrackURL:   req.TrackURL,
			Duration:   req.Duration,
		})
	} else {
		song, err = s.songs.Create(r.Context(), store.SongParams{
			Title:    req.Title,
			ArtistID: req.ArtistID,
			GenreID:  req.GenreID,
			TrackURL: req.TrackURL,
			Duration: req.Duration,
		})
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, song)
}

// handleUploadSong ingests a track via multipart form: title, artistName,
// genrename (historical field name, preserved for client compatibility) and
// the audio payload under "track". The file lands in the upload directory
// under a generated name and the song's trackUrl points at /uploads/.
func (s *Server) handleUploadSong(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart payload"})
		return
	}

	title := r.FormValue("title")
	artistName := r.FormValue("artistName")
	genreName := r.FormValue("genrename")
	file, header, fileErr := r.FormFile("track")

	var fields []string
	if title == "" {
		fields = append(fields, "title")
	}
	if artistName == "" {
		fields = append(fields, "artistName")
	}
	if genreName == "" {
		fields = append(fields, "genrename")
	}
	if fileErr != nil {
		fields = append(fields, "track")
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldsError(fields...))
		return
	}
	defer file.Close()

	duration, _ := strconv.Atoi(r.FormValue("duration"))

	name := uuid.New().String() + filepath.Ext(header.Filename)
	dst := filepath.Join(s.uploadDir, name)
	out, err := os.Create(dst)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(dst)
		respondError(w, r, err)
		return
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		respondError(w, r, err)
		return
	}

	song, err := s.songs.CreateFromUpload(r.Context(), appsongs.UploadInput{
		Title:      title,
		ArtistName: artistName,
		GenreName:  genreName,
		TrackURL:   uploadURL(r, name),
		Duration:   duration,
	})
	if err != nil {
		os.Remove(dst)
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, song)
}

// handleDeleteSong removes the song record; the backing file is unlinked
// best effort, never failing the request once the record is gone.
func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	id, raw, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: raw + " not found"})
		return
	}

	trackURL, err := s.songs.Delete(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.removeUpload(trackURL)
	w.WriteHeader(http.StatusNoContent)
}

func uploadURL(r *http.Request, name string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/uploads/" + name
}

// removeUpload unlinks the file a trackUrl points at, if it lives in the
// upload directory.
func (s *Server) removeUpload(trackURL string) {
	if trackURL == "" {
		return
	}
	parsed, err := url.Parse(trackURL)
	if err != nil {
		return
	}
	name := path.Base(parsed.Path)
	if name == "." || name == "/" {
		return
	}
	if err := os.Remove(filepath.Join(s.uploadDir, name)); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("file", name).Msg("could not remove uploaded track")
	}
}
