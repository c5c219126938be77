package main

import (
	"net/http"
	"strings"

	"lyramor/internal/app/genres"
	"lyramor/internal/app/playlists"
	"lyramor/internal/app/songs"
	"lyramor/internal/app/users"
	"lyramor/internal/httpapi"
	"lyramor/internal/middleware"
	"lyramor/internal/store"
)

func newHTTPHandler(cfg Config, dataStore *store.Store) http.Handler {
	userSvc := users.New(dataStore)
	genreSvc := genres.New(dataStore)
	songSvc := songs.New(dataStore)
	playlistSvc := playlists.New(dataStore)

	api := httpapi.New(userSvc, genreSvc, songSvc, playlistSvc, cfg.UploadDir)

	handler := withCORS(cfg.AllowedOrigins, api.Routes())
	handler = middleware.RequestLogging()(handler)
	handler = middleware.Recovery()(handler)
	return handler
}

func withCORS(allowedOrigins []string, next http.Handler) http.Handler {
	originAllowed := func(origin string) bool {
		if len(allowedOrigins) == 0 || origin == "" {
			return false
		}
		for _, o := range allowedOrigins {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
