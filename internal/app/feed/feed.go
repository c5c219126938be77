// Package feed builds the read-side presentation of playlists: a search
// filter plus a two-level genre/artist grouping of each playlist's songs.
// The transform is pure; identical inputs yield identical output.
package feed

import (
	"strings"

	"lyramor/internal/authz"
	"lyramor/internal/models"
)

const (
	unknownGenre  = "Unknown Genre"
	unknownArtist = "Unknown Artist"
)

// ArtistGroup is an ordered bucket of songs under one artist name.
type ArtistGroup struct {
	Artist string        `json:"artist"`
	Songs  []models.Song `json:"songs"`
}

// GenreGroup is an ordered bucket of artist groups under one genre name.
type GenreGroup struct {
	Genre   string         `json:"genre"`
	Artists []*ArtistGroup `json:"artists"`
}

// Entry is one playlist prepared for display. CanEdit is a UI affordance
// only; the server re-checks ownership on every mutating call.
type Entry struct {
	Playlist *models.Playlist `json:"playlist"`
	Grouped  []*GenreGroup    `json:"grouped"`
	CanEdit  bool             `json:"canEdit"`
}

// Build filters playlists by the search string and groups each one's songs
// by genre then artist. Song references are walked in stored order; groups
// appear in first-seen order; a reference that resolves to no known song is
// skipped. A nil actor sees every CanEdit as false.
func Build(playlists []*models.Playlist, songs []models.Song, search string, actor *models.SessionUser) []*Entry {
	byID := make(map[int64]models.Song, len(songs))
	for _, song := range songs {
		byID[song.ID] = song
	}

	entries := make([]*Entry, 0, len(playlists))
	for _, playlist := range playlists {
		if !matches(playlist, search) {
			continue
		}
		entries = append(entries, &Entry{
			Playlist: playlist,
			Grouped:  group(playlist, byID),
			CanEdit:  authz.CanMutate(actor, playlist.CreatedBy.ID),
		})
	}
	return entries
}

func matches(playlist *models.Playlist, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(playlist.Name), needle) ||
		strings.Contains(strings.ToLower(playlist.Description), needle)
}

func group(playlist *models.Playlist, byID map[int64]models.Song) []*GenreGroup {
	grouped := make([]*GenreGroup, 0)
	genreIdx := make(map[string]*GenreGroup)
	artistIdx := make(map[string]map[string]*ArtistGroup)

	for _, ref := range playlist.Songs {
		song, ok := byID[ref.ID]
		if !ok {
			// Dangling reference, e.g. the song was deleted.
			continue
		}

		genreName := song.Genre.Name
		if genreName == "" {
			genreName = unknownGenre
		}
		artistName := song.Artist.Name
		if artistName == "" {
			artistName = unknownArtist
		}

		genreGroup, ok := genreIdx[genreName]
		if !ok {
			genreGroup = &GenreGroup{Genre: genreName}
			genreIdx[genreName] = genreGroup
			artistIdx[genreName] = make(map[string]*ArtistGroup)
			grouped = append(grouped, genreGroup)
		}

		artistGroup, ok := artistIdx[genreName][artistName]
		if !ok {
			artistGroup = &ArtistGroup{Artist: artistName}
			artistIdx[genreName][artistName] = artistGroup
			genreGroup.Artists = append(genreGroup.Artists, artistGroup)
		}

		artistGroup.Songs = append(artistGroup.Songs, song)
	}

	return grouped
}
