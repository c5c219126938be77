package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lyramor/internal/models"
)

func song(id int64, title, artist, genre string) models.Song {
	return models.Song{
		ID:     id,
		Title:  title,
		Artist: models.Artist{ID: id * 10, Name: artist},
		Genre:  models.Genre{ID: id * 100, Name: genre},
	}
}

func refs(songs ...models.Song) []models.PlaylistSong {
	out := make([]models.PlaylistSong, 0, len(songs))
	for _, s := range songs {
		out = append(out, models.PlaylistSong{ID: s.ID, Title: s.Title, Artist: s.Artist})
	}
	return out
}

func TestBuildGroupsByGenreThenArtist(t *testing.T) {
	a := song(1, "A", "X", "Rock")
	b := song(2, "B", "Y", "Rock")
	c := song(3, "C", "X", "Jazz")

	playlists := []*models.Playlist{{
		ID:        1,
		Name:      "Mixtape",
		Songs:     refs(a, b, c),
		CreatedBy: models.UserRef{ID: 5, Username: "sam"},
	}}

	entries := Build(playlists, []models.Song{a, b, c}, "", nil)
	require.Len(t, entries, 1)

	grouped := entries[0].Grouped
	require.Len(t, grouped, 2)

	assert.Equal(t, "Rock", grouped[0].Genre)
	require.Len(t, grouped[0].Artists, 2)
	assert.Equal(t, "X", grouped[0].Artists[0].Artist)
	assert.Equal(t, []models.Song{a}, grouped[0].Artists[0].Songs)
	assert.Equal(t, "Y", grouped[0].Artists[1].Artist)
	assert.Equal(t, []models.Song{b}, grouped[0].Artists[1].Songs)

	assert.Equal(t, "Jazz", grouped[1].Genre)
	require.Len(t, grouped[1].Artists, 1)
	assert.Equal(t, "X", grouped[1].Artists[0].Artist)
	assert.Equal(t, []models.Song{c}, grouped[1].Artists[0].Songs)
}

func TestBuildPreservesInsertionOrderWithinBuckets(t *testing.T) {
	first := song(1, "First", "X", "Rock")
	second := song(2, "Second", "X", "Rock")

	playlists := []*models.Playlist{{
		ID:    1,
		Name:  "Ordered",
		Songs: refs(first, second),
	}}

	entries := Build(playlists, []models.Song{second, first}, "", nil)
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Grouped, 1)
	require.Len(t, entries[0].Grouped[0].Artists, 1)
	assert.Equal(t, []models.Song{first, second}, entries[0].Grouped[0].Artists[0].Songs)
}

func TestBuildSearchFilter(t *testing.T) {
	playlists := []*models.Playlist{
		{ID: 1, Name: "Chill Vibes"},
		{ID: 2, Name: "Workout Mix"},
		{ID: 3, Name: "Roadtrip", Description: "chill songs for long drives"},
	}

	tests := []struct {
		name    string
		search  string
		wantIDs []int64
	}{
		{name: "empty search matches everything", search: "", wantIDs: []int64{1, 2, 3}},
		{name: "case-insensitive name match", search: "CHILL", wantIDs: []int64{1, 3}},
		{name: "description match", search: "drives", wantIDs: []int64{3}},
		{name: "no match", search: "metal", wantIDs: []int64{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			entries := Build(playlists, nil, tc.search, nil)
			got := make([]int64, 0, len(entries))
			for _, e := range entries {
				got = append(got, e.Playlist.ID)
			}
			assert.Equal(t, tc.wantIDs, got)
		})
	}
}

func TestBuildSkipsDanglingReferences(t *testing.T) {
	known := song(1, "Known", "X", "Rock")

	playlists := []*models.Playlist{{
		ID:   1,
		Name: "Partially gone",
		Songs: []models.PlaylistSong{
			{ID: 1, Title: "Known"},
			{ID: 99, Title: "Deleted"},
		},
	}}

	entries := Build(playlists, []models.Song{known}, "", nil)
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Grouped, 1)
	require.Len(t, entries[0].Grouped[0].Artists, 1)
	assert.Equal(t, []models.Song{known}, entries[0].Grouped[0].Artists[0].Songs)
}

func TestBuildUnknownGenreAndArtistFallbacks(t *testing.T) {
	nameless := models.Song{ID: 1, Title: "Mystery"}

	playlists := []*models.Playlist{{
		ID:    1,
		Name:  "Mysteries",
		Songs: []models.PlaylistSong{{ID: 1}},
	}}

	entries := Build(playlists, []models.Song{nameless}, "", nil)
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Grouped, 1)
	assert.Equal(t, "Unknown Genre", entries[0].Grouped[0].Genre)
	require.Len(t, entries[0].Grouped[0].Artists, 1)
	assert.Equal(t, "Unknown Artist", entries[0].Grouped[0].Artists[0].Artist)
}

func TestBuildCanEdit(t *testing.T) {
	playlists := []*models.Playlist{{
		ID:        1,
		Name:      "Owned",
		CreatedBy: models.UserRef{ID: 5, Username: "sam"},
	}}

	tests := []struct {
		name  string
		actor *models.SessionUser
		want  bool
	}{
		{name: "anonymous", actor: nil, want: false},
		{name: "owner", actor: &models.SessionUser{ID: 5}, want: true},
		{name: "other user", actor: &models.SessionUser{ID: 6}, want: false},
		{name: "admin", actor: &models.SessionUser{ID: 6, IsAdmin: true}, want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			entries := Build(playlists, nil, "", tc.actor)
			require.Len(t, entries, 1)
			assert.Equal(t, tc.want, entries[0].CanEdit)
		})
	}
}
