package models

import "time"

// User is the public projection of an account. The password hash never
// leaves the store layer.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// SessionUser is the actor attached to an authenticated request.
type SessionUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Genre names a musical genre. Names are unique.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Artist names a performer. Names are not unique; concurrent uploads may
// mint duplicates.
type Artist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Song is a track with its artist and genre expanded.
type Song struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Artist   Artist `json:"artist"`
	Genre    Genre  `json:"genre"`
	TrackURL string `json:"trackUrl,omitempty"`
	Duration int    `json:"duration,omitempty"`
}

// PlaylistSong is the song projection embedded in playlist responses.
type PlaylistSong struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Artist Artist `json:"artist"`
}

// UserRef is the creator projection embedded in playlist responses.
type UserRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Playlist is a user-curated, ordered list of song references. CreatedBy is
// set once at creation and never changes.
type Playlist struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Genre       *Genre         `json:"genre,omitempty"`
	Songs       []PlaylistSong `json:"songs"`
	CreatedBy   UserRef        `json:"createdBy"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
