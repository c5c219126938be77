package songs

import (
	"context"

	"lyramor/internal/models"
	"lyramor/internal/store"
)

// Store captures the persistence needs for song workflows.
type Store interface {
	ListSongs(ctx context.Context) ([]models.Song, error)
	SongByID(ctx context.Context, id int64) (models.Song, error)
	FindOrCreateArtist(ctx context.Context, name string) (models.Artist, error)
	FindOrCreateGenre(ctx context.Context, name string) (models.Genre, error)
	CreateSong(ctx context.Context, params store.SongParams) (models.Song, error)
	DeleteSong(ctx context.Context, id int64) (string, error)
}

// UploadInput describes an ingested track. Artist and genre arrive as names
// and are resolved by exact match, created when absent.
type UploadInput struct {
	Title      string
	ArtistName string
	GenreName  string
	TrackURL   string
	Duration   int
}

// Service coordinates track-level operations.
type Service interface {
	List(ctx context.Context) ([]models.Song, error)
	Get(ctx context.Context, id int64) (models.Song, error)
	Create(ctx context.Context, params store.SongParams) (models.Song, error)
	CreateFromUpload(ctx context.Context, in UploadInput) (models.Song, error)
	Delete(ctx context.Context, id int64) (string, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context) ([]models.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListSongs(ctx)
}

func (s *service) Get(ctx context.Context, id int64) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}
	return s.store.SongByID(ctx, id)
}

func (s *service) Create(ctx context.Context, params store.SongParams) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}
	return s.store.CreateSong(ctx, params)
}

// CreateFromUpload resolves the artist and genre names, then persists the
// song pointing at the stored audio file.
func (s *service) CreateFromUpload(ctx context.Context, in UploadInput) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}

	artist, err := s.store.FindOrCreateArtist(ctx, in.ArtistName)
	if err != nil {
		return models.Song{}, err
	}
	genre, err := s.store.FindOrCreateGenre(ctx, in.GenreName)
	if err != nil {
		return models.Song{}, err
	}

	return s.store.CreateSong(ctx, store.SongParams{
		Title:    in.Title,
		ArtistID: artist.ID,
		GenreID:  genre.ID,
		TrackURL: in.TrackURL,
		Duration: in.Duration,
	})
}

// Delete removes the song record and reports the backing track URL so the
// caller can unlink the audio file. The record's removal is the success
// criterion.
func (s *service) Delete(ctx context.Context, id int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.store.DeleteSong(ctx, id)
}
