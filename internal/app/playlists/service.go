package playlists

import (
	"context"

	"lyramor/internal/authz"
	"lyramor/internal/models"
	"lyramor/internal/store"
)

// Store captures the persistence needs for playlist workflows.
type Store interface {
	ListPlaylists(ctx context.Context) ([]*models.Playlist, error)
	GetPlaylist(ctx context.Context, id int64) (*models.Playlist, error)
	CreatePlaylist(ctx context.Context, params store.PlaylistParams) (*models.Playlist, error)
	UpdatePlaylist(ctx context.Context, id int64, update store.PlaylistUpdate) (*models.Playlist, error)
	DeletePlaylist(ctx context.Context, id int64) error
	AddSongToPlaylist(ctx context.Context, playlistID, songID int64) error
}

// Service coordinates playlist operations and enforces the owner-or-admin
// rule on mutations. Existence is checked before ownership, so a missing
// playlist reads as not-found rather than forbidden.
type Service interface {
	List(ctx context.Context) ([]*models.Playlist, error)
	Get(ctx context.Context, id int64) (*models.Playlist, error)
	Create(ctx context.Context, actor *models.SessionUser, params store.PlaylistParams) (*models.Playlist, error)
	Update(ctx context.Context, actor *models.SessionUser, id int64, update store.PlaylistUpdate) (*models.Playlist, error)
	Delete(ctx context.Context, actor *models.SessionUser, id int64) error
	AddSong(ctx context.Context, playlistID, songID int64) (*models.Playlist, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context) ([]*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListPlaylists(ctx)
}

func (s *service) Get(ctx context.Context, id int64) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.GetPlaylist(ctx, id)
}

func (s *service) Create(ctx context.Context, actor *models.SessionUser, params store.PlaylistParams) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, store.ErrUnauthorized
	}
	params.CreatedBy = actor.ID
	return s.store.CreatePlaylist(ctx, params)
}

func (s *service) Update(ctx context.Context, actor *models.SessionUser, id int64, update store.PlaylistUpdate) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	existing, err := s.store.GetPlaylist(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanMutate(actor, existing.CreatedBy.ID) {
		return nil, authz.ErrForbidden
	}

	return s.store.UpdatePlaylist(ctx, id, update)
}

func (s *service) Delete(ctx context.Context, actor *models.SessionUser, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	existing, err := s.store.GetPlaylist(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanMutate(actor, existing.CreatedBy.ID) {
		return authz.ErrForbidden
	}

	return s.store.DeletePlaylist(ctx, id)
}

// AddSong idempotently appends a song reference, then returns the playlist
// with its songs expanded.
func (s *service) AddSong(ctx context.Context, playlistID, songID int64) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.store.AddSongToPlaylist(ctx, playlistID, songID); err != nil {
		return nil, err
	}
	return s.store.GetPlaylist(ctx, playlistID)
}
