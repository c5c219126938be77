package genres

import (
	"context"

	"lyramor/internal/models"
)

// Store captures the persistence needs for genre workflows.
type Store interface {
	ListGenres(ctx context.Context) ([]models.Genre, error)
	CreateGenre(ctx context.Context, name string) (models.Genre, error)
	DeleteGenre(ctx context.Context, id int64) error
}

// Service coordinates genre operations.
type Service interface {
	List(ctx context.Context) ([]models.Genre, error)
	Create(ctx context.Context, name string) (models.Genre, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context) ([]models.Genre, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListGenres(ctx)
}

func (s *service) Create(ctx context.Context, name string) (models.Genre, error) {
	if err := ctx.Err(); err != nil {
		return models.Genre{}, err
	}
	return s.store.CreateGenre(ctx, name)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteGenre(ctx, id)
}
