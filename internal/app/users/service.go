package users

import (
	"context"

	"lyramor/internal/models"
)

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateUser(ctx context.Context, username, password string) (models.User, error)
	Authenticate(ctx context.Context, username, password string) (string, models.User, error)
	SessionUser(ctx context.Context, token string) (models.SessionUser, error)
	DeleteSession(ctx context.Context, token string) error
	ListUsers(ctx context.Context) ([]models.User, error)
	SetAdmin(ctx context.Context, id int64, isAdmin bool) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// Service exposes account and session workflows.
type Service interface {
	Signup(ctx context.Context, username, password string) (models.User, error)
	Login(ctx context.Context, username, password string) (string, models.User, error)
	SessionUser(ctx context.Context, token string) (models.SessionUser, error)
	Logout(ctx context.Context, token string) error
	List(ctx context.Context) ([]models.User, error)
	SetAdmin(ctx context.Context, id int64, isAdmin bool) (models.User, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	store Store
}

// New wires a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Signup(ctx context.Context, username, password string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	return s.store.CreateUser(ctx, username, password)
}

func (s *service) Login(ctx context.Context, username, password string) (string, models.User, error) {
	if err := ctx.Err(); err != nil {
		return "", models.User{}, err
	}
	return s.store.Authenticate(ctx, username, password)
}

func (s *service) SessionUser(ctx context.Context, token string) (models.SessionUser, error) {
	if err := ctx.Err(); err != nil {
		return models.SessionUser{}, err
	}
	return s.store.SessionUser(ctx, token)
}

func (s *service) Logout(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteSession(ctx, token)
}

func (s *service) List(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}

func (s *service) SetAdmin(ctx context.Context, id int64, isAdmin bool) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	return s.store.SetAdmin(ctx, id, isAdmin)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteUser(ctx, id)
}
