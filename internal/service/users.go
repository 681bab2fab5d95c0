package service

import (
	"context"

	"accounthub/internal/domain/user"
)

// UserStore is the slice of the persistence layer the services need.
// Kept as an interface so tests can fake it.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash, role string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Update(ctx context.Context, id int64, req user.UpdateRequest) (user.User, error)
	Delete(ctx context.Context, id int64) error
}

type UsersService struct {
	store UserStore
}

func NewUsersService(store UserStore) *UsersService {
	return &UsersService{store: store}
}

func (s *UsersService) List(ctx context.Context) ([]user.User, error) {
	return s.store.List(ctx)
}

func (s *UsersService) Get(ctx context.Context, id int64) (user.User, error) {
	return s.store.GetByID(ctx, id)
}

// Update applies a partial update. An empty request is a no-op read of the
// current record, not an error.
func (s *UsersService) Update(ctx context.Context, id int64, req user.UpdateRequest) (user.User, error) {
	if req.Email != nil {
		normalized := user.NormalizeEmail(*req.Email)
		req.Email = &normalized
	}

	return s.store.Update(ctx, id, req)
}

func (s *UsersService) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}
