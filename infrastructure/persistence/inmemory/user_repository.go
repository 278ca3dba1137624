package inmemory

import (
	"context"
	"strings"
	"sync"

	"memoryhub/application/ports"
	"memoryhub/domain/core/entities"
	pkgerrors "memoryhub/pkg/errors"
)

// UserRepository keeps accounts in memory, indexed by ID and by email
type UserRepository struct {
	mu      sync.RWMutex
	users   map[string]*entities.User
	byEmail map[string]string
}

// NewUserRepository creates an empty repository
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[string]*entities.User),
		byEmail: make(map[string]string),
	}
}

var _ ports.UserRepository = (*UserRepository)(nil)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepository) Save(ctx context.Context, user *entities.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	email := normalizeEmail(user.Email())
	if _, taken := r.byEmail[email]; taken {
		return pkgerrors.ErrEmailAlreadyRegistered
	}
	if _, exists := r.users[user.ID()]; exists {
		return pkgerrors.NewConflictError("user already exists")
	}

	r.users[user.ID()] = cloneUser(user)
	r.byEmail[email] = user.ID()
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, pkgerrors.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, pkgerrors.ErrUserNotFound
	}
	return cloneUser(r.users[id]), nil
}

func cloneUser(u *entities.User) *entities.User {
	return entities.ReconstructUser(u.ID(), u.Email(), u.PasswordHash(), u.APIKey(), u.IsActive(), u.CreatedAt())
}
