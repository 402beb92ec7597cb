package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("identity: not found")

// Repository is the persistence boundary for users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, role string, limit, offset int) ([]*User, int, error)
}
