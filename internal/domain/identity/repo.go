package identity

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists user accounts. Lookups that miss return a not_found
// error.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	List(ctx context.Context, limit, skip int) ([]*User, int, error)
}
