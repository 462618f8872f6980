package ports

import (
	"context"

	"github.com/libraryhub/circulation/internal/core/domain"
)

// UserRepository exposes read access to library users.
type UserRepository interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	FindUser(ctx context.Context, id string) (*domain.User, error)
}
