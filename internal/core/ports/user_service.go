package ports

import (
	"context"

	"github.com/lingoleap/learning-api/internal/core/domain"
)

// ListUsersResult is a page of public user projections.
type ListUsersResult struct {
	Users []domain.PublicUser
	Total int64
	Page  int
	Limit int
}

// UserService exposes account operations beyond the session protocol.
type UserService interface {
	Me(ctx context.Context, userID string) (*domain.PublicUser, error)
	Get(ctx context.Context, userID string) (*domain.PublicUser, error)
	List(ctx context.Context, page, limit int) (*ListUsersResult, error)
	ChangeRole(ctx context.Context, userID, role string) (*domain.PublicUser, error)
	EnsureAdmin(ctx context.Context, email, password, name string) (bool, error)
}
