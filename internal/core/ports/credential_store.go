package ports

import (
	"context"

	"github.com/lingoleap/learning-api/internal/core/domain"
)

// CredentialStore persists user identity, password hash, role and the hash of
// the single active refresh token.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)

	// SetRefreshHash overwrites the stored hash unconditionally. An empty hash
	// revokes the session.
	SetRefreshHash(ctx context.Context, id, hash string) error

	// SwapRefreshHash replaces the stored hash only while it still equals
	// oldHash. It reports false when another writer rotated the session first.
	SwapRefreshHash(ctx context.Context, id, oldHash, newHash string) (bool, error)

	// SetRole returns domain.ErrRoleUnchanged when the user already has role.
	SetRole(ctx context.Context, id, role string) (*domain.User, error)

	List(ctx context.Context, page, limit int) ([]domain.User, int64, error)
}
