package ports

import "github.com/lingoleap/learning-api/internal/core/domain"

// TokenVerifier is the read side of the token service, all the Auth Gate needs.
type TokenVerifier interface {
	VerifyAccess(token string) (*domain.Claims, error)
}

// TokenService signs and verifies access and refresh tokens with isolated secrets.
type TokenService interface {
	TokenVerifier
	SignAccess(subject, role string) (string, error)
	SignRefresh(subject, role string) (string, error)
	VerifyRefresh(token string) (*domain.Claims, error)
}
