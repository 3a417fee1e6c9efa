package domain

import (
	"strings"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether role is one the system knows about.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// NormalizeEmail is the canonical form under which emails are stored and looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User models a learner or administrator account.
type User struct {
	ID               string
	Email            string
	Name             string
	PasswordHash     string
	Role             string
	RefreshTokenHash string // empty when no session is active
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasSession reports whether a refresh token is currently bound to the user.
func (u *User) HasSession() bool {
	return u.RefreshTokenHash != ""
}

// Public returns the projection that is safe to hand to clients.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}

// PublicUser never carries password or refresh-token hashes.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}
