package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lingoleap/learning-api/internal/core/domain"
	"github.com/lingoleap/learning-api/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	// maxPage keeps (page-1)*limit far from integer overflow.
	maxPage = 1_000_000
)

type UserService struct {
	store    ports.CredentialStore
	events   ports.SessionEventRecorder
	hashCost int
	log      zerolog.Logger
}

func NewUserService(store ports.CredentialStore, events ports.SessionEventRecorder, hashCost int, log zerolog.Logger) *UserService {
	if events == nil {
		events = nopRecorder{}
	}
	return &UserService{store: store, events: events, hashCost: normalizeCost(hashCost), log: log}
}

func (s *UserService) Me(ctx context.Context, userID string) (*domain.PublicUser, error) {
	return s.Get(ctx, userID)
}

func (s *UserService) Get(ctx context.Context, userID string) (*domain.PublicUser, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	pub := user.Public()
	return &pub, nil
}

// List returns a page of users, newest first. Out-of-range paging values are
// clamped rather than rejected.
func (s *UserService) List(ctx context.Context, page, limit int) (*ports.ListUsersResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if page > maxPage {
		page = maxPage
	}

	users, total, err := s.store.List(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]domain.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return &ports.ListUsersResult{Users: out, Total: total, Page: page, Limit: limit}, nil
}

// ChangeRole updates the stored role. Tokens already issued keep the old role
// until they expire; the next refresh picks up the new one.
func (s *UserService) ChangeRole(ctx context.Context, userID, role string) (*domain.PublicUser, error) {
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}

	user, err := s.store.SetRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	s.events.Record(domain.SessionEvent{
		UserID: user.ID,
		Type:   domain.EventRoleChanged,
		At:     time.Now().UTC(),
		Detail: role,
	})
	s.log.Info().Str("user_id", user.ID).Str("role", role).Msg("user role changed")

	pub := user.Public()
	return &pub, nil
}

// EnsureAdmin creates an admin account unless the email is already taken.
// It reports whether an account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return false, &domain.ValidationError{Message: "admin email and password are required"}
	}

	_, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return false, fmt.Errorf("seed admin: %w", err)
	}

	hash, err := hashPassword(password, s.hashCost)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	_, err = s.store.Create(ctx, &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, domain.ErrDuplicateEmail) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return true, nil
}
