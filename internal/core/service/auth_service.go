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

// AuthService implements registration, login, refresh-token rotation and logout.
//
// Each user has a single active session: the bcrypt hash of the latest refresh
// token stored on the user record. Login overwrites it, refresh swaps it only
// if it still matches the presented token, logout clears it.
type AuthService struct {
	store     ports.CredentialStore
	tokens    ports.TokenService
	throttle  ports.LoginThrottle
	events    ports.SessionEventRecorder
	hashCost  int
	dummyHash []byte // compared on unknown emails to match wrong-password timing
	log       zerolog.Logger
}

// AuthDeps groups the optional collaborators of AuthService. Nil members are
// replaced by no-op implementations.
type AuthDeps struct {
	Throttle ports.LoginThrottle
	Events   ports.SessionEventRecorder
	HashCost int
}

func NewAuthService(store ports.CredentialStore, tokens ports.TokenService, deps AuthDeps, log zerolog.Logger) *AuthService {
	if deps.Throttle == nil {
		deps.Throttle = nopThrottle{}
	}
	if deps.Events == nil {
		deps.Events = nopRecorder{}
	}
	cost := normalizeCost(deps.HashCost)
	return &AuthService{
		store:     store,
		tokens:    tokens,
		throttle:  deps.Throttle,
		events:    deps.Events,
		hashCost:  cost,
		dummyHash: timingHash(cost),
		log:       log,
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Session, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, &domain.ValidationError{Message: "email and password are required"}
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, &domain.ValidationError{
			Message: "validation failed",
			Fields:  map[string]string{"password": "password must be at most 72 bytes"},
		}
	}

	passwordHash, err := hashPassword(in.Password, s.hashCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user, err := s.store.Create(ctx, &domain.User{
		Email:        email,
		Name:         in.Name,
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	pair, err := s.startSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.events.Record(domain.SessionEvent{UserID: user.ID, Type: domain.EventRegistered, At: now})
	s.log.Info().Str("user_id", user.ID).Msg("user registered")

	return &domain.Session{User: user.Public(), Tokens: *pair}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	blocked, err := s.throttle.Blocked(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("login throttle check failed, continuing")
	} else if blocked {
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("login: %w", err)
	}

	if user == nil {
		passwordMatches(string(s.dummyHash), password)
		s.loginFailed(ctx, "", email)
		return nil, domain.ErrInvalidCredentials
	}
	if !passwordMatches(user.PasswordHash, password) {
		s.loginFailed(ctx, user.ID, email)
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.throttle.Reset(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to reset login throttle")
	}

	pair, err := s.startSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.events.Record(domain.SessionEvent{UserID: user.ID, Type: domain.EventLogin, At: time.Now().UTC()})
	return &domain.Session{User: user.Public(), Tokens: *pair}, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w: %w", domain.ErrUnauthorized, err)
	}

	user, err := s.store.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("refresh: %w", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}

	if !user.HasSession() || !refreshTokenMatches(user.RefreshTokenHash, refreshToken) {
		s.rejectRefresh(user.ID, "token does not match active session")
		return nil, fmt.Errorf("refresh: %w", domain.ErrUnauthorized)
	}

	pair, newHash, err := s.mint(user)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	swapped, err := s.store.SwapRefreshHash(ctx, user.ID, user.RefreshTokenHash, newHash)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if !swapped {
		s.rejectRefresh(user.ID, "session rotated concurrently")
		return nil, fmt.Errorf("refresh: %w", domain.ErrUnauthorized)
	}

	s.events.Record(domain.SessionEvent{UserID: user.ID, Type: domain.EventRefreshed, At: time.Now().UTC()})
	return pair, nil
}

// Logout revokes whatever session the user has. Unknown users are not an error.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.store.SetRefreshHash(ctx, userID, ""); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("logout: %w", err)
	}

	s.events.Record(domain.SessionEvent{UserID: userID, Type: domain.EventLogout, At: time.Now().UTC()})
	return nil
}

// startSession mints a pair and makes its refresh token the only valid one.
func (s *AuthService) startSession(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	pair, hash, err := s.mint(user)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetRefreshHash(ctx, user.ID, hash); err != nil {
		return nil, fmt.Errorf("store refresh hash: %w", err)
	}
	return pair, nil
}

func (s *AuthService) mint(user *domain.User) (*domain.TokenPair, string, error) {
	access, err := s.tokens.SignAccess(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	refresh, err := s.tokens.SignRefresh(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	hash, err := hashRefreshToken(refresh, s.hashCost)
	if err != nil {
		return nil, "", err
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, hash, nil
}

func (s *AuthService) loginFailed(ctx context.Context, userID, email string) {
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
	}
	s.events.Record(domain.SessionEvent{
		UserID: userID,
		Email:  email,
		Type:   domain.EventLoginFailed,
		At:     time.Now().UTC(),
	})
}

func (s *AuthService) rejectRefresh(userID, reason string) {
	s.log.Debug().Str("user_id", userID).Str("reason", reason).Msg("refresh rejected")
	s.events.Record(domain.SessionEvent{
		UserID: userID,
		Type:   domain.EventRefreshRejected,
		At:     time.Now().UTC(),
		Detail: reason,
	})
}
