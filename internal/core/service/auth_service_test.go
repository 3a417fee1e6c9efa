package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lingoleap/learning-api/internal/core/domain"
	"github.com/lingoleap/learning-api/internal/core/ports"
	"github.com/lingoleap/learning-api/internal/core/ports/fakes"
)

type stubThrottle struct {
	blocked  bool
	err      error
	failures map[string]int
	resets   []string
}

func newStubThrottle() *stubThrottle {
	return &stubThrottle{failures: make(map[string]int)}
}

func (t *stubThrottle) Blocked(_ context.Context, _ string) (bool, error) {
	return t.blocked, t.err
}

func (t *stubThrottle) RecordFailure(_ context.Context, email string) error {
	t.failures[email]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, email string) error {
	t.resets = append(t.resets, email)
	return nil
}

type recordedEvents struct {
	mu     sync.Mutex
	events []domain.SessionEvent
}

func (r *recordedEvents) Record(e domain.SessionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordedEvents) types() []domain.SessionEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.SessionEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type authFixture struct {
	svc      *AuthService
	store    *fakes.CredentialStore
	tokens   *TokenService
	throttle *stubThrottle
	events   *recordedEvents
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store := fakes.NewCredentialStore()
	tokens := newTestTokens(t)
	throttle := newStubThrottle()
	events := &recordedEvents{}
	svc := NewAuthService(store, tokens, AuthDeps{
		Throttle: throttle,
		Events:   events,
		HashCost: bcrypt.MinCost,
	}, zerolog.Nop())
	return &authFixture{svc: svc, store: store, tokens: tokens, throttle: throttle, events: events}
}

func (f *authFixture) register(t *testing.T, email, password string) *domain.Session {
	t.Helper()
	sess, err := f.svc.Register(context.Background(), ports.RegisterInput{Email: email, Password: password, Name: "Alice"})
	require.NoError(t, err)
	return sess
}

func TestAuthService_Register_IssuesSession(t *testing.T) {
	f := newAuthFixture(t)

	sess := f.register(t, "  Alice@X.com ", "secret1")

	assert.Equal(t, "alice@x.com", sess.User.Email)
	assert.Equal(t, domain.RoleUser, sess.User.Role)
	assert.Equal(t, "Alice", sess.User.Name)
	require.NotEmpty(t, sess.Tokens.AccessToken)
	require.NotEmpty(t, sess.Tokens.RefreshToken)

	stored, err := f.store.FindByID(context.Background(), sess.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.True(t, passwordMatches(stored.PasswordHash, "secret1"))
	assert.True(t, refreshTokenMatches(stored.RefreshTokenHash, sess.Tokens.RefreshToken))

	claims, err := f.tokens.VerifyAccess(sess.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, claims.Subject)
	assert.Equal(t, domain.RoleUser, claims.Role)

	assert.Equal(t, []domain.SessionEventType{domain.EventRegistered}, f.events.types())
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "bob@example.com", "secret1")

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{Email: "BOB@example.com", Password: "other12"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestAuthService_Register_RequiresCredentials(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{Email: " ", Password: "secret1"})
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestAuthService_RegisterThenLogin_SameProjection(t *testing.T) {
	f := newAuthFixture(t)
	registered := f.register(t, "carol@example.com", "s3cret!")

	loggedIn, err := f.svc.Login(context.Background(), "carol@example.com", "s3cret!")
	require.NoError(t, err)

	assert.Equal(t, registered.User, loggedIn.User)
	assert.Equal(t, []string{"carol@example.com"}, f.throttle.resets)
}

func TestAuthService_Login_InvalidCredentialsAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "dave@example.com", "goodpass")

	_, wrongPassword := f.svc.Login(context.Background(), "dave@example.com", "badpass")
	_, unknownEmail := f.svc.Login(context.Background(), "ghost@example.com", "badpass")

	require.ErrorIs(t, wrongPassword, domain.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, domain.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())

	assert.Equal(t, 1, f.throttle.failures["dave@example.com"])
	assert.Equal(t, 1, f.throttle.failures["ghost@example.com"])
}

func TestAuthService_Login_Throttled(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "erin@example.com", "goodpass")
	f.throttle.blocked = true

	_, err := f.svc.Login(context.Background(), "erin@example.com", "goodpass")
	assert.ErrorIs(t, err, domain.ErrTooManyAttempts)
}

func TestAuthService_Login_ThrottleFailureDoesNotBlock(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "erin@example.com", "goodpass")
	f.throttle.err = errors.New("redis down")

	_, err := f.svc.Login(context.Background(), "erin@example.com", "goodpass")
	assert.NoError(t, err)
}

func TestAuthService_Login_RevokesPreviousRefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	first := f.register(t, "frank@example.com", "goodpass")

	_, err := f.svc.Login(context.Background(), "frank@example.com", "goodpass")
	require.NoError(t, err)

	_, err = f.svc.Refresh(context.Background(), first.Tokens.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_RefreshRotationScenario(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "alice@x.com", "secret1")

	login, err := f.svc.Login(ctx, "alice@x.com", "secret1")
	require.NoError(t, err)
	r1 := login.Tokens.RefreshToken

	second, err := f.svc.Refresh(ctx, r1)
	require.NoError(t, err)
	require.NotEqual(t, r1, second.RefreshToken)
	require.NotEqual(t, login.Tokens.AccessToken, second.AccessToken)

	_, err = f.svc.Refresh(ctx, r1)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	third, err := f.svc.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, third.AccessToken)
}

func TestAuthService_LogoutThenRefreshFails(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	sess := f.register(t, "gina@example.com", "secret1")

	require.NoError(t, f.svc.Logout(ctx, sess.User.ID))
	require.NoError(t, f.svc.Logout(ctx, sess.User.ID))

	_, err := f.svc.Refresh(ctx, sess.Tokens.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	stored, err := f.store.FindByID(ctx, sess.User.ID)
	require.NoError(t, err)
	assert.False(t, stored.HasSession())
}

func TestAuthService_Logout_UnknownUserSucceeds(t *testing.T) {
	f := newAuthFixture(t)
	assert.NoError(t, f.svc.Logout(context.Background(), "no-such-user"))
}

func TestAuthService_Refresh_RejectsAccessTokenAndGarbage(t *testing.T) {
	f := newAuthFixture(t)
	sess := f.register(t, "hank@example.com", "secret1")

	for _, token := range []string{sess.Tokens.AccessToken, "garbage", ""} {
		_, err := f.svc.Refresh(context.Background(), token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	}
}

func TestAuthService_Refresh_UnknownSubject(t *testing.T) {
	f := newAuthFixture(t)
	orphan, err := f.tokens.SignRefresh("ghost", domain.RoleUser)
	require.NoError(t, err)

	_, err = f.svc.Refresh(context.Background(), orphan)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_Refresh_PicksUpRoleChange(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	sess := f.register(t, "ivy@example.com", "secret1")

	_, err := f.store.SetRole(ctx, sess.User.ID, domain.RoleAdmin)
	require.NoError(t, err)

	pair, err := f.svc.Refresh(ctx, sess.Tokens.RefreshToken)
	require.NoError(t, err)

	claims, err := f.tokens.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestAuthService_Refresh_ConcurrentUseHasOneWinner(t *testing.T) {
	f := newAuthFixture(t)
	sess := f.register(t, "jack@example.com", "secret1")

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Refresh(context.Background(), sess.Tokens.RefreshToken); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestAuthService_EventsFollowSessionLifecycle(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	sess := f.register(t, "kim@example.com", "secret1")

	_, _ = f.svc.Login(ctx, "kim@example.com", "wrong")
	_, err := f.svc.Refresh(ctx, sess.Tokens.RefreshToken)
	require.NoError(t, err)
	_, _ = f.svc.Refresh(ctx, sess.Tokens.RefreshToken)
	require.NoError(t, f.svc.Logout(ctx, sess.User.ID))

	assert.Equal(t, []domain.SessionEventType{
		domain.EventRegistered,
		domain.EventLoginFailed,
		domain.EventRefreshed,
		domain.EventRefreshRejected,
		domain.EventLogout,
	}, f.events.types())
}

func TestAuthService_ExpiredRefreshToken(t *testing.T) {
	store := fakes.NewCredentialStore()
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tokens := newTestTokens(t, WithClock(func() time.Time { return clock }))
	svc := NewAuthService(store, tokens, AuthDeps{HashCost: bcrypt.MinCost}, zerolog.Nop())

	sess, err := svc.Register(context.Background(), ports.RegisterInput{Email: "leo@example.com", Password: "secret1"})
	require.NoError(t, err)

	clock = clock.Add(7*24*time.Hour + time.Second)
	_, err = svc.Refresh(context.Background(), sess.Tokens.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_Register_RejectsOverlongPassword(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Email:    "long@example.com",
		Password: strings.Repeat("é", 40),
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "password")
}

func TestAuthService_DummyHashUsesConfiguredCost(t *testing.T) {
	store := fakes.NewCredentialStore()
	tokens := newTestTokens(t)

	svc := NewAuthService(store, tokens, AuthDeps{HashCost: bcrypt.MinCost + 1}, zerolog.Nop())
	cost, err := bcrypt.Cost(svc.dummyHash)
	require.NoError(t, err)
	assert.Equal(t, svc.hashCost, cost)
	assert.Equal(t, bcrypt.MinCost+1, cost)

	svc = NewAuthService(store, tokens, AuthDeps{HashCost: bcrypt.MaxCost + 1}, zerolog.Nop())
	assert.Equal(t, bcrypt.DefaultCost, svc.hashCost)
	cost, err = bcrypt.Cost(svc.dummyHash)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
