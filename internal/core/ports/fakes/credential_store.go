// Package fakes holds in-memory implementations of the core ports for tests.
package fakes

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/lingoleap/learning-api/internal/core/domain"
	"github.com/lingoleap/learning-api/internal/core/ports"
)

var _ ports.CredentialStore = (*CredentialStore)(nil)

// CredentialStore keeps users in a map guarded by a mutex. Returned users are
// copies, so callers cannot mutate stored state behind the store's back.
type CredentialStore struct {
	lock   sync.RWMutex
	byID   map[string]*domain.User
	nextID int
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{byID: make(map[string]*domain.User)}
}

func clone(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (s *CredentialStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	email = domain.NormalizeEmail(email)
	for _, u := range s.byID {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *CredentialStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return clone(u), nil
}

func (s *CredentialStore) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	email := domain.NormalizeEmail(user.Email)
	for _, u := range s.byID {
		if u.Email == email {
			return nil, domain.ErrDuplicateEmail
		}
	}

	s.nextID++
	stored := clone(user)
	stored.ID = "u" + strconv.Itoa(s.nextID)
	stored.Email = email
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
		stored.UpdatedAt = stored.CreatedAt
	}
	s.byID[stored.ID] = stored
	return clone(stored), nil
}

func (s *CredentialStore) SetRefreshHash(_ context.Context, id, hash string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.RefreshTokenHash = hash
	return nil
}

func (s *CredentialStore) SwapRefreshHash(_ context.Context, id, oldHash, newHash string) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	u, ok := s.byID[id]
	if !ok || u.RefreshTokenHash == "" || u.RefreshTokenHash != oldHash {
		return false, nil
	}
	u.RefreshTokenHash = newHash
	return true, nil
}

func (s *CredentialStore) SetRole(_ context.Context, id, role string) (*domain.User, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if u.Role == role {
		return nil, domain.ErrRoleUnchanged
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	return clone(u), nil
}

func (s *CredentialStore) List(_ context.Context, page, limit int) ([]domain.User, int64, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	all := make([]domain.User, 0, len(s.byID))
	for _, u := range s.byID {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool {
		ni, _ := strconv.Atoi(all[i].ID[1:])
		nj, _ := strconv.Atoi(all[j].ID[1:])
		return ni > nj
	})

	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return []domain.User{}, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}
