// Package credentials owns the session credential pair and the signed-in
// user profile. All reads go through the in-memory cache; all mutation
// goes through Store methods, which keep the persistent storage in sync.
// Nothing outside this package writes the credential keys.
package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jadupage/storefront/internal/client/models"
	"github.com/jadupage/storefront/internal/client/storage"
)

// Store holds the access/refresh token pair and user profile, backed by
// the persistent key-value repository.
type Store struct {
	repo storage.Repository

	mu      sync.RWMutex
	access  string
	refresh string
	user    *models.User
}

// Open loads any previously persisted session from repo.
func Open(ctx context.Context, repo storage.Repository) (*Store, error) {
	s := &Store{repo: repo}

	access, err := repo.Get(ctx, storage.KeyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("loading access token: %w", err)
	}
	refresh, err := repo.Get(ctx, storage.KeyRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("loading refresh token: %w", err)
	}
	raw, err := repo.Get(ctx, storage.KeyUser)
	if err != nil {
		return nil, fmt.Errorf("loading user profile: %w", err)
	}

	s.access = string(access)
	s.refresh = string(refresh)
	if len(raw) > 0 {
		var u models.User
		if err := json.Unmarshal(raw, &u); err == nil {
			s.user = &u
		}
	}
	return s, nil
}

// AccessToken returns the current access token, empty when signed out.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// RefreshToken returns the current refresh token, empty when signed out.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// User returns the cached profile, nil when signed out.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// SetSession stores a full credential set after sign-in. The three keys
// are written in one transaction.
func (s *Store) SetSession(ctx context.Context, access, refresh string, user *models.User) error {
	values := map[string][]byte{
		storage.KeyAccessToken:  []byte(access),
		storage.KeyRefreshToken: []byte(refresh),
	}
	if user != nil {
		raw, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("encoding user profile: %w", err)
		}
		values[storage.KeyUser] = raw
	}
	if err := s.repo.SetMany(ctx, values); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	s.mu.Lock()
	s.access = access
	s.refresh = refresh
	if user != nil {
		s.user = user
	}
	s.mu.Unlock()
	return nil
}

// SetAccessToken replaces only the access token, as a successful refresh
// does.
func (s *Store) SetAccessToken(ctx context.Context, access string) error {
	if err := s.repo.Set(ctx, storage.KeyAccessToken, []byte(access)); err != nil {
		return fmt.Errorf("saving access token: %w", err)
	}
	s.mu.Lock()
	s.access = access
	s.mu.Unlock()
	return nil
}

// Clear destroys the session: all three credential keys are removed and
// the in-memory cache is zeroed. Called on logout and on irrecoverable
// refresh failure.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.access = ""
	s.refresh = ""
	s.user = nil
	s.mu.Unlock()

	for _, key := range []string{storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyUser} {
		if err := s.repo.Delete(ctx, key); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
	}
	return nil
}

// ExpiresAt decodes the access token's exp claim without verifying the
// signature. Display only; the server remains the authority on expiry.
func (s *Store) ExpiresAt() (time.Time, bool) {
	token := s.AccessToken()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
