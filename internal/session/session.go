// Package session holds the profile's single "current user" pointer.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"communityhub/internal/models"
	"communityhub/internal/observability"
	"communityhub/internal/storage"
)

// Session is the explicit current-user context of one profile. The pointer is
// persisted under its own slot so it survives restarts.
type Session struct {
	mu      sync.Mutex
	backend storage.Backend
	key     string
}

// New returns a session stored in backend under key.
func New(backend storage.Backend, key string) *Session {
	return &Session{backend: backend, key: key}
}

// ForStore returns the session bound to store's currentUser slot.
func ForStore(store *storage.Store) *Session {
	return New(store.Backend(), store.Key(storage.CurrentUserSlot))
}

// Current returns a copy of the signed-in user, or nil for a guest.
func (s *Session) Current(ctx context.Context) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("read session: %w", err))
	}
	if !ok || len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		// A corrupt pointer behaves like a signed-out profile.
		observability.GlobalLogger.WarnContext(ctx, "discarding unreadable session",
			slog.String("slot", s.key),
			slog.String("error", err.Error()),
		)
		return nil, nil
	}
	return &user, nil
}

// Set stores user as the current user. A nil user clears the session.
func (s *Session) Set(ctx context.Context, user *models.User) error {
	if user == nil {
		return s.Clear(ctx)
	}

	data, err := json.Marshal(user)
	if err != nil {
		return models.NewInternalError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Set(ctx, s.key, data); err != nil {
		return models.NewInternalError(fmt.Errorf("write session: %w", err))
	}
	return nil
}

// Clear signs the profile out.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Delete(ctx, s.key); err != nil {
		return models.NewInternalError(fmt.Errorf("clear session: %w", err))
	}
	return nil
}
