package repositories

import (
	"context"
	"errors"

	"github.com/videotube/backend/internal/auth"
)

// UserSessionStore keeps refresh token hashes on the user record.
type UserSessionStore struct {
	users UserRepository
}

// NewUserSessionStore adapts a UserRepository to auth.SessionStore.
func NewUserSessionStore(users UserRepository) *UserSessionStore {
	return &UserSessionStore{users: users}
}

// Save records the hash of the user's current refresh token.
func (s *UserSessionStore) Save(ctx context.Context, userID, tokenHash string) error {
	if err := s.users.SetRefreshTokenHash(ctx, userID, tokenHash); err != nil {
		if errors.Is(err, ErrNotFound) {
			return auth.ErrSessionNotFound
		}
		return err
	}
	return nil
}

// Find returns the stored refresh token hash for the user.
func (s *UserSessionStore) Find(ctx context.Context, userID string) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", auth.ErrSessionNotFound
		}
		return "", err
	}
	if user.RefreshTokenHash == "" {
		return "", auth.ErrSessionNotFound
	}
	return user.RefreshTokenHash, nil
}

// Delete clears the user's refresh token hash.
func (s *UserSessionStore) Delete(ctx context.Context, userID string) error {
	if err := s.users.SetRefreshTokenHash(ctx, userID, ""); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

var _ auth.SessionStore = (*UserSessionStore)(nil)
