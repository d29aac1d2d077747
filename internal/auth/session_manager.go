package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/videotube/backend/internal/models"
)

var (
	// ErrSessionNotFound indicates the refresh token is not the one currently issued to its user.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRefreshTokenExpired indicates the refresh token has expired and cannot be used.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	// ErrAccessTokenExpired indicates the access token has expired.
	ErrAccessTokenExpired = errors.New("access token expired")
	// ErrInvalidToken indicates the token is malformed, has a bad signature or is of the wrong type.
	ErrInvalidToken = errors.New("invalid token")
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// SessionStore persists the hash of the refresh token currently issued to each user.
type SessionStore interface {
	Save(ctx context.Context, userID, tokenHash string) error
	Find(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
}

// Options configures token signing and lifetimes.
type Options struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Manager issues, verifies and rotates HS256 signed access and refresh tokens.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	store SessionStore

	// NowFunc is overridable in tests.
	NowFunc func() time.Time
}

type tokenClaims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// NewManager constructs a Manager that signs tokens with the configured secrets.
func NewManager(opts Options, store SessionStore) *Manager {
	if store == nil {
		panic("auth: session store must not be nil")
	}
	return &Manager{
		accessSecret:  []byte(opts.AccessSecret),
		refreshSecret: []byte(opts.RefreshSecret),
		accessTTL:     opts.AccessTTL,
		refreshTTL:    opts.RefreshTTL,
		store:         store,
		NowFunc:       time.Now,
	}
}

// Issue signs a new access and refresh token pair for userID and records the
// refresh token hash, replacing any earlier one.
func (m *Manager) Issue(ctx context.Context, userID string) (models.SessionTokens, error) {
	if userID == "" {
		return models.SessionTokens{}, errors.New("user id must be provided")
	}

	now := m.NowFunc().UTC()

	accessToken, accessExp, err := m.sign(userID, tokenTypeAccess, now, m.accessTTL, m.accessSecret)
	if err != nil {
		return models.SessionTokens{}, err
	}

	refreshToken, refreshExp, err := m.sign(userID, tokenTypeRefresh, now, m.refreshTTL, m.refreshSecret)
	if err != nil {
		return models.SessionTokens{}, err
	}

	if err := m.store.Save(ctx, userID, HashToken(refreshToken)); err != nil {
		return models.SessionTokens{}, fmt.Errorf("save session: %w", err)
	}

	return models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Refresh exchanges the current refresh token for a new pair. A token that was
// already rotated or revoked yields ErrSessionNotFound.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (string, models.SessionTokens, error) {
	if refreshToken == "" {
		return "", models.SessionTokens{}, ErrSessionNotFound
	}

	userID, err := m.parse(refreshToken, tokenTypeRefresh, m.refreshSecret, ErrRefreshTokenExpired)
	if err != nil {
		return "", models.SessionTokens{}, err
	}

	stored, err := m.store.Find(ctx, userID)
	if err != nil {
		return "", models.SessionTokens{}, err
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(HashToken(refreshToken))) != 1 {
		return "", models.SessionTokens{}, ErrSessionNotFound
	}

	tokens, err := m.Issue(ctx, userID)
	if err != nil {
		return "", models.SessionTokens{}, err
	}
	return userID, tokens, nil
}

// Revoke clears the user's refresh token so it can no longer be exchanged.
func (m *Manager) Revoke(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return m.store.Delete(ctx, userID)
}

// VerifyAccess validates an access token and returns the user id it was issued to.
func (m *Manager) VerifyAccess(token string) (string, error) {
	return m.parse(token, tokenTypeAccess, m.accessSecret, ErrAccessTokenExpired)
}

// HashToken returns the hex encoded SHA-256 digest stored in place of a refresh token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (m *Manager) sign(userID, tokenType string, now time.Time, ttl time.Duration, secret []byte) (string, time.Time, error) {
	exp := now.Add(ttl)
	claims := tokenClaims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, exp, nil
}

func (m *Manager) parse(token, tokenType string, secret []byte, expired error) (string, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.NowFunc))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", expired
		}
		return "", ErrInvalidToken
	}

	if claims.TokenType != tokenType || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
