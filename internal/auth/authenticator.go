package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// CookieName is the cookie that carries the session token.
	CookieName = "authorization"
	// Scheme prefixes the token inside the cookie value.
	Scheme = "Bearer "
)

// ErrUnauthenticated is returned for a missing, malformed, expired, revoked
// or wrongly signed session token.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the authenticated caller resolved from a session token.
type Identity struct {
	UserID    int64
	TokenID   string
	ExpiresAt time.Time
}

// RevocationStore records logged-out token ids until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Authenticator turns a cookie value into an Identity.
type Authenticator struct {
	tokens  *TokenManager
	revoked RevocationStore
}

// NewAuthenticator builds an Authenticator.
func NewAuthenticator(tokens *TokenManager, revoked RevocationStore) *Authenticator {
	return &Authenticator{tokens: tokens, revoked: revoked}
}

// IssueToken signs a new session token for userID.
func (a *Authenticator) IssueToken(userID int64) (Token, error) {
	return a.tokens.Issue(userID)
}

// AuthenticateRequest verifies the scheme-prefixed cookie value. Errors
// wrapping ErrUnauthenticated mean the caller must be rejected with 401; any
// other error is a storage failure.
func (a *Authenticator) AuthenticateRequest(ctx context.Context, cookieValue string) (Identity, error) {
	raw, ok := ExtractToken(cookieValue)
	if !ok {
		return Identity{}, ErrUnauthenticated
	}

	identity, err := a.tokens.Parse(raw)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	revoked, err := a.revoked.IsRevoked(ctx, identity.TokenID)
	if err != nil {
		return Identity{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return Identity{}, fmt.Errorf("%w: token revoked", ErrUnauthenticated)
	}
	return identity, nil
}

// Revoke stops the identity's token from authenticating again.
func (a *Authenticator) Revoke(ctx context.Context, identity Identity) error {
	if err := a.revoked.Revoke(ctx, identity.TokenID, identity.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// ExtractToken strips the scheme tag from a cookie value. Values written by
// URL-encoding cookie writers ("Bearer%20...") are accepted too.
func ExtractToken(cookieValue string) (string, bool) {
	value := strings.TrimSpace(cookieValue)
	var token string
	switch {
	case strings.HasPrefix(value, Scheme):
		token = strings.TrimPrefix(value, Scheme)
	case strings.HasPrefix(value, "Bearer%20"):
		token = strings.TrimPrefix(value, "Bearer%20")
	default:
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// CookieValue formats a token for the session cookie.
func CookieValue(token string) string {
	return Scheme + token
}
