package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token is a freshly issued session token.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

type signingKey struct {
	id     string
	secret []byte
}

// TokenManager issues and verifies HS256 session tokens. Tokens are signed
// with the current secret and carry its key id in the header; previous
// secrets still verify tokens they signed until those expire.
type TokenManager struct {
	current  signingKey
	previous []signingKey
	issuer   string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenManager creates a manager with the provided secrets, issuer, and lifetime.
func NewTokenManager(secret string, previous []string, issuer string, ttl time.Duration) *TokenManager {
	t := &TokenManager{
		current: newSigningKey(secret),
		issuer:  issuer,
		ttl:     ttl,
		now:     time.Now,
	}
	for _, p := range previous {
		if p == "" || p == secret {
			continue
		}
		t.previous = append(t.previous, newSigningKey(p))
	}
	return t
}

func newSigningKey(secret string) signingKey {
	sum := sha256.Sum256([]byte(secret))
	return signingKey{id: hex.EncodeToString(sum[:4]), secret: []byte(secret)}
}

// Issue signs a token for the user.
func (t *TokenManager) Issue(userID int64) (Token, error) {
	now := t.now()
	jti := uuid.NewString()
	expiresAt := now.Add(t.ttl)

	claims := jwt.RegisteredClaims{
		ID:        jti,
		Issuer:    t.issuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = t.current.id

	signed, err := token.SignedString(t.current.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{Value: signed, ID: jti, ExpiresAt: expiresAt.Truncate(time.Second)}, nil
}

// Parse verifies the signature, issuer and expiry of a token and returns the
// identity it asserts.
func (t *TokenManager) Parse(tokenString string) (Identity, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(t.now),
		jwt.WithStrictDecoding(),
	)

	claims := &jwt.RegisteredClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, t.keyFor)
	if err != nil {
		return Identity{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return Identity{}, errors.New("token is invalid")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Identity{}, fmt.Errorf("invalid subject %q", claims.Subject)
	}
	if claims.ID == "" {
		return Identity{}, errors.New("token has no id")
	}

	return Identity{
		UserID:    userID,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (t *TokenManager) keyFor(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("wrong signing method %v", token.Header["alg"])
	}
	kid, _ := token.Header["kid"].(string)
	if kid == "" || kid == t.current.id {
		return t.current.secret, nil
	}
	for _, k := range t.previous {
		if k.id == kid {
			return k.secret, nil
		}
	}
	return nil, fmt.Errorf("unknown key id %q", kid)
}
