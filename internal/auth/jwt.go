package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken covers bad signatures, foreign algorithms, malformed
	// payloads and missing subjects.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrExpiredToken is returned once the token's exp has passed.
	ErrExpiredToken = errors.New("session token expired")
	// ErrEmptySecret is returned by NewJWTManager for an empty secret.
	ErrEmptySecret = errors.New("jwt secret must not be empty")
)

// Claims are the session token claims. UserID mirrors Subject.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HS256 session tokens.
type JWTManager struct {
	secret   []byte
	lifetime time.Duration
	issuer   string
	now      func() time.Time
}

// JWTOption configures a JWTManager.
type JWTOption func(*JWTManager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) JWTOption {
	return func(m *JWTManager) { m.now = now }
}

// WithIssuer sets the iss claim written and required on verify.
func WithIssuer(issuer string) JWTOption {
	return func(m *JWTManager) { m.issuer = issuer }
}

// NewJWTManager creates a manager signing with secret. Tokens live for
// lifetime.
func NewJWTManager(secret string, lifetime time.Duration, opts ...JWTOption) (*JWTManager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("jwt lifetime must be positive, got %s", lifetime)
	}
	m := &JWTManager{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Lifetime returns the token lifetime.
func (m *JWTManager) Lifetime() time.Duration {
	return m.lifetime
}

// Issue returns a signed token for userID.
func (m *JWTManager) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("issue session token: empty subject")
	}
	now := m.now().UTC()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.lifetime)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks token and returns its subject. The error wraps
// ErrExpiredToken or ErrInvalidToken.
func (m *JWTManager) Verify(token string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", fmt.Errorf("%w: %v", ErrExpiredToken, err)
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject := claims.Subject
	if subject == "" {
		subject = claims.UserID
	}
	if subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return subject, nil
}
