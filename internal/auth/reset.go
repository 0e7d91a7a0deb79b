package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// DefaultResetTokenTTL is how long a reset link stays valid.
const DefaultResetTokenTTL = 15 * time.Minute

const resetTokenBytes = 32

var (
	// ErrResetTokenInvalid means no stored token matches.
	ErrResetTokenInvalid = errors.New("reset token invalid")
	// ErrResetTokenExpired means the token matched but its expiry has passed.
	ErrResetTokenExpired = errors.New("reset token expired")
)

// ResetToken is a freshly minted token. Plaintext is sent to the user once;
// only Hash and ExpiresAt are stored.
type ResetToken struct {
	Plaintext string
	Hash      string
	ExpiresAt time.Time
}

// ResetTokenService mints and checks password reset tokens.
type ResetTokenService struct {
	ttl  time.Duration
	now  func() time.Time
	rand func([]byte) (int, error)
}

// NewResetTokenService creates a service whose tokens live for ttl, or
// DefaultResetTokenTTL when ttl is not positive.
func NewResetTokenService(ttl time.Duration) *ResetTokenService {
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	return &ResetTokenService{ttl: ttl, now: time.Now, rand: rand.Read}
}

// WithClock returns a copy using now as its time source.
func (s *ResetTokenService) WithClock(now func() time.Time) *ResetTokenService {
	cpy := *s
	cpy.now = now
	return &cpy
}

// TTL returns the token lifetime.
func (s *ResetTokenService) TTL() time.Duration {
	return s.ttl
}

// Mint generates 256 random bits, encoded base64url without padding.
func (s *ResetTokenService) Mint() (ResetToken, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := s.rand(buf); err != nil {
		return ResetToken{}, fmt.Errorf("generate reset token: %w", err)
	}
	plaintext := base64.RawURLEncoding.EncodeToString(buf)
	return ResetToken{
		Plaintext: plaintext,
		Hash:      s.Hash(plaintext),
		ExpiresAt: s.now().UTC().Add(s.ttl),
	}, nil
}

// Hash returns the hex sha256 of plaintext, the form stored on the user row.
func (s *ResetTokenService) Hash(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// Match checks plaintext against the stored hash and expiry.
func (s *ResetTokenService) Match(plaintext, storedHash string, storedExpiry time.Time) error {
	if storedHash == "" || plaintext == "" {
		return ErrResetTokenInvalid
	}
	if subtle.ConstantTimeCompare([]byte(s.Hash(plaintext)), []byte(storedHash)) != 1 {
		return ErrResetTokenInvalid
	}
	if s.now().After(storedExpiry) {
		return ErrResetTokenExpired
	}
	return nil
}
