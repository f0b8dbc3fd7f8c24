package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is how long a session token stays valid. Handlers use it for
// the cookie lifetime so the cookie and the token expire together.
const SessionTTL = 24 * time.Hour

const issuer = "forge"

// Identity is what a validated token resolves to: the subject user ID and
// whether the session belongs to the synthesized administrator (who has no
// user row, so the flag must travel in the token itself).
type Identity struct {
	UserID string
	Admin  bool
}

// TokenService signs and validates session tokens (HS256).
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given HMAC secret.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

type claims struct {
	Admin bool `json:"adm,omitempty"`
	jwt.RegisteredClaims
}

// Generate creates a signed session token for the given identity.
func (s *TokenService) Generate(id Identity) (string, error) {
	return s.GenerateWithDuration(id, SessionTTL)
}

// GenerateWithDuration creates a token with a custom expiry. Used by tests.
func (s *TokenService) GenerateWithDuration(id Identity, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Admin: id.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token string, returning the identity it
// encodes. Expired, tampered, or foreign-issuer tokens fail.
func (s *TokenService) Validate(tokenStr string) (Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, fmt.Errorf("auth: token expired")
		}
		return Identity{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return Identity{}, fmt.Errorf("auth: token has no subject")
	}

	return Identity{UserID: c.Subject, Admin: c.Admin}, nil
}
