package auth

import (
	"errors"
	"time"

	"admissions/internal/core"
	"admissions/internal/domain/user"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the JWT payload issued to users and admins
type Claims struct {
	Role user.Role `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the subject as a uuid
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// TokenIssuer signs and parses HS256 tokens
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for u
func (t *TokenIssuer) Issue(u *user.User) (string, error) {
	now := t.now()
	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", core.Internal("issue_token", err)
	}
	return signed, nil
}

// Parse verifies signature and expiry
func (t *TokenIssuer) Parse(raw string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.Unauthorized("parse_token", "Token expired")
		}
		return nil, core.Unauthorized("parse_token", "Not authorized, token failed")
	}
	if _, err := claims.UserID(); err != nil || claims.ID == "" {
		return nil, core.Unauthorized("parse_token", "Not authorized, token failed")
	}
	return &claims, nil
}
