package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gccconnect/connect/internal/core/domain"
)

// Claims is the payload of a session bearer token.
type Claims struct {
	Email          string                `json:"email"`
	Name           string                `json:"name"`
	Role           domain.Role           `json:"role"`
	ApprovalStatus domain.ApprovalStatus `json:"approval_status"`
	jwt.RegisteredClaims
}

// Identity rebuilds the identity view carried by the token.
func (c *Claims) Identity() domain.Identity {
	return domain.Identity{
		ID:             c.Subject,
		Email:          c.Email,
		Name:           c.Name,
		Role:           c.Role,
		ApprovalStatus: c.ApprovalStatus,
	}
}

// TokenIssuer signs and parses HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) Issue(identity domain.Identity) (string, error) {
	now := t.now()
	claims := Claims{
		Email:          identity.Email,
		Name:           identity.Name,
		Role:           identity.Role,
		ApprovalStatus: identity.ApprovalStatus,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates raw and returns its claims. Any failure is reported as
// ErrInvalidCredentials.
func (t *TokenIssuer) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, err)
	}
	if !tkn.Valid {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrInvalidCredentials)
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: token missing subject or role", domain.ErrInvalidCredentials)
	}
	return claims, nil
}
