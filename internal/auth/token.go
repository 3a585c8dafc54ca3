// Package auth implements credential checks, identity tokens and the access gate
// that guards the role-scoped API namespaces.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fairyhunter13/coupon-marketplace/internal/model"
)

// TokenLifetime is how long an issued token stays valid. There is no refresh;
// clients log in again after expiry.
const TokenLifetime = 10 * time.Hour

// Claims are the identity assertions carried by a token. The subject is the email.
type Claims struct {
	UserID   int64      `json:"userId"`
	UserType model.Role `json:"userType"`
	jwt.RegisteredClaims
}

// Identity projects the claims onto a principal.
func (c *Claims) Identity() model.Principal {
	return model.Principal{
		ID:    c.UserID,
		Email: c.Subject,
		Role:  c.UserType,
	}
}

// TokenService issues and validates HS256 identity tokens. It is stateless and
// safe for concurrent use.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService creates a TokenService signing with the given secret.
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token secret must be provided")
	}
	return &TokenService{secret: []byte(secret), now: time.Now}, nil
}

// Issue creates a token for the principal, valid for TokenLifetime.
func (s *TokenService) Issue(p model.Principal) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   p.ID,
		UserType: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies the signature and expiry of a token and returns its claims.
// Returns ErrTokenMalformed if the token cannot be parsed and ErrTokenExpired
// for every other verification failure.
func (s *TokenService) Validate(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
	}

	if _, err := model.ParseRole(string(claims.UserType)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	return claims, nil
}
