package auth

import (
	"context"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fairyhunter13/coupon-marketplace/internal/model"
)

// Verifier checks credentials for a role.
type Verifier interface {
	Verify(ctx context.Context, role model.Role, email, password string) (model.Principal, bool, error)
}

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Issue(p model.Principal) (string, error)
}

// LoginManager turns verified credentials into a signed identity.
// No session is kept between calls.
type LoginManager struct {
	verifier Verifier
	tokens   TokenIssuer
}

// NewLoginManager creates a LoginManager.
func NewLoginManager(verifier Verifier, tokens TokenIssuer) *LoginManager {
	return &LoginManager{verifier: verifier, tokens: tokens}
}

// Login verifies the credentials for the claimed role and returns the identity with a token.
// Returns:
//   - ErrMissingCredentials if email, password or role is empty
//   - nil, nil if no identity of that role matches
func (m *LoginManager) Login(ctx context.Context, email, password string, role model.Role) (*model.UserDetails, error) {
	if email == "" || password == "" || role == "" {
		return nil, ErrMissingCredentials
	}

	p, ok, err := m.verifier.Verify(ctx, role, email, password)
	if err != nil {
		return nil, fmt.Errorf("verify %s credentials: %w", role.Lower(), err)
	}
	if !ok {
		return nil, nil
	}

	token, err := m.tokens.Issue(p)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &model.UserDetails{
		ID:       p.ID,
		Email:    p.Email,
		Name:     displayName(p.Name),
		UserType: p.Role,
		Token:    token,
	}, nil
}

// displayName capitalises every word, leaving the rest of each word untouched.
// A Caser is stateful, so one is built per call.
func displayName(name string) string {
	return cases.Title(language.Und, cases.NoLower).String(name)
}
