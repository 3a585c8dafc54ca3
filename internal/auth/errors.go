package auth

import "errors"

var (
	// ErrTokenExpired is returned for any token that fails verification: expired,
	// tampered or signed with another key. Callers cannot tell these apart.
	ErrTokenExpired = errors.New("token expired or invalid")

	// ErrTokenMalformed is returned when a token cannot be parsed at all
	ErrTokenMalformed = errors.New("token malformed")

	// ErrMissingCredentials is returned when email, password or user type is empty
	ErrMissingCredentials = errors.New("email, password and user type are required")

	// ErrInvalidCredentials is returned when a credential check is called with unusable input
	ErrInvalidCredentials = errors.New("invalid credentials")
)
