// Package service holds the identity binding, token issuance, registration
// and the profile-scoped resource services used by the HTTP handlers.
package service

import "errors"

// ErrInvalidCredentials is returned when a login or refresh cannot be
// authenticated.  Handlers translate it into HTTP 401.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrProfileNotBound is returned by the Binder when no profile carries the
// caller's email.  Scoped services turn it into an empty result or a
// not-found; only the self-profile endpoint surfaces it directly.
var ErrProfileNotBound = errors.New("profile not found")

// ErrProfileExists is returned when a caller that already has a profile
// tries to create another one.
var ErrProfileExists = errors.New("profile already exists")

// ValidationError is a client error whose Message is safe to return as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// Registration rejections, in the order they are checked.
var (
	ErrMissingFields   = &ValidationError{Message: "Username, email, password, airline, and position are required"}
	ErrUsernameTaken   = &ValidationError{Message: "Username already exists"}
	ErrEmailTaken      = &ValidationError{Message: "Email already exists"}
	ErrInvalidPosition = &ValidationError{Message: "Invalid position"}
)
