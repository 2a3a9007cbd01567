package auth

import (
	"context"
	"crypto/subtle"
	"errors"
)

// ErrInvalidCredentials covers both unknown accounts and wrong
// passwords; callers must not distinguish the two in their responses.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Provider authenticates the admin surface. Kept narrow so tests can
// substitute a fake.
type Provider interface {
	Authenticate(ctx context.Context, email, password string) error
}

// StaticProvider checks against a single configured admin credential
// pair. Comparison is constant-time on both fields.
type StaticProvider struct {
	Email    string
	Password string
}

func (p StaticProvider) Authenticate(_ context.Context, email, password string) error {
	if p.Email == "" || p.Password == "" {
		return ErrInvalidCredentials
	}
	emailOK := subtle.ConstantTimeCompare([]byte(p.Email), []byte(email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(p.Password), []byte(password)) == 1
	if !emailOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}
