package auth

import (
	"context"
	"os/user"
	"strings"
)

// LocalProvider is the provider for single-user local storage. Every sign-in
// succeeds and sessions never expire.
type LocalProvider struct{}

// Name returns "local".
func (LocalProvider) Name() string { return "local" }

// SignIn returns a session for email, or for the OS user when email is empty.
func (LocalProvider) SignIn(_ context.Context, email, _ string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		email = DefaultLocalUser()
	}
	return &Session{UserID: "local", Email: email}, nil
}

// SignOut does nothing.
func (LocalProvider) SignOut(context.Context, *Session) error { return nil }

// Refresh returns the session unchanged.
func (LocalProvider) Refresh(_ context.Context, session *Session) (*Session, error) {
	if session == nil {
		return nil, ErrNoSession
	}
	return session, nil
}

// DefaultLocalUser names the local session after the OS user.
func DefaultLocalUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}
