// Package auth manages the signed-in session: obtaining it from an identity
// provider, refreshing it, persisting it between runs and notifying
// subscribers when it changes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidCredentials is returned when the provider rejects email and password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoSession is returned when an operation needs a session and there is none.
	ErrNoSession = errors.New("no session")
)

// expirySkew refreshes tokens slightly before they expire.
const expirySkew = time.Minute

// Session is an authenticated user session.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
}

// Expired reports whether the access token is expired, or about to be, at now.
// Sessions without an expiry never expire.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(expirySkew).Before(s.ExpiresAt)
}

// Provider is an identity backend.
type Provider interface {
	// Name identifies the provider in logs and session files.
	Name() string
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, session *Session) error
	Refresh(ctx context.Context, session *Session) (*Session, error)
}

// Claims holds the token claims the application reads.
type Claims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// ParseClaims reads claims from a JWT without verifying its signature.
// Use it only on tokens received from the provider.
func ParseClaims(token string) (Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Claims{}, fmt.Errorf("parse token: %w", err)
	}

	var out Claims
	out.Subject, _ = claims.GetSubject()
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	return out, nil
}
