package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cristianoliveira/proposal-tracker/internal/logging"
)

const authPath = "/auth/v1"

// GoTrueProvider signs in against a Supabase auth (GoTrue) endpoint with the
// password grant.
type GoTrueProvider struct {
	baseURL string
	anonKey string
	http    *http.Client
	now     func() time.Time
}

// NewGoTrueProvider creates a provider for the project at projectURL.
func NewGoTrueProvider(projectURL, anonKey string, client *http.Client) *GoTrueProvider {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &GoTrueProvider{
		baseURL: strings.TrimRight(projectURL, "/") + authPath,
		anonKey: anonKey,
		http:    client,
		now:     time.Now,
	}
}

// Name returns "supabase".
func (p *GoTrueProvider) Name() string { return "supabase" }

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
}

func (e errorResponse) message() string {
	for _, m := range []string{e.ErrorDescription, e.Msg, e.Error, e.ErrorCode} {
		if m != "" {
			return m
		}
	}
	return "unknown error"
}

// SignIn exchanges email and password for a session.
func (p *GoTrueProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	session, err := p.token(ctx, "password", body)
	if err != nil {
		var status statusError
		if errors.As(err, &status) && status.clientError() {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return nil, err
	}
	return session, nil
}

// Refresh exchanges the refresh token for a new session.
func (p *GoTrueProvider) Refresh(ctx context.Context, session *Session) (*Session, error) {
	if session == nil || session.RefreshToken == "" {
		return nil, ErrNoSession
	}
	refreshed, err := p.token(ctx, "refresh_token", map[string]string{"refresh_token": session.RefreshToken})
	if err != nil {
		var status statusError
		if errors.As(err, &status) && status.clientError() {
			return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
		}
		return nil, err
	}
	return refreshed, nil
}

// SignOut revokes the session's refresh tokens on the server.
func (p *GoTrueProvider) SignOut(ctx context.Context, session *Session) error {
	if session == nil || session.AccessToken == "" {
		return nil
	}
	req, err := p.newRequest(ctx, http.MethodPost, "/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("auth: logout: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return readStatusError(resp)
	}
	return nil
}

func (p *GoTrueProvider) token(ctx context.Context, grant string, body map[string]string) (*Session, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("auth: encode request: %w", err)
	}
	req, err := p.newRequest(ctx, http.MethodPost, "/token?grant_type="+grant, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: %s grant: %w", grant, err)
	}
	defer resp.Body.Close()
	logging.Debug("auth: token request", "grant", grant, "status", resp.StatusCode)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, readStatusError(resp)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("auth: decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, errors.New("auth: token response without access token")
	}
	return p.sessionFrom(tr), nil
}

func (p *GoTrueProvider) sessionFrom(tr tokenResponse) *Session {
	s := &Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		UserID:       tr.User.ID,
		Email:        tr.User.Email,
	}
	switch {
	case tr.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(tr.ExpiresAt, 0)
	case tr.ExpiresIn > 0:
		s.ExpiresAt = p.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	if claims, err := ParseClaims(tr.AccessToken); err == nil {
		if s.UserID == "" {
			s.UserID = claims.Subject
		}
		if s.Email == "" {
			s.Email = claims.Email
		}
		if s.ExpiresAt.IsZero() {
			s.ExpiresAt = claims.ExpiresAt
		}
	}
	return s
}

func (p *GoTrueProvider) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("auth: build request: %w", err)
	}
	req.Header.Set("apikey", p.anonKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// statusError is a non-2xx answer from the auth server.
type statusError struct {
	status  int
	message string
}

func (e statusError) Error() string {
	return fmt.Sprintf("auth: %d: %s", e.status, e.message)
}

func (e statusError) clientError() bool {
	return e.status >= 400 && e.status < 500 && e.status != http.StatusTooManyRequests
}

func readStatusError(resp *http.Response) error {
	var er errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&er)
	return statusError{status: resp.StatusCode, message: er.message()}
}
