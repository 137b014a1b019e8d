// Package supabase implements the proposal repository on a hosted PostgREST
// endpoint, authenticating with the project anon key and the user session.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cristianoliveira/proposal-tracker/internal/domain"
	"github.com/cristianoliveira/proposal-tracker/internal/logging"
	"github.com/cristianoliveira/proposal-tracker/internal/storage/record"
)

const restPath = "/rest/v1/"

// ErrUnauthorized is returned when the server rejects the credentials.
var ErrUnauthorized = errors.New("supabase storage: unauthorized")

// TokenSource supplies the bearer token of the signed-in user. An empty
// token falls back to the anon key.
type TokenSource interface {
	AccessToken() string
}

type tokenKey struct{}

// WithAccessToken returns a context whose requests authenticate with token
// instead of the client's TokenSource.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// APIError is a PostgREST error response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("supabase storage: %d %s: %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("supabase storage: %d: %s", e.Status, msg)
}

// Unwrap maps auth failures to ErrUnauthorized.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}

// Options configures a Client.
type Options struct {
	URL        string
	AnonKey    string
	Tokens     TokenSource
	HTTPClient *http.Client
	Location   *time.Location
}

var _ domain.ProposalRepository = (*Client)(nil)

// Client talks to the proposals table through PostgREST.
type Client struct {
	base    *url.URL
	anonKey string
	tokens  TokenSource
	http    *http.Client
	loc     *time.Location
}

// New creates a Client. URL is the project URL, without the rest path.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.URL) == "" || strings.TrimSpace(opts.AnonKey) == "" {
		return nil, errors.New("supabase storage: url and anon key are required")
	}
	base, err := url.Parse(strings.TrimRight(opts.URL, "/") + restPath)
	if err != nil {
		return nil, fmt.Errorf("supabase storage: parse url: %w", err)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Client{base: base, anonKey: opts.AnonKey, tokens: opts.Tokens, http: httpClient, loc: loc}, nil
}

// Close drops idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// Ping checks the REST endpoint answers.
func (c *Client) Ping(ctx context.Context) error {
	query := url.Values{"select": {record.ColumnID}, "limit": {"1"}}
	return c.do(ctx, http.MethodGet, query, nil, nil)
}

// List returns every proposal in the requested order.
func (c *Client) List(ctx context.Context, order domain.ListOrder) ([]domain.Proposal, error) {
	column, err := record.OrderColumn(order)
	if err != nil {
		return nil, fmt.Errorf("supabase storage: list: %w", err)
	}
	direction := "asc"
	if order.Descending {
		direction = "desc"
	}
	query := url.Values{
		"select": {"*"},
		"order":  {column + "." + direction},
	}

	var rows []record.Record
	if err := c.do(ctx, http.MethodGet, query, nil, &rows); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	proposals := make([]domain.Proposal, 0, len(rows))
	for _, r := range rows {
		p, err := r.Proposal(c.loc)
		if err != nil {
			return nil, fmt.Errorf("supabase storage: %w", err)
		}
		proposals = append(proposals, p)
	}
	logging.Debug("supabase storage: listed proposals", "count", len(proposals))
	return proposals, nil
}

// Insert stores a new proposal and returns the id assigned by the server.
func (c *Client) Insert(ctx context.Context, p domain.Proposal) (string, error) {
	if err := p.Validate(); err != nil {
		return "", fmt.Errorf("supabase storage: insert: %w", err)
	}

	var created []record.Record
	if err := c.do(ctx, http.MethodPost, nil, record.FromProposal(p), &created); err != nil {
		return "", fmt.Errorf("insert: %w", err)
	}
	if len(created) == 0 {
		return "", errors.New("supabase storage: insert: empty response")
	}
	return created[0].ID, nil
}

// Update applies a patch to a single proposal.
func (c *Client) Update(ctx context.Context, id string, patch domain.Patch) error {
	n, err := c.update(ctx, url.Values{record.ColumnID: {"eq." + id}}, patch)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("supabase storage: update: %w: id %s", domain.ErrProposalNotFound, id)
	}
	return nil
}

// UpdateMany applies the same patch to every listed proposal in one request.
func (c *Client) UpdateMany(ctx context.Context, ids []string, patch domain.Patch) error {
	if len(ids) == 0 {
		return fmt.Errorf("supabase storage: update many: %w", domain.ErrEmptySelection)
	}
	_, err := c.update(ctx, url.Values{record.ColumnID: {inFilter(ids)}}, patch)
	return err
}

func (c *Client) update(ctx context.Context, query url.Values, patch domain.Patch) (int, error) {
	if err := patch.Validate(); err != nil {
		return 0, fmt.Errorf("supabase storage: update: %w", err)
	}
	query.Set("select", record.ColumnID)

	var updated []record.Record
	if err := c.do(ctx, http.MethodPatch, query, record.Map(record.Fields(patch)), &updated); err != nil {
		return 0, fmt.Errorf("update: %w", err)
	}
	return len(updated), nil
}

// Delete removes a proposal.
func (c *Client) Delete(ctx context.Context, id string) error {
	query := url.Values{record.ColumnID: {"eq." + id}, "select": {record.ColumnID}}
	var deleted []record.Record
	if err := c.do(ctx, http.MethodDelete, query, nil, &deleted); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if len(deleted) == 0 {
		return fmt.Errorf("supabase storage: delete: %w: id %s", domain.ErrProposalNotFound, id)
	}
	return nil
}

// inFilter renders a PostgREST in.(...) filter with quoted values.
func inFilter(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = `"` + strings.ReplaceAll(id, `"`, `\"`) + `"`
	}
	return "in.(" + strings.Join(quoted, ",") + ")"
}

func (c *Client) do(ctx context.Context, method string, query url.Values, body, out any) error {
	endpoint := *c.base
	endpoint.Path += record.Table
	endpoint.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("supabase storage: encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("supabase storage: build request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer(ctx))
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("supabase storage: %s: %w", method, err)
	}
	defer resp.Body.Close()
	logging.Debug("supabase storage: request", "method", method, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("supabase storage: decode response: %w", err)
	}
	return nil
}

func (c *Client) bearer(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey{}).(string); ok && token != "" {
		return token
	}
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			return token
		}
	}
	return c.anonKey
}
