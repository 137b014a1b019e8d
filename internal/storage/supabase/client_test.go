package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianoliveira/proposal-tracker/internal/domain"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

type capturedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   string
}

// fakeREST records every request and answers with status and body.
func fakeREST(t *testing.T, status int, body string) (*Client, *[]capturedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []capturedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   string(data),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	c, err := New(Options{
		URL:      srv.URL + "/",
		AnonKey:  "anon",
		Tokens:   staticToken("user-jwt"),
		Location: time.UTC,
	})
	require.NoError(t, err)
	return c, &seen
}

func TestNewRequiresURLAndKey(t *testing.T) {
	_, err := New(Options{URL: "https://x.supabase.co"})
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	c, seen := fakeREST(t, http.StatusOK, `[
		{"id":"1","client_name":"Acme","sent_date":"2024-05-10T00:00:00+00:00","value":1500.5,
		 "status":"approved","sent_via":"email","last_follow_up":"2024-05-12T00:00:00+00:00",
		 "expected_return_date":null,"notes":null,"archived":false}
	]`)

	list, err := c.List(context.Background(), domain.DefaultListOrder)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Acme", list[0].ClientName)
	assert.Equal(t, "2024-05-10", list[0].SentDay())
	assert.Equal(t, "1500.5", list[0].Value.String())
	assert.Equal(t, domain.StatusApproved, list[0].Status)
	assert.Nil(t, list[0].ExpectedReturnDate)

	req := (*seen)[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/rest/v1/proposals", req.Path)
	assert.Equal(t, []string{"sent_date.desc"}, req.Query["order"])
	assert.Equal(t, "anon", req.Header.Get("apikey"))
	assert.Equal(t, "Bearer user-jwt", req.Header.Get("Authorization"))
}

func TestListFallsBackToAnonKey(t *testing.T) {
	c, seen := fakeREST(t, http.StatusOK, `[]`)
	c.tokens = staticToken("")

	_, err := c.List(context.Background(), domain.DefaultListOrder)
	require.NoError(t, err)
	assert.Equal(t, "Bearer anon", (*seen)[0].Header.Get("Authorization"))
}

func TestContextTokenWins(t *testing.T) {
	c, seen := fakeREST(t, http.StatusOK, `[]`)

	_, err := c.List(WithAccessToken(context.Background(), "caller-jwt"), domain.DefaultListOrder)
	require.NoError(t, err)
	assert.Equal(t, "Bearer caller-jwt", (*seen)[0].Header.Get("Authorization"))
}

func TestInsert(t *testing.T) {
	c, seen := fakeREST(t, http.StatusCreated, `[{"id":"new-id","client_name":"Acme","sent_date":"2024-05-10","value":"1","status":"pending","archived":false}]`)

	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	id, err := c.Insert(context.Background(), domain.Proposal{
		ClientName:   "Acme",
		SentDate:     day,
		LastFollowUp: day,
		Value:        decimal.RequireFromString("1"),
		Status:       domain.StatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, "new-id", id)

	req := (*seen)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "return=representation", req.Header.Get("Prefer"))

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.Body), &body))
	assert.NotContains(t, body, "id")
	assert.Equal(t, "Acme", body["client_name"])
	assert.Equal(t, "2024-05-10T00:00:00Z", body["sent_date"])
	assert.Equal(t, "pending", body["status"])
}

func TestInsertValidatesLocally(t *testing.T) {
	c, seen := fakeREST(t, http.StatusCreated, `[]`)

	_, err := c.Insert(context.Background(), domain.Proposal{})
	assert.ErrorIs(t, err, domain.ErrInvalidProposal)
	assert.Empty(t, *seen)
}

func TestUpdateMany(t *testing.T) {
	c, seen := fakeREST(t, http.StatusOK, `[{"id":"a"},{"id":"b"}]`)

	err := c.UpdateMany(context.Background(), []string{"a", "b"}, domain.StatusPatch(domain.StatusRejected))
	require.NoError(t, err)

	req := (*seen)[0]
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, []string{`in.("a","b")`}, req.Query["id"])
	assert.JSONEq(t, `{"status":"rejected"}`, req.Body)

	err = c.UpdateMany(context.Background(), nil, domain.StatusPatch(domain.StatusRejected))
	assert.ErrorIs(t, err, domain.ErrEmptySelection)
}

func TestUpdateNotFound(t *testing.T) {
	c, seen := fakeREST(t, http.StatusOK, `[]`)

	err := c.Update(context.Background(), "x", domain.ArchivePatch(true))
	assert.ErrorIs(t, err, domain.ErrProposalNotFound)
	assert.Equal(t, []string{"eq.x"}, (*seen)[0].Query["id"])
	assert.JSONEq(t, `{"archived":true}`, (*seen)[0].Body)
}

func TestDelete(t *testing.T) {
	c, seen := fakeREST(t, http.StatusOK, `[{"id":"x"}]`)

	require.NoError(t, c.Delete(context.Background(), "x"))
	assert.Equal(t, http.MethodDelete, (*seen)[0].Method)
}

func TestAPIErrors(t *testing.T) {
	c, _ := fakeREST(t, http.StatusUnauthorized, `{"code":"PGRST301","message":"JWT expired"}`)

	_, err := c.List(context.Background(), domain.DefaultListOrder)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "JWT expired")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "PGRST301", apiErr.Code)
}

func TestServerErrorIsNotUnauthorized(t *testing.T) {
	c, _ := fakeREST(t, http.StatusInternalServerError, `not json`)

	err := c.Delete(context.Background(), "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "500")
}

func TestInFilter(t *testing.T) {
	assert.Equal(t, `in.("a")`, inFilter([]string{"a"}))
	assert.Equal(t, `in.("a\"b","c")`, inFilter([]string{`a"b`, "c"}))
}
