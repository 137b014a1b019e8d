package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianoliveira/proposal-tracker/internal/domain"
	"github.com/cristianoliveira/proposal-tracker/internal/storage/sqlite"
)

var testNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repo    *sqlite.SQLiteStorage
	handler http.Handler
	ids     map[string]string // client name -> id
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := sqlite.NewSQLiteStorage(filepath.Join(t.TempDir(), "proposals.db"), time.UTC)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	f := &fixture{repo: repo, ids: map[string]string{}}
	seed := []struct {
		client, sent, value string
		status              domain.Status
		archived            bool
	}{
		{"Acme", "2024-05-01", "100", domain.StatusPending, false},
		{"Beta", "2024-04-10", "2500", domain.StatusApproved, false},
		{"Gamma", "2024-01-05", "50", domain.StatusRejected, true},
	}
	for _, s := range seed {
		day, err := domain.ParseDate(s.sent, time.UTC)
		require.NoError(t, err)
		id, err := repo.Insert(context.Background(), domain.Proposal{
			ClientName:   s.client,
			SentDate:     day,
			Value:        decimal.RequireFromString(s.value),
			Status:       s.status,
			LastFollowUp: day,
			Archived:     s.archived,
		})
		require.NoError(t, err)
		f.ids[s.client] = id
	}

	api := NewHandler(repo, HandlerOptions{ItemsPerPage: 100, Location: time.UTC, Now: func() time.Time { return testNow }})
	f.handler = NewRouter(api, NewHealthHandler(repo), MetricsMiddleware(), LoggingMiddleware())
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) listResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func clients(list listResponse) []string {
	names := make([]string, 0, len(list.Proposals))
	for _, r := range list.Proposals {
		names = append(names, r.ClientName)
	}
	return names
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error.Code
}

func TestListProposals(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"active partition", "", []string{"Acme", "Beta"}},
		{"archived partition", "?archived=true", []string{"Gamma"}},
		{"search is case insensitive", "?search=ACM", []string{"Acme"}},
		{"sort by value descending", "?sort=value&order=desc", []string{"Beta", "Acme"}},
		{"sort by client name", "?sort=clientName", []string{"Acme", "Beta"}},
		{"period preset", "?period=last-30", []string{"Acme"}},
		{"date bounds", "?from=2024-04-01&to=2024-04-30", []string{"Beta"}},
		{"value bounds", "?min=1000", []string{"Beta"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := decodeList(t, f.do(t, http.MethodGet, "/api/v1/proposals"+tt.query, ""))
			if strings.Contains(tt.query, "sort=") {
				assert.Equal(t, tt.want, clients(list))
			} else {
				assert.ElementsMatch(t, tt.want, clients(list))
			}
			assert.Equal(t, len(tt.want), list.Total)
		})
	}
}

func TestListProposalsClampsPage(t *testing.T) {
	f := newFixture(t)

	list := decodeList(t, f.do(t, http.MethodGet, "/api/v1/proposals?page=9", ""))
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 1, list.TotalPages)
	assert.Len(t, list.Proposals, 2)
}

func TestListProposalsRejectsBadQuery(t *testing.T) {
	f := newFixture(t)

	for _, query := range []string{"?period=someday", "?sort=color", "?order=up", "?min=abc", "?from=15/05/2024", "?archived=maybe", "?page=two"} {
		t.Run(query, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, "/api/v1/proposals"+query, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, CodeValidationError, errorCode(t, rec))
		})
	}
}

func TestCreateProposal(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/proposals",
		`{"client_name":"Delta","sent_date":"10/05/2024","value":"1.234,50","sent_via":"email"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created createdResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	list := decodeList(t, f.do(t, http.MethodGet, "/api/v1/proposals?search=delta", ""))
	require.Len(t, list.Proposals, 1)
	got := list.Proposals[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "pending", got.Status)
	assert.True(t, decimal.RequireFromString("1234.50").Equal(got.Value))
}

func TestCreateProposalValidation(t *testing.T) {
	f := newFixture(t)

	for name, body := range map[string]string{
		"missing sent date": `{"client_name":"Delta"}`,
		"bad status":        `{"client_name":"Delta","sent_date":"2024-05-10","status":"lost"}`,
		"unknown field":     `{"client_name":"Delta","sent_date":"2024-05-10","owner":"me"}`,
		"not json":          `client_name=Delta`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/v1/proposals", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, CodeValidationError, errorCode(t, rec))
		})
	}
}

func TestUpdateProposal(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPut, "/api/v1/proposals/"+f.ids["Acme"], `{"status":"approved","notes":"signed"}`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	list := decodeList(t, f.do(t, http.MethodGet, "/api/v1/proposals?search=acme", ""))
	require.Len(t, list.Proposals, 1)
	assert.Equal(t, "approved", list.Proposals[0].Status)
	require.NotNil(t, list.Proposals[0].Notes)
	assert.Equal(t, "signed", *list.Proposals[0].Notes)

	rec = f.do(t, http.MethodPut, "/api/v1/proposals/missing", `{"status":"approved"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, errorCode(t, rec))

	rec = f.do(t, http.MethodPut, "/api/v1/proposals/"+f.ids["Acme"], `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteProposal(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodDelete, "/api/v1/proposals/"+f.ids["Beta"], "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"Acme"}, clients(decodeList(t, f.do(t, http.MethodGet, "/api/v1/proposals", ""))))

	rec = f.do(t, http.MethodDelete, "/api/v1/proposals/"+f.ids["Beta"], "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBulkStatus(t *testing.T) {
	f := newFixture(t)

	body := `{"ids":["` + f.ids["Acme"] + `","` + f.ids["Beta"] + `"],"status":"rejected"}`
	rec := f.do(t, http.MethodPost, "/api/v1/proposals/bulk/status", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"updated":2}`, rec.Body.String())

	for _, r := range decodeList(t, f.do(t, http.MethodGet, "/api/v1/proposals", "")).Proposals {
		assert.Equal(t, "rejected", r.Status)
	}

	rec = f.do(t, http.MethodPost, "/api/v1/proposals/bulk/status", `{"ids":[" "],"status":"approved"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/proposals/bulk/status", `{"ids":["x"],"status":"won"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkArchiveAndRestore(t *testing.T) {
	f := newFixture(t)
	body := func(archived string) string {
		return `{"ids":["` + f.ids["Acme"] + `"],"archived":` + archived + `}`
	}

	rec := f.do(t, http.MethodPost, "/api/v1/proposals/bulk/archive", body("true"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"Beta"}, clients(decodeList(t, f.do(t, http.MethodGet, "/api/v1/proposals", ""))))

	rec = f.do(t, http.MethodPost, "/api/v1/proposals/bulk/archive", body("false"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []string{"Acme", "Beta"}, clients(decodeList(t, f.do(t, http.MethodGet, "/api/v1/proposals", ""))))

	rec = f.do(t, http.MethodPost, "/api/v1/proposals/bulk/archive", `{"ids":["x"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "archived is required")
}

func TestSummary(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/summary", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Total struct {
			Count int `json:"count"`
		} `json:"total"`
		ApprovalRate float64        `json:"approval_rate"`
		FollowUps    map[string]int `json:"follow_ups"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total.Count, "archived proposals are not summarized")
	assert.InDelta(t, 1.0, body.ApprovalRate, 0.0001)
	assert.NotNil(t, body.FollowUps)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("database is down") }

func TestHealth(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health/ready", "").Code)

	rec := httptest.NewRecorder()
	NewHealthHandler(failingPinger{}).Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "database is down")
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/api/v1/proposals", "")

	rec := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "proposals_http_requests_total")
	assert.Contains(t, rec.Body.String(), `path="/api/v1/proposals"`)
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v2/nothing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, errorCode(t, rec))
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"/health/live":                  "/health/live",
		"/api/v1/proposals":             "/api/v1/proposals",
		"/api/v1/proposals/":            "/api/v1/proposals/",
		"/api/v1/proposals/bulk/status": "/api/v1/proposals/bulk/status",
		"/api/v1/proposals/0b6f-42":     "/api/v1/proposals/{id}",
		"/api/v1/summary":               "/api/v1/summary",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizePath(in), in)
	}
}

func TestNewHandlerPanicsOnNilRepository(t *testing.T) {
	assert.Panics(t, func() { NewHandler(nil, HandlerOptions{}) })
}

func TestRunStopsOnContextCancel(t *testing.T) {
	srv := New(Options{Addr: "127.0.0.1:0"}, http.NotFoundHandler())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
