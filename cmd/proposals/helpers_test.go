package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/cristianoliveira/proposal-tracker/internal/auth"
	"github.com/cristianoliveira/proposal-tracker/internal/domain"
)

var testNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedProposals() []domain.Proposal {
	return []domain.Proposal{
		{ID: "p1", ClientName: "Acme", SentDate: day(2024, 5, 1), LastFollowUp: day(2024, 5, 1),
			Value: decimal.NewFromInt(100), Status: domain.StatusPending},
		{ID: "p2", ClientName: "Beta Ltda", SentDate: day(2024, 4, 10), LastFollowUp: day(2024, 4, 10),
			Value: decimal.NewFromInt(2500), Status: domain.StatusApproved},
		{ID: "p3", ClientName: "Gamma", SentDate: day(2024, 1, 5), LastFollowUp: day(2024, 1, 5),
			Value: decimal.NewFromInt(50), Status: domain.StatusRejected, Archived: true},
		{ID: "p4", ClientName: "Ação Digital", SentDate: day(2024, 5, 10), LastFollowUp: day(2024, 5, 10),
			Value: decimal.NewFromInt(900), Status: domain.StatusPending},
	}
}

// fakeClient records every call the commands make.
type fakeClient struct {
	proposals []domain.Proposal
	err       error
	perPage   int
	sort      domain.SortOptions

	created   []domain.Proposal
	saved     map[string]domain.Patch
	deleted   []string
	archived  []string
	archiveTo *bool
	status    domain.Status
	statusIDs []string

	session   *auth.Session
	email     string
	password  string
	signedOut bool
	served    string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		proposals: seedProposals(),
		perPage:   100,
		sort:      domain.DefaultSortOptions(),
		saved:     map[string]domain.Patch{},
	}
}

func (f *fakeClient) Proposals(context.Context) ([]domain.Proposal, error) {
	return f.proposals, f.err
}

func (f *fakeClient) Now() time.Time { return testNow }
func (f *fakeClient) Location() *time.Location { return time.UTC }
func (f *fakeClient) ItemsPerPage() int { return f.perPage }
func (f *fakeClient) SortPreference() domain.SortOptions { return f.sort }
func (f *fakeClient) Version() string { return "1.2.3" }

func (f *fakeClient) Create(_ context.Context, p domain.Proposal) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, p)
	return "new-id", nil
}

func (f *fakeClient) Save(_ context.Context, id string, patch domain.Patch) error {
	if f.err != nil {
		return f.err
	}
	f.saved[id] = patch
	return nil
}

func (f *fakeClient) Delete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeClient) BulkSetArchived(_ context.Context, ids []string, archived bool) error {
	f.archived = ids
	f.archiveTo = &archived
	return f.err
}

func (f *fakeClient) BulkSetStatus(_ context.Context, ids []string, status domain.Status) error {
	f.statusIDs = ids
	f.status = status
	return f.err
}

func (f *fakeClient) Session(context.Context) (*auth.Session, error) {
	return f.session, f.err
}

func (f *fakeClient) SignIn(_ context.Context, email, password string) (*auth.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.email, f.password = email, password
	return &auth.Session{Email: email}, nil
}

func (f *fakeClient) SignOut(context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.signedOut = true
	return nil
}

func (f *fakeClient) Serve(_ context.Context, addr string) error {
	f.served = addr
	return f.err
}

func (f *fakeClient) RunTUI(context.Context) error {
	return f.err
}

// run executes c with args and returns what it wrote to stdout.
func run(t *testing.T, c *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&errOut)
	c.SetIn(strings.NewReader(stdin))
	c.SetArgs(args)
	err := c.Execute()
	return out.String(), err
}

// ids returns the first column of simple formatter output.
func ids(t *testing.T, out string) []string {
	t.Helper()
	var got []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		got = append(got, strings.SplitN(line, "\t", 2)[0])
	}
	require.NotNil(t, got, "no rows in %q", out)
	return got
}
