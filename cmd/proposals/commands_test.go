package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianoliveira/proposal-tracker/internal/auth"
	"github.com/cristianoliveira/proposal-tracker/internal/domain"
)

func TestAddCreatesProposal(t *testing.T) {
	client := newFakeClient()

	out, err := run(t, NewAddCmd(client), "",
		"--client", "  Delta  ", "--sent", "02/05/2024", "--value", "1.500,50", "--via", "email")
	require.NoError(t, err)
	assert.Equal(t, "new-id\n", out)

	require.Len(t, client.created, 1)
	p := client.created[0]
	assert.Equal(t, "Delta", p.ClientName)
	assert.Equal(t, day(2024, 5, 2), p.SentDate)
	assert.Equal(t, p.SentDate, p.LastFollowUp, "follow-up defaults to the sent date")
	assert.True(t, decimal.RequireFromString("1500.50").Equal(p.Value))
	assert.Equal(t, domain.StatusPending, p.Status)
	assert.Nil(t, p.ExpectedReturnDate)
}

func TestAddValidation(t *testing.T) {
	tests := map[string][]string{
		"missing client": {"--sent", "2024-05-02"},
		"missing sent":   {"--client", "Delta"},
		"bad date":       {"--client", "Delta", "--sent", "2024-13-40"},
		"bad value":      {"--client", "Delta", "--sent", "2024-05-02", "--value", "lots"},
		"bad status":     {"--client", "Delta", "--sent", "2024-05-02", "--status", "won"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			client := newFakeClient()
			_, err := run(t, NewAddCmd(client), "", args...)
			assert.Error(t, err)
			assert.Empty(t, client.created)
		})
	}
}

func TestEditSendsOnlyGivenFields(t *testing.T) {
	client := newFakeClient()

	_, err := run(t, NewEditCmd(client), "", "p1", "--status", "approved", "--expected-return", "2024-06-01")
	require.NoError(t, err)

	patch, ok := client.saved["p1"]
	require.True(t, ok)
	require.NotNil(t, patch.Status)
	assert.Equal(t, domain.StatusApproved, *patch.Status)
	require.NotNil(t, patch.ExpectedReturnDate)
	require.NotNil(t, *patch.ExpectedReturnDate)
	assert.Equal(t, day(2024, 6, 1), **patch.ExpectedReturnDate)
	assert.Nil(t, patch.ClientName)
	assert.Nil(t, patch.Value)
	assert.Nil(t, patch.Archived)
}

func TestEditClearsExpectedReturn(t *testing.T) {
	client := newFakeClient()

	_, err := run(t, NewEditCmd(client), "", "p1", "--clear-expected-return")
	require.NoError(t, err)

	patch := client.saved["p1"]
	require.NotNil(t, patch.ExpectedReturnDate)
	assert.Nil(t, *patch.ExpectedReturnDate)
}

func TestEditRejects(t *testing.T) {
	tests := map[string][]string{
		"no id":           {"--status", "approved"},
		"nothing to do":   {"p1"},
		"bad value":       {"p1", "--value", "-5"},
		"both expected":   {"p1", "--expected-return", "2024-06-01", "--clear-expected-return"},
		"too many ids":    {"p1", "p2", "--status", "approved"},
		"bad follow-up":   {"p1", "--follow-up", "yesterday"},
		"bad sent date":   {"p1", "--sent", "2024/05/01"},
		"bad status name": {"p1", "--status", "maybe"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			client := newFakeClient()
			_, err := run(t, NewEditCmd(client), "", args...)
			assert.Error(t, err)
			assert.Empty(t, client.saved)
		})
	}
}

func TestDeleteConfirmation(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		args    []string
		deleted []string
	}{
		{"confirmed", "y\n", []string{"p1"}, []string{"p1"}},
		{"confirmed in full", "YES\n", []string{"p1"}, []string{"p1"}},
		{"declined", "n\n", []string{"p1"}, nil},
		{"no answer", "", []string{"p1"}, nil},
		{"skip prompt", "", []string{"p1", "--yes"}, []string{"p1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeClient()
			_, err := run(t, NewDeleteCmd(client), tt.stdin, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.deleted, client.deleted)
		})
	}
}

func TestDeleteError(t *testing.T) {
	client := newFakeClient()
	client.err = domain.ErrProposalNotFound

	_, err := run(t, NewDeleteCmd(client), "", "missing", "-y")
	assert.ErrorIs(t, err, domain.ErrProposalNotFound)
}

func TestArchiveAndRestore(t *testing.T) {
	client := newFakeClient()

	_, err := run(t, NewArchiveCmd(client), "", "p2", "p1", "p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, client.archived)
	require.NotNil(t, client.archiveTo)
	assert.True(t, *client.archiveTo)

	_, err = run(t, NewRestoreCmd(client), "", "p3")
	require.NoError(t, err)
	assert.Equal(t, []string{"p3"}, client.archived)
	assert.False(t, *client.archiveTo)

	_, err = run(t, NewArchiveCmd(client), "")
	assert.Error(t, err, "at least one id is required")
}

func TestSetStatus(t *testing.T) {
	client := newFakeClient()

	_, err := run(t, NewSetStatusCmd(client), "", "rejected", "p4", "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, client.status)
	assert.Equal(t, []string{"p1", "p4"}, client.statusIDs)

	client = newFakeClient()
	_, err = run(t, NewSetStatusCmd(client), "", "won", "p1")
	assert.Error(t, err)
	assert.Nil(t, client.statusIDs)
}

func TestLoginPasswordSources(t *testing.T) {
	t.Run("flag", func(t *testing.T) {
		client := newFakeClient()
		_, err := run(t, NewLoginCmd(client), "", "--email", "ana@example.com", "--password", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", client.email)
		assert.Equal(t, "s3cret", client.password)
	})
	t.Run("environment", func(t *testing.T) {
		t.Setenv(passwordEnv, "from-env")
		client := newFakeClient()
		_, err := run(t, NewLoginCmd(client), "", "--email", "ana@example.com")
		require.NoError(t, err)
		assert.Equal(t, "from-env", client.password)
	})
	t.Run("stdin", func(t *testing.T) {
		t.Setenv(passwordEnv, "")
		client := newFakeClient()
		_, err := run(t, NewLoginCmd(client), "from-stdin\r\n", "--email", "ana@example.com")
		require.NoError(t, err)
		assert.Equal(t, "from-stdin", client.password)
	})
}

func TestReadPasswordFromPipe(t *testing.T) {
	var prompt bytes.Buffer
	assert.Equal(t, "piped secret", readPassword(strings.NewReader("piped secret\nignored\n"), &prompt))
	assert.Equal(t, "Password: ", prompt.String())

	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	_, err = f.WriteString("from-file\n")
	require.NoError(t, err)
	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)

	assert.Equal(t, "from-file", readPassword(f, io.Discard), "a regular file is not a terminal")
	assert.Empty(t, readPassword(strings.NewReader(""), io.Discard))
}

func TestLoginRejected(t *testing.T) {
	client := newFakeClient()
	client.err = auth.ErrInvalidCredentials

	_, err := run(t, NewLoginCmd(client), "", "--email", "ana@example.com", "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check email and password")
}

func TestLogout(t *testing.T) {
	client := newFakeClient()
	_, err := run(t, NewLogoutCmd(client), "")
	require.NoError(t, err)
	assert.True(t, client.signedOut)

	client = newFakeClient()
	client.err = auth.ErrNoSession
	_, err = run(t, NewLogoutCmd(client), "")
	assert.NoError(t, err, "signing out without a session is not an error")

	client = newFakeClient()
	client.err = errors.New("network down")
	_, err = run(t, NewLogoutCmd(client), "")
	assert.EqualError(t, err, "network down")
}

func TestWhoami(t *testing.T) {
	client := newFakeClient()
	client.session = &auth.Session{Email: "ana@example.com", ExpiresAt: testNow.Add(time.Hour)}

	out, err := run(t, NewWhoamiCmd(client), "")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com\n", out)

	client.session = nil
	_, err = run(t, NewWhoamiCmd(client), "")
	assert.EqualError(t, err, "not signed in")
}

func TestServeUsesAddrFlag(t *testing.T) {
	client := newFakeClient()

	_, err := run(t, NewServeCmd(client), "", "--addr", "127.0.0.1:9999")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", client.served)
}

func TestVersion(t *testing.T) {
	out, err := run(t, NewVersionCmd(newFakeClient()), "")
	require.NoError(t, err)
	assert.Equal(t, "proposals version 1.2.3\n", out)
}

func TestConstructorsPanicWithoutClient(t *testing.T) {
	assert.Panics(t, func() { NewAddCmd(nil) })
	assert.Panics(t, func() { NewEditCmd(nil) })
	assert.Panics(t, func() { NewDeleteCmd(nil) })
	assert.Panics(t, func() { NewArchiveCmd(nil) })
	assert.Panics(t, func() { NewSetStatusCmd(nil) })
	assert.Panics(t, func() { NewLoginCmd(nil) })
	assert.Panics(t, func() { NewLogoutCmd(nil) })
	assert.Panics(t, func() { NewWhoamiCmd(nil) })
	assert.Panics(t, func() { NewServeCmd(nil) })
	assert.Panics(t, func() { NewTUICmd(nil) })
	assert.Panics(t, func() { NewVersionCmd(nil) })
}
