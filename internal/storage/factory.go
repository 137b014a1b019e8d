// Package storage selects and builds the proposal repository for the
// configured backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cristianoliveira/proposal-tracker/internal/config"
	"github.com/cristianoliveira/proposal-tracker/internal/domain"
	"github.com/cristianoliveira/proposal-tracker/internal/logging"
	"github.com/cristianoliveira/proposal-tracker/internal/storage/postgres"
	"github.com/cristianoliveira/proposal-tracker/internal/storage/sqlite"
	"github.com/cristianoliveira/proposal-tracker/internal/storage/supabase"
)

// ErrUnknownBackend is returned for a backend name no implementation serves.
var ErrUnknownBackend = errors.New("unknown storage backend")

var (
	_ domain.ProposalRepository = (*sqlite.SQLiteStorage)(nil)
	_ domain.ProposalRepository = (*postgres.Storage)(nil)
	_ domain.ProposalRepository = (*supabase.Client)(nil)
)

// Pinger is implemented by repositories that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewFromConfig creates the repository selected by the "backend" key.
// tokens supplies the session bearer token for the supabase backend.
func NewFromConfig(ctx context.Context, tokens supabase.TokenSource) (domain.ProposalRepository, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return NewForBackend(ctx, config.Get("backend", config.BackendSupabase), tokens)
}

// NewForBackend creates the repository for the named backend using the
// connection settings of the global configuration.
func NewForBackend(ctx context.Context, backend string, tokens supabase.TokenSource) (domain.ProposalRepository, error) {
	loc := config.Location()
	backend = strings.ToLower(strings.TrimSpace(backend))
	logging.Debug("storage: opening backend", "backend", backend)

	var (
		repo domain.ProposalRepository
		err  error
	)
	switch backend {
	case config.BackendSupabase:
		var client *supabase.Client
		client, err = supabase.New(supabase.Options{
			URL:        config.Get("supabase_url", ""),
			AnonKey:    config.Get("supabase_anon_key", ""),
			Tokens:     tokens,
			HTTPClient: NewHTTPClient(),
			Location:   loc,
		})
		if err == nil {
			repo = client
		}
	case config.BackendPostgres:
		var pg *postgres.Storage
		pg, err = postgres.Open(ctx, config.Get("database_url", ""), loc)
		if err == nil {
			repo = pg
		}
	case config.BackendSQLite:
		var lite *sqlite.SQLiteStorage
		lite, err = sqlite.NewSQLiteStorage(config.Get("sqlite_path", ""), loc)
		if err == nil {
			repo = lite
		}
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// NewHTTPClient returns an HTTP client using the configured timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: config.GetDuration("http_timeout", 30*time.Second)}
}
