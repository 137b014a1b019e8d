package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cristianoliveira/proposal-tracker/internal/app"
	"github.com/cristianoliveira/proposal-tracker/internal/auth"
	"github.com/cristianoliveira/proposal-tracker/internal/config"
	"github.com/cristianoliveira/proposal-tracker/internal/domain"
	"github.com/cristianoliveira/proposal-tracker/internal/logging"
	"github.com/cristianoliveira/proposal-tracker/internal/notify"
	"github.com/cristianoliveira/proposal-tracker/internal/server"
	"github.com/cristianoliveira/proposal-tracker/internal/settings"
	"github.com/cristianoliveira/proposal-tracker/internal/storage"
	"github.com/cristianoliveira/proposal-tracker/internal/tui/state"
	"github.com/cristianoliveira/proposal-tracker/internal/version"
)

// cliClient builds the backend, session and app state on first use and
// serves every command from them. One command runs per process, so the
// notification sink is fixed by the first caller.
type cliClient struct {
	mu       sync.Mutex
	repo     domain.ProposalRepository
	sessions *auth.Manager
	app      *app.App
}

var client = &cliClient{}

func (c *cliClient) open(ctx context.Context, sink notify.Sink) (*app.App, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.app != nil {
		return c.app, nil
	}

	httpClient := storage.NewHTTPClient()
	sessions := auth.NewManagerFromConfig(httpClient)
	repo, err := storage.NewFromConfig(ctx, sessions)
	if err != nil {
		return nil, err
	}

	var opts []app.Option
	if _, local := sessions.Provider().(auth.LocalProvider); local {
		opts = append(opts, app.WithAutoSignIn())
	}
	a := app.New(repo, sessions, sink, opts...)
	if err := a.Start(ctx); err != nil {
		_ = repo.Close()
		return nil, err
	}

	c.repo, c.sessions, c.app = repo, sessions, a
	return a, nil
}

func (c *cliClient) cli(ctx context.Context) (*app.App, error) {
	return c.open(ctx, notify.NewDefaultCLISink())
}

// Close stops the app and closes the repository.
func (c *cliClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.app != nil {
		c.app.Stop()
	}
	if c.repo != nil {
		return c.repo.Close()
	}
	return nil
}

func (c *cliClient) Now() time.Time {
	return time.Now().In(config.Location())
}

func (c *cliClient) Location() *time.Location {
	return config.Location()
}

func (c *cliClient) ItemsPerPage() int {
	return config.GetInt("items_per_page", 100)
}

// SortPreference returns the sort the TUI last persisted.
func (c *cliClient) SortPreference() domain.SortOptions {
	store, err := settings.OpenDefault()
	if err != nil {
		logging.Debug("cli: preferences unavailable", "error", err)
		opts := domain.DefaultSortOptions()
		opts.Locale = config.Get("locale", domain.DefaultLocale)
		return opts
	}
	return store.LoadSort(config.Get("locale", domain.DefaultLocale))
}

// Proposals returns the full list, fetching it when the session restore
// did not already.
func (c *cliClient) Proposals(ctx context.Context) ([]domain.Proposal, error) {
	a, err := c.cli(ctx)
	if err != nil {
		return nil, err
	}
	if !a.Fetched() {
		if err := a.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return a.Proposals(), nil
}

func (c *cliClient) Create(ctx context.Context, p domain.Proposal) (string, error) {
	a, err := c.cli(ctx)
	if err != nil {
		return "", err
	}
	return a.Create(ctx, p)
}

func (c *cliClient) Save(ctx context.Context, id string, patch domain.Patch) error {
	a, err := c.cli(ctx)
	if err != nil {
		return err
	}
	return a.Save(ctx, id, patch)
}

func (c *cliClient) Delete(ctx context.Context, id string) error {
	a, err := c.cli(ctx)
	if err != nil {
		return err
	}
	return a.Delete(ctx, id)
}

func (c *cliClient) BulkSetArchived(ctx context.Context, ids []string, archived bool) error {
	a, err := c.cli(ctx)
	if err != nil {
		return err
	}
	return a.BulkSetArchived(ctx, ids, archived)
}

func (c *cliClient) BulkSetStatus(ctx context.Context, ids []string, status domain.Status) error {
	a, err := c.cli(ctx)
	if err != nil {
		return err
	}
	return a.BulkSetStatus(ctx, ids, status)
}

// Session restores the persisted session without touching the backend.
func (c *cliClient) Session(ctx context.Context) (*auth.Session, error) {
	sessions := auth.NewManagerFromConfig(storage.NewHTTPClient())
	if err := sessions.Load(ctx); err != nil {
		return nil, err
	}
	return sessions.Session(), nil
}

func (c *cliClient) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	return auth.NewManagerFromConfig(storage.NewHTTPClient()).SignIn(ctx, email, password)
}

func (c *cliClient) SignOut(ctx context.Context) error {
	sessions := auth.NewManagerFromConfig(storage.NewHTTPClient())
	if err := sessions.Load(ctx); err != nil {
		return err
	}
	if sessions.Session() == nil {
		return auth.ErrNoSession
	}
	return sessions.SignOut(ctx)
}

func (c *cliClient) Version() string {
	return version.String()
}

// RunTUI opens the interactive table until the user quits.
func (c *cliClient) RunTUI(ctx context.Context) error {
	sink := notify.NewTUISink(nil)
	a, err := c.open(ctx, sink)
	if err != nil {
		return err
	}

	var prefs state.SortStore
	store, err := settings.OpenDefault()
	if err != nil {
		logging.Warn("tui: preferences unavailable, sort will not persist", "error", err)
	} else {
		prefs = store
	}

	model := state.NewModel(a, sink, prefs, state.Options{
		ItemsPerPage: c.ItemsPerPage(),
		Sort:         c.SortPreference(),
	})
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil &&
		!errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// Serve runs the HTTP API until SIGINT or SIGTERM.
func (c *cliClient) Serve(ctx context.Context, addr string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := storage.NewFromConfig(ctx, nil)
	if err != nil {
		return err
	}
	defer repo.Close()

	api := server.NewHandler(repo, server.HandlerOptions{
		ItemsPerPage: c.ItemsPerPage(),
		Location:     config.Location(),
	})
	pinger, _ := repo.(storage.Pinger)
	middlewares := []func(next http.Handler) http.Handler{server.MetricsMiddleware(), server.LoggingMiddleware()}

	if jwksURL := config.Get("jwks_url", ""); jwksURL != "" {
		jwtAuth, err := server.NewJWTAuth(ctx, server.JWTAuthOptions{
			JWKSURL: jwksURL,
			Client:  storage.NewHTTPClient(),
			Leeway:  30 * time.Second,
		})
		if err != nil {
			return err
		}
		middlewares = append(middlewares, server.JWTAuthWithExclusions(jwtAuth.Middleware(), "/health", "/metrics"))
	} else {
		logging.Warn("serve: no jwks_url configured, the API is unauthenticated")
	}

	router := server.NewRouter(api, server.NewHealthHandler(pinger), middlewares...)
	return server.New(server.Options{Addr: addr}, router).Run(ctx)
}
