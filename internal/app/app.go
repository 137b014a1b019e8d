// Package app holds the application state shared by every surface: the
// session, the last fetched proposal list and the loading flag. Writes go
// through App so that each one is followed by a full re-read.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cristianoliveira/proposal-tracker/internal/auth"
	"github.com/cristianoliveira/proposal-tracker/internal/config"
	"github.com/cristianoliveira/proposal-tracker/internal/domain"
	"github.com/cristianoliveira/proposal-tracker/internal/logging"
	"github.com/cristianoliveira/proposal-tracker/internal/notify"
	"github.com/cristianoliveira/proposal-tracker/internal/view"
)

// Sessions is the part of auth.Manager the app depends on.
type Sessions interface {
	Load(ctx context.Context) error
	Session() *auth.Session
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	SignOut(ctx context.Context) error
	EnsureFresh(ctx context.Context) (*auth.Session, error)
	OnChange(fn func(*auth.Session)) func()
}

// Option configures an App.
type Option func(*App)

// WithAutoSignIn makes Start sign in with empty credentials when no session
// was restored. Used with the local provider, which accepts any sign-in.
func WithAutoSignIn() Option {
	return func(a *App) { a.autoSignIn = true }
}

// WithClock overrides the clock used for summaries.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// App is the injected application state. It is safe for concurrent use.
type App struct {
	repo       domain.ProposalRepository
	sessions   Sessions
	sink       notify.Sink
	autoSignIn bool
	now        func() time.Time

	mu          sync.RWMutex
	baseCtx     context.Context
	unsubscribe func()
	proposals   []domain.Proposal
	loading     bool
	fetched     bool
	userID      string
	refreshing  int
}

// New creates the app state.
func New(repo domain.ProposalRepository, sessions Sessions, sink notify.Sink, opts ...Option) *App {
	if repo == nil {
		panic("app.New: repository dependency cannot be nil")
	}
	if sessions == nil {
		panic("app.New: sessions dependency cannot be nil")
	}
	if sink == nil {
		sink = notify.Discard
	}
	a := &App{
		repo:     repo,
		sessions: sessions,
		sink:     sink,
		now:      func() time.Time { return time.Now().In(config.Location()) },
		baseCtx:  context.Background(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start subscribes to session changes and restores the persisted session.
// A present session triggers the first fetch.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	a.baseCtx = context.WithoutCancel(ctx)
	if a.unsubscribe == nil {
		a.unsubscribe = a.sessions.OnChange(a.sessionChanged)
	}
	a.mu.Unlock()

	if err := a.sessions.Load(ctx); err != nil {
		logging.Error("app: could not restore session", "error", err)
		return fmt.Errorf("app: restore session: %w", err)
	}
	if a.sessions.Session() == nil && a.autoSignIn {
		if _, err := a.sessions.SignIn(ctx, "", ""); err != nil {
			return fmt.Errorf("app: sign in: %w", err)
		}
	}
	return nil
}

// Stop drops the session subscription.
func (a *App) Stop() {
	a.mu.Lock()
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	a.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// sessionChanged refetches when a user signs in. A token rotation for the
// same user does not refetch while a list is loaded or being loaded.
func (a *App) sessionChanged(session *auth.Session) {
	a.mu.Lock()
	if session == nil {
		a.proposals = nil
		a.fetched = false
		a.userID = ""
		a.mu.Unlock()
		return
	}
	rotated := session.UserID == a.userID && (a.fetched || a.refreshing > 0)
	a.userID = session.UserID
	ctx := a.baseCtx
	a.mu.Unlock()
	if rotated {
		return
	}
	_ = a.Refresh(ctx)
}

// Session returns the current session, or nil when signed out.
func (a *App) Session() *auth.Session {
	return a.sessions.Session()
}

// SignIn authenticates. Failures are reported without detail.
func (a *App) SignIn(ctx context.Context, email, password string) error {
	if _, err := a.sessions.SignIn(ctx, email, password); err != nil {
		a.sink.Notify(notify.KindError, MsgSignInFailed)
		return err
	}
	a.sink.Notify(notify.KindSuccess, MsgWelcome)
	return nil
}

// SignOut clears the session and the fetched list.
func (a *App) SignOut(ctx context.Context) error {
	err := a.sessions.SignOut(ctx)
	a.mu.Lock()
	a.proposals = nil
	a.fetched = false
	a.mu.Unlock()
	a.sink.Notify(notify.KindInfo, MsgSignedOut)
	return err
}

// Refresh re-reads the whole list, newest sent date first. On failure the
// previous list is kept.
func (a *App) Refresh(ctx context.Context) error {
	a.mu.Lock()
	a.refreshing++
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.refreshing--
		a.mu.Unlock()
	}()

	if err := a.requireSession(ctx); err != nil {
		return err
	}

	a.setLoading(true)
	proposals, err := a.repo.List(ctx, domain.DefaultListOrder)
	if err != nil {
		a.setLoading(false)
		logging.Error("app: fetch failed", "error", err)
		a.sink.Notify(notify.KindError, MsgLoadFailed)
		return fmt.Errorf("app: refresh: %w", err)
	}

	a.mu.Lock()
	a.proposals = proposals
	a.fetched = true
	a.loading = false
	a.mu.Unlock()
	logging.Debug("app: fetched proposals", "count", len(proposals))
	return nil
}

// Proposals returns a copy of the last fetched list.
func (a *App) Proposals() []domain.Proposal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]domain.Proposal, len(a.proposals))
	copy(out, a.proposals)
	return out
}

// Find returns the fetched proposal with the given id.
func (a *App) Find(id string) (domain.Proposal, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, p := range a.proposals {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Proposal{}, false
}

// Loading reports whether a full-list fetch is outstanding.
func (a *App) Loading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

// Fetched reports whether the list has been read at least once.
func (a *App) Fetched() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.fetched
}

// Summary summarizes the active partition of the fetched list.
func (a *App) Summary() domain.Summary {
	return domain.Summarize(a.Proposals(), a.now())
}

// Create stores a new proposal and returns its id.
func (a *App) Create(ctx context.Context, p domain.Proposal) (string, error) {
	if err := p.Validate(); err != nil {
		a.sink.Notify(notify.KindError, MsgSaveFailed+" "+err.Error())
		return "", err
	}
	if err := a.requireSession(ctx); err != nil {
		return "", err
	}
	id, err := a.repo.Insert(ctx, p)
	if err != nil {
		return "", a.writeFailed("create", MsgSaveFailed, err)
	}
	logging.Info("app: proposal created", "id", id)
	a.writeSucceeded(ctx, MsgSaved)
	return id, nil
}

// Save applies an edit to one proposal.
func (a *App) Save(ctx context.Context, id string, patch domain.Patch) error {
	if err := patch.Validate(); err != nil {
		a.sink.Notify(notify.KindError, MsgUpdateFailed+" "+err.Error())
		return err
	}
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	if err := a.repo.Update(ctx, id, patch); err != nil {
		return a.writeFailed("save", MsgUpdateFailed, err)
	}
	logging.Info("app: proposal updated", "id", id)
	a.writeSucceeded(ctx, MsgUpdated)
	return nil
}

// Delete removes one proposal.
func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	if err := a.repo.Delete(ctx, id); err != nil {
		return a.writeFailed("delete", MsgDeleteFailed, err)
	}
	logging.Info("app: proposal deleted", "id", id)
	a.writeSucceeded(ctx, MsgDeleted)
	return nil
}

// SetArchived moves one proposal between the active and archived partitions.
func (a *App) SetArchived(ctx context.Context, id string, archived bool) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	if err := a.repo.Update(ctx, id, domain.ArchivePatch(archived)); err != nil {
		return a.writeFailed("archive", MsgUpdateFailed, err)
	}
	logging.Info("app: proposal archive flag set", "id", id, "archived", archived)
	a.writeSucceeded(ctx, archiveMessage(1, archived))
	return nil
}

// BulkSetStatus sets the status of every listed proposal. An empty id list
// does nothing.
func (a *App) BulkSetStatus(ctx context.Context, ids []string, status domain.Status) error {
	if len(ids) == 0 {
		return nil
	}
	if !status.IsValid() {
		a.sink.Notify(notify.KindError, MsgBulkFailed)
		return fmt.Errorf("%w: invalid status: %s", domain.ErrInvalidProposal, status)
	}
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	if err := a.repo.UpdateMany(ctx, ids, domain.StatusPatch(status)); err != nil {
		return a.writeFailed("bulk status", MsgBulkFailed, err)
	}
	logging.Info("app: bulk status set", "count", len(ids), "status", status)
	a.writeSucceeded(ctx, statusMessage(len(ids), status))
	return nil
}

// BulkSetArchived sets the archived flag of every listed proposal. An empty
// id list does nothing.
func (a *App) BulkSetArchived(ctx context.Context, ids []string, archived bool) error {
	if len(ids) == 0 {
		return nil
	}
	if err := a.requireSession(ctx); err != nil {
		return err
	}
	if err := a.repo.UpdateMany(ctx, ids, domain.ArchivePatch(archived)); err != nil {
		return a.writeFailed("bulk archive", MsgBulkFailed, err)
	}
	logging.Info("app: bulk archive flag set", "count", len(ids), "archived", archived)
	a.writeSucceeded(ctx, archiveMessage(len(ids), archived))
	return nil
}

// ApplyBulk dispatches a bulk request built by the view pipeline.
func (a *App) ApplyBulk(ctx context.Context, req view.BulkRequest) error {
	switch {
	case req.Patch.Status != nil:
		return a.BulkSetStatus(ctx, req.IDs, *req.Patch.Status)
	case req.Patch.Archived != nil:
		return a.BulkSetArchived(ctx, req.IDs, *req.Patch.Archived)
	default:
		return fmt.Errorf("%w: unsupported bulk update", domain.ErrInvalidProposal)
	}
}

func (a *App) requireSession(ctx context.Context) error {
	if _, err := a.sessions.EnsureFresh(ctx); err != nil {
		logging.Warn("app: no valid session", "error", err)
		if errors.Is(err, auth.ErrNoSession) {
			a.sink.Notify(notify.KindError, MsgSessionExpired)
		} else {
			a.sink.Notify(notify.KindError, MsgLoadFailed)
		}
		return err
	}
	return nil
}

func (a *App) setLoading(loading bool) {
	a.mu.Lock()
	a.loading = loading
	a.mu.Unlock()
}

func (a *App) writeFailed(op, msg string, err error) error {
	logging.Error("app: write failed", "op", op, "error", err)
	a.sink.Notify(notify.KindError, msg)
	return fmt.Errorf("app: %s: %w", op, err)
}

// writeSucceeded notifies and re-reads the list. A failed re-read is
// reported by Refresh and does not fail the write.
func (a *App) writeSucceeded(ctx context.Context, msg string) {
	a.sink.Notify(notify.KindSuccess, msg)
	_ = a.Refresh(ctx)
}
