package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/cristianoliveira/proposal-tracker/internal/config"
	"github.com/cristianoliveira/proposal-tracker/internal/logging"
)

const sessionFileName = "session.json"

// storedSession is the on-disk form of a session.
type storedSession struct {
	Provider string   `json:"provider"`
	Session  *Session `json:"session"`
}

// Manager owns the current session. It is safe for concurrent use.
type Manager struct {
	provider Provider
	path     string
	now      func() time.Time

	mu          sync.RWMutex
	session     *Session
	nextID      int
	subscribers map[int]func(*Session)
}

// NewManager creates a manager persisting to path. An empty path keeps the
// session in memory only.
func NewManager(provider Provider, path string) *Manager {
	return &Manager{
		provider:    provider,
		path:        path,
		now:         time.Now,
		subscribers: make(map[int]func(*Session)),
	}
}

// DefaultSessionPath returns {state_dir}/session.json.
func DefaultSessionPath() string {
	stateDir := config.Get("state_dir", "")
	if stateDir == "" {
		return ""
	}
	return filepath.Join(stateDir, sessionFileName)
}

// Provider returns the identity provider.
func (m *Manager) Provider() Provider {
	return m.provider
}

// Session returns a copy of the current session, or nil when signed out.
func (m *Manager) Session() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copySession(m.session)
}

// AccessToken returns the bearer token of the current session, or "".
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return ""
	}
	return m.session.AccessToken
}

// OnChange registers fn to be called with the new session (nil on sign-out)
// after every change. Callbacks run synchronously on the goroutine making
// the change. The returned function unsubscribes.
func (m *Manager) OnChange(fn func(*Session)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.subscribers[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}

// Load restores the persisted session. An expired session is refreshed; if
// that fails the stored session is discarded. A missing file is not an error.
func (m *Manager) Load(ctx context.Context) error {
	stored, err := m.read()
	if err != nil {
		return err
	}
	if stored == nil || stored.Session == nil {
		return nil
	}
	if stored.Provider != m.provider.Name() {
		logging.Info("auth: ignoring session of another provider", "provider", stored.Provider)
		return nil
	}

	session := stored.Session
	if session.Expired(m.now()) {
		refreshed, err := m.provider.Refresh(ctx, session)
		if err != nil {
			logging.Warn("auth: stored session could not be refreshed", "error", err)
			m.setSession(nil)
			if errors.Is(err, ErrNoSession) {
				return nil
			}
			return err
		}
		session = refreshed
	}
	m.setSession(session)
	return nil
}

// SignIn authenticates with the provider and makes the result current.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*Session, error) {
	session, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		logging.Warn("auth: sign in failed", "email", email, "error", err)
		return nil, err
	}
	logging.Info("auth: signed in", "email", session.Email, "provider", m.provider.Name())
	m.setSession(session)
	return copySession(session), nil
}

// SignOut clears the session locally and tells the provider. The local
// session is cleared even when the provider call fails.
func (m *Manager) SignOut(ctx context.Context) error {
	current := m.Session()
	m.setSession(nil)
	if current == nil {
		return nil
	}
	if err := m.provider.SignOut(ctx, current); err != nil {
		logging.Warn("auth: provider sign out failed", "error", err)
		return err
	}
	logging.Info("auth: signed out", "email", current.Email)
	return nil
}

// EnsureFresh returns a session whose token is valid, refreshing it when it
// is about to expire. A refresh the provider rejects signs the user out.
func (m *Manager) EnsureFresh(ctx context.Context) (*Session, error) {
	current := m.Session()
	if current == nil {
		return nil, ErrNoSession
	}
	if !current.Expired(m.now()) {
		return current, nil
	}

	refreshed, err := m.provider.Refresh(ctx, current)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			m.setSession(nil)
		}
		return nil, err
	}
	m.setSession(refreshed)
	return copySession(refreshed), nil
}

func (m *Manager) setSession(session *Session) {
	m.mu.Lock()
	m.session = copySession(session)
	if err := m.persist(m.session); err != nil {
		logging.Warn("auth: could not persist session", "path", m.path, "error", err)
	}
	ids := make([]int, 0, len(m.subscribers))
	for id := range m.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	callbacks := make([]func(*Session), 0, len(ids))
	for _, id := range ids {
		callbacks = append(callbacks, m.subscribers[id])
	}
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(copySession(session))
	}
}

func (m *Manager) read() (*storedSession, error) {
	if m.path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("auth: read session: %w", err)
	}
	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		logging.Warn("auth: discarding unreadable session file", "path", m.path, "error", err)
		return nil, nil
	}
	return &stored, nil
}

// persist writes the session with owner-only permissions, or removes the
// file when session is nil. Callers hold m.mu.
func (m *Manager) persist(session *Session) error {
	if m.path == "" {
		return nil
	}
	if session == nil {
		if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	data, err := json.MarshalIndent(storedSession{Provider: m.provider.Name(), Session: session}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, config.FileModeSecret); err != nil {
		return err
	}
	return os.Rename(tmp, m.path)
}

func copySession(s *Session) *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
