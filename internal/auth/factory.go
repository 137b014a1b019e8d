package auth

import (
	"net/http"

	"github.com/cristianoliveira/proposal-tracker/internal/config"
)

// NewProviderFromConfig returns the identity provider for the configured
// backend. Only the supabase backend has a remote identity service; the
// database backends are single-user and use LocalProvider.
func NewProviderFromConfig(client *http.Client) Provider {
	if config.Get("backend", config.BackendSupabase) == config.BackendSupabase {
		return NewGoTrueProvider(config.Get("supabase_url", ""), config.Get("supabase_anon_key", ""), client)
	}
	return LocalProvider{}
}

// NewManagerFromConfig creates a manager for the configured provider,
// persisting to the default session path.
func NewManagerFromConfig(client *http.Client) *Manager {
	return NewManager(NewProviderFromConfig(client), DefaultSessionPath())
}
