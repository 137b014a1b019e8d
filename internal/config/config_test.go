package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every directory and backend variable at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmp, "state"))
	for env := range envAliases {
		t.Setenv(env, "")
	}
	t.Setenv(EnvPrefix+"CONFIG_PATH", "")
	return tmp
}

func TestLoadDefaults(t *testing.T) {
	tmp := isolate(t)
	Load()

	assert.Equal(t, "default", Get("missing", "default"))
	assert.Equal(t, BackendSupabase, Get("backend", ""))
	assert.Equal(t, 100, GetInt("items_per_page", 0))
	assert.Equal(t, "pt-BR", Get("locale", ""))
	assert.Equal(t, 30*time.Second, GetDuration("http_timeout", 0))
	assert.False(t, GetBool("logging_enabled", true))
	assert.Equal(t, filepath.Join(tmp, "state", "proposals", "proposals.db"), Get("sqlite_path", ""))
	assert.Same(t, time.Local, Location())
}

func TestLoadWritesSampleConfig(t *testing.T) {
	tmp := isolate(t)
	Load()

	path := filepath.Join(tmp, "config", "proposals", "config.toml")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, FileModeSecret, info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "items_per_page = 100")
}

func TestLoadingPrecedence(t *testing.T) {
	tmp := isolate(t)
	configFile := filepath.Join(tmp, "custom.toml")
	content := `
backend = "postgres"
items_per_page = 50
database_url = "postgres://file"
locale = "en-US"
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), FileModeFile))

	t.Setenv(EnvPrefix+"CONFIG_PATH", configFile)
	t.Setenv(EnvPrefix+"ITEMS_PER_PAGE", "25")
	t.Setenv("DATABASE_URL", "postgres://alias")
	Load()

	assert.Equal(t, "25", Get("items_per_page", ""), "environment overrides the file")
	assert.Equal(t, "postgres", Get("backend", ""))
	assert.Equal(t, "en-US", Get("locale", ""))
	assert.Equal(t, "postgres://alias", Get("database_url", ""), "aliases override the file")

	t.Setenv(EnvPrefix+"DATABASE_URL", "postgres://prefixed")
	Load()
	assert.Equal(t, "postgres://prefixed", Get("database_url", ""), "prefixed variables win over aliases")
}

func TestValidatorsFallBackToDefaults(t *testing.T) {
	isolate(t)
	t.Setenv(EnvPrefix+"ITEMS_PER_PAGE", "-3")
	t.Setenv(EnvPrefix+"BACKEND", "mongo")
	t.Setenv(EnvPrefix+"HTTP_TIMEOUT", "soon")
	t.Setenv(EnvPrefix+"TIMEZONE", "Mars/Olympus")
	t.Setenv(EnvPrefix+"LOGGING_ENABLED", "yes")
	Load()

	assert.Equal(t, 100, GetInt("items_per_page", 0))
	assert.Equal(t, BackendSupabase, Get("backend", ""))
	assert.Equal(t, 30*time.Second, GetDuration("http_timeout", 0))
	assert.Equal(t, "Local", Get("timezone", ""))
	assert.Equal(t, "true", Get("logging_enabled", ""))
}

func TestLocation(t *testing.T) {
	isolate(t)
	t.Setenv(EnvPrefix+"TIMEZONE", "America/Sao_Paulo")
	Load()

	loc := Location()
	assert.Equal(t, "America/Sao_Paulo", loc.String())
}

func TestDerivedJWKSURL(t *testing.T) {
	isolate(t)
	t.Setenv(EnvPrefix+"SUPABASE_URL", "https://abc.supabase.co/")
	Load()

	assert.Equal(t, "https://abc.supabase.co/auth/v1/.well-known/jwks.json", Get("jwks_url", ""))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{"supabase missing everything", map[string]string{}, true},
		{"supabase missing key", map[string]string{"SUPABASE_URL": "https://x.supabase.co"}, true},
		{"supabase complete", map[string]string{"SUPABASE_URL": "https://x.supabase.co", "SUPABASE_ANON_KEY": "anon"}, false},
		{"postgres missing url", map[string]string{"BACKEND": "postgres"}, true},
		{"postgres complete", map[string]string{"BACKEND": "postgres", "DATABASE_URL": "postgres://localhost/db"}, false},
		{"sqlite needs nothing", map[string]string{"BACKEND": "sqlite"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(EnvPrefix+k, v)
			}
			Load()

			err := Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingBackendConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegisterValidatorPanicsOnDuplicate(t *testing.T) {
	assert.Panics(t, func() {
		RegisterValidator("items_per_page", PositiveIntValidator())
	})
}
