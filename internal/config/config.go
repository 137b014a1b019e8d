// Package config provides configuration loading.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // timezone names must resolve on hosts without zoneinfo

	"github.com/pelletier/go-toml/v2"

	"github.com/cristianoliveira/proposal-tracker/internal/colors"
)

// File permission constants
const (
	// FileModeDir is the permission for directories (rwxr-xr-x)
	FileModeDir os.FileMode = 0755
	// FileModeFile is the permission for data files (rw-r--r--)
	FileModeFile os.FileMode = 0644
	// FileModeSecret is the permission for files holding credentials (rw-------)
	FileModeSecret os.FileMode = 0600

	// FileExtTOML is the file extension for TOML configuration files.
	FileExtTOML = ".toml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "PROPOSALS_"
)

// Backend names accepted by the "backend" key.
const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// ErrMissingBackendConfig is returned by Validate when the selected backend
// lacks the settings it needs to reach its server.
var ErrMissingBackendConfig = errors.New("missing backend configuration")

// envAliases are unprefixed variables commonly exported for hosted backends.
// Prefixed variables win over them.
var envAliases = map[string]string{
	"SUPABASE_URL":      "supabase_url",
	"SUPABASE_ANON_KEY": "supabase_anon_key",
	"DATABASE_URL":      "database_url",
}

var (
	config    map[string]string
	configMap map[string]string
	mu        sync.RWMutex
)

func init() {
	initValidators()
}

// Load initializes configuration.
func Load() {
	mu.Lock()
	defer mu.Unlock()

	// Reset to defaults
	config = make(map[string]string)
	configMap = make(map[string]string)

	setDefaults()
	loadFromEnv()
	loadFromFile()
	// Re-apply environment variable overrides so env wins
	loadFromEnv()
	validate()
	computeDerived()
	createSampleConfig()
}

// setDefaults populates config with default values.
func setDefaults() {
	home, _ := os.UserHomeDir()
	xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfigHome == "" {
		xdgConfigHome = filepath.Join(home, ".config")
	}
	xdgStateHome := os.Getenv("XDG_STATE_HOME")
	if xdgStateHome == "" {
		xdgStateHome = filepath.Join(home, ".local", "state")
	}

	setDefault("config_dir", filepath.Join(xdgConfigHome, "proposals"))
	setDefault("state_dir", filepath.Join(xdgStateHome, "proposals"))
	setDefault("backend", BackendSupabase)
	setDefault("supabase_url", "")
	setDefault("supabase_anon_key", "")
	setDefault("database_url", "")
	setDefault("sqlite_path", "")
	setDefault("jwks_url", "")
	setDefault("listen_addr", ":8080")
	setDefault("items_per_page", "100")
	setDefault("timezone", "Local")
	setDefault("locale", "pt-BR")
	setDefault("currency", "BRL")
	setDefault("http_timeout", "30s")
	setDefault("table_format", "default")
	setDefault("logging_enabled", "false")
	setDefault("logging_level", "info")
	setDefault("logging_max_files", "10")
	setDefault("debug", "false")
	setDefault("quiet", "false")
}

func setDefault(key, value string) {
	config[key] = value
	configMap[key] = value
}

// loadFromFile reads configuration from a file.
func loadFromFile() {
	configPath := os.Getenv(EnvPrefix + "CONFIG_PATH")
	if configPath == "" {
		if configDir, ok := config["config_dir"]; ok {
			configPath = filepath.Join(configDir, "config"+FileExtTOML)
			if _, err := os.Stat(configPath); err != nil {
				configPath = ""
			}
		}
	}
	if configPath == "" {
		return
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		colors.Debug(fmt.Sprintf("unable to read config file %s: %v", configPath, err))
		return
	}

	var raw map[string]interface{}
	if strings.ToLower(filepath.Ext(configPath)) != FileExtTOML {
		return
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		colors.Warning(fmt.Sprintf("unable to parse config file %s: %v", configPath, err))
		return
	}

	for k, v := range raw {
		key := strings.ToLower(k)
		converted, ok := coerceConfigValue(v)
		if !ok {
			colors.Warning(fmt.Sprintf("unsupported config value type for %s: %T", key, v))
			continue
		}
		config[key] = converted
	}
}

// coerceConfigValue converts a configuration value to its string representation.
// Supported types are string, int, int64, float64, and bool.
func coerceConfigValue(value interface{}) (string, bool) {
	switch typed := value.(type) {
	case string:
		return typed, true
	case int:
		return strconv.Itoa(typed), true
	case int64:
		return strconv.FormatInt(typed, 10), true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(typed), true
	default:
		return "", false
	}
}

// loadFromEnv applies environment variable overrides.
func loadFromEnv() {
	for env, key := range envAliases {
		if val, ok := os.LookupEnv(env); ok && val != "" {
			config[key] = val
		}
	}
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, EnvPrefix) {
			continue
		}
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(parts[0], EnvPrefix))
		if key == "config_path" {
			continue
		}
		config[key] = parts[1]
	}
}

// validate checks and normalizes configuration values using registered validators.
func validate() {
	for key, value := range config {
		validator := getValidator(key)
		if validator == nil {
			continue
		}
		defaultValue := configMap[key]
		normalizedValue, err := validator(key, value, defaultValue)
		if err != nil {
			colors.Warning(fmt.Sprintf("validation error for %s: %v, using default: %s", key, err, defaultValue))
			config[key] = defaultValue
		} else {
			config[key] = normalizedValue
		}
	}
}

// computeDerived fills keys whose defaults depend on other keys.
func computeDerived() {
	if config["sqlite_path"] == "" && config["state_dir"] != "" {
		config["sqlite_path"] = filepath.Join(config["state_dir"], "proposals.db")
	}
	if config["jwks_url"] == "" && config["supabase_url"] != "" {
		config["jwks_url"] = strings.TrimRight(config["supabase_url"], "/") + "/auth/v1/.well-known/jwks.json"
	}
}

// valueToInterface converts a configuration value to appropriate type for TOML.
func valueToInterface(val string) interface{} {
	if n, err := strconv.Atoi(val); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return val
}

// createSampleConfig creates a sample configuration file if none exists.
func createSampleConfig() {
	configDir := config["config_dir"]
	if configDir == "" {
		return
	}
	samplePath := filepath.Join(configDir, "config"+FileExtTOML)
	if _, err := os.Stat(samplePath); err == nil {
		return
	}
	if err := os.MkdirAll(configDir, FileModeDir); err != nil {
		colors.Debug(fmt.Sprintf("unable to create config dir %s: %v", configDir, err))
		return
	}

	typed := make(map[string]interface{})
	for k, v := range configMap {
		typed[k] = valueToInterface(v)
	}

	data, err := toml.Marshal(typed)
	if err != nil {
		colors.Warning(fmt.Sprintf("unable to marshal sample config: %v", err))
		return
	}
	header := "# proposals configuration\n# This file is in TOML format.\n# Set backend credentials here or through PROPOSALS_* environment variables.\n\n"
	if err := os.WriteFile(samplePath, append([]byte(header), data...), FileModeSecret); err != nil {
		colors.Warning(fmt.Sprintf("unable to write sample config to %s: %v", samplePath, err))
	}
}

// Get returns a configuration value or default.
func Get(key, defaultValue string) string {
	mu.RLock()
	defer mu.RUnlock()
	if val, ok := config[key]; ok {
		return val
	}
	return defaultValue
}

// GetInt returns a configuration value as integer, or default.
func GetInt(key string, defaultValue int) int {
	mu.RLock()
	defer mu.RUnlock()
	val, ok := config[key]
	if !ok {
		return defaultValue
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return n
}

// GetBool returns a configuration value as boolean, or default.
func GetBool(key string, defaultValue bool) bool {
	mu.RLock()
	defer mu.RUnlock()
	val, ok := config[key]
	if !ok {
		return defaultValue
	}
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

// GetDuration returns a configuration value as a duration, or default.
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	val, ok := config[key]
	if !ok {
		return defaultValue
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultValue
	}
	return d
}

// Set overrides a value for the rest of the process, e.g. from a CLI flag.
func Set(key, value string) {
	mu.Lock()
	defer mu.Unlock()
	if config == nil {
		config = make(map[string]string)
	}
	config[key] = value
}

// Location returns the configured time zone for calendar arithmetic.
func Location() *time.Location {
	name := Get("timezone", "Local")
	if name == "" || name == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}

// Validate fails fast when the selected backend cannot be reached with the
// loaded settings.
func Validate() error {
	switch backend := Get("backend", BackendSupabase); backend {
	case BackendSupabase:
		var missing []string
		if Get("supabase_url", "") == "" {
			missing = append(missing, EnvPrefix+"SUPABASE_URL")
		}
		if Get("supabase_anon_key", "") == "" {
			missing = append(missing, EnvPrefix+"SUPABASE_ANON_KEY")
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: supabase backend needs %s", ErrMissingBackendConfig, strings.Join(missing, " and "))
		}
	case BackendPostgres:
		if Get("database_url", "") == "" {
			return fmt.Errorf("%w: postgres backend needs %sDATABASE_URL", ErrMissingBackendConfig, EnvPrefix)
		}
	case BackendSQLite:
		if Get("sqlite_path", "") == "" {
			return fmt.Errorf("%w: sqlite backend needs %sSQLITE_PATH or a state directory", ErrMissingBackendConfig, EnvPrefix)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrMissingBackendConfig, backend)
	}
	return nil
}
