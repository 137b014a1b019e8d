package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"github.com/cristianoliveira/proposal-tracker/internal/config"
	"github.com/cristianoliveira/proposal-tracker/internal/domain"
	"github.com/cristianoliveira/proposal-tracker/internal/logging"
)

// ErrNoConfigDir is returned by OpenDefault when config_dir is unset.
var ErrNoConfigDir = errors.New("config_dir not configured")

// Store is a flat key/value preference store, one file per key.
type Store struct {
	d *diskv.Diskv
}

// Open opens (creating if needed) a store rooted at dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, FileModeDir); err != nil {
		return nil, fmt.Errorf("settings: create %s: %w", dir, err)
	}
	d := diskv.New(diskv.Options{
		BasePath:     dir,
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: cacheSizeMax,
		FilePerm:     FileModeFile,
		PathPerm:     FileModeDir,
	})
	return &Store{d: d}, nil
}

// OpenDefault opens the store below {config_dir}/prefs.
func OpenDefault() (*Store, error) {
	dir := config.Get("config_dir", "")
	if dir == "" {
		return nil, ErrNoConfigDir
	}
	return Open(filepath.Join(dir, prefsDirName))
}

// Get returns the value for key and whether it exists.
func (s *Store) Get(key string) (string, bool) {
	if !s.d.Has(key) {
		return "", false
	}
	data, err := s.d.Read(key)
	if err != nil {
		logging.Warn("settings: read failed", "key", key, "error", err)
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// Set writes value under key.
func (s *Store) Set(key, value string) error {
	if err := s.d.Write(key, []byte(value)); err != nil {
		return fmt.Errorf("settings: write %s: %w", key, err)
	}
	return nil
}

// Remove erases key. Removing a missing key is not an error.
func (s *Store) Remove(key string) error {
	if !s.d.Has(key) {
		return nil
	}
	if err := s.d.Erase(key); err != nil {
		return fmt.Errorf("settings: erase %s: %w", key, err)
	}
	return nil
}

// Keys returns every stored key.
func (s *Store) Keys() []string {
	cancel := make(chan struct{})
	defer close(cancel)

	var keys []string
	for key := range s.d.Keys(cancel) {
		keys = append(keys, key)
	}
	return keys
}

// LoadSort reads the persisted sort state. Unknown or missing values fall
// back to the defaults (no sort, ascending).
func (s *Store) LoadSort(locale string) domain.SortOptions {
	opts := domain.DefaultSortOptions()
	if locale != "" {
		opts.Locale = locale
	}

	if value, ok := s.Get(KeySortField); ok {
		if field, err := domain.ParseSortByField(value); err == nil {
			opts.Field = field
		} else {
			logging.Debug("settings: ignoring stored sort field", "value", value)
		}
	}
	if value, ok := s.Get(KeySortDirection); ok {
		if order, err := domain.ParseSortOrder(value); err == nil {
			opts.Order = order
		} else {
			logging.Debug("settings: ignoring stored sort direction", "value", value)
		}
	}
	return opts
}

// SaveSort persists opts. No sort field erases the field key.
func (s *Store) SaveSort(opts domain.SortOptions) error {
	if opts.Field == domain.SortByNone {
		if err := s.Remove(KeySortField); err != nil {
			return err
		}
	} else if err := s.Set(KeySortField, opts.Field.String()); err != nil {
		return err
	}

	order := opts.Order
	if !order.IsValid() {
		order = domain.SortOrderAsc
	}
	return s.Set(KeySortDirection, order.String())
}
