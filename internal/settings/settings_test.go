package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianoliveira/proposal-tracker/internal/config"
	"github.com/cristianoliveira/proposal-tracker/internal/domain"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "prefs")
	store, err := Open(dir)
	require.NoError(t, err)
	return store, dir
}

func TestStoreGetSetRemove(t *testing.T) {
	store, dir := openTemp(t)

	_, ok := store.Get("missing")
	assert.False(t, ok)

	require.NoError(t, store.Set("theme", "dark"))
	value, ok := store.Get("theme")
	assert.True(t, ok)
	assert.Equal(t, "dark", value)

	data, err := os.ReadFile(filepath.Join(dir, "theme"))
	require.NoError(t, err)
	assert.Equal(t, "dark", string(data), "one flat file per key")

	assert.ElementsMatch(t, []string{"theme"}, store.Keys())

	require.NoError(t, store.Remove("theme"))
	_, ok = store.Get("theme")
	assert.False(t, ok)
	assert.NoError(t, store.Remove("theme"), "removing twice is fine")
}

func TestLoadSortDefaults(t *testing.T) {
	store, _ := openTemp(t)

	opts := store.LoadSort("")
	assert.Equal(t, domain.DefaultSortOptions(), opts)

	opts = store.LoadSort("en-US")
	assert.Equal(t, "en-US", opts.Locale)
}

func TestSaveAndLoadSort(t *testing.T) {
	store, _ := openTemp(t)

	require.NoError(t, store.SaveSort(domain.SortOptions{Field: domain.SortByValue, Order: domain.SortOrderDesc}))

	field, ok := store.Get(KeySortField)
	require.True(t, ok)
	assert.Equal(t, "value", field)
	direction, ok := store.Get(KeySortDirection)
	require.True(t, ok)
	assert.Equal(t, "desc", direction)

	reopened, err := Open(storeDir(t, store))
	require.NoError(t, err)
	opts := reopened.LoadSort(domain.DefaultLocale)
	assert.Equal(t, domain.SortByValue, opts.Field)
	assert.Equal(t, domain.SortOrderDesc, opts.Order)
}

func TestSaveSortWithoutFieldErasesKey(t *testing.T) {
	store, _ := openTemp(t)

	require.NoError(t, store.SaveSort(domain.SortOptions{Field: domain.SortByClientName, Order: domain.SortOrderAsc}))
	require.NoError(t, store.SaveSort(domain.SortOptions{Field: domain.SortByNone, Order: domain.SortOrderDesc}))

	_, ok := store.Get(KeySortField)
	assert.False(t, ok)
	direction, _ := store.Get(KeySortDirection)
	assert.Equal(t, "desc", direction)

	opts := store.LoadSort("")
	assert.Equal(t, domain.SortByNone, opts.Field)
	assert.Equal(t, domain.SortOrderDesc, opts.Order)
}

func TestLoadSortIgnoresUnknownValues(t *testing.T) {
	store, _ := openTemp(t)
	require.NoError(t, store.Set(KeySortField, "timestamp"))
	require.NoError(t, store.Set(KeySortDirection, "sideways"))

	opts := store.LoadSort("")
	assert.Equal(t, domain.SortByNone, opts.Field)
	assert.Equal(t, domain.SortOrderAsc, opts.Order)
}

func TestOpenDefault(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmp, "state"))
	config.Load()

	store, err := OpenDefault()
	require.NoError(t, err)
	require.NoError(t, store.Set(KeySortDirection, "asc"))

	_, err = os.Stat(filepath.Join(tmp, "config", "proposals", prefsDirName, KeySortDirection))
	assert.NoError(t, err)
}

func storeDir(t *testing.T, s *Store) string {
	t.Helper()
	return s.d.BasePath
}
