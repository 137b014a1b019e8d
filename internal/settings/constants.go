// Package settings persists user preferences that survive restarts.
package settings

import "os"

// File permission constants
const (
	// FileModeDir is the permission for the preference directory (rwxr-xr-x)
	FileModeDir os.FileMode = 0755
	// FileModeFile is the permission for preference files (rw-r--r--)
	FileModeFile os.FileMode = 0644
)

// Preference keys. The names are shared with other clients of the same data.
const (
	KeySortField     = "proposals_sortField"
	KeySortDirection = "proposals_sortDirection"
)

// prefsDirName is the directory below config_dir holding the store.
const prefsDirName = "prefs"

// cacheSizeMax bounds the in-memory read cache of the store.
const cacheSizeMax = 64 * 1024
