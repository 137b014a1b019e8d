package sqlite

import "errors"

// ErrEmptyPath is returned when no database path is configured.
var ErrEmptyPath = errors.New("sqlite storage: db path cannot be empty")
