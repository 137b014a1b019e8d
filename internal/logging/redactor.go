package logging

import (
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

var segmentSeparator = regexp.MustCompile(`[^a-z0-9]+`)

// redactor masks values whose key names a credential. Session tokens and the
// backend anon key pass through the logger on every request.
type redactor struct {
	sensitiveWords map[string]bool
}

func newRedactor() *redactor {
	words := []string{
		"secret", "password", "token", "key", "apikey",
		"auth", "authorization", "credential", "bearer",
	}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return &redactor{sensitiveWords: m}
}

// redact returns a copy of the flattened key/value pairs with sensitive
// values replaced. A trailing key without a value is kept as is.
func (r *redactor) redact(pairs []any) []any {
	if len(pairs) == 0 {
		return pairs
	}
	result := make([]any, len(pairs))
	copy(result, pairs)
	for i := 0; i+1 < len(result); i += 2 {
		key, ok := result[i].(string)
		if ok && r.isSensitive(key) {
			result[i+1] = redacted
		}
	}
	return result
}

// isSensitive matches whole key segments, so "secretary" is not sensitive
// while "refresh_token" is.
func (r *redactor) isSensitive(key string) bool {
	for _, part := range segmentSeparator.Split(strings.ToLower(key), -1) {
		if r.sensitiveWords[part] {
			return true
		}
	}
	return false
}
