// Package format renders proposals and summaries for the CLI.
package format

import (
	"fmt"
	"io"
	"time"

	"github.com/cristianoliveira/proposal-tracker/internal/domain"
)

// Formatter writes proposals and summaries to a writer.
type Formatter interface {
	// FormatProposals writes one page of proposals.
	FormatProposals(proposals []domain.Proposal, writer io.Writer) error

	// FormatSummary writes the dashboard aggregates.
	FormatSummary(summary domain.Summary, writer io.Writer) error
}

// FormatterType represents the type of formatter to use.
type FormatterType string

const (
	// FormatterTypeTable renders a bordered table with headers.
	FormatterTypeTable FormatterType = "table"

	// FormatterTypeSimple writes one tab-separated line per proposal.
	FormatterTypeSimple FormatterType = "simple"

	// FormatterTypeJSON writes the backend record shape as JSON.
	FormatterTypeJSON FormatterType = "json"
)

// ParseFormatterType validates a --format value.
func ParseFormatterType(value string) (FormatterType, error) {
	switch t := FormatterType(value); t {
	case FormatterTypeTable, FormatterTypeSimple, FormatterTypeJSON:
		return t, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected table, simple or json)", value)
	}
}

// NewFormatter creates a formatter of the given type. now is the reference
// time for follow-up ages and tableStyle picks the table border.
func NewFormatter(formatterType FormatterType, now time.Time, tableStyle ...string) Formatter {
	switch formatterType {
	case FormatterTypeSimple:
		return NewSimpleFormatter(now)
	case FormatterTypeJSON:
		return NewJSONFormatter()
	default:
		f := NewTableFormatter(now)
		if len(tableStyle) > 0 {
			f.WithStyle(tableStyle[0])
		}
		return f
	}
}
