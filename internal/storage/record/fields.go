package record

import (
	"time"

	"github.com/cristianoliveira/proposal-tracker/internal/domain"
)

// Field is one column assignment of an update. Value is a string,
// decimal.Decimal, bool, time.Time or nil for a cleared optional date.
type Field struct {
	Column string
	Value  any
}

// Fields returns the column assignments of patch in column order.
func Fields(patch domain.Patch) []Field {
	var fields []Field
	if patch.ClientName != nil {
		fields = append(fields, Field{ColumnClientName, *patch.ClientName})
	}
	if patch.SentDate != nil {
		fields = append(fields, Field{ColumnSentDate, *patch.SentDate})
	}
	if patch.Value != nil {
		fields = append(fields, Field{ColumnValue, *patch.Value})
	}
	if patch.Status != nil {
		fields = append(fields, Field{ColumnStatus, patch.Status.String()})
	}
	if patch.SentVia != nil {
		fields = append(fields, Field{ColumnSentVia, *patch.SentVia})
	}
	if patch.LastFollowUp != nil {
		fields = append(fields, Field{ColumnLastFollowUp, *patch.LastFollowUp})
	}
	if patch.ExpectedReturnDate != nil {
		var value any
		if expected := *patch.ExpectedReturnDate; expected != nil {
			value = *expected
		}
		fields = append(fields, Field{ColumnExpectedReturnDate, value})
	}
	if patch.Notes != nil {
		fields = append(fields, Field{ColumnNotes, *patch.Notes})
	}
	if patch.Archived != nil {
		fields = append(fields, Field{ColumnArchived, *patch.Archived})
	}
	return fields
}

// TextValues converts time values to stored timestamp strings, the form
// used by backends without a native timestamp type.
func TextValues(fields []Field) []Field {
	out := make([]Field, len(fields))
	for i, f := range fields {
		if t, ok := f.Value.(time.Time); ok {
			f.Value = FormatTimestamp(t)
		}
		out[i] = f
	}
	return out
}

// Map returns the fields as a column map, with times as timestamp strings.
func Map(fields []Field) map[string]any {
	m := make(map[string]any, len(fields))
	for _, f := range TextValues(fields) {
		m[f.Column] = f.Value
	}
	return m
}
