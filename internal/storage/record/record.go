// Package record maps proposals to and from the backend row shape shared by
// every storage implementation.
package record

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cristianoliveira/proposal-tracker/internal/domain"
)

// Column names of the proposals table.
const (
	ColumnID                 = "id"
	ColumnClientName         = "client_name"
	ColumnSentDate           = "sent_date"
	ColumnValue              = "value"
	ColumnStatus             = "status"
	ColumnSentVia            = "sent_via"
	ColumnLastFollowUp       = "last_follow_up"
	ColumnExpectedReturnDate = "expected_return_date"
	ColumnNotes              = "notes"
	ColumnArchived           = "archived"
)

// Table is the proposals table name.
const Table = "proposals"

// Columns lists every column in select order.
var Columns = []string{
	ColumnID,
	ColumnClientName,
	ColumnSentDate,
	ColumnValue,
	ColumnStatus,
	ColumnSentVia,
	ColumnLastFollowUp,
	ColumnExpectedReturnDate,
	ColumnNotes,
	ColumnArchived,
}

// ErrInvalidOrder is returned for an order on an unknown column.
var ErrInvalidOrder = errors.New("invalid order column")

// ErrInvalidTimestamp is returned when a stored date cannot be parsed.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
}

// Record is the row form of a proposal. Dates are timestamp strings and
// optional columns are pointers so a JSON null round-trips.
type Record struct {
	ID                 string          `json:"id,omitempty"`
	ClientName         string          `json:"client_name"`
	SentDate           string          `json:"sent_date"`
	Value              decimal.Decimal `json:"value"`
	Status             string          `json:"status"`
	SentVia            *string         `json:"sent_via"`
	LastFollowUp       *string         `json:"last_follow_up"`
	ExpectedReturnDate *string         `json:"expected_return_date"`
	Notes              *string         `json:"notes"`
	Archived           bool            `json:"archived"`
}

// FromProposal converts a proposal to its row form.
func FromProposal(p domain.Proposal) Record {
	r := Record{
		ID:         p.ID,
		ClientName: p.ClientName,
		SentDate:   FormatTimestamp(p.SentDate),
		Value:      p.Value,
		Status:     p.Status.String(),
		Archived:   p.Archived,
		Notes:      stringPtr(p.Notes),
	}
	if p.SentVia != "" {
		r.SentVia = stringPtr(p.SentVia)
	}
	if !p.LastFollowUp.IsZero() {
		r.LastFollowUp = stringPtr(FormatTimestamp(p.LastFollowUp))
	}
	if p.ExpectedReturnDate != nil {
		r.ExpectedReturnDate = stringPtr(FormatTimestamp(*p.ExpectedReturnDate))
	}
	return r
}

// Proposal converts the row back to a proposal, with dates in loc.
func (r Record) Proposal(loc *time.Location) (domain.Proposal, error) {
	sent, err := ParseTimestamp(r.SentDate, loc)
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("proposal %s: sent_date: %w", r.ID, err)
	}
	p := domain.Proposal{
		ID:         r.ID,
		ClientName: r.ClientName,
		SentDate:   sent,
		Value:      r.Value,
		Status:     domain.Status(r.Status),
		SentVia:    deref(r.SentVia),
		Notes:      deref(r.Notes),
		Archived:   r.Archived,
	}
	if v := deref(r.LastFollowUp); v != "" {
		if p.LastFollowUp, err = ParseTimestamp(v, loc); err != nil {
			return domain.Proposal{}, fmt.Errorf("proposal %s: last_follow_up: %w", r.ID, err)
		}
	}
	if v := deref(r.ExpectedReturnDate); v != "" {
		expected, err := ParseTimestamp(v, loc)
		if err != nil {
			return domain.Proposal{}, fmt.Errorf("proposal %s: expected_return_date: %w", r.ID, err)
		}
		p.ExpectedReturnDate = &expected
	}
	return p, nil
}

// FormatTimestamp renders t the way rows store dates.
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

// ParseTimestamp parses a stored date. Plain YYYY-MM-DD dates and timestamps
// without a zone are read in loc; everything else is converted to loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation(domain.DateLayout, value, loc); err == nil {
		return t, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
}

// OrderColumn validates the column of order.
func OrderColumn(order domain.ListOrder) (string, error) {
	for _, column := range Columns {
		if column == order.Column {
			return column, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOrder, order.Column)
}

func stringPtr(s string) *string {
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
