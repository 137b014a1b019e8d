// Package domain provides the domain layer for sales proposals.
// It contains business logic, value objects, and domain services.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date layout used by filters and the backend.
const DateLayout = "2006-01-02"

// Proposal represents a single sales proposal tracked by the application.
type Proposal struct {
	ID                 string
	ClientName         string
	SentDate           time.Time
	Value              decimal.Decimal
	Status             Status
	SentVia            string
	LastFollowUp       time.Time
	ExpectedReturnDate *time.Time
	Notes              string
	Archived           bool
}

// Status represents the negotiation status of a proposal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Statuses lists every status in display precedence order.
var Statuses = []Status{StatusPending, StatusApproved, StatusRejected}

// IsValid checks if the status is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Ordinal returns the fixed display/sort precedence of the status.
// Unknown statuses sort after every known one.
func (s Status) Ordinal() int {
	switch s {
	case StatusPending:
		return 0
	case StatusApproved:
		return 1
	case StatusRejected:
		return 2
	default:
		return 3
	}
}

// Label returns the human readable label of the status.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	default:
		return string(s)
	}
}

// ParseStatus parses a string into a Status.
func ParseStatus(status string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(status)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: invalid status: %s", ErrInvalidProposal, status)
	}
	return s, nil
}

// SentDay returns the sent date as a YYYY-MM-DD calendar string in the
// record's own location.
func (p Proposal) SentDay() string {
	return p.SentDate.Format(DateLayout)
}

// Validate validates the proposal and returns an error if invalid.
// The ID is not checked because new proposals get it from the backend.
func (p Proposal) Validate() error {
	if strings.TrimSpace(p.ClientName) == "" {
		return fmt.Errorf("%w: client name cannot be empty", ErrInvalidProposal)
	}
	if p.SentDate.IsZero() {
		return fmt.Errorf("%w: sent date is required", ErrInvalidProposal)
	}
	if p.LastFollowUp.IsZero() {
		return fmt.Errorf("%w: last follow-up date is required", ErrInvalidProposal)
	}
	if p.Value.IsNegative() {
		return fmt.Errorf("%w: value cannot be negative: %s", ErrInvalidProposal, p.Value)
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("%w: invalid status: %s", ErrInvalidProposal, p.Status)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD calendar date in the given location.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}
