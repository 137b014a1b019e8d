package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InputDateLayouts are the date layouts accepted from users, tried in order.
var InputDateLayouts = []string{DateLayout, "02/01/2006"}

// ProposalInput is a proposal as typed into a form, flag set or request body.
// Empty fields mean "not given".
type ProposalInput struct {
	ClientName         string `json:"client_name"`
	SentDate           string `json:"sent_date"`
	Value              string `json:"value"`
	Status             string `json:"status"`
	SentVia            string `json:"sent_via"`
	LastFollowUp       string `json:"last_follow_up"`
	ExpectedReturnDate string `json:"expected_return_date"`
	Notes              string `json:"notes"`
	Archived           *bool  `json:"archived,omitempty"`

	// ClearExpectedReturn removes the expected return date on update.
	ClearExpectedReturn bool `json:"-"`
}

// InputFromProposal fills an input with the proposal's current values, the
// starting point of an edit form.
func InputFromProposal(p Proposal) ProposalInput {
	archived := p.Archived
	in := ProposalInput{
		ClientName: p.ClientName,
		Value:      p.Value.StringFixed(2),
		Status:     p.Status.String(),
		SentVia:    p.SentVia,
		Notes:      p.Notes,
		Archived:   &archived,
	}
	if !p.SentDate.IsZero() {
		in.SentDate = p.SentDate.Format(DateLayout)
	}
	if !p.LastFollowUp.IsZero() {
		in.LastFollowUp = p.LastFollowUp.Format(DateLayout)
	}
	if p.ExpectedReturnDate != nil {
		in.ExpectedReturnDate = p.ExpectedReturnDate.Format(DateLayout)
	}
	return in
}

// Proposal builds a new proposal. The status defaults to pending and the
// last follow-up to the sent date.
func (in ProposalInput) Proposal(loc *time.Location) (Proposal, error) {
	p := Proposal{
		ClientName: strings.TrimSpace(in.ClientName),
		Status:     StatusPending,
		SentVia:    strings.TrimSpace(in.SentVia),
		Notes:      strings.TrimSpace(in.Notes),
	}
	if in.Archived != nil {
		p.Archived = *in.Archived
	}

	var err error
	if strings.TrimSpace(in.SentDate) == "" {
		return Proposal{}, fmt.Errorf("%w: sent date is required", ErrInvalidProposal)
	}
	if p.SentDate, err = ParseInputDate(in.SentDate, loc); err != nil {
		return Proposal{}, fmt.Errorf("%w: sent date: %v", ErrInvalidProposal, err)
	}
	p.LastFollowUp = p.SentDate
	if strings.TrimSpace(in.LastFollowUp) != "" {
		if p.LastFollowUp, err = ParseInputDate(in.LastFollowUp, loc); err != nil {
			return Proposal{}, fmt.Errorf("%w: last follow-up: %v", ErrInvalidProposal, err)
		}
	}
	if strings.TrimSpace(in.ExpectedReturnDate) != "" && !in.ClearExpectedReturn {
		expected, err := ParseInputDate(in.ExpectedReturnDate, loc)
		if err != nil {
			return Proposal{}, fmt.Errorf("%w: expected return date: %v", ErrInvalidProposal, err)
		}
		p.ExpectedReturnDate = &expected
	}
	if strings.TrimSpace(in.Value) != "" {
		if p.Value, err = ParseValue(in.Value); err != nil {
			return Proposal{}, err
		}
	}
	if strings.TrimSpace(in.Status) != "" {
		if p.Status, err = ParseStatus(in.Status); err != nil {
			return Proposal{}, err
		}
	}
	return p, p.Validate()
}

// Patch builds an update carrying only the given fields.
func (in ProposalInput) Patch(loc *time.Location) (Patch, error) {
	var patch Patch
	if v := strings.TrimSpace(in.ClientName); v != "" {
		patch.ClientName = &v
	}
	if strings.TrimSpace(in.SentDate) != "" {
		t, err := ParseInputDate(in.SentDate, loc)
		if err != nil {
			return Patch{}, fmt.Errorf("%w: sent date: %v", ErrInvalidProposal, err)
		}
		patch.SentDate = &t
	}
	if strings.TrimSpace(in.Value) != "" {
		v, err := ParseValue(in.Value)
		if err != nil {
			return Patch{}, err
		}
		patch.Value = &v
	}
	if strings.TrimSpace(in.Status) != "" {
		s, err := ParseStatus(in.Status)
		if err != nil {
			return Patch{}, err
		}
		patch.Status = &s
	}
	if v := strings.TrimSpace(in.SentVia); v != "" {
		patch.SentVia = &v
	}
	if strings.TrimSpace(in.LastFollowUp) != "" {
		t, err := ParseInputDate(in.LastFollowUp, loc)
		if err != nil {
			return Patch{}, fmt.Errorf("%w: last follow-up: %v", ErrInvalidProposal, err)
		}
		patch.LastFollowUp = &t
	}
	switch {
	case in.ClearExpectedReturn:
		var none *time.Time
		patch.ExpectedReturnDate = &none
	case strings.TrimSpace(in.ExpectedReturnDate) != "":
		t, err := ParseInputDate(in.ExpectedReturnDate, loc)
		if err != nil {
			return Patch{}, fmt.Errorf("%w: expected return date: %v", ErrInvalidProposal, err)
		}
		expected := &t
		patch.ExpectedReturnDate = &expected
	}
	if v := strings.TrimSpace(in.Notes); v != "" {
		patch.Notes = &v
	}
	if in.Archived != nil {
		archived := *in.Archived
		patch.Archived = &archived
	}
	return patch, patch.Validate()
}

// ParseInputDate parses YYYY-MM-DD or DD/MM/YYYY in loc.
func ParseInputDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value = strings.TrimSpace(value)
	for _, layout := range InputDateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or DD/MM/YYYY", value)
}

// ParseValue parses a monetary value. Both 1234.56 and the Brazilian
// 1.234,56 are accepted, with or without an R$ prefix.
func ParseValue(value string) (decimal.Decimal, error) {
	v := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(value), "R$"))
	if strings.Contains(v, ",") {
		v = strings.ReplaceAll(v, ".", "")
		v = strings.ReplaceAll(v, ",", ".")
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: invalid value %q", ErrInvalidProposal, value)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: value cannot be negative: %s", ErrInvalidProposal, value)
	}
	return d, nil
}
