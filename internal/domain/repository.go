package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrProposalNotFound is returned when a proposal is not found.
	ErrProposalNotFound = errors.New("proposal not found")

	// ErrInvalidProposal is returned when a proposal or patch fails validation.
	ErrInvalidProposal = errors.New("invalid proposal")

	// ErrEmptySelection is returned when a bulk operation receives no ids.
	ErrEmptySelection = errors.New("no proposals selected")
)

// ListOrder describes the ordering requested from the backend.
type ListOrder struct {
	Column     string
	Descending bool
}

// DefaultListOrder is the order every read requests: newest sent date first.
var DefaultListOrder = ListOrder{Column: "sent_date", Descending: true}

// Patch carries a partial update. Nil fields are left untouched.
type Patch struct {
	ClientName         *string
	SentDate           *time.Time
	Value              *decimal.Decimal
	Status             *Status
	SentVia            *string
	LastFollowUp       *time.Time
	ExpectedReturnDate **time.Time
	Notes              *string
	Archived           *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.ClientName == nil && p.SentDate == nil && p.Value == nil &&
		p.Status == nil && p.SentVia == nil && p.LastFollowUp == nil &&
		p.ExpectedReturnDate == nil && p.Notes == nil && p.Archived == nil
}

// Apply returns a copy of the proposal with the patch applied.
func (p Patch) Apply(proposal Proposal) Proposal {
	if p.ClientName != nil {
		proposal.ClientName = *p.ClientName
	}
	if p.SentDate != nil {
		proposal.SentDate = *p.SentDate
	}
	if p.Value != nil {
		proposal.Value = *p.Value
	}
	if p.Status != nil {
		proposal.Status = *p.Status
	}
	if p.SentVia != nil {
		proposal.SentVia = *p.SentVia
	}
	if p.LastFollowUp != nil {
		proposal.LastFollowUp = *p.LastFollowUp
	}
	if p.ExpectedReturnDate != nil {
		proposal.ExpectedReturnDate = *p.ExpectedReturnDate
	}
	if p.Notes != nil {
		proposal.Notes = *p.Notes
	}
	if p.Archived != nil {
		proposal.Archived = *p.Archived
	}
	return proposal
}

// Validate checks the fields the patch sets.
func (p Patch) Validate() error {
	if p.IsEmpty() {
		return errors.Join(ErrInvalidProposal, errors.New("nothing to update"))
	}
	probe := p.Apply(Proposal{
		ClientName:   "-",
		SentDate:     time.Unix(0, 0),
		LastFollowUp: time.Unix(0, 0),
		Status:       StatusPending,
	})
	return probe.Validate()
}

// PatchFromProposal builds a patch that overwrites every editable field,
// the shape of a full edit form save.
func PatchFromProposal(p Proposal) Patch {
	expected := p.ExpectedReturnDate
	return Patch{
		ClientName:         &p.ClientName,
		SentDate:           &p.SentDate,
		Value:              &p.Value,
		Status:             &p.Status,
		SentVia:            &p.SentVia,
		LastFollowUp:       &p.LastFollowUp,
		ExpectedReturnDate: &expected,
		Notes:              &p.Notes,
		Archived:           &p.Archived,
	}
}

// StatusPatch returns a patch that only sets the status.
func StatusPatch(status Status) Patch {
	return Patch{Status: &status}
}

// ArchivePatch returns a patch that only sets the archived flag.
func ArchivePatch(archived bool) Patch {
	return Patch{Archived: &archived}
}

// ProposalRepository defines the interface for proposal persistence.
// This is the repository interface that backend implementations must follow.
type ProposalRepository interface {
	// List returns every proposal in the requested order.
	List(ctx context.Context, order ListOrder) ([]Proposal, error)

	// Insert stores a new proposal and returns its generated ID.
	Insert(ctx context.Context, proposal Proposal) (string, error)

	// Update applies a patch to a single proposal.
	Update(ctx context.Context, id string, patch Patch) error

	// UpdateMany applies the same patch to every listed proposal.
	UpdateMany(ctx context.Context, ids []string, patch Patch) error

	// Delete removes a proposal.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}
