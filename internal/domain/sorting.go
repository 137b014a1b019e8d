package domain

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortByField specifies which field to sort proposals by.
type SortByField string

const (
	SortByNone               SortByField = ""
	SortByStatus             SortByField = "status"
	SortByLastFollowUp       SortByField = "lastFollowUp"
	SortByExpectedReturnDate SortByField = "expectedReturnDate"
	SortByValue              SortByField = "value"
	SortBySentDate           SortByField = "sentDate"
	SortByClientName         SortByField = "clientName"
)

// SortFields lists the sortable fields in column order.
var SortFields = []SortByField{
	SortByClientName,
	SortBySentDate,
	SortByValue,
	SortByStatus,
	SortByLastFollowUp,
	SortByExpectedReturnDate,
}

// IsValid checks if the sort by field is valid. The empty field means no sort.
func (s SortByField) IsValid() bool {
	switch s {
	case SortByNone, SortByStatus, SortByLastFollowUp, SortByExpectedReturnDate,
		SortByValue, SortBySentDate, SortByClientName:
		return true
	default:
		return false
	}
}

// String returns the string representation of the sort by field.
func (s SortByField) String() string {
	return string(s)
}

// Next returns the field after s in SortFields, wrapping to no sort.
func (s SortByField) Next() SortByField {
	if s == SortByNone {
		return SortFields[0]
	}
	for i, field := range SortFields {
		if field == s {
			if i+1 == len(SortFields) {
				return SortByNone
			}
			return SortFields[i+1]
		}
	}
	return SortByNone
}

// SortOrder specifies the sort direction.
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// IsValid checks if the sort order is valid.
func (s SortOrder) IsValid() bool {
	switch s {
	case SortOrderAsc, SortOrderDesc:
		return true
	default:
		return false
	}
}

// String returns the string representation of the sort order.
func (s SortOrder) String() string {
	return string(s)
}

// Flip returns the opposite direction.
func (s SortOrder) Flip() SortOrder {
	if s == SortOrderDesc {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// DefaultLocale is the collation locale for client names.
const DefaultLocale = "pt-BR"

// SortOptions holds sorting options for proposals.
type SortOptions struct {
	Field  SortByField
	Order  SortOrder
	Locale string // BCP 47 tag used to collate client names
}

// DefaultSortOptions returns the default sort options (no sort, ascending).
func DefaultSortOptions() SortOptions {
	return SortOptions{
		Field:  SortByNone,
		Order:  SortOrderAsc,
		Locale: DefaultLocale,
	}
}

// Toggle applies a column header click: the same field flips direction,
// another field becomes the sort key in ascending order.
func (o SortOptions) Toggle(field SortByField) SortOptions {
	if o.Field == field {
		o.Order = o.Order.Flip()
		return o
	}
	o.Field = field
	o.Order = SortOrderAsc
	return o
}

// normalizeSortOptions normalizes sort options by setting defaults.
func normalizeSortOptions(opts SortOptions) SortOptions {
	if !opts.Field.IsValid() {
		opts.Field = SortByNone
	}
	if !opts.Order.IsValid() {
		opts.Order = SortOrderAsc
	}
	if opts.Locale == "" {
		opts.Locale = DefaultLocale
	}
	return opts
}

// comparer compares proposals for one sort pass. A collator keeps internal
// buffers, so a comparer must not be shared between goroutines.
type comparer struct {
	opts     SortOptions
	collator *collate.Collator
}

func newComparer(opts SortOptions) *comparer {
	opts = normalizeSortOptions(opts)
	tag, err := language.Parse(opts.Locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	return &comparer{opts: opts, collator: collate.New(tag)}
}

// compare returns -1, 0 or 1 with the direction applied.
func (c *comparer) compare(a, b Proposal) int {
	result := c.compareByField(a, b)
	if c.opts.Order == SortOrderDesc {
		return -result
	}
	return result
}

// compareByField compares two proposals by the configured field in ascending order.
func (c *comparer) compareByField(a, b Proposal) int {
	switch c.opts.Field {
	case SortByStatus:
		return compareInts(a.Status.Ordinal(), b.Status.Ordinal())
	case SortByLastFollowUp:
		return a.LastFollowUp.Compare(b.LastFollowUp)
	case SortByExpectedReturnDate:
		// Absent dates count as the Unix epoch, so they sort first.
		return compareInts64(expectedReturnMillis(a), expectedReturnMillis(b))
	case SortByValue:
		return a.Value.Cmp(b.Value)
	case SortBySentDate:
		return a.SentDate.Compare(b.SentDate)
	case SortByClientName:
		return c.collator.CompareString(a.ClientName, b.ClientName)
	default:
		return 0
	}
}

func expectedReturnMillis(p Proposal) int64 {
	if p.ExpectedReturnDate == nil {
		return 0
	}
	return p.ExpectedReturnDate.UnixMilli()
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareInts64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Compare compares two proposals with the given options.
// Returns -1 if a sorts before b, 1 if after, 0 if equal.
func Compare(a, b Proposal, opts SortOptions) int {
	return newComparer(opts).compare(a, b)
}

// SortProposals sorts proposals based on the given options.
// Returns a new sorted slice without modifying the original. The sort is
// stable and an empty field keeps the input order.
func SortProposals(proposals []Proposal, opts SortOptions) []Proposal {
	sorted := make([]Proposal, len(proposals))
	copy(sorted, proposals)
	if len(sorted) == 0 || normalizeSortOptions(opts).Field == SortByNone {
		return sorted
	}

	c := newComparer(opts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return c.compare(sorted[i], sorted[j]) < 0
	})
	return sorted
}

// ParseSortByField parses a string into a SortByField.
func ParseSortByField(field string) (SortByField, error) {
	f := SortByField(field)
	if !f.IsValid() {
		return "", fmt.Errorf("invalid sort field: %s", field)
	}
	return f, nil
}

// ParseSortOrder parses a string into a SortOrder.
func ParseSortOrder(order string) (SortOrder, error) {
	o := SortOrder(order)
	if !o.IsValid() {
		return "", fmt.Errorf("invalid sort order: %s", order)
	}
	return o, nil
}
