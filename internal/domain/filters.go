package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Filter holds the filter criteria of the proposals view.
type Filter struct {
	Search    string
	DateStart string // YYYY-MM-DD, inclusive
	DateEnd   string // YYYY-MM-DD, inclusive
	ValueMin  string // as typed; empty means no bound
	ValueMax  string // as typed; empty means no bound
	Period    PeriodPreset
}

// NewFilter returns an empty filter with the "all" preset.
func NewFilter() Filter {
	return Filter{Period: PeriodAll}
}

// IsEmpty returns true if the filter has no criteria set.
func (f Filter) IsEmpty() bool {
	return f.Search == "" &&
		f.DateStart == "" &&
		f.DateEnd == "" &&
		strings.TrimSpace(f.ValueMin) == "" &&
		strings.TrimSpace(f.ValueMax) == ""
}

// Clear resets every criterion.
func (f *Filter) Clear() {
	*f = NewFilter()
}

// SetDateStart sets the lower date bound by hand, which makes the preset custom.
func (f *Filter) SetDateStart(value string) {
	f.DateStart = value
	f.Period = PeriodCustom
}

// SetDateEnd sets the upper date bound by hand, which makes the preset custom.
func (f *Filter) SetDateEnd(value string) {
	f.DateEnd = value
	f.Period = PeriodCustom
}

// ApplyPeriod selects a preset and fills the date bounds from it.
// Selecting custom keeps the current bounds.
func (f *Filter) ApplyPeriod(preset PeriodPreset, r DateRange) {
	f.Period = preset
	if preset == PeriodCustom {
		return
	}
	f.DateStart = r.Start
	f.DateEnd = r.End
}

// Validate reports malformed bounds. Matching never fails on them; it treats
// an unparsable bound as absent.
func (f Filter) Validate() error {
	if f.Period != "" && !f.Period.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidPeriod, f.Period)
	}
	for name, value := range map[string]string{"from": f.DateStart, "to": f.DateEnd} {
		if value == "" {
			continue
		}
		if _, err := ParseDate(value, nil); err != nil {
			return fmt.Errorf("invalid %s date: %w", name, err)
		}
	}
	for name, value := range map[string]string{"min": f.ValueMin, "max": f.ValueMax} {
		if strings.TrimSpace(value) == "" {
			continue
		}
		if _, err := ParseValue(value); err != nil {
			return fmt.Errorf("invalid %s value %q: must be a number like 1234.56 or 1.234,56", name, value)
		}
	}
	return nil
}

// Matches checks if the proposal belongs to the archive partition and
// satisfies every filter criterion.
func Matches(p Proposal, f Filter, archived bool) bool {
	if p.Archived != archived {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(p.ClientName), strings.ToLower(f.Search)) {
		return false
	}
	if f.DateStart != "" || f.DateEnd != "" {
		day := p.SentDay()
		if f.DateStart != "" && day < f.DateStart {
			return false
		}
		if f.DateEnd != "" && day > f.DateEnd {
			return false
		}
	}
	if lo, ok := parseBound(f.ValueMin); ok && p.Value.LessThan(lo) {
		return false
	}
	if hi, ok := parseBound(f.ValueMax); ok && p.Value.GreaterThan(hi) {
		return false
	}
	return true
}

// parseBound parses a value bound in any format ParseValue accepts; empty or
// malformed input means no bound.
func parseBound(value string) (decimal.Decimal, bool) {
	if strings.TrimSpace(value) == "" {
		return decimal.Decimal{}, false
	}
	d, err := ParseValue(value)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// FilterProposals returns the proposals of the archive partition that match
// the filter. Returns a new slice; the input is not modified.
func FilterProposals(proposals []Proposal, f Filter, archived bool) []Proposal {
	result := make([]Proposal, 0, len(proposals))
	for _, p := range proposals {
		if Matches(p, f, archived) {
			result = append(result, p)
		}
	}
	return result
}

// Partition splits proposals into the active and archived views.
func Partition(proposals []Proposal) (active, archived []Proposal) {
	active = make([]Proposal, 0, len(proposals))
	archived = make([]Proposal, 0)
	for _, p := range proposals {
		if p.Archived {
			archived = append(archived, p)
		} else {
			active = append(active, p)
		}
	}
	return active, archived
}
