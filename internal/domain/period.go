package domain

import (
	"errors"
	"fmt"
	"time"
)

// PeriodPreset is a named shortcut that resolves to a concrete date range.
type PeriodPreset string

const (
	PeriodAll           PeriodPreset = "all"
	PeriodToday         PeriodPreset = "today"
	PeriodLast7         PeriodPreset = "last-7"
	PeriodLast30        PeriodPreset = "last-30"
	PeriodLast3Months   PeriodPreset = "last-3-months"
	PeriodLast12Months  PeriodPreset = "last-12-months"
	PeriodThisMonth     PeriodPreset = "this-month"
	PeriodMonthToDate   PeriodPreset = "mtd"
	PeriodQuarterToDate PeriodPreset = "qtd"
	PeriodYearToDate    PeriodPreset = "ytd"
	PeriodCustom        PeriodPreset = "custom"
)

// PeriodPresets lists the presets in the order they are offered to users.
var PeriodPresets = []PeriodPreset{
	PeriodAll,
	PeriodToday,
	PeriodLast7,
	PeriodLast30,
	PeriodLast3Months,
	PeriodLast12Months,
	PeriodThisMonth,
	PeriodMonthToDate,
	PeriodQuarterToDate,
	PeriodYearToDate,
	PeriodCustom,
}

var (
	// ErrInvalidPeriod is returned for an unknown preset token.
	ErrInvalidPeriod = errors.New("invalid period preset")

	// ErrPresetNotResolvable is returned for presets without a fixed range.
	ErrPresetNotResolvable = errors.New("period preset has no fixed range")
)

// IsValid checks if the preset is a known token.
func (p PeriodPreset) IsValid() bool {
	for _, preset := range PeriodPresets {
		if p == preset {
			return true
		}
	}
	return false
}

// String returns the string representation of the preset.
func (p PeriodPreset) String() string {
	return string(p)
}

// Label returns the human readable label of the preset.
func (p PeriodPreset) Label() string {
	switch p {
	case PeriodAll:
		return "All time"
	case PeriodToday:
		return "Today"
	case PeriodLast7:
		return "Last 7 days"
	case PeriodLast30:
		return "Last 30 days"
	case PeriodLast3Months:
		return "Last 3 months"
	case PeriodLast12Months:
		return "Last 12 months"
	case PeriodThisMonth:
		return "This month"
	case PeriodMonthToDate:
		return "Month to date"
	case PeriodQuarterToDate:
		return "Quarter to date"
	case PeriodYearToDate:
		return "Year to date"
	case PeriodCustom:
		return "Custom"
	default:
		return string(p)
	}
}

// Next returns the preset following p in PeriodPresets, skipping custom.
func (p PeriodPreset) Next() PeriodPreset {
	for i, preset := range PeriodPresets {
		if preset != p {
			continue
		}
		next := PeriodPresets[(i+1)%len(PeriodPresets)]
		if next == PeriodCustom {
			return PeriodAll
		}
		return next
	}
	return PeriodAll
}

// ParsePeriodPreset parses a string into a PeriodPreset.
func ParsePeriodPreset(value string) (PeriodPreset, error) {
	p := PeriodPreset(value)
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidPeriod, value)
	}
	return p, nil
}

// DateRange is an inclusive range of YYYY-MM-DD calendar dates.
// Empty bounds mean "no constraint".
type DateRange struct {
	Start string
	End   string
}

// IsEmpty reports whether neither bound is set.
func (r DateRange) IsEmpty() bool {
	return r.Start == "" && r.End == ""
}

// ResolvePeriod maps a preset to a concrete range relative to now.
// Arithmetic uses now's calendar fields in now's location, so callers pick
// the timezone by passing now.In(loc).
func ResolvePeriod(preset PeriodPreset, now time.Time) (DateRange, error) {
	year, month, day := now.Date()
	loc := now.Location()
	today := time.Date(year, month, day, 0, 0, 0, 0, loc)
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, loc)

	var start, end time.Time
	end = today

	switch preset {
	case PeriodAll:
		return DateRange{}, nil
	case PeriodToday:
		start = today
	case PeriodLast7:
		start = today.AddDate(0, 0, -7)
	case PeriodLast30:
		start = today.AddDate(0, 0, -30)
	case PeriodLast3Months:
		start = today.AddDate(0, -3, 0)
	case PeriodLast12Months:
		start = today.AddDate(-1, 0, 0)
	case PeriodThisMonth:
		start = firstOfMonth
		end = firstOfMonth.AddDate(0, 1, -1)
	case PeriodMonthToDate:
		start = firstOfMonth
	case PeriodQuarterToDate:
		quarterMonth := time.Month((int(month)-1)/3*3 + 1)
		start = time.Date(year, quarterMonth, 1, 0, 0, 0, 0, loc)
	case PeriodYearToDate:
		start = time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	case PeriodCustom:
		return DateRange{}, ErrPresetNotResolvable
	default:
		return DateRange{}, fmt.Errorf("%w: %s", ErrInvalidPeriod, preset)
	}

	return DateRange{
		Start: start.Format(DateLayout),
		End:   end.Format(DateLayout),
	}, nil
}
