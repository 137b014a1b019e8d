package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/cristianoliveira/proposal-tracker/internal/domain"
	"github.com/shopspring/decimal"
)

// DisplayDateLayout is the day/month/year layout used for display.
const DisplayDateLayout = "02/01/2006"

const empty = "-"

// Currency formats a value as Brazilian reais: R$ 1.234,56.
func Currency(value decimal.Decimal) string {
	fixed := value.Abs().StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	sign := ""
	if value.IsNegative() && !value.Round(2).IsZero() {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%s", sign, b.String(), cents)
}

// Date formats a date as DD/MM/YYYY, or "-" for the zero time.
func Date(t time.Time) string {
	if t.IsZero() {
		return empty
	}
	return t.Format(DisplayDateLayout)
}

// OptionalDate formats an optional date, "-" when absent.
func OptionalDate(t *time.Time) string {
	if t == nil {
		return empty
	}
	return Date(*t)
}

// Text returns s, or "-" when blank.
func Text(s string) string {
	if strings.TrimSpace(s) == "" {
		return empty
	}
	return s
}

// Percent formats a 0..1 ratio with one decimal place.
func Percent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// SeverityIcon returns the marker shown next to a stale follow-up.
func SeverityIcon(s domain.Severity) string {
	switch s {
	case domain.SeverityCritical:
		return "▲"
	case domain.SeverityWarning:
		return "●"
	default:
		return ""
	}
}

// FollowUp formats the last follow-up date. Pending proposals also show the
// age in days and a severity marker.
func FollowUp(p domain.Proposal, now time.Time) string {
	date := Date(p.LastFollowUp)
	if p.Status != domain.StatusPending || p.LastFollowUp.IsZero() {
		return date
	}
	days := domain.FollowUpAge(p, now)
	text := fmt.Sprintf("%s (%d days)", date, days)
	if icon := SeverityIcon(domain.FollowUpSeverity(days)); icon != "" {
		text = icon + " " + text
	}
	return text
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 3 || len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
