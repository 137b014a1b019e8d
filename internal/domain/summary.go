package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// FollowUpWarningDays is the age after which a pending follow-up is overdue.
	FollowUpWarningDays = 30
	// FollowUpCriticalDays is the age after which a pending follow-up is critical.
	FollowUpCriticalDays = 90
)

// Severity classifies how stale a follow-up is.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityWarning
	SeverityCritical
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "none"
	}
}

// FollowUpAge returns the whole days between now and the last follow-up,
// rounded up and regardless of direction.
func FollowUpAge(p Proposal, now time.Time) int {
	if p.LastFollowUp.IsZero() {
		return 0
	}
	elapsed := now.Sub(p.LastFollowUp)
	if elapsed < 0 {
		elapsed = -elapsed
	}
	return int(math.Ceil(elapsed.Hours() / 24))
}

// FollowUpSeverity maps a follow-up age in days to a severity.
func FollowUpSeverity(days int) Severity {
	switch {
	case days > FollowUpCriticalDays:
		return SeverityCritical
	case days > FollowUpWarningDays:
		return SeverityWarning
	default:
		return SeverityNone
	}
}

// Totals is a count and value aggregate.
type Totals struct {
	Count int             `json:"count"`
	Value decimal.Decimal `json:"value"`
}

func (t *Totals) add(p Proposal) {
	t.Count++
	t.Value = t.Value.Add(p.Value)
}

// Summary aggregates the active proposals for the dashboard.
type Summary struct {
	Total        Totals            `json:"total"`
	ByStatus     map[Status]Totals `json:"by_status"`
	ApprovalRate float64           `json:"approval_rate"`
	// Pending follow-ups bucketed by severity.
	FollowUps map[Severity]int `json:"-"`
}

// Overdue returns the pending proposals past the warning threshold.
func (s Summary) Overdue() int {
	return s.FollowUps[SeverityWarning] + s.FollowUps[SeverityCritical]
}

// Summarize aggregates the active (non-archived) proposals.
// The approval rate is approved / (approved + rejected), zero when no
// proposal has been decided yet.
func Summarize(proposals []Proposal, now time.Time) Summary {
	s := Summary{
		ByStatus:  make(map[Status]Totals, len(Statuses)),
		FollowUps: make(map[Severity]int, 3),
	}
	for _, status := range Statuses {
		s.ByStatus[status] = Totals{Value: decimal.Zero}
	}
	s.Total.Value = decimal.Zero

	for _, p := range proposals {
		if p.Archived {
			continue
		}
		s.Total.add(p)
		totals := s.ByStatus[p.Status]
		totals.add(p)
		s.ByStatus[p.Status] = totals

		if p.Status == StatusPending {
			s.FollowUps[FollowUpSeverity(FollowUpAge(p, now))]++
		}
	}

	approved := s.ByStatus[StatusApproved].Count
	decided := approved + s.ByStatus[StatusRejected].Count
	if decided > 0 {
		s.ApprovalRate = float64(approved) / float64(decided)
	}
	return s
}
