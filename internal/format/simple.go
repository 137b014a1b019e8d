package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cristianoliveira/proposal-tracker/internal/domain"
	"github.com/cristianoliveira/proposal-tracker/internal/storage/record"
)

// SimpleFormatter writes one tab-separated line per proposal, for scripts.
type SimpleFormatter struct {
	now time.Time
}

// NewSimpleFormatter creates a new SimpleFormatter.
func NewSimpleFormatter(now time.Time) *SimpleFormatter {
	return &SimpleFormatter{now: now}
}

// FormatProposals formats proposals as TSV rows without a header.
func (f *SimpleFormatter) FormatProposals(proposals []domain.Proposal, writer io.Writer) error {
	for _, p := range proposals {
		if _, err := fmt.Fprintln(writer, strings.Join(Row(p, f.now), "\t")); err != nil {
			return err
		}
	}
	return nil
}

// FormatSummary formats the summary as key=value lines.
func (f *SimpleFormatter) FormatSummary(s domain.Summary, writer io.Writer) error {
	for _, status := range domain.Statuses {
		totals := s.ByStatus[status]
		if _, err := fmt.Fprintf(writer, "%s\t%d\t%s\n", status, totals.Count, totals.Value.StringFixed(2)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(writer, "total\t%d\t%s\napproval_rate\t%.4f\noverdue\t%d\n",
		s.Total.Count, s.Total.Value.StringFixed(2), s.ApprovalRate, s.Overdue())
	return err
}

// JSONFormatter writes proposals in the backend record shape.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// FormatProposals formats proposals as a JSON array.
func (f *JSONFormatter) FormatProposals(proposals []domain.Proposal, writer io.Writer) error {
	return encode(writer, Records(proposals))
}

// FormatSummary formats the summary as a JSON object.
func (f *JSONFormatter) FormatSummary(s domain.Summary, writer io.Writer) error {
	return encode(writer, NewSummaryDocument(s))
}

// SummaryDocument is the JSON shape of a summary, with follow-up buckets
// keyed by severity name.
type SummaryDocument struct {
	domain.Summary
	FollowUps map[string]int `json:"follow_ups"`
}

// NewSummaryDocument converts s to its JSON shape.
func NewSummaryDocument(s domain.Summary) SummaryDocument {
	followUps := make(map[string]int, len(s.FollowUps))
	for severity, n := range s.FollowUps {
		followUps[severity.String()] = n
	}
	return SummaryDocument{Summary: s, FollowUps: followUps}
}

// Records converts proposals to the backend record shape.
func Records(proposals []domain.Proposal) []record.Record {
	records := make([]record.Record, len(proposals))
	for i, p := range proposals {
		records[i] = record.FromProposal(p)
	}
	return records
}

func encode(writer io.Writer, v any) error {
	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
