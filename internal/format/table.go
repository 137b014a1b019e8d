package format

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/cristianoliveira/proposal-tracker/internal/colors"
	"github.com/cristianoliveira/proposal-tracker/internal/domain"
)

// clientWidth bounds the client column so rows fit a terminal.
const clientWidth = 32

// Headers are the table column titles, in order.
var Headers = []string{"ID", "CLIENT", "SENT", "VIA", "VALUE", "STATUS", "FOLLOW-UP", "RETURN"}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.Color(ansiNumber(colors.Blue)))
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
	valueStyle = cellStyle.Align(lipgloss.Right)
)

// StatusColor returns the ANSI color number used for a status.
func StatusColor(s domain.Status) string {
	switch s {
	case domain.StatusApproved:
		return ansiNumber(colors.Green)
	case domain.StatusRejected:
		return ansiNumber(colors.Red)
	default:
		return ansiNumber(colors.Yellow)
	}
}

// Table styles accepted by the table_format setting.
const (
	TableStyleDefault = "default"
	TableStyleMinimal = "minimal"
	TableStyleFancy   = "fancy"
)

// TableBorder returns the border drawn for a table style. Unknown styles get
// the default border.
func TableBorder(style string) lipgloss.Border {
	switch style {
	case TableStyleMinimal:
		return lipgloss.HiddenBorder()
	case TableStyleFancy:
		return lipgloss.RoundedBorder()
	default:
		return lipgloss.NormalBorder()
	}
}

// TableFormatter renders proposals with lipgloss/table.
type TableFormatter struct {
	now    time.Time
	border lipgloss.Border
}

// NewTableFormatter creates a new TableFormatter with the default border.
func NewTableFormatter(now time.Time) *TableFormatter {
	return &TableFormatter{now: now, border: lipgloss.NormalBorder()}
}

// WithStyle selects the border for a table style.
func (f *TableFormatter) WithStyle(style string) *TableFormatter {
	f.border = TableBorder(style)
	return f
}

// Row returns the display cells of one proposal, matching Headers.
func Row(p domain.Proposal, now time.Time) []string {
	return []string{
		p.ID,
		truncate(p.ClientName, clientWidth),
		Date(p.SentDate),
		Text(p.SentVia),
		Currency(p.Value),
		p.Status.Label(),
		FollowUp(p, now),
		OptionalDate(p.ExpectedReturnDate),
	}
}

// FormatProposals formats proposals as a table.
func (f *TableFormatter) FormatProposals(proposals []domain.Proposal, writer io.Writer) error {
	if len(proposals) == 0 {
		_, err := fmt.Fprintf(writer, "%sNo proposals found.%s\n", colors.Blue, colors.Reset)
		return err
	}

	rows := make([][]string, len(proposals))
	for i, p := range proposals {
		rows[i] = Row(p, f.now)
	}

	t := table.New().
		Border(f.border).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 4:
				return valueStyle
			case col == 5 && row >= 0 && row < len(proposals):
				return cellStyle.Foreground(lipgloss.Color(StatusColor(proposals[row].Status)))
			default:
				return cellStyle
			}
		})

	_, err := fmt.Fprintln(writer, t.Render())
	return err
}

// FormatSummary formats the summary as a small table.
func (f *TableFormatter) FormatSummary(s domain.Summary, writer io.Writer) error {
	rows := make([][]string, 0, len(domain.Statuses)+1)
	for _, status := range domain.Statuses {
		totals := s.ByStatus[status]
		rows = append(rows, []string{status.Label(), fmt.Sprint(totals.Count), Currency(totals.Value)})
	}
	rows = append(rows, []string{"Total", fmt.Sprint(s.Total.Count), Currency(s.Total.Value)})

	t := table.New().
		Border(f.border).
		Headers("STATUS", "COUNT", "VALUE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col > 0:
				return valueStyle
			default:
				return cellStyle
			}
		})

	_, err := fmt.Fprintf(writer, "%s\nApproval rate: %s\nFollow-ups overdue: %d (critical: %d)\n",
		t.Render(), Percent(s.ApprovalRate), s.Overdue(), s.FollowUps[domain.SeverityCritical])
	return err
}

// ansiNumber extracts the color number from an ANSI escape such as "\x1b[0;34m".
func ansiNumber(code string) string {
	var bold, n int
	if _, err := fmt.Sscanf(code, "\x1b[%d;%dm", &bold, &n); err != nil {
		return "7"
	}
	return fmt.Sprint(n - 30)
}
