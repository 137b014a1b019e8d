// Package render draws the rows, header and footer of the proposals TUI.
package render

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/cristianoliveira/proposal-tracker/internal/colors"
	"github.com/cristianoliveira/proposal-tracker/internal/domain"
	"github.com/cristianoliveira/proposal-tracker/internal/format"
	"github.com/cristianoliveira/proposal-tracker/internal/notify"
)

const (
	checkWidth          = 3
	dateWidth           = 10
	viaWidth            = 10
	valueWidth          = 16
	statusWidth         = 9
	followUpWidth       = 24
	minClientWidth      = 12
	spacesBetween       = 14
	defaultClientWidth  = 30
	checkedSymbol       = "[x]"
	uncheckedSymbol     = "[ ]"
	sortAscSymbol       = "▲"
	sortDescSymbol      = "▼"
	mutedColor          = "241"
	selectedForeground  = "0"
	defaultWidthForRows = 120
)

// Column pairs a header title with the sort field it toggles.
type Column struct {
	Title string
	Field domain.SortByField
}

// Columns are the sortable table columns in display order, after the checkbox.
var Columns = []Column{
	{"CLIENT", domain.SortByClientName},
	{"SENT", domain.SortBySentDate},
	{"VIA", domain.SortByNone},
	{"VALUE", domain.SortByValue},
	{"STATUS", domain.SortByStatus},
	{"FOLLOW-UP", domain.SortByLastFollowUp},
	{"RETURN", domain.SortByExpectedReturnDate},
}

// RowState defines the inputs needed to render a proposal row.
type RowState struct {
	Proposal domain.Proposal
	Width    int
	Cursor   bool
	Checked  bool
	Now      time.Time
}

// FooterState defines the inputs needed to render the footer.
type FooterState struct {
	Page       int
	TotalPages int
	Visible    int
	Selected   int
	Archived   bool
	Filter     domain.Filter
	Width      int
}

// Header renders the column titles, marking the active sort column.
func Header(width int, sort domain.SortOptions, allChecked bool) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorNumber(colors.Blue)))

	titles := make([]string, len(Columns))
	for i, c := range Columns {
		title := c.Title
		if c.Field != domain.SortByNone && c.Field == sort.Field {
			if sort.Order == domain.SortOrderDesc {
				title += " " + sortDescSymbol
			} else {
				title += " " + sortAscSymbol
			}
		}
		titles[i] = title
	}

	check := uncheckedSymbol
	if allChecked {
		check = checkedSymbol
	}
	return style.Render(layout(width, check, titles))
}

// Row renders a single proposal row.
func Row(state RowState) string {
	p := state.Proposal
	check := uncheckedSymbol
	if state.Checked {
		check = checkedSymbol
	}
	cells := []string{
		p.ClientName,
		format.Date(p.SentDate),
		format.Text(p.SentVia),
		format.Currency(p.Value),
		p.Status.Label(),
		format.FollowUp(p, state.Now),
		format.OptionalDate(p.ExpectedReturnDate),
	}
	line := layout(state.Width, check, cells)

	style := lipgloss.NewStyle()
	switch {
	case state.Cursor:
		style = style.Background(lipgloss.Color(ColorNumber(colors.Blue))).Foreground(lipgloss.Color(selectedForeground))
	case p.Status == domain.StatusApproved:
		style = style.Foreground(lipgloss.Color(ColorNumber(colors.Green)))
	case p.Status == domain.StatusRejected:
		style = style.Foreground(lipgloss.Color(ColorNumber(colors.Red)))
	}
	return style.Render(line)
}

// Empty renders the placeholder for an empty page.
func Empty() string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(mutedColor)).Render("No proposals found.")
}

// Footer renders the page, partition and active filter line.
func Footer(state FooterState) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(mutedColor))

	partition := "active"
	if state.Archived {
		partition = "archived"
	}
	parts := []string{
		fmt.Sprintf("page %d/%d", state.Page, state.TotalPages),
		fmt.Sprintf("%d %s", state.Visible, partition),
	}
	if state.Selected > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", state.Selected))
	}
	if f := state.Filter; f.Period != "" && f.Period != domain.PeriodAll {
		parts = append(parts, "period: "+f.Period.Label())
	}
	if f := state.Filter; f.DateStart != "" || f.DateEnd != "" {
		parts = append(parts, fmt.Sprintf("sent: %s..%s", orDots(f.DateStart), orDots(f.DateEnd)))
	}
	if f := state.Filter; strings.TrimSpace(f.ValueMin) != "" || strings.TrimSpace(f.ValueMax) != "" {
		parts = append(parts, fmt.Sprintf("value: %s..%s", orDots(f.ValueMin), orDots(f.ValueMax)))
	}
	if state.Filter.Search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", state.Filter.Search))
	}
	return style.Render(truncate(strings.Join(parts, "  |  "), state.Width))
}

// Toast renders a notification for the status line.
func Toast(msg notify.Message) string {
	var color string
	switch msg.Kind {
	case notify.KindError:
		color = colors.Red
	case notify.KindWarning:
		color = colors.Yellow
	case notify.KindSuccess:
		color = colors.Green
	default:
		color = colors.Blue
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorNumber(color))).Render(msg.Text)
}

// ColorNumber maps an ANSI escape such as "\033[0;34m" to the lipgloss
// basic color number "4".
func ColorNumber(ansi string) string {
	i := strings.LastIndex(ansi, ";")
	if i == -1 || !strings.HasSuffix(ansi, "m") {
		return ""
	}
	var n int
	if _, err := fmt.Sscanf(ansi[i+1:len(ansi)-1], "%d", &n); err != nil || n < 30 {
		return ""
	}
	return fmt.Sprint(n - 30)
}

func clientWidth(width int) int {
	if width <= 0 {
		width = defaultWidthForRows
	}
	w := width - checkWidth - dateWidth - viaWidth - valueWidth - statusWidth - followUpWidth - dateWidth - spacesBetween
	if w < minClientWidth {
		return minClientWidth
	}
	if w > defaultClientWidth*2 {
		return defaultClientWidth * 2
	}
	return w
}

func layout(width int, check string, cells []string) string {
	cw := clientWidth(width)
	return fmt.Sprintf("%-*s  %-*s  %-*s  %-*s  %*s  %-*s  %-*s  %-*s",
		checkWidth, check,
		cw, truncate(cells[0], cw),
		dateWidth, truncate(cells[1], dateWidth),
		viaWidth, truncate(cells[2], viaWidth),
		valueWidth, truncate(cells[3], valueWidth),
		statusWidth, truncate(cells[4], statusWidth),
		followUpWidth, truncate(cells[5], followUpWidth),
		dateWidth, truncate(cells[6], dateWidth),
	)
}

func truncate(value string, width int) string {
	if width <= 0 || utf8.RuneCountInString(value) <= width {
		return value
	}
	if width <= 3 {
		return string([]rune(value)[:width])
	}
	return string([]rune(value)[:width-3]) + "..."
}

func orDots(s string) string {
	if strings.TrimSpace(s) == "" {
		return "…"
	}
	return s
}
