package state

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cristianoliveira/proposal-tracker/internal/tui/render"
)

// View renders the TUI.
func (m *Model) View() string {
	if m.mode == modeForm && m.form != nil {
		var s strings.Builder
		s.WriteString(m.form.view(m.width))
		if m.hasToast {
			s.WriteString("\n\n")
			s.WriteString(render.Toast(m.toast))
		}
		return s.String()
	}

	var s strings.Builder
	s.WriteString(m.titleLine())
	s.WriteString("\n")
	s.WriteString(render.Header(m.width, m.pipeline.Sort, m.pipeline.AllSelected(m.result.Rows)))
	s.WriteString("\n")
	s.WriteString(m.viewport.View())
	s.WriteString("\n")
	s.WriteString(render.Footer(render.FooterState{
		Page:       m.result.Page,
		TotalPages: m.result.TotalPages,
		Visible:    len(m.result.Visible),
		Selected:   m.pipeline.Selection.Len(),
		Archived:   m.pipeline.Archived,
		Filter:     m.pipeline.Filter,
		Width:      m.width,
	}))
	s.WriteString("\n")
	s.WriteString(m.statusLine())
	return s.String()
}

func (m *Model) titleLine() string {
	title := lipgloss.NewStyle().Bold(true).Render("Proposals")
	if m.pipeline.Archived {
		title += " (archived)"
	}
	if session := m.app.Session(); session != nil && session.Email != "" {
		title += lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("  " + session.Email)
	}
	if m.mode == modeStarting || m.app.Loading() {
		title += "  " + m.spinner.View() + " loading"
	}
	return title
}

func (m *Model) statusLine() string {
	switch {
	case m.mode == modeSearch:
		return m.search.View()
	case m.mode == modeConfirmDelete:
		p, _ := m.current()
		return fmt.Sprintf("Delete %q? This cannot be undone. (y/n)", p.ClientName)
	case m.hasToast:
		return render.Toast(m.toast)
	default:
		return m.help.View(m.keys)
	}
}

// updateViewport redraws the rows and keeps the cursor visible.
func (m *Model) updateViewport() {
	rows := m.result.Rows
	if len(rows) == 0 {
		m.viewport.SetContent(render.Empty())
		m.viewport.GotoTop()
		return
	}

	now := m.now()
	lines := make([]string, len(rows))
	for i, p := range rows {
		lines[i] = render.Row(render.RowState{
			Proposal: p,
			Width:    m.width,
			Cursor:   i == m.cursor,
			Checked:  m.pipeline.Selection.Has(p.ID),
			Now:      now,
		})
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))

	if m.cursor < m.viewport.YOffset {
		m.viewport.SetYOffset(m.cursor)
	} else if m.viewport.Height > 0 && m.cursor >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}
