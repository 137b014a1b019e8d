package state

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/proposal-tracker/internal/config"
	"github.com/cristianoliveira/proposal-tracker/internal/domain"
	"github.com/cristianoliveira/proposal-tracker/internal/logging"
	"github.com/cristianoliveira/proposal-tracker/internal/notify"
	"github.com/cristianoliveira/proposal-tracker/internal/tui/render"
	"github.com/cristianoliveira/proposal-tracker/internal/view"
)

// handleKey processes keyboard input for the current mode.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	switch m.mode {
	case modeSearch:
		return m, m.handleSearchKey(msg)
	case modeForm:
		return m, m.handleFormKey(msg)
	case modeConfirmDelete:
		return m, m.handleConfirmKey(msg)
	case modeStarting:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}
	return m.handleNormalKey(msg)
}

func (m *Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Up):
		m.moveCursor(-1)
	case key.Matches(msg, k.Down):
		m.moveCursor(1)
	case key.Matches(msg, k.PrevPage):
		m.pipeline.PrevPage()
		m.cursor = 0
		m.recompute()
	case key.Matches(msg, k.NextPage):
		m.pipeline.NextPage()
		m.cursor = 0
		m.recompute()
	case key.Matches(msg, k.Search):
		m.mode = modeSearch
		m.search.SetValue(m.pipeline.Filter.Search)
		return m, m.search.Focus()
	case key.Matches(msg, k.Filters):
		m.form = newFilterForm(m.pipeline.Filter)
		m.mode = modeForm
	case key.Matches(msg, k.Period):
		return m, m.nextPeriod()
	case key.Matches(msg, k.Clear):
		m.pipeline.ClearFilters()
		m.recompute()
	case key.Matches(msg, k.Sort):
		m.toggleSort(msg.String())
	case key.Matches(msg, k.Check):
		if p, ok := m.current(); ok {
			m.pipeline.Toggle(p.ID)
			m.updateViewport()
		}
	case key.Matches(msg, k.CheckAll):
		m.pipeline.SelectAll(!m.pipeline.AllSelected(m.result.Rows), m.result.Rows)
		m.updateViewport()
	case key.Matches(msg, k.Approve):
		return m, m.bulk(m.pipeline.BulkStatus(domain.StatusApproved))
	case key.Matches(msg, k.Reject):
		return m, m.bulk(m.pipeline.BulkStatus(domain.StatusRejected))
	case key.Matches(msg, k.Pending):
		return m, m.bulk(m.pipeline.BulkStatus(domain.StatusPending))
	case key.Matches(msg, k.BulkArchive):
		return m, m.bulk(m.pipeline.BulkArchive())
	case key.Matches(msg, k.New):
		m.form = newProposalForm(formCreate, domain.Proposal{}, m.now().Format(domain.DateLayout))
		m.mode = modeForm
	case key.Matches(msg, k.Edit):
		if p, ok := m.current(); ok {
			m.form = newProposalForm(formEdit, p, "")
			m.mode = modeForm
		}
	case key.Matches(msg, k.Delete):
		if _, ok := m.current(); ok {
			m.mode = modeConfirmDelete
		}
	case key.Matches(msg, k.Archive):
		if p, ok := m.current(); ok {
			return m, m.archiveCmd(p.ID, !m.pipeline.Archived)
		}
	case key.Matches(msg, k.Partition):
		m.pipeline.SetArchived(!m.pipeline.Archived)
		m.keys.setArchivedView(m.pipeline.Archived)
		m.cursor = 0
		m.recompute()
	case key.Matches(msg, k.Refresh):
		return m, m.refreshCmd()
	case key.Matches(msg, k.SignOut):
		return m, m.signOutCmd()
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.search.Blur()
		m.mode = modeNormal
		return nil
	case tea.KeyEsc:
		m.search.Blur()
		m.search.SetValue("")
		m.pipeline.SetSearch("")
		m.mode = modeNormal
		m.cursor = 0
		m.recompute()
		return nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.pipeline.Filter.Search {
		m.pipeline.SetSearch(m.search.Value())
		m.cursor = 0
		m.recompute()
	}
	return cmd
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	m.mode = modeNormal
	if msg.Type == tea.KeyEnter || msg.String() == "y" || msg.String() == "Y" {
		if p, ok := m.current(); ok {
			return m.deleteCmd(p.ID)
		}
	}
	return nil
}

func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	f := m.form
	switch msg.Type {
	case tea.KeyEsc:
		if f.kind == formLogin {
			return nil
		}
		m.form = nil
		m.mode = modeNormal
		return nil
	case tea.KeyTab, tea.KeyDown:
		return f.move(1)
	case tea.KeyShiftTab, tea.KeyUp:
		return f.move(-1)
	case tea.KeyEnter:
		return m.submitForm()
	}
	return f.update(msg)
}

func (m *Model) submitForm() tea.Cmd {
	f := m.form
	loc := config.Location()
	switch f.kind {
	case formLogin:
		return m.signInCmd(f.value(0), f.fields[1].input.Value())
	case formFilter:
		return m.applyFilterForm(f)
	case formCreate:
		p, err := f.input().Proposal(loc)
		if err != nil {
			return m.notifyLocal(notify.KindError, "Could not save: "+err.Error())
		}
		m.closeForm()
		return m.createCmd(p)
	case formEdit:
		p, err := f.input().Proposal(loc)
		if err != nil {
			return m.notifyLocal(notify.KindError, "Could not update: "+err.Error())
		}
		m.closeForm()
		return m.saveCmd(f.target.ID, domain.PatchFromProposal(p))
	}
	return nil
}

func (m *Model) applyFilterForm(f *form) tea.Cmd {
	next := m.pipeline.Filter
	if f.value(0) != next.DateStart {
		next.SetDateStart(f.value(0))
	}
	if f.value(1) != next.DateEnd {
		next.SetDateEnd(f.value(1))
	}
	next.ValueMin = f.value(2)
	next.ValueMax = f.value(3)
	if err := next.Validate(); err != nil {
		return m.notifyLocal(notify.KindWarning, err.Error())
	}
	m.pipeline.Filter = next
	m.closeForm()
	m.recompute()
	return nil
}

func (m *Model) closeForm() {
	m.form = nil
	m.mode = modeNormal
}

func (m *Model) nextPeriod() tea.Cmd {
	preset := m.pipeline.Filter.Period.Next()
	if err := m.pipeline.ApplyPeriod(preset, m.now()); err != nil {
		return m.notifyLocal(notify.KindError, err.Error())
	}
	m.recompute()
	return nil
}

func (m *Model) toggleSort(digit string) {
	i := int(digit[0] - '1')
	sortable := make([]domain.SortByField, 0, len(render.Columns))
	for _, c := range render.Columns {
		if c.Field != domain.SortByNone {
			sortable = append(sortable, c.Field)
		}
	}
	if i < 0 || i >= len(sortable) {
		return
	}
	m.pipeline.ToggleSort(sortable[i])
	if m.prefs != nil {
		if err := m.prefs.SaveSort(m.pipeline.Sort); err != nil {
			logging.Warn("tui: could not save sort preference", "error", err)
		}
	}
	m.recompute()
}

func (m *Model) bulk(req view.BulkRequest, ok bool) tea.Cmd {
	if !ok {
		return m.notifyLocal(notify.KindInfo, "Select proposals with space first.")
	}
	m.updateViewport()
	return m.bulkCmd(req)
}

func (m *Model) moveCursor(delta int) {
	n := len(m.result.Rows)
	if n == 0 {
		return
	}
	m.cursor = max(0, min(n-1, m.cursor+delta))
	m.updateViewport()
}
