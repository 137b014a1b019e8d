package state

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/proposal-tracker/internal/domain"
	"github.com/cristianoliveira/proposal-tracker/internal/view"
)

// Backend calls run as commands, off the update loop. The app notifies the
// sink itself; the returned message only tells the model to redraw.

func (m *Model) startCmd() tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: a.Start(ctx)}
	}
}

func (m *Model) refreshCmd() tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: a.Refresh(ctx)}
	}
}

func (m *Model) signInCmd(email, password string) tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		return signedInMsg{err: a.SignIn(ctx, email, password)}
	}
}

func (m *Model) signOutCmd() tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		_ = a.SignOut(ctx)
		return signedOutMsg{}
	}
}

func (m *Model) createCmd(p domain.Proposal) tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		_, err := a.Create(ctx, p)
		return opDoneMsg{op: "create", err: err}
	}
}

func (m *Model) saveCmd(id string, patch domain.Patch) tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: "save", err: a.Save(ctx, id, patch)}
	}
}

func (m *Model) deleteCmd(id string) tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: "delete", err: a.Delete(ctx, id)}
	}
}

func (m *Model) archiveCmd(id string, archived bool) tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: "archive", err: a.SetArchived(ctx, id, archived)}
	}
}

func (m *Model) bulkCmd(req view.BulkRequest) tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: "bulk", err: a.ApplyBulk(ctx, req)}
	}
}
