package state

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cristianoliveira/proposal-tracker/internal/domain"
)

type formKind int

const (
	formCreate formKind = iota
	formEdit
	formLogin
	formFilter
)

func (k formKind) title() string {
	switch k {
	case formCreate:
		return "New proposal"
	case formEdit:
		return "Edit proposal"
	case formLogin:
		return "Sign in"
	default:
		return "Filters"
	}
}

type formField struct {
	label string
	input textinput.Model
}

// form is a vertical list of labelled text inputs with one focused field.
type form struct {
	kind   formKind
	target domain.Proposal
	fields []formField
	focus  int
}

func newField(label, value, placeholder string) formField {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = 256
	in.SetValue(value)
	return formField{label: label, input: in}
}

func newProposalForm(kind formKind, target domain.Proposal, today string) *form {
	in := domain.ProposalInput{SentDate: today, LastFollowUp: today, Status: domain.StatusPending.String()}
	if kind == formEdit {
		in = domain.InputFromProposal(target)
	}
	f := &form{kind: kind, target: target, fields: []formField{
		newField("Client", in.ClientName, "client name"),
		newField("Sent", in.SentDate, "YYYY-MM-DD"),
		newField("Value", in.Value, "0,00"),
		newField("Status", in.Status, "pending | approved | rejected"),
		newField("Sent via", in.SentVia, "email, whatsapp..."),
		newField("Last follow-up", in.LastFollowUp, "YYYY-MM-DD"),
		newField("Expected return", in.ExpectedReturnDate, "YYYY-MM-DD (optional)"),
		newField("Notes", in.Notes, ""),
	}}
	f.fields[0].input.Focus()
	return f
}

func newLoginForm() *form {
	email := newField("Email", "", "you@example.com")
	password := newField("Password", "", "")
	password.input.EchoMode = textinput.EchoPassword
	password.input.EchoCharacter = '•'
	f := &form{kind: formLogin, fields: []formField{email, password}}
	f.fields[0].input.Focus()
	return f
}

func newFilterForm(filter domain.Filter) *form {
	f := &form{kind: formFilter, fields: []formField{
		newField("Sent from", filter.DateStart, "YYYY-MM-DD"),
		newField("Sent to", filter.DateEnd, "YYYY-MM-DD"),
		newField("Min value", filter.ValueMin, "0"),
		newField("Max value", filter.ValueMax, ""),
	}}
	f.fields[0].input.Focus()
	return f
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.fields[i].input.Value())
}

// input returns the proposal fields of a create or edit form.
func (f *form) input() domain.ProposalInput {
	in := domain.ProposalInput{
		ClientName:         f.value(0),
		SentDate:           f.value(1),
		Value:              f.value(2),
		Status:             f.value(3),
		SentVia:            f.value(4),
		LastFollowUp:       f.value(5),
		ExpectedReturnDate: f.value(6),
		Notes:              f.value(7),
	}
	if f.kind == formEdit {
		archived := f.target.Archived
		in.Archived = &archived
	}
	return in
}

func (f *form) move(delta int) tea.Cmd {
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	return f.fields[f.focus].input.Focus()
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *form) view(width int) string {
	title := lipgloss.NewStyle().Bold(true).Render(f.kind.title())
	label := lipgloss.NewStyle().Width(16)
	focused := label.Foreground(lipgloss.Color("4")).Bold(true)

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	for i, field := range f.fields {
		style := label
		if i == f.focus {
			style = focused
		}
		b.WriteString(style.Render(field.label))
		b.WriteString(field.input.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("241")).
		Render("tab/shift+tab: move  |  enter: save  |  esc: cancel"))
	return lipgloss.NewStyle().MaxWidth(width).Render(b.String())
}
