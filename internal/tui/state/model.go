// Package state holds the bubbletea model of the proposals TUI.
package state

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/proposal-tracker/internal/app"
	"github.com/cristianoliveira/proposal-tracker/internal/config"
	"github.com/cristianoliveira/proposal-tracker/internal/domain"
	"github.com/cristianoliveira/proposal-tracker/internal/notify"
	"github.com/cristianoliveira/proposal-tracker/internal/view"
)

const (
	headerFooterLines     = 5
	defaultViewportWidth  = 120
	defaultViewportHeight = 22
	toastDuration         = 5 * time.Second
)

type mode int

const (
	modeStarting mode = iota
	modeNormal
	modeSearch
	modeForm
	modeConfirmDelete
)

// SortStore persists the sort choice between runs.
type SortStore interface {
	SaveSort(opts domain.SortOptions) error
}

// Options configures a Model.
type Options struct {
	ItemsPerPage int
	Sort         domain.SortOptions
	Now          func() time.Time
}

// Model is the proposals TUI.
type Model struct {
	ctx   context.Context
	app   *app.App
	sink  *notify.TUISink
	prefs SortStore
	now   func() time.Time

	pipeline *view.Pipeline
	result   view.Result
	cursor   int
	mode     mode
	form     *form

	width    int
	height   int
	viewport viewport.Model
	search   textinput.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap

	toast    notify.Message
	toastSeq int
	hasToast bool
}

// NewModel creates the TUI model. sink must be the sink the app notifies.
func NewModel(a *app.App, sink *notify.TUISink, prefs SortStore, opts Options) *Model {
	if a == nil {
		panic("NewModel: app dependency cannot be nil")
	}
	if sink == nil {
		panic("NewModel: sink dependency cannot be nil")
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().In(config.Location()) }
	}

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "client name"

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := &Model{
		ctx:      context.Background(),
		app:      a,
		sink:     sink,
		prefs:    prefs,
		now:      opts.Now,
		pipeline: view.New(opts.ItemsPerPage, opts.Sort),
		mode:     modeStarting,
		width:    defaultViewportWidth,
		height:   defaultViewportHeight,
		viewport: viewport.New(defaultViewportWidth, defaultViewportHeight-headerFooterLines),
		search:   search,
		spinner:  sp,
		help:     help.New(),
		keys:     defaultKeyMap(),
	}
	m.recompute()
	return m
}

// Init starts the spinner and restores the session.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startCmd())
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-headerFooterLines)
		m.help.Width = msg.Width
		m.recompute()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case loadedMsg:
		return m, m.afterLoad()
	case opDoneMsg:
		m.recompute()
		return m, m.syncToast()
	case signedInMsg:
		if msg.err == nil {
			m.form = nil
			m.mode = modeNormal
		}
		m.recompute()
		return m, m.syncToast()
	case signedOutMsg:
		m.pipeline.Selection.Clear()
		m.recompute()
		m.openLogin()
		return m, m.syncToast()
	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.hasToast = false
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// recompute re-derives the visible page from the app's list.
func (m *Model) recompute() {
	m.result = m.pipeline.Apply(m.app.Proposals())
	if m.cursor >= len(m.result.Rows) {
		m.cursor = len(m.result.Rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.updateViewport()
}

func (m *Model) current() (domain.Proposal, bool) {
	if m.cursor < 0 || m.cursor >= len(m.result.Rows) {
		return domain.Proposal{}, false
	}
	return m.result.Rows[m.cursor], true
}

func (m *Model) afterLoad() tea.Cmd {
	m.recompute()
	if m.app.Session() == nil {
		m.openLogin()
	} else if m.mode == modeStarting {
		m.mode = modeNormal
	}
	return m.syncToast()
}

func (m *Model) openLogin() {
	m.form = newLoginForm()
	m.mode = modeForm
}

// syncToast shows the sink's latest message when it is new.
func (m *Model) syncToast() tea.Cmd {
	latest, ok := m.sink.Latest()
	if !ok || (m.toastSeq > 0 && !latest.Timestamp.After(m.toast.Timestamp)) {
		return nil
	}
	m.toast = latest
	m.hasToast = true
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg { return clearToastMsg{seq: seq} })
}

// notifyLocal reports a UI-side problem through the same sink as the app.
func (m *Model) notifyLocal(kind notify.Kind, msg string) tea.Cmd {
	m.sink.Notify(kind, msg)
	return m.syncToast()
}
