package state

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	PrevPage    key.Binding
	NextPage    key.Binding
	Search      key.Binding
	Filters     key.Binding
	Period      key.Binding
	Clear       key.Binding
	Sort        key.Binding
	Check       key.Binding
	CheckAll    key.Binding
	Approve     key.Binding
	Reject      key.Binding
	Pending     key.Binding
	BulkArchive key.Binding
	New         key.Binding
	Edit        key.Binding
	Delete      key.Binding
	Archive     key.Binding
	Partition   key.Binding
	Refresh     key.Binding
	SignOut     key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PrevPage:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
		NextPage:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Filters:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filters")),
		Period:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "period")),
		Clear:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
		Sort:        key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6"), key.WithHelp("1-6", "sort column")),
		Check:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		CheckAll:    key.NewBinding(key.WithKeys("*"), key.WithHelp("*", "select page")),
		Approve:     key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "approve selected")),
		Reject:      key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reject selected")),
		Pending:     key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "selected pending")),
		BulkArchive: key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "archive/restore selected")),
		New:         key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Edit:        key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Archive:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "archive/restore")),
		Partition:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "active/archived")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		SignOut:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "sign out")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.New, k.Edit, k.Check, k.Partition, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevPage, k.NextPage, k.Partition, k.Refresh},
		{k.Search, k.Filters, k.Period, k.Clear, k.Sort},
		{k.Check, k.CheckAll, k.Approve, k.Reject, k.Pending, k.BulkArchive},
		{k.New, k.Edit, k.Delete, k.Archive, k.SignOut, k.Quit},
	}
}

// setArchivedView disables the status keys in the archived partition.
func (k *keyMap) setArchivedView(archived bool) {
	k.Approve.SetEnabled(!archived)
	k.Reject.SetEnabled(!archived)
	k.Pending.SetEnabled(!archived)
}
