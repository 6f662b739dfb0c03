package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	PrevDay key.Binding
	NextDay key.Binding
	Today   key.Binding
	Switch  key.Binding
	Add     key.Binding
	Edit    key.Binding
	Toggle  key.Binding
	Migrate key.Binding
	Convert key.Binding
	Delete  key.Binding
	Help    key.Binding
	Quit    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		PrevDay: key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h", "previous day")),
		NextDay: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l", "next day")),
		Today:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Switch:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "tasks/brain dump")),
		Add:     key.NewBinding(key.WithKeys("a", "o"), key.WithHelp("a", "add")),
		Edit:    key.NewBinding(key.WithKeys("e", "i"), key.WithHelp("e", "edit")),
		Toggle:  key.NewBinding(key.WithKeys("x", " "), key.WithHelp("x", "done/undone")),
		Migrate: key.NewBinding(key.WithKeys("m", ">"), key.WithHelp("m", "move to next day")),
		Convert: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "make task")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Confirm: key.NewBinding(key.WithKeys("enter")),
		Cancel:  key.NewBinding(key.WithKeys("esc")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Switch, k.Add, k.Toggle, k.Migrate, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevDay, k.NextDay, k.Today},
		{k.Switch, k.Add, k.Edit, k.Delete},
		{k.Toggle, k.Migrate, k.Convert},
		{k.Help, k.Quit},
	}
}
