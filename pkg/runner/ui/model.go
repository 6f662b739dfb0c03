package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tableflip.dev/journal/pkg/app"
	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/journal"
)

type mode int

const (
	modeNormal mode = iota
	modeInsert
)

type action int

const (
	actionNone action = iota
	actionAdd
	actionEdit
)

// changedMsg tells the model the controller has something new to show.
type changedMsg struct{}

// Model draws the selected day's tasks or the brain dump and turns key
// presses into controller intents.
type Model struct {
	ctx  context.Context
	ctrl *journal.Controller

	frame  journal.Presentation
	cursor int

	mode     mode
	action   action
	editID   string
	input    textinput.Model
	status   string
	keys     keyMap
	help     help.Model
	showHelp bool

	width  int
	height int
}

func New(ctx context.Context, ctrl *journal.Controller) Model {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 512

	m := Model{
		ctx:   ctx,
		ctrl:  ctrl,
		input: ti,
		keys:  defaultKeys(),
		help:  help.New(),
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// refresh pulls a new frame and keeps the cursor on the list.
func (m *Model) refresh() {
	m.frame = m.ctrl.Presentation()
	if n := len(m.items()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) items() []*entry.Entry {
	if m.frame.View == journal.ViewNotes {
		return m.frame.Notes
	}
	return m.frame.Tasks
}

func (m *Model) current() *entry.Entry {
	items := m.items()
	if m.cursor < 0 || m.cursor >= len(items) {
		return nil
	}
	return items[m.cursor]
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = msg.Width - 4
	case changedMsg:
		m.refresh()
	case tea.KeyMsg:
		if m.mode == modeInsert {
			return m.updateInsert(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := m.ctx
	tasks := m.frame.View == journal.ViewTasks

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Switch):
		m.ctrl.ToggleView()
		m.cursor = 0
	case key.Matches(msg, m.keys.PrevDay) && tasks:
		m.report(m.ctrl.PreviousDay(ctx), "")
		m.cursor = 0
	case key.Matches(msg, m.keys.NextDay) && tasks:
		m.report(m.ctrl.NextDay(ctx), "")
		m.cursor = 0
	case key.Matches(msg, m.keys.Today) && tasks:
		m.report(m.ctrl.ResetToToday(ctx), "")
		m.cursor = 0
	case key.Matches(msg, m.keys.Add):
		m.mode, m.action = modeInsert, actionAdd
		m.input.Placeholder = "New task"
		if !tasks {
			m.input.Placeholder = "New note"
		}
		m.input.SetValue("")
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Edit):
		if e := m.current(); e != nil {
			m.mode, m.action, m.editID = modeInsert, actionEdit, e.ID
			m.input.Placeholder = ""
			m.input.SetValue(e.Content)
			m.input.CursorEnd()
			return m, m.input.Focus()
		}
	case key.Matches(msg, m.keys.Toggle) && tasks:
		if e := m.current(); e != nil {
			m.report(m.ctrl.Toggle(ctx, e.ID), "")
		}
	case key.Matches(msg, m.keys.Migrate) && tasks:
		if e := m.current(); e != nil {
			m.report(m.ctrl.Migrate(ctx, e.ID), "Moved to "+m.frame.Date.Next().String())
		}
	case key.Matches(msg, m.keys.Convert) && !tasks:
		if e := m.current(); e != nil {
			_, err := m.ctrl.Convert(ctx, e.ID)
			m.report(err, "Added to today's tasks")
		}
	case key.Matches(msg, m.keys.Delete):
		if e := m.current(); e != nil {
			m.report(m.ctrl.Delete(ctx, e.ID), "Deleted")
		}
	}
	m.refresh()
	return m, nil
}

func (m Model) updateInsert(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.leaveInsert()
		m.status = "Cancelled"
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		text := m.input.Value()
		switch m.action {
		case actionAdd:
			var err error
			if m.frame.View == journal.ViewNotes {
				_, err = m.ctrl.AddNote(m.ctx, text)
			} else {
				_, err = m.ctrl.AddTask(m.ctx, text)
			}
			if errors.Is(err, app.ErrEmptyContent) {
				// Nothing typed yet; stay in insert mode.
				return m, nil
			}
			m.report(err, "Added")
		case actionEdit:
			m.report(m.ctrl.Edit(m.ctx, m.editID, text), "Saved")
		}
		m.leaveInsert()
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) leaveInsert() {
	m.mode, m.action, m.editID = modeNormal, actionNone, ""
	m.input.Reset()
	m.input.Blur()
}

func (m *Model) report(err error, ok string) {
	switch {
	case err != nil:
		m.status = "ERR: " + err.Error()
	case ok != "":
		m.status = ok
	default:
		m.status = ""
	}
}

func tabLabel(name string, n int) string {
	return fmt.Sprintf("%s (%d)", name, n)
}

func trimWidth(s string, width int) string {
	if width <= 0 || len([]rune(s)) <= width {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:width-1])) + "…"
}
