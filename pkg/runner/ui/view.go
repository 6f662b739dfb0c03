package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/glyph"
	"tableflip.dev/journal/pkg/journal"
	"tableflip.dev/journal/pkg/printers"
)

var (
	activeTab   = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("218"))
	inactiveTab = lipgloss.NewStyle().Faint(true)
	dateStyle   = lipgloss.NewStyle().Bold(true)
	doneStyle   = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("218")).Bold(true)
	emptyStyle  = lipgloss.NewStyle().Faint(true).Italic(true)
	statusStyle = lipgloss.NewStyle().Faint(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func (m Model) View() string {
	var b strings.Builder
	f := m.frame

	tasks := tabLabel("Tasks", f.TodoCount)
	notes := tabLabel("Brain dump", f.NoteCount)
	if f.View == journal.ViewTasks {
		b.WriteString(activeTab.Render(tasks) + "  " + inactiveTab.Render(notes))
	} else {
		b.WriteString(inactiveTab.Render(tasks) + "  " + activeTab.Render(notes))
	}
	b.WriteString("\n\n")

	if f.View == journal.ViewTasks {
		b.WriteString(dateStyle.Render(printers.DayTitle(f.Date, m.today())))
		b.WriteString("\n")
	}

	items := m.items()
	switch {
	case f.Loading && f.View == journal.ViewTasks:
		b.WriteString(emptyStyle.Render("  loading…"))
		b.WriteString("\n")
	case len(items) == 0:
		b.WriteString(emptyStyle.Render("  nothing here yet"))
		b.WriteString("\n")
	}
	for i, e := range items {
		b.WriteString(m.renderItem(i, e))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.mode == modeInsert {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.status != "" {
		if strings.HasPrefix(m.status, "ERR: ") {
			b.WriteString(errStyle.Render(m.status))
		} else {
			b.WriteString(statusStyle.Render(m.status))
		}
		b.WriteString("\n")
	}
	if m.showHelp {
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return b.String()
}

func (m Model) renderItem(i int, e *entry.Entry) string {
	prefix := "  "
	if i == m.cursor {
		prefix = cursorStyle.Render("> ")
	}
	content := trimWidth(e.Content, m.width-6)
	bullet := glyph.For(e)
	if bullet == glyph.Done {
		content = doneStyle.Render(content)
	}
	return prefix + bullet.String() + " " + content
}

func (m Model) today() entry.Day {
	if m.frame.Today {
		return m.frame.Date
	}
	return m.ctrl.Today()
}
