package printers

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/journal/pkg/app"
	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/glyph"
)

type PrettyPrint struct {
	ShowID bool
	// Out defaults to color.Output.
	Out io.Writer
}

var (
	spacing = strings.Repeat(" ", len("8c4ec3f2-1e0b-4b8f-9f7a-0a6c1f3d2b9e  "))
)

// Writer is where pp prints.
func (pp *PrettyPrint) Writer() io.Writer {
	return pp.out()
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)

	if pp.ShowID {
		_, _ = t.Fprint(pp.out(), spacing)
	}
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int, noun string) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	if pp.ShowID {
		_, _ = t.Fprint(pp.out(), spacing)
	}
	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d %s", count, noun)
	if count != 1 {
		_, _ = c.Fprint(pp.out(), "s")
	}
	_, _ = c.Fprintln(pp.out())
}

// DayTitle names a day, marking today.
func DayTitle(d entry.Day, today entry.Day) string {
	switch d {
	case today:
		return "Today, " + d.String()
	case today.Next():
		return "Tomorrow, " + d.String()
	case today.Prev():
		return "Yesterday, " + d.String()
	}
	return d.String()
}

// Entries prints one line per entry. Done tasks are struck through.
func (pp *PrettyPrint) Entries(entries ...*entry.Entry) {
	w := pp.out()
	if len(entries) == 0 {
		f := color.New(color.Faint, color.Italic)
		if pp.ShowID {
			_, _ = f.Fprint(w, spacing)
		}
		_, _ = f.Fprint(w, " none\n\n")
		return
	}

	t := color.New()
	done := color.New(color.Faint, color.CrossedOut)
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)

	for _, e := range entries {
		if pp.ShowID {
			_, _ = y.Fprint(w, e.ID)
			if pad := len(spacing) - len(e.ID); pad > 0 {
				_, _ = y.Fprint(w, strings.Repeat(" ", pad))
			}
		}
		b := glyph.For(e)
		if b == glyph.Done {
			_, _ = t.Fprintf(w, "%s ", b)
			_, _ = done.Fprintln(w, e.Content)
			continue
		}
		_, _ = t.Fprintf(w, "%s %s\n", b, e.Content)
	}
	_, _ = t.Fprintln(w)
}

// Tasks prints the tasks of day, todo first.
func (pp *PrettyPrint) Tasks(day, today entry.Day, tasks []*entry.Entry) {
	pp.TitleWithCount(DayTitle(day, today), len(tasks), "task")
	pp.Entries(entry.Partition(tasks)...)
}

func (pp *PrettyPrint) Notes(notes []*entry.Entry) {
	pp.TitleWithCount("Brain dump", len(notes), "note")
	pp.Entries(notes...)
}

// ListFor reprints the list e lives in after a change to it.
func (pp *PrettyPrint) ListFor(ctx context.Context, repo *app.Repository, e *entry.Entry) error {
	if e.IsNote() {
		notes, err := repo.ListNotes(ctx)
		if err != nil {
			return err
		}
		pp.Notes(notes)
		return nil
	}
	tasks, err := repo.ListTasks(ctx, e.Date)
	if err != nil {
		return err
	}
	pp.Tasks(e.Date, repo.Today(), tasks)
	return nil
}

// Report prints a per-day table followed by the notes.
func (pp *PrettyPrint) Report(rep app.Report) {
	w := pp.out()
	bold := color.New(color.Bold)

	pp.Title(fmt.Sprintf("%s to %s", rep.From, rep.To))
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Day"), bold.Sprint("Todo"), bold.Sprint("Done"))
	for _, d := range rep.Days {
		todo := 0
		for _, t := range d.Tasks {
			if t.Status == entry.StatusTodo {
				todo++
			}
		}
		tbl.AddRow(d.Date, todo, len(d.Tasks)-todo)
	}
	tbl.AddRow(bold.Sprint("Total"), rep.Todo, rep.Done)
	tbl.RightAlign(1)
	tbl.RightAlign(2)
	_, _ = fmt.Fprintln(w, tbl)
	pp.NewLine()

	pp.Notes(rep.Notes)
}
