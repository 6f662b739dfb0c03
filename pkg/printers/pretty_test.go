package printers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/journal/pkg/app"
	"tableflip.dev/journal/pkg/entry"
)

func init() {
	color.NoColor = true
}

func TestEntries(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	task := entry.NewTask("write tests", entry.MustDay("2025-10-15"))
	done := entry.NewTask("ship it", entry.MustDay("2025-10-15"))
	done.Status = entry.StatusDone
	note := entry.NewNote("idea")

	pp.Entries(task, done, note)
	got := buf.String()
	for _, want := range []string{"● write tests", "✘ ship it", "⁃ idea"} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in %q", want, got)
		}
	}
}

func TestEntriesShowID(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf, ShowID: true}
	e := entry.NewNote("with id")
	e.ID = "n1"
	pp.Entries(e)
	if !strings.HasPrefix(buf.String(), "n1 ") {
		t.Fatalf("id not printed first: %q", buf.String())
	}
}

func TestEntriesEmpty(t *testing.T) {
	var buf bytes.Buffer
	(&PrettyPrint{Out: &buf}).Entries()
	if !strings.Contains(buf.String(), "none") {
		t.Fatalf("expected none, got %q", buf.String())
	}
}

func TestTitleWithCount(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.TitleWithCount("Tasks", 1, "task")
	pp.TitleWithCount("Notes", 3, "note")
	got := buf.String()
	if !strings.Contains(got, "Tasks - 1 task\n") || !strings.Contains(got, "Notes - 3 notes\n") {
		t.Fatalf("unexpected titles: %q", got)
	}
}

func TestDayTitle(t *testing.T) {
	today := entry.MustDay("2025-10-15")
	if got := DayTitle(today, today); got != "Today, 2025-10-15" {
		t.Fatalf("got %q", got)
	}
	if got := DayTitle(today.Next(), today); !strings.HasPrefix(got, "Tomorrow") {
		t.Fatalf("got %q", got)
	}
	if got := DayTitle("2025-01-01", today); got != "2025-01-01" {
		t.Fatalf("got %q", got)
	}
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	day := entry.MustDay("2025-10-15")
	a := entry.NewTask("a", day)
	b := entry.NewTask("b", day)
	b.Status = entry.StatusDone
	rep := app.Report{
		From:  day,
		To:    day,
		Days:  []app.DayTasks{{Date: day, Tasks: []*entry.Entry{a, b}}},
		Notes: []*entry.Entry{entry.NewNote("n")},
		Todo:  1,
		Done:  1,
	}
	(&PrettyPrint{Out: &buf}).Report(rep)
	got := buf.String()
	if !strings.Contains(got, "2025-10-15 to 2025-10-15") || !strings.Contains(got, "Total") || !strings.Contains(got, "⁃ n") {
		t.Fatalf("unexpected report: %q", got)
	}
}
