package journal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tableflip.dev/journal/pkg/app"
	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/logging"
	"tableflip.dev/journal/pkg/store"
)

var today = entry.MustDay("2025-10-15")

func fixedClock() time.Time {
	return time.Date(2025, 10, 15, 9, 30, 0, 0, time.UTC)
}

func newTestController(t *testing.T, opts ...Option) (*Controller, *app.Repository) {
	t.Helper()
	st := store.NewMemory()
	repo := app.NewRepository(app.Session{Store: st, UserID: "u1"}, app.WithClock(fixedClock), app.WithLocation(time.UTC))
	c, err := New(context.Background(), repo, opts...)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	t.Cleanup(func() {
		c.Close()
		_ = st.Close()
	})
	return c, repo
}

func TestNavigation(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t)

	if c.SelectedDate() != today || !c.IsToday() {
		t.Fatalf("expected to start on today, got %s", c.SelectedDate())
	}
	if err := c.NextDay(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}
	if c.SelectedDate() != today.Next() || c.IsToday() {
		t.Fatalf("expected tomorrow, got %s", c.SelectedDate())
	}
	_ = c.PreviousDay(ctx)
	_ = c.PreviousDay(ctx)
	if c.SelectedDate() != today.Prev() {
		t.Fatalf("expected yesterday, got %s", c.SelectedDate())
	}
	_ = c.ResetToToday(ctx)
	if !c.IsToday() {
		t.Fatalf("expected today, got %s", c.SelectedDate())
	}
	if err := c.SetDate(ctx, "15/10/2025"); !errors.Is(err, entry.ErrInvalidDay) {
		t.Fatalf("expected ErrInvalidDay, got %v", err)
	}
}

func TestToggleView(t *testing.T) {
	c, _ := newTestController(t)
	if c.ActiveView() != ViewTasks {
		t.Fatalf("expected tasks first, got %s", c.ActiveView())
	}
	if v := c.ToggleView(); v != ViewNotes {
		t.Fatalf("expected notes, got %s", v)
	}
	c.SetView(ViewTasks)
	if c.ActiveView() != ViewTasks {
		t.Fatal("SetView ignored")
	}
}

func TestParseView(t *testing.T) {
	for in, want := range map[string]View{"tasks": ViewTasks, "notes": ViewNotes, "braindump": ViewNotes} {
		got, err := ParseView(in)
		if err != nil || got != want {
			t.Fatalf("ParseView(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseView("calendar"); err == nil {
		t.Fatal("expected error")
	}
}

func TestPresentationOrdersTodoFirst(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t)

	a, _ := c.AddTask(ctx, "A")
	_, _ = c.AddTask(ctx, "B")
	_, _ = c.AddTask(ctx, "C")
	d, _ := c.AddTask(ctx, "D")
	_ = c.Toggle(ctx, a)
	_ = c.Toggle(ctx, d)
	_, _ = c.AddNote(ctx, "idea")

	p := c.Presentation()
	var got []string
	for _, e := range p.Tasks {
		got = append(got, e.Content)
	}
	if strings.Join(got, "") != "BCAD" {
		t.Fatalf("expected BCAD, got %v", got)
	}
	if p.TodoCount != 2 || p.DoneCount != 2 || p.NoteCount != 1 {
		t.Fatalf("unexpected counts: %+v", p)
	}
	if p.Loading || !p.Today || p.Date != today {
		t.Fatalf("unexpected frame: %+v", p)
	}
}

func TestAddTaskUsesSelectedDate(t *testing.T) {
	ctx := context.Background()
	c, repo := newTestController(t)
	_ = c.NextDay(ctx)
	id, err := c.AddTask(ctx, "tomorrow's job")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	got, err := repo.Lookup(ctx, id)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.Date != today.Next() {
		t.Fatalf("task on %s", got.Date)
	}
	if len(c.Presentation().Tasks) != 1 {
		t.Fatal("task not shown on the selected day")
	}
}

func TestEmptyContentIsRefusedQuietly(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t)
	if _, err := c.AddNote(ctx, "   "); !errors.Is(err, app.ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	if c.LastError() != nil {
		t.Fatalf("empty input recorded as failure: %v", c.LastError())
	}
}

func TestMigrateDoneTaskIsRefused(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	log, _ := logging.New(&logs, "warn")
	c, _ := newTestController(t, WithLogger(log))

	id, _ := c.AddTask(ctx, "finished")
	_ = c.Toggle(ctx, id)
	if err := c.Migrate(ctx, id); !errors.Is(err, app.ErrNotTodo) {
		t.Fatalf("expected ErrNotTodo, got %v", err)
	}
	if !errors.Is(c.LastError(), app.ErrNotTodo) {
		t.Fatalf("LastError = %v", c.LastError())
	}
	if !strings.Contains(logs.String(), "op=migrate") {
		t.Fatalf("failure not logged: %s", logs.String())
	}
	if len(c.Presentation().Tasks) != 1 {
		t.Fatal("done task moved")
	}
}

func TestMigrateMovesToNextDay(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t)
	id, _ := c.AddTask(ctx, "later")
	if err := c.Migrate(ctx, id); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(c.Presentation().Tasks) != 0 {
		t.Fatal("task still on today")
	}
	_ = c.NextDay(ctx)
	p := c.Presentation()
	if len(p.Tasks) != 1 || p.Tasks[0].ID != id {
		t.Fatalf("task not on tomorrow: %+v", p.Tasks)
	}
	if c.LastError() != nil {
		t.Fatalf("unexpected error: %v", c.LastError())
	}
}

func TestConvertUsesNoteContent(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t)
	_ = c.NextDay(ctx)

	noteID, _ := c.AddNote(ctx, "call the plumber")
	taskID, err := c.Convert(ctx, noteID)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	_ = c.ResetToToday(ctx)
	p := c.Presentation()
	if p.NoteCount != 0 {
		t.Fatalf("note survived: %+v", p.Notes)
	}
	if len(p.Tasks) != 1 || p.Tasks[0].ID != taskID || p.Tasks[0].Content != "call the plumber" {
		t.Fatalf("expected converted task today: %+v", p.Tasks)
	}
}

func TestConvertRejectsTask(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t)
	id, _ := c.AddTask(ctx, "already a task")
	if _, err := c.Convert(ctx, id); !errors.Is(err, app.ErrNotNote) {
		t.Fatalf("expected ErrNotNote, got %v", err)
	}
}

func TestSuccessClearsLastError(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t)
	if err := c.Toggle(ctx, "missing"); err == nil {
		t.Fatal("expected toggle of unknown id to fail")
	}
	if c.LastError() == nil {
		t.Fatal("failure not kept")
	}
	id, _ := c.AddTask(ctx, "ok")
	if c.LastError() != nil {
		t.Fatal("success did not clear the error")
	}
	if err := c.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(c.Presentation().Tasks) != 0 {
		t.Fatal("deleted task still shown")
	}
}

func TestOnChangeFires(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t)
	n := 0
	stop := c.OnChange(func() { n++ })
	_, _ = c.AddNote(ctx, "x")
	if n == 0 {
		t.Fatal("listener not called")
	}
	stop()
	before := n
	_, _ = c.AddNote(ctx, "y")
	if n != before {
		t.Fatal("listener called after stop")
	}
}

func countContent(p Presentation, content string) (notes, tasks int) {
	for _, n := range p.Notes {
		if n.Content == content {
			notes++
		}
	}
	for _, t := range p.Tasks {
		if t.Content == content {
			tasks++
		}
	}
	return notes, tasks
}

func TestConvertIsNeverSeenHalfDone(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t)

	var (
		mu      sync.Mutex
		current string
		frames  int
		bad     []string
	)
	stop := c.OnChange(func() {
		mu.Lock()
		content := current
		mu.Unlock()
		if content == "" {
			return
		}
		notes, tasks := countContent(c.Presentation(), content)
		mu.Lock()
		defer mu.Unlock()
		frames++
		if notes+tasks != 1 {
			bad = append(bad, fmt.Sprintf("%s: %d notes, %d tasks", content, notes, tasks))
		}
	})
	defer stop()

	// A reader on another goroutine must never see a note and its task
	// together either.
	var done atomic.Bool
	readerErr := make(chan string, 1)
	go func() {
		defer close(readerErr)
		for !done.Load() {
			p := c.Presentation()
			seen := make(map[string]bool, len(p.Notes))
			for _, n := range p.Notes {
				seen[n.Content] = true
			}
			for _, tk := range p.Tasks {
				if seen[tk.Content] {
					readerErr <- tk.Content
					return
				}
			}
		}
	}()

	for i := 0; i < 200; i++ {
		content := fmt.Sprintf("idea %d", i)
		id, err := c.AddNote(ctx, content)
		if err != nil {
			t.Fatalf("add note: %v", err)
		}
		mu.Lock()
		current = content
		mu.Unlock()
		if _, err := c.Convert(ctx, id); err != nil {
			t.Fatalf("convert: %v", err)
		}
		mu.Lock()
		current = ""
		mu.Unlock()
	}
	done.Store(true)
	if content, ok := <-readerErr; ok {
		t.Fatalf("reader saw %q as both a note and a task", content)
	}

	mu.Lock()
	defer mu.Unlock()
	if frames == 0 {
		t.Fatal("no change observed during convert")
	}
	if len(bad) != 0 {
		t.Fatalf("half converted frames: %v", bad)
	}
	p := c.Presentation()
	if len(p.Notes) != 0 || len(p.Tasks) != 200 {
		t.Fatalf("expected 200 tasks and no notes, got %d tasks %d notes", len(p.Tasks), len(p.Notes))
	}
}

func TestOnChangeFiresOncePerWrite(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t)
	id, _ := c.AddNote(ctx, "one round")

	n := 0
	stop := c.OnChange(func() { n++ })
	defer stop()
	if _, err := c.Convert(ctx, id); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one change for a convert touching both lists, got %d", n)
	}
}
