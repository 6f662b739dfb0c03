package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"tableflip.dev/journal/pkg/app"
	"tableflip.dev/journal/pkg/store"
)

func fixedClock() time.Time {
	return time.Date(2025, 10, 15, 9, 30, 0, 0, time.UTC)
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	st := store.NewMemory()
	t.Cleanup(func() { _ = st.Close() })
	repo := app.NewRepository(app.Session{Store: st, UserID: "mcp-user"}, app.WithClock(fixedClock), app.WithLocation(time.UTC))
	return NewService(repo)
}

func TestServiceAddTaskDefaultsToToday(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	dto, err := svc.AddTask(ctx, "Finish report", "")
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if dto.Date != "2025-10-15" {
		t.Fatalf("expected today, got %s", dto.Date)
	}
	if dto.Content != "Finish report" || dto.Status != "todo" || dto.Type != "task" {
		t.Fatalf("unexpected task: %+v", dto)
	}
	if dto.ID == "" {
		t.Fatalf("expected generated id")
	}
}

func TestServiceAddTaskRelativeDate(t *testing.T) {
	svc := newTestService(t)
	dto, err := svc.AddTask(context.Background(), "later", "+2d")
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if dto.Date != "2025-10-17" {
		t.Fatalf("expected 2025-10-17, got %s", dto.Date)
	}
	if _, err := svc.AddTask(context.Background(), "bad", "someday"); err == nil {
		t.Fatal("expected invalid date error")
	}
}

func TestServiceToggleStatus(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	dto, _ := svc.AddTask(ctx, "Finish report", "today")
	done, err := svc.ToggleStatus(ctx, dto.ID)
	if err != nil {
		t.Fatalf("ToggleStatus failed: %v", err)
	}
	if !done.IsCompleted || done.Status != "done" {
		t.Fatalf("expected entry to be completed: %+v", done)
	}
}

func TestServiceListTasksOrdersTodoFirst(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	a, _ := svc.AddTask(ctx, "a", "")
	_, _ = svc.AddTask(ctx, "b", "")
	_, _ = svc.ToggleStatus(ctx, a.ID)

	day, tasks, err := svc.ListTasks(ctx, "today")
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if day != "2025-10-15" || len(tasks) != 2 || tasks[0].Content != "b" {
		t.Fatalf("unexpected tasks for %s: %+v", day, tasks)
	}
}

func TestServiceMigrateTask(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	dto, _ := svc.AddTask(ctx, "carry", "")

	res, err := svc.MigrateTask(ctx, dto.ID)
	if err != nil {
		t.Fatalf("MigrateTask failed: %v", err)
	}
	if res.From != "2025-10-15" || res.To != "2025-10-16" {
		t.Fatalf("unexpected migration: %+v", res)
	}

	_, _ = svc.ToggleStatus(ctx, dto.ID)
	if _, err := svc.MigrateTask(ctx, dto.ID); !errors.Is(err, app.ErrNotTodo) {
		t.Fatalf("expected ErrNotTodo for a done task, got %v", err)
	}
}

func TestServiceConvertNoteKeepsText(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	note, _ := svc.AddNote(ctx, "buy milk")

	res, err := svc.ConvertNote(ctx, note.ID, "")
	if err != nil {
		t.Fatalf("ConvertNote failed: %v", err)
	}
	if res.Task.Content != "buy milk" || res.Task.Date != "2025-10-15" {
		t.Fatalf("unexpected task: %+v", res.Task)
	}
	notes, _ := svc.ListNotes(ctx)
	if len(notes) != 0 {
		t.Fatalf("note not removed: %+v", notes)
	}
	if _, err := svc.ConvertNote(ctx, res.Task.ID, ""); !errors.Is(err, app.ErrNotNote) {
		t.Fatalf("expected ErrNotNote, got %v", err)
	}
}

func TestServiceEditAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	note, _ := svc.AddNote(ctx, "draft")

	edited, err := svc.EditContent(ctx, note.ID, "final")
	if err != nil {
		t.Fatalf("EditContent failed: %v", err)
	}
	if edited.Content != "final" {
		t.Fatalf("expected final, got %s", edited.Content)
	}
	if _, err := svc.EditContent(ctx, "missing", "x"); !errors.Is(err, app.ErrUnknownEntry) {
		t.Fatalf("expected ErrUnknownEntry, got %v", err)
	}

	if err := svc.DeleteEntry(ctx, note.ID); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}
	if err := svc.DeleteEntry(ctx, note.ID); err != nil {
		t.Fatalf("second delete should succeed: %v", err)
	}
}

func TestServiceWithoutJournal(t *testing.T) {
	svc := &Service{}
	if _, err := svc.ListNotes(context.Background()); !errors.Is(err, errNoJournal) {
		t.Fatalf("expected errNoJournal, got %v", err)
	}
}
