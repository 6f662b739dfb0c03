package app

import (
	"context"
	"testing"

	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/store"
)

func TestSetDateTearsDownExactlyOnePriorSubscription(t *testing.T) {
	ctx := context.Background()
	r, st := newTestRepo(t)

	view, err := r.TasksForDate(ctx, today)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if err := view.SetDate(ctx, tomorrow); err != nil {
		t.Fatalf("set date: %v", err)
	}

	want := []string{
		"subscribe " + store.Tasks(today).String(),
		"unsubscribe " + store.Tasks(today).String(),
		"subscribe " + store.Tasks(tomorrow).String(),
	}
	got := st.eventLog()
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, got)
		}
	}
	if n := st.Subscribers(userID); n != 1 {
		t.Fatalf("expected one live subscription, got %d", n)
	}
	if view.Date() != tomorrow {
		t.Fatalf("view on %s", view.Date())
	}
}

func TestSetDateSameDayIsNoop(t *testing.T) {
	ctx := context.Background()
	r, st := newTestRepo(t)
	view, _ := r.TasksForDate(ctx, today)
	_ = view.SetDate(ctx, today)
	if n := st.callsOf("subscribe"); n != 1 {
		t.Fatalf("expected one subscribe, got %d", n)
	}
}

func TestOldDateWritesDoNotReachView(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo(t)
	view, _ := r.TasksForDate(ctx, today)
	_ = view.SetDate(ctx, tomorrow)

	changes := 0
	view.OnChange(func() { changes++ })
	if _, err := r.AddTask(ctx, "old day", today); err != nil {
		t.Fatalf("add: %v", err)
	}
	if changes != 0 {
		t.Fatalf("stale subscription delivered %d times", changes)
	}
	if len(view.Snapshot()) != 0 {
		t.Fatalf("view shows another day's task: %+v", view.Snapshot())
	}

	if _, err := r.AddTask(ctx, "new day", tomorrow); err != nil {
		t.Fatalf("add: %v", err)
	}
	if changes != 1 || len(view.Snapshot()) != 1 {
		t.Fatalf("expected one delivery for the current day, got %d", changes)
	}
}

func TestStaleGenerationIsDropped(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo(t)
	view, _ := r.TasksForDate(ctx, today)
	staleGen := view.gen
	_ = view.SetDate(ctx, tomorrow)

	view.deliver(staleGen, []*entry.Entry{{ID: "late", Type: entry.TypeTask, Status: entry.StatusTodo, Date: today}})
	if len(view.Snapshot()) != 0 {
		t.Fatalf("late delivery applied: %+v", view.Snapshot())
	}
}

func TestClosedViewGetsNothing(t *testing.T) {
	ctx := context.Background()
	r, st := newTestRepo(t)
	notes, _ := r.AllNotes(ctx)
	changes := 0
	notes.OnChange(func() { changes++ })
	notes.Close()
	notes.Close()

	_, _ = r.AddNote(ctx, "after close")
	if changes != 0 {
		t.Fatalf("closed view notified %d times", changes)
	}
	if n := st.Subscribers(userID); n != 0 {
		t.Fatalf("subscription leaked: %d", n)
	}
	if err := (&TaskView{notes.view}).SetDate(ctx, today); err != ErrViewClosed {
		t.Fatalf("expected ErrViewClosed, got %v", err)
	}
}

func TestViewLoadedAfterFirstSnapshot(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo(t)
	view, _ := r.TasksForDate(ctx, today)
	if !view.Loaded() {
		t.Fatal("expected loaded after subscribe delivered the initial snapshot")
	}
}

func TestNotesViewTracksChanges(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo(t)
	notes, _ := r.AllNotes(ctx)
	a, _ := r.AddNote(ctx, "a")
	_, _ = r.AddNote(ctx, "b")
	_ = r.DeleteEntry(ctx, a)

	got := notes.Snapshot()
	if len(got) != 1 || got[0].Content != "b" {
		t.Fatalf("unexpected notes: %+v", got)
	}
	if _, ok := r.Note(got[0].ID); !ok {
		t.Fatal("note lookup failed")
	}
}
