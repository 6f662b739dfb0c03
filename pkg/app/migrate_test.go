package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/logging"
	"tableflip.dev/journal/pkg/store"
)

// gatedStore holds Patch until release is closed.
type gatedStore struct {
	store.Adapter
	entered chan struct{}
	release chan struct{}
	err     error
}

func (g *gatedStore) Patch(ctx context.Context, u, id string, p entry.Patch) error {
	close(g.entered)
	<-g.release
	if g.err != nil {
		return g.err
	}
	return g.Adapter.Patch(ctx, u, id, p)
}

func newGated(err error) *gatedStore {
	return &gatedStore{
		Adapter: store.NewMemory(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
		err:     err,
	}
}

func TestMigrateHidesTaskBeforeConfirmation(t *testing.T) {
	ctx := context.Background()
	gs := newGated(nil)
	r := NewRepository(Session{Store: gs, UserID: userID}, WithClock(fixedClock), WithLocation(time.UTC))
	defer r.Close()

	view, _ := r.TasksForDate(ctx, today)
	id, _ := r.AddTask(ctx, "later", today)
	notified := make(chan struct{}, 4)
	view.OnChange(func() { notified <- struct{}{} })

	done := make(chan error, 1)
	go func() {
		_, err := r.Migrate(ctx, id, today)
		done <- err
	}()

	<-gs.entered
	if entry.Find(view.Snapshot(), id) != nil {
		t.Fatal("task still visible while migration is in flight")
	}
	if !r.Pending(id) {
		t.Fatal("expected pending marker")
	}
	select {
	case <-notified:
	default:
		t.Fatal("view listeners not told about the optimistic change")
	}

	close(gs.release)
	if err := <-done; err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if r.Pending(id) {
		t.Fatal("marker not cleared after confirmation")
	}
	if entry.Find(view.Snapshot(), id) != nil {
		t.Fatal("task back on the source day")
	}
}

func TestMigrateFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("permission denied")
	gs := newGated(boom)
	var logs bytes.Buffer
	log, _ := logging.New(&logs, "error")
	r := NewRepository(Session{Store: gs, UserID: userID}, WithClock(fixedClock), WithLogger(log))
	defer r.Close()

	view, _ := r.TasksForDate(ctx, today)
	id, _ := r.AddTask(ctx, "stuck", today)
	close(gs.release)

	if _, err := r.Migrate(ctx, id, today); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if r.Pending(id) {
		t.Fatal("marker left after failure")
	}
	got := view.Snapshot()
	if len(got) != 1 || got[0].ID != id || got[0].Date != today {
		t.Fatalf("task not restored: %+v", got)
	}
	if !strings.Contains(logs.String(), "op=migrate") || !strings.Contains(logs.String(), "id="+id) {
		t.Fatalf("failure not logged: %s", logs.String())
	}
}

func TestMigrateMovesOnlyTheDate(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo(t)
	id, _ := r.AddTask(ctx, "carry over", today)
	_, _ = r.Toggle(ctx, id)

	to, err := r.Migrate(ctx, id, today)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if to != tomorrow {
		t.Fatalf("migrated to %s", to)
	}

	todayView, _ := r.TasksForDate(ctx, today)
	if entry.Find(todayView.Snapshot(), id) != nil {
		t.Fatal("task still on source day")
	}
	next, _ := r.TasksForDate(ctx, tomorrow)
	got := entry.Find(next.Snapshot(), id)
	if got == nil || got.Content != "carry over" || got.Status != entry.StatusDone {
		t.Fatalf("unexpected migrated task: %+v", got)
	}
	if r.Pending(id) {
		t.Fatal("marker left without any view of the source day")
	}
}

func TestMigrateRejectsNotes(t *testing.T) {
	ctx := context.Background()
	r, st := newTestRepo(t)
	_, _ = r.AllNotes(ctx)
	id, _ := r.AddNote(ctx, "note")
	if _, err := r.Migrate(ctx, id, today); !errors.Is(err, ErrNotTask) {
		t.Fatalf("expected ErrNotTask, got %v", err)
	}
	if st.callsOf("patch") != 0 {
		t.Fatal("patch issued for a note")
	}
}

func TestBuyMilkScenario(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo(t)
	notes, _ := r.AllNotes(ctx)
	todayTasks, _ := r.TasksForDate(ctx, r.Today())

	noteID, err := r.AddNote(ctx, "buy milk")
	if err != nil {
		t.Fatalf("add note: %v", err)
	}
	taskID, err := r.ConvertNoteToTask(ctx, noteID, "buy milk")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if _, err := r.Migrate(ctx, taskID, r.Today()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if got := todayTasks.Snapshot(); len(got) != 0 {
		t.Fatalf("today should be empty: %+v", got)
	}
	if got := notes.Snapshot(); len(got) != 0 {
		t.Fatalf("note should be gone: %+v", got)
	}
	tomorrowTasks, _ := r.TasksForDate(ctx, r.Today().Next())
	got := tomorrowTasks.Snapshot()
	if len(got) != 1 || got[0].Content != "buy milk" || got[0].Status != entry.StatusTodo {
		t.Fatalf("unexpected tomorrow: %+v", got)
	}
}
