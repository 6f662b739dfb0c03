package app

import (
	"context"
	"fmt"

	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/store"
)

// Migrate moves a task from one day to the next and returns the new day.
//
// The task disappears from views of from as soon as Migrate is called: a
// pending marker hides it until a snapshot of from arrives without it. If the
// write fails the marker is dropped, the task shows up again and the error is
// returned.
func (r *Repository) Migrate(ctx context.Context, id string, from entry.Day) (entry.Day, error) {
	if err := r.check(); err != nil {
		return "", err
	}
	if !from.Valid() {
		return "", fmt.Errorf("%w: %q", entry.ErrInvalidDay, from)
	}
	if e, ok := r.Known(id); ok && !e.IsTask() {
		return "", fmt.Errorf("%w: %s", ErrNotTask, id)
	}
	to := from.Next()

	r.markPending(id, from)
	if err := r.session.Store.Patch(ctx, r.session.UserID, id, entry.SetDate(to)); err != nil {
		r.clearPending(id, from)
		return "", r.failed(ctx, "migrate", id, err)
	}
	r.settle(id, from)
	return to, nil
}

// Pending reports whether id is hidden by an unconfirmed migration.
func (r *Repository) Pending(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[id]
	return ok
}

func (r *Repository) markPending(id string, from entry.Day) {
	r.mu.Lock()
	r.pending[id] = from
	r.mu.Unlock()
	r.notifyDay(from)
}

func (r *Repository) clearPending(id string, from entry.Day) {
	r.mu.Lock()
	delete(r.pending, id)
	r.mu.Unlock()
	r.notifyDay(from)
}

// settle drops the marker right away unless an open view of from still holds
// the task, in which case the next snapshot of from confirms it.
func (r *Repository) settle(id string, from entry.Day) {
	for _, v := range r.viewsOn(from) {
		if v.contains(id) {
			return
		}
	}
	r.mu.Lock()
	delete(r.pending, id)
	r.mu.Unlock()
}

func (r *Repository) pendingFrom(day entry.Day) map[string]struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out map[string]struct{}
	for id, from := range r.pending {
		if from == day {
			if out == nil {
				out = make(map[string]struct{})
			}
			out[id] = struct{}{}
		}
	}
	return out
}

// observe confirms pending migrations using a fresh snapshot of a day.
func (r *Repository) observe(f store.Filter, entries []*entry.Entry) {
	if f.Type != entry.TypeTask || f.Date == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, from := range r.pending {
		if from == f.Date && entry.Find(entries, id) == nil {
			delete(r.pending, id)
		}
	}
}

func (r *Repository) viewsOn(day entry.Day) []*view {
	r.mu.Lock()
	all := make([]*view, 0, len(r.views))
	for v := range r.views {
		all = append(all, v)
	}
	r.mu.Unlock()

	out := make([]*view, 0, len(all))
	for _, v := range all {
		if f, live := v.current(); live && f.Type == entry.TypeTask && f.Date == day {
			out = append(out, v)
		}
	}
	return out
}

func (r *Repository) notifyDay(day entry.Day) {
	for _, v := range r.viewsOn(day) {
		v.notify()
	}
}
