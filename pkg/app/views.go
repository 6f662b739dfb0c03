package app

import (
	"context"
	"errors"
	"sync"

	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/store"
)

var ErrViewClosed = errors.New("app: view closed")

// view holds the latest snapshot of one live query. Each delivery replaces
// the cache wholesale. Deliveries carry the generation of the subscription
// they came from, and anything from an older generation is dropped.
type view struct {
	repo *Repository

	mu        sync.Mutex
	filter    store.Filter
	gen       uint64
	unsub     store.Unsubscribe
	raw       []*entry.Entry
	loaded    bool
	closed    bool
	nextLis   int
	listeners map[int]func()
}

func newView(r *Repository) *view {
	v := &view{repo: r, listeners: make(map[int]func())}
	r.mu.Lock()
	r.views[v] = struct{}{}
	r.mu.Unlock()
	return v
}

// subscribe replaces the current subscription with one for f. The old one is
// torn down before the new one is opened so two are never live at once.
func (v *view) subscribe(ctx context.Context, f store.Filter) error {
	if err := v.repo.check(); err != nil {
		return err
	}
	v.repo.frame.Lock()
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		v.repo.frame.Unlock()
		return ErrViewClosed
	}
	old := v.unsub
	v.unsub = nil
	v.gen++
	gen := v.gen
	v.filter = f
	v.raw = nil
	v.loaded = false
	v.mu.Unlock()
	v.repo.frame.Unlock()

	if old != nil {
		old()
	}
	v.notify()

	unsub, err := v.repo.session.Store.Subscribe(ctx, v.repo.session.UserID, f, func(entries []*entry.Entry) {
		v.deliver(gen, entries)
	})
	if err != nil {
		v.repo.log.Error(ctx, "app: subscribe failed", "filter", f.String(), "err", err)
		return err
	}

	v.mu.Lock()
	if v.closed || v.gen != gen {
		// Closed or re-pointed while we were subscribing.
		v.mu.Unlock()
		unsub()
		return nil
	}
	v.unsub = unsub
	v.mu.Unlock()
	return nil
}

// deliver applies a snapshot, or stages it when the store is in the middle
// of a publish round so the whole round lands at once.
func (v *view) deliver(gen uint64, entries []*entry.Entry) {
	if v.repo.stage(v, gen, entries) {
		return
	}
	v.repo.commit(map[*view]delivery{v: {gen: gen, entries: entries}})
}

// apply swaps in entries unless the view moved on. Callers hold repo.frame.
func (v *view) apply(gen uint64, entries []*entry.Entry) (store.Filter, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || gen != v.gen {
		return store.Filter{}, false
	}
	v.raw = entries
	v.loaded = true
	return v.filter, true
}

// notify runs the view's listeners and then the repository's.
func (v *view) notify() {
	v.fire()
	v.repo.changed()
}

func (v *view) fire() {
	v.mu.Lock()
	fns := make([]func(), 0, len(v.listeners))
	for _, fn := range v.listeners {
		fns = append(fns, fn)
	}
	v.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (v *view) find(id string) *entry.Entry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return entry.Find(v.raw, id).Clone()
}

func (v *view) contains(id string) bool {
	return v.find(id) != nil
}

func (v *view) current() (store.Filter, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter, v.loaded && !v.closed
}

// OnChange registers fn to run after every delivery. The returned func
// removes it.
func (v *view) OnChange(fn func()) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nextLis++
	id := v.nextLis
	v.listeners[id] = fn
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.listeners, id)
	}
}

// Loaded reports whether the first snapshot of the current query arrived.
func (v *view) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

func (v *view) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	old := v.unsub
	v.unsub = nil
	v.listeners = make(map[int]func())
	v.mu.Unlock()

	if old != nil {
		old()
	}
	v.repo.mu.Lock()
	delete(v.repo.views, v)
	v.repo.mu.Unlock()
}

func (v *view) snapshot() []*entry.Entry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return entry.CloneAll(v.raw)
}

// TaskView is the live list of tasks for one day.
type TaskView struct {
	*view
}

// TasksForDate opens a live view of the tasks on date.
func (r *Repository) TasksForDate(ctx context.Context, date entry.Day) (*TaskView, error) {
	if !date.Valid() {
		return nil, entry.ErrInvalidDay
	}
	v := &TaskView{newView(r)}
	if err := v.subscribe(ctx, store.Tasks(date)); err != nil {
		v.Close()
		return nil, err
	}
	return v, nil
}

func (t *TaskView) Date() entry.Day {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filter.Date
}

// SetDate re-points the view at another day. Setting the current day again
// is a no-op.
func (t *TaskView) SetDate(ctx context.Context, date entry.Day) error {
	if !date.Valid() {
		return entry.ErrInvalidDay
	}
	t.mu.Lock()
	same := t.filter.Date == date && t.unsub != nil
	t.mu.Unlock()
	if same {
		return nil
	}
	return t.subscribe(ctx, store.Tasks(date))
}

// Snapshot returns the tasks in delivery order, minus any being migrated
// away from this day.
func (t *TaskView) Snapshot() []*entry.Entry {
	t.mu.Lock()
	date := t.filter.Date
	raw := entry.CloneAll(t.raw)
	t.mu.Unlock()

	hidden := t.repo.pendingFrom(date)
	if len(hidden) == 0 {
		return raw
	}
	out := make([]*entry.Entry, 0, len(raw))
	for _, e := range raw {
		if _, skip := hidden[e.ID]; !skip {
			out = append(out, e)
		}
	}
	return out
}

// NoteView is the live list of every note. It stays open for the session.
type NoteView struct {
	*view
}

func (r *Repository) AllNotes(ctx context.Context) (*NoteView, error) {
	v := &NoteView{newView(r)}
	if err := v.subscribe(ctx, store.Notes()); err != nil {
		v.Close()
		return nil, err
	}
	return v, nil
}

func (n *NoteView) Snapshot() []*entry.Entry {
	return n.snapshot()
}
