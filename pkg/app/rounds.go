package app

import (
	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/store"
)

type delivery struct {
	gen     uint64
	entries []*entry.Entry
}

// rounds receives the store's publish rounds for the repository's user.
type rounds struct {
	r *Repository
}

func (o rounds) BeginRound() {
	o.r.roundMu.Lock()
	o.r.depth++
	o.r.roundMu.Unlock()
}

func (o rounds) EndRound() {
	r := o.r
	r.roundMu.Lock()
	if r.depth > 0 {
		r.depth--
	}
	if r.depth > 0 || len(r.staged) == 0 {
		r.roundMu.Unlock()
		return
	}
	staged := r.staged
	r.staged = make(map[*view]delivery)
	r.roundMu.Unlock()

	r.commit(staged)
}

// stage holds a delivery back while a round is open. Later deliveries for the
// same view replace earlier ones.
func (r *Repository) stage(v *view, gen uint64, entries []*entry.Entry) bool {
	r.roundMu.Lock()
	defer r.roundMu.Unlock()
	if r.depth == 0 {
		return false
	}
	r.staged[v] = delivery{gen: gen, entries: entries}
	return true
}

// commit swaps every staged snapshot in under one frame, then runs each
// touched view's listeners and the repository's listeners once.
func (r *Repository) commit(staged map[*view]delivery) {
	applied := make([]*view, 0, len(staged))
	r.frame.Lock()
	for v, d := range staged {
		f, ok := v.apply(d.gen, d.entries)
		if !ok {
			continue
		}
		r.observe(f, d.entries)
		applied = append(applied, v)
	}
	r.frame.Unlock()

	if len(applied) == 0 {
		return
	}
	for _, v := range applied {
		v.fire()
	}
	r.changed()
}

// Read runs fn with every view held still, so snapshots read inside fn all
// come from the same round. fn must not call Read again.
func (r *Repository) Read(fn func()) {
	r.frame.RLock()
	defer r.frame.RUnlock()
	fn()
}

// OnChange registers fn to run once after any of the repository's views
// changed. The returned func removes it.
func (r *Repository) OnChange(fn func()) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextLis++
	id := r.nextLis
	r.listeners[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}

func (r *Repository) changed() {
	r.mu.Lock()
	fns := make([]func(), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

var _ store.RoundObserver = rounds{}
