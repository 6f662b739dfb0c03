package store

import (
	"fmt"
	"sort"

	"tableflip.dev/journal/pkg/entry"
)

// collection is one user's entries in creation order. The memory and disk
// backends both keep a user's whole collection as a unit so a batch can be
// applied to a copy and swapped in at once.
type collection []*entry.Entry

func (c collection) index(id string) int {
	for i, e := range c {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// apply runs ops against a copy of c. On error c is untouched and the copy is
// discarded.
func (c collection) apply(ops []Op, o options) (collection, []string, error) {
	if err := validateOps(ops); err != nil {
		return nil, nil, err
	}
	next := collection(entry.CloneAll(c))
	if next == nil {
		next = collection{}
	}
	var created []string
	for i, op := range ops {
		switch op.Kind {
		case OpCreate:
			e := op.Entry.Clone()
			e.ID = o.newID()
			if next.index(e.ID) >= 0 {
				return nil, nil, fmt.Errorf("op %d: %w: duplicate id %q", i, ErrInvalidEntry, e.ID)
			}
			e.CreatedAt = entry.Now(o.clock)
			next = append(next, e)
			created = append(created, e.ID)
		case OpPatch:
			idx := next.index(op.ID)
			if idx < 0 {
				return nil, nil, fmt.Errorf("op %d: %w: %s", i, ErrNotFound, op.ID)
			}
			e := next[idx].Clone()
			op.Patch.Apply(e)
			if err := e.Validate(); err != nil {
				return nil, nil, fmt.Errorf("op %d: %w: %w", i, ErrInvalidEntry, err)
			}
			next[idx] = e
		case OpDelete:
			idx := next.index(op.ID)
			if idx < 0 {
				return nil, nil, fmt.Errorf("op %d: %w: %s", i, ErrNotFound, op.ID)
			}
			next = append(next[:idx], next[idx+1:]...)
		}
	}
	return next, created, nil
}

func (c collection) filter(f Filter) []*entry.Entry {
	out := make([]*entry.Entry, 0, len(c))
	for _, e := range c {
		if f.Match(e) {
			out = append(out, e.Clone())
		}
	}
	return out
}

// sortCreated orders by creation time, then id, keeping entries without a
// timestamp last.
func sortCreated(entries []*entry.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		left, right := entries[i], entries[j]
		lt, rt := left.CreatedAt.Time, right.CreatedAt.Time
		switch {
		case lt.IsZero() && rt.IsZero():
			return left.ID < right.ID
		case lt.IsZero():
			return false
		case rt.IsZero():
			return true
		case lt.Equal(rt):
			return left.ID < right.ID
		default:
			return lt.Before(rt)
		}
	})
}
