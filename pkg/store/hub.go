package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/logging"
)

type loadFunc func(ctx context.Context, userID string, f Filter) ([]*entry.Entry, error)

// hub fans snapshots out to live subscriptions. Backends call publish after
// every successful write and the hub re-runs each affected query.
type hub struct {
	load loadFunc
	log  logging.Logger

	mu        sync.Mutex
	nextID    uint64
	subs      map[string]map[uint64]*subscription
	observers map[string]map[uint64]RoundObserver
	closed    bool
}

func newHub(load loadFunc, log logging.Logger) *hub {
	return &hub{
		load:      load,
		log:       log,
		subs:      make(map[string]map[uint64]*subscription),
		observers: make(map[string]map[uint64]RoundObserver),
	}
}

type subscription struct {
	hub      *hub
	id       uint64
	userID   string
	filter   Filter
	onChange func([]*entry.Entry)
	closed   atomic.Bool

	mu         sync.Mutex
	last       []*entry.Entry
	delivered  bool
	seq        uint64
	queued     uint64
	delivering bool
	pending    []*entry.Entry
	hasPending bool
}

func (h *hub) subscribe(ctx context.Context, userID string, f Filter, onChange func([]*entry.Entry)) (Unsubscribe, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrClosed
	}
	h.nextID++
	s := &subscription{
		hub:      h,
		id:       h.nextID,
		userID:   userID,
		filter:   f,
		onChange: onChange,
	}
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[uint64]*subscription)
	}
	h.subs[userID][s.id] = s
	h.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		s.cancel()
		return nil, err
	}
	var once sync.Once
	return func() { once.Do(s.cancel) }, nil
}

func (s *subscription) cancel() {
	s.mu.Lock()
	s.closed.Store(true)
	s.pending = nil
	s.hasPending = false
	s.mu.Unlock()

	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	if users := h.subs[s.userID]; users != nil {
		delete(users, s.id)
		if len(users) == 0 {
			delete(h.subs, s.userID)
		}
	}
}

// observe registers o for every publish round of userID.
func (h *hub) observe(userID string, o RoundObserver) Unsubscribe {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	if h.observers[userID] == nil {
		h.observers[userID] = make(map[uint64]RoundObserver)
	}
	h.observers[userID][id] = o
	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if obs := h.observers[userID]; obs != nil {
				delete(obs, id)
				if len(obs) == 0 {
					delete(h.observers, userID)
				}
			}
		})
	}
}

func (h *hub) observersOf(userID string) []RoundObserver {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]RoundObserver, 0, len(h.observers[userID]))
	for _, o := range h.observers[userID] {
		out = append(out, o)
	}
	return out
}

// load re-runs the query. It reports false when the result equals the last
// one handed out. Each changed result gets a sequence number so deliver can
// drop it when a newer one got there first.
func (s *subscription) load(ctx context.Context) ([]*entry.Entry, uint64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return nil, 0, false, nil
	}
	entries, err := s.hub.load(ctx, s.userID, s.filter)
	if err != nil {
		return nil, 0, false, err
	}
	if s.delivered && entry.EqualAll(s.last, entries) {
		return nil, 0, false, nil
	}
	s.last = entries
	s.delivered = true
	s.seq++
	return entries, s.seq, true, nil
}

// deliver hands entries to onChange. A delivery requested from inside
// onChange is queued and made by the outer call once onChange returns, so
// deliveries never overlap and a newer snapshot is never followed by an
// older one.
func (s *subscription) deliver(seq uint64, entries []*entry.Entry) {
	s.mu.Lock()
	if s.closed.Load() || seq <= s.queued {
		s.mu.Unlock()
		return
	}
	s.queued = seq
	if s.delivering {
		s.pending = entries
		s.hasPending = true
		s.mu.Unlock()
		return
	}
	s.delivering = true
	next := entries
	for {
		// closed is re-read under mu right before each call, and cancel
		// sets it under mu and drops anything queued.
		if s.closed.Load() {
			s.delivering = false
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		s.onChange(entry.CloneAll(next))
		s.mu.Lock()
		if !s.hasPending {
			s.delivering = false
			s.mu.Unlock()
			return
		}
		next = s.pending
		s.pending = nil
		s.hasPending = false
	}
}

func (s *subscription) refresh(ctx context.Context) error {
	entries, seq, changed, err := s.load(ctx)
	if err != nil || !changed {
		return err
	}
	s.deliver(seq, entries)
	return nil
}

func (h *hub) snapshot(userID string) []*subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*subscription, 0, len(h.subs[userID]))
	for _, s := range h.subs[userID] {
		out = append(out, s)
	}
	return out
}

type staged struct {
	sub     *subscription
	seq     uint64
	entries []*entry.Entry
}

// publish re-runs every query of userID as one round: all snapshots are
// loaded before the first is delivered, and round observers bracket the
// deliveries. Load failures are logged since the write that triggered them
// already succeeded.
func (h *hub) publish(ctx context.Context, userID string) {
	ctx = context.WithoutCancel(ctx)
	subs := h.snapshot(userID)
	round := make([]staged, 0, len(subs))
	for _, s := range subs {
		entries, seq, changed, err := s.load(ctx)
		if err != nil {
			h.log.Warn(ctx, "store: refresh subscription", "user", userID, "filter", s.filter.String(), "err", err)
			continue
		}
		if changed {
			round = append(round, staged{sub: s, seq: seq, entries: entries})
		}
	}
	if len(round) == 0 {
		return
	}

	obs := h.observersOf(userID)
	for _, o := range obs {
		o.BeginRound()
	}
	for _, st := range round {
		st.sub.deliver(st.seq, st.entries)
	}
	for _, o := range obs {
		o.EndRound()
	}
}

func (h *hub) users() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.subs))
	for u := range h.subs {
		out = append(out, u)
	}
	return out
}

func (h *hub) publishAll(ctx context.Context) {
	for _, u := range h.users() {
		h.publish(ctx, u)
	}
}

// poll publishes every subscribed user each interval until ctx is done.
func (h *hub) poll(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			h.publishAll(ctx)
		}
	}
}

func (h *hub) count(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, users := range h.subs {
		for _, s := range users {
			s.closed.Store(true)
		}
	}
	h.subs = make(map[string]map[uint64]*subscription)
	h.observers = make(map[string]map[uint64]RoundObserver)
}
