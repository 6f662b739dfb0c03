package store

import (
	"context"
	"sync"

	"tableflip.dev/journal/pkg/entry"
)

// Memory keeps every collection in process. It backs the "memory" driver and
// doubles as the store in tests.
type Memory struct {
	opts options
	hub  *hub

	mu     sync.RWMutex
	users  map[string]collection
	closed bool
}

var _ Adapter = (*Memory)(nil)

func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		opts:  newOptions(opts),
		users: make(map[string]collection),
	}
	m.hub = newHub(m.List, m.opts.log)
	return m
}

func (m *Memory) key(userID string) string {
	return m.opts.namespace + "/" + userID
}

func (m *Memory) Create(ctx context.Context, userID string, e *entry.Entry) (string, error) {
	ids, err := m.Batch(ctx, userID, []Op{CreateOp(e)})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

func (m *Memory) Patch(ctx context.Context, userID, id string, p entry.Patch) error {
	_, err := m.Batch(ctx, userID, []Op{PatchOp(id, p)})
	return err
}

func (m *Memory) Remove(ctx context.Context, userID, id string) error {
	_, err := m.Batch(ctx, userID, []Op{DeleteOp(id)})
	return err
}

func (m *Memory) Batch(ctx context.Context, userID string, ops []Op) ([]string, error) {
	if err := ValidateUser(userID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	next, ids, err := m.users[m.key(userID)].apply(ops, m.opts)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.users[m.key(userID)] = next
	m.mu.Unlock()

	m.hub.publish(ctx, userID)
	return ids, nil
}

func (m *Memory) List(ctx context.Context, userID string, f Filter) ([]*entry.Entry, error) {
	if err := ValidateUser(userID); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	return m.users[m.key(userID)].filter(f), nil
}

func (m *Memory) Subscribe(ctx context.Context, userID string, f Filter, onChange func([]*entry.Entry)) (Unsubscribe, error) {
	if err := ValidateUser(userID); err != nil {
		return nil, err
	}
	return m.hub.subscribe(ctx, userID, f, onChange)
}

func (m *Memory) Observe(userID string, o RoundObserver) Unsubscribe {
	return m.hub.observe(userID, o)
}

// Subscribers reports how many live subscriptions userID holds.
func (m *Memory) Subscribers(userID string) int {
	return m.hub.count(userID)
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.hub.close()
	return nil
}
