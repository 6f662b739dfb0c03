package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/logging"
)

var (
	ErrNotFound     = errors.New("store: entry not found")
	ErrInvalidUser  = errors.New("store: invalid user id")
	ErrInvalidEntry = errors.New("store: invalid entry")
	ErrClosed       = errors.New("store: closed")
)

// Adapter is a per-user entry collection with live queries. Implementations
// assign ids and creation timestamps, and never let one user's calls see or
// touch another user's entries.
type Adapter interface {
	// Create inserts e and returns the id the store assigned to it.
	Create(ctx context.Context, userID string, e *entry.Entry) (string, error)
	// Patch merges p into the entry. Fields p leaves nil are untouched.
	Patch(ctx context.Context, userID, id string, p entry.Patch) error
	// Remove deletes the entry, returning ErrNotFound when it is already gone.
	Remove(ctx context.Context, userID, id string) error
	// List returns the entries matching f in creation order.
	List(ctx context.Context, userID string, f Filter) ([]*entry.Entry, error)
	// Subscribe calls onChange with the full matching snapshot now and again
	// every time that snapshot changes, until the returned func is called.
	Subscribe(ctx context.Context, userID string, f Filter, onChange func([]*entry.Entry)) (Unsubscribe, error)
	// Observe registers o for every publish round of userID until the
	// returned func is called.
	Observe(userID string, o RoundObserver) Unsubscribe
	// Batch applies ops all or nothing and returns the ids of created entries
	// in op order.
	Batch(ctx context.Context, userID string, ops []Op) ([]string, error)
	Close() error
}

// Unsubscribe stops delivery. No delivery starts once it returns and queued
// snapshots are dropped; a call to onChange already running on another
// goroutine is not interrupted. Calling it more than once is harmless.
type Unsubscribe func()

// RoundObserver brackets the deliveries one write causes for a user.
// BeginRound runs before the first of them and EndRound after the last, so a
// reader that waits for EndRound never sees some of a write's effects
// without the rest.
type RoundObserver interface {
	BeginRound()
	EndRound()
}

// Filter is an equality match on type and date. Zero fields match anything.
type Filter struct {
	Type entry.Type
	Date entry.Day
}

func Tasks(day entry.Day) Filter {
	return Filter{Type: entry.TypeTask, Date: day}
}

func Notes() Filter {
	return Filter{Type: entry.TypeNote}
}

func (f Filter) Match(e *entry.Entry) bool {
	if e == nil {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.Date != "" && e.Date != f.Date {
		return false
	}
	return true
}

func (f Filter) String() string {
	parts := make([]string, 0, 2)
	if f.Type != "" {
		parts = append(parts, "type="+string(f.Type))
	}
	if f.Date != "" {
		parts = append(parts, "date="+string(f.Date))
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, ",")
}

type OpKind int

const (
	OpCreate OpKind = iota
	OpPatch
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpPatch:
		return "patch"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("op(%d)", int(k))
	}
}

// Op is one step of a Batch.
type Op struct {
	Kind  OpKind
	ID    string
	Entry *entry.Entry
	Patch entry.Patch
}

func CreateOp(e *entry.Entry) Op {
	return Op{Kind: OpCreate, Entry: e}
}

func PatchOp(id string, p entry.Patch) Op {
	return Op{Kind: OpPatch, ID: id, Patch: p}
}

func DeleteOp(id string) Op {
	return Op{Kind: OpDelete, ID: id}
}

func (o Op) validate() error {
	switch o.Kind {
	case OpCreate:
		if err := o.Entry.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
		}
	case OpPatch:
		if o.ID == "" {
			return fmt.Errorf("%w: patch without id", ErrInvalidEntry)
		}
		if err := o.Patch.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
		}
	case OpDelete:
		if o.ID == "" {
			return fmt.Errorf("%w: delete without id", ErrInvalidEntry)
		}
	default:
		return fmt.Errorf("%w: unknown op %s", ErrInvalidEntry, o.Kind)
	}
	return nil
}

func validateOps(ops []Op) error {
	for i, op := range ops {
		if err := op.validate(); err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
	}
	return nil
}

// ValidateUser rejects ids that are empty or could escape a storage path.
func ValidateUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidUser)
	}
	if strings.ContainsAny(userID, `/\`) || userID == "." || userID == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidUser, userID)
	}
	return nil
}

// Option configures any backend.
type Option func(*options)

type options struct {
	namespace string
	clock     func() time.Time
	newID     func() string
	log       logging.Logger
	poll      time.Duration
	watch     bool
}

func newOptions(opts []Option) options {
	o := options{
		namespace: DefaultNamespace,
		clock:     time.Now,
		newID:     uuid.NewString,
		log:       logging.Nop(),
		watch:     true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithNamespace isolates one deployment environment from another sharing the
// same storage.
func WithNamespace(ns string) Option {
	return func(o *options) {
		if ns != "" {
			o.namespace = ns
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithIDs replaces the uuid generator.
func WithIDs(newID func() string) Option {
	return func(o *options) {
		if newID != nil {
			o.newID = newID
		}
	}
}

func WithLogger(log logging.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithPollInterval makes SQL subscriptions re-query on an interval so writes
// from other processes are picked up.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		o.poll = d
	}
}

// WithoutWatch disables the filesystem watcher of the disk store.
func WithoutWatch() Option {
	return func(o *options) {
		o.watch = false
	}
}
