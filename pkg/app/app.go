// Package app is the entry repository: the only writer of journal entries.
// It turns user intents into store operations for one user and keeps live
// views of that user's tasks and notes.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/identity"
	"tableflip.dev/journal/pkg/logging"
	"tableflip.dev/journal/pkg/store"
)

var (
	ErrEmptyContent = errors.New("app: content is empty")
	ErrUnknownEntry = errors.New("app: unknown entry")
	ErrNotTask      = errors.New("app: entry is not a task")
	ErrNotNote      = errors.New("app: entry is not a note")
	ErrNotTodo      = errors.New("app: task is already done")
	ErrNoSession    = errors.New("app: no session")
)

// Session is the explicit context a Repository works in.
type Session struct {
	Store  store.Adapter
	UserID string
}

type Option func(*Repository)

func WithClock(clock func() time.Time) Option {
	return func(r *Repository) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithLocation sets the time zone "today" is computed in.
func WithLocation(loc *time.Location) Option {
	return func(r *Repository) {
		if loc != nil {
			r.loc = loc
		}
	}
}

func WithLogger(log logging.Logger) Option {
	return func(r *Repository) {
		if log != nil {
			r.log = log
		}
	}
}

type Repository struct {
	session Session
	clock   func() time.Time
	loc     *time.Location
	log     logging.Logger

	mu        sync.Mutex
	views     map[*view]struct{}
	pending   map[string]entry.Day
	nextLis   int
	listeners map[int]func()

	// frame guards what Read callers see: snapshots of a publish round are
	// swapped in under its write lock together.
	frame   sync.RWMutex
	roundMu sync.Mutex
	depth   int
	staged  map[*view]delivery
	unwatch store.Unsubscribe
}

func NewRepository(s Session, opts ...Option) *Repository {
	r := &Repository{
		session: s,
		clock:   time.Now,
		loc:     time.Local,
		log:     logging.Nop(),
		views:     make(map[*view]struct{}),
		pending:   make(map[string]entry.Day),
		listeners: make(map[int]func()),
		staged:    make(map[*view]delivery),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With("user", s.UserID)
	if s.Store != nil {
		r.unwatch = s.Store.Observe(s.UserID, rounds{r})
	}
	return r
}

// Open resolves the user before anything else. No repository exists for a
// session without an identity.
func Open(ctx context.Context, p identity.Provider, st store.Adapter, opts ...Option) (*Repository, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: no identity provider", ErrNoSession)
	}
	userID, err := p.UserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSession, err)
	}
	if st == nil {
		return nil, fmt.Errorf("%w: no store", ErrNoSession)
	}
	return NewRepository(Session{Store: st, UserID: userID}, opts...), nil
}

func (r *Repository) UserID() string {
	return r.session.UserID
}

func (r *Repository) Location() *time.Location {
	return r.loc
}

func (r *Repository) Now() time.Time {
	return r.clock()
}

// Today is the current calendar day in the repository's location.
func (r *Repository) Today() entry.Day {
	return entry.Today(r.clock(), r.loc)
}

func (r *Repository) check() error {
	if r.session.Store == nil || r.session.UserID == "" {
		return ErrNoSession
	}
	return nil
}

// checkContent refuses blank content. Content that passes is stored exactly
// as given.
func checkContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	return nil
}

func (r *Repository) failed(ctx context.Context, op, id string, err error) error {
	r.log.Error(ctx, "app: store write failed", "op", op, "id", id, "err", err)
	return err
}

// AddTask creates a todo task on date and returns its id.
func (r *Repository) AddTask(ctx context.Context, content string, date entry.Day) (string, error) {
	if err := checkContent(content); err != nil {
		return "", err
	}
	if !date.Valid() {
		return "", fmt.Errorf("%w: %q", entry.ErrInvalidDay, date)
	}
	if err := r.check(); err != nil {
		return "", err
	}
	id, err := r.session.Store.Create(ctx, r.session.UserID, entry.NewTask(content, date))
	if err != nil {
		return "", r.failed(ctx, "add-task", "", err)
	}
	r.log.Debug(ctx, "app: task added", "id", id, "date", date)
	return id, nil
}

func (r *Repository) AddNote(ctx context.Context, content string) (string, error) {
	if err := checkContent(content); err != nil {
		return "", err
	}
	if err := r.check(); err != nil {
		return "", err
	}
	id, err := r.session.Store.Create(ctx, r.session.UserID, entry.NewNote(content))
	if err != nil {
		return "", r.failed(ctx, "add-note", "", err)
	}
	r.log.Debug(ctx, "app: note added", "id", id)
	return id, nil
}

// Toggle flips a task between todo and done, based on the last status seen.
func (r *Repository) Toggle(ctx context.Context, id string) (entry.Status, error) {
	if err := r.check(); err != nil {
		return "", err
	}
	e, err := r.Lookup(ctx, id)
	if err != nil {
		return "", err
	}
	if !e.IsTask() {
		return "", fmt.Errorf("%w: %s", ErrNotTask, id)
	}
	next := e.Status.Toggle()
	if err := r.session.Store.Patch(ctx, r.session.UserID, id, entry.SetStatus(next)); err != nil {
		return "", r.failed(ctx, "toggle", id, err)
	}
	return next, nil
}

// EditContent writes content only when it differs from what was last seen.
// An id we have never seen is patched anyway and the store decides.
func (r *Repository) EditContent(ctx context.Context, id, content string) (bool, error) {
	if err := checkContent(content); err != nil {
		return false, err
	}
	if err := r.check(); err != nil {
		return false, err
	}
	if e, err := r.Lookup(ctx, id); err == nil && e.Content == content {
		return false, nil
	}
	if err := r.session.Store.Patch(ctx, r.session.UserID, id, entry.SetContent(content)); err != nil {
		return false, r.failed(ctx, "edit", id, err)
	}
	return true, nil
}

// ConvertNoteToTask replaces a note with a todo task dated today in a single
// batch and returns the new task's id.
func (r *Repository) ConvertNoteToTask(ctx context.Context, noteID, content string) (string, error) {
	if err := checkContent(content); err != nil {
		return "", err
	}
	if err := r.check(); err != nil {
		return "", err
	}
	if e, ok := r.Known(noteID); ok && !e.IsNote() {
		return "", fmt.Errorf("%w: %s", ErrNotNote, noteID)
	}
	ids, err := r.session.Store.Batch(ctx, r.session.UserID, []store.Op{
		store.CreateOp(entry.NewTask(content, r.Today())),
		store.DeleteOp(noteID),
	})
	if err != nil {
		return "", r.failed(ctx, "convert", noteID, err)
	}
	return ids[0], nil
}

// DeleteEntry removes an entry. An entry that is already gone counts as
// deleted.
func (r *Repository) DeleteEntry(ctx context.Context, id string) error {
	if err := r.check(); err != nil {
		return err
	}
	err := r.session.Store.Remove(ctx, r.session.UserID, id)
	if errors.Is(err, store.ErrNotFound) {
		r.log.Debug(ctx, "app: delete of missing entry", "id", id)
		return nil
	}
	if err != nil {
		return r.failed(ctx, "delete", id, err)
	}
	return nil
}

// ListTasks reads the tasks of one day without subscribing.
func (r *Repository) ListTasks(ctx context.Context, date entry.Day) ([]*entry.Entry, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	return r.session.Store.List(ctx, r.session.UserID, store.Tasks(date))
}

func (r *Repository) ListNotes(ctx context.Context) ([]*entry.Entry, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	return r.session.Store.List(ctx, r.session.UserID, store.Notes())
}

// Known returns the entry from the snapshots our open views hold.
func (r *Repository) Known(id string) (*entry.Entry, bool) {
	r.mu.Lock()
	views := make([]*view, 0, len(r.views))
	for v := range r.views {
		views = append(views, v)
	}
	r.mu.Unlock()
	for _, v := range views {
		if e := v.find(id); e != nil {
			return e, true
		}
	}
	return nil, false
}

// Task returns a task seen by an open view.
func (r *Repository) Task(id string) (*entry.Entry, bool) {
	e, ok := r.Known(id)
	if !ok || !e.IsTask() {
		return nil, false
	}
	return e, true
}

// Note returns a note seen by an open view.
func (r *Repository) Note(id string) (*entry.Entry, bool) {
	e, ok := r.Known(id)
	if !ok || !e.IsNote() {
		return nil, false
	}
	return e, true
}

// Lookup prefers what the views have seen and falls back to reading the
// store, which is the only option for one-shot callers such as the CLI.
func (r *Repository) Lookup(ctx context.Context, id string) (*entry.Entry, error) {
	if e, ok := r.Known(id); ok {
		return e, nil
	}
	if err := r.check(); err != nil {
		return nil, err
	}
	all, err := r.session.Store.List(ctx, r.session.UserID, store.Filter{})
	if err != nil {
		return nil, err
	}
	if e := entry.Find(all, id); e != nil {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownEntry, id)
}

// Close tears down every open view.
func (r *Repository) Close() {
	if r.unwatch != nil {
		r.unwatch()
	}
	r.mu.Lock()
	views := make([]*view, 0, len(r.views))
	for v := range r.views {
		views = append(views, v)
	}
	r.mu.Unlock()
	for _, v := range views {
		v.Close()
	}
}
