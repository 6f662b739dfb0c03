// Package journal holds the controller every front end drives: the selected
// day, which list is showing, and the intents a user can issue.
package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tableflip.dev/journal/pkg/app"
	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/logging"
)

type View int

const (
	ViewTasks View = iota
	ViewNotes
)

func (v View) String() string {
	if v == ViewNotes {
		return "notes"
	}
	return "tasks"
}

// ParseView accepts "tasks" or "notes".
func ParseView(s string) (View, error) {
	switch s {
	case "tasks", "task", "":
		return ViewTasks, nil
	case "notes", "note", "braindump":
		return ViewNotes, nil
	}
	return ViewTasks, fmt.Errorf("journal: unknown view %q", s)
}

// Presentation is everything a front end needs to draw one frame.
type Presentation struct {
	Date  entry.Day
	View  View
	Today bool
	// Tasks are ordered todo first, keeping store order inside each group.
	Tasks     []*entry.Entry
	Notes     []*entry.Entry
	TodoCount int
	DoneCount int
	NoteCount int
	// Loading is true until the first snapshot for Date arrived.
	Loading bool
}

type Option func(*Controller)

func WithLogger(log logging.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

type Controller struct {
	repo *app.Repository
	log  logging.Logger

	mu        sync.Mutex
	selected  entry.Day
	active    View
	lastErr   error
	nextLis   int
	listeners map[int]func()

	tasks *app.TaskView
	notes *app.NoteView
	stops []func()
}

// New opens the notes view and the task view for today.
func New(ctx context.Context, repo *app.Repository, opts ...Option) (*Controller, error) {
	c := &Controller{
		repo:      repo,
		log:       logging.Nop(),
		selected:  repo.Today(),
		active:    ViewTasks,
		listeners: make(map[int]func()),
	}
	for _, opt := range opts {
		opt(c)
	}

	notes, err := repo.AllNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("journal: open notes: %w", err)
	}
	tasks, err := repo.TasksForDate(ctx, c.selected)
	if err != nil {
		notes.Close()
		return nil, fmt.Errorf("journal: open tasks: %w", err)
	}
	c.notes = notes
	c.tasks = tasks
	c.stops = append(c.stops, repo.OnChange(c.changed))
	return c, nil
}

func (c *Controller) SelectedDate() entry.Day {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

func (c *Controller) ActiveView() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Controller) Today() entry.Day {
	return c.repo.Today()
}

func (c *Controller) IsToday() bool {
	return c.SelectedDate() == c.repo.Today()
}

func (c *Controller) NextDay(ctx context.Context) error {
	return c.SetDate(ctx, c.SelectedDate().Next())
}

func (c *Controller) PreviousDay(ctx context.Context) error {
	return c.SetDate(ctx, c.SelectedDate().Prev())
}

func (c *Controller) ResetToToday(ctx context.Context) error {
	return c.SetDate(ctx, c.repo.Today())
}

// SetDate selects day and re-points the task view at it. The notes view is
// not touched.
func (c *Controller) SetDate(ctx context.Context, day entry.Day) error {
	if !day.Valid() {
		return entry.ErrInvalidDay
	}
	c.mu.Lock()
	c.selected = day
	c.mu.Unlock()
	if err := c.tasks.SetDate(ctx, day); err != nil {
		return c.fail(ctx, "select-date", "", err)
	}
	c.changed()
	return nil
}

func (c *Controller) SetView(v View) {
	c.mu.Lock()
	c.active = v
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) ToggleView() View {
	c.mu.Lock()
	if c.active == ViewTasks {
		c.active = ViewNotes
	} else {
		c.active = ViewTasks
	}
	v := c.active
	c.mu.Unlock()
	c.changed()
	return v
}

func (c *Controller) Presentation() Presentation {
	c.mu.Lock()
	p := Presentation{Date: c.selected, View: c.active}
	c.mu.Unlock()

	p.Today = p.Date == c.repo.Today()
	// Both lists come from the same round, so a converted note never shows
	// up twice or not at all.
	c.repo.Read(func() {
		p.Tasks = entry.Partition(c.tasks.Snapshot())
		p.Notes = c.notes.Snapshot()
		p.Loading = !c.tasks.Loaded() || c.tasks.Date() != p.Date
	})
	for _, t := range p.Tasks {
		if t.Status == entry.StatusDone {
			p.DoneCount++
		} else {
			p.TodoCount++
		}
	}
	p.NoteCount = len(p.Notes)
	return p
}

// LastError is the most recent failed intent, cleared by the next success.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// OnChange registers fn to run whenever the presentation may have changed.
func (c *Controller) OnChange(fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextLis++
	id := c.nextLis
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Controller) changed() {
	c.mu.Lock()
	fns := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (c *Controller) fail(ctx context.Context, op, id string, err error) error {
	// Empty input is refused quietly; it is not a failure worth keeping.
	if errors.Is(err, app.ErrEmptyContent) {
		return err
	}
	c.log.Warn(ctx, "journal: intent failed", "op", op, "id", id, "err", err)
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
	c.changed()
	return err
}

func (c *Controller) ok() {
	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()
}

// AddTask adds a task on the selected day.
func (c *Controller) AddTask(ctx context.Context, content string) (string, error) {
	id, err := c.repo.AddTask(ctx, content, c.SelectedDate())
	if err != nil {
		return "", c.fail(ctx, "add-task", "", err)
	}
	c.ok()
	return id, nil
}

func (c *Controller) AddNote(ctx context.Context, content string) (string, error) {
	id, err := c.repo.AddNote(ctx, content)
	if err != nil {
		return "", c.fail(ctx, "add-note", "", err)
	}
	c.ok()
	return id, nil
}

func (c *Controller) Toggle(ctx context.Context, id string) error {
	if _, err := c.repo.Toggle(ctx, id); err != nil {
		return c.fail(ctx, "toggle", id, err)
	}
	c.ok()
	return nil
}

// Edit commits only when content actually changed.
func (c *Controller) Edit(ctx context.Context, id, content string) error {
	if _, err := c.repo.EditContent(ctx, id, content); err != nil {
		return c.fail(ctx, "edit", id, err)
	}
	c.ok()
	return nil
}

// Migrate moves a todo task from the selected day to the next one.
func (c *Controller) Migrate(ctx context.Context, id string) error {
	t, err := c.repo.Lookup(ctx, id)
	if err != nil {
		return c.fail(ctx, "migrate", id, err)
	}
	if !t.IsTask() {
		return c.fail(ctx, "migrate", id, fmt.Errorf("%w: %s", app.ErrNotTask, id))
	}
	if t.Status != entry.StatusTodo {
		return c.fail(ctx, "migrate", id, fmt.Errorf("%w: %s", app.ErrNotTodo, id))
	}
	if _, err := c.repo.Migrate(ctx, id, c.SelectedDate()); err != nil {
		return c.fail(ctx, "migrate", id, err)
	}
	c.ok()
	return nil
}

// Convert turns a note into a task for today using the note's current text.
func (c *Controller) Convert(ctx context.Context, noteID string) (string, error) {
	n, err := c.repo.Lookup(ctx, noteID)
	if err != nil {
		return "", c.fail(ctx, "convert", noteID, err)
	}
	if !n.IsNote() {
		return "", c.fail(ctx, "convert", noteID, fmt.Errorf("%w: %s", app.ErrNotNote, noteID))
	}
	id, err := c.repo.ConvertNoteToTask(ctx, noteID, n.Content)
	if err != nil {
		return "", c.fail(ctx, "convert", noteID, err)
	}
	c.ok()
	return id, nil
}

func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.repo.DeleteEntry(ctx, id); err != nil {
		return c.fail(ctx, "delete", id, err)
	}
	c.ok()
	return nil
}

// Close releases both live views.
func (c *Controller) Close() {
	for _, stop := range c.stops {
		stop()
	}
	c.tasks.Close()
	c.notes.Close()
}
