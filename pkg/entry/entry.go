// Package entry defines the journal entry model shared by the store, the
// repository and every front end.
package entry

import (
	"errors"
	"fmt"
	"strings"
)

// Type discriminates the two entry variants stored in one collection.
type Type string

const (
	// TypeTask is a dated, status bearing entry.
	TypeTask Type = "task"
	// TypeNote is an undated brain dump. The wire value predates the "note" name.
	TypeNote Type = "braindump"
)

// ParseType accepts the wire values plus the friendlier "note" spelling.
func ParseType(raw string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(TypeTask), "tasks":
		return TypeTask, nil
	case string(TypeNote), "note", "notes":
		return TypeNote, nil
	default:
		return "", fmt.Errorf("entry: unknown type %q", raw)
	}
}

// Status is the completion state of a task.
type Status string

const (
	StatusTodo Status = "todo"
	StatusDone Status = "done"
)

// Toggle flips todo and done.
func (s Status) Toggle() Status {
	if s == StatusDone {
		return StatusTodo
	}
	return StatusDone
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusTodo || s == StatusDone
}

// ErrInvalidEntry is returned by Validate for malformed entries.
var ErrInvalidEntry = errors.New("entry: invalid entry")

// Entry is a task or a note. Status and Date are only set on tasks.
type Entry struct {
	ID        string    `json:"id,omitempty"`
	Type      Type      `json:"type"`
	Content   string    `json:"content"`
	Status    Status    `json:"status,omitempty"`
	Date      Day       `json:"date,omitempty"`
	CreatedAt Timestamp `json:"createdAt"`
}

// NewTask returns a todo task scheduled on day.
func NewTask(content string, day Day) *Entry {
	return &Entry{
		Type:    TypeTask,
		Content: content,
		Status:  StatusTodo,
		Date:    day,
	}
}

// NewNote returns an undated brain dump entry.
func NewNote(content string) *Entry {
	return &Entry{
		Type:    TypeNote,
		Content: content,
	}
}

func (e *Entry) IsTask() bool {
	return e != nil && e.Type == TypeTask
}

func (e *Entry) IsNote() bool {
	return e != nil && e.Type == TypeNote
}

// Validate checks the variant shape of the entry.
func (e *Entry) Validate() error {
	if e == nil {
		return fmt.Errorf("%w: nil entry", ErrInvalidEntry)
	}
	switch e.Type {
	case TypeTask:
		if !e.Status.Valid() {
			return fmt.Errorf("%w: task status %q", ErrInvalidEntry, e.Status)
		}
		if !e.Date.Valid() {
			return fmt.Errorf("%w: task date %q", ErrInvalidEntry, e.Date)
		}
	case TypeNote:
		if e.Status != "" || e.Date != "" {
			return fmt.Errorf("%w: notes carry no status or date", ErrInvalidEntry)
		}
	default:
		return fmt.Errorf("%w: type %q", ErrInvalidEntry, e.Type)
	}
	return nil
}

// Clone returns a copy that shares nothing with e.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	cp := *e
	return &cp
}

// Equal compares every persisted field.
func (e *Entry) Equal(other *Entry) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.ID == other.ID &&
		e.Type == other.Type &&
		e.Content == other.Content &&
		e.Status == other.Status &&
		e.Date == other.Date &&
		e.CreatedAt.Equal(other.CreatedAt.Time)
}

func (e *Entry) String() string {
	if e.IsTask() {
		return fmt.Sprintf("[%s] %s (%s)", e.Status, e.Content, e.Date)
	}
	return e.Content
}

// CloneAll copies a slice of entries.
func CloneAll(entries []*Entry) []*Entry {
	if entries == nil {
		return nil
	}
	out := make([]*Entry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}

// EqualAll reports whether two snapshots hold the same entries in the same order.
func EqualAll(a, b []*Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Partition orders todo tasks before done tasks, keeping the delivered order
// inside each group. The input slice is not modified.
func Partition(tasks []*Entry) []*Entry {
	out := make([]*Entry, 0, len(tasks))
	for _, t := range tasks {
		if t != nil && t.Status != StatusDone {
			out = append(out, t)
		}
	}
	for _, t := range tasks {
		if t != nil && t.Status == StatusDone {
			out = append(out, t)
		}
	}
	return out
}

// Find returns the entry with id, or nil.
func Find(entries []*Entry, id string) *Entry {
	for _, e := range entries {
		if e != nil && e.ID == id {
			return e
		}
	}
	return nil
}
