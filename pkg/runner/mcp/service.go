// Package mcp exposes the journal over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/journal/pkg/app"
	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/timeutil"
)

// Service is the journal surface shared by the MCP tools and resources.
type Service struct {
	Repo *app.Repository
}

var errNoJournal = errors.New("journal is not configured")

// EntryDTO is a transport-friendly projection of an entry.
type EntryDTO struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Content     string `json:"content"`
	Status      string `json:"status,omitempty"`
	Date        string `json:"date,omitempty"`
	IsCompleted bool   `json:"isCompleted"`
	CreatedISO  string `json:"created"`
	CreatedUnix int64  `json:"createdUnix"`
}

// MigrateResult reports where a task went.
type MigrateResult struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
}

// ConvertResult names the task that replaced a note.
type ConvertResult struct {
	NoteID string   `json:"noteId"`
	Task   EntryDTO `json:"task"`
}

func NewService(repo *app.Repository) *Service {
	return &Service{Repo: repo}
}

func (s *Service) check() error {
	if s.Repo == nil {
		return errNoJournal
	}
	return nil
}

// Day resolves a day expression; empty means today.
func (s *Service) Day(raw string) (entry.Day, error) {
	if err := s.check(); err != nil {
		return "", err
	}
	return timeutil.ParseDay(raw, s.Repo.Today())
}

func (s *Service) AddTask(ctx context.Context, content, date string) (*EntryDTO, error) {
	day, err := s.Day(date)
	if err != nil {
		return nil, err
	}
	id, err := s.Repo.AddTask(ctx, content, day)
	if err != nil {
		return nil, err
	}
	return s.EntryByID(ctx, id)
}

func (s *Service) AddNote(ctx context.Context, content string) (*EntryDTO, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	id, err := s.Repo.AddNote(ctx, content)
	if err != nil {
		return nil, err
	}
	return s.EntryByID(ctx, id)
}

// ListTasks returns the tasks of a day, todo first.
func (s *Service) ListTasks(ctx context.Context, date string) (entry.Day, []EntryDTO, error) {
	day, err := s.Day(date)
	if err != nil {
		return "", nil, err
	}
	tasks, err := s.Repo.ListTasks(ctx, day)
	if err != nil {
		return "", nil, err
	}
	return day, toDTOs(entry.Partition(tasks)), nil
}

func (s *Service) ListNotes(ctx context.Context) ([]EntryDTO, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	notes, err := s.Repo.ListNotes(ctx)
	if err != nil {
		return nil, err
	}
	return toDTOs(notes), nil
}

func (s *Service) ToggleStatus(ctx context.Context, id string) (*EntryDTO, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if _, err := s.Repo.Toggle(ctx, id); err != nil {
		return nil, err
	}
	return s.EntryByID(ctx, id)
}

func (s *Service) EditContent(ctx context.Context, id, content string) (*EntryDTO, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if _, err := s.Repo.Lookup(ctx, id); err != nil {
		return nil, err
	}
	if _, err := s.Repo.EditContent(ctx, id, content); err != nil {
		return nil, err
	}
	return s.EntryByID(ctx, id)
}

// MigrateTask moves an open task to the day after the one it is on.
func (s *Service) MigrateTask(ctx context.Context, id string) (*MigrateResult, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	t, err := s.Repo.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsTask() {
		return nil, fmt.Errorf("%w: %s", app.ErrNotTask, id)
	}
	if t.Status != entry.StatusTodo {
		return nil, fmt.Errorf("%w: %s", app.ErrNotTodo, id)
	}
	to, err := s.Repo.Migrate(ctx, id, t.Date)
	if err != nil {
		return nil, err
	}
	return &MigrateResult{ID: id, From: t.Date.String(), To: to.String()}, nil
}

// ConvertNote replaces a note with a task for today. Empty content keeps the
// note's text.
func (s *Service) ConvertNote(ctx context.Context, noteID, content string) (*ConvertResult, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	n, err := s.Repo.Lookup(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !n.IsNote() {
		return nil, fmt.Errorf("%w: %s", app.ErrNotNote, noteID)
	}
	if strings.TrimSpace(content) == "" {
		content = n.Content
	}
	taskID, err := s.Repo.ConvertNoteToTask(ctx, noteID, content)
	if err != nil {
		return nil, err
	}
	task, err := s.EntryByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return &ConvertResult{NoteID: noteID, Task: *task}, nil
}

func (s *Service) DeleteEntry(ctx context.Context, id string) error {
	if err := s.check(); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return errors.New("id is required")
	}
	return s.Repo.DeleteEntry(ctx, id)
}

// EntryByID reads an entry straight from the store.
func (s *Service) EntryByID(ctx context.Context, id string) (*EntryDTO, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	e, err := s.Repo.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toDTO(e)
	return &dto, nil
}

func toDTOs(entries []*entry.Entry) []EntryDTO {
	out := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, toDTO(e))
	}
	return out
}

func toDTO(e *entry.Entry) EntryDTO {
	return EntryDTO{
		ID:          e.ID,
		Type:        string(e.Type),
		Content:     e.Content,
		Status:      string(e.Status),
		Date:        e.Date.String(),
		IsCompleted: e.Status == entry.StatusDone,
		CreatedISO:  entry.FormatTime(e.CreatedAt.Time),
		CreatedUnix: e.CreatedAt.Unix(),
	}
}
