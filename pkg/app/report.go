package app

import (
	"context"

	"tableflip.dev/journal/pkg/entry"
)

// DayTasks is one day of a report, tasks ordered todo first.
type DayTasks struct {
	Date  entry.Day      `json:"date"`
	Tasks []*entry.Entry `json:"tasks"`
}

// Report summarises a window of days plus every note.
type Report struct {
	User  string         `json:"user"`
	From  entry.Day      `json:"from"`
	To    entry.Day      `json:"to"`
	Days  []DayTasks     `json:"days"`
	Notes []*entry.Entry `json:"notes"`
	Todo  int            `json:"todo"`
	Done  int            `json:"done"`
}

// Report reads the tasks of every day from..to inclusive. Days without tasks
// are left out.
func (r *Repository) Report(ctx context.Context, from, to entry.Day) (Report, error) {
	if !from.Valid() || !to.Valid() {
		return Report{}, entry.ErrInvalidDay
	}
	if to.Before(from) {
		from, to = to, from
	}
	rep := Report{User: r.UserID(), From: from, To: to}
	for d := from; !to.Before(d); d = d.Next() {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		tasks, err := r.ListTasks(ctx, d)
		if err != nil {
			return Report{}, err
		}
		if len(tasks) == 0 {
			continue
		}
		for _, t := range tasks {
			if t.Status == entry.StatusDone {
				rep.Done++
			} else {
				rep.Todo++
			}
		}
		rep.Days = append(rep.Days, DayTasks{Date: d, Tasks: entry.Partition(tasks)})
	}
	notes, err := r.ListNotes(ctx)
	if err != nil {
		return Report{}, err
	}
	rep.Notes = notes
	return rep, nil
}

// Window returns the first and last day of the days ending today. Anything
// below one day means a week.
func (r *Repository) Window(days int) (entry.Day, entry.Day) {
	if days < 1 {
		days = 7
	}
	to := r.Today()
	return to.AddDays(1 - days), to
}
