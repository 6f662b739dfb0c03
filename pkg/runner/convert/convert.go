// Package convert turns a brain dump note into a task for today.
package convert

import (
	"context"
	"errors"

	"tableflip.dev/journal/pkg/app"
	"tableflip.dev/journal/pkg/journal"
	"tableflip.dev/journal/pkg/printers"
)

type Convert struct {
	NoteID string

	Repo    *app.Repository
	Printer *printers.PrettyPrint

	// TaskID is set once Do succeeds.
	TaskID string
}

func (n *Convert) Do(ctx context.Context) error {
	if n.Repo == nil {
		return errors.New("can not convert, no journal")
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{ShowID: true}
	}

	c, err := journal.New(ctx, n.Repo)
	if err != nil {
		return err
	}
	defer c.Close()

	if n.TaskID, err = c.Convert(ctx, n.NoteID); err != nil {
		return err
	}
	p := c.Presentation()
	pp.Tasks(p.Date, n.Repo.Today(), p.Tasks)
	pp.Notes(p.Notes)
	return nil
}
