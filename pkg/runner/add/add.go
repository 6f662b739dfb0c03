package add

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/journal/pkg/app"
	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/printers"
)

type Add struct {
	Type    entry.Type
	Content string
	// On is the day for a task. Empty means today.
	On entry.Day

	Repo    *app.Repository
	Printer *printers.PrettyPrint

	// ID is set once Do succeeds.
	ID string
}

func (n *Add) Do(ctx context.Context) error {
	if n.Repo == nil {
		return errors.New("can not add, no journal")
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}

	var err error
	switch n.Type {
	case entry.TypeTask:
		on := n.On
		if on == "" {
			on = n.Repo.Today()
		}
		if n.ID, err = n.Repo.AddTask(ctx, n.Content, on); err != nil {
			return err
		}
		return pp.ListFor(ctx, n.Repo, &entry.Entry{Type: entry.TypeTask, Date: on})
	case entry.TypeNote:
		if n.ID, err = n.Repo.AddNote(ctx, n.Content); err != nil {
			return err
		}
		return pp.ListFor(ctx, n.Repo, &entry.Entry{Type: entry.TypeNote})
	default:
		return fmt.Errorf("can not add %q", n.Type)
	}
}
