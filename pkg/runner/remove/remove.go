// Package remove deletes a task or note.
package remove

import (
	"context"
	"errors"

	"tableflip.dev/journal/pkg/app"
	"tableflip.dev/journal/pkg/printers"
)

type Remove struct {
	ID string

	Repo    *app.Repository
	Printer *printers.PrettyPrint
}

func (n *Remove) Do(ctx context.Context) error {
	if n.Repo == nil {
		return errors.New("can not remove, no journal")
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{ShowID: true}
	}

	e, err := n.Repo.Lookup(ctx, n.ID)
	if errors.Is(err, app.ErrUnknownEntry) {
		// Already gone counts as removed.
		return nil
	}
	if err != nil {
		return err
	}
	if err := n.Repo.DeleteEntry(ctx, n.ID); err != nil {
		return err
	}
	return pp.ListFor(ctx, n.Repo, e)
}
