// Package toggle flips a task between todo and done.
package toggle

import (
	"context"
	"errors"

	"tableflip.dev/journal/pkg/app"
	"tableflip.dev/journal/pkg/printers"
)

type Toggle struct {
	ID string

	Repo    *app.Repository
	Printer *printers.PrettyPrint
}

func (n *Toggle) Do(ctx context.Context) error {
	if n.Repo == nil {
		return errors.New("can not toggle, no journal")
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{ShowID: true}
	}

	t, err := n.Repo.Lookup(ctx, n.ID)
	if err != nil {
		return err
	}
	if _, err := n.Repo.Toggle(ctx, n.ID); err != nil {
		return err
	}
	return pp.ListFor(ctx, n.Repo, t)
}
