// Package migrate carries an open task over to the following day.
package migrate

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/journal/pkg/app"
	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/journal"
	"tableflip.dev/journal/pkg/printers"
)

type Migrate struct {
	ID string

	Repo    *app.Repository
	Printer *printers.PrettyPrint
}

func (n *Migrate) Do(ctx context.Context) error {
	if n.Repo == nil {
		return errors.New("can not migrate, no journal")
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{ShowID: true}
	}

	t, err := n.Repo.Lookup(ctx, n.ID)
	if err != nil {
		return err
	}
	if !t.IsTask() {
		return fmt.Errorf("%w: %s", app.ErrNotTask, n.ID)
	}

	c, err := journal.New(ctx, n.Repo)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.SetDate(ctx, t.Date); err != nil {
		return err
	}
	if err := c.Migrate(ctx, n.ID); err != nil {
		return err
	}

	today := n.Repo.Today()
	p := c.Presentation()
	pp.Tasks(p.Date, today, p.Tasks)
	return pp.ListFor(ctx, n.Repo, &entry.Entry{Type: entry.TypeTask, Date: t.Date.Next()})
}
