// Package edit rewrites the text of a task or note.
package edit

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/journal/pkg/app"
	"tableflip.dev/journal/pkg/printers"
)

type Edit struct {
	ID      string
	Content string

	Repo    *app.Repository
	Printer *printers.PrettyPrint
}

func (n *Edit) Do(ctx context.Context) error {
	if n.Repo == nil {
		return errors.New("can not edit, no journal")
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{ShowID: true}
	}

	// The CLI cannot know the id exists unless the store says so.
	e, err := n.Repo.Lookup(ctx, n.ID)
	if err != nil {
		return err
	}
	changed, err := n.Repo.EditContent(ctx, n.ID, n.Content)
	if err != nil {
		return err
	}
	if !changed {
		_, _ = fmt.Fprintln(pp.Writer(), "no change")
	}
	return pp.ListFor(ctx, n.Repo, e)
}
