package get

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/journal/pkg/app"
	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/printers"
)

type Get struct {
	Type entry.Type
	// On selects the day for tasks. Empty means today.
	On   entry.Day
	JSON bool

	Repo    *app.Repository
	Printer *printers.PrettyPrint
	// Out receives JSON output; defaults to color.Output.
	Out io.Writer
}

func (n *Get) Do(ctx context.Context) error {
	if n.Repo == nil {
		return errors.New("can not get, no journal")
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}

	var (
		all []*entry.Entry
		err error
	)
	on := n.On
	if n.Type == entry.TypeNote {
		all, err = n.Repo.ListNotes(ctx)
	} else {
		if on == "" {
			on = n.Repo.Today()
		}
		all, err = n.Repo.ListTasks(ctx, on)
		all = entry.Partition(all)
	}
	if err != nil {
		return err
	}

	if n.JSON {
		out := n.Out
		if out == nil {
			out = color.Output
		}
		if all == nil {
			all = []*entry.Entry{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(all)
	}

	if n.Type == entry.TypeNote {
		pp.Notes(all)
	} else {
		pp.Tasks(on, n.Repo.Today(), all)
	}
	return nil
}
