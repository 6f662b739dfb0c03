// Package report summarises the last few days of tasks.
package report

import (
	"context"
	"errors"

	"tableflip.dev/journal/pkg/app"
	"tableflip.dev/journal/pkg/printers"
)

type Report struct {
	// Days is the window length, ending today. Zero means one week.
	Days int

	Repo    *app.Repository
	Printer *printers.PrettyPrint
}

func (n *Report) Do(ctx context.Context) error {
	if n.Repo == nil {
		return errors.New("can not report, no journal")
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}
	from, to := n.Repo.Window(n.Days)
	rep, err := n.Repo.Report(ctx, from, to)
	if err != nil {
		return err
	}
	pp.Report(rep)
	return nil
}
