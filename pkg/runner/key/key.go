// Package key prints the bullet legend.
package key

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/journal/pkg/glyph"
)

type Key struct {
	Out io.Writer
}

func (k *Key) Do(_ context.Context) error {
	out := k.Out
	if out == nil {
		out = color.Output
	}
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Bullet"), bold.Sprint("Key"), bold.Sprint("Meaning"))
	for _, g := range glyph.DefaultGlyphs() {
		tbl.AddRow(g.Symbol, g.Key, g.Meaning)
	}
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, tbl)
	_, _ = fmt.Fprintln(out)
	return nil
}
