package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/journal/pkg/timeutil"
)

// WindowOptions selects a run of days ending today.
type WindowOptions struct {
	Last string
}

func AddWindowArgs(cmd *cobra.Command, o *WindowOptions) {
	cmd.Flags().StringVar(&o.Last, "last", timeutil.DefaultWindow,
		"Days to include, ending today (for example 3d, 1w, 1w2d).")
}

// Days returns the window length and its display label.
func (o *WindowOptions) Days() (int, string, error) {
	return timeutil.ParseWindow(o.Last)
}
