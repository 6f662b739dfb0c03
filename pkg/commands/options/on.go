package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/timeutil"
)

// OnOptions selects a day.
type OnOptions struct {
	OnString string
}

func AddOnArgs(cmd *cobra.Command, o *OnOptions) {
	cmd.Flags().StringVar(&o.OnString, "on", "",
		`Specify a day, example: --on=2025-10-15, --on=10/15, --on=tomorrow or --on=+2d.`)
}

// GetOn resolves the flag against today. No flag means today.
func (o *OnOptions) GetOn(today entry.Day) (entry.Day, error) {
	return timeutil.ParseDay(o.OnString, today)
}
