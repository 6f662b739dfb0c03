package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/journal/pkg/commands/options"
	"tableflip.dev/journal/pkg/printers"
	"tableflip.dev/journal/pkg/runner/report"
)

func addReport(topLevel *cobra.Command) {
	wo := &options.WindowOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise the tasks of the last few days",
		Long: `Report lists the tasks of each day in the window, open tasks first, with todo
and done totals, followed by the brain dump.

Examples:
  journal report
  journal report --last 3d
  journal report --last 1w2d`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			days, label, err := wo.Days()
			if err != nil {
				return err
			}
			e, err := openJournal(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			pp := &printers.PrettyPrint{Out: cmd.OutOrStdout()}
			_, _ = fmt.Fprintf(pp.Writer(), "Report · last %s\n", label)
			s := report.Report{
				Days:    days,
				Repo:    e.Repo,
				Printer: pp,
			}
			return s.Do(cmd.Context())
		},
	}

	options.AddWindowArgs(cmd, wo)
	topLevel.AddCommand(cmd)
}
