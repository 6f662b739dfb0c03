package commands

import (
	"fmt"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/journal/pkg/commands/options"
	"tableflip.dev/journal/pkg/runner/export"
)

func addExport(topLevel *cobra.Command) {
	var to string
	wo := &options.WindowOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the journal as JSON to stdout, a file or S3",
		Long: base.Wrap80(`Export writes every brain dump note plus the tasks of the last few days
as one JSON document. The target is stdout (the default or "-"), a file path, or an
s3://bucket/key object. A key ending in "/" gets a dated file name. S3 endpoint, region and
credentials come from the s3-* config keys or the usual AWS environment.`),
		Example: `
journal export
journal export --to journal.json --last 2w
journal export --to s3://backups/journal/
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			days, _, err := wo.Days()
			if err != nil {
				return output.HandleError(err)
			}
			e, err := openJournal(cmd)
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			s := export.Export{
				Days:   days,
				To:     to,
				Repo:   e.Repo,
				Config: e.Config,
				Out:    cmd.OutOrStdout(),
			}
			if err := s.Do(cmd.Context()); err != nil {
				return output.HandleError(err)
			}
			if s.Location != "" && s.Location != "stdout" {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "exported to", s.Location)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", `Target: a file path, "-" for stdout, or s3://bucket/key.`)
	options.AddWindowArgs(cmd, wo)
	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
