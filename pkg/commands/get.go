package commands

import (
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/journal/pkg/commands/options"
	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/printers"
	"tableflip.dev/journal/pkg/runner/get"
)

func addTasks(topLevel *cobra.Command) {
	oo := &options.OnOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task", "t"},
		Short:   "List the tasks of a day, open tasks first",
		Example: `
journal tasks
journal tasks --on yesterday --show-id
journal tasks --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := openJournal(cmd)
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			on, err := oo.GetOn(e.Repo.Today())
			if err != nil {
				return output.HandleError(err)
			}
			s := get.Get{
				Type:    entry.TypeTask,
				On:      on,
				JSON:    output.JSON,
				Repo:    e.Repo,
				Printer: &printers.PrettyPrint{ShowID: io.ShowID, Out: cmd.OutOrStdout()},
				Out:     cmd.OutOrStdout(),
			}
			err = s.Do(cmd.Context())
			return output.HandleError(err)
		},
	}

	options.AddOnArgs(cmd, oo)
	options.AddShowIDArgs(cmd, io)
	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func addNotes(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "notes",
		Aliases: []string{"note", "braindump", "n"},
		Short:   "List the brain dump, oldest first",
		Example: `
journal notes
journal notes --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := openJournal(cmd)
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			s := get.Get{
				Type:    entry.TypeNote,
				JSON:    output.JSON,
				Repo:    e.Repo,
				Printer: &printers.PrettyPrint{ShowID: io.ShowID, Out: cmd.OutOrStdout()},
				Out:     cmd.OutOrStdout(),
			}
			err = s.Do(cmd.Context())
			return output.HandleError(err)
		},
	}

	options.AddShowIDArgs(cmd, io)
	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
