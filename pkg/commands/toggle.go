package commands

import (
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/journal/pkg/printers"
	"tableflip.dev/journal/pkg/runner/toggle"
)

func addToggle(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "toggle <id>",
		Aliases: []string{"done", "x"},
		Short:   "Flip a task between todo and done",
		Example: `
journal toggle 8c4ec3f2-1e0b-4b8f-9f7a-0a6c1f3d2b9e
`,
		Args: exactlyOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := openJournal(cmd)
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			s := toggle.Toggle{
				ID:      args[0],
				Repo:    e.Repo,
				Printer: &printers.PrettyPrint{ShowID: true, Out: cmd.OutOrStdout()},
			}
			err = s.Do(cmd.Context())
			return output.HandleError(err)
		},
	}

	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
