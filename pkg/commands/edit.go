package commands

import (
	"errors"
	"strings"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/journal/pkg/printers"
	"tableflip.dev/journal/pkg/runner/edit"
)

func addEdit(topLevel *cobra.Command) {
	var content string

	cmd := &cobra.Command{
		Use:   "edit <id> <text>",
		Short: "Replace the text of a task or note",
		Example: `
journal edit 8c4ec3f2-1e0b-4b8f-9f7a-0a6c1f3d2b9e call the bank before noon
`,
		Args: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if len(args) < 2 {
				return errors.New("requires an id and the new text")
			}
			content = strings.Join(args[1:], " ")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := openJournal(cmd)
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			s := edit.Edit{
				ID:      args[0],
				Content: content,
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
