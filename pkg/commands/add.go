package commands

import (
	"errors"
	"strings"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/journal/pkg/commands/options"
	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/printers"
	"tableflip.dev/journal/pkg/runner/add"
)

func addAdd(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add something",
		Example: `
journal add task call the bank
journal add note idea for the garden
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addTask(cmd)
	addNote(cmd)

	topLevel.AddCommand(cmd)
}

func addTask(topLevel *cobra.Command) {
	var content string
	oo := &options.OnOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "task",
		Short: "Add a task to a day",
		Example: `
journal add task do this task
journal add task --on tomorrow pick up the parcel
`,
		Args: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if len(args) < 1 {
				return errors.New("requires a task")
			}
			content = strings.Join(args, " ")
			return nil
		},
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
			s := add.Add{
				Type:    entry.TypeTask,
				Content: content,
				On:      on,
				Repo:    e.Repo,
				Printer: &printers.PrettyPrint{ShowID: io.ShowID, Out: cmd.OutOrStdout()},
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

func addNote(topLevel *cobra.Command) {
	var content string
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"braindump"},
		Short:   "Add a note to the brain dump",
		Example: `
journal add note this is a note
`,
		Args: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if len(args) < 1 {
				return errors.New("requires a note")
			}
			content = strings.Join(args, " ")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := openJournal(cmd)
			if err != nil {
				return output.HandleError(err)
			}
			defer e.Close()

			s := add.Add{
				Type:    entry.TypeNote,
				Content: content,
				Repo:    e.Repo,
				Printer: &printers.PrettyPrint{ShowID: io.ShowID, Out: cmd.OutOrStdout()},
			}
			err = s.Do(cmd.Context())
			return output.HandleError(err)
		},
	}

	options.AddShowIDArgs(cmd, io)
	base.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
