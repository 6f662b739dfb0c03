package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/journal/pkg/runner/env"
)

var (
	output = &base.OutputOptions{}

	// openJournal is replaced in tests.
	openJournal = func(cmd *cobra.Command) (*env.Env, error) {
		return env.Open(cmd.Context(), env.Options{})
	}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "journal",
		Short: base.Wrap80("A daily task list and brain dump on the command line."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addKey(topLevel)
	addAdd(topLevel)
	addTasks(topLevel)
	addNotes(topLevel)
	addToggle(topLevel)
	addEdit(topLevel)
	addMigrate(topLevel)
	addConvert(topLevel)
	addDelete(topLevel)
	addReport(topLevel)
	addExport(topLevel)
	addInfo(topLevel)
	addMCP(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}
