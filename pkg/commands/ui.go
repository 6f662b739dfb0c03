package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/journal/pkg/runner/env"
	"tableflip.dev/journal/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based user interface",
		Example: `
journal ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := env.Open(cmd.Context(), env.Options{Watch: true})
			if err != nil {
				return err
			}
			defer e.Close()

			i := ui.UI{Repo: e.Repo, Log: e.Log}
			return i.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}
