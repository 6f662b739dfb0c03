package info

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"tableflip.dev/journal/pkg/app"
	"tableflip.dev/journal/pkg/store"
)

// userLister is implemented by stores that can enumerate their users.
type userLister interface {
	Users(ctx context.Context) []string
}

type Info struct {
	Config store.Config
	Store  store.Adapter
	Repo   *app.Repository
	Out    io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	out := n.Out
	if out == nil {
		out = color.Output
	}

	if override := os.Getenv("JOURNAL_CONFIG_PATH"); override != "" {
		_, _ = fmt.Fprintln(out, "JOURNAL_CONFIG_PATH found on env, using", override)
	} else {
		_, _ = fmt.Fprintln(out, "JOURNAL_CONFIG_PATH env var not set")
	}

	if n.Config == nil {
		var err error
		n.Config, err = store.LoadConfig()
		if err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintln(out, "Config.path:     ", n.Config.BasePath())
	_, _ = fmt.Fprintln(out, "Config.driver:   ", n.Config.Driver())
	_, _ = fmt.Fprintln(out, "Config.namespace:", n.Config.Namespace())
	_, _ = fmt.Fprintln(out, "Config.timezone: ", n.Config.Location())

	if n.Repo == nil {
		return fmt.Errorf("failed to open the journal")
	}
	_, _ = fmt.Fprintln(out, "User:            ", n.Repo.UserID())

	tasks, err := n.Repo.ListTasks(ctx, n.Repo.Today())
	if err != nil {
		return err
	}
	notes, err := n.Repo.ListNotes(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Today:            %s, %d tasks\n", n.Repo.Today(), len(tasks))
	_, _ = fmt.Fprintf(out, "Brain dump:       %d notes\n", len(notes))

	if ul, ok := n.Store.(userLister); ok {
		_, _ = fmt.Fprintf(out, "Users on disk:    %d\n", len(ul.Users(ctx)))
	}
	return nil
}
