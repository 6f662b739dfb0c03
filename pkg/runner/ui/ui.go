// Package ui is the interactive terminal front end.
package ui

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"tableflip.dev/journal/pkg/app"
	"tableflip.dev/journal/pkg/journal"
	"tableflip.dev/journal/pkg/logging"
)

var errNoTerminal = errors.New("ui: stdout is not a terminal")

type UI struct {
	Repo *app.Repository
	Log  logging.Logger
}

func (u *UI) Do(ctx context.Context) error {
	if u.Repo == nil {
		return errors.New("can not open ui, no journal")
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return errNoTerminal
	}

	ctrl, err := journal.New(ctx, u.Repo, journal.WithLogger(u.Log))
	if err != nil {
		return err
	}
	defer ctrl.Close()

	p := tea.NewProgram(New(ctx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	stop := ctrl.OnChange(func() { go p.Send(changedMsg{}) })
	defer stop()

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
