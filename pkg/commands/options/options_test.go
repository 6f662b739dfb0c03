package options

import (
	"errors"
	"testing"

	"github.com/spf13/cobra"

	"tableflip.dev/journal/pkg/entry"
)

func TestOnDefaultsToToday(t *testing.T) {
	o := &OnOptions{}
	got, err := o.GetOn("2025-10-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2025-10-15" {
		t.Fatalf("got %s", got)
	}
}

func TestOnFlag(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	o := &OnOptions{}
	AddOnArgs(cmd, o)
	if err := cmd.Flags().Parse([]string{"--on", "tomorrow"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, err := o.GetOn("2025-10-15")
	if err != nil || got != "2025-10-16" {
		t.Fatalf("got %s, %v", got, err)
	}

	o.OnString = "someday"
	if _, err := o.GetOn("2025-10-15"); !errors.Is(err, entry.ErrInvalidDay) {
		t.Fatalf("expected ErrInvalidDay, got %v", err)
	}
}

func TestWindowDefault(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	o := &WindowOptions{}
	AddWindowArgs(cmd, o)
	days, label, err := o.Days()
	if err != nil || days != 7 || label != "1w" {
		t.Fatalf("got %d %q %v", days, label, err)
	}
}
