package timeutil

import (
	"errors"
	"testing"

	"tableflip.dev/journal/pkg/entry"
)

var today = entry.MustDay("2025-10-15")

func TestParseDay(t *testing.T) {
	cases := map[string]entry.Day{
		"":           today,
		"today":      today,
		" Tomorrow ": "2025-10-16",
		"yesterday":  "2025-10-14",
		"+2d":        "2025-10-17",
		"-1w":        "2025-10-08",
		"+20d":       "2025-11-04",
		"2024-02-29": "2024-02-29",
		"1/3":        "2025-01-03",
	}
	for in, want := range cases {
		got, err := ParseDay(in, today)
		if err != nil {
			t.Fatalf("ParseDay(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseDay(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestParseDayInvalid(t *testing.T) {
	for _, in := range []string{"someday", "2025-13-01", "+2y", "15.10.2025"} {
		if _, err := ParseDay(in, today); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
	if _, err := ParseDay("never", today); !errors.Is(err, entry.ErrInvalidDay) {
		t.Fatalf("expected ErrInvalidDay, got %v", err)
	}
}

func TestParseWindowDefault(t *testing.T) {
	days, label, err := ParseWindow("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 7 || label != "1w" {
		t.Fatalf("expected 7 days labelled 1w, got %d %s", days, label)
	}
}

func TestParseWindowComposite(t *testing.T) {
	days, label, err := ParseWindow("1w 10d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 17 || label != "2w3d" {
		t.Fatalf("unexpected window: %d %s", days, label)
	}
}

func TestParseWindowInvalid(t *testing.T) {
	for _, in := range []string{"noop", "0d", "3h"} {
		if _, _, err := ParseWindow(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}
