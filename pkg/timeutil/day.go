package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tableflip.dev/journal/pkg/entry"
)

const (
	// DefaultWindow is the fallback export window used when none is provided.
	DefaultWindow = "1w"

	layoutShort = "1/2"
)

var (
	offsetPattern = regexp.MustCompile(`^([+-])(\d+)([a-z]+)$`)
	windowPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)
	unitDays      = map[string]int{
		"d":     1,
		"day":   1,
		"days":  1,
		"w":     7,
		"wk":    7,
		"wks":   7,
		"week":  7,
		"weeks": 7,
	}
)

// ParseDay resolves a human day expression relative to today. Accepted forms
// are "today", "tomorrow", "yesterday", offsets such as "+2d" or "-1w",
// "2025-10-15", and "10/15" which picks that date in today's year.
func ParseDay(input string, today entry.Day) (entry.Day, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	switch s {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.Next(), nil
	case "yesterday":
		return today.Prev(), nil
	}

	if m := offsetPattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return "", fmt.Errorf("invalid day offset %q: %w", input, err)
		}
		per, ok := unitDays[m[3]]
		if !ok {
			return "", fmt.Errorf("unsupported day unit %q", m[3])
		}
		if m[1] == "-" {
			n = -n
		}
		return today.AddDays(n * per), nil
	}

	if d, err := entry.ParseDay(s); err == nil {
		return d, nil
	}

	if t, err := time.Parse(layoutShort, s); err == nil {
		base := today.Time(time.UTC)
		return entry.DayOf(time.Date(base.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)), nil
	}
	return "", fmt.Errorf("%w: %q", entry.ErrInvalidDay, input)
}

// ParseWindow parses a span such as "1w", "3d" or "1w2d" into whole days and
// a canonical label. Empty input means one week.
func ParseWindow(input string) (int, string, error) {
	remaining := strings.ToLower(strings.TrimSpace(input))
	if remaining == "" {
		remaining = DefaultWindow
	}

	total := 0
	for len(remaining) > 0 {
		matches := windowPattern.FindStringSubmatch(remaining)
		if len(matches) != 3 {
			return 0, "", fmt.Errorf("invalid window segment %q", strings.TrimSpace(remaining))
		}
		value, err := strconv.Atoi(matches[1])
		if err != nil {
			return 0, "", fmt.Errorf("invalid window value %q: %w", matches[1], err)
		}
		per, ok := unitDays[matches[2]]
		if !ok {
			return 0, "", fmt.Errorf("unsupported window unit %q", matches[2])
		}
		total += value * per
		remaining = strings.TrimSpace(remaining[len(matches[0]):])
	}

	if total <= 0 {
		return 0, "", fmt.Errorf("window must be greater than zero")
	}
	return total, FormatWindow(total), nil
}

// FormatWindow renders days using week and day tokens.
func FormatWindow(days int) string {
	if days <= 0 {
		return "0d"
	}
	var b strings.Builder
	if w := days / 7; w > 0 {
		fmt.Fprintf(&b, "%dw", w)
	}
	if d := days % 7; d > 0 {
		fmt.Fprintf(&b, "%dd", d)
	}
	return b.String()
}
