package entry

import (
	"errors"
	"fmt"
	"time"
)

// DayLayout is the calendar day format used on the wire and in queries.
const DayLayout = "2006-01-02"

var ErrInvalidDay = errors.New("entry: invalid day")

// Day is a calendar day in YYYY-MM-DD form. The zero value is "no day".
type Day string

// ParseDay validates raw as a calendar day.
func ParseDay(raw string) (Day, error) {
	t, err := time.Parse(DayLayout, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDay, raw)
	}
	// time.Parse normalises nothing for this layout, but reject non canonical
	// spellings such as "2024-1-02" that some callers may hand us.
	if t.Format(DayLayout) != raw {
		return "", fmt.Errorf("%w: %q", ErrInvalidDay, raw)
	}
	return Day(raw), nil
}

// MustDay parses raw and panics on error. Intended for tests.
func MustDay(raw string) Day {
	d, err := ParseDay(raw)
	if err != nil {
		panic(err)
	}
	return d
}

// DayOf returns the calendar day t falls on in its own location.
func DayOf(t time.Time) Day {
	return Day(t.Format(DayLayout))
}

// Today returns the day of now in loc (local time when loc is nil).
func Today(now time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	return DayOf(now.In(loc))
}

func (d Day) Valid() bool {
	_, err := ParseDay(string(d))
	return err == nil
}

// Time returns midnight of d in loc.
func (d Day) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DayLayout, string(d), loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays shifts d by n calendar days. Calendar arithmetic is done in UTC so
// daylight saving changes never skip or repeat a day.
func (d Day) AddDays(n int) Day {
	t := d.Time(time.UTC)
	if t.IsZero() {
		return d
	}
	return DayOf(t.AddDate(0, 0, n))
}

func (d Day) Next() Day {
	return d.AddDays(1)
}

func (d Day) Prev() Day {
	return d.AddDays(-1)
}

func (d Day) Before(other Day) bool {
	return d < other
}

func (d Day) String() string {
	return string(d)
}
