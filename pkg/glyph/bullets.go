package glyph

import (
	"fmt"

	"tableflip.dev/journal/pkg/entry"
)

type Glyph struct {
	Key     string
	Symbol  string
	Meaning string
}

const (
	escape     = "\x1b"
	resetCode  = 0
	boldCode   = 1
	strikeCode = 9
)

func Strike(in string) string {
	return fmt.Sprintf("%s[%dm%s%s[%dm", escape, strikeCode, in, escape, resetCode)
}

func Bold(in string) string {
	return fmt.Sprintf("%s[%dm%s%s[%dm", escape, boldCode, in, escape, resetCode)
}

type Bullet int

const (
	Todo Bullet = iota
	Done
	Note
	Migrated
)

func DefaultGlyphs() []Glyph {
	return []Glyph{
		{Key: "+", Symbol: "●", Meaning: "task"},
		{Key: "x", Symbol: "✘", Meaning: "task completed"},
		{Key: "-", Symbol: "⁃", Meaning: "note"},
		{Key: ">", Symbol: "›", Meaning: "task moved to the next day"},
	}
}

func (g Glyph) String() string {
	return g.Symbol
}

func (b Bullet) Glyph() Glyph {
	return DefaultGlyphs()[b]
}

func (b Bullet) String() string {
	return b.Glyph().String()
}

// For picks the bullet drawn in front of e.
func For(e *entry.Entry) Bullet {
	switch {
	case e.IsNote():
		return Note
	case e.Status == entry.StatusDone:
		return Done
	default:
		return Todo
	}
}
