package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "warn")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	log.Debug(ctx, "dbg")
	log.Info(ctx, "inf")
	log.Warn(ctx, "wrn", "op", "toggle")
	log.Error(ctx, "err", "id", "e1")

	out := buf.String()
	if strings.Contains(out, "msg=dbg") || strings.Contains(out, "msg=inf") {
		t.Fatalf("expected debug and info to be filtered, got:\n%s", out)
	}
	for _, want := range []string{"level=WARN", "msg=wrn", "op=toggle", "level=ERROR", "id=e1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestWithAddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "debug")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	log.With("user", "u1").Info(context.Background(), "hello", "k", "v")

	out := buf.String()
	for _, want := range []string{"level=INFO", "msg=hello", "user=u1", "k=v"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"", "debug", "INFO", "warn", "warning", "error"} {
		if _, err := ParseLevel(name); err != nil {
			t.Fatalf("ParseLevel(%q): %v", name, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNopDoesNotPanic(t *testing.T) {
	log := Nop()
	ctx := context.TODO()
	log.Debug(ctx, "x")
	log.Info(ctx, "x")
	log.Warn(ctx, "x")
	log.With("a", 1).Error(ctx, "x")
}
