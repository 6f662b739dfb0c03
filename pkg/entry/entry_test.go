package entry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func ids(entries []*Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestPartitionIsStable(t *testing.T) {
	day := MustDay("2025-10-15")
	mk := func(id string, s Status) *Entry {
		e := NewTask(id, day)
		e.ID = id
		e.Status = s
		return e
	}
	in := []*Entry{mk("A", StatusDone), mk("B", StatusTodo), mk("C", StatusTodo), mk("D", StatusDone)}

	got := ids(Partition(in))
	want := []string{"B", "C", "A", "D"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if in[0].ID != "A" {
		t.Fatalf("input reordered: %v", ids(in))
	}
}

func TestStatusToggleIsInvolution(t *testing.T) {
	for _, s := range []Status{StatusTodo, StatusDone} {
		if got := s.Toggle().Toggle(); got != s {
			t.Fatalf("toggle twice from %s gave %s", s, got)
		}
		if s.Toggle() == s {
			t.Fatalf("toggle of %s did not change it", s)
		}
	}
}

func TestValidate(t *testing.T) {
	day := MustDay("2025-10-15")
	cases := []struct {
		name string
		e    *Entry
		ok   bool
	}{
		{"task", NewTask("x", day), true},
		{"note", NewNote("x"), true},
		{"nil", nil, false},
		{"task without date", NewTask("x", ""), false},
		{"task bad status", &Entry{Type: TypeTask, Status: "later", Date: day}, false},
		{"note with date", &Entry{Type: TypeNote, Date: day}, false},
		{"unknown type", &Entry{Type: "event"}, false},
	}
	for _, tc := range cases {
		err := tc.e.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidEntry) {
			t.Fatalf("%s: expected ErrInvalidEntry, got %v", tc.name, err)
		}
	}
}

func TestParseType(t *testing.T) {
	for raw, want := range map[string]Type{"task": TypeTask, "Note": TypeNote, "braindump": TypeNote} {
		got, err := ParseType(raw)
		if err != nil || got != want {
			t.Fatalf("ParseType(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := ParseType("event"); err == nil {
		t.Fatal("expected error")
	}
}

func TestJSONFieldNames(t *testing.T) {
	e := NewTask("buy milk", MustDay("2025-10-15"))
	e.ID = "e1"
	e.CreatedAt = Timestamp{Time: time.Date(2025, 10, 15, 8, 0, 0, 0, time.UTC)}

	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for k, want := range map[string]string{
		"content":   "buy milk",
		"type":      "task",
		"status":    "todo",
		"date":      "2025-10-15",
		"createdAt": "2025-10-15T08:00:00Z",
	} {
		if doc[k] != want {
			t.Fatalf("field %s: expected %q, got %v", k, want, doc[k])
		}
	}

	note, _ := json.Marshal(NewNote("idea"))
	var nd map[string]any
	_ = json.Unmarshal(note, &nd)
	if _, ok := nd["status"]; ok {
		t.Fatalf("note should not carry status: %s", note)
	}
	if nd["type"] != "braindump" {
		t.Fatalf("note type: %v", nd["type"])
	}
}

func TestCloneIsIndependent(t *testing.T) {
	e := NewTask("a", MustDay("2025-10-15"))
	cp := e.Clone()
	cp.Content = "b"
	if e.Content != "a" {
		t.Fatal("clone shares state with original")
	}
	if !e.Equal(e.Clone()) {
		t.Fatal("clone not equal to original")
	}
}
