package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/identity"
	"tableflip.dev/journal/pkg/runner/env"
	"tableflip.dev/journal/pkg/store"
)

type testConfig struct {
	path string
}

func (t testConfig) BasePath() string         { return t.path }
func (t testConfig) Driver() string           { return store.DriverDisk }
func (t testConfig) DSN() string              { return "" }
func (t testConfig) Namespace() string        { return store.DefaultNamespace }
func (t testConfig) Secret() string           { return "secret" }
func (t testConfig) Location() *time.Location { return time.UTC }
func (t testConfig) LogLevel() string         { return "error" }
func (t testConfig) S3Endpoint() string       { return "" }
func (t testConfig) S3Region() string         { return "" }
func (t testConfig) S3AccessKey() string      { return "" }
func (t testConfig) S3SecretKey() string      { return "" }

// useTempJournal points every command at a disk journal under a temp dir.
func useTempJournal(t *testing.T) {
	t.Helper()
	color.NoColor = true
	dir := t.TempDir()
	prev := openJournal
	openJournal = func(cmd *cobra.Command) (*env.Env, error) {
		return env.Open(cmd.Context(), env.Options{
			Config:    testConfig{path: dir},
			Provider:  identity.Static("cli-user"),
			LogOutput: &bytes.Buffer{},
		})
	}
	t.Cleanup(func() { openJournal = prev })
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := New()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func listTasks(t *testing.T) []*entry.Entry {
	t.Helper()
	out, err := run(t, "tasks", "--json")
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	var got []*entry.Entry
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	return got
}

func TestAddTaskThenList(t *testing.T) {
	useTempJournal(t)

	out, err := run(t, "add", "task", "call", "the", "bank")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "call the bank") {
		t.Fatalf("add did not print the day: %q", out)
	}

	got := listTasks(t)
	if len(got) != 1 || got[0].Content != "call the bank" || got[0].Status != entry.StatusTodo {
		t.Fatalf("unexpected tasks: %+v", got)
	}
}

func TestAddTaskRequiresText(t *testing.T) {
	useTempJournal(t)
	if _, err := run(t, "add", "task"); err == nil {
		t.Fatal("expected an error without text")
	}
}

func TestAddTaskBadDay(t *testing.T) {
	useTempJournal(t)
	if _, err := run(t, "add", "task", "--on", "someday", "x"); err == nil {
		t.Fatal("expected an invalid day error")
	}
}

func TestJSONModeReportsErrorsAsOutput(t *testing.T) {
	useTempJournal(t)
	if _, err := run(t, "toggle", "missing-id"); err == nil {
		t.Fatal("expected an unknown entry error")
	}
	if _, err := run(t, "toggle", "--json", "missing-id"); err != nil {
		t.Fatalf("json mode should print the error instead of returning it: %v", err)
	}
}

func TestToggleMigrateDelete(t *testing.T) {
	useTempJournal(t)
	if _, err := run(t, "add", "task", "water plants"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := run(t, "add", "task", "pay rent"); err != nil {
		t.Fatalf("add: %v", err)
	}
	tasks := listTasks(t)
	if len(tasks) != 2 {
		t.Fatalf("expected two tasks, got %+v", tasks)
	}
	done, open := idOf(t, tasks, "water plants"), idOf(t, tasks, "pay rent")

	if _, err := run(t, "toggle", done); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := run(t, "migrate", done); err == nil {
		t.Fatal("migrating a done task should fail")
	}
	if _, err := run(t, "migrate", open); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	tasks = listTasks(t)
	if len(tasks) != 1 || tasks[0].ID != done || tasks[0].Status != entry.StatusDone {
		t.Fatalf("unexpected today after migrate: %+v", tasks)
	}

	out, err := run(t, "tasks", "--on", "tomorrow", "--json")
	if err != nil {
		t.Fatalf("tasks tomorrow: %v", err)
	}
	if !strings.Contains(out, open) {
		t.Fatalf("migrated task missing from tomorrow: %s", out)
	}

	if _, err := run(t, "delete", done); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := run(t, "delete", done); err != nil {
		t.Fatalf("deleting twice should succeed: %v", err)
	}
	if tasks := listTasks(t); len(tasks) != 0 {
		t.Fatalf("expected empty today, got %+v", tasks)
	}
}

func TestNoteConvertAndEdit(t *testing.T) {
	useTempJournal(t)
	if _, err := run(t, "add", "note", "buy", "milk"); err != nil {
		t.Fatalf("add note: %v", err)
	}
	out, err := run(t, "notes", "--json")
	if err != nil {
		t.Fatalf("notes: %v", err)
	}
	var notes []*entry.Entry
	if err := json.Unmarshal([]byte(out), &notes); err != nil || len(notes) != 1 {
		t.Fatalf("unexpected notes %q: %v", out, err)
	}

	if _, err := run(t, "convert", notes[0].ID); err != nil {
		t.Fatalf("convert: %v", err)
	}
	tasks := listTasks(t)
	if len(tasks) != 1 || tasks[0].Content != "buy milk" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}

	if _, err := run(t, "edit", tasks[0].ID, "buy", "oat", "milk"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if tasks := listTasks(t); tasks[0].Content != "buy oat milk" {
		t.Fatalf("edit not applied: %+v", tasks[0])
	}

	out, _ = run(t, "notes", "--json")
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("note should be gone: %q", out)
	}
}

func TestExportToFile(t *testing.T) {
	useTempJournal(t)
	if _, err := run(t, "add", "task", "ship it"); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, err := run(t, "export", "--last", "3d")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var doc struct {
		User  string         `json:"user"`
		Tasks []*entry.Entry `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if doc.User != "cli-user" || len(doc.Tasks) != 1 {
		t.Fatalf("unexpected export: %+v", doc)
	}
}

func TestReportAndKey(t *testing.T) {
	useTempJournal(t)
	out, err := run(t, "report", "--last", "2d")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(out, "last 2d") {
		t.Fatalf("unexpected report header: %q", out)
	}
	if _, err := run(t, "report", "--last", "soon"); err == nil {
		t.Fatal("expected a window error")
	}

	out, err = run(t, "key")
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	if !strings.Contains(out, "Bullet") {
		t.Fatalf("unexpected key: %q", out)
	}
}

func TestMCPRejectsUnknownTransport(t *testing.T) {
	useTempJournal(t)
	if _, err := run(t, "mcp", "--transport", "carrier-pigeon"); err == nil {
		t.Fatal("expected an unsupported transport error")
	}
}

func idOf(t *testing.T, tasks []*entry.Entry, content string) string {
	t.Helper()
	for _, e := range tasks {
		if e.Content == content {
			return e.ID
		}
	}
	t.Fatalf("no task %q in %+v", content, tasks)
	return ""
}
