package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stellarlinkco/lorewright/internal/card"
	"github.com/stellarlinkco/lorewright/internal/config"
	"github.com/stellarlinkco/lorewright/internal/engine"
	"github.com/stellarlinkco/lorewright/internal/session"
)

// fakeRuntime is a scripted Runtime for command tests.
type fakeRuntime struct {
	generateID  string
	generateRes *engine.Result
	resumeRes   *engine.Result
	sessions    []*session.Session
	exportOut   *card.GenerationOutput

	lastMessage string
	lastID      string
	closed      bool
}

func (f *fakeRuntime) Generate(_ context.Context, message string) (string, *engine.Result, error) {
	f.lastMessage = message
	return f.generateID, f.generateRes, nil
}

func (f *fakeRuntime) Resume(_ context.Context, id, answer string) (*engine.Result, error) {
	f.lastID = id
	f.lastMessage = answer
	return f.resumeRes, nil
}

func (f *fakeRuntime) Sessions(_ context.Context) ([]*session.Session, error) {
	return f.sessions, nil
}

func (f *fakeRuntime) Export(_ context.Context, id string) (*card.GenerationOutput, error) {
	f.lastID = id
	return f.exportOut, nil
}

func (f *fakeRuntime) Close() { f.closed = true }

func optModule(f *fakeRuntime, stdout, stderr *bytes.Buffer) CommandOptions {
	return CommandOptions{
		RuntimeFactory: func(*config.Config) (Runtime, error) { return f, nil },
		Stdout:         stdout,
		Stderr:         stderr,
	}
}

func completeOutput() *card.GenerationOutput {
	out := card.NewGenerationOutput()
	out.Character = card.Character{
		Name: "Vale", Description: "d", Personality: "p", Scenario: "s",
		FirstMes: "f", MesExample: "m", CreatorNotes: "c", Tags: []string{"fantasy"},
	}
	return out
}

func TestGenerate_RequiresMessage(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	err := generateWithOptions(optModule(&fakeRuntime{}, &bytes.Buffer{}, &bytes.Buffer{}), "  ")
	if err == nil {
		t.Fatal("expected error for empty message")
	}
}

func TestGenerate_PrintsQuestionWhenPaused(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	var stdout, stderr bytes.Buffer
	f := &fakeRuntime{
		generateID: "sess-1",
		generateRes: &engine.Result{
			NeedsUserInput: true,
			Question:       "What genre?",
		},
	}

	if err := generateWithOptions(optModule(f, &stdout, &stderr), "a detective"); err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if f.lastMessage != "a detective" {
		t.Errorf("message = %q, want %q", f.lastMessage, "a detective")
	}
	if !strings.Contains(stdout.String(), "What genre?") {
		t.Errorf("output missing question: %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "lorewright resume sess-1") {
		t.Errorf("output missing resume hint: %q", stdout.String())
	}
	if !f.closed {
		t.Error("runtime was not closed")
	}
}

func TestGenerate_PrintsCompletion(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	var stdout, stderr bytes.Buffer
	f := &fakeRuntime{
		generateID:  "sess-2",
		generateRes: &engine.Result{Success: true, Output: completeOutput()},
	}

	if err := generateWithOptions(optModule(f, &stdout, &stderr), "a librarian"); err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if !strings.Contains(stdout.String(), "Generation complete.") {
		t.Errorf("output = %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "Vale") {
		t.Errorf("output missing character name: %q", stdout.String())
	}
}

func TestResume_PassesAnswer(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	var stdout, stderr bytes.Buffer
	f := &fakeRuntime{
		resumeRes: &engine.Result{Success: true, Output: completeOutput()},
	}

	if err := resumeWithOptions(optModule(f, &stdout, &stderr), "sess-3", "fantasy"); err != nil {
		t.Fatalf("resume error: %v", err)
	}
	if f.lastID != "sess-3" {
		t.Errorf("id = %q, want %q", f.lastID, "sess-3")
	}
	if f.lastMessage != "fantasy" {
		t.Errorf("answer = %q, want %q", f.lastMessage, "fantasy")
	}
}

func TestSessions_ListsStatus(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	var stdout, stderr bytes.Buffer
	f := &fakeRuntime{
		sessions: []*session.Session{
			{ID: "a1", Title: "a knight", Status: session.StatusWaitingUser},
			{ID: "b2", Title: "a rogue", Status: session.StatusCompleted},
		},
	}

	if err := sessionsWithOptions(optModule(f, &stdout, &stderr)); err != nil {
		t.Fatalf("sessions error: %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "WAITING_FOR_USER") || !strings.Contains(out, "a knight") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "COMPLETED") || !strings.Contains(out, "a rogue") {
		t.Errorf("output = %q", out)
	}
}

func TestSessions_Empty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	var stdout, stderr bytes.Buffer

	if err := sessionsWithOptions(optModule(&fakeRuntime{}, &stdout, &stderr)); err != nil {
		t.Fatalf("sessions error: %v", err)
	}
	if !strings.Contains(stdout.String(), "No sessions yet.") {
		t.Errorf("output = %q", stdout.String())
	}
}

func TestExport_WritesBothFiles(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	outDir := t.TempDir()
	var stdout, stderr bytes.Buffer

	out := completeOutput()
	for kind, name := range map[card.EntryKind]string{
		card.EntryStatus:      "Status",
		card.EntryUserSetting: "UserSetting",
		card.EntryWorldView:   "WorldView",
	} {
		if err := out.Worldbook.SetConstant(kind, name, strings.Repeat("x", 60)); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 5; i++ {
		if _, err := out.Worldbook.AddSupplement([]string{"key"}, "Comment", "content", 10+i); err != nil {
			t.Fatal(err)
		}
	}
	f := &fakeRuntime{exportOut: out}

	if err := exportWithOptions(optModule(f, &stdout, &stderr), "sess-4", outDir); err != nil {
		t.Fatalf("export error: %v", err)
	}

	charData, err := os.ReadFile(filepath.Join(outDir, "character.json"))
	if err != nil {
		t.Fatalf("read character.json: %v", err)
	}
	var ch card.Character
	if err := json.Unmarshal(charData, &ch); err != nil {
		t.Fatalf("decode character.json: %v", err)
	}
	if ch.Name != "Vale" {
		t.Errorf("name = %q, want %q", ch.Name, "Vale")
	}

	wbData, err := os.ReadFile(filepath.Join(outDir, "worldbook.json"))
	if err != nil {
		t.Fatalf("read worldbook.json: %v", err)
	}
	var wb card.Worldbook
	if err := json.Unmarshal(wbData, &wb); err != nil {
		t.Fatalf("decode worldbook.json: %v", err)
	}
	if len(wb.Entries) != 8 {
		t.Errorf("entries = %d, want 8", len(wb.Entries))
	}
	if stderr.Len() != 0 {
		t.Errorf("unexpected warnings: %q", stderr.String())
	}
}

func TestExport_WarnsOnIncompleteOutput(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	outDir := t.TempDir()
	var stdout, stderr bytes.Buffer
	f := &fakeRuntime{exportOut: card.NewGenerationOutput()}

	if err := exportWithOptions(optModule(f, &stdout, &stderr), "sess-5", outDir); err != nil {
		t.Fatalf("export error: %v", err)
	}
	if !strings.Contains(stderr.String(), "worldbook is incomplete") {
		t.Errorf("stderr = %q", stderr.String())
	}
	if !strings.Contains(stderr.String(), "character fields missing") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestSessionTitle(t *testing.T) {
	if got := sessionTitle("  a pirate queen  "); got != "a pirate queen" {
		t.Errorf("title = %q", got)
	}
	if got := sessionTitle(""); got != "untitled session" {
		t.Errorf("title = %q", got)
	}
	long := strings.Repeat("x", 100)
	if got := sessionTitle(long); len([]rune(got)) != 60 {
		t.Errorf("title length = %d, want 60", len([]rune(got)))
	}
}
