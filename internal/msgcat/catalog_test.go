package msgcat

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalogRendersKnownKeys(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("board.description", map[string]string{"Challenger": "Alice", "Opponent": "Bob"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "A game between Alice and Bob" {
		t.Fatalf("unexpected description %q", got)
	}
	if got := c.Text("play.illegal", nil, "x"); got != "Not a legal move" {
		t.Fatalf("unexpected illegal text %q", got)
	}
	body := c.Text("help.body", map[string]string{"Prefix": "$"}, "")
	if !strings.Contains(body, "$play <move>") {
		t.Fatalf("help body missing play line: %q", body)
	}
}

func TestRenderMissingKeyAndData(t *testing.T) {
	c := MustDefault()
	if _, err := c.Render("no.such.key", nil); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
	if _, err := c.Render("greet.hello", map[string]string{}); err == nil {
		t.Fatalf("expected missingkey error")
	}
	if got := c.Text("greet.hello", map[string]string{}, "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("play:\n  illegal: \"Nope\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Text("play.illegal", nil, ""); got != "Nope" {
		t.Fatalf("override not applied: %q", got)
	}
	if !c.Has("board.title") {
		t.Fatalf("defaults lost after override")
	}
}

func TestOverrideDirRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("board:\n  title: \"X\"\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if _, err := New(dir); err == nil || !strings.Contains(err.Error(), "duplicate override key") {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}

func TestNonStringLeafRejected(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("board:\n  size: 5\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("expected error for integer leaf")
	}
}
