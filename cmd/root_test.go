package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subtick/internal/ticket"
)

func TestFindSubtickDirExplicitPath(t *testing.T) {
	dir := t.TempDir()

	found, err := FindSubtickDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != dir {
		t.Errorf("found = %q, want %q", found, dir)
	}
}

func TestFindSubtickDirMissingPath(t *testing.T) {
	if _, err := FindSubtickDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestFindSubtickDirNotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := FindSubtickDir(file); err == nil {
		t.Error("expected error for non-directory path")
	}
}

func TestInitCreatesRepository(t *testing.T) {
	dir := t.TempDir()
	out := &bytes.Buffer{}

	provider := &AppProvider{Out: out, Err: &bytes.Buffer{}}
	cmd := newInitCmd(provider)
	cmd.SetArgs([]string{dir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	subtickDir := filepath.Join(dir, ".subtick")
	if _, err := os.Stat(filepath.Join(subtickDir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(subtickDir, "subtick.db")); err != nil {
		t.Errorf("subtick.db not created: %v", err)
	}
	if !strings.Contains(out.String(), "Initialized subtick repository") {
		t.Errorf("output = %q", out.String())
	}
}

func TestInitRefusesExisting(t *testing.T) {
	dir := t.TempDir()

	provider := &AppProvider{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}}
	cmd := newInitCmd(provider)
	cmd.SetArgs([]string{dir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("first init failed: %v", err)
	}

	cmd = newInitCmd(provider)
	cmd.SetArgs([]string{dir})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error re-initializing without --force")
	}

	cmd = newInitCmd(provider)
	cmd.SetArgs([]string{dir, "--force"})
	if err := cmd.Execute(); err != nil {
		t.Errorf("forced reinit failed: %v", err)
	}
}

func TestParseTicketID(t *testing.T) {
	if id, err := parseTicketID("12"); err != nil || id != 12 {
		t.Errorf("parseTicketID(12) = %d, %v", id, err)
	}
	for _, arg := range []string{"abc", "", "0", "-3", "1.5"} {
		if _, err := parseTicketID(arg); !errors.Is(err, ticket.ErrInvalidID) {
			t.Errorf("parseTicketID(%q) error = %v, want ErrInvalidID", arg, err)
		}
	}
}

func TestShowRejectsInvalidID(t *testing.T) {
	app, _ := setupTestApp(t)

	cmd := newShowCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"not-a-number"})
	if err := cmd.Execute(); !errors.Is(err, ticket.ErrInvalidID) {
		t.Errorf("error = %v, want ErrInvalidID", err)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	provider := &AppProvider{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}}
	root := newRootCmd(provider)

	for _, name := range []string{"init", "create", "show", "update", "close", "reopen", "delete", "children", "parents", "list"} {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}
