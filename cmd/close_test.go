package cmd

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	"subtick/internal/config"
	"subtick/internal/subtickets"
	"subtick/internal/ticket"
)

func attachParent(t *testing.T, app *App, childID int, parents string) {
	t.Helper()
	cmd := newUpdateCmd(NewTestProvider(app))
	cmd.SetArgs([]string{strconv.Itoa(childID), "--parents", parents})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("attach parents %q to #%d: %v", parents, childID, err)
	}
}

func TestCloseBasic(t *testing.T) {
	app, store := setupTestApp(t)
	out := app.Out.(*bytes.Buffer)

	id := mustTicket(t, store, "Ticket to close", ticket.StatusOpen)

	cmd := newCloseCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if !strings.Contains(out.String(), "Closed #1") {
		t.Errorf("output = %q", out.String())
	}

	got, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != ticket.StatusClosed {
		t.Errorf("status = %q, want closed", got.Status)
	}
}

func TestCloseBlockedByOpenChild(t *testing.T) {
	app, store := setupTestApp(t)
	errOut := app.Err.(*bytes.Buffer)

	mustTicket(t, store, "Parent", ticket.StatusOpen)
	mustTicket(t, store, "Child", ticket.StatusOpen)
	attachParent(t, app, 2, "1")

	cmd := newCloseCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"1"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected rejection while child is open")
	}
	if !strings.Contains(errOut.String(), "child ticket #2 is still open") {
		t.Errorf("error output = %q", errOut.String())
	}

	got, err := store.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status.Closed() {
		t.Error("parent must stay open")
	}
}

func TestCloseChildrenFirst(t *testing.T) {
	app, store := setupTestApp(t)

	mustTicket(t, store, "Parent", ticket.StatusOpen)
	mustTicket(t, store, "Child", ticket.StatusOpen)
	attachParent(t, app, 2, "1")

	// Child first, then parent.
	cmd := newCloseCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"2"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("close child: %v", err)
	}

	cmd = newCloseCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("close parent: %v", err)
	}
}

func TestCloseSkipValidation(t *testing.T) {
	cfg := config.Default()
	cfg.SkipClosureValidation = []string{subtickets.ActionResolve}
	app, store := setupTestAppConfig(t, cfg)

	mustTicket(t, store, "Parent", ticket.StatusOpen)
	mustTicket(t, store, "Child", ticket.StatusOpen)
	attachParent(t, app, 2, "1")

	cmd := newCloseCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("skip-listed close failed: %v", err)
	}
}

func TestCloseBlockedByClosedParentPolicy(t *testing.T) {
	cfg := config.Default()
	cfg.BlockClosedParents = true
	app, store := setupTestAppConfig(t, cfg)
	errOut := app.Err.(*bytes.Buffer)

	if _, err := store.Create(context.Background(), &ticket.Ticket{
		Type:    "task",
		Summary: "Closed parent",
		Status:  ticket.StatusClosed,
	}); err != nil {
		t.Fatalf("create parent: %v", err)
	}
	if _, err := store.Create(context.Background(), &ticket.Ticket{
		Type:    "task",
		Summary: "Child",
		Status:  ticket.StatusOpen,
		Parents: "1",
	}); err != nil {
		t.Fatalf("create child: %v", err)
	}

	// Closing is a save, so the closed-parent policy applies to it too.
	cmd := newCloseCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"2"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected closed-parent rejection")
	}
	if !strings.Contains(errOut.String(), "parent ticket #1 is closed") {
		t.Errorf("error output = %q", errOut.String())
	}

	got, err := store.Get(context.Background(), 2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status.Closed() {
		t.Error("child must stay open")
	}
}

func TestCloseClosedParentPolicySkipped(t *testing.T) {
	cfg := config.Default()
	cfg.BlockClosedParents = true
	cfg.SkipClosureValidation = []string{subtickets.ActionResolve}
	app, store := setupTestAppConfig(t, cfg)

	if _, err := store.Create(context.Background(), &ticket.Ticket{
		Type:    "task",
		Summary: "Closed parent",
		Status:  ticket.StatusClosed,
	}); err != nil {
		t.Fatalf("create parent: %v", err)
	}
	if _, err := store.Create(context.Background(), &ticket.Ticket{
		Type:    "task",
		Summary: "Child",
		Status:  ticket.StatusOpen,
		Parents: "#1 and #1",
	}); err != nil {
		t.Fatalf("create child: %v", err)
	}

	cmd := newCloseCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"2"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("skip-listed close failed: %v", err)
	}

	// The save rewrote the parents text to canonical form.
	got, err := store.Get(context.Background(), 2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Parents != "1" {
		t.Errorf("parents = %q, want canonical %q", got.Parents, "1")
	}
}

func TestReopenRevalidatesParents(t *testing.T) {
	app, store := setupTestApp(t)
	errOut := app.Err.(*bytes.Buffer)

	mustTicket(t, store, "Parent", ticket.StatusOpen)
	mustTicket(t, store, "Child", ticket.StatusOpen)
	attachParent(t, app, 2, "1")

	for _, id := range []string{"2", "1"} {
		cmd := newCloseCmd(NewTestProvider(app))
		cmd.SetArgs([]string{id})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("close #%s: %v", id, err)
		}
	}

	del := newDeleteCmd(NewTestProvider(app))
	del.SetArgs([]string{"1", "--force"})
	if err := del.Execute(); err != nil {
		t.Fatalf("delete parent: %v", err)
	}

	// The child's parents text still names the deleted ticket, and the
	// reopen save revalidates it.
	cmd := newReopenCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"2"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected rejection for vanished parent")
	}
	if !strings.Contains(errOut.String(), "Ticket #1 does not exist") {
		t.Errorf("error output = %q", errOut.String())
	}
}

func TestReopenBlockedByClosedParent(t *testing.T) {
	app, store := setupTestApp(t)
	errOut := app.Err.(*bytes.Buffer)

	mustTicket(t, store, "Parent", ticket.StatusOpen)
	mustTicket(t, store, "Child", ticket.StatusOpen)
	attachParent(t, app, 2, "1")

	// Close child, then parent.
	for _, id := range []string{"2", "1"} {
		cmd := newCloseCmd(NewTestProvider(app))
		cmd.SetArgs([]string{id})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("close #%s: %v", id, err)
		}
	}

	cmd := newReopenCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"2"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected rejection while parent is closed")
	}
	if !strings.Contains(errOut.String(), "parent ticket #1 is closed") {
		t.Errorf("error output = %q", errOut.String())
	}
}

func TestReopenParentThenChild(t *testing.T) {
	app, store := setupTestApp(t)

	mustTicket(t, store, "Parent", ticket.StatusOpen)
	mustTicket(t, store, "Child", ticket.StatusOpen)
	attachParent(t, app, 2, "1")

	for _, id := range []string{"2", "1"} {
		cmd := newCloseCmd(NewTestProvider(app))
		cmd.SetArgs([]string{id})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("close #%s: %v", id, err)
		}
	}

	// Parent first, then child.
	cmd := newReopenCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("reopen parent: %v", err)
	}
	cmd = newReopenCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"2"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("reopen child: %v", err)
	}

	got, err := store.Get(context.Background(), 2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != ticket.StatusOpen {
		t.Errorf("status = %q, want open", got.Status)
	}
}

func TestReopenNotClosed(t *testing.T) {
	app, store := setupTestApp(t)
	mustTicket(t, store, "Open ticket", ticket.StatusOpen)

	cmd := newReopenCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"1"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected error reopening an open ticket")
	}
}
