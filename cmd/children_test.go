package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"subtick/internal/ticket"
)

func TestChildrenTree(t *testing.T) {
	app, store := setupTestApp(t)
	out := app.Out.(*bytes.Buffer)

	mustTicket(t, store, "Top", ticket.StatusOpen)
	mustTicket(t, store, "Middle", ticket.StatusOpen)
	mustTicket(t, store, "Leaf", ticket.StatusOpen)
	attachParent(t, app, 2, "1")
	attachParent(t, app, 3, "2")
	out.Reset()

	cmd := newChildrenCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("children failed: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "#2") || !strings.Contains(output, "Middle") {
		t.Errorf("output missing direct child: %q", output)
	}
	if !strings.Contains(output, "└─ #3") {
		t.Errorf("output missing nested leaf: %q", output)
	}
}

func TestChildrenDepthZero(t *testing.T) {
	app, store := setupTestApp(t)
	out := app.Out.(*bytes.Buffer)

	mustTicket(t, store, "Top", ticket.StatusOpen)
	mustTicket(t, store, "Middle", ticket.StatusOpen)
	mustTicket(t, store, "Leaf", ticket.StatusOpen)
	attachParent(t, app, 2, "1")
	attachParent(t, app, 3, "2")
	out.Reset()

	cmd := newChildrenCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"1", "--depth", "0"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("children failed: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "#2") {
		t.Errorf("output missing direct child: %q", output)
	}
	if strings.Contains(output, "#3") {
		t.Errorf("depth 0 must not descend: %q", output)
	}
}

func TestChildrenNone(t *testing.T) {
	app, store := setupTestApp(t)
	out := app.Out.(*bytes.Buffer)

	mustTicket(t, store, "Lonely", ticket.StatusOpen)

	cmd := newChildrenCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("children failed: %v", err)
	}
	if !strings.Contains(out.String(), "No subtickets for #1") {
		t.Errorf("output = %q", out.String())
	}
}

func TestChildrenJSON(t *testing.T) {
	app, store := setupTestApp(t)
	app.JSON = true
	out := app.Out.(*bytes.Buffer)

	mustTicket(t, store, "Top", ticket.StatusOpen)
	mustTicket(t, store, "Middle", ticket.StatusOpen)
	mustTicket(t, store, "Leaf", ticket.StatusOpen)
	attachParent(t, app, 2, "1")
	attachParent(t, app, 3, "2")
	out.Reset()

	cmd := newChildrenCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("children failed: %v", err)
	}

	var nodes []*TreeNode
	if err := json.Unmarshal(out.Bytes(), &nodes); err != nil {
		t.Fatalf("parse JSON output: %v", err)
	}
	if len(nodes) != 1 || nodes[0].ID != 2 {
		t.Fatalf("nodes = %+v", nodes)
	}
	if nodes[0].Summary != "Middle" {
		t.Errorf("summary = %q", nodes[0].Summary)
	}
	if len(nodes[0].Children) != 1 || nodes[0].Children[0].ID != 3 {
		t.Errorf("nested children = %+v", nodes[0].Children)
	}
}

func TestParentsListing(t *testing.T) {
	app, store := setupTestApp(t)
	out := app.Out.(*bytes.Buffer)

	mustTicket(t, store, "Parent A", ticket.StatusOpen)
	mustTicket(t, store, "Parent B", ticket.StatusOpen)
	mustTicket(t, store, "Child", ticket.StatusOpen)
	attachParent(t, app, 3, "2, 1")
	out.Reset()

	cmd := newParentsCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"3"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("parents failed: %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "#1") || !strings.Contains(output, "#2") {
		t.Errorf("output = %q", output)
	}
}

func TestParentsSurviveParentDeletion(t *testing.T) {
	app, store := setupTestApp(t)
	out := app.Out.(*bytes.Buffer)

	mustTicket(t, store, "Parent", ticket.StatusOpen)
	mustTicket(t, store, "Child", ticket.StatusOpen)
	attachParent(t, app, 2, "1")

	del := newDeleteCmd(NewTestProvider(app))
	del.SetArgs([]string{"1", "--force"})
	if err := del.Execute(); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	out.Reset()

	// The child's parents text still names the deleted ticket.
	cmd := newParentsCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"2"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("parents failed: %v", err)
	}
	if !strings.Contains(out.String(), "#1") {
		t.Errorf("output = %q", out.String())
	}
}
