package ticket

import (
	"context"
	"errors"
	"testing"
)

// RunContractTests runs the contract test suite against a Store
// implementation. Each backend calls this with its own factory to keep
// behavior consistent across implementations.
func RunContractTests(t *testing.T, factory func(t *testing.T) Store) {
	t.Run("CreateGet", func(t *testing.T) { testCreateGet(t, factory(t)) })
	t.Run("Exists", func(t *testing.T) { testExists(t, factory(t)) })
	t.Run("Save", func(t *testing.T) { testSave(t, factory(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, factory(t)) })
	t.Run("Comments", func(t *testing.T) { testComments(t, factory(t)) })
	t.Run("List", func(t *testing.T) { testList(t, factory(t)) })
}

func testCreateGet(t *testing.T, s Store) {
	ctx := context.Background()

	id, err := s.Create(ctx, &Ticket{Summary: "First ticket", Type: "task", Reporter: "alice"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id <= 0 {
		t.Fatalf("Create returned non-positive id %d", id)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get after Create failed: %v", err)
	}
	if got.Summary != "First ticket" {
		t.Errorf("Summary mismatch: got %q", got.Summary)
	}
	if got.Status != StatusOpen {
		t.Errorf("Status: got %q, want %q", got.Status, StatusOpen)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps should be set")
	}

	// Ids must be distinct and increasing.
	id2, err := s.Create(ctx, &Ticket{Summary: "Second ticket"})
	if err != nil {
		t.Fatalf("Create second failed: %v", err)
	}
	if id2 <= id {
		t.Errorf("second id %d not greater than first %d", id2, id)
	}

	if _, err := s.Get(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing: got %v, want ErrNotFound", err)
	}
}

func testExists(t *testing.T, s Store) {
	ctx := context.Background()

	id, err := s.Create(ctx, &Ticket{Summary: "Exists"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	ok, err := s.Exists(ctx, id)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !ok {
		t.Error("Exists returned false for created ticket")
	}

	ok, err = s.Exists(ctx, 9999)
	if err != nil {
		t.Fatalf("Exists missing failed: %v", err)
	}
	if ok {
		t.Error("Exists returned true for missing ticket")
	}
}

func testSave(t *testing.T, s Store) {
	ctx := context.Background()

	if err := s.Save(ctx, &Ticket{ID: 9999, Summary: "ghost"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Save missing: got %v, want ErrNotFound", err)
	}

	id, err := s.Create(ctx, &Ticket{Summary: "Before", Status: StatusOpen})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	got.Summary = "After"
	got.Status = StatusClosed
	got.Parents = "1, 2"
	if err := s.Save(ctx, got); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err = s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get after Save failed: %v", err)
	}
	if got.Summary != "After" || got.Status != StatusClosed || got.Parents != "1, 2" {
		t.Errorf("Save not applied: %+v", got)
	}
}

func testDelete(t *testing.T, s Store) {
	ctx := context.Background()

	if err := s.Delete(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete missing: got %v, want ErrNotFound", err)
	}

	id, err := s.Create(ctx, &Ticket{Summary: "Doomed"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete: got %v, want ErrNotFound", err)
	}
}

func testComments(t *testing.T, s Store) {
	ctx := context.Background()

	if err := s.AppendComment(ctx, 9999, "alice", "hello"); !errors.Is(err, ErrNotFound) {
		t.Errorf("AppendComment missing: got %v, want ErrNotFound", err)
	}

	id, err := s.Create(ctx, &Ticket{Summary: "Commented"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := s.AppendComment(ctx, id, "alice", "first"); err != nil {
		t.Fatalf("AppendComment failed: %v", err)
	}
	if err := s.AppendComment(ctx, id, "bob", "second"); err != nil {
		t.Fatalf("AppendComment failed: %v", err)
	}

	comments, err := s.Comments(ctx, id)
	if err != nil {
		t.Fatalf("Comments failed: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if comments[0].Author != "alice" || comments[0].Text != "first" {
		t.Errorf("first comment: %+v", comments[0])
	}
	if comments[1].Author != "bob" || comments[1].Text != "second" {
		t.Errorf("second comment: %+v", comments[1])
	}
}

func testList(t *testing.T, s Store) {
	ctx := context.Background()

	tickets, err := s.List(ctx, nil)
	if err != nil {
		t.Fatalf("List empty failed: %v", err)
	}
	if len(tickets) != 0 {
		t.Errorf("List empty: got %d tickets", len(tickets))
	}

	for _, spec := range []struct {
		summary string
		status  Status
		typ     string
		owner   string
	}{
		{"Open task", StatusOpen, "task", "alice"},
		{"Closed task", StatusClosed, "task", "alice"},
		{"Open defect", StatusOpen, "defect", "bob"},
	} {
		_, err := s.Create(ctx, &Ticket{Summary: spec.summary, Status: spec.status, Type: spec.typ, Owner: spec.owner})
		if err != nil {
			t.Fatalf("Create %q failed: %v", spec.summary, err)
		}
	}

	tickets, err = s.List(ctx, nil)
	if err != nil {
		t.Fatalf("List all failed: %v", err)
	}
	if len(tickets) != 3 {
		t.Errorf("List all: got %d, want 3", len(tickets))
	}
	for i := 1; i < len(tickets); i++ {
		if tickets[i-1].ID >= tickets[i].ID {
			t.Errorf("List not ordered by id: %d before %d", tickets[i-1].ID, tickets[i].ID)
		}
	}

	open := StatusOpen
	tickets, err = s.List(ctx, &ListFilter{Status: &open})
	if err != nil {
		t.Fatalf("List open failed: %v", err)
	}
	if len(tickets) != 2 {
		t.Errorf("List open: got %d, want 2", len(tickets))
	}

	defect := "defect"
	tickets, err = s.List(ctx, &ListFilter{Type: &defect})
	if err != nil {
		t.Fatalf("List defects failed: %v", err)
	}
	if len(tickets) != 1 {
		t.Errorf("List defects: got %d, want 1", len(tickets))
	}
}
