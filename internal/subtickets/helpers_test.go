package subtickets

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"subtick/internal/notify"
	"subtick/internal/ticket"
)

// testEnv wires a real SQLite edge store to an in-memory ticket store
// and a recording notifier.
type testEnv struct {
	edges    *EdgeStore
	tickets  *ticket.MemoryStore
	recorder *notify.Recorder
	opts     Options
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()

	db, err := ticket.Open(filepath.Join(t.TempDir(), "subtick.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	edges, err := NewEdgeStore(db)
	if err != nil {
		t.Fatalf("new edge store: %v", err)
	}

	return &testEnv{
		edges:    edges,
		tickets:  ticket.NewMemoryStore(),
		recorder: &notify.Recorder{},
		opts:     opts,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (env *testEnv) validator() *Validator {
	return NewValidator(env.tickets, env.edges, env.opts, discardLogger())
}

func (env *testEnv) engine() *Engine {
	return NewEngine(env.edges, env.tickets, env.recorder, env.opts, discardLogger())
}

// mustCreate adds a ticket to the in-memory store with a fixed id.
func (env *testEnv) mustCreate(t *testing.T, id int, status ticket.Status) *ticket.Ticket {
	t.Helper()
	tk := &ticket.Ticket{ID: id, Summary: "ticket", Status: status}
	if _, err := env.tickets.Create(context.Background(), tk); err != nil {
		t.Fatalf("create ticket %d: %v", id, err)
	}
	return tk
}

// mustEdge inserts an edge directly, bypassing validation.
func (env *testEnv) mustEdge(t *testing.T, parent, child int) {
	t.Helper()
	if err := env.edges.AddEdge(context.Background(), parent, child); err != nil {
		t.Fatalf("add edge %d->%d: %v", parent, child, err)
	}
}
