package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"subtick/internal/config"
	"subtick/internal/notify"
	"subtick/internal/subtickets"
	"subtick/internal/ticket"
)

func setupTestApp(t *testing.T) (*App, ticket.Store) {
	t.Helper()
	return setupTestAppConfig(t, config.Default())
}

func setupTestAppConfig(t *testing.T, cfg *config.Config) (*App, ticket.Store) {
	t.Helper()

	db, err := ticket.Open(filepath.Join(t.TempDir(), "subtick.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := ticket.NewSQLiteStore(db)
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	edges, err := subtickets.NewEdgeStore(db)
	if err != nil {
		t.Fatalf("new edge store: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := cfg.Options()
	notifier := &notify.Recorder{}

	app := &App{
		Tickets:   store,
		Engine:    subtickets.NewEngine(edges, store, notifier, opts, log),
		Validator: subtickets.NewValidator(store, edges, opts, log),
		Config:    cfg,
		Out:       &bytes.Buffer{},
		Err:       &bytes.Buffer{},
	}
	return app, store
}

// mustTicket creates a ticket through the store and returns its id.
func mustTicket(t *testing.T, store ticket.Store, summary string, status ticket.Status) int {
	t.Helper()
	id, err := store.Create(context.Background(), &ticket.Ticket{
		Type:    "task",
		Summary: summary,
		Status:  status,
	})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return id
}
