// Package notify is the boundary to the host's notification subsystem.
// Dispatch is fire-and-forget: the relationship engine logs failures
// and never lets them affect a committed edge mutation.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"subtick/internal/ticket"
)

// Notifier dispatches a change notification for a ticket.
type Notifier interface {
	Notify(ctx context.Context, t *ticket.Ticket, author string, when time.Time) error
}

// LogNotifier logs notifications instead of delivering them. It stands
// in for the host's email dispatcher.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, t *ticket.Ticket, author string, when time.Time) error {
	n.log.Info("ticket change notification",
		"ticket", t.ID,
		"summary", t.Summary,
		"author", author,
		"changetime", when)
	return nil
}

// Event records one dispatched notification.
type Event struct {
	TicketID int
	Author   string
	When     time.Time
}

// Recorder captures notifications for tests. If Err is set, every
// Notify call returns it after recording the event.
type Recorder struct {
	mu     sync.Mutex
	Err    error
	events []Event
}

func (r *Recorder) Notify(ctx context.Context, t *ticket.Ticket, author string, when time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{TicketID: t.ID, Author: author, When: when})
	return r.Err
}

// Events returns a copy of the recorded notifications.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
