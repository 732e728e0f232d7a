// Package ticket defines the host ticket store that the subticket
// relationship engine layers on top of. The engine never owns ticket
// data; it only reads tickets and appends change comments through the
// Store interface defined here.
package ticket

import (
	"context"
	"time"
)

// Ticket is a unit of work with an integer id and a free-text parents
// field listing the ids of its parent tickets.
type Ticket struct {
	ID          int       `json:"id"`
	Type        string    `json:"type"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	Priority    string    `json:"priority,omitempty"`
	Owner       string    `json:"owner,omitempty"`
	Reporter    string    `json:"reporter,omitempty"`
	Parents     string    `json:"parents,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Comment is an entry in a ticket's change log.
type Comment struct {
	ID        int       `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Status represents the workflow state of a ticket. The open/closed
// taxonomy is what the relationship engine cares about; anything that
// is not StatusClosed counts as open.
type Status string

const (
	StatusOpen     Status = "open"
	StatusAssigned Status = "assigned"
	StatusClosed   Status = "closed"
)

// Closed reports whether the status counts as closed for
// closure-policy and workflow-gating purposes.
func (s Status) Closed() bool { return s == StatusClosed }

// ListFilter specifies criteria for listing tickets.
type ListFilter struct {
	Status *Status // nil means any
	Type   *string // nil means any
	Owner  *string // nil means any
}

// Store is the boundary to the host ticket store.
type Store interface {
	// Create inserts a new ticket and returns its assigned id.
	Create(ctx context.Context, t *Ticket) (int, error)

	// Get retrieves a ticket by id.
	// Returns ErrNotFound if the ticket doesn't exist.
	Get(ctx context.Context, id int) (*Ticket, error)

	// Exists reports whether a ticket with the given id exists.
	Exists(ctx context.Context, id int) (bool, error)

	// Save replaces a ticket's data.
	// Returns ErrNotFound if the ticket doesn't exist.
	Save(ctx context.Context, t *Ticket) error

	// Delete permanently removes a ticket.
	// Returns ErrNotFound if the ticket doesn't exist.
	Delete(ctx context.Context, id int) error

	// AppendComment adds a change-log comment to a ticket.
	// Returns ErrNotFound if the ticket doesn't exist.
	AppendComment(ctx context.Context, id int, author, text string) error

	// Comments returns a ticket's change-log comments, oldest first.
	Comments(ctx context.Context, id int) ([]Comment, error)

	// List returns all tickets matching the filter, ordered by id.
	// A nil filter returns every ticket.
	List(ctx context.Context, filter *ListFilter) ([]*Ticket, error)
}
