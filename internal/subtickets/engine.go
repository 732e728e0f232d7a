package subtickets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"subtick/internal/notify"
	"subtick/internal/ticket"
)

// Workflow actions the engine gates.
const (
	ActionResolve = "resolve"
	ActionReopen  = "reopen"
)

// maxTreeDepth caps descendant recursion even when the configured
// limit is unbounded. The acyclicity invariant makes this unreachable;
// it only matters if the invariant has been violated out-of-band.
const maxTreeDepth = 100

// Tree is a nested descendant listing: direct child id mapped to that
// child's own subtree (nil when recursion stopped at this level).
type Tree map[int]Tree

// Engine keeps the edge table in sync with the parents field across
// ticket lifecycle events, and answers recursive descendant queries
// and workflow-gating checks.
type Engine struct {
	edges    *EdgeStore
	tickets  ticket.Store
	notifier notify.Notifier
	opts     Options
	log      *slog.Logger
}

func NewEngine(edges *EdgeStore, tickets ticket.Store, notifier notify.Notifier, opts Options, log *slog.Logger) *Engine {
	return &Engine{edges: edges, tickets: tickets, notifier: notifier, opts: opts, log: log}
}

// OnCreated handles a newly created ticket: every parent in its
// parents field is new.
func (e *Engine) OnCreated(ctx context.Context, t *ticket.Ticket, author string) error {
	return e.OnChanged(ctx, t, author, map[string]string{FieldParents: ""})
}

// OnChanged diffs the ticket's old and new parent sets and applies the
// edge mutations in one transaction. Each removed parent gets a
// "Remove a subticket" comment and a notification; each added parent
// gets an "Add a subticket" comment and a notification. Comment and
// notification failures are logged and never undo the committed edge
// mutations.
//
// oldValues maps changed field names to their previous values; the
// event is a no-op unless the parents field is among them and the id
// sets actually differ.
func (e *Engine) OnChanged(ctx context.Context, t *ticket.Ticket, author string, oldValues map[string]string) error {
	oldText, ok := oldValues[FieldParents]
	if !ok {
		return nil
	}

	oldParents, err := ParseIDs(oldText)
	if err != nil {
		return fmt.Errorf("parse old parents of ticket %d: %w", t.ID, err)
	}
	newParents, err := ParseIDs(t.Parents)
	if err != nil {
		return fmt.Errorf("parse new parents of ticket %d: %w", t.ID, err)
	}
	if equalIDs(oldParents, newParents) {
		return nil
	}

	removed := diffIDs(oldParents, newParents)
	added := diffIDs(newParents, oldParents)

	if err := e.edges.ApplyDiff(ctx, t.ID, removed, added); err != nil {
		return err
	}

	for _, parent := range removed {
		e.recordChange(ctx, parent, author,
			fmt.Sprintf("Remove a subticket #%d (%s).", t.ID, t.Summary))
	}
	for _, parent := range added {
		e.recordChange(ctx, parent, author,
			fmt.Sprintf("Add a subticket #%d (%s).", t.ID, t.Summary))
	}
	return nil
}

// OnDeleted removes every edge where the deleted ticket is the child.
// Edges where it is a parent stay; its children keep the stale id in
// their parents text and the display layer tolerates the mismatch.
func (e *Engine) OnDeleted(ctx context.Context, id int) error {
	return e.edges.RemoveEdgesForChild(ctx, id)
}

// recordChange appends a comment to the affected parent and dispatches
// a notification. Best-effort: each parent is processed independently
// and failures only log.
func (e *Engine) recordChange(ctx context.Context, parentID int, author, text string) {
	parent, err := e.tickets.Get(ctx, parentID)
	if err != nil {
		e.log.Warn("skipping comment on parent ticket", "ticket", parentID, "error", err)
		return
	}
	if err := e.tickets.AppendComment(ctx, parentID, author, text); err != nil {
		e.log.Warn("failed to comment on parent ticket", "ticket", parentID, "error", err)
	}
	if err := e.notifier.Notify(ctx, parent, author, time.Now()); err != nil {
		e.log.Error("failure sending notification on change to ticket",
			"ticket", parentID, "error", err)
	}
}

// Children returns the descendant tree of a ticket. maxDepth limits
// recursion below the direct children: -1 is unbounded, 0 stops at
// direct children, N descends N more levels.
func (e *Engine) Children(ctx context.Context, id, maxDepth int) (Tree, error) {
	return e.children(ctx, id, maxDepth, 0)
}

func (e *Engine) children(ctx context.Context, id, maxDepth, depth int) (Tree, error) {
	kids, err := e.edges.ChildrenOf(ctx, id)
	if err != nil {
		return nil, err
	}

	tree := make(Tree, len(kids))
	for _, child := range kids {
		tree[child] = nil
	}

	if (maxDepth > depth || maxDepth == -1) && depth < maxTreeDepth {
		for child := range tree {
			sub, err := e.children(ctx, child, maxDepth, depth+1)
			if err != nil {
				return nil, err
			}
			tree[child] = sub
		}
	}
	return tree, nil
}

// Parents returns a ticket's direct parents, ascending. For display
// the parent set comes from the ticket's own parents text rather than
// the reverse edge index, so a ticket whose parent was deleted still
// lists the stale id.
func (e *Engine) Parents(ctx context.Context, id int) ([]int, error) {
	t, err := e.tickets.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return ParseIDs(t.Parents)
}

// CheckResolve gates the resolve transition: every direct child must
// be closed. Skippable by listing "resolve" in the action skip-list.
func (e *Engine) CheckResolve(ctx context.Context, t *ticket.Ticket) ([]Rejection, error) {
	if e.opts.SkipsAction(ActionResolve) {
		return nil, nil
	}

	children, err := e.edges.ChildrenOf(ctx, t.ID)
	if err != nil {
		return nil, err
	}

	var rejections []Rejection
	for _, id := range children {
		child, err := e.tickets.Get(ctx, id)
		if errors.Is(err, ticket.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !child.Status.Closed() {
			rejections = append(rejections, Rejection{
				Message: fmt.Sprintf("Cannot close/resolve because child ticket #%d is still open", id),
			})
		}
	}
	return rejections, nil
}

// CheckReopen gates the reopen transition: no direct parent may be
// closed. Parents come from the ticket's own parents text, not the
// edge table. Skippable by listing "reopen" in the action skip-list.
func (e *Engine) CheckReopen(ctx context.Context, t *ticket.Ticket) ([]Rejection, error) {
	if e.opts.SkipsAction(ActionReopen) {
		return nil, nil
	}

	ids, err := ParseIDs(t.Parents)
	if err != nil {
		return nil, fmt.Errorf("parse parents of ticket %d: %w", t.ID, err)
	}

	var rejections []Rejection
	for _, id := range ids {
		parent, err := e.tickets.Get(ctx, id)
		if errors.Is(err, ticket.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if parent.Status.Closed() {
			rejections = append(rejections, Rejection{
				Message: fmt.Sprintf("Cannot reopen because parent ticket #%d is closed", id),
			})
		}
	}
	return rejections, nil
}
