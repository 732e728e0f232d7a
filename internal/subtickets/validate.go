package subtickets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"subtick/internal/ticket"
)

// maxAncestryDepth caps the cycle walk. The stored graph is acyclic,
// so the walk is bounded by ticket count in practice; the cap is a
// safety net against an invariant violation.
const maxAncestryDepth = 100

// Options holds the configuration inputs to the relationship engine.
type Options struct {
	// BlockClosedParents refuses modification of a ticket whose
	// proposed parent is closed.
	BlockClosedParents bool

	// SkipActions lists workflow actions exempt from closure
	// validation (closed-parent blocks and resolve/reopen gating).
	SkipActions []string

	// RecursionDepth limits descendant listing: -1 is unbounded,
	// 0 lists direct children only, N adds N more levels.
	RecursionDepth int
}

// SkipsAction reports whether the action is exempt from closure
// validation.
func (o Options) SkipsAction(action string) bool {
	for _, a := range o.SkipActions {
		if a == action {
			return true
		}
	}
	return false
}

// Validator decides which candidate parents from a ticket's parents
// field are acceptable. It reads the ticket store and the existing
// edge graph but never writes either.
type Validator struct {
	tickets ticket.Store
	edges   *EdgeStore
	opts    Options
	log     *slog.Logger
}

func NewValidator(tickets ticket.Store, edges *EdgeStore, opts Options, log *slog.Logger) *Validator {
	return &Validator{tickets: tickets, edges: edges, opts: opts, log: log}
}

// Validate checks the ticket's raw parents text against the subject
// ticket and the existing edge graph. It returns the rejections (empty
// means fully accepted) and the canonical parent-list value the caller
// should persist: accepted ids sorted ascending, comma-joined.
//
// action is the workflow action being performed; actions on the
// configured skip-list bypass the closed-parent policy.
//
// Any unexpected fault fails closed: one generic rejection, the fault
// logged, and the original field value returned unrewritten.
func (v *Validator) Validate(ctx context.Context, t *ticket.Ticket, action string) ([]Rejection, string) {
	rejections, normalized, err := v.validate(ctx, t, action)
	if err != nil {
		v.log.Error("parent list validation failed", "ticket", t.ID, "error", err)
		return []Rejection{{Field: FieldParents, Message: "Not a valid list of ticket ids."}}, t.Parents
	}
	return rejections, normalized
}

func (v *Validator) validate(ctx context.Context, t *ticket.Ticket, action string) ([]Rejection, string, error) {
	ids, err := ParseIDs(t.Parents)
	if err != nil {
		return nil, "", err
	}

	invalid := make(map[int]bool)
	var rejections []Rejection

	// Self-reference and existence first; candidates rejected here are
	// excluded from the policy and cycle checks below.
	for _, id := range ids {
		if t.ID != 0 && id == t.ID {
			invalid[id] = true
			rejections = append(rejections, Rejection{
				Field:   FieldParents,
				Message: "A ticket cannot be a parent of itself",
			})
			continue
		}
		exists, err := v.tickets.Exists(ctx, id)
		if err != nil {
			return nil, "", err
		}
		if !exists {
			invalid[id] = true
			rejections = append(rejections, Rejection{
				Field:   FieldParents,
				Message: fmt.Sprintf("Ticket #%d does not exist", id),
			})
		}
	}

	// Remaining candidates in ascending order so the error list is
	// reproducible.
	for _, id := range ids {
		if invalid[id] {
			continue
		}

		parent, err := v.tickets.Get(ctx, id)
		if errors.Is(err, ticket.ErrNotFound) {
			// Vanished between the existence check and now: treat as
			// an invalid candidate, not a crash.
			invalid[id] = true
			continue
		}
		if err != nil {
			return nil, "", err
		}

		if v.opts.BlockClosedParents && parent.Status.Closed() && !v.opts.SkipsAction(action) {
			invalid[id] = true
			rejections = append(rejections, Rejection{
				Message: fmt.Sprintf("Cannot modify ticket because parent ticket #%d is closed", id),
			})
		}

		// Walk the candidate's existing parent chain; the subject's own
		// id heads the path so a chain reaching back to it is reported
		// as a cycle.
		var path []int
		if t.ID != 0 {
			path = []int{t.ID}
		}
		cycleRejections, err := v.walkAncestors(ctx, id, path, invalid)
		if err != nil {
			return nil, "", err
		}
		rejections = append(rejections, cycleRejections...)
	}

	var accepted []int
	for _, id := range ids {
		if !invalid[id] {
			accepted = append(accepted, id)
		}
	}
	return rejections, FormatIDs(accepted), nil
}

// walkAncestors follows id's recorded parent edges transitively,
// reporting every ancestor that already appears on the path. The
// stored graph is acyclic going in, so the only cycle possible is one
// the proposed edge would close.
func (v *Validator) walkAncestors(ctx context.Context, id int, path []int, invalid map[int]bool) ([]Rejection, error) {
	if len(path) >= maxAncestryDepth {
		return nil, fmt.Errorf("parent chain exceeds %d levels at ticket %d", maxAncestryDepth, id)
	}

	next := make([]int, len(path)+1)
	copy(next, path)
	next[len(path)] = id

	parents, err := v.edges.ParentsOf(ctx, id)
	if err != nil {
		return nil, err
	}

	var rejections []Rejection
	for _, p := range parents {
		if containsInt(next, p) {
			invalid[p] = true
			rejections = append(rejections, Rejection{
				Field:   FieldParents,
				Message: "Circularity error: " + renderPath(append(next[:len(next):len(next)], p)),
			})
			continue
		}
		sub, err := v.walkAncestors(ctx, p, next, invalid)
		if err != nil {
			return nil, err
		}
		rejections = append(rejections, sub...)
	}
	return rejections, nil
}
