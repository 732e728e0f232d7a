package subtickets

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema version marker for the edge table, kept in the shared system
// table so migrations can detect what is installed.
const (
	schemaName    = "subtickets_version"
	schemaVersion = 1
)

// EdgeStore owns the durable subtickets(parent, child) table. Edges
// have no identity beyond the pair and no existence outside this
// store. All operations are single round-trips against the database.
type EdgeStore struct {
	db *sql.DB
}

// NewEdgeStore wraps an open database and migrates the edge table.
func NewEdgeStore(db *sql.DB) (*EdgeStore, error) {
	s := &EdgeStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *EdgeStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS subtickets (
			parent INTEGER NOT NULL,
			child  INTEGER NOT NULL,
			PRIMARY KEY (parent, child)
		);

		CREATE INDEX IF NOT EXISTS idx_subtickets_child ON subtickets(child);

		CREATE TABLE IF NOT EXISTS system (
			name  TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("migrate edge table: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO system (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value
	`, schemaName, fmt.Sprint(schemaVersion))
	if err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}

// AddEdge inserts the (parent, child) pair. The caller is responsible
// for only inserting edges that passed validation and don't already
// exist; a duplicate or self-loop here is a bug, not a runtime case.
func (s *EdgeStore) AddEdge(ctx context.Context, parent, child int) error {
	if parent == child {
		return fmt.Errorf("add edge: self-loop on ticket %d", parent)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subtickets (parent, child) VALUES (?, ?)`, parent, child)
	if err != nil {
		return fmt.Errorf("add edge %d->%d: %w", parent, child, err)
	}
	return nil
}

// RemoveEdge deletes the pair if present. Removing an absent edge is
// not an error.
func (s *EdgeStore) RemoveEdge(ctx context.Context, parent, child int) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM subtickets WHERE parent = ? AND child = ?`, parent, child)
	if err != nil {
		return fmt.Errorf("remove edge %d->%d: %w", parent, child, err)
	}
	return nil
}

// RemoveEdgesForChild deletes every edge where the given ticket is the
// child. Used when a ticket is deleted. Edges where the ticket is a
// parent are left in place.
func (s *EdgeStore) RemoveEdgesForChild(ctx context.Context, child int) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM subtickets WHERE child = ?`, child)
	if err != nil {
		return fmt.Errorf("remove edges for child %d: %w", child, err)
	}
	return nil
}

// ChildrenOf returns the direct children of parent, ascending.
func (s *EdgeStore) ChildrenOf(ctx context.Context, parent int) ([]int, error) {
	return s.column(ctx,
		`SELECT child FROM subtickets WHERE parent = ? ORDER BY child`, parent)
}

// ParentsOf returns the direct parents of child, ascending.
func (s *EdgeStore) ParentsOf(ctx context.Context, child int) ([]int, error) {
	return s.column(ctx,
		`SELECT parent FROM subtickets WHERE child = ? ORDER BY parent`, child)
}

// ApplyDiff applies the edge mutations for one ticket-change event in
// a single transaction: removed parents lose their edge to child,
// added parents gain one.
func (s *EdgeStore) ApplyDiff(ctx context.Context, child int, removed, added []int) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, parent := range removed {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM subtickets WHERE parent = ? AND child = ?`, parent, child); err != nil {
				return fmt.Errorf("remove edge %d->%d: %w", parent, child, err)
			}
		}
		for _, parent := range added {
			if parent == child {
				return fmt.Errorf("add edge: self-loop on ticket %d", parent)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO subtickets (parent, child) VALUES (?, ?)`, parent, child); err != nil {
				return fmt.Errorf("add edge %d->%d: %w", parent, child, err)
			}
		}
		return nil
	})
}

func (s *EdgeStore) column(ctx context.Context, query string, arg int) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *EdgeStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
