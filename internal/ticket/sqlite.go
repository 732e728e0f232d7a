package ticket

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) the SQLite database backing the ticket store
// and the subticket edge table. WAL mode keeps concurrent readers from
// blocking the single writer.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open database and runs ticket-table
// migrations. The database handle is shared with the edge store.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS ticket (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			type        TEXT NOT NULL DEFAULT 'task',
			summary     TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL DEFAULT 'open',
			priority    TEXT NOT NULL DEFAULT '',
			owner       TEXT NOT NULL DEFAULT '',
			reporter    TEXT NOT NULL DEFAULT '',
			parents     TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS ticket_comment (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			ticket     INTEGER NOT NULL REFERENCES ticket(id) ON DELETE CASCADE,
			author     TEXT NOT NULL,
			comment    TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_ticket_status ON ticket(status);
		CREATE INDEX IF NOT EXISTS idx_comment_ticket ON ticket_comment(ticket);
	`)
	if err != nil {
		return fmt.Errorf("migrate ticket store: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Create(ctx context.Context, t *Ticket) (int, error) {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = StatusOpen
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO ticket (type, summary, description, status, priority, owner, reporter, parents, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.Type, t.Summary, t.Description, string(t.Status), t.Priority, t.Owner, t.Reporter, t.Parents,
		t.CreatedAt.Format(time.RFC3339), t.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("create ticket: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create ticket: %w", err)
	}
	t.ID = int(id)
	return t.ID, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id int) (*Ticket, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, summary, description, status, priority, owner, reporter, parents, created_at, updated_at
		FROM ticket WHERE id = ?
	`, id)
	t, err := scanTicket(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get ticket %d: %w", id, err)
	}
	return t, nil
}

func (s *SQLiteStore) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM ticket WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check ticket %d: %w", id, err)
	}
	return exists, nil
}

func (s *SQLiteStore) Save(ctx context.Context, t *Ticket) error {
	t.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE ticket
		SET type = ?, summary = ?, description = ?, status = ?, priority = ?,
		    owner = ?, reporter = ?, parents = ?, updated_at = ?
		WHERE id = ?
	`, t.Type, t.Summary, t.Description, string(t.Status), t.Priority,
		t.Owner, t.Reporter, t.Parents, t.UpdatedAt.Format(time.RFC3339), t.ID)
	if err != nil {
		return fmt.Errorf("save ticket %d: %w", t.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save ticket %d: %w", t.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ticket WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete ticket %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete ticket %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) AppendComment(ctx context.Context, id int, author, text string) error {
	exists, err := s.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ticket_comment (ticket, author, comment, created_at)
		VALUES (?, ?, ?, ?)
	`, id, author, text, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("append comment to ticket %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Comments(ctx context.Context, id int) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, author, comment, created_at
		FROM ticket_comment WHERE ticket = ? ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("comments for ticket %d: %w", id, err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Author, &c.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *SQLiteStore) List(ctx context.Context, filter *ListFilter) ([]*Ticket, error) {
	query := `SELECT id, type, summary, description, status, priority, owner, reporter, parents, created_at, updated_at FROM ticket WHERE 1=1`
	var args []any
	if filter != nil {
		if filter.Status != nil {
			query += " AND status = ?"
			args = append(args, string(*filter.Status))
		}
		if filter.Type != nil {
			query += " AND type = ?"
			args = append(args, *filter.Type)
		}
		if filter.Owner != nil {
			query += " AND owner = ?"
			args = append(args, *filter.Owner)
		}
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTicket(row scannable) (*Ticket, error) {
	var t Ticket
	var status, createdAt, updatedAt string
	err := row.Scan(&t.ID, &t.Type, &t.Summary, &t.Description, &status, &t.Priority,
		&t.Owner, &t.Reporter, &t.Parents, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	t.Status = Status(status)
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &t, nil
}
