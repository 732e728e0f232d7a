package ticket

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used in tests and as a stand-in
// when no database is wired up. It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	tickets  map[int]*Ticket
	comments map[int][]Comment
	nextID   int
	nextCID  int
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tickets:  make(map[int]*Ticket),
		comments: make(map[int][]Comment),
		nextID:   1,
		nextCID:  1,
	}
}

func (s *MemoryStore) Create(ctx context.Context, t *Ticket) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = StatusOpen
	}
	if t.ID == 0 {
		t.ID = s.nextID
	}
	if t.ID >= s.nextID {
		s.nextID = t.ID + 1
	}
	if _, ok := s.tickets[t.ID]; ok {
		return 0, ErrAlreadyExists
	}
	clone := *t
	s.tickets[t.ID] = &clone
	return t.ID, nil
}

func (s *MemoryStore) Get(ctx context.Context, id int) (*Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (s *MemoryStore) Exists(ctx context.Context, id int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tickets[id]
	return ok, nil
}

func (s *MemoryStore) Save(ctx context.Context, t *Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tickets[t.ID]; !ok {
		return ErrNotFound
	}
	t.UpdatedAt = time.Now().UTC()
	clone := *t
	s.tickets[t.ID] = &clone
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tickets[id]; !ok {
		return ErrNotFound
	}
	delete(s.tickets, id)
	delete(s.comments, id)
	return nil
}

func (s *MemoryStore) AppendComment(ctx context.Context, id int, author, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tickets[id]; !ok {
		return ErrNotFound
	}
	s.comments[id] = append(s.comments[id], Comment{
		ID:        s.nextCID,
		Author:    author,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
	s.nextCID++
	return nil
}

func (s *MemoryStore) Comments(ctx context.Context, id int) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Comment(nil), s.comments[id]...), nil
}

func (s *MemoryStore) List(ctx context.Context, filter *ListFilter) ([]*Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tickets []*Ticket
	for _, t := range s.tickets {
		if filter != nil {
			if filter.Status != nil && t.Status != *filter.Status {
				continue
			}
			if filter.Type != nil && t.Type != *filter.Type {
				continue
			}
			if filter.Owner != nil && t.Owner != *filter.Owner {
				continue
			}
		}
		clone := *t
		tickets = append(tickets, &clone)
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].ID < tickets[j].ID })
	return tickets, nil
}
