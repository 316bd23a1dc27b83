package chat

import (
	"context"
	"sync"
	"time"
)

// Repository defines the interface for chat history storage
type Repository interface {
	// Append stores a new row. Bot rows are created already read.
	Append(ctx context.Context, req *AppendRequest) (*Message, error)
	// History returns at most limit of the newest rows, oldest first.
	History(ctx context.Context, clientID int64, limit int) ([]*Message, error)
	// MarkRead flips every unread client-sent row for the client.
	MarkRead(ctx context.Context, clientID int64) (int64, error)
	// UnreadCount counts unread client-sent rows for the client.
	UnreadCount(ctx context.Context, clientID int64) (int, error)
	// Delete removes one local row. It never touches the provider.
	Delete(ctx context.Context, id int64) error
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   []*Message
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

// Append stores a new history row in memory.
func (r *InMemoryRepository) Append(ctx context.Context, req *AppendRequest) (*Message, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	m := &Message{
		ID:        r.nextID,
		ClientID:  req.ClientID,
		Sender:    req.Sender,
		Message:   req.Message,
		Type:      req.Type,
		IsRead:    req.Sender == SenderBot,
		CreatedAt: time.Now().UTC(),
	}
	r.nextID++
	r.rows = append(r.rows, m)
	cp := *m
	return &cp, nil
}

// History returns the last limit rows for the client, oldest first.
func (r *InMemoryRepository) History(ctx context.Context, clientID int64, limit int) ([]*Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*Message
	for _, m := range r.rows {
		if m.ClientID == clientID {
			cp := *m
			all = append(all, &cp)
		}
	}
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

// MarkRead flips unread client rows to read.
func (r *InMemoryRepository) MarkRead(ctx context.Context, clientID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, m := range r.rows {
		if m.ClientID == clientID && m.Sender == SenderClient && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

// UnreadCount counts unread client rows.
func (r *InMemoryRepository) UnreadCount(ctx context.Context, clientID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, m := range r.rows {
		if m.ClientID == clientID && m.Sender == SenderClient && !m.IsRead {
			n++
		}
	}
	return n, nil
}

// Delete removes one row.
func (r *InMemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, m := range r.rows {
		if m.ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return ErrMessageNotFound
}
