package clients

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Repository defines the interface for client storage
type Repository interface {
	// GetOrCreate upserts by Instagram ID. A new row starts with
	// total_messages = 1; an existing row gets its counter bumped and
	// last_contact refreshed. The second return reports creation.
	GetOrCreate(ctx context.Context, instagramID, name string) (*Client, bool, error)
	GetByID(ctx context.Context, id int64) (*Client, error)
	GetByInstagramID(ctx context.Context, instagramID string) (*Client, error)
	List(ctx context.Context, filter ListFilter) ([]*Client, error)
	Update(ctx context.Context, id int64, req *UpdateRequest) (*Client, error)
	SetStatus(ctx context.Context, id int64, status string) error
	// MarkLead moves the client to status "lead" and snapshots the
	// booking's name and phone. Empty values keep the stored ones.
	MarkLead(ctx context.Context, id int64, name, phone string) error
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*Client
	byInsta map[string]int64
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		nextID:  1,
		byID:    make(map[int64]*Client),
		byInsta: make(map[string]int64),
	}
}

// GetOrCreate upserts a client keyed by instagram ID.
func (r *InMemoryRepository) GetOrCreate(ctx context.Context, instagramID, name string) (*Client, bool, error) {
	if instagramID == "" {
		return nil, false, ErrMissingInstagramID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byInsta[instagramID]; ok {
		c := r.byID[id]
		c.TotalMessages++
		c.LastContact = time.Now().UTC()
		cp := *c
		return &cp, false, nil
	}

	now := time.Now().UTC()
	c := &Client{
		ID:            r.nextID,
		InstagramID:   instagramID,
		Name:          name,
		Status:        "new",
		TotalMessages: 1,
		FirstContact:  now,
		LastContact:   now,
	}
	r.nextID++
	r.byID[c.ID] = c
	r.byInsta[instagramID] = c.ID
	cp := *c
	return &cp, true, nil
}

// GetByID retrieves a client by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, ErrClientNotFound
	}
	cp := *c
	return &cp, nil
}

// GetByInstagramID retrieves a client by external ID
func (r *InMemoryRepository) GetByInstagramID(ctx context.Context, instagramID string) (*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byInsta[instagramID]
	if !ok {
		return nil, ErrClientNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

// List returns clients matching the filter, pinned first, most recent contact next.
func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Client, 0, len(r.byID))
	needle := strings.ToLower(filter.Search)
	for _, c := range r.byID {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(c.Name), needle) &&
			!strings.Contains(strings.ToLower(c.Phone), needle) &&
			!strings.Contains(strings.ToLower(c.InstagramID), needle) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPinned != out[j].IsPinned {
			return out[i].IsPinned
		}
		return out[i].LastContact.After(out[j].LastContact)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Update applies admin-editable fields.
func (r *InMemoryRepository) Update(ctx context.Context, id int64, req *UpdateRequest) (*Client, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, ErrClientNotFound
	}
	c.Name = req.Name
	c.Phone = req.Phone
	c.Status = req.Status
	c.Labels = req.Labels
	c.Notes = req.Notes
	c.LifetimeValue = req.LifetimeValue
	c.IsPinned = req.IsPinned
	cp := *c
	return &cp, nil
}

// SetStatus updates only the funnel status.
// MarkLead promotes the client and copies the booking contact details.
func (r *InMemoryRepository) MarkLead(ctx context.Context, id int64, name, phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return ErrClientNotFound
	}
	c.Status = "lead"
	if name != "" {
		c.Name = name
	}
	if phone != "" {
		c.Phone = phone
	}
	return nil
}

func (r *InMemoryRepository) SetStatus(ctx context.Context, id int64, status string) error {
	if strings.TrimSpace(status) == "" {
		return ErrInvalidStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return ErrClientNotFound
	}
	c.Status = status
	return nil
}
