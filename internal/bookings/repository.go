package bookings

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository defines the interface for booking storage
type Repository interface {
	Create(ctx context.Context, req *CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id int64) (*Booking, error)
	List(ctx context.Context, filter ListFilter) ([]*Booking, error)
	// SetStatus transitions the booking. Moving to completed stamps
	// completed_at; any other status clears it.
	SetStatus(ctx context.Context, id int64, status string) (*Booking, error)
	Update(ctx context.Context, id int64, req *CreateRequest) (*Booking, error)
	Delete(ctx context.Context, id int64) error
}

// DraftRepository defines the interface for the per-client scratchpad
type DraftRepository interface {
	Get(ctx context.Context, clientID int64) (*Draft, error)
	// Save overwrites the client's draft wholesale.
	Save(ctx context.Context, draft *Draft) error
	Delete(ctx context.Context, clientID int64) error
	Count(ctx context.Context) (int, error)
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]*Booking
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1, rows: make(map[int64]*Booking)}
}

// Create inserts a new booking with status pending.
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateRequest) (*Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b := &Booking{
		ID:          r.nextID,
		ClientID:    req.ClientID,
		ServiceName: req.ServiceName,
		Date:        req.Date,
		Time:        req.Time,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		Status:      StatusPending,
		Revenue:     req.Revenue,
		Notes:       req.Notes,
		CreatedAt:   time.Now().UTC(),
	}
	r.nextID++
	r.rows[b.ID] = b
	cp := *b
	return &cp, nil
}

// GetByID retrieves a booking by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.rows[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

// List returns bookings newest first.
func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Booking, 0, len(r.rows))
	for _, b := range r.rows {
		if filter.ClientID != 0 && b.ClientID != filter.ClientID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

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

// SetStatus transitions the booking status.
func (r *InMemoryRepository) SetStatus(ctx context.Context, id int64, status string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.rows[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	b.Status = status
	if status == StatusCompleted {
		now := time.Now().UTC()
		b.CompletedAt = &now
	} else {
		b.CompletedAt = nil
	}
	cp := *b
	return &cp, nil
}

// Update rewrites the editable fields.
func (r *InMemoryRepository) Update(ctx context.Context, id int64, req *CreateRequest) (*Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.rows[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	b.ClientID = req.ClientID
	b.ServiceName = req.ServiceName
	b.Date = req.Date
	b.Time = req.Time
	b.ClientName = req.ClientName
	b.ClientPhone = req.ClientPhone
	b.Revenue = req.Revenue
	b.Notes = req.Notes
	cp := *b
	return &cp, nil
}

// Delete removes a booking row.
func (r *InMemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return ErrBookingNotFound
	}
	delete(r.rows, id)
	return nil
}

// InMemoryDraftRepository is the in-memory scratchpad store.
type InMemoryDraftRepository struct {
	mu     sync.RWMutex
	drafts map[int64]*Draft
}

// NewInMemoryDraftRepository creates a new in-memory draft repository
func NewInMemoryDraftRepository() *InMemoryDraftRepository {
	return &InMemoryDraftRepository{drafts: make(map[int64]*Draft)}
}

// Get returns the client's draft.
func (r *InMemoryDraftRepository) Get(ctx context.Context, clientID int64) (*Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.drafts[clientID]
	if !ok {
		return nil, ErrDraftNotFound
	}
	cp := *d
	return &cp, nil
}

// Save overwrites the draft wholesale.
func (r *InMemoryDraftRepository) Save(ctx context.Context, draft *Draft) error {
	if draft.ClientID == 0 {
		return ErrMissingClient
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *draft
	cp.UpdatedAt = time.Now().UTC()
	r.drafts[draft.ClientID] = &cp
	return nil
}

// Delete drops the draft.
func (r *InMemoryDraftRepository) Delete(ctx context.Context, clientID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.drafts, clientID)
	return nil
}

// Count returns the number of open drafts.
func (r *InMemoryDraftRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.drafts), nil
}
