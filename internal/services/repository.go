package services

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository defines the interface for the service catalog
type Repository interface {
	Create(ctx context.Context, req *UpsertRequest) (*Service, error)
	GetByID(ctx context.Context, id int64) (*Service, error)
	// List returns the catalog ordered by category then name. With
	// activeOnly the deactivated rows are excluded.
	List(ctx context.Context, activeOnly bool) ([]*Service, error)
	Update(ctx context.Context, id int64, req *UpsertRequest) (*Service, error)
	// SetActive soft-deletes or restores the entry.
	SetActive(ctx context.Context, id int64, active bool) error
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]*Service
	byKey  map[string]int64
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		nextID: 1,
		rows:   make(map[int64]*Service),
		byKey:  make(map[string]int64),
	}
}

// Create inserts a catalog entry.
func (r *InMemoryRepository) Create(ctx context.Context, req *UpsertRequest) (*Service, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byKey[req.Key]; ok {
		return nil, ErrDuplicateKey
	}

	s := &Service{
		ID:            r.nextID,
		Key:           req.Key,
		Name:          req.Name,
		NameEN:        req.NameEN,
		Category:      req.Category,
		Price:         req.Price,
		Currency:      req.Currency,
		Description:   req.Description,
		DescriptionEN: req.DescriptionEN,
		Benefits:      req.Benefits,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	}
	r.nextID++
	r.rows[s.ID] = s
	r.byKey[s.Key] = s.ID
	cp := *s
	return &cp, nil
}

// GetByID retrieves a catalog entry by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (*Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.rows[id]
	if !ok {
		return nil, ErrServiceNotFound
	}
	cp := *s
	return &cp, nil
}

// List returns the catalog ordered by category then name.
func (r *InMemoryRepository) List(ctx context.Context, activeOnly bool) ([]*Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Service, 0, len(r.rows))
	for _, s := range r.rows {
		if activeOnly && !s.IsActive {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Update rewrites the editable fields.
func (r *InMemoryRepository) Update(ctx context.Context, id int64, req *UpsertRequest) (*Service, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.rows[id]
	if !ok {
		return nil, ErrServiceNotFound
	}
	if other, ok := r.byKey[req.Key]; ok && other != id {
		return nil, ErrDuplicateKey
	}
	delete(r.byKey, s.Key)
	s.Key = req.Key
	s.Name = req.Name
	s.NameEN = req.NameEN
	s.Category = req.Category
	s.Price = req.Price
	s.Currency = req.Currency
	s.Description = req.Description
	s.DescriptionEN = req.DescriptionEN
	s.Benefits = req.Benefits
	r.byKey[s.Key] = id
	cp := *s
	return &cp, nil
}

// SetActive soft-deletes or restores the entry.
func (r *InMemoryRepository) SetActive(ctx context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.rows[id]
	if !ok {
		return ErrServiceNotFound
	}
	s.IsActive = active
	return nil
}
