package leads

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Lead, error)
	GetByID(ctx context.Context, id string) (*Lead, error)
	ListByContact(ctx context.Context, contactID string) ([]Lead, error)
	Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error)
	Update(ctx context.Context, id string, req *UpdateLeadRequest) (*Lead, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteByContact(ctx context.Context, contactID string) (int, error)
}

// InMemoryRepository keeps leads in insertion order in process memory.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads []*Lead
	now   func() time.Time
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the timestamp source used for CreatedAt.
func (r *InMemoryRepository) WithClock(now func() time.Time) *InMemoryRepository {
	r.now = now
	return r
}

// List returns leads matching filter in insertion order
func (r *InMemoryRepository) List(ctx context.Context, filter Filter) ([]Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Lead, 0, len(r.leads))
	for _, l := range r.leads {
		if filter.Matches(l) {
			out = append(out, *l)
		}
	}
	return out, nil
}

// GetByID retrieves a lead by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, ErrLeadNotFound
	}
	found := *r.leads[idx]
	return &found, nil
}

// ListByContact returns every lead owned by contactID
func (r *InMemoryRepository) ListByContact(ctx context.Context, contactID string) ([]Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Lead{}
	for _, l := range r.leads {
		if l.ContactID == contactID {
			out = append(out, *l)
		}
	}
	return out, nil
}

// Create validates the request and stores a new lead. It does not check that
// the contact exists; that rule belongs to the caller.
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lead := &Lead{
		ID:        uuid.New().String(),
		ContactID: req.ContactID,
		Name:      req.Name,
		Company:   req.Company,
		Status:    req.Status,
		CreatedAt: r.now(),
	}

	r.mu.Lock()
	r.leads = append(r.leads, lead)
	r.mu.Unlock()

	created := *lead
	return &created, nil
}

// Update merges the provided fields into an existing lead
func (r *InMemoryRepository) Update(ctx context.Context, id string, req *UpdateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, ErrLeadNotFound
	}
	req.Apply(r.leads[idx])
	updated := *r.leads[idx]
	return &updated, nil
}

// Delete removes a lead and reports whether it existed
func (r *InMemoryRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	r.leads = append(r.leads[:idx], r.leads[idx+1:]...)
	return true, nil
}

// DeleteByContact removes every lead owned by contactID and returns how many
// were removed
func (r *InMemoryRepository) DeleteByContact(ctx context.Context, contactID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.leads[:0]
	removed := 0
	for _, l := range r.leads {
		if l.ContactID == contactID {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	clear(r.leads[len(kept):])
	r.leads = kept
	return removed, nil
}

// Reset drops every stored lead.
func (r *InMemoryRepository) Reset() {
	r.mu.Lock()
	r.leads = nil
	r.mu.Unlock()
}

// indexOf must be called with the lock held.
func (r *InMemoryRepository) indexOf(id string) int {
	for i, l := range r.leads {
		if l.ID == id {
			return i
		}
	}
	return -1
}
