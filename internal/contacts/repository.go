package contacts

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for contact storage
type Repository interface {
	List(ctx context.Context, search string) ([]Contact, error)
	GetByID(ctx context.Context, id string) (*Contact, error)
	Create(ctx context.Context, req *CreateContactRequest) (*Contact, error)
	Update(ctx context.Context, id string, req *UpdateContactRequest) (*Contact, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// InMemoryRepository keeps contacts in insertion order in process memory.
type InMemoryRepository struct {
	mu       sync.RWMutex
	contacts []*Contact
	now      func() time.Time
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

// List returns every contact whose name or email contains search,
// case-insensitively. An empty search returns all contacts.
func (r *InMemoryRepository) List(ctx context.Context, search string) ([]Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Contact, 0, len(r.contacts))
	for _, c := range r.contacts {
		if c.Matches(search) {
			out = append(out, *c)
		}
	}
	return out, nil
}

// GetByID retrieves a contact by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, ErrContactNotFound
	}
	found := *r.contacts[idx]
	return &found, nil
}

// Create validates the request and stores a new contact
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateContactRequest) (*Contact, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	contact := &Contact{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		CreatedAt: r.now(),
	}

	r.mu.Lock()
	r.contacts = append(r.contacts, contact)
	r.mu.Unlock()

	created := *contact
	return &created, nil
}

// Update merges the provided fields into an existing contact
func (r *InMemoryRepository) Update(ctx context.Context, id string, req *UpdateContactRequest) (*Contact, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, ErrContactNotFound
	}
	req.Apply(r.contacts[idx])
	updated := *r.contacts[idx]
	return &updated, nil
}

// Delete removes a contact and reports whether it existed
func (r *InMemoryRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	r.contacts = append(r.contacts[:idx], r.contacts[idx+1:]...)
	return true, nil
}

// Reset drops every stored contact.
func (r *InMemoryRepository) Reset() {
	r.mu.Lock()
	r.contacts = nil
	r.mu.Unlock()
}

// indexOf must be called with the lock held.
func (r *InMemoryRepository) indexOf(id string) int {
	for i, c := range r.contacts {
		if c.ID == id {
			return i
		}
	}
	return -1
}
