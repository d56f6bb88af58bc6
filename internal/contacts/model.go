package contacts

import (
	"cmp"
	"strings"
	"time"

	"github.com/wolfman30/crm-api/internal/pagination"
	"github.com/wolfman30/crm-api/internal/validation"
)

// Contact is a person or organization that can own leads.
type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

// Matches reports whether term appears in the name or email, ignoring case.
// An empty term matches everything.
func (c *Contact) Matches(term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(c.Name), term) ||
		strings.Contains(strings.ToLower(c.Email), term)
}

// CreateContactRequest represents the request body for creating a contact
type CreateContactRequest struct {
	Name  string `json:"name" validate:"required,min=2"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,phone"`
}

// Normalize trims surrounding whitespace from the name.
func (r *CreateContactRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// Validate normalizes and validates the create contact request
func (r *CreateContactRequest) Validate() error {
	r.Normalize()
	return validation.Struct(r)
}

// UpdateContactRequest carries a partial update; nil fields are left alone.
type UpdateContactRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitnil,min=2"`
	Email *string `json:"email,omitempty" validate:"omitnil,email"`
	Phone *string `json:"phone,omitempty" validate:"omitnil,phone"`
}

// Normalize trims surrounding whitespace from the name when present.
func (r *UpdateContactRequest) Normalize() {
	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		r.Name = &trimmed
	}
}

// Validate normalizes and validates only the fields that were provided
func (r *UpdateContactRequest) Validate() error {
	r.Normalize()
	return validation.Struct(r)
}

// Apply merges the provided fields into c.
func (r *UpdateContactRequest) Apply(c *Contact) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Email != nil {
		c.Email = *r.Email
	}
	if r.Phone != nil {
		c.Phone = *r.Phone
	}
}

// SortField names a contact attribute the list endpoint can order by.
type SortField string

const (
	SortByName      SortField = "name"
	SortByEmail     SortField = "email"
	SortByCreatedAt SortField = "createdAt"
)

// Sorters are the orderings accepted by the contact list endpoint.
var Sorters = pagination.Sorters[SortField, Contact]{
	SortByName:      func(a, b Contact) int { return cmp.Compare(a.Name, b.Name) },
	SortByEmail:     func(a, b Contact) int { return cmp.Compare(a.Email, b.Email) },
	SortByCreatedAt: func(a, b Contact) int { return a.CreatedAt.Compare(b.CreatedAt) },
}
