package leads

import (
	"cmp"
	"strings"
	"time"

	"github.com/wolfman30/crm-api/internal/pagination"
	"github.com/wolfman30/crm-api/internal/validation"
)

// Lead is a sales opportunity owned by exactly one contact.
type Lead struct {
	ID        string    `json:"id"`
	ContactID string    `json:"contactId"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Filter narrows a lead listing. Both fields are optional and combine with AND.
type Filter struct {
	Search string
	Status Status
}

// Matches reports whether the lead satisfies every set filter field.
func (f Filter) Matches(l *Lead) bool {
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.Search == "" {
		return true
	}
	term := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(l.Name), term) ||
		strings.Contains(strings.ToLower(l.Company), term)
}

// CreateLeadRequest represents the request body for creating a lead
type CreateLeadRequest struct {
	ContactID string `json:"contactId" validate:"required"`
	Name      string `json:"name" validate:"required,min=2"`
	Company   string `json:"company" validate:"required,min=2"`
	Status    Status `json:"status" validate:"required,oneof=new contacted qualified converted lost"`
}

// Validate trims text fields and validates the create lead request
func (r *CreateLeadRequest) Validate() error {
	r.ContactID = strings.TrimSpace(r.ContactID)
	r.Name = strings.TrimSpace(r.Name)
	r.Company = strings.TrimSpace(r.Company)
	return validation.Struct(r)
}

// UpdateLeadRequest carries a partial update. The owning contact cannot be
// changed, so there is no contactId field.
type UpdateLeadRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitnil,min=2"`
	Company *string `json:"company,omitempty" validate:"omitnil,min=2"`
	Status  *Status `json:"status,omitempty" validate:"omitnil,oneof=new contacted qualified converted lost"`
}

// Validate trims text fields and validates only those that were provided
func (r *UpdateLeadRequest) Validate() error {
	r.Name = trimmed(r.Name)
	r.Company = trimmed(r.Company)
	return validation.Struct(r)
}

// Apply merges the provided fields into l.
func (r *UpdateLeadRequest) Apply(l *Lead) {
	if r.Name != nil {
		l.Name = *r.Name
	}
	if r.Company != nil {
		l.Company = *r.Company
	}
	if r.Status != nil {
		l.Status = *r.Status
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// SortField names a lead attribute the list endpoint can order by.
type SortField string

const (
	SortByName      SortField = "name"
	SortByCompany   SortField = "company"
	SortByStatus    SortField = "status"
	SortByCreatedAt SortField = "createdAt"
)

// Sorters are the orderings accepted by the lead list endpoint.
var Sorters = pagination.Sorters[SortField, Lead]{
	SortByName:      func(a, b Lead) int { return cmp.Compare(a.Name, b.Name) },
	SortByCompany:   func(a, b Lead) int { return cmp.Compare(a.Company, b.Company) },
	SortByStatus:    func(a, b Lead) int { return cmp.Compare(a.Status, b.Status) },
	SortByCreatedAt: func(a, b Lead) int { return a.CreatedAt.Compare(b.CreatedAt) },
}
