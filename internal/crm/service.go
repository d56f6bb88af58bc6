package crm

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/crm-api/internal/contacts"
	"github.com/wolfman30/crm-api/internal/leads"
	"github.com/wolfman30/crm-api/internal/pagination"
	"github.com/wolfman30/crm-api/internal/validation"
	"github.com/wolfman30/crm-api/pkg/logging"
)

var tracer = otel.Tracer("crm.internal.crm")

// CascadeRecorder observes completed contact cascades.
type CascadeRecorder interface {
	ObserveCascade(removedLeads int)
}

// ContactSummary is the slice of a contact embedded in lead listings.
type ContactSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// EnrichedLead is a lead with its owning contact attached.
type EnrichedLead struct {
	leads.Lead
	Contact ContactSummary `json:"contact"`
}

// Service coordinates operations that span contacts and leads. Cross-resource
// mutations hold mu for writing; reads that join both stores hold it for
// reading, so they never observe a half-finished cascade.
type Service struct {
	contacts contacts.Repository
	leads    leads.Repository
	cascader Cascader
	recorder CascadeRecorder
	logger   *logging.Logger

	mu sync.RWMutex
}

// Option configures a Service.
type Option func(*Service)

// WithCascader replaces the default repository-backed cascade.
func WithCascader(c Cascader) Option {
	return func(s *Service) { s.cascader = c }
}

func WithRecorder(r CascadeRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithLogger(l *logging.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(c contacts.Repository, l leads.Repository, opts ...Option) *Service {
	s := &Service{contacts: c, leads: l}
	for _, opt := range opts {
		opt(s)
	}
	if s.cascader == nil {
		s.cascader = NewRepositoryCascader(c, l)
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	return s
}

// ListContacts filters contacts by search, then sorts and pages them.
func (s *Service) ListContacts(ctx context.Context, search string, params pagination.Params) (_ pagination.Page[contacts.Contact], err error) {
	ctx, span := tracer.Start(ctx, "crm.contacts.list", trace.WithAttributes(attribute.String("crm.search", search)))
	defer func() { endSpan(span, err) }()

	items, err := s.contacts.List(ctx, search)
	if err != nil {
		return pagination.Page[contacts.Contact]{}, err
	}
	return pagination.Paginate(items, params, contacts.Sorters), nil
}

func (s *Service) GetContact(ctx context.Context, id string) (_ *contacts.Contact, err error) {
	ctx, span := tracer.Start(ctx, "crm.contacts.get", trace.WithAttributes(attribute.String("crm.contact_id", id)))
	defer func() { endSpan(span, err) }()

	return s.contacts.GetByID(ctx, id)
}

func (s *Service) CreateContact(ctx context.Context, req *contacts.CreateContactRequest) (_ *contacts.Contact, err error) {
	ctx, span := tracer.Start(ctx, "crm.contacts.create")
	defer func() { endSpan(span, err) }()

	return s.contacts.Create(ctx, req)
}

func (s *Service) UpdateContact(ctx context.Context, id string, req *contacts.UpdateContactRequest) (_ *contacts.Contact, err error) {
	ctx, span := tracer.Start(ctx, "crm.contacts.update", trace.WithAttributes(attribute.String("crm.contact_id", id)))
	defer func() { endSpan(span, err) }()

	return s.contacts.Update(ctx, id, req)
}

// DeleteContact removes the contact and every lead it owns.
func (s *Service) DeleteContact(ctx context.Context, id string) (err error) {
	ctx, span := tracer.Start(ctx, "crm.contacts.delete", trace.WithAttributes(attribute.String("crm.contact_id", id)))
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.cascader.DeleteContact(ctx, id)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("crm.leads_removed", removed))
	if s.recorder != nil {
		s.recorder.ObserveCascade(removed)
	}
	s.logger.Info("contact deleted", "contact_id", id, "leads_removed", removed)
	return nil
}

// ContactLeads lists the leads owned by an existing contact.
func (s *Service) ContactLeads(ctx context.Context, contactID string) (_ []leads.Lead, err error) {
	ctx, span := tracer.Start(ctx, "crm.contacts.leads", trace.WithAttributes(attribute.String("crm.contact_id", contactID)))
	defer func() { endSpan(span, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.contacts.GetByID(ctx, contactID); err != nil {
		return nil, err
	}
	return s.leads.ListByContact(ctx, contactID)
}

// ListLeads filters, sorts and pages leads, then attaches each lead's contact.
func (s *Service) ListLeads(ctx context.Context, filter leads.Filter, params pagination.Params) (_ pagination.Page[EnrichedLead], err error) {
	ctx, span := tracer.Start(ctx, "crm.leads.list", trace.WithAttributes(
		attribute.String("crm.search", filter.Search),
		attribute.String("crm.status", string(filter.Status)),
	))
	defer func() { endSpan(span, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	items, err := s.leads.List(ctx, filter)
	if err != nil {
		return pagination.Page[EnrichedLead]{}, err
	}
	page := pagination.Paginate(items, params, leads.Sorters)

	summaries := make(map[string]ContactSummary)
	enriched := make([]EnrichedLead, 0, len(page.Data))
	for _, l := range page.Data {
		summary, ok := summaries[l.ContactID]
		if !ok {
			c, err := s.contacts.GetByID(ctx, l.ContactID)
			if errors.Is(err, contacts.ErrContactNotFound) {
				s.logger.Error("lead references missing contact", "lead_id", l.ID, "contact_id", l.ContactID)
				return pagination.Page[EnrichedLead]{}, ErrOrphanedLead
			}
			if err != nil {
				return pagination.Page[EnrichedLead]{}, err
			}
			summary = ContactSummary{ID: c.ID, Name: c.Name, Email: c.Email}
			summaries[l.ContactID] = summary
		}
		enriched = append(enriched, EnrichedLead{Lead: l, Contact: summary})
	}

	return pagination.Page[EnrichedLead]{Data: enriched, Pagination: page.Pagination}, nil
}

func (s *Service) GetLead(ctx context.Context, id string) (_ *leads.Lead, err error) {
	ctx, span := tracer.Start(ctx, "crm.leads.get", trace.WithAttributes(attribute.String("crm.lead_id", id)))
	defer func() { endSpan(span, err) }()

	return s.leads.GetByID(ctx, id)
}

// CreateLead validates the request, checks that the contact exists, then
// stores the lead. A missing contact is reported as a validation failure on
// contactId.
func (s *Service) CreateLead(ctx context.Context, req *leads.CreateLeadRequest) (_ *leads.Lead, err error) {
	ctx, span := tracer.Start(ctx, "crm.leads.create")
	defer func() { endSpan(span, err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("crm.contact_id", req.ContactID))

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.contacts.GetByID(ctx, req.ContactID); err != nil {
		if errors.Is(err, contacts.ErrContactNotFound) {
			return nil, unknownContact()
		}
		return nil, err
	}

	lead, err := s.leads.Create(ctx, req)
	if errors.Is(err, leads.ErrUnknownContact) {
		return nil, unknownContact()
	}
	return lead, err
}

func (s *Service) UpdateLead(ctx context.Context, id string, req *leads.UpdateLeadRequest) (_ *leads.Lead, err error) {
	ctx, span := tracer.Start(ctx, "crm.leads.update", trace.WithAttributes(attribute.String("crm.lead_id", id)))
	defer func() { endSpan(span, err) }()

	return s.leads.Update(ctx, id, req)
}

// DeleteLead removes a lead, returning leads.ErrLeadNotFound when absent.
func (s *Service) DeleteLead(ctx context.Context, id string) (err error) {
	ctx, span := tracer.Start(ctx, "crm.leads.delete", trace.WithAttributes(attribute.String("crm.lead_id", id)))
	defer func() { endSpan(span, err) }()

	ok, err := s.leads.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return leads.ErrLeadNotFound
	}
	return nil
}

func unknownContact() error {
	return validation.FieldError("contactId", "contact not found")
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
