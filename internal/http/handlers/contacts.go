package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/crm-api/internal/contacts"
	"github.com/wolfman30/crm-api/internal/leads"
	"github.com/wolfman30/crm-api/internal/pagination"
	"github.com/wolfman30/crm-api/pkg/logging"
)

// ContactService is the subset of crm.Service the contact routes need.
type ContactService interface {
	ListContacts(ctx context.Context, search string, params pagination.Params) (pagination.Page[contacts.Contact], error)
	GetContact(ctx context.Context, id string) (*contacts.Contact, error)
	CreateContact(ctx context.Context, req *contacts.CreateContactRequest) (*contacts.Contact, error)
	UpdateContact(ctx context.Context, id string, req *contacts.UpdateContactRequest) (*contacts.Contact, error)
	DeleteContact(ctx context.Context, id string) error
	ContactLeads(ctx context.Context, contactID string) ([]leads.Lead, error)
}

// ContactsHandler serves /contacts.
type ContactsHandler struct {
	svc    ContactService
	logger *logging.Logger
}

func NewContactsHandler(svc ContactService, logger *logging.Logger) *ContactsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ContactsHandler{svc: svc, logger: logger}
}

// Routes mounts the contact endpoints relative to /contacts.
func (h *ContactsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
		r.Get("/leads", h.Leads)
	})
	return r
}

// List handles GET /contacts?search=&page=&limit=&sortBy=&sortOrder=
func (h *ContactsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.svc.ListContacts(r.Context(), strings.TrimSpace(q.Get("search")), pagination.ParamsFromQuery(q))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Create handles POST /contacts
func (h *ContactsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req contacts.CreateContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	contact, err := h.svc.CreateContact(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, contact)
}

// Get handles GET /contacts/{id}
func (h *ContactsHandler) Get(w http.ResponseWriter, r *http.Request) {
	contact, err := h.svc.GetContact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

// Update handles PATCH and PUT /contacts/{id}; only provided fields change.
func (h *ContactsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req contacts.UpdateContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	contact, err := h.svc.UpdateContact(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

// Delete handles DELETE /contacts/{id} and removes the contact's leads too.
func (h *ContactsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteContact(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "contact deleted successfully"})
}

// Leads handles GET /contacts/{id}/leads
func (h *ContactsHandler) Leads(w http.ResponseWriter, r *http.Request) {
	owned, err := h.svc.ContactLeads(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, owned)
}
