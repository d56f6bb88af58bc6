package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/crm-api/internal/crm"
	"github.com/wolfman30/crm-api/internal/leads"
	"github.com/wolfman30/crm-api/internal/pagination"
	"github.com/wolfman30/crm-api/pkg/logging"
)

// LeadService is the subset of crm.Service the lead routes need.
type LeadService interface {
	ListLeads(ctx context.Context, filter leads.Filter, params pagination.Params) (pagination.Page[crm.EnrichedLead], error)
	GetLead(ctx context.Context, id string) (*leads.Lead, error)
	CreateLead(ctx context.Context, req *leads.CreateLeadRequest) (*leads.Lead, error)
	UpdateLead(ctx context.Context, id string, req *leads.UpdateLeadRequest) (*leads.Lead, error)
	DeleteLead(ctx context.Context, id string) error
}

// LeadsHandler serves /leads.
type LeadsHandler struct {
	svc    LeadService
	logger *logging.Logger
}

func NewLeadsHandler(svc LeadService, logger *logging.Logger) *LeadsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeadsHandler{svc: svc, logger: logger}
}

// Routes mounts the lead endpoints relative to /leads.
func (h *LeadsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})
	return r
}

// List handles GET /leads?search=&status=&page=&limit=&sortBy=&sortOrder=
// An unrecognised status is ignored rather than rejected.
func (h *LeadsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := leads.Filter{Search: strings.TrimSpace(q.Get("search"))}
	if raw := q.Get("status"); raw != "" {
		if status, err := leads.ParseStatus(raw); err == nil {
			filter.Status = status
		}
	}

	page, err := h.svc.ListLeads(r.Context(), filter, pagination.ParamsFromQuery(q))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Create handles POST /leads
func (h *LeadsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req leads.CreateLeadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	lead, err := h.svc.CreateLead(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

// Get handles GET /leads/{id}
func (h *LeadsHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.svc.GetLead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// Update handles PATCH and PUT /leads/{id}. A contactId in the body is ignored.
func (h *LeadsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req leads.UpdateLeadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	lead, err := h.svc.UpdateLead(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// Delete handles DELETE /leads/{id}
func (h *LeadsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteLead(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "lead deleted successfully"})
}
