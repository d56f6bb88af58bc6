package crm

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/crm-api/internal/contacts"
	"github.com/wolfman30/crm-api/internal/leads"
	"github.com/wolfman30/crm-api/internal/pagination"
	"github.com/wolfman30/crm-api/internal/validation"
	"github.com/wolfman30/crm-api/pkg/logging"
)

type countingRecorder struct {
	mu      sync.Mutex
	calls   int
	removed int
}

func (r *countingRecorder) ObserveCascade(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.removed += n
}

type fixture struct {
	svc      *Service
	contacts *contacts.InMemoryRepository
	leads    *leads.InMemoryRepository
	recorder *countingRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		contacts: contacts.NewInMemoryRepository(),
		leads:    leads.NewInMemoryRepository(),
		recorder: &countingRecorder{},
	}
	f.svc = NewService(f.contacts, f.leads,
		WithRecorder(f.recorder),
		WithLogger(logging.NewWithWriter("error", "json", io.Discard)),
	)
	return f
}

func (f *fixture) contact(t *testing.T, name, email string) *contacts.Contact {
	t.Helper()
	c, err := f.svc.CreateContact(context.Background(), &contacts.CreateContactRequest{
		Name:  name,
		Email: email,
		Phone: "(47) 99999-9999",
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) lead(t *testing.T, contactID, name, company string, status leads.Status) *leads.Lead {
	t.Helper()
	l, err := f.svc.CreateLead(context.Background(), &leads.CreateLeadRequest{
		ContactID: contactID,
		Name:      name,
		Company:   company,
		Status:    status,
	})
	require.NoError(t, err)
	return l
}

func TestCreateLead_UnknownContactIsValidationError(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateLead(context.Background(), &leads.CreateLeadRequest{
		ContactID: "nope",
		Name:      "ERP rollout",
		Company:   "Acme",
		Status:    leads.StatusNew,
	})

	verr, ok := validation.AsError(err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"contactId": "contact not found"}, verr.Fields)

	all, err := f.leads.List(context.Background(), leads.Filter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateLead_ValidatesBeforeContactCheck(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateLead(context.Background(), &leads.CreateLeadRequest{
		ContactID: "nope",
		Name:      "E",
		Company:   "Acme",
		Status:    leads.StatusNew,
	})

	verr, ok := validation.AsError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "name")
	assert.NotContains(t, verr.Fields, "contactId")
}

func TestDeleteContact_CascadesOnlyOwnLeads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	maria := f.contact(t, "Maria Silva", "maria@email.com")
	joao := f.contact(t, "João Santos", "joao@email.com")
	f.lead(t, maria.ID, "ERP rollout", "Acme", leads.StatusNew)
	f.lead(t, maria.ID, "Consulting", "Acme", leads.StatusLost)
	kept := f.lead(t, joao.ID, "Support plan", "Globex", leads.StatusQualified)

	require.NoError(t, f.svc.DeleteContact(ctx, maria.ID))

	_, err := f.svc.GetContact(ctx, maria.ID)
	assert.ErrorIs(t, err, contacts.ErrContactNotFound)

	remaining, err := f.leads.List(ctx, leads.Filter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ID)

	assert.Equal(t, 1, f.recorder.calls)
	assert.Equal(t, 2, f.recorder.removed)
}

func TestDeleteContact_NotFound(t *testing.T) {
	f := newFixture(t)

	err := f.svc.DeleteContact(context.Background(), "missing")
	assert.ErrorIs(t, err, contacts.ErrContactNotFound)
	assert.Equal(t, 0, f.recorder.calls)
}

func TestContactLeads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	maria := f.contact(t, "Maria Silva", "maria@email.com")
	joao := f.contact(t, "João Santos", "joao@email.com")
	f.lead(t, maria.ID, "ERP rollout", "Acme", leads.StatusNew)
	f.lead(t, joao.ID, "Support plan", "Globex", leads.StatusNew)

	owned, err := f.svc.ContactLeads(ctx, maria.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "ERP rollout", owned[0].Name)

	_, err = f.svc.ContactLeads(ctx, "missing")
	assert.ErrorIs(t, err, contacts.ErrContactNotFound)
}

func TestListContacts_PagesFilteredSet(t *testing.T) {
	f := newFixture(t)
	f.contact(t, "Maria Silva", "maria@email.com")
	f.contact(t, "João Santos", "joao@email.com")
	f.contact(t, "Ana Oliveira", "ana@email.com")

	page, err := f.svc.ListContacts(context.Background(), "", pagination.Params{Page: "1", Limit: "2"})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, pagination.Meta{Page: 1, Limit: 2, Total: 3, TotalPages: 2}, page.Pagination)

	page, err = f.svc.ListContacts(context.Background(), "ana", pagination.Params{SortBy: "name"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Ana Oliveira", page.Data[0].Name)
}

func TestListLeads_EnrichesAndFilters(t *testing.T) {
	f := newFixture(t)
	maria := f.contact(t, "Maria Silva", "maria@email.com")
	joao := f.contact(t, "João Santos", "joao@email.com")
	f.lead(t, maria.ID, "ERP rollout", "Acme", leads.StatusQualified)
	f.lead(t, joao.ID, "Support plan", "Acme", leads.StatusNew)
	f.lead(t, joao.ID, "Consulting", "Globex", leads.StatusQualified)

	page, err := f.svc.ListLeads(context.Background(),
		leads.Filter{Search: "acme", Status: leads.StatusQualified},
		pagination.Params{},
	)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	got := page.Data[0]
	assert.Equal(t, "ERP rollout", got.Name)
	assert.Equal(t, ContactSummary{ID: maria.ID, Name: "Maria Silva", Email: "maria@email.com"}, got.Contact)
	assert.Equal(t, 1, page.Pagination.Total)
}

func TestListLeads_SortedPage(t *testing.T) {
	f := newFixture(t)
	c := f.contact(t, "Maria Silva", "maria@email.com")
	for _, name := range []string{"Carlos", "Ana", "Bruno", "Diana", "Eduardo"} {
		f.lead(t, c.ID, name, "Acme", leads.StatusNew)
	}

	page, err := f.svc.ListLeads(context.Background(), leads.Filter{},
		pagination.Params{Page: "2", Limit: "2", SortBy: "name", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Carlos", page.Data[0].Name)
	assert.Equal(t, "Diana", page.Data[1].Name)
	assert.Equal(t, 3, page.Pagination.TotalPages)
}

func TestListLeads_OrphanFailsLoud(t *testing.T) {
	f := newFixture(t)
	_, err := f.leads.Create(context.Background(), &leads.CreateLeadRequest{
		ContactID: "ghost",
		Name:      "Orphan",
		Company:   "Nowhere",
		Status:    leads.StatusNew,
	})
	require.NoError(t, err)

	_, err = f.svc.ListLeads(context.Background(), leads.Filter{}, pagination.Params{})
	assert.ErrorIs(t, err, ErrOrphanedLead)
}

func TestDeleteLead(t *testing.T) {
	f := newFixture(t)
	c := f.contact(t, "Maria Silva", "maria@email.com")
	l := f.lead(t, c.ID, "ERP rollout", "Acme", leads.StatusNew)

	require.NoError(t, f.svc.DeleteLead(context.Background(), l.ID))
	assert.ErrorIs(t, f.svc.DeleteLead(context.Background(), l.ID), leads.ErrLeadNotFound)

	_, err := f.svc.GetContact(context.Background(), c.ID)
	assert.NoError(t, err)
}

func TestCreateLeadAndCascadeNeverLeaveOrphans(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		c := f.contact(t, "Maria Silva", "maria@email.com")
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = f.svc.CreateLead(ctx, &leads.CreateLeadRequest{
				ContactID: c.ID,
				Name:      "ERP rollout",
				Company:   "Acme",
				Status:    leads.StatusNew,
			})
		}()
		go func() {
			defer wg.Done()
			_ = f.svc.DeleteContact(ctx, c.ID)
		}()
	}
	wg.Wait()

	page, err := f.svc.ListLeads(ctx, leads.Filter{}, pagination.Params{Limit: "50"})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
}

func TestSeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Seed(ctx))

	all, err := f.contacts.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := f.svc.ListLeads(ctx, leads.Filter{}, pagination.Params{Limit: "50"})
	require.NoError(t, err)
	assert.Len(t, page.Data, 6)

	qualified, err := f.svc.ListLeads(ctx, leads.Filter{Status: leads.StatusQualified}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, qualified.Data, 1)
	assert.Equal(t, "João Santos", qualified.Data[0].Contact.Name)

	require.NoError(t, f.svc.Seed(ctx))
	all, err = f.contacts.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
