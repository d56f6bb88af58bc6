package crm

import (
	"context"
	"fmt"

	"github.com/wolfman30/crm-api/internal/contacts"
	"github.com/wolfman30/crm-api/internal/leads"
)

type seedLead struct {
	name    string
	company string
	status  leads.Status
}

type seedContact struct {
	contact contacts.CreateContactRequest
	leads   []seedLead
}

var demoData = []seedContact{
	{
		contact: contacts.CreateContactRequest{Name: "Maria Silva", Email: "maria@clinicabeleza.com", Phone: "(47) 99901-1234"},
		leads: []seedLead{
			{"Implantação CRM", "Clínica Beleza Pura", leads.StatusNew},
			{"Automação WhatsApp", "Clínica Beleza Pura", leads.StatusContacted},
		},
	},
	{
		contact: contacts.CreateContactRequest{Name: "João Santos", Email: "joao@esteticapremium.com", Phone: "(11) 98765-4321"},
		leads: []seedLead{
			{"Sistema de Agendamento", "Estética Premium", leads.StatusQualified},
			{"Gestão de Estoque", "Estética Premium", leads.StatusConverted},
		},
	},
	{
		contact: contacts.CreateContactRequest{Name: "Ana Oliveira", Email: "ana@espacobemestar.com", Phone: "(21) 97654-3210"},
		leads: []seedLead{
			{"CRM Completo", "Espaço Bem Estar", leads.StatusNew},
			{"Integração Pagamentos", "Espaço Bem Estar", leads.StatusLost},
		},
	},
}

// Seed loads the demo dataset. It does nothing when contacts already exist.
func (s *Service) Seed(ctx context.Context) error {
	existing, err := s.contacts.List(ctx, "")
	if err != nil {
		return fmt.Errorf("crm: seed: %w", err)
	}
	if len(existing) > 0 {
		s.logger.Info("seed skipped, store not empty", "contacts", len(existing))
		return nil
	}

	var leadCount int
	for _, sc := range demoData {
		req := sc.contact
		contact, err := s.CreateContact(ctx, &req)
		if err != nil {
			return fmt.Errorf("crm: seed contact %q: %w", sc.contact.Name, err)
		}
		for _, sl := range sc.leads {
			_, err := s.CreateLead(ctx, &leads.CreateLeadRequest{
				ContactID: contact.ID,
				Name:      sl.name,
				Company:   sl.company,
				Status:    sl.status,
			})
			if err != nil {
				return fmt.Errorf("crm: seed lead %q: %w", sl.name, err)
			}
			leadCount++
		}
	}

	s.logger.Info("seed data loaded", "contacts", len(demoData), "leads", leadCount)
	return nil
}
