package crm

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wolfman30/crm-api/internal/contacts"
	"github.com/wolfman30/crm-api/internal/leads"
)

// Cascader deletes a contact together with every lead it owns. It returns the
// number of leads removed, or contacts.ErrContactNotFound.
type Cascader interface {
	DeleteContact(ctx context.Context, contactID string) (int, error)
}

// RepositoryCascader cascades through the repository interfaces. It is not
// atomic on its own; Service holds its write lock around it.
type RepositoryCascader struct {
	contacts contacts.Repository
	leads    leads.Repository
}

func NewRepositoryCascader(c contacts.Repository, l leads.Repository) *RepositoryCascader {
	return &RepositoryCascader{contacts: c, leads: l}
}

func (r *RepositoryCascader) DeleteContact(ctx context.Context, contactID string) (int, error) {
	if _, err := r.contacts.GetByID(ctx, contactID); err != nil {
		return 0, err
	}
	removed, err := r.leads.DeleteByContact(ctx, contactID)
	if err != nil {
		return 0, fmt.Errorf("crm: cascade leads: %w", err)
	}
	ok, err := r.contacts.Delete(ctx, contactID)
	if err != nil {
		return removed, fmt.Errorf("crm: delete contact: %w", err)
	}
	if !ok {
		return removed, contacts.ErrContactNotFound
	}
	return removed, nil
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresCascader removes the leads and the contact inside one transaction.
type PostgresCascader struct {
	db txBeginner
}

func NewPostgresCascader(db txBeginner) *PostgresCascader {
	if db == nil {
		panic("crm: pgx pool required")
	}
	return &PostgresCascader{db: db}
}

func (p *PostgresCascader) DeleteContact(ctx context.Context, contactID string) (int, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("crm: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	leadsTag, err := tx.Exec(ctx, `DELETE FROM leads WHERE contact_id = $1`, contactID)
	if err != nil {
		return 0, fmt.Errorf("crm: delete leads: %w", err)
	}
	contactTag, err := tx.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, contactID)
	if err != nil {
		return 0, fmt.Errorf("crm: delete contact: %w", err)
	}
	if contactTag.RowsAffected() == 0 {
		return 0, contacts.ErrContactNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("crm: commit cascade: %w", err)
	}
	return int(leadsTag.RowsAffected()), nil
}
