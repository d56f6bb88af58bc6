package leads

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wolfman30/crm-api/internal/contacts"
)

const (
	leadColumns = `id, contact_id, name, company, status, created_at`

	foreignKeyViolation = "23503"
)

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	db contacts.DB
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(db contacts.DB) *PostgresRepository {
	if db == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// List returns leads in insertion order, narrowed by filter.
func (r *PostgresRepository) List(ctx context.Context, filter Filter) ([]Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE TRUE`
	var args []any
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, contacts.LikePattern(filter.Search))
		query += fmt.Sprintf(` AND (name ILIKE $%d OR company ILIKE $%d)`, len(args), len(args))
	}
	query += ` ORDER BY created_at, seq`
	return r.queryLeads(ctx, query, args...)
}

// GetByID fetches a single lead.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	row := r.db.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

// ListByContact returns every lead owned by contactID.
func (r *PostgresRepository) ListByContact(ctx context.Context, contactID string) ([]Lead, error) {
	return r.queryLeads(ctx, `SELECT `+leadColumns+` FROM leads WHERE contact_id = $1 ORDER BY created_at, seq`, contactID)
}

// Create inserts a new row. The foreign key rejects unknown contacts.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO leads (id, contact_id, name, company, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+leadColumns,
		uuid.New().String(), req.ContactID, req.Name, req.Company, string(req.Status),
	)
	lead, err := scanLead(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, ErrUnknownContact
		}
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}
	return lead, nil
}

// Update applies the non-nil fields of req.
func (r *PostgresRepository) Update(ctx context.Context, id string, req *UpdateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var status *string
	if req.Status != nil {
		s := string(*req.Status)
		status = &s
	}
	row := r.db.QueryRow(ctx, `
		UPDATE leads
		SET name = COALESCE($2, name),
		    company = COALESCE($3, company),
		    status = COALESCE($4, status)
		WHERE id = $1
		RETURNING `+leadColumns,
		id, req.Name, req.Company, status,
	)
	return scanLead(row)
}

// Delete removes a lead row and reports whether it existed.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("leads: delete failed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteByContact removes every lead owned by contactID.
func (r *PostgresRepository) DeleteByContact(ctx context.Context, contactID string) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM leads WHERE contact_id = $1`, contactID)
	if err != nil {
		return 0, fmt.Errorf("leads: delete by contact failed: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *PostgresRepository) queryLeads(ctx context.Context, query string, args ...any) ([]Lead, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	out := []Lead{}
	for rows.Next() {
		var l Lead
		var status string
		if err := rows.Scan(&l.ID, &l.ContactID, &l.Name, &l.Company, &status, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		l.Status = Status(status)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	return out, nil
}

func scanLead(row pgx.Row) (*Lead, error) {
	var l Lead
	var status string
	if err := row.Scan(&l.ID, &l.ContactID, &l.Name, &l.Company, &status, &l.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	l.Status = Status(status)
	return &l, nil
}
