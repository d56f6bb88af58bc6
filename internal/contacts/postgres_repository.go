package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool used by the Postgres repositories.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const contactColumns = `id, name, email, phone, created_at`

// PostgresRepository stores contacts in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("contacts: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// List returns contacts in insertion order, filtered by search when set.
func (r *PostgresRepository) List(ctx context.Context, search string) ([]Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts`
	var args []any
	if search != "" {
		query += ` WHERE name ILIKE $1 OR email ILIKE $1`
		args = append(args, LikePattern(search))
	}
	query += ` ORDER BY created_at, seq`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("contacts: list failed: %w", err)
	}
	defer rows.Close()

	out := []Contact{}
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("contacts: scan failed: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("contacts: list failed: %w", err)
	}
	return out, nil
}

// GetByID fetches a single contact.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Contact, error) {
	row := r.db.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)
	return scanContact(row)
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateContactRequest) (*Contact, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO contacts (id, name, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING `+contactColumns,
		uuid.New().String(), req.Name, req.Email, req.Phone,
	)
	contact, err := scanContact(row)
	if err != nil {
		return nil, fmt.Errorf("contacts: insert failed: %w", err)
	}
	return contact, nil
}

// Update applies the non-nil fields of req.
func (r *PostgresRepository) Update(ctx context.Context, id string, req *UpdateContactRequest) (*Contact, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `
		UPDATE contacts
		SET name = COALESCE($2, name),
		    email = COALESCE($3, email),
		    phone = COALESCE($4, phone)
		WHERE id = $1
		RETURNING `+contactColumns,
		id, req.Name, req.Email, req.Phone,
	)
	return scanContact(row)
}

// Delete removes a contact row and reports whether it existed.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("contacts: delete failed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanContact(row pgx.Row) (*Contact, error) {
	var c Contact
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("contacts: select failed: %w", err)
	}
	return &c, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern wraps term for a substring ILIKE match, escaping wildcards.
func LikePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
