package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campoverde/backoffice/internal/shared"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const clientColumns = `id, name, phone, email, address, company, notes, created_by, created_at, updated_at`

func (r *Repository) Insert(ctx context.Context, c *Client) (int64, error) {
	const q = `INSERT INTO clients (name, phone, email, address, company, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, q,
		c.Name, c.Phone, c.Email, c.Address, c.Company, c.Notes, c.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert client: %w", err)
	}
	return id, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*Client, error) {
	q := fmt.Sprintf(`SELECT %s FROM clients WHERE id = $1`, clientColumns)
	c, err := scanClient(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]Client, error) {
	if limit <= 0 {
		limit = 50
	}
	q := fmt.Sprintf(`SELECT %s FROM clients ORDER BY name LIMIT $1 OFFSET $2`, clientColumns)
	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, c *Client) error {
	const q = `UPDATE clients SET
		name = $2, phone = $3, email = $4, address = $5, company = $6, notes = $7,
		updated_at = now()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, c.ID, c.Name, c.Phone, c.Email, c.Address, c.Company, c.Notes)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanClient(row pgx.Row) (*Client, error) {
	var (
		c                                    Client
		phone, email, address, company, notes pgtype.Text
	)
	err := row.Scan(&c.ID, &c.Name, &phone, &email, &address, &company, &notes,
		&c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Phone = textPtr(phone)
	c.Email = textPtr(email)
	c.Address = textPtr(address)
	c.Company = textPtr(company)
	c.Notes = textPtr(notes)
	return &c, nil
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}
