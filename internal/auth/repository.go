package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, display_name, email, password_hash, role, phone, country, city,
	address, company, about, is_verified, status, created_at, updated_at`

func (r *Repository) Insert(ctx context.Context, u *User) (int64, error) {
	const q = `INSERT INTO users
		(display_name, email, password_hash, role, phone, country, city, address, company, about, is_verified, status)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, q,
		u.DisplayName, u.Email, u.PasswordHash, u.Role,
		u.Phone, u.Country, u.City, u.Address, u.Company, u.About,
		u.IsVerified, u.Status,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateEmail
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	q := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.scanOne(r.pool.QueryRow(ctx, q, id))
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	q := fmt.Sprintf(`SELECT %s FROM users WHERE email = lower($1)`, userColumns)
	return r.scanOne(r.pool.QueryRow(ctx, q, email))
}

func (r *Repository) List(ctx context.Context) ([]User, error) {
	q := fmt.Sprintf(`SELECT %s FROM users ORDER BY display_name`, userColumns)
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *Repository) Update(ctx context.Context, u *User) error {
	const q = `UPDATE users SET
		display_name = $2, email = lower($3), role = $4, phone = $5, country = $6,
		city = $7, address = $8, company = $9, about = $10, is_verified = $11,
		status = $12, updated_at = now()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q,
		u.ID, u.DisplayName, u.Email, u.Role, u.Phone, u.Country,
		u.City, u.Address, u.Company, u.About, u.IsVerified, u.Status,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) scanOne(row pgx.Row) (*User, error) {
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		u                                            User
		phone, country, city, address, company, about pgtype.Text
	)
	err := row.Scan(
		&u.ID, &u.DisplayName, &u.Email, &u.PasswordHash, &u.Role,
		&phone, &country, &city, &address, &company, &about,
		&u.IsVerified, &u.Status, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Phone = textPtr(phone)
	u.Country = textPtr(country)
	u.City = textPtr(city)
	u.Address = textPtr(address)
	u.Company = textPtr(company)
	u.About = textPtr(about)
	return &u, nil
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
