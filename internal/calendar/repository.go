package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

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

const eventColumns = `id, title, description, start_at, end_at, all_day, text_color, created_by, created_at, updated_at`

func (r *Repository) Insert(ctx context.Context, e *Event) (int64, error) {
	const q = `INSERT INTO calendar_events
		(title, description, start_at, end_at, all_day, text_color, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	var id int64
	err := r.pool.QueryRow(ctx, q,
		e.Title, e.Description, e.Start, e.End, e.AllDay, e.TextColor, e.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	if err := r.replaceAssignees(ctx, id, e.UserIDs); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*Event, error) {
	q := fmt.Sprintf(`SELECT %s FROM calendar_events WHERE id = $1`, eventColumns)
	e, err := scanEvent(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if e.UserIDs, err = r.loadAssignees(ctx, id); err != nil {
		return nil, err
	}
	return e, nil
}

// ListAll returns every event overlapping the window. Admin view.
func (r *Repository) ListAll(ctx context.Context, from, to *time.Time) ([]Event, error) {
	q := fmt.Sprintf(`SELECT %s FROM calendar_events
		WHERE ($1::timestamptz IS NULL OR end_at >= $1)
		  AND ($2::timestamptz IS NULL OR start_at <= $2)
		ORDER BY start_at`, eventColumns)
	return r.queryEvents(ctx, q, from, to)
}

// ListForUser returns events the user created or is assigned to.
func (r *Repository) ListForUser(ctx context.Context, userID int64, from, to *time.Time) ([]Event, error) {
	q := fmt.Sprintf(`SELECT %s FROM calendar_events e
		WHERE (e.created_by = $1 OR EXISTS (
			SELECT 1 FROM calendar_event_users u WHERE u.event_id = e.id AND u.user_id = $1))
		  AND ($2::timestamptz IS NULL OR e.end_at >= $2)
		  AND ($3::timestamptz IS NULL OR e.start_at <= $3)
		ORDER BY e.start_at`, eventColumns)
	return r.queryEvents(ctx, q, userID, from, to)
}

func (r *Repository) Update(ctx context.Context, e *Event) error {
	const q = `UPDATE calendar_events SET
		title = $2, description = $3, start_at = $4, end_at = $5, all_day = $6,
		text_color = $7, updated_at = now()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q,
		e.ID, e.Title, e.Description, e.Start, e.End, e.AllDay, e.TextColor)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return r.replaceAssignees(ctx, e.ID, e.UserIDs)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM calendar_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *Repository) queryEvents(ctx context.Context, q string, args ...any) ([]Event, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].UserIDs, err = r.loadAssignees(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Repository) loadAssignees(ctx context.Context, eventID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM calendar_event_users WHERE event_id = $1 ORDER BY user_id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("load assignees: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) replaceAssignees(ctx context.Context, eventID int64, userIDs []int64) error {
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM calendar_event_users WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("clear assignees: %w", err)
	}
	for _, userID := range userIDs {
		if _, err := r.pool.Exec(ctx,
			`INSERT INTO calendar_event_users (event_id, user_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`, eventID, userID); err != nil {
			return fmt.Errorf("assign user: %w", err)
		}
	}
	return nil
}

func scanEvent(row pgx.Row) (*Event, error) {
	var (
		e                      Event
		description, textColor pgtype.Text
	)
	err := row.Scan(&e.ID, &e.Title, &description, &e.Start, &e.End, &e.AllDay,
		&textColor, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		s := description.String
		e.Description = &s
	}
	if textColor.Valid {
		s := textColor.String
		e.TextColor = &s
	}
	return &e, nil
}
