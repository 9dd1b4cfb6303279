package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DeliveryReminderJob finds pending orders whose delivery date falls inside
// the reminder window and notifies the user who created them.
type DeliveryReminderJob struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
	Mailer *Client
	clock  func() time.Time
}

// NewDeliveryReminderJob initialises the reminder handler.
func NewDeliveryReminderJob(pool *pgxpool.Pool, logger *slog.Logger, mailer *Client) *DeliveryReminderJob {
	return &DeliveryReminderJob{
		Pool:   pool,
		Logger: logger,
		Mailer: mailer,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

type upcomingDelivery struct {
	OrderID      int64
	ClientName   string
	DeliveryDate time.Time
	Total        float64
	Currency     string
	OwnerEmail   string
}

// Handle executes the reminder scan.
func (j *DeliveryReminderJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("delivery reminder: handler not configured")
	}
	var payload DeliveryReminderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.WindowHours <= 0 {
		payload.WindowHours = 48
	}

	now := j.clock()
	until := now.Add(time.Duration(payload.WindowHours) * time.Hour)

	deliveries, err := j.upcoming(ctx, now, until)
	if err != nil {
		j.Logger.Error("delivery reminder scan failed", slog.Any("error", err))
		return err
	}

	printer := message.NewPrinter(language.English)
	for _, d := range deliveries {
		amount := printer.Sprintf("%.2f", d.Total)
		subject := fmt.Sprintf("Delivery due: order #%d for %s", d.OrderID, d.ClientName)
		body := fmt.Sprintf("Order #%d (%s %s) is due for delivery on %s.",
			d.OrderID, amount, d.Currency, d.DeliveryDate.Format("2006-01-02"))

		if j.Mailer != nil && d.OwnerEmail != "" {
			if _, err := j.Mailer.EnqueueSendEmail(ctx, SendEmailPayload{
				To:      d.OwnerEmail,
				Subject: subject,
				Body:    body,
			}); err != nil {
				j.Logger.Warn("enqueue reminder email",
					slog.Int64("order_id", d.OrderID), slog.Any("error", err))
			}
		}
		j.Logger.Info("delivery reminder",
			slog.Int64("order_id", d.OrderID),
			slog.String("client", d.ClientName),
			slog.Time("delivery_date", d.DeliveryDate))
	}

	j.Logger.Info("delivery reminder scan complete",
		slog.Int("orders", len(deliveries)),
		slog.Int("window_hours", payload.WindowHours))
	return nil
}

func (j *DeliveryReminderJob) upcoming(ctx context.Context, from, to time.Time) ([]upcomingDelivery, error) {
	const q = `
		SELECT o.id, c.name, o.delivery_date, o.currency,
			COALESCE(SUM(i.quantity * i.unit_price), 0) AS total,
			COALESCE(u.email, '') AS owner_email
		FROM orders o
		JOIN clients c ON c.id = o.client_id
		LEFT JOIN order_items i ON i.order_id = o.id
		LEFT JOIN users u ON u.id = o.created_by
		WHERE o.status = 'PENDING'
		  AND o.delivery_date BETWEEN $1 AND $2
		GROUP BY o.id, c.name, o.delivery_date, o.currency, u.email
		ORDER BY o.delivery_date`
	rows, err := j.Pool.Query(ctx, q, from, to)
	if err != nil {
		return nil, fmt.Errorf("query upcoming deliveries: %w", err)
	}
	defer rows.Close()

	var out []upcomingDelivery
	for rows.Next() {
		var d upcomingDelivery
		if err := rows.Scan(&d.OrderID, &d.ClientName, &d.DeliveryDate,
			&d.Currency, &d.Total, &d.OwnerEmail); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
