package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskDeliveryReminder scans for orders approaching their delivery date.
	TaskDeliveryReminder = "orders:delivery_reminder"
	// TaskLedgerScan re-derives sale payment statuses from their ledgers.
	TaskLedgerScan = "sales:ledger_scan"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
func HandleSendEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: integrate with SMTP in phase 2.
	fmt.Printf("[jobs] send email to %s subject=%s\n", payload.To, payload.Subject)
	return nil
}

// DeliveryReminderPayload configures the reminder window.
type DeliveryReminderPayload struct {
	WindowHours int `json:"window_hours"`
}

// NewDeliveryReminderTask constructs the reminder task.
func NewDeliveryReminderTask(windowHours int) (*asynq.Task, error) {
	data, err := json.Marshal(DeliveryReminderPayload{WindowHours: windowHours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDeliveryReminder, data), nil
}

// LedgerScanPayload configures the integrity scan.
type LedgerScanPayload struct {
	Fix bool `json:"fix"`
}

// NewLedgerScanTask constructs the ledger integrity scan task.
func NewLedgerScanTask(fix bool) (*asynq.Task, error) {
	data, err := json.Marshal(LedgerScanPayload{Fix: fix})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerScan, data), nil
}
