// Package notify builds and enqueues customer notifications for booking
// receipts and delivery confirmations. Notification failures never fail the
// operation that triggered them.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue notifications are enqueued on.
	QueueDefault = "default"

	// TaskTypeEmail is the task type for outbound email.
	TaskTypeEmail = "notify:email"
	// TaskTypeWhatsApp is the task type for outbound WhatsApp messages.
	TaskTypeWhatsApp = "notify:whatsapp"
)

// EmailPayload describes one outbound email.
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// WhatsAppPayload describes one outbound WhatsApp message.
type WhatsAppPayload struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// NewEmailTask constructs an Asynq task.
func NewEmailTask(payload EmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeEmail, data), nil
}

// NewWhatsAppTask constructs an Asynq task.
func NewWhatsAppTask(payload WhatsAppPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeWhatsApp, data), nil
}

// EmailHandler returns the worker handler for TaskTypeEmail. Actual SMTP
// delivery is out of scope; the handler logs the send.
func EmailHandler(logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload EmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		logger.Info("send email",
			slog.String("to", payload.To),
			slog.String("subject", payload.Subject))
		return nil
	}
}

// WhatsAppHandler returns the worker handler for TaskTypeWhatsApp.
func WhatsAppHandler(logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload WhatsAppPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		logger.Info("send whatsapp",
			slog.String("phone", payload.Phone))
		return nil
	}
}
