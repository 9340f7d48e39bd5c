package notify

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/bps-logistics/backoffice/internal/booking"
)

// taskClient is the slice of asynq.Client the enqueuer needs.
type taskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer queues notifications in response to booking events. Enqueue
// failures are logged and swallowed: a down queue must not block intake.
type Enqueuer struct {
	client taskClient
	logger *slog.Logger
}

// NewEnqueuer creates an enqueuer on top of an asynq client.
func NewEnqueuer(client *asynq.Client, logger *slog.Logger) *Enqueuer {
	return &Enqueuer{client: client, logger: logger}
}

func (e *Enqueuer) enqueue(ctx context.Context, task *asynq.Task, err error) {
	if err != nil {
		e.logger.Warn("build notification", slog.Any("error", err))
		return
	}
	if _, err := e.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault)); err != nil {
		e.logger.Warn("enqueue notification",
			slog.String("type", task.Type()),
			slog.Any("error", err))
	}
}

// BookingCreated queues the receipt email and WhatsApp message.
func (e *Enqueuer) BookingCreated(ctx context.Context, b *booking.Booking) {
	if b.SenderEmail != nil && *b.SenderEmail != "" {
		task, err := NewEmailTask(BookingReceiptEmail(b))
		e.enqueue(ctx, task, err)
	}
	if b.SenderPhone != "" {
		task, err := NewWhatsAppTask(BookingReceiptWhatsApp(b))
		e.enqueue(ctx, task, err)
	}
}

// BookingDelivered queues the delivery confirmation for the receiver.
func (e *Enqueuer) BookingDelivered(ctx context.Context, b *booking.Booking) {
	if b.ReceiverPhone != "" {
		task, err := NewWhatsAppTask(DeliveryConfirmationWhatsApp(b))
		e.enqueue(ctx, task, err)
	}
}
