package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/bps-logistics/backoffice/internal/booking"
)

type captureClient struct {
	tasks []*asynq.Task
	err   error
}

func (c *captureClient) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.tasks = append(c.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testBooking() *booking.Booking {
	email := "ramesh@example.com"
	return &booking.Booking{
		ID:                    1,
		BookingNo:             "BK-A1B2C3",
		ReceiptNo:             "BPS-AGR-007",
		SenderName:            "Ramesh Gupta",
		SenderPhone:           "9876543210",
		SenderEmail:           &email,
		ReceiverPhone:         "9123456780",
		GrandTotal:            354,
		PaidAmount:            118,
		DeliveryPendingAmount: 236,
	}
}

func TestBookingCreatedEnqueuesEmailAndWhatsApp(t *testing.T) {
	client := &captureClient{}
	e := &Enqueuer{client: client, logger: discardLogger()}

	e.BookingCreated(context.Background(), testBooking())

	require.Len(t, client.tasks, 2)
	require.Equal(t, TaskTypeEmail, client.tasks[0].Type())
	require.Equal(t, TaskTypeWhatsApp, client.tasks[1].Type())
	require.Contains(t, string(client.tasks[0].Payload()), "BPS-AGR-007")
	require.Contains(t, string(client.tasks[1].Payload()), "BK-A1B2C3")
}

func TestBookingCreatedSkipsEmailWithoutAddress(t *testing.T) {
	client := &captureClient{}
	e := &Enqueuer{client: client, logger: discardLogger()}

	b := testBooking()
	b.SenderEmail = nil
	e.BookingCreated(context.Background(), b)

	require.Len(t, client.tasks, 1)
	require.Equal(t, TaskTypeWhatsApp, client.tasks[0].Type())
}

func TestEnqueueFailureIsSwallowed(t *testing.T) {
	client := &captureClient{err: errors.New("queue down")}
	e := &Enqueuer{client: client, logger: discardLogger()}

	// Must not panic or surface the error.
	e.BookingCreated(context.Background(), testBooking())
	e.BookingDelivered(context.Background(), testBooking())
}

func TestBookingDeliveredTargetsReceiver(t *testing.T) {
	client := &captureClient{}
	e := &Enqueuer{client: client, logger: discardLogger()}

	e.BookingDelivered(context.Background(), testBooking())

	require.Len(t, client.tasks, 1)
	payload := string(client.tasks[0].Payload())
	require.Contains(t, payload, "9123456780")
	require.Contains(t, payload, "delivered")
}

func TestFormatAmountCarriesValue(t *testing.T) {
	out := FormatAmount(1354.5)
	require.Contains(t, out, "354.50")
}
