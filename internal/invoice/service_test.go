package invoice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bps-logistics/backoffice/internal/booking"
	"github.com/bps-logistics/backoffice/internal/payments"
	"github.com/bps-logistics/backoffice/internal/sequence"
)

type memoryRepo struct {
	invoices      map[int64]*Invoice
	invPayments   map[int64][]Payment
	nextID        int64
	nextPaymentID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		invoices:    make(map[int64]*Invoice),
		invPayments: make(map[int64][]Payment),
	}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *inv
	copied.Payments = append([]Payment(nil), r.invPayments[id]...)
	return &copied, nil
}

func (r *memoryRepo) ExistsForBooking(ctx context.Context, bookingID int64) (bool, error) {
	for _, inv := range r.invoices {
		if inv.BookingID == bookingID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) List(ctx context.Context, req ListRequest) ([]Invoice, int, error) {
	var out []Invoice
	for _, inv := range r.invoices {
		out = append(out, *inv)
	}
	return out, len(out), nil
}

func (r *memoryRepo) ListOutstanding(ctx context.Context, stationCode *string) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range r.invoices {
		if inv.Status == payments.StatusPaid {
			continue
		}
		if stationCode != nil && inv.StationCode != *stationCode {
			continue
		}
		out = append(out, *inv)
	}
	return out, nil
}

func (r *memoryRepo) Create(ctx context.Context, inv Invoice) (int64, error) {
	r.nextID++
	inv.ID = r.nextID
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = time.Now()
	r.invoices[inv.ID] = &inv
	return inv.ID, nil
}

func (r *memoryRepo) InsertPayment(ctx context.Context, p Payment) (int64, error) {
	r.nextPaymentID++
	p.ID = r.nextPaymentID
	r.invPayments[p.InvoiceID] = append(r.invPayments[p.InvoiceID], p)
	return p.ID, nil
}

func (r *memoryRepo) SetPaidState(ctx context.Context, id int64, paid float64, status payments.Status, paidAt *time.Time) error {
	inv, ok := r.invoices[id]
	if !ok {
		return ErrNotFound
	}
	inv.PaidAmount = paid
	inv.Status = status
	inv.PaidAt = paidAt
	return nil
}

type memSeqStore struct {
	counters map[sequence.Key]int64
}

func newMemSeqStore() *memSeqStore {
	return &memSeqStore{counters: make(map[sequence.Key]int64)}
}

func (s *memSeqStore) IncrementAndGet(ctx context.Context, key sequence.Key) (int64, error) {
	s.counters[key]++
	return s.counters[key], nil
}

func (s *memSeqStore) Current(ctx context.Context, key sequence.Key) (int64, error) {
	return s.counters[key], nil
}

type stubBookings struct {
	bookings map[int64]*booking.Booking
}

func (s stubBookings) Get(ctx context.Context, id int64) (*booking.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return b, nil
}

type stubStations struct {
	names map[string]string
}

func (s stubStations) NameForCode(ctx context.Context, code string) (string, error) {
	return s.names[code], nil
}

func deliveredBooking(id int64, pending float64) *booking.Booking {
	return &booking.Booking{
		ID:                    id,
		StationCode:           "AGR",
		ReceiverName:          "Suresh Kumar",
		Status:                booking.StatusDelivered,
		GrandTotal:            354,
		PaidAmount:            354 - pending,
		DeliveryPendingAmount: pending,
	}
}

func newTestService(repo *memoryRepo, bookings stubBookings) *Service {
	stations := stubStations{names: map[string]string{"AGR": "Agra", "MUM": "Mumbai"}}
	return NewService(repo, bookings, stations, sequence.NewGenerator(newMemSeqStore()))
}

func TestCreateInvoiceForDeliveredBooking(t *testing.T) {
	ctx := context.Background()
	bookings := stubBookings{bookings: map[int64]*booking.Booking{1: deliveredBooking(1, 236)}}
	svc := newTestService(newMemoryRepo(), bookings)

	inv, err := svc.Create(ctx, CreateRequest{BookingID: 1})
	require.NoError(t, err)

	require.Equal(t, "BPS/AGR/0001", inv.InvoiceNo)
	require.Equal(t, 236.0, inv.Total)
	require.Equal(t, payments.StatusUnpaid, inv.Status)
	require.Equal(t, "Suresh Kumar", inv.PartyName)
}

func TestCreateRequiresDeliveredStatus(t *testing.T) {
	ctx := context.Background()
	b := deliveredBooking(1, 236)
	b.Status = booking.StatusBooked
	svc := newTestService(newMemoryRepo(), stubBookings{bookings: map[int64]*booking.Booking{1: b}})

	_, err := svc.Create(ctx, CreateRequest{BookingID: 1})
	require.ErrorIs(t, err, ErrBookingNotDelivered)
}

func TestCreateRejectsDuplicateInvoice(t *testing.T) {
	ctx := context.Background()
	bookings := stubBookings{bookings: map[int64]*booking.Booking{1: deliveredBooking(1, 236)}}
	svc := newTestService(newMemoryRepo(), bookings)

	_, err := svc.Create(ctx, CreateRequest{BookingID: 1})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateRequest{BookingID: 1})
	require.ErrorIs(t, err, ErrAlreadyInvoiced)
}

func TestCreateFullyPaidBookingHasNothingToInvoice(t *testing.T) {
	ctx := context.Background()
	bookings := stubBookings{bookings: map[int64]*booking.Booking{1: deliveredBooking(1, 0)}}
	svc := newTestService(newMemoryRepo(), bookings)

	_, err := svc.Create(ctx, CreateRequest{BookingID: 1})
	require.ErrorIs(t, err, ErrNothingOutstanding)
}

func TestInvoiceNumbersSharePrefixSequence(t *testing.T) {
	ctx := context.Background()
	bookings := stubBookings{bookings: map[int64]*booking.Booking{
		1: deliveredBooking(1, 100),
		2: deliveredBooking(2, 200),
	}}
	svc := newTestService(newMemoryRepo(), bookings)

	first, err := svc.Create(ctx, CreateRequest{BookingID: 1})
	require.NoError(t, err)
	second, err := svc.Create(ctx, CreateRequest{BookingID: 2})
	require.NoError(t, err)

	require.Equal(t, "BPS/AGR/0001", first.InvoiceNo)
	require.Equal(t, "BPS/AGR/0002", second.InvoiceNo)
}

func TestRegisterPaymentAdvancesStatus(t *testing.T) {
	ctx := context.Background()
	bookings := stubBookings{bookings: map[int64]*booking.Booking{1: deliveredBooking(1, 236)}}
	svc := newTestService(newMemoryRepo(), bookings)

	inv, err := svc.Create(ctx, CreateRequest{BookingID: 1})
	require.NoError(t, err)

	partial, err := svc.RegisterPayment(ctx, inv.ID, PaymentRequest{Amount: 100, Method: "CASH"})
	require.NoError(t, err)
	require.Equal(t, payments.StatusPartial, partial.Status)
	require.Equal(t, 100.0, partial.PaidAmount)
	require.Equal(t, 136.0, partial.Outstanding())
	require.Nil(t, partial.PaidAt)

	settled, err := svc.RegisterPayment(ctx, inv.ID, PaymentRequest{Amount: 136, Method: "UPI", Reference: "TXN123"})
	require.NoError(t, err)
	require.Equal(t, payments.StatusPaid, settled.Status)
	require.NotNil(t, settled.PaidAt)
	require.Len(t, settled.Payments, 2)

	// A settled invoice takes no further payments.
	_, err = svc.RegisterPayment(ctx, inv.ID, PaymentRequest{Amount: 10, Method: "CASH"})
	require.ErrorIs(t, err, ErrAlreadySettled)
}

func TestRegisterPaymentOverpayMarksPaid(t *testing.T) {
	ctx := context.Background()
	bookings := stubBookings{bookings: map[int64]*booking.Booking{1: deliveredBooking(1, 236)}}
	svc := newTestService(newMemoryRepo(), bookings)

	inv, err := svc.Create(ctx, CreateRequest{BookingID: 1})
	require.NoError(t, err)

	settled, err := svc.RegisterPayment(ctx, inv.ID, PaymentRequest{Amount: 300, Method: "CASH"})
	require.NoError(t, err)
	require.Equal(t, payments.StatusPaid, settled.Status)
}

func TestOutstandingExcludesPaid(t *testing.T) {
	ctx := context.Background()
	bookings := stubBookings{bookings: map[int64]*booking.Booking{
		1: deliveredBooking(1, 100),
		2: deliveredBooking(2, 200),
	}}
	svc := newTestService(newMemoryRepo(), bookings)

	first, err := svc.Create(ctx, CreateRequest{BookingID: 1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateRequest{BookingID: 2})
	require.NoError(t, err)

	_, err = svc.RegisterPayment(ctx, first.ID, PaymentRequest{Amount: 100, Method: "CASH"})
	require.NoError(t, err)

	open, err := svc.Outstanding(ctx, nil)
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, 200.0, open[0].Total)
}

func TestAgingBuckets(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	bookings := stubBookings{bookings: map[int64]*booking.Booking{
		1: deliveredBooking(1, 100),
		2: deliveredBooking(2, 200),
		3: deliveredBooking(3, 300),
	}}
	svc := newTestService(repo, bookings)

	for id := int64(1); id <= 3; id++ {
		_, err := svc.Create(ctx, CreateRequest{BookingID: id})
		require.NoError(t, err)
	}

	now := time.Now()
	repo.invoices[1].IssuedAt = now.Add(-10 * 24 * time.Hour)
	repo.invoices[2].IssuedAt = now.Add(-45 * 24 * time.Hour)
	repo.invoices[3].IssuedAt = now.Add(-130 * 24 * time.Hour)

	aging, err := svc.AgingReport(ctx, now)
	require.NoError(t, err)
	require.Equal(t, 100.0, aging.Current)
	require.Equal(t, 200.0, aging.Days30)
	require.Equal(t, 0.0, aging.Days60)
	require.Equal(t, 0.0, aging.Days90)
	require.Equal(t, 300.0, aging.Days120Plus)
}
