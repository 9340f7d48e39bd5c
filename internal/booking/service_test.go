package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bps-logistics/backoffice/internal/payments"
	"github.com/bps-logistics/backoffice/internal/sequence"
)

type memoryRepo struct {
	bookings     map[int64]*Booking
	parcels      map[int64][]Parcel
	nextID       int64
	nextParcelID int64

	// forceExisting makes every identifier probe report a collision.
	forceExisting bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		bookings: make(map[int64]*Booking),
		parcels:  make(map[int64][]Parcel),
	}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *b
	copied.Parcels = append([]Parcel(nil), r.parcels[id]...)
	return &copied, nil
}

func (r *memoryRepo) GetByBookingNo(ctx context.Context, bookingNo string) (*Booking, error) {
	for id, b := range r.bookings {
		if b.BookingNo == bookingNo {
			return r.Get(ctx, id)
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepo) ExistsBookingNo(ctx context.Context, bookingNo string) (bool, error) {
	if r.forceExisting {
		return true, nil
	}
	for _, b := range r.bookings {
		if b.BookingNo == bookingNo {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) List(ctx context.Context, req ListRequest) ([]Booking, int, error) {
	var out []Booking
	for _, b := range r.bookings {
		if b.IsDeleted {
			continue
		}
		if req.Status != nil && b.Status != *req.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (r *memoryRepo) ListByRun(ctx context.Context, runID int64) ([]Booking, error) {
	var out []Booking
	for _, b := range r.bookings {
		if b.DeliveryRunID != nil && *b.DeliveryRunID == runID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memoryRepo) Create(ctx context.Context, b Booking) (int64, error) {
	r.nextID++
	b.ID = r.nextID
	b.CreatedAt = time.Now()
	b.UpdatedAt = time.Now()
	r.bookings[b.ID] = &b
	return b.ID, nil
}

func (r *memoryRepo) InsertParcel(ctx context.Context, p Parcel) (int64, error) {
	r.nextParcelID++
	p.ID = r.nextParcelID
	r.parcels[p.BookingID] = append(r.parcels[p.BookingID], p)
	return p.ID, nil
}

func (r *memoryRepo) DeleteParcels(ctx context.Context, bookingID int64) error {
	delete(r.parcels, bookingID)
	return nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	b, ok := r.bookings[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["grand_total"]; ok {
		b.GrandTotal = v.(float64)
	}
	if v, ok := updates["bill_total"]; ok {
		b.BillTotal = v.(float64)
	}
	if v, ok := updates["paid_amount"]; ok {
		b.PaidAmount = v.(float64)
	}
	if v, ok := updates["delivery_pending_amount"]; ok {
		b.DeliveryPendingAmount = v.(float64)
	}
	if v, ok := updates["payment_status"]; ok {
		b.PaymentStatus = payments.Status(v.(string))
	}
	if v, ok := updates["freight"]; ok {
		b.Freight = v.(float64)
	}
	return nil
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, id int64, status Status, at time.Time, reason *string) error {
	b, ok := r.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	switch status {
	case StatusApproved:
		b.ApprovedAt = &at
	case StatusRejected:
		b.RejectedAt = &at
	case StatusCancelled:
		b.CancelledAt = &at
	case StatusDelivered:
		b.DeliveredAt = &at
	}
	if reason != nil {
		b.CancelReason = reason
	}
	return nil
}

func (r *memoryRepo) SetDeliveryRun(ctx context.Context, id int64, runID *int64, status Status) error {
	b, ok := r.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.DeliveryRunID = runID
	b.Status = status
	return nil
}

func (r *memoryRepo) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	b, ok := r.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.IsDeleted = true
	b.DeletedAt = &at
	return nil
}

func (r *memoryRepo) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var purged int64
	for id, b := range r.bookings {
		if b.IsDeleted && b.DeletedAt != nil && b.DeletedAt.Before(cutoff) {
			delete(r.bookings, id)
			delete(r.parcels, id)
			purged++
		}
	}
	return purged, nil
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

type stubStations struct {
	known map[string]bool
}

func (s stubStations) ExistsCode(ctx context.Context, code string) (bool, error) {
	return s.known[code], nil
}

type captureNotifier struct {
	created   []*Booking
	delivered []*Booking
}

func (n *captureNotifier) BookingCreated(ctx context.Context, b *Booking) {
	n.created = append(n.created, b)
}

func (n *captureNotifier) BookingDelivered(ctx context.Context, b *Booking) {
	n.delivered = append(n.delivered, b)
}

func newTestService(repo *memoryRepo, store *memSeqStore) *Service {
	return NewService(repo, stubStations{known: map[string]bool{"AGR": true, "MUM": true, "DEL": true}}, sequence.NewGenerator(store))
}

func validCreateRequest() CreateRequest {
	return CreateRequest{
		StationCode:   "AGR",
		ToStationCode: "MUM",
		SenderName:    "Ramesh Gupta",
		SenderPhone:   "9876543210",
		ReceiverName:  "Suresh Kumar",
		ReceiverPhone: "9123456780",
		Parcels: []CreateParcelReq{
			{Description: "Books", Quantity: 1, Weight: 4, Amount: 100, PaymentTag: payments.TagPaid},
			{Description: "Clothes", Quantity: 2, Weight: 8, Amount: 200, PaymentTag: payments.TagToPay},
		},
	}
}

func TestCreateComputesTotalsAndSplit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo(), newMemSeqStore())

	b, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	// 300 bill, mixed tags -> CGST 9 + SGST 9 -> 354 grand.
	require.Equal(t, 300.0, b.BillTotal)
	require.Equal(t, 27.0, b.CGSTAmount)
	require.Equal(t, 27.0, b.SGSTAmount)
	require.Equal(t, 0.0, b.IGSTAmount)
	require.Equal(t, 354.0, b.GrandTotal)
	require.Equal(t, 0.0, b.RoundOff)

	// paid:to-pay = 100:200 -> ratio 1/3 of 354.
	require.Equal(t, 118.0, b.PaidAmount)
	require.Equal(t, 236.0, b.DeliveryPendingAmount)
	require.Equal(t, payments.StatusPartial, b.PaymentStatus)
	require.Equal(t, b.GrandTotal, b.PaidAmount+b.DeliveryPendingAmount)
}

func TestCreateStampsReceiptOnEveryParcel(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo(), newMemSeqStore())

	b, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	require.Equal(t, "BPS-AGR-001", b.ReceiptNo)
	require.Len(t, b.Parcels, 2)
	for _, p := range b.Parcels {
		require.Equal(t, b.ReceiptNo, p.ReceiptNo)
	}
}

func TestCreateSequentialReceiptNumbers(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo(), newMemSeqStore())

	first, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	second, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	require.Equal(t, "BPS-AGR-001", first.ReceiptNo)
	require.Equal(t, "BPS-AGR-002", second.ReceiptNo)
	require.NotEqual(t, first.BookingNo, second.BookingNo)
}

func TestCreateValidationDoesNotConsumeCounter(t *testing.T) {
	ctx := context.Background()
	store := newMemSeqStore()
	svc := newTestService(newMemoryRepo(), store)

	req := validCreateRequest()
	req.Parcels = nil
	_, err := svc.Create(ctx, req)
	require.ErrorIs(t, err, ErrEmptyParcels)

	last, err := store.Current(ctx, sequence.Key{StationCode: "AGR", DocType: sequence.DocTypeBooking})
	require.NoError(t, err)
	require.Zero(t, last)
}

func TestCreateUnknownStation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo(), newMemSeqStore())

	req := validCreateRequest()
	req.ToStationCode = "XYZ"
	_, err := svc.Create(ctx, req)
	require.ErrorIs(t, err, ErrStationNotFound)
}

func TestCreateIdentifierRetryExhaustion(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	repo.forceExisting = true
	svc := newTestService(repo, newMemSeqStore())

	_, err := svc.Create(ctx, validCreateRequest())
	require.ErrorIs(t, err, ErrIdentifierExhausted)
}

func TestCreateCallsNotifier(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo(), newMemSeqStore())
	notifier := &captureNotifier{}
	svc.SetNotifier(notifier)

	b, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	require.Len(t, notifier.created, 1)
	require.Equal(t, b.ID, notifier.created[0].ID)
}

func TestUpdateKeepsExplicitBillTotal(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo(), newMemSeqStore())

	req := validCreateRequest()
	req.BillTotal = 500
	b, err := svc.Create(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 500.0, b.BillTotal)

	freight := 50.0
	updated, err := svc.Update(ctx, b.ID, UpdateRequest{Freight: &freight})
	require.NoError(t, err)
	require.Equal(t, 500.0, updated.BillTotal)

	// Replacing the parcels resets the bill total to the parcel sum.
	parcels := []CreateParcelReq{
		{Description: "Books", Quantity: 1, Weight: 4, Amount: 100, PaymentTag: payments.TagPaid},
	}
	updated, err = svc.Update(ctx, b.ID, UpdateRequest{Parcels: &parcels})
	require.NoError(t, err)
	require.Equal(t, 100.0, updated.BillTotal)
}

func TestApproveOnlyPublicBookings(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo(), newMemSeqStore())

	counter, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	_, err = svc.Approve(ctx, counter.ID)
	require.ErrorIs(t, err, ErrCannotApprove)

	req := validCreateRequest()
	req.Source = SourcePublic
	public, err := svc.Create(ctx, req)
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, public.ID)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)
}

func TestRejectFailsAfterApprove(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo(), newMemSeqStore())

	req := validCreateRequest()
	req.Source = SourcePublic
	b, err := svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, b.ID)
	require.NoError(t, err)

	_, err = svc.Reject(ctx, b.ID, "duplicate request")
	require.ErrorIs(t, err, ErrAlreadyApproved)
}

func TestDeliveryLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo(), newMemSeqStore())
	notifier := &captureNotifier{}
	svc.SetNotifier(notifier)

	b, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	// Cannot finalize before assignment.
	_, err = svc.FinalizeDelivery(ctx, b.ID)
	require.ErrorIs(t, err, ErrCannotDeliver)

	assigned, err := svc.AssignToRun(ctx, b.ID, 77)
	require.NoError(t, err)
	require.Equal(t, StatusAssigned, assigned.Status)
	require.True(t, assigned.ActiveDelivery())

	delivered, err := svc.FinalizeDelivery(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDelivered, delivered.Status)
	require.False(t, delivered.ActiveDelivery())
	require.Len(t, notifier.delivered, 1)

	// Finalizing twice fails.
	_, err = svc.FinalizeDelivery(ctx, b.ID)
	require.ErrorIs(t, err, ErrCannotDeliver)
}

func TestCancelRequiresReason(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo(), newMemSeqStore())

	b, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, b.ID, CancelRequest{Reason: "oops"})
	require.ErrorIs(t, err, ErrReasonTooShort)

	cancelled, err := svc.Cancel(ctx, b.ID, CancelRequest{Reason: "customer withdrew the shipment"})
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelReason)
}

func TestSoftDeleteAndPurge(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := newTestService(repo, newMemSeqStore())

	b, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(ctx, b.ID))
	require.ErrorIs(t, svc.SoftDelete(ctx, b.ID), ErrAlreadyDeleted)

	_, err = svc.Get(ctx, b.ID)
	require.ErrorIs(t, err, ErrNotFound)

	// Backdate the deletion past the retention window, then purge.
	old := time.Now().Add(-48 * time.Hour)
	repo.bookings[b.ID].DeletedAt = &old

	purged, err := svc.PurgeExpired(ctx, 24*time.Hour)
	require.NoError(t, err)
	require.EqualValues(t, 1, purged)
}

func TestPreviewReceiptDoesNotConsume(t *testing.T) {
	ctx := context.Background()
	store := newMemSeqStore()
	svc := newTestService(newMemoryRepo(), store)

	preview, err := svc.PreviewReceipt(ctx, "MUM")
	require.NoError(t, err)
	require.Equal(t, "BPS-MUM-001", preview)

	again, err := svc.PreviewReceipt(ctx, "MUM")
	require.NoError(t, err)
	require.Equal(t, preview, again)
}
