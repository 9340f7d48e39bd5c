package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bps-logistics/backoffice/internal/booking"
)

type memoryRepo struct {
	runs   map[int64]*Run
	nextID int64

	// forceExisting makes every identifier probe report a collision.
	forceExisting bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{runs: make(map[int64]*Run)}
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Run, error) {
	run, ok := r.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *run
	return &copied, nil
}

func (r *memoryRepo) ExistsRunNo(ctx context.Context, runNo string) (bool, error) {
	if r.forceExisting {
		return true, nil
	}
	for _, run := range r.runs {
		if run.RunNo == runNo {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) List(ctx context.Context, req ListRequest) ([]Run, int, error) {
	var out []Run
	for _, run := range r.runs {
		if req.Status != nil && run.Status != *req.Status {
			continue
		}
		out = append(out, *run)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Create(ctx context.Context, run Run) (int64, error) {
	r.nextID++
	run.ID = r.nextID
	run.CreatedAt = time.Now()
	run.UpdatedAt = time.Now()
	r.runs[run.ID] = &run
	return run.ID, nil
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, id int64, status Status, at time.Time) error {
	run, ok := r.runs[id]
	if !ok {
		return ErrNotFound
	}
	run.Status = status
	switch status {
	case StatusDispatched:
		run.DispatchedAt = &at
	case StatusCompleted:
		run.CompletedAt = &at
	case StatusCancelled:
		run.CancelledAt = &at
	}
	return nil
}

// memLedger mimics the booking lifecycle guards closely enough for run
// transitions to be exercised.
type memLedger struct {
	bookings map[int64]*booking.Booking
}

func newMemLedger(ids ...int64) *memLedger {
	l := &memLedger{bookings: make(map[int64]*booking.Booking)}
	for _, id := range ids {
		l.bookings[id] = &booking.Booking{ID: id, Status: booking.StatusBooked}
	}
	return l
}

func (l *memLedger) AssignToRun(ctx context.Context, id, runID int64) (*booking.Booking, error) {
	b, ok := l.bookings[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	if !b.Status.CanAssign() {
		return nil, booking.ErrCannotAssign
	}
	b.Status = booking.StatusAssigned
	b.DeliveryRunID = &runID
	return b, nil
}

func (l *memLedger) ReleaseFromRun(ctx context.Context, id int64) (*booking.Booking, error) {
	b, ok := l.bookings[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	if b.Status != booking.StatusAssigned {
		return nil, booking.ErrNotAssigned
	}
	b.Status = booking.StatusBooked
	b.DeliveryRunID = nil
	return b, nil
}

func (l *memLedger) FinalizeDelivery(ctx context.Context, id int64) (*booking.Booking, error) {
	b, ok := l.bookings[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	if b.Status != booking.StatusAssigned {
		return nil, booking.ErrCannotDeliver
	}
	b.Status = booking.StatusDelivered
	return b, nil
}

func (l *memLedger) ListForRun(ctx context.Context, runID int64) ([]booking.Booking, error) {
	var out []booking.Booking
	for _, b := range l.bookings {
		if b.DeliveryRunID != nil && *b.DeliveryRunID == runID {
			out = append(out, *b)
		}
	}
	return out, nil
}

type stubStations struct {
	known map[string]bool
}

func (s stubStations) ExistsCode(ctx context.Context, code string) (bool, error) {
	return s.known[code], nil
}

func newTestService(repo *memoryRepo, ledger *memLedger) *Service {
	return NewService(repo, stubStations{known: map[string]bool{"AGR": true, "MUM": true}}, ledger)
}

func validCreateRequest() CreateRequest {
	return CreateRequest{
		StationCode: "AGR",
		DriverName:  "Mohan Lal",
		DriverPhone: "9876501234",
		VehicleNo:   "UP80-AB-1234",
	}
}

func TestCreateOpensRun(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo(), newMemLedger())

	run, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	require.Equal(t, StatusOpen, run.Status)
	require.Contains(t, run.RunNo, "DR-")
	require.Empty(t, run.Bookings)
}

func TestCreateUnknownStation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo(), newMemLedger())

	req := validCreateRequest()
	req.StationCode = "XYZ"
	_, err := svc.Create(ctx, req)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateIdentifierRetryExhaustion(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	repo.forceExisting = true
	svc := newTestService(repo, newMemLedger())

	_, err := svc.Create(ctx, validCreateRequest())
	require.ErrorIs(t, err, ErrIdentifierExhausted)
}

func TestAssignAndRelease(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger(1, 2, 3)
	svc := newTestService(newMemoryRepo(), ledger)

	run, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	run, err = svc.Assign(ctx, run.ID, AssignRequest{BookingIDs: []int64{1, 2}})
	require.NoError(t, err)
	require.Len(t, run.Bookings, 2)
	require.Equal(t, booking.StatusAssigned, ledger.bookings[1].Status)

	run, err = svc.Release(ctx, run.ID, 2)
	require.NoError(t, err)
	require.Len(t, run.Bookings, 1)
	require.Equal(t, booking.StatusBooked, ledger.bookings[2].Status)
}

func TestAssignDeliveredBookingFails(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger(1)
	ledger.bookings[1].Status = booking.StatusDelivered
	svc := newTestService(newMemoryRepo(), ledger)

	run, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.Assign(ctx, run.ID, AssignRequest{BookingIDs: []int64{1}})
	require.ErrorIs(t, err, booking.ErrCannotAssign)
}

func TestDispatchRequiresBookings(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo(), newMemLedger())

	run, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.Dispatch(ctx, run.ID)
	require.ErrorIs(t, err, ErrEmptyRun)
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger(1, 2)
	svc := newTestService(newMemoryRepo(), ledger)

	run, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	_, err = svc.Assign(ctx, run.ID, AssignRequest{BookingIDs: []int64{1, 2}})
	require.NoError(t, err)

	// Completing before dispatch fails.
	_, err = svc.Complete(ctx, run.ID)
	require.ErrorIs(t, err, ErrCannotComplete)

	dispatched, err := svc.Dispatch(ctx, run.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDispatched, dispatched.Status)
	require.NotNil(t, dispatched.DispatchedAt)

	// A dispatched run no longer accepts booking changes.
	_, err = svc.Assign(ctx, run.ID, AssignRequest{BookingIDs: []int64{1}})
	require.ErrorIs(t, err, ErrCannotModify)

	completed, err := svc.Complete(ctx, run.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, completed.Status)
	require.Equal(t, booking.StatusDelivered, ledger.bookings[1].Status)
	require.Equal(t, booking.StatusDelivered, ledger.bookings[2].Status)

	// Completed runs cannot be cancelled.
	_, err = svc.Cancel(ctx, run.ID)
	require.ErrorIs(t, err, ErrCannotCancel)
}

func TestCancelReleasesBookings(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger(1, 2)
	svc := newTestService(newMemoryRepo(), ledger)

	run, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	_, err = svc.Assign(ctx, run.ID, AssignRequest{BookingIDs: []int64{1, 2}})
	require.NoError(t, err)
	_, err = svc.Dispatch(ctx, run.ID)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, run.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)
	require.Equal(t, booking.StatusBooked, ledger.bookings[1].Status)
	require.Nil(t, ledger.bookings[1].DeliveryRunID)
}
