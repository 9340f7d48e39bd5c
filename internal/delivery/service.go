package delivery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bps-logistics/backoffice/internal/booking"
)

// maxIdentifierAttempts bounds the random run-number retry loop.
const maxIdentifierAttempts = 5

// StationDirectory verifies station codes against master data.
type StationDirectory interface {
	ExistsCode(ctx context.Context, code string) (bool, error)
}

// BookingLedger moves bookings on and off delivery runs.
type BookingLedger interface {
	AssignToRun(ctx context.Context, id, runID int64) (*booking.Booking, error)
	ReleaseFromRun(ctx context.Context, id int64) (*booking.Booking, error)
	FinalizeDelivery(ctx context.Context, id int64) (*booking.Booking, error)
	ListForRun(ctx context.Context, runID int64) ([]booking.Booking, error)
}

// Service provides business logic for delivery runs.
type Service struct {
	repo     Repository
	stations StationDirectory
	bookings BookingLedger
}

// NewService creates a new service.
func NewService(repo Repository, stations StationDirectory, bookings BookingLedger) *Service {
	return &Service{
		repo:     repo,
		stations: stations,
		bookings: bookings,
	}
}

func newRunNo() string {
	return "DR-" + strings.ToUpper(uuid.NewString()[:6])
}

func (s *Service) allocateRunNo(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxIdentifierAttempts; attempt++ {
		no := newRunNo()
		exists, err := s.repo.ExistsRunNo(ctx, no)
		if err != nil {
			return "", fmt.Errorf("check run number: %w", err)
		}
		if !exists {
			return no, nil
		}
	}
	return "", ErrIdentifierExhausted
}

// Create opens a new delivery run for a station.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Run, error) {
	exists, err := s.stations.ExistsCode(ctx, req.StationCode)
	if err != nil {
		return nil, fmt.Errorf("verify station: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: station %s", ErrNotFound, req.StationCode)
	}

	runNo, err := s.allocateRunNo(ctx)
	if err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, Run{
		RunNo:       runNo,
		StationCode: req.StationCode,
		Status:      StatusOpen,
		DriverName:  req.DriverName,
		DriverPhone: req.DriverPhone,
		VehicleNo:   req.VehicleNo,
		Notes:       req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return s.Get(ctx, id)
}

// Assign places bookings on an open run. Bookings are assigned one at a
// time; the first failure stops the batch and reports which booking broke.
func (s *Service) Assign(ctx context.Context, id int64, req AssignRequest) (*Run, error) {
	if len(req.BookingIDs) == 0 {
		return nil, ErrNoBookings
	}

	run, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if !run.Status.CanModify() {
		return nil, ErrCannotModify
	}

	for _, bookingID := range req.BookingIDs {
		if _, err := s.bookings.AssignToRun(ctx, bookingID, id); err != nil {
			return nil, fmt.Errorf("assign booking %d: %w", bookingID, err)
		}
	}
	return s.Get(ctx, id)
}

// Release takes one booking off an open run.
func (s *Service) Release(ctx context.Context, id, bookingID int64) (*Run, error) {
	run, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if !run.Status.CanModify() {
		return nil, ErrCannotModify
	}
	if _, err := s.bookings.ReleaseFromRun(ctx, bookingID); err != nil {
		return nil, fmt.Errorf("release booking %d: %w", bookingID, err)
	}
	return s.Get(ctx, id)
}

// Dispatch sends an open run out for delivery. Empty runs cannot leave.
func (s *Service) Dispatch(ctx context.Context, id int64) (*Run, error) {
	run, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if run.Status != StatusOpen {
		return nil, ErrCannotDispatch
	}

	assigned, err := s.bookings.ListForRun(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list run bookings: %w", err)
	}
	if len(assigned) == 0 {
		return nil, ErrEmptyRun
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusDispatched, time.Now()); err != nil {
		return nil, fmt.Errorf("dispatch run: %w", err)
	}
	return s.Get(ctx, id)
}

// Complete closes a dispatched run and finalizes every booking still on it.
func (s *Service) Complete(ctx context.Context, id int64) (*Run, error) {
	run, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if run.Status != StatusDispatched {
		return nil, ErrCannotComplete
	}

	assigned, err := s.bookings.ListForRun(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list run bookings: %w", err)
	}
	for _, b := range assigned {
		if b.Status != booking.StatusAssigned {
			continue
		}
		if _, err := s.bookings.FinalizeDelivery(ctx, b.ID); err != nil {
			return nil, fmt.Errorf("finalize booking %d: %w", b.ID, err)
		}
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusCompleted, time.Now()); err != nil {
		return nil, fmt.Errorf("complete run: %w", err)
	}
	return s.Get(ctx, id)
}

// Cancel aborts a run and releases its undelivered bookings back to the
// bookable pool.
func (s *Service) Cancel(ctx context.Context, id int64) (*Run, error) {
	run, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if !run.Status.CanCancel() {
		return nil, ErrCannotCancel
	}

	assigned, err := s.bookings.ListForRun(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list run bookings: %w", err)
	}
	for _, b := range assigned {
		if b.Status != booking.StatusAssigned {
			continue
		}
		if _, err := s.bookings.ReleaseFromRun(ctx, b.ID); err != nil {
			return nil, fmt.Errorf("release booking %d: %w", b.ID, err)
		}
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled, time.Now()); err != nil {
		return nil, fmt.Errorf("cancel run: %w", err)
	}
	return s.Get(ctx, id)
}

// Get returns a run with its bookings attached.
func (s *Service) Get(ctx context.Context, id int64) (*Run, error) {
	run, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ListForRun(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list run bookings: %w", err)
	}
	run.Bookings = bookings
	return run, nil
}

// List returns runs matching the filters.
func (s *Service) List(ctx context.Context, req ListRequest) ([]Run, int, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	return s.repo.List(ctx, req)
}
