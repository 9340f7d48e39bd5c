package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/bps-logistics/backoffice/internal/booking"
	"github.com/bps-logistics/backoffice/internal/payments"
	"github.com/bps-logistics/backoffice/internal/sequence"
)

// BookingSource looks up the booking an invoice is raised against.
type BookingSource interface {
	Get(ctx context.Context, id int64) (*booking.Booking, error)
}

// StationDirectory resolves station names for invoice numbering.
type StationDirectory interface {
	NameForCode(ctx context.Context, code string) (string, error)
}

// Service provides business logic for invoices.
type Service struct {
	repo     Repository
	bookings BookingSource
	stations StationDirectory
	numbers  *sequence.Generator
}

// NewService creates a new service.
func NewService(repo Repository, bookings BookingSource, stations StationDirectory, numbers *sequence.Generator) *Service {
	return &Service{
		repo:     repo,
		bookings: bookings,
		stations: stations,
		numbers:  numbers,
	}
}

// Create raises an invoice against a delivered booking. The invoice number
// comes from the per-prefix invoice sequence and is committed even when the
// subsequent insert fails; numbers are unique and monotonic, not contiguous.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Invoice, error) {
	b, err := s.bookings.Get(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if b.Status != booking.StatusDelivered {
		return nil, ErrBookingNotDelivered
	}

	exists, err := s.repo.ExistsForBooking(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("check booking invoice: %w", err)
	}
	if exists {
		return nil, ErrAlreadyInvoiced
	}

	total := req.Total
	if total == 0 {
		total = b.DeliveryPendingAmount
	}
	if total <= 0 {
		return nil, ErrNothingOutstanding
	}

	stationName, err := s.stations.NameForCode(ctx, b.StationCode)
	if err != nil {
		return nil, fmt.Errorf("resolve station: %w", err)
	}

	invoiceNo, err := s.numbers.AllocateInvoice(ctx, stationName)
	if err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, Invoice{
		InvoiceNo:   invoiceNo,
		BookingID:   b.ID,
		StationCode: b.StationCode,
		PartyName:   b.ReceiverName,
		Total:       payments.Round2(total),
		Status:      payments.StatusUnpaid,
		Notes:       req.Notes,
		IssuedAt:    time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// RegisterPayment records a collected amount and advances the invoice to
// PARTIAL or PAID as the cumulative total allows.
func (s *Service) RegisterPayment(ctx context.Context, id int64, req PaymentRequest) (*Invoice, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if inv.Status == payments.StatusPaid {
		return nil, ErrAlreadySettled
	}

	paid := payments.Round2(inv.PaidAmount + req.Amount)
	status := payments.StatusFor(paid, inv.Total)

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if _, err := repo.InsertPayment(ctx, Payment{
			InvoiceID:  id,
			Amount:     req.Amount,
			Method:     req.Method,
			Reference:  req.Reference,
			ReceivedAt: time.Now(),
		}); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		var paidAt *time.Time
		if status == payments.StatusPaid {
			now := time.Now()
			paidAt = &now
		}
		if err := repo.SetPaidState(ctx, id, paid, status, paidAt); err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

// Outstanding lists invoices that still carry a balance.
func (s *Service) Outstanding(ctx context.Context, stationCode *string) ([]Invoice, error) {
	return s.repo.ListOutstanding(ctx, stationCode)
}

// AgingReport buckets outstanding balances by days open.
func (s *Service) AgingReport(ctx context.Context, asOf time.Time) (*Aging, error) {
	open, err := s.repo.ListOutstanding(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list outstanding: %w", err)
	}

	var aging Aging
	for _, inv := range open {
		balance := inv.Outstanding()
		days := int(asOf.Sub(inv.IssuedAt).Hours() / 24)
		switch {
		case days < 30:
			aging.Current += balance
		case days < 60:
			aging.Days30 += balance
		case days < 90:
			aging.Days60 += balance
		case days < 120:
			aging.Days90 += balance
		default:
			aging.Days120Plus += balance
		}
	}
	aging.Current = payments.Round2(aging.Current)
	aging.Days30 = payments.Round2(aging.Days30)
	aging.Days60 = payments.Round2(aging.Days60)
	aging.Days90 = payments.Round2(aging.Days90)
	aging.Days120Plus = payments.Round2(aging.Days120Plus)
	return &aging, nil
}

// Get returns an invoice with its payments.
func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	return s.repo.Get(ctx, id)
}

// List returns invoices matching the filters.
func (s *Service) List(ctx context.Context, req ListRequest) ([]Invoice, int, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	return s.repo.List(ctx, req)
}
