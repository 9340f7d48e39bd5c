package booking

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bps-logistics/backoffice/internal/payments"
	"github.com/bps-logistics/backoffice/internal/sequence"
)

// maxIdentifierAttempts bounds the random booking-number retry loop.
const maxIdentifierAttempts = 5

// StationDirectory verifies station codes against master data.
type StationDirectory interface {
	ExistsCode(ctx context.Context, code string) (bool, error)
}

// Notifier sends customer-facing notifications. Implementations must be
// fire-and-forget: a notification failure is logged by the implementation
// and never propagates back into the save path.
type Notifier interface {
	BookingCreated(ctx context.Context, b *Booking)
	BookingDelivered(ctx context.Context, b *Booking)
}

type noopNotifier struct{}

func (noopNotifier) BookingCreated(context.Context, *Booking)   {}
func (noopNotifier) BookingDelivered(context.Context, *Booking) {}

// Service provides business logic for bookings.
type Service struct {
	repo     Repository
	stations StationDirectory
	numbers  *sequence.Generator
	notifier Notifier
}

// NewService creates a new service.
func NewService(repo Repository, stations StationDirectory, numbers *sequence.Generator) *Service {
	return &Service{
		repo:     repo,
		stations: stations,
		numbers:  numbers,
		notifier: noopNotifier{},
	}
}

// SetNotifier installs the notification sender.
func (s *Service) SetNotifier(n Notifier) {
	if n != nil {
		s.notifier = n
	}
}

// newBookingNo produces a random human-readable identifier.
func newBookingNo() string {
	return "BK-" + strings.ToUpper(uuid.NewString()[:6])
}

// allocateBookingNo retries random identifiers until an unused one is
// confirmed against the store, bounded by maxIdentifierAttempts.
func (s *Service) allocateBookingNo(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxIdentifierAttempts; attempt++ {
		no := newBookingNo()
		exists, err := s.repo.ExistsBookingNo(ctx, no)
		if err != nil {
			return "", fmt.Errorf("check booking number: %w", err)
		}
		if !exists {
			return no, nil
		}
	}
	return "", ErrIdentifierExhausted
}

type totals struct {
	billTotal  float64
	rates      payments.TaxRates
	cgst       float64
	sgst       float64
	igst       float64
	grandTotal float64
	roundOff   float64
	split      payments.Split
}

// computeTotals derives all money fields from a parcel snapshot.
// The grand total is rounded to the whole currency unit; the remainder is
// tracked in roundOff so the raw sum stays reconstructible.
func computeTotals(parcels []Parcel, freight, insVpp, billTotal float64) totals {
	var t totals

	t.billTotal = billTotal
	if t.billTotal == 0 {
		for _, p := range parcels {
			t.billTotal += p.Amount
		}
		t.billTotal = payments.Round2(t.billTotal)
	}

	lines := PaymentLines(parcels)
	t.rates = payments.TaxRateFor(lines)
	t.cgst = payments.Round2(t.billTotal * t.rates.CGST / 100)
	t.sgst = payments.Round2(t.billTotal * t.rates.SGST / 100)
	t.igst = payments.Round2(t.billTotal * t.rates.IGST / 100)

	raw := payments.Round2(t.billTotal + freight + insVpp + t.cgst + t.sgst + t.igst)
	t.grandTotal = math.Round(raw)
	t.roundOff = payments.Round2(t.grandTotal - raw)

	t.split = payments.Allocate(lines, t.grandTotal)
	return t
}

// buildParcels applies per-parcel defaults and derives amounts.
func buildParcels(reqs []CreateParcelReq) []Parcel {
	parcels := make([]Parcel, 0, len(reqs))
	for _, pr := range reqs {
		tag := pr.PaymentTag
		if tag == "" {
			tag = payments.TagNone
		}
		amount := pr.Amount
		if amount == 0 {
			amount = payments.Round2(pr.UnitAmount * float64(pr.Quantity))
		}
		parcels = append(parcels, Parcel{
			Description: pr.Description,
			Quantity:    pr.Quantity,
			Weight:      pr.Weight,
			UnitAmount:  pr.UnitAmount,
			Amount:      amount,
			Insurance:   pr.Insurance,
			VPPAmount:   pr.VPPAmount,
			PaymentTag:  tag,
			RefNo:       pr.RefNo,
		})
	}
	return parcels
}

// Create books a shipment: totals, payment split, receipt allocation and
// persistence happen as one save. Any failure before the final commit aborts
// the whole save; an already-consumed receipt number is the accepted gap.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	if err := ValidateCreateRequest(req); err != nil {
		return nil, err
	}

	for _, code := range []string{req.StationCode, req.ToStationCode} {
		exists, err := s.stations.ExistsCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("verify station: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrStationNotFound, code)
		}
	}

	bookingNo, err := s.allocateBookingNo(ctx)
	if err != nil {
		return nil, err
	}

	parcels := buildParcels(req.Parcels)
	t := computeTotals(parcels, req.Freight, req.InsVpp, req.BillTotal)

	source := req.Source
	if source == "" {
		source = SourceCounter
	}

	// The authoritative receipt number. The counter is consumed here; if the
	// persist below fails the number is lost, which is acceptable: numbers
	// must be unique and monotonic per key, not contiguous.
	receiptNo, err := s.numbers.AllocateReceipt(ctx, req.StationCode, sequence.DocTypeBooking)
	if err != nil {
		return nil, err
	}

	b := Booking{
		BookingNo:             bookingNo,
		ReceiptNo:             receiptNo,
		StationCode:           req.StationCode,
		ToStationCode:         req.ToStationCode,
		Source:                source,
		Status:                StatusBooked,
		CustomerID:            req.CustomerID,
		SenderName:            req.SenderName,
		SenderPhone:           req.SenderPhone,
		SenderEmail:           req.SenderEmail,
		ReceiverName:          req.ReceiverName,
		ReceiverPhone:         req.ReceiverPhone,
		Freight:               req.Freight,
		InsVpp:                req.InsVpp,
		CGSTRate:              t.rates.CGST,
		SGSTRate:              t.rates.SGST,
		IGSTRate:              t.rates.IGST,
		CGSTAmount:            t.cgst,
		SGSTAmount:            t.sgst,
		IGSTAmount:            t.igst,
		BillTotal:             t.billTotal,
		RoundOff:              t.roundOff,
		GrandTotal:            t.grandTotal,
		PaidAmount:            t.split.Paid,
		DeliveryPendingAmount: t.split.Pending,
		PaymentStatus:         t.split.Status,
	}

	var bookingID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, b)
		if err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		bookingID = id

		for _, p := range parcels {
			p.BookingID = bookingID
			p.ReceiptNo = receiptNo
			if _, err := repo.InsertParcel(ctx, p); err != nil {
				return fmt.Errorf("insert parcel: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.notifier.BookingCreated(ctx, created)
	return created, nil
}

// Update edits an editable booking, recomputing totals when parcels or
// charges change. Replacement parcels inherit the allocated receipt number.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*Booking, error) {
	if err := ValidateUpdateRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if existing.IsDeleted {
		return nil, ErrNotFound
	}
	if !existing.Status.CanEdit() {
		return nil, ErrCannotEdit
	}

	freight := existing.Freight
	if req.Freight != nil {
		freight = *req.Freight
	}
	insVpp := existing.InsVpp
	if req.InsVpp != nil {
		insVpp = *req.InsVpp
	}

	// An explicitly provided bill total survives edits that leave the
	// parcels alone; replacing parcels resets it to the parcel sum.
	parcels := existing.Parcels
	billTotal := existing.BillTotal
	if req.Parcels != nil {
		parcels = buildParcels(*req.Parcels)
		billTotal = 0
	}
	t := computeTotals(parcels, freight, insVpp, billTotal)

	updates := map[string]interface{}{
		"freight":                 freight,
		"ins_vpp":                 insVpp,
		"cgst_rate":               t.rates.CGST,
		"sgst_rate":               t.rates.SGST,
		"igst_rate":               t.rates.IGST,
		"cgst_amount":             t.cgst,
		"sgst_amount":             t.sgst,
		"igst_amount":             t.igst,
		"bill_total":              t.billTotal,
		"round_off":               t.roundOff,
		"grand_total":             t.grandTotal,
		"paid_amount":             t.split.Paid,
		"delivery_pending_amount": t.split.Pending,
		"payment_status":          string(t.split.Status),
	}
	if req.ToStationCode != nil {
		exists, err := s.stations.ExistsCode(ctx, *req.ToStationCode)
		if err != nil {
			return nil, fmt.Errorf("verify station: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrStationNotFound, *req.ToStationCode)
		}
		updates["to_station_code"] = *req.ToStationCode
	}
	if req.SenderName != nil {
		updates["sender_name"] = *req.SenderName
	}
	if req.SenderPhone != nil {
		updates["sender_phone"] = *req.SenderPhone
	}
	if req.ReceiverName != nil {
		updates["receiver_name"] = *req.ReceiverName
	}
	if req.ReceiverPhone != nil {
		updates["receiver_phone"] = *req.ReceiverPhone
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Update(ctx, id, updates); err != nil {
			return fmt.Errorf("update booking: %w", err)
		}
		if req.Parcels != nil {
			if err := repo.DeleteParcels(ctx, id); err != nil {
				return fmt.Errorf("delete parcels: %w", err)
			}
			for _, p := range parcels {
				p.BookingID = id
				p.ReceiptNo = existing.ReceiptNo
				if _, err := repo.InsertParcel(ctx, p); err != nil {
					return fmt.Errorf("insert parcel: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

// Approve accepts a public booking.
func (s *Service) Approve(ctx context.Context, id int64) (*Booking, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if existing.IsDeleted {
		return nil, ErrNotFound
	}
	if existing.Source != SourcePublic || existing.Status != StatusBooked {
		return nil, ErrCannotApprove
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusApproved, time.Now(), nil); err != nil {
		return nil, fmt.Errorf("approve booking: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Reject turns down a public booking. Rejecting an approved booking fails.
func (s *Service) Reject(ctx context.Context, id int64, reason string) (*Booking, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if existing.IsDeleted {
		return nil, ErrNotFound
	}
	if existing.Status == StatusApproved {
		return nil, ErrAlreadyApproved
	}
	if existing.Source != SourcePublic || existing.Status != StatusBooked {
		return nil, ErrCannotReject
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusRejected, time.Now(), &reason); err != nil {
		return nil, fmt.Errorf("reject booking: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Cancel cancels a booking with a reason.
func (s *Service) Cancel(ctx context.Context, id int64, req CancelRequest) (*Booking, error) {
	if err := ValidateCancelRequest(req); err != nil {
		return nil, err
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if existing.IsDeleted {
		return nil, ErrNotFound
	}
	if !existing.Status.CanCancel() {
		return nil, ErrCannotCancel
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled, time.Now(), &req.Reason); err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// AssignToRun places the booking on a delivery run.
func (s *Service) AssignToRun(ctx context.Context, id, runID int64) (*Booking, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if existing.IsDeleted {
		return nil, ErrNotFound
	}
	if !existing.Status.CanAssign() {
		return nil, ErrCannotAssign
	}
	if err := s.repo.SetDeliveryRun(ctx, id, &runID, StatusAssigned); err != nil {
		return nil, fmt.Errorf("assign booking: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// ReleaseFromRun takes an assigned booking off its delivery run and returns
// it to the bookable pool.
func (s *Service) ReleaseFromRun(ctx context.Context, id int64) (*Booking, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if existing.IsDeleted {
		return nil, ErrNotFound
	}
	if existing.Status != StatusAssigned {
		return nil, ErrNotAssigned
	}
	if err := s.repo.SetDeliveryRun(ctx, id, nil, StatusBooked); err != nil {
		return nil, fmt.Errorf("release booking: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// ListForRun returns the bookings assigned to a delivery run.
func (s *Service) ListForRun(ctx context.Context, runID int64) ([]Booking, error) {
	return s.repo.ListByRun(ctx, runID)
}

// FinalizeDelivery marks an assigned booking as delivered. Finalizing twice
// fails.
func (s *Service) FinalizeDelivery(ctx context.Context, id int64) (*Booking, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if existing.IsDeleted {
		return nil, ErrNotFound
	}
	if existing.Status != StatusAssigned {
		return nil, ErrCannotDeliver
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusDelivered, time.Now(), nil); err != nil {
		return nil, fmt.Errorf("finalize booking: %w", err)
	}
	delivered, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notifier.BookingDelivered(ctx, delivered)
	return delivered, nil
}

// SoftDelete flags a booking deleted; the retention purge removes it later.
func (s *Service) SoftDelete(ctx context.Context, id int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get booking: %w", err)
	}
	if existing.IsDeleted {
		return ErrAlreadyDeleted
	}
	if existing.Status == StatusDelivered {
		return ErrCannotEdit
	}
	if err := s.repo.SoftDelete(ctx, id, time.Now()); err != nil {
		return fmt.Errorf("soft delete booking: %w", err)
	}
	return nil
}

// PurgeExpired hard-deletes bookings soft-deleted before the cutoff.
func (s *Service) PurgeExpired(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.PurgeDeletedBefore(ctx, cutoff)
}

// PreviewReceipt formats the next receipt number for display without
// consuming it. The previewed number is not a reservation.
func (s *Service) PreviewReceipt(ctx context.Context, stationCode string) (string, error) {
	return s.numbers.PreviewReceipt(ctx, stationCode, sequence.DocTypeBooking)
}

// Get returns a booking by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Booking, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.IsDeleted {
		return nil, ErrNotFound
	}
	return b, nil
}

// GetByBookingNo returns a booking by its human-readable identifier.
func (s *Service) GetByBookingNo(ctx context.Context, bookingNo string) (*Booking, error) {
	b, err := s.repo.GetByBookingNo(ctx, bookingNo)
	if err != nil {
		return nil, err
	}
	if b.IsDeleted {
		return nil, ErrNotFound
	}
	return b, nil
}

// List returns bookings matching the filters.
func (s *Service) List(ctx context.Context, req ListRequest) ([]Booking, int, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	return s.repo.List(ctx, req)
}
