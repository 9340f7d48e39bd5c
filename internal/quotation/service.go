package quotation

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bps-logistics/backoffice/internal/booking"
	"github.com/bps-logistics/backoffice/internal/payments"
	"github.com/bps-logistics/backoffice/internal/sequence"
)

// maxIdentifierAttempts bounds the random quotation-number retry loop.
const maxIdentifierAttempts = 5

// StationDirectory verifies station codes against master data.
type StationDirectory interface {
	ExistsCode(ctx context.Context, code string) (bool, error)
}

// BookingCreator books a shipment from an approved quotation.
type BookingCreator interface {
	Create(ctx context.Context, req booking.CreateRequest) (*booking.Booking, error)
}

// Service provides business logic for quotations.
type Service struct {
	repo     Repository
	stations StationDirectory
	numbers  *sequence.Generator
	bookings BookingCreator
}

// NewService creates a new service.
func NewService(repo Repository, stations StationDirectory, numbers *sequence.Generator, bookings BookingCreator) *Service {
	return &Service{
		repo:     repo,
		stations: stations,
		numbers:  numbers,
		bookings: bookings,
	}
}

func newQuotationNo() string {
	return "QT-" + strings.ToUpper(uuid.NewString()[:6])
}

func (s *Service) allocateQuotationNo(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxIdentifierAttempts; attempt++ {
		no := newQuotationNo()
		exists, err := s.repo.ExistsQuotationNo(ctx, no)
		if err != nil {
			return "", fmt.Errorf("check quotation number: %w", err)
		}
		if !exists {
			return no, nil
		}
	}
	return "", ErrIdentifierExhausted
}

func validateItems(items []CreateItemReq) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}
	for i, item := range items {
		if item.Quantity < 1 {
			return fmt.Errorf("item %d: %w", i+1, ErrInvalidQuantity)
		}
		if item.Weight < 0 || item.UnitAmount < 0 || item.Amount < 0 || item.Insurance < 0 || item.VPPAmount < 0 {
			return fmt.Errorf("item %d: %w", i+1, ErrNegativeAmount)
		}
	}
	return nil
}

func buildItems(reqs []CreateItemReq) []Item {
	items := make([]Item, 0, len(reqs))
	for _, ir := range reqs {
		tag := ir.PaymentTag
		if tag == "" {
			tag = payments.TagNone
		}
		amount := ir.Amount
		if amount == 0 {
			amount = payments.Round2(ir.UnitAmount * float64(ir.Quantity))
		}
		items = append(items, Item{
			Description: ir.Description,
			Quantity:    ir.Quantity,
			Weight:      ir.Weight,
			UnitAmount:  ir.UnitAmount,
			Amount:      amount,
			Insurance:   ir.Insurance,
			VPPAmount:   ir.VPPAmount,
			PaymentTag:  tag,
			RefNo:       ir.RefNo,
		})
	}
	return items
}

func paymentLines(items []Item) []payments.Line {
	lines := make([]payments.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, payments.Line{Amount: item.Amount, Tag: item.PaymentTag})
	}
	return lines
}

// Create quotes a shipment. The flow mirrors booking creation: totals,
// payment split, then a committed receipt number from the quotation
// numbering space.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Quotation, error) {
	if err := validateItems(req.Items); err != nil {
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

	quotationNo, err := s.allocateQuotationNo(ctx)
	if err != nil {
		return nil, err
	}

	items := buildItems(req.Items)
	lines := paymentLines(items)

	billTotal := req.BillTotal
	if billTotal == 0 {
		for _, item := range items {
			billTotal += item.Amount
		}
		billTotal = payments.Round2(billTotal)
	}

	rates := payments.TaxRateFor(lines)
	cgst := payments.Round2(billTotal * rates.CGST / 100)
	sgst := payments.Round2(billTotal * rates.SGST / 100)
	igst := payments.Round2(billTotal * rates.IGST / 100)

	raw := payments.Round2(billTotal + req.Freight + req.InsVpp + cgst + sgst + igst)
	grandTotal := math.Round(raw)
	roundOff := payments.Round2(grandTotal - raw)

	split := payments.Allocate(lines, grandTotal)

	receiptNo, err := s.numbers.AllocateReceipt(ctx, req.StationCode, sequence.DocTypeQuotation)
	if err != nil {
		return nil, err
	}

	q := Quotation{
		QuotationNo:           quotationNo,
		ReceiptNo:             receiptNo,
		StationCode:           req.StationCode,
		ToStationCode:         req.ToStationCode,
		Status:                StatusPending,
		CustomerID:            req.CustomerID,
		SenderName:            req.SenderName,
		SenderPhone:           req.SenderPhone,
		SenderEmail:           req.SenderEmail,
		ReceiverName:          req.ReceiverName,
		ReceiverPhone:         req.ReceiverPhone,
		Freight:               req.Freight,
		InsVpp:                req.InsVpp,
		CGSTRate:              rates.CGST,
		SGSTRate:              rates.SGST,
		IGSTRate:              rates.IGST,
		CGSTAmount:            cgst,
		SGSTAmount:            sgst,
		IGSTAmount:            igst,
		BillTotal:             billTotal,
		RoundOff:              roundOff,
		GrandTotal:            grandTotal,
		PaidAmount:            split.Paid,
		DeliveryPendingAmount: split.Pending,
		PaymentStatus:         split.Status,
	}

	var quotationID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, q)
		if err != nil {
			return fmt.Errorf("create quotation: %w", err)
		}
		quotationID = id

		for _, item := range items {
			item.QuotationID = quotationID
			item.ReceiptNo = receiptNo
			if _, err := repo.InsertItem(ctx, item); err != nil {
				return fmt.Errorf("insert item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, quotationID)
}

// Approve accepts a pending quotation.
func (s *Service) Approve(ctx context.Context, id int64) (*Quotation, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	if existing.IsDeleted {
		return nil, ErrNotFound
	}
	if existing.Status != StatusPending {
		return nil, ErrCannotApprove
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusApproved, time.Now(), nil); err != nil {
		return nil, fmt.Errorf("approve quotation: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Reject turns down a pending quotation. Rejecting an approved one fails.
func (s *Service) Reject(ctx context.Context, id int64, reason string) (*Quotation, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	if existing.IsDeleted {
		return nil, ErrNotFound
	}
	if existing.Status == StatusApproved || existing.Status == StatusConverted {
		return nil, ErrAlreadyApproved
	}
	if existing.Status != StatusPending {
		return nil, ErrCannotReject
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusRejected, time.Now(), &reason); err != nil {
		return nil, fmt.Errorf("reject quotation: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Convert books the shipment from an approved quotation. The booking gets
// its own identifier and receipt number from the booking numbering space;
// the quotation keeps a pointer to the created booking.
func (s *Service) Convert(ctx context.Context, id int64) (*Quotation, *booking.Booking, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("get quotation: %w", err)
	}
	if existing.IsDeleted {
		return nil, nil, ErrNotFound
	}
	if existing.Status != StatusApproved {
		return nil, nil, ErrNotApproved
	}

	parcels := make([]booking.CreateParcelReq, 0, len(existing.Items))
	for _, item := range existing.Items {
		parcels = append(parcels, booking.CreateParcelReq{
			Description: item.Description,
			Quantity:    item.Quantity,
			Weight:      item.Weight,
			UnitAmount:  item.UnitAmount,
			Amount:      item.Amount,
			Insurance:   item.Insurance,
			VPPAmount:   item.VPPAmount,
			PaymentTag:  item.PaymentTag,
			RefNo:       item.RefNo,
		})
	}

	b, err := s.bookings.Create(ctx, booking.CreateRequest{
		StationCode:   existing.StationCode,
		ToStationCode: existing.ToStationCode,
		Source:        booking.SourceCounter,
		CustomerID:    existing.CustomerID,
		SenderName:    existing.SenderName,
		SenderPhone:   existing.SenderPhone,
		SenderEmail:   existing.SenderEmail,
		ReceiverName:  existing.ReceiverName,
		ReceiverPhone: existing.ReceiverPhone,
		Freight:       existing.Freight,
		InsVpp:        existing.InsVpp,
		Parcels:       parcels,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("book quotation: %w", err)
	}

	if err := s.repo.MarkConverted(ctx, id, b.ID); err != nil {
		return nil, nil, fmt.Errorf("mark converted: %w", err)
	}

	converted, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return converted, b, nil
}

// Update edits a pending quotation, recomputing totals when needed.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*Quotation, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	if existing.IsDeleted {
		return nil, ErrNotFound
	}
	if !existing.Status.CanEdit() {
		return nil, ErrCannotEdit
	}

	if req.Items != nil {
		if err := validateItems(*req.Items); err != nil {
			return nil, err
		}
	}
	if (req.Freight != nil && *req.Freight < 0) || (req.InsVpp != nil && *req.InsVpp < 0) {
		return nil, ErrNegativeAmount
	}

	freight := existing.Freight
	if req.Freight != nil {
		freight = *req.Freight
	}
	insVpp := existing.InsVpp
	if req.InsVpp != nil {
		insVpp = *req.InsVpp
	}

	items := existing.Items
	if req.Items != nil {
		items = buildItems(*req.Items)
	}
	lines := paymentLines(items)

	var billTotal float64
	for _, item := range items {
		billTotal += item.Amount
	}
	billTotal = payments.Round2(billTotal)

	rates := payments.TaxRateFor(lines)
	cgst := payments.Round2(billTotal * rates.CGST / 100)
	sgst := payments.Round2(billTotal * rates.SGST / 100)
	igst := payments.Round2(billTotal * rates.IGST / 100)
	raw := payments.Round2(billTotal + freight + insVpp + cgst + sgst + igst)
	grandTotal := math.Round(raw)
	roundOff := payments.Round2(grandTotal - raw)
	split := payments.Allocate(lines, grandTotal)

	updates := map[string]interface{}{
		"freight":                 freight,
		"ins_vpp":                 insVpp,
		"cgst_rate":               rates.CGST,
		"sgst_rate":               rates.SGST,
		"igst_rate":               rates.IGST,
		"cgst_amount":             cgst,
		"sgst_amount":             sgst,
		"igst_amount":             igst,
		"bill_total":              billTotal,
		"round_off":               roundOff,
		"grand_total":             grandTotal,
		"paid_amount":             split.Paid,
		"delivery_pending_amount": split.Pending,
		"payment_status":          string(split.Status),
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
			return fmt.Errorf("update quotation: %w", err)
		}
		if req.Items != nil {
			if err := repo.DeleteItems(ctx, id); err != nil {
				return fmt.Errorf("delete items: %w", err)
			}
			for _, item := range items {
				item.QuotationID = id
				item.ReceiptNo = existing.ReceiptNo
				if _, err := repo.InsertItem(ctx, item); err != nil {
					return fmt.Errorf("insert item: %w", err)
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

// SoftDelete flags a quotation deleted.
func (s *Service) SoftDelete(ctx context.Context, id int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get quotation: %w", err)
	}
	if existing.IsDeleted {
		return ErrAlreadyDeleted
	}
	if err := s.repo.SoftDelete(ctx, id, time.Now()); err != nil {
		return fmt.Errorf("soft delete quotation: %w", err)
	}
	return nil
}

// PurgeExpired hard-deletes quotations soft-deleted before the cutoff.
func (s *Service) PurgeExpired(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.PurgeDeletedBefore(ctx, cutoff)
}

// PreviewReceipt formats the next quotation receipt number without
// consuming it.
func (s *Service) PreviewReceipt(ctx context.Context, stationCode string) (string, error) {
	return s.numbers.PreviewReceipt(ctx, stationCode, sequence.DocTypeQuotation)
}

// Get returns a quotation by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Quotation, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.IsDeleted {
		return nil, ErrNotFound
	}
	return q, nil
}

// List returns quotations matching the filters.
func (s *Service) List(ctx context.Context, req ListRequest) ([]Quotation, int, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	return s.repo.List(ctx, req)
}
