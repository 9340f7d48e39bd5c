package booking

import (
	"fmt"

	"github.com/bps-logistics/backoffice/internal/payments"
)

func validParcel(i int, p CreateParcelReq) error {
	if p.Quantity < 1 {
		return fmt.Errorf("parcel %d: %w", i+1, ErrInvalidQuantity)
	}
	if p.Weight < 0 || p.UnitAmount < 0 || p.Amount < 0 || p.Insurance < 0 || p.VPPAmount < 0 {
		return fmt.Errorf("parcel %d: %w", i+1, ErrNegativeAmount)
	}
	switch p.PaymentTag {
	case payments.TagPaid, payments.TagToPay, payments.TagNone, "":
	default:
		return fmt.Errorf("parcel %d: %w", i+1, ErrInvalidTag)
	}
	return nil
}

// ValidateCreateRequest validates create request.
func ValidateCreateRequest(req CreateRequest) error {
	if len(req.Parcels) == 0 {
		return ErrEmptyParcels
	}
	if req.Freight < 0 || req.InsVpp < 0 || req.BillTotal < 0 {
		return ErrNegativeAmount
	}
	for i, p := range req.Parcels {
		if err := validParcel(i, p); err != nil {
			return err
		}
	}
	return nil
}

// ValidateUpdateRequest validates update request.
func ValidateUpdateRequest(req UpdateRequest) error {
	if req.Freight != nil && *req.Freight < 0 {
		return ErrNegativeAmount
	}
	if req.InsVpp != nil && *req.InsVpp < 0 {
		return ErrNegativeAmount
	}
	if req.Parcels != nil {
		if len(*req.Parcels) == 0 {
			return ErrEmptyParcels
		}
		for i, p := range *req.Parcels {
			if err := validParcel(i, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateCancelRequest validates cancel request.
func ValidateCancelRequest(req CancelRequest) error {
	if len(req.Reason) < 10 {
		return ErrReasonTooShort
	}
	return nil
}
