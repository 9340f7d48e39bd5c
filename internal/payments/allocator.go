// Package payments computes the collected-at-origin vs pending-at-destination
// split for a shipment and derives its payment status. Everything here is a
// pure function over the caller's snapshot; no I/O.
package payments

import "math"

// Tag marks how a single parcel's value is paid for.
type Tag string

const (
	// TagPaid means freight was collected at the origin station.
	TagPaid Tag = "PAID"
	// TagToPay means freight is due at the destination on delivery.
	TagToPay Tag = "TO_PAY"
	// TagNone means the parcel carries no payable value of its own.
	TagNone Tag = "NONE"
)

// Status is the derived payment state of the whole shipment.
type Status string

const (
	StatusPaid    Status = "PAID"
	StatusPartial Status = "PARTIAL"
	StatusUnpaid  Status = "UNPAID"
)

// Line is one parcel's notional amount and its payment tag.
type Line struct {
	Amount float64
	Tag    Tag
}

// Split is the result of allocating a grand total across payment tags.
type Split struct {
	Paid    float64
	Pending float64
	Status  Status
}

// Allocate splits grandTotal between collected and pending amounts based on
// how the individual lines are tagged.
//
// Pure-paid shipments collect everything up front; pure-to-pay shipments
// collect nothing. Mixed shipments split the grand total by the ratio of
// paid to tagged value, rounding only the paid side so the two parts always
// sum to grandTotal exactly. A shipment with no tagged value is treated as
// fully outstanding.
func Allocate(lines []Line, grandTotal float64) Split {
	var paidTotal, toPayTotal float64
	for _, line := range lines {
		switch line.Tag {
		case TagPaid:
			paidTotal += line.Amount
		case TagToPay:
			toPayTotal += line.Amount
		}
	}

	var paid, pending float64
	switch {
	case paidTotal > 0 && toPayTotal == 0:
		paid = grandTotal
	case toPayTotal > 0 && paidTotal == 0:
		pending = grandTotal
	default:
		ratio := 0.0
		if paidTotal+toPayTotal > 0 {
			ratio = paidTotal / (paidTotal + toPayTotal)
		}
		paid = math.Round(grandTotal * ratio)
		pending = grandTotal - paid
	}

	return Split{
		Paid:    paid,
		Pending: pending,
		Status:  StatusFor(paid, grandTotal),
	}
}

// StatusFor derives the payment status from collected amount and grand total.
func StatusFor(paid, grandTotal float64) Status {
	switch {
	case paid >= grandTotal:
		return StatusPaid
	case paid > 0:
		return StatusPartial
	default:
		return StatusUnpaid
	}
}

// Round2 rounds a currency amount to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
