// Package sequence owns the per-station document counters and the
// human-readable receipt and invoice numbers derived from them.
package sequence

import (
	"context"
	"fmt"
	"strings"
)

// DocType identifies the numbering space a counter belongs to.
type DocType string

const (
	DocTypeBooking   DocType = "BOOKING"
	DocTypeQuotation DocType = "QUOTATION"
	DocTypeInvoice   DocType = "INVOICE"
)

// Key addresses one counter. Each (station code, document type) pair has its
// own monotonic sequence.
type Key struct {
	StationCode string
	DocType     DocType
}

// Store is the durable counter backing the generators.
//
// IncrementAndGet must be atomic: two concurrent calls for the same key yield
// two distinct, consecutive values. Current is read-only and returns 0 for a
// key that has never been allocated.
type Store interface {
	IncrementAndGet(ctx context.Context, key Key) (int64, error)
	Current(ctx context.Context, key Key) (int64, error)
}

// FormatReceipt renders a counter value as a receipt number.
func FormatReceipt(stationCode string, docType DocType, n int64) string {
	if docType == DocTypeQuotation {
		return fmt.Sprintf("BPS-Q-%s-%03d", stationCode, n)
	}
	return fmt.Sprintf("BPS-%s-%03d", stationCode, n)
}

// FormatInvoice renders a counter value as an invoice number.
func FormatInvoice(prefix string, n int64) string {
	return fmt.Sprintf("BPS/%s/%04d", prefix, n)
}

// StationPrefix derives the 3-letter invoice prefix from a station name.
// Stations whose names share the first three letters share a sequence; that
// is a known limitation of the numbering scheme, not something this package
// papers over.
func StationPrefix(stationName string) string {
	name := strings.ToUpper(strings.TrimSpace(stationName))
	if len(name) > 3 {
		name = name[:3]
	}
	return name
}
