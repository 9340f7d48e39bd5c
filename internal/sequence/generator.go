package sequence

import (
	"context"
	"fmt"
)

// Generator turns counter values into receipt and invoice numbers.
//
// Preview reads the counter without mutating it and formats the value the
// next allocation would produce. It is a UI affordance, not a reservation:
// another allocation can land in between, in which case the committed number
// differs from the previewed one.
type Generator struct {
	store Store
}

// NewGenerator builds a Generator on top of a counter store.
func NewGenerator(store Store) *Generator {
	return &Generator{store: store}
}

// PreviewReceipt formats the next receipt number for a station without
// consuming it.
func (g *Generator) PreviewReceipt(ctx context.Context, stationCode string, docType DocType) (string, error) {
	last, err := g.store.Current(ctx, Key{StationCode: stationCode, DocType: docType})
	if err != nil {
		return "", fmt.Errorf("sequence: read counter: %w", err)
	}
	return FormatReceipt(stationCode, docType, last+1), nil
}

// AllocateReceipt durably consumes the next counter value and returns the
// authoritative receipt number. Callers must abort their save when this
// fails; a receipt number is never retried or reused.
func (g *Generator) AllocateReceipt(ctx context.Context, stationCode string, docType DocType) (string, error) {
	n, err := g.store.IncrementAndGet(ctx, Key{StationCode: stationCode, DocType: docType})
	if err != nil {
		return "", fmt.Errorf("sequence: increment counter: %w", err)
	}
	return FormatReceipt(stationCode, docType, n), nil
}

// PreviewInvoice formats the next invoice number for a station without
// consuming it. Invoice numbers live in their own space keyed by the derived
// 3-letter station prefix.
func (g *Generator) PreviewInvoice(ctx context.Context, stationName string) (string, error) {
	prefix := StationPrefix(stationName)
	last, err := g.store.Current(ctx, Key{StationCode: prefix, DocType: DocTypeInvoice})
	if err != nil {
		return "", fmt.Errorf("sequence: read counter: %w", err)
	}
	return FormatInvoice(prefix, last+1), nil
}

// AllocateInvoice durably consumes the next invoice number for a station.
func (g *Generator) AllocateInvoice(ctx context.Context, stationName string) (string, error) {
	prefix := StationPrefix(stationName)
	n, err := g.store.IncrementAndGet(ctx, Key{StationCode: prefix, DocType: DocTypeInvoice})
	if err != nil {
		return "", fmt.Errorf("sequence: increment counter: %w", err)
	}
	return FormatInvoice(prefix, n), nil
}
