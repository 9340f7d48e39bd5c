package payments

// TaxRates carries the GST percentages applied to a shipment.
type TaxRates struct {
	CGST float64
	SGST float64
	IGST float64
}

// TaxRateFor selects GST rates from how the shipment's lines are tagged.
// Fully to-pay shipments are billed inter-state (IGST 18); anything collected
// at origin is billed intra-state (CGST 9 + SGST 9). This used to live in the
// booking form; it is a backend policy now so both sides agree.
func TaxRateFor(lines []Line) TaxRates {
	toPay := 0
	tagged := 0
	for _, line := range lines {
		switch line.Tag {
		case TagToPay:
			toPay++
			tagged++
		case TagPaid:
			tagged++
		}
	}
	if tagged > 0 && toPay == tagged {
		return TaxRates{IGST: 18}
	}
	return TaxRates{CGST: 9, SGST: 9}
}
