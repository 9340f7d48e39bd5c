package notify

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bps-logistics/backoffice/internal/booking"
)

var printer = message.NewPrinter(language.English)

// FormatAmount renders a rupee amount with the currency symbol and
// thousand separators.
func FormatAmount(v float64) string {
	return printer.Sprintf("%v", currency.Symbol(currency.INR.Amount(v)))
}

// BookingReceiptEmail builds the receipt confirmation sent after a booking
// is saved.
func BookingReceiptEmail(b *booking.Booking) EmailPayload {
	to := ""
	if b.SenderEmail != nil {
		to = *b.SenderEmail
	}
	return EmailPayload{
		To:      to,
		Subject: fmt.Sprintf("Booking confirmed: receipt %s", b.ReceiptNo),
		Body: fmt.Sprintf(
			"Dear %s,\n\nYour parcel booking %s is confirmed.\nReceipt number: %s\nTotal: %s\nPaid: %s\nTo pay on delivery: %s\n\nBPS Logistics",
			b.SenderName, b.BookingNo, b.ReceiptNo,
			FormatAmount(b.GrandTotal), FormatAmount(b.PaidAmount), FormatAmount(b.DeliveryPendingAmount)),
	}
}

// BookingReceiptWhatsApp builds the short receipt message for the sender.
func BookingReceiptWhatsApp(b *booking.Booking) WhatsAppPayload {
	return WhatsAppPayload{
		Phone: b.SenderPhone,
		Message: fmt.Sprintf("BPS Logistics: booking %s confirmed, receipt %s, total %s (to pay on delivery %s).",
			b.BookingNo, b.ReceiptNo, FormatAmount(b.GrandTotal), FormatAmount(b.DeliveryPendingAmount)),
	}
}

// DeliveryConfirmationWhatsApp builds the message sent to the receiver when
// the parcel is delivered.
func DeliveryConfirmationWhatsApp(b *booking.Booking) WhatsAppPayload {
	return WhatsAppPayload{
		Phone: b.ReceiverPhone,
		Message: fmt.Sprintf("BPS Logistics: parcel %s has been delivered. Amount collected: %s.",
			b.ReceiptNo, FormatAmount(b.DeliveryPendingAmount)),
	}
}
