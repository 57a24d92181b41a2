package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"invoice_recorder/internal/models"
)

var (
	dailyRate  = decimal.RequireFromString("0.0004931507")
	normalizer = decimal.RequireFromString("1.05")
)

const moneyPlaces = 2

// Payment2Input holds what the payment 2 calculation reads. Nil dates or a
// nil dhara day mean the value is not known yet.
type Payment2Input struct {
	Settled      bool
	InvoiceDate  *time.Time
	PaymentDate1 *time.Time
	DharaDay     *int
	Payment1     decimal.NullDecimal
}

// InputFromInvoice builds the calculator input from a stored invoice.
func InputFromInvoice(inv *models.Invoice) Payment2Input {
	in := Payment2Input{
		Settled:      inv.SettledPayment2,
		PaymentDate1: inv.PaymentDate1,
		Payment1:     inv.Payment1,
	}
	if !inv.InvoiceDate.IsZero() {
		d := inv.InvoiceDate
		in.InvoiceDate = &d
	}
	dhara := inv.DharaDay
	in.DharaDay = &dhara
	return in
}

// DaysOverdue returns the days between invoice and first payment and the
// part of them beyond the dhara period. ok is false when a date or the dhara
// day is missing.
func DaysOverdue(in Payment2Input) (daysDiff, chargeable int, ok bool) {
	if in.InvoiceDate == nil || in.PaymentDate1 == nil || in.DharaDay == nil {
		return 0, 0, false
	}
	daysDiff = daysBetween(*in.InvoiceDate, *in.PaymentDate1)
	return daysDiff, daysDiff - *in.DharaDay, true
}

// CalculatePayment2 derives the payment 2 charge:
//
//	payment_1 / 1.05 * 0.0004931507 * (days_diff - dhara_day)
//
// It is zero for settled invoices, incomplete input, and when the dhara
// period covers the elapsed days. The result is rounded to cents.
func CalculatePayment2(in Payment2Input) decimal.Decimal {
	if in.Settled || !in.Payment1.Valid {
		return decimal.Zero
	}
	_, chargeable, ok := DaysOverdue(in)
	if !ok || chargeable <= 0 {
		return decimal.Zero
	}

	// Multiply first so the single inexact step is the final division.
	raw := in.Payment1.Decimal.
		Mul(dailyRate).
		Mul(decimal.NewFromInt(int64(chargeable))).
		DivRound(normalizer, 16)

	out := raw.Round(moneyPlaces)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
