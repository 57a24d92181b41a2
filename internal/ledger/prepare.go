package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"invoice_recorder/internal/models"
)

// Prepare validates inv and, only when it is valid, re-derives payment 2.
// Every write path calls it once right before the record is stored.
func Prepare(inv *models.Invoice) error {
	if err := Validate(inv); err != nil {
		return err
	}
	Derive(inv)
	return nil
}

// Derive sets payment 2 from the calculator, net of what was already settled
// manually. A settled invoice keeps payment 2 at zero. When earlier
// settlements already cover the recalculated charge the track is settled.
func Derive(inv *models.Invoice) {
	if inv.SettledPayment2 {
		inv.Payment2 = decimal.Zero
		return
	}
	due := CalculatePayment2(InputFromInvoice(inv)).Sub(inv.Payment2Paid)
	if inv.Payment2Paid.IsPositive() && !due.IsPositive() {
		inv.Payment2 = decimal.Zero
		inv.SettledPayment2 = true
		return
	}
	if due.IsNegative() {
		due = decimal.Zero
	}
	inv.Payment2 = due
}

func Validate(inv *models.Invoice) error {
	verr := &ValidationError{}

	required := map[string]string{
		"firm":           inv.Firm,
		"quality":        inv.Quality,
		"invoice_number": inv.InvoiceNumber,
		"party":          inv.Party,
	}
	for field, v := range required {
		if strings.TrimSpace(v) == "" {
			verr.add(field, "this field is required")
		}
	}
	if strings.TrimSpace(inv.OwnerID) == "" {
		verr.add("owner", "owner is required")
	}

	if inv.InvoiceDate.IsZero() {
		verr.add("invoice_date", "this field is required")
	}
	if inv.DueDate.IsZero() {
		verr.add("due_date", "this field is required")
	}

	if inv.TotalAmount.IsNegative() {
		verr.add("total_amount", "must not be negative")
	}
	switch {
	case inv.Balance.IsNegative():
		verr.add("balance", "must not be negative")
	case inv.Balance.GreaterThan(inv.TotalAmount):
		verr.add("balance", "must not exceed total_amount")
	}
	if inv.Payment1.Valid && inv.Payment1.Decimal.IsNegative() {
		verr.add("payment_1", "must not be negative")
	}
	if inv.DharaDay < 0 {
		verr.add("dhara_day", "must not be negative")
	}
	if inv.Taka.IsNegative() {
		verr.add("taka", "must not be negative")
	}
	if inv.Meter.Valid && inv.Meter.Decimal.IsNegative() {
		verr.add("meter", "must not be negative")
	}
	if inv.Payment2Paid.IsNegative() {
		verr.add("payment_2_paid", "must not be negative")
	}

	money := map[string]decimal.Decimal{
		"total_amount":   inv.TotalAmount,
		"balance":        inv.Balance,
		"taka":           inv.Taka,
		"payment_2_paid": inv.Payment2Paid,
	}
	if inv.Payment1.Valid {
		money["payment_1"] = inv.Payment1.Decimal
	}
	if inv.Meter.Valid {
		money["meter"] = inv.Meter.Decimal
	}
	for field, d := range money {
		if !isCents(d) {
			verr.add(field, "must have at most 2 decimal places")
		}
	}

	return verr.orNil()
}
