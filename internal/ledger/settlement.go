package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"invoice_recorder/internal/models"
)

func Status(inv *models.Invoice) models.PaymentStatus {
	switch {
	case inv.Balance.IsPositive():
		return models.StatusPending
	case inv.SettledPayment2:
		return models.StatusBothSettled
	default:
		return models.StatusPayment1Settled
	}
}

// SettlePayment1 reduces the balance by amount. Repeated calls keep reducing
// it until nothing is left.
func SettlePayment1(inv *models.Invoice, amount decimal.Decimal) error {
	if err := checkSettleAmount(amount); err != nil {
		return err
	}
	if amount.GreaterThan(inv.Balance) {
		return fmt.Errorf("%w: settle amount (%s) cannot exceed current balance (%s)", ErrInvalidAmount, amount, inv.Balance)
	}
	inv.Balance = inv.Balance.Sub(amount)
	return nil
}

// SettlePayment2 reduces the outstanding payment 2. Reaching zero marks it
// settled, which pins payment 2 to zero from then on.
func SettlePayment2(inv *models.Invoice, amount decimal.Decimal) error {
	if inv.SettledPayment2 {
		return fmt.Errorf("%w: payment 2 is already settled", ErrInvalidAmount)
	}
	if err := checkSettleAmount(amount); err != nil {
		return err
	}
	if amount.GreaterThan(inv.Payment2) {
		return fmt.Errorf("%w: settle amount (%s) cannot exceed remaining payment 2 (%s)", ErrInvalidAmount, amount, inv.Payment2)
	}

	inv.Payment2 = inv.Payment2.Sub(amount)
	inv.Payment2Paid = inv.Payment2Paid.Add(amount)
	if !inv.Payment2.IsPositive() {
		inv.Payment2 = decimal.Zero
		inv.SettledPayment2 = true
	}
	return nil
}

func checkSettleAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: settle amount must be positive, got %s", ErrInvalidAmount, amount)
	}
	if !isCents(amount) {
		return fmt.Errorf("%w: settle amount (%s) has more than %d decimal places", ErrInvalidAmount, amount, moneyPlaces)
	}
	return nil
}

// isCents reports whether d is representable in a numeric(15,2) column
// without rounding.
func isCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(moneyPlaces))
}
