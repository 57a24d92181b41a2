package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice_recorder/internal/models"
)

func TestPrepareDerivesPayment2(t *testing.T) {
	inv := sampleInvoice()
	inv.Payment2 = dec("999999")

	require.NoError(t, Prepare(inv))
	assert.True(t, dec("493.15").Equal(inv.Payment2))
}

func TestPrepareRecomputesOnChange(t *testing.T) {
	inv := sampleInvoice()
	require.NoError(t, Prepare(inv))

	inv.DharaDay = 40
	require.NoError(t, Prepare(inv))
	assert.True(t, inv.Payment2.IsZero())
}

func TestPrepareSettlesWhenPaidCoversCharge(t *testing.T) {
	inv := sampleInvoice()
	require.NoError(t, Prepare(inv))
	require.NoError(t, SettlePayment2(inv, dec("300")))
	require.False(t, inv.SettledPayment2)

	// a shorter delay drops the charge below what was already paid
	inv.DharaDay = 38
	require.NoError(t, Prepare(inv))
	assert.True(t, inv.Payment2.IsZero())
	assert.True(t, inv.SettledPayment2)

	inv.Balance = decimal.Zero
	assert.Equal(t, models.StatusBothSettled, Status(inv))

	// the charge does not come back on a later edit
	inv.DharaDay = 0
	require.NoError(t, Prepare(inv))
	assert.True(t, inv.Payment2.IsZero())
}

func TestPrepareExactlyPaidIsSettled(t *testing.T) {
	inv := sampleInvoice()
	inv.Payment2Paid = dec("493.15")

	require.NoError(t, Prepare(inv))
	assert.True(t, inv.Payment2.IsZero())
	assert.True(t, inv.SettledPayment2)
}

func TestPrepareNothingPaidStaysOpen(t *testing.T) {
	inv := sampleInvoice()
	inv.DharaDay = 40

	require.NoError(t, Prepare(inv))
	assert.True(t, inv.Payment2.IsZero())
	assert.False(t, inv.SettledPayment2)
}

func TestPrepareRejectsInvalidWithoutDeriving(t *testing.T) {
	inv := sampleInvoice()
	inv.Party = "  "
	inv.Balance = dec("200000")
	inv.Payment2 = dec("1.23")

	err := Prepare(inv)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "party")
	assert.Equal(t, "must not exceed total_amount", verr.Fields["balance"])
	assert.True(t, dec("1.23").Equal(inv.Payment2), "payment 2 must not be touched on invalid input")
}

func TestValidateRejectsSubCentMoney(t *testing.T) {
	inv := sampleInvoice()
	inv.TotalAmount = dec("150000.005")
	inv.Balance = dec("119999.999")
	inv.Payment1 = amount("105000.001")
	inv.Taka = dec("12.50")

	err := Validate(inv)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "must have at most 2 decimal places", verr.Fields["total_amount"])
	assert.Equal(t, "must have at most 2 decimal places", verr.Fields["balance"])
	assert.Equal(t, "must have at most 2 decimal places", verr.Fields["payment_1"])
	assert.NotContains(t, verr.Fields, "taka")
}

func TestValidateMissingDates(t *testing.T) {
	inv := sampleInvoice()
	inv.InvoiceDate = time.Time{}
	inv.Balance = decimal.NewFromInt(-1)

	err := Validate(inv)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "invoice_date")
	assert.Equal(t, "must not be negative", verr.Fields["balance"])
	assert.Contains(t, verr.Error(), "invoice_date: this field is required")
}
