package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice_recorder/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleInvoice() *models.Invoice {
	return &models.Invoice{
		OwnerID:       "42",
		InvoiceNumber: "INV-7",
		Party:         "Shree Textiles",
		Firm:          "Mahalaxmi",
		Quality:       "Rayon",
		InvoiceDate:   *date("2024-01-01"),
		DueDate:       *date("2024-02-01"),
		PaymentDate1:  date("2024-02-10"),
		TotalAmount:   dec("150000"),
		Balance:       dec("120000"),
		Payment1:      amount("105000"),
		DharaDay:      30,
		Taka:          dec("12"),
	}
}

func TestSettlePayment1(t *testing.T) {
	inv := sampleInvoice()

	require.NoError(t, SettlePayment1(inv, dec("20000")))
	assert.True(t, dec("100000").Equal(inv.Balance))
	assert.Equal(t, models.StatusPending, Status(inv))

	// partial settlements accumulate
	require.NoError(t, SettlePayment1(inv, dec("20000")))
	assert.True(t, dec("80000").Equal(inv.Balance))

	require.NoError(t, SettlePayment1(inv, dec("80000")))
	assert.True(t, inv.Balance.IsZero())
	assert.Equal(t, models.StatusPayment1Settled, Status(inv))

	err := SettlePayment1(inv, dec("0.01"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.True(t, inv.Balance.IsZero())
}

func TestSettlePayment1Rejects(t *testing.T) {
	for _, a := range []string{"0", "-5", "120000.01", "0.004", "100.125"} {
		inv := sampleInvoice()
		err := SettlePayment1(inv, dec(a))
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %s", a)
		assert.True(t, dec("120000").Equal(inv.Balance), "balance changed for %s", a)
	}
}

func TestSettlePayment2Partial(t *testing.T) {
	inv := sampleInvoice()
	require.NoError(t, Prepare(inv))
	require.True(t, dec("493.15").Equal(inv.Payment2))

	require.NoError(t, SettlePayment2(inv, dec("93.15")))
	assert.True(t, dec("400").Equal(inv.Payment2))
	assert.True(t, dec("93.15").Equal(inv.Payment2Paid))
	assert.False(t, inv.SettledPayment2)

	// a later save must not resurrect the settled part
	require.NoError(t, Prepare(inv))
	assert.True(t, dec("400").Equal(inv.Payment2))
}

func TestSettlePayment2Full(t *testing.T) {
	inv := sampleInvoice()
	require.NoError(t, Prepare(inv))

	require.NoError(t, SettlePayment2(inv, inv.Payment2))
	assert.True(t, inv.Payment2.IsZero())
	assert.True(t, inv.SettledPayment2)

	inv.Balance = decimal.Zero
	assert.Equal(t, models.StatusBothSettled, Status(inv))

	err := SettlePayment2(inv, dec("1"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSettlePayment2Rejects(t *testing.T) {
	for _, a := range []string{"0", "-1", "493.16", "493.149", "0.001"} {
		inv := sampleInvoice()
		require.NoError(t, Prepare(inv))
		err := SettlePayment2(inv, dec(a))
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %s", a)
		assert.True(t, dec("493.15").Equal(inv.Payment2))
		assert.False(t, inv.SettledPayment2)
	}
}

func TestSettledInvoiceStaysZero(t *testing.T) {
	inv := sampleInvoice()
	require.NoError(t, Prepare(inv))
	require.NoError(t, SettlePayment2(inv, inv.Payment2))

	// moving the payment date further out would normally raise payment 2
	later := inv.PaymentDate1.Add(90 * 24 * time.Hour)
	inv.PaymentDate1 = &later
	require.NoError(t, Prepare(inv))
	assert.True(t, inv.Payment2.IsZero())
	assert.True(t, inv.SettledPayment2)
}

func TestSettleAcceptsTrailingZeros(t *testing.T) {
	inv := sampleInvoice()
	require.NoError(t, Prepare(inv))

	require.NoError(t, SettlePayment1(inv, dec("100.500")))
	assert.True(t, dec("119899.5").Equal(inv.Balance))

	require.NoError(t, SettlePayment2(inv, dec("493.150")))
	assert.True(t, inv.SettledPayment2)
}
