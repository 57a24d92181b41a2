package handlers

import (
	"errors"
	"testing"
	"time"

	"invoice_recorder/internal/ledger"
	"invoice_recorder/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceRequestFields(t *testing.T) {
	req := invoiceRequest{
		InvoiceNumber: " INV-1 ",
		Party:         "Acme",
		Firm:          "Shree",
		Quality:       "Cotton",
		InvoiceDate:   "2024-03-01",
		DueDate:       "2024-03-31",
		PaymentDate1:  "2024-03-11",
		TotalAmount:   "2,13,546.00",
		Balance:       "0",
		Payment1:      "2,13,546.00",
		DharaDay:      "0",
		Taka:          "12",
	}

	f, err := req.fields()
	require.NoError(t, err)
	assert.Equal(t, "INV-1", f.InvoiceNumber)
	assert.True(t, f.TotalAmount.Equal(decimal.RequireFromString("213546")))
	assert.False(t, f.Meter.Valid)
	assert.Nil(t, f.PaymentDate2)
	require.NotNil(t, f.PaymentDate1)
	assert.Equal(t, 11, f.PaymentDate1.Day())
}

func TestInvoiceRequestFields_CollectsErrors(t *testing.T) {
	req := invoiceRequest{
		InvoiceDate: "01-03-2024",
		TotalAmount: "12a3",
		DharaDay:    "x",
	}

	_, err := req.fields()
	var verr *ledger.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "invoice_date")
	assert.Contains(t, verr.Fields, "total_amount")
	assert.Contains(t, verr.Fields, "dhara_day")
}

func TestInvoiceRequestFields_RequiresNumbers(t *testing.T) {
	req := invoiceRequest{
		InvoiceNumber: "INV-1",
		Party:         "Acme",
		Firm:          "Shree",
		Quality:       "Cotton",
		InvoiceDate:   "2024-03-01",
		DueDate:       "2024-03-31",
		PaymentDate1:  "2024-03-11",
		Payment1:      "2,13,546.00",
		Balance:       "  ",
	}

	_, err := req.fields()
	var verr *ledger.ValidationError
	require.True(t, errors.As(err, &verr))
	for _, name := range []string{"total_amount", "balance", "taka", "dhara_day"} {
		assert.Equal(t, "this field is required", verr.Fields[name], name)
	}
	assert.NotContains(t, verr.Fields, "meter")
	assert.NotContains(t, verr.Fields, "payment_date_2")
}

func TestToResponse(t *testing.T) {
	paid := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	inv := &models.Invoice{
		ID:           "id",
		InvoiceDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:      time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		PaymentDate1: &paid,
		TotalAmount:  decimal.RequireFromString("1000"),
		Balance:      decimal.Zero,
		Payment2:     decimal.RequireFromString("4.5"),
	}

	resp := toResponse(inv)
	assert.Equal(t, "2024-03-01", resp.InvoiceDate)
	require.NotNil(t, resp.PaymentDate1)
	assert.Equal(t, "2024-03-11", *resp.PaymentDate1)
	assert.Nil(t, resp.PaymentDate2)
	assert.Nil(t, resp.Payment1)
	assert.Equal(t, "4.50", resp.Payment2)
	assert.Equal(t, models.StatusPayment1Settled, resp.PaymentStatus)
}
