package reports

import (
	"strconv"
	"time"

	"invoice_recorder/internal/models"
	"invoice_recorder/internal/utils"

	"github.com/shopspring/decimal"
)

var Columns = []string{
	"Firm", "Quality", "Invoice Date", "Invoice Number", "Party",
	"Total Amount", "Due Date", "Balance", "Payment Date 1",
	"Payment 1", "Dhara Day", "Taka", "Payment Date 2", "Payment 2", "Meter",
}

const (
	colTotalAmount = 5
	colBalance     = 7
	colPayment1    = 9
	colDharaDay    = 10
	colTaka        = 11
	colPayment2    = 13
	colMeter       = 14
)

// numeric marks the columns written as numbers to spreadsheets.
var numeric = map[int]bool{
	colTotalAmount: true, colBalance: true, colPayment1: true, colDharaDay: true,
	colTaka: true, colPayment2: true, colMeter: true,
}

type Table struct {
	Header []string
	Rows   [][]string
	Totals []string
}

// BuildTable renders invoices in the given order and appends the totals row.
func BuildTable(invoices []models.Invoice) Table {
	t := Table{Header: Columns, Rows: make([][]string, 0, len(invoices))}

	var total, balance, payment1, taka, payment2, meter decimal.Decimal
	for _, inv := range invoices {
		t.Rows = append(t.Rows, []string{
			inv.Firm,
			inv.Quality,
			inv.InvoiceDate.Format(utils.DateLayout),
			inv.InvoiceNumber,
			inv.Party,
			money(inv.TotalAmount),
			inv.DueDate.Format(utils.DateLayout),
			money(inv.Balance),
			optDate(inv.PaymentDate1),
			optMoney(inv.Payment1),
			strconv.Itoa(inv.DharaDay),
			money(inv.Taka),
			optDate(inv.PaymentDate2),
			money(inv.Payment2),
			optMoney(inv.Meter),
		})

		total = total.Add(inv.TotalAmount)
		balance = balance.Add(inv.Balance)
		if inv.Payment1.Valid {
			payment1 = payment1.Add(inv.Payment1.Decimal)
		}
		taka = taka.Add(inv.Taka)
		payment2 = payment2.Add(inv.Payment2)
		if inv.Meter.Valid {
			meter = meter.Add(inv.Meter.Decimal)
		}
	}

	t.Totals = make([]string, len(Columns))
	t.Totals[0] = "Total"
	t.Totals[colTotalAmount] = money(total)
	t.Totals[colBalance] = money(balance)
	t.Totals[colPayment1] = money(payment1)
	t.Totals[colTaka] = money(taka)
	t.Totals[colPayment2] = money(payment2)
	t.Totals[colMeter] = money(meter)
	return t
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func optMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return money(d.Decimal)
}

func optDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(utils.DateLayout)
}
