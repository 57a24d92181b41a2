package handlers

import (
	"strings"
	"time"

	"invoice_recorder/internal/ledger"
	"invoice_recorder/internal/models"
	"invoice_recorder/internal/utils"

	"github.com/shopspring/decimal"
)

// invoiceRequest carries amounts and dates as text so that grouped amounts
// like "2,13,546.00" go through the same parser as imports.
type invoiceRequest struct {
	InvoiceNumber string `json:"invoice_number"`
	Party         string `json:"party"`
	Firm          string `json:"firm"`
	Quality       string `json:"quality"`
	Meter         string `json:"meter"`
	InvoiceDate   string `json:"invoice_date"`
	DueDate       string `json:"due_date"`
	PaymentDate1  string `json:"payment_date_1"`
	PaymentDate2  string `json:"payment_date_2"`
	TotalAmount   string `json:"total_amount"`
	Balance       string `json:"balance"`
	Payment1      string `json:"payment_1"`
	DharaDay      string `json:"dhara_day"`
	Taka          string `json:"taka"`
}

// fields parses every value and reports all bad ones at once. Amounts,
// dates and dhara_day are required; meter, payment_1 and the payment dates
// may be left empty.
func (req invoiceRequest) fields() (models.InvoiceFields, error) {
	bad := map[string]string{}

	const required = "this field is required"

	date := func(name, v string) time.Time {
		if strings.TrimSpace(v) == "" {
			bad[name] = required
			return time.Time{}
		}
		t, err := utils.ParseDate(v)
		if err != nil {
			bad[name] = err.Error()
		}
		return t
	}
	optDate := func(name, v string) *time.Time {
		if strings.TrimSpace(v) == "" {
			return nil
		}
		t := date(name, v)
		return &t
	}
	number := func(name, v string) decimal.Decimal {
		if strings.TrimSpace(v) == "" {
			bad[name] = required
			return decimal.Zero
		}
		d, err := utils.ParseIndianNumber(v)
		if err != nil {
			bad[name] = err.Error()
		}
		return d
	}
	optNumber := func(name, v string) decimal.NullDecimal {
		if strings.TrimSpace(v) == "" {
			return decimal.NullDecimal{}
		}
		return decimal.NewNullDecimal(number(name, v))
	}

	f := models.InvoiceFields{
		InvoiceNumber: strings.TrimSpace(req.InvoiceNumber),
		Party:         strings.TrimSpace(req.Party),
		Firm:          strings.TrimSpace(req.Firm),
		Quality:       strings.TrimSpace(req.Quality),
		Meter:         optNumber("meter", req.Meter),
		InvoiceDate:   date("invoice_date", req.InvoiceDate),
		DueDate:       date("due_date", req.DueDate),
		PaymentDate1:  optDate("payment_date_1", req.PaymentDate1),
		PaymentDate2:  optDate("payment_date_2", req.PaymentDate2),
		TotalAmount:   number("total_amount", req.TotalAmount),
		Balance:       number("balance", req.Balance),
		Payment1:      optNumber("payment_1", req.Payment1),
		Taka:          number("taka", req.Taka),
	}
	if strings.TrimSpace(req.DharaDay) == "" {
		bad["dhara_day"] = required
	} else {
		n, err := utils.ParseInt(req.DharaDay)
		if err != nil {
			bad["dhara_day"] = err.Error()
		}
		f.DharaDay = n
	}

	if len(bad) > 0 {
		return models.InvoiceFields{}, &ledger.ValidationError{Fields: bad}
	}
	return f, nil
}

type invoiceResponse struct {
	ID              string               `json:"id"`
	InvoiceNumber   string               `json:"invoice_number"`
	Party           string               `json:"party"`
	Firm            string               `json:"firm"`
	Quality         string               `json:"quality"`
	Meter           *string              `json:"meter"`
	InvoiceDate     string               `json:"invoice_date"`
	DueDate         string               `json:"due_date"`
	PaymentDate1    *string              `json:"payment_date_1"`
	PaymentDate2    *string              `json:"payment_date_2"`
	TotalAmount     string               `json:"total_amount"`
	Balance         string               `json:"balance"`
	Payment1        *string              `json:"payment_1"`
	DharaDay        int                  `json:"dhara_day"`
	Taka            string               `json:"taka"`
	Payment2        string               `json:"payment_2"`
	Payment2Paid    string               `json:"payment_2_paid"`
	SettledPayment2 bool                 `json:"settled_payment_2"`
	PaymentStatus   models.PaymentStatus `json:"payment_status"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

func toResponse(inv *models.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:              inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		Party:           inv.Party,
		Firm:            inv.Firm,
		Quality:         inv.Quality,
		Meter:           optMoney(inv.Meter),
		InvoiceDate:     inv.InvoiceDate.Format(utils.DateLayout),
		DueDate:         inv.DueDate.Format(utils.DateLayout),
		PaymentDate1:    optDate(inv.PaymentDate1),
		PaymentDate2:    optDate(inv.PaymentDate2),
		TotalAmount:     inv.TotalAmount.StringFixed(2),
		Balance:         inv.Balance.StringFixed(2),
		Payment1:        optMoney(inv.Payment1),
		DharaDay:        inv.DharaDay,
		Taka:            inv.Taka.StringFixed(2),
		Payment2:        inv.Payment2.StringFixed(2),
		Payment2Paid:    inv.Payment2Paid.StringFixed(2),
		SettledPayment2: inv.SettledPayment2,
		PaymentStatus:   ledger.Status(inv),
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}
}

func optMoney(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(2)
	return &s
}

func optDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(utils.DateLayout)
	return &s
}
