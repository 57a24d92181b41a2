package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	StatusPending         PaymentStatus = "pending"
	StatusPayment1Settled PaymentStatus = "payment_1_settled"
	StatusBothSettled     PaymentStatus = "both_settled"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPayment1Settled, StatusBothSettled:
		return true
	}
	return false
}

type Invoice struct {
	ID            string              `json:"id"`
	OwnerID       string              `json:"owner_id"`
	InvoiceNumber string              `json:"invoice_number"`
	Party         string              `json:"party"`
	Firm          string              `json:"firm"`
	Quality       string              `json:"quality"`
	Meter         decimal.NullDecimal `json:"meter"`

	InvoiceDate  time.Time  `json:"invoice_date"`
	DueDate      time.Time  `json:"due_date"`
	PaymentDate1 *time.Time `json:"payment_date_1"`
	PaymentDate2 *time.Time `json:"payment_date_2"`

	TotalAmount decimal.Decimal     `json:"total_amount"`
	Balance     decimal.Decimal     `json:"balance"`
	Payment1    decimal.NullDecimal `json:"payment_1"`

	DharaDay int             `json:"dhara_day"`
	Taka     decimal.Decimal `json:"taka"`

	// Payment2 is derived; Payment2Paid accumulates manual settlements against it.
	Payment2        decimal.Decimal `json:"payment_2"`
	Payment2Paid    decimal.Decimal `json:"payment_2_paid"`
	SettledPayment2 bool            `json:"settled_payment_2"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Month is the report grouping key of the invoice.
func (i *Invoice) Month() string {
	return i.InvoiceDate.Format("2006-01")
}

type InvoiceFilter struct {
	Month       string
	PartySearch string
	Status      PaymentStatus
	Page        int
	PageSize    int
}

type SummaryStats struct {
	PendingCount          int             `json:"pending_count"`
	PendingAmount         decimal.Decimal `json:"pending_amount"`
	Payment1SettledCount  int             `json:"payment_1_settled_count"`
	Payment1SettledAmount decimal.Decimal `json:"payment_1_settled_amount"`
	BothSettledCount      int             `json:"both_settled_count"`
	BothSettledAmount     decimal.Decimal `json:"both_settled_amount"`
	TotalBalance          decimal.Decimal `json:"total_balance"`
}

type Month struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// InvoiceFields are the user-editable attributes. Payment 2 and its
// settlement state are never taken from input.
type InvoiceFields struct {
	InvoiceNumber string
	Party         string
	Firm          string
	Quality       string
	Meter         decimal.NullDecimal
	InvoiceDate   time.Time
	DueDate       time.Time
	PaymentDate1  *time.Time
	PaymentDate2  *time.Time
	TotalAmount   decimal.Decimal
	Balance       decimal.Decimal
	Payment1      decimal.NullDecimal
	DharaDay      int
	Taka          decimal.Decimal
}

func (f InvoiceFields) Apply(inv *Invoice) {
	inv.InvoiceNumber = f.InvoiceNumber
	inv.Party = f.Party
	inv.Firm = f.Firm
	inv.Quality = f.Quality
	inv.Meter = f.Meter
	inv.InvoiceDate = f.InvoiceDate
	inv.DueDate = f.DueDate
	inv.PaymentDate1 = f.PaymentDate1
	inv.PaymentDate2 = f.PaymentDate2
	inv.TotalAmount = f.TotalAmount
	inv.Balance = f.Balance
	inv.Payment1 = f.Payment1
	inv.DharaDay = f.DharaDay
	inv.Taka = f.Taka
}
