package processors

import (
	"context"
	"errors"

	"invoice_recorder/internal/models"
	"invoice_recorder/internal/ports"
)

var InvoiceColumns = []string{
	"firm", "quality", "invoice_date", "invoice_number", "party",
	"meter", "total_amount", "due_date", "balance", "dhara_day", "taka",
}

type InvoicesProcessor struct {
	*BaseProcessor
}

func NewInvoicesProcessor(inv InvoiceCreator) InvoicesProcessor {
	return InvoicesProcessor{BaseProcessor: NewBaseProcessor(inv)}
}

func (p InvoicesProcessor) Type() string { return "import_invoices" }

func (p InvoicesProcessor) Columns() []string { return InvoiceColumns }

func (p InvoicesProcessor) ProcessRow(ctx context.Context, _ int, rec map[string]string) (string, error) {
	if err := p.checkDeps(); err != nil {
		return "", err
	}
	owner := ports.OwnerFromContext(ctx)
	if owner == "" {
		return "", errors.New("import has no owner")
	}

	fields, err := ParseInvoiceRow(rec)
	if err != nil {
		return "", err
	}
	inv, err := p.Invoices.Create(ctx, owner, fields)
	if err != nil {
		return "", err
	}
	return inv.ID, nil
}

// ParseInvoiceRow checks the required fields and parses the row. Meter is
// required on import even though the record keeps it optional.
func ParseInvoiceRow(rec map[string]string) (models.InvoiceFields, error) {
	r := &rowReader{rec: rec}
	r.required(InvoiceColumns)
	if r.err != nil {
		return models.InvoiceFields{}, r.err
	}

	f := models.InvoiceFields{
		Firm:          r.text("firm"),
		Quality:       r.text("quality"),
		InvoiceNumber: r.text("invoice_number"),
		Party:         r.text("party"),
		InvoiceDate:   r.date("invoice_date"),
		DueDate:       r.date("due_date"),
		PaymentDate1:  r.optDate("payment_date_1"),
		PaymentDate2:  r.optDate("payment_date_2"),
		TotalAmount:   r.number("total_amount"),
		Balance:       r.number("balance"),
		Payment1:      r.optNumber("payment_1"),
		DharaDay:      r.integer("dhara_day"),
		Taka:          r.number("taka"),
		Meter:         r.optNumber("meter"),
	}
	if r.err != nil {
		return models.InvoiceFields{}, r.err
	}
	return f, nil
}
