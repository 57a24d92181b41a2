package processors

import (
	"context"
	"errors"

	"invoice_recorder/internal/models"
)

// InvoiceCreator is the create path of the invoice service; it runs the
// same validation and payment-2 derivation as a single-record create.
type InvoiceCreator interface {
	Create(ctx context.Context, ownerID string, f models.InvoiceFields) (*models.Invoice, error)
}

type BaseProcessor struct {
	Invoices InvoiceCreator
}

func NewBaseProcessor(inv InvoiceCreator) *BaseProcessor {
	return &BaseProcessor{Invoices: inv}
}

func (b *BaseProcessor) checkDeps() error {
	if b == nil || b.Invoices == nil {
		return errors.New("invoice service not available")
	}
	return nil
}
