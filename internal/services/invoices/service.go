package invoices

import (
	"context"
	"strings"

	"invoice_recorder/internal/ledger"
	"invoice_recorder/internal/logger"
	"invoice_recorder/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type Store interface {
	Create(ctx context.Context, inv *models.Invoice) error
	Update(ctx context.Context, inv *models.Invoice) error
	Delete(ctx context.Context, ownerID, id string) (*models.Invoice, error)
	Get(ctx context.Context, ownerID, id string) (*models.Invoice, error)
	List(ctx context.Context, ownerID string, f models.InvoiceFilter) ([]models.Invoice, error)
	Summary(ctx context.Context, ownerID string, f models.InvoiceFilter) (models.SummaryStats, error)
	Months(ctx context.Context, ownerID string) ([]models.Month, error)
	CountMonth(ctx context.Context, ownerID, month string) (int, error)
}

// ReportTracker keeps monthly report artifacts in step with invoice writes.
type ReportTracker interface {
	MarkStale(ctx context.Context, ownerID, month string) error
	RemoveMonth(ctx context.Context, ownerID, month string) error
}

const DefaultPageSize = 50

type Service struct {
	Store    Store
	Reports  ReportTracker
	PageSize int

	log zerolog.Logger
}

func NewService(store Store, reports ReportTracker, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{
		Store:    store,
		Reports:  reports,
		PageSize: pageSize,
		log:      logger.WithComponent("invoices"),
	}
}

type Detail struct {
	Invoice        *models.Invoice      `json:"invoice"`
	Status         models.PaymentStatus `json:"payment_status"`
	DaysDiff       *int                 `json:"days_diff"`
	DaysMinusDhara *int                 `json:"days_minus_dhara"`
}

type ListResult struct {
	Invoices []models.Invoice     `json:"invoices"`
	Months   []models.Month       `json:"months"`
	Summary  models.SummaryStats  `json:"summary_stats"`
	Filter   models.InvoiceFilter `json:"-"`
}

func (s *Service) Create(ctx context.Context, ownerID string, f models.InvoiceFields) (*models.Invoice, error) {
	inv := &models.Invoice{OwnerID: ownerID}
	f.Apply(inv)

	if err := ledger.Prepare(inv); err != nil {
		return nil, err
	}
	if err := s.Store.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("owner_id", ownerID).
		Str("invoice_id", inv.ID).
		Str("payment_2", inv.Payment2.String()).
		Msg("invoice created")

	s.markStale(ctx, ownerID, inv.Month())
	return inv, nil
}

func (s *Service) Update(ctx context.Context, ownerID, id string, f models.InvoiceFields) (*models.Invoice, error) {
	inv, err := s.Store.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	oldMonth := inv.Month()

	f.Apply(inv)
	if err := ledger.Prepare(inv); err != nil {
		return nil, err
	}
	if err := s.Store.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("owner_id", ownerID).
		Str("invoice_id", inv.ID).
		Str("payment_2", inv.Payment2.String()).
		Msg("invoice updated")

	s.markStale(ctx, ownerID, inv.Month())
	if oldMonth != inv.Month() {
		s.afterRemoval(ctx, ownerID, oldMonth)
	}
	return inv, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	inv, err := s.Store.Delete(ctx, ownerID, id)
	if err != nil {
		return err
	}
	s.log.Info().Str("owner_id", ownerID).Str("invoice_id", id).Msg("invoice deleted")

	s.afterRemoval(ctx, ownerID, inv.Month())
	return nil
}

func (s *Service) Get(ctx context.Context, ownerID, id string) (*Detail, error) {
	inv, err := s.Store.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	d := &Detail{Invoice: inv, Status: ledger.Status(inv)}
	if diff, chargeable, ok := ledger.DaysOverdue(ledger.InputFromInvoice(inv)); ok {
		d.DaysDiff = &diff
		d.DaysMinusDhara = &chargeable
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, ownerID string, f models.InvoiceFilter) (*ListResult, error) {
	f.PartySearch = strings.TrimSpace(f.PartySearch)
	if f.Status != "" && !f.Status.Valid() {
		return nil, ledger.NewValidationError("payment_status", "unknown payment status "+string(f.Status))
	}
	if f.PageSize <= 0 {
		f.PageSize = s.PageSize
	}
	if f.Page < 1 {
		f.Page = 1
	}

	rows, err := s.Store.List(ctx, ownerID, f)
	if err != nil {
		return nil, err
	}
	summary, err := s.Store.Summary(ctx, ownerID, f)
	if err != nil {
		return nil, err
	}
	months, err := s.Store.Months(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if rows == nil {
		rows = []models.Invoice{}
	}
	return &ListResult{Invoices: rows, Months: months, Summary: summary, Filter: f}, nil
}

func (s *Service) SettlePayment1(ctx context.Context, ownerID, id string, amount decimal.Decimal) (*models.Invoice, error) {
	return s.settle(ctx, ownerID, id, "payment_1", func(inv *models.Invoice) error {
		return ledger.SettlePayment1(inv, amount)
	})
}

func (s *Service) SettlePayment2(ctx context.Context, ownerID, id string, amount decimal.Decimal) (*models.Invoice, error) {
	return s.settle(ctx, ownerID, id, "payment_2", func(inv *models.Invoice) error {
		return ledger.SettlePayment2(inv, amount)
	})
}

func (s *Service) settle(ctx context.Context, ownerID, id, track string, apply func(*models.Invoice) error) (*models.Invoice, error) {
	inv, err := s.Store.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := apply(inv); err != nil {
		return nil, err
	}
	if err := ledger.Prepare(inv); err != nil {
		return nil, err
	}
	if err := s.Store.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("owner_id", ownerID).
		Str("invoice_id", id).
		Str("track", track).
		Str("balance", inv.Balance.String()).
		Str("payment_2", inv.Payment2.String()).
		Bool("settled_payment_2", inv.SettledPayment2).
		Msg("settlement applied")

	s.markStale(ctx, ownerID, inv.Month())
	return inv, nil
}

// Report bookkeeping runs after the invoice write is committed, so its
// failures are logged rather than returned.
func (s *Service) markStale(ctx context.Context, ownerID, month string) {
	if s.Reports == nil {
		return
	}
	if err := s.Reports.MarkStale(ctx, ownerID, month); err != nil {
		s.log.Warn().Err(err).Str("owner_id", ownerID).Str("month", month).Msg("mark report stale")
	}
}

func (s *Service) afterRemoval(ctx context.Context, ownerID, month string) {
	if s.Reports == nil {
		return
	}
	left, err := s.Store.CountMonth(ctx, ownerID, month)
	if err != nil {
		s.log.Warn().Err(err).Str("owner_id", ownerID).Str("month", month).Msg("count month")
		return
	}
	if left > 0 {
		s.markStale(ctx, ownerID, month)
		return
	}
	if err := s.Reports.RemoveMonth(ctx, ownerID, month); err != nil {
		s.log.Warn().Err(err).Str("owner_id", ownerID).Str("month", month).Msg("remove month report")
		return
	}
	s.log.Info().Str("owner_id", ownerID).Str("month", month).Msg("last invoice of month removed, report dropped")
}
