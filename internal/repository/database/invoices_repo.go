package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"invoice_recorder/internal/config/connections/postgres"
	"invoice_recorder/internal/ledger"
	"invoice_recorder/internal/models"
	"invoice_recorder/internal/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type InvoicesRepo struct {
	pg *postgres.Postgres
}

func NewInvoicesRepo(pg *postgres.Postgres) *InvoicesRepo {
	return &InvoicesRepo{pg: pg}
}

// Numerics travel as text so no precision is lost on either side.
const invoiceColumns = `
	id::text, owner_id, invoice_number, party, firm, quality, meter::text,
	invoice_date, due_date, payment_date_1, payment_date_2,
	total_amount::text, balance::text, payment_1::text,
	dhara_day, taka::text,
	payment_2::text, payment_2_paid::text, settled_payment_2,
	created_at, updated_at`

const insertInvoiceQuery = `
	INSERT INTO invoices (
		id, owner_id, invoice_number, party, firm, quality, meter,
		invoice_date, due_date, payment_date_1, payment_date_2,
		total_amount, balance, payment_1,
		dhara_day, taka,
		payment_2, payment_2_paid, settled_payment_2,
		created_at, updated_at
	)
	VALUES (
		$1::uuid, $2, $3, $4, $5, $6, $7::numeric,
		$8::date, $9::date, $10::date, $11::date,
		$12::numeric, $13::numeric, $14::numeric,
		$15::int, $16::numeric,
		$17::numeric, $18::numeric, $19::bool,
		NOW(), NOW()
	)
	RETURNING created_at, updated_at;
`

const updateInvoiceQuery = `
	UPDATE invoices SET
		invoice_number = $3, party = $4, firm = $5, quality = $6, meter = $7::numeric,
		invoice_date = $8::date, due_date = $9::date,
		payment_date_1 = $10::date, payment_date_2 = $11::date,
		total_amount = $12::numeric, balance = $13::numeric, payment_1 = $14::numeric,
		dhara_day = $15::int, taka = $16::numeric,
		payment_2 = $17::numeric, payment_2_paid = $18::numeric, settled_payment_2 = $19::bool,
		updated_at = NOW()
	WHERE id = $1::uuid AND owner_id = $2
	RETURNING created_at, updated_at;
`

func invoiceArgs(inv *models.Invoice) []any {
	return []any{
		inv.ID, inv.OwnerID, inv.InvoiceNumber, inv.Party, inv.Firm, inv.Quality, nullDecimalArg(inv.Meter),
		inv.InvoiceDate, inv.DueDate, inv.PaymentDate1, inv.PaymentDate2,
		inv.TotalAmount.String(), inv.Balance.String(), nullDecimalArg(inv.Payment1),
		inv.DharaDay, inv.Taka.String(),
		inv.Payment2.String(), inv.Payment2Paid.String(), inv.SettledPayment2,
	}
}

func (r *InvoicesRepo) Create(ctx context.Context, inv *models.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	err := r.pg.Pool.QueryRow(ctx, insertInvoiceQuery, invoiceArgs(inv)...).Scan(&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// Update never touches created_at.
func (r *InvoicesRepo) Update(ctx context.Context, inv *models.Invoice) error {
	err := r.pg.Pool.QueryRow(ctx, updateInvoiceQuery, invoiceArgs(inv)...).Scan(&inv.CreatedAt, &inv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

func (r *InvoicesRepo) Delete(ctx context.Context, ownerID, id string) (*models.Invoice, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ledger.ErrNotFound
	}
	query := `DELETE FROM invoices WHERE id = $1::uuid AND owner_id = $2 RETURNING ` + invoiceColumns
	inv, err := scanInvoice(r.pg.Pool.QueryRow(ctx, query, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete invoice: %w", err)
	}
	return inv, nil
}

func (r *InvoicesRepo) Get(ctx context.Context, ownerID, id string) (*models.Invoice, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ledger.ErrNotFound
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1::uuid AND owner_id = $2`
	inv, err := scanInvoice(r.pg.Pool.QueryRow(ctx, query, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// List returns one page of the owner's invoices, newest invoice date first.
func (r *InvoicesRepo) List(ctx context.Context, ownerID string, f models.InvoiceFilter) ([]models.Invoice, error) {
	where, args, err := buildWhere(ownerID, f, true)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE ` + where + ` ORDER BY invoice_date DESC, created_at DESC`
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		args = append(args, f.PageSize, (page-1)*f.PageSize)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	return r.query(ctx, query, args...)
}

// ListMonth returns the owner's invoices dated in month, oldest first.
func (r *InvoicesRepo) ListMonth(ctx context.Context, ownerID, month string) ([]models.Invoice, error) {
	where, args, err := buildWhere(ownerID, models.InvoiceFilter{Month: month}, false)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE ` + where + ` ORDER BY invoice_date ASC, created_at ASC`
	return r.query(ctx, query, args...)
}

func (r *InvoicesRepo) CountMonth(ctx context.Context, ownerID, month string) (int, error) {
	where, args, err := buildWhere(ownerID, models.InvoiceFilter{Month: month}, false)
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.pg.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoices WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return n, nil
}

// Summary aggregates by payment status, ignoring f.Status.
func (r *InvoicesRepo) Summary(ctx context.Context, ownerID string, f models.InvoiceFilter) (models.SummaryStats, error) {
	var out models.SummaryStats
	where, args, err := buildWhere(ownerID, f, false)
	if err != nil {
		return out, err
	}

	query := `
		SELECT
			COUNT(*) FILTER (WHERE balance > 0),
			COALESCE(SUM(balance) FILTER (WHERE balance > 0), 0)::text,
			COUNT(*) FILTER (WHERE balance = 0 AND NOT settled_payment_2),
			COALESCE(SUM(total_amount) FILTER (WHERE balance = 0 AND NOT settled_payment_2), 0)::text,
			COUNT(*) FILTER (WHERE balance = 0 AND settled_payment_2),
			COALESCE(SUM(total_amount) FILTER (WHERE balance = 0 AND settled_payment_2), 0)::text,
			COALESCE(SUM(balance), 0)::text
		FROM invoices WHERE ` + where

	var pending, p1, both, total string
	err = r.pg.Pool.QueryRow(ctx, query, args...).Scan(
		&out.PendingCount, &pending,
		&out.Payment1SettledCount, &p1,
		&out.BothSettledCount, &both,
		&total,
	)
	if err != nil {
		return out, fmt.Errorf("summary: %w", err)
	}

	out.PendingAmount = decimal.RequireFromString(pending)
	out.Payment1SettledAmount = decimal.RequireFromString(p1)
	out.BothSettledAmount = decimal.RequireFromString(both)
	out.TotalBalance = decimal.RequireFromString(total)
	return out, nil
}

// Months lists the distinct invoice months of an owner, newest first.
func (r *InvoicesRepo) Months(ctx context.Context, ownerID string) ([]models.Month, error) {
	rows, err := r.pg.Pool.Query(ctx, `
		SELECT DISTINCT date_trunc('month', invoice_date)::date AS m
		FROM invoices WHERE owner_id = $1
		ORDER BY m DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("months: %w", err)
	}
	defer rows.Close()

	var out []models.Month
	for rows.Next() {
		var m time.Time
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		out = append(out, models.Month{Key: utils.MonthKey(m), Name: m.Format("January 2006")})
	}
	return out, rows.Err()
}

func (r *InvoicesRepo) query(ctx context.Context, query string, args ...any) ([]models.Invoice, error) {
	rows, err := r.pg.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var out []models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

func buildWhere(ownerID string, f models.InvoiceFilter, withStatus bool) (string, []any, error) {
	conds := []string{"owner_id = $1"}
	args := []any{ownerID}

	if f.Month != "" {
		start, err := utils.ParseMonth(f.Month)
		if err != nil {
			return "", nil, err
		}
		args = append(args, start, start.AddDate(0, 1, 0))
		conds = append(conds, fmt.Sprintf("invoice_date >= $%d::date AND invoice_date < $%d::date", len(args)-1, len(args)))
	}
	if s := strings.TrimSpace(f.PartySearch); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		conds = append(conds, fmt.Sprintf("party ILIKE $%d", len(args)))
	}
	if withStatus {
		switch f.Status {
		case models.StatusPending:
			conds = append(conds, "balance > 0")
		case models.StatusPayment1Settled:
			conds = append(conds, "balance = 0 AND NOT settled_payment_2")
		case models.StatusBothSettled:
			conds = append(conds, "balance = 0 AND settled_payment_2")
		}
	}
	return strings.Join(conds, " AND "), args, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	var (
		inv                              models.Invoice
		meter, payment1                  *string
		total, balance, taka, p2, p2Paid string
	)
	err := row.Scan(
		&inv.ID, &inv.OwnerID, &inv.InvoiceNumber, &inv.Party, &inv.Firm, &inv.Quality, &meter,
		&inv.InvoiceDate, &inv.DueDate, &inv.PaymentDate1, &inv.PaymentDate2,
		&total, &balance, &payment1,
		&inv.DharaDay, &taka,
		&p2, &p2Paid, &inv.SettledPayment2,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	inv.Meter = nullDecimal(meter)
	inv.Payment1 = nullDecimal(payment1)
	inv.TotalAmount = decimal.RequireFromString(total)
	inv.Balance = decimal.RequireFromString(balance)
	inv.Taka = decimal.RequireFromString(taka)
	inv.Payment2 = decimal.RequireFromString(p2)
	inv.Payment2Paid = decimal.RequireFromString(p2Paid)
	return &inv, nil
}

func nullDecimal(s *string) decimal.NullDecimal {
	if s == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.RequireFromString(*s))
}

func nullDecimalArg(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}
