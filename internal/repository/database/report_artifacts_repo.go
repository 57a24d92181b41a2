package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"invoice_recorder/internal/config/connections/postgres"

	"github.com/jackc/pgx/v5"
)

// ReportArtifact is the bookkeeping row kept next to a generated report
// object. Stale is raised whenever an invoice of the month changes.
type ReportArtifact struct {
	OwnerID     string
	Month       string
	Format      string
	ObjectKey   string
	SizeBytes   int64
	Stale       bool
	GeneratedAt time.Time
}

type ReportArtifactsRepo struct {
	pg *postgres.Postgres
}

func NewReportArtifactsRepo(pg *postgres.Postgres) *ReportArtifactsRepo {
	return &ReportArtifactsRepo{pg: pg}
}

// Get returns nil without error when nothing was generated yet.
func (r *ReportArtifactsRepo) Get(ctx context.Context, ownerID, month, format string) (*ReportArtifact, error) {
	var a ReportArtifact
	err := r.pg.Pool.QueryRow(ctx, `
		SELECT owner_id, month, format, object_key, size_bytes, stale, generated_at
		FROM report_artifacts
		WHERE owner_id = $1 AND month = $2 AND format = $3`,
		ownerID, month, format,
	).Scan(&a.OwnerID, &a.Month, &a.Format, &a.ObjectKey, &a.SizeBytes, &a.Stale, &a.GeneratedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get report artifact: %w", err)
	}
	return &a, nil
}

func (r *ReportArtifactsRepo) ListMonth(ctx context.Context, ownerID, month string) ([]ReportArtifact, error) {
	rows, err := r.pg.Pool.Query(ctx, `
		SELECT owner_id, month, format, object_key, size_bytes, stale, generated_at
		FROM report_artifacts
		WHERE owner_id = $1 AND month = $2`, ownerID, month)
	if err != nil {
		return nil, fmt.Errorf("list report artifacts: %w", err)
	}
	defer rows.Close()

	var out []ReportArtifact
	for rows.Next() {
		var a ReportArtifact
		if err := rows.Scan(&a.OwnerID, &a.Month, &a.Format, &a.ObjectKey, &a.SizeBytes, &a.Stale, &a.GeneratedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Save records a freshly generated artifact and clears its stale flag.
func (r *ReportArtifactsRepo) Save(ctx context.Context, a ReportArtifact) error {
	_, err := r.pg.Pool.Exec(ctx, `
		INSERT INTO report_artifacts (owner_id, month, format, object_key, size_bytes, stale, generated_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, false, NOW(), NOW())
		ON CONFLICT (owner_id, month, format) DO UPDATE SET
			object_key = EXCLUDED.object_key,
			size_bytes = EXCLUDED.size_bytes,
			stale = false,
			generated_at = NOW(),
			updated_at = NOW()`,
		a.OwnerID, a.Month, a.Format, a.ObjectKey, a.SizeBytes,
	)
	if err != nil {
		return fmt.Errorf("save report artifact: %w", err)
	}
	return nil
}

func (r *ReportArtifactsRepo) MarkStale(ctx context.Context, ownerID, month string) error {
	_, err := r.pg.Pool.Exec(ctx, `
		UPDATE report_artifacts SET stale = true, updated_at = NOW()
		WHERE owner_id = $1 AND month = $2`, ownerID, month)
	if err != nil {
		return fmt.Errorf("mark report stale: %w", err)
	}
	return nil
}

func (r *ReportArtifactsRepo) Delete(ctx context.Context, ownerID, month, format string) error {
	_, err := r.pg.Pool.Exec(ctx, `
		DELETE FROM report_artifacts WHERE owner_id = $1 AND month = $2 AND format = $3`,
		ownerID, month, format)
	if err != nil {
		return fmt.Errorf("delete report artifact: %w", err)
	}
	return nil
}
