package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"invoice_recorder/internal/adapters/opener"
	"invoice_recorder/internal/config"
	"invoice_recorder/internal/repository"
	"invoice_recorder/internal/repository/database"
	importitems "invoice_recorder/internal/repository/imports"
	"invoice_recorder/internal/services/importer"
	"invoice_recorder/internal/services/importer/processors"
	"invoice_recorder/internal/services/invoices"
	"invoice_recorder/internal/services/reports"
)

// app is the wired service graph shared by the sub-commands.
type app struct {
	cfg      *config.Config
	invoices *invoices.Service
	reports  *reports.Service
	importer *importer.Service
	journal  *importitems.Journal
	tokens   *repository.APITokenRepository
}

func newApp(ctx context.Context, st config.Settings, localFiles bool) (*app, error) {
	setupCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	cfg, err := config.Init(setupCtx, st)
	if err != nil {
		cfg.Close(context.Background())
		return nil, err
	}
	if err := cfg.CheckConnections(setupCtx); err != nil {
		cfg.Close(context.Background())
		return nil, fmt.Errorf("connection check: %w", err)
	}
	if err := database.EnsureSchema(setupCtx, cfg.Postgres); err != nil {
		cfg.Close(context.Background())
		return nil, err
	}
	if err := cfg.Mongo.EnsureIndexes(setupCtx); err != nil {
		cfg.Close(context.Background())
		return nil, err
	}

	invRepo := database.NewInvoicesRepo(cfg.Postgres)
	reportSvc := reports.NewService(invRepo, cfg.S3, database.NewReportArtifactsRepo(cfg.Postgres))
	invSvc := invoices.NewService(invRepo, reportSvc, st.InvoicePageSize)

	op := opener.NewCompoundOpener(
		opener.NewHTTPOpener(&http.Client{Timeout: 2 * time.Minute}),
		opener.NewS3Opener(cfg.S3.Client),
		cfg.S3.Bucket,
	)
	if localFiles {
		op.Local = &opener.LocalOpener{}
	}
	journal := importitems.NewJournal(cfg.Mongo)

	return &app{
		cfg:      cfg,
		invoices: invSvc,
		reports:  reportSvc,
		importer: importer.NewService(op, processors.NewInvoicesProcessor(invSvc), journal),
		journal:  journal,
		tokens:   repository.NewAPITokenRepository(cfg.Postgres),
	}, nil
}

func (a *app) Close() {
	a.cfg.Close(context.Background())
}
