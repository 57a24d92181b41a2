package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"invoice_recorder/internal/ledger"
	"invoice_recorder/internal/logger"
	"invoice_recorder/internal/models"
	"invoice_recorder/internal/repository/database"
	importitems "invoice_recorder/internal/repository/imports"
	"invoice_recorder/internal/services/importer"
	"invoice_recorder/internal/services/invoices"
	"invoice_recorder/internal/services/reports"
	"invoice_recorder/internal/transport/auth"
	"invoice_recorder/internal/utils"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"
)

type InvoiceService interface {
	Create(ctx context.Context, ownerID string, f models.InvoiceFields) (*models.Invoice, error)
	Update(ctx context.Context, ownerID, id string, f models.InvoiceFields) (*models.Invoice, error)
	Delete(ctx context.Context, ownerID, id string) error
	Get(ctx context.Context, ownerID, id string) (*invoices.Detail, error)
	List(ctx context.Context, ownerID string, f models.InvoiceFilter) (*invoices.ListResult, error)
	SettlePayment1(ctx context.Context, ownerID, id string, amount decimal.Decimal) (*models.Invoice, error)
	SettlePayment2(ctx context.Context, ownerID, id string, amount decimal.Decimal) (*models.Invoice, error)
}

type Importer interface {
	Import(ctx context.Context, req importer.Request) (importer.Summary, error)
}

type ImportRecords interface {
	List(ctx context.Context, ownerID string, limit, skip int64) ([]importitems.Record, int64, error)
	Find(ctx context.Context, ownerID, id string) (importitems.Record, error)
	Items(ctx context.Context, importRecordID string, onlyFailed bool) ([]importitems.Item, error)
}

type ReportService interface {
	Generate(ctx context.Context, ownerID, month string, f reports.Format) (*database.ReportArtifact, error)
	Open(ctx context.Context, ownerID, month string, f reports.Format) (io.ReadCloser, *database.ReportArtifact, error)
}

// Uploads stages multipart files before they are imported.
type Uploads interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (int64, error)
}

type HealthChecker interface {
	CheckConnections(ctx context.Context) error
}

type Handlers struct {
	Invoices InvoiceService
	Importer Importer
	Records  ImportRecords
	Reports  ReportService
	Uploads  Uploads
	Health   HealthChecker

	// Bucket is where Uploads puts files; import paths are built from it.
	Bucket         string
	MaxUploadBytes int64

	Logger zerolog.Logger
}

func New(h Handlers) *Handlers {
	if h.MaxUploadBytes <= 0 {
		h.MaxUploadBytes = 32 << 20
	}
	h.Logger = logger.WithComponent("http")
	return &h
}

func (h *Handlers) JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResp struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Error maps domain errors to a status; anything unknown is logged and
// answered with 500.
func (h *Handlers) Error(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		h.JSON(w, http.StatusBadRequest, errorResp{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, utils.ErrInvalidNumberFormat),
		errors.Is(err, utils.ErrInvalidDateFormat),
		errors.Is(err, utils.ErrInvalidIntegerFormat),
		errors.Is(err, reports.ErrUnknownFormat),
		errors.Is(err, importer.ErrMissingColumns),
		errors.Is(err, importer.ErrEmptyFile):
		h.JSON(w, http.StatusBadRequest, errorResp{Error: err.Error()})
	case errors.Is(err, ledger.ErrInvalidAmount):
		h.JSON(w, http.StatusUnprocessableEntity, errorResp{Error: err.Error()})
	case errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, reports.ErrNoInvoices),
		errors.Is(err, mongo.ErrNoDocuments):
		h.JSON(w, http.StatusNotFound, errorResp{Error: err.Error()})
	default:
		h.Logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		h.JSON(w, http.StatusInternalServerError, errorResp{Error: "internal error"})
	}
}

func (h *Handlers) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner, err := auth.GetOwnerID(r.Context())
	if err != nil {
		h.JSON(w, http.StatusUnauthorized, errorResp{Error: "Unauthorized"})
		return "", false
	}
	return owner, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

type settleFunc func(ctx context.Context, ownerID, id string, amount decimal.Decimal) (*models.Invoice, error)
