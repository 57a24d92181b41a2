package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"invoice_recorder/internal/config/connections/s3"
	"invoice_recorder/internal/logger"
	"invoice_recorder/internal/models"
	"invoice_recorder/internal/repository/database"
	"invoice_recorder/internal/utils"

	"github.com/rs/zerolog"
)

var (
	ErrNoInvoices    = errors.New("no invoices for month")
	ErrUnknownFormat = errors.New("unknown report format")
)

type InvoiceSource interface {
	ListMonth(ctx context.Context, ownerID, month string) ([]models.Invoice, error)
}

type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (int64, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

type StateStore interface {
	Get(ctx context.Context, ownerID, month, format string) (*database.ReportArtifact, error)
	ListMonth(ctx context.Context, ownerID, month string) ([]database.ReportArtifact, error)
	Save(ctx context.Context, a database.ReportArtifact) error
	MarkStale(ctx context.Context, ownerID, month string) error
	Delete(ctx context.Context, ownerID, month, format string) error
}

type Service struct {
	Invoices InvoiceSource
	Objects  ObjectStore
	State    StateStore

	log zerolog.Logger
}

func NewService(inv InvoiceSource, obj ObjectStore, state StateStore) *Service {
	return &Service{
		Invoices: inv,
		Objects:  obj,
		State:    state,
		log:      logger.WithComponent("reports"),
	}
}

// ObjectKey is deterministic per owner, month and format so a regeneration
// overwrites the previous artifact.
func ObjectKey(ownerID, month string, f Format) string {
	return fmt.Sprintf("reports/%s/invoices_%s.%s", url.PathEscape(ownerID), month, f)
}

func FileName(month string, f Format) string {
	return fmt.Sprintf("invoices_%s.%s", month, f)
}

// Generate renders the month and stores it, replacing any previous artifact.
// Concurrent generations of the same month race; the last writer wins.
func (s *Service) Generate(ctx context.Context, ownerID, month string, f Format) (*database.ReportArtifact, error) {
	if _, err := utils.ParseMonth(month); err != nil {
		return nil, err
	}

	rows, err := s.Invoices.ListMonth(ctx, ownerID, month)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w %s", ErrNoInvoices, month)
	}

	var buf bytes.Buffer
	if err := Write(&buf, f, BuildTable(rows)); err != nil {
		return nil, fmt.Errorf("render %s: %w", f, err)
	}

	key := ObjectKey(ownerID, month, f)
	size, err := s.Objects.Put(ctx, key, &buf, int64(buf.Len()), f.ContentType())
	if err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}

	a := database.ReportArtifact{
		OwnerID:   ownerID,
		Month:     month,
		Format:    string(f),
		ObjectKey: key,
		SizeBytes: size,
	}
	if err := s.State.Save(ctx, a); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("owner_id", ownerID).
		Str("month", month).
		Str("format", string(f)).
		Int("invoices", len(rows)).
		Int64("size", size).
		Msg("report generated")
	return &a, nil
}

// Open returns the stored artifact, regenerating it first when it is
// missing or stale. The caller closes the reader.
func (s *Service) Open(ctx context.Context, ownerID, month string, f Format) (io.ReadCloser, *database.ReportArtifact, error) {
	if _, err := utils.ParseMonth(month); err != nil {
		return nil, nil, err
	}

	a, err := s.State.Get(ctx, ownerID, month, string(f))
	if err != nil {
		return nil, nil, err
	}
	if a == nil || a.Stale {
		if a, err = s.Generate(ctx, ownerID, month, f); err != nil {
			return nil, nil, err
		}
	}

	rc, err := s.Objects.Get(ctx, a.ObjectKey)
	if errors.Is(err, s3.ErrObjectNotFound) {
		s.log.Warn().Str("owner_id", ownerID).Str("month", month).Msg("report object missing, regenerating")
		if a, err = s.Generate(ctx, ownerID, month, f); err != nil {
			return nil, nil, err
		}
		rc, err = s.Objects.Get(ctx, a.ObjectKey)
	}
	if err != nil {
		return nil, nil, err
	}
	return rc, a, nil
}

func (s *Service) MarkStale(ctx context.Context, ownerID, month string) error {
	return s.State.MarkStale(ctx, ownerID, month)
}

// RemoveMonth deletes every recorded artifact of the month, the object
// before its state row.
func (s *Service) RemoveMonth(ctx context.Context, ownerID, month string) error {
	arts, err := s.State.ListMonth(ctx, ownerID, month)
	if err != nil {
		return err
	}

	var errs []error
	for _, a := range arts {
		if err := s.Objects.Remove(ctx, a.ObjectKey); err != nil {
			errs = append(errs, fmt.Errorf("remove %s object: %w", a.Format, err))
			continue
		}
		if err := s.State.Delete(ctx, ownerID, month, a.Format); err != nil {
			errs = append(errs, err)
		}
	}
	if len(arts) > 0 && len(errs) == 0 {
		s.log.Info().Str("owner_id", ownerID).Str("month", month).Int("artifacts", len(arts)).Msg("month reports removed")
	}
	return errors.Join(errs...)
}
