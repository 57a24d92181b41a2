package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"invoice_recorder/internal/logger"
	"invoice_recorder/internal/ports"
	importitems "invoice_recorder/internal/repository/imports"

	"github.com/rs/zerolog"
)

// MaxReportedErrors bounds the row errors carried in a Summary.
const MaxReportedErrors = 5

var ErrMissingColumns = errors.New("missing required fields")

// Journal records the import and every row outcome. Failures to journal
// are the journal's business; they never fail the import.
type Journal interface {
	Begin(ctx context.Context, rec importitems.Record) (string, error)
	Row(ctx context.Context, p importitems.LogParams)
	Finish(ctx context.Context, id string, out importitems.Outcome) error
}

type Request struct {
	OwnerID  string
	FilePath string
	FileName string
}

type Summary struct {
	ImportRecordID string                 `json:"import_record_id,omitempty"`
	Format         string                 `json:"format"`
	Succeeded      int                    `json:"success_count"`
	Failed         int                    `json:"error_count"`
	Errors         []importitems.RowError `json:"errors"`
	MoreErrors     int                    `json:"more_errors"`
}

// Message renders the failures the way an operator reads them.
func (s Summary) Message() string {
	if s.Failed == 0 {
		return fmt.Sprintf("Successfully imported %d invoices", s.Succeeded)
	}
	var b strings.Builder
	if s.Succeeded > 0 {
		fmt.Fprintf(&b, "Successfully imported %d invoices\n", s.Succeeded)
	}
	fmt.Fprintf(&b, "Failed to import %d invoices. Errors:", s.Failed)
	for _, e := range s.Errors {
		fmt.Fprintf(&b, "\nRow %d: %s", e.Row, e.Message)
	}
	if s.MoreErrors > 0 {
		fmt.Fprintf(&b, "\n... and %d more errors", s.MoreErrors)
	}
	return b.String()
}

func (s *Summary) add(row int, err error) {
	s.Failed++
	if len(s.Errors) < MaxReportedErrors {
		s.Errors = append(s.Errors, importitems.RowError{Row: row, Message: err.Error()})
		return
	}
	s.MoreErrors++
}

type Service struct {
	Opener    ports.FileOpener
	Processor ports.Processor
	Journal   Journal

	log zerolog.Logger
}

func NewService(opener ports.FileOpener, proc ports.Processor, journal Journal) *Service {
	return &Service{
		Opener:    opener,
		Processor: proc,
		Journal:   journal,
		log:       logger.WithComponent("importer"),
	}
}

func (s *Service) Import(ctx context.Context, req Request) (Summary, error) {
	t0 := time.Now()
	log := s.log.With().Str("owner_id", req.OwnerID).Str("path", req.FilePath).Logger()

	recordID := s.begin(ctx, req)
	ctx = context.WithValue(ctx, ports.CtxOwnerID, req.OwnerID)
	ctx = context.WithValue(ctx, ports.CtxImportRecordID, recordID)

	sum, err := s.run(ctx, req)
	sum.ImportRecordID = recordID
	if err != nil {
		log.Error().Err(err).Msg("import failed")
		s.finish(ctx, recordID, importitems.Outcome{Status: importitems.StatusFailed, Format: sum.Format, Message: err.Error()})
		return sum, err
	}

	s.finish(ctx, recordID, importitems.Outcome{
		Status:    importitems.StatusDone,
		Format:    sum.Format,
		Succeeded: sum.Succeeded,
		Failed:    sum.Failed,
		Errors:    sum.Errors,
		Message:   sum.Message(),
	})
	log.Info().
		Str("import_record_id", recordID).
		Str("format", sum.Format).
		Int("succeeded", sum.Succeeded).
		Int("failed", sum.Failed).
		Dur("duration", time.Since(t0)).
		Msg("import finished")
	return sum, nil
}

func (s *Service) run(ctx context.Context, req Request) (Summary, error) {
	rc, meta, err := s.Opener.Open(ctx, req.FilePath)
	if err != nil {
		return Summary{}, fmt.Errorf("open %s: %w", req.FilePath, err)
	}
	defer rc.Close()

	name := req.FileName
	if name == "" {
		name = req.FilePath
	}
	src, format, err := openSource(rc, detectFormat(name, meta.ContentType))
	sum := Summary{Format: format, Errors: []importitems.RowError{}}
	if err != nil {
		return sum, fmt.Errorf("read %s: %w", format, err)
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close()
	}

	if missing := missingColumns(src.Header(), s.Processor.Columns()); len(missing) > 0 {
		return sum, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	recordID := ports.ImportRecordFromContext(ctx)
	for row := 1; ; row++ {
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// a malformed csv line only costs that row
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return sum, fmt.Errorf("read row %d: %w", row, err)
			}
			sum.add(row, err)
			s.journalRow(ctx, recordID, row, nil, "", err)
			continue
		}

		id, err := s.Processor.ProcessRow(ctx, row, rec)
		if err != nil {
			sum.add(row, err)
		} else {
			sum.Succeeded++
		}
		s.journalRow(ctx, recordID, row, rec, id, err)
	}
	return sum, nil
}

func (s *Service) journalRow(ctx context.Context, recordID string, row int, rec map[string]string, modelID string, err error) {
	if s.Journal == nil || recordID == "" {
		return
	}
	p := importitems.LogParams{
		ImportRecordID: recordID,
		Row:            row,
		ModelID:        modelID,
		Payload:        rec,
		Status:         importitems.StatusDone,
	}
	if err != nil {
		p.Status = importitems.StatusFailed
		p.Errors = err.Error()
	}
	s.Journal.Row(ctx, p)
}

func (s *Service) begin(ctx context.Context, req Request) string {
	if s.Journal == nil {
		return ""
	}
	id, err := s.Journal.Begin(ctx, importitems.Record{
		OwnerID:  req.OwnerID,
		Status:   importitems.StatusProcessing,
		FileName: req.FileName,
		Path:     req.FilePath,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("owner_id", req.OwnerID).Msg("begin import record")
		return ""
	}
	return id
}

func (s *Service) finish(ctx context.Context, id string, out importitems.Outcome) {
	if s.Journal == nil || id == "" {
		return
	}
	if err := s.Journal.Finish(ctx, id, out); err != nil {
		s.log.Warn().Err(err).Str("import_record_id", id).Msg("finish import record")
	}
}

func missingColumns(header, required []string) []string {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	var missing []string
	for _, r := range required {
		if !have[r] {
			missing = append(missing, r)
		}
	}
	return missing
}
