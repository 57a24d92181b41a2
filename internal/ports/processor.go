package ports

import "context"

type ctxKey string

const (
	CtxImportRecordID ctxKey = "import_record_id"
	CtxOwnerID        ctxKey = "owner_id"
)

// Processor turns one data row into a stored record.
type Processor interface {
	Type() string
	// Columns are the header names that must be present before any row runs.
	Columns() []string
	// ProcessRow returns the id of the stored record.
	ProcessRow(ctx context.Context, row int, rec map[string]string) (string, error)
}

// RowSource yields data rows keyed by header name; Next returns io.EOF when
// the rows are exhausted.
type RowSource interface {
	Header() []string
	Next() (map[string]string, error)
}

func OwnerFromContext(ctx context.Context) string {
	v, _ := ctx.Value(CtxOwnerID).(string)
	return v
}

func ImportRecordFromContext(ctx context.Context) string {
	v, _ := ctx.Value(CtxImportRecordID).(string)
	return v
}
