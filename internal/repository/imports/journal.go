package importitems

import (
	"context"

	mg "invoice_recorder/internal/config/connections/mongo"
)

// Journal keeps import_records and import_record_items for one Mongo
// database.
type Journal struct {
	M *mg.Mongo
}

func NewJournal(m *mg.Mongo) *Journal { return &Journal{M: m} }

func (j *Journal) Begin(ctx context.Context, rec Record) (string, error) {
	return InsertImportRecord(ctx, j.M, rec)
}

func (j *Journal) Row(ctx context.Context, p LogParams) {
	LogRow(ctx, j.M, p)
}

func (j *Journal) Finish(ctx context.Context, id string, out Outcome) error {
	return FinishImportRecord(ctx, j.M, id, out)
}

func (j *Journal) List(ctx context.Context, ownerID string, limit, skip int64) ([]Record, int64, error) {
	return ListImportRecords(ctx, j.M, ownerID, limit, skip)
}

func (j *Journal) Find(ctx context.Context, ownerID, id string) (Record, error) {
	return FindImportRecord(ctx, j.M, ownerID, id)
}

func (j *Journal) Items(ctx context.Context, importRecordID string, onlyFailed bool) ([]Item, error) {
	return ListItems(ctx, j.M, importRecordID, onlyFailed)
}
