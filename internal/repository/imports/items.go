package importitems

import (
	"context"
	"encoding/json"
	"time"

	mg "invoice_recorder/internal/config/connections/mongo"
	"invoice_recorder/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ImportRecordItemsCollection = "import_record_items"

const ModelTypeInvoices = "invoices"

// Item is the per-row trace of an import: one document per data row.
type Item struct {
	ImportRecordID string    `bson:"import_record_id" json:"import_record_id"`
	Row            int       `bson:"row" json:"row"`
	ModelType      string    `bson:"model_type" json:"model_type"`
	ModelID        string    `bson:"model_id,omitempty" json:"model_id,omitempty"`
	Payload        string    `bson:"payload" json:"payload"`
	Status         string    `bson:"status" json:"status"`
	Errors         string    `bson:"errors,omitempty" json:"errors,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}

type LogParams struct {
	ImportRecordID string
	Row            int
	ModelID        string
	Payload        map[string]string
	Status         string
	Errors         string
}

func InsertItem(ctx context.Context, m *mg.Mongo, item Item) error {
	if m == nil || m.Client == nil || m.Database == nil {
		return mongo.ErrClientDisconnected
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	_, err := m.Database.Collection(ImportRecordItemsCollection).InsertOne(ctx, item, options.InsertOne())
	return err
}

func ListItems(ctx context.Context, m *mg.Mongo, importRecordID string, onlyFailed bool) ([]Item, error) {
	if m == nil || m.Database == nil {
		return nil, mongo.ErrClientDisconnected
	}
	filter := bson.M{"import_record_id": importRecordID}
	if onlyFailed {
		filter["status"] = StatusFailed
	}
	cur, err := m.Database.Collection(ImportRecordItemsCollection).
		Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "row", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]Item, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func LogRowFail(ctx context.Context, mgc *mg.Mongo, p LogParams) {
	p.Status = StatusFailed
	LogRow(ctx, mgc, p)
}

// LogRow is best effort: a missing Mongo connection or a failed insert never
// fails the row itself.
func LogRow(ctx context.Context, mgc *mg.Mongo, p LogParams) {
	if mgc == nil || mgc.Database == nil || p.ImportRecordID == "" {
		return
	}

	b, _ := json.Marshal(p.Payload)

	err := InsertItem(ctx, mgc, Item{
		ImportRecordID: p.ImportRecordID,
		Row:            p.Row,
		ModelType:      ModelTypeInvoices,
		ModelID:        p.ModelID,
		Payload:        string(b),
		Status:         p.Status,
		Errors:         p.Errors,
	})
	if err != nil {
		log := logger.WithComponent("import_items")
		log.Error().Err(err).
			Str("import_record_id", p.ImportRecordID).
			Int("row", p.Row).
			Str("status", p.Status).
			Msg("store import item")
	}
}
