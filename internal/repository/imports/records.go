package importitems

import (
	"context"
	"fmt"
	"time"

	mg "invoice_recorder/internal/config/connections/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ImportRecordsCollection = "import_records"

const (
	StatusParsed     = "parsed"
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

type RowError struct {
	Row     int    `bson:"row" json:"row"`
	Message string `bson:"message" json:"message"`
}

type Record struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   string             `bson:"owner_id" json:"owner_id"`
	Status    string             `bson:"status" json:"status"`
	FileName  string             `bson:"file_name" json:"file_name"`
	Path      string             `bson:"path" json:"path"`
	Format    string             `bson:"format,omitempty" json:"format,omitempty"`
	Succeeded int                `bson:"succeeded" json:"succeeded"`
	Failed    int                `bson:"failed" json:"failed"`
	Errors    []RowError         `bson:"errors,omitempty" json:"errors,omitempty"`
	Message   string             `bson:"message,omitempty" json:"message,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Outcome is what gets written back on a record once its import ends.
type Outcome struct {
	Status    string
	Format    string
	Succeeded int
	Failed    int
	Errors    []RowError
	Message   string
}

func InsertImportRecord(ctx context.Context, m *mg.Mongo, rec Record) (string, error) {
	if m == nil || m.Client == nil || m.Database == nil {
		return "", mongo.ErrClientDisconnected
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if rec.Status == "" {
		rec.Status = StatusParsed
	}

	res, err := m.Database.Collection(ImportRecordsCollection).InsertOne(ctx, rec, options.InsertOne())
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id %v", res.InsertedID)
	}
	return oid.Hex(), nil
}

func UpdateImportRecordStatus(ctx context.Context, m *mg.Mongo, importRecordID, status string) error {
	return updateImportRecord(ctx, m, importRecordID, bson.M{"status": status})
}

func FinishImportRecord(ctx context.Context, m *mg.Mongo, importRecordID string, out Outcome) error {
	return updateImportRecord(ctx, m, importRecordID, bson.M{
		"status":    out.Status,
		"format":    out.Format,
		"succeeded": out.Succeeded,
		"failed":    out.Failed,
		"errors":    out.Errors,
		"message":   out.Message,
	})
}

func updateImportRecord(ctx context.Context, m *mg.Mongo, importRecordID string, set bson.M) error {
	if m == nil || m.Database == nil {
		return mongo.ErrClientDisconnected
	}
	oid, err := primitive.ObjectIDFromHex(importRecordID)
	if err != nil {
		return fmt.Errorf("bad import record id %q: %w", importRecordID, err)
	}

	set["updated_at"] = time.Now().UTC()
	res, err := m.Database.Collection(ImportRecordsCollection).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no import_record found with id %s", importRecordID)
	}
	return nil
}

// FindImportRecord only returns records owned by ownerID.
func FindImportRecord(ctx context.Context, m *mg.Mongo, ownerID, id string) (Record, error) {
	var out Record
	if m == nil || m.Database == nil {
		return out, mongo.ErrClientDisconnected
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return out, mongo.ErrNoDocuments
	}
	err = m.Database.Collection(ImportRecordsCollection).
		FindOne(ctx, bson.M{"_id": oid, "owner_id": ownerID}).
		Decode(&out)
	return out, err
}

func ListImportRecords(ctx context.Context, m *mg.Mongo, ownerID string, limit, skip int64) ([]Record, int64, error) {
	if m == nil || m.Database == nil {
		return nil, 0, mongo.ErrClientDisconnected
	}
	coll := m.Database.Collection(ImportRecordsCollection)
	filter := bson.M{"owner_id": ownerID}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if skip > 0 {
		opts.SetSkip(skip)
	}

	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	recs := make([]Record, 0)
	for cur.Next(ctx) {
		var r Record
		if err := cur.Decode(&r); err != nil {
			continue
		}
		recs = append(recs, r)
	}
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		total = int64(len(recs))
	}
	return recs, total, nil
}
