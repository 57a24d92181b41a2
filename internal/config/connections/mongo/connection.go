package mongo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type ConnectionInfo struct {
	Scheme     string
	User       string
	Password   string
	Host       string
	Port       string
	DB         string
	AuthSource string
}

func (i ConnectionInfo) URI() string {
	u := url.URL{Scheme: i.Scheme, Host: i.Host, Path: "/" + i.DB}
	if u.Scheme == "" {
		u.Scheme = "mongodb"
	}
	if i.Port != "" {
		u.Host += ":" + i.Port
	}
	if i.User != "" {
		u.User = url.UserPassword(i.User, i.Password)
	}
	if i.AuthSource != "" {
		u.RawQuery = "authSource=" + url.QueryEscape(i.AuthSource)
	}
	return u.String()
}

type Mongo struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewConnection(ctx context.Context, info ConnectionInfo) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(info.URI()))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, err
	}

	return &Mongo{Client: client, Database: client.Database(info.DB)}, nil
}

// EnsureIndexes creates the lookup indexes of the import collections.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	models := map[string][]mongo.IndexModel{
		"import_records": {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		"import_record_items": {
			{Keys: bson.D{{Key: "import_record_id", Value: 1}, {Key: "row", Value: 1}}},
		},
	}
	for coll, idx := range models {
		if _, err := m.Database.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func (m *Mongo) Close(ctx context.Context) error {
	if m.Client != nil {
		return m.Client.Disconnect(ctx)
	}
	return nil
}
