package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// DefaultDatabase is the MongoDB database used when none is configured.
const DefaultDatabase = "genops"

// mongoRecord is the BSON form of a Document. The cache key is the _id.
type mongoRecord struct {
	ID        string `bson:"_id"`
	Result    string `bson:"result"`
	CreatedAt int64  `bson:"createdAt"`
	Operation string `bson:"operation"`
}

func toMongoRecord(key string, doc Document) mongoRecord {
	return mongoRecord{
		ID:        key,
		Result:    string(doc.Result),
		CreatedAt: doc.CreatedAt,
		Operation: doc.Operation,
	}
}

func (r mongoRecord) document() Document {
	return Document{
		Result:    []byte(r.Result),
		CreatedAt: r.CreatedAt,
		Operation: r.Operation,
	}
}

// Mongo maps each collection to a MongoDB collection in one database.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	owned  bool
}

// NewMongo wraps an existing client.
func NewMongo(client *mongo.Client, database string) *Mongo {
	if database == "" {
		database = DefaultDatabase
	}
	return &Mongo{client: client, db: client.Database(database)}
}

// OpenMongo connects to uri and verifies the connection.
func OpenMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("store: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("store: mongo ping: %w", err)
	}

	m := NewMongo(client, database)
	m.owned = true
	return m, nil
}

func (m *Mongo) Get(ctx context.Context, collection, key string) (Document, bool, error) {
	if err := validateAddress(collection, key); err != nil {
		return Document{}, false, err
	}

	var rec mongoRecord
	err := m.db.Collection(collection).FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, fmt.Errorf("store: mongo get: %w", err)
	}
	return rec.document(), true, nil
}

func (m *Mongo) Set(ctx context.Context, collection, key string, doc Document) error {
	if err := validateAddress(collection, key); err != nil {
		return err
	}

	_, err := m.db.Collection(collection).ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: key}},
		toMongoRecord(key, doc),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("store: mongo set: %w", err)
	}
	return nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client if OpenMongo created it.
func (m *Mongo) Close(ctx context.Context) error {
	if !m.owned {
		return nil
	}
	return m.client.Disconnect(ctx)
}

var (
	_ Store  = (*Mongo)(nil)
	_ Pinger = (*Mongo)(nil)
	_ Closer = (*Mongo)(nil)
)
