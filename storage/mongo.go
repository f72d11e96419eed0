package storage

import (
	"context"
	"fmt"
	"time"

	"sanket/monitor/appcontext"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	// DefaultDatabase is used when the connection URI names no database.
	DefaultDatabase = "datalake"

	appName                = "sanket-monitor"
	serverSelectionTimeout = 5 * time.Second
)

// DataStore is the subset of *mongo.Collection the repository writes through.
type DataStore interface {
	BulkWrite(
		ctx context.Context,
		models []mongo.WriteModel,
		opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error)
	InsertOne(
		ctx context.Context,
		document interface{},
		opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// IndexedStore is implemented by stores that can declare indexes.
type IndexedStore interface {
	EnsureIndexes(ctx context.Context, models []mongo.IndexModel) error
}

// CollectionProvider hands out stores by collection name.
type CollectionProvider interface {
	Collection(name string) DataStore
}

// MongoCollection adapts *mongo.Collection to DataStore and IndexedStore.
type MongoCollection struct {
	*mongo.Collection
}

// BulkWrite performs a bulk write.
func (c *MongoCollection) BulkWrite(
	ctx context.Context,
	models []mongo.WriteModel,
	opts ...*options.BulkWriteOptions) (*mongo.BulkWriteResult, error) {
	result, err := c.Collection.BulkWrite(ctx, models, opts...)
	if err != nil {
		return result, fmt.Errorf("bulk write to %s: %w", c.Name(), err)
	}
	return result, nil
}

// InsertOne inserts a single document.
func (c *MongoCollection) InsertOne(
	ctx context.Context,
	document interface{},
	opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	result, err := c.Collection.InsertOne(ctx, document, opts...)
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", c.Name(), err)
	}
	return result, nil
}

// EnsureIndexes creates the given indexes; existing identical indexes are left alone.
func (c *MongoCollection) EnsureIndexes(ctx context.Context, models []mongo.IndexModel) error {
	if _, err := c.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create indexes on %s: %w", c.Name(), err)
	}
	return nil
}

// MongoProvider serves collections of one database.
type MongoProvider struct {
	client   MongoClient
	database string
}

// NewMongoProvider creates a provider for database, or DefaultDatabase when empty.
func NewMongoProvider(client MongoClient, database string) *MongoProvider {
	if database == "" {
		database = DefaultDatabase
	}
	return &MongoProvider{client: client, database: database}
}

// Collection returns the named collection of the provider's database.
func (p *MongoProvider) Collection(name string) DataStore {
	return &MongoCollection{p.client.Database(p.database).Collection(name)}
}

// DatabaseFromURI returns the database named in the path of a connection URI,
// or DefaultDatabase when there is none or the URI does not parse.
func DatabaseFromURI(uri string) string {
	cs, err := connstring.Parse(uri)
	if err != nil || cs.Database == "" {
		return DefaultDatabase
	}
	return cs.Database
}

// ConnectToMongoDB dials uri and verifies the primary is reachable.
func ConnectToMongoDB(ctx context.Context, uri string) (*mongo.Client, error) {
	logger := appcontext.LoggerFromContext(ctx)
	logger.DebugContext(ctx, "Connecting to MongoDB", "database", DatabaseFromURI(uri))

	clientOptions := options.Client().
		ApplyURI(uri).
		SetAppName(appName).
		SetServerSelectionTimeout(serverSelectionTimeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.InfoContext(ctx, "Connected to MongoDB")
	return client, nil
}
