package storage

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoClient is the part of *mongo.Client the stress lab depends on; tests
// substitute a fake.
type MongoClient interface {
	Database(name string, opts ...*options.DatabaseOptions) *mongo.Database
	Disconnect(ctx context.Context) error
}

// Connector opens a MongoClient for a connection URI.
type Connector func(ctx context.Context, uri string) (MongoClient, error)

// Connect dials uri with ConnectToMongoDB. It is the production Connector.
func Connect(ctx context.Context, uri string) (MongoClient, error) {
	client, err := ConnectToMongoDB(ctx, uri)
	if err != nil {
		return nil, err
	}
	return NewMongoClient(client), nil
}

// NewMongoClient exposes client as a MongoClient.
func NewMongoClient(client *mongo.Client) MongoClient {
	return driverClient{client}
}

type driverClient struct {
	*mongo.Client
}
