package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sanket/monitor/appcontext"
	"sanket/monitor/datalake/model"
	"sanket/monitor/datalake/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	TransactionsCollection = "transactions"
	AuditsCollection       = "audits"
	syncTableName          = "dataSync"
	unknownDataSource      = "unknown"
)

// transactionDocument is the stored form of a model.Transaction.
type transactionDocument struct {
	TransactionID   string               `bson:"transaction_id"`
	TransactionType string               `bson:"transaction_type"`
	Amount          primitive.Decimal128 `bson:"amount"`
	LatencyMs       int                  `bson:"latency_ms"`
	Currency        string               `bson:"currency"`
	StatusCode      int                  `bson:"status_code"`
	IsError         bool                 `bson:"is_error"`
	IsSlow          bool                 `bson:"is_slow"`
	DataSource      string               `bson:"dataSource"`
	SourceRun       string               `bson:"source_run"`
}

func toDocument(tx model.Transaction) (transactionDocument, error) {
	amount, err := primitive.ParseDecimal128(tx.Amount.String())
	if err != nil {
		return transactionDocument{}, fmt.Errorf("invalid amount %s for transaction %s: %w", tx.Amount, tx.ID, err)
	}
	return transactionDocument{
		TransactionID:   tx.ID,
		TransactionType: tx.Category.String(),
		Amount:          amount,
		LatencyMs:       tx.LatencyMs,
		Currency:        tx.Currency,
		StatusCode:      tx.StatusCode,
		IsError:         tx.IsError(),
		IsSlow:          tx.IsSlow(),
		DataSource:      tx.DataSource,
		SourceRun:       tx.SourceRun,
	}, nil
}

// transactionIndexes makes the upsert key unique within a collection.
var transactionIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "transaction_id", Value: 1}, {Key: "dataSource", Value: 1}, {Key: "source_run", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("transaction_source_run"),
	},
	{
		Keys:    bson.D{{Key: "transaction_type", Value: 1}, {Key: "is_error", Value: 1}},
		Options: options.Index().SetName("category_error"),
	},
}

// MongoRepository implements repository.Repository on top of a CollectionProvider.
type MongoRepository struct {
	provider CollectionProvider
	now      func() time.Time

	mu      sync.Mutex
	indexed map[string]bool
}

// NewMongoRepository creates a new MongoRepository.
func NewMongoRepository(provider CollectionProvider) *MongoRepository {
	return &MongoRepository{
		provider: provider,
		now:      time.Now,
		indexed:  make(map[string]bool),
	}
}

// ensureIndexes declares transactionIndexes once per collection and repository.
func (r *MongoRepository) ensureIndexes(ctx context.Context, name string, collection DataStore) error {
	store, ok := collection.(IndexedStore)
	if !ok {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexed[name] {
		return nil
	}
	if err := store.EnsureIndexes(ctx, transactionIndexes); err != nil {
		return err
	}
	r.indexed[name] = true
	return nil
}

// CollectionName returns the transactions collection for a data source.
func CollectionName(dataSource string) string {
	if dataSource == "" {
		dataSource = unknownDataSource
	}
	return fmt.Sprintf("%s_%s", TransactionsCollection, dataSource)
}

// BulkUpsertTransactions bulk upserts transactions into the "transactions_<dataSource>" collection.
func (r *MongoRepository) BulkUpsertTransactions(ctx context.Context, transactions []model.Transaction) error {
	if len(transactions) == 0 {
		return nil // Nothing to upsert
	}

	// One file is one data source, so a batch shares the source of its first row.
	dataSource := transactions[0].DataSource

	models := make([]mongo.WriteModel, 0, len(transactions))
	for _, tx := range transactions {
		doc, err := toDocument(tx)
		if err != nil {
			return err
		}
		filter := bson.M{
			"transaction_id": doc.TransactionID,
			"dataSource":     doc.DataSource,
			"source_run":     doc.SourceRun,
		}
		update := bson.M{"$set": doc}
		models = append(models, mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update).SetUpsert(true))
	}

	collectionName := CollectionName(dataSource)
	collection := r.provider.Collection(collectionName)
	if err := r.ensureIndexes(ctx, collectionName, collection); err != nil {
		return err
	}

	result, err := collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("failed to perform bulk write for collection %s: %w", collectionName, err)
	}

	syncLog := model.SyncLog{
		CollectionName:  collectionName,
		DataSource:      dataSource,
		RunID:           appcontext.RunIDFromContext(ctx),
		SyncTimestamp:   r.now(),
		RecordsUploaded: int64(len(transactions)),
	}
	if result != nil {
		syncLog.RecordsInserted = result.UpsertedCount
		syncLog.RecordsUpdated = result.ModifiedCount
	}
	if _, err := r.provider.Collection(syncTableName).InsertOne(ctx, syncLog); err != nil {
		return fmt.Errorf("failed to insert into dataSync collection: %w", err)
	}

	appcontext.LoggerFromContext(ctx).DebugContext(ctx, "Upserted transactions",
		"collection", collectionName, "inserted", syncLog.RecordsInserted, "updated", syncLog.RecordsUpdated)
	return nil
}

// SaveAudit stores one aggregation run in the audits collection.
func (r *MongoRepository) SaveAudit(ctx context.Context, snapshot model.AuditSnapshot) error {
	_, err := r.provider.Collection(AuditsCollection).InsertOne(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("failed to insert into %s collection: %w", AuditsCollection, err)
	}
	return nil
}

// WithRepository connects with connect, runs fn against a MongoRepository on the
// database named by uri and disconnects.
func WithRepository(
	ctx context.Context,
	connect Connector,
	uri string,
	fn func(repo repository.Repository) error,
) error {
	client, err := connect(ctx, uri)
	if err != nil {
		return err
	}
	defer func() {
		if deferErr := client.Disconnect(ctx); deferErr != nil {
			appcontext.LoggerFromContext(ctx).ErrorContext(ctx, "Error disconnecting from MongoDB", "error", deferErr)
		}
	}()

	return fn(NewMongoRepository(NewMongoProvider(client, DatabaseFromURI(uri))))
}
