package model

import "time"

// SyncLog is one entry of the dataSync collection, written after every bulk upsert.
type SyncLog struct {
	CollectionName  string    `bson:"collection_name"`
	DataSource      string    `bson:"data_source"`
	RunID           string    `bson:"run_id,omitempty"`
	SyncTimestamp   time.Time `bson:"sync_timestamp"`
	RecordsUploaded int64     `bson:"records_uploaded"`
	// RecordsInserted and RecordsUpdated split RecordsUploaded by upsert outcome.
	RecordsInserted int64 `bson:"records_inserted"`
	RecordsUpdated  int64 `bson:"records_updated"`
}
