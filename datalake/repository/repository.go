// Package repository declares where ingested transactions and audit runs are kept.
package repository

import (
	"context"

	"sanket/monitor/datalake/model"
)

// Repository persists transaction logs and aggregation snapshots.
type Repository interface {
	// BulkUpsertTransactions stores a batch from a single data source. Re-running
	// the same batch updates rows in place.
	BulkUpsertTransactions(ctx context.Context, transactions []model.Transaction) error
	// SaveAudit appends one aggregation run.
	SaveAudit(ctx context.Context, snapshot model.AuditSnapshot) error
}
