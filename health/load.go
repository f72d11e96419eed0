package health

import (
	"context"
	"errors"
	"fmt"

	"sanket/monitor/csv"
)

// LoadFile reads the transaction log at path and aggregates it.
func LoadFile(ctx context.Context, path string) (Result, error) {
	transactions, err := csv.ReadTransactions(ctx, path)
	if err != nil {
		if errors.Is(err, csv.ErrInputNotFound) {
			return Result{}, fmt.Errorf("%w (run inject-stress first)", err)
		}
		return Result{}, fmt.Errorf("failed to read transaction log: %w", err)
	}
	return Aggregate(transactions), nil
}
