package synthetic

import (
	"fmt"
	"math/rand"

	"sanket/monitor/csv"
	"sanket/monitor/datalake/model"

	"github.com/shopspring/decimal"
)

// Ranges of the healthy baseline traffic.
const (
	firstBaselineID  = 10000
	minAmount        = 10.0
	maxAmount        = 500.0
	minLatencyMs     = 50
	maxLatencyMs     = 250 // exclusive
	baselineCurrency = "USD"
	baselineStatus   = 200
)

// GenerateBaseline creates rows of normal transactions: category uniform over the
// known kinds, amount uniform in [10,500] rounded to cents, latency uniform in
// [50,250) ms, status 200.
func GenerateBaseline(rng *rand.Rand, rows int) []model.Transaction {
	transactions := make([]model.Transaction, rows)
	for i := range transactions {
		amount := minAmount + rng.Float64()*(maxAmount-minAmount)
		transactions[i] = model.Transaction{
			ID:         fmt.Sprintf("TXN-%d", firstBaselineID+i),
			Category:   model.Categories[rng.Intn(len(model.Categories))],
			Amount:     decimal.NewFromFloat(amount).Round(2),
			LatencyMs:  minLatencyMs + rng.Intn(maxLatencyMs-minLatencyMs),
			Currency:   baselineCurrency,
			StatusCode: baselineStatus,
			DataSource: "baseline",
		}
	}
	return transactions
}

// GenerateSyntheticData creates a CSV file with rows of baseline data at filePath.
func GenerateSyntheticData(rng *rand.Rand, rows int, filePath string) ([]model.Transaction, error) {
	transactions := GenerateBaseline(rng, rows)
	if err := csv.WriteTransactions(filePath, transactions); err != nil {
		return nil, fmt.Errorf("failed to write baseline data: %w", err)
	}
	return transactions, nil
}
