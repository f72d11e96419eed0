package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// ErrorStatusCode marks a transaction that failed at the protocol level.
	ErrorStatusCode = 500
	// SlowLatencyThresholdMs is the latency above which a healthy transaction is slow.
	SlowLatencyThresholdMs = 500
)

// Category is the kind of a transaction (the "transaction_type" column).
type Category string

const (
	Debit    Category = "DEBIT"
	Credit   Category = "CREDIT"
	Transfer Category = "TRANSFER"
	Payment  Category = "PAYMENT"
)

// Categories lists the known transaction kinds.
var Categories = []Category{Debit, Credit, Transfer, Payment}

// NormalizeCategory upper-cases and trims a raw category value.
func NormalizeCategory(raw string) Category {
	return Category(strings.ToUpper(strings.TrimSpace(raw)))
}

// Known reports whether c is one of the fixed transaction kinds.
func (c Category) Known() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// Transaction represents a single row of a transaction log.
type Transaction struct {
	ID         string
	Category   Category
	Amount     decimal.Decimal
	LatencyMs  int
	Currency   string
	StatusCode int
	DataSource string
	// SourceRun is the run suffix of the ingested file ("run1" for
	// stress_test_logs_run1.csv); empty for files without one.
	SourceRun string
}

// IsError reports whether the transaction leaked: a negative amount or a 500 status.
func (t Transaction) IsError() bool {
	return t.Amount.IsNegative() || t.StatusCode == ErrorStatusCode
}

// IsSlow reports whether a non-failing transaction exceeded the latency threshold.
func (t Transaction) IsSlow() bool {
	return t.LatencyMs > SlowLatencyThresholdMs && !t.IsError()
}
