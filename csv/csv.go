package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sanket/monitor/appcontext"
	"sanket/monitor/datalake/model"

	"github.com/shopspring/decimal"
)

// Column names of the transaction log.
const (
	ColumnID         = "transaction_id"
	ColumnCategory   = "transaction_type"
	ColumnAmount     = "amount"
	ColumnLatency    = "latency_ms"
	ColumnCurrency   = "currency"
	ColumnStatusCode = "status_code"
)

// Header is the column order written by WriteTransactions.
var Header = []string{ColumnID, ColumnCategory, ColumnAmount, ColumnLatency, ColumnCurrency, ColumnStatusCode}

// ErrInputNotFound is returned when the transaction log does not exist.
var ErrInputNotFound = errors.New("input file not found")
var errInvalidRecord = errors.New("invalid transaction record")
var errProcessCsv = errors.New("error while parsing CSV file")

// MissingInputError reports a missing transaction log at path.
func MissingInputError(path string) error {
	return fmt.Errorf("%w: %s", ErrInputNotFound, path)
}

// InvalidRecordError reports a row whose column could not be converted.
func InvalidRecordError(column, value string) error {
	return fmt.Errorf("%w: column %s has value %q", errInvalidRecord, column, value)
}

// ProcessCsvError reports a file that could not be read as CSV.
func ProcessCsvError(filename string, err error) error {
	return fmt.Errorf("%s, %w: %w", filename, errProcessCsv, err)
}

// ReadTransactions loads every valid transaction from the CSV file at filePath.
// Rows that cannot be converted are skipped with a warning.
func ReadTransactions(ctx context.Context, filePath string) ([]model.Transaction, error) {
	logger := appcontext.LoggerFromContext(ctx)

	rows, _, err := NewRecordParser().Parse(ctx, filePath, "")
	if err != nil {
		return nil, err
	}

	transactions := make([]model.Transaction, 0, len(rows))
	for i, row := range rows {
		tx, convErr := ToTransaction(row)
		if convErr != nil {
			logger.WarnContext(ctx, "Skipping invalid record", "file", filePath, "row", i+1, "error", convErr)
			continue
		}
		transactions = append(transactions, tx)
	}

	logger.DebugContext(ctx, "Loaded transactions", "file", filePath, "count", len(transactions))
	return transactions, nil
}

// ToTransaction converts a header-keyed row into a transaction.
func ToTransaction(row map[string]string) (model.Transaction, error) {
	category := model.NormalizeCategory(row[ColumnCategory])
	if category == "" {
		return model.Transaction{}, InvalidRecordError(ColumnCategory, row[ColumnCategory])
	}

	amountStr := strings.TrimSpace(row[ColumnAmount])
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return model.Transaction{}, InvalidRecordError(ColumnAmount, amountStr)
	}

	latency, err := parseInt(row[ColumnLatency])
	if err != nil {
		return model.Transaction{}, InvalidRecordError(ColumnLatency, row[ColumnLatency])
	}

	status, err := parseInt(row[ColumnStatusCode])
	if err != nil {
		return model.Transaction{}, InvalidRecordError(ColumnStatusCode, row[ColumnStatusCode])
	}

	return model.Transaction{
		ID:         strings.TrimSpace(row[ColumnID]),
		Category:   category,
		Amount:     amount,
		LatencyMs:  latency,
		Currency:   strings.TrimSpace(row[ColumnCurrency]),
		StatusCode: status,
		DataSource: row[columnDataSource],
	}, nil
}

var (
	minIntColumn = decimal.NewFromInt(math.MinInt32)
	maxIntColumn = decimal.NewFromInt(math.MaxInt32)
)

// parseInt accepts integer columns, including integral values written as
// floats ("200.0", "5e3"). Fractions and values outside the int32 range fail.
func parseInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil && n >= math.MinInt32 && n <= math.MaxInt32 {
		return n, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%s is not a whole number", raw)
	}
	if d.LessThan(minIntColumn) || d.GreaterThan(maxIntColumn) {
		return 0, fmt.Errorf("%s is out of range", raw)
	}
	return int(d.IntPart()), nil
}

// WriteTransactions writes transactions to filePath, creating parent directories.
func WriteTransactions(filePath string, transactions []model.Transaction) error {
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory '%s': %w", dir, err)
		}
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file '%s': %w", filePath, err)
	}
	defer file.Close()

	if err := Write(file, transactions); err != nil {
		return fmt.Errorf("failed to write '%s': %w", filePath, err)
	}
	return nil
}

// Write encodes transactions as CSV with the standard header.
func Write(w io.Writer, transactions []model.Transaction) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, tx := range transactions {
		row := []string{
			tx.ID,
			tx.Category.String(),
			tx.Amount.StringFixed(2),
			strconv.Itoa(tx.LatencyMs),
			tx.Currency,
			strconv.Itoa(tx.StatusCode),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
