package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"sanket/monitor/appcontext"
)

// columnDataSource is the synthetic key under which parsers record the data source.
const columnDataSource = "_data_source"

// Parser defines the interface for parsing CSV data.
type Parser interface {
	Parse(ctx context.Context, filePath string, dataSource string) ([]map[string]string, int64, error)
}

// RecordParser returns each row keyed by its lower-cased header name.
type RecordParser struct{}

// NewRecordParser creates a new RecordParser.
func NewRecordParser() *RecordParser {
	return &RecordParser{}
}

// Parse reads the file at filePath. An empty file yields no rows and no error.
func (p *RecordParser) Parse(
	ctx context.Context,
	filePath string,
	dataSource string,
) ([]map[string]string, int64, error) {
	logger := appcontext.LoggerFromContext(ctx)
	logger.DebugContext(ctx, "Parsing data from csv", "filePath", filePath, "dataSource", dataSource)

	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, MissingInputError(filePath)
		}
		return nil, 0, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.Comma = ','

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, nil
		}
		return nil, 0, ProcessCsvError(filePath, err)
	}
	for i, col := range header {
		header[i] = strings.ToLower(strings.TrimSpace(col))
	}

	var rows []map[string]string
	var recordsProcessed int64

	for {
		record, readErr := reader.Read()
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return nil, 0, ProcessCsvError(filePath, readErr)
		}

		if len(record) < len(header) {
			logger.WarnContext(ctx, "Skipping invalid record", "reason", "not enough columns", "file", filePath)
			continue
		}

		row := make(map[string]string, len(header)+1)
		for i, col := range header {
			row[col] = safeGet(record, i)
		}
		if dataSource != "" {
			row[columnDataSource] = dataSource
		}

		rows = append(rows, row)
		recordsProcessed++
	}

	return rows, recordsProcessed, nil
}

// safeGet retrieves slice[index] safely.
func safeGet(slice []string, index int) string {
	if index < len(slice) {
		return slice[index]
	}

	return ""
}
