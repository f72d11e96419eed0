package datalake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sanket/monitor/appcontext"
	"sanket/monitor/csv"
	"sanket/monitor/datalake/datasource"
	"sanket/monitor/datalake/model"
	"sanket/monitor/datalake/repository"
)

// csvFileProcessor ingests single files of a directory.
type csvFileProcessor struct {
	repo               repository.Repository
	extractor          datasource.InfoExtractor
	parser             csv.Parser
	unprocessedDir     string
	processedDir       string
	moveProcessedFiles bool
	stats              *Stats
}

func newCSVFileProcessor(
	repo repository.Repository,
	extractor datasource.InfoExtractor,
	parser csv.Parser,
	unprocessedDir string,
	processedDir string,
	moveProcessedFiles bool,
	stats *Stats,
) *csvFileProcessor {
	return &csvFileProcessor{
		repo:               repo,
		extractor:          extractor,
		parser:             parser,
		unprocessedDir:     unprocessedDir,
		processedDir:       processedDir,
		moveProcessedFiles: moveProcessedFiles,
		stats:              stats,
	}
}

// Return true only if the entry pointed to by FILE is valid.
func validateFile(
	file os.DirEntry,
) bool {
	if file.IsDir() || !strings.EqualFold(filepath.Ext(file.Name()), ".csv") {
		return false
	}
	return true
}

// ingestCSVFile parses, converts and upserts one file, then optionally moves it.
func (p *csvFileProcessor) ingestCSVFile(ctx context.Context, file os.DirEntry) error {
	sourceInfo, err := p.extractor.ExtractInfo(file.Name())
	if err != nil {
		return fmt.Errorf("failed to extract source info: %w", err)
	}

	cleanFileName := filepath.Clean(file.Name())
	if strings.HasPrefix(cleanFileName, "..") {
		return csv.MissingInputError(file.Name())
	}

	filePath := filepath.Join(p.unprocessedDir, cleanFileName)
	rawRecords, _, err := p.parser.Parse(ctx, filePath, sourceInfo.DataSource)
	if err != nil {
		return err
	}

	transactions := mapRawRecordsToTransactions(ctx, rawRecords, *sourceInfo)
	p.stats.AddRecords(sourceInfo.DataSource, len(transactions), len(rawRecords)-len(transactions))

	if err = p.repo.BulkUpsertTransactions(ctx, transactions); err != nil {
		return fmt.Errorf("failed to bulk upsert transactions: %w", err)
	}

	if p.moveProcessedFiles {
		err = moveFile(filePath, p.processedDir)
		if err != nil {
			return fmt.Errorf("failed to move file: %w", err)
		}
	}

	return nil
}

// mapRawRecordsToTransactions converts raw CSV records into transactions, skipping
// the rows that fail conversion.
func mapRawRecordsToTransactions(
	ctx context.Context,
	rawRecords []map[string]string,
	source datasource.SourceInfo,
) []model.Transaction {
	logger := appcontext.LoggerFromContext(ctx)
	transactions := make([]model.Transaction, 0, len(rawRecords))

	for _, record := range rawRecords {
		tx, err := csv.ToTransaction(record)
		if err != nil {
			logger.WarnContext(ctx, "Skipping invalid record", "record", record, "error", err)
			continue
		}
		if tx.DataSource == "" {
			tx.DataSource = source.DataSource
		}
		tx.SourceRun = source.RunID
		transactions = append(transactions, tx)
	}

	return transactions
}

func moveFile(filePath, processedDir string) error {
	var err error
	if _, err = os.Stat(processedDir); os.IsNotExist(err) {
		if err = os.MkdirAll(processedDir, 0o750); err != nil {
			return fmt.Errorf("failed to create processed directory '%s': %w", processedDir, err)
		}
	}

	fileName := filepath.Base(filePath)
	newPath := filepath.Join(processedDir, fileName)

	if err = os.Rename(filePath, newPath); err != nil {
		return fmt.Errorf("failed to move file from '%s' to '%s': %w", filePath, newPath, err)
	}

	return nil
}
