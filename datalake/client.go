package datalake

import (
	"context"
	"fmt"
	"os"

	"sanket/monitor/appcontext"
	csvparser "sanket/monitor/csv"
	"sanket/monitor/datalake/datasource"
	"sanket/monitor/datalake/repository"
)

// Client loads transaction logs into the data lake.
type Client interface {
	IngestCSVFiles(
		ctx context.Context,
		repo repository.Repository,
		extractor datasource.InfoExtractor,
		parser csvparser.Parser,
		unprocessedDir string,
		processedDir string,
		moveProcessedFiles bool,
	) (*Stats, error)
}

type client struct{}

// NewClient creates a new Client.
func NewClient() Client {
	return &client{}
}

// IngestCSVFiles loads every CSV file of unprocessedDir, in name order, into repo.
// A file that fails is recorded in the returned Stats and does not stop the run;
// a cancelled context does, returning the partial Stats.
func (c *client) IngestCSVFiles(
	ctx context.Context,
	repo repository.Repository,
	extractor datasource.InfoExtractor,
	parser csvparser.Parser,
	unprocessedDir string,
	processedDir string,
	moveProcessedFiles bool,
) (*Stats, error) {
	logger := appcontext.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "Reading transaction logs", "dir", unprocessedDir)

	files, err := os.ReadDir(unprocessedDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", unprocessedDir, err)
	}

	stats := NewStats()
	stats.TotalFiles = len(files)

	processor := newCSVFileProcessor(
		repo,
		extractor,
		parser,
		unprocessedDir,
		processedDir,
		moveProcessedFiles,
		stats,
	)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("ingestion interrupted after %d files: %w", stats.ProcessedFiles+stats.FailedFiles, err)
		}
		if !validateFile(file) {
			stats.AddFailure(file.Name(), "Not a valid CSV file")
			continue
		}

		if err := processor.ingestCSVFile(ctx, file); err != nil {
			stats.AddFailure(file.Name(), err.Error())
			continue
		}
		stats.IncrementProcessed()
		logger.DebugContext(ctx, "Ingested file", "file", file.Name())
	}

	return stats, nil
}
