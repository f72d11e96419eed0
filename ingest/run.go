package ingest

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"sanket/monitor/config"
)

// RunIngest loads the CSV files of the unprocessed directory into MongoDB.
func RunIngest(ctx context.Context, logger *slog.Logger, args []string, cfg *config.Config) error {
	ingestFlagSet := flag.NewFlagSet("ingest", flag.ExitOnError)
	unprocessed := ingestFlagSet.String("dir", cfg.UnprocessedDir, "Directory of CSV files to ingest")
	processed := ingestFlagSet.String("processed", cfg.ProcessedDir, "Directory processed files are moved to")
	move := ingestFlagSet.Bool("move", cfg.MoveProcessedFiles, "Move processed files out of the input directory")
	if err := ingestFlagSet.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	sink := NewSink(DefaultDependencies(cfg))
	sink.UnprocessedDir = *unprocessed
	sink.ProcessedDir = *processed
	sink.MoveProcessedFiles = *move

	logger.DebugContext(ctx, "Ingesting CSV files", "dir", sink.UnprocessedDir)
	if _, err := sink.Ingest(ctx); err != nil {
		return err
	}
	return nil
}
