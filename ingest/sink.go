// Package ingest loads generated transaction logs into MongoDB.
package ingest

import (
	"context"
	"fmt"
	"os"
	"time"

	"sanket/monitor/appcontext"
	"sanket/monitor/config"
	csvparser "sanket/monitor/csv"
	"sanket/monitor/datalake"
	"sanket/monitor/datalake/datasource"
	"sanket/monitor/datalake/repository"
	"sanket/monitor/storage"
)

// SinkDependencies are the collaborators of a Sink; tests replace any of them.
type SinkDependencies struct {
	Config         *config.Config
	Connect        storage.Connector
	NewRepository  func(client storage.MongoClient) repository.Repository
	Extractor      datasource.InfoExtractor
	Parser         csvparser.Parser
	DatalakeClient datalake.Client
}

// DefaultDependencies wires the MongoDB-backed implementations for cfg.
func DefaultDependencies(cfg *config.Config) SinkDependencies {
	database := storage.DatabaseFromURI(cfg.MongoURI)
	return SinkDependencies{
		Config:  cfg,
		Connect: storage.Connect,
		NewRepository: func(client storage.MongoClient) repository.Repository {
			return storage.NewMongoRepository(storage.NewMongoProvider(client, database))
		},
		Extractor:      datasource.NewDefaultExtractor(),
		Parser:         csvparser.NewRecordParser(),
		DatalakeClient: datalake.NewClient(),
	}
}

// Sink moves the CSV logs of one directory into the data lake.
type Sink struct {
	deps               SinkDependencies
	UnprocessedDir     string
	ProcessedDir       string
	MoveProcessedFiles bool
}

// NewSink creates a Sink reading the directories configured in deps.Config.
func NewSink(deps SinkDependencies) *Sink {
	return &Sink{
		deps:               deps,
		UnprocessedDir:     deps.Config.UnprocessedDir,
		ProcessedDir:       deps.Config.ProcessedDir,
		MoveProcessedFiles: deps.Config.MoveProcessedFiles,
	}
}

// checkInputDir fails unless UnprocessedDir exists and is a directory.
func (s *Sink) checkInputDir() error {
	info, err := os.Stat(s.UnprocessedDir)
	if err != nil {
		return fmt.Errorf("stat check for directory %s: %w", s.UnprocessedDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("stat check for directory %s: not a directory", s.UnprocessedDir)
	}
	return nil
}

// Ingest connects to MongoDB, loads every CSV file of UnprocessedDir and returns
// the per-file statistics. The connection is closed before returning.
func (s *Sink) Ingest(ctx context.Context) (*datalake.Stats, error) {
	logger := appcontext.LoggerFromContext(ctx)
	started := time.Now()

	if err := s.checkInputDir(); err != nil {
		logger.ErrorContext(ctx, "Create the input directory and place the CSV logs inside",
			"dir", s.UnprocessedDir, "error", err)
		return nil, err
	}

	client, err := s.deps.Connect(ctx, s.deps.Config.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("connection to MongoDB failed: %w", err)
	}
	defer func() {
		if deferErr := client.Disconnect(ctx); deferErr != nil {
			logger.ErrorContext(ctx, "Error disconnecting from MongoDB", "error", deferErr)
		}
	}()

	stats, err := s.deps.DatalakeClient.IngestCSVFiles(
		ctx,
		s.deps.NewRepository(client),
		s.deps.Extractor,
		s.deps.Parser,
		s.UnprocessedDir,
		s.ProcessedDir,
		s.MoveProcessedFiles,
	)
	if err != nil {
		return nil, fmt.Errorf("ingestion of CSV files failed: %w", err)
	}

	stats.Log(ctx, logger)
	logger.InfoContext(ctx, "Ingestion completed", "elapsed", time.Since(started).Round(time.Millisecond))
	return stats, nil
}
