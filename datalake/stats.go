package datalake

import (
	"context"
	"log/slog"
	"sort"
)

// Stats summarises one ingestion run.
type Stats struct {
	TotalFiles     int
	ProcessedFiles int
	FailedFiles    int
	Records        int
	SkippedRecords int
	// RecordsBySource counts loaded rows per data source ("baseline", "stress").
	RecordsBySource map[string]int
	Failures        map[string]string
}

// NewStats creates an empty Stats.
func NewStats() *Stats {
	return &Stats{
		RecordsBySource: make(map[string]int),
		Failures:        make(map[string]string),
	}
}

// AddFailure records a failed file and its reason.
func (s *Stats) AddFailure(file, reason string) {
	s.FailedFiles++
	s.Failures[file] = reason
}

// IncrementProcessed increments the count of successfully processed files.
func (s *Stats) IncrementProcessed() {
	s.ProcessedFiles++
}

// AddRecords counts the converted and skipped rows of one file of dataSource.
func (s *Stats) AddRecords(dataSource string, converted, skipped int) {
	s.Records += converted
	s.SkippedRecords += skipped
	s.RecordsBySource[dataSource] += converted
}

// LogValue groups the counters under one structured attribute.
func (s *Stats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("total_files", s.TotalFiles),
		slog.Int("processed_files", s.ProcessedFiles),
		slog.Int("failed_files", s.FailedFiles),
		slog.Int("records", s.Records),
		slog.Int("skipped_records", s.SkippedRecords),
	}
	for _, source := range sortedKeys(s.RecordsBySource) {
		attrs = append(attrs, slog.Int("records_"+source, s.RecordsBySource[source]))
	}
	return slog.GroupValue(attrs...)
}

// Log writes the counters and then one warning per failed file, in name order.
func (s *Stats) Log(ctx context.Context, logger *slog.Logger) {
	logger.InfoContext(ctx, "Ingestion finished", "stats", s)
	for _, file := range sortedKeys(s.Failures) {
		logger.WarnContext(ctx, "File not ingested", "file", file, "reason", s.Failures[file])
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
