package synthetic

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"sanket/monitor/config"
	"sanket/monitor/datalake/repository"
	"sanket/monitor/storage"
)

// NewRand returns a generator seeded with seed, or with the clock when seed is zero.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// RunGenerateSyntheticData generates the baseline transaction log.
func RunGenerateSyntheticData(ctx context.Context, logger *slog.Logger, args []string, cfg *config.Config) error {
	genFlagSet := flag.NewFlagSet("generate-baseline", flag.ExitOnError)
	rows := genFlagSet.Int("rows", cfg.Baseline.Rows, "Number of rows to generate")
	out := genFlagSet.String("out", cfg.Baseline.Path, "File to write the baseline data to")
	seed := genFlagSet.Int64("seed", cfg.Seed, "Random seed (0 uses the clock)")
	persistToMongo := genFlagSet.Bool("persist-to-mongo", false, "Persist baseline data to MongoDB")
	if err := genFlagSet.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	if *rows <= 0 {
		return fmt.Errorf("rows must be positive, got %d", *rows)
	}

	logger.InfoContext(ctx, "Generating baseline records", "rows", *rows, "out", *out)
	transactions, err := GenerateSyntheticData(NewRand(*seed), *rows, *out)
	if err != nil {
		return fmt.Errorf("failed to generate synthetic data: %w", err)
	}
	logger.InfoContext(ctx, "Baseline data generated successfully", "file", *out)

	if !*persistToMongo {
		return nil
	}

	err = storage.WithRepository(ctx, storage.Connect, cfg.MongoURI, func(repo repository.Repository) error {
		return repo.BulkUpsertTransactions(ctx, transactions)
	})
	if err != nil {
		return fmt.Errorf("failed to persist baseline data: %w", err)
	}
	logger.InfoContext(ctx, "Baseline data persisted to MongoDB", "rows", len(transactions))
	return nil
}
