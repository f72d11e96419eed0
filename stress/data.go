package stress

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"sanket/monitor/artifact"
	"sanket/monitor/config"
	"sanket/monitor/csv"
	"sanket/monitor/synthetic"
)

// RunInject samples the trained model, injects failures and writes the stress log.
func RunInject(ctx context.Context, logger *slog.Logger, args []string, cfg *config.Config) error {
	injectFlagSet := flag.NewFlagSet("inject-stress", flag.ExitOnError)
	rows := injectFlagSet.Int("rows", cfg.Stress.Rows, "Number of rows to sample")
	out := injectFlagSet.String("out", cfg.Stress.Path, "File to write the stress log to")
	modelKey := injectFlagSet.String("model", cfg.Model.Name+"@"+artifact.LatestVersion, "Model artifact key (name[@version])")
	seed := injectFlagSet.Int64("seed", cfg.Seed, "Random seed (0 uses the clock)")
	if err := injectFlagSet.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	if *rows <= 0 {
		return fmt.Errorf("rows must be positive, got %d", *rows)
	}

	key, err := artifact.ParseKey(*modelKey)
	if err != nil {
		return err
	}

	store, err := artifact.Open(ctx, cfg.Artifacts)
	if err != nil {
		return fmt.Errorf("failed to open artifact store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.ErrorContext(ctx, "Error closing artifact store", "error", closeErr)
		}
	}()

	prefix := cfg.Stress.IDPrefix
	if prefix == "" {
		prefix = DefaultIDPrefix
	}

	logger.InfoContext(ctx, "Generating stress data", "rows", *rows, "model", key.String())
	txs, outcome, resolved, err := Generate(ctx, store, key, *rows, PlanFromConfig(cfg.Stress), prefix, synthetic.NewRand(*seed))
	if err != nil {
		return err
	}

	if err := csv.WriteTransactions(*out, txs); err != nil {
		return fmt.Errorf("failed to write stress data: %w", err)
	}
	logger.InfoContext(
		ctx,
		"Stress data generated",
		"file", *out,
		"model", resolved.String(),
		"model_location", artifact.Location(store, resolved),
		"latency_spikes", outcome.LatencySpikes,
		"amount_leaks", outcome.AmountLeaks,
		"server_errors", outcome.ServerErrors,
	)
	return nil
}
