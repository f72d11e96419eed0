package generative

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"sanket/monitor/artifact"
	"sanket/monitor/config"
	"sanket/monitor/csv"
)

// TrainAndStore trains a model on the baseline CSV at inputPath and stores it in
// store under a fresh version of name. It returns the stored key.
func TrainAndStore(
	ctx context.Context,
	store artifact.Store,
	inputPath string,
	name string,
	opts Options,
	now time.Time,
) (artifact.Key, *Model, error) {
	transactions, err := csv.ReadTransactions(ctx, inputPath)
	if err != nil {
		if errors.Is(err, csv.ErrInputNotFound) {
			return artifact.Key{}, nil, fmt.Errorf("%w (run generate-baseline first)", err)
		}
		return artifact.Key{}, nil, fmt.Errorf("failed to read baseline data: %w", err)
	}

	m, err := Train(transactions, opts, now)
	if err != nil {
		return artifact.Key{}, nil, fmt.Errorf("failed to train model on %s: %w", inputPath, err)
	}

	data, err := Marshal(m)
	if err != nil {
		return artifact.Key{}, nil, err
	}

	key := artifact.NewKey(name, now)
	if err := store.Put(ctx, key, data); err != nil {
		return artifact.Key{}, nil, fmt.Errorf("failed to store model: %w", err)
	}
	return key, m, nil
}

// LoadModel resolves key in store and decodes the model stored there.
func LoadModel(ctx context.Context, store artifact.Store, key artifact.Key) (artifact.Key, *Model, error) {
	resolved, data, err := artifact.Load(ctx, store, key)
	if err != nil {
		if errors.Is(err, artifact.ErrArtifactNotFound) {
			return artifact.Key{}, nil, fmt.Errorf("%w (run train-model first)", err)
		}
		return artifact.Key{}, nil, fmt.Errorf("failed to load model: %w", err)
	}

	m, err := Unmarshal(data)
	if err != nil {
		return artifact.Key{}, nil, fmt.Errorf("failed to decode model %s: %w", resolved, err)
	}
	return resolved, m, nil
}

// RunTrain fits the generative model on the baseline log and stores it.
func RunTrain(ctx context.Context, logger *slog.Logger, args []string, cfg *config.Config) error {
	trainFlagSet := flag.NewFlagSet("train-model", flag.ExitOnError)
	input := trainFlagSet.String("input", cfg.Baseline.Path, "Baseline CSV to train on")
	name := trainFlagSet.String("name", cfg.Model.Name, "Artifact name of the trained model")
	resolution := trainFlagSet.Int("resolution", cfg.Model.Resolution, "Quantile steps per numeric column")
	if err := trainFlagSet.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
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

	logger.InfoContext(ctx, "Training model", "input", *input, "resolution", *resolution)
	key, m, err := TrainAndStore(ctx, store, *input, *name, Options{Resolution: *resolution}, time.Now())
	if err != nil {
		return err
	}
	logger.InfoContext(
		ctx,
		"Model trained and saved",
		"key", key.String(),
		"location", artifact.Location(store, key),
		"rows", m.Rows,
		"segments", len(m.Segments),
	)
	return nil
}
