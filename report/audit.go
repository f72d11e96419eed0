package report

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"sanket/monitor/appcontext"
	"sanket/monitor/config"
	"sanket/monitor/datalake/model"
	"sanket/monitor/datalake/repository"
	"sanket/monitor/health"
	"sanket/monitor/storage"
)

// Audit aggregates the log at path and writes the report to w. When save is not
// nil it receives the snapshot of the run.
func Audit(
	ctx context.Context,
	w io.Writer,
	path string,
	now time.Time,
	save func(ctx context.Context, snapshot model.AuditSnapshot) error,
) (health.Result, error) {
	res, err := health.LoadFile(ctx, path)
	if err != nil {
		return health.Result{}, err
	}
	if err := Write(w, res, now); err != nil {
		return health.Result{}, err
	}

	if save == nil {
		return res, nil
	}
	snapshot, err := res.Snapshot(path, appcontext.RunIDFromContext(ctx), now)
	if err != nil {
		return health.Result{}, err
	}
	if err := save(ctx, snapshot); err != nil {
		return health.Result{}, fmt.Errorf("failed to persist audit: %w", err)
	}
	return res, nil
}

// RunAudit prints the executive audit of the stress log.
func RunAudit(ctx context.Context, logger *slog.Logger, w io.Writer, args []string, cfg *config.Config) error {
	auditFlagSet := flag.NewFlagSet("audit", flag.ExitOnError)
	input := auditFlagSet.String("input", cfg.Stress.Path, "Stress log to audit")
	persistToMongo := auditFlagSet.Bool("persist-to-mongo", false, "Persist the audit snapshot to MongoDB")
	if err := auditFlagSet.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	var save func(ctx context.Context, snapshot model.AuditSnapshot) error
	if *persistToMongo {
		save = func(ctx context.Context, snapshot model.AuditSnapshot) error {
			return storage.WithRepository(ctx, storage.Connect, cfg.MongoURI, func(repo repository.Repository) error {
				return repo.SaveAudit(ctx, snapshot)
			})
		}
	}

	logger.DebugContext(ctx, "Auditing stress data", "input", *input)
	res, err := Audit(ctx, w, *input, time.Now(), save)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "Audit complete", "transactions", res.TotalCount, "errors", res.ErrorCount)
	return nil
}
