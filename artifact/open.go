package artifact

import (
	"context"
	"fmt"

	"sanket/monitor/config"
)

// Open returns the store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.ArtifactConfig) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.Dir), nil
	case "gcs":
		return NewGCSStore(ctx, cfg.Bucket, cfg.Prefix, cfg.Endpoint)
	default:
		return nil, fmt.Errorf("unknown artifact backend %q", cfg.Backend)
	}
}
