package dashboard

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"sanket/monitor/config"
)

// RunDashboard serves the dashboard until SIGINT or SIGTERM.
func RunDashboard(ctx context.Context, logger *slog.Logger, args []string, cfg *config.Config) error {
	dashFlagSet := flag.NewFlagSet("dashboard", flag.ExitOnError)
	input := dashFlagSet.String("input", cfg.Stress.Path, "Stress log to visualise")
	addr := dashFlagSet.String("addr", cfg.Dashboard.Addr, "Address to listen on")
	if err := dashFlagSet.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	topology, err := NewTopology(cfg.Topology)
	if err != nil {
		return err
	}
	logger.DebugContext(ctx, "Topology loaded", "categories", topology.Categories())

	serverCfg := cfg.Dashboard
	serverCfg.Addr = *addr
	server, err := NewServer(serverCfg, *input, topology, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx)
}
