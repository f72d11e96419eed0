package apiclient

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"text/tabwriter"
	"time"

	"sanket/monitor/config"
	"sanket/monitor/datalake/model"
)

// WriteStatus prints the category table of a summary.
func WriteStatus(w io.Writer, snapshot *model.AuditSnapshot) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "CATEGORY\tSCORE\tSTATUS\tTOTAL\tERRORS\tSLOW\n")
	for _, c := range snapshot.Categories {
		fmt.Fprintf(tw, "%s\t%.2f\t%s\t%d\t%d\t%d\n", c.Category, c.HealthScore, c.Status, c.TotalCount, c.ErrorCount, c.SlowCount)
	}
	fmt.Fprintf(tw, "\nweakest: %s\tleakage: %.2f%%\n", snapshot.WeakestCategory, snapshot.LeakageRate)
	return tw.Flush()
}

// dashboardURL turns a listen address such as ":8501" into a URL.
func dashboardURL(addr string) string {
	if strings.Contains(addr, "://") {
		return addr
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// RunStatus queries a running dashboard and prints its summary.
func RunStatus(ctx context.Context, logger *slog.Logger, w io.Writer, args []string, cfg *config.Config) error {
	statusFlagSet := flag.NewFlagSet("status", flag.ExitOnError)
	target := statusFlagSet.String("url", dashboardURL(cfg.Dashboard.Addr), "Base URL of the dashboard")
	timeout := statusFlagSet.Duration("timeout", 5*time.Second, "Request timeout")
	if err := statusFlagSet.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	client, err := NewAPIClient(nil, *target)
	if err != nil {
		return err
	}
	client.HTTPClient.Timeout = *timeout

	logger.DebugContext(ctx, "Querying dashboard", "url", *target)
	_, snapshot, err := client.GetSummary(ctx)
	if err != nil {
		return fmt.Errorf("failed to query dashboard at %s: %w", *target, err)
	}
	return WriteStatus(w, snapshot)
}
