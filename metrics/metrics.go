// Package metrics exposes the health of the latest aggregation, and the traffic of
// the dashboard itself, as Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"sanket/monitor/health"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the dashboard's Prometheus metrics.
type Collector struct {
	namespace string

	// Per-category health
	healthScore  *prometheus.GaugeVec
	transactions *prometheus.GaugeVec
	errors       *prometheus.GaugeVec
	slowEvents   *prometheus.GaugeVec

	// Global
	leakageRate prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewCollector creates a new collector under namespace.
func NewCollector(namespace string) *Collector {
	return &Collector{
		namespace: namespace,
		healthScore: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "category_health_score",
				Help:      "Health score per transaction category (100 minus the error percentage)",
			},
			[]string{"category"},
		),
		transactions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "category_transactions",
				Help:      "Number of transactions per category in the last aggregation",
			},
			[]string{"category"},
		),
		errors: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "category_errors",
				Help:      "Number of leaked transactions per category in the last aggregation",
			},
			[]string{"category"},
		),
		slowEvents: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "category_slow_events",
				Help:      "Number of slow, non-failing transactions per category in the last aggregation",
			},
			[]string{"category"},
		),
		leakageRate: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "global_leakage_rate",
				Help:      "Percentage of leaked transactions across all categories",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of dashboard HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Dashboard HTTP request latencies in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
	}
}

// Register registers all metrics with the given registry.
func (c *Collector) Register(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		c.healthScore,
		c.transactions,
		c.errors,
		c.slowEvents,
		c.leakageRate,
		c.httpRequests,
		c.httpRequestDuration,
	}

	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}

	return nil
}

// Observe replaces the health gauges with the values of res. Categories absent
// from res are removed.
func (c *Collector) Observe(res health.Result) {
	c.healthScore.Reset()
	c.transactions.Reset()
	c.errors.Reset()
	c.slowEvents.Reset()

	for _, summary := range res.Categories {
		category := summary.Category.String()
		c.healthScore.WithLabelValues(category).Set(summary.HealthScore)
		c.transactions.WithLabelValues(category).Set(float64(summary.TotalCount))
		c.errors.WithLabelValues(category).Set(float64(summary.ErrorCount))
		c.slowEvents.WithLabelValues(category).Set(float64(summary.SlowCount))
	}

	rate, err := res.LeakageRate()
	if err != nil {
		rate = 0
	}
	c.leakageRate.Set(rate)
}

// Middleware counts and times every request served by the router. Requests are
// labelled with the route template and the numeric status code.
func (c *Collector) Middleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			route := routeTemplate(r)
			c.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status())).Inc()
			c.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// statusRecorder remembers the first status code written.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.code == 0 {
		w.code = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.code == 0 {
		w.code = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusRecorder) status() int {
	if w.code == 0 {
		return http.StatusOK
	}
	return w.code
}

// routeTemplate returns the matched route's path template, or "unmatched".
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
