package dashboard

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sanket/monitor/config"
	"sanket/monitor/csv"
	"sanket/monitor/datalake/model"
	"sanket/monitor/health"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var viewTime = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func rows(c model.Category, total, errs, slow int) []model.Transaction {
	out := make([]model.Transaction, total)
	for i := range out {
		out[i] = model.Transaction{
			ID:         "SYN-1",
			Category:   c,
			Amount:     decimal.NewFromInt(25),
			LatencyMs:  80,
			Currency:   "USD",
			StatusCode: 200,
		}
		switch {
		case i < errs:
			out[i].Amount = decimal.NewFromInt(-100)
		case i < errs+slow:
			out[i].LatencyMs = 5000
		}
	}
	return out
}

func mixed() []model.Transaction {
	var txs []model.Transaction
	txs = append(txs, rows(model.Credit, 100, 1, 4)...)
	txs = append(txs, rows(model.Debit, 100, 2, 0)...)
	txs = append(txs, rows(model.Payment, 100, 20, 5)...)
	txs = append(txs, rows(model.Transfer, 100, 5, 1)...)
	return txs
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

/* ---------------- Topology ---------------- */

func TestTopology_Place(t *testing.T) {
	topology := DefaultTopology()

	p := topology.Place(model.Debit)
	assert.True(t, p.Placed)
	assert.Equal(t, Point{X: 2, Y: 1}, p.Point)

	assert.False(t, topology.Place(model.Category("REFUND")).Placed)
	assert.False(t, topology.Place(model.Category("DEBT")).Placed)
}

func TestTopology_Edges(t *testing.T) {
	topology := DefaultTopology()

	t.Run("AllPresent", func(t *testing.T) {
		edges := topology.Edges(health.Aggregate(mixed()))
		require.Len(t, edges, 3)
		assert.Equal(t, Connection{From: model.Credit, To: model.Payment}, edges[0].Connection)
		assert.Equal(t, Point{X: 1, Y: 4}, edges[0].Start)
		assert.Equal(t, Point{X: 4, Y: 3}, edges[0].End)
	})

	t.Run("MissingEndpoint", func(t *testing.T) {
		txs := append(rows(model.Credit, 10, 0, 0), rows(model.Transfer, 10, 0, 0)...)
		assert.Empty(t, topology.Edges(health.Aggregate(txs)))
	})

	t.Run("UnplacedEndpoint", func(t *testing.T) {
		custom, err := NewTopology(config.TopologyConfig{
			Positions:   map[string][]float64{"credit": {1, 1}},
			Connections: [][]string{{"CREDIT", "REFUND"}},
		})
		require.NoError(t, err)

		txs := append(rows(model.Credit, 10, 0, 0), rows(model.Category("REFUND"), 10, 0, 0)...)
		assert.Empty(t, custom.Edges(health.Aggregate(txs)))
	})
}

func TestNewTopology(t *testing.T) {
	t.Run("EmptyUsesDefault", func(t *testing.T) {
		topology, err := NewTopology(config.TopologyConfig{})
		require.NoError(t, err)
		assert.Equal(t, DefaultTopology().Categories(), topology.Categories())
	})

	t.Run("NormalisesNames", func(t *testing.T) {
		topology, err := NewTopology(config.TopologyConfig{
			Positions: map[string][]float64{" payment ": {3, 3}},
		})
		require.NoError(t, err)
		assert.True(t, topology.Place(model.Payment).Placed)
	})

	t.Run("BadCoordinates", func(t *testing.T) {
		_, err := NewTopology(config.TopologyConfig{
			Positions: map[string][]float64{"PAYMENT": {3}},
		})
		assert.ErrorIs(t, err, errInvalidTopology)
	})

	t.Run("ReplacesDefault", func(t *testing.T) {
		topology, err := NewTopology(config.TopologyConfig{
			Positions:   map[string][]float64{"refund": {1, 1}, "CREDIT": {9, 9}},
			Connections: [][]string{{"refund", "credit"}},
		})
		require.NoError(t, err)
		assert.Equal(t, []model.Category{model.Credit, "REFUND"}, topology.Categories())
		assert.False(t, topology.Place(model.Payment).Placed)
		assert.Equal(t, Point{X: 9, Y: 9}, topology.Place(model.Credit).Point)
	})

	t.Run("ConnectionsWithoutPositions", func(t *testing.T) {
		_, err := NewTopology(config.TopologyConfig{
			Connections: [][]string{{"PAYMENT", "CREDIT"}},
		})
		assert.ErrorIs(t, err, errInvalidTopology)
	})

	t.Run("BadConnection", func(t *testing.T) {
		_, err := NewTopology(config.TopologyConfig{
			Positions:   map[string][]float64{"PAYMENT": {3, 3}},
			Connections: [][]string{{"PAYMENT"}},
		})
		assert.ErrorIs(t, err, errInvalidTopology)
	})
}

/* ---------------- Colour scale ---------------- */

func TestColorScale(t *testing.T) {
	scale := ColorScale{Min: 80, Max: 99}

	assert.Equal(t, "#a50026", scale.Color(80))
	assert.Equal(t, "#006837", scale.Color(99))
	assert.Equal(t, "#a50026", scale.Color(10), "scores below the domain clamp to red")
	assert.InDelta(t, 0.5, scale.Position(89.5), 1e-9)

	single := ColorScale{Min: 95, Max: 95}
	assert.Equal(t, 0.5, single.Position(95))
	assert.Equal(t, "#ffffbf", single.Color(95))

	stops := scale.Stops(11)
	require.Len(t, stops, 11)
	assert.Equal(t, "#a50026", stops[0])
	assert.Equal(t, "#ffffbf", stops[5])
	assert.Equal(t, "#006837", stops[10])
}

func TestNewColorScale_Empty(t *testing.T) {
	_, err := NewColorScale(health.Aggregate(nil))
	assert.ErrorIs(t, err, health.ErrNoData)
}

/* ---------------- View ---------------- */

func TestBuildView(t *testing.T) {
	res := health.Aggregate(mixed())
	view, err := BuildView(res, DefaultTopology(), "stress.csv", viewTime)
	require.NoError(t, err)

	require.Len(t, view.Nodes, 4)
	require.Len(t, view.Lines, 3)
	require.Len(t, view.Tiles, 4)
	assert.Empty(t, view.Unplaced)

	for _, node := range view.Nodes {
		assert.Equal(t, 45, node.Size)
		assert.GreaterOrEqual(t, node.X, float64(chartMargin))
		assert.LessOrEqual(t, node.X, float64(chartWidth-chartMargin))
	}

	payment := view.Tiles[2]
	assert.Equal(t, model.Payment, payment.Category)
	assert.Equal(t, "80.0%", payment.Score)
	assert.Equal(t, "Failures: 20 | Latency: 5", payment.Caption)
	assert.Equal(t, health.StatusCritical, payment.Status)
	assert.Equal(t, "#a50026", payment.Color, "weakest category is the red end of the scale")

	credit := view.Tiles[0]
	assert.Equal(t, "99.0%", credit.Score)
	assert.Equal(t, "#006837", credit.Color)

	// CREDIT (1,4) is drawn above DEBIT (2,1).
	assert.Less(t, view.Nodes[0].Y, view.Nodes[1].Y)
}

func TestBuildView_UnplacedCategory(t *testing.T) {
	txs := append(mixed(), rows(model.Category("REFUND"), 10, 0, 0)...)
	view, err := BuildView(health.Aggregate(txs), DefaultTopology(), "stress.csv", viewTime)
	require.NoError(t, err)

	assert.Equal(t, []model.Category{"REFUND"}, view.Unplaced)
	assert.Len(t, view.Nodes, 4)
	assert.Len(t, view.Tiles, 5)
	for _, tile := range view.Tiles {
		assert.Equal(t, tile.Category != "REFUND", tile.Placed)
	}
}

func TestBuildView_Empty(t *testing.T) {
	_, err := BuildView(health.Aggregate(nil), DefaultTopology(), "stress.csv", viewTime)
	assert.ErrorIs(t, err, health.ErrNoData)
}

func TestRender(t *testing.T) {
	txs := append(mixed(), rows(model.Category("REFUND"), 10, 0, 0)...)
	view, err := BuildView(health.Aggregate(txs), DefaultTopology(), "stress.csv", viewTime)
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, Render(&b, view))
	page := b.String()

	assert.Contains(t, page, "SANKET | Systemic Analysis of Network-Knot Error Tracking")
	assert.Contains(t, page, "<svg")
	assert.Equal(t, 4, strings.Count(page, "<circle"))
	assert.Equal(t, 3, strings.Count(page, "<line x1"))
	assert.Contains(t, page, "80.0%")
	assert.Contains(t, page, "Failures: 20 | Latency: 5")
	assert.Contains(t, page, "Unplaced: REFUND")
}

/* ---------------- Server ---------------- */

func setUpTestServer(t *testing.T, txs []model.Transaction, write bool) (*httptest.Server, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stress_test_logs.csv")
	if write {
		require.NoError(t, csv.WriteTransactions(path, txs))
	}

	cfg := config.DashboardConfig{Addr: ":0", MetricsNamespace: "sanket"}
	s, err := NewServer(cfg, path, DefaultTopology(), discardLogger())
	require.NoError(t, err)
	s.now = func() time.Time { return viewTime }

	server := httptest.NewServer(s.Router())
	t.Cleanup(server.Close)
	return server, path
}

func TestServer_Index(t *testing.T) {
	server, _ := setUpTestServer(t, mixed(), true)

	resp, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "PAYMENT")
}

func TestServer_Summary(t *testing.T) {
	server, path := setUpTestServer(t, mixed(), true)

	resp, err := http.Get(server.URL + "/api/summary")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snapshot model.AuditSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snapshot))
	assert.Equal(t, path, snapshot.Source)
	assert.Equal(t, 400, snapshot.TotalCount)
	assert.Equal(t, 28, snapshot.ErrorCount)
	assert.Equal(t, "PAYMENT", snapshot.WeakestCategory)
	assert.Len(t, snapshot.Categories, 4)
}

func TestServer_RefreshesOnEveryRequest(t *testing.T) {
	server, path := setUpTestServer(t, rows(model.Payment, 10, 0, 0), true)

	get := func() model.AuditSnapshot {
		resp, err := http.Get(server.URL + "/api/summary")
		require.NoError(t, err)
		defer resp.Body.Close()
		var snapshot model.AuditSnapshot
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&snapshot))
		return snapshot
	}

	assert.Equal(t, 10, get().TotalCount)
	require.NoError(t, csv.WriteTransactions(path, rows(model.Payment, 25, 5, 0)))
	assert.Equal(t, 25, get().TotalCount)
}

func TestServer_MissingFile(t *testing.T) {
	server, path := setUpTestServer(t, nil, false)

	for _, route := range []string{"/", "/api/summary"} {
		resp, err := http.Get(server.URL + route)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, route)
		assert.Contains(t, string(body), path, route)
	}
}

func TestServer_EmptyFile(t *testing.T) {
	server, _ := setUpTestServer(t, nil, true)

	resp, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "no data")
}

func TestServer_Health(t *testing.T) {
	server, _ := setUpTestServer(t, nil, false)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var report map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "ok", report["status"])
}

func TestServer_Metrics(t *testing.T) {
	server, _ := setUpTestServer(t, mixed(), true)

	resp, err := http.Get(server.URL + "/api/summary")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `sanket_category_health_score{category="PAYMENT"} 80`)
	assert.Contains(t, string(body), "sanket_global_leakage_rate 7")
	assert.Contains(t, string(body), `sanket_http_requests_total{endpoint="/api/summary",method="GET",status="200"} 1`)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	server, _ := setUpTestServer(t, mixed(), true)

	resp, err := http.Post(server.URL+"/api/summary", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestUnknownCategories(t *testing.T) {
	got := unknownCategories([]model.Category{"REFUND", model.Debit, "CHARGEBACK"})
	assert.Equal(t, []model.Category{"REFUND", "CHARGEBACK"}, got)
	assert.Empty(t, unknownCategories([]model.Category{model.Payment}))
}

func TestServer_LogsUnplacedCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stress_test_logs.csv")
	txs := append(rows(model.Payment, 10, 1, 0), rows("REFUND", 10, 0, 0)...)
	require.NoError(t, csv.WriteTransactions(path, txs))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	s, err := NewServer(config.DashboardConfig{Addr: ":0", MetricsNamespace: "sanket"}, path, DefaultTopology(), logger)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, logs.String(), "Categories without a topology position")
	assert.Contains(t, logs.String(), "unknown=[REFUND]")
}

func TestServer_WriteJSONLogsEncodeFailure(t *testing.T) {
	var logs bytes.Buffer
	s, err := NewServer(config.DashboardConfig{Addr: ":0", MetricsNamespace: "sanket"}, "unused.csv", DefaultTopology(),
		slog.New(slog.NewTextHandler(&logs, nil)))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.writeJSON(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil), http.StatusOK, map[string]interface{}{
		"bad": make(chan int),
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, logs.String(), "Failed to encode JSON response")
	assert.Contains(t, logs.String(), "path=/api/summary")
}
