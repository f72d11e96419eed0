package stress

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"sanket/monitor/artifact"
	"sanket/monitor/datalake/model"
	"sanket/monitor/generative"
	"sanket/monitor/health"
	"sanket/monitor/synthetic"

	"github.com/shopspring/decimal"
)

func cleanRows(n int) []model.Transaction {
	rows := make([]model.Transaction, n)
	for i := range rows {
		rows[i] = model.Transaction{
			Category:   model.Categories[i%len(model.Categories)],
			Amount:     decimal.NewFromInt(50),
			LatencyMs:  100,
			Currency:   "USD",
			StatusCode: 200,
		}
	}
	return rows
}

func TestSubsetSize(t *testing.T) {
	tests := []struct {
		fraction float64
		n        int
		want     int
	}{
		{0.05, 10000, 500},
		{0.02, 10000, 200},
		{0.03, 10000, 300},
		{0.05, 10, 0}, // 0.5 rounds to even
		{0.05, 30, 2}, // 1.5 rounds to even
		{0.03, 50, 2}, // 1.5 rounds to even
		{0, 100, 0},
		{1, 7, 7},
	}

	for _, test := range tests {
		t.Run(fmt.Sprintf("%v of %d", test.fraction, test.n), func(t *testing.T) {
			if got := SubsetSize(test.fraction, test.n); got != test.want {
				t.Errorf("SubsetSize(%v, %d) = %d, want %d", test.fraction, test.n, got, test.want)
			}
		})
	}
}

func TestInject_DefaultPlan(t *testing.T) {
	rows := cleanRows(10000)
	outcome, err := Inject(rand.New(rand.NewSource(5)), rows, DefaultPlan())
	if err != nil {
		t.Fatalf("Inject returned error: %v", err)
	}

	if outcome != (Outcome{LatencySpikes: 500, AmountLeaks: 200, ServerErrors: 300}) {
		t.Fatalf("unexpected outcome %+v", outcome)
	}

	var spikes, leaks, errs int
	for _, tx := range rows {
		if tx.LatencyMs == 5000 {
			spikes++
		}
		if tx.Amount.Equal(decimal.NewFromInt(-100)) {
			leaks++
		}
		if tx.StatusCode == 500 {
			errs++
		}
	}
	if spikes != 500 || leaks != 200 || errs != 300 {
		t.Errorf("Expected 500/200/300 touched rows, got %d/%d/%d", spikes, leaks, errs)
	}

	res := health.Aggregate(rows)
	if res.ErrorCount < 300 || res.ErrorCount > 500 {
		t.Errorf("Expected between 300 and 500 errors, got %d", res.ErrorCount)
	}
}

func TestInject_ZeroPlanLeavesRowsUntouched(t *testing.T) {
	rows := cleanRows(100)
	outcome, err := Inject(rand.New(rand.NewSource(1)), rows, Plan{})
	if err != nil {
		t.Fatalf("Inject returned error: %v", err)
	}
	if outcome != (Outcome{}) {
		t.Errorf("Expected no touched rows, got %+v", outcome)
	}
	for i, tx := range rows {
		if tx.LatencyMs != 100 || tx.StatusCode != 200 || !tx.Amount.Equal(decimal.NewFromInt(50)) {
			t.Fatalf("row %d was modified: %+v", i, tx)
		}
	}
}

func TestInject_EmptyInput(t *testing.T) {
	outcome, err := Inject(rand.New(rand.NewSource(1)), nil, DefaultPlan())
	if err != nil {
		t.Fatalf("Inject returned error: %v", err)
	}
	if outcome != (Outcome{}) {
		t.Errorf("Expected no touched rows, got %+v", outcome)
	}
}

func TestPlan_Validate(t *testing.T) {
	plan := DefaultPlan()
	plan.StatusFraction = 1.5
	if _, err := Inject(rand.New(rand.NewSource(1)), cleanRows(10), plan); !errors.Is(err, errInvalidPlan) {
		t.Errorf("Expected errInvalidPlan, got %v", err)
	}

	plan = DefaultPlan()
	plan.LatencyFraction = -0.1
	if err := plan.Validate(); !errors.Is(err, errInvalidPlan) {
		t.Errorf("Expected errInvalidPlan, got %v", err)
	}
}

func TestAssignIDs(t *testing.T) {
	rows := cleanRows(3)
	AssignIDs(rows, DefaultIDPrefix)

	for i, tx := range rows {
		want := fmt.Sprintf("SYN-%d", i)
		if tx.ID != want {
			t.Errorf("row %d: Expected ID %s, got %s", i, want, tx.ID)
		}
		if tx.DataSource != "stress" {
			t.Errorf("row %d: Expected data source stress, got %s", i, tx.DataSource)
		}
	}
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	store := artifact.NewFileStore(t.TempDir())

	m, err := generative.Train(
		synthetic.GenerateBaseline(rand.New(rand.NewSource(2)), 500),
		generative.DefaultOptions(),
		time.Now(),
	)
	if err != nil {
		t.Fatalf("Train returned error: %v", err)
	}
	data, err := generative.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	key := artifact.Key{Name: "sanket-brain", Version: "v1"}
	if err := store.Put(ctx, key, data); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	rows, outcome, resolved, err := Generate(
		ctx, store, artifact.Key{Name: "sanket-brain"}, 1000, DefaultPlan(), DefaultIDPrefix, rand.New(rand.NewSource(9)),
	)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if resolved != key {
		t.Errorf("Expected latest to resolve to %s, got %s", key, resolved)
	}
	if len(rows) != 1000 {
		t.Fatalf("Expected 1000 rows, got %d", len(rows))
	}
	if outcome.LatencySpikes != 50 || outcome.AmountLeaks != 20 || outcome.ServerErrors != 30 {
		t.Errorf("unexpected outcome %+v", outcome)
	}
	if rows[0].ID != "SYN-0" || rows[999].ID != "SYN-999" {
		t.Errorf("unexpected identifiers %s..%s", rows[0].ID, rows[999].ID)
	}
}

func TestGenerate_NoModel(t *testing.T) {
	store := artifact.NewFileStore(t.TempDir())
	_, _, _, err := Generate(
		context.Background(), store, artifact.Key{Name: "sanket-brain"}, 10, DefaultPlan(), DefaultIDPrefix, rand.New(rand.NewSource(1)),
	)
	if !errors.Is(err, artifact.ErrArtifactNotFound) {
		t.Errorf("Expected ErrArtifactNotFound, got %v", err)
	}
}
