package synthetic

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"sanket/monitor/csv"
	"sanket/monitor/datalake/model"

	"github.com/shopspring/decimal"
)

func TestGenerateBaseline_Ranges(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	rows := GenerateBaseline(rng, 2000)

	if len(rows) != 2000 {
		t.Fatalf("Expected 2000 rows, got %d", len(rows))
	}

	low, high := decimal.NewFromInt(10), decimal.NewFromInt(500)
	seen := make(map[model.Category]int)
	for i, tx := range rows {
		if tx.Amount.LessThan(low) || tx.Amount.GreaterThan(high) {
			t.Errorf("row %d: amount %s out of range", i, tx.Amount)
		}
		if !tx.Amount.Equal(tx.Amount.Round(2)) {
			t.Errorf("row %d: amount %s not rounded to cents", i, tx.Amount)
		}
		if tx.LatencyMs < 50 || tx.LatencyMs >= 250 {
			t.Errorf("row %d: latency %d out of range", i, tx.LatencyMs)
		}
		if tx.Currency != "USD" || tx.StatusCode != 200 {
			t.Errorf("row %d: unexpected currency/status %s/%d", i, tx.Currency, tx.StatusCode)
		}
		if tx.IsError() || tx.IsSlow() {
			t.Errorf("row %d: baseline rows must be healthy", i)
		}
		seen[tx.Category]++
	}

	if rows[0].ID != "TXN-10000" || rows[1999].ID != "TXN-11999" {
		t.Errorf("Unexpected ids %s..%s", rows[0].ID, rows[1999].ID)
	}
	for _, c := range model.Categories {
		if seen[c] == 0 {
			t.Errorf("category %s never generated", c)
		}
	}
}

func TestGenerateBaseline_Deterministic(t *testing.T) {
	a := GenerateBaseline(rand.New(rand.NewSource(99)), 50)
	b := GenerateBaseline(rand.New(rand.NewSource(99)), 50)

	for i := range a {
		if a[i].Category != b[i].Category || !a[i].Amount.Equal(b[i].Amount) || a[i].LatencyMs != b[i].LatencyMs {
			t.Fatalf("row %d differs between runs with the same seed", i)
		}
	}
}

func TestGenerateSyntheticData_WritesCSV(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "normal_logs.csv")

	generated, err := GenerateSyntheticData(rand.New(rand.NewSource(3)), 25, filePath)
	if err != nil {
		t.Fatalf("GenerateSyntheticData failed: %v", err)
	}

	loaded, err := csv.ReadTransactions(context.Background(), filePath)
	if err != nil {
		t.Fatalf("ReadTransactions failed: %v", err)
	}
	if len(loaded) != len(generated) {
		t.Fatalf("Expected %d rows on disk, got %d", len(generated), len(loaded))
	}
	if loaded[7].ID != generated[7].ID || !loaded[7].Amount.Equal(generated[7].Amount) {
		t.Errorf("row 7 mismatch: %+v vs %+v", loaded[7], generated[7])
	}
}
