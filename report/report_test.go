package report

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sanket/monitor/appcontext"
	"sanket/monitor/csv"
	"sanket/monitor/datalake/model"
	"sanket/monitor/health"

	"github.com/shopspring/decimal"
)

var auditTime = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func rows(c model.Category, total, errs, slow int) []model.Transaction {
	out := make([]model.Transaction, 0, total)
	for i := 0; i < total; i++ {
		tx := model.Transaction{
			ID:         "SYN-x",
			Category:   c,
			Amount:     decimal.NewFromInt(20),
			LatencyMs:  100,
			Currency:   "USD",
			StatusCode: 200,
		}
		switch {
		case i < errs:
			tx.StatusCode = model.ErrorStatusCode
		case i < errs+slow:
			tx.LatencyMs = 5000
		}
		out = append(out, tx)
	}
	return out
}

func sample() []model.Transaction {
	txs := rows(model.Payment, 100, 20, 3)
	return append(txs, rows(model.Transfer, 100, 5, 2)...)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, health.Aggregate(sample()), auditTime); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"SANKET EXECUTIVE AUDIT | 2026-10-19 09:30:00",
		"[VULNERABILITY ASSESSMENT]",
		"Critical Bottleneck:  PAYMENT",
		"Resilience Score:     80.00/100",
		"Detected Leakage:     20 units",
		"Stress Volume:        200 synthetic transactions",
		"Global Leakage Rate:  12.50%",
		"Latency Inefficiency: 5 high-energy compute events",
		"STATUS: AUDIT COMPLETE | SYSTEM OPTIMIZATION RECOMMENDED",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}
}

func TestWrite_EmptyInputWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, health.Aggregate(nil), auditTime)
	if !errors.Is(err, health.ErrNoData) {
		t.Fatalf("Expected ErrNoData, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Expected no output, got %q", buf.String())
	}
}

func TestAudit_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stress_test_logs.csv")
	_, err := Audit(context.Background(), &bytes.Buffer{}, path, auditTime, nil)
	if !errors.Is(err, csv.ErrInputNotFound) {
		t.Fatalf("Expected ErrInputNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), path) || !strings.Contains(err.Error(), "inject-stress") {
		t.Errorf("Expected error naming %s and inject-stress, got %v", path, err)
	}
}

func TestAudit_SavesSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stress_test_logs.csv")
	if err := csv.WriteTransactions(path, sample()); err != nil {
		t.Fatalf("WriteTransactions returned error: %v", err)
	}

	ctx := appcontext.WithRunID(context.Background(), "run-1")
	var saved model.AuditSnapshot
	save := func(ctx context.Context, snapshot model.AuditSnapshot) error {
		saved = snapshot
		return nil
	}

	var buf bytes.Buffer
	res, err := Audit(ctx, &buf, path, auditTime, save)
	if err != nil {
		t.Fatalf("Audit returned error: %v", err)
	}
	if res.TotalCount != 200 {
		t.Errorf("Expected 200 transactions, got %d", res.TotalCount)
	}
	if saved.WeakestCategory != "PAYMENT" || saved.RunID != "run-1" || saved.Source != path {
		t.Errorf("unexpected snapshot %+v", saved)
	}
	if saved.LeakageRate != 12.5 {
		t.Errorf("Expected leakage rate 12.5, got %v", saved.LeakageRate)
	}
}

func TestAudit_SaveError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stress_test_logs.csv")
	if err := csv.WriteTransactions(path, sample()); err != nil {
		t.Fatalf("WriteTransactions returned error: %v", err)
	}

	expectedErr := errors.New("mongo down")
	_, err := Audit(context.Background(), &bytes.Buffer{}, path, auditTime, func(context.Context, model.AuditSnapshot) error {
		return expectedErr
	})
	if !errors.Is(err, expectedErr) {
		t.Errorf("Expected save error, got %v", err)
	}
}

func TestAudit_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stress_test_logs.csv")
	if err := csv.WriteTransactions(path, nil); err != nil {
		t.Fatalf("WriteTransactions returned error: %v", err)
	}

	var buf bytes.Buffer
	_, err := Audit(context.Background(), &buf, path, auditTime, nil)
	if !errors.Is(err, health.ErrNoData) {
		t.Errorf("Expected ErrNoData, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Expected no output, got %q", buf.String())
	}
}
