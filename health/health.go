// Package health derives per-category health summaries from a transaction log.
//
// Aggregate is the single computation behind both the audit report and the
// dashboard; both render a Result and never recompute it.
package health

import (
	"errors"
	"sort"
	"time"

	"sanket/monitor/datalake/model"
)

// ErrNoData is returned when a global figure is requested over an empty log.
var ErrNoData = errors.New("no data: the transaction log contains no records")

// Score thresholds used to classify a category.
const (
	DegradedBelow = 98.0
	CriticalBelow = 95.0
)

// Status is the coarse health classification of a category.
type Status string

const (
	StatusOK       Status = "OK"
	StatusDegraded Status = "DEGRADED"
	StatusCritical Status = "CRITICAL"
)

// Classify maps a health score to a status.
func Classify(score float64) Status {
	switch {
	case score < CriticalBelow:
		return StatusCritical
	case score < DegradedBelow:
		return StatusDegraded
	default:
		return StatusOK
	}
}

// CategorySummary aggregates the transactions of one category.
type CategorySummary struct {
	Category    model.Category `json:"category"`
	TotalCount  int            `json:"total_count"`
	ErrorCount  int            `json:"error_count"`
	SlowCount   int            `json:"slow_count"`
	HealthScore float64        `json:"health_score"`
	Status      Status         `json:"status"`
}

// Result is the outcome of one aggregation.
type Result struct {
	Categories []CategorySummary `json:"categories"`
	TotalCount int               `json:"total_count"`
	ErrorCount int               `json:"error_count"`
	SlowCount  int               `json:"slow_count"`
}

// Aggregate groups transactions by category and scores each group. Groups are
// ordered by category name; categories without transactions do not appear.
func Aggregate(transactions []model.Transaction) Result {
	groups := make(map[model.Category]*CategorySummary)
	for _, tx := range transactions {
		group, ok := groups[tx.Category]
		if !ok {
			group = &CategorySummary{Category: tx.Category}
			groups[tx.Category] = group
		}

		group.TotalCount++
		if tx.IsError() {
			group.ErrorCount++
		}
		if tx.IsSlow() {
			group.SlowCount++
		}
	}

	var res Result
	res.Categories = make([]CategorySummary, 0, len(groups))
	for _, group := range groups {
		group.HealthScore = score(group.ErrorCount, group.TotalCount)
		group.Status = Classify(group.HealthScore)

		res.Categories = append(res.Categories, *group)
		res.TotalCount += group.TotalCount
		res.ErrorCount += group.ErrorCount
		res.SlowCount += group.SlowCount
	}

	sort.Slice(res.Categories, func(i, j int) bool {
		return res.Categories[i].Category < res.Categories[j].Category
	})

	return res
}

// score is only called for non-empty groups.
func score(errorCount, totalCount int) float64 {
	return 100 - float64(errorCount)/float64(totalCount)*100
}

// Weakest returns the category with the lowest health score. On ties the first
// category in iteration order wins.
func (r Result) Weakest() (CategorySummary, error) {
	if len(r.Categories) == 0 {
		return CategorySummary{}, ErrNoData
	}

	weakest := r.Categories[0]
	for _, c := range r.Categories[1:] {
		if c.HealthScore < weakest.HealthScore {
			weakest = c
		}
	}
	return weakest, nil
}

// LeakageRate is the share of leaked (error) transactions across all categories,
// as a percentage.
func (r Result) LeakageRate() (float64, error) {
	if r.TotalCount == 0 {
		return 0, ErrNoData
	}
	return float64(r.ErrorCount) / float64(r.TotalCount) * 100, nil
}

// Lookup finds the summary of category c.
func (r Result) Lookup(c model.Category) (CategorySummary, bool) {
	for _, summary := range r.Categories {
		if summary.Category == c {
			return summary, true
		}
	}
	return CategorySummary{}, false
}

// ScoreRange returns the lowest and highest health score in the result.
func (r Result) ScoreRange() (lowest, highest float64, err error) {
	if len(r.Categories) == 0 {
		return 0, 0, ErrNoData
	}

	lowest, highest = r.Categories[0].HealthScore, r.Categories[0].HealthScore
	for _, c := range r.Categories[1:] {
		lowest = min(lowest, c.HealthScore)
		highest = max(highest, c.HealthScore)
	}
	return lowest, highest, nil
}

// Snapshot converts the result into its persisted form.
func (r Result) Snapshot(source, runID string, now time.Time) (model.AuditSnapshot, error) {
	weakest, err := r.Weakest()
	if err != nil {
		return model.AuditSnapshot{}, err
	}
	rate, err := r.LeakageRate()
	if err != nil {
		return model.AuditSnapshot{}, err
	}

	snapshot := model.AuditSnapshot{
		Source:          source,
		RunID:           runID,
		GeneratedAt:     now.UTC(),
		TotalCount:      r.TotalCount,
		ErrorCount:      r.ErrorCount,
		SlowCount:       r.SlowCount,
		LeakageRate:     rate,
		WeakestCategory: weakest.Category.String(),
		Categories:      make([]model.CategorySnapshot, 0, len(r.Categories)),
	}
	for _, c := range r.Categories {
		snapshot.Categories = append(snapshot.Categories, model.CategorySnapshot{
			Category:    c.Category.String(),
			TotalCount:  c.TotalCount,
			ErrorCount:  c.ErrorCount,
			SlowCount:   c.SlowCount,
			HealthScore: c.HealthScore,
			Status:      string(c.Status),
		})
	}
	return snapshot, nil
}
