package model

import "time"

// CategorySnapshot is the stored form of one category summary.
type CategorySnapshot struct {
	Category    string  `bson:"category" json:"category"`
	TotalCount  int     `bson:"total_count" json:"total_count"`
	ErrorCount  int     `bson:"error_count" json:"error_count"`
	SlowCount   int     `bson:"slow_count" json:"slow_count"`
	HealthScore float64 `bson:"health_score" json:"health_score"`
	Status      string  `bson:"status" json:"status"`
}

// AuditSnapshot is a record in the audits collection: one aggregation run.
type AuditSnapshot struct {
	Source          string             `bson:"source" json:"source"`
	RunID           string             `bson:"run_id,omitempty" json:"run_id,omitempty"`
	GeneratedAt     time.Time          `bson:"generated_at" json:"generated_at"`
	TotalCount      int                `bson:"total_count" json:"total_count"`
	ErrorCount      int                `bson:"error_count" json:"error_count"`
	SlowCount       int                `bson:"slow_count" json:"slow_count"`
	LeakageRate     float64            `bson:"leakage_rate" json:"leakage_rate"`
	WeakestCategory string             `bson:"weakest_category" json:"weakest_category"`
	Categories      []CategorySnapshot `bson:"categories" json:"categories"`
}
