package models

import (
	"time"
)

// Report status constants. The moderation service owns the lifecycle; the
// engine only counts rows. A resolved report counts as accepted.
const (
	ReportStatusPending   = "pending"
	ReportStatusResolved  = "resolved"
	ReportStatusDismissed = "dismissed"
)

// Report targets a user, post or comment. The engine reads reports against
// users as one input to trust scoring and never writes this table.
type Report struct {
	ID         int64     `gorm:"primaryKey;autoIncrement;column:id"`
	TargetType string    `gorm:"type:varchar(8);not null;index:rep_reports_ix1;column:target_type"`
	TargetID   int64     `gorm:"not null;index:rep_reports_ix1;column:target_id"`
	Status     string    `gorm:"type:varchar(16);not null;default:'pending';column:status"`
	CreatedAt  time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for Report
func (Report) TableName() string {
	return "rep_reports"
}

// TargetTypeUser marks reports filed against an account rather than content
const TargetTypeUser = "user"
