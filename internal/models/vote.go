package models

import (
	"time"
)

// Target type constants for votes and reports
const (
	TargetTypePost    = "post"
	TargetTypeComment = "comment"
)

// Vote is the single durable record of voter intent: at most one row per
// (voter, target_type, target_id). The unique index is load-bearing — it is
// what makes two concurrent first-votes race safely.
type Vote struct {
	ID         int64     `gorm:"primaryKey;autoIncrement;column:id"`
	VoterID    int64     `gorm:"not null;uniqueIndex:rep_votes_ux1;column:voter_id"`
	TargetType string    `gorm:"type:varchar(8);not null;uniqueIndex:rep_votes_ux1;column:target_type"`
	TargetID   int64     `gorm:"not null;uniqueIndex:rep_votes_ux1;column:target_id"`
	Value      int16     `gorm:"type:smallint;not null;column:value"`
	CreatedAt  time.Time `gorm:"not null;column:created_at"`
	UpdatedAt  time.Time `gorm:"not null;column:updated_at"`
}

// TableName specifies the table name for Vote
func (Vote) TableName() string {
	return "rep_votes"
}
