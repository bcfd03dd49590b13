package models

import (
	"time"
)

// User represents an account as seen by the reputation engine.
// Identity and sessions are owned elsewhere; this table carries only the
// fields the engine reads (created_at) and writes (karma counters).
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Username  string    `gorm:"type:varchar(32);not null;uniqueIndex:rep_users_ux1;column:username"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	// Global karma, maintained incrementally by the vote ledger and
	// overwritten by reconciliation
	PostKarma    int64 `gorm:"not null;default:0;column:post_karma"`
	CommentKarma int64 `gorm:"not null;default:0;column:comment_karma"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "rep_users"
}

// TotalKarma returns post plus comment karma
func (u *User) TotalKarma() int64 {
	return u.PostKarma + u.CommentKarma
}
