package models

import (
	"time"
)

// CommunityReputation is a user's karma and content counts scoped to one
// community. Rows are created lazily by upsert on first activity; content
// with no community never creates one.
//
// Invariant: total_karma == post_karma + comment_karma.
type CommunityReputation struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id"`
	UserID      int64     `gorm:"not null;uniqueIndex:rep_community_reputation_ux1;column:user_id"`
	CommunityID int64     `gorm:"not null;uniqueIndex:rep_community_reputation_ux1;column:community_id"`
	CreatedAt   time.Time `gorm:"not null;column:created_at"`
	UpdatedAt   time.Time `gorm:"not null;column:updated_at"`

	PostKarma     int64 `gorm:"not null;default:0;column:post_karma"`
	CommentKarma  int64 `gorm:"not null;default:0;column:comment_karma"`
	TotalKarma    int64 `gorm:"not null;default:0;column:total_karma"`
	PostsCount    int64 `gorm:"not null;default:0;column:posts_count"`
	CommentsCount int64 `gorm:"not null;default:0;column:comments_count"`
}

// TableName specifies the table name for CommunityReputation
func (CommunityReputation) TableName() string {
	return "rep_community_reputation"
}
