package models

import (
	"database/sql"
	"time"
)

// Post represents a top-level piece of content with its vote counters.
// Content lifecycle is owned by the content service; the engine owns the
// vote_score, upvote_count, downvote_count and comment_count columns.
type Post struct {
	ID          int64         `gorm:"primaryKey;autoIncrement;column:id"`
	AuthorID    int64         `gorm:"not null;index;column:author_id"`
	CommunityID sql.NullInt64 `gorm:"index;column:community_id"`
	CreatedAt   time.Time     `gorm:"not null;column:created_at"`

	VoteScore     int64 `gorm:"not null;default:0;column:vote_score"`
	UpvoteCount   int64 `gorm:"not null;default:0;column:upvote_count"`
	DownvoteCount int64 `gorm:"not null;default:0;column:downvote_count"`
	CommentCount  int64 `gorm:"not null;default:0;column:comment_count"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "rep_posts"
}

// Comment represents a comment with its vote counters. Community scoping
// is inherited from the parent post, never stored on the comment itself.
type Comment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	PostID    int64     `gorm:"not null;index;column:post_id"`
	AuthorID  int64     `gorm:"not null;index;column:author_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	VoteScore     int64 `gorm:"not null;default:0;column:vote_score"`
	UpvoteCount   int64 `gorm:"not null;default:0;column:upvote_count"`
	DownvoteCount int64 `gorm:"not null;default:0;column:downvote_count"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "rep_comments"
}
