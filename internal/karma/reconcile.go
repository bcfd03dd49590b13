package karma

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/forumforge/reputation/internal/db"
	"github.com/forumforge/reputation/internal/models"
	"github.com/forumforge/reputation/pkg/logging"
)

// Reconciler recomputes derived aggregates from ground truth. Incremental
// updates can drift under partial failures or manual edits; a recompute
// must produce the same state as replaying every historical vote through
// the ledger from empty.
type Reconciler struct {
	db     *db.DB
	logger *zap.Logger
}

// NewReconciler creates a new reconciler
func NewReconciler(database *db.DB) *Reconciler {
	return &Reconciler{
		db:     database,
		logger: logging.WithComponent("reconciler"),
	}
}

// RecomputeUserKarma sums vote_score over all of a user's posts and
// comments and overwrites the karma counters. Idempotent; safe to run
// concurrently with live voting.
func (r *Reconciler) RecomputeUserKarma(ctx context.Context, userID int64) (*Summary, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var postKarma, commentKarma int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("author_id = ?", userID).
		Select("COALESCE(SUM(vote_score), 0)").
		Scan(&postKarma).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("author_id = ?", userID).
		Select("COALESCE(SUM(vote_score), 0)").
		Scan(&commentKarma).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumns(map[string]interface{}{
			"post_karma":    postKarma,
			"comment_karma": commentKarma,
		}).Error; err != nil {
		return nil, err
	}

	r.logger.Info("Recomputed user karma",
		zap.Int64("user_id", userID),
		zap.Int64("post_karma", postKarma),
		zap.Int64("comment_karma", commentKarma))

	return &Summary{
		PostKarma:    postKarma,
		CommentKarma: commentKarma,
		TotalKarma:   postKarma + commentKarma,
	}, nil
}

// RecomputeCommunityReputation rebuilds one (user, community) reputation
// row from the user's posts in the community and their comments on the
// community's posts, then overwrites it.
func (r *Reconciler) RecomputeCommunityReputation(ctx context.Context, userID, communityID int64) (*ReputationSnapshot, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	type aggregate struct {
		Karma int64
		Count int64
	}

	var posts aggregate
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("author_id = ? AND community_id = ?", userID, communityID).
		Select("COALESCE(SUM(vote_score), 0) AS karma, COUNT(*) AS count").
		Scan(&posts).Error; err != nil {
		return nil, err
	}

	var comments aggregate
	if err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Joins("JOIN rep_posts ON rep_posts.id = rep_comments.post_id").
		Where("rep_comments.author_id = ? AND rep_posts.community_id = ?", userID, communityID).
		Select("COALESCE(SUM(rep_comments.vote_score), 0) AS karma, COUNT(*) AS count").
		Scan(&comments).Error; err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	totalKarma := posts.Karma + comments.Karma
	rep := models.CommunityReputation{
		UserID:        userID,
		CommunityID:   communityID,
		PostKarma:     posts.Karma,
		CommentKarma:  comments.Karma,
		TotalKarma:    totalKarma,
		PostsCount:    posts.Count,
		CommentsCount: comments.Count,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "community_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"post_karma":     posts.Karma,
			"comment_karma":  comments.Karma,
			"total_karma":    totalKarma,
			"posts_count":    posts.Count,
			"comments_count": comments.Count,
			"updated_at":     now,
		}),
	}).Create(&rep).Error; err != nil {
		return nil, err
	}

	r.logger.Info("Recomputed community reputation",
		zap.Int64("user_id", userID),
		zap.Int64("community_id", communityID),
		zap.Int64("total_karma", totalKarma))

	return &ReputationSnapshot{
		CommunityID:   communityID,
		PostKarma:     posts.Karma,
		CommentKarma:  comments.Karma,
		TotalKarma:    totalKarma,
		PostsCount:    posts.Count,
		CommentsCount: comments.Count,
	}, nil
}

// RecomputeUserCommunities rebuilds every community reputation row the
// user already has
func (r *Reconciler) RecomputeUserCommunities(ctx context.Context, userID int64) error {
	var communityIDs []int64
	if err := r.db.WithContext(ctx).
		Model(&models.CommunityReputation{}).
		Where("user_id = ?", userID).
		Pluck("community_id", &communityIDs).Error; err != nil {
		return err
	}

	for _, communityID := range communityIDs {
		if _, err := r.RecomputeCommunityReputation(ctx, userID, communityID); err != nil {
			return err
		}
	}
	return nil
}
