package karma

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/forumforge/reputation/internal/db"
	"github.com/forumforge/reputation/internal/events"
	"github.com/forumforge/reputation/internal/models"
	"github.com/forumforge/reputation/pkg/config"
	"github.com/forumforge/reputation/pkg/logging"
)

// VoteResult is the target's counter state after a vote transition
type VoteResult struct {
	VoteScore int64 `json:"vote_score"`
	Upvotes   int64 `json:"upvotes"`
	Downvotes int64 `json:"downvotes"`
}

// Ledger owns the vote records and every counter derived from them. All
// writes to user karma and community reputation flow through here or
// through the Reconciler, never anywhere else.
type Ledger struct {
	db         *db.DB
	repo       *db.Repository
	events     *events.Producer
	maxRetries int
	logger     *zap.Logger
}

// NewLedger creates a new vote ledger
func NewLedger(database *db.DB, producer *events.Producer, cfg *config.EngineConfig) *Ledger {
	return &Ledger{
		db:         database,
		repo:       db.NewRepository(database.DB),
		events:     producer,
		maxRetries: cfg.VoteMaxRetries,
		logger:     logging.WithComponent("vote-ledger"),
	}
}

// CastVote applies one user's vote on one target. The vote row mutation,
// the target counters, the author's karma and the community reputation all
// commit in a single transaction; on serialization conflicts the whole
// transaction is retried a bounded number of times.
func (l *Ledger) CastVote(ctx context.Context, voterID int64, targetType string, targetID int64, value int16) (*VoteResult, error) {
	if !validVoteValue(value) {
		return nil, ErrInvalidVoteValue
	}
	if !validTargetType(targetType) {
		return nil, ErrInvalidTargetType
	}

	var (
		result *VoteResult
		event  *events.VoteEvent
	)

	operation := func() error {
		res, ev, err := l.castVoteTx(ctx, voterID, targetType, targetID, value)
		if err != nil {
			if isRetryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		result, event = res, ev
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 10 * time.Millisecond
	policy.MaxElapsedTime = 5 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(l.maxRetries)), ctx)); err != nil {
		return nil, err
	}

	// Best-effort audit event; the vote has already committed
	if err := l.events.PublishVote(ctx, event); err != nil {
		l.logger.Error("Failed to publish vote event",
			zap.Int64("voter_id", voterID),
			zap.String("target_type", targetType),
			zap.Int64("target_id", targetID),
			zap.Error(err))
	}

	return result, nil
}

// castVoteTx runs a single attempt of the vote transaction
func (l *Ledger) castVoteTx(ctx context.Context, voterID int64, targetType string, targetID int64, value int16) (*VoteResult, *events.VoteEvent, error) {
	var (
		result VoteResult
		event  events.VoteEvent
	)

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the target row; concurrent votes on the same target
		// serialize here, and so do concurrent first-votes by the same
		// voter, which re-read the vote row below after the lock.
		target, err := lockTarget(tx, targetType, targetID)
		if err != nil {
			return err
		}

		if err := validateVotePolicy(target.authorID, voterID); err != nil {
			return err
		}

		var existing *models.Vote
		var vote models.Vote
		err = tx.Where("voter_id = ? AND target_type = ? AND target_id = ?", voterID, targetType, targetID).
			First(&vote).Error
		switch {
		case err == nil:
			existing = &vote
		case errors.Is(err, gorm.ErrRecordNotFound):
			existing = nil
		default:
			return err
		}

		tr := resolveTransition(existing, value)

		switch tr.Action {
		case ActionCreate:
			now := time.Now().UTC()
			if err := tx.Create(&models.Vote{
				VoterID:    voterID,
				TargetType: targetType,
				TargetID:   targetID,
				Value:      value,
				CreatedAt:  now,
				UpdatedAt:  now,
			}).Error; err != nil {
				return err
			}
		case ActionRemove:
			if err := tx.Delete(&models.Vote{}, existing.ID).Error; err != nil {
				return err
			}
		case ActionFlip:
			if err := tx.Model(&models.Vote{}).Where("id = ?", existing.ID).
				Updates(map[string]interface{}{
					"value":      value,
					"updated_at": time.Now().UTC(),
				}).Error; err != nil {
				return err
			}
		}

		if err := applyDelta(tx, targetType, targetID, target.authorID, target.communityID, tr); err != nil {
			return err
		}

		result = VoteResult{
			VoteScore: target.voteScore + tr.Delta,
			Upvotes:   target.upvotes + tr.UpDelta,
			Downvotes: target.downvotes + tr.DownDelta,
		}
		event = events.VoteEvent{
			VoterID:    voterID,
			AuthorID:   target.authorID,
			TargetType: targetType,
			TargetID:   targetID,
			Action:     tr.Action,
			Value:      value,
			Delta:      tr.Delta,
			VoteScore:  result.VoteScore,
			OccurredAt: time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &result, &event, nil
}

// lockedTarget is the state of the vote target read under FOR UPDATE
type lockedTarget struct {
	authorID    int64
	communityID *int64
	voteScore   int64
	upvotes     int64
	downvotes   int64
}

func lockTarget(tx *gorm.DB, targetType string, targetID int64) (*lockedTarget, error) {
	switch targetType {
	case models.TargetTypePost:
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTargetNotFound
			}
			return nil, err
		}
		t := &lockedTarget{
			authorID:  post.AuthorID,
			voteScore: post.VoteScore,
			upvotes:   post.UpvoteCount,
			downvotes: post.DownvoteCount,
		}
		if post.CommunityID.Valid {
			id := post.CommunityID.Int64
			t.communityID = &id
		}
		return t, nil

	case models.TargetTypeComment:
		var comment models.Comment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&comment, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTargetNotFound
			}
			return nil, err
		}
		t := &lockedTarget{
			authorID:  comment.AuthorID,
			voteScore: comment.VoteScore,
			upvotes:   comment.UpvoteCount,
			downvotes: comment.DownvoteCount,
		}
		// Community scoping is inherited from the parent post
		var post models.Post
		if err := tx.First(&post, comment.PostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return t, nil
			}
			return nil, err
		}
		if post.CommunityID.Valid {
			id := post.CommunityID.Int64
			t.communityID = &id
		}
		return t, nil
	}
	return nil, ErrInvalidTargetType
}

// applyDelta moves the target counters, the author's karma and the
// community reputation by one transition, inside the caller's transaction
func applyDelta(tx *gorm.DB, targetType string, targetID, authorID int64, communityID *int64, tr Transition) error {
	counterUpdates := map[string]interface{}{
		"vote_score":     gorm.Expr("vote_score + ?", tr.Delta),
		"upvote_count":   gorm.Expr("upvote_count + ?", tr.UpDelta),
		"downvote_count": gorm.Expr("downvote_count + ?", tr.DownDelta),
	}

	var model interface{}
	if targetType == models.TargetTypePost {
		model = &models.Post{}
	} else {
		model = &models.Comment{}
	}
	if err := tx.Model(model).Where("id = ?", targetID).UpdateColumns(counterUpdates).Error; err != nil {
		return err
	}

	karmaColumn := "post_karma"
	if targetType == models.TargetTypeComment {
		karmaColumn = "comment_karma"
	}
	if err := tx.Model(&models.User{}).Where("id = ?", authorID).
		UpdateColumn(karmaColumn, gorm.Expr(karmaColumn+" + ?", tr.Delta)).Error; err != nil {
		return err
	}

	if communityID != nil {
		return upsertReputationKarma(tx, authorID, *communityID, karmaColumn, tr.Delta)
	}
	return nil
}

// upsertReputationKarma adds delta to one karma column and total_karma,
// creating the reputation row if this is the user's first activity in the
// community. Single statement, never read-then-write.
func upsertReputationKarma(tx *gorm.DB, userID, communityID int64, karmaColumn string, delta int64) error {
	now := time.Now().UTC()
	rep := models.CommunityReputation{
		UserID:      userID,
		CommunityID: communityID,
		TotalKarma:  delta,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if karmaColumn == "post_karma" {
		rep.PostKarma = delta
	} else {
		rep.CommentKarma = delta
	}

	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "community_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			karmaColumn:   gorm.Expr(karmaColumn+" + ?", delta),
			"total_karma": gorm.Expr("total_karma + ?", delta),
			"updated_at":  now,
		}),
	}).Create(&rep).Error
}

// RecordContentCreated increments the counters a new piece of content
// moves: the parent post's comment count for comments with a known parent,
// and the author's community content counter when the content has a
// community. No-op when neither applies.
func (l *Ledger) RecordContentCreated(ctx context.Context, authorID int64, communityID *int64, contentType string, parentPostID *int64) error {
	if !validTargetType(contentType) {
		return ErrInvalidTargetType
	}

	eff := resolveContentCreated(contentType, communityID, parentPostID)
	if !eff.BumpParentComments && eff.ReputationColumn == "" {
		return nil
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if eff.BumpParentComments {
			res := tx.Model(&models.Post{}).
				Where("id = ?", *parentPostID).
				UpdateColumn("comment_count", gorm.Expr("comment_count + 1"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrTargetNotFound
			}
		}
		if eff.ReputationColumn == "" {
			return nil
		}

		now := time.Now().UTC()
		rep := models.CommunityReputation{
			UserID:      authorID,
			CommunityID: *communityID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if contentType == models.TargetTypePost {
			rep.PostsCount = 1
		} else {
			rep.CommentsCount = 1
		}

		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "community_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				eff.ReputationColumn: gorm.Expr(eff.ReputationColumn + " + 1"),
				"updated_at":         now,
			}),
		}).Create(&rep).Error
	})
}

// isRetryable reports whether a transaction error is a transient conflict
// worth retrying (serialization failure or deadlock)
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 40001") ||
		strings.Contains(msg, "SQLSTATE 40P01") ||
		strings.Contains(msg, "deadlock detected")
}
