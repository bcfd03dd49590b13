package karma

import (
	"context"

	"github.com/forumforge/reputation/internal/db"
	"github.com/forumforge/reputation/internal/models"
)

// Summary is a user's global karma split by content type
type Summary struct {
	PostKarma    int64 `json:"post_karma"`
	CommentKarma int64 `json:"comment_karma"`
	TotalKarma   int64 `json:"total_karma"`
}

// ReputationSnapshot is a user's standing in one community
type ReputationSnapshot struct {
	CommunityID   int64 `json:"community_id"`
	PostKarma     int64 `json:"post_karma"`
	CommentKarma  int64 `json:"comment_karma"`
	TotalKarma    int64 `json:"total_karma"`
	PostsCount    int64 `json:"posts_count"`
	CommentsCount int64 `json:"comments_count"`
}

// GetUserKarma returns a user's global karma
func (l *Ledger) GetUserKarma(ctx context.Context, userID int64) (*Summary, error) {
	users := db.NewUserRepository(l.repo)
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return &Summary{
		PostKarma:    user.PostKarma,
		CommentKarma: user.CommentKarma,
		TotalKarma:   user.TotalKarma(),
	}, nil
}

// GetVote returns a voter's current vote on a target, or nil when none
// exists
func (l *Ledger) GetVote(ctx context.Context, voterID int64, targetType string, targetID int64) (*models.Vote, error) {
	if !validTargetType(targetType) {
		return nil, ErrInvalidTargetType
	}
	votes := db.NewVoteRepository(l.repo)
	return votes.Get(ctx, voterID, targetType, targetID)
}

// GetCommunityReputation returns a user's reputation in one community.
// A user with no activity there gets a zero-valued snapshot, not an error.
func (l *Ledger) GetCommunityReputation(ctx context.Context, userID, communityID int64) (*ReputationSnapshot, error) {
	reputations := db.NewReputationRepository(l.repo)
	rep, err := reputations.Get(ctx, userID, communityID)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return &ReputationSnapshot{CommunityID: communityID}, nil
	}
	return snapshotFromModel(rep), nil
}

// ListCommunityReputations returns a user's reputation in every community
// they have participated in
func (l *Ledger) ListCommunityReputations(ctx context.Context, userID int64) ([]*ReputationSnapshot, error) {
	reputations := db.NewReputationRepository(l.repo)
	reps, err := reputations.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]*ReputationSnapshot, 0, len(reps))
	for _, rep := range reps {
		out = append(out, snapshotFromModel(rep))
	}
	return out, nil
}

func snapshotFromModel(rep *models.CommunityReputation) *ReputationSnapshot {
	return &ReputationSnapshot{
		CommunityID:   rep.CommunityID,
		PostKarma:     rep.PostKarma,
		CommentKarma:  rep.CommentKarma,
		TotalKarma:    rep.TotalKarma,
		PostsCount:    rep.PostsCount,
		CommentsCount: rep.CommentsCount,
	}
}
