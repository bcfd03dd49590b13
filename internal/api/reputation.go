package api

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/forumforge/reputation/internal/karma"
	"github.com/forumforge/reputation/internal/models"
)

// ReputationAPI provides vote ledger and karma methods
type ReputationAPI struct {
	ledger     *karma.Ledger
	reconciler *karma.Reconciler
}

// NewReputationAPI creates a new reputation API
func NewReputationAPI(ledger *karma.Ledger, reconciler *karma.Reconciler) *ReputationAPI {
	return &ReputationAPI{ledger: ledger, reconciler: reconciler}
}

// CastVote handles rep_api.cast_vote
func (a *ReputationAPI) CastVote(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		VoterID    int64  `json:"voter_id"`
		TargetType string `json:"target_type"`
		TargetID   int64  `json:"target_id"`
		Value      int16  `json:"value"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadParams, err)
	}
	if p.VoterID <= 0 || p.TargetID <= 0 {
		return nil, fmt.Errorf("%w: voter_id and target_id are required", errBadParams)
	}

	return a.ledger.CastVote(ctx.Request.Context(), p.VoterID, p.TargetType, p.TargetID, p.Value)
}

// GetVote handles rep_api.get_vote. Absent votes answer with value 0 so
// clients can render vote state without a lookup error path.
func (a *ReputationAPI) GetVote(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		VoterID    int64  `json:"voter_id"`
		TargetType string `json:"target_type"`
		TargetID   int64  `json:"target_id"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadParams, err)
	}
	if p.VoterID <= 0 || p.TargetID <= 0 {
		return nil, fmt.Errorf("%w: voter_id and target_id are required", errBadParams)
	}

	vote, err := a.ledger.GetVote(ctx.Request.Context(), p.VoterID, p.TargetType, p.TargetID)
	if err != nil {
		return nil, err
	}
	if vote == nil {
		return gin.H{"value": 0}, nil
	}
	return gin.H{
		"value":      vote.Value,
		"created_at": vote.CreatedAt,
		"updated_at": vote.UpdatedAt,
	}, nil
}

// RecordContentCreated handles rep_api.record_content_created. For
// comments, post_id names the parent post whose comment count moves.
func (a *ReputationAPI) RecordContentCreated(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		AuthorID    int64  `json:"author_id"`
		CommunityID *int64 `json:"community_id"`
		ContentType string `json:"content_type"`
		PostID      *int64 `json:"post_id"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadParams, err)
	}
	if p.AuthorID <= 0 {
		return nil, fmt.Errorf("%w: author_id is required", errBadParams)
	}

	if err := a.ledger.RecordContentCreated(ctx.Request.Context(), p.AuthorID, p.CommunityID, p.ContentType, p.PostID); err != nil {
		return nil, err
	}
	recorded := p.CommunityID != nil ||
		(p.ContentType == models.TargetTypeComment && p.PostID != nil)
	return gin.H{"recorded": recorded}, nil
}

// GetUserKarma handles rep_api.get_user_karma
func (a *ReputationAPI) GetUserKarma(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	userID, err := parseUserID(params)
	if err != nil {
		return nil, err
	}
	return a.ledger.GetUserKarma(ctx.Request.Context(), userID)
}

// GetCommunityReputation handles rep_api.get_community_reputation
func (a *ReputationAPI) GetCommunityReputation(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	userID, communityID, err := parseUserCommunity(params)
	if err != nil {
		return nil, err
	}
	return a.ledger.GetCommunityReputation(ctx.Request.Context(), userID, communityID)
}

// ListCommunityReputations handles rep_api.list_community_reputations
func (a *ReputationAPI) ListCommunityReputations(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	userID, err := parseUserID(params)
	if err != nil {
		return nil, err
	}
	return a.ledger.ListCommunityReputations(ctx.Request.Context(), userID)
}

// RecomputeUserKarma handles rep_api.recompute_user_karma
func (a *ReputationAPI) RecomputeUserKarma(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	userID, err := parseUserID(params)
	if err != nil {
		return nil, err
	}
	return a.reconciler.RecomputeUserKarma(ctx.Request.Context(), userID)
}

// RecomputeCommunityReputation handles rep_api.recompute_community_reputation
func (a *ReputationAPI) RecomputeCommunityReputation(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	userID, communityID, err := parseUserCommunity(params)
	if err != nil {
		return nil, err
	}
	return a.reconciler.RecomputeCommunityReputation(ctx.Request.Context(), userID, communityID)
}

func parseUserID(params json.RawMessage) (int64, error) {
	var p struct {
		UserID int64 `json:"user_id"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return 0, fmt.Errorf("%w: %v", errBadParams, err)
	}
	if p.UserID <= 0 {
		return 0, fmt.Errorf("%w: user_id is required", errBadParams)
	}
	return p.UserID, nil
}

func parseUserCommunity(params json.RawMessage) (int64, int64, error) {
	var p struct {
		UserID      int64 `json:"user_id"`
		CommunityID int64 `json:"community_id"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", errBadParams, err)
	}
	if p.UserID <= 0 || p.CommunityID <= 0 {
		return 0, 0, fmt.Errorf("%w: user_id and community_id are required", errBadParams)
	}
	return p.UserID, p.CommunityID, nil
}
