package api

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/forumforge/reputation/internal/models"
	"github.com/forumforge/reputation/internal/trust"
)

// TrustAPI provides trust level read and recompute methods
type TrustAPI struct {
	service *trust.Service
}

// NewTrustAPI creates a new trust API
func NewTrustAPI(service *trust.Service) *TrustAPI {
	return &TrustAPI{service: service}
}

// GetTrustLevel handles trust_api.get_trust_level
func (a *TrustAPI) GetTrustLevel(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	userID, err := parseUserID(params)
	if err != nil {
		return nil, err
	}

	row, err := a.service.GetOrCompute(ctx.Request.Context(), userID)
	if err != nil {
		return nil, err
	}
	return trustLevelView(row), nil
}

// GetBreakdown handles trust_api.get_breakdown
func (a *TrustAPI) GetBreakdown(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	userID, err := parseUserID(params)
	if err != nil {
		return nil, err
	}

	row, err := a.service.GetOrCompute(ctx.Request.Context(), userID)
	if err != nil {
		return nil, err
	}

	return gin.H{
		"user_id":     row.UserID,
		"level":       row.Level,
		"level_name":  row.LevelName,
		"trust_score": row.TrustScore,
		"components": gin.H{
			"karma": gin.H{
				"score":     row.KarmaComponent,
				"max_score": 25,
				"inputs": gin.H{
					"total_karma":   row.TotalKarma,
					"post_karma":    row.PostKarma,
					"comment_karma": row.CommentKarma,
				},
			},
			"account_age": gin.H{
				"score":     row.AccountAgeComponent,
				"max_score": 15,
				"inputs": gin.H{
					"account_age_days": row.AccountAgeDays,
				},
			},
			"reports": gin.H{
				"score":     row.ReportComponent,
				"max_score": 30,
				"inputs": gin.H{
					"reports_received": row.ReportsReceived,
					"reports_accepted": row.ReportsAccepted,
				},
			},
			"participation": gin.H{
				"score":     row.ParticipationComponent,
				"max_score": 30,
				"inputs": gin.H{
					"communities_participated_in": row.CommunitiesParticipatedIn,
					"community_karma":             row.CommunityKarma,
				},
			},
		},
		"thresholds":         trust.LevelThresholds(),
		"last_calculated_at": row.LastCalculatedAt,
	}, nil
}

// Recompute handles trust_api.recompute
func (a *TrustAPI) Recompute(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	userID, err := parseUserID(params)
	if err != nil {
		return nil, err
	}

	row, err := a.service.Recompute(ctx.Request.Context(), userID)
	if err != nil {
		return nil, err
	}
	return trustLevelView(row), nil
}

// RecomputeAll handles trust_api.recompute_all
func (a *TrustAPI) RecomputeAll(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	return a.service.RecomputeAll(ctx.Request.Context())
}

// Leaderboard handles trust_api.leaderboard
func (a *TrustAPI) Leaderboard(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Limit int `json:"limit"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", errBadParams, err)
		}
	}

	rows, err := a.service.Leaderboard(ctx.Request.Context(), p.Limit)
	if err != nil {
		return nil, err
	}

	entries := make([]gin.H, len(rows))
	for i, row := range rows {
		entry := trustLevelView(row)
		entry["rank"] = i + 1
		entries[i] = entry
	}
	return entries, nil
}

// ByLevel handles trust_api.by_level
func (a *TrustAPI) ByLevel(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		Level int16 `json:"level"`
		Limit int   `json:"limit"`
		Skip  int   `json:"skip"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadParams, err)
	}

	rows, page, err := a.service.ByLevel(ctx.Request.Context(), p.Level, p.Limit, p.Skip)
	if err != nil {
		return nil, err
	}

	users := make([]gin.H, len(rows))
	for i, row := range rows {
		users[i] = trustLevelView(row)
	}

	return gin.H{
		"users":      users,
		"pagination": page,
	}, nil
}

// Statistics handles trust_api.statistics
func (a *TrustAPI) Statistics(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	return a.service.GetStatistics(ctx.Request.Context())
}

func trustLevelView(row *models.TrustLevel) gin.H {
	return gin.H{
		"user_id":            row.UserID,
		"level":              row.Level,
		"level_name":         row.LevelName,
		"trust_score":        row.TrustScore,
		"last_calculated_at": row.LastCalculatedAt,
	}
}
