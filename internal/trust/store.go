package trust

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/forumforge/reputation/internal/cache"
	"github.com/forumforge/reputation/internal/models"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// Pagination is the effective paging window of a list read, echoed back to
// the caller alongside the total row count
type Pagination struct {
	Total int64 `json:"total"`
	Limit int   `json:"limit"`
	Skip  int   `json:"skip"`
}

// clampPage bounds a requested paging window to the supported range
func clampPage(limit, skip int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if skip < 0 {
		skip = 0
	}
	return limit, skip
}

// Leaderboard returns the top users by trust score, ties broken by row
// order. Served from cache when possible; short TTL keeps it fresh enough.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]*models.TrustLevel, error) {
	limit, _ = clampPage(limit, 0)

	cacheKey := cache.HashKey("trust", "leaderboard", strconv.Itoa(limit))
	if s.cache != nil {
		var cached []*models.TrustLevel
		if err := s.cache.GetJSON(cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	var rows []*models.TrustLevel
	if err := s.db.WithContext(ctx).
		Order("trust_score DESC, id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(cacheKey, rows, s.leaderboardTTL); err != nil {
			s.logger.Warn("Failed to cache leaderboard", zap.Error(err))
		}
	}

	return rows, nil
}

// ByLevel returns users at one discrete trust level with the effective
// paging window and total count
func (s *Service) ByLevel(ctx context.Context, level int16, limit, skip int) ([]*models.TrustLevel, *Pagination, error) {
	if level < 0 || level > 4 {
		return nil, nil, ErrInvalidTrustLevel
	}
	limit, skip = clampPage(limit, skip)

	var rows []*models.TrustLevel
	if err := s.db.WithContext(ctx).
		Where("level = ?", level).
		Order("trust_score DESC, id ASC").
		Limit(limit).
		Offset(skip).
		Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	var total int64
	if err := s.db.WithContext(ctx).
		Model(&models.TrustLevel{}).
		Where("level = ?", level).
		Count(&total).Error; err != nil {
		return nil, nil, err
	}

	return rows, &Pagination{Total: total, Limit: limit, Skip: skip}, nil
}

// LevelStatistics aggregates trust scores within one level
type LevelStatistics struct {
	Level         int16   `json:"level" gorm:"column:level"`
	Count         int64   `json:"count" gorm:"column:count"`
	AvgTrustScore float64 `json:"avg_trust_score" gorm:"column:avg_trust_score"`
	MinTrustScore int64   `json:"min_trust_score" gorm:"column:min_trust_score"`
	MaxTrustScore int64   `json:"max_trust_score" gorm:"column:max_trust_score"`
}

// Statistics is the per-level aggregate view over all trust rows
type Statistics struct {
	TotalUsers int64             `json:"total_users"`
	ByLevel    []LevelStatistics `json:"by_level"`
	LevelNames map[int16]string  `json:"level_names"`
}

// GetStatistics returns count/avg/min/max trust score grouped by level
func (s *Service) GetStatistics(ctx context.Context) (*Statistics, error) {
	var byLevel []LevelStatistics
	if err := s.db.WithContext(ctx).
		Model(&models.TrustLevel{}).
		Select("level, COUNT(*) AS count, AVG(trust_score) AS avg_trust_score, " +
			"MIN(trust_score) AS min_trust_score, MAX(trust_score) AS max_trust_score").
		Group("level").
		Order("level ASC").
		Scan(&byLevel).Error; err != nil {
		return nil, err
	}

	var total int64
	if err := s.db.WithContext(ctx).
		Model(&models.TrustLevel{}).
		Count(&total).Error; err != nil {
		return nil, err
	}

	names := make(map[int16]string, 5)
	for level := int16(0); level <= 4; level++ {
		names[level] = LevelName(level)
	}

	return &Statistics{
		TotalUsers: total,
		ByLevel:    byLevel,
		LevelNames: names,
	}, nil
}

// Thresholds describes the level boundaries for breakdown responses
type Thresholds struct {
	Level    int16  `json:"level"`
	MinScore int64  `json:"min_score"`
	Name     string `json:"name"`
}

// LevelThresholds returns the level boundary table, lowest level first
func LevelThresholds() []Thresholds {
	out := make([]Thresholds, 0, len(levelThresholds))
	for i := len(levelThresholds) - 1; i >= 0; i-- {
		t := levelThresholds[i]
		out = append(out, Thresholds{Level: t.level, MinScore: t.minScore, Name: t.name})
	}
	return out
}
