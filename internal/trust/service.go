package trust

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"github.com/forumforge/reputation/internal/cache"
	"github.com/forumforge/reputation/internal/db"
	"github.com/forumforge/reputation/internal/models"
	"github.com/forumforge/reputation/pkg/config"
	"github.com/forumforge/reputation/pkg/logging"
)

// Service derives trust levels from karma, account age, report history and
// community participation, and persists them for cheap reads
type Service struct {
	db             *db.DB
	repo           *db.Repository
	cache          *cache.Cache
	workers        int
	leaderboardTTL time.Duration
	logger         *zap.Logger
}

// NewService creates a new trust service
func NewService(database *db.DB, redisCache *cache.Cache, cfg *config.EngineConfig) *Service {
	return &Service{
		db:             database,
		repo:           db.NewRepository(database.DB),
		cache:          redisCache,
		workers:        cfg.RecomputeWorkers,
		leaderboardTTL: cfg.LeaderboardTTL,
		logger:         logging.WithComponent("trust-service"),
	}
}

// BatchResult reports the outcome of a batch recompute
type BatchResult struct {
	Processed  int64 `json:"processed"`
	Successful int64 `json:"successful"`
	Failed     int64 `json:"failed"`
}

// GatherInputs assembles the calculation inputs for one user
func (s *Service) GatherInputs(ctx context.Context, userID int64) (*Inputs, error) {
	users := db.NewUserRepository(s.repo)
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.gatherInputsForUser(ctx, user)
}

func (s *Service) gatherInputsForUser(ctx context.Context, user *models.User) (*Inputs, error) {
	reports := db.NewReportRepository(s.repo)
	reportsReceived, err := reports.CountReceived(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	reportsAccepted, err := reports.CountAccepted(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	var participation struct {
		Communities int64
		Karma       int64
	}
	if err := s.db.WithContext(ctx).
		Model(&models.CommunityReputation{}).
		Where("user_id = ?", user.ID).
		Select("COUNT(*) AS communities, COALESCE(SUM(total_karma), 0) AS karma").
		Scan(&participation).Error; err != nil {
		return nil, err
	}

	return &Inputs{
		TotalKarma:                user.TotalKarma(),
		PostKarma:                 user.PostKarma,
		CommentKarma:              user.CommentKarma,
		AccountAgeDays:            AccountAgeDays(user.CreatedAt, time.Now().UTC()),
		ReportsReceived:           reportsReceived,
		ReportsAccepted:           reportsAccepted,
		CommunitiesParticipatedIn: participation.Communities,
		TotalCommunityKarma:       participation.Karma,
	}, nil
}

// Recompute recalculates and persists one user's trust level
func (s *Service) Recompute(ctx context.Context, userID int64) (*models.TrustLevel, error) {
	inputs, err := s.GatherInputs(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := Compute(*inputs)
	now := time.Now().UTC()

	row := models.TrustLevel{
		UserID:                    userID,
		Level:                     result.Level,
		LevelName:                 result.LevelName,
		TrustScore:                result.TrustScore,
		KarmaComponent:            roundComponent(result.Components.Karma),
		AccountAgeComponent:       roundComponent(result.Components.AccountAge),
		ReportComponent:           roundComponent(result.Components.Report),
		ParticipationComponent:    roundComponent(result.Components.Participation),
		TotalKarma:                inputs.TotalKarma,
		PostKarma:                 inputs.PostKarma,
		CommentKarma:              inputs.CommentKarma,
		AccountAgeDays:            inputs.AccountAgeDays,
		ReportsReceived:           inputs.ReportsReceived,
		ReportsAccepted:           inputs.ReportsAccepted,
		CommunitiesParticipatedIn: inputs.CommunitiesParticipatedIn,
		CommunityKarma:            inputs.TotalCommunityKarma,
		LastCalculatedAt:          now,
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"level", "level_name", "trust_score",
			"karma_component", "account_age_component", "report_component", "participation_component",
			"total_karma", "post_karma", "comment_karma", "account_age_days",
			"reports_received", "reports_accepted", "communities_participated_in", "community_karma",
			"last_calculated_at",
		}),
	}).Create(&row).Error; err != nil {
		return nil, err
	}

	s.logger.Debug("Recomputed trust level",
		zap.Int64("user_id", userID),
		zap.Int64("trust_score", result.TrustScore),
		zap.Int16("level", result.Level))

	return &row, nil
}

// GetOrCompute returns a user's persisted trust level, computing it on
// first read
func (s *Service) GetOrCompute(ctx context.Context, userID int64) (*models.TrustLevel, error) {
	levels := db.NewTrustLevelRepository(s.repo)
	row, err := levels.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if row != nil {
		return row, nil
	}
	return s.Recompute(ctx, userID)
}

// RecomputeAll recalculates trust for every user. Per-user failures are
// logged and counted, never abort the batch.
func (s *Service) RecomputeAll(ctx context.Context) (*BatchResult, error) {
	users := db.NewUserRepository(s.repo)
	userIDs, err := users.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	var result BatchResult
	ids := make(chan int64)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for userID := range ids {
				atomic.AddInt64(&result.Processed, 1)
				if _, err := s.Recompute(ctx, userID); err != nil {
					atomic.AddInt64(&result.Failed, 1)
					s.logger.Error("Failed to recompute trust level",
						zap.Int64("user_id", userID),
						zap.Error(err))
					continue
				}
				atomic.AddInt64(&result.Successful, 1)
			}
		}()
	}

	for _, userID := range userIDs {
		select {
		case <-ctx.Done():
			close(ids)
			wg.Wait()
			return &result, ctx.Err()
		case ids <- userID:
		}
	}
	close(ids)
	wg.Wait()

	s.logger.Info("Batch trust recompute finished",
		zap.Int64("processed", result.Processed),
		zap.Int64("successful", result.Successful),
		zap.Int64("failed", result.Failed))

	return &result, nil
}

func roundComponent(v float64) int64 {
	return int64(math.Round(v))
}
