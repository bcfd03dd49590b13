package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/forumforge/reputation/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB exposes the underlying handle for transactional callers
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// UserRepository provides user-related database operations
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ListIDs retrieves all user IDs, ordered by primary key
func (r *UserRepository) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// VoteRepository provides vote-related database operations
type VoteRepository struct {
	*Repository
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(repo *Repository) *VoteRepository {
	return &VoteRepository{Repository: repo}
}

// Get retrieves the current vote for a (voter, target) pair
func (r *VoteRepository) Get(ctx context.Context, voterID int64, targetType string, targetID int64) (*models.Vote, error) {
	var vote models.Vote
	if err := r.db.WithContext(ctx).
		Where("voter_id = ? AND target_type = ? AND target_id = ?", voterID, targetType, targetID).
		First(&vote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vote, nil
}

// ReputationRepository provides community reputation database operations
type ReputationRepository struct {
	*Repository
}

// NewReputationRepository creates a new reputation repository
func NewReputationRepository(repo *Repository) *ReputationRepository {
	return &ReputationRepository{Repository: repo}
}

// Get retrieves a user's reputation in one community
func (r *ReputationRepository) Get(ctx context.Context, userID, communityID int64) (*models.CommunityReputation, error) {
	var rep models.CommunityReputation
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND community_id = ?", userID, communityID).
		First(&rep).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rep, nil
}

// ListByUser retrieves all of a user's community reputations
func (r *ReputationRepository) ListByUser(ctx context.Context, userID int64) ([]*models.CommunityReputation, error) {
	var reps []*models.CommunityReputation
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("community_id ASC").
		Find(&reps).Error; err != nil {
		return nil, err
	}
	return reps, nil
}

// TrustLevelRepository provides trust level database operations
type TrustLevelRepository struct {
	*Repository
}

// NewTrustLevelRepository creates a new trust level repository
func NewTrustLevelRepository(repo *Repository) *TrustLevelRepository {
	return &TrustLevelRepository{Repository: repo}
}

// GetByUserID retrieves a user's trust level row
func (r *TrustLevelRepository) GetByUserID(ctx context.Context, userID int64) (*models.TrustLevel, error) {
	var level models.TrustLevel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&level).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &level, nil
}

// ReportRepository provides read-only access to report aggregates
type ReportRepository struct {
	*Repository
}

// NewReportRepository creates a new report repository
func NewReportRepository(repo *Repository) *ReportRepository {
	return &ReportRepository{Repository: repo}
}

// CountReceived counts reports filed against a user
func (r *ReportRepository) CountReceived(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("target_type = ? AND target_id = ?", models.TargetTypeUser, userID).
		Count(&count).Error
	return count, err
}

// CountAccepted counts resolved reports filed against a user
func (r *ReportRepository) CountAccepted(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("target_type = ? AND target_id = ? AND status = ?",
			models.TargetTypeUser, userID, models.ReportStatusResolved).
		Count(&count).Error
	return count, err
}
