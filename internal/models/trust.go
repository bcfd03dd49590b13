package models

import (
	"time"
)

// Trust level constants
const (
	TrustLevelNewcomer        int16 = 0
	TrustLevelMember          int16 = 1
	TrustLevelContributor     int16 = 2
	TrustLevelTrusted         int16 = 3
	TrustLevelCommunityLeader int16 = 4
)

// TrustLevel is the persisted output of the trust score calculator: one row
// per user, always reproducible from current karma, account age, report
// aggregates and community participation. Read-only outside the trust
// service.
type TrustLevel struct {
	ID     int64 `gorm:"primaryKey;autoIncrement;column:id"`
	UserID int64 `gorm:"not null;uniqueIndex:rep_trust_levels_ux1;column:user_id"`

	Level      int16  `gorm:"type:smallint;not null;default:0;column:level"`
	LevelName  string `gorm:"type:varchar(32);not null;column:level_name"`
	TrustScore int64  `gorm:"not null;default:0;column:trust_score"`

	// Component scores, rounded for persistence
	KarmaComponent         int64 `gorm:"not null;default:0;column:karma_component"`
	AccountAgeComponent    int64 `gorm:"not null;default:0;column:account_age_component"`
	ReportComponent        int64 `gorm:"not null;default:0;column:report_component"`
	ParticipationComponent int64 `gorm:"not null;default:0;column:participation_component"`

	// Input snapshot at calculation time
	TotalKarma                int64 `gorm:"not null;default:0;column:total_karma"`
	PostKarma                 int64 `gorm:"not null;default:0;column:post_karma"`
	CommentKarma              int64 `gorm:"not null;default:0;column:comment_karma"`
	AccountAgeDays            int64 `gorm:"not null;default:0;column:account_age_days"`
	ReportsReceived           int64 `gorm:"not null;default:0;column:reports_received"`
	ReportsAccepted           int64 `gorm:"not null;default:0;column:reports_accepted"`
	CommunitiesParticipatedIn int64 `gorm:"not null;default:0;column:communities_participated_in"`
	CommunityKarma            int64 `gorm:"not null;default:0;column:community_karma"`

	LastCalculatedAt time.Time `gorm:"not null;column:last_calculated_at"`
}

// TableName specifies the table name for TrustLevel
func (TrustLevel) TableName() string {
	return "rep_trust_levels"
}
