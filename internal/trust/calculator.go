package trust

import (
	"math"
	"time"
)

// Component scales. Each component saturates at its max; together they
// cover the full 0-100 score.
const (
	karmaComponentMax = 25.0
	karmaSaturation   = 1000.0

	accountAgeComponentMax = 15.0
	accountAgeSaturation   = 180.0 // days

	reportComponentMax = 30.0

	participationDiversityMax = 15.0
	participationSaturation   = 5.0 // communities
	participationKarmaMax     = 15.0
	participationKarmaLimit   = 500.0
)

// Level thresholds, closed-open except the top bucket
var levelThresholds = []struct {
	minScore int64
	level    int16
	name     string
}{
	{80, 4, "Community Leader"},
	{60, 3, "Trusted"},
	{40, 2, "Contributor"},
	{20, 1, "Member"},
	{0, 0, "Newcomer"},
}

// Inputs is a snapshot of everything the trust score depends on. Each field
// is independently fetchable; the calculation is deterministic given Inputs.
type Inputs struct {
	TotalKarma                int64
	PostKarma                 int64
	CommentKarma              int64
	AccountAgeDays            int64
	ReportsReceived           int64
	ReportsAccepted           int64
	CommunitiesParticipatedIn int64
	TotalCommunityKarma       int64
}

// Components holds the four unrounded component scores
type Components struct {
	Karma         float64
	AccountAge    float64
	Report        float64
	Participation float64
}

// Result is the calculator output
type Result struct {
	Components Components
	TrustScore int64
	Level      int16
	LevelName  string
}

// KarmaComponent scales total karma into 0-25 points, saturating at 1000
func KarmaComponent(totalKarma int64) float64 {
	return clamp(float64(totalKarma)/karmaSaturation, 0, 1) * karmaComponentMax
}

// AccountAgeComponent scales account age into 0-15 points, saturating at
// 180 days
func AccountAgeComponent(accountAgeDays int64) float64 {
	return clamp(float64(accountAgeDays)/accountAgeSaturation, 0, 1) * accountAgeComponentMax
}

// ReportComponent scales report history into 0-30 points. No reports means
// full credit; otherwise the accepted ratio eats into it.
func ReportComponent(reportsReceived, reportsAccepted int64) float64 {
	if reportsReceived == 0 {
		return reportComponentMax
	}
	ratio := 1 - float64(reportsAccepted)/float64(reportsReceived)
	return math.Max(reportComponentMax*ratio, 0)
}

// ParticipationComponent scales community diversity (0-15, saturating at 5
// communities) plus community karma (0-15, saturating at 500) into 0-30
func ParticipationComponent(communitiesParticipatedIn, totalCommunityKarma int64) float64 {
	diversity := clamp(float64(communitiesParticipatedIn)/participationSaturation, 0, 1) * participationDiversityMax
	karma := clamp(float64(totalCommunityKarma)/participationKarmaLimit, 0, 1) * participationKarmaMax
	return diversity + karma
}

// DetermineLevel maps a trust score to its discrete level. Boundary scores
// resolve to the higher level.
func DetermineLevel(trustScore int64) (int16, string) {
	for _, threshold := range levelThresholds {
		if trustScore >= threshold.minScore {
			return threshold.level, threshold.name
		}
	}
	return 0, "Newcomer"
}

// LevelName returns the display name for a level
func LevelName(level int16) string {
	for _, threshold := range levelThresholds {
		if threshold.level == level {
			return threshold.name
		}
	}
	return ""
}

// Compute derives the trust score and level from a snapshot of inputs.
// Pure and deterministic: identical inputs yield identical output.
func Compute(in Inputs) Result {
	components := Components{
		Karma:         KarmaComponent(in.TotalKarma),
		AccountAge:    AccountAgeComponent(in.AccountAgeDays),
		Report:        ReportComponent(in.ReportsReceived, in.ReportsAccepted),
		Participation: ParticipationComponent(in.CommunitiesParticipatedIn, in.TotalCommunityKarma),
	}

	total := components.Karma + components.AccountAge + components.Report + components.Participation
	score := int64(math.Round(clamp(total, 0, 100)))

	level, levelName := DetermineLevel(score)

	return Result{
		Components: components,
		TrustScore: score,
		Level:      level,
		LevelName:  levelName,
	}
}

// AccountAgeDays returns whole days elapsed since the account was created
func AccountAgeDays(createdAt, now time.Time) int64 {
	if now.Before(createdAt) {
		return 0
	}
	return int64(now.Sub(createdAt).Hours() / 24)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
