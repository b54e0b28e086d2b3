package service

import (
	"math"
	"math/rand"
	"strings"

	"github.com/mambahost/mamba-bot/internal/models"
	"github.com/mambahost/mamba-bot/internal/repository"
	"go.uber.org/zap"
)

const (
	// Each qualifying message earns a random amount of XP in [15, 24].
	minXPGain    = 15
	xpGainSpread = 10

	progressBarWidth = 20

	// LeaderboardPageSize is the number of entries per leaderboard page.
	LeaderboardPageSize = 10
)

// LevelForXP derives the level from accumulated XP: floor(sqrt(xp/100))+1.
// Zero XP is level 1.
func LevelForXP(xp int) int {
	return int(math.Sqrt(float64(xp)/100)) + 1
}

// XPForLevel is the inverse threshold: the XP at which the level starts.
// LevelForXP(XPForLevel(l)) == l for every l >= 1.
func XPForLevel(level int) int {
	return (level - 1) * (level - 1) * 100
}

// ActivityResult describes one applied XP gain.
type ActivityResult struct {
	Gain      int
	XP        int
	Messages  int
	OldLevel  int
	NewLevel  int
	LeveledUp bool
}

// RankInfo is the data behind the rank card: the user's level and how far
// into it they are.
type RankInfo struct {
	Progress    models.UserProgress
	Level       int
	XPIntoLevel int
	XPNeeded    int
	Percent     float64
	Bar         string
}

// LeaderboardEntry is one row of a leaderboard page.
type LeaderboardEntry struct {
	Rank     int
	Progress models.UserProgress
	Level    int
}

type LevelingService struct {
	r *repository.ProgressRepository
	l *zap.Logger
}

func NewLevelingService(r *repository.ProgressRepository, l *zap.Logger) *LevelingService {
	return &LevelingService{
		r: r,
		l: l,
	}
}

// RecordActivity credits one qualifying message: XP gain in [15, 24] and
// one message. LeveledUp is set whenever the derived level increased.
func (s *LevelingService) RecordActivity(guildID, userID string) ActivityResult {
	gain := rand.Intn(xpGainSpread) + minXPGain
	before, after := s.r.Gain(guildID, userID, gain)
	progress := s.r.Get(guildID, userID)

	result := ActivityResult{
		Gain:     gain,
		XP:       after,
		Messages: progress.Messages,
		OldLevel: LevelForXP(before),
		NewLevel: LevelForXP(after),
	}
	result.LeveledUp = result.NewLevel > result.OldLevel
	if result.LeveledUp {
		s.l.Info("user leveled up",
			zap.String("guild_id", guildID),
			zap.String("user_id", userID),
			zap.Int("level", result.NewLevel),
			zap.Int("xp", after))
	}
	return result
}

// Rank reports the user's standing: level plus progress toward the next
// one, with a 20-cell bar.
func (s *LevelingService) Rank(guildID, userID string) RankInfo {
	progress := s.r.Get(guildID, userID)
	level := LevelForXP(progress.XP)
	intoLevel := progress.XP - XPForLevel(level)
	needed := XPForLevel(level+1) - XPForLevel(level)

	filled := int(math.Round(progressBarWidth * float64(intoLevel) / float64(needed)))
	return RankInfo{
		Progress:    progress,
		Level:       level,
		XPIntoLevel: intoLevel,
		XPNeeded:    needed,
		Percent:     float64(intoLevel) / float64(needed) * 100,
		Bar:         strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled),
	}
}

// Reset deletes the user's record. The next activity starts them over from
// zero. Reports models.ErrNoProgress when there is nothing to reset.
func (s *LevelingService) Reset(guildID, userID string) error {
	if err := s.r.Reset(guildID, userID); err != nil {
		return err
	}
	s.l.Info("xp reset",
		zap.String("guild_id", guildID),
		zap.String("user_id", userID))
	return nil
}

// Leaderboard returns the requested 1-indexed page of the guild ranking,
// XP descending, and the total page count. A guild without records has
// zero pages; a page past the end is an empty slice, not an error.
func (s *LevelingService) Leaderboard(guildID string, page int) ([]LeaderboardEntry, int) {
	records := s.r.ListByGuild(guildID)
	totalPages := (len(records) + LeaderboardPageSize - 1) / LeaderboardPageSize

	start := (page - 1) * LeaderboardPageSize
	if start >= len(records) {
		return nil, totalPages
	}
	end := min(start+LeaderboardPageSize, len(records))

	entries := make([]LeaderboardEntry, 0, end-start)
	for i, record := range records[start:end] {
		entries = append(entries, LeaderboardEntry{
			Rank:     start + i + 1,
			Progress: record,
			Level:    LevelForXP(record.XP),
		})
	}
	return entries, totalPages
}
