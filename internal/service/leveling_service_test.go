package service

import (
	"fmt"
	"testing"

	"github.com/mambahost/mamba-bot/internal/models"
	"github.com/mambahost/mamba-bot/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLevelingService() (*LevelingService, *repository.ProgressRepository) {
	repo := repository.NewProgressRepository(zap.NewNop())
	return NewLevelingService(repo, zap.NewNop()), repo
}

func TestLevelForXP(t *testing.T) {
	assert.Equal(t, 1, LevelForXP(0))
	assert.Equal(t, 1, LevelForXP(99))
	assert.Equal(t, 2, LevelForXP(100))
	assert.Equal(t, 2, LevelForXP(399))
	assert.Equal(t, 3, LevelForXP(400))

	prev := LevelForXP(0)
	for xp := 1; xp <= 5000; xp++ {
		level := LevelForXP(xp)
		require.GreaterOrEqual(t, level, prev, "level must not decrease at xp=%d", xp)
		prev = level
	}
}

func TestXPForLevelRoundTrip(t *testing.T) {
	for level := 1; level <= 100; level++ {
		assert.Equal(t, level, LevelForXP(XPForLevel(level)), "level %d", level)
	}
}

func TestRecordActivity(t *testing.T) {
	s, _ := newLevelingService()

	total := 0
	for i := 1; i <= 200; i++ {
		result := s.RecordActivity("g1", "u1")
		require.GreaterOrEqual(t, result.Gain, 15)
		require.LessOrEqual(t, result.Gain, 24)
		total += result.Gain
		require.Equal(t, total, result.XP)
		require.Equal(t, i, result.Messages)
	}
}

func TestRecordActivityLevelUp(t *testing.T) {
	s, repo := newLevelingService()

	// 90 XP is close enough that one gain always crosses the level 2
	// threshold at 100.
	repo.Gain("g1", "u1", 90)
	result := s.RecordActivity("g1", "u1")
	assert.True(t, result.LeveledUp)
	assert.Equal(t, 1, result.OldLevel)
	assert.Equal(t, 2, result.NewLevel)
}

func TestReset(t *testing.T) {
	s, _ := newLevelingService()

	require.ErrorIs(t, s.Reset("g1", "u1"), models.ErrNoProgress)

	s.RecordActivity("g1", "u1")
	require.NoError(t, s.Reset("g1", "u1"))
	require.ErrorIs(t, s.Reset("g1", "u1"), models.ErrNoProgress)

	// A reset user starts over from zero.
	result := s.RecordActivity("g1", "u1")
	assert.Equal(t, result.Gain, result.XP)
	assert.Equal(t, 1, result.Messages)
}

func TestRank(t *testing.T) {
	s, repo := newLevelingService()
	repo.Gain("g1", "u1", 250)

	rank := s.Rank("g1", "u1")
	assert.Equal(t, 2, rank.Level)
	assert.Equal(t, 150, rank.XPIntoLevel)
	assert.Equal(t, 300, rank.XPNeeded)
	assert.InDelta(t, 50.0, rank.Percent, 0.01)
}

func TestRankUnknownUser(t *testing.T) {
	s, _ := newLevelingService()

	rank := s.Rank("g1", "nobody")
	assert.Equal(t, 1, rank.Level)
	assert.Zero(t, rank.Progress.XP)
	assert.Zero(t, rank.XPIntoLevel)
}

func TestLeaderboardPagination(t *testing.T) {
	s, repo := newLevelingService()
	for i := 1; i <= 25; i++ {
		repo.Gain("g1", fmt.Sprintf("u%d", i), i*10)
	}
	// Another guild's records must not leak in.
	repo.Gain("g2", "stranger", 9999)

	page1, totalPages := s.Leaderboard("g1", 1)
	assert.Equal(t, 3, totalPages)
	require.Len(t, page1, 10)
	assert.Equal(t, "u25", page1[0].Progress.UserID)
	assert.Equal(t, 1, page1[0].Rank)

	page3, _ := s.Leaderboard("g1", 3)
	require.Len(t, page3, 5)
	for i := 1; i < len(page3); i++ {
		assert.GreaterOrEqual(t, page3[i-1].Progress.XP, page3[i].Progress.XP)
	}
	assert.Equal(t, 21, page3[0].Rank)

	page4, _ := s.Leaderboard("g1", 4)
	assert.Empty(t, page4)
}

func TestLeaderboardTiesKeepInsertionOrder(t *testing.T) {
	s, repo := newLevelingService()
	repo.Gain("g1", "first", 100)
	repo.Gain("g1", "second", 100)
	repo.Gain("g1", "third", 100)

	entries, totalPages := s.Leaderboard("g1", 1)
	assert.Equal(t, 1, totalPages)
	require.Len(t, entries, 3)
	assert.Equal(t, "first", entries[0].Progress.UserID)
	assert.Equal(t, "second", entries[1].Progress.UserID)
	assert.Equal(t, "third", entries[2].Progress.UserID)
}

func TestLeaderboardEmptyGuild(t *testing.T) {
	s, _ := newLevelingService()

	entries, totalPages := s.Leaderboard("g1", 1)
	assert.Empty(t, entries)
	assert.Zero(t, totalPages)
}
