package repository

import (
	"sync"
	"testing"

	"github.com/mambahost/mamba-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProgressGain(t *testing.T) {
	r := NewProgressRepository(zap.NewNop())

	before, after := r.Gain("g1", "u1", 20)
	assert.Zero(t, before)
	assert.Equal(t, 20, after)

	before, after = r.Gain("g1", "u1", 15)
	assert.Equal(t, 20, before)
	assert.Equal(t, 35, after)

	record := r.Get("g1", "u1")
	assert.Equal(t, 35, record.XP)
	assert.Equal(t, 2, record.Messages)
}

func TestProgressGetUnknownUser(t *testing.T) {
	r := NewProgressRepository(zap.NewNop())

	record := r.Get("g1", "nobody")
	assert.Equal(t, "g1", record.GuildID)
	assert.Equal(t, "nobody", record.UserID)
	assert.Zero(t, record.XP)
	assert.Zero(t, record.Messages)
}

func TestProgressReset(t *testing.T) {
	r := NewProgressRepository(zap.NewNop())

	require.ErrorIs(t, r.Reset("g1", "u1"), models.ErrNoProgress)

	r.Gain("g1", "u1", 10)
	require.NoError(t, r.Reset("g1", "u1"))
	assert.Zero(t, r.Get("g1", "u1").XP)
}

func TestProgressListByGuildOrdering(t *testing.T) {
	r := NewProgressRepository(zap.NewNop())
	r.Gain("g1", "low", 10)
	r.Gain("g1", "high", 300)
	r.Gain("g1", "tie-a", 100)
	r.Gain("g1", "tie-b", 100)
	r.Gain("g2", "other", 500)

	records := r.ListByGuild("g1")
	require.Len(t, records, 4)
	assert.Equal(t, "high", records[0].UserID)
	assert.Equal(t, "tie-a", records[1].UserID)
	assert.Equal(t, "tie-b", records[2].UserID)
	assert.Equal(t, "low", records[3].UserID)
}

func TestProgressConcurrentGain(t *testing.T) {
	r := NewProgressRepository(zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Gain("g1", "u1", 2)
		}()
	}
	wg.Wait()

	record := r.Get("g1", "u1")
	assert.Equal(t, 100, record.XP)
	assert.Equal(t, 50, record.Messages)
}
