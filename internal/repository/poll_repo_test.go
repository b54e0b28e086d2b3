package repository

import (
	"fmt"
	"sync"
	"testing"

	"github.com/mambahost/mamba-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestPoll(id string) *models.Poll {
	return models.NewPoll(id, "question", "c1", "creator", []string{"A", "B", "C"})
}

func TestPollRepoCreateAndGet(t *testing.T) {
	r := NewPollRepository(zap.NewNop())
	poll := newTestPoll("p1")
	poll.MessageID = "m1"
	r.Create(poll)

	got, err := r.Get("p1")
	require.NoError(t, err)
	assert.Same(t, poll, got)

	got, err = r.GetByMessageID("m1")
	require.NoError(t, err)
	assert.Same(t, poll, got)

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, models.ErrPollNotFound)
	_, err = r.GetByMessageID("missing")
	assert.ErrorIs(t, err, models.ErrPollNotFound)
}

func TestPollRepoRemove(t *testing.T) {
	r := NewPollRepository(zap.NewNop())
	r.Create(newTestPoll("p1"))

	_, err := r.Remove("p1")
	require.NoError(t, err)
	_, err = r.Remove("p1")
	assert.ErrorIs(t, err, models.ErrPollNotFound)
}

func TestPollRepoToggleVoteConcurrent(t *testing.T) {
	r := NewPollRepository(zap.NewNop())
	r.Create(newTestPoll("p1"))

	// Many users hammering different options concurrently must leave each
	// user in exactly one voter set.
	var wg sync.WaitGroup
	for u := 0; u < 20; u++ {
		userID := fmt.Sprintf("u%d", u)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 30; i++ {
				_, _, err := r.ToggleVote("p1", i%3, userID)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	poll, err := r.Get("p1")
	require.NoError(t, err)
	for u := 0; u < 20; u++ {
		userID := fmt.Sprintf("u%d", u)
		memberships := 0
		for _, voters := range poll.Votes {
			if _, ok := voters[userID]; ok {
				memberships++
			}
		}
		assert.LessOrEqual(t, memberships, 1, "user %s", userID)
	}
}
