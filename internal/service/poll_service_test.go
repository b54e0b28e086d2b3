package service

import (
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	"github.com/mambahost/mamba-bot/internal/models"
	"github.com/mambahost/mamba-bot/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPollService(clock clockwork.Clock) *PollService {
	repo := repository.NewPollRepository(zap.NewNop())
	return NewPollService(repo, clock, zap.NewNop())
}

type expireRecorder struct {
	mu    sync.Mutex
	polls []*models.Poll
}

func (r *expireRecorder) record(poll *models.Poll) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.polls = append(r.polls, poll)
}

func (r *expireRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.polls)
}

func TestCreatePollValidation(t *testing.T) {
	s := newPollService(clockwork.NewFakeClock())

	_, err := s.CreatePoll("", "c1", "u1", []string{"a", "b"}, 0, false)
	assert.ErrorIs(t, err, models.ErrQuestionIsEmpty)

	_, err = s.CreatePoll("q", "c1", "u1", []string{"only"}, 0, false)
	assert.ErrorIs(t, err, models.ErrNotEnoughOptions)

	// Blank entries do not count as options.
	_, err = s.CreatePoll("q", "c1", "u1", []string{"a", "  ", ""}, 0, false)
	assert.ErrorIs(t, err, models.ErrNotEnoughOptions)

	options := make([]string, 11)
	for i := range options {
		options[i] = "option"
	}
	_, err = s.CreatePoll("q", "c1", "u1", options, 0, false)
	assert.ErrorIs(t, err, models.ErrTooManyOptions)
}

func TestCreatePoll(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := newPollService(clock)

	poll, err := s.CreatePoll("q", "c1", "u1", []string{" a ", "b"}, 10*time.Minute, true)
	require.NoError(t, err)
	assert.NotEmpty(t, poll.ID)
	assert.Equal(t, []string{"a", "b"}, poll.Options)
	assert.True(t, poll.Anonymous)
	require.NotNil(t, poll.EndTime)
	assert.Equal(t, clock.Now().Add(10*time.Minute), *poll.EndTime)

	untimed, err := s.CreatePoll("q", "c1", "u1", []string{"a", "b"}, 0, false)
	require.NoError(t, err)
	assert.Nil(t, untimed.EndTime)
}

func TestToggleVoteSingleVoteInvariant(t *testing.T) {
	s := newPollService(clockwork.NewFakeClock())
	poll, err := s.CreatePoll("q", "c1", "u1", []string{"A", "B"}, 0, false)
	require.NoError(t, err)
	s.OpenPoll(poll)

	_, voted, err := s.ToggleVote(poll.ID, 0, "u1")
	require.NoError(t, err)
	assert.True(t, voted)

	// Voting for another option moves the vote instead of stacking it.
	updated, voted, err := s.ToggleVote(poll.ID, 1, "u1")
	require.NoError(t, err)
	assert.True(t, voted)
	assert.Equal(t, []int{0, 1}, updated.Tallies())
}

func TestToggleVoteRetraction(t *testing.T) {
	s := newPollService(clockwork.NewFakeClock())
	poll, err := s.CreatePoll("q", "c1", "u1", []string{"A", "B"}, 0, false)
	require.NoError(t, err)
	s.OpenPoll(poll)

	_, voted, err := s.ToggleVote(poll.ID, 0, "u1")
	require.NoError(t, err)
	assert.True(t, voted)

	updated, voted, err := s.ToggleVote(poll.ID, 0, "u1")
	require.NoError(t, err)
	assert.False(t, voted)
	assert.Equal(t, []int{0, 0}, updated.Tallies())
}

func TestToggleVoteErrors(t *testing.T) {
	s := newPollService(clockwork.NewFakeClock())

	_, _, err := s.ToggleVote("missing", 0, "u1")
	assert.ErrorIs(t, err, models.ErrPollNotFound)

	poll, err := s.CreatePoll("q", "c1", "u1", []string{"A", "B"}, 0, false)
	require.NoError(t, err)
	s.OpenPoll(poll)

	_, _, err = s.ToggleVote(poll.ID, 2, "u1")
	assert.ErrorIs(t, err, models.ErrOptionNotFound)
	_, _, err = s.ToggleVote(poll.ID, -1, "u1")
	assert.ErrorIs(t, err, models.ErrOptionNotFound)
}

func TestEndPollByMessage(t *testing.T) {
	s := newPollService(clockwork.NewFakeClock())
	poll, err := s.CreatePoll("q", "c1", "creator", []string{"A", "B"}, 0, false)
	require.NoError(t, err)
	poll.MessageID = "m1"
	s.OpenPoll(poll)

	_, err = s.EndPollByMessage("m1", "intruder")
	assert.ErrorIs(t, err, models.ErrNotPollCreator)

	ended, err := s.EndPollByMessage("m1", "creator")
	require.NoError(t, err)
	assert.Equal(t, poll.ID, ended.ID)

	_, err = s.EndPollByMessage("m1", "creator")
	assert.ErrorIs(t, err, models.ErrPollNotFound)
}

func TestEndPollTwice(t *testing.T) {
	s := newPollService(clockwork.NewFakeClock())
	poll, err := s.CreatePoll("q", "c1", "u1", []string{"A", "B"}, 0, false)
	require.NoError(t, err)
	s.OpenPoll(poll)

	_, err = s.EndPoll(poll.ID)
	require.NoError(t, err)

	_, err = s.EndPoll(poll.ID)
	assert.ErrorIs(t, err, models.ErrPollNotFound)

	_, _, err = s.ToggleVote(poll.ID, 0, "u1")
	assert.ErrorIs(t, err, models.ErrPollNotFound)
}

func TestPollAutoEnd(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := newPollService(clock)
	recorder := &expireRecorder{}
	s.OnExpire(recorder.record)

	poll, err := s.CreatePoll("q", "c1", "u1", []string{"A", "B"}, 5*time.Minute, false)
	require.NoError(t, err)
	s.OpenPoll(poll)

	clock.Advance(4 * time.Minute)
	assert.Zero(t, recorder.count())

	clock.Advance(time.Minute)
	require.Eventually(t, func() bool { return recorder.count() == 1 }, time.Second, 10*time.Millisecond)

	_, err = s.EndPoll(poll.ID)
	assert.ErrorIs(t, err, models.ErrPollNotFound)
}

func TestManualEndDisarmsExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := newPollService(clock)
	recorder := &expireRecorder{}
	s.OnExpire(recorder.record)

	poll, err := s.CreatePoll("q", "c1", "u1", []string{"A", "B"}, 5*time.Minute, false)
	require.NoError(t, err)
	s.OpenPoll(poll)

	_, err = s.EndPoll(poll.ID)
	require.NoError(t, err)

	// The timer still fires but finds nothing to end.
	clock.Advance(5 * time.Minute)
	assert.Never(t, func() bool { return recorder.count() > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestTally(t *testing.T) {
	poll := models.NewPoll("p1", "q", "c1", "u1", []string{"A", "B"})
	poll.Votes[0]["u1"] = struct{}{}
	for _, user := range []string{"u2", "u3", "u4"} {
		poll.Votes[1][user] = struct{}{}
	}

	tallies := Tally(poll)
	require.Len(t, tallies, 2)
	assert.Equal(t, 1, tallies[0].Votes)
	assert.InDelta(t, 25.0, tallies[0].Percentage, 0.01)
	assert.Equal(t, 3, tallies[1].Votes)
	assert.InDelta(t, 75.0, tallies[1].Percentage, 0.01)

	// 20 cells, filled proportionally and rounded to the nearest cell.
	assert.Equal(t, 20, utf8.RuneCountInString(tallies[0].Bar))
	assert.Equal(t, 5, countRune(tallies[0].Bar, '█'))
	assert.Equal(t, 15, countRune(tallies[1].Bar, '█'))
}

func TestTallyNoVotes(t *testing.T) {
	poll := models.NewPoll("p1", "q", "c1", "u1", []string{"A", "B"})

	tallies := Tally(poll)
	for _, tally := range tallies {
		assert.Zero(t, tally.Votes)
		assert.Zero(t, tally.Percentage)
		assert.Equal(t, 20, utf8.RuneCountInString(tally.Bar))
		assert.Zero(t, countRune(tally.Bar, '█'))
	}
}

func TestWinnerLowestIndexTieBreak(t *testing.T) {
	poll := models.NewPoll("p1", "q", "c1", "u1", []string{"A", "B", "C"})
	counts := []int{5, 5, 2}
	for idx, count := range counts {
		for i := 0; i < count; i++ {
			poll.Votes[idx][string(rune('a'+idx))+string(rune('0'+i))] = struct{}{}
		}
	}

	assert.Equal(t, 0, Winner(poll))
}

func TestWinnerStrictMajority(t *testing.T) {
	poll := models.NewPoll("p1", "q", "c1", "u1", []string{"A", "B", "C"})
	poll.Votes[2]["u1"] = struct{}{}
	poll.Votes[2]["u2"] = struct{}{}
	poll.Votes[1]["u3"] = struct{}{}

	assert.Equal(t, 2, Winner(poll))
}

func countRune(s string, r rune) int {
	count := 0
	for _, c := range s {
		if c == r {
			count++
		}
	}
	return count
}
