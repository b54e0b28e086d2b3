package repository

import (
	"sync"

	"github.com/mambahost/mamba-bot/internal/models"
	"go.uber.org/zap"
)

// PollRepository is the registry of active polls. Everything is in process
// memory; an ended poll is gone for good.
type PollRepository struct {
	mu    sync.Mutex
	polls map[string]*models.Poll
	l     *zap.Logger
}

func NewPollRepository(l *zap.Logger) *PollRepository {
	return &PollRepository{
		polls: make(map[string]*models.Poll),
		l:     l,
	}
}

func (r *PollRepository) Create(poll *models.Poll) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.polls[poll.ID] = poll
	r.l.Debug("poll registered",
		zap.String("poll_id", poll.ID),
		zap.String("question", poll.Question),
		zap.Int("options", len(poll.Options)))
}

func (r *PollRepository) Get(pollID string) (*models.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	poll, ok := r.polls[pollID]
	if !ok {
		return nil, models.ErrPollNotFound
	}
	return poll, nil
}

// GetByMessageID looks a poll up by the message it is rendered on. The
// manual end command identifies polls this way.
func (r *PollRepository) GetByMessageID(messageID string) (*models.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, poll := range r.polls {
		if poll.MessageID == messageID {
			return poll, nil
		}
	}
	return nil, models.ErrPollNotFound
}

// ToggleVote moves, casts or retracts a vote for userID and reports whether
// the user is voted for the option afterwards. The user is first removed
// from every other option's voter set, so a voter can never appear twice.
// The whole update happens under the registry lock.
func (r *PollRepository) ToggleVote(pollID string, optionIndex int, userID string) (*models.Poll, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	poll, ok := r.polls[pollID]
	if !ok {
		return nil, false, models.ErrPollNotFound
	}
	if optionIndex < 0 || optionIndex >= len(poll.Options) {
		return nil, false, models.ErrOptionNotFound
	}

	for idx, voters := range poll.Votes {
		if idx != optionIndex {
			delete(voters, userID)
		}
	}

	if _, voted := poll.Votes[optionIndex][userID]; voted {
		delete(poll.Votes[optionIndex], userID)
		return poll, false, nil
	}
	poll.Votes[optionIndex][userID] = struct{}{}
	return poll, true, nil
}

// Remove deletes the poll from the registry and returns its final state.
// Removing an unknown or already ended poll fails with ErrPollNotFound,
// which is what keeps the expiry timer idempotent.
func (r *PollRepository) Remove(pollID string) (*models.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	poll, ok := r.polls[pollID]
	if !ok {
		r.l.Debug("poll not found", zap.String("poll_id", pollID))
		return nil, models.ErrPollNotFound
	}
	delete(r.polls, pollID)
	return poll, nil
}
