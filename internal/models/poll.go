package models

import (
	"errors"
	"time"
)

var (
	ErrPollNotFound     = errors.New("poll is not found")
	ErrQuestionIsEmpty  = errors.New("question is empty")
	ErrOptionIsEmpty    = errors.New("option is empty")
	ErrNotEnoughOptions = errors.New("the number of options should be at least 2")
	ErrTooManyOptions   = errors.New("the number of options should be at most 10")
	ErrOptionNotFound   = errors.New("option is not found")
	ErrNotPollCreator   = errors.New("only the poll creator can end this poll")
)

// Poll lives in the in-memory registry until it is ended, either manually
// or by its expiry timer. Votes holds one voter set per option index; a user
// ID appears in at most one set at a time.
type Poll struct {
	ID        string
	MessageID string
	ChannelID string
	Question  string
	Options   []string
	Votes     []map[string]struct{}
	EndTime   *time.Time
	Anonymous bool
	CreatorID string
}

// NewPoll allocates the per-option voter sets for the given options.
func NewPoll(id, question, channelID, creatorID string, options []string) *Poll {
	votes := make([]map[string]struct{}, len(options))
	for i := range votes {
		votes[i] = make(map[string]struct{})
	}
	return &Poll{
		ID:        id,
		Question:  question,
		ChannelID: channelID,
		CreatorID: creatorID,
		Options:   options,
		Votes:     votes,
	}
}

// TotalVotes counts voters across all options.
func (p *Poll) TotalVotes() int {
	total := 0
	for _, voters := range p.Votes {
		total += len(voters)
	}
	return total
}

// Tallies returns the voter count per option, index-aligned with Options.
func (p *Poll) Tallies() []int {
	tallies := make([]int, len(p.Votes))
	for i, voters := range p.Votes {
		tallies[i] = len(voters)
	}
	return tallies
}
