package service

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mambahost/mamba-bot/internal/models"
	"github.com/mambahost/mamba-bot/internal/repository"
	"go.uber.org/zap"
)

const tallyBarWidth = 20

// OptionTally is the rendered state of one poll option.
type OptionTally struct {
	Text       string
	Votes      int
	Percentage float64
	Bar        string
}

type PollService struct {
	r     *repository.PollRepository
	clock clockwork.Clock
	l     *zap.Logger

	// onExpire is invoked when a timed poll ends on its own. Set once
	// during wiring, before any poll can be created.
	onExpire func(poll *models.Poll)
}

func NewPollService(r *repository.PollRepository, clock clockwork.Clock, l *zap.Logger) *PollService {
	return &PollService{
		r:     r,
		clock: clock,
		l:     l,
	}
}

// OnExpire registers the callback that reports a timer-ended poll back to
// the channel it was posted in.
func (s *PollService) OnExpire(fn func(poll *models.Poll)) {
	s.onExpire = fn
}

// CreatePoll validates the input and builds an unregistered poll. The
// caller posts the poll message first (buttons need the poll ID) and then
// hands the poll to OpenPoll.
func (s *PollService) CreatePoll(question, channelID, creatorID string, optionsRaw []string, duration time.Duration, anonymous bool) (*models.Poll, error) {
	if strings.TrimSpace(question) == "" {
		return nil, models.ErrQuestionIsEmpty
	}
	options := make([]string, 0, len(optionsRaw))
	for _, option := range optionsRaw {
		option = strings.TrimSpace(option)
		if option != "" {
			options = append(options, option)
		}
	}
	if len(options) < 2 {
		return nil, models.ErrNotEnoughOptions
	}
	if len(options) > 10 {
		return nil, models.ErrTooManyOptions
	}

	poll := models.NewPoll(uuid.New().String()[:8], question, channelID, creatorID, options)
	poll.Anonymous = anonymous
	if duration > 0 {
		endTime := s.clock.Now().Add(duration)
		poll.EndTime = &endTime
	}
	return poll, nil
}

// OpenPoll registers the poll and, for timed polls, arms the auto-end
// timer. The timer fires through the same removal path as a manual end, so
// whichever comes second hits ErrPollNotFound and does nothing.
func (s *PollService) OpenPoll(poll *models.Poll) {
	s.r.Create(poll)
	s.l.Info("poll opened",
		zap.String("poll_id", poll.ID),
		zap.String("question", poll.Question),
		zap.Int("options", len(poll.Options)),
		zap.Bool("anonymous", poll.Anonymous))

	if poll.EndTime == nil {
		return
	}
	pollID := poll.ID
	s.clock.AfterFunc(poll.EndTime.Sub(s.clock.Now()), func() {
		s.expire(pollID)
	})
}

func (s *PollService) expire(pollID string) {
	poll, err := s.r.Remove(pollID)
	if err != nil {
		// Already ended manually.
		s.l.Debug("expiry timer found no poll", zap.String("poll_id", pollID))
		return
	}
	s.l.Info("poll expired", zap.String("poll_id", pollID))
	if s.onExpire != nil {
		s.onExpire(poll)
	}
}

// ToggleVote applies one button press: cast, move or retract a vote. It
// reports the updated poll and whether the user holds a vote on the option
// afterwards.
func (s *PollService) ToggleVote(pollID string, optionIndex int, userID string) (*models.Poll, bool, error) {
	poll, voted, err := s.r.ToggleVote(pollID, optionIndex, userID)
	if err != nil {
		return nil, false, err
	}
	s.l.Debug("vote toggled",
		zap.String("poll_id", pollID),
		zap.Int("option", optionIndex),
		zap.String("user_id", userID),
		zap.Bool("voted", voted))
	return poll, voted, nil
}

func (s *PollService) GetPoll(pollID string) (*models.Poll, error) {
	return s.r.Get(pollID)
}

// EndPollByMessage ends the poll rendered on the given message. Only the
// creator may end a poll early.
func (s *PollService) EndPollByMessage(messageID, userID string) (*models.Poll, error) {
	poll, err := s.r.GetByMessageID(messageID)
	if err != nil {
		return nil, err
	}
	if poll.CreatorID != userID {
		return nil, models.ErrNotPollCreator
	}
	return s.EndPoll(poll.ID)
}

// EndPoll removes the poll from the registry and returns its final state.
// Ending a poll twice fails with ErrPollNotFound.
func (s *PollService) EndPoll(pollID string) (*models.Poll, error) {
	poll, err := s.r.Remove(pollID)
	if err != nil {
		return nil, err
	}
	s.l.Info("poll ended", zap.String("poll_id", pollID))
	return poll, nil
}

// Tally computes votes, percentage and a proportional bar per option.
// Percentages are zero on a poll without votes.
func Tally(poll *models.Poll) []OptionTally {
	total := poll.TotalVotes()
	tallies := make([]OptionTally, len(poll.Options))
	for i, text := range poll.Options {
		votes := len(poll.Votes[i])
		percentage := 0.0
		if total > 0 {
			percentage = float64(votes) / float64(total) * 100
		}
		filled := int(math.Round(tallyBarWidth * float64(votes) / float64(max(total, 1))))
		tallies[i] = OptionTally{
			Text:       text,
			Votes:      votes,
			Percentage: percentage,
			Bar:        strings.Repeat("█", filled) + strings.Repeat("░", tallyBarWidth-filled),
		}
	}
	return tallies
}

// Winner returns the index of the option with the strictly largest voter
// set. Ties go to the lowest index, so the first declared option wins.
func Winner(poll *models.Poll) int {
	tallies := poll.Tallies()
	winner := 0
	for i, votes := range tallies {
		if votes > tallies[winner] {
			winner = i
		}
	}
	return winner
}
