package service

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jonboulle/clockwork"
	"github.com/mambahost/mamba-bot/internal/models"
	"go.uber.org/zap"
)

// StatusUpdater is the slice of the Discord session the presence service
// needs. Tests substitute a recording fake.
type StatusUpdater interface {
	UpdateStatusComplex(data discordgo.UpdateStatusData) error
}

// DefaultActivities is the fixed rotation shown when no custom presence is
// set.
var DefaultActivities = []models.Activity{
	{Name: "Mamba Host Services", Kind: models.ActivityWatching},
	{Name: "/status for uptime info", Kind: models.ActivityPlaying},
	{Name: "server status", Kind: models.ActivityWatching},
	{Name: "your infrastructure", Kind: models.ActivityWatching},
	{Name: "/help for commands", Kind: models.ActivityListening},
}

// PresenceState is a snapshot of what the bot currently displays.
type PresenceState struct {
	Current         models.Activity
	Rotating        bool
	TotalActivities int
}

type PresenceService struct {
	updater StatusUpdater
	clock   clockwork.Clock
	l       *zap.Logger

	mu         sync.Mutex
	activities []models.Activity
	index      int
	current    models.Activity
	status     string
	rotating   bool
	stopCh     chan struct{}
}

func NewPresenceService(updater StatusUpdater, clock clockwork.Clock, l *zap.Logger) *PresenceService {
	return &PresenceService{
		updater:    updater,
		clock:      clock,
		l:          l,
		activities: DefaultActivities,
		status:     string(discordgo.StatusOnline),
	}
}

// Start begins rotating through the activity list, applying the first
// descriptor immediately and advancing every interval, wrapping around.
// Any rotation already running is cancelled first.
func (s *PresenceService) Start(interval time.Duration) {
	s.mu.Lock()
	s.stopLocked()
	s.index = 0
	s.status = string(discordgo.StatusOnline)
	s.applyLocked(s.activities[0])

	stopCh := make(chan struct{})
	s.stopCh = stopCh
	s.rotating = true
	ticker := s.clock.NewTicker(interval)
	s.mu.Unlock()

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				s.advance()
			case <-stopCh:
				return
			}
		}
	}()
	s.l.Info("presence rotation started", zap.Duration("interval", interval))
}

func (s *PresenceService) advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.rotating {
		return
	}
	s.index = (s.index + 1) % len(s.activities)
	activity := s.activities[s.index]
	s.applyLocked(activity)
	s.l.Debug("presence rotated",
		zap.String("activity", activity.Name),
		zap.String("kind", string(activity.Kind)))
}

// Stop cancels the rotation. The last applied descriptor stays displayed.
// Safe to call when nothing is rotating.
func (s *PresenceService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rotating {
		s.stopLocked()
		s.l.Info("presence rotation stopped")
	}
}

func (s *PresenceService) stopLocked() {
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
	s.rotating = false
}

// SetOnce stops any rotation and applies a single descriptor, used for
// administrative overrides and the statistics snapshot.
func (s *PresenceService) SetOnce(activity models.Activity, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	if status != "" {
		s.status = status
	}
	s.applyLocked(activity)
	s.l.Info("presence set",
		zap.String("activity", activity.Name),
		zap.String("kind", string(activity.Kind)),
		zap.String("status", s.status))
}

// Current reports the displayed descriptor, whether rotation is running
// and the size of the rotation list.
func (s *PresenceService) Current() PresenceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PresenceState{
		Current:         s.current,
		Rotating:        s.rotating,
		TotalActivities: len(s.activities),
	}
}

func (s *PresenceService) applyLocked(activity models.Activity) {
	s.current = activity
	data := discordgo.UpdateStatusData{
		Status: s.status,
		Activities: []*discordgo.Activity{{
			Name: activity.Name,
			Type: ActivityType(activity.Kind),
			URL:  activity.URL,
		}},
	}
	if err := s.updater.UpdateStatusComplex(data); err != nil {
		s.l.Error("failed to update presence",
			zap.String("activity", activity.Name),
			zap.Error(err))
	}
}

// ActivityType maps an activity category to the discordgo constant.
func ActivityType(kind models.ActivityKind) discordgo.ActivityType {
	switch kind {
	case models.ActivityPlaying:
		return discordgo.ActivityTypeGame
	case models.ActivityStreaming:
		return discordgo.ActivityTypeStreaming
	case models.ActivityListening:
		return discordgo.ActivityTypeListening
	case models.ActivityCompeting:
		return discordgo.ActivityTypeCompeting
	default:
		return discordgo.ActivityTypeWatching
	}
}
