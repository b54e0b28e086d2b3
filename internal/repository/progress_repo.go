package repository

import (
	"sort"
	"sync"

	"github.com/mambahost/mamba-bot/internal/models"
	"go.uber.org/zap"
)

type progressKey struct {
	guildID string
	userID  string
}

type progressEntry struct {
	progress *models.UserProgress
	seq      int
}

// ProgressRepository is the in-memory XP registry. Records are created
// lazily on first activity and only leave the map through Reset.
type ProgressRepository struct {
	mu      sync.Mutex
	records map[progressKey]*progressEntry
	nextSeq int
	l       *zap.Logger
}

func NewProgressRepository(l *zap.Logger) *ProgressRepository {
	return &ProgressRepository{
		records: make(map[progressKey]*progressEntry),
		l:       l,
	}
}

// Gain adds amount XP and one message to the user's record, creating it
// first when absent. It returns the XP before and after the gain.
func (r *ProgressRepository) Gain(guildID, userID string, amount int) (before, after int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := progressKey{guildID: guildID, userID: userID}
	entry, ok := r.records[key]
	if !ok {
		entry = &progressEntry{
			progress: &models.UserProgress{GuildID: guildID, UserID: userID},
			seq:      r.nextSeq,
		}
		r.nextSeq++
		r.records[key] = entry
	}
	before = entry.progress.XP
	entry.progress.XP += amount
	entry.progress.Messages++
	return before, entry.progress.XP
}

// Get returns a copy of the user's record. A user without any activity yet
// reads as a fresh zero record, matching how the rank command treats them.
func (r *ProgressRepository) Get(guildID, userID string) models.UserProgress {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.records[progressKey{guildID: guildID, userID: userID}]; ok {
		return *entry.progress
	}
	return models.UserProgress{GuildID: guildID, UserID: userID}
}

// Reset removes the user's record entirely. Resetting a user that never
// earned XP reports ErrNoProgress instead of silently succeeding.
func (r *ProgressRepository) Reset(guildID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := progressKey{guildID: guildID, userID: userID}
	if _, ok := r.records[key]; !ok {
		r.l.Debug("no progress to reset",
			zap.String("guild_id", guildID),
			zap.String("user_id", userID))
		return models.ErrNoProgress
	}
	delete(r.records, key)
	return nil
}

// ListByGuild returns copies of every record in the guild sorted by XP
// descending. Ties keep insertion order, there is no secondary key.
func (r *ProgressRepository) ListByGuild(guildID string) []models.UserProgress {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := make([]*progressEntry, 0)
	for key, entry := range r.records {
		if key.guildID == guildID {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].progress.XP != entries[j].progress.XP {
			return entries[i].progress.XP > entries[j].progress.XP
		}
		return entries[i].seq < entries[j].seq
	})
	records := make([]models.UserProgress, len(entries))
	for i, entry := range entries {
		records[i] = *entry.progress
	}
	return records
}
