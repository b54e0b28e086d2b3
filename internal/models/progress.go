package models

import "errors"

var ErrNoProgress = errors.New("no xp data found for this user")

// UserProgress is keyed by (guild, user). XP and Messages only ever grow;
// the level is always derived from XP, never stored.
type UserProgress struct {
	GuildID  string
	UserID   string
	XP       int
	Messages int
}
