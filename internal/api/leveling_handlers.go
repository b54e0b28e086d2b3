package api

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/mambahost/mamba-bot/internal/models"
	"go.uber.org/zap"
)

func (h *Handler) handleLevel(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sub, options := subcommand(i.ApplicationCommandData())
	switch sub {
	case "rank":
		return h.levelRank(s, i, options)
	case "leaderboard":
		return h.levelLeaderboard(s, i, options)
	case "reset":
		return h.levelReset(s, i, options)
	}
	return h.respondEphemeral(s, i, "❌ Unknown subcommand!")
}

func (h *Handler) levelRank(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	user := interactionUser(i)
	if option, ok := optionMap(options)["user"]; ok {
		user = option.UserValue(s)
	}

	rank := h.leveling.Rank(i.GuildID, user.ID)
	embed := &discordgo.MessageEmbed{
		Color:     colorOrange,
		Title:     "📊 " + user.Username + " Rank",
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("256")},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Level", Value: strconv.Itoa(rank.Level), Inline: true},
			{Name: "Total XP", Value: strconv.Itoa(rank.Progress.XP), Inline: true},
			{Name: "Messages", Value: strconv.Itoa(rank.Progress.Messages), Inline: true},
			{
				Name: "Progress",
				Value: fmt.Sprintf("%s\n%d / %d XP (%.1f%%)",
					rank.Bar, rank.XPIntoLevel, rank.XPNeeded, rank.Percent),
			},
		},
	}
	return h.respond(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
}

func (h *Handler) levelLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	page := 1
	if option, ok := optionMap(options)["page"]; ok {
		page = int(option.IntValue())
	}

	entries, totalPages := h.leveling.Leaderboard(i.GuildID, page)
	if len(entries) == 0 {
		return h.respondEphemeral(s, i, "❌ No users found!")
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		// Users that left or cannot be resolved are dropped from the
		// page, not fatal to it.
		user, err := s.User(entry.Progress.UserID)
		if err != nil {
			h.l.Warn("failed to resolve leaderboard user",
				zap.String("user_id", entry.Progress.UserID),
				zap.Error(err))
			continue
		}
		medal := "   "
		switch entry.Rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}
		lines = append(lines, fmt.Sprintf("%s **%d.** %s\n    Level %d • %d XP",
			medal, entry.Rank, user.Username, entry.Level, entry.Progress.XP))
	}

	embed := &discordgo.MessageEmbed{
		Color:       colorGold,
		Title:       "🏆 Leaderboard",
		Description: strings.Join(lines, "\n\n"),
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Page %d/%d", page, totalPages)},
	}
	return h.respond(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
}

func (h *Handler) levelReset(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	user := optionMap(options)["user"].UserValue(s)
	err := h.leveling.Reset(i.GuildID, user.ID)
	if err != nil {
		if errors.Is(err, models.ErrNoProgress) {
			return h.respondEphemeral(s, i, "❌ No XP data found for this user!")
		}
		return fmt.Errorf("handler: failed to reset xp: %w", err)
	}
	return h.respondEphemeral(s, i, "✅ Reset XP for "+user.Username)
}
