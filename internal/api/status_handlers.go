package api

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

func (h *Handler) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if err := h.deferReply(s, i, false); err != nil {
		return err
	}

	result, err := h.status.Fetch(false)
	if err != nil {
		return h.editStatusReply(s, i, h.statusErrorEmbed(), nil)
	}
	return h.editStatusReply(s, i, h.statusEmbed(result), h.statusButtons())
}

// handleStatusRefresh re-fetches past the cache and rewrites the original
// status message in place.
func (h *Handler) handleStatusRefresh(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		return err
	}

	result, err := h.status.Fetch(true)
	if err != nil {
		embed := &discordgo.MessageEmbed{
			Color:       0xFF0000,
			Title:       "❌ Refresh Failed",
			Description: "Unable to fetch fresh status data. Please try again later.",
		}
		return h.editStatusReply(s, i, embed, h.statusButtons())
	}
	return h.editStatusReply(s, i, h.statusEmbed(result), h.statusButtons())
}

func (h *Handler) editStatusReply(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	embeds := []*discordgo.MessageEmbed{embed}
	edit := &discordgo.WebhookEdit{Embeds: &embeds}
	if components != nil {
		edit.Components = &components
	}
	_, err := s.InteractionResponseEdit(i.Interaction, edit)
	return err
}

func (h *Handler) statusButtons() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Refresh",
				Style:    discordgo.PrimaryButton,
				CustomID: statusRefreshID,
				Emoji:    &discordgo.ComponentEmoji{Name: "🔄"},
			},
			discordgo.Button{
				Label: "Status Page",
				Style: discordgo.LinkButton,
				URL:   h.statusPageURL,
			},
		}},
	}
}

func (h *Handler) statusErrorEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:       0xFF0000,
		Title:       "❌ Error",
		Description: "Unable to fetch status data. The service may be temporarily unavailable.",
		Fields: []*discordgo.MessageEmbedField{{
			Name:  "Alternative",
			Value: fmt.Sprintf("Visit the [status page](%s) directly for real-time information.", h.statusPageURL),
		}},
	}
}

func monitorDisplay(status int) (emoji, text string) {
	switch status {
	case monitorUp:
		return "🟢", "Operational"
	case monitorDown:
		return "🔴", "Down"
	case monitorDegraded:
		return "🟡", "Degraded"
	default:
		return "⚪", "Unknown"
	}
}

func (h *Handler) statusEmbed(result StatusResult) *discordgo.MessageEmbed {
	snapshot := result.Snapshot
	embed := &discordgo.MessageEmbed{
		Color: colorOrange,
		Title: "🖥️ Mamba Host Service Status",
		URL:   h.statusPageURL,
	}

	footer := "Data updates every 5 minutes"
	if result.Stale {
		footer = "⚠️ Using cached data (API temporarily unavailable)"
		embed.Color = 0xFFAA00
	} else if result.Cached {
		footer = "💾 Cached data (updates every 5 minutes)"
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: footer}

	allOperational := true
	if snapshot.Incident != nil && snapshot.Incident.Pin {
		incidentEmoji := "⚪"
		switch snapshot.Incident.Style {
		case "danger":
			incidentEmoji = "🔴"
		case "warning":
			incidentEmoji = "🟡"
		case "info":
			incidentEmoji = "🔵"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  incidentEmoji + " " + snapshot.Incident.Title,
			Value: truncate(snapshot.Incident.Content, 1024),
		})
		allOperational = false
	}

	monitors := 0
	operational := 0
	for _, group := range snapshot.Groups {
		for _, monitor := range group.MonitorList {
			status := monitorDown
			ping := "N/A"
			if beat, ok := snapshot.LatestHeartbeat(monitor.ID); ok {
				status = beat.Status
				if beat.Ping > 0 {
					ping = fmt.Sprintf("%.0fms", beat.Ping)
				}
			}
			emoji, text := monitorDisplay(status)
			if status != monitorUp {
				allOperational = false
			} else {
				operational++
			}
			monitors++

			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name: emoji + " " + monitor.Name,
				Value: fmt.Sprintf("**Status:** %s\n**Uptime (24h):** %.2f%%\n**Response:** %s",
					text, snapshot.UptimePercent(monitor.ID), ping),
				Inline: true,
			})
		}
	}

	if monitors > 0 {
		if allOperational {
			embed.Description = "✅ **All systems operational**"
			embed.Color = 0x00FF00
		} else {
			embed.Description = "⚠️ **Some services experiencing issues**"
			embed.Color = 0xFFAA00
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "📊 Statistics",
			Value: fmt.Sprintf("**Total Services:** %d\n**Operational:** %d/%d\n**Last Updated:** <t:%d:R>",
				monitors, operational, monitors, h.clock.Now().Unix()),
		})
	} else {
		embed.Description = "📊 Status page configured but no monitors found."
	}

	var maintenance []string
	for _, window := range snapshot.Maintenance {
		if !window.Active || window.Status == "ended" {
			continue
		}
		emoji := "📅"
		if window.Status == "under-maintenance" {
			emoji = "🔧"
		}
		maintenance = append(maintenance, fmt.Sprintf("%s **%s**", emoji, window.Title))
	}
	if len(maintenance) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "🔧 Scheduled Maintenance",
			Value: truncate(strings.Join(maintenance, "\n"), 1024),
		})
	}

	if snapshot.Message != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "📢 Notice",
			Value: truncate(snapshot.Message, 1024),
		})
	}
	return embed
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
