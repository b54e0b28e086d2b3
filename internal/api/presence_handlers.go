package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mambahost/mamba-bot/internal/models"
	"github.com/mambahost/mamba-bot/internal/service"
)

var (
	activityEmojis = map[models.ActivityKind]string{
		models.ActivityPlaying:   "🎮",
		models.ActivityWatching:  "👀",
		models.ActivityListening: "🎧",
		models.ActivityCompeting: "🏆",
		models.ActivityStreaming: "📺",
	}
	activityNames = map[models.ActivityKind]string{
		models.ActivityPlaying:   "Playing",
		models.ActivityWatching:  "Watching",
		models.ActivityListening: "Listening",
		models.ActivityCompeting: "Competing",
		models.ActivityStreaming: "Streaming",
	}
	statusEmojis = map[string]string{
		"online":    "🟢",
		"idle":      "🟡",
		"dnd":       "🔴",
		"invisible": "⚫",
	}
)

func (h *Handler) handlePresence(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sub, options := subcommand(i.ApplicationCommandData())
	switch sub {
	case "set":
		return h.presenceSet(s, i, options)
	case "rotate":
		return h.presenceRotate(s, i, options)
	case "stop":
		return h.presenceStop(s, i)
	case "stats":
		return h.presenceStats(s, i)
	case "info":
		return h.presenceInfo(s, i)
	}
	return h.respondEphemeral(s, i, "❌ Unknown subcommand!")
}

func (h *Handler) presenceSet(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	opts := optionMap(options)
	kind := models.ActivityKind(opts["type"].StringValue())
	activity := models.Activity{
		Name: opts["activity"].StringValue(),
		Kind: kind,
	}
	status := "online"
	if option, ok := opts["status"]; ok {
		status = option.StringValue()
	}
	if option, ok := opts["url"]; ok {
		activity.URL = option.StringValue()
	}

	if kind == models.ActivityStreaming && activity.URL == "" {
		return h.respondEphemeral(s, i, "❌ Streaming type requires a URL!")
	}

	h.presence.SetOnce(activity, status)

	return h.respondEphemeral(s, i, fmt.Sprintf(
		"✅ Bot presence updated!\n%s **%s** %s\n\n*Rotation has been stopped. Use `/presence rotate` to re-enable.*",
		activityEmojis[kind], activityNames[kind], activity.Name))
}

func (h *Handler) presenceRotate(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	interval := 30
	if option, ok := optionMap(options)["interval"]; ok {
		interval = int(option.IntValue())
	}

	h.presence.Start(time.Duration(interval) * time.Second)

	lines := make([]string, 0, len(service.DefaultActivities))
	for _, activity := range service.DefaultActivities {
		lines = append(lines, fmt.Sprintf("• %s %s", activityNames[activity.Kind], activity.Name))
	}
	return h.respondEphemeral(s, i, fmt.Sprintf(
		"✅ Presence rotation started!\n🔄 Rotating every **%d seconds**\n\nActivities include:\n%s",
		interval, strings.Join(lines, "\n")))
}

func (h *Handler) presenceStop(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	h.presence.Stop()
	return h.respondEphemeral(s, i,
		"✅ Presence rotation stopped!\nThe current presence will remain until changed.")
}

func (h *Handler) presenceStats(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	serverCount, userCount := h.statistics(s)
	h.presence.SetOnce(models.Activity{
		Name: fmt.Sprintf("%d servers | %d users", serverCount, userCount),
		Kind: models.ActivityWatching,
	}, "online")

	return h.respondEphemeral(s, i, fmt.Sprintf(
		"✅ Presence set to show statistics!\n📊 **%d** servers | **%d** users\n\n*Rotation has been stopped. This is a static presence.*",
		serverCount, userCount))
}

func (h *Handler) presenceInfo(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	state := h.presence.Current()

	activityText := "No activity set"
	if state.Current.Name != "" {
		activityText = fmt.Sprintf("%s **%s**", activityNames[state.Current.Kind], state.Current.Name)
	}
	rotationStatus := "⏸️ **Disabled** (static presence)"
	if state.Rotating {
		rotationStatus = "🔄 **Enabled** (rotating through activities)"
	}

	return h.respondEphemeral(s, i, fmt.Sprintf(
		"📊 **Current Presence Info**\n\n**Activity:** %s\n**Rotation:** %s\n**Total Activities:** %d",
		activityText, rotationStatus, state.TotalActivities))
}

// statistics sums what the session state knows about: one entry per guild
// and its member count.
func (h *Handler) statistics(s *discordgo.Session) (servers, users int) {
	s.State.RLock()
	defer s.State.RUnlock()
	for _, guild := range s.State.Guilds {
		servers++
		users += guild.MemberCount
	}
	return servers, users
}
