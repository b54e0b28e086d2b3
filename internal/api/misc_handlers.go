package api

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
)

func (h *Handler) handlePing(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	latency := time.Duration(0)
	if created, err := discordgo.SnowflakeTimestamp(i.ID); err == nil {
		latency = time.Since(created)
	}
	apiLatency := s.HeartbeatLatency()

	return h.respond(s, i, &discordgo.InteractionResponseData{
		Content: fmt.Sprintf("🏓 Pong!\n⏱️ Latency: %dms\n💓 API Latency: %dms",
			latency.Milliseconds(), apiLatency.Milliseconds()),
	})
}

func (h *Handler) handleHello(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	name := interactionUser(i).Username
	if option, ok := optionMap(i.ApplicationCommandData().Options)["name"]; ok {
		name = option.StringValue()
	}
	return h.respond(s, i, &discordgo.InteractionResponseData{
		Content: "👋 Hello, " + name + "!",
	})
}

func (h *Handler) handleInfo(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sub, _ := subcommand(i.ApplicationCommandData())
	switch sub {
	case "bot":
		return h.infoBot(s, i)
	case "server":
		return h.infoServer(s, i)
	}
	return h.respondEphemeral(s, i, "❌ Unknown subcommand!")
}

func (h *Handler) infoBot(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	bot := s.State.User
	servers, users := h.statistics(s)

	fields := []*discordgo.MessageEmbedField{
		{Name: "Bot Name", Value: bot.Username, Inline: true},
		{Name: "Bot ID", Value: bot.ID, Inline: true},
	}
	if created, err := discordgo.SnowflakeTimestamp(bot.ID); err == nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Created", Value: fmt.Sprintf("<t:%d:R>", created.Unix()), Inline: true,
		})
	}
	fields = append(fields,
		&discordgo.MessageEmbedField{Name: "Servers", Value: strconv.Itoa(servers), Inline: true},
		&discordgo.MessageEmbedField{Name: "Users", Value: strconv.Itoa(users), Inline: true},
	)

	return h.respond(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{{
			Color:     colorBlurple,
			Title:     "Bot Information",
			Thumbnail: &discordgo.MessageEmbedThumbnail{URL: bot.AvatarURL("256")},
			Fields:    fields,
		}},
	})
}

func (h *Handler) infoServer(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	guild, err := s.State.Guild(i.GuildID)
	if err != nil {
		guild, err = s.Guild(i.GuildID)
		if err != nil {
			return fmt.Errorf("handler: failed to fetch guild: %w", err)
		}
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Server Name", Value: guild.Name, Inline: true},
		{Name: "Server ID", Value: guild.ID, Inline: true},
		{Name: "Owner", Value: "<@" + guild.OwnerID + ">", Inline: true},
		{Name: "Members", Value: strconv.Itoa(guild.MemberCount), Inline: true},
	}
	if created, err := discordgo.SnowflakeTimestamp(guild.ID); err == nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Created", Value: fmt.Sprintf("<t:%d:R>", created.Unix()), Inline: true,
		})
	}
	fields = append(fields, &discordgo.MessageEmbedField{
		Name: "Boost Level", Value: strconv.Itoa(int(guild.PremiumTier)), Inline: true,
	})

	embed := &discordgo.MessageEmbed{
		Color:  colorBlurple,
		Title:  "Server Information",
		Fields: fields,
	}
	if guild.Icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: guild.IconURL("256")}
	}
	return h.respond(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
}

func (h *Handler) handleAnalytics(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sub, _ := subcommand(i.ApplicationCommandData())
	if sub != "overview" {
		return h.respondEphemeral(s, i, "❌ Unknown subcommand!")
	}

	if err := h.deferReply(s, i, false); err != nil {
		return err
	}

	guild, err := s.State.Guild(i.GuildID)
	if err != nil {
		guild, err = s.Guild(i.GuildID)
		if err != nil {
			return fmt.Errorf("handler: failed to fetch guild: %w", err)
		}
	}

	embeds := []*discordgo.MessageEmbed{{
		Color:       colorBlurple,
		Title:       "Analytics Overview",
		Description: fmt.Sprintf("Total Members: %d", guild.MemberCount),
	}}
	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Embeds: &embeds})
	return err
}
