package api

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const ticketChannelPrefix = "ticket-"

var (
	priorityColors = map[string]int{"low": colorGreen, "medium": 0xFFC107, "high": colorRed}
	priorityEmojis = map[string]string{"low": "🟢", "medium": "🟡", "high": "🔴"}
)

func (h *Handler) handleTicket(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sub, options := subcommand(i.ApplicationCommandData())
	switch sub {
	case "setup":
		return h.ticketSetup(s, i, options)
	case "close":
		return h.ticketClose(s, i)
	case "add":
		return h.ticketAdd(s, i, options)
	case "remove":
		return h.ticketRemove(s, i, options)
	}
	return h.respondEphemeral(s, i, "❌ Unknown subcommand!")
}

func (h *Handler) ticketSetup(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	opts := optionMap(options)
	supportRole := opts["support-role"].RoleValue(s, i.GuildID)
	categoryID := ""
	if option, ok := opts["category"]; ok {
		categoryID = option.ChannelValue(s).ID
	}

	embed := &discordgo.MessageEmbed{
		Color: colorOrange,
		Title: "🎫 Mamba Host Support Tickets",
		Description: "Need help? Create a support ticket!\n\n" +
			"**How it works:**\n" +
			"1. Click the button below\n" +
			"2. Fill out the ticket form\n" +
			"3. A private channel will be created\n" +
			"4. Our support team will assist you\n\n" +
			"**Response Times:**\n" +
			"🟢 High Priority: < 1 hour\n" +
			"🟡 Medium Priority: < 4 hours\n" +
			"🔴 Low Priority: < 24 hours",
		Footer: &discordgo.MessageEmbedFooter{Text: "Mamba Host • Premium Support"},
	}
	row := discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{
			Label:    "Create Ticket",
			Style:    discordgo.PrimaryButton,
			CustomID: createTicketID(supportRole.ID, categoryID),
			Emoji:    &discordgo.ComponentEmoji{Name: "🎫"},
		},
	}}

	if err := h.respondEphemeral(s, i, "✅ Ticket system has been set up!"); err != nil {
		return err
	}
	_, err := s.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{row},
	})
	if err != nil {
		return fmt.Errorf("handler: failed to send ticket setup message: %w", err)
	}
	return nil
}

// handleTicketButton opens the ticket form. The support role and category
// travel inside the modal custom ID.
func (h *Handler) handleTicketButton(s *discordgo.Session, i *discordgo.InteractionCreate, id ComponentID) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: ticketModalID(id.SupportRoleID, id.CategoryID),
			Title:    "Create Support Ticket",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "ticket_subject",
						Label:       "Subject",
						Style:       discordgo.TextInputShort,
						Placeholder: "Brief description of your issue",
						Required:    true,
						MaxLength:   100,
					},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "ticket_description",
						Label:       "Detailed Description",
						Style:       discordgo.TextInputParagraph,
						Placeholder: "Please describe your issue in detail...",
						Required:    true,
						MaxLength:   1000,
					},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "ticket_priority",
						Label:       "Priority (Low, Medium, High)",
						Style:       discordgo.TextInputShort,
						Placeholder: "Low",
						MaxLength:   10,
					},
				}},
			},
		},
	})
}

func (h *Handler) handleTicketModal(s *discordgo.Session, i *discordgo.InteractionCreate, id ComponentID) error {
	data := i.ModalSubmitData()
	subject := modalValue(data, "ticket_subject")
	description := modalValue(data, "ticket_description")
	priority := modalValue(data, "ticket_priority")
	if priority == "" {
		priority = "Low"
	}

	if err := h.deferReply(s, i, true); err != nil {
		return err
	}

	user := interactionUser(i)
	ticketNumber := rand.Intn(9000) + 1000
	channelName := fmt.Sprintf("%s%d", ticketChannelPrefix, ticketNumber)

	overwrites := []*discordgo.PermissionOverwrite{
		{
			// @everyone shares its ID with the guild.
			ID:   i.GuildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    user.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory,
		},
		{
			ID:    id.SupportRoleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory,
		},
	}

	createData := discordgo.GuildChannelCreateData{
		Name:                 channelName,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                "Ticket by " + user.Username + " | " + subject,
		PermissionOverwrites: overwrites,
	}
	if id.CategoryID != noTicketCategory {
		createData.ParentID = id.CategoryID
	}

	channel, err := s.GuildChannelCreateComplex(i.GuildID, createData)
	if err != nil {
		h.l.Error("failed to create ticket channel",
			zap.String("guild_id", i.GuildID),
			zap.Error(err))
		return h.editReply(s, i, "❌ Failed to create ticket: "+err.Error())
	}

	norm := strings.ToLower(priority)
	color, ok := priorityColors[norm]
	if !ok {
		color = priorityColors["low"]
	}
	emoji, ok := priorityEmojis[norm]
	if !ok {
		emoji = priorityEmojis["low"]
	}

	embed := &discordgo.MessageEmbed{
		Color: color,
		Title: fmt.Sprintf("🎫 Ticket #%d", ticketNumber),
		Description: fmt.Sprintf("**Subject:** %s\n\n**Description:**\n%s\n\n**Priority:** %s %s",
			subject, description, emoji, priority),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Created by", Value: user.Mention(), Inline: true},
			{Name: "Created at", Value: fmt.Sprintf("<t:%d:F>", h.clock.Now().Unix()), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Mamba Host Support"},
	}
	_, err = s.ChannelMessageSendComplex(channel.ID, &discordgo.MessageSend{
		Content: fmt.Sprintf("%s <@&%s>", user.Mention(), id.SupportRoleID),
		Embeds:  []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		h.l.Error("failed to post ticket embed",
			zap.String("channel_id", channel.ID),
			zap.Error(err))
	}

	h.l.Info("ticket created",
		zap.Int("ticket", ticketNumber),
		zap.String("channel_id", channel.ID),
		zap.String("user_id", user.ID))
	return h.editReply(s, i, "✅ Ticket created! "+channel.Mention())
}

func (h *Handler) ticketClose(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	channel, err := s.Channel(i.ChannelID)
	if err != nil {
		return fmt.Errorf("handler: failed to fetch channel: %w", err)
	}
	if !strings.HasPrefix(channel.Name, ticketChannelPrefix) {
		return h.respondEphemeral(s, i, "❌ This command can only be used in ticket channels!")
	}

	embed := &discordgo.MessageEmbed{
		Color:       colorRed,
		Title:       "🔒 Closing Ticket",
		Description: "This ticket will be closed in 5 seconds...",
	}
	if err = h.respond(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	}); err != nil {
		return err
	}

	channelID := i.ChannelID
	h.clock.AfterFunc(5*time.Second, func() {
		if _, err := s.ChannelDelete(channelID); err != nil {
			h.l.Error("failed to delete ticket channel",
				zap.String("channel_id", channelID),
				zap.Error(err))
		}
	})
	return nil
}

func (h *Handler) ticketAdd(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	user := optionMap(options)["user"].UserValue(s)
	channel, err := s.Channel(i.ChannelID)
	if err != nil {
		return fmt.Errorf("handler: failed to fetch channel: %w", err)
	}
	if !strings.HasPrefix(channel.Name, ticketChannelPrefix) {
		return h.respondEphemeral(s, i, "❌ This command can only be used in ticket channels!")
	}

	err = s.ChannelPermissionSet(i.ChannelID, user.ID, discordgo.PermissionOverwriteTypeMember,
		discordgo.PermissionViewChannel|discordgo.PermissionSendMessages|discordgo.PermissionReadMessageHistory, 0)
	if err != nil {
		return h.respondEphemeral(s, i, "❌ Failed to add user: "+err.Error())
	}
	return h.respond(s, i, &discordgo.InteractionResponseData{
		Content: "✅ Added " + user.Mention() + " to the ticket!",
	})
}

func (h *Handler) ticketRemove(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	user := optionMap(options)["user"].UserValue(s)
	channel, err := s.Channel(i.ChannelID)
	if err != nil {
		return fmt.Errorf("handler: failed to fetch channel: %w", err)
	}
	if !strings.HasPrefix(channel.Name, ticketChannelPrefix) {
		return h.respondEphemeral(s, i, "❌ This command can only be used in ticket channels!")
	}

	if err = s.ChannelPermissionDelete(i.ChannelID, user.ID); err != nil {
		return h.respondEphemeral(s, i, "❌ Failed to remove user: "+err.Error())
	}
	return h.respond(s, i, &discordgo.InteractionResponseData{
		Content: "✅ Removed " + user.Mention() + " from the ticket!",
	})
}

// editReply updates a deferred interaction response.
func (h *Handler) editReply(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	})
	return err
}

// modalValue pulls a text input value out of a modal submission.
func modalValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, component := range data.Components {
		row, ok := component.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}
