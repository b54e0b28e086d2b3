package api

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/jonboulle/clockwork"
	"github.com/mambahost/mamba-bot/internal/service"
	"go.uber.org/zap"
)

const (
	colorOrange  = 0xFF6F00
	colorGreen   = 0x4CAF50
	colorRed     = 0xFF6B6B
	colorGold    = 0xFFD700
	colorBlurple = 0x5865F2
)

type Handler struct {
	s        *discordgo.Session
	leveling *service.LevelingService
	polls    *service.PollService
	presence *service.PresenceService
	status   *StatusClient
	clock    clockwork.Clock
	l        *zap.Logger

	statusPageURL string
}

func New(
	s *discordgo.Session,
	leveling *service.LevelingService,
	polls *service.PollService,
	presence *service.PresenceService,
	status *StatusClient,
	statusPageURL string,
	clock clockwork.Clock,
	l *zap.Logger,
) *Handler {
	h := &Handler{
		s:        s,
		leveling: leveling,
		polls:    polls,
		presence: presence,
		status:   status,
		clock:    clock,
		l:        l,

		statusPageURL: statusPageURL,
	}
	polls.OnExpire(h.finishPoll)
	return h
}

// HandleMessageCreate credits XP for every human guild message and posts a
// level-up notice when one happened.
func (h *Handler) HandleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	result := h.leveling.RecordActivity(m.GuildID, m.Author.ID)
	if !result.LeveledUp {
		return
	}
	embed := &discordgo.MessageEmbed{
		Color:       colorGreen,
		Title:       "🎉 Level Up!",
		Description: m.Author.Mention() + " reached **Level " + strconv.Itoa(result.NewLevel) + "**!",
	}
	if _, err := s.ChannelMessageSendEmbed(m.ChannelID, embed); err != nil {
		h.l.Error("failed to send level up message",
			zap.String("channel_id", m.ChannelID),
			zap.Error(err))
	}
}

// HandleInteractionCreate routes slash commands, button presses and modal
// submissions. Unexpected failures are reported back as a generic
// ephemeral message, never propagated.
func (h *Handler) HandleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		h.handleComponent(s, i)
	case discordgo.InteractionModalSubmit:
		h.handleModal(s, i)
	}
}

func (h *Handler) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	h.l.Info("new command",
		zap.String("command", data.Name),
		zap.String("guild_id", i.GuildID),
		zap.String("user_id", interactionUser(i).ID))

	var err error
	switch data.Name {
	case CommandPing:
		err = h.handlePing(s, i)
	case CommandHello:
		err = h.handleHello(s, i)
	case CommandInfo:
		err = h.handleInfo(s, i)
	case CommandAnalytics:
		err = h.handleAnalytics(s, i)
	case CommandLevel:
		err = h.handleLevel(s, i)
	case CommandPoll:
		err = h.handlePoll(s, i)
	case CommandPresence:
		err = h.handlePresence(s, i)
	case CommandTicket:
		err = h.handleTicket(s, i)
	case CommandStatus:
		err = h.handleStatus(s, i)
	default:
		h.l.Error("no matching command", zap.String("command", data.Name))
		return
	}
	if err != nil {
		h.l.Error("error executing command",
			zap.String("command", data.Name),
			zap.Error(err))
		h.reportFailure(s, i, "There was an error while executing this command!")
	}
}

func (h *Handler) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	raw := i.MessageComponentData().CustomID
	id, err := ParseComponentID(raw)
	if err != nil {
		h.l.Warn("unknown component", zap.String("custom_id", raw))
		return
	}

	switch id.Action {
	case ActionPollVote:
		err = h.handlePollVote(s, i, id)
	case ActionCreateTicket:
		err = h.handleTicketButton(s, i, id)
	case ActionStatusRefresh:
		err = h.handleStatusRefresh(s, i)
	default:
		return
	}
	if err != nil {
		h.l.Error("error handling component",
			zap.String("custom_id", raw),
			zap.Error(err))
		h.reportFailure(s, i, "There was an error while processing this button!")
	}
}

func (h *Handler) handleModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	raw := i.ModalSubmitData().CustomID
	id, err := ParseComponentID(raw)
	if err != nil || id.Action != ActionTicketModal {
		h.l.Warn("unknown modal", zap.String("custom_id", raw))
		return
	}
	if err = h.handleTicketModal(s, i, id); err != nil {
		h.l.Error("error handling modal",
			zap.String("custom_id", raw),
			zap.Error(err))
		h.reportFailure(s, i, "There was an error while processing this form!")
	}
}

// reportFailure sends a generic ephemeral failure notice, falling back to
// a follow-up when the interaction was already acknowledged.
func (h *Handler) reportFailure(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		_, err = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		})
		if err != nil {
			h.l.Error("failed to report failure", zap.Error(err))
		}
	}
}

func (h *Handler) respond(s *discordgo.Session, i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func (h *Handler) respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return h.respond(s, i, &discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

func (h *Handler) deferReply(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
}

// interactionUser returns the invoking user for both guild and DM
// interactions.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

// subcommand unpacks the subcommand name and its options.
func subcommand(data discordgo.ApplicationCommandInteractionData) (string, []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(data.Options) == 0 {
		return "", nil
	}
	return data.Options[0].Name, data.Options[0].Options
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, option := range options {
		m[option.Name] = option
	}
	return m
}
