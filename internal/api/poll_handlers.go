package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mambahost/mamba-bot/internal/models"
	"github.com/mambahost/mamba-bot/internal/service"
	"go.uber.org/zap"
)

var numberEmojis = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣", "🔟"}

func (h *Handler) handlePoll(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sub, options := subcommand(i.ApplicationCommandData())
	switch sub {
	case "create":
		return h.pollCreate(s, i, options)
	case "end":
		return h.pollEnd(s, i, options)
	}
	return h.respondEphemeral(s, i, "❌ Unknown subcommand!")
}

func (h *Handler) pollCreate(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	opts := optionMap(options)
	question := opts["question"].StringValue()
	optionsRaw := strings.Split(opts["options"].StringValue(), "|")
	var duration time.Duration
	if option, ok := opts["duration"]; ok {
		duration = time.Duration(option.IntValue()) * time.Minute
	}
	anonymous := false
	if option, ok := opts["anonymous"]; ok {
		anonymous = option.BoolValue()
	}

	creator := interactionUser(i)
	poll, err := h.polls.CreatePoll(question, i.ChannelID, creator.ID, optionsRaw, duration, anonymous)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotEnoughOptions):
			return h.respondEphemeral(s, i, "❌ You need at least 2 options for a poll!")
		case errors.Is(err, models.ErrTooManyOptions):
			return h.respondEphemeral(s, i, "❌ Maximum 10 options allowed!")
		case errors.Is(err, models.ErrQuestionIsEmpty):
			return h.respondEphemeral(s, i, "❌ The poll question cannot be empty!")
		}
		return fmt.Errorf("handler: failed to create poll: %w", err)
	}

	if err = h.respondEphemeral(s, i, "✅ Poll created!"); err != nil {
		return err
	}

	message, err := s.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{h.newPollEmbed(poll, creator.Username)},
		Components: pollButtons(poll),
	})
	if err != nil {
		return fmt.Errorf("handler: failed to send poll message: %w", err)
	}
	poll.MessageID = message.ID

	h.polls.OpenPoll(poll)
	return nil
}

func (h *Handler) pollEnd(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	messageID := optionMap(options)["message-id"].StringValue()
	poll, err := h.polls.EndPollByMessage(messageID, interactionUser(i).ID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrPollNotFound):
			return h.respondEphemeral(s, i, "❌ Poll not found or already ended!")
		case errors.Is(err, models.ErrNotPollCreator):
			return h.respondEphemeral(s, i, "❌ Only the poll creator can end this poll!")
		}
		return fmt.Errorf("handler: failed to end poll: %w", err)
	}

	h.finishPoll(poll)
	return h.respondEphemeral(s, i, "✅ Poll ended!")
}

func (h *Handler) handlePollVote(s *discordgo.Session, i *discordgo.InteractionCreate, id ComponentID) error {
	poll, voted, err := h.polls.ToggleVote(id.PollID, id.OptionIndex, interactionUser(i).ID)
	if err != nil {
		if errors.Is(err, models.ErrPollNotFound) {
			return h.respondEphemeral(s, i, "❌ This poll has ended!")
		}
		if errors.Is(err, models.ErrOptionNotFound) {
			return h.respondEphemeral(s, i, "❌ That option does not exist!")
		}
		return fmt.Errorf("handler: failed to toggle vote: %w", err)
	}

	confirmation := "✅ Vote removed!"
	if voted {
		confirmation = "✅ Vote recorded!"
	}
	if err = h.respondEphemeral(s, i, confirmation); err != nil {
		return err
	}

	// The edit races with other voters by design; the mutation above is
	// what counts, the rendered message is eventually consistent.
	embeds := []*discordgo.MessageEmbed{h.pollTallyEmbed(poll)}
	_, err = s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel: i.ChannelID,
		ID:      i.Message.ID,
		Embeds:  &embeds,
	})
	if err != nil {
		h.l.Error("failed to update poll message",
			zap.String("poll_id", poll.ID),
			zap.Error(err))
	}
	return nil
}

// finishPoll renders the final results over the poll message and strips
// the vote buttons. Shared by the manual end command and the expiry timer.
func (h *Handler) finishPoll(poll *models.Poll) {
	if poll.MessageID == "" {
		return
	}
	embeds := []*discordgo.MessageEmbed{h.pollResultsEmbed(poll)}
	components := []discordgo.MessageComponent{}
	_, err := h.s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    poll.ChannelID,
		ID:         poll.MessageID,
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		h.l.Error("failed to publish poll results",
			zap.String("poll_id", poll.ID),
			zap.Error(err))
	}
}

func (h *Handler) newPollEmbed(poll *models.Poll, creatorName string) *discordgo.MessageEmbed {
	lines := make([]string, len(poll.Options))
	for idx, option := range poll.Options {
		lines[idx] = numberEmojis[idx] + " " + option
	}
	description := strings.Join(lines, "\n\n") + "\n\n**Votes:** 0"
	if poll.EndTime != nil {
		description += fmt.Sprintf("\n**Ends:** <t:%d:R>", poll.EndTime.Unix())
	} else {
		description += "\n**Duration:** Unlimited"
	}
	if poll.Anonymous {
		description += "\n**Mode:** Anonymous 🔒"
	} else {
		description += "\n**Mode:** Public"
	}

	return &discordgo.MessageEmbed{
		Color:       colorOrange,
		Title:       "📊 " + poll.Question,
		Description: description,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Poll ID: " + poll.ID + " • Created by " + creatorName},
	}
}

func (h *Handler) pollTallyEmbed(poll *models.Poll) *discordgo.MessageEmbed {
	total := poll.TotalVotes()
	tallies := service.Tally(poll)
	lines := make([]string, len(tallies))
	for idx, tally := range tallies {
		percentage := ""
		if total > 0 {
			percentage = fmt.Sprintf(" (%.1f%%)", tally.Percentage)
		}
		lines[idx] = fmt.Sprintf("%s %s - **%d** votes%s", numberEmojis[idx], tally.Text, tally.Votes, percentage)
	}
	description := strings.Join(lines, "\n\n") + fmt.Sprintf("\n\n**Total Votes:** %d", total)

	return &discordgo.MessageEmbed{
		Color:       colorOrange,
		Title:       "📊 " + poll.Question,
		Description: description,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Poll ID: " + poll.ID},
	}
}

func (h *Handler) pollResultsEmbed(poll *models.Poll) *discordgo.MessageEmbed {
	tallies := service.Tally(poll)
	lines := make([]string, len(tallies))
	for idx, tally := range tallies {
		lines[idx] = fmt.Sprintf("**%s**\n%s %d votes (%.1f%%)",
			tally.Text, tally.Bar, tally.Votes, tally.Percentage)
	}
	winner := poll.Options[service.Winner(poll)]
	description := strings.Join(lines, "\n\n") +
		fmt.Sprintf("\n\n**Total Votes:** %d\n**Winner:** %s 🏆", poll.TotalVotes(), winner)

	return &discordgo.MessageEmbed{
		Color:       colorGreen,
		Title:       "📊 " + poll.Question + " [ENDED]",
		Description: description,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Poll ID: " + poll.ID},
	}
}

// pollButtons lays the vote buttons out in rows of five.
func pollButtons(poll *models.Poll) []discordgo.MessageComponent {
	rows := make([]discordgo.MessageComponent, 0, (len(poll.Options)+4)/5)
	for start := 0; start < len(poll.Options); start += 5 {
		end := min(start+5, len(poll.Options))
		buttons := make([]discordgo.MessageComponent, 0, end-start)
		for idx := start; idx < end; idx++ {
			label := poll.Options[idx]
			if len(label) > 80 {
				label = label[:77] + "..."
			}
			buttons = append(buttons, discordgo.Button{
				Label:    label,
				Style:    discordgo.SecondaryButton,
				CustomID: pollVoteID(poll.ID, idx),
				Emoji:    &discordgo.ComponentEmoji{Name: numberEmojis[idx]},
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return rows
}
