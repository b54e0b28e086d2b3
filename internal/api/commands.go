package api

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

const (
	CommandPing        = "ping"
	CommandHello       = "hello"
	CommandInfo        = "info"
	CommandAnalytics   = "analytics"
	CommandLevel       = "level"
	CommandPoll        = "poll"
	CommandPresence    = "presence"
	CommandTicket      = "ticket"
	CommandStatus      = "status"
)

var (
	adminPermission          int64 = discordgo.PermissionAdministrator
	manageChannelsPermission int64 = discordgo.PermissionManageChannels
	manageGuildPermission    int64 = discordgo.PermissionManageServer

	minPollDuration    float64 = 1
	maxPollDuration    float64 = 10080
	minLeaderboardPage float64 = 1
	minRotateInterval  float64 = 10
	maxRotateInterval  float64 = 300
)

func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandPing,
			Description: "Replies with Pong and latency!",
		},
		{
			Name:        CommandHello,
			Description: "Says hello to you!",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "Your name",
				},
			},
		},
		{
			Name:        CommandInfo,
			Description: "Get information about the bot or server",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "bot",
					Description: "Get information about the bot",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "server",
					Description: "Get information about the server",
				},
			},
		},
		{
			Name:                     CommandAnalytics,
			Description:              "Server analytics and statistics",
			DefaultMemberPermissions: &manageGuildPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "overview",
					Description: "Get server overview statistics",
				},
			},
		},
		{
			Name:        CommandLevel,
			Description: "Leveling and XP system",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "rank",
					Description: "Check your rank or another user's rank",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "User to check",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "leaderboard",
					Description: "View the server leaderboard",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "page",
							Description: "Page number",
							MinValue:    &minLeaderboardPage,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "reset",
					Description: "Reset a user's XP (Admin only)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "User to reset",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:        CommandPoll,
			Description: "Create advanced polls",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Create a new poll",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "question",
							Description: "The poll question",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "options",
							Description: "Poll options separated by | (e.g., Yes|No|Maybe)",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "duration",
							Description: "Poll duration in minutes",
							MinValue:    &minPollDuration,
							MaxValue:    maxPollDuration,
						},
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "anonymous",
							Description: "Hide who voted for what",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "end",
					Description: "End an active poll",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "message-id",
							Description: "Message ID of the poll",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:                     CommandPresence,
			Description:              "Manage bot rich presence (Admin only)",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Set a custom bot presence",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "activity",
							Description: "The activity text to display",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "type",
							Description: "The type of activity",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Playing", Value: "playing"},
								{Name: "Watching", Value: "watching"},
								{Name: "Listening", Value: "listening"},
								{Name: "Competing", Value: "competing"},
								{Name: "Streaming", Value: "streaming"},
							},
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "status",
							Description: "Bot online status",
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Online", Value: "online"},
								{Name: "Idle", Value: "idle"},
								{Name: "Do Not Disturb", Value: "dnd"},
								{Name: "Invisible", Value: "invisible"},
							},
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "url",
							Description: "Streaming URL (only for streaming type)",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "rotate",
					Description: "Start automatic presence rotation",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "interval",
							Description: "Rotation interval in seconds (default: 30)",
							MinValue:    &minRotateInterval,
							MaxValue:    maxRotateInterval,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "stop",
					Description: "Stop automatic presence rotation",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "stats",
					Description: "Show server and user statistics in presence",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "info",
					Description: "Show current presence configuration",
				},
			},
		},
		{
			Name:                     CommandTicket,
			Description:              "Advanced ticket system",
			DefaultMemberPermissions: &manageChannelsPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "setup",
					Description: "Setup ticket system in current channel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "support-role",
							Description: "Role that can view tickets",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionChannel,
							Name:        "category",
							Description: "Category for ticket channels",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "close",
					Description: "Close the current ticket",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Add a user to the ticket",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "User to add",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a user from the ticket",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "User to remove",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:        CommandStatus,
			Description: "Check Mamba Host service status and uptime statistics",
		},
	}
}

// RegisterCommands overwrites the application's slash commands, scoped to
// guildID when set and global otherwise.
func RegisterCommands(s *discordgo.Session, guildID string) error {
	_, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, guildID, commandDefinitions())
	if err != nil {
		return fmt.Errorf("api: failed to register slash commands: %w", err)
	}
	return nil
}
