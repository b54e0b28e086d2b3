package main

import (
	"context"
	logg "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jonboulle/clockwork"
	"github.com/mambahost/mamba-bot/internal/api"
	"github.com/mambahost/mamba-bot/internal/config"
	"github.com/mambahost/mamba-bot/internal/repository"
	srv "github.com/mambahost/mamba-bot/internal/service"
	"github.com/mambahost/mamba-bot/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		logg.Fatalf("failed to load config: %s", err)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		logg.Fatalf("failed to initalize logger: %s", err)
	}

	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		logg.Fatalf("failed to create discord session: %s", err)
	}
	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentMessageContent

	clock := clockwork.NewRealClock()
	progressRepo := repository.NewProgressRepository(log)
	pollRepo := repository.NewPollRepository(log)

	leveling := srv.NewLevelingService(progressRepo, log)
	polls := srv.NewPollService(pollRepo, clock, log)
	presence := srv.NewPresenceService(session, clock, log)
	status := api.NewStatusClient(cfg.StatusAPIURL, cfg.StatusHeartbeatURL, clock, log)

	handler := api.New(session, leveling, polls, presence, status, cfg.StatusPageURL, clock, log)
	session.AddHandler(handler.HandleMessageCreate)
	session.AddHandler(handler.HandleInteractionCreate)
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info("bot is ready", zap.String("user", r.User.Username))
		presence.Start(time.Duration(cfg.PresenceIntervalSec) * time.Second)
	})

	if err = session.Open(); err != nil {
		logg.Fatalf("failed to connect to discord: %s", err)
	}

	if err = api.RegisterCommands(session, cfg.GuildID); err != nil {
		log.Error("failed to register commands", zap.Error(err))
	} else {
		log.Info("slash commands registered", zap.String("guild_id", cfg.GuildID))
	}

	<-ctx.Done()
	presence.Stop()
	if err = session.Close(); err != nil {
		log.Error("failed to close discord session", zap.Error(err))
	}
	logg.Println("server graceful stopped")
}
