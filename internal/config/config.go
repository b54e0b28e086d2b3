package config

import (
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	BotToken string `yaml:"BOT_TOKEN" env:"BOT_TOKEN"`
	// GuildID scopes slash command registration to one guild; empty
	// registers the commands globally.
	GuildID  string `yaml:"GUILD_ID"  env:"GUILD_ID"  env-default:""`
	LogLevel string `yaml:"LOG_LEVEL" env:"LOG_LEVEL" env-default:"debug"`

	PresenceIntervalSec int `yaml:"PRESENCE_INTERVAL" env:"PRESENCE_INTERVAL" env-default:"30"`

	StatusAPIURL       string `yaml:"STATUS_API_URL"       env:"STATUS_API_URL"       env-default:"https://status.mambahost.com/api/status-page/mambahost"`
	StatusHeartbeatURL string `yaml:"STATUS_HEARTBEAT_URL" env:"STATUS_HEARTBEAT_URL" env-default:"https://status.mambahost.com/api/status-page/heartbeat/mambahost"`
	StatusPageURL      string `yaml:"STATUS_PAGE_URL"      env:"STATUS_PAGE_URL"      env-default:"https://status.mambahost.com"`
}

func New() (*Config, error) {
	_ = godotenv.Load()

	var config Config
	if err := cleanenv.ReadEnv(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
