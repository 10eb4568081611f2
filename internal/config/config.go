// Package config provides configuration management using viper.
// It supports loading from a .env file, a YAML file and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MinRoundPlayers is the smallest round-wise lobby that can rotate leaders.
const MinRoundPlayers = 3

// ErrMissingToken is returned by Validate when no bot token was supplied.
var ErrMissingToken = errors.New("bot token is required (set BOT_TOKEN)")

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Game      GameConfig      `mapstructure:"game"`
	Links     LinksConfig     `mapstructure:"links"`
	Health    HealthConfig    `mapstructure:"health"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Log       LogConfig       `mapstructure:"log"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token       string        `mapstructure:"token"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

// GameConfig holds lobby and round timing.
type GameConfig struct {
	JoinDurationSeconds int           `mapstructure:"join_duration_seconds"`
	TickInterval        time.Duration `mapstructure:"tick_interval"`
	RestartDelaySeconds int           `mapstructure:"restart_delay_seconds"`
	RoundCount          int           `mapstructure:"round_count"`
	RoundTimeoutSeconds int           `mapstructure:"round_timeout_seconds"`
	MinPlayersRapid     int           `mapstructure:"min_players_rapid"`
	MinPlayersRound     int           `mapstructure:"min_players_round"`
}

// LinksConfig holds the URLs shown in the private welcome message.
type LinksConfig struct {
	NewsChannel string `mapstructure:"news_channel"`
}

// HealthConfig holds the liveness endpoint configuration.
type HealthConfig struct {
	Port int `mapstructure:"port"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// RestartDelay returns the grace period between a restart announcement and the new lobby.
func (g *GameConfig) RestartDelay() time.Duration {
	return time.Duration(g.RestartDelaySeconds) * time.Second
}

// RoundTimeout returns how long a round waits for its leader's word.
func (g *GameConfig) RoundTimeout() time.Duration {
	return time.Duration(g.RoundTimeoutSeconds) * time.Second
}

// Addr returns the listen address of the liveness endpoint.
func (h *HealthConfig) Addr() string {
	return fmt.Sprintf(":%d", h.Port)
}

// Load reads configuration from .env, config file and environment variables.
// It looks for config.yaml in configPath, the working directory and ./config.
func Load(configPath string) (*Config, error) {
	// A missing .env is fine, the environment may already be populated.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase
	// e.g., BOT_TOKEN, GAME_JOIN_DURATION_SECONDS
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Hosting platforms hand the listen port over as PORT.
	if err := v.BindEnv("health.port", "HEALTH_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("failed to bind health port: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Unset keys are invisible to AutomaticEnv during Unmarshal, so the token
	// gets an empty default to let BOT_TOKEN through.
	v.SetDefault("bot.token", "")
	v.SetDefault("bot.poll_timeout", "10s")

	v.SetDefault("game.join_duration_seconds", 10)
	v.SetDefault("game.tick_interval", "1s")
	v.SetDefault("game.restart_delay_seconds", 6)
	v.SetDefault("game.round_count", 3)
	v.SetDefault("game.round_timeout_seconds", 60)
	v.SetDefault("game.min_players_rapid", 2)
	v.SetDefault("game.min_players_round", 3)

	v.SetDefault("links.news_channel", "https://t.me/WordClash_News")
	v.SetDefault("health.port", 10000)
	v.SetDefault("whitelist.chats", []int64{})
	v.SetDefault("log.level", "info")
}

// Validate checks settings the bot cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Bot.Token) == "" {
		return ErrMissingToken
	}
	if c.Game.JoinDurationSeconds <= 0 {
		return fmt.Errorf("game.join_duration_seconds must be positive, got %d", c.Game.JoinDurationSeconds)
	}
	if c.Game.RoundCount <= 0 {
		return fmt.Errorf("game.round_count must be positive, got %d", c.Game.RoundCount)
	}
	if c.Game.MinPlayersRound < MinRoundPlayers {
		return fmt.Errorf("game.min_players_round must be at least %d, got %d", MinRoundPlayers, c.Game.MinPlayersRound)
	}
	return nil
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}
