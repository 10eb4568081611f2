package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Bot.Token)
	assert.Equal(t, 10*time.Second, cfg.Bot.PollTimeout)
	assert.Equal(t, 10, cfg.Game.JoinDurationSeconds)
	assert.Equal(t, time.Second, cfg.Game.TickInterval)
	assert.Equal(t, 6*time.Second, cfg.Game.RestartDelay())
	assert.Equal(t, 3, cfg.Game.RoundCount)
	assert.Equal(t, 60*time.Second, cfg.Game.RoundTimeout())
	assert.Equal(t, 2, cfg.Game.MinPlayersRapid)
	assert.Equal(t, 3, cfg.Game.MinPlayersRound)
	assert.Equal(t, ":10000", cfg.Health.Addr())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "tok")
	t.Setenv("GAME_JOIN_DURATION_SECONDS", "20")
	t.Setenv("GAME_ROUND_TIMEOUT_SECONDS", "0")
	t.Setenv("PORT", "8080")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Game.JoinDurationSeconds)
	assert.Equal(t, time.Duration(0), cfg.Game.RoundTimeout())
	assert.Equal(t, 8080, cfg.Health.Port)
}

func TestLoad_ConfigFile(t *testing.T) {
	// Empty variables are ignored by viper, so the file value wins.
	t.Setenv("BOT_TOKEN", "")
	dir := t.TempDir()
	yaml := []byte(`
bot:
  token: file-token
game:
  min_players_rapid: 4
whitelist:
  chats: [-1001, -1002]
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.Bot.Token)
	assert.Equal(t, 4, cfg.Game.MinPlayersRapid)
	assert.Equal(t, []int64{-1001, -1002}, cfg.Whitelist.Chats)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"valid", func(c *Config) {}, nil},
		{"missing token", func(c *Config) { c.Bot.Token = "" }, ErrMissingToken},
		{"blank token", func(c *Config) { c.Bot.Token = "   " }, ErrMissingToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Bot:  BotConfig{Token: "123:abc"},
				Game: GameConfig{JoinDurationSeconds: 10, RoundCount: 3, MinPlayersRound: 3},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("non-positive join duration", func(t *testing.T) {
		cfg := &Config{Bot: BotConfig{Token: "x"}, Game: GameConfig{RoundCount: 3, MinPlayersRound: 3}}
		assert.Error(t, cfg.Validate())
	})

	t.Run("round-wise minimum below rotation size", func(t *testing.T) {
		cfg := &Config{
			Bot:  BotConfig{Token: "x"},
			Game: GameConfig{JoinDurationSeconds: 10, RoundCount: 3, MinPlayersRound: 2},
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "game.min_players_round")
	})
}
