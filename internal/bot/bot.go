// Package bot provides the Telegram bot initialization, handler registration
// and the telebot implementation of the game gateway.
package bot

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"word-clash-bot/internal/config"
	"word-clash-bot/internal/game"
	"word-clash-bot/internal/handler"
	"word-clash-bot/internal/pkg/lock"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot  *tele.Bot
	cfg  *config.Config
	orch *game.Orchestrator

	gameHandler *handler.GameHandler
}

// Dependencies holds everything the bot wires together.
type Dependencies struct {
	Config   *config.Config
	Store    *game.Store
	Ledger   *game.Ledger
	ChatLock *lock.ChatLock
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if strings.TrimSpace(deps.Config.Bot.Token) == "" {
		return nil, config.ErrMissingToken
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: deps.Config.Bot.PollTimeout},
		OnError: func(err error, c tele.Context) {
			event := log.Error().Err(err)
			if c != nil && c.Chat() != nil {
				event = event.Int64("chat_id", c.Chat().ID)
			}
			event.Msg("Handler error")
		},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	orch := game.NewOrchestrator(
		GameConfig(deps.Config, teleBot.Me.Username),
		NewGateway(teleBot),
		deps.Store,
		deps.Ledger,
		deps.ChatLock,
	)

	b := &Bot{
		bot:         teleBot,
		cfg:         deps.Config,
		orch:        orch,
		gameHandler: handler.NewGameHandler(orch),
	}

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// GameConfig maps application settings onto orchestrator settings.
func GameConfig(cfg *config.Config, botUsername string) game.Config {
	return game.Config{
		JoinTicks:       cfg.Game.JoinDurationSeconds,
		TickInterval:    cfg.Game.TickInterval,
		RestartDelay:    cfg.Game.RestartDelay(),
		RoundCount:      cfg.Game.RoundCount,
		RoundTimeout:    cfg.Game.RoundTimeout(),
		MinPlayersRapid: cfg.Game.MinPlayersRapid,
		MinPlayersRound: cfg.Game.MinPlayersRound,
		BotUsername:     botUsername,
		NewsChannel:     cfg.Links.NewsChannel,
	}
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command and callback handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.gameHandler.HandleStart)
	b.bot.Handle("/restart", b.gameHandler.HandleRestart)
	b.bot.Handle("/word", b.gameHandler.HandleWord)

	b.bot.Handle(tele.OnCallback, b.gameHandler.HandleCallback)
}

// Start starts the bot polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Str("username", b.bot.Me.Username).Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops polling and every running game timer.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
	b.orch.Stop()
}

// Orchestrator returns the game orchestrator.
func (b *Bot) Orchestrator() *game.Orchestrator {
	return b.orch
}
