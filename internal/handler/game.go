// Package handler provides Telegram bot command and callback handlers.
package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"word-clash-bot/internal/game"
)

// Games is the set of game operations the handlers drive.
type Games interface {
	Start(ctx context.Context, chatID int64, private bool) error
	SelectMode(ctx context.Context, data string) error
	Join(ctx context.Context, data string, player game.Player) error
	SetWord(ctx context.Context, chatID int64, private bool, sender game.Player, args string) error
	Restart(ctx context.Context, chatID int64) error
}

// GameHandler handles Word Clash commands and buttons.
type GameHandler struct {
	games Games
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(games Games) *GameHandler {
	return &GameHandler{games: games}
}

// HandleStart handles /start.
func (h *GameHandler) HandleStart(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}

	if err := h.games.Start(context.Background(), chat.ID, isPrivate(chat)); err != nil {
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to handle /start")
	}
	return nil
}

// HandleRestart handles /restart. It blocks for the restart delay, which is
// fine because telebot runs each update on its own goroutine.
func (h *GameHandler) HandleRestart(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}

	if err := h.games.Restart(context.Background(), chat.ID); err != nil {
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to restart game")
	}
	return nil
}

// HandleWord handles /word from the current leader, in the group or in private.
func (h *GameHandler) HandleWord(c tele.Context) error {
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil {
		return nil
	}

	var args string
	if msg := c.Message(); msg != nil {
		args = msg.Payload
	}

	err := h.games.SetWord(context.Background(), chat.ID, isPrivate(chat), playerOf(sender), args)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, game.ErrEmptyWord):
		return c.Reply(game.MsgProvideWord)
	case errors.Is(err, game.ErrNotLeader), errors.Is(err, game.ErrNoSession):
		return nil
	default:
		log.Error().Err(err).Int64("chat_id", chat.ID).Int64("user_id", sender.ID).Msg("Failed to set word")
		return nil
	}
}

// HandleCallback routes inline button presses by payload action.
func (h *GameHandler) HandleCallback(c tele.Context) error {
	callback := c.Callback()
	sender := c.Sender()
	if callback == nil || sender == nil {
		return nil
	}

	// Telebot v3 may add a \f prefix to callback data
	data := strings.TrimPrefix(callback.Data, "\f")
	log.Debug().Str("data", data).Int64("user_id", sender.ID).Msg("Callback received")

	switch {
	case strings.HasPrefix(data, game.ActionMode+":"):
		return h.handleSelectMode(c, data)
	case strings.HasPrefix(data, game.ActionJoin+":"):
		return h.handleJoin(c, data, sender)
	default:
		return c.Respond(&tele.CallbackResponse{Text: game.MsgInvalidButton})
	}
}

func (h *GameHandler) handleSelectMode(c tele.Context, data string) error {
	if err := h.games.SelectMode(context.Background(), data); err != nil {
		if errors.Is(err, game.ErrInvalidPayload) {
			return c.Respond(&tele.CallbackResponse{Text: game.MsgInvalidButton})
		}
		log.Error().Err(err).Str("data", data).Msg("Failed to open lobby")
		return c.Respond(&tele.CallbackResponse{Text: game.MsgInvalidButton, ShowAlert: true})
	}
	return c.Respond(&tele.CallbackResponse{Text: game.MsgModeSelected})
}

func (h *GameHandler) handleJoin(c tele.Context, data string, sender *tele.User) error {
	err := h.games.Join(context.Background(), data, playerOf(sender))
	switch {
	case err == nil:
		return c.Respond(&tele.CallbackResponse{Text: game.MsgJoined})
	case errors.Is(err, game.ErrAlreadyJoined):
		return c.Respond(&tele.CallbackResponse{Text: game.MsgAlreadyJoined, ShowAlert: true})
	case errors.Is(err, game.ErrJoinClosed):
		return c.Respond(&tele.CallbackResponse{Text: game.MsgJoinClosed, ShowAlert: true})
	default:
		return c.Respond(&tele.CallbackResponse{Text: game.MsgInvalidButton})
	}
}

func isPrivate(chat *tele.Chat) bool {
	return chat.Type == tele.ChatPrivate
}

// playerOf names a player by username, falling back to the full name.
func playerOf(u *tele.User) game.Player {
	name := u.Username
	if name == "" {
		name = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	return game.Player{ID: u.ID, Name: name}
}
