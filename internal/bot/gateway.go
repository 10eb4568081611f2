package bot

import (
	"context"
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v3"

	"word-clash-bot/internal/game"
)

// Sender is the subset of *tele.Bot the gateway needs.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Gateway delivers game messages through telebot.
type Gateway struct {
	api Sender
}

// NewGateway wraps a telebot client.
func NewGateway(api Sender) *Gateway {
	return &Gateway{api: api}
}

// Send posts plain text.
func (g *Gateway) Send(ctx context.Context, chatID int64, text string, kb *game.Keyboard) (game.MessageRef, error) {
	return g.send(ctx, chatID, text, kb, false)
}

// SendMarkdown posts Markdown text.
func (g *Gateway) SendMarkdown(ctx context.Context, chatID int64, text string, kb *game.Keyboard) (game.MessageRef, error) {
	return g.send(ctx, chatID, text, kb, true)
}

// EditMarkdown replaces a sent message with Markdown text.
func (g *Gateway) EditMarkdown(ctx context.Context, ref game.MessageRef, text string, kb *game.Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := tele.StoredMessage{MessageID: strconv.Itoa(ref.MessageID), ChatID: ref.ChatID}
	opts := []interface{}{tele.ModeMarkdown}
	if markup := toMarkup(kb); markup != nil {
		opts = append(opts, markup)
	}
	if _, err := g.api.Edit(stored, text, opts...); err != nil {
		return fmt.Errorf("failed to edit message %d in chat %d: %w", ref.MessageID, ref.ChatID, err)
	}
	return nil
}

func (g *Gateway) send(ctx context.Context, chatID int64, text string, kb *game.Keyboard, markdown bool) (game.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return game.MessageRef{}, err
	}

	var opts []interface{}
	if markdown {
		opts = append(opts, tele.ModeMarkdown)
	}
	if markup := toMarkup(kb); markup != nil {
		opts = append(opts, markup)
	}

	msg, err := g.api.Send(&tele.Chat{ID: chatID}, text, opts...)
	if err != nil {
		return game.MessageRef{}, fmt.Errorf("failed to send to chat %d: %w", chatID, err)
	}
	return game.MessageRef{ChatID: chatID, MessageID: msg.ID}, nil
}

// toMarkup converts a game keyboard to an inline keyboard.
func toMarkup(kb *game.Keyboard) *tele.ReplyMarkup {
	if kb == nil || len(kb.Rows) == 0 {
		return nil
	}

	rows := make([][]tele.InlineButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		buttons := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tele.InlineButton{Text: b.Text, Data: b.Data, URL: b.URL})
		}
		rows = append(rows, buttons)
	}
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}
