package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Callback payload actions.
const (
	ActionMode = "mode"
	ActionJoin = "join"
)

// ErrInvalidPayload is returned for callback data the bot did not produce.
var ErrInvalidPayload = errors.New("invalid callback payload")

// Payload is a decoded inline button payload.
type Payload struct {
	Action string
	Mode   Mode // only for ActionMode
	ChatID int64
}

// EncodeModePayload encodes a mode selection button: "mode:<rapid|round>:<chatId>".
func EncodeModePayload(mode Mode, chatID int64) string {
	return fmt.Sprintf("%s:%s:%d", ActionMode, mode, chatID)
}

// EncodeJoinPayload encodes a join button: "join:<chatId>".
func EncodeJoinPayload(chatID int64) string {
	return fmt.Sprintf("%s:%d", ActionJoin, chatID)
}

// DecodePayload parses colon-delimited callback data.
func DecodePayload(data string) (Payload, error) {
	parts := strings.Split(data, ":")
	switch parts[0] {
	case ActionMode:
		if len(parts) != 3 {
			return Payload{}, fmt.Errorf("%w: %q", ErrInvalidPayload, data)
		}
		mode, err := ParseMode(parts[1])
		if err != nil {
			return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		chatID, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return Payload{}, fmt.Errorf("%w: bad chat id in %q", ErrInvalidPayload, data)
		}
		return Payload{Action: ActionMode, Mode: mode, ChatID: chatID}, nil

	case ActionJoin:
		if len(parts) != 2 {
			return Payload{}, fmt.Errorf("%w: %q", ErrInvalidPayload, data)
		}
		chatID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return Payload{}, fmt.Errorf("%w: bad chat id in %q", ErrInvalidPayload, data)
		}
		return Payload{Action: ActionJoin, ChatID: chatID}, nil

	default:
		return Payload{}, fmt.Errorf("%w: %q", ErrInvalidPayload, data)
	}
}

// ModeMenu builds the mode selection keyboard for a group chat.
func ModeMenu(chatID int64) *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{{Text: "⚡ Rapid Mode", Data: EncodeModePayload(ModeRapid, chatID)}},
		{{Text: "🎯 Round-wise Mode", Data: EncodeModePayload(ModeRoundWise, chatID)}},
	}}
}

// JoinButton builds the lobby keyboard.
func JoinButton(chatID int64) *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{{Text: "🎯 JOIN Game", Data: EncodeJoinPayload(chatID)}},
	}}
}

// WelcomeLinks builds the private-chat keyboard pointing users to groups and news.
func WelcomeLinks(botUsername, newsChannel string) *Keyboard {
	rows := [][]Button{
		{{Text: "➕ Add me to a group", URL: fmt.Sprintf("https://t.me/%s?startgroup=start", botUsername)}},
	}
	if newsChannel != "" {
		rows = append(rows, []Button{{Text: "📢 News Channel", URL: newsChannel}})
	}
	return &Keyboard{Rows: rows}
}
