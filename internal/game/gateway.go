package game

import "context"

// Button is one inline keyboard button. Exactly one of Data or URL is set.
type Button struct {
	Text string
	Data string
	URL  string
}

// Keyboard is an inline keyboard laid out as rows of buttons.
type Keyboard struct {
	Rows [][]Button
}

// Gateway is the outbound side of the messaging platform.
type Gateway interface {
	// Send posts a message to a chat (or a user's private chat) and returns
	// a reference that Edit can target later.
	Send(ctx context.Context, chatID int64, text string, kb *Keyboard) (MessageRef, error)

	// SendMarkdown is Send with Markdown formatting enabled.
	SendMarkdown(ctx context.Context, chatID int64, text string, kb *Keyboard) (MessageRef, error)

	// EditMarkdown replaces the text and keyboard of a previously sent message.
	// Editing a deleted or unchanged message fails; callers treat that as non-fatal.
	EditMarkdown(ctx context.Context, ref MessageRef, text string, kb *Keyboard) error
}
