package bot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
	"pgregory.net/rapid"

	"word-clash-bot/internal/config"
)

// updateContext implements the parts of tele.Context the middleware reads.
type updateContext struct {
	tele.Context
	chat    *tele.Chat
	sender  *tele.User
	replies []interface{}
}

func (c *updateContext) Chat() *tele.Chat         { return c.chat }
func (c *updateContext) Sender() *tele.User       { return c.sender }
func (c *updateContext) Callback() *tele.Callback { return nil }
func (c *updateContext) Text() string             { return "/start" }

func (c *updateContext) Reply(what interface{}, _ ...interface{}) error {
	c.replies = append(c.replies, what)
	return nil
}

// runThrough reports whether mw passed the update on to the handler.
func runThrough(mw tele.MiddlewareFunc, c tele.Context) bool {
	called := false
	_ = mw(func(tele.Context) error {
		called = true
		return nil
	})(c)
	return called
}

// TestWhitelistEnforcementProperty checks that a group update is handled iff
// its chat is whitelisted.
func TestWhitelistEnforcementProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numChats := rapid.IntRange(1, 10).Draw(t, "numChats")
		chatIDs := make([]int64, numChats)
		for i := 0; i < numChats; i++ {
			// Group chat IDs are negative
			chatIDs[i] = -rapid.Int64Range(1, 1000000000).Draw(t, "chatID")
		}
		cfg := &config.Config{Whitelist: config.WhitelistConfig{Chats: chatIDs}}

		testChatID := -rapid.Int64Range(1, 1000000000).Draw(t, "testChatID")
		if rapid.Bool().Draw(t, "pickKnown") {
			testChatID = chatIDs[rapid.IntRange(0, numChats-1).Draw(t, "idx")]
		}

		expected := false
		for _, id := range chatIDs {
			if id == testChatID {
				expected = true
				break
			}
		}

		if got := cfg.IsChatAllowed(testChatID); got != expected {
			t.Fatalf("IsChatAllowed(%d) = %v, want %v (whitelist %v)", testChatID, got, expected, chatIDs)
		}

		c := &updateContext{
			chat:   &tele.Chat{ID: testChatID, Type: tele.ChatGroup},
			sender: &tele.User{ID: 1},
		}
		if got := runThrough(WhitelistMiddleware(cfg), c); got != expected {
			t.Fatalf("middleware passed=%v for chat %d, want %v", got, testChatID, expected)
		}
	})
}

// TestEmptyWhitelistAllowsAllChatsProperty checks that an empty whitelist lets everything through.
func TestEmptyWhitelistAllowsAllChatsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := &config.Config{Whitelist: config.WhitelistConfig{Chats: []int64{}}}
		chatID := -rapid.Int64Range(1, 1000000000).Draw(t, "chatID")

		if !cfg.IsChatAllowed(chatID) {
			t.Fatalf("With empty whitelist, chat ID %d should be allowed", chatID)
		}
	})
}

// TestPrivateUserCacheProperty tests the private user cache round trip.
func TestPrivateUserCacheProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		userID := rapid.Int64Range(1, 1000000000).Draw(t, "userID")
		AllowPrivateUser(userID)
		if !IsPrivateUserAllowed(userID) {
			t.Fatalf("User %d should be allowed after being added to private user cache", userID)
		}
	})
}

func TestWhitelistPrivateChat(t *testing.T) {
	cfg := &config.Config{Whitelist: config.WhitelistConfig{Chats: []int64{-100}}}
	mw := WhitelistMiddleware(cfg)

	// IDs above the rapid ranges so other tests cannot have cached them.
	const leader, stranger int64 = 2000000001, 2000000002

	dm := func(id int64) *updateContext {
		return &updateContext{chat: &tele.Chat{ID: id, Type: tele.ChatPrivate}, sender: &tele.User{ID: id}}
	}

	assert.False(t, runThrough(mw, dm(stranger)), "unknown users are ignored in private")

	groupUpdate := &updateContext{chat: &tele.Chat{ID: -100, Type: tele.ChatSuperGroup}, sender: &tele.User{ID: leader}}
	require.True(t, runThrough(mw, groupUpdate))
	assert.True(t, runThrough(mw, dm(leader)), "users seen in an allowed group may use private chat")

	open := WhitelistMiddleware(&config.Config{})
	assert.True(t, runThrough(open, dm(stranger)), "empty whitelist allows private chats")
}

func TestRecoveryMiddleware(t *testing.T) {
	c := &updateContext{chat: &tele.Chat{ID: -1}, sender: &tele.User{ID: 1}}

	err := RecoveryMiddleware()(func(tele.Context) error {
		panic("boom")
	})(c)
	assert.NoError(t, err)
	assert.Equal(t, []interface{}{msgInternalError}, c.replies, "the user is told the command failed")

	c.replies = nil
	want := errors.New("handler failed")
	err = RecoveryMiddleware()(func(tele.Context) error {
		return want
	})(c)
	assert.ErrorIs(t, err, want)
	assert.Empty(t, c.replies)
}

func TestLoggingMiddlewarePassesThrough(t *testing.T) {
	c := &updateContext{chat: &tele.Chat{ID: -1, Type: tele.ChatGroup}, sender: &tele.User{ID: 1, Username: "alice"}}
	assert.True(t, runThrough(LoggingMiddleware(), c))
}
