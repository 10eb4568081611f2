package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"word-clash-bot/internal/pkg/lock"
)

// sentMessage is one message recorded by fakeGateway.
type sentMessage struct {
	Ref      MessageRef
	Text     string
	Keyboard *Keyboard
	Markdown bool
}

// fakeGateway records outbound traffic and hands out increasing message IDs.
type fakeGateway struct {
	mu     sync.Mutex
	nextID int
	sent   []sentMessage
	edits  map[MessageRef][]string

	sendErr     error
	markdownErr error
	editErr     error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{edits: make(map[MessageRef][]string)}
}

func (g *fakeGateway) record(chatID int64, text string, kb *Keyboard, markdown bool) MessageRef {
	g.nextID++
	ref := MessageRef{ChatID: chatID, MessageID: g.nextID}
	g.sent = append(g.sent, sentMessage{Ref: ref, Text: text, Keyboard: kb, Markdown: markdown})
	return ref
}

func (g *fakeGateway) Send(_ context.Context, chatID int64, text string, kb *Keyboard) (MessageRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return MessageRef{}, g.sendErr
	}
	return g.record(chatID, text, kb, false), nil
}

func (g *fakeGateway) SendMarkdown(_ context.Context, chatID int64, text string, kb *Keyboard) (MessageRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.markdownErr != nil {
		return MessageRef{}, g.markdownErr
	}
	return g.record(chatID, text, kb, true), nil
}

func (g *fakeGateway) EditMarkdown(_ context.Context, ref MessageRef, text string, _ *Keyboard) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edits[ref] = append(g.edits[ref], text)
	return g.editErr
}

// textsTo returns the texts sent to chatID in order.
func (g *fakeGateway) textsTo(chatID int64) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, m := range g.sent {
		if m.Ref.ChatID == chatID {
			out = append(out, m.Text)
		}
	}
	return out
}

// markdownTo returns the Markdown texts sent to chatID in order.
func (g *fakeGateway) markdownTo(chatID int64) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, m := range g.sent {
		if m.Ref.ChatID == chatID && m.Markdown {
			out = append(out, m.Text)
		}
	}
	return out
}

// lastTo returns the last message sent to chatID.
func (g *fakeGateway) lastTo(chatID int64) (sentMessage, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := len(g.sent) - 1; i >= 0; i-- {
		if g.sent[i].Ref.ChatID == chatID {
			return g.sent[i], true
		}
	}
	return sentMessage{}, false
}

func (g *fakeGateway) editsOf(ref MessageRef) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.edits[ref]...)
}

func (g *fakeGateway) count(chatID int64, text string) int {
	n := 0
	for _, t := range g.textsTo(chatID) {
		if t == text {
			n++
		}
	}
	return n
}

// fastConfig keeps lobbies short enough for tests.
func fastConfig() Config {
	return Config{
		JoinTicks:    3,
		TickInterval: 20 * time.Millisecond,
		RoundCount:   3,
		BotUsername:  "WordClashBot",
		NewsChannel:  "https://t.me/WordClash_News",
	}
}

func newTestOrchestrator(cfg Config) (*Orchestrator, *fakeGateway) {
	gw := newFakeGateway()
	return NewOrchestrator(cfg, gw, NewStore(), NewLedger(), lock.NewChatLock()), gw
}

// openLobby starts a lobby and fails the test if it cannot.
func openLobby(t *testing.T, o *Orchestrator, chatID int64, mode Mode) *Session {
	t.Helper()
	if err := o.StartLobby(context.Background(), chatID, mode); err != nil {
		t.Fatalf("StartLobby: %v", err)
	}
	s := o.Store().Get(chatID)
	if s == nil {
		t.Fatalf("no session after StartLobby")
	}
	return s
}

func joinAll(t *testing.T, o *Orchestrator, chatID int64, players ...Player) {
	t.Helper()
	for _, p := range players {
		if err := o.Join(context.Background(), EncodeJoinPayload(chatID), p); err != nil {
			t.Fatalf("Join(%d): %v", p.ID, err)
		}
	}
}
