package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"word-clash-bot/internal/pkg/lock"
)

// Defaults used when a count or interval in Config is not positive.
// RestartDelay and RoundTimeout accept zero.
const (
	DefaultJoinTicks       = 10
	DefaultTickInterval    = time.Second
	DefaultRoundCount      = 3
	DefaultMinPlayersRapid = 2
	DefaultMinPlayersRound = 3

	// MinRotationPlayers is the rotation size below which round-wise play stops.
	MinRotationPlayers = 3
)

// Errors returned by orchestrator operations.
var (
	ErrNoSession     = errors.New("no active session in this chat")
	ErrNotLeader     = errors.New("sender is not the current leader")
	ErrJoinClosed    = errors.New("join phase is not open")
	ErrAlreadyJoined = errors.New("player already joined")
	ErrEmptyWord     = errors.New("word is empty")
)

// Config tunes the orchestrator's timing and thresholds.
type Config struct {
	JoinTicks       int           // lobby countdown length in ticks
	TickInterval    time.Duration // time between lobby ticks
	RestartDelay    time.Duration // grace period of /restart
	RoundCount      int
	RoundTimeout    time.Duration // 0 means rounds do not wait for the word
	MinPlayersRapid int
	MinPlayersRound int
	BotUsername     string
	NewsChannel     string
}

func (c *Config) applyDefaults() {
	if c.JoinTicks <= 0 {
		c.JoinTicks = DefaultJoinTicks
	}
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.RestartDelay < 0 {
		c.RestartDelay = 0
	}
	if c.RoundTimeout < 0 {
		c.RoundTimeout = 0
	}
	if c.RoundCount <= 0 {
		c.RoundCount = DefaultRoundCount
	}
	if c.MinPlayersRapid <= 0 {
		c.MinPlayersRapid = DefaultMinPlayersRapid
	}
	if c.MinPlayersRound <= 0 {
		c.MinPlayersRound = DefaultMinPlayersRound
	}
	// A round-wise lobby must not open a game that cannot rotate.
	if c.MinPlayersRound < MinRotationPlayers {
		c.MinPlayersRound = MinRotationPlayers
	}
}

func (c *Config) minPlayers(mode Mode) int {
	if mode == ModeRoundWise {
		return c.MinPlayersRound
	}
	return c.MinPlayersRapid
}

// Orchestrator drives every chat's session through lobby, game and teardown.
// Mutations of a chat's session happen under that chat's lock; gateway calls
// are made with no lock held.
type Orchestrator struct {
	cfg    Config
	gw     Gateway
	store  *Store
	ledger *Ledger
	locks  *lock.ChatLock

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates an Orchestrator. Background timers live until Stop.
func NewOrchestrator(cfg Config, gw Gateway, store *Store, ledger *Ledger, locks *lock.ChatLock) *Orchestrator {
	cfg.applyDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		cfg:    cfg,
		gw:     gw,
		store:  store,
		ledger: ledger,
		locks:  locks,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Store returns the session store.
func (o *Orchestrator) Store() *Store {
	return o.store
}

// Ledger returns the score ledger.
func (o *Orchestrator) Ledger() *Ledger {
	return o.ledger
}

// Start handles /start. In a private chat it sends the welcome links; in a
// group it clears any stuck session and offers the mode menu.
func (o *Orchestrator) Start(ctx context.Context, chatID int64, private bool) error {
	if private {
		if _, err := o.gw.Send(ctx, chatID, MsgWelcome, WelcomeLinks(o.cfg.BotUsername, o.cfg.NewsChannel)); err != nil {
			return fmt.Errorf("failed to send welcome: %w", err)
		}
		return nil
	}

	_ = o.locks.WithLock(chatID, func() error {
		if s := o.store.Get(chatID); s != nil {
			log.Info().Int64("chat_id", chatID).Str("game_id", s.ID).Msg("Clearing stuck session")
			o.terminateLocked(s)
		}
		return nil
	})

	if _, err := o.gw.Send(ctx, chatID, MsgChooseMode, ModeMenu(chatID)); err != nil {
		return fmt.Errorf("failed to send mode menu: %w", err)
	}
	return nil
}

// SelectMode handles a mode button press and opens the lobby in the chat the
// button was issued for.
func (o *Orchestrator) SelectMode(ctx context.Context, data string) error {
	p, err := DecodePayload(data)
	if err != nil {
		return err
	}
	if p.Action != ActionMode {
		return fmt.Errorf("%w: expected mode action", ErrInvalidPayload)
	}
	return o.StartLobby(ctx, p.ChatID, p.Mode)
}

// Join handles a join button press.
func (o *Orchestrator) Join(ctx context.Context, data string, player Player) error {
	p, err := DecodePayload(data)
	if err != nil {
		return err
	}
	if p.Action != ActionJoin {
		return fmt.Errorf("%w: expected join action", ErrInvalidPayload)
	}

	return o.locks.WithLock(p.ChatID, func() error {
		s := o.store.Get(p.ChatID)
		if s == nil || s.State != StateJoining {
			return ErrJoinClosed
		}
		if !s.AddPlayer(player) {
			return ErrAlreadyJoined
		}
		log.Debug().
			Int64("chat_id", p.ChatID).
			Str("game_id", s.ID).
			Int64("user_id", player.ID).
			Int("joined", len(s.Joined)).
			Msg("Player joined")
		return nil
	})
}

// SetWord handles /word from the current leader. Commands sent in a group are
// matched against that group's session; commands sent in a private chat are
// matched against the chat the sender currently leads.
func (o *Orchestrator) SetWord(ctx context.Context, chatID int64, private bool, sender Player, args string) error {
	target := chatID
	if private {
		leaderChat, ok := o.store.ChatForLeader(sender.ID)
		if !ok {
			return ErrNoSession
		}
		target = leaderChat
	}

	var gameID string
	err := o.locks.WithLock(target, func() error {
		s := o.store.Get(target)
		if s == nil {
			return ErrNoSession
		}
		if !s.IsLeader(sender.ID) {
			return ErrNotLeader
		}
		if strings.TrimSpace(args) == "" {
			return ErrEmptyWord
		}
		s.Secret = NormalizeWord(args)
		s.notifyWord()
		gameID = s.ID
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().
		Int64("chat_id", target).
		Str("game_id", gameID).
		Int64("user_id", sender.ID).
		Msg("Secret word set")

	if _, err := o.gw.Send(ctx, chatID, MsgWordAccepted, nil); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to acknowledge word")
	}
	if _, err := o.gw.Send(ctx, target, MsgWordBroadcast, nil); err != nil {
		return fmt.Errorf("failed to broadcast word set: %w", err)
	}
	return nil
}

// Restart handles /restart: it cancels the chat's session, waits the restart
// delay so its timer can observe the cancellation, then opens a rapid lobby.
func (o *Orchestrator) Restart(ctx context.Context, chatID int64) error {
	var old *Session
	_ = o.locks.WithLock(chatID, func() error {
		old = o.store.Get(chatID)
		if old != nil {
			old.Cancel()
		}
		return nil
	})

	if old != nil {
		log.Info().Int64("chat_id", chatID).Str("game_id", old.ID).Msg("Restarting game")

		notice := FormatRestartNotice(int(o.cfg.RestartDelay / time.Second))
		if _, err := o.gw.Send(ctx, chatID, notice, nil); err != nil {
			log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to send restart notice")
		}

		if !o.sleep(ctx, o.cfg.RestartDelay, nil) {
			return context.Canceled
		}

		_ = o.locks.WithLock(chatID, func() error {
			o.terminateLocked(old)
			return nil
		})
	}

	return o.StartLobby(ctx, chatID, ModeRapid)
}

// StartLobby replaces the chat's session with a fresh one in the join phase,
// posts the lobby message and starts its countdown.
func (o *Orchestrator) StartLobby(ctx context.Context, chatID int64, mode Mode) error {
	s := NewSession(chatID, mode)

	_ = o.locks.WithLock(chatID, func() error {
		if old := o.store.Get(chatID); old != nil {
			o.terminateLocked(old)
		}
		s.State = StateJoining
		o.store.Put(s)
		return nil
	})

	ref, err := o.gw.SendMarkdown(ctx, chatID, FormatLobbyMessage(mode, o.cfg.JoinTicks, nil), JoinButton(chatID))
	if err != nil {
		_ = o.locks.WithLock(chatID, func() error {
			o.terminateLocked(s)
			return nil
		})
		return fmt.Errorf("failed to send lobby message: %w", err)
	}

	_ = o.locks.WithLock(chatID, func() error {
		s.JoinMessage = ref
		return nil
	})

	log.Info().
		Int64("chat_id", chatID).
		Str("game_id", s.ID).
		Str("mode", string(mode)).
		Msg("Lobby opened")

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.runLobby(s)
	}()
	return nil
}

// Wait blocks until every lobby and game flow started so far has returned.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Stop cancels all running timers and waits for them to return.
func (o *Orchestrator) Stop() {
	o.cancel()
	o.wg.Wait()
}

// terminateLocked ends s and removes it from the store if it is still the
// chat's session. The caller holds the chat lock.
func (o *Orchestrator) terminateLocked(s *Session) {
	s.Cancel()
	s.State = StateTerminated
	o.store.Remove(s)
}

// stopped reports whether s's flow must end without further side effects.
func (o *Orchestrator) stopped(s *Session) bool {
	return s.Cancelled() || o.ctx.Err() != nil
}

// sleep waits for d, returning false if ctx, the orchestrator or done ended first.
func (o *Orchestrator) sleep(ctx context.Context, d time.Duration, done <-chan struct{}) bool {
	if d <= 0 {
		return ctx.Err() == nil && o.ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	case <-o.ctx.Done():
		return false
	case <-done:
		return false
	}
}
