// Package game implements the Word Clash session lifecycle: the join lobby,
// leader selection and rotation, and the cross-chat score ledger.
package game

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// State is a session's position in its lifecycle.
type State int

const (
	StateInit State = iota
	StateJoining
	StateInGame
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateJoining:
		return "JOINING"
	case StateInGame:
		return "IN_GAME"
	case StateTerminated:
		return "TERMINATED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Mode selects the game flow that runs once the lobby closes.
type Mode string

const (
	ModeRapid     Mode = "rapid"
	ModeRoundWise Mode = "round"
)

// ParseMode parses the mode token used in callback payloads.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeRapid, ModeRoundWise:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// Title returns the mode name as shown in the lobby message.
func (m Mode) Title() string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}

// Player is a participant identified by Telegram user ID.
type Player struct {
	ID   int64
	Name string
}

// MessageRef addresses a message sent through the Gateway.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Session tracks one game in one chat.
//
// All fields except ID and ChatID are guarded by the chat's lock; the
// cancellation flag is additionally readable without it.
type Session struct {
	ID          string
	ChatID      int64
	State       State
	Mode        Mode
	Round       int
	Joined      []Player
	Leader      *Player
	Secret      string
	RoundScores map[int64]int
	JoinMessage MessageRef

	cancelMu   sync.Mutex
	cancelled  bool
	done       chan struct{}
	wordSignal chan struct{}
}

// NewSession allocates a session in StateInit.
func NewSession(chatID int64, mode Mode) *Session {
	return &Session{
		ID:          uuid.NewString(),
		ChatID:      chatID,
		State:       StateInit,
		Mode:        mode,
		Joined:      make([]Player, 0),
		RoundScores: make(map[int64]int),
		done:        make(chan struct{}),
	}
}

// HasJoined reports whether a player is already in the join list.
func (s *Session) HasJoined(playerID int64) bool {
	for _, p := range s.Joined {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

// AddPlayer appends a player unless the ID is already present.
// Returns false on duplicates.
func (s *Session) AddPlayer(p Player) bool {
	if s.HasJoined(p.ID) {
		return false
	}
	s.Joined = append(s.Joined, p)
	return true
}

// NameOf resolves a player's display name from the join list.
func (s *Session) NameOf(playerID int64) (string, bool) {
	for _, p := range s.Joined {
		if p.ID == playerID {
			return p.Name, true
		}
	}
	return "", false
}

// IsLeader reports whether playerID is the current leader.
func (s *Session) IsLeader(playerID int64) bool {
	return s.Leader != nil && s.Leader.ID == playerID
}

// Cancel raises the cooperative cancellation flag and wakes any timer
// sleeping on this session. Safe to call more than once.
func (s *Session) Cancel() {
	s.cancelMu.Lock()
	defer s.cancelMu.Unlock()
	if s.cancelled {
		return
	}
	s.cancelled = true
	close(s.done)
}

// Cancelled reports whether Cancel has been called.
func (s *Session) Cancelled() bool {
	s.cancelMu.Lock()
	defer s.cancelMu.Unlock()
	return s.cancelled
}

// Done is closed once the session is cancelled.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// beginRound resets per-round fields and installs the signal SetWord uses to
// end the round early.
func (s *Session) beginRound(round int, leader Player) <-chan struct{} {
	s.Round = round
	s.Leader = &leader
	s.Secret = ""
	s.RoundScores = make(map[int64]int)
	s.wordSignal = make(chan struct{}, 1)
	return s.wordSignal
}

// notifyWord wakes a round waiting for the leader's word.
func (s *Session) notifyWord() {
	if s.wordSignal == nil {
		return
	}
	select {
	case s.wordSignal <- struct{}{}:
	default:
	}
}
