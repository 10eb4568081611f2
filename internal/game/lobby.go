package game

import (
	"github.com/rs/zerolog/log"
)

// runLobby counts the join phase down, one lobby message edit per tick, then
// hands the session to closeLobby. The cancellation flag is checked before
// every tick; once it is raised the lobby returns without touching the chat.
func (o *Orchestrator) runLobby(s *Session) {
	logger := log.With().
		Int64("chat_id", s.ChatID).
		Str("game_id", s.ID).
		Str("mode", string(s.Mode)).
		Logger()

	kb := JoinButton(s.ChatID)
	for remaining := o.cfg.JoinTicks; remaining > 0; remaining-- {
		if o.stopped(s) {
			logger.Debug().Int("remaining", remaining).Msg("Lobby cancelled")
			return
		}

		var players []Player
		var ref MessageRef
		_ = o.locks.WithLock(s.ChatID, func() error {
			players = append([]Player(nil), s.Joined...)
			ref = s.JoinMessage
			return nil
		})

		text := FormatLobbyMessage(s.Mode, remaining, players)
		if err := o.gw.EditMarkdown(o.ctx, ref, text, kb); err != nil {
			// Stale or unchanged message; the countdown goes on.
			logger.Debug().Err(err).Msg("Failed to edit lobby message")
		}

		o.sleep(o.ctx, o.cfg.TickInterval, s.Done())
	}

	if o.stopped(s) {
		logger.Debug().Msg("Lobby cancelled")
		return
	}
	o.closeLobby(s)
}

// closeLobby applies the join threshold: enough players moves the session
// in game and starts the mode's flow, too few ends it.
func (o *Orchestrator) closeLobby(s *Session) {
	var aborted, proceed bool
	var joined int
	_ = o.locks.WithLock(s.ChatID, func() error {
		if s.Cancelled() {
			aborted = true
			return nil
		}
		joined = len(s.Joined)
		if joined >= o.cfg.minPlayers(s.Mode) {
			s.State = StateInGame
			proceed = true
			return nil
		}
		o.terminateLocked(s)
		return nil
	})
	if aborted {
		return
	}

	logger := log.With().
		Int64("chat_id", s.ChatID).
		Str("game_id", s.ID).
		Str("mode", string(s.Mode)).
		Int("joined", joined).
		Logger()

	if !proceed {
		logger.Info().Msg("Lobby closed without enough players")
		if _, err := o.gw.Send(o.ctx, s.ChatID, MsgNotEnough, nil); err != nil {
			logger.Error().Err(err).Msg("Failed to send cancellation notice")
		}
		return
	}

	logger.Info().Msg("Game started")
	switch s.Mode {
	case ModeRoundWise:
		o.playRounds(s)
	default:
		o.playRapid(s)
	}
}
