package game

import (
	"time"

	"github.com/rs/zerolog/log"
)

// playRapid makes the first joined player the leader and asks them for a word.
// The session stays in game until it is replaced.
func (o *Orchestrator) playRapid(s *Session) {
	var leader Player
	var aborted bool
	_ = o.locks.WithLock(s.ChatID, func() error {
		if s.Cancelled() {
			aborted = true
			return nil
		}
		leader = s.Joined[0]
		o.store.SetLeader(s, leader.ID)
		s.Leader = &leader
		return nil
	})
	if aborted {
		return
	}

	o.announceLeader(s, FormatLeaderAnnouncement(leader), leader)
}

// playRounds rotates leadership over the joined players for the configured
// number of rounds, shows the leaderboard and ends the session.
func (o *Orchestrator) playRounds(s *Session) {
	var players []Player
	_ = o.locks.WithLock(s.ChatID, func() error {
		players = append([]Player(nil), s.Joined...)
		return nil
	})

	for round := 1; round <= o.cfg.RoundCount; round++ {
		if len(players) < MinRotationPlayers {
			break
		}
		leader := players[0]

		var wordSet <-chan struct{}
		var aborted bool
		_ = o.locks.WithLock(s.ChatID, func() error {
			if s.Cancelled() {
				aborted = true
				return nil
			}
			o.store.SetLeader(s, leader.ID)
			wordSet = s.beginRound(round, leader)
			return nil
		})
		if aborted {
			return
		}

		log.Info().
			Int64("chat_id", s.ChatID).
			Str("game_id", s.ID).
			Int("round", round).
			Int64("leader_id", leader.ID).
			Msg("Round started")

		o.announceLeader(s, FormatRoundAnnouncement(round, leader), leader)
		if !o.waitForWord(s, wordSet) {
			return
		}
		players = rotate(players)
	}

	o.finishRounds(s)
}

// waitForWord blocks until the leader sets the word or the round times out.
// Returns false if the session was cancelled meanwhile.
func (o *Orchestrator) waitForWord(s *Session, wordSet <-chan struct{}) bool {
	if o.cfg.RoundTimeout > 0 {
		timer := time.NewTimer(o.cfg.RoundTimeout)
		defer timer.Stop()

		select {
		case <-wordSet:
		case <-timer.C:
			log.Debug().Int64("chat_id", s.ChatID).Str("game_id", s.ID).Msg("Round timed out")
		case <-s.Done():
		case <-o.ctx.Done():
		}
	}
	return !o.stopped(s)
}

// finishRounds announces the leaderboard (if anyone has a score) and tears
// the session down.
func (o *Orchestrator) finishRounds(s *Session) {
	var board string
	var aborted bool
	_ = o.locks.WithLock(s.ChatID, func() error {
		if s.Cancelled() {
			aborted = true
			return nil
		}
		board = FormatLeaderboard(o.ledger.Standings(), s)
		o.terminateLocked(s)
		return nil
	})
	if aborted {
		return
	}

	log.Info().Int64("chat_id", s.ChatID).Str("game_id", s.ID).Msg("Game finished")

	if board == "" {
		return
	}
	if _, err := o.gw.Send(o.ctx, s.ChatID, board, nil); err != nil {
		log.Error().Err(err).Int64("chat_id", s.ChatID).Msg("Failed to send leaderboard")
	}
}

// announceLeader posts the public announcement and the leader's private prompt.
func (o *Orchestrator) announceLeader(s *Session, announcement string, leader Player) {
	if _, err := o.gw.Send(o.ctx, s.ChatID, announcement, nil); err != nil {
		log.Error().Err(err).Int64("chat_id", s.ChatID).Msg("Failed to announce leader")
	}
	if _, err := o.gw.Send(o.ctx, leader.ID, MsgLeaderPrompt, nil); err != nil {
		// Telegram refuses DMs to users who never opened a chat with the bot.
		log.Warn().Err(err).
			Int64("chat_id", s.ChatID).
			Int64("user_id", leader.ID).
			Msg("Failed to send leader prompt")
	}
}

// rotate moves the front player to the back.
func rotate(players []Player) []Player {
	if len(players) < 2 {
		return players
	}
	out := make([]Player, 0, len(players))
	out = append(out, players[1:]...)
	return append(out, players[0])
}
