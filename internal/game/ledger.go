package game

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// LeaderboardSize is the number of top entries shown at the end of a game.
const LeaderboardSize = 3

// Standing is one ledger entry.
type Standing struct {
	PlayerID int64
	Score    int
}

// Ledger holds cumulative scores per player for the lifetime of the process.
// It is shared by every chat and never reset.
type Ledger struct {
	scores map[int64]int
	mu     sync.RWMutex
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{scores: make(map[int64]int)}
}

// Add adds delta to a player's score and returns the new total.
func (l *Ledger) Add(playerID int64, delta int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scores[playerID] += delta
	return l.scores[playerID]
}

// Score returns a player's score, 0 if unknown.
func (l *Ledger) Score(playerID int64) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.scores[playerID]
}

// Len returns the number of players with an entry.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.scores)
}

// Standings returns every entry ordered by descending score, ties by
// ascending player ID.
func (l *Ledger) Standings() []Standing {
	l.mu.RLock()
	out := make([]Standing, 0, len(l.scores))
	for id, score := range l.scores {
		out = append(out, Standing{PlayerID: id, Score: score})
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}

// FormatLeaderboard renders the top entries and the lowest entry as loser.
// Names come from s's join list; players outside it show their raw ID.
// Returns "" when there are no standings.
func FormatLeaderboard(standings []Standing, s *Session) string {
	if len(standings) == 0 {
		return ""
	}

	name := func(id int64) string {
		if n, ok := s.NameOf(id); ok {
			return n
		}
		return strconv.FormatInt(id, 10)
	}

	var b strings.Builder
	b.WriteString(leaderboardHeader)
	for i, st := range standings {
		if i == LeaderboardSize {
			break
		}
		fmt.Fprintf(&b, "%d. @%s — %d pts\n", i+1, name(st.PlayerID), st.Score)
	}

	loser := standings[len(standings)-1]
	fmt.Fprintf(&b, "\n🤡 Loser: @%s — %d pts", name(loser.PlayerID), loser.Score)
	return b.String()
}
